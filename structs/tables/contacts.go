package tables

import "time"

// Contact stores quote requests, meeting requests and custom requests coming
// from the public forms. Type discriminates the three shapes; the raw
// submission is kept in Payload.
type Contact struct {
	tableName struct{}  `bun:"table:contacts,alias:ct"`
	ID        string    `bun:"id,pk" json:"id"`
	Type      string    `bun:"type,notnull" json:"type"`
	Name      string    `bun:"name,notnull" json:"name"`
	Email     string    `bun:"email,notnull" json:"email"`
	Phone     string    `bun:"phone" json:"phone,omitempty"`
	Company   string    `bun:"company" json:"company,omitempty"`
	Message   string    `bun:"message" json:"message,omitempty"`
	Payload   string    `bun:"payload,notnull" json:"-"`
	Status    string    `bun:"status,notnull" json:"status"`
	CreatedAt time.Time `bun:"created_at,notnull" json:"createdAt"`
}
