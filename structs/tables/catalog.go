package tables

import "time"

// Product is a catalog entry synchronized from Airtable into Turso. AirtableID
// is the external foreign key the differential sync upserts on.
type Product struct {
	tableName   struct{}   `bun:"table:products,alias:p"`
	ID          string     `bun:"id,pk" json:"id"`
	AirtableID  *string    `bun:"airtable_id" json:"airtableId,omitempty"`
	Name        string     `bun:"name,notnull" json:"name"`
	Reference   string     `bun:"reference" json:"reference,omitempty"`
	Category    string     `bun:"category" json:"category,omitempty"`
	Description string     `bun:"description" json:"description,omitempty"`
	BasePrice   float64    `bun:"base_price,notnull" json:"basePrice"`
	MinQuantity int        `bun:"min_quantity,notnull" json:"minQuantity"`
	MaxQuantity int        `bun:"max_quantity,notnull" json:"maxQuantity"`
	ImageURL    string     `bun:"image_url" json:"imageUrl,omitempty"`
	UsageCount  int        `bun:"usage_count,notnull" json:"usageCount"`
	IsActive    bool       `bun:"is_active,notnull" json:"isActive"`
	LastSync    *time.Time `bun:"last_sync" json:"lastSync,omitempty"`
	CreatedAt   time.Time  `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull" json:"updatedAt"`
}

type Category struct {
	tableName    struct{}   `bun:"table:categories,alias:c"`
	ID           string     `bun:"id,pk" json:"id"`
	AirtableID   *string    `bun:"airtable_id" json:"airtableId,omitempty"`
	Name         string     `bun:"name,notnull" json:"name"`
	Slug         string     `bun:"slug,notnull" json:"slug"`
	Description  string     `bun:"description" json:"description,omitempty"`
	DisplayOrder int        `bun:"display_order,notnull" json:"displayOrder"`
	IsActive     bool       `bun:"is_active,notnull" json:"isActive"`
	LastSync     *time.Time `bun:"last_sync" json:"lastSync,omitempty"`
}

// Realisation is a portfolio entry showing produced campaign material.
type Realisation struct {
	tableName          struct{}    `bun:"table:realisations,alias:r"`
	ID                 string      `bun:"id,pk" json:"id"`
	AirtableID         *string     `bun:"airtable_id" json:"airtableId,omitempty"`
	Title              string      `bun:"title,notnull" json:"title"`
	Description        string      `bun:"description" json:"description,omitempty"`
	CloudinaryPublicIDs JSONStrings `bun:"cloudinary_public_ids" json:"cloudinaryPublicIds"`
	ProductIDs         JSONStrings `bun:"product_ids" json:"productIds"`
	Tags               JSONStrings `bun:"tags" json:"tags"`
	IsFeatured         bool        `bun:"is_featured,notnull" json:"isFeatured"`
	DisplayOrder       int         `bun:"display_order,notnull" json:"displayOrder"`
	IsActive           bool        `bun:"is_active,notnull" json:"isActive"`
	Source             string      `bun:"source,notnull" json:"source"`
}
