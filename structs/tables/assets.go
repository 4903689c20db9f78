package tables

import "time"

// Asset mirrors a Cloudinary resource in the relational store.
type Asset struct {
	tableName  struct{}    `bun:"table:assets,alias:a"`
	ID         string      `bun:"id,pk" json:"id"`
	PublicID   string      `bun:"public_id,notnull" json:"publicId"`
	URL        string      `bun:"url,notnull" json:"url"`
	SecureURL  string      `bun:"secure_url" json:"secureUrl,omitempty"`
	Format     string      `bun:"format" json:"format,omitempty"`
	Width      int         `bun:"width" json:"width,omitempty"`
	Height     int         `bun:"height" json:"height,omitempty"`
	Folder     string      `bun:"folder" json:"folder,omitempty"`
	Tags       JSONStrings `bun:"tags" json:"tags"`
	IsActive   bool        `bun:"is_active,notnull" json:"isActive"`
	UploadedAt time.Time   `bun:"uploaded_at,notnull" json:"uploadedAt"`
	LastSync   *time.Time  `bun:"last_sync" json:"lastSync,omitempty"`
}

// AssetUsage records where an asset is referenced; deletion is blocked while
// usages exist.
type AssetUsage struct {
	tableName  struct{}  `bun:"table:asset_usages,alias:au"`
	ID         string    `bun:"id,pk" json:"id"`
	AssetID    string    `bun:"asset_id,notnull" json:"assetId"`
	EntityType string    `bun:"entity_type,notnull" json:"entityType"`
	EntityID   string    `bun:"entity_id,notnull" json:"entityId"`
	UsedAt     time.Time `bun:"used_at,notnull" json:"usedAt"`
}
