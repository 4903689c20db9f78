package tables

import (
	"time"
)

// CampaignBundle is a pre-configured package of campaign products sold at a
// single estimated price. Derived pricing fields (savings, discount
// percentage) are persisted so list reads never recompute them.
type CampaignBundle struct {
	tableName          struct{}        `bun:"table:campaign_bundles,alias:cb"`
	ID                 string          `bun:"id,pk" json:"id"`
	AirtableID         *string         `bun:"airtable_id" json:"airtableId,omitempty"`
	Name               string          `bun:"name,notnull" json:"name"`
	Description        string          `bun:"description,notnull" json:"description"`
	TargetAudience     string          `bun:"target_audience,notnull" json:"targetAudience"`
	BudgetRange        string          `bun:"budget_range,notnull" json:"budgetRange"`
	EstimatedTotal     float64         `bun:"estimated_total,notnull" json:"estimatedTotal"`
	OriginalTotal      *float64        `bun:"original_total" json:"originalTotal,omitempty"`
	Savings            float64         `bun:"savings,notnull" json:"savings"`
	DiscountPercentage float64         `bun:"discount_percentage,notnull" json:"discountPercentage"`
	Popularity         int             `bun:"popularity,notnull" json:"popularity"`
	IsActive           bool            `bun:"is_active,notnull" json:"isActive"`
	IsFeatured         bool            `bun:"is_featured,notnull" json:"isFeatured"`
	Tags               JSONStrings     `bun:"tags" json:"tags"`
	DisplayOrder       int             `bun:"display_order,notnull" json:"displayOrder"`
	CreatedAt          time.Time       `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt          time.Time       `bun:"updated_at,notnull" json:"updatedAt"`
	Products           []BundleProduct `bun:"rel:has-many,join:id=bundle_id" json:"products,omitempty"`
}

// BundleProduct is one line item of a bundle. The stored order of the line
// items is the display order, kept in an explicit sequence column.
type BundleProduct struct {
	tableName    struct{} `bun:"table:bundle_products,alias:bp"`
	ID           string   `bun:"id,pk" json:"-"`
	BundleID     string   `bun:"bundle_id,notnull" json:"-"`
	ProductID    string   `bun:"product_id,notnull" json:"id"`
	Name         string   `bun:"name,notnull" json:"name"`
	BasePrice    float64  `bun:"base_price,notnull" json:"basePrice"`
	Quantity     int      `bun:"quantity,notnull" json:"quantity"`
	Subtotal     float64  `bun:"subtotal,notnull" json:"subtotal"`
	DisplayOrder int      `bun:"display_order,notnull" json:"-"`
}

type BundleAnalytics struct {
	tableName    struct{}   `bun:"table:bundle_analytics,alias:ba"`
	ID           string     `bun:"id,pk" json:"id"`
	BundleID     string     `bun:"bundle_id,notnull" json:"bundleId"`
	Views        int        `bun:"views,notnull" json:"views"`
	Conversions  int        `bun:"conversions,notnull" json:"conversions"`
	LastViewedAt *time.Time `bun:"last_viewed_at" json:"lastViewedAt,omitempty"`
}

type BundleCustomization struct {
	tableName     struct{}  `bun:"table:bundle_customizations,alias:bc"`
	ID            string    `bun:"id,pk" json:"id"`
	BundleID      string    `bun:"bundle_id,notnull" json:"bundleId"`
	CustomerEmail string    `bun:"customer_email" json:"customerEmail,omitempty"`
	Payload       string    `bun:"payload,notnull" json:"payload"`
	CreatedAt     time.Time `bun:"created_at,notnull" json:"createdAt"`
}

// Order references a bundle. Orders with status pending or processing block
// bundle deletion; force delete archives them instead.
type Order struct {
	tableName      struct{}  `bun:"table:orders,alias:o"`
	ID             string    `bun:"id,pk" json:"id"`
	BundleID       *string   `bun:"bundle_id" json:"bundleId,omitempty"`
	CustomerName   string    `bun:"customer_name" json:"customerName,omitempty"`
	CustomerEmail  string    `bun:"customer_email" json:"customerEmail,omitempty"`
	Status         string    `bun:"status,notnull" json:"status"`
	ArchivedReason *string   `bun:"archived_reason" json:"archivedReason,omitempty"`
	Total          float64   `bun:"total,notnull" json:"total"`
	CreatedAt      time.Time `bun:"created_at,notnull" json:"createdAt"`
	UpdatedAt      time.Time `bun:"updated_at,notnull" json:"updatedAt"`
}

type Quote struct {
	tableName     struct{}   `bun:"table:quotes,alias:q"`
	ID            string     `bun:"id,pk" json:"id"`
	BundleID      *string    `bun:"bundle_id" json:"bundleId,omitempty"`
	CustomerEmail string     `bun:"customer_email" json:"customerEmail,omitempty"`
	Status        string     `bun:"status,notnull" json:"status"`
	ExpiresAt     *time.Time `bun:"expires_at" json:"expiresAt,omitempty"`
	CreatedAt     time.Time  `bun:"created_at,notnull" json:"createdAt"`
}
