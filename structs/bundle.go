package structs

import "time"

// Closed enums of the bundle schema.
var (
	TargetAudiences = []string{"local", "regional", "national", "universal"}
	BudgetRanges    = []string{"starter", "medium", "premium", "enterprise"}
)

// BundleProductInput is one line item of a bundle submission.
type BundleProductInput struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	BasePrice float64 `json:"basePrice"`
	Quantity  int     `json:"quantity"`
	Subtotal  float64 `json:"subtotal"`
}

// BundleCreateInput is the payload of POST /campaign-bundles. Optional fields
// are pointers so the validator can tell "absent" from "zero".
type BundleCreateInput struct {
	Name           string               `json:"name"`
	Description    string               `json:"description"`
	TargetAudience string               `json:"targetAudience"`
	BudgetRange    string               `json:"budgetRange"`
	Products       []BundleProductInput `json:"products"`
	EstimatedTotal float64              `json:"estimatedTotal"`
	OriginalTotal  *float64             `json:"originalTotal,omitempty"`
	Savings        *float64             `json:"savings,omitempty"`
	Popularity     *int                 `json:"popularity,omitempty"`
	IsActive       *bool                `json:"isActive,omitempty"`
	IsFeatured     *bool                `json:"isFeatured,omitempty"`
	Tags           []string             `json:"tags,omitempty"`
	DisplayOrder   *int                 `json:"displayOrder,omitempty"`
}

// BundleUpdateInput is the payload of PUT /campaign-bundles/{id}. Every field
// is optional; only supplied fields are written. LastModified enables the
// optimistic concurrency check against the stored updated_at.
type BundleUpdateInput struct {
	Name           *string               `json:"name,omitempty"`
	Description    *string               `json:"description,omitempty"`
	TargetAudience *string               `json:"targetAudience,omitempty"`
	BudgetRange    *string               `json:"budgetRange,omitempty"`
	Products       *[]BundleProductInput `json:"products,omitempty"`
	EstimatedTotal *float64              `json:"estimatedTotal,omitempty"`
	OriginalTotal  *float64              `json:"originalTotal,omitempty"`
	Popularity     *int                  `json:"popularity,omitempty"`
	IsActive       *bool                 `json:"isActive,omitempty"`
	IsFeatured     *bool                 `json:"isFeatured,omitempty"`
	Tags           []string              `json:"tags,omitempty"`
	DisplayOrder   *int                  `json:"displayOrder,omitempty"`
	LastModified   *time.Time            `json:"lastModified,omitempty"`
}

// BundleDeleteOptions selects between guarded, unguarded and forced deletion.
type BundleDeleteOptions struct {
	CheckReferences bool `json:"checkReferences"`
	ForceDelete     bool `json:"forceDelete"`
}

// BundleDeleteResult reports what a (force) delete actually did.
type BundleDeleteResult struct {
	Deleted           bool `json:"deleted"`
	ArchivedOrders    int  `json:"archivedOrders"`
	InvalidatedQuotes int  `json:"invalidatedQuotes"`
	DeletedProducts   int  `json:"deletedProducts"`
}

// ReferenceConflictError blocks a guarded delete while active orders or
// non-expired quotes still reference the bundle.
type ReferenceConflictError struct {
	ActiveOrders int    `json:"activeOrders"`
	ActiveQuotes int    `json:"activeQuotes"`
	Suggestion   string `json:"suggestion"`
}

func (e *ReferenceConflictError) Error() string {
	return "bundle is referenced by active orders or quotes"
}
