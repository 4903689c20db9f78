package structs

// Contact submission types.
const (
	ContactTypeQuote   = "quote"
	ContactTypeMeeting = "meeting"
	ContactTypeCustom  = "custom"
)

// ContactRequest is the shared shape of the three public contact forms.
// Validation tags follow the request-body validator.
type ContactRequest struct {
	// Type is derived from the endpoint path, never from the payload.
	Type string `json:"-"`

	Name    string `json:"name" validate:"required,min=2,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone,omitempty" validate:"omitempty,max=30"`
	Company string `json:"company,omitempty" validate:"omitempty,max=150"`
	Message string `json:"message,omitempty" validate:"omitempty,max=2000"`

	// Quote-specific fields
	BundleID string `json:"bundleId,omitempty" validate:"omitempty,max=100"`
	Budget   string `json:"budget,omitempty" validate:"omitempty,max=50"`

	// Meeting-specific fields
	PreferredDate string `json:"preferredDate,omitempty" validate:"omitempty,max=50"`
}
