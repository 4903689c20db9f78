// Package schemas implements the structural and business-rule validation of
// campaign bundles, plus the derived-pricing arithmetic. Error messages are
// the French user-facing strings returned verbatim by the API.
package schemas

import (
	"fmt"
	"ns2po_server/structs"
	"slices"
)

// FieldError is one structural validation failure.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

const (
	maxBundleProducts = 20
	maxBundleTotal    = 10_000_000
	maxTags           = 10
	maxTagLength      = 50

	// Arithmetic invariants tolerate floating-point slack.
	totalTolerance = 0.01
)

// Defaults applied when the field is absent from a creation payload.
const (
	DefaultPopularity = 5
	DefaultIsActive   = true
	DefaultIsFeatured = false
)

// ValidateBundleCreate checks a creation payload structurally and applies the
// schema defaults in place. All field errors are collected in one pass.
func ValidateBundleCreate(input *structs.BundleCreateInput) []FieldError {
	var errs []FieldError

	errs = append(errs, validateName(input.Name)...)
	errs = append(errs, validateDescription(input.Description)...)

	if !slices.Contains(structs.TargetAudiences, input.TargetAudience) {
		errs = append(errs, FieldError{Field: "targetAudience", Message: "Audience cible invalide"})
	}
	if !slices.Contains(structs.BudgetRanges, input.BudgetRange) {
		errs = append(errs, FieldError{Field: "budgetRange", Message: "Gamme de budget invalide"})
	}

	errs = append(errs, validateProductList(input.Products)...)
	errs = append(errs, validateTotal("estimatedTotal", input.EstimatedTotal)...)

	if input.OriginalTotal != nil {
		errs = append(errs, validateTotal("originalTotal", *input.OriginalTotal)...)
	}

	errs = append(errs, validateTags(input.Tags)...)

	if input.Popularity != nil {
		if *input.Popularity < 0 || *input.Popularity > 10 {
			errs = append(errs, FieldError{Field: "popularity", Message: "La popularité doit être entre 0 et 10"})
		}
	} else {
		popularity := DefaultPopularity
		input.Popularity = &popularity
	}

	if input.IsActive == nil {
		active := DefaultIsActive
		input.IsActive = &active
	}
	if input.IsFeatured == nil {
		featured := DefaultIsFeatured
		input.IsFeatured = &featured
	}
	if input.Tags == nil {
		input.Tags = []string{}
	}

	return errs
}

// ValidateBundleUpdate checks a partial update payload: only supplied fields
// are validated, against the same per-field rules as creation.
func ValidateBundleUpdate(id string, input *structs.BundleUpdateInput) []FieldError {
	var errs []FieldError

	if id == "" {
		errs = append(errs, FieldError{Field: "id", Message: "L'identifiant du bundle est requis"})
	}

	if input.Name != nil {
		errs = append(errs, validateName(*input.Name)...)
	}
	if input.Description != nil {
		errs = append(errs, validateDescription(*input.Description)...)
	}
	if input.TargetAudience != nil && !slices.Contains(structs.TargetAudiences, *input.TargetAudience) {
		errs = append(errs, FieldError{Field: "targetAudience", Message: "Audience cible invalide"})
	}
	if input.BudgetRange != nil && !slices.Contains(structs.BudgetRanges, *input.BudgetRange) {
		errs = append(errs, FieldError{Field: "budgetRange", Message: "Gamme de budget invalide"})
	}
	if input.Products != nil {
		errs = append(errs, validateProductList(*input.Products)...)
	}
	if input.EstimatedTotal != nil {
		errs = append(errs, validateTotal("estimatedTotal", *input.EstimatedTotal)...)
	}
	if input.OriginalTotal != nil {
		errs = append(errs, validateTotal("originalTotal", *input.OriginalTotal)...)
	}
	if input.Tags != nil {
		errs = append(errs, validateTags(input.Tags)...)
	}
	if input.Popularity != nil && (*input.Popularity < 0 || *input.Popularity > 10) {
		errs = append(errs, FieldError{Field: "popularity", Message: "La popularité doit être entre 0 et 10"})
	}

	return errs
}

// ValidateLineItem checks a single line item structurally.
func ValidateLineItem(index int, item structs.BundleProductInput) []FieldError {
	var errs []FieldError
	field := func(name string) string { return fmt.Sprintf("products[%d].%s", index, name) }

	if item.ID == "" {
		errs = append(errs, FieldError{Field: field("id"), Message: "L'identifiant du produit est requis"})
	}
	if item.Name == "" {
		errs = append(errs, FieldError{Field: field("name"), Message: "Le nom du produit est requis"})
	}
	if item.BasePrice < 0 {
		errs = append(errs, FieldError{Field: field("basePrice"), Message: "Le prix de base doit être positif"})
	}
	if item.Quantity < 1 {
		errs = append(errs, FieldError{Field: field("quantity"), Message: "La quantité doit être d'au moins 1"})
	}
	if item.Quantity > 1000 {
		errs = append(errs, FieldError{Field: field("quantity"), Message: "La quantité ne peut pas dépasser 1000"})
	}
	if item.Subtotal < 0 {
		errs = append(errs, FieldError{Field: field("subtotal"), Message: "Le sous-total doit être positif"})
	}

	return errs
}

func validateName(name string) []FieldError {
	switch {
	case len([]rune(name)) < 3:
		return []FieldError{{Field: "name", Message: "Le nom doit contenir au moins 3 caractères"}}
	case len([]rune(name)) > 100:
		return []FieldError{{Field: "name", Message: "Le nom ne peut pas dépasser 100 caractères"}}
	}
	return nil
}

func validateDescription(description string) []FieldError {
	switch {
	case len([]rune(description)) < 10:
		return []FieldError{{Field: "description", Message: "La description doit contenir au moins 10 caractères"}}
	case len([]rune(description)) > 1000:
		return []FieldError{{Field: "description", Message: "La description ne peut pas dépasser 1000 caractères"}}
	}
	return nil
}

func validateProductList(products []structs.BundleProductInput) []FieldError {
	var errs []FieldError

	if len(products) == 0 {
		errs = append(errs, FieldError{Field: "products", Message: "Un bundle doit contenir au moins un produit"})
	}
	if len(products) > maxBundleProducts {
		errs = append(errs, FieldError{Field: "products", Message: "Un bundle ne peut pas contenir plus de 20 produits"})
	}

	for i, item := range products {
		errs = append(errs, ValidateLineItem(i, item)...)
	}

	return errs
}

func validateTotal(field string, total float64) []FieldError {
	switch {
	case total < 0:
		return []FieldError{{Field: field, Message: "Le total doit être positif"}}
	case total > maxBundleTotal:
		return []FieldError{{Field: field, Message: "Le total ne peut pas dépasser 10 000 000"}}
	}
	return nil
}

func validateTags(tags []string) []FieldError {
	var errs []FieldError

	if len(tags) > maxTags {
		errs = append(errs, FieldError{Field: "tags", Message: "Maximum 10 tags autorisés"})
	}
	for i, tag := range tags {
		if len([]rune(tag)) > maxTagLength {
			errs = append(errs, FieldError{
				Field:   fmt.Sprintf("tags[%d]", i),
				Message: "Un tag ne peut pas dépasser 50 caractères",
			})
		}
	}

	return errs
}
