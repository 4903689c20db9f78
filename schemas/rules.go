package schemas

import (
	"fmt"
	"math"
	"ns2po_server/structs"
)

// budgetRangeBounds is the validator's threshold table: inclusive lower bound,
// exclusive upper bound, enterprise unbounded above. Note that the display
// classifier in pricing.go uses a different set of cutoffs; the two tables
// evolved independently and are deliberately not unified (see DESIGN.md).
var budgetRangeBounds = map[string][2]float64{
	"starter":    {0, 10_000},
	"medium":     {10_000, 50_000},
	"premium":    {50_000, 200_000},
	"enterprise": {200_000, math.Inf(1)},
}

// ValidateBundleProducts runs the cross-field checks on the line-item list:
// non-empty, no duplicate product ids, structural re-validation of each item,
// and the per-item subtotal arithmetic within tolerance.
func ValidateBundleProducts(products []structs.BundleProductInput) []string {
	var errs []string

	if len(products) == 0 {
		errs = append(errs, "Un bundle doit contenir au moins un produit")
		return errs
	}

	seen := make(map[string]bool, len(products))
	duplicate := false
	for _, item := range products {
		if seen[item.ID] {
			duplicate = true
		}
		seen[item.ID] = true
	}
	if duplicate {
		errs = append(errs, "Les produits dupliqués ne sont pas autorisés")
	}

	for i, item := range products {
		for _, fieldErr := range ValidateLineItem(i, item) {
			errs = append(errs, fieldErr.Message)
		}

		expected := float64(item.Quantity) * item.BasePrice
		if math.Abs(item.Subtotal-expected) > totalTolerance {
			errs = append(errs, fmt.Sprintf("Sous-total incorrect pour le produit %d", i+1))
		}
	}

	return errs
}

// ValidateBundleTotal checks the aggregate arithmetic: estimated total vs the
// sum of subtotals, original total ordering, and explicit savings consistency.
// An explicitly supplied inconsistent savings is rejected here, while the
// derivation path clamps instead; the asymmetry is the documented policy.
func ValidateBundleTotal(input *structs.BundleCreateInput) []string {
	var errs []string

	var sum float64
	for _, item := range input.Products {
		sum += item.Subtotal
	}

	if math.Abs(sum-input.EstimatedTotal) > totalTolerance {
		errs = append(errs, "Le total estimé ne correspond pas à la somme des sous-totaux")
	}

	if input.OriginalTotal != nil {
		if *input.OriginalTotal < input.EstimatedTotal {
			errs = append(errs, "Le total original doit être supérieur ou égal au total estimé")
		}

		if input.Savings != nil {
			expected := *input.OriginalTotal - input.EstimatedTotal
			if math.Abs(*input.Savings-expected) > totalTolerance {
				errs = append(errs, "Les économies ne correspondent pas à la différence entre le total original et le total estimé")
			}
		}
	}

	return errs
}

// ValidateBundleBusinessRules checks the remaining cross-field invariants:
// budget-range/total consistency and the featured-bundle constraints.
func ValidateBundleBusinessRules(input *structs.BundleCreateInput) []string {
	var errs []string

	if bounds, ok := budgetRangeBounds[input.BudgetRange]; ok {
		if input.EstimatedTotal < bounds[0] || input.EstimatedTotal >= bounds[1] {
			errs = append(errs, fmt.Sprintf(
				`Le total estimé (%.0f) n'est pas cohérent avec la gamme de budget "%s"`,
				input.EstimatedTotal, input.BudgetRange,
			))
		}
	}

	featured := input.IsFeatured != nil && *input.IsFeatured
	if featured {
		popularity := DefaultPopularity
		if input.Popularity != nil {
			popularity = *input.Popularity
		}
		if popularity < 7 {
			errs = append(errs, "Un bundle mis en avant doit avoir une popularité d'au moins 7")
		}

		if input.IsActive != nil && !*input.IsActive {
			errs = append(errs, "Un bundle inactif ne peut pas être mis en avant")
		}
	}

	return errs
}

// ValidateBundle runs the three rule sets and concatenates their messages.
// Any non-empty result is a hard validation failure.
func ValidateBundle(input *structs.BundleCreateInput) []string {
	var errs []string
	errs = append(errs, ValidateBundleProducts(input.Products)...)
	errs = append(errs, ValidateBundleTotal(input)...)
	errs = append(errs, ValidateBundleBusinessRules(input)...)
	return errs
}
