package schemas

import (
	"math"
	"ns2po_server/structs"
)

// Pricing carries the derived pricing fields of a bundle.
type Pricing struct {
	OriginalTotal      float64
	Savings            float64
	DiscountPercentage float64
}

// ComputeBundlePricing derives originalTotal, savings and discountPercentage
// from the line items and the supplied final price. When no explicit original
// total is given, the sum of subtotals is used. Negative derived savings are
// clamped to zero rather than rejected; the validator path is stricter about
// explicitly supplied savings.
func ComputeBundlePricing(products []structs.BundleProductInput, finalPrice float64, explicitOriginal *float64) Pricing {
	originalTotal := 0.0
	if explicitOriginal != nil {
		originalTotal = *explicitOriginal
	} else {
		for _, item := range products {
			originalTotal += item.Subtotal
		}
	}

	savings := math.Max(0, originalTotal-finalPrice)

	discountPercentage := 0.0
	if originalTotal > 0 {
		discountPercentage = math.Round((originalTotal - finalPrice) / originalTotal * 100)
	}

	return Pricing{
		OriginalTotal:      originalTotal,
		Savings:            savings,
		DiscountPercentage: discountPercentage,
	}
}

// ClassifyBudgetRange maps a total onto the display tiers. These cutoffs
// differ from the validator table in rules.go and intentionally stay that way.
func ClassifyBudgetRange(total float64) string {
	switch {
	case total < 20_000:
		return "starter"
	case total < 50_000:
		return "standard"
	default:
		return "premium"
	}
}

// DeriveFeatured derives the featured flag from a display order: the first
// three display slots are featured.
func DeriveFeatured(displayOrder *int) bool {
	return displayOrder != nil && *displayOrder <= 3
}

// SumSubtotals is the line-item aggregate used by the recalculation job.
func SumSubtotals(products []structs.BundleProductInput) float64 {
	var sum float64
	for _, item := range products {
		sum += item.Subtotal
	}
	return sum
}
