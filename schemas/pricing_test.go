package schemas

import (
	"ns2po_server/structs"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeBundlePricingDerivedOriginal(t *testing.T) {
	products := []structs.BundleProductInput{
		{Subtotal: 5000},
		{Subtotal: 5000},
	}

	pricing := ComputeBundlePricing(products, 8500, nil)
	assert.Equal(t, 10000.0, pricing.OriginalTotal)
	assert.Equal(t, 1500.0, pricing.Savings)
	assert.Equal(t, 15.0, pricing.DiscountPercentage)
}

func TestComputeBundlePricingExplicitOriginal(t *testing.T) {
	original := 200000.0
	pricing := ComputeBundlePricing(nil, 185000, &original)
	assert.Equal(t, 200000.0, pricing.OriginalTotal)
	assert.Equal(t, 15000.0, pricing.Savings)
	assert.Equal(t, 8.0, pricing.DiscountPercentage)
}

func TestComputeBundlePricingClampsNegativeSavings(t *testing.T) {
	// Final price above original: savings clamp to zero, the discount
	// percentage stays negative as a drift signal.
	original := 8000.0
	pricing := ComputeBundlePricing(nil, 10000, &original)
	assert.Equal(t, 0.0, pricing.Savings)
	assert.Equal(t, -25.0, pricing.DiscountPercentage)
}

func TestComputeBundlePricingRoundsDiscountToNearestInteger(t *testing.T) {
	original := 10000.0

	pricing := ComputeBundlePricing(nil, 8501, &original)
	assert.Equal(t, 1499.0, pricing.Savings)
	assert.Equal(t, 15.0, pricing.DiscountPercentage)

	// Rounding also applies to the signed drift value
	pricing = ComputeBundlePricing(nil, 10249, &original)
	assert.Equal(t, 0.0, pricing.Savings)
	assert.Equal(t, -2.0, pricing.DiscountPercentage)
}

func TestComputeBundlePricingZeroOriginal(t *testing.T) {
	pricing := ComputeBundlePricing(nil, 0, nil)
	assert.Equal(t, 0.0, pricing.OriginalTotal)
	assert.Equal(t, 0.0, pricing.Savings)
	assert.Equal(t, 0.0, pricing.DiscountPercentage)
}

func TestClassifyBudgetRange(t *testing.T) {
	assert.Equal(t, "starter", ClassifyBudgetRange(0))
	assert.Equal(t, "starter", ClassifyBudgetRange(19_999))
	assert.Equal(t, "standard", ClassifyBudgetRange(20_000))
	assert.Equal(t, "standard", ClassifyBudgetRange(49_999))
	assert.Equal(t, "premium", ClassifyBudgetRange(50_000))
}

func TestDeriveFeatured(t *testing.T) {
	one, four := 1, 4
	assert.True(t, DeriveFeatured(&one))
	assert.False(t, DeriveFeatured(&four))
	assert.False(t, DeriveFeatured(nil))
}

func TestSumSubtotals(t *testing.T) {
	products := []structs.BundleProductInput{{Subtotal: 100.5}, {Subtotal: 200.25}}
	assert.Equal(t, 300.75, SumSubtotals(products))
}
