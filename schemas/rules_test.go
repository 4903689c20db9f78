package schemas

import (
	"ns2po_server/structs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateBundleProductsEmpty(t *testing.T) {
	errs := ValidateBundleProducts(nil)
	require.Len(t, errs, 1)
	assert.Equal(t, "Un bundle doit contenir au moins un produit", errs[0])
}

func TestValidateBundleProductsDuplicates(t *testing.T) {
	products := []structs.BundleProductInput{
		{ID: "prod-tshirt", Name: "T-shirt", BasePrice: 50, Quantity: 10, Subtotal: 500},
		{ID: "prod-tshirt", Name: "T-shirt", BasePrice: 50, Quantity: 5, Subtotal: 250},
		{ID: "prod-tshirt", Name: "T-shirt", BasePrice: 50, Quantity: 2, Subtotal: 100},
	}

	errs := ValidateBundleProducts(products)
	// Triplicates are still reported once
	require.Len(t, errs, 1)
	assert.Equal(t, "Les produits dupliqués ne sont pas autorisés", errs[0])
}

func TestValidateBundleProductsSubtotalArithmetic(t *testing.T) {
	products := []structs.BundleProductInput{
		{ID: "a", Name: "A", BasePrice: 50, Quantity: 10, Subtotal: 499.5},
		{ID: "b", Name: "B", BasePrice: 25, Quantity: 4, Subtotal: 100},
	}

	errs := ValidateBundleProducts(products)
	require.Len(t, errs, 1)
	assert.Equal(t, "Sous-total incorrect pour le produit 1", errs[0])
}

func TestValidateBundleProductsSubtotalTolerance(t *testing.T) {
	// 0.01 of slack is accepted
	products := []structs.BundleProductInput{
		{ID: "a", Name: "A", BasePrice: 50, Quantity: 10, Subtotal: 500.009},
	}
	assert.Empty(t, ValidateBundleProducts(products))
}

func TestValidateBundleTotalSumMismatch(t *testing.T) {
	input := validCreateInput()
	input.EstimatedTotal = 9000

	errs := ValidateBundleTotal(input)
	require.Len(t, errs, 1)
	assert.Equal(t, "Le total estimé ne correspond pas à la somme des sous-totaux", errs[0])
}

func TestValidateBundleTotalOriginalOrdering(t *testing.T) {
	input := validCreateInput()
	original := 8000.0
	input.OriginalTotal = &original

	errs := ValidateBundleTotal(input)
	require.Len(t, errs, 1)
	assert.Equal(t, "Le total original doit être supérieur ou égal au total estimé", errs[0])
}

func TestValidateBundleTotalExplicitSavings(t *testing.T) {
	input := validCreateInput()
	original := 10000.0
	savings := 2000.0
	input.OriginalTotal = &original
	input.Savings = &savings

	errs := ValidateBundleTotal(input)
	require.Len(t, errs, 1)
	assert.Equal(t, "Les économies ne correspondent pas à la différence entre le total original et le total estimé", errs[0])

	// Consistent savings pass
	savings = 1500.0
	assert.Empty(t, ValidateBundleTotal(input))
}

func TestValidateBundleBusinessRulesBudgetRange(t *testing.T) {
	input := validCreateInput()
	input.BudgetRange = "premium" // starter total in a premium range

	errs := ValidateBundleBusinessRules(input)
	require.Len(t, errs, 1)
	assert.Equal(t, `Le total estimé (8500) n'est pas cohérent avec la gamme de budget "premium"`, errs[0])
}

func TestValidateBundleBusinessRulesBoundsAreInclusiveExclusive(t *testing.T) {
	input := validCreateInput()
	input.BudgetRange = "medium"

	// Lower bound inclusive
	input.EstimatedTotal = 10_000
	assert.Empty(t, ValidateBundleBusinessRules(input))

	// Upper bound exclusive
	input.EstimatedTotal = 50_000
	assert.Len(t, ValidateBundleBusinessRules(input), 1)

	// Enterprise is unbounded above
	input.BudgetRange = "enterprise"
	input.EstimatedTotal = 5_000_000
	assert.Empty(t, ValidateBundleBusinessRules(input))
}

func TestValidateBundleBusinessRulesFeatured(t *testing.T) {
	input := validCreateInput()
	featured := true
	popularity := 6
	input.IsFeatured = &featured
	input.Popularity = &popularity

	errs := ValidateBundleBusinessRules(input)
	require.Len(t, errs, 1)
	assert.Equal(t, "Un bundle mis en avant doit avoir une popularité d'au moins 7", errs[0])

	popularity = 7
	inactive := false
	input.IsActive = &inactive
	errs = ValidateBundleBusinessRules(input)
	require.Len(t, errs, 1)
	assert.Equal(t, "Un bundle inactif ne peut pas être mis en avant", errs[0])
}

func TestValidateBundleConcatenatesAllRuleSets(t *testing.T) {
	input := validCreateInput()
	input.Products[0].Subtotal = 5100 // breaks the line arithmetic and the sum
	input.BudgetRange = "premium"

	errs := ValidateBundle(input)
	assert.Contains(t, errs, "Sous-total incorrect pour le produit 1")
	assert.Contains(t, errs, "Le total estimé ne correspond pas à la somme des sous-totaux")
	assert.Contains(t, errs, `Le total estimé (8500) n'est pas cohérent avec la gamme de budget "premium"`)
}
