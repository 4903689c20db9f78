package schemas

import (
	"ns2po_server/structs"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validCreateInput() *structs.BundleCreateInput {
	return &structs.BundleCreateInput{
		Name:           "Pack Starter",
		Description:    "Pack de démarrage pour campagne locale",
		TargetAudience: "local",
		BudgetRange:    "starter",
		Products: []structs.BundleProductInput{
			{ID: "prod-tshirt", Name: "T-shirt personnalisé", BasePrice: 50, Quantity: 100, Subtotal: 5000},
			{ID: "prod-affiche", Name: "Affiche A2", BasePrice: 25, Quantity: 140, Subtotal: 3500},
		},
		EstimatedTotal: 8500,
	}
}

func TestValidateBundleCreateValid(t *testing.T) {
	input := validCreateInput()
	errs := ValidateBundleCreate(input)
	require.Empty(t, errs)

	// Defaults are applied in place
	require.NotNil(t, input.Popularity)
	assert.Equal(t, DefaultPopularity, *input.Popularity)
	require.NotNil(t, input.IsActive)
	assert.True(t, *input.IsActive)
	require.NotNil(t, input.IsFeatured)
	assert.False(t, *input.IsFeatured)
	assert.NotNil(t, input.Tags)
}

func TestValidateBundleCreateName(t *testing.T) {
	input := validCreateInput()
	input.Name = "ab"
	errs := ValidateBundleCreate(input)
	require.Len(t, errs, 1)
	assert.Equal(t, "name", errs[0].Field)
	assert.Equal(t, "Le nom doit contenir au moins 3 caractères", errs[0].Message)

	input = validCreateInput()
	input.Name = string(make([]rune, 101))
	errs = ValidateBundleCreate(input)
	require.Len(t, errs, 1)
	assert.Equal(t, "Le nom ne peut pas dépasser 100 caractères", errs[0].Message)
}

func TestValidateBundleCreateDescription(t *testing.T) {
	input := validCreateInput()
	input.Description = "court"
	errs := ValidateBundleCreate(input)
	require.Len(t, errs, 1)
	assert.Equal(t, "La description doit contenir au moins 10 caractères", errs[0].Message)
}

func TestValidateBundleCreateEnums(t *testing.T) {
	input := validCreateInput()
	input.TargetAudience = "global"
	input.BudgetRange = "luxe"

	errs := ValidateBundleCreate(input)
	require.Len(t, errs, 2)
	assert.Equal(t, "Audience cible invalide", errs[0].Message)
	assert.Equal(t, "Gamme de budget invalide", errs[1].Message)
}

func TestValidateBundleCreateEmptyProducts(t *testing.T) {
	input := validCreateInput()
	input.Products = nil

	errs := ValidateBundleCreate(input)
	require.Len(t, errs, 1)
	assert.Equal(t, "products", errs[0].Field)
	assert.Equal(t, "Un bundle doit contenir au moins un produit", errs[0].Message)
}

func TestValidateBundleCreateTooManyProducts(t *testing.T) {
	input := validCreateInput()
	input.Products = nil
	for i := 0; i < 21; i++ {
		input.Products = append(input.Products, structs.BundleProductInput{
			ID: "p", Name: "p", BasePrice: 1, Quantity: 1, Subtotal: 1,
		})
	}
	input.EstimatedTotal = 21

	errs := ValidateBundleCreate(input)
	require.Len(t, errs, 1)
	assert.Equal(t, "Un bundle ne peut pas contenir plus de 20 produits", errs[0].Message)
}

func TestValidateBundleCreatePopularityBounds(t *testing.T) {
	input := validCreateInput()
	popularity := 11
	input.Popularity = &popularity

	errs := ValidateBundleCreate(input)
	require.Len(t, errs, 1)
	assert.Equal(t, "La popularité doit être entre 0 et 10", errs[0].Message)
}

func TestValidateBundleCreateTags(t *testing.T) {
	input := validCreateInput()
	for i := 0; i < 11; i++ {
		input.Tags = append(input.Tags, "tag")
	}

	errs := ValidateBundleCreate(input)
	require.Len(t, errs, 1)
	assert.Equal(t, "Maximum 10 tags autorisés", errs[0].Message)

	input = validCreateInput()
	input.Tags = []string{string(make([]rune, 51))}
	errs = ValidateBundleCreate(input)
	require.Len(t, errs, 1)
	assert.Equal(t, "tags[0]", errs[0].Field)
	assert.Equal(t, "Un tag ne peut pas dépasser 50 caractères", errs[0].Message)
}

func TestValidateBundleCreateCollectsAllErrors(t *testing.T) {
	input := &structs.BundleCreateInput{
		Name:           "x",
		Description:    "y",
		TargetAudience: "nope",
		BudgetRange:    "nope",
		EstimatedTotal: -1,
	}

	errs := ValidateBundleCreate(input)
	assert.Len(t, errs, 6)
}

func TestValidateLineItem(t *testing.T) {
	item := structs.BundleProductInput{BasePrice: -1, Quantity: 0, Subtotal: -5}
	errs := ValidateLineItem(2, item)

	messages := make(map[string]string, len(errs))
	for _, e := range errs {
		messages[e.Field] = e.Message
	}

	assert.Equal(t, "L'identifiant du produit est requis", messages["products[2].id"])
	assert.Equal(t, "Le nom du produit est requis", messages["products[2].name"])
	assert.Equal(t, "Le prix de base doit être positif", messages["products[2].basePrice"])
	assert.Equal(t, "La quantité doit être d'au moins 1", messages["products[2].quantity"])
	assert.Equal(t, "Le sous-total doit être positif", messages["products[2].subtotal"])
}

func TestValidateLineItemQuantityCap(t *testing.T) {
	item := structs.BundleProductInput{ID: "p", Name: "p", BasePrice: 1, Quantity: 1001, Subtotal: 1001}
	errs := ValidateLineItem(0, item)
	require.Len(t, errs, 1)
	assert.Equal(t, "La quantité ne peut pas dépasser 1000", errs[0].Message)
}

func TestValidateBundleUpdateOnlySuppliedFields(t *testing.T) {
	// An empty patch on a valid id has nothing to complain about
	errs := ValidateBundleUpdate("pack-starter-ab12", &structs.BundleUpdateInput{})
	assert.Empty(t, errs)

	badName := "ab"
	errs = ValidateBundleUpdate("pack-starter-ab12", &structs.BundleUpdateInput{Name: &badName})
	require.Len(t, errs, 1)
	assert.Equal(t, "Le nom doit contenir au moins 3 caractères", errs[0].Message)
}

func TestValidateBundleUpdateRequiresID(t *testing.T) {
	errs := ValidateBundleUpdate("", &structs.BundleUpdateInput{})
	require.Len(t, errs, 1)
	assert.Equal(t, "L'identifiant du bundle est requis", errs[0].Message)
}

func TestValidateBundleUpdateDoesNotApplyDefaults(t *testing.T) {
	input := &structs.BundleUpdateInput{LastModified: &time.Time{}}
	_ = ValidateBundleUpdate("pack", input)
	assert.Nil(t, input.Popularity)
	assert.Nil(t, input.IsActive)
}
