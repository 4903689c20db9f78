package services

import (
	"ns2po_server/structs/tables"
	"time"
)

// staticBundles is the embedded fallback catalog served when the database is
// unreachable. The arithmetic (subtotals, savings, discount) is consistent
// with the validation rules so these records round-trip through the same API
// shapes as stored bundles.
var staticBundles = []tables.CampaignBundle{
	{
		ID:                 "pack-starter",
		Name:               "Pack Starter Local",
		Description:        "L'essentiel pour lancer une campagne de proximité : textile et goodies de base.",
		TargetAudience:     "local",
		BudgetRange:        "starter",
		EstimatedTotal:     8500,
		OriginalTotal:      floatPtr(10000),
		Savings:            1500,
		DiscountPercentage: 15,
		Popularity:         8,
		IsActive:           true,
		IsFeatured:         true,
		Tags:               tables.JSONStrings{"starter", "local", "textile"},
		DisplayOrder:       1,
		CreatedAt:          staticCatalogDate,
		UpdatedAt:          staticCatalogDate,
		Products: []tables.BundleProduct{
			{ProductID: "prod-tshirt", Name: "T-shirt personnalisé", BasePrice: 50, Quantity: 100, Subtotal: 5000, DisplayOrder: 0},
			{ProductID: "prod-casquette", Name: "Casquette brodée", BasePrice: 40, Quantity: 50, Subtotal: 2000, DisplayOrder: 1},
			{ProductID: "prod-stylo", Name: "Stylo publicitaire", BasePrice: 5, Quantity: 300, Subtotal: 1500, DisplayOrder: 2},
		},
	},
	{
		ID:                 "pack-croissance",
		Name:               "Pack Croissance Régional",
		Description:        "Visibilité renforcée à l'échelle régionale : textile, affichage et banderoles.",
		TargetAudience:     "regional",
		BudgetRange:        "medium",
		EstimatedTotal:     42500,
		OriginalTotal:      floatPtr(47000),
		Savings:            4500,
		DiscountPercentage: 10,
		Popularity:         7,
		IsActive:           true,
		IsFeatured:         true,
		Tags:               tables.JSONStrings{"regional", "affichage"},
		DisplayOrder:       2,
		CreatedAt:          staticCatalogDate,
		UpdatedAt:          staticCatalogDate,
		Products: []tables.BundleProduct{
			{ProductID: "prod-tshirt", Name: "T-shirt personnalisé", BasePrice: 50, Quantity: 500, Subtotal: 25000, DisplayOrder: 0},
			{ProductID: "prod-casquette", Name: "Casquette brodée", BasePrice: 40, Quantity: 200, Subtotal: 8000, DisplayOrder: 1},
			{ProductID: "prod-affiche", Name: "Affiche A2", BasePrice: 25, Quantity: 300, Subtotal: 7500, DisplayOrder: 2},
			{ProductID: "prod-banderole", Name: "Banderole grand format", BasePrice: 500, Quantity: 4, Subtotal: 2000, DisplayOrder: 3},
		},
	},
	{
		ID:                 "pack-national",
		Name:               "Pack National Premium",
		Description:        "Couverture nationale complète : gros volumes de textile, affichage et équipement militant.",
		TargetAudience:     "national",
		BudgetRange:        "premium",
		EstimatedTotal:     185000,
		OriginalTotal:      floatPtr(200000),
		Savings:            15000,
		DiscountPercentage: 8,
		Popularity:         9,
		IsActive:           true,
		IsFeatured:         true,
		Tags:               tables.JSONStrings{"national", "premium", "volume"},
		DisplayOrder:       3,
		CreatedAt:          staticCatalogDate,
		UpdatedAt:          staticCatalogDate,
		Products: []tables.BundleProduct{
			{ProductID: "prod-tshirt", Name: "T-shirt personnalisé", BasePrice: 50, Quantity: 2000, Subtotal: 100000, DisplayOrder: 0},
			{ProductID: "prod-casquette", Name: "Casquette brodée", BasePrice: 40, Quantity: 1000, Subtotal: 40000, DisplayOrder: 1},
			{ProductID: "prod-banderole", Name: "Banderole grand format", BasePrice: 500, Quantity: 40, Subtotal: 20000, DisplayOrder: 2},
			{ProductID: "prod-affiche", Name: "Affiche A2", BasePrice: 25, Quantity: 600, Subtotal: 15000, DisplayOrder: 3},
			{ProductID: "prod-gilet", Name: "Gilet de campagne", BasePrice: 100, Quantity: 100, Subtotal: 10000, DisplayOrder: 4},
		},
	},
}

var staticCatalogDate = time.Date(2024, 1, 15, 0, 0, 0, 0, time.UTC)

// StaticBundles returns a copy of the fallback catalog so callers can filter
// without mutating the package state.
func StaticBundles() []tables.CampaignBundle {
	out := make([]tables.CampaignBundle, len(staticBundles))
	copy(out, staticBundles)
	return out
}

// StaticBundleByID looks a bundle up in the fallback catalog.
func StaticBundleByID(id string) *tables.CampaignBundle {
	for i := range staticBundles {
		if staticBundles[i].ID == id {
			bundle := staticBundles[i]
			return &bundle
		}
	}
	return nil
}

func floatPtr(v float64) *float64 { return &v }
