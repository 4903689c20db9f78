package services

import (
	"context"
	"math"
	"ns2po_server/database"
	"ns2po_server/lib"
	"ns2po_server/structs"
	"ns2po_server/structs/tables"
	"testing"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildUpdateMapOnlyTouchedFields(t *testing.T) {
	bs := &BundleService{}

	name := "Pack renommé"
	active := false
	input := &structs.BundleUpdateInput{
		Name:     &name,
		IsActive: &active,
	}

	updateData := bs.buildUpdateMap(input)
	assert.Equal(t, map[string]any{
		"name":      "Pack renommé",
		"is_active": false,
	}, updateData)
}

func TestBuildUpdateMapEmptyPatch(t *testing.T) {
	bs := &BundleService{}
	assert.Empty(t, bs.buildUpdateMap(&structs.BundleUpdateInput{}))
}

func TestBuildUpdateMapZeroValuesAreWritten(t *testing.T) {
	bs := &BundleService{}

	// An explicit zero is a real write, not an omission
	popularity := 0
	tags := []string{}
	input := &structs.BundleUpdateInput{
		Popularity: &popularity,
		Tags:       tags,
	}

	updateData := bs.buildUpdateMap(input)
	assert.Equal(t, 0, updateData["popularity"])
	assert.Equal(t, tables.JSONStrings{}, updateData["tags"])
}

func storedBundle() *tables.CampaignBundle {
	original := 10000.0
	return &tables.CampaignBundle{
		ID:             "pack-starter-ab12",
		Name:           "Pack Starter",
		Description:    "Pack de démarrage pour campagne locale",
		TargetAudience: "local",
		BudgetRange:    "starter",
		EstimatedTotal: 8500,
		OriginalTotal:  &original,
		Popularity:     8,
		IsActive:       true,
		IsFeatured:     true,
		Tags:           tables.JSONStrings{"starter"},
		Products: []tables.BundleProduct{
			{ProductID: "prod-tshirt", Name: "T-shirt", BasePrice: 50, Quantity: 100, Subtotal: 5000},
			{ProductID: "prod-affiche", Name: "Affiche", BasePrice: 25, Quantity: 140, Subtotal: 3500},
		},
	}
}

func TestMergeBundleInputOverlaysSuppliedFields(t *testing.T) {
	current := storedBundle()

	name := "Pack Starter Plus"
	estimated := 9000.0
	input := &structs.BundleUpdateInput{
		Name:           &name,
		EstimatedTotal: &estimated,
	}

	merged := mergeBundleInput(current, input)
	assert.Equal(t, "Pack Starter Plus", merged.Name)
	assert.Equal(t, 9000.0, merged.EstimatedTotal)

	// Untouched fields come from the stored bundle
	assert.Equal(t, "local", merged.TargetAudience)
	assert.Equal(t, "starter", merged.BudgetRange)
	require.NotNil(t, merged.Popularity)
	assert.Equal(t, 8, *merged.Popularity)
	require.Len(t, merged.Products, 2)
	assert.Equal(t, "prod-tshirt", merged.Products[0].ID)
}

func TestMergeBundleInputReplacesProductList(t *testing.T) {
	current := storedBundle()

	products := []structs.BundleProductInput{
		{ID: "prod-stylo", Name: "Stylo", BasePrice: 5, Quantity: 100, Subtotal: 500},
	}
	input := &structs.BundleUpdateInput{Products: &products}

	merged := mergeBundleInput(current, input)
	require.Len(t, merged.Products, 1)
	assert.Equal(t, "prod-stylo", merged.Products[0].ID)
}

func TestBuildLineItemsPreservesOrder(t *testing.T) {
	products := []structs.BundleProductInput{
		{ID: "a", Name: "A", BasePrice: 1, Quantity: 1, Subtotal: 1},
		{ID: "b", Name: "B", BasePrice: 2, Quantity: 2, Subtotal: 4},
	}

	items := buildLineItems("bundle-1", products)
	require.Len(t, items, 2)
	for i, item := range items {
		assert.NotEmpty(t, item.ID)
		assert.Equal(t, "bundle-1", item.BundleID)
		assert.Equal(t, i, item.DisplayOrder)
	}
	assert.Equal(t, "a", items[0].ProductID)
	assert.Equal(t, "b", items[1].ProductID)
}

// The embedded fallback catalog must satisfy the same arithmetic the validator
// enforces on stored bundles, otherwise the degraded mode serves data the API
// would itself reject.
func TestStaticCatalogArithmeticIsConsistent(t *testing.T) {
	bundles := StaticBundles()
	require.Len(t, bundles, 3)

	for _, bundle := range bundles {
		var sum float64
		for _, item := range bundle.Products {
			assert.InDelta(t, float64(item.Quantity)*item.BasePrice, item.Subtotal, 0.01,
				"bundle %s line %s", bundle.ID, item.ProductID)
			sum += item.Subtotal
		}
		assert.InDelta(t, bundle.EstimatedTotal, sum, 0.01, "bundle %s total", bundle.ID)

		require.NotNil(t, bundle.OriginalTotal)
		assert.InDelta(t, *bundle.OriginalTotal-bundle.EstimatedTotal, bundle.Savings, 0.01,
			"bundle %s savings", bundle.ID)

		expectedDiscount := math.Round((*bundle.OriginalTotal - bundle.EstimatedTotal) / *bundle.OriginalTotal * 100)
		assert.Equal(t, expectedDiscount, bundle.DiscountPercentage, "bundle %s discount", bundle.ID)

		// Featured static bundles satisfy the featured business rule
		if bundle.IsFeatured {
			assert.GreaterOrEqual(t, bundle.Popularity, 7, "bundle %s popularity", bundle.ID)
			assert.True(t, bundle.IsActive, "bundle %s active", bundle.ID)
		}
	}
}

func TestStaticBundleByIDReturnsCopy(t *testing.T) {
	bundle := StaticBundleByID("pack-starter")
	require.NotNil(t, bundle)
	bundle.Name = "mutated"

	again := StaticBundleByID("pack-starter")
	assert.Equal(t, "Pack Starter Local", again.Name)

	assert.Nil(t, StaticBundleByID("missing"))
}

func TestNewValidationErrorJoinsMessages(t *testing.T) {
	err := &BundleValidationError{Messages: []string{"a", "b"}}
	assert.Equal(t, "a; b", err.Error())
}

func TestListCacheKeyDistinguishesFilterSets(t *testing.T) {
	bs := &BundleService{}

	base := func() *BundleListOptions {
		return &BundleListOptions{Page: 1, PageSize: 20, SortBy: "display_order", SortDirection: "ASC"}
	}

	// Same options, same key
	assert.Equal(t, bs.listCacheKey(base()), bs.listCacheKey(base()))

	// An unset pointer filter and an explicit value never share a key
	active := false
	withActive := base()
	withActive.IsActive = &active
	assert.NotEqual(t, bs.listCacheKey(base()), bs.listCacheKey(withActive))

	minPrice := 5000.0
	withPrice := base()
	withPrice.MinPrice = &minPrice
	assert.NotEqual(t, bs.listCacheKey(base()), bs.listCacheKey(withPrice))

	withTags := base()
	withTags.Tags = []string{"starter", "local"}
	assert.NotEqual(t, bs.listCacheKey(base()), bs.listCacheKey(withTags))

	secondPage := base()
	secondPage.Page = 2
	assert.NotEqual(t, bs.listCacheKey(base()), bs.listCacheKey(secondPage))
}

// bundleFixture wires a bundle service against an in-memory database. The
// cache client points at a closed port so every cache path degrades the same
// way it would with Redis down.
func bundleFixture(t *testing.T) (*BundleService, *database.DB) {
	t.Helper()

	db := openTestDB(t)
	cache := &CacheService{
		logger: gecho.NewDefaultLogger(),
		config: &structs.Config{Cache: &structs.CacheConfig{}},
		client: redis.NewClient(&redis.Options{
			Addr:        "127.0.0.1:1",
			DialTimeout: 50 * time.Millisecond,
			MaxRetries:  -1,
		}),
	}
	return NewBundleService(gecho.NewDefaultLogger(), db, cache), db
}

func validBundleInput() *structs.BundleCreateInput {
	return &structs.BundleCreateInput{
		Name:           "Pack Candidat Local",
		Description:    "Pack essentiel pour une campagne de proximité",
		TargetAudience: "local",
		BudgetRange:    "medium",
		Products: []structs.BundleProductInput{
			{ID: "prod-tshirt", Name: "T-shirt", BasePrice: 100, Quantity: 100, Subtotal: 10000},
		},
		EstimatedTotal: 10000,
	}
}

func TestCreateBundleDerivesPricingFromLineItems(t *testing.T) {
	svc, db := bundleFixture(t)
	ctx := context.Background()

	created, err := svc.CreateBundle(ctx, validBundleInput())
	require.NoError(t, err)

	// No explicit original total: it falls back to the sum of subtotals, so
	// an estimated total equal to that sum yields zero savings.
	require.NotNil(t, created.OriginalTotal)
	assert.Equal(t, 10000.0, *created.OriginalTotal)
	assert.Equal(t, 0.0, created.Savings)
	assert.Equal(t, 0.0, created.DiscountPercentage)

	// Schema defaults applied
	assert.Equal(t, 5, created.Popularity)
	assert.True(t, created.IsActive)
	assert.False(t, created.IsFeatured)

	stored, err := database.Query[tables.CampaignBundle](db).
		Where("id", created.ID).
		Relation("Products").
		First(ctx)
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.Equal(t, 0.0, stored.Savings)
	require.Len(t, stored.Products, 1)
	assert.Equal(t, "prod-tshirt", stored.Products[0].ProductID)
}

func TestUpdateBundleStaleLastModifiedConflicts(t *testing.T) {
	svc, _ := bundleFixture(t)
	ctx := context.Background()

	created, err := svc.CreateBundle(ctx, validBundleInput())
	require.NoError(t, err)

	name := "Pack Candidat Renommé"
	stale := created.UpdatedAt.Add(-time.Hour)
	_, err = svc.UpdateBundle(ctx, created.ID, &structs.BundleUpdateInput{
		Name:         &name,
		LastModified: &stale,
	})
	require.ErrorIs(t, err, lib.ErrVersionConflict)

	// A client holding the current version goes through
	fresh := created.UpdatedAt.Add(time.Hour)
	updated, err := svc.UpdateBundle(ctx, created.ID, &structs.BundleUpdateInput{
		Name:         &name,
		LastModified: &fresh,
	})
	require.NoError(t, err)
	assert.Equal(t, "Pack Candidat Renommé", updated.Name)
}

func seedOrder(t *testing.T, db *database.DB, bundleID, status string) {
	t.Helper()
	now := time.Now()
	_, err := db.NewInsert().Model(&tables.Order{
		ID:        uuid.New().String(),
		BundleID:  &bundleID,
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}).Exec(context.Background())
	require.NoError(t, err)
}

func TestDeleteBundleBlockedByActiveOrders(t *testing.T) {
	svc, db := bundleFixture(t)
	ctx := context.Background()

	created, err := svc.CreateBundle(ctx, validBundleInput())
	require.NoError(t, err)

	seedOrder(t, db, created.ID, "pending")
	seedOrder(t, db, created.ID, "pending")
	seedOrder(t, db, created.ID, "processing")
	seedOrder(t, db, created.ID, "delivered") // finished, never blocks

	_, err = svc.DeleteBundle(ctx, created.ID, structs.BundleDeleteOptions{CheckReferences: true})
	var conflict *structs.ReferenceConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, 3, conflict.ActiveOrders)
	assert.Equal(t, 0, conflict.ActiveQuotes)
	assert.Equal(t, "Utilisez forceDelete pour archiver les commandes et invalider les devis associés", conflict.Suggestion)

	// The guarded delete left the bundle untouched
	still, err := database.Query[tables.CampaignBundle](db).Where("id", created.ID).First(ctx)
	require.NoError(t, err)
	assert.NotNil(t, still)
}

func TestDeleteBundleForceArchivesReferences(t *testing.T) {
	svc, db := bundleFixture(t)
	ctx := context.Background()

	created, err := svc.CreateBundle(ctx, validBundleInput())
	require.NoError(t, err)

	seedOrder(t, db, created.ID, "pending")
	seedOrder(t, db, created.ID, "processing")
	seedOrder(t, db, created.ID, "delivered")

	_, err = db.NewInsert().Model(&tables.Quote{
		ID:        uuid.New().String(),
		BundleID:  &created.ID,
		Status:    "active",
		CreatedAt: time.Now(),
	}).Exec(ctx)
	require.NoError(t, err)

	result, err := svc.DeleteBundle(ctx, created.ID, structs.BundleDeleteOptions{ForceDelete: true})
	require.NoError(t, err)
	assert.True(t, result.Deleted)
	assert.Equal(t, 2, result.ArchivedOrders)
	assert.Equal(t, 1, result.InvalidatedQuotes)
	assert.Equal(t, 1, result.DeletedProducts)

	orders, err := database.Query[tables.Order](db).Where("bundle_id", created.ID).All(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 3)
	for _, order := range orders {
		if order.Status == "delivered" {
			assert.Nil(t, order.ArchivedReason)
			continue
		}
		assert.Equal(t, "archived", order.Status)
		require.NotNil(t, order.ArchivedReason)
		assert.Equal(t, "bundle_deleted", *order.ArchivedReason)
	}

	gone, err := database.Query[tables.CampaignBundle](db).Where("id", created.ID).First(ctx)
	require.NoError(t, err)
	assert.Nil(t, gone)

	items, err := database.Query[tables.BundleProduct](db).Where("bundle_id", created.ID).All(ctx)
	require.NoError(t, err)
	assert.Empty(t, items)
}
