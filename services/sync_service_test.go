package services

import (
	"context"
	"ns2po_server/airtable"
	"ns2po_server/structs"
	"ns2po_server/structs/tables"
	"testing"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSyncStore struct {
	watermark time.Time

	existingProducts     map[string]bool
	existingCategories   map[string]bool
	existingRealisations map[string]bool

	upsertedProducts     []*tables.Product
	upsertedCategories   []*tables.Category
	upsertedRealisations []*tables.Realisation

	usageProducts []tables.Product
	productCount  int
	staleCount    int
	failureCount  int

	runs []*tables.SyncStatus
}

func (f *fakeSyncStore) Watermark(ctx context.Context, entityType string) (time.Time, error) {
	return f.watermark, nil
}

func (f *fakeSyncStore) HasProduct(ctx context.Context, airtableID string) (bool, error) {
	return f.existingProducts[airtableID], nil
}

func (f *fakeSyncStore) HasCategory(ctx context.Context, airtableID string) (bool, error) {
	return f.existingCategories[airtableID], nil
}

func (f *fakeSyncStore) HasRealisation(ctx context.Context, airtableID string) (bool, error) {
	return f.existingRealisations[airtableID], nil
}

func (f *fakeSyncStore) UpsertProduct(ctx context.Context, product *tables.Product) error {
	f.upsertedProducts = append(f.upsertedProducts, product)
	return nil
}

func (f *fakeSyncStore) UpsertCategory(ctx context.Context, category *tables.Category) error {
	f.upsertedCategories = append(f.upsertedCategories, category)
	return nil
}

func (f *fakeSyncStore) UpsertRealisation(ctx context.Context, realisation *tables.Realisation) error {
	f.upsertedRealisations = append(f.upsertedRealisations, realisation)
	return nil
}

func (f *fakeSyncStore) ProductsForUsageSync(ctx context.Context) ([]tables.Product, error) {
	return f.usageProducts, nil
}

func (f *fakeSyncStore) CountProducts(ctx context.Context) (int, error) {
	return f.productCount, nil
}

func (f *fakeSyncStore) CountStaleProducts(ctx context.Context, olderThan time.Time) (int, error) {
	return f.staleCount, nil
}

func (f *fakeSyncStore) RecentSyncFailures(ctx context.Context, since time.Time) (int, error) {
	return f.failureCount, nil
}

func (f *fakeSyncStore) RecordSyncRun(ctx context.Context, status *tables.SyncStatus) error {
	f.runs = append(f.runs, status)
	return nil
}

type tableAwareAirtable struct {
	fakeAirtableAPI
	byTable map[string][]airtable.Record
}

func (f *tableAwareAirtable) ListRecords(ctx context.Context, table, formula string) ([]airtable.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.byTable[table], nil
}

func syncFixture(store *fakeSyncStore, api AirtableAPI) *SyncService {
	cfg := &structs.Config{Sync: &structs.SyncConfig{BatchSize: 10, MaxConcurrent: 2}}
	return NewSyncService(gecho.NewDefaultLogger(), cfg, store, api, nil)
}

func TestSyncFromAirtableUpserts(t *testing.T) {
	store := &fakeSyncStore{}
	api := &tableAwareAirtable{byTable: map[string][]airtable.Record{
		"Products": {
			{ID: "recA", Fields: map[string]any{
				"Name": "T-shirt", "Reference": "TS-01", "Category": "textile",
				"BasePrice": 50.0, "MinQuantity": 10.0, "IsActive": true,
			}},
		},
		"Categories": {
			{ID: "recC", Fields: map[string]any{"Name": "Textile & Goodies", "IsActive": true}},
		},
		"Realisations": {
			{ID: "recR", Fields: map[string]any{
				"Title":               "Campagne municipale 2023",
				"CloudinaryPublicIds": []any{"ns2po/r1", "ns2po/r2"},
				"IsActive":            true,
			}},
		},
	}}
	svc := syncFixture(store, api)

	result, err := svc.SyncFromAirtable(context.Background(), &structs.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, result.RecordsSynced)
	assert.Equal(t, 0, result.RecordsFailed)
	assert.Empty(t, result.Changes)

	require.Len(t, store.upsertedProducts, 1)
	product := store.upsertedProducts[0]
	assert.Equal(t, "T-shirt", product.Name)
	assert.Equal(t, "recA", *product.AirtableID)
	assert.Equal(t, 50.0, product.BasePrice)
	assert.Equal(t, 10, product.MinQuantity)

	require.Len(t, store.upsertedCategories, 1)
	assert.Equal(t, "textile-goodies", store.upsertedCategories[0].Slug)

	require.Len(t, store.upsertedRealisations, 1)
	assert.Equal(t, tables.JSONStrings{"ns2po/r1", "ns2po/r2"}, store.upsertedRealisations[0].CloudinaryPublicIDs)
	assert.Equal(t, "airtable", store.upsertedRealisations[0].Source)

	// One run per entity type, each with its own counts
	require.Len(t, store.runs, 3)
	recorded := map[string]int{}
	for _, run := range store.runs {
		recorded[run.EntityType] = run.RecordsSynced
		assert.False(t, run.DryRun)
	}
	assert.Equal(t, map[string]int{"products": 1, "categories": 1, "realisations": 1}, recorded)
}

// recordedWatermarkStore derives the per-entity watermark from the runs it has
// recorded, the way the real store reads sync_status back.
type recordedWatermarkStore struct {
	fakeSyncStore
}

func (f *recordedWatermarkStore) Watermark(ctx context.Context, entityType string) (time.Time, error) {
	var latest time.Time
	for _, run := range f.runs {
		if run.EntityType == entityType && !run.DryRun && run.LastSync.After(latest) {
			latest = run.LastSync
		}
	}
	return latest, nil
}

// watermarkAwareAirtable only returns records for an unfiltered listing; any
// IS_AFTER watermark clause means nothing changed since the last run.
type watermarkAwareAirtable struct {
	fakeAirtableAPI
	byTable map[string][]airtable.Record
}

func (f *watermarkAwareAirtable) ListRecords(ctx context.Context, table, formula string) ([]airtable.Record, error) {
	if formula != "" {
		return nil, nil
	}
	return f.byTable[table], nil
}

func TestSyncFromAirtableSecondRunSyncsNothing(t *testing.T) {
	store := &recordedWatermarkStore{}
	api := &watermarkAwareAirtable{byTable: map[string][]airtable.Record{
		"Products":     {{ID: "recA", Fields: map[string]any{"Name": "T-shirt"}}},
		"Categories":   {{ID: "recC", Fields: map[string]any{"Name": "Textile"}}},
		"Realisations": {{ID: "recR", Fields: map[string]any{"Title": "Campagne"}}},
	}}
	cfg := &structs.Config{Sync: &structs.SyncConfig{BatchSize: 10, MaxConcurrent: 2}}
	svc := NewSyncService(gecho.NewDefaultLogger(), cfg, store, api, nil)

	first, err := svc.SyncFromAirtable(context.Background(), &structs.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 3, first.RecordsSynced)

	second, err := svc.SyncFromAirtable(context.Background(), &structs.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 0, second.RecordsSynced)
	assert.Equal(t, 0, second.RecordsFailed)
	assert.Empty(t, second.Errors)
}

func TestSyncFromAirtableDryRunCollectsChangesWithoutWriting(t *testing.T) {
	store := &fakeSyncStore{existingProducts: map[string]bool{"recOld": true}}
	api := &tableAwareAirtable{byTable: map[string][]airtable.Record{
		"Products": {
			{ID: "recOld", Fields: map[string]any{"Name": "Casquette"}},
			{ID: "recNew", Fields: map[string]any{"Name": "Gilet"}},
		},
	}}
	svc := syncFixture(store, api)

	result, err := svc.SyncFromAirtable(context.Background(), &structs.SyncOptions{DryRun: true, Category: "textile"})
	require.NoError(t, err)
	assert.True(t, result.DryRun)
	assert.Empty(t, store.upsertedProducts)

	require.Len(t, result.Changes, 2)
	assert.Equal(t, "update", result.Changes[0].Action)
	assert.Equal(t, "recOld", result.Changes[0].ExternalID)
	assert.Equal(t, "insert", result.Changes[1].Action)
	assert.Equal(t, "Gilet", result.Changes[1].Name)
}

func TestSyncFromAirtableIsolatesBadRecords(t *testing.T) {
	store := &fakeSyncStore{}
	api := &tableAwareAirtable{byTable: map[string][]airtable.Record{
		"Products": {
			{ID: "recBad", Fields: map[string]any{}},
			{ID: "recOk", Fields: map[string]any{"Name": "Stylo"}},
		},
	}}
	svc := syncFixture(store, api)

	result, err := svc.SyncFromAirtable(context.Background(), &structs.SyncOptions{Category: "goodies"})
	require.NoError(t, err)
	assert.Equal(t, 1, result.RecordsSynced)
	assert.Equal(t, 1, result.RecordsFailed)
	require.Len(t, result.Errors, 1)
	assert.Contains(t, result.Errors[0], "products/recBad")
}

func TestSyncFromAirtableCategoryFilterSkipsOtherEntities(t *testing.T) {
	store := &fakeSyncStore{}
	api := &tableAwareAirtable{byTable: map[string][]airtable.Record{
		"Categories":   {{ID: "recC", Fields: map[string]any{"Name": "Textile"}}},
		"Realisations": {{ID: "recR", Fields: map[string]any{"Title": "Campagne"}}},
	}}
	svc := syncFixture(store, api)

	_, err := svc.SyncFromAirtable(context.Background(), &structs.SyncOptions{Category: "textile"})
	require.NoError(t, err)
	assert.Empty(t, store.upsertedCategories)
	assert.Empty(t, store.upsertedRealisations)
}

func TestBuildFormula(t *testing.T) {
	watermark := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	svc := syncFixture(&fakeSyncStore{watermark: watermark}, &fakeAirtableAPI{})

	formula, err := svc.buildFormula(context.Background(), "products", &structs.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, "IS_AFTER(LAST_MODIFIED_TIME(), '2024-06-01T12:00:00Z')", formula)

	formula, err = svc.buildFormula(context.Background(), "products", &structs.SyncOptions{Category: "textile"})
	require.NoError(t, err)
	assert.Equal(t, "AND(IS_AFTER(LAST_MODIFIED_TIME(), '2024-06-01T12:00:00Z'), {Category} = 'textile')", formula)

	// Full sync ignores the watermark
	formula, err = svc.buildFormula(context.Background(), "products", &structs.SyncOptions{FullSync: true, Category: "textile"})
	require.NoError(t, err)
	assert.Equal(t, "{Category} = 'textile'", formula)

	// No watermark yet means no clause at all
	svc = syncFixture(&fakeSyncStore{}, &fakeAirtableAPI{})
	formula, err = svc.buildFormula(context.Background(), "products", &structs.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, "", formula)
}

func TestSyncUsageStats(t *testing.T) {
	airtableID := "recA"
	store := &fakeSyncStore{usageProducts: []tables.Product{
		{Name: "T-shirt", AirtableID: &airtableID, UsageCount: 42},
		{Name: "Local only", UsageCount: 7}, // never mirrored, skipped
	}}
	api := &fakeAirtableAPI{}
	svc := syncFixture(store, api)

	result, err := svc.SyncUsageStats(context.Background(), &structs.SyncOptions{})
	require.NoError(t, err)
	assert.Equal(t, 1, result.RecordsSynced)
	assert.Equal(t, DirectionTursoToAirtable, result.Direction)

	require.Len(t, api.updates, 1)
	assert.Equal(t, map[string]any{"UsageCount": 42}, api.updates[0])
}

func TestSyncUsageStatsDryRun(t *testing.T) {
	airtableID := "recA"
	store := &fakeSyncStore{usageProducts: []tables.Product{
		{Name: "T-shirt", AirtableID: &airtableID, UsageCount: 42},
	}}
	api := &fakeAirtableAPI{}
	svc := syncFixture(store, api)

	result, err := svc.SyncUsageStats(context.Background(), &structs.SyncOptions{DryRun: true})
	require.NoError(t, err)
	assert.Empty(t, api.updates)
	require.Len(t, result.Changes, 1)
	assert.Equal(t, "update", result.Changes[0].Action)
}

func TestHealthCheck(t *testing.T) {
	store := &fakeSyncStore{
		productCount: 48,
		staleCount:   3,
		failureCount: 2,
		watermark:    time.Now().Add(-2 * time.Hour),
	}
	api := &fakeAirtableAPI{count: 50}
	svc := syncFixture(store, api)

	health, err := svc.HealthCheck(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 50, health.AirtableCount)
	assert.Equal(t, 48, health.TursoCount)
	assert.Equal(t, 2, health.CountDifference)
	assert.Equal(t, 2, health.RecentErrors)
	assert.Equal(t, 3, health.StaleRecords)

	// 100 - 10 (failures) - 6 (stale) + 10 (fresh sync) = 94
	assert.Equal(t, 94, health.Score)
	assert.NotEmpty(t, health.Recommendations)
}

func TestComputeHealthScore(t *testing.T) {
	fresh := time.Now().Add(-1 * time.Hour)
	old := time.Now().Add(-48 * time.Hour)

	assert.Equal(t, 100, computeHealthScore(0, 0, fresh)) // capped at 100
	assert.Equal(t, 100, computeHealthScore(0, 0, old))
	assert.Equal(t, 90, computeHealthScore(2, 0, old))
	assert.Equal(t, 70, computeHealthScore(100, 0, old)) // failure penalty capped at 30
	assert.Equal(t, 60, computeHealthScore(0, 100, old)) // staleness penalty capped at 40
	assert.Equal(t, 40, computeHealthScore(100, 100, fresh))
	assert.Equal(t, 30, computeHealthScore(100, 100, old))
	assert.Equal(t, 30, computeHealthScore(100, 100, time.Time{}))
}
