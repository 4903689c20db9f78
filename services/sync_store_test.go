package services

import (
	"context"
	"database/sql"
	"ns2po_server/database"
	"ns2po_server/structs/tables"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

// openTestDB builds an in-memory SQLite database with the full schema
// applied. One connection max: each :memory: connection is its own database.
func openTestDB(t *testing.T) *database.DB {
	t.Helper()

	sqldb, err := sql.Open(sqliteshim.ShimName, ":memory:")
	require.NoError(t, err)
	sqldb.SetMaxOpenConns(1)

	db := &database.DB{DB: bun.NewDB(sqldb, sqlitedialect.New())}
	require.NoError(t, db.EnsureSchema(context.Background()))
	t.Cleanup(func() { db.Close() })

	return db
}

func TestSyncStoreUpsertProductKeyedOnAirtableID(t *testing.T) {
	db := openTestDB(t)
	store := NewSyncStore(db)
	ctx := context.Background()

	airtableID := "recA"
	now := time.Now()
	require.NoError(t, store.UpsertProduct(ctx, &tables.Product{
		ID:          uuid.New().String(),
		AirtableID:  &airtableID,
		Name:        "T-shirt",
		BasePrice:   50,
		MinQuantity: 10,
		MaxQuantity: 500,
		IsActive:    true,
		LastSync:    &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}))

	// Same Airtable record again with changed fields must update, not insert
	require.NoError(t, store.UpsertProduct(ctx, &tables.Product{
		ID:          uuid.New().String(),
		AirtableID:  &airtableID,
		Name:        "T-shirt premium",
		BasePrice:   60,
		MinQuantity: 10,
		MaxQuantity: 500,
		IsActive:    true,
		LastSync:    &now,
		CreatedAt:   now,
		UpdatedAt:   now,
	}))

	count, err := store.CountProducts(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	product, err := database.Query[tables.Product](db).Where("airtable_id", airtableID).First(ctx)
	require.NoError(t, err)
	require.NotNil(t, product)
	assert.Equal(t, "T-shirt premium", product.Name)
	assert.Equal(t, 60.0, product.BasePrice)
}

func TestSyncStoreUpsertCategoryKeyedOnAirtableID(t *testing.T) {
	db := openTestDB(t)
	store := NewSyncStore(db)
	ctx := context.Background()

	airtableID := "recC"
	require.NoError(t, store.UpsertCategory(ctx, &tables.Category{
		ID:         uuid.New().String(),
		AirtableID: &airtableID,
		Name:       "Textile",
		Slug:       "textile",
		IsActive:   true,
	}))
	require.NoError(t, store.UpsertCategory(ctx, &tables.Category{
		ID:         uuid.New().String(),
		AirtableID: &airtableID,
		Name:       "Textile & Goodies",
		Slug:       "textile-goodies",
		IsActive:   true,
	}))

	categories, err := database.Query[tables.Category](db).All(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
	assert.Equal(t, "textile-goodies", categories[0].Slug)
}

func TestSyncStoreUpsertRealisationKeyedOnAirtableID(t *testing.T) {
	db := openTestDB(t)
	store := NewSyncStore(db)
	ctx := context.Background()

	airtableID := "recR"
	require.NoError(t, store.UpsertRealisation(ctx, &tables.Realisation{
		ID:                  uuid.New().String(),
		AirtableID:          &airtableID,
		Title:               "Campagne municipale",
		CloudinaryPublicIDs: tables.JSONStrings{"ns2po/r1"},
		ProductIDs:          tables.JSONStrings{},
		Tags:                tables.JSONStrings{},
		IsActive:            true,
		Source:              "airtable",
	}))
	require.NoError(t, store.UpsertRealisation(ctx, &tables.Realisation{
		ID:                  uuid.New().String(),
		AirtableID:          &airtableID,
		Title:               "Campagne municipale 2023",
		CloudinaryPublicIDs: tables.JSONStrings{"ns2po/r1", "ns2po/r2"},
		ProductIDs:          tables.JSONStrings{},
		Tags:                tables.JSONStrings{},
		IsActive:            true,
		Source:              "airtable",
	}))

	realisations, err := database.Query[tables.Realisation](db).All(ctx)
	require.NoError(t, err)
	require.Len(t, realisations, 1)
	assert.Equal(t, "Campagne municipale 2023", realisations[0].Title)
	assert.Equal(t, tables.JSONStrings{"ns2po/r1", "ns2po/r2"}, realisations[0].CloudinaryPublicIDs)
}

func TestSyncStoreWatermarkIgnoresDryRuns(t *testing.T) {
	db := openTestDB(t)
	store := NewSyncStore(db)
	ctx := context.Background()

	real := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	dry := real.Add(2 * time.Hour)
	require.NoError(t, store.RecordSyncRun(ctx, &tables.SyncStatus{EntityType: "products", LastSync: real}))
	require.NoError(t, store.RecordSyncRun(ctx, &tables.SyncStatus{EntityType: "products", DryRun: true, LastSync: dry}))
	require.NoError(t, store.RecordSyncRun(ctx, &tables.SyncStatus{EntityType: "categories", LastSync: dry}))

	watermark, err := store.Watermark(ctx, "products")
	require.NoError(t, err)
	assert.True(t, watermark.Equal(real))

	// Never-synced entities have a zero watermark
	watermark, err = store.Watermark(ctx, "realisations")
	require.NoError(t, err)
	assert.True(t, watermark.IsZero())
}
