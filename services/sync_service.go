package services

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"ns2po_server/airtable"
	"ns2po_server/database"
	"ns2po_server/lib"
	"ns2po_server/structs"
	"ns2po_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Airtable table names of the synchronized entities.
const (
	airtableProductsTable     = "Products"
	airtableCategoriesTable   = "Categories"
	airtableRealisationsTable = "Realisations"
)

// Sync directions accepted by the admin trigger endpoint.
const (
	DirectionAirtableToTurso = "airtable-to-turso"
	DirectionTursoToAirtable = "turso-to-airtable"
)

// AirtableAPI is the slice of the Airtable client the sync engine uses.
// Narrowed to an interface so tests can run against a fake.
type AirtableAPI interface {
	ListRecords(ctx context.Context, table, formula string) ([]airtable.Record, error)
	UpdateRecord(ctx context.Context, table, recordID string, fields map[string]any) error
	CountRecords(ctx context.Context, table, formula string) (int, error)
}

// SyncStore is the persistence surface of the sync engine.
type SyncStore interface {
	Watermark(ctx context.Context, entityType string) (time.Time, error)
	HasProduct(ctx context.Context, airtableID string) (bool, error)
	HasCategory(ctx context.Context, airtableID string) (bool, error)
	HasRealisation(ctx context.Context, airtableID string) (bool, error)
	UpsertProduct(ctx context.Context, product *tables.Product) error
	UpsertCategory(ctx context.Context, category *tables.Category) error
	UpsertRealisation(ctx context.Context, realisation *tables.Realisation) error
	ProductsForUsageSync(ctx context.Context) ([]tables.Product, error)
	CountProducts(ctx context.Context) (int, error)
	CountStaleProducts(ctx context.Context, olderThan time.Time) (int, error)
	RecentSyncFailures(ctx context.Context, since time.Time) (int, error)
	RecordSyncRun(ctx context.Context, status *tables.SyncStatus) error
}

// SyncService reconciles the Airtable source of truth with the Turso serving
// store, differentially in both directions.
type SyncService struct {
	logger   *gecho.Logger
	config   *structs.Config
	store    SyncStore
	airtable AirtableAPI
	cache    *CacheService
}

func NewSyncService(logger *gecho.Logger, cfg *structs.Config, store SyncStore, api AirtableAPI, cache *CacheService) *SyncService {
	return &SyncService{
		logger:   logger,
		config:   cfg,
		store:    store,
		airtable: api,
		cache:    cache,
	}
}

// SyncFromAirtable pulls records modified since the per-entity watermark and
// upserts them into Turso. Record failures are isolated: one bad record is
// counted and reported, the rest of the batch proceeds. In dry-run mode the
// intended changes are collected instead of written.
func (ss *SyncService) SyncFromAirtable(ctx context.Context, opts *structs.SyncOptions) (*structs.SyncResult, error) {
	startedAt := time.Now()

	if opts == nil {
		opts = &structs.SyncOptions{}
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = ss.config.Sync.BatchSize
	}

	result := &structs.SyncResult{
		Direction: DirectionAirtableToTurso,
		DryRun:    opts.DryRun,
		StartedAt: startedAt,
	}

	ss.runEntitySync(ctx, "products", ss.syncProducts, opts, result, startedAt)
	if opts.Category == "" {
		ss.runEntitySync(ctx, "categories", ss.syncCategories, opts, result, startedAt)
		ss.runEntitySync(ctx, "realisations", ss.syncRealisations, opts, result, startedAt)
	}

	result.Duration = time.Since(startedAt)

	if !opts.DryRun && result.RecordsSynced > 0 && ss.cache != nil {
		if err := ss.cache.InvalidateProductCaches(); err != nil {
			ss.logger.Warn("Failed to invalidate product caches after sync", gecho.Field("error", err))
		}
	}

	ss.logger.Info("Airtable sync finished",
		gecho.Field("synced", result.RecordsSynced),
		gecho.Field("failed", result.RecordsFailed),
		gecho.Field("dry_run", opts.DryRun),
		gecho.Field("duration", result.Duration),
	)
	return result, nil
}

// runEntitySync runs one entity's differential pass and records its own
// sync_status row with that entity's counts. Each entity type keeps an
// independent watermark this way; a run that only touches products must not
// advance the categories or realisations watermark and vice versa.
func (ss *SyncService) runEntitySync(
	ctx context.Context,
	entityType string,
	sync func(context.Context, *structs.SyncOptions, *structs.SyncResult),
	opts *structs.SyncOptions,
	result *structs.SyncResult,
	startedAt time.Time,
) {
	beforeSynced := result.RecordsSynced
	beforeFailed := result.RecordsFailed
	beforeErrors := len(result.Errors)

	sync(ctx, opts, result)

	details := ""
	if entityErrors := result.Errors[beforeErrors:]; len(entityErrors) > 0 {
		if data, err := json.Marshal(entityErrors); err == nil {
			details = string(data)
		}
	}

	err := ss.store.RecordSyncRun(ctx, &tables.SyncStatus{
		EntityType:    entityType,
		RecordsSynced: result.RecordsSynced - beforeSynced,
		RecordsFailed: result.RecordsFailed - beforeFailed,
		DurationMs:    time.Since(startedAt).Milliseconds(),
		DryRun:        opts.DryRun,
		Details:       details,
		LastSync:      startedAt,
	})
	if err != nil {
		ss.logger.Warn("Failed to record sync run",
			gecho.Field("entity", entityType), gecho.Field("error", err))
	}
}

func (ss *SyncService) syncProducts(ctx context.Context, opts *structs.SyncOptions, result *structs.SyncResult) {
	formula, err := ss.buildFormula(ctx, "products", opts)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("products: %v", err))
		return
	}

	records, err := ss.airtable.ListRecords(ctx, airtableProductsTable, formula)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("products: %v", err))
		return
	}

	now := time.Now()
	for _, batch := range chunkRecords(records, opts.BatchSize) {
		for _, rec := range batch {
			if err := ss.applyProductRecord(ctx, rec, now, opts.DryRun, result); err != nil {
				result.RecordsFailed++
				result.Errors = append(result.Errors, fmt.Sprintf("products/%s: %v", rec.ID, err))
				continue
			}
			result.RecordsSynced++
		}
	}
}

func (ss *SyncService) applyProductRecord(ctx context.Context, rec airtable.Record, now time.Time, dryRun bool, result *structs.SyncResult) error {
	name := rec.StringField("Name")
	if name == "" {
		return fmt.Errorf("record has no name")
	}

	if dryRun {
		action, err := ss.dryRunAction(ctx, ss.store.HasProduct, rec.ID)
		if err != nil {
			return err
		}
		result.Changes = append(result.Changes, structs.SyncChange{
			Action:     action,
			EntityType: "products",
			ExternalID: rec.ID,
			Name:       name,
		})
		return nil
	}

	airtableID := rec.ID
	lastSync := now
	product := &tables.Product{
		ID:          uuid.New().String(),
		AirtableID:  &airtableID,
		Name:        name,
		Reference:   rec.StringField("Reference"),
		Category:    rec.StringField("Category"),
		Description: rec.StringField("Description"),
		BasePrice:   rec.FloatField("BasePrice"),
		MinQuantity: rec.IntField("MinQuantity"),
		MaxQuantity: rec.IntField("MaxQuantity"),
		ImageURL:    rec.StringField("ImageURL"),
		IsActive:    rec.BoolField("IsActive"),
		LastSync:    &lastSync,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if product.MinQuantity < 1 {
		product.MinQuantity = 1
	}

	return ss.store.UpsertProduct(ctx, product)
}

func (ss *SyncService) syncCategories(ctx context.Context, opts *structs.SyncOptions, result *structs.SyncResult) {
	formula, err := ss.buildFormula(ctx, "categories", opts)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("categories: %v", err))
		return
	}

	records, err := ss.airtable.ListRecords(ctx, airtableCategoriesTable, formula)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("categories: %v", err))
		return
	}

	now := time.Now()
	for _, rec := range records {
		name := rec.StringField("Name")
		if name == "" {
			result.RecordsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("categories/%s: record has no name", rec.ID))
			continue
		}

		if opts.DryRun {
			action, err := ss.dryRunAction(ctx, ss.store.HasCategory, rec.ID)
			if err != nil {
				result.RecordsFailed++
				result.Errors = append(result.Errors, fmt.Sprintf("categories/%s: %v", rec.ID, err))
				continue
			}
			result.Changes = append(result.Changes, structs.SyncChange{
				Action:     action,
				EntityType: "categories",
				ExternalID: rec.ID,
				Name:       name,
			})
			result.RecordsSynced++
			continue
		}

		airtableID := rec.ID
		lastSync := now
		category := &tables.Category{
			ID:           uuid.New().String(),
			AirtableID:   &airtableID,
			Name:         name,
			Slug:         lib.Slugify(name),
			Description:  rec.StringField("Description"),
			DisplayOrder: rec.IntField("DisplayOrder"),
			IsActive:     rec.BoolField("IsActive"),
			LastSync:     &lastSync,
		}
		if err := ss.store.UpsertCategory(ctx, category); err != nil {
			result.RecordsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("categories/%s: %v", rec.ID, err))
			continue
		}
		result.RecordsSynced++
	}
}

func (ss *SyncService) syncRealisations(ctx context.Context, opts *structs.SyncOptions, result *structs.SyncResult) {
	formula, err := ss.buildFormula(ctx, "realisations", opts)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("realisations: %v", err))
		return
	}

	records, err := ss.airtable.ListRecords(ctx, airtableRealisationsTable, formula)
	if err != nil {
		result.Errors = append(result.Errors, fmt.Sprintf("realisations: %v", err))
		return
	}

	for _, rec := range records {
		title := rec.StringField("Title")
		if title == "" {
			result.RecordsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("realisations/%s: record has no title", rec.ID))
			continue
		}

		if opts.DryRun {
			action, err := ss.dryRunAction(ctx, ss.store.HasRealisation, rec.ID)
			if err != nil {
				result.RecordsFailed++
				result.Errors = append(result.Errors, fmt.Sprintf("realisations/%s: %v", rec.ID, err))
				continue
			}
			result.Changes = append(result.Changes, structs.SyncChange{
				Action:     action,
				EntityType: "realisations",
				ExternalID: rec.ID,
				Name:       title,
			})
			result.RecordsSynced++
			continue
		}

		airtableID := rec.ID
		realisation := &tables.Realisation{
			ID:                  uuid.New().String(),
			AirtableID:          &airtableID,
			Title:               title,
			Description:         rec.StringField("Description"),
			CloudinaryPublicIDs: stringListField(rec, "CloudinaryPublicIds"),
			ProductIDs:          stringListField(rec, "ProductIds"),
			Tags:                stringListField(rec, "Tags"),
			IsFeatured:          rec.BoolField("IsFeatured"),
			DisplayOrder:        rec.IntField("DisplayOrder"),
			IsActive:            rec.BoolField("IsActive"),
			Source:              "airtable",
		}
		if err := ss.store.UpsertRealisation(ctx, realisation); err != nil {
			result.RecordsFailed++
			result.Errors = append(result.Errors, fmt.Sprintf("realisations/%s: %v", rec.ID, err))
			continue
		}
		result.RecordsSynced++
	}
}

// SyncUsageStats pushes per-product usage counters back to Airtable, the only
// write in the reverse direction. Batches are throttled with a configurable
// delay so the Airtable rate limit is never hit.
func (ss *SyncService) SyncUsageStats(ctx context.Context, opts *structs.SyncOptions) (*structs.SyncResult, error) {
	startedAt := time.Now()

	if opts == nil {
		opts = &structs.SyncOptions{}
	}
	if opts.BatchSize < 1 {
		opts.BatchSize = ss.config.Sync.BatchSize
	}

	result := &structs.SyncResult{
		Direction: DirectionTursoToAirtable,
		DryRun:    opts.DryRun,
		StartedAt: startedAt,
	}

	products, err := ss.store.ProductsForUsageSync(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load products for usage sync: %w", err)
	}

	for batchIndex, batch := range chunkProducts(products, opts.BatchSize) {
		if batchIndex > 0 && ss.config.Sync.UsageStatsDelay > 0 {
			select {
			case <-ctx.Done():
				result.Errors = append(result.Errors, ctx.Err().Error())
				result.Duration = time.Since(startedAt)
				return result, nil
			case <-time.After(ss.config.Sync.UsageStatsDelay):
			}
		}

		for _, product := range batch {
			if product.AirtableID == nil {
				continue
			}

			if opts.DryRun {
				result.Changes = append(result.Changes, structs.SyncChange{
					Action:     "update",
					EntityType: "products",
					ExternalID: *product.AirtableID,
					Name:       product.Name,
				})
				result.RecordsSynced++
				continue
			}

			err := ss.airtable.UpdateRecord(ctx, airtableProductsTable, *product.AirtableID, map[string]any{
				"UsageCount": product.UsageCount,
			})
			if err != nil {
				result.RecordsFailed++
				result.Errors = append(result.Errors, fmt.Sprintf("products/%s: %v", *product.AirtableID, err))
				continue
			}
			result.RecordsSynced++
		}
	}

	result.Duration = time.Since(startedAt)

	if err := ss.recordRun(ctx, "usage_stats", opts.DryRun, result, startedAt); err != nil {
		ss.logger.Warn("Failed to record usage stats sync run", gecho.Field("error", err))
	}

	ss.logger.Info("Usage stats sync finished",
		gecho.Field("synced", result.RecordsSynced),
		gecho.Field("failed", result.RecordsFailed),
		gecho.Field("dry_run", opts.DryRun),
		gecho.Field("duration", result.Duration),
	)
	return result, nil
}

// HealthCheck compares the two stores and scores the sync freshness. The
// score starts at 100, loses up to 30 points for recent failures and up to 40
// for stale records, and earns a 10 point bonus when the last sync is under
// 24 hours old.
func (ss *SyncService) HealthCheck(ctx context.Context) (*structs.SyncHealth, error) {
	health := &structs.SyncHealth{}

	airtableCount, err := ss.airtable.CountRecords(ctx, airtableProductsTable, "")
	if err != nil {
		ss.logger.Warn("Health check could not reach Airtable", gecho.Field("error", err))
		health.Recommendations = append(health.Recommendations, "Airtable injoignable, vérifiez la clé API")
	} else {
		health.AirtableCount = airtableCount
	}

	tursoCount, err := ss.store.CountProducts(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	health.TursoCount = tursoCount
	health.CountDifference = health.AirtableCount - tursoCount

	failures, err := ss.store.RecentSyncFailures(ctx, time.Now().Add(-24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to count recent sync failures: %w", err)
	}
	health.RecentErrors = failures

	stale, err := ss.store.CountStaleProducts(ctx, time.Now().Add(-7*24*time.Hour))
	if err != nil {
		return nil, fmt.Errorf("failed to count stale products: %w", err)
	}
	health.StaleRecords = stale

	lastSync, err := ss.store.Watermark(ctx, "products")
	if err != nil {
		return nil, fmt.Errorf("failed to read sync watermark: %w", err)
	}
	health.LastSync = lastSync

	health.Score = computeHealthScore(failures, stale, lastSync)

	if health.Score < 70 {
		health.Recommendations = append(health.Recommendations, "Lancez une synchronisation complète")
	}
	if stale > 0 {
		health.Recommendations = append(health.Recommendations, fmt.Sprintf("%d produits n'ont pas été synchronisés depuis 7 jours", stale))
	}
	if failures > 0 {
		health.Recommendations = append(health.Recommendations, "Consultez les erreurs des dernières synchronisations")
	}
	diff := health.CountDifference
	if diff < 0 {
		diff = -diff
	}
	switch {
	case diff > 10:
		health.Recommendations = append(health.Recommendations, "Audit des données requis")
	case diff > 5:
		health.Recommendations = append(health.Recommendations, "Synchronisation recommandée")
	}

	return health, nil
}

func computeHealthScore(recentFailures, staleRecords int, lastSync time.Time) int {
	score := 100
	score -= min(recentFailures*5, 30)
	score -= min(staleRecords*2, 40)
	if !lastSync.IsZero() && time.Since(lastSync) < 24*time.Hour {
		score += 10
	}
	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}
	return score
}

// buildFormula assembles the Airtable filterByFormula for a differential run:
// a last-modified watermark, optionally combined with a category filter.
func (ss *SyncService) buildFormula(ctx context.Context, entityType string, opts *structs.SyncOptions) (string, error) {
	var clauses []string

	if !opts.FullSync {
		watermark, err := ss.store.Watermark(ctx, entityType)
		if err != nil {
			return "", fmt.Errorf("failed to read watermark: %w", err)
		}
		if !watermark.IsZero() {
			clauses = append(clauses, fmt.Sprintf(
				"IS_AFTER(LAST_MODIFIED_TIME(), '%s')",
				watermark.UTC().Format(time.RFC3339),
			))
		}
	}

	if entityType == "products" && opts.Category != "" {
		clauses = append(clauses, fmt.Sprintf("{Category} = '%s'", opts.Category))
	}

	switch len(clauses) {
	case 0:
		return "", nil
	case 1:
		return clauses[0], nil
	default:
		return fmt.Sprintf("AND(%s, %s)", clauses[0], clauses[1]), nil
	}
}

func (ss *SyncService) dryRunAction(ctx context.Context, has func(context.Context, string) (bool, error), airtableID string) (string, error) {
	exists, err := has(ctx, airtableID)
	if err != nil {
		return "", err
	}
	if exists {
		return "update", nil
	}
	return "insert", nil
}

func (ss *SyncService) recordRun(ctx context.Context, entityType string, dryRun bool, result *structs.SyncResult, startedAt time.Time) error {
	details := ""
	if len(result.Errors) > 0 {
		if data, err := json.Marshal(result.Errors); err == nil {
			details = string(data)
		}
	}

	return ss.store.RecordSyncRun(ctx, &tables.SyncStatus{
		EntityType:    entityType,
		RecordsSynced: result.RecordsSynced,
		RecordsFailed: result.RecordsFailed,
		DurationMs:    result.Duration.Milliseconds(),
		DryRun:        dryRun,
		Details:       details,
		LastSync:      startedAt,
	})
}

func stringListField(rec airtable.Record, name string) tables.JSONStrings {
	raw, ok := rec.Fields[name].([]any)
	if !ok {
		return tables.JSONStrings{}
	}
	out := make(tables.JSONStrings, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out
}

func chunkRecords(records []airtable.Record, size int) [][]airtable.Record {
	if size < 1 {
		size = len(records)
	}
	var chunks [][]airtable.Record
	for start := 0; start < len(records); start += size {
		end := min(start+size, len(records))
		chunks = append(chunks, records[start:end])
	}
	return chunks
}

func chunkProducts(products []tables.Product, size int) [][]tables.Product {
	if size < 1 {
		size = len(products)
	}
	var chunks [][]tables.Product
	for start := 0; start < len(products); start += size {
		end := min(start+size, len(products))
		chunks = append(chunks, products[start:end])
	}
	return chunks
}

// ============================================================================
// Bun-backed store
// ============================================================================

// bunSyncStore is the production SyncStore on top of the Turso connection.
type bunSyncStore struct {
	db *database.DB
}

// NewSyncStore wraps the database handle in the SyncStore interface.
func NewSyncStore(db *database.DB) SyncStore {
	return &bunSyncStore{db: db}
}

func (s *bunSyncStore) Watermark(ctx context.Context, entityType string) (time.Time, error) {
	// bun.NullTime parses the TEXT timestamps SQLite returns for MAX();
	// sql.NullTime cannot scan them. NULL (never synced) stays zero time.
	var last bun.NullTime
	err := s.db.NewSelect().
		Model((*tables.SyncStatus)(nil)).
		ColumnExpr("MAX(last_sync)").
		Where("entity_type = ?", entityType).
		Where("dry_run = ?", false).
		Scan(ctx, &last)
	if err != nil {
		return time.Time{}, err
	}
	return last.Time, nil
}

func (s *bunSyncStore) HasProduct(ctx context.Context, airtableID string) (bool, error) {
	return database.Query[tables.Product](s.db).Where("airtable_id", airtableID).Exists(ctx)
}

func (s *bunSyncStore) HasCategory(ctx context.Context, airtableID string) (bool, error) {
	return database.Query[tables.Category](s.db).Where("airtable_id", airtableID).Exists(ctx)
}

func (s *bunSyncStore) HasRealisation(ctx context.Context, airtableID string) (bool, error) {
	return database.Query[tables.Realisation](s.db).Where("airtable_id", airtableID).Exists(ctx)
}

func (s *bunSyncStore) UpsertProduct(ctx context.Context, product *tables.Product) error {
	_, err := database.Upsert(s.db, ctx, product, "airtable_id",
		"name", "reference", "category", "description", "base_price",
		"min_quantity", "max_quantity", "image_url", "is_active",
		"last_sync", "updated_at",
	)
	return err
}

func (s *bunSyncStore) UpsertCategory(ctx context.Context, category *tables.Category) error {
	_, err := database.Upsert(s.db, ctx, category, "airtable_id",
		"name", "slug", "description", "display_order", "is_active", "last_sync",
	)
	return err
}

func (s *bunSyncStore) UpsertRealisation(ctx context.Context, realisation *tables.Realisation) error {
	_, err := database.Upsert(s.db, ctx, realisation, "airtable_id",
		"title", "description", "cloudinary_public_ids", "product_ids",
		"tags", "is_featured", "display_order", "is_active", "source",
	)
	return err
}

func (s *bunSyncStore) ProductsForUsageSync(ctx context.Context) ([]tables.Product, error) {
	return database.Query[tables.Product](s.db).
		WhereNotNull("airtable_id").
		WhereOp("usage_count", ">", 0).
		OrderBy("usage_count", database.DESC).
		All(ctx)
}

func (s *bunSyncStore) CountProducts(ctx context.Context) (int, error) {
	return database.Query[tables.Product](s.db).Count(ctx)
}

func (s *bunSyncStore) CountStaleProducts(ctx context.Context, olderThan time.Time) (int, error) {
	return database.Query[tables.Product](s.db).
		WhereRaw("(last_sync IS NULL OR last_sync < ?)", olderThan).
		Count(ctx)
}

func (s *bunSyncStore) RecentSyncFailures(ctx context.Context, since time.Time) (int, error) {
	var total sql.NullInt64
	err := s.db.NewSelect().
		Model((*tables.SyncStatus)(nil)).
		ColumnExpr("SUM(records_failed)").
		Where("last_sync >= ?", since).
		Where("dry_run = ?", false).
		Scan(ctx, &total)
	if err != nil {
		return 0, err
	}
	return int(total.Int64), nil
}

func (s *bunSyncStore) RecordSyncRun(ctx context.Context, status *tables.SyncStatus) error {
	_, err := s.db.NewInsert().Model(status).Exec(ctx)
	return err
}
