package services

import (
	"context"
	"fmt"
	"ns2po_server/database"
	"ns2po_server/lib"
	"ns2po_server/schemas"
	"ns2po_server/structs"
	"ns2po_server/structs/tables"
	"strings"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Data sources reported in list/get responses.
const (
	SourceTurso    = "turso"
	SourceAirtable = "airtable"
	SourceStatic   = "static"
)

// staticFallbackWarning accompanies responses served from the embedded
// catalog when the database is unreachable.
const staticFallbackWarning = "Base de données indisponible, catalogue statique servi"

// BundleValidationError aggregates the French validation messages of a
// rejected payload.
type BundleValidationError struct {
	Messages []string `json:"errors"`
}

func (e *BundleValidationError) Error() string {
	return strings.Join(e.Messages, "; ")
}

type BundleService struct {
	logger       *gecho.Logger
	db           *database.DB
	cacheService *CacheService
}

func NewBundleService(logger *gecho.Logger, db *database.DB, cacheService *CacheService) *BundleService {
	return &BundleService{
		logger:       logger,
		db:           db,
		cacheService: cacheService,
	}
}

// BundleListOptions contains filtering and pagination options for bundle queries
type BundleListOptions struct {
	// Pagination
	Page     int `json:"page"`
	PageSize int `json:"page_size"`

	// Filters
	TargetAudience string   `json:"target_audience,omitempty"`
	BudgetRange    string   `json:"budget_range,omitempty"`
	IsActive       *bool    `json:"is_active,omitempty"`
	IsFeatured     *bool    `json:"is_featured,omitempty"`
	MinPrice       *float64 `json:"min_price,omitempty"`
	MaxPrice       *float64 `json:"max_price,omitempty"`
	MinPopularity  *int     `json:"min_popularity,omitempty"`
	SearchTerm     string   `json:"search,omitempty"`
	Tags           []string `json:"tags,omitempty"`

	// Sorting
	SortBy        string `json:"sort_by"`
	SortDirection string `json:"sort_direction"`
}

// BundleListResult wraps the bundle list response with metadata. Source tells
// the caller which backend actually served the data.
type BundleListResult struct {
	Bundles    []tables.CampaignBundle `json:"bundles"`
	Pagination database.Pagination     `json:"pagination"`
	Source     string                  `json:"source"`
	Warning    string                  `json:"warning,omitempty"`
	QueryTime  time.Duration           `json:"query_time"`
}

// BundleResult wraps a single bundle with its source.
type BundleResult struct {
	Bundle  *tables.CampaignBundle `json:"bundle"`
	Source  string                 `json:"source"`
	Warning string                 `json:"warning,omitempty"`
}

// ListBundles retrieves bundles with filtering and pagination. A database
// failure degrades to the embedded static catalog instead of erroring, so the
// public site never renders an empty shop.
func (bs *BundleService) ListBundles(ctx context.Context, opts *BundleListOptions) (*BundleListResult, error) {
	startTime := time.Now()

	if opts == nil {
		opts = &BundleListOptions{}
	}
	bs.applyDefaultOptions(opts)

	if err := bs.validateOptions(opts); err != nil {
		bs.logger.Error("Invalid bundle list options", gecho.Field("error", err), gecho.Field("options", opts))
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	// Cache lookup keyed on the full filter set.
	filterKey := bs.listCacheKey(opts)
	if cached, err := bs.cacheService.GetBundleList(filterKey); err == nil && cached != nil {
		bs.logger.Debug("Bundles retrieved from cache",
			gecho.Field("count", len(cached)),
			gecho.Field("duration", time.Since(startTime)),
		)
		return &BundleListResult{
			Bundles: cached,
			Pagination: database.Pagination{
				Page:     opts.Page,
				PageSize: opts.PageSize,
				Total:    len(cached),
			},
			Source:    SourceTurso,
			QueryTime: time.Since(startTime),
		}, nil
	}

	query := database.Query[tables.CampaignBundle](bs.db)
	query = bs.applyFilters(query, opts)
	query = bs.applySorting(query, opts)
	query = query.Relation("Products")

	result, err := database.Paginate(query, ctx, opts.Page, opts.PageSize)
	if err != nil {
		bs.logger.Error("Failed to fetch bundles, serving static catalog",
			gecho.Field("error", err),
			gecho.Field("duration", time.Since(startTime)),
		)
		return bs.staticListResult(opts, startTime), nil
	}

	go func() {
		if err := bs.cacheService.SetBundleList(filterKey, result.Data); err != nil {
			bs.logger.Warn("Failed to cache bundle list", gecho.Field("error", err))
		}
	}()

	bs.logger.Debug("Bundles fetched successfully",
		gecho.Field("count", len(result.Data)),
		gecho.Field("total", result.Pagination.Total),
		gecho.Field("duration", time.Since(startTime)),
	)

	return &BundleListResult{
		Bundles:    result.Data,
		Pagination: result.Pagination,
		Source:     SourceTurso,
		QueryTime:  time.Since(startTime),
	}, nil
}

// GetBundleByID retrieves a single bundle with its line items, degrading to
// the static catalog on database failure.
func (bs *BundleService) GetBundleByID(ctx context.Context, id string) (*BundleResult, error) {
	startTime := time.Now()

	if cached, err := bs.cacheService.GetBundleByID(id); err == nil && cached != nil {
		bs.logger.Debug("Bundle retrieved from cache", gecho.Field("id", id), gecho.Field("duration", time.Since(startTime)))
		return &BundleResult{Bundle: cached, Source: SourceTurso}, nil
	}

	bundle, err := database.Query[tables.CampaignBundle](bs.db).
		Where("id", id).
		Relation("Products").
		Timeout(5 * time.Second).
		First(ctx)
	if err != nil {
		if static := StaticBundleByID(id); static != nil {
			bs.logger.Warn("Bundle lookup failed, serving static catalog entry",
				gecho.Field("id", id), gecho.Field("error", err))
			return &BundleResult{Bundle: static, Source: SourceStatic, Warning: staticFallbackWarning}, nil
		}
		bs.logger.Error("Failed to fetch bundle by ID",
			gecho.Field("id", id),
			gecho.Field("error", err),
			gecho.Field("duration", time.Since(startTime)),
		)
		return nil, fmt.Errorf("failed to fetch bundle: %w", err)
	}

	if bundle == nil {
		return nil, lib.ErrNotFound
	}

	go func() {
		if err := bs.cacheService.SetBundleByID(bundle); err != nil {
			bs.logger.Warn("Failed to cache bundle", gecho.Field("error", err), gecho.Field("id", id))
		}
	}()

	return &BundleResult{Bundle: bundle, Source: SourceTurso}, nil
}

// CreateBundle validates a creation payload, derives the pricing fields and
// inserts the bundle together with its line items in one transaction.
func (bs *BundleService) CreateBundle(ctx context.Context, input *structs.BundleCreateInput) (*tables.CampaignBundle, error) {
	startTime := time.Now()

	if verr := bs.validateCreate(input); verr != nil {
		return nil, verr
	}

	pricing := schemas.ComputeBundlePricing(input.Products, input.EstimatedTotal, input.OriginalTotal)

	id, err := lib.GenerateEntityID(input.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to generate bundle id: %w", err)
	}

	now := time.Now()
	displayOrder := 0
	if input.DisplayOrder != nil {
		displayOrder = *input.DisplayOrder
	}

	bundle := &tables.CampaignBundle{
		ID:                 id,
		Name:               input.Name,
		Description:        input.Description,
		TargetAudience:     input.TargetAudience,
		BudgetRange:        input.BudgetRange,
		EstimatedTotal:     input.EstimatedTotal,
		OriginalTotal:      &pricing.OriginalTotal,
		Savings:            pricing.Savings,
		DiscountPercentage: pricing.DiscountPercentage,
		Popularity:         *input.Popularity,
		IsActive:           *input.IsActive,
		IsFeatured:         *input.IsFeatured || schemas.DeriveFeatured(input.DisplayOrder),
		Tags:               tables.JSONStrings(input.Tags),
		DisplayOrder:       displayOrder,
		CreatedAt:          now,
		UpdatedAt:          now,
	}

	items := buildLineItems(bundle.ID, input.Products)

	err = database.Transaction(bs.db, ctx, func(tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(bundle).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert bundle: %w", err)
		}
		if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
			return fmt.Errorf("failed to insert bundle products: %w", err)
		}
		return nil
	})
	if err != nil {
		bs.logger.Error("Failed to create bundle",
			gecho.Field("error", err),
			gecho.Field("bundle_name", input.Name),
			gecho.Field("duration", time.Since(startTime)),
		)
		return nil, lib.MapDBError(err)
	}

	bundle.Products = items

	go func() {
		if err := bs.cacheService.InvalidateBundleCaches(bundle.ID); err != nil {
			bs.logger.Warn("Failed to invalidate bundle caches after creation",
				gecho.Field("error", err), gecho.Field("bundle_id", bundle.ID))
		}
	}()

	bs.logger.Info("Bundle created successfully",
		gecho.Field("id", bundle.ID),
		gecho.Field("product_count", len(items)),
		gecho.Field("duration", time.Since(startTime)),
	)
	return bundle, nil
}

// UpdateBundle applies a partial update. Only supplied fields are written;
// when the line items or totals change, the merged bundle is re-validated and
// its pricing re-derived. The optimistic concurrency check compares the
// client's lastModified against the stored updated_at.
func (bs *BundleService) UpdateBundle(ctx context.Context, id string, input *structs.BundleUpdateInput) (*tables.CampaignBundle, error) {
	startTime := time.Now()

	if fieldErrs := schemas.ValidateBundleUpdate(id, input); len(fieldErrs) > 0 {
		return nil, newValidationError(fieldErrs, nil)
	}

	current, err := database.Query[tables.CampaignBundle](bs.db).
		Where("id", id).
		Relation("Products").
		First(ctx)
	if err != nil {
		return nil, lib.MapDBError(err)
	}
	if current == nil {
		return nil, lib.ErrNotFound
	}

	if input.LastModified != nil && current.UpdatedAt.Truncate(time.Second).After(input.LastModified.Truncate(time.Second)) {
		return nil, lib.ErrVersionConflict
	}

	merged := mergeBundleInput(current, input)
	if input.Products != nil || input.EstimatedTotal != nil || input.OriginalTotal != nil ||
		input.BudgetRange != nil || input.IsFeatured != nil || input.IsActive != nil || input.Popularity != nil {
		if messages := schemas.ValidateBundle(merged); len(messages) > 0 {
			return nil, &BundleValidationError{Messages: messages}
		}
	}

	updateData := bs.buildUpdateMap(input)

	// Pricing is re-derived whenever anything feeding it was touched.
	recompute := input.Products != nil || input.EstimatedTotal != nil || input.OriginalTotal != nil
	if recompute {
		pricing := schemas.ComputeBundlePricing(merged.Products, merged.EstimatedTotal, merged.OriginalTotal)
		updateData["original_total"] = pricing.OriginalTotal
		updateData["savings"] = pricing.Savings
		updateData["discount_percentage"] = pricing.DiscountPercentage
	}
	updateData["updated_at"] = time.Now()

	var items []tables.BundleProduct
	err = database.Transaction(bs.db, ctx, func(tx bun.Tx) error {
		if input.Products != nil {
			if _, err := tx.NewDelete().
				Model((*tables.BundleProduct)(nil)).
				Where("bundle_id = ?", id).
				Exec(ctx); err != nil {
				return fmt.Errorf("failed to delete existing bundle products: %w", err)
			}

			items = buildLineItems(id, *input.Products)
			if len(items) > 0 {
				if _, err := tx.NewInsert().Model(&items).Exec(ctx); err != nil {
					return fmt.Errorf("failed to insert bundle products: %w", err)
				}
			}
		}

		update := tx.NewUpdate().Model((*tables.CampaignBundle)(nil)).Where("id = ?", id)
		for column, value := range updateData {
			update = update.Set("? = ?", bun.Ident(column), value)
		}
		if _, err := update.Exec(ctx); err != nil {
			return fmt.Errorf("failed to update bundle: %w", err)
		}
		return nil
	})
	if err != nil {
		bs.logger.Error("Failed to update bundle",
			gecho.Field("error", err),
			gecho.Field("id", id),
			gecho.Field("duration", time.Since(startTime)),
		)
		return nil, lib.MapDBError(err)
	}

	go func() {
		if err := bs.cacheService.InvalidateBundleCaches(id); err != nil {
			bs.logger.Warn("Failed to invalidate bundle caches after update",
				gecho.Field("error", err), gecho.Field("bundle_id", id))
		}
	}()

	updated, err := database.Query[tables.CampaignBundle](bs.db).
		Where("id", id).
		Relation("Products").
		First(ctx)
	if err != nil {
		return nil, lib.MapDBError(err)
	}

	bs.logger.Info("Bundle updated successfully",
		gecho.Field("id", id),
		gecho.Field("fields", len(updateData)),
		gecho.Field("duration", time.Since(startTime)),
	)
	return updated, nil
}

// DeleteBundle removes a bundle. With CheckReferences set, active orders or
// non-expired quotes referencing the bundle block the delete. With ForceDelete
// set, those references are archived/invalidated first and the whole cascade
// runs in one transaction.
func (bs *BundleService) DeleteBundle(ctx context.Context, id string, opts structs.BundleDeleteOptions) (*structs.BundleDeleteResult, error) {
	startTime := time.Now()

	existing, err := database.Query[tables.CampaignBundle](bs.db).Where("id", id).First(ctx)
	if err != nil {
		return nil, lib.MapDBError(err)
	}
	if existing == nil {
		return nil, lib.ErrNotFound
	}

	if opts.CheckReferences && !opts.ForceDelete {
		conflict, err := bs.checkBundleReferences(ctx, id)
		if err != nil {
			return nil, err
		}
		if conflict != nil {
			return nil, conflict
		}
	}

	result := &structs.BundleDeleteResult{}
	err = database.Transaction(bs.db, ctx, func(tx bun.Tx) error {
		if opts.ForceDelete {
			res, err := tx.NewUpdate().
				Model((*tables.Order)(nil)).
				Set("status = ?", "archived").
				Set("archived_reason = ?", "bundle_deleted").
				Set("updated_at = ?", time.Now()).
				Where("bundle_id = ?", id).
				Where("status IN (?)", bun.In([]string{"pending", "processing"})).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to archive orders: %w", err)
			}
			if n, err := res.RowsAffected(); err == nil {
				result.ArchivedOrders = int(n)
			}

			res, err = tx.NewUpdate().
				Model((*tables.Quote)(nil)).
				Set("status = ?", "invalidated").
				Where("bundle_id = ?", id).
				Where("status != ?", "invalidated").
				Where("(expires_at IS NULL OR expires_at > ?)", time.Now()).
				Exec(ctx)
			if err != nil {
				return fmt.Errorf("failed to invalidate quotes: %w", err)
			}
			if n, err := res.RowsAffected(); err == nil {
				result.InvalidatedQuotes = int(n)
			}
		}

		res, err := tx.NewDelete().
			Model((*tables.BundleProduct)(nil)).
			Where("bundle_id = ?", id).
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("failed to delete bundle products: %w", err)
		}
		if n, err := res.RowsAffected(); err == nil {
			result.DeletedProducts = int(n)
		}

		if _, err := tx.NewDelete().
			Model((*tables.BundleAnalytics)(nil)).
			Where("bundle_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete bundle analytics: %w", err)
		}

		if _, err := tx.NewDelete().
			Model((*tables.BundleCustomization)(nil)).
			Where("bundle_id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete bundle customizations: %w", err)
		}

		if _, err := tx.NewDelete().
			Model((*tables.CampaignBundle)(nil)).
			Where("id = ?", id).
			Exec(ctx); err != nil {
			return fmt.Errorf("failed to delete bundle: %w", err)
		}

		result.Deleted = true
		return nil
	})
	if err != nil {
		bs.logger.Error("Failed to delete bundle",
			gecho.Field("error", err),
			gecho.Field("id", id),
			gecho.Field("duration", time.Since(startTime)),
		)
		return nil, lib.MapDBError(err)
	}

	go func() {
		if err := bs.cacheService.InvalidateBundleCaches(id); err != nil {
			bs.logger.Warn("Failed to invalidate bundle caches after delete",
				gecho.Field("error", err), gecho.Field("bundle_id", id))
		}
	}()

	bs.logger.Info("Bundle deleted",
		gecho.Field("id", id),
		gecho.Field("forced", opts.ForceDelete),
		gecho.Field("archived_orders", result.ArchivedOrders),
		gecho.Field("invalidated_quotes", result.InvalidatedQuotes),
		gecho.Field("duration", time.Since(startTime)),
	)
	return result, nil
}

// RecalculateBundleTotals walks every bundle, re-sums the stored line items
// and rewrites the derived pricing fields where they drifted beyond the
// arithmetic tolerance. Returns the number of corrected bundles.
func (bs *BundleService) RecalculateBundleTotals(ctx context.Context) (int, error) {
	bundles, err := database.Query[tables.CampaignBundle](bs.db).
		Relation("Products").
		All(ctx)
	if err != nil {
		return 0, lib.MapDBError(err)
	}

	corrected := 0
	for i := range bundles {
		bundle := &bundles[i]

		inputs := make([]structs.BundleProductInput, len(bundle.Products))
		for j, item := range bundle.Products {
			inputs[j] = structs.BundleProductInput{
				ID:        item.ProductID,
				Name:      item.Name,
				BasePrice: item.BasePrice,
				Quantity:  item.Quantity,
				Subtotal:  item.Subtotal,
			}
		}

		sum := schemas.SumSubtotals(inputs)
		pricing := schemas.ComputeBundlePricing(inputs, sum, bundle.OriginalTotal)

		drifted := absFloat(bundle.EstimatedTotal-sum) > 0.01 ||
			absFloat(bundle.Savings-pricing.Savings) > 0.01 ||
			absFloat(bundle.DiscountPercentage-pricing.DiscountPercentage) > 0.01

		if !drifted {
			continue
		}

		updateData := map[string]any{
			"estimated_total":     sum,
			"savings":             pricing.Savings,
			"discount_percentage": pricing.DiscountPercentage,
			"updated_at":          time.Now(),
		}
		if _, err := database.Query[tables.CampaignBundle](bs.db).Where("id", bundle.ID).Update(ctx, updateData); err != nil {
			bs.logger.Error("Failed to recalculate bundle totals",
				gecho.Field("error", err), gecho.Field("id", bundle.ID))
			return corrected, lib.MapDBError(err)
		}

		bs.logger.Info("Bundle totals corrected",
			gecho.Field("id", bundle.ID),
			gecho.Field("old_total", bundle.EstimatedTotal),
			gecho.Field("new_total", sum),
		)
		corrected++
	}

	if corrected > 0 {
		go func() {
			if err := bs.cacheService.DeletePattern("bundles:list:*"); err != nil {
				bs.logger.Warn("Failed to invalidate bundle list caches after recalculation", gecho.Field("error", err))
			}
		}()
	}

	return corrected, nil
}

// checkBundleReferences counts the active orders and non-expired quotes still
// pointing at the bundle.
func (bs *BundleService) checkBundleReferences(ctx context.Context, id string) (*structs.ReferenceConflictError, error) {
	activeOrders, err := database.Query[tables.Order](bs.db).
		Where("bundle_id", id).
		WhereIn("status", []any{"pending", "processing"}).
		Count(ctx)
	if err != nil {
		return nil, lib.MapDBError(err)
	}

	activeQuotes, err := database.Query[tables.Quote](bs.db).
		Where("bundle_id", id).
		WhereNot("status", "invalidated").
		WhereRaw("(expires_at IS NULL OR expires_at > ?)", time.Now()).
		Count(ctx)
	if err != nil {
		return nil, lib.MapDBError(err)
	}

	if activeOrders == 0 && activeQuotes == 0 {
		return nil, nil
	}

	return &structs.ReferenceConflictError{
		ActiveOrders: activeOrders,
		ActiveQuotes: activeQuotes,
		Suggestion:   "Utilisez forceDelete pour archiver les commandes et invalider les devis associés",
	}, nil
}

func (bs *BundleService) validateCreate(input *structs.BundleCreateInput) *BundleValidationError {
	fieldErrs := schemas.ValidateBundleCreate(input)
	messages := schemas.ValidateBundle(input)
	if len(fieldErrs) == 0 && len(messages) == 0 {
		return nil
	}
	return newValidationError(fieldErrs, messages)
}

func newValidationError(fieldErrs []schemas.FieldError, messages []string) *BundleValidationError {
	out := &BundleValidationError{}
	for _, fe := range fieldErrs {
		out.Messages = append(out.Messages, fe.Message)
	}
	out.Messages = append(out.Messages, messages...)
	return out
}

// mergeBundleInput overlays a partial update onto the stored bundle and
// returns the equivalent creation payload for re-validation.
func mergeBundleInput(current *tables.CampaignBundle, input *structs.BundleUpdateInput) *structs.BundleCreateInput {
	merged := &structs.BundleCreateInput{
		Name:           current.Name,
		Description:    current.Description,
		TargetAudience: current.TargetAudience,
		BudgetRange:    current.BudgetRange,
		EstimatedTotal: current.EstimatedTotal,
		OriginalTotal:  current.OriginalTotal,
		Tags:           current.Tags,
	}

	popularity := current.Popularity
	merged.Popularity = &popularity
	isActive := current.IsActive
	merged.IsActive = &isActive
	isFeatured := current.IsFeatured
	merged.IsFeatured = &isFeatured

	merged.Products = make([]structs.BundleProductInput, len(current.Products))
	for i, item := range current.Products {
		merged.Products[i] = structs.BundleProductInput{
			ID:        item.ProductID,
			Name:      item.Name,
			BasePrice: item.BasePrice,
			Quantity:  item.Quantity,
			Subtotal:  item.Subtotal,
		}
	}

	if input.Name != nil {
		merged.Name = *input.Name
	}
	if input.Description != nil {
		merged.Description = *input.Description
	}
	if input.TargetAudience != nil {
		merged.TargetAudience = *input.TargetAudience
	}
	if input.BudgetRange != nil {
		merged.BudgetRange = *input.BudgetRange
	}
	if input.Products != nil {
		merged.Products = *input.Products
	}
	if input.EstimatedTotal != nil {
		merged.EstimatedTotal = *input.EstimatedTotal
	}
	if input.OriginalTotal != nil {
		merged.OriginalTotal = input.OriginalTotal
	}
	if input.Popularity != nil {
		merged.Popularity = input.Popularity
	}
	if input.IsActive != nil {
		merged.IsActive = input.IsActive
	}
	if input.IsFeatured != nil {
		merged.IsFeatured = input.IsFeatured
	}
	if input.Tags != nil {
		merged.Tags = input.Tags
	}

	return merged
}

// buildUpdateMap turns the supplied fields into column assignments. Fields the
// client did not send are never written.
func (bs *BundleService) buildUpdateMap(input *structs.BundleUpdateInput) map[string]any {
	updateData := make(map[string]any)

	if input.Name != nil {
		updateData["name"] = *input.Name
	}
	if input.Description != nil {
		updateData["description"] = *input.Description
	}
	if input.TargetAudience != nil {
		updateData["target_audience"] = *input.TargetAudience
	}
	if input.BudgetRange != nil {
		updateData["budget_range"] = *input.BudgetRange
	}
	if input.EstimatedTotal != nil {
		updateData["estimated_total"] = *input.EstimatedTotal
	}
	if input.Popularity != nil {
		updateData["popularity"] = *input.Popularity
	}
	if input.IsActive != nil {
		updateData["is_active"] = *input.IsActive
	}
	if input.IsFeatured != nil {
		updateData["is_featured"] = *input.IsFeatured
	}
	if input.Tags != nil {
		updateData["tags"] = tables.JSONStrings(input.Tags)
	}
	if input.DisplayOrder != nil {
		updateData["display_order"] = *input.DisplayOrder
	}

	return updateData
}

func buildLineItems(bundleID string, products []structs.BundleProductInput) []tables.BundleProduct {
	items := make([]tables.BundleProduct, len(products))
	for i, p := range products {
		items[i] = tables.BundleProduct{
			ID:           uuid.New().String(),
			BundleID:     bundleID,
			ProductID:    p.ID,
			Name:         p.Name,
			BasePrice:    p.BasePrice,
			Quantity:     p.Quantity,
			Subtotal:     p.Subtotal,
			DisplayOrder: i,
		}
	}
	return items
}

func (bs *BundleService) applyDefaultOptions(opts *BundleListOptions) {
	if opts.Page < 1 {
		opts.Page = 1
	}
	if opts.PageSize < 1 {
		opts.PageSize = 20
	}
	if opts.PageSize > 100 {
		opts.PageSize = 100 // Max page size for performance
	}
	if opts.SortBy == "" {
		opts.SortBy = "display_order"
	}
	if opts.SortDirection == "" {
		opts.SortDirection = "ASC"
	}
}

// listCacheKey serializes the full filter set into a deterministic cache key
// segment. Unset pointer filters render as "-" so they never collide with an
// explicit value.
func (bs *BundleService) listCacheKey(opts *BundleListOptions) string {
	return fmt.Sprintf("aud:%s:range:%s:active:%s:featured:%s:price:%s-%s:pop:%s:q:%s:tags:%s:page:%d:size:%d:sort:%s_%s",
		opts.TargetAudience,
		opts.BudgetRange,
		optionKey(opts.IsActive),
		optionKey(opts.IsFeatured),
		optionKey(opts.MinPrice),
		optionKey(opts.MaxPrice),
		optionKey(opts.MinPopularity),
		opts.SearchTerm,
		strings.Join(opts.Tags, ","),
		opts.Page,
		opts.PageSize,
		opts.SortBy,
		opts.SortDirection,
	)
}

func optionKey[T any](v *T) string {
	if v == nil {
		return "-"
	}
	return fmt.Sprint(*v)
}

func (bs *BundleService) validateOptions(opts *BundleListOptions) error {
	validSortFields := map[string]bool{
		"display_order":   true,
		"estimated_total": true,
		"popularity":      true,
		"name":            true,
		"created_at":      true,
		"updated_at":      true,
	}
	if !validSortFields[opts.SortBy] {
		return fmt.Errorf("invalid sort field: %s", opts.SortBy)
	}

	if opts.SortDirection != "ASC" && opts.SortDirection != "DESC" {
		return fmt.Errorf("invalid sort direction: %s (must be ASC or DESC)", opts.SortDirection)
	}

	if opts.MinPrice != nil && opts.MaxPrice != nil && *opts.MinPrice > *opts.MaxPrice {
		return fmt.Errorf("min_price cannot be greater than max_price")
	}

	return nil
}

func (bs *BundleService) applyFilters(query *database.QueryBuilder[tables.CampaignBundle], opts *BundleListOptions) *database.QueryBuilder[tables.CampaignBundle] {
	if opts.TargetAudience != "" {
		query = query.Where("target_audience", opts.TargetAudience)
	}
	if opts.BudgetRange != "" {
		query = query.Where("budget_range", opts.BudgetRange)
	}
	if opts.IsActive != nil {
		query = query.Where("is_active", *opts.IsActive)
	}
	if opts.IsFeatured != nil {
		query = query.Where("is_featured", *opts.IsFeatured)
	}
	if opts.MinPrice != nil {
		query = query.WhereOp("estimated_total", ">=", *opts.MinPrice)
	}
	if opts.MaxPrice != nil {
		query = query.WhereOp("estimated_total", "<=", *opts.MaxPrice)
	}
	if opts.MinPopularity != nil {
		query = query.WhereOp("popularity", ">=", *opts.MinPopularity)
	}
	if opts.SearchTerm != "" {
		searchPattern := "%" + opts.SearchTerm + "%"
		query = query.WhereRaw(
			"(name LIKE ? OR description LIKE ?)",
			searchPattern, searchPattern,
		)
	}
	for _, tag := range opts.Tags {
		// Tags are stored as a JSON array; a quoted LIKE match is exact
		// enough for the short controlled vocabulary used here.
		query = query.WhereRaw("tags LIKE ?", fmt.Sprintf(`%%"%s"%%`, tag))
	}

	return query
}

func (bs *BundleService) applySorting(query *database.QueryBuilder[tables.CampaignBundle], opts *BundleListOptions) *database.QueryBuilder[tables.CampaignBundle] {
	var direction database.OrderDirection
	if opts.SortDirection == "ASC" {
		direction = database.ASC
	} else {
		direction = database.DESC
	}

	query = query.OrderBy(opts.SortBy, direction)

	// Secondary sort by ID for consistent ordering
	query = query.OrderBy("id", database.ASC)

	return query
}

// staticListResult filters the embedded catalog with the same options as the
// database path so the fallback honors the caller's query.
func (bs *BundleService) staticListResult(opts *BundleListOptions, startTime time.Time) *BundleListResult {
	var filtered []tables.CampaignBundle
	for _, bundle := range StaticBundles() {
		if opts.TargetAudience != "" && bundle.TargetAudience != opts.TargetAudience {
			continue
		}
		if opts.BudgetRange != "" && bundle.BudgetRange != opts.BudgetRange {
			continue
		}
		if opts.IsActive != nil && bundle.IsActive != *opts.IsActive {
			continue
		}
		if opts.IsFeatured != nil && bundle.IsFeatured != *opts.IsFeatured {
			continue
		}
		if opts.MinPrice != nil && bundle.EstimatedTotal < *opts.MinPrice {
			continue
		}
		if opts.MaxPrice != nil && bundle.EstimatedTotal > *opts.MaxPrice {
			continue
		}
		if opts.MinPopularity != nil && bundle.Popularity < *opts.MinPopularity {
			continue
		}
		if opts.SearchTerm != "" {
			term := strings.ToLower(opts.SearchTerm)
			if !strings.Contains(strings.ToLower(bundle.Name), term) &&
				!strings.Contains(strings.ToLower(bundle.Description), term) {
				continue
			}
		}
		filtered = append(filtered, bundle)
	}

	return &BundleListResult{
		Bundles: filtered,
		Pagination: database.Pagination{
			Page:     opts.Page,
			PageSize: opts.PageSize,
			Total:    len(filtered),
		},
		Source:    SourceStatic,
		Warning:   staticFallbackWarning,
		QueryTime: time.Since(startTime),
	}
}

func absFloat(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
