package services

import (
	"context"
	"fmt"
	"ns2po_server/database"
	"ns2po_server/lib"
	"ns2po_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/uptrace/bun"
)

// ProductService serves the synchronized catalog. Products are written by the
// sync engine; this service only reads them and maintains the usage counters
// that flow back to Airtable.
type ProductService struct {
	logger       *gecho.Logger
	db           *database.DB
	cacheService *CacheService
}

func NewProductService(logger *gecho.Logger, db *database.DB, cacheService *CacheService) *ProductService {
	return &ProductService{
		logger:       logger,
		db:           db,
		cacheService: cacheService,
	}
}

// ProductListOptions contains filtering and pagination options for catalog queries
type ProductListOptions struct {
	// Pagination
	Page     int `json:"page"`
	PageSize int `json:"page_size"`

	// Filters
	Category   string   `json:"category,omitempty"`
	IsActive   *bool    `json:"is_active,omitempty"`
	MinPrice   *float64 `json:"min_price,omitempty"`
	MaxPrice   *float64 `json:"max_price,omitempty"`
	SearchTerm string   `json:"search,omitempty"`

	// Sorting
	SortBy        string `json:"sort_by"`
	SortDirection string `json:"sort_direction"`
}

// ProductListResult wraps the product list response with metadata
type ProductListResult struct {
	Products   []tables.Product    `json:"products"`
	Pagination database.Pagination `json:"pagination"`
	QueryTime  time.Duration       `json:"query_time"`
}

// GetProducts retrieves catalog products with filtering and pagination.
func (ps *ProductService) GetProducts(ctx context.Context, opts *ProductListOptions) (*ProductListResult, error) {
	startTime := time.Now()

	if opts == nil {
		opts = &ProductListOptions{}
	}
	ps.applyDefaultOptions(opts)

	if err := ps.validateOptions(opts); err != nil {
		ps.logger.Error("Invalid product list options", gecho.Field("error", err), gecho.Field("options", opts))
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	filterKey := fmt.Sprintf("cat:%s:active:%v:page:%d:size:%d:sort:%s_%s:q:%s",
		opts.Category, opts.IsActive, opts.Page, opts.PageSize, opts.SortBy, opts.SortDirection, opts.SearchTerm)
	if cached, err := ps.cacheService.GetActiveProductsList(filterKey); err == nil && cached != nil {
		return &ProductListResult{
			Products: cached,
			Pagination: database.Pagination{
				Page:     opts.Page,
				PageSize: opts.PageSize,
				Total:    len(cached),
			},
			QueryTime: time.Since(startTime),
		}, nil
	}

	query := database.Query[tables.Product](ps.db)
	query = ps.applyFilters(query, opts)
	query = ps.applySorting(query, opts)

	result, err := database.Paginate(query, ctx, opts.Page, opts.PageSize)
	if err != nil {
		ps.logger.Error("Failed to fetch products",
			gecho.Field("error", err),
			gecho.Field("page", opts.Page),
			gecho.Field("pageSize", opts.PageSize),
			gecho.Field("duration", time.Since(startTime)))
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	go func() {
		if err := ps.cacheService.SetActiveProductsList(filterKey, result.Data); err != nil {
			ps.logger.Warn("Failed to cache product list", gecho.Field("error", err))
		}
	}()

	ps.logger.Debug("Products fetched successfully",
		gecho.Field("count", len(result.Data)),
		gecho.Field("total", result.Pagination.Total),
		gecho.Field("duration", time.Since(startTime)),
	)

	return &ProductListResult{
		Products:   result.Data,
		Pagination: result.Pagination,
		QueryTime:  time.Since(startTime),
	}, nil
}

// GetProductByID retrieves a single catalog product.
func (ps *ProductService) GetProductByID(ctx context.Context, id string) (*tables.Product, error) {
	product, err := database.Query[tables.Product](ps.db).
		Where("id", id).
		Timeout(5 * time.Second).
		First(ctx)
	if err != nil {
		ps.logger.Error("Failed to fetch product by ID", gecho.Field("id", id), gecho.Field("error", err))
		return nil, lib.MapDBError(err)
	}
	if product == nil {
		return nil, lib.ErrNotFound
	}
	return product, nil
}

// IncrementUsage bumps the usage counter fed back to Airtable by the reverse
// sync. Called when a bundle referencing the product is created or updated.
func (ps *ProductService) IncrementUsage(ctx context.Context, productIDs []string) error {
	if len(productIDs) == 0 {
		return nil
	}

	_, err := ps.db.NewUpdate().
		Model((*tables.Product)(nil)).
		Set("usage_count = usage_count + 1").
		Set("updated_at = ?", time.Now()).
		Where("id IN (?)", bun.In(productIDs)).
		Exec(ctx)
	if err != nil {
		return lib.MapDBError(err)
	}
	return nil
}

func (ps *ProductService) applyDefaultOptions(opts *ProductListOptions) {
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
		opts.SortBy = "name"
	}
	if opts.SortDirection == "" {
		opts.SortDirection = "ASC"
	}
}

func (ps *ProductService) validateOptions(opts *ProductListOptions) error {
	validSortFields := map[string]bool{
		"name":        true,
		"base_price":  true,
		"usage_count": true,
		"created_at":  true,
		"updated_at":  true,
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

func (ps *ProductService) applyFilters(query *database.QueryBuilder[tables.Product], opts *ProductListOptions) *database.QueryBuilder[tables.Product] {
	if opts.Category != "" {
		query = query.Where("category", opts.Category)
	}
	if opts.IsActive != nil {
		query = query.Where("is_active", *opts.IsActive)
	}
	if opts.MinPrice != nil {
		query = query.WhereOp("base_price", ">=", *opts.MinPrice)
	}
	if opts.MaxPrice != nil {
		query = query.WhereOp("base_price", "<=", *opts.MaxPrice)
	}
	if opts.SearchTerm != "" {
		searchPattern := "%" + opts.SearchTerm + "%"
		query = query.WhereRaw(
			"(name LIKE ? OR description LIKE ? OR reference LIKE ?)",
			searchPattern, searchPattern, searchPattern,
		)
	}

	return query
}

func (ps *ProductService) applySorting(query *database.QueryBuilder[tables.Product], opts *ProductListOptions) *database.QueryBuilder[tables.Product] {
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
