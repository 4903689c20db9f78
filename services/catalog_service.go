package services

import (
	"context"
	"ns2po_server/database"
	"ns2po_server/lib"
	"ns2po_server/structs/tables"

	"github.com/MonkyMars/gecho"
)

// CatalogService serves the synchronized categories and the realisations
// portfolio. Both are read-only on this side; the sync engine writes them.
type CatalogService struct {
	logger *gecho.Logger
	db     *database.DB
}

func NewCatalogService(logger *gecho.Logger, db *database.DB) *CatalogService {
	return &CatalogService{
		logger: logger,
		db:     db,
	}
}

// GetCategories returns the active categories in display order.
func (cs *CatalogService) GetCategories(ctx context.Context) ([]tables.Category, error) {
	categories, err := database.Query[tables.Category](cs.db).
		Where("is_active", true).
		OrderBy("display_order", database.ASC).
		OrderBy("name", database.ASC).
		All(ctx)
	if err != nil {
		cs.logger.Error("Failed to fetch categories", gecho.Field("error", err))
		return nil, lib.MapDBError(err)
	}
	return categories, nil
}

// GetCategoryBySlug resolves a category by its URL slug.
func (cs *CatalogService) GetCategoryBySlug(ctx context.Context, slug string) (*tables.Category, error) {
	category, err := database.Query[tables.Category](cs.db).
		Where("slug", slug).
		First(ctx)
	if err != nil {
		return nil, lib.MapDBError(err)
	}
	if category == nil {
		return nil, lib.ErrNotFound
	}
	return category, nil
}

// RealisationListOptions filters the portfolio listing.
type RealisationListOptions struct {
	Page       int    `json:"page"`
	PageSize   int    `json:"page_size"`
	IsFeatured *bool  `json:"is_featured,omitempty"`
	ProductID  string `json:"product_id,omitempty"`
}

// GetRealisations returns active portfolio entries, featured first.
func (cs *CatalogService) GetRealisations(ctx context.Context, opts *RealisationListOptions) (*database.PaginationResult[tables.Realisation], error) {
	if opts == nil {
		opts = &RealisationListOptions{}
	}

	query := database.Query[tables.Realisation](cs.db).
		Where("is_active", true).
		OrderBy("is_featured", database.DESC).
		OrderBy("display_order", database.ASC)

	if opts.IsFeatured != nil {
		query = query.Where("is_featured", *opts.IsFeatured)
	}
	if opts.ProductID != "" {
		// ProductIDs is a JSON array; a quoted LIKE match is exact enough
		// for opaque identifiers.
		query = query.WhereRaw("product_ids LIKE ?", `%"`+opts.ProductID+`"%`)
	}

	result, err := database.Paginate(query, ctx, opts.Page, opts.PageSize)
	if err != nil {
		cs.logger.Error("Failed to fetch realisations", gecho.Field("error", err))
		return nil, lib.MapDBError(err)
	}
	return result, nil
}

// GetRealisationByID fetches one portfolio entry.
func (cs *CatalogService) GetRealisationByID(ctx context.Context, id string) (*tables.Realisation, error) {
	realisation, err := database.Query[tables.Realisation](cs.db).
		Where("id", id).
		First(ctx)
	if err != nil {
		return nil, lib.MapDBError(err)
	}
	if realisation == nil {
		return nil, lib.ErrNotFound
	}
	return realisation, nil
}
