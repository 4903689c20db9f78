package catalog

import (
	"errors"
	"net/http"
	"ns2po_server/lib"
	"ns2po_server/services"
	"strconv"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

// FetchCategories handles GET /categories
func (crm *CatalogRoutesManager) FetchCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := crm.catalogService.GetCategories(r.Context())
	if err != nil {
		crm.logger.Error("Failed to fetch categories", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("error.categories.failedToFetch"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"categories": categories,
			"meta": map[string]any{
				"count": len(categories),
			},
		}),
		gecho.Send(),
	)
}

// FetchCategoryBySlug handles GET /categories/{slug}
func (crm *CatalogRoutesManager) FetchCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	slug := chi.URLParam(r, "slug")
	if slug == "" {
		gecho.BadRequest(w,
			gecho.WithMessage("error.categories.slugRequired"),
			gecho.Send(),
		)
		return
	}

	category, err := crm.catalogService.GetCategoryBySlug(r.Context(), slug)
	if err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			gecho.NotFound(w,
				gecho.WithMessage("error.categories.notFound"),
				gecho.Send(),
			)
			return
		}

		crm.logger.Error("Failed to fetch category", gecho.Field("slug", slug), gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("error.categories.failedToFetchOne"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"category": category,
		}),
		gecho.Send(),
	)
}

// FetchRealisations handles GET /realisations with pagination and filters
func (crm *CatalogRoutesManager) FetchRealisations(w http.ResponseWriter, r *http.Request) {
	opts, err := parseRealisationListOptions(r)
	if err != nil {
		crm.logger.Warn("Invalid query parameters", gecho.Field("error", err))
		gecho.BadRequest(w,
			gecho.WithMessage("error.invalidQueryParameters"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	result, err := crm.catalogService.GetRealisations(r.Context(), opts)
	if err != nil {
		crm.logger.Error("Failed to fetch realisations", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("error.realisations.failedToFetch"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"realisations": result.Data,
			"pagination":   result.Pagination,
			"meta": map[string]any{
				"count": len(result.Data),
			},
		}),
		gecho.Send(),
	)
}

// FetchRealisationByID handles GET /realisations/{id}
func (crm *CatalogRoutesManager) FetchRealisationByID(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		gecho.BadRequest(w,
			gecho.WithMessage("error.realisations.realisationIdRequired"),
			gecho.Send(),
		)
		return
	}

	realisation, err := crm.catalogService.GetRealisationByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			gecho.NotFound(w,
				gecho.WithMessage("error.realisations.notFound"),
				gecho.Send(),
			)
			return
		}

		crm.logger.Error("Failed to fetch realisation", gecho.Field("id", id), gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("error.realisations.failedToFetchOne"),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"realisation": realisation,
		}),
		gecho.Send(),
	)
}

func parseRealisationListOptions(r *http.Request) (*services.RealisationListOptions, error) {
	query := r.URL.Query()
	opts := &services.RealisationListOptions{}

	if page := query.Get("page"); page != "" {
		valInt, err := strconv.Atoi(page)
		if err != nil {
			return nil, err
		}
		opts.Page = valInt
	}

	if pageSize := query.Get("page_size"); pageSize != "" {
		valInt, err := strconv.Atoi(pageSize)
		if err != nil {
			return nil, err
		}
		opts.PageSize = valInt
	}

	if isFeatured := query.Get("is_featured"); isFeatured != "" {
		valBool, err := strconv.ParseBool(isFeatured)
		if err != nil {
			return nil, err
		}
		opts.IsFeatured = &valBool
	}

	if productID := query.Get("product_id"); productID != "" {
		opts.ProductID = productID
	}

	return opts, nil
}
