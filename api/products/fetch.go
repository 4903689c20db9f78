package products

import (
	"errors"
	"net/http"
	"ns2po_server/handling"
	"ns2po_server/lib"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

// FetchAllProducts handles GET /products with filtering, pagination, and sorting
func (prm *ProductRoutesManager) FetchAllProducts(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters into options
	opts, err := handling.ParseProductListOptions(r)
	if err != nil {
		prm.logger.Warn("Invalid query parameters", gecho.Field("error", err))
		gecho.BadRequest(w,
			gecho.WithMessage("error.invalidQueryParameters"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	// Log the request
	prm.logger.Debug("Fetching products",
		gecho.Field("category", opts.Category),
		gecho.Field("page", opts.Page),
		gecho.Field("page_size", opts.PageSize),
	)

	// Fetch products using the service
	result, err := prm.productService.GetProducts(ctx, opts)
	if err != nil {
		prm.logger.Error("Failed to fetch products", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("error.products.failedToFetch"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	// Return successful response with metadata
	gecho.Success(w,
		gecho.WithData(map[string]any{
			"products":   result.Products,
			"pagination": result.Pagination,
			"meta": map[string]any{
				"query_time_ms": result.QueryTime.Milliseconds(),
				"count":         len(result.Products),
			},
		}),
		gecho.Send(),
	)
}

// FetchProductByID handles GET /products/{id} to fetch a single product
func (prm *ProductRoutesManager) FetchProductByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	if id == "" {
		prm.logger.Warn("Product ID not provided")
		gecho.BadRequest(w,
			gecho.WithMessage("error.products.productIdRequired"),
			gecho.Send(),
		)
		return
	}

	product, err := prm.productService.GetProductByID(ctx, id)
	if err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			gecho.NotFound(w,
				gecho.WithMessage("error.products.notFound"),
				gecho.Send(),
			)
			return
		}

		prm.logger.Error("Failed to fetch product by ID", gecho.Field("id", id), gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("error.products.failedToFetchOne"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"product": product,
		}),
		gecho.Send(),
	)
}

type usageRequest struct {
	ProductIDs []string `json:"productIds" validate:"required,min=1,max=50"`
}

// TrackProductUsage handles POST /products/usage. The storefront reports which
// products ended up in a generated quote so popularity can flow back to Airtable.
func (prm *ProductRoutesManager) TrackProductUsage(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[usageRequest](r)
	if err != nil {
		prm.logger.Debug("Failed to extract and validate body", err)
		gecho.BadRequest(w, gecho.WithMessage("Please provide a list of product ids"), gecho.Send())
		return
	}

	if err := prm.productService.IncrementUsage(r.Context(), body.ProductIDs); err != nil {
		prm.logger.Error("Failed to track product usage", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Unable to track product usage"), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]int{"tracked": len(body.ProductIDs)}),
		gecho.Send(),
	)
}
