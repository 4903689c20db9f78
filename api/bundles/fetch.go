package bundles

import (
	"errors"
	"net/http"
	"ns2po_server/handling"
	"ns2po_server/lib"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

// FetchAllBundles handles GET /campaign-bundles with filtering, pagination and sorting
func (brm *BundleRoutesManager) FetchAllBundles(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	// Parse query parameters into options
	opts, err := handling.ParseBundleListOptions(r)
	if err != nil {
		brm.logger.Warn("Invalid query parameters", gecho.Field("error", err))
		gecho.BadRequest(w,
			gecho.WithMessage("error.invalidQueryParameters"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	// Log the request
	brm.logger.Debug("Fetching campaign bundles",
		gecho.Field("page", opts.Page),
		gecho.Field("page_size", opts.PageSize),
		gecho.Field("target_audience", opts.TargetAudience),
	)

	// Fetch bundles using the service. Database failures fall back to the
	// static catalog inside the service, so an error here means bad input.
	result, err := brm.bundleService.ListBundles(ctx, opts)
	if err != nil {
		brm.logger.Warn("Failed to fetch bundles", gecho.Field("error", err))
		gecho.BadRequest(w,
			gecho.WithMessage("error.bundles.failedToFetch"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	data := map[string]any{
		"bundles":    result.Bundles,
		"pagination": result.Pagination,
		"source":     result.Source,
		"meta": map[string]any{
			"query_time_ms": result.QueryTime.Milliseconds(),
			"count":         len(result.Bundles),
		},
	}
	if result.Warning != "" {
		data["warning"] = result.Warning
	}

	gecho.Success(w,
		gecho.WithData(data),
		gecho.Send(),
	)
}

// FetchBundleByID handles GET /campaign-bundles/{id} to fetch a single bundle
func (brm *BundleRoutesManager) FetchBundleByID(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id := chi.URLParam(r, "id")
	if id == "" {
		gecho.BadRequest(w,
			gecho.WithMessage("error.bundles.bundleIdRequired"),
			gecho.Send(),
		)
		return
	}

	result, err := brm.bundleService.GetBundleByID(ctx, id)
	if err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			gecho.NotFound(w,
				gecho.WithMessage("error.bundles.notFound"),
				gecho.Send(),
			)
			return
		}

		brm.logger.Error("Failed to fetch bundle by ID", gecho.Field("id", id), gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("error.bundles.failedToFetchOne"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	data := map[string]any{
		"bundle": result.Bundle,
		"source": result.Source,
	}
	if result.Warning != "" {
		data["warning"] = result.Warning
	}

	gecho.Success(w,
		gecho.WithData(data),
		gecho.Send(),
	)
}
