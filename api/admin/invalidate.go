package admin

import (
	"errors"
	"io"
	"net/http"
	"ns2po_server/lib"
	"ns2po_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type invalidateAssetRequest struct {
	Targets *structs.InvalidationTargets `json:"targets,omitempty"`
}

type invalidateAssetsRequest struct {
	AssetIDs []string                     `json:"assetIds" validate:"required,min=1,max=200"`
	Targets  *structs.InvalidationTargets `json:"targets,omitempty"`
}

type invalidateCacheRequest struct {
	Scope    string `json:"scope,omitempty" validate:"omitempty,oneof=all bundles products"`
	BundleID string `json:"bundleId,omitempty"`
}

// InvalidateAsset handles POST /admin/assets/{id}/invalidate. The fan-out is
// best effort: the response always carries the per-subsystem outcomes.
func (ar *AdminRoutesManager) InvalidateAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		gecho.BadRequest(w, gecho.WithMessage("Please select an asset to invalidate"), gecho.Send())
		return
	}

	targets := structs.AllInvalidationTargets()
	body, err := lib.ExtractAndValidateBody[invalidateAssetRequest](r)
	if err != nil && !errors.Is(err, io.EOF) {
		ar.logger.Debug("Failed to extract invalidation targets", err)
		gecho.BadRequest(w, gecho.WithMessage("Invalid request body"), gecho.Send())
		return
	}
	if body != nil && body.Targets != nil {
		targets = *body.Targets
	}

	result, err := ar.invalidationService.InvalidateAsset(r.Context(), id, targets)
	if err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			gecho.NotFound(w, gecho.WithMessage("Asset not found"), gecho.Send())
			return
		}

		ar.logger.Warn("Asset invalidation partially failed",
			gecho.Field("id", id),
			gecho.Field("error", err),
		)
		gecho.InternalServerError(w,
			gecho.WithMessage(err.Error()),
			gecho.WithData(result),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(result),
		gecho.Send(),
	)
}

// InvalidateAssets handles POST /admin/assets/invalidate for a batch of ids.
// Individual failures never abort the batch; the summary reports them.
func (ar *AdminRoutesManager) InvalidateAssets(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[invalidateAssetsRequest](r)
	if err != nil {
		ar.logger.Debug("Failed to extract and validate batch body", err)
		gecho.BadRequest(w, gecho.WithMessage("Please provide a list of asset ids"), gecho.Send())
		return
	}

	targets := structs.AllInvalidationTargets()
	if body.Targets != nil {
		targets = *body.Targets
	}

	result := ar.invalidationService.InvalidateAssets(r.Context(), body.AssetIDs, targets)

	gecho.Success(w,
		gecho.WithData(result),
		gecho.Send(),
	)
}

// InvalidateCache handles POST /admin/cache/invalidate. The scope narrows the
// flush to bundles or products; default flushes everything.
func (ar *AdminRoutesManager) InvalidateCache(w http.ResponseWriter, r *http.Request) {
	scope := "all"
	bundleID := ""

	body, err := lib.ExtractAndValidateBody[invalidateCacheRequest](r)
	if err != nil && !errors.Is(err, io.EOF) {
		ar.logger.Debug("Failed to extract cache invalidation body", err)
		gecho.BadRequest(w, gecho.WithMessage("Invalid request body"), gecho.Send())
		return
	}
	if body != nil {
		if body.Scope != "" {
			scope = body.Scope
		}
		bundleID = body.BundleID
	}

	switch scope {
	case "bundles":
		err = ar.cacheService.InvalidateBundleCaches(bundleID)
	case "products":
		err = ar.cacheService.InvalidateProductCaches()
	default:
		err = ar.cacheService.InvalidateAllCaches()
	}

	if err != nil {
		ar.logger.Error("Cache invalidation failed",
			gecho.Field("scope", scope),
			gecho.Field("error", err),
		)
		gecho.InternalServerError(w, gecho.WithMessage("Unable to invalidate cache"), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Cache invalidated"),
		gecho.WithData(map[string]string{"scope": scope}),
		gecho.Send(),
	)
}
