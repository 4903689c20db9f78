package admin

import (
	"errors"
	"net/http"
	"ns2po_server/lib"
	"strconv"
	"strings"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

// maxUploadSize bounds the multipart form held in memory during an upload.
const maxUploadSize = 10 << 20 // 10 MB

// UploadAsset handles POST /admin/assets with a multipart form. The file goes
// to Cloudinary and is mirrored as an assets row.
func (ar *AdminRoutesManager) UploadAsset(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		ar.logger.Debug("Failed to parse multipart form", err)
		gecho.BadRequest(w, gecho.WithMessage("Please provide a file to upload"), gecho.Send())
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		gecho.BadRequest(w, gecho.WithMessage("Please provide a file to upload"), gecho.Send())
		return
	}
	defer file.Close()

	var tags []string
	if raw := r.FormValue("tags"); raw != "" {
		for _, tag := range strings.Split(raw, ",") {
			if tag = strings.TrimSpace(tag); tag != "" {
				tags = append(tags, tag)
			}
		}
	}

	asset, err := ar.assetService.UploadAsset(r.Context(), file, header.Filename, tags)
	if err != nil {
		ar.logger.Error("Failed to upload asset",
			gecho.Field("filename", header.Filename),
			gecho.Field("error", err),
		)
		gecho.InternalServerError(w, gecho.WithMessage("Unable to upload asset. Please try again"), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithData(asset),
		gecho.WithMessage("Asset uploaded successfully"),
		gecho.Send(),
	)
}

// ListAssets handles GET /admin/assets
func (ar *AdminRoutesManager) ListAssets(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	page := 1
	pageSize := 20
	if pageStr := query.Get("page"); pageStr != "" {
		if val, err := strconv.Atoi(pageStr); err == nil && val > 0 {
			page = val
		}
	}
	if pageSizeStr := query.Get("page_size"); pageSizeStr != "" {
		if val, err := strconv.Atoi(pageSizeStr); err == nil && val > 0 {
			pageSize = val
		}
	}

	result, err := ar.assetService.ListAssets(r.Context(), page, pageSize)
	if err != nil {
		ar.logger.Error("Failed to list assets", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Unable to list assets"), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"assets":     result.Data,
			"pagination": result.Pagination,
		}),
		gecho.Send(),
	)
}

// DeleteAsset handles DELETE /admin/assets/{id}. Assets still referenced by a
// usage row are refused.
func (ar *AdminRoutesManager) DeleteAsset(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		gecho.BadRequest(w, gecho.WithMessage("Please select an asset to delete"), gecho.Send())
		return
	}

	if err := ar.assetService.DeleteAsset(r.Context(), id); err != nil {
		switch {
		case errors.Is(err, lib.ErrNotFound):
			gecho.NotFound(w, gecho.WithMessage("Asset not found"), gecho.Send())
		case errors.Is(err, lib.ErrConflict):
			gecho.Conflict(w,
				gecho.WithMessage("Asset is still referenced and cannot be deleted"),
				gecho.WithData(err.Error()),
				gecho.Send(),
			)
		default:
			ar.logger.Error("Failed to delete asset", gecho.Field("id", id), gecho.Field("error", err))
			gecho.InternalServerError(w, gecho.WithMessage("Unable to delete asset. Please try again"), gecho.Send())
		}
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Asset deleted successfully"),
		gecho.Send(),
	)
}

// SyncAssets handles POST /admin/assets/sync. It reconciles the mirror table
// against the Cloudinary folder.
func (ar *AdminRoutesManager) SyncAssets(w http.ResponseWriter, r *http.Request) {
	synced, err := ar.assetService.SyncAssets(r.Context())
	if err != nil {
		ar.logger.Error("Failed to sync assets", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Unable to sync assets"), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]int{"synced": synced}),
		gecho.Send(),
	)
}
