package admin

import (
	"errors"
	"net/http"
	"ns2po_server/lib"
	"ns2po_server/services"
	"ns2po_server/structs"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

// CreateBundle handles POST /admin/campaign-bundles
func (ar *AdminRoutesManager) CreateBundle(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.BundleCreateInput](r)
	if err != nil {
		ar.logger.Debug("Failed to extract and validate bundle body", err)
		gecho.BadRequest(w, gecho.WithMessage("Invalid request body"), gecho.Send())
		return
	}

	bundle, err := ar.bundleService.CreateBundle(r.Context(), body)
	if err != nil {
		var verr *services.BundleValidationError
		if errors.As(err, &verr) {
			gecho.BadRequest(w,
				gecho.WithMessage("La validation du pack a échoué"),
				gecho.WithData(map[string]any{"errors": verr.Messages}),
				gecho.Send(),
			)
			return
		}

		ar.logger.Error("Failed to create bundle", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Unable to create bundle. Please try again"), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithData(bundle),
		gecho.WithMessage("Bundle created successfully"),
		gecho.Send(),
	)
}

// UpdateBundle handles PUT /admin/campaign-bundles/{id}
func (ar *AdminRoutesManager) UpdateBundle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		gecho.BadRequest(w, gecho.WithMessage("Please select a bundle to update"), gecho.Send())
		return
	}

	body, err := lib.ExtractAndValidateBody[structs.BundleUpdateInput](r)
	if err != nil {
		ar.logger.Debug("Failed to extract and validate bundle body", err)
		gecho.BadRequest(w, gecho.WithMessage("Invalid request body"), gecho.Send())
		return
	}

	bundle, err := ar.bundleService.UpdateBundle(r.Context(), id, body)
	if err != nil {
		var verr *services.BundleValidationError
		switch {
		case errors.As(err, &verr):
			gecho.BadRequest(w,
				gecho.WithMessage("La validation du pack a échoué"),
				gecho.WithData(map[string]any{"errors": verr.Messages}),
				gecho.Send(),
			)
		case errors.Is(err, lib.ErrNotFound):
			gecho.NotFound(w, gecho.WithMessage("Bundle not found"), gecho.Send())
		case errors.Is(err, lib.ErrVersionConflict):
			gecho.Conflict(w,
				gecho.WithMessage("Conflit de version détecté"),
				gecho.Send(),
			)
		default:
			ar.logger.Error("Failed to update bundle", gecho.Field("id", id), gecho.Field("error", err))
			gecho.InternalServerError(w, gecho.WithMessage("Unable to update bundle. Please try again"), gecho.Send())
		}
		return
	}

	gecho.Success(w,
		gecho.WithData(bundle),
		gecho.WithMessage("Bundle updated successfully"),
		gecho.Send(),
	)
}

// DeleteBundle handles DELETE /admin/campaign-bundles/{id}. By default the
// delete is guarded by reference checks; ?force=true archives referencing
// orders and invalidates quotes instead of refusing.
func (ar *AdminRoutesManager) DeleteBundle(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		gecho.BadRequest(w, gecho.WithMessage("Please select a bundle to delete"), gecho.Send())
		return
	}

	opts := structs.BundleDeleteOptions{CheckReferences: true}
	if r.URL.Query().Get("check_references") == "false" {
		opts.CheckReferences = false
	}
	if r.URL.Query().Get("force") == "true" {
		opts.ForceDelete = true
	}

	result, err := ar.bundleService.DeleteBundle(r.Context(), id, opts)
	if err != nil {
		var refErr *structs.ReferenceConflictError
		switch {
		case errors.As(err, &refErr):
			gecho.Conflict(w,
				gecho.WithMessage("Le pack est référencé par des commandes ou devis actifs"),
				gecho.WithData(refErr),
				gecho.Send(),
			)
		case errors.Is(err, lib.ErrNotFound):
			gecho.NotFound(w, gecho.WithMessage("Bundle not found"), gecho.Send())
		default:
			ar.logger.Error("Failed to delete bundle", gecho.Field("id", id), gecho.Field("error", err))
			gecho.InternalServerError(w, gecho.WithMessage("Unable to delete bundle. Please try again"), gecho.Send())
		}
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Bundle deleted successfully"),
		gecho.WithData(result),
		gecho.Send(),
	)
}

// RecalculateBundleTotals handles POST /admin/campaign-bundles/recalculate.
// It recomputes every bundle whose stored totals drifted from its line items.
func (ar *AdminRoutesManager) RecalculateBundleTotals(w http.ResponseWriter, r *http.Request) {
	updated, err := ar.bundleService.RecalculateBundleTotals(r.Context())
	if err != nil {
		ar.logger.Error("Failed to recalculate bundle totals", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Unable to recalculate bundle totals"), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]int{"updated": updated}),
		gecho.Send(),
	)
}
