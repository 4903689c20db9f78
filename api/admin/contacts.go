package admin

import (
	"errors"
	"net/http"
	"ns2po_server/lib"
	"strconv"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

// ListContacts handles GET /admin/contacts with optional type filter
func (ar *AdminRoutesManager) ListContacts(w http.ResponseWriter, r *http.Request) {
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

	result, err := ar.contactService.ListContacts(r.Context(), query.Get("type"), page, pageSize)
	if err != nil {
		ar.logger.Error("Failed to list contacts", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Unable to list contacts"), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithData(map[string]any{
			"contacts":   result.Data,
			"pagination": result.Pagination,
		}),
		gecho.Send(),
	)
}

type contactStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=new in_progress closed"`
}

// UpdateContactStatus handles PUT /admin/contacts/{id}/status
func (ar *AdminRoutesManager) UpdateContactStatus(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		gecho.BadRequest(w, gecho.WithMessage("Please select a contact to update"), gecho.Send())
		return
	}

	body, err := lib.ExtractAndValidateBody[contactStatusRequest](r)
	if err != nil {
		ar.logger.Debug("Failed to extract and validate status body", err)
		gecho.BadRequest(w, gecho.WithMessage("Status must be one of: new, in_progress, closed"), gecho.Send())
		return
	}

	if err := ar.contactService.UpdateContactStatus(r.Context(), id, body.Status); err != nil {
		if errors.Is(err, lib.ErrNotFound) {
			gecho.NotFound(w, gecho.WithMessage("Contact not found"), gecho.Send())
			return
		}

		ar.logger.Error("Failed to update contact status", gecho.Field("id", id), gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Unable to update contact status"), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithMessage("Contact status updated"),
		gecho.WithData(map[string]string{"id": id, "status": body.Status}),
		gecho.Send(),
	)
}
