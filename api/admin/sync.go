package admin

import (
	"errors"
	"io"
	"net/http"
	"ns2po_server/lib"
	"ns2po_server/services"
	"ns2po_server/structs"

	"github.com/MonkyMars/gecho"
)

// TriggerSync handles POST /admin/sync. The body selects the direction,
// category scope, dry-run and full-sync behavior.
func (ar *AdminRoutesManager) TriggerSync(w http.ResponseWriter, r *http.Request) {
	body, err := lib.ExtractAndValidateBody[structs.SyncOptions](r)
	if err != nil {
		// An empty body means "sync everything with defaults"
		if errors.Is(err, io.EOF) {
			body = &structs.SyncOptions{}
		} else {
			ar.logger.Debug("Failed to extract and validate sync options", err)
			gecho.BadRequest(w, gecho.WithMessage("Invalid sync options"), gecho.Send())
			return
		}
	}

	if body.Direction == "" {
		body.Direction = services.DirectionAirtableToTurso
	}

	var result *structs.SyncResult
	switch body.Direction {
	case services.DirectionAirtableToTurso:
		result, err = ar.syncService.SyncFromAirtable(r.Context(), body)
	case services.DirectionTursoToAirtable:
		result, err = ar.syncService.SyncUsageStats(r.Context(), body)
	default:
		gecho.BadRequest(w,
			gecho.WithMessage("Direction must be airtable-to-turso or turso-to-airtable"),
			gecho.Send(),
		)
		return
	}

	if err != nil {
		ar.logger.Error("Sync run failed",
			gecho.Field("direction", body.Direction),
			gecho.Field("error", err),
		)
		gecho.InternalServerError(w,
			gecho.WithMessage("Sync failed"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(result),
		gecho.Send(),
	)
}

// SyncUsageStats handles POST /admin/sync/usage-stats, the reverse flow that
// pushes local usage counters back to Airtable.
func (ar *AdminRoutesManager) SyncUsageStats(w http.ResponseWriter, r *http.Request) {
	opts := &structs.SyncOptions{Direction: services.DirectionTursoToAirtable}

	result, err := ar.syncService.SyncUsageStats(r.Context(), opts)
	if err != nil {
		ar.logger.Error("Usage stats sync failed", gecho.Field("error", err))
		gecho.InternalServerError(w,
			gecho.WithMessage("Usage stats sync failed"),
			gecho.WithData(err.Error()),
			gecho.Send(),
		)
		return
	}

	gecho.Success(w,
		gecho.WithData(result),
		gecho.Send(),
	)
}

// SyncHealth handles GET /admin/sync/health. The report is advisory and never
// blocks traffic.
func (ar *AdminRoutesManager) SyncHealth(w http.ResponseWriter, r *http.Request) {
	health, err := ar.syncService.HealthCheck(r.Context())
	if err != nil {
		ar.logger.Error("Sync health check failed", gecho.Field("error", err))
		gecho.InternalServerError(w, gecho.WithMessage("Unable to compute sync health"), gecho.Send())
		return
	}

	gecho.Success(w,
		gecho.WithData(health),
		gecho.Send(),
	)
}
