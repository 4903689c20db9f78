package admin

import (
	"ns2po_server/api/middleware"
	"ns2po_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type AdminRoutesManager struct {
	logger              *gecho.Logger
	authService         *services.AuthService
	bundleService       *services.BundleService
	contactService      *services.ContactService
	assetService        *services.AssetService
	syncService         *services.SyncService
	invalidationService *services.InvalidationService
	cacheService        *services.CacheService
	mw                  *middleware.Middleware
}

func NewAdminRoutesManager(
	logger *gecho.Logger,
	authService *services.AuthService,
	bundleService *services.BundleService,
	contactService *services.ContactService,
	assetService *services.AssetService,
	syncService *services.SyncService,
	invalidationService *services.InvalidationService,
	cacheService *services.CacheService,
	mw *middleware.Middleware,
) *AdminRoutesManager {
	return &AdminRoutesManager{
		logger:              logger,
		authService:         authService,
		bundleService:       bundleService,
		contactService:      contactService,
		assetService:        assetService,
		syncService:         syncService,
		invalidationService: invalidationService,
		cacheService:        cacheService,
		mw:                  mw,
	}
}

func (ar *AdminRoutesManager) RegisterRoutes(r chi.Router) {
	r.Route("/admin", func(r chi.Router) {
		r.Post("/login", ar.Login)

		// Everything else requires an admin token
		r.Group(func(r chi.Router) {
			r.Use(ar.mw.AdminAuthMiddleware)

			// Campaign bundle management
			r.Post("/campaign-bundles", ar.CreateBundle)
			r.Put("/campaign-bundles/{id}", ar.UpdateBundle)
			r.Delete("/campaign-bundles/{id}", ar.DeleteBundle)
			r.Post("/campaign-bundles/recalculate", ar.RecalculateBundleTotals)

			// Contact follow-up
			r.Get("/contacts", ar.ListContacts)
			r.Put("/contacts/{id}/status", ar.UpdateContactStatus)

			// Asset management
			r.Post("/assets", ar.UploadAsset)
			r.Get("/assets", ar.ListAssets)
			r.Delete("/assets/{id}", ar.DeleteAsset)
			r.Post("/assets/sync", ar.SyncAssets)
			r.Post("/assets/invalidate", ar.InvalidateAssets)
			r.Post("/assets/{id}/invalidate", ar.InvalidateAsset)

			// Airtable synchronization
			r.Post("/sync", ar.TriggerSync)
			r.Post("/sync/usage-stats", ar.SyncUsageStats)
			r.Get("/sync/health", ar.SyncHealth)

			// Cache management
			r.Post("/cache/invalidate", ar.InvalidateCache)
		})
	})
}
