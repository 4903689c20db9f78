package bundles

import (
	"ns2po_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type BundleRoutesManager struct {
	logger        *gecho.Logger
	bundleService *services.BundleService
}

func NewBundleRoutesManager(
	logger *gecho.Logger,
	bundleService *services.BundleService,
) *BundleRoutesManager {
	return &BundleRoutesManager{
		logger:        logger,
		bundleService: bundleService,
	}
}

func (brm *BundleRoutesManager) RegisterRoutes(r chi.Router) {
	r.Get("/campaign-bundles", brm.FetchAllBundles)
	r.Get("/campaign-bundles/{id}", brm.FetchBundleByID)
}
