package catalog

import (
	"ns2po_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
)

type CatalogRoutesManager struct {
	logger         *gecho.Logger
	catalogService *services.CatalogService
}

func NewCatalogRoutesManager(
	logger *gecho.Logger,
	catalogService *services.CatalogService,
) *CatalogRoutesManager {
	return &CatalogRoutesManager{
		logger:         logger,
		catalogService: catalogService,
	}
}

func (crm *CatalogRoutesManager) RegisterRoutes(r chi.Router) {
	r.Get("/categories", crm.FetchCategories)
	r.Get("/categories/{slug}", crm.FetchCategoryBySlug)
	r.Get("/realisations", crm.FetchRealisations)
	r.Get("/realisations/{id}", crm.FetchRealisationByID)
}
