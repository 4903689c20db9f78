package api

import (
	"ns2po_server/api/admin"
	"ns2po_server/api/bundles"
	"ns2po_server/api/catalog"
	"ns2po_server/api/contact"
	"ns2po_server/api/debug"
	"ns2po_server/api/health"
	"ns2po_server/api/products"

	"github.com/go-chi/chi/v5"
)

type routerManager struct {
	bundleRoutes  *bundles.BundleRoutesManager
	productRoutes *products.ProductRoutesManager
	catalogRoutes *catalog.CatalogRoutesManager
	contactRoutes *contact.ContactRoutesManager
	healthRoutes  *health.HealthRoutesManager
	adminRoutes   *admin.AdminRoutesManager
	debugRoutes   *debug.DebugRoutesManager
}

func NewRouterManager(
	bundleRoutes *bundles.BundleRoutesManager,
	productRoutes *products.ProductRoutesManager,
	catalogRoutes *catalog.CatalogRoutesManager,
	contactRoutes *contact.ContactRoutesManager,
	healthRoutes *health.HealthRoutesManager,
	adminRoutes *admin.AdminRoutesManager,
	debugRoutes *debug.DebugRoutesManager,
) *routerManager {
	return &routerManager{
		bundleRoutes:  bundleRoutes,
		productRoutes: productRoutes,
		catalogRoutes: catalogRoutes,
		contactRoutes: contactRoutes,
		healthRoutes:  healthRoutes,
		adminRoutes:   adminRoutes,
		debugRoutes:   debugRoutes,
	}
}

func (rm *routerManager) RegisterRoutes(r chi.Router) {
	rm.bundleRoutes.RegisterRoutes(r)
	rm.productRoutes.RegisterRoutes(r)
	rm.catalogRoutes.RegisterRoutes(r)
	rm.contactRoutes.RegisterRoutes(r)
	rm.healthRoutes.RegisterRoutes(r)
	rm.adminRoutes.RegisterRoutes(r)
	rm.debugRoutes.RegisterRoutes(r)
}
