package api

import (
	"net/http"
	"ns2po_server/api/admin"
	"ns2po_server/api/bundles"
	"ns2po_server/api/catalog"
	"ns2po_server/api/contact"
	"ns2po_server/api/debug"
	"ns2po_server/api/health"
	"ns2po_server/api/middleware"
	"ns2po_server/api/products"
	"ns2po_server/config"
	"ns2po_server/database"
	"ns2po_server/services"

	"github.com/MonkyMars/gecho"
	"github.com/go-chi/chi/v5"
	chiware "github.com/go-chi/chi/v5/middleware"
)

func App() chi.Router {
	r := chi.NewRouter()

	// create loggers
	logLevel := gecho.ParseLogLevel(config.GetLogLevel())
	mwLogger := gecho.NewLogger(gecho.NewConfig(gecho.WithShowCaller(false), gecho.WithLogLevel(logLevel)))
	standardLogger := gecho.NewLogger(gecho.NewConfig(gecho.WithShowCaller(true), gecho.WithLogLevel(logLevel)))

	// db
	db := database.GetInstance()

	// config
	cfg := config.GetConfig()

	// services
	sm, err := services.NewServiceManager(standardLogger, cfg, db)
	if err != nil {
		standardLogger.Fatal("Failed to initialize services", gecho.Field("error", err))
	}

	// Initialize middleware
	mw := middleware.NewMiddleware(cfg, mwLogger, sm.CacheService, sm.AuthService)

	// Core infra
	r.Use(chiware.RequestID)
	r.Use(chiware.RealIP)
	r.Use(chiware.Recoverer)

	// Limits & security
	r.Use(mw.BodyLimit(10 * 1024 * 1024))
	r.Use(mw.SecurityHeaders())

	// Observability
	r.Use(gecho.Handlers.CreateLoggingMiddleware(mwLogger))
	r.Use(middleware.MetricsMiddleware)

	// CORS (must be before auth)
	r.Use(mw.SetupCORS().Handler)

	// Rate limiting
	r.Use(mw.RateLimitMiddleware())

	// Register all routes
	NewRouterManager(
		bundles.NewBundleRoutesManager(standardLogger, sm.BundleService),
		products.NewProductRoutesManager(standardLogger, sm.ProductService),
		catalog.NewCatalogRoutesManager(standardLogger, sm.CatalogService),
		contact.NewContactRoutesManager(standardLogger, sm.ContactService),
		health.NewHealthRoutesManager(sm.HealthService),
		admin.NewAdminRoutesManager(
			standardLogger,
			sm.AuthService,
			sm.BundleService,
			sm.ContactService,
			sm.AssetService,
			sm.SyncService,
			sm.InvalidationService,
			sm.CacheService,
			mw,
		),
		debug.NewDebugRoutesManager(sm.CacheService),
	).RegisterRoutes(r)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		gecho.Success(w,
			gecho.WithMessage("Welcome to the NS2PO API"),
			gecho.Send(),
		)
	})

	r.Get("/*", func(w http.ResponseWriter, r *http.Request) {
		gecho.NotFound(w,
			gecho.Send(),
		)
	})

	return r
}
