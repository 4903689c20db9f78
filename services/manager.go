package services

import (
	"ns2po_server/airtable"
	"ns2po_server/database"
	"ns2po_server/structs"

	"github.com/MonkyMars/gecho"
)

type ServiceManager struct {
	AuthService         *AuthService
	EmailService        *EmailService
	CacheService        *CacheService
	HealthService       *HealthService
	BundleService       *BundleService
	ProductService      *ProductService
	CatalogService      *CatalogService
	ContactService      *ContactService
	AssetService        *AssetService
	SyncService         *SyncService
	InvalidationService *InvalidationService
}

func NewServiceManager(logger *gecho.Logger, cfg *structs.Config, db *database.DB) (*ServiceManager, error) {
	airtableClient := airtable.NewClient(cfg.Airtable)

	authService := NewAuthService(cfg, logger)
	cacheService := NewCacheService(logger, cfg)
	emailService := NewEmailService(logger, cfg)
	healthService := NewHealthService(logger, db, cacheService)
	bundleService := NewBundleService(logger, db, cacheService)
	productService := NewProductService(logger, db, cacheService)
	catalogService := NewCatalogService(logger, db)
	contactService := NewContactService(logger, db, emailService)

	assetService, err := NewAssetService(logger, cfg, db)
	if err != nil {
		return nil, err
	}

	syncService := NewSyncService(logger, cfg, NewSyncStore(db), airtableClient, cacheService)
	invalidationService := NewInvalidationService(logger, cfg, assetService, assetService, airtableClient, cacheService)

	return &ServiceManager{
		AuthService:         authService,
		EmailService:        emailService,
		CacheService:        cacheService,
		HealthService:       healthService,
		BundleService:       bundleService,
		ProductService:      productService,
		CatalogService:      catalogService,
		ContactService:      contactService,
		AssetService:        assetService,
		SyncService:         syncService,
		InvalidationService: invalidationService,
	}, nil
}
