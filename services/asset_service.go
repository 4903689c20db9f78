package services

import (
	"context"
	"fmt"
	"io"
	"ns2po_server/database"
	"ns2po_server/lib"
	"ns2po_server/structs"
	"ns2po_server/structs/tables"
	"time"

	"github.com/MonkyMars/gecho"
	"github.com/cloudinary/cloudinary-go/v2"
	"github.com/cloudinary/cloudinary-go/v2/api"
	"github.com/cloudinary/cloudinary-go/v2/api/admin"
	"github.com/cloudinary/cloudinary-go/v2/api/uploader"
	"github.com/google/uuid"
)

// AssetService manages the Cloudinary media library and its relational
// mirror. It also implements the ImageHost and AssetResolver surfaces of the
// invalidation coordinator.
type AssetService struct {
	logger *gecho.Logger
	db     *database.DB
	cld    *cloudinary.Cloudinary
	folder string
}

func NewAssetService(logger *gecho.Logger, cfg *structs.Config, db *database.DB) (*AssetService, error) {
	cld, err := cloudinary.NewFromParams(
		cfg.Cloudinary.CloudName,
		cfg.Cloudinary.APIKey,
		cfg.Cloudinary.APISecret,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize cloudinary: %w", err)
	}

	return &AssetService{
		logger: logger,
		db:     db,
		cld:    cld,
		folder: cfg.Cloudinary.Folder,
	}, nil
}

// UploadAsset pushes a file to Cloudinary and mirrors it as an assets row.
func (as *AssetService) UploadAsset(ctx context.Context, file io.Reader, filename string, tags []string) (*tables.Asset, error) {
	startTime := time.Now()

	publicID := lib.Slugify(filename)
	if publicID == "" {
		publicID = uuid.New().String()
	}

	resp, err := as.cld.Upload.Upload(ctx, file, uploader.UploadParams{
		PublicID:       publicID,
		Folder:         as.folder,
		Tags:           api.CldAPIArray(tags),
		Invalidate:     api.Bool(true),
		UseFilename:    api.Bool(false),
		UniqueFilename: api.Bool(true),
	})
	if err != nil {
		as.logger.Error("Cloudinary upload failed",
			gecho.Field("error", err),
			gecho.Field("filename", filename),
		)
		return nil, fmt.Errorf("failed to upload asset: %w", err)
	}

	now := time.Now()
	asset := &tables.Asset{
		ID:         uuid.New().String(),
		PublicID:   resp.PublicID,
		URL:        resp.URL,
		SecureURL:  resp.SecureURL,
		Format:     resp.Format,
		Width:      resp.Width,
		Height:     resp.Height,
		Folder:     as.folder,
		Tags:       tables.JSONStrings(tags),
		IsActive:   true,
		UploadedAt: now,
		LastSync:   &now,
	}

	if _, err := database.Create(as.db, ctx, asset); err != nil {
		as.logger.Error("Failed to persist uploaded asset",
			gecho.Field("error", err),
			gecho.Field("public_id", resp.PublicID),
		)
		return nil, lib.MapDBError(err)
	}

	as.logger.Info("Asset uploaded",
		gecho.Field("public_id", resp.PublicID),
		gecho.Field("format", resp.Format),
		gecho.Field("duration", time.Since(startTime)),
	)
	return asset, nil
}

// DeleteAsset removes an asset from Cloudinary and the mirror. Assets still
// referenced by a usage row cannot be deleted.
func (as *AssetService) DeleteAsset(ctx context.Context, id string) error {
	asset, err := as.AssetByID(ctx, id)
	if err != nil {
		return err
	}
	if asset == nil {
		return lib.ErrNotFound
	}

	usages, err := database.Query[tables.AssetUsage](as.db).Where("asset_id", id).Count(ctx)
	if err != nil {
		return lib.MapDBError(err)
	}
	if usages > 0 {
		return fmt.Errorf("%w: asset is referenced by %d entities", lib.ErrConflict, usages)
	}

	if _, err := as.cld.Upload.Destroy(ctx, uploader.DestroyParams{
		PublicID:   asset.PublicID,
		Invalidate: api.Bool(true),
	}); err != nil {
		return fmt.Errorf("failed to delete cloudinary asset: %w", err)
	}

	if _, err := database.DeleteByID[tables.Asset](as.db, ctx, id); err != nil {
		return lib.MapDBError(err)
	}

	as.logger.Info("Asset deleted", gecho.Field("id", id), gecho.Field("public_id", asset.PublicID))
	return nil
}

// ListAssets returns the mirrored assets, newest first.
func (as *AssetService) ListAssets(ctx context.Context, page, pageSize int) (*database.PaginationResult[tables.Asset], error) {
	query := database.Query[tables.Asset](as.db).
		Where("is_active", true).
		OrderBy("uploaded_at", database.DESC)

	result, err := database.Paginate(query, ctx, page, pageSize)
	if err != nil {
		return nil, lib.MapDBError(err)
	}
	return result, nil
}

// AssetByID implements AssetResolver.
func (as *AssetService) AssetByID(ctx context.Context, id string) (*tables.Asset, error) {
	asset, err := database.Query[tables.Asset](as.db).Where("id", id).First(ctx)
	if err != nil {
		return nil, lib.MapDBError(err)
	}
	return asset, nil
}

// Invalidate implements ImageHost: an explicit re-derivation with the
// invalidate flag purges the CDN copies of the asset.
func (as *AssetService) Invalidate(ctx context.Context, publicID string) error {
	_, err := as.cld.Upload.Explicit(ctx, uploader.ExplicitParams{
		PublicID:   publicID,
		Type:       "upload",
		Invalidate: api.Bool(true),
	})
	if err != nil {
		return fmt.Errorf("failed to invalidate cloudinary asset %s: %w", publicID, err)
	}
	return nil
}

// TrackUsage records that an entity references an asset.
func (as *AssetService) TrackUsage(ctx context.Context, assetID, entityType, entityID string) error {
	usage := &tables.AssetUsage{
		ID:         uuid.New().String(),
		AssetID:    assetID,
		EntityType: entityType,
		EntityID:   entityID,
		UsedAt:     time.Now(),
	}
	if _, err := database.Create(as.db, ctx, usage); err != nil {
		return lib.MapDBError(err)
	}
	return nil
}

// SyncAssets reconciles the mirror with the Cloudinary media library under
// the configured folder prefix.
func (as *AssetService) SyncAssets(ctx context.Context) (int, error) {
	startTime := time.Now()

	resp, err := as.cld.Admin.Assets(ctx, admin.AssetsParams{
		AssetType:  api.Image,
		Prefix:     as.folder,
		MaxResults: 500,
	})
	if err != nil {
		return 0, fmt.Errorf("failed to list cloudinary assets: %w", err)
	}

	synced := 0
	now := time.Now()
	for _, remote := range resp.Assets {
		asset := &tables.Asset{
			ID:         uuid.New().String(),
			PublicID:   remote.PublicID,
			URL:        remote.URL,
			SecureURL:  remote.SecureURL,
			Format:     remote.Format,
			Width:      remote.Width,
			Height:     remote.Height,
			Folder:     as.folder,
			Tags:       tables.JSONStrings{},
			IsActive:   true,
			UploadedAt: remote.CreatedAt,
			LastSync:   &now,
		}

		if _, err := database.Upsert(as.db, ctx, asset, "public_id",
			"url", "secure_url", "format", "width", "height", "last_sync",
		); err != nil {
			as.logger.Warn("Failed to upsert cloudinary asset",
				gecho.Field("public_id", remote.PublicID),
				gecho.Field("error", err),
			)
			continue
		}
		synced++
	}

	as.logger.Info("Cloudinary assets synced",
		gecho.Field("count", synced),
		gecho.Field("duration", time.Since(startTime)),
	)
	return synced, nil
}
