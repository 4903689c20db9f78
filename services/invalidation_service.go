package services

import (
	"context"
	"errors"
	"fmt"
	"ns2po_server/lib"
	"ns2po_server/structs"
	"ns2po_server/structs/tables"
	"strings"
	"sync"
	"time"

	"github.com/MonkyMars/gecho"
)

// Subsystem names used as keys in invalidation outcomes.
const (
	TargetCloudinary = "cloudinary"
	TargetAirtable   = "airtable"
	TargetCache      = "cache"
)

const airtableAssetsTable = "Assets"

// ImageHost is the CDN-side surface of the invalidation fan-out.
type ImageHost interface {
	Invalidate(ctx context.Context, publicID string) error
}

// CacheInvalidator is the Redis-side surface of the fan-out.
type CacheInvalidator interface {
	InvalidateAssetCaches(assetID string) error
}

// AssetResolver looks up the asset rows the coordinator fans out over.
type AssetResolver interface {
	AssetByID(ctx context.Context, id string) (*tables.Asset, error)
}

// InvalidationService pushes a stale asset out of all three caching layers:
// the CDN, the Airtable mirror and the Redis cache. The fan-out is
// best-effort: each subsystem reports its own outcome and one failure never
// stops the others.
type InvalidationService struct {
	logger   *gecho.Logger
	config   *structs.Config
	assets   AssetResolver
	images   ImageHost
	airtable AirtableAPI
	cache    CacheInvalidator
}

func NewInvalidationService(
	logger *gecho.Logger,
	cfg *structs.Config,
	assets AssetResolver,
	images ImageHost,
	api AirtableAPI,
	cache CacheInvalidator,
) *InvalidationService {
	return &InvalidationService{
		logger:   logger,
		config:   cfg,
		assets:   assets,
		images:   images,
		airtable: api,
		cache:    cache,
	}
}

// InvalidateAsset runs the fan-out for one asset. The returned error is nil
// when every enabled subsystem succeeded; otherwise it carries the failure
// message (verbatim for a single failure, joined for several), while the
// result still reports every per-subsystem outcome.
func (is *InvalidationService) InvalidateAsset(ctx context.Context, assetID string, targets structs.InvalidationTargets) (*structs.InvalidationResult, error) {
	asset, err := is.assets.AssetByID(ctx, assetID)
	if err != nil {
		return nil, err
	}
	if asset == nil {
		return nil, fmt.Errorf("%w: asset %s", lib.ErrNotFound, assetID)
	}

	result := &structs.InvalidationResult{
		AssetID:  assetID,
		Outcomes: make(map[string]structs.InvalidationOutcome, 3),
	}

	result.Outcomes[TargetCloudinary] = is.invalidateCloudinary(ctx, asset, targets.Cloudinary)
	result.Outcomes[TargetAirtable] = is.invalidateAirtable(ctx, asset, targets.Airtable)
	result.Outcomes[TargetCache] = is.invalidateCache(asset, targets.Cache)

	var failures []string
	for _, name := range []string{TargetCloudinary, TargetAirtable, TargetCache} {
		if outcome := result.Outcomes[name]; outcome.Status == structs.InvalidationFailure {
			failures = append(failures, outcome.Error)
		}
	}
	result.Success = len(failures) == 0

	if result.Success {
		is.logger.Info("Asset invalidated", gecho.Field("asset_id", assetID))
		return result, nil
	}

	is.logger.Error("Asset invalidation partially failed",
		gecho.Field("asset_id", assetID),
		gecho.Field("failures", len(failures)),
	)

	// A single failure keeps its original message so the caller sees the
	// underlying cause instead of a generic wrapper.
	if len(failures) == 1 {
		return result, errors.New(failures[0])
	}
	return result, fmt.Errorf("cache invalidation failed: %s", strings.Join(failures, ", "))
}

// InvalidateAssets fans out over a list of assets, at most MaxConcurrent at a
// time with a small delay between chunks to keep the upstream APIs happy.
func (is *InvalidationService) InvalidateAssets(ctx context.Context, assetIDs []string, targets structs.InvalidationTargets) *structs.BatchInvalidationResult {
	startTime := time.Now()

	batch := &structs.BatchInvalidationResult{
		Total:   len(assetIDs),
		Results: make([]structs.InvalidationResult, 0, len(assetIDs)),
	}

	concurrency := is.config.Sync.MaxConcurrent
	if concurrency < 1 {
		concurrency = 5
	}

	for start := 0; start < len(assetIDs); start += concurrency {
		if start > 0 && is.config.Sync.InvalidationDelay > 0 {
			select {
			case <-ctx.Done():
				batch.Duration = time.Since(startTime)
				return batch
			case <-time.After(is.config.Sync.InvalidationDelay):
			}
		}

		end := min(start+concurrency, len(assetIDs))
		chunk := assetIDs[start:end]

		results := make([]*structs.InvalidationResult, len(chunk))
		var wg sync.WaitGroup
		for i, id := range chunk {
			wg.Add(1)
			go func(i int, id string) {
				defer wg.Done()
				result, err := is.InvalidateAsset(ctx, id, targets)
				if result == nil {
					result = &structs.InvalidationResult{
						AssetID: id,
						Outcomes: map[string]structs.InvalidationOutcome{
							TargetCloudinary: {Status: structs.InvalidationSkipped},
							TargetAirtable:   {Status: structs.InvalidationSkipped},
							TargetCache:      {Status: structs.InvalidationSkipped},
						},
					}
					if err != nil {
						result.Success = false
					}
				}
				results[i] = result
			}(i, id)
		}
		wg.Wait()

		for _, result := range results {
			batch.Results = append(batch.Results, *result)
			if result.Success {
				batch.Successful++
			} else {
				batch.Failed++
			}
		}
	}

	batch.Duration = time.Since(startTime)

	is.logger.Info("Batch invalidation finished",
		gecho.Field("total", batch.Total),
		gecho.Field("successful", batch.Successful),
		gecho.Field("failed", batch.Failed),
		gecho.Field("duration", batch.Duration),
	)
	return batch
}

func (is *InvalidationService) invalidateCloudinary(ctx context.Context, asset *tables.Asset, enabled bool) structs.InvalidationOutcome {
	if !enabled || is.images == nil {
		return structs.InvalidationOutcome{Status: structs.InvalidationSkipped}
	}
	if asset.PublicID == "" {
		return structs.InvalidationOutcome{Status: structs.InvalidationSkipped}
	}

	if err := is.images.Invalidate(ctx, asset.PublicID); err != nil {
		return structs.InvalidationOutcome{
			Status: structs.InvalidationFailure,
			Error:  fmt.Sprintf("cloudinary: %v", err),
		}
	}
	return structs.InvalidationOutcome{Status: structs.InvalidationSuccess}
}

// invalidateAirtable touches the mirroring Airtable record so downstream
// consumers of the base see a fresh modification time. An asset without a
// mirrored record is a skip, not a failure.
func (is *InvalidationService) invalidateAirtable(ctx context.Context, asset *tables.Asset, enabled bool) structs.InvalidationOutcome {
	if !enabled || is.airtable == nil {
		return structs.InvalidationOutcome{Status: structs.InvalidationSkipped}
	}

	formula := fmt.Sprintf("{PublicId} = '%s'", asset.PublicID)
	records, err := is.airtable.ListRecords(ctx, airtableAssetsTable, formula)
	if err != nil {
		return structs.InvalidationOutcome{
			Status: structs.InvalidationFailure,
			Error:  fmt.Sprintf("airtable: %v", err),
		}
	}
	if len(records) == 0 {
		return structs.InvalidationOutcome{Status: structs.InvalidationSkipped}
	}

	fields := map[string]any{"LastInvalidated": time.Now().UTC().Format(time.RFC3339)}
	if err := is.airtable.UpdateRecord(ctx, airtableAssetsTable, records[0].ID, fields); err != nil {
		return structs.InvalidationOutcome{
			Status: structs.InvalidationFailure,
			Error:  fmt.Sprintf("airtable: %v", err),
		}
	}
	return structs.InvalidationOutcome{Status: structs.InvalidationSuccess}
}

func (is *InvalidationService) invalidateCache(asset *tables.Asset, enabled bool) structs.InvalidationOutcome {
	if !enabled || is.cache == nil {
		return structs.InvalidationOutcome{Status: structs.InvalidationSkipped}
	}

	if err := is.cache.InvalidateAssetCaches(asset.ID); err != nil {
		return structs.InvalidationOutcome{
			Status: structs.InvalidationFailure,
			Error:  fmt.Sprintf("cache: %v", err),
		}
	}
	return structs.InvalidationOutcome{Status: structs.InvalidationSuccess}
}
