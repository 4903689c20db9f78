package services

import (
	"context"
	"errors"
	"ns2po_server/airtable"
	"ns2po_server/lib"
	"ns2po_server/structs"
	"ns2po_server/structs/tables"
	"testing"

	"github.com/MonkyMars/gecho"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAssetResolver struct {
	assets map[string]*tables.Asset
	err    error
}

func (f *fakeAssetResolver) AssetByID(ctx context.Context, id string) (*tables.Asset, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.assets[id], nil
}

type fakeImageHost struct {
	err   error
	calls []string
}

func (f *fakeImageHost) Invalidate(ctx context.Context, publicID string) error {
	f.calls = append(f.calls, publicID)
	return f.err
}

type fakeAirtableAPI struct {
	records   []airtable.Record
	listErr   error
	updateErr error
	count     int
	countErr  error
	updates   []map[string]any
}

func (f *fakeAirtableAPI) ListRecords(ctx context.Context, table, formula string) ([]airtable.Record, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.records, nil
}

func (f *fakeAirtableAPI) UpdateRecord(ctx context.Context, table, recordID string, fields map[string]any) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, fields)
	return nil
}

func (f *fakeAirtableAPI) CountRecords(ctx context.Context, table, formula string) (int, error) {
	return f.count, f.countErr
}

type fakeCacheInvalidator struct {
	err   error
	calls []string
}

func (f *fakeCacheInvalidator) InvalidateAssetCaches(assetID string) error {
	f.calls = append(f.calls, assetID)
	return f.err
}

func invalidationFixture(images *fakeImageHost, api *fakeAirtableAPI, cache *fakeCacheInvalidator) *InvalidationService {
	assets := &fakeAssetResolver{assets: map[string]*tables.Asset{
		"asset-1": {ID: "asset-1", PublicID: "ns2po/affiche-a2"},
	}}
	cfg := &structs.Config{Sync: &structs.SyncConfig{MaxConcurrent: 2}}
	return NewInvalidationService(gecho.NewDefaultLogger(), cfg, assets, images, api, cache)
}

func TestInvalidateAssetAllTargetsSucceed(t *testing.T) {
	images := &fakeImageHost{}
	api := &fakeAirtableAPI{records: []airtable.Record{{ID: "rec1"}}}
	cache := &fakeCacheInvalidator{}
	svc := invalidationFixture(images, api, cache)

	result, err := svc.InvalidateAsset(context.Background(), "asset-1", structs.AllInvalidationTargets())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, structs.InvalidationSuccess, result.Outcomes[TargetCloudinary].Status)
	assert.Equal(t, structs.InvalidationSuccess, result.Outcomes[TargetAirtable].Status)
	assert.Equal(t, structs.InvalidationSuccess, result.Outcomes[TargetCache].Status)

	assert.Equal(t, []string{"ns2po/affiche-a2"}, images.calls)
	assert.Equal(t, []string{"asset-1"}, cache.calls)
	require.Len(t, api.updates, 1)
	assert.Contains(t, api.updates[0], "LastInvalidated")
}

func TestInvalidateAssetSingleFailureKeepsOriginalMessage(t *testing.T) {
	images := &fakeImageHost{err: errors.New("rate limited")}
	api := &fakeAirtableAPI{records: []airtable.Record{{ID: "rec1"}}}
	cache := &fakeCacheInvalidator{}
	svc := invalidationFixture(images, api, cache)

	result, err := svc.InvalidateAsset(context.Background(), "asset-1", structs.AllInvalidationTargets())
	require.Error(t, err)
	assert.Equal(t, "cloudinary: rate limited", err.Error())
	assert.False(t, result.Success)

	// The other subsystems still ran
	assert.Equal(t, structs.InvalidationSuccess, result.Outcomes[TargetAirtable].Status)
	assert.Equal(t, structs.InvalidationSuccess, result.Outcomes[TargetCache].Status)
}

func TestInvalidateAssetMultipleFailuresAreJoined(t *testing.T) {
	images := &fakeImageHost{err: errors.New("boom")}
	api := &fakeAirtableAPI{records: []airtable.Record{{ID: "rec1"}}}
	cache := &fakeCacheInvalidator{err: errors.New("bust")}
	svc := invalidationFixture(images, api, cache)

	result, err := svc.InvalidateAsset(context.Background(), "asset-1", structs.AllInvalidationTargets())
	require.Error(t, err)
	assert.Equal(t, "cache invalidation failed: cloudinary: boom, cache: bust", err.Error())
	assert.False(t, result.Success)
}

func TestInvalidateAssetDisabledTargetsAreSkipped(t *testing.T) {
	images := &fakeImageHost{}
	api := &fakeAirtableAPI{}
	cache := &fakeCacheInvalidator{}
	svc := invalidationFixture(images, api, cache)

	targets := structs.InvalidationTargets{Cache: true}
	result, err := svc.InvalidateAsset(context.Background(), "asset-1", targets)
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, structs.InvalidationSkipped, result.Outcomes[TargetCloudinary].Status)
	assert.Equal(t, structs.InvalidationSkipped, result.Outcomes[TargetAirtable].Status)
	assert.Equal(t, structs.InvalidationSuccess, result.Outcomes[TargetCache].Status)
	assert.Empty(t, images.calls)
}

func TestInvalidateAssetWithoutMirrorRecordSkipsAirtable(t *testing.T) {
	images := &fakeImageHost{}
	api := &fakeAirtableAPI{records: nil}
	cache := &fakeCacheInvalidator{}
	svc := invalidationFixture(images, api, cache)

	result, err := svc.InvalidateAsset(context.Background(), "asset-1", structs.AllInvalidationTargets())
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, structs.InvalidationSkipped, result.Outcomes[TargetAirtable].Status)
	assert.Empty(t, api.updates)
}

func TestInvalidateAssetUnknownID(t *testing.T) {
	svc := invalidationFixture(&fakeImageHost{}, &fakeAirtableAPI{}, &fakeCacheInvalidator{})

	result, err := svc.InvalidateAsset(context.Background(), "nope", structs.AllInvalidationTargets())
	require.Error(t, err)
	assert.ErrorIs(t, err, lib.ErrNotFound)
	assert.Nil(t, result)
}

func TestInvalidateAssetsBatchSummary(t *testing.T) {
	images := &fakeImageHost{}
	api := &fakeAirtableAPI{records: []airtable.Record{{ID: "rec1"}}}
	cache := &fakeCacheInvalidator{}
	svc := invalidationFixture(images, api, cache)

	// "asset-1" succeeds, the two unknown ids fail
	batch := svc.InvalidateAssets(context.Background(), []string{"asset-1", "ghost-1", "ghost-2"}, structs.AllInvalidationTargets())

	assert.Equal(t, 3, batch.Total)
	assert.Equal(t, 1, batch.Successful)
	assert.Equal(t, 2, batch.Failed)
	assert.Len(t, batch.Results, 3)

	// Order of ids is preserved through the concurrent chunks
	assert.Equal(t, "asset-1", batch.Results[0].AssetID)
	assert.Equal(t, "ghost-1", batch.Results[1].AssetID)
	assert.Equal(t, "ghost-2", batch.Results[2].AssetID)
}
