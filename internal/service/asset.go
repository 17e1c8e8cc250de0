package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/meshvault/meshvault-server/internal/logger"
	"github.com/meshvault/meshvault-server/internal/model"
)

type Asset struct {
	assets        model.AssetStore
	accounts      model.AccountStore
	blobs         model.BlobStore
	maxUploadSize int64
	logger        *logger.Logger
}

func NewAsset(
	assets model.AssetStore,
	accounts model.AccountStore,
	blobs model.BlobStore,
	maxUploadSize int64,
	logger *logger.Logger,
) *Asset {
	return &Asset{
		assets:        assets,
		accounts:      accounts,
		blobs:         blobs,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// UploadParams contains parameters to upload an asset.
type UploadParams struct {
	OwnerID     string
	Name        string
	Description string
	Data        []byte
	Filename    string
	Public      bool
}

// FileResult is a fully buffered payload for download/view responses.
type FileResult struct {
	Data     []byte
	MIMEType string
	Filename string
}

// Upload validates the payload, writes the blob, then writes the metadata
// record referencing it. If the record write fails the blob is deleted
// best-effort so the common failure path leaves no orphan.
func (s *Asset) Upload(ctx context.Context, params UploadParams) (model.Asset, error) {
	name := strings.TrimSpace(params.Name)
	if name == "" {
		return model.Asset{}, model.NewValidationError("model name is required")
	}
	if len(params.Data) == 0 {
		return model.Asset{}, model.NewValidationError("no file supplied")
	}

	format := model.FormatFromFilename(params.Filename)
	if !model.FormatAllowed(format) {
		return model.Asset{}, model.NewValidationError(
			"file type not supported, allowed: %s", strings.Join(model.AllowedFormats(), ", "))
	}

	size := int64(len(params.Data))
	if size > s.maxUploadSize {
		return model.Asset{}, model.ErrPayloadTooLarge
	}

	mimeType := model.MIMEType(format)
	blobKey, err := s.blobs.Put(ctx, bytes.NewReader(params.Data), size, model.BlobMeta{
		Filename:    params.Filename,
		ContentType: mimeType,
		UploadedBy:  params.OwnerID,
	})
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to store file: %w", err)
	}

	asset := model.Asset{
		OwnerID:          params.OwnerID,
		Name:             name,
		Description:      params.Description,
		FileFormat:       format,
		FileSize:         size,
		OriginalFilename: params.Filename,
		Public:           params.Public,
		UploadDate:       time.Now().UTC(),
		DownloadCount:    0,
		BlobKey:          blobKey,
	}

	created, err := s.assets.Create(ctx, asset)
	if err != nil {
		if delErr := s.blobs.Delete(ctx, blobKey); delErr != nil {
			s.logger.Error("failed to clean up blob after metadata write failure",
				"blob_key", blobKey,
				"error", delErr.Error())
		}
		return model.Asset{}, fmt.Errorf("failed to create asset record: %w", err)
	}

	s.logger.Info("asset uploaded",
		"asset_id", created.ID,
		"owner_id", created.OwnerID,
		"format", created.FileFormat,
		"size", created.FileSize)

	return created, nil
}

// Get returns the asset metadata, enforcing the visibility rule: private
// assets are visible to their owner only. An empty requesterID means
// unauthenticated and is always denied for private assets.
func (s *Asset) Get(ctx context.Context, assetID, requesterID string) (model.Asset, error) {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Asset{}, model.ErrNotFound
		}
		return model.Asset{}, fmt.Errorf("failed to get asset: %w", err)
	}

	if !asset.Public && (requesterID == "" || requesterID != asset.OwnerID) {
		return model.Asset{}, model.ErrAccessDenied
	}

	return asset, nil
}

// Update applies a partial edit of the asset's mutable fields; owner only.
// A patched name must remain non-empty after trimming.
func (s *Asset) Update(ctx context.Context, assetID, requesterID string, patch model.AssetPatch) (model.Asset, error) {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Asset{}, model.ErrNotFound
		}
		return model.Asset{}, fmt.Errorf("failed to get asset: %w", err)
	}

	if requesterID == "" || requesterID != asset.OwnerID {
		return model.Asset{}, model.ErrAccessDenied
	}

	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return model.Asset{}, model.NewValidationError("model name is required")
		}
		patch.Name = &name
	}

	updated, err := s.assets.UpdateByID(ctx, asset.ID, patch)
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to update asset: %w", err)
	}

	s.logger.Info("asset updated", "asset_id", updated.ID, "owner_id", updated.OwnerID)

	return updated, nil
}

// GetDetail returns the asset with the owner's display name attached, for
// the detail endpoint. Visibility rules are the same as Get.
func (s *Asset) GetDetail(ctx context.Context, assetID, requesterID string) (model.AssetWithOwner, error) {
	asset, err := s.Get(ctx, assetID, requesterID)
	if err != nil {
		return model.AssetWithOwner{}, err
	}

	enriched, err := s.attachOwners(ctx, []model.Asset{asset})
	if err != nil {
		return model.AssetWithOwner{}, err
	}

	return enriched[0], nil
}

// Download returns the file payload and increments the download counter by
// exactly 1 via the store-level atomic increment.
func (s *Asset) Download(ctx context.Context, assetID, requesterID string) (FileResult, error) {
	asset, data, err := s.fetchFile(ctx, assetID, requesterID)
	if err != nil {
		return FileResult{}, err
	}

	if err := s.assets.IncrementDownloadCount(ctx, asset.ID); err != nil {
		return FileResult{}, fmt.Errorf("failed to increment download count: %w", err)
	}

	s.logger.Debug("asset downloaded", "asset_id", asset.ID)

	return FileResult{
		Data:     data,
		MIMEType: model.MIMEType(asset.FileFormat),
		Filename: asset.OriginalFilename,
	}, nil
}

// View returns the file payload for inline rendering; same access rule as
// Download but the counter is not touched.
func (s *Asset) View(ctx context.Context, assetID, requesterID string) (FileResult, error) {
	asset, data, err := s.fetchFile(ctx, assetID, requesterID)
	if err != nil {
		return FileResult{}, err
	}

	return FileResult{
		Data:     data,
		MIMEType: model.MIMEType(asset.FileFormat),
		Filename: asset.OriginalFilename,
	}, nil
}

func (s *Asset) fetchFile(ctx context.Context, assetID, requesterID string) (model.Asset, []byte, error) {
	asset, err := s.Get(ctx, assetID, requesterID)
	if err != nil {
		return model.Asset{}, nil, err
	}

	reader, err := s.blobs.Get(ctx, asset.BlobKey)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.Asset{}, nil, model.ErrNotFound
		}
		return model.Asset{}, nil, fmt.Errorf("failed to get blob: %w", err)
	}
	defer reader.Close()

	data, err := io.ReadAll(reader)
	if err != nil {
		return model.Asset{}, nil, fmt.Errorf("failed to read blob: %w", err)
	}

	return asset, data, nil
}

// Delete removes the asset; owner only. The blob delete is best-effort:
// a failure there is logged and the metadata delete still proceeds, so a
// blob already removed externally does not block the record's removal.
func (s *Asset) Delete(ctx context.Context, assetID, requesterID string) error {
	asset, err := s.assets.GetByID(ctx, assetID)
	if err != nil {
		if errors.Is(err, model.ErrNotFound) {
			return model.ErrNotFound
		}
		return fmt.Errorf("failed to get asset: %w", err)
	}

	if requesterID == "" || requesterID != asset.OwnerID {
		return model.ErrAccessDenied
	}

	if err := s.blobs.Delete(ctx, asset.BlobKey); err != nil {
		s.logger.Error("failed to delete blob, removing metadata anyway",
			"asset_id", asset.ID,
			"blob_key", asset.BlobKey,
			"error", err.Error())
	}

	if err := s.assets.Delete(ctx, asset.ID); err != nil {
		return fmt.Errorf("failed to delete asset record: %w", err)
	}

	s.logger.Info("asset deleted", "asset_id", asset.ID, "owner_id", asset.OwnerID)

	return nil
}

// ListPublic returns one page of public assets with owner display names
// attached.
func (s *Asset) ListPublic(ctx context.Context, page model.PageParams, search string) ([]model.AssetWithOwner, model.Pagination, error) {
	page = page.Normalize()

	assets, total, err := s.assets.ListPublic(ctx, page, search)
	if err != nil {
		return nil, model.Pagination{}, fmt.Errorf("failed to list public assets: %w", err)
	}

	enriched, err := s.attachOwners(ctx, assets)
	if err != nil {
		return nil, model.Pagination{}, err
	}

	return enriched, model.NewPagination(page, total), nil
}

// ListByOwner returns one page of the owner's assets, public and private.
func (s *Asset) ListByOwner(ctx context.Context, ownerID string, page model.PageParams) ([]model.AssetWithOwner, model.Pagination, error) {
	page = page.Normalize()

	assets, total, err := s.assets.ListByOwner(ctx, ownerID, page)
	if err != nil {
		return nil, model.Pagination{}, fmt.Errorf("failed to list assets by owner: %w", err)
	}

	enriched, err := s.attachOwners(ctx, assets)
	if err != nil {
		return nil, model.Pagination{}, err
	}

	return enriched, model.NewPagination(page, total), nil
}

// attachOwners resolves owner usernames, one lookup per distinct owner.
// A missing owner record degrades to "Unknown" rather than failing the list.
func (s *Asset) attachOwners(ctx context.Context, assets []model.Asset) ([]model.AssetWithOwner, error) {
	names := make(map[string]string)

	enriched := make([]model.AssetWithOwner, 0, len(assets))
	for _, asset := range assets {
		name, ok := names[asset.OwnerID]
		if !ok {
			owner, err := s.accounts.GetByID(ctx, asset.OwnerID)
			switch {
			case err == nil:
				name = owner.Username
			case errors.Is(err, model.ErrNotFound):
				name = "Unknown"
			default:
				return nil, fmt.Errorf("failed to get asset owner: %w", err)
			}
			names[asset.OwnerID] = name
		}

		enriched = append(enriched, model.AssetWithOwner{Asset: asset, OwnerUsername: name})
	}

	return enriched, nil
}

// Stats aggregates catalog counters across assets and accounts.
func (s *Asset) Stats(ctx context.Context) (model.Stats, error) {
	stats, err := s.assets.Stats(ctx)
	if err != nil {
		return model.Stats{}, fmt.Errorf("failed to get asset stats: %w", err)
	}

	accounts, err := s.accounts.Count(ctx)
	if err != nil {
		return model.Stats{}, fmt.Errorf("failed to count accounts: %w", err)
	}
	stats.TotalAccounts = accounts

	return stats, nil
}
