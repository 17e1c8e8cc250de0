package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/meshvault/meshvault-server/internal/api/http/middleware"
	"github.com/meshvault/meshvault-server/internal/logger"
	"github.com/meshvault/meshvault-server/internal/model"
	"github.com/meshvault/meshvault-server/internal/service"
)

// AssetService covers the catalog operations the asset handlers need.
type AssetService interface {
	Upload(ctx context.Context, params service.UploadParams) (model.Asset, error)
	GetDetail(ctx context.Context, assetID, requesterID string) (model.AssetWithOwner, error)
	Update(ctx context.Context, assetID, requesterID string, patch model.AssetPatch) (model.Asset, error)
	Download(ctx context.Context, assetID, requesterID string) (service.FileResult, error)
	View(ctx context.Context, assetID, requesterID string) (service.FileResult, error)
	Delete(ctx context.Context, assetID, requesterID string) error
	ListPublic(ctx context.Context, page model.PageParams, search string) ([]model.AssetWithOwner, model.Pagination, error)
	ListByOwner(ctx context.Context, ownerID string, page model.PageParams) ([]model.AssetWithOwner, model.Pagination, error)
	Stats(ctx context.Context) (model.Stats, error)
}

type Asset struct {
	assets        AssetService
	maxUploadSize int64
	logger        *logger.Logger
}

func NewAsset(assets AssetService, maxUploadSize int64, logger *logger.Logger) *Asset {
	return &Asset{
		assets:        assets,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

type ownerJSON struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

type assetJSON struct {
	ID               string     `json:"id"`
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	FileFormat       string     `json:"file_format"`
	FileSize         int64      `json:"file_size"`
	OriginalFilename string     `json:"original_filename"`
	IsPublic         bool       `json:"is_public"`
	UploadDate       string     `json:"upload_date"`
	DownloadCount    int64      `json:"download_count"`
	Owner            *ownerJSON `json:"owner,omitempty"`
}

type paginationJSON struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
	HasPrev bool  `json:"has_prev"`
	HasNext bool  `json:"has_next"`
}

func toAssetJSON(a model.Asset, owner *ownerJSON) assetJSON {
	return assetJSON{
		ID:               a.ID,
		Name:             a.Name,
		Description:      a.Description,
		FileFormat:       a.FileFormat,
		FileSize:         a.FileSize,
		OriginalFilename: a.OriginalFilename,
		IsPublic:         a.Public,
		UploadDate:       a.UploadDate.Format(time.RFC3339),
		DownloadCount:    a.DownloadCount,
		Owner:            owner,
	}
}

func toPaginationJSON(p model.Pagination) paginationJSON {
	return paginationJSON{
		Page:    p.Page,
		PerPage: p.PerPage,
		Total:   p.Total,
		Pages:   p.Pages,
		HasPrev: p.HasPrev,
		HasNext: p.HasNext,
	}
}

func pageParamsFromQuery(r *http.Request) model.PageParams {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))
	return model.PageParams{Page: page, PerPage: perPage}.Normalize()
}

func requesterID(r *http.Request) string {
	if principal, ok := middleware.PrincipalFromCtx(r.Context()); ok {
		return principal.ID
	}
	return ""
}

// List handles GET /api/models. With user_only=true and an authenticated
// caller the listing is scoped to the caller's own assets, private ones
// included; otherwise it is the public catalog with optional search.
func (h *Asset) List(w http.ResponseWriter, r *http.Request) {
	page := pageParamsFromQuery(r)
	search := r.URL.Query().Get("search")
	userOnly := r.URL.Query().Get("user_only") == "true"

	var (
		assets     []model.AssetWithOwner
		pagination model.Pagination
		err        error
	)

	principal, authenticated := middleware.PrincipalFromCtx(r.Context())
	if userOnly && authenticated {
		assets, pagination, err = h.assets.ListByOwner(r.Context(), principal.ID, page)
	} else {
		assets, pagination, err = h.assets.ListPublic(r.Context(), page, search)
	}
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.writeListing(w, assets, pagination, true)
}

// ListMine handles GET /api/user/models; requires authentication.
func (h *Asset) ListMine(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromCtx(r.Context())

	assets, pagination, err := h.assets.ListByOwner(r.Context(), principal.ID, pageParamsFromQuery(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	h.writeListing(w, assets, pagination, false)
}

func (h *Asset) writeListing(w http.ResponseWriter, assets []model.AssetWithOwner, pagination model.Pagination, includeOwner bool) {
	items := make([]assetJSON, 0, len(assets))
	for _, a := range assets {
		var owner *ownerJSON
		if includeOwner {
			owner = &ownerJSON{ID: a.OwnerID, Username: a.OwnerUsername}
		}
		items = append(items, toAssetJSON(a.Asset, owner))
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"models":     items,
		"pagination": toPaginationJSON(pagination),
	})
}

// Get handles GET /api/model/{id}: metadata for one asset with the owner's
// display name, visibility rules applied.
func (h *Asset) Get(w http.ResponseWriter, r *http.Request) {
	asset, err := h.assets.GetDetail(r.Context(), r.PathValue("id"), requesterID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toAssetJSON(asset.Asset, &ownerJSON{ID: asset.OwnerID, Username: asset.OwnerUsername}))
}

// Download handles GET /api/download/{id}: the file as an attachment,
// counting the download.
func (h *Asset) Download(w http.ResponseWriter, r *http.Request) {
	result, err := h.assets.Download(r.Context(), r.PathValue("id"), requesterID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", result.MIMEType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", result.Filename))
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	_, _ = w.Write(result.Data)
}

// View handles GET /api/view/{id}: the file for inline 3D rendering,
// cacheable for an hour, no download-count side effect.
func (h *Asset) View(w http.ResponseWriter, r *http.Request) {
	result, err := h.assets.View(r.Context(), r.PathValue("id"), requesterID(r))
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	w.Header().Set("Content-Type", result.MIMEType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.Header().Set("Cache-Control", "public, max-age=3600")
	_, _ = w.Write(result.Data)
}

type updateRequest struct {
	Name        *string `json:"name"`
	Description *string `json:"description"`
	IsPublic    *bool   `json:"is_public"`
}

// Update handles PUT /api/model/{id}: partial edit of name, description and
// visibility; requires authentication, owner only.
func (h *Asset) Update(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromCtx(r.Context())

	var req updateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	asset, err := h.assets.Update(r.Context(), r.PathValue("id"), principal.ID, model.AssetPatch{
		Name:        req.Name,
		Description: req.Description,
		Public:      req.IsPublic,
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, toAssetJSON(asset, nil))
}

// Delete handles DELETE /api/model/{id}; requires authentication, owner
// only.
func (h *Asset) Delete(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromCtx(r.Context())

	if err := h.assets.Delete(r.Context(), r.PathValue("id"), principal.ID); err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "model deleted successfully"})
}

// Stats handles GET /api/stats.
func (h *Asset) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.assets.Stats(r.Context())
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]int64{
		"total_models":    stats.TotalAssets,
		"public_models":   stats.PublicAssets,
		"total_users":     stats.TotalAccounts,
		"total_downloads": stats.TotalDownloads,
	})
}

// Upload handles POST /api/upload: multipart form with name, description,
// is_public and the file field. The body is capped slightly above the
// configured file size limit so form overhead does not reject a file that
// is itself within bounds.
func (h *Asset) Upload(w http.ResponseWriter, r *http.Request) {
	principal, _ := middleware.PrincipalFromCtx(r.Context())

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+1<<20)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		if isBodyTooLarge(err) {
			handleError(w, h.logger, model.ErrPayloadTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		handleError(w, h.logger, model.NewValidationError("no file supplied"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		if isBodyTooLarge(err) {
			handleError(w, h.logger, model.ErrPayloadTooLarge)
			return
		}
		handleError(w, h.logger, fmt.Errorf("failed to read upload: %w", err))
		return
	}

	asset, err := h.assets.Upload(r.Context(), service.UploadParams{
		OwnerID:     principal.ID,
		Name:        r.FormValue("name"),
		Description: r.FormValue("description"),
		Data:        data,
		Filename:    header.Filename,
		Public:      r.FormValue("is_public") == "true",
	})
	if err != nil {
		handleError(w, h.logger, err)
		return
	}

	writeJSON(w, http.StatusCreated, toAssetJSON(asset, nil))
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
