package model

import (
	"context"
	"path"
	"strings"
	"time"
)

// AssetStore defines persistence operations for 3D model assets.
type AssetStore interface {
	Create(ctx context.Context, asset Asset) (Asset, error)
	GetByID(ctx context.Context, id string) (Asset, error)
	UpdateByID(ctx context.Context, id string, patch AssetPatch) (Asset, error)
	ListPublic(ctx context.Context, page PageParams, search string) ([]Asset, int64, error)
	ListByOwner(ctx context.Context, ownerID string, page PageParams) ([]Asset, int64, error)
	IncrementDownloadCount(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
	Stats(ctx context.Context) (Stats, error)
}

// Asset represents a 3D model catalog entry. File bytes live in the blob
// store under BlobKey; OwnerID and BlobKey are immutable after creation.
type Asset struct {
	ID               string
	OwnerID          string
	Name             string
	Description      string
	FileFormat       string
	FileSize         int64
	OriginalFilename string
	Public           bool
	UploadDate       time.Time
	DownloadCount    int64
	BlobKey          string
}

// AssetPatch is a partial update of an asset's mutable fields; nil fields
// are left untouched. Owner, blob reference, size, format and the download
// counter are immutable and deliberately absent.
type AssetPatch struct {
	Name        *string
	Description *string
	Public      *bool
}

// Empty reports whether the patch changes nothing.
func (p AssetPatch) Empty() bool {
	return p.Name == nil && p.Description == nil && p.Public == nil
}

// AssetWithOwner is an asset enriched with its owner's display name for
// list responses.
type AssetWithOwner struct {
	Asset
	OwnerUsername string
}

// Stats aggregates catalog-wide counters. TotalDownloads is the sum of
// every asset's download counter.
type Stats struct {
	TotalAssets    int64
	PublicAssets   int64
	TotalAccounts  int64
	TotalDownloads int64
}

// allowedFormats is the fixed upload allow-list of 3D file formats.
var allowedFormats = map[string]struct{}{
	"obj":  {},
	"fbx":  {},
	"gltf": {},
	"glb":  {},
	"dae":  {},
	"3ds":  {},
	"ply":  {},
	"stl":  {},
}

// mimeTypes maps file formats to MIME types for download/view responses.
var mimeTypes = map[string]string{
	"glb":  "model/gltf-binary",
	"gltf": "application/json",
	"obj":  "text/plain",
	"fbx":  "application/octet-stream",
	"dae":  "application/xml",
	"3ds":  "application/octet-stream",
	"ply":  "application/octet-stream",
	"stl":  "application/octet-stream",
}

// FormatFromFilename derives the format tag from a filename: the part after
// the last dot, lower-cased. Empty when the filename has no extension.
func FormatFromFilename(filename string) string {
	ext := path.Ext(filename)
	if ext == "" {
		return ""
	}
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// FormatAllowed reports whether format is in the upload allow-list.
func FormatAllowed(format string) bool {
	_, ok := allowedFormats[format]
	return ok
}

// AllowedFormats returns the allow-list for user-facing messages.
func AllowedFormats() []string {
	return []string{"obj", "fbx", "gltf", "glb", "dae", "3ds", "ply", "stl"}
}

// MIMEType resolves the MIME type for a format, falling back to
// application/octet-stream for unmapped formats.
func MIMEType(format string) string {
	if mt, ok := mimeTypes[strings.ToLower(format)]; ok {
		return mt
	}
	return "application/octet-stream"
}
