package mongo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/meshvault/meshvault-server/internal/model"
)

var _ model.AssetStore = (*AssetRepository)(nil)

type AssetRepository struct {
	coll *mongo.Collection
}

func NewAssetRepository(conn *Connection) *AssetRepository {
	return &AssetRepository{
		coll: conn.db.Collection(assetsCollection),
	}
}

// assetDoc is the stored document shape for an asset.
type assetDoc struct {
	ID               bson.ObjectID `bson:"_id,omitempty"`
	OwnerID          string        `bson:"user_id"`
	Name             string        `bson:"name"`
	Description      string        `bson:"description"`
	FileFormat       string        `bson:"file_format"`
	FileSize         int64         `bson:"file_size"`
	OriginalFilename string        `bson:"original_filename"`
	Public           bool          `bson:"is_public"`
	UploadDate       time.Time     `bson:"upload_date"`
	DownloadCount    int64         `bson:"download_count"`
	BlobKey          string        `bson:"blob_key"`
}

func (d assetDoc) toModel() model.Asset {
	return model.Asset{
		ID:               d.ID.Hex(),
		OwnerID:          d.OwnerID,
		Name:             d.Name,
		Description:      d.Description,
		FileFormat:       d.FileFormat,
		FileSize:         d.FileSize,
		OriginalFilename: d.OriginalFilename,
		Public:           d.Public,
		UploadDate:       d.UploadDate,
		DownloadCount:    d.DownloadCount,
		BlobKey:          d.BlobKey,
	}
}

func fromModel(asset model.Asset) assetDoc {
	return assetDoc{
		OwnerID:          asset.OwnerID,
		Name:             asset.Name,
		Description:      asset.Description,
		FileFormat:       asset.FileFormat,
		FileSize:         asset.FileSize,
		OriginalFilename: asset.OriginalFilename,
		Public:           asset.Public,
		UploadDate:       asset.UploadDate,
		DownloadCount:    asset.DownloadCount,
		BlobKey:          asset.BlobKey,
	}
}

// Create inserts a new asset and returns it with the store-assigned id.
func (r *AssetRepository) Create(ctx context.Context, asset model.Asset) (model.Asset, error) {
	res, err := r.coll.InsertOne(ctx, fromModel(asset))
	if err != nil {
		return model.Asset{}, fmt.Errorf("failed to create asset: %w", err)
	}

	id, ok := res.InsertedID.(bson.ObjectID)
	if !ok {
		return model.Asset{}, fmt.Errorf("unexpected inserted id type %T", res.InsertedID)
	}

	asset.ID = id.Hex()
	return asset, nil
}

func (r *AssetRepository) GetByID(ctx context.Context, id string) (model.Asset, error) {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return model.Asset{}, model.ErrNotFound
	}

	var doc assetDoc
	err = r.coll.FindOne(ctx, bson.D{{Key: "_id", Value: oid}}).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return model.Asset{}, model.ErrNotFound
		}
		return model.Asset{}, fmt.Errorf("failed to get asset: %w", err)
	}

	return doc.toModel(), nil
}

// UpdateByID applies a partial update of the mutable fields and returns the
// updated asset. An empty patch reads the current document without writing.
func (r *AssetRepository) UpdateByID(ctx context.Context, id string, patch model.AssetPatch) (model.Asset, error) {
	if patch.Empty() {
		return r.GetByID(ctx, id)
	}

	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return model.Asset{}, model.ErrNotFound
	}

	set := bson.D{}
	if patch.Name != nil {
		set = append(set, bson.E{Key: "name", Value: *patch.Name})
	}
	if patch.Description != nil {
		set = append(set, bson.E{Key: "description", Value: *patch.Description})
	}
	if patch.Public != nil {
		set = append(set, bson.E{Key: "is_public", Value: *patch.Public})
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var doc assetDoc
	err = r.coll.FindOneAndUpdate(ctx,
		bson.D{{Key: "_id", Value: oid}},
		bson.D{{Key: "$set", Value: set}},
		opts,
	).Decode(&doc)
	if err != nil {
		if err == mongo.ErrNoDocuments {
			return model.Asset{}, model.ErrNotFound
		}
		return model.Asset{}, fmt.Errorf("failed to update asset: %w", err)
	}

	return doc.toModel(), nil
}

// ListPublic returns one page of public assets, newest first, together with
// the total match count. A non-empty search term switches the filter to a
// text-relevance match over name and description.
func (r *AssetRepository) ListPublic(ctx context.Context, page model.PageParams, search string) ([]model.Asset, int64, error) {
	filter := bson.D{{Key: "is_public", Value: true}}
	if search != "" {
		filter = append(filter, bson.E{Key: "$text", Value: bson.D{{Key: "$search", Value: search}}})
	}

	return r.list(ctx, filter, page)
}

// ListByOwner returns one page of the owner's assets, newest first,
// regardless of visibility.
func (r *AssetRepository) ListByOwner(ctx context.Context, ownerID string, page model.PageParams) ([]model.Asset, int64, error) {
	return r.list(ctx, bson.D{{Key: "user_id", Value: ownerID}}, page)
}

func (r *AssetRepository) list(ctx context.Context, filter bson.D, page model.PageParams) ([]model.Asset, int64, error) {
	page = page.Normalize()

	total, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count assets: %w", err)
	}

	opts := options.Find().
		SetSort(bson.D{{Key: "upload_date", Value: -1}}).
		SetSkip(page.Offset()).
		SetLimit(int64(page.PerPage))

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to find assets: %w", err)
	}

	var docs []assetDoc
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, 0, fmt.Errorf("failed to decode assets: %w", err)
	}

	assets := make([]model.Asset, 0, len(docs))
	for _, doc := range docs {
		assets = append(assets, doc.toModel())
	}

	return assets, total, nil
}

// IncrementDownloadCount bumps the counter by exactly 1 as a store-level
// atomic increment, never read-modify-write.
func (r *AssetRepository) IncrementDownloadCount(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrNotFound
	}

	res, err := r.coll.UpdateByID(ctx, oid, bson.D{
		{Key: "$inc", Value: bson.D{{Key: "download_count", Value: 1}}},
	})
	if err != nil {
		return fmt.Errorf("failed to increment download count: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrNotFound
	}

	return nil
}

func (r *AssetRepository) Delete(ctx context.Context, id string) error {
	oid, err := bson.ObjectIDFromHex(id)
	if err != nil {
		return model.ErrNotFound
	}

	res, err := r.coll.DeleteOne(ctx, bson.D{{Key: "_id", Value: oid}})
	if err != nil {
		return fmt.Errorf("failed to delete asset: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrNotFound
	}

	return nil
}

// Stats aggregates asset counters; TotalAccounts is filled by the caller
// from the account repository.
func (r *AssetRepository) Stats(ctx context.Context) (model.Stats, error) {
	total, err := r.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return model.Stats{}, fmt.Errorf("failed to count assets: %w", err)
	}

	public, err := r.coll.CountDocuments(ctx, bson.D{{Key: "is_public", Value: true}})
	if err != nil {
		return model.Stats{}, fmt.Errorf("failed to count public assets: %w", err)
	}

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: nil},
			{Key: "total_downloads", Value: bson.D{{Key: "$sum", Value: "$download_count"}}},
		}}},
	}

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return model.Stats{}, fmt.Errorf("failed to aggregate downloads: %w", err)
	}

	var results []struct {
		TotalDownloads int64 `bson:"total_downloads"`
	}
	if err := cursor.All(ctx, &results); err != nil {
		return model.Stats{}, fmt.Errorf("failed to decode downloads aggregate: %w", err)
	}

	stats := model.Stats{
		TotalAssets:  total,
		PublicAssets: public,
	}
	if len(results) > 0 {
		stats.TotalDownloads = results[0].TotalDownloads
	}

	return stats, nil
}
