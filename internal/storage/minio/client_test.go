package minio

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"testing"

	minioLib "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meshvault/meshvault-server/internal/model"
)

// fakeMinio implements minioAPI for testing without network.
type fakeMinio struct {
	bucketExists    bool
	bucketExistsErr error
	makeBucketErr   error

	putInfo minioLib.UploadInfo
	putErr  error
	putKey  string
	putOpts minioLib.PutObjectOptions

	getRC  io.ReadCloser
	getErr error

	removeErr error

	statInfo minioLib.ObjectInfo
	statErr  error
}

func (f *fakeMinio) BucketExists(_ context.Context, _ string) (bool, error) {
	return f.bucketExists, f.bucketExistsErr
}
func (f *fakeMinio) MakeBucket(_ context.Context, _ string, _ minioLib.MakeBucketOptions) error {
	return f.makeBucketErr
}
func (f *fakeMinio) PutObject(_ context.Context, _ string, key string, _ io.Reader, _ int64, opts minioLib.PutObjectOptions) (minioLib.UploadInfo, error) {
	f.putKey = key
	f.putOpts = opts
	return f.putInfo, f.putErr
}
func (f *fakeMinio) GetObject(_ context.Context, _ string, _ string, _ minioLib.GetObjectOptions) (io.ReadCloser, error) {
	return f.getRC, f.getErr
}
func (f *fakeMinio) RemoveObject(_ context.Context, _ string, _ string, _ minioLib.RemoveObjectOptions) error {
	return f.removeErr
}
func (f *fakeMinio) StatObject(_ context.Context, _ string, _ string, _ minioLib.StatObjectOptions) (minioLib.ObjectInfo, error) {
	return f.statInfo, f.statErr
}

func noSuchKeyErr() error {
	return minioLib.ErrorResponse{Code: "NoSuchKey", StatusCode: http.StatusNotFound}
}

func TestNewClientWithAPI_BucketExists(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: true}
	c, err := NewClientWithAPI(ctx, api, "b")
	require.NoError(t, err)
	assert.NotNil(t, c)
	assert.Equal(t, "b", c.bucket)
}

func TestNewClientWithAPI_CreateBucket(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExists: false}
	c, err := NewClientWithAPI(ctx, api, "bucket")
	require.NoError(t, err)
	assert.Equal(t, "bucket", c.bucket)
}

func TestNewClientWithAPI_BucketExistsError(t *testing.T) {
	ctx := context.Background()
	api := &fakeMinio{bucketExistsErr: errors.New("boom")}
	c, err := NewClientWithAPI(ctx, api, "bucket")
	assert.Nil(t, c)
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "failed to ensure bucket exists")
}

func TestClient_Put(t *testing.T) {
	ctx := context.Background()

	t.Run("success assigns key and metadata", func(t *testing.T) {
		api := &fakeMinio{}
		c := &Client{api: api, bucket: "b"}
		meta := model.BlobMeta{Filename: "ship.glb", ContentType: "model/gltf-binary", UploadedBy: "owner-1"}

		key, err := c.Put(ctx, bytes.NewReader([]byte("data")), 4, meta)
		require.NoError(t, err)
		assert.NotEmpty(t, key)
		assert.Equal(t, key, api.putKey)
		assert.Equal(t, "model/gltf-binary", api.putOpts.ContentType)
		assert.Equal(t, "ship.glb", api.putOpts.UserMetadata["filename"])
		assert.Equal(t, "owner-1", api.putOpts.UserMetadata["uploaded-by"])
	})

	t.Run("distinct keys per put", func(t *testing.T) {
		api := &fakeMinio{}
		c := &Client{api: api, bucket: "b"}

		k1, err := c.Put(ctx, bytes.NewReader([]byte("a")), 1, model.BlobMeta{})
		require.NoError(t, err)
		k2, err := c.Put(ctx, bytes.NewReader([]byte("b")), 1, model.BlobMeta{})
		require.NoError(t, err)
		assert.NotEqual(t, k1, k2)
	})

	t.Run("error", func(t *testing.T) {
		api := &fakeMinio{putErr: errors.New("put-fail")}
		c := &Client{api: api, bucket: "b"}

		key, err := c.Put(ctx, bytes.NewReader([]byte("data")), 4, model.BlobMeta{})
		assert.Empty(t, key)
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to upload object")
	})
}

func TestClient_Get(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		api := &fakeMinio{getRC: io.NopCloser(bytes.NewReader([]byte("payload")))}
		c := &Client{api: api, bucket: "b"}

		rc, err := c.Get(ctx, "k")
		require.NoError(t, err)
		data, err := io.ReadAll(rc)
		require.NoError(t, err)
		assert.Equal(t, []byte("payload"), data)
	})

	t.Run("unknown key maps to ErrNotFound", func(t *testing.T) {
		api := &fakeMinio{statErr: noSuchKeyErr()}
		c := &Client{api: api, bucket: "b"}

		rc, err := c.Get(ctx, "missing")
		assert.Nil(t, rc)
		assert.ErrorIs(t, err, model.ErrNotFound)
	})

	t.Run("stat error", func(t *testing.T) {
		api := &fakeMinio{statErr: errors.New("boom")}
		c := &Client{api: api, bucket: "b"}

		_, err := c.Get(ctx, "k")
		assert.Error(t, err)
		assert.NotErrorIs(t, err, model.ErrNotFound)
	})
}

func TestClient_Delete(t *testing.T) {
	ctx := context.Background()

	t.Run("success", func(t *testing.T) {
		api := &fakeMinio{}
		c := &Client{api: api, bucket: "b"}
		assert.NoError(t, c.Delete(ctx, "k"))
	})

	t.Run("already absent is not an error", func(t *testing.T) {
		api := &fakeMinio{removeErr: noSuchKeyErr()}
		c := &Client{api: api, bucket: "b"}
		assert.NoError(t, c.Delete(ctx, "gone"))
	})

	t.Run("error", func(t *testing.T) {
		api := &fakeMinio{removeErr: errors.New("remove-fail")}
		c := &Client{api: api, bucket: "b"}
		err := c.Delete(ctx, "k")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "failed to delete object")
	})
}

func TestClient_Exists(t *testing.T) {
	ctx := context.Background()

	t.Run("exists", func(t *testing.T) {
		api := &fakeMinio{}
		c := &Client{api: api, bucket: "b"}
		ok, err := c.Exists(ctx, "k")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("missing", func(t *testing.T) {
		api := &fakeMinio{statErr: noSuchKeyErr()}
		c := &Client{api: api, bucket: "b"}
		ok, err := c.Exists(ctx, "k")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("error", func(t *testing.T) {
		api := &fakeMinio{statErr: errors.New("boom")}
		c := &Client{api: api, bucket: "b"}
		_, err := c.Exists(ctx, "k")
		assert.Error(t, err)
	})
}
