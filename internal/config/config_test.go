package config

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig_MissingDatabaseURI(t *testing.T) {
	os.Unsetenv("DATABASE_URI")

	cfg, err := NewConfig()
	require.Error(t, err)
	assert.Nil(t, cfg)
}

func TestNewConfig_DefaultValues(t *testing.T) {
	t.Setenv("DATABASE_URI", "mongodb://localhost:27017")

	cfg, err := NewConfig()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.LogLevel)
	assert.Equal(t, "8080", cfg.HTTP.Port)
	assert.Equal(t, "mongodb://localhost:27017", cfg.Database.URI)
	assert.Equal(t, "meshvault", cfg.Database.Name)
	assert.Equal(t, "devsecret", cfg.JWT.Secret)
	assert.Equal(t, "localhost:9000", cfg.Storage.Endpoint)
	assert.Equal(t, "meshvault-access-key", cfg.Storage.AccessKey)
	assert.Equal(t, "meshvault-secret-key", cfg.Storage.SecretKey)
	assert.Equal(t, "meshvault-models", cfg.Storage.Bucket)
	assert.Equal(t, false, cfg.Storage.UseSSL)
	assert.Equal(t, int64(100*1024*1024), cfg.Upload.MaxSize)
}

func TestNewConfig_EnvironmentOverrides(t *testing.T) {
	tests := []struct {
		name     string
		envVars  map[string]string
		expected func(*Config)
	}{
		{
			name: "log level override",
			envVars: map[string]string{
				"LOG_LEVEL": "2",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, 2, cfg.LogLevel)
			},
		},
		{
			name: "http config override",
			envVars: map[string]string{
				"HTTP_PORT": "9090",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "9090", cfg.HTTP.Port)
			},
		},
		{
			name: "database config override",
			envVars: map[string]string{
				"DATABASE_URI":  "mongodb://user:pass@db:27017/?authSource=admin",
				"DATABASE_NAME": "catalog",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "mongodb://user:pass@db:27017/?authSource=admin", cfg.Database.URI)
				assert.Equal(t, "catalog", cfg.Database.Name)
			},
		},
		{
			name: "storage config override",
			envVars: map[string]string{
				"MINIO_ENDPOINT":    "minio:9000",
				"MINIO_ACCESS_KEY":  "ak",
				"MINIO_SECRET_KEY":  "sk",
				"MINIO_BUCKET_NAME": "bucket",
				"MINIO_USE_SSL":     "true",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, "minio:9000", cfg.Storage.Endpoint)
				assert.Equal(t, "ak", cfg.Storage.AccessKey)
				assert.Equal(t, "sk", cfg.Storage.SecretKey)
				assert.Equal(t, "bucket", cfg.Storage.Bucket)
				assert.Equal(t, true, cfg.Storage.UseSSL)
			},
		},
		{
			name: "upload limit override",
			envVars: map[string]string{
				"UPLOAD_MAX_SIZE": "1048576",
			},
			expected: func(cfg *Config) {
				assert.Equal(t, int64(1048576), cfg.Upload.MaxSize)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATABASE_URI", "mongodb://localhost:27017")
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg, err := NewConfig()
			require.NoError(t, err)
			tt.expected(cfg)
		})
	}
}
