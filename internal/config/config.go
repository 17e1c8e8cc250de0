package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

// Config contains server configuration parameters.
type Config struct {
	LogLevel int      `env:"LOG_LEVEL" envDefault:"0"`
	HTTP     HTTP     `envPrefix:"HTTP_"`
	Database Database `envPrefix:"DATABASE_"`
	JWT      JWT      `envPrefix:"JWT_"`
	Storage  Storage  `envPrefix:"MINIO_"`
	Upload   Upload   `envPrefix:"UPLOAD_"`
}

// HTTP contains HTTP server parameters.
type HTTP struct {
	Port string `env:"PORT" envDefault:"8080"`
}

// Database contains document store connection parameters. URI has no
// default: a missing endpoint is a fatal startup condition.
type Database struct {
	URI  string `env:"URI,required"`
	Name string `env:"NAME" envDefault:"meshvault"`
}

// JWT contains session token parameters.
type JWT struct {
	Secret string `env:"SECRET" envDefault:"devsecret"`
}

// Storage contains object storage parameters.
type Storage struct {
	Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
	AccessKey string `env:"ACCESS_KEY" envDefault:"meshvault-access-key"`
	SecretKey string `env:"SECRET_KEY" envDefault:"meshvault-secret-key"`
	Bucket    string `env:"BUCKET_NAME" envDefault:"meshvault-models"`
	UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
}

// Upload contains upload limits. MaxSize is in bytes, default 100 MiB.
type Upload struct {
	MaxSize int64 `env:"MAX_SIZE" envDefault:"104857600"`
}

// NewConfig loads configuration from environment variables.
func NewConfig() (*Config, error) {
	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return &cfg, nil
}
