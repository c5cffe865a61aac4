// Package config loads configuration from environment variables. The storage
// and blob factories read the same OBRACORE_* variables when opened; Config
// mirrors them so the effective settings can be inspected and logged in one
// place.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds the server settings.
type Config struct {
	Addr            string        `env:"OBRACORE_HTTP_ADDR" envDefault:":8080"`
	JWTSecret       string        `env:"OBRACORE_JWT_SECRET"`
	SeedFile        string        `env:"OBRACORE_SEED_FILE"`
	ShutdownTimeout time.Duration `env:"OBRACORE_SHUTDOWN_TIMEOUT" envDefault:"10s"`
	ReadTimeout     time.Duration `env:"OBRACORE_HTTP_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"OBRACORE_HTTP_WRITE_TIMEOUT" envDefault:"30s"`

	StorageDriver string `env:"OBRACORE_STORAGE_DRIVER" envDefault:"sqlite"`
	SQLitePath    string `env:"OBRACORE_SQLITE_PATH" envDefault:"obracore.db"`
	PostgresDSN   string `env:"OBRACORE_POSTGRES_DSN"`

	BlobDriver  string `env:"OBRACORE_BLOB_DRIVER" envDefault:"fs"`
	BlobFSRoot  string `env:"OBRACORE_BLOB_FS_ROOT"`
	S3Bucket    string `env:"OBRACORE_BLOB_S3_BUCKET"`
	S3Region    string `env:"OBRACORE_BLOB_S3_REGION"`
	S3Endpoint  string `env:"OBRACORE_BLOB_S3_ENDPOINT"`
	S3PathStyle bool   `env:"OBRACORE_BLOB_S3_PATH_STYLE"`
	SessionPath string `env:"OBRACORE_SESSION_PATH"`
}

// Load parses configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.ShutdownTimeout <= 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	return cfg, nil
}
