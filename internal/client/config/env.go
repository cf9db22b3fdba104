package config

import (
	"errors"
	"fmt"
	"io/fs"
	"time"

	"github.com/Netflix/go-env"
	"github.com/dmitrijs2005/cloudkeeper/internal/client/usage"
	"github.com/joho/godotenv"
)

// EnvConfig is a DTO used exclusively for environment unmarshalling.
// Unset variables leave the pointer nil and the Config untouched.
type EnvConfig struct {
	Backend         *string        `env:"CLOUDKEEPER_BACKEND"`
	Endpoint        *string        `env:"CLOUDKEEPER_ENDPOINT"`
	HealthAddr      *string        `env:"CLOUDKEEPER_HEALTH_ADDR"`
	Token           *string        `env:"CLOUDKEEPER_TOKEN"`
	AccountID       *string        `env:"CLOUDKEEPER_ACCOUNT_ID"`
	OwnerID         *string        `env:"CLOUDKEEPER_OWNER_ID"`
	OwnerName       *string        `env:"CLOUDKEEPER_OWNER_NAME"`
	DataDir         *string        `env:"CLOUDKEEPER_DATA_DIR"`
	ListenAddr      *string        `env:"CLOUDKEEPER_LISTEN_ADDR"`
	GRPCAddr        *string        `env:"CLOUDKEEPER_GRPC_ADDR"`
	MaxFileSize     *string        `env:"CLOUDKEEPER_MAX_FILE_SIZE"`
	Workers         *int           `env:"CLOUDKEEPER_WORKERS"`
	SearchDelay     *time.Duration `env:"CLOUDKEEPER_SEARCH_DELAY"`
	HealthInterval  *time.Duration `env:"CLOUDKEEPER_HEALTH_INTERVAL"`
	RefreshInterval *time.Duration `env:"CLOUDKEEPER_REFRESH_INTERVAL"`
	LogLevel        *string        `env:"CLOUDKEEPER_LOG_LEVEL"`

	Driver      *string `env:"CLOUDKEEPER_DB_DRIVER"`
	DSN         *string `env:"CLOUDKEEPER_DB_DSN"`
	BlobStore   *string `env:"CLOUDKEEPER_BLOB_STORE"`
	S3Endpoint  *string `env:"CLOUDKEEPER_S3_ENDPOINT"`
	S3Bucket    *string `env:"CLOUDKEEPER_S3_BUCKET"`
	S3AccessKey *string `env:"CLOUDKEEPER_S3_ACCESS_KEY"`
	S3SecretKey *string `env:"CLOUDKEEPER_S3_SECRET_KEY"`
	SecretKey   *string `env:"CLOUDKEEPER_SECRET_KEY"`
}

// parseEnv loads dotenvPath (".env" when empty; a missing default file is
// not an error) and overlays cfg with CLOUDKEEPER_* variables.
func parseEnv(cfg *Config, dotenvPath string) error {
	if dotenvPath == "" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load .env: %w", err)
		}
	} else if err := godotenv.Load(dotenvPath); err != nil {
		return fmt.Errorf("load %s: %w", dotenvPath, err)
	}

	var ec EnvConfig
	if _, err := env.UnmarshalFromEnviron(&ec); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}

	set(&cfg.Backend, ec.Backend)
	set(&cfg.Endpoint, ec.Endpoint)
	set(&cfg.HealthAddr, ec.HealthAddr)
	set(&cfg.Token, ec.Token)
	set(&cfg.AccountID, ec.AccountID)
	set(&cfg.OwnerID, ec.OwnerID)
	set(&cfg.OwnerName, ec.OwnerName)
	set(&cfg.DataDir, ec.DataDir)
	set(&cfg.ListenAddr, ec.ListenAddr)
	set(&cfg.GRPCAddr, ec.GRPCAddr)
	set(&cfg.Workers, ec.Workers)
	set(&cfg.SearchDelay, ec.SearchDelay)
	set(&cfg.HealthInterval, ec.HealthInterval)
	set(&cfg.RefreshInterval, ec.RefreshInterval)
	set(&cfg.LogLevel, ec.LogLevel)

	set(&cfg.Server.Driver, ec.Driver)
	set(&cfg.Server.DSN, ec.DSN)
	set(&cfg.Server.BlobStore, ec.BlobStore)
	set(&cfg.Server.S3.Endpoint, ec.S3Endpoint)
	set(&cfg.Server.S3.Bucket, ec.S3Bucket)
	set(&cfg.Server.S3.AccessKey, ec.S3AccessKey)
	set(&cfg.Server.S3.SecretKey, ec.S3SecretKey)
	set(&cfg.Server.SecretKey, ec.SecretKey)

	if ec.MaxFileSize != nil {
		n, err := usage.ParseBytes(*ec.MaxFileSize)
		if err != nil {
			return fmt.Errorf("CLOUDKEEPER_MAX_FILE_SIZE: %w", err)
		}
		cfg.MaxFileSize = n
	}
	return nil
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
