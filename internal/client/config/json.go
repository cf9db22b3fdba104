package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/usage"
	"github.com/dmitrijs2005/cloudkeeper/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. Zero values are treated as
// absent and leave the runtime Config untouched.
type JsonConfig struct {
	Backend         string         `json:"backend"`
	Endpoint        string         `json:"endpoint"`
	HealthAddr      string         `json:"health_addr"`
	Token           string         `json:"token"`
	AccountID       string         `json:"account_id"`
	OwnerID         string         `json:"owner_id"`
	OwnerName       string         `json:"owner_name"`
	DataDir         string         `json:"data_dir"`
	ListenAddr      string         `json:"listen_addr"`
	GRPCAddr        string         `json:"grpc_addr"`
	MaxFileSize     string         `json:"max_file_size"`
	Workers         int            `json:"workers"`
	SearchDelay     timex.Duration `json:"search_delay"`
	SearchLimit     int            `json:"search_limit"`
	HealthInterval  timex.Duration `json:"health_interval"`
	RefreshInterval timex.Duration `json:"refresh_interval"`
	LogLevel        string         `json:"log_level"`

	Server JsonServerConfig `json:"server"`
}

type JsonServerConfig struct {
	Driver            string         `json:"driver"`
	DSN               string         `json:"dsn"`
	IndexPath         string         `json:"index_path"`
	BlobStore         string         `json:"blob_store"`
	BadgerDir         string         `json:"badger_dir"`
	PublicURL         string         `json:"public_url"`
	S3Endpoint        string         `json:"s3_endpoint"`
	S3Region          string         `json:"s3_region"`
	S3Bucket          string         `json:"s3_bucket"`
	S3AccessKey       string         `json:"s3_access_key"`
	S3SecretKey       string         `json:"s3_secret_key"`
	SecretKey         string         `json:"secret_key"`
	SessionTTL        timex.Duration `json:"session_ttl"`
	AccountLimitBytes string         `json:"account_limit"`
}

// parseJson overlays cfg with values loaded from path. An empty path is a
// no-op.
func parseJson(cfg *Config, path string) error {
	if path == "" {
		return nil
	}

	var jc JsonConfig

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	overlay(&cfg.Backend, jc.Backend)
	overlay(&cfg.Endpoint, jc.Endpoint)
	overlay(&cfg.HealthAddr, jc.HealthAddr)
	overlay(&cfg.Token, jc.Token)
	overlay(&cfg.AccountID, jc.AccountID)
	overlay(&cfg.OwnerID, jc.OwnerID)
	overlay(&cfg.OwnerName, jc.OwnerName)
	overlay(&cfg.DataDir, jc.DataDir)
	overlay(&cfg.ListenAddr, jc.ListenAddr)
	overlay(&cfg.GRPCAddr, jc.GRPCAddr)
	overlay(&cfg.Workers, jc.Workers)
	overlay(&cfg.SearchDelay, jc.SearchDelay.Duration)
	overlay(&cfg.SearchLimit, jc.SearchLimit)
	overlay(&cfg.HealthInterval, jc.HealthInterval.Duration)
	overlay(&cfg.RefreshInterval, jc.RefreshInterval.Duration)
	overlay(&cfg.LogLevel, jc.LogLevel)

	s := jc.Server
	overlay(&cfg.Server.Driver, s.Driver)
	overlay(&cfg.Server.DSN, s.DSN)
	overlay(&cfg.Server.IndexPath, s.IndexPath)
	overlay(&cfg.Server.BlobStore, s.BlobStore)
	overlay(&cfg.Server.BadgerDir, s.BadgerDir)
	overlay(&cfg.Server.PublicURL, s.PublicURL)
	overlay(&cfg.Server.S3.Endpoint, s.S3Endpoint)
	overlay(&cfg.Server.S3.Region, s.S3Region)
	overlay(&cfg.Server.S3.Bucket, s.S3Bucket)
	overlay(&cfg.Server.S3.AccessKey, s.S3AccessKey)
	overlay(&cfg.Server.S3.SecretKey, s.S3SecretKey)
	overlay(&cfg.Server.SecretKey, s.SecretKey)
	overlay(&cfg.Server.SessionTTL, s.SessionTTL.Duration)

	if jc.MaxFileSize != "" {
		if cfg.MaxFileSize, err = usage.ParseBytes(jc.MaxFileSize); err != nil {
			return fmt.Errorf("max_file_size: %w", err)
		}
	}
	if s.AccountLimitBytes != "" {
		if cfg.Server.AccountLimitBytes, err = usage.ParseBytes(s.AccountLimitBytes); err != nil {
			return fmt.Errorf("account_limit: %w", err)
		}
	}
	return nil
}

func overlay[T comparable](dst *T, v T) {
	var zero T
	if v != zero {
		*dst = v
	}
}
