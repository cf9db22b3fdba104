package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/backend"
	"github.com/go-playground/validator/v10"
	"github.com/urfave/cli/v3"
)

const (
	BackendEmbedded = "embedded"
	BackendHTTP     = "http"
)

// Config holds runtime settings for the CloudKeeper CLI.
//
// Fields:
//   - Backend: "embedded" runs the backend in process, "http" talks to a gateway at Endpoint.
//   - HealthAddr: host:port of a grpc.health.v1 endpoint; empty probes Endpoint over HTTP.
//   - Token: bearer session token; in embedded mode one is issued for AccountID/OwnerID when empty.
//   - DataDir: embedded backend storage; empty keeps everything in memory.
//   - ListenAddr / GRPCAddr: where "serve" exposes the gateway and the health service.
//   - MaxFileSize, Workers: upload limits.
//   - SearchDelay, SearchLimit: incremental search tuning.
//   - HealthInterval, RefreshInterval: background liveness probe and usage refresh.
type Config struct {
	Backend    string `validate:"oneof=embedded http"`
	Endpoint   string `validate:"omitempty,url"`
	HealthAddr string `validate:"omitempty,hostname_port"`
	Token      string

	AccountID string `validate:"required"`
	OwnerID   string `validate:"required"`
	OwnerName string

	DataDir    string
	ListenAddr string `validate:"omitempty,hostname_port"`
	GRPCAddr   string `validate:"omitempty,hostname_port"`

	MaxFileSize int64 `validate:"gt=0"`
	Workers     int   `validate:"gte=0"`

	SearchDelay     time.Duration `validate:"gte=0"`
	SearchLimit     int           `validate:"gte=0"`
	HealthInterval  time.Duration `validate:"gt=0"`
	RefreshInterval time.Duration `validate:"gt=0"`

	LogLevel string `validate:"oneof=debug info warn error"`

	Server backend.Config
}

// LoadDefaults populates c with sensible defaults: an in-memory embedded
// backend for a single local account.
func (c *Config) LoadDefaults() {
	c.Backend = BackendEmbedded
	c.Endpoint = "http://127.0.0.1:8080"
	c.HealthAddr = ""
	c.Token = ""
	c.AccountID = "local"
	c.OwnerID = "local-user"
	c.OwnerName = "Local User"
	c.DataDir = ""
	c.ListenAddr = "127.0.0.1:8080"
	c.GRPCAddr = "127.0.0.1:50051"
	c.MaxFileSize = 50 << 20
	c.Workers = 0
	c.SearchDelay = 300 * time.Millisecond
	c.SearchLimit = 20
	c.HealthInterval = 3 * time.Second
	c.RefreshInterval = 30 * time.Second
	c.LogLevel = "info"
	c.Server.LoadDefaults()
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks field ranges and cross-field requirements.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if c.Backend == BackendHTTP && c.Endpoint == "" {
		return errors.New("invalid config: http backend needs an endpoint")
	}
	return nil
}

// BackendConfig returns the embedded backend settings with storage placed
// under DataDir when one is set.
func (c *Config) BackendConfig() backend.Config {
	bc := c.Server
	if c.DataDir == "" {
		return bc
	}
	if bc.DSN == "" || bc.DSN == ":memory:" {
		bc.DSN = filepath.Join(c.DataDir, "cloudkeeper.db")
	}
	if bc.IndexPath == "" {
		bc.IndexPath = filepath.Join(c.DataDir, "index")
	}
	if bc.BlobStore == backend.BlobStoreBadger && bc.BadgerDir == "" {
		bc.BadgerDir = filepath.Join(c.DataDir, "blobs")
	}
	if bc.MaxUploadBytes == 0 {
		bc.MaxUploadBytes = c.MaxFileSize
	}
	return bc
}

// Load constructs a Config, applies defaults, then overlays .env and
// environment values, the JSON file named by --config and finally the flags
// set on cmd. Later sources take precedence over earlier ones.
func Load(cmd *cli.Command) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseEnv(cfg, cmd.String("env-file")); err != nil {
		return nil, err
	}
	if err := parseJson(cfg, cmd.String("config")); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, cmd); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
