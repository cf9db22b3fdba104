package config

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/dmitrijs2005/cloudkeeper/internal/backend"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"
)

func load(t *testing.T, args ...string) (*Config, error) {
	t.Helper()

	var (
		cfg     *Config
		loadErr error
	)
	cmd := &cli.Command{
		Name:  "cloudkeeper",
		Flags: Flags(),
		Action: func(_ context.Context, cmd *cli.Command) error {
			cfg, loadErr = Load(cmd)
			return nil
		},
	}
	require.NoError(t, cmd.Run(context.Background(), append([]string{"cloudkeeper"}, args...)))
	return cfg, loadErr
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	var c Config
	c.LoadDefaults()

	assert.Equal(t, BackendEmbedded, c.Backend)
	assert.Equal(t, int64(50<<20), c.MaxFileSize)
	assert.Equal(t, 300*time.Millisecond, c.SearchDelay)
	assert.Equal(t, 3*time.Second, c.HealthInterval)
	assert.Equal(t, "sqlite", c.Server.Driver)
	require.NoError(t, c.Validate())
}

func TestLoad_DefaultsOnly(t *testing.T) {
	cfg, err := load(t)
	require.NoError(t, err)

	var want Config
	want.LoadDefaults()
	assert.Empty(t, cmp.Diff(&want, cfg))
}

func TestLoad_Precedence(t *testing.T) {
	t.Setenv("CLOUDKEEPER_ENDPOINT", "http://env.example:1")
	t.Setenv("CLOUDKEEPER_OWNER_NAME", "From Env")
	t.Setenv("CLOUDKEEPER_WORKERS", "2")
	t.Setenv("CLOUDKEEPER_HEALTH_INTERVAL", "7s")
	t.Setenv("CLOUDKEEPER_MAX_FILE_SIZE", "10MiB")

	path := writeTempJSON(t, map[string]any{
		"endpoint":        "http://json.example:2",
		"workers":         4,
		"search_delay":    "1s",
		"health_interval": 5000000000,
		"server": map[string]any{
			"blob_store":    "s3",
			"s3_bucket":     "from-json",
			"account_limit": "1GB",
		},
	})

	cfg, err := load(t, "--config", path, "--workers", "8", "--backend", "http", "--s3-bucket", "from-flag")
	require.NoError(t, err)

	assert.Equal(t, BackendHTTP, cfg.Backend)
	assert.Equal(t, "http://json.example:2", cfg.Endpoint)
	assert.Equal(t, "From Env", cfg.OwnerName)
	assert.Equal(t, 8, cfg.Workers)
	assert.Equal(t, time.Second, cfg.SearchDelay)
	assert.Equal(t, 5*time.Second, cfg.HealthInterval)
	assert.Equal(t, int64(10<<20), cfg.MaxFileSize)
	assert.Equal(t, backend.BlobStoreS3, cfg.Server.BlobStore)
	assert.Equal(t, "from-flag", cfg.Server.S3.Bucket)
	assert.Equal(t, int64(1_000_000_000), cfg.Server.AccountLimitBytes)
}

func TestLoad_DotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("CLOUDKEEPER_ACCOUNT_ID=dotenv-acc\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("CLOUDKEEPER_ACCOUNT_ID") })

	cfg, err := load(t, "--env-file", path)
	require.NoError(t, err)
	assert.Equal(t, "dotenv-acc", cfg.AccountID)
}

func TestLoad_Errors(t *testing.T) {
	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

	tests := []struct {
		name string
		args []string
	}{
		{"invalid JSON", []string{"--config", bad}},
		{"missing JSON file", []string{"--config", filepath.Join(t.TempDir(), "nope.json")}},
		{"missing env file", []string{"--env-file", filepath.Join(t.TempDir(), "nope.env")}},
		{"bad size", []string{"--max-file-size", "lots"}},
		{"unknown backend", []string{"--backend", "ftp"}},
		{"http without endpoint", []string{"--backend", "http", "--endpoint", ""}},
		{"bad log level", []string{"--log-level", "loud"}},
		{"negative workers", []string{"--workers", "-1"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := load(t, tt.args...)
			require.Error(t, err)
		})
	}
}

func TestBackendConfig_DataDir(t *testing.T) {
	var c Config
	c.LoadDefaults()

	bc := c.BackendConfig()
	assert.Equal(t, ":memory:", bc.DSN)
	assert.Empty(t, bc.BadgerDir)

	c.DataDir = "/var/lib/ck"
	bc = c.BackendConfig()
	assert.Equal(t, filepath.Join("/var/lib/ck", "cloudkeeper.db"), bc.DSN)
	assert.Equal(t, filepath.Join("/var/lib/ck", "index"), bc.IndexPath)
	assert.Equal(t, filepath.Join("/var/lib/ck", "blobs"), bc.BadgerDir)
	assert.Equal(t, c.MaxFileSize, bc.MaxUploadBytes)
}
