package config

import (
	"fmt"

	"github.com/dmitrijs2005/cloudkeeper/internal/client/usage"
	"github.com/urfave/cli/v3"
)

// Flags returns the flags understood by Load. Defaults live in
// (*Config).LoadDefaults; a flag only takes effect when it is set.
func Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{Name: "config", Aliases: []string{"c"}, Usage: "path to a JSON config file"},
		&cli.StringFlag{Name: "env-file", Usage: "path to a .env file (default .env when present)"},
		&cli.StringFlag{Name: "backend", Aliases: []string{"b"}, Usage: "backend mode: embedded or http"},
		&cli.StringFlag{Name: "endpoint", Aliases: []string{"a"}, Usage: "base URL of the REST gateway"},
		&cli.StringFlag{Name: "health-addr", Usage: "host:port of a grpc health endpoint"},
		&cli.StringFlag{Name: "token", Aliases: []string{"t"}, Usage: "bearer session token"},
		&cli.StringFlag{Name: "account", Usage: "account id (embedded backend)"},
		&cli.StringFlag{Name: "owner", Usage: "owner id (embedded backend)"},
		&cli.StringFlag{Name: "owner-name", Usage: "owner display name (embedded backend)"},
		&cli.StringFlag{Name: "data-dir", Aliases: []string{"d"}, Usage: "embedded backend data directory"},
		&cli.StringFlag{Name: "listen", Usage: "gateway listen address for serve"},
		&cli.StringFlag{Name: "grpc-listen", Usage: "grpc health listen address for serve"},
		&cli.StringFlag{Name: "max-file-size", Aliases: []string{"m"}, Usage: "largest accepted upload, e.g. 50MiB"},
		&cli.IntFlag{Name: "workers", Aliases: []string{"w"}, Usage: "concurrent uploads, 0 for unbounded"},
		&cli.DurationFlag{Name: "search-delay", Usage: "search debounce delay"},
		&cli.DurationFlag{Name: "health-interval", Aliases: []string{"i"}, Usage: "liveness probe interval"},
		&cli.DurationFlag{Name: "refresh-interval", Usage: "usage refresh interval"},
		&cli.StringFlag{Name: "log-level", Usage: "debug, info, warn or error"},
		&cli.StringFlag{Name: "db-driver", Usage: "embedded backend SQL driver: sqlite or pgx"},
		&cli.StringFlag{Name: "db-dsn", Usage: "embedded backend SQL DSN"},
		&cli.StringFlag{Name: "blob-store", Usage: "embedded backend blob store: badger or s3"},
		&cli.StringFlag{Name: "s3-endpoint", Usage: "S3 endpoint URL"},
		&cli.StringFlag{Name: "s3-bucket", Usage: "S3 bucket"},
	}
}

// parseFlags overlays cfg with the flags set on cmd.
func parseFlags(cfg *Config, cmd *cli.Command) error {
	str := func(name string, dst *string) {
		if cmd.IsSet(name) {
			*dst = cmd.String(name)
		}
	}

	str("backend", &cfg.Backend)
	str("endpoint", &cfg.Endpoint)
	str("health-addr", &cfg.HealthAddr)
	str("token", &cfg.Token)
	str("account", &cfg.AccountID)
	str("owner", &cfg.OwnerID)
	str("owner-name", &cfg.OwnerName)
	str("data-dir", &cfg.DataDir)
	str("listen", &cfg.ListenAddr)
	str("grpc-listen", &cfg.GRPCAddr)
	str("log-level", &cfg.LogLevel)
	str("db-driver", &cfg.Server.Driver)
	str("db-dsn", &cfg.Server.DSN)
	str("blob-store", &cfg.Server.BlobStore)
	str("s3-endpoint", &cfg.Server.S3.Endpoint)
	str("s3-bucket", &cfg.Server.S3.Bucket)

	if cmd.IsSet("workers") {
		cfg.Workers = int(cmd.Int("workers"))
	}
	if cmd.IsSet("search-delay") {
		cfg.SearchDelay = cmd.Duration("search-delay")
	}
	if cmd.IsSet("health-interval") {
		cfg.HealthInterval = cmd.Duration("health-interval")
	}
	if cmd.IsSet("refresh-interval") {
		cfg.RefreshInterval = cmd.Duration("refresh-interval")
	}
	if cmd.IsSet("max-file-size") {
		n, err := usage.ParseBytes(cmd.String("max-file-size"))
		if err != nil {
			return fmt.Errorf("--max-file-size: %w", err)
		}
		cfg.MaxFileSize = n
	}
	return nil
}
