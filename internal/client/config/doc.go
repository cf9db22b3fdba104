// Package config loads runtime configuration for the CloudKeeper CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. A .env file (godotenv, never overriding the real environment) and
//     CLOUDKEEPER_* environment variables.
//  3. Optional JSON file selected with --config.
//  4. Command-line flags, which override everything else.
//
// # JSON schema
//
// Durations use timex.Duration, so they can be strings like "3s" or integer
// nanoseconds. Sizes are human strings parsed with go-humanize:
//
//	{
//	  "backend": "http",
//	  "endpoint": "http://127.0.0.1:8080",
//	  "max_file_size": "50MiB",
//	  "health_interval": "3s",
//	  "server": {"driver": "sqlite", "blob_store": "badger"}
//	}
//
// Primary API
//
//   - type Config: all CLI and embedded backend settings
//   - func Flags() []cli.Flag: the flag set of the root command
//   - func Load(cmd *cli.Command) (*Config, error): defaults, env, JSON, then flags
package config
