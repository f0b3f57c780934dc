// Package config provides configuration for the server binary through
// command-line flags, environment variables and an optional JSON file.
package config

import (
	"encoding/json"
	"flag"
	"log"
	"os"
)

// Options holds the configuration values for the server.
type Options struct {
	// Port defines the server's listening address (ip:port).
	Port string
	// DatabaseDSN selects the Postgres substrate when set; otherwise the
	// store persists to StorePath.
	DatabaseDSN string
	// StorePath is the JSON file the store persists to without a database.
	StorePath string
	// SeedPath points to a JSON dataset loaded once into an empty store.
	SeedPath string
	// LogLevel is the zap level name.
	LogLevel string
	// Config is the path to the config file.
	Config string
}

// options holds the current configuration values.
var options = &Options{}

func init() {
	flag.StringVar(&options.Port, "a", "localhost:3000", "run on ip:port server")
	flag.StringVar(&options.DatabaseDSN, "d", "", "postgres dsn (optional)")
	flag.StringVar(&options.StorePath, "s", "appdb.json", "store file path")
	flag.StringVar(&options.SeedPath, "seed", "", "seed dataset path (optional)")
	flag.StringVar(&options.LogLevel, "l", "info", "log level")
	flag.StringVar(&options.Config, "config", "config.json", "path to config file")
	flag.StringVar(&options.Config, "c", "config.json", "path to config file (shorthand)")
}

// Parse parses the command-line flags, the optional config file and
// environment variables, in increasing precedence, and returns the options.
func Parse() *Options {
	flag.Parse()

	if configPath := os.Getenv("CONFIG"); configPath != "" {
		options.Config = configPath
	}

	if options.Config != "" {
		if _, err := os.Stat(options.Config); err == nil {
			data, err := os.ReadFile(options.Config)
			if err != nil {
				log.Fatalf("error while reading config file: %v", err)
			}
			if err := json.Unmarshal(data, options); err != nil {
				log.Fatalf("error while parsing config file: %v", err)
			}
		}
	}

	if serverAddress := os.Getenv("SERVER_ADDRESS"); serverAddress != "" {
		options.Port = serverAddress
	}
	if dsn := os.Getenv("DATABASE_DSN"); dsn != "" {
		options.DatabaseDSN = dsn
	}
	if storePath := os.Getenv("STORE_PATH"); storePath != "" {
		options.StorePath = storePath
	}
	if seedPath := os.Getenv("SEED_PATH"); seedPath != "" {
		options.SeedPath = seedPath
	}

	return options
}
