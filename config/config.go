// Package config reads the server settings from the environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
)

// Store types
const (
	StoreJSON     = "json"
	StorePostgres = "postgres"
)

const defaultDatabaseURL = "host=localhost user=catamaze password=catamaze dbname=catamaze sslmode=disable"

var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds the server settings
type Config struct {
	Port               string
	DBType             string
	DatabaseURL        string
	DBFile             string
	MapFile            string
	MapSize            int
	PersonaDir         string
	MaxConcurrentGames int
	Seed               int64
}

// Default returns the settings used when no variable is set.
func Default() Config {
	return Config{
		Port:               "8080",
		DBType:             StoreJSON,
		DatabaseURL:        defaultDatabaseURL,
		DBFile:             "games.json",
		MapFile:            "maps/map1.txt",
		MapSize:            50,
		PersonaDir:         "personas",
		MaxConcurrentGames: 50,
	}
}

// Load reads the configuration from the environment, falling back to Default
// for unset variables.
func Load() (Config, error) {
	cfg := Default()

	setString(&cfg.Port, "PORT")
	setString(&cfg.DBType, "DB_TYPE")
	setString(&cfg.DatabaseURL, "DATABASE_URL")
	setString(&cfg.DBFile, "DB_FILE")
	setString(&cfg.MapFile, "MAP_FILE")
	setString(&cfg.PersonaDir, "PERSONA_DIR")

	var err error
	if cfg.MapSize, err = intVar("MAP_SIZE", cfg.MapSize); err != nil {
		return cfg, err
	}
	if cfg.MaxConcurrentGames, err = intVar("MAX_CONCURRENT_GAMES", cfg.MaxConcurrentGames); err != nil {
		return cfg, err
	}
	if v := os.Getenv("SEED"); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return cfg, fmt.Errorf("%w: SEED=%q: %v", ErrInvalidConfig, v, err)
		}
		cfg.Seed = seed
	}

	return cfg, cfg.Validate()
}

// Validate rejects settings the server cannot start with.
func (c Config) Validate() error {
	switch c.DBType {
	case StoreJSON, StorePostgres:
	default:
		return fmt.Errorf("%w: unknown DB_TYPE %q", ErrInvalidConfig, c.DBType)
	}
	if c.Port == "" {
		return fmt.Errorf("%w: PORT is empty", ErrInvalidConfig)
	}
	if c.MapSize <= 0 {
		return fmt.Errorf("%w: MAP_SIZE must be positive, got %d", ErrInvalidConfig, c.MapSize)
	}
	if c.MaxConcurrentGames <= 0 {
		return fmt.Errorf("%w: MAX_CONCURRENT_GAMES must be positive, got %d", ErrInvalidConfig, c.MaxConcurrentGames)
	}
	return nil
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func intVar(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return def, fmt.Errorf("%w: %s=%q: %v", ErrInvalidConfig, key, v, err)
	}
	return n, nil
}
