// Package config resolves service and CLI settings from defaults, an
// optional JSON file and the environment, in that order.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const appConfigDirName = "gbwild"

// Environment variables.
const (
	EnvConfig      = "GBWILD_CONFIG"
	EnvAddr        = "GBWILD_ADDR"
	EnvDB          = "GBWILD_DB"
	EnvMaxROMBytes = "GBWILD_MAX_ROM_BYTES"
	EnvWorkers     = "GBWILD_WORKERS"
)

// Config holds the outer-layer settings. The randomization settings
// themselves travel in engine.Config.
type Config struct {
	Addr        string `json:"addr"`
	DBPath      string `json:"db_path"`
	MaxROMBytes int    `json:"max_rom_bytes"`
	Workers     int    `json:"workers"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Addr:        ":8080",
		DBPath:      filepath.Join(DataDir(), "history.db"),
		MaxROMBytes: 8 << 20,
		Workers:     runtime.NumCPU(),
	}
}

// Load reads path over the defaults, then applies the environment. A missing
// file is not an error. An empty path uses $GBWILD_CONFIG when set.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		path = os.Getenv(EnvConfig)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, os.ErrNotExist):
		case err != nil:
			return Config{}, fmt.Errorf("read config: %w", err)
		default:
			if err := json.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parse config %s: %w", path, err)
			}
		}
	}

	cfg.Addr = envString(EnvAddr, cfg.Addr)
	cfg.DBPath = envString(EnvDB, cfg.DBPath)
	cfg.MaxROMBytes = envInt(EnvMaxROMBytes, cfg.MaxROMBytes)
	cfg.Workers = envInt(EnvWorkers, cfg.Workers)
	return cfg, cfg.Validate()
}

// Validate rejects settings the service cannot run with.
func (c Config) Validate() error {
	if c.MaxROMBytes <= 0 {
		return fmt.Errorf("max ROM bytes must be positive, got %d", c.MaxROMBytes)
	}
	if c.Workers <= 0 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	return nil
}

// DataDir is the per-user directory for the history database.
func DataDir() string {
	if d, err := os.UserConfigDir(); err == nil && d != "" {
		return filepath.Join(d, appConfigDirName)
	}
	if h, err := os.UserHomeDir(); err == nil && h != "" {
		return filepath.Join(h, "."+appConfigDirName)
	}
	return "."
}

func envString(k, def string) string {
	if s := os.Getenv(k); s != "" {
		return s
	}
	return def
}

func envInt(k string, def int) int {
	if s := os.Getenv(k); s != "" {
		var v int
		if _, err := fmt.Sscanf(s, "%d", &v); err == nil {
			return v
		}
	}
	return def
}
