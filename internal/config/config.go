// Package config loads the engine's YAML service configuration: the
// HTTP listen address, optional external collaborator endpoints, and
// the numeric overrides a deployment may want for the climatology
// tables. It follows the teacher's read-file-then-unmarshal provider
// shape, stripped of the device/website CRUD surface that only made
// sense for a multi-station weather configuration store.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v2"
)

// Config is the complete engine configuration.
type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Exclusion   ExclusionConfig   `yaml:"exclusion"`
	LandPrice   LandPriceConfig   `yaml:"land_price"`
	Climatology ClimatologyConfig `yaml:"climatology,omitempty"`
	Cache       CacheConfig       `yaml:"cache,omitempty"`
	Logging     LoggingConfig     `yaml:"logging,omitempty"`
}

// ServerConfig controls the REST listener.
type ServerConfig struct {
	ListenAddr string `yaml:"listen-addr"`
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
}

// ExclusionConfig names the external polygon provider endpoint, when
// one is configured. An empty Endpoint leaves the orchestrator on the
// fail-open no-op provider.
type ExclusionConfig struct {
	Endpoint       string        `yaml:"endpoint,omitempty"`
	TimeoutSeconds time.Duration `yaml:"timeout-seconds,omitempty"`
}

// LandPriceConfig names the optional external land-price override
// provider and the TTL for the price cache in front of it.
type LandPriceConfig struct {
	Endpoint string        `yaml:"endpoint,omitempty"`
	CacheTTL time.Duration `yaml:"cache-ttl,omitempty"`
}

// ClimatologyConfig lets a deployment override the default monthly
// attenuation and temperature tables baked into
// internal/biascorrection, e.g. to calibrate against a different
// climate zone.
type ClimatologyConfig struct {
	MonthlyAttenuation  [12]float64 `yaml:"monthly-attenuation,omitempty"`
	MonthlyAmbientTempC [12]float64 `yaml:"monthly-ambient-temp-c,omitempty"`
}

// CacheConfig optionally backs the exclusion-polygon and land-price
// caches with a SQL store instead of the in-memory default.
type CacheConfig struct {
	Driver string `yaml:"driver,omitempty"` // "postgres", "sqlite", or "" for in-memory only
	DSN    string `yaml:"dsn,omitempty"`

	// PolygonCacheTTL bounds how long a fetched exclusion-polygon set
	// is trusted before a re-fetch. Zero falls back to
	// exclusion.DefaultPolygonCacheTTL.
	PolygonCacheTTL time.Duration `yaml:"polygon-cache-ttl,omitempty"`
}

// LoggingConfig describes the zap sink. cmd/solarengine parses it but
// does not apply it: the logger is set up by log.Init from the -debug
// flag alone, with no file sink.
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`
	File       string `yaml:"file,omitempty"`
	MaxSizeMB  int    `yaml:"max-size-mb,omitempty"`
	MaxBackups int    `yaml:"max-backups,omitempty"`
	MaxAgeDays int    `yaml:"max-age-days,omitempty"`
}

// Default returns a Config usable without any file on disk: listens
// on :8080, in-memory caches, no external providers, info-level
// console logging.
func Default() Config {
	return Config{
		Server:  ServerConfig{ListenAddr: ":8080"},
		Logging: LoggingConfig{Level: "info"},
	}
}

// Load reads and parses a YAML configuration file, applying
// Default() for any field the file left zero-valued where that would
// otherwise be unusable (the listen address).
func Load(path string) (Config, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("reading config file %q: %w", path, err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("parsing config file %q: %w", path, err)
	}
	if cfg.Server.ListenAddr == "" {
		cfg.Server.ListenAddr = ":8080"
	}
	return cfg, nil
}
