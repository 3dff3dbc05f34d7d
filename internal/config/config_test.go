package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultHasUsableListenAddr(t *testing.T) {
	cfg := Default()
	if cfg.Server.ListenAddr == "" {
		t.Fatalf("expected default listen address to be set")
	}
}

func TestLoadParsesYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "engine.yaml")
	contents := `
server:
  listen-addr: ":9090"
exclusion:
  endpoint: "http://polygons.example.internal"
land_price:
  endpoint: "http://assessor.example.internal"
  cache-ttl: 3600000000000
cache:
  driver: sqlite
  dsn: "file:engine.db"
  polygon-cache-ttl: 86400000000000
logging:
  level: debug
`
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("writing fixture: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.ListenAddr != ":9090" {
		t.Fatalf("expected listen addr :9090, got %q", cfg.Server.ListenAddr)
	}
	if cfg.Exclusion.Endpoint != "http://polygons.example.internal" {
		t.Fatalf("expected exclusion endpoint to round-trip, got %q", cfg.Exclusion.Endpoint)
	}
	if cfg.Cache.Driver != "sqlite" {
		t.Fatalf("expected sqlite cache driver, got %q", cfg.Cache.Driver)
	}
	if cfg.Cache.PolygonCacheTTL.Hours() != 24 {
		t.Fatalf("expected a 24h polygon cache TTL, got %v", cfg.Cache.PolygonCacheTTL)
	}
	if cfg.Logging.Level != "debug" {
		t.Fatalf("expected debug log level, got %q", cfg.Logging.Level)
	}
}

func TestLoadMissingFileReturnsError(t *testing.T) {
	_, err := Load("/nonexistent/path/engine.yaml")
	if err == nil {
		t.Fatalf("expected an error for a missing config file")
	}
}
