// Package cachestore provides optional SQL-backed persistence for the
// exclusion-polygon and land-price caches, so a long-running engine
// doesn't re-fetch from external providers on every restart. It is
// entirely optional: when no driver is configured the orchestrator
// runs against the in-memory land-price cache in internal/landprice,
// and exclusion polygons are fetched uncached. Grounded on the teacher's
// database-client-plus-migrator split, adapted from a weather-station
// metadata store to a two-table lookup cache.
package cachestore

import (
	"context"
	"fmt"
	"time"

	"github.com/chrissnell/solarengine/internal/config"
)

// Store is the persistence contract the orchestrator's caches can be
// backed by. Implementations must be safe for concurrent use.
type Store interface {
	SavePolygonFetch(ctx context.Context, centerLat, centerLng, radiusKm float64, payloadJSON string, fetchedAt time.Time) error
	LoadPolygonFetch(ctx context.Context, centerLat, centerLng, radiusKm float64, maxAge time.Duration) (payloadJSON string, ok bool, err error)

	SaveLandPrice(ctx context.Context, lat, lng, usdPerM2, confidence float64, source string, fetchedAt time.Time) error
	LoadLandPrice(ctx context.Context, lat, lng float64, maxAge time.Duration) (usdPerM2, confidence float64, source string, ok bool, err error)

	Close() error
}

// Open dials the backend named by cfg.Driver ("postgres" or
// "sqlite"). An empty driver is not an error: callers should treat a
// nil Store as "no persistent cache" and fall back to in-memory-only
// behavior.
func Open(cfg config.CacheConfig) (Store, error) {
	switch cfg.Driver {
	case "":
		return nil, nil
	case "postgres":
		return openPostgres(cfg.DSN)
	case "sqlite":
		return openSQLite(cfg.DSN)
	default:
		return nil, fmt.Errorf("cachestore: unsupported driver %q", cfg.Driver)
	}
}

// roundCoord collapses a coordinate to the same 1e-4 degree precision
// on every lookup and save, so that floating-point jitter from
// repeated projections doesn't create duplicate cache rows for what
// is effectively the same point.
func roundCoord(v float64) float64 {
	return float64(int64(v*1e4)) / 1e4
}
