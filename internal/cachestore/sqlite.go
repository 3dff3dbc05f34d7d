package cachestore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/chrissnell/solarengine/pkg/migrate"
)

// MigrationsDir is where sqliteStore looks for the schema migration
// files on disk, relative to the process's working directory.
// Overridable for alternate deployment layouts; defaults to the
// directory shipped alongside this package's source, which is also
// where `go test` runs from.
var MigrationsDir = "migrations"

// sqliteStore is the embedded, pure-Go fallback Store: no cgo, no
// external database server, backed by modernc.org/sqlite and the
// teacher's generic file-based schema migrator.
type sqliteStore struct {
	db *sql.DB
}

func openSQLite(dsn string) (Store, error) {
	if dsn == "" {
		dsn = "file:solarengine-cache.db?cache=shared"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening sqlite cache store: %w", err)
	}

	provider := migrate.NewFileProviderWithDriver(MigrationsDir, "schema_migrations", "sqlite")
	migrator := migrate.NewMigrator(db, provider)
	if err := migrator.MigrateUp(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrating sqlite cache store: %w", err)
	}

	return &sqliteStore{db: db}, nil
}

func (s *sqliteStore) SavePolygonFetch(ctx context.Context, centerLat, centerLng, radiusKm float64, payloadJSON string, fetchedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO polygon_fetch_cache (center_lat, center_lng, radius_km, payload_json, fetched_at)
		VALUES (?, ?, ?, ?, ?)`,
		roundCoord(centerLat), roundCoord(centerLng), radiusKm, payloadJSON, fetchedAt.Unix())
	return err
}

func (s *sqliteStore) LoadPolygonFetch(ctx context.Context, centerLat, centerLng, radiusKm float64, maxAge time.Duration) (string, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT payload_json FROM polygon_fetch_cache
		WHERE center_lat = ? AND center_lng = ? AND radius_km = ? AND fetched_at > ?`,
		roundCoord(centerLat), roundCoord(centerLng), radiusKm, time.Now().Add(-maxAge).Unix())

	var payload string
	if err := row.Scan(&payload); err != nil {
		if err == sql.ErrNoRows {
			return "", false, nil
		}
		return "", false, err
	}
	return payload, true, nil
}

func (s *sqliteStore) SaveLandPrice(ctx context.Context, lat, lng, usdPerM2, confidence float64, source string, fetchedAt time.Time) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO land_price_cache (lat, lng, usd_per_m2, confidence, source, fetched_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		roundCoord(lat), roundCoord(lng), usdPerM2, confidence, source, fetchedAt.Unix())
	return err
}

func (s *sqliteStore) LoadLandPrice(ctx context.Context, lat, lng float64, maxAge time.Duration) (float64, float64, string, bool, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT usd_per_m2, confidence, source FROM land_price_cache
		WHERE lat = ? AND lng = ? AND fetched_at > ?`,
		roundCoord(lat), roundCoord(lng), time.Now().Add(-maxAge).Unix())

	var usdPerM2, confidence float64
	var source string
	if err := row.Scan(&usdPerM2, &confidence, &source); err != nil {
		if err == sql.ErrNoRows {
			return 0, 0, "", false, nil
		}
		return 0, 0, "", false, err
	}
	return usdPerM2, confidence, source, true, nil
}

func (s *sqliteStore) Close() error {
	return s.db.Close()
}
