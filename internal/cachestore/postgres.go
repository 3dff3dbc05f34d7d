package cachestore

import (
	"context"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// polygonFetchRow is the gorm model backing the exclusion-polygon
// cache: one row per (rounded center, radius) fetch.
type polygonFetchRow struct {
	ID          uint `gorm:"primarykey"`
	CenterLat   float64
	CenterLng   float64
	RadiusKm    float64
	PayloadJSON string
	FetchedAt   time.Time
}

func (polygonFetchRow) TableName() string { return "polygon_fetch_cache" }

// landPriceRow is the gorm model backing the land-price cache: one
// row per rounded coordinate.
type landPriceRow struct {
	ID         uint `gorm:"primarykey"`
	Lat        float64
	Lng        float64
	USDPerM2   float64
	Confidence float64
	Source     string
	FetchedAt  time.Time
}

func (landPriceRow) TableName() string { return "land_price_cache" }

// postgresStore is a Store backed by PostgreSQL via gorm and pgx.
type postgresStore struct {
	db *gorm.DB
}

func openPostgres(dsn string) (Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, err
	}
	if err := db.AutoMigrate(&polygonFetchRow{}, &landPriceRow{}); err != nil {
		return nil, err
	}
	return &postgresStore{db: db}, nil
}

func (s *postgresStore) SavePolygonFetch(ctx context.Context, centerLat, centerLng, radiusKm float64, payloadJSON string, fetchedAt time.Time) error {
	row := polygonFetchRow{
		CenterLat:   roundCoord(centerLat),
		CenterLng:   roundCoord(centerLng),
		RadiusKm:    radiusKm,
		PayloadJSON: payloadJSON,
		FetchedAt:   fetchedAt,
	}
	return s.db.WithContext(ctx).
		Where("center_lat = ? AND center_lng = ? AND radius_km = ?", row.CenterLat, row.CenterLng, row.RadiusKm).
		Assign(row).
		FirstOrCreate(&polygonFetchRow{}).Error
}

func (s *postgresStore) LoadPolygonFetch(ctx context.Context, centerLat, centerLng, radiusKm float64, maxAge time.Duration) (string, bool, error) {
	var row polygonFetchRow
	err := s.db.WithContext(ctx).
		Where("center_lat = ? AND center_lng = ? AND radius_km = ? AND fetched_at > ?",
			roundCoord(centerLat), roundCoord(centerLng), radiusKm, time.Now().Add(-maxAge)).
		Order("fetched_at DESC").
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return row.PayloadJSON, true, nil
}

func (s *postgresStore) SaveLandPrice(ctx context.Context, lat, lng, usdPerM2, confidence float64, source string, fetchedAt time.Time) error {
	row := landPriceRow{
		Lat:        roundCoord(lat),
		Lng:        roundCoord(lng),
		USDPerM2:   usdPerM2,
		Confidence: confidence,
		Source:     source,
		FetchedAt:  fetchedAt,
	}
	return s.db.WithContext(ctx).
		Where("lat = ? AND lng = ?", row.Lat, row.Lng).
		Assign(row).
		FirstOrCreate(&landPriceRow{}).Error
}

func (s *postgresStore) LoadLandPrice(ctx context.Context, lat, lng float64, maxAge time.Duration) (float64, float64, string, bool, error) {
	var row landPriceRow
	err := s.db.WithContext(ctx).
		Where("lat = ? AND lng = ? AND fetched_at > ?", roundCoord(lat), roundCoord(lng), time.Now().Add(-maxAge)).
		First(&row).Error
	if err == gorm.ErrRecordNotFound {
		return 0, 0, "", false, nil
	}
	if err != nil {
		return 0, 0, "", false, err
	}
	return row.USDPerM2, row.Confidence, row.Source, true, nil
}

func (s *postgresStore) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
