package exclusion

import (
	"context"
	"encoding/json"
	"time"

	"github.com/chrissnell/solarengine/internal/cachestore"
	"github.com/chrissnell/solarengine/internal/solarmodel"
)

// DefaultPolygonCacheTTL bounds how long a fetched polygon set is
// trusted before CachingProvider re-fetches from the inner provider.
const DefaultPolygonCacheTTL = 24 * time.Hour

// CachingProvider wraps an inner Provider with a persistent
// cachestore.Store, so repeated requests over the same center/radius
// don't re-hit the external polygon source on every analysis run.
// Misses and store errors both fall through to the inner provider;
// a failed cache write is logged nowhere and simply discarded, the
// same fail-open posture the inner provider already uses for its own
// upstream failures.
type CachingProvider struct {
	Inner Provider
	Store cachestore.Store
	TTL   time.Duration
}

// NewCachingProvider wraps inner with store using ttl. A zero ttl
// falls back to DefaultPolygonCacheTTL.
func NewCachingProvider(inner Provider, store cachestore.Store, ttl time.Duration) *CachingProvider {
	if ttl <= 0 {
		ttl = DefaultPolygonCacheTTL
	}
	return &CachingProvider{Inner: inner, Store: store, TTL: ttl}
}

func (p *CachingProvider) Fetch(ctx context.Context, center solarmodel.Coordinate, radiusKm float64, opts FetchOptions) ([]Polygon, error) {
	if p.Store != nil {
		if payload, ok, err := p.Store.LoadPolygonFetch(ctx, center.Lat, center.Lng, radiusKm, p.TTL); err == nil && ok {
			var polys []Polygon
			if err := json.Unmarshal([]byte(payload), &polys); err == nil {
				return polys, nil
			}
		}
	}

	polys, err := p.Inner.Fetch(ctx, center, radiusKm, opts)
	if err != nil {
		return nil, err
	}

	if p.Store != nil {
		if payload, err := json.Marshal(polys); err == nil {
			_ = p.Store.SavePolygonFetch(ctx, center.Lat, center.Lng, radiusKm, string(payload), time.Now())
		}
	}

	return polys, nil
}
