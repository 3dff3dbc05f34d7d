// Package landprice provides a deterministic synthetic land-price
// surface per §4.9, plus a TTL cache and an optional external
// override provider with confidence degradation. Each price lookup is
// addressed by coordinate, not drawn from a shared stream, so the
// price at a point does not depend on the order in which candidates
// are evaluated.
package landprice

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/chrissnell/solarengine/internal/cachestore"
	"github.com/chrissnell/solarengine/internal/geomath"
	"github.com/chrissnell/solarengine/internal/seedrng"
	"github.com/chrissnell/solarengine/internal/solarmodel"
)

// coordinateSalt distinguishes the land-price pseudo-random stream
// from the candidate-sampling and reference-ring streams, which use
// different salts on the same seedrng mixer.
const coordinateSalt = 0x4c50 // "LP"

// Synthetic surface constants, per §4.9:
// price = base · (1 − min(0.8, d_urban·grad)) · (1 + |lat−40|·k_lat) · (1 + |lng|·k_lng)
// scaled by a coordinate-addressable noise factor in [0.8, 1.2], with
// a $50/m² floor applied last.
const (
	BaseUSDPerM2        = 120.0
	UrbanGradient       = 0.004 // per km; caps the proximity discount at 200 km out
	MaxProximityDiscount = 0.8
	LatReferenceDeg     = 40.0
	LatCoefficient      = 0.01
	LngCoefficient      = 0.002
	NoiseFloor          = 0.8
	NoiseSpread         = 0.4 // noise spans [NoiseFloor, NoiseFloor+NoiseSpread] = [0.8, 1.2]
	FloorUSDPerM2       = 50.0
)

// urbanCenter is one entry in the built-in gazetteer §4.9 calls for:
// a fixed list of reference points used only to derive d_urban, the
// distance-decay term in the synthetic price surface. Not a real
// gazetteer lookup service — just enough geography to make the
// surface vary sensibly between urban and rural coordinates.
type urbanCenter struct {
	lat, lng float64
}

var urbanCenters = []urbanCenter{
	{40.7128, -74.0060},   // New York
	{34.0522, -118.2437},  // Los Angeles
	{41.8781, -87.6298},   // Chicago
	{29.7604, -95.3698},   // Houston
	{33.4484, -112.0740},  // Phoenix
	{32.7767, -96.7970},   // Dallas
	{33.7490, -84.3880},   // Atlanta
	{39.7392, -104.9903},  // Denver
	{47.6062, -122.3321},  // Seattle
	{30.2672, -97.7431},   // Austin
}

// nearestUrbanDistanceKm returns the haversine distance from loc to
// the closest entry in urbanCenters.
func nearestUrbanDistanceKm(loc solarmodel.Coordinate) float64 {
	best := math.Inf(1)
	for _, c := range urbanCenters {
		if d := geomath.HaversineKm(loc.Lat, loc.Lng, c.lat, c.lng); d < best {
			best = d
		}
	}
	return best
}

// Estimate is a single land-price quote with a confidence in [0, 1].
// Confidence is 1.0 for the synthetic surface; Cache.Estimate lowers
// it to 0.3 when the external override lookup fails.
type Estimate struct {
	USDPerM2   float64
	Confidence float64
	Source     string
}

// Synthetic evaluates the deterministic price surface at loc: a base
// price discounted by distance from the nearest built-in urban center,
// scaled by latitude/longitude terms, and jittered by
// coordinate-addressable noise, with a $50/m² floor applied last.
func Synthetic(loc solarmodel.Coordinate) Estimate {
	dUrban := nearestUrbanDistanceKm(loc)
	proximityDiscount := math.Min(MaxProximityDiscount, dUrban*UrbanGradient)
	latTerm := 1 + math.Abs(loc.Lat-LatReferenceDeg)*LatCoefficient
	lngTerm := 1 + math.Abs(loc.Lng)*LngCoefficient

	rng := seedrng.New(loc.Lat, loc.Lng, 0, coordinateSalt)
	noise := NoiseFloor + rng.Float64()*NoiseSpread

	price := BaseUSDPerM2 * (1 - proximityDiscount) * latTerm * lngTerm * noise
	if price < FloorUSDPerM2 {
		price = FloorUSDPerM2
	}

	return Estimate{USDPerM2: price, Confidence: 1.0, Source: "synthetic"}
}

// ExternalProvider is the optional override contract (§6): a caller
// can wire a real gazetteer or assessor-records lookup. Failure is a
// degrading, not fatal, condition — callers fall back to Synthetic.
type ExternalProvider interface {
	Lookup(ctx context.Context, loc solarmodel.Coordinate) (Estimate, error)
}

// DefaultTimeout bounds a single external lookup.
const DefaultTimeout = 5 * time.Second

// cacheEntry pairs an estimate with its insertion time for TTL
// eviction.
type cacheEntry struct {
	estimate Estimate
	storedAt time.Time
}

// Cache is a coordinate-keyed TTL cache in front of Synthetic and an
// optional ExternalProvider, with an optional second tier backed by a
// persistent cachestore.Store so a long-running engine doesn't
// refetch/recompute across process restarts. Safe for concurrent use.
type Cache struct {
	mu       sync.Mutex
	ttl      time.Duration
	entries  map[string]cacheEntry
	external ExternalProvider
	store    cachestore.Store
}

// NewCache constructs a Cache with the given TTL and an optional
// external override provider (nil disables it). The cache is
// in-memory only.
func NewCache(ttl time.Duration, external ExternalProvider) *Cache {
	return &Cache{
		ttl:      ttl,
		entries:  make(map[string]cacheEntry),
		external: external,
	}
}

// NewCacheWithStore is NewCache plus a persistent second-level cache:
// a lookup that misses the in-memory map is tried against store
// before falling through to the external provider or the synthetic
// surface, and every freshly computed estimate is written back to
// both tiers.
func NewCacheWithStore(ttl time.Duration, external ExternalProvider, store cachestore.Store) *Cache {
	c := NewCache(ttl, external)
	c.store = store
	return c
}

func cacheKey(loc solarmodel.Coordinate) string {
	// Coordinate.String rounds to four decimal places, so points that
	// agree to 1e-4 degrees share a cache entry.
	return loc.String()
}

// Estimate returns a price estimate for loc, consulting the in-memory
// cache first, then the persistent store (if configured), then the
// external provider (if configured), and finally the synthetic
// surface as the always-available fallback.
func (c *Cache) Estimate(ctx context.Context, loc solarmodel.Coordinate, now time.Time) Estimate {
	key := cacheKey(loc)

	c.mu.Lock()
	if entry, ok := c.entries[key]; ok && now.Sub(entry.storedAt) < c.ttl {
		c.mu.Unlock()
		return entry.estimate
	}
	c.mu.Unlock()

	if c.store != nil {
		if usdPerM2, confidence, source, ok, err := c.store.LoadLandPrice(ctx, loc.Lat, loc.Lng, c.ttl); err == nil && ok {
			est := Estimate{USDPerM2: usdPerM2, Confidence: confidence, Source: source}
			c.mu.Lock()
			c.entries[key] = cacheEntry{estimate: est, storedAt: now}
			c.mu.Unlock()
			return est
		}
	}

	est := Synthetic(loc)
	if c.external != nil {
		lookupCtx, cancel := context.WithTimeout(ctx, DefaultTimeout)
		extEst, err := c.external.Lookup(lookupCtx, loc)
		cancel()
		if err == nil {
			est = extEst
		} else {
			// Degrade, do not fail: keep the synthetic estimate but mark
			// the confidence hit so callers can surface it downstream.
			est.Confidence = 0.3
		}
	}

	c.mu.Lock()
	c.entries[key] = cacheEntry{estimate: est, storedAt: now}
	c.mu.Unlock()

	if c.store != nil {
		_ = c.store.SaveLandPrice(ctx, loc.Lat, loc.Lng, est.USDPerM2, est.Confidence, est.Source, now)
	}

	return est
}

// EnergyPerDollar combines a daily energy figure with a price
// estimate into the power-per-cost ranking input used when the caller
// prefers that objective over RPS (§4.10): kwh_per_day divided by the
// land price, floored at $1/m² so a near-zero or degenerate price
// never produces a divide-by-near-zero blowup.
func EnergyPerDollar(kwhPerDay float64, est Estimate) float64 {
	return kwhPerDay / math.Max(est.USDPerM2, 1.0)
}
