// Package orchestrator wires the candidate sampler, exclusion filter,
// solar-geometry/irradiance chain, bias corrector, land-price cache,
// and top-K selector into the single AnalysisOrchestrator described
// in §4.11. It owns the stage state machine, progress reporting, and
// cancellation, grounded on the teacher's controller pattern of a
// coordinator struct driving independently testable collaborators
// rather than one monolithic function.
package orchestrator

import (
	"context"
	"fmt"
	"math"
	"runtime"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chrissnell/solarengine/internal/biascorrection"
	"github.com/chrissnell/solarengine/internal/cachestore"
	"github.com/chrissnell/solarengine/internal/errs"
	"github.com/chrissnell/solarengine/internal/exclusion"
	"github.com/chrissnell/solarengine/internal/integrator"
	"github.com/chrissnell/solarengine/internal/landprice"
	"github.com/chrissnell/solarengine/internal/sampler"
	"github.com/chrissnell/solarengine/internal/seedrng"
	"github.com/chrissnell/solarengine/internal/solarmodel"
	"github.com/chrissnell/solarengine/internal/topk"
)

// MaxRadiusKm bounds a single request, per §4.2's invalid-request
// rules.
const MaxRadiusKm = 50.0

// referenceRingSalt and gridSalt separate the deterministic streams
// used for candidate sampling and reference-ring jitter so that
// neither stage perturbs the other's sequence.
const (
	gridSalt          = 1
	referenceRingSalt = 2
)

// Orchestrator coordinates one analysis run end to end. The zero
// value is usable; ExclusionProvider defaults to a fail-open no-op
// and LandPriceCache may be left nil when land prices are never
// requested.
type Orchestrator struct {
	ExclusionProvider exclusion.Provider
	LandPriceCache    *landprice.Cache
	Logger            *zap.Logger

	// PoolSize bounds the worker count for the parallel irradiance
	// stage. Zero means runtime.GOMAXPROCS(0).
	PoolSize int

	// CacheStore, when set, is the persistent second-level cache
	// backing LandPriceCache and a caching ExclusionProvider. Owned by
	// the Orchestrator only so Close can release it; callers that open
	// their own cachestore.Store independently of New/buildOrchestrator
	// should leave this nil and close it themselves.
	CacheStore cachestore.Store
}

// Close releases the persistent cache store, if one was opened. Safe
// to call on a zero-value Orchestrator or one with no CacheStore.
func (o *Orchestrator) Close() error {
	if o.CacheStore == nil {
		return nil
	}
	return o.CacheStore.Close()
}

// New constructs an Orchestrator with the fail-open defaults: no
// exclusion provider, no land-price cache.
func New(logger *zap.Logger) *Orchestrator {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Orchestrator{ExclusionProvider: exclusion.NoopProvider{}, Logger: logger}
}

func (o *Orchestrator) logger() *zap.Logger {
	if o.Logger == nil {
		return zap.NewNop()
	}
	return o.Logger
}

func (o *Orchestrator) poolSize() int {
	if o.PoolSize > 0 {
		return o.PoolSize
	}
	return runtime.GOMAXPROCS(0)
}

func emit(progress solarmodel.ProgressFunc, analysisID string, percent int, stage, message string) {
	if progress == nil {
		return
	}
	progress(solarmodel.ProgressEvent{AnalysisID: analysisID, Percent: percent, Stage: stage, Message: message})
}

// validate enforces §4.2's invalid-request rules.
func validate(req solarmodel.SearchRequest) error {
	if !req.Center.Valid() {
		return fmt.Errorf("center %s out of range: %w", req.Center, errs.ErrInvalidRequest)
	}
	if req.RadiusKm <= 0 || math.IsNaN(req.RadiusKm) {
		return fmt.Errorf("radius_km must be positive: %w", errs.ErrInvalidRequest)
	}
	if req.RadiusKm > MaxRadiusKm {
		return fmt.Errorf("radius_km %v exceeds maximum %v: %w", req.RadiusKm, MaxRadiusKm, errs.ErrInvalidRequest)
	}
	return nil
}

// Analyze runs the full pipeline and returns the top-K ranked
// results. analysisID is used only to stamp progress events (callers
// typically mint one with google/uuid before calling). k is the
// number of results requested; progress may be nil.
func (o *Orchestrator) Analyze(ctx context.Context, analysisID string, req solarmodel.SearchRequest, k int, progress solarmodel.ProgressFunc) ([]solarmodel.Result, error) {
	if err := validate(req); err != nil {
		return nil, err
	}
	if k <= 0 {
		k = 10
	}

	log := o.logger().With(zap.String("analysis_id", analysisID))
	emit(progress, analysisID, 0, solarmodel.StageGridGeneration, "generating candidate grid")

	rng := seedrng.New(req.Center.Lat, req.Center.Lng, req.RadiusKm, req.SeedSalt+gridSalt)
	points := sampler.Generate(req.Center, req.RadiusKm, rng)
	log.Debug("grid generated", zap.Int("count", len(points)))

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("cancelled during grid generation: %w", errs.ErrCancelled)
	}

	if req.Exclusion != nil && req.Exclusion.Enabled {
		emit(progress, analysisID, 10, solarmodel.StageExclusion, "fetching exclusion polygons")
		points = o.applyExclusion(ctx, req, points, log)
	}

	if len(points) == 0 {
		log.Warn("no candidates survived sampling and exclusion")
		emit(progress, analysisID, 100, solarmodel.StageComplete, "no candidates survived exclusion")
		return []solarmodel.Result{}, nil
	}

	emit(progress, analysisID, 20, solarmodel.StageIrradiance, "integrating daily irradiance")
	year := time.Now().UTC().Year()
	candidates, err := o.integratePoints(ctx, points, year, req.UrbanPenalty)
	if err != nil {
		return nil, err
	}

	emit(progress, analysisID, 55, solarmodel.StageBiasCorrection, "fitting climatology baseline")
	scored, err := o.applyBiasCorrection(ctx, req, candidates, rng, year)
	if err != nil {
		return nil, err
	}

	if req.IncludeLandPrices {
		emit(progress, analysisID, 75, solarmodel.StageLandPrices, "estimating land prices")
		o.applyLandPrices(ctx, scored, req.RankByCost)
	}

	emit(progress, analysisID, 90, solarmodel.StageRanking, "ranking candidates")
	results := rank(scored, k, req.RankByCost)

	emit(progress, analysisID, 100, solarmodel.StageComplete, "done")
	return results, nil
}

func (o *Orchestrator) applyExclusion(ctx context.Context, req solarmodel.SearchRequest, points []solarmodel.Coordinate, log *zap.Logger) []solarmodel.Coordinate {
	provider := o.ExclusionProvider
	if provider == nil {
		provider = exclusion.NoopProvider{}
	}

	fetchCtx, cancel := context.WithTimeout(ctx, exclusion.DefaultTimeout)
	defer cancel()

	opts := exclusion.FetchOptions{IncludeWater: req.Exclusion.IncludeWater, IncludeSensitive: req.Exclusion.IncludeSensitive}
	polys, err := provider.Fetch(fetchCtx, req.Center, req.RadiusKm, opts)
	if err != nil {
		// Degrading, not fatal: §4.4 requires failing open.
		log.Warn("exclusion provider unavailable, proceeding without exclusion", zap.Error(err))
		return points
	}
	if len(polys) == 0 {
		return points
	}

	filtered := points[:0:0]
	for _, p := range points {
		if !exclusion.Filter(p, polys) {
			filtered = append(filtered, p)
		}
	}
	return filtered
}

func (o *Orchestrator) integratePoints(ctx context.Context, points []solarmodel.Coordinate, year int, urbanPenalty bool) ([]solarmodel.Candidate, error) {
	candidates := make([]solarmodel.Candidate, len(points))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(o.poolSize())

	for i, p := range points {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return fmt.Errorf("cancelled during irradiance integration: %w", errs.ErrCancelled)
			}
			raw := integrator.DailyRawPOA(p.Lat, p.Lng, year, urbanPenalty)
			candidates[i] = solarmodel.Candidate{Loc: p, RawPOA: raw}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return candidates, nil
}

func (o *Orchestrator) applyBiasCorrection(ctx context.Context, req solarmodel.SearchRequest, candidates []solarmodel.Candidate, rng *seedrng.Rng, year int) ([]solarmodel.ScoredCandidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("cancelled before bias correction: %w", errs.ErrCancelled)
	}

	refRng := rng.Derive(referenceRingSalt)
	refPoints := biascorrection.ReferenceRing(req.Center, year, req.UrbanPenalty, refRng)
	fit := biascorrection.FitAffine(refPoints)

	scored := make([]solarmodel.ScoredCandidate, len(candidates))
	corrected := make([]float64, len(candidates))
	for i, c := range candidates {
		baseline := biascorrection.BaselinePOA(c.Loc.Lat, c.Loc.Lng, year)
		correctedPOA := biascorrection.Correct(fit, c.RawPOA)
		corrected[i] = correctedPOA
		scored[i] = solarmodel.ScoredCandidate{
			Candidate:    c,
			Baseline:     baseline,
			CorrectedPOA: correctedPOA,
			CSI:          biascorrection.ClearSkyIndex(correctedPOA, baseline),
			KwhPerDay:    correctedPOA * (float64(integrator.StepMinutes) / 60.0) / 1000.0,
		}
	}

	pct := biascorrection.Percentiles(corrected)
	for i := range scored {
		scored[i].LocalPct = pct[i]
		scored[i].RPS = biascorrection.RPS(scored[i].CSI, pct[i], biascorrection.DefaultCSIWeight, biascorrection.DefaultPercentileWeight)
	}

	return scored, nil
}

func (o *Orchestrator) applyLandPrices(ctx context.Context, scored []solarmodel.ScoredCandidate, rankByCost bool) {
	cache := o.LandPriceCache
	if cache == nil {
		cache = landprice.NewCache(time.Hour, nil)
	}
	now := time.Now()
	for i := range scored {
		est := cache.Estimate(ctx, scored[i].Candidate.Loc, now)
		scored[i].HasLandPrice = true
		scored[i].LandPriceUSDPerM2 = est.USDPerM2
		scored[i].PowerPerCost = landprice.EnergyPerDollar(scored[i].KwhPerDay, est)
	}
}

// poolMultiplier controls how many candidates the bounded heap
// retains before the spacing pass thins them, giving the spacing pass
// enough headroom to still hit k after rejecting close neighbors.
const poolMultiplier = 6

func rank(scored []solarmodel.ScoredCandidate, k int, rankByCost bool) []solarmodel.Result {
	items := make([]topk.Scored, len(scored))
	for i, s := range scored {
		score := s.RPS
		if rankByCost && s.HasLandPrice {
			score = s.PowerPerCost
		}
		items[i] = topk.Scored{Candidate: s, Score: score, Index: i}
	}

	pool := k * poolMultiplier
	if pool > len(items) {
		pool = len(items)
	}
	top := topk.BoundedTop(items, pool)
	sort.SliceStable(top, func(i, j int) bool { return top[i].Score > top[j].Score })

	spaced := topk.SelectSpaced(top, k)
	return topk.AssignRanks(spaced, rankByCost)
}
