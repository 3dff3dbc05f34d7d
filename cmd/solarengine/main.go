// Package main provides the solarengine application: a REST service
// that ranks candidate sites within a search disk by solar potential,
// per the component wiring in internal/orchestrator.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/dustin/go-humanize"

	"github.com/chrissnell/solarengine/internal/apiserver"
	"github.com/chrissnell/solarengine/internal/biascorrection"
	"github.com/chrissnell/solarengine/internal/cachestore"
	"github.com/chrissnell/solarengine/internal/config"
	"github.com/chrissnell/solarengine/internal/constants"
	"github.com/chrissnell/solarengine/internal/exclusion"
	"github.com/chrissnell/solarengine/internal/landprice"
	"github.com/chrissnell/solarengine/internal/log"
	"github.com/chrissnell/solarengine/internal/orchestrator"
	"github.com/chrissnell/solarengine/internal/solarmodel"
)

func main() {
	cfgFile := flag.String("config", "engine.yaml", "Path to YAML configuration file")
	debug := flag.Bool("debug", false, "Turn on debugging output")
	showVersion := flag.Bool("version", false, "Show version and exit")
	summaryLat := flag.Float64("summary-lat", 0, "Run a one-shot analysis at this latitude and print a human-readable summary, instead of starting the server")
	summaryLng := flag.Float64("summary-lng", 0, "Longitude for -summary-lat")
	summaryRadiusKm := flag.Float64("summary-radius-km", 5, "Search radius in kilometers for the -summary-lat smoke test")
	flag.Parse()

	if *showVersion {
		fmt.Printf("solarengine %s (%s/%s)\n", constants.Version, runtime.GOOS, runtime.GOARCH)
		os.Exit(0)
	}

	if err := log.Init(*debug); err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	cfg, err := config.Load(*cfgFile)
	if err != nil {
		log.Warnf("Could not load config file %q, using defaults: %v", *cfgFile, err)
		cfg = config.Default()
	}

	o := buildOrchestrator(cfg)
	defer func() {
		if err := o.Close(); err != nil {
			log.Warnf("error closing persistent cache store: %v", err)
		}
	}()

	if *summaryLat != 0 || *summaryLng != 0 {
		runSummary(o, *summaryLat, *summaryLng, *summaryRadiusKm)
		return
	}

	runServer(o, cfg)
}

func buildOrchestrator(cfg config.Config) *orchestrator.Orchestrator {
	o := orchestrator.New(log.GetZapLogger())

	if cfg.Climatology.MonthlyAttenuation != ([12]float64{}) {
		biascorrection.MonthlyAttenuation = cfg.Climatology.MonthlyAttenuation
	}
	if cfg.Climatology.MonthlyAmbientTempC != ([12]float64{}) {
		biascorrection.MonthlyAmbientTempC = cfg.Climatology.MonthlyAmbientTempC
	}

	if cfg.LandPrice.CacheTTL <= 0 {
		cfg.LandPrice.CacheTTL = time.Hour
	}
	o.ExclusionProvider = exclusion.NoopProvider{}
	o.LandPriceCache = landprice.NewCache(cfg.LandPrice.CacheTTL, nil)

	if cfg.Cache.Driver != "" {
		store, err := cachestore.Open(cfg.Cache)
		if err != nil {
			log.Warnf("Could not open persistent cache store: %v; continuing with in-memory caches only", err)
		} else if store != nil {
			log.Infof("Persistent cache store opened (driver=%s)", cfg.Cache.Driver)
			o.CacheStore = store
			o.LandPriceCache = landprice.NewCacheWithStore(cfg.LandPrice.CacheTTL, nil, store)
			o.ExclusionProvider = exclusion.NewCachingProvider(o.ExclusionProvider, store, cfg.Cache.PolygonCacheTTL)
		}
	}

	return o
}

func runServer(o *orchestrator.Orchestrator, cfg config.Config) {
	server := apiserver.NewServer(o, log.GetZapLogger())

	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: server.Handler(),
	}

	go func() {
		log.Infof("solarengine listening on %s", cfg.Server.ListenAddr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Errorf("HTTP server error: %v", err)
			os.Exit(1)
		}
	}()

	waitForSignal()
	log.Infof("shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(ctx); err != nil {
		log.Errorf("error during shutdown: %v", err)
	}
}

func runSummary(o *orchestrator.Orchestrator, lat, lng, radiusKm float64) {
	req := solarmodel.SearchRequest{
		Center:   solarmodel.Coordinate{Lat: lat, Lng: lng},
		RadiusKm: radiusKm,
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	results, err := o.Analyze(ctx, "cli-summary", req, 10, func(e solarmodel.ProgressEvent) {
		fmt.Printf("[%3d%%] %s: %s\n", e.Percent, e.Stage, e.Message)
	})
	if err != nil {
		fmt.Printf("analysis failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\nTop %d sites within %v km of (%.4f, %.4f):\n\n", len(results), radiusKm, lat, lng)
	for _, r := range results {
		energy := humanize.FtoaWithDigits(r.KwhPerDay, 2)
		line := fmt.Sprintf("#%-2d  (%.5f, %.5f)  score=%.3f  kWh/day=%s", r.Rank, r.Lat, r.Lng, r.Score, energy)
		if r.LandPriceUSDPerM2 != nil {
			line += fmt.Sprintf("  land=$%s/m²", humanize.Comma(int64(*r.LandPriceUSDPerM2)))
		}
		fmt.Println(line)
	}
}

func waitForSignal() {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	<-ch
}
