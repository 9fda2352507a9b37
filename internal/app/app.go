package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/daily-pick/external/nbastats"
	"github.com/riskibarqy/daily-pick/external/oddsapi"
	"github.com/riskibarqy/daily-pick/external/propfeed"
	"github.com/riskibarqy/daily-pick/internal/config"
	"github.com/riskibarqy/daily-pick/internal/domain/gamelog"
	"github.com/riskibarqy/daily-pick/internal/domain/scoring"
	"github.com/riskibarqy/daily-pick/internal/domain/sportsbook"
	"github.com/riskibarqy/daily-pick/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/daily-pick/internal/interfaces/httpapi"
	"github.com/riskibarqy/daily-pick/internal/observability"
	basecache "github.com/riskibarqy/daily-pick/internal/platform/cache"
	idgen "github.com/riskibarqy/daily-pick/internal/platform/id"
	"github.com/riskibarqy/daily-pick/internal/platform/logging"
	"github.com/riskibarqy/daily-pick/internal/platform/resilience"
	"github.com/riskibarqy/daily-pick/internal/usecase"
)

// Runtime is the assembled API server and the resources released on shutdown.
type Runtime struct {
	Server  *http.Server
	Metrics *observability.Metrics

	closers []func() error
}

// Close releases the store and any other resources opened by New.
func (r *Runtime) Close() error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		errs = append(errs, r.closers[i]())
	}
	return errors.Join(errs...)
}

func New(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Runtime, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	var (
		metrics  *observability.Metrics
		recorder usecase.MetricsRecorder
		observer httpapi.HTTPObserver
		scrape   http.Handler
	)
	if cfg.MetricsEnabled {
		metrics = observability.NewMetrics(observability.WithRuntimeCollectors())
		recorder, observer, scrape = metrics, metrics, metrics.Handler()
	}
	breakerListener := func(name string) resilience.StateListener {
		var track resilience.StateListener
		if metrics != nil {
			track = metrics.BreakerListener(name)
		}
		return func(from, to resilience.CircuitState) {
			logger.Warn("circuit breaker state changed", "upstream", name, "from", string(from), "to", string(to))
			if track != nil {
				track(from, to)
			}
		}
	}

	weights, err := scoring.NewWeights(cfg.ScoringWeights)
	if err != nil {
		return nil, fmt.Errorf("build scoring weights: %w", err)
	}

	store, err := openStores(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	rt := &Runtime{Metrics: metrics, closers: []func() error{store.close}}

	stats := nbastats.NewClient(nbastats.ClientConfig{
		BaseURL:        cfg.NBAStatsBaseURL,
		UserAgent:      cfg.NBAStatsUserAgent,
		Timeout:        cfg.NBAStatsTimeout,
		MaxRetries:     cfg.NBAStatsMaxRetries,
		Logger:         logger,
		CircuitBreaker: cfg.NBAStatsCircuit,
		OnBreakerState: breakerListener("nba_stats"),
	})
	var source gamelog.Source = stats
	if cfg.CacheEnabled {
		source = cache.NewGameLogSource(stats, basecache.NewStore[[]gamelog.Game](cfg.CacheTTL))
	}

	provider, err := newSportsbookProvider(cfg, logger, breakerListener)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}

	preference, err := usecase.ParseProjectionPreference(cfg.ProjectionPreference)
	if err != nil {
		_ = rt.Close()
		return nil, err
	}
	historical := usecase.NewHistoricalProjector(source, usecase.HistoricalProjectorConfig{
		Enabled: cfg.HistoricalAvgEnabled,
		Games:   cfg.HistoricalAvgGames,
	}, logger, recorder)
	sportsbookProjector := usecase.NewSportsbookProjector(provider, basecache.NewStore[sportsbook.Lines](cfg.SportsbookCacheTTL), stats, stats, logger, recorder)
	resolver := usecase.NewProjectionResolver(sportsbookProjector, historical, usecase.ProjectionResolverConfig{
		Preference:      preference,
		FallbackEnabled: cfg.ProjectionFallbackEnabled,
	}, logger)
	boxScores := usecase.NewBoxScoreService(source, stats, logger)

	ids := idgen.NewRandomGenerator()
	groupSvc := usecase.NewGroupService(store.groups, ids)
	pickSvc := usecase.NewPickService(groupSvc, store.groups, store.picks, ids, usecase.PickLockConfig{
		Location: cfg.PickLockLocation(),
		Hour:     cfg.PickLockHour,
		Minute:   cfg.PickLockMinute,
	})
	leaderboardSvc := usecase.NewLeaderboardService(groupSvc, store.groups, store.picks)
	dayScoringSvc := usecase.NewDayScoringService(groupSvc, store.groups, store.picks, resolver, boxScores, usecase.DayScoringConfig{
		Weights: weights,
		Workers: cfg.ScoringWorkers,
	}, ids, logger, recorder)

	playerLookup := usecase.NewPlayerLookupService(stats, cfg.ScoringWorkers, logger)

	handler := httpapi.NewHandler(groupSvc, pickSvc, leaderboardSvc, dayScoringSvc, resolver, boxScores, playerLookup, stats, logger)
	router := httpapi.NewRouter(handler, logger, cfg.CORSAllowedOrigins, scrape, observer)

	rt.Server = &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           router,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
	}

	logger.Info("app assembled",
		"projection_preference", string(preference),
		"fallback_enabled", cfg.ProjectionFallbackEnabled,
		"sportsbook_provider", cfg.SportsbookProvider,
		"gamelog_cache", cfg.CacheEnabled,
		"metrics", cfg.MetricsEnabled,
	)
	return rt, nil
}

// newSportsbookProvider returns nil for "none"; the sportsbook projector then
// reports ErrNoProviderConfigured.
func newSportsbookProvider(cfg config.Config, logger *logging.Logger, listener func(string) resilience.StateListener) (sportsbook.Provider, error) {
	switch cfg.SportsbookProvider {
	case config.SportsbookProviderOddsAPI:
		loc := cfg.PickLockLocation()
		return oddsapi.NewClient(oddsapi.ClientConfig{
			BaseURL:        cfg.OddsAPIBaseURL,
			APIKey:         cfg.OddsAPIKey,
			Regions:        cfg.OddsAPIRegions,
			Location:       loc,
			CacheTTL:       cfg.OddsAPICacheTTL,
			Timeout:        cfg.OddsAPITimeout,
			MaxRetries:     cfg.OddsAPIMaxRetries,
			Logger:         logger,
			CircuitBreaker: cfg.OddsAPICircuit,
			OnBreakerState: listener(sportsbook.ProviderOddsAPI),
		}), nil
	case config.SportsbookProviderPropFeed:
		return propfeed.NewClient(propfeed.ClientConfig{
			BaseURL:        cfg.PropFeedBaseURL,
			APIKey:         cfg.PropFeedAPIKey,
			Timeout:        cfg.PropFeedTimeout,
			MaxRetries:     cfg.PropFeedMaxRetries,
			Logger:         logger,
			CircuitBreaker: cfg.PropFeedCircuit,
			OnBreakerState: listener(sportsbook.ProviderPropFeed),
		}), nil
	case config.SportsbookProviderNone, "":
		return nil, nil
	default:
		return nil, fmt.Errorf("unknown sportsbook provider %q", cfg.SportsbookProvider)
	}
}
