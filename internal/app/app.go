package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/riskibarqy/matchcentre/external/footballapi"
	"github.com/riskibarqy/matchcentre/internal/config"
	"github.com/riskibarqy/matchcentre/internal/domain/kv"
	"github.com/riskibarqy/matchcentre/internal/domain/match"
	"github.com/riskibarqy/matchcentre/internal/domain/predictor"
	"github.com/riskibarqy/matchcentre/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchcentre/internal/interfaces/httpapi"
	"github.com/riskibarqy/matchcentre/internal/platform/cache"
	"github.com/riskibarqy/matchcentre/internal/platform/logging"
	"github.com/riskibarqy/matchcentre/internal/usecase"
	"github.com/sourcegraph/conc"
)

// Session owns every piece of runtime state: the match store, the refresh
// loops, predictor storage and the HTTP server.
type Session struct {
	cfg    config.Config
	logger *logging.Logger

	matches    *memory.MatchRepository
	store      kv.Store
	closeStore func() error

	MatchSync   *usecase.MatchSyncService
	Predictor   *usecase.PredictorService
	Counts      *usecase.CountService
	Health      *usecase.HealthService
	News        *usecase.NewsService
	Reference   *usecase.ReferenceService
	Preferences *usecase.PreferenceService

	server *http.Server
}

func NewSession(ctx context.Context, cfg config.Config, logger *logging.Logger) (*Session, error) {
	if logger == nil {
		logger = logging.Default()
	}
	if cfg.HTTPAddr == "" {
		return nil, fmt.Errorf("http server addr cannot be empty")
	}

	store, closeStore, err := openKVStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}

	client := footballapi.NewClient(footballapi.ClientConfig{
		BaseURL:            cfg.APIBaseURL,
		Timeout:            cfg.APITimeout,
		HealthcheckTimeout: cfg.APIHealthcheckTimeout,
		RequestsPerSecond:  cfg.APIRateLimitPerSec,
		Logger:             logger.Named("footballapi"),
	})

	matches := memory.NewMatchRepository()
	prefs := usecase.NewPreferenceService(store, client, usecase.PreferenceConfig{DeviceID: cfg.DeviceID}, logger)

	settings := predictor.DefaultSettings()
	if speed, ok := predictor.ParseSpeed(cfg.PredictorDefaultSpeed); ok {
		settings.DefaultSpeed = speed
	}

	s := &Session{
		cfg:         cfg,
		logger:      logger,
		matches:     matches,
		store:       store,
		closeStore:  closeStore,
		MatchSync:   usecase.NewMatchSyncService(matches, client, prefs, prefs, usecase.MatchSyncConfig{}, logger.Named("sync")),
		Predictor:   usecase.NewPredictorService(store, matches, prefs, settings, nil, logger.Named("predictor")),
		Counts:      usecase.NewCountService(matches, 0, logger),
		Health:      usecase.NewHealthService(client, 0, logger),
		News:        usecase.NewNewsService(client, prefs, 0, logger),
		Reference:   usecase.NewReferenceService(client, cache.NewStore[[]string](cfg.CacheTTL), logger),
		Preferences: prefs,
	}

	handler := httpapi.NewHandler(
		s.MatchSync,
		matches,
		s.Predictor,
		s.Counts,
		s.Health,
		s.News,
		s.Reference,
		s.Preferences,
		0,
		logger.Named("http"),
	)
	s.server = &http.Server{
		Addr:         cfg.HTTPAddr,
		Handler:      httpapi.NewRouter(handler, logger.Named("http"), cfg.CORSAllowedOrigins),
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

func (s *Session) HTTPServer() *http.Server {
	return s.server
}

// Run starts the initial load and every background loop, then blocks until
// ctx is cancelled and all loops have returned.
func (s *Session) Run(ctx context.Context) {
	var wg conc.WaitGroup

	wg.Go(func() {
		if err := s.MatchSync.Init(ctx); err != nil && ctx.Err() == nil {
			s.logger.ErrorContext(ctx, "match init failed", "error", err)
		}
	})
	for _, view := range match.AllViews {
		wg.Go(func() {
			s.runLoop(ctx, "sync:"+view.String(), func(ctx context.Context) error {
				return s.MatchSync.RunView(ctx, view)
			})
		})
	}
	wg.Go(func() { s.runLoop(ctx, "predictor", s.Predictor.Run) })
	wg.Go(func() { s.runLoop(ctx, "counts", s.Counts.Run) })
	wg.Go(func() { s.runLoop(ctx, "health", s.Health.Run) })
	wg.Go(func() { s.runLoop(ctx, "news", s.News.Run) })

	s.logger.InfoContext(ctx, "session started", "views", len(match.AllViews))
	if recovered := wg.WaitAndRecover(); recovered != nil {
		s.logger.ErrorContext(ctx, "session loop panicked", "panic", recovered.String())
	}
	s.logger.Info("session stopped")
}

func (s *Session) runLoop(ctx context.Context, name string, loop func(context.Context) error) {
	if err := loop(ctx); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.ErrorContext(ctx, "background loop stopped", "loop", name, "error", err)
	}
}

// Close stops the HTTP server and releases the kv store.
func (s *Session) Close(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	var errs []error
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("shutdown http server: %w", err))
	}
	if s.closeStore != nil {
		if err := s.closeStore(); err != nil {
			errs = append(errs, fmt.Errorf("close kv store: %w", err))
		}
	}
	return errors.Join(errs...)
}
