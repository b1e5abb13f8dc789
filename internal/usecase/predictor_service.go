package usecase

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/riskibarqy/matchcentre/internal/domain/kv"
	"github.com/riskibarqy/matchcentre/internal/domain/match"
	"github.com/riskibarqy/matchcentre/internal/domain/predictor"
	"github.com/riskibarqy/matchcentre/internal/platform/logging"
	"github.com/riskibarqy/matchcentre/internal/platform/scheduler"
	"go.opentelemetry.io/otel/attribute"
)

type globalRandom struct{}

func (globalRandom) Float64() float64 {
	return rand.Float64()
}

// PredictorService runs the match predictor simulation. Every state lives in
// the kv store; nothing is cached in memory between calls.
type PredictorService struct {
	store    kv.Store
	matches  match.Repository
	speeds   PredictorSpeedReader
	settings predictor.Settings
	rnd      predictor.RandomSource
	logger   *logging.Logger

	mu sync.Mutex
}

func NewPredictorService(
	store kv.Store,
	matches match.Repository,
	speeds PredictorSpeedReader,
	settings predictor.Settings,
	rnd predictor.RandomSource,
	logger *logging.Logger,
) *PredictorService {
	if logger == nil {
		logger = logging.Default()
	}
	if rnd == nil {
		rnd = globalRandom{}
	}
	if len(settings.Speeds) == 0 {
		settings = predictor.DefaultSettings()
	}

	return &PredictorService{
		store:    store,
		matches:  matches,
		speeds:   speeds,
		settings: settings,
		rnd:      rnd,
		logger:   logger,
	}
}

// ControlMatch starts a simulation for id seeded from the fixtures view. A
// match that is already registered is returned as stored with started=false.
// When no fixture carries id nothing happens and a zero record is returned.
func (s *PredictorService) ControlMatch(ctx context.Context, id string) (match.Record, bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictorService.ControlMatch", attribute.String("match.id", id))
	defer span.End()

	id = strings.TrimSpace(id)
	if id == "" {
		return match.Record{}, false, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadIDs(ctx)
	if err != nil {
		return match.Record{}, false, err
	}
	if slices.Contains(ids, id) {
		state, ok, err := s.loadState(ctx, id)
		if err != nil {
			return match.Record{}, false, err
		}
		if ok {
			return state, false, nil
		}
		s.logger.WarnContext(ctx, "registered predictor match has no state, restarting", "match_id", id)
	}

	fixtures, _ := s.matches.Get(match.ViewFixtures)
	seed, ok := match.Find(fixtures, id)
	if !ok {
		s.logger.WarnContext(ctx, "predictor seed match not found in fixtures", "match_id", id)
		return match.Record{}, false, nil
	}

	state := predictor.KickOff(seed)
	if err := s.saveState(ctx, state); err != nil {
		return match.Record{}, false, err
	}
	if !slices.Contains(ids, id) {
		if err := s.saveIDs(ctx, append(ids, id)); err != nil {
			return match.Record{}, false, err
		}
	}

	s.logger.InfoContext(ctx, "predictor match kicked off",
		"match_id", id,
		"home_rating", state.HomeTeam.Rating,
		"away_rating", state.AwayTeam.Rating,
	)
	return state, true, nil
}

// Tick advances one registered match by a minute.
func (s *PredictorService) Tick(ctx context.Context, id string) (match.Record, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictorService.Tick", attribute.String("match.id", id))
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tick(ctx, id)
}

// TickAll advances every registered match once, in registration order. A
// registered id without stored state is skipped; a storage error stops the
// pass.
func (s *PredictorService) TickAll(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictorService.TickAll")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		_, err := s.tick(ctx, id)
		switch {
		case errors.Is(err, ErrNotFound):
			s.logger.WarnContext(ctx, "predictor match registered without state, skipping", "match_id", id)
		case err != nil:
			return err
		}
	}
	return nil
}

func (s *PredictorService) tick(ctx context.Context, id string) (match.Record, error) {
	state, ok, err := s.loadState(ctx, id)
	if err != nil {
		return match.Record{}, err
	}
	if !ok {
		return match.Record{}, fmt.Errorf("%w: predictor match id=%s", ErrNotFound, id)
	}
	if predictor.IsFinished(state) {
		return state, nil
	}

	next := predictor.Advance(state, s.rnd, s.settings)
	if err := s.saveState(ctx, next); err != nil {
		return match.Record{}, err
	}
	if predictor.IsFinished(next) {
		s.logger.InfoContext(ctx, "predictor match finished",
			"match_id", id,
			"home_score", next.HomeTeam.Score,
			"away_score", next.AwayTeam.Score,
		)
	}
	return next, nil
}

// RefreshInterval is the idle cadence while nothing is in play, otherwise the
// preferred speed preset.
func (s *PredictorService) RefreshInterval(ctx context.Context) (time.Duration, error) {
	states, err := s.List(ctx)
	if err != nil {
		return 0, err
	}

	inPlay := slices.ContainsFunc(states, predictor.IsInPlay)
	if !inPlay {
		return s.settings.IdleInterval, nil
	}

	speed := s.settings.DefaultSpeed
	if s.speeds != nil {
		raw, err := s.speeds.PredictorSpeed(ctx)
		if err != nil {
			return 0, fmt.Errorf("read predictor speed: %w", err)
		}
		if parsed, ok := predictor.ParseSpeed(raw); ok {
			speed = parsed
		}
	}
	return s.settings.TickInterval(speed), nil
}

func (s *PredictorService) Get(ctx context.Context, id string) (match.Record, bool, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return match.Record{}, false, fmt.Errorf("%w: match id is required", ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadState(ctx, id)
}

// List returns all registered predictor states in registration order.
func (s *PredictorService) List(ctx context.Context) ([]match.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadIDs(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]match.Record, 0, len(ids))
	for _, id := range ids {
		state, ok, err := s.loadState(ctx, id)
		if err != nil {
			return nil, err
		}
		if ok {
			out = append(out, state)
		}
	}
	return out, nil
}

// Clear unregisters every predictor match and removes its state.
func (s *PredictorService) Clear(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.PredictorService.Clear")
	defer span.End()

	s.mu.Lock()
	defer s.mu.Unlock()

	ids, err := s.loadIDs(ctx)
	if err != nil {
		return err
	}
	for _, id := range ids {
		if err := s.store.Delete(ctx, kv.PredictorMatchKey(id)); err != nil {
			return fmt.Errorf("%w: delete predictor match id=%s: %w", ErrStorage, id, err)
		}
	}
	if err := s.store.Delete(ctx, kv.KeyPredictorMatchIDs); err != nil {
		return fmt.Errorf("%w: delete predictor ids: %w", ErrStorage, err)
	}

	s.logger.InfoContext(ctx, "predictor matches cleared", "count", len(ids))
	return nil
}

// Run ticks all matches until ctx is done, re-arming after every pass with
// the current refresh interval.
func (s *PredictorService) Run(ctx context.Context) error {
	slot := scheduler.NewSlot()
	defer slot.Stop()

	slot.Arm(s.settings.IdleInterval)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-slot.C():
			slot.Fired()
			if err := s.TickAll(ctx); err != nil {
				s.logger.WarnContext(ctx, "predictor tick failed", "error", err)
				slot.Arm(s.settings.IdleInterval)
				continue
			}

			interval, err := s.RefreshInterval(ctx)
			if err != nil {
				s.logger.WarnContext(ctx, "resolve predictor interval failed", "error", err)
				interval = s.settings.IdleInterval
			}
			slot.Arm(interval)
		}
	}
}

func (s *PredictorService) loadIDs(ctx context.Context) ([]string, error) {
	var ids []string
	if _, err := s.store.Get(ctx, kv.KeyPredictorMatchIDs, &ids); err != nil {
		return nil, fmt.Errorf("%w: load predictor ids: %w", ErrStorage, err)
	}
	return ids, nil
}

func (s *PredictorService) saveIDs(ctx context.Context, ids []string) error {
	if err := s.store.Set(ctx, kv.KeyPredictorMatchIDs, ids); err != nil {
		return fmt.Errorf("%w: save predictor ids: %w", ErrStorage, err)
	}
	return nil
}

func (s *PredictorService) loadState(ctx context.Context, id string) (match.Record, bool, error) {
	var state match.Record
	ok, err := s.store.Get(ctx, kv.PredictorMatchKey(id), &state)
	if err != nil {
		return match.Record{}, false, fmt.Errorf("%w: load predictor match id=%s: %w", ErrStorage, id, err)
	}
	return state, ok, nil
}

func (s *PredictorService) saveState(ctx context.Context, state match.Record) error {
	if err := s.store.Set(ctx, kv.PredictorMatchKey(state.ID), state); err != nil {
		return fmt.Errorf("%w: save predictor match id=%s: %w", ErrStorage, state.ID, err)
	}
	return nil
}
