package usecase

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/panjf2000/ants/v2"
	"github.com/riskibarqy/matchcentre/internal/domain/match"
	"github.com/riskibarqy/matchcentre/internal/platform/logging"
	"github.com/riskibarqy/matchcentre/internal/platform/resilience"
	"github.com/riskibarqy/matchcentre/internal/platform/scheduler"
	"go.opentelemetry.io/otel/attribute"
)

var errNoFixtures = errors.New("no fixtures loaded")

type MatchSyncConfig struct {
	Policy        RefreshPolicyConfig
	InitRetryStep time.Duration
	InitRetryMax  time.Duration
	MaxWorkers    int
}

// ViewStatus describes the refresh state of one view.
type ViewStatus struct {
	View           match.View `json:"view"`
	Present        bool       `json:"present"`
	HasError       bool       `json:"has_error"`
	RecordCount    int        `json:"record_count"`
	BackoffMs      int64      `json:"backoff_ms"`
	NextDelayMs    int64      `json:"next_delay_ms"`
	LastFetchTime  time.Time  `json:"last_fetch_time"`
	LastAppliedSeq uint64     `json:"last_applied_seq"`
	LastError      string     `json:"last_error,omitempty"`
	NextFetchAt    *time.Time `json:"next_fetch_at,omitempty"`
}

type refreshState struct {
	mu              sync.Mutex
	lastStartedAt   time.Time
	lastCompletedAt time.Time
	nextSeq         uint64
	lastAppliedSeq  uint64
	lastErr         string
	backoff         *resilience.LinearBackOff
	// slot is the armed fetch timer while RunView owns the view.
	slot *scheduler.Slot
}

// MatchSyncService keeps every match view in the store fresh using the
// adaptive refresh policy.
type MatchSyncService struct {
	repo        match.Repository
	source      MatchSource
	devices     DeviceIDProvider
	prefs       PreferenceReader
	cfg         MatchSyncConfig
	logger      *logging.Logger
	now         func() time.Time
	states      map[match.View]*refreshState
	initialized atomic.Bool
}

func NewMatchSyncService(
	repo match.Repository,
	source MatchSource,
	devices DeviceIDProvider,
	prefs PreferenceReader,
	cfg MatchSyncConfig,
	logger *logging.Logger,
) *MatchSyncService {
	if logger == nil {
		logger = logging.Default()
	}
	cfg.Policy = normalizeRefreshPolicyConfig(cfg.Policy)
	if cfg.InitRetryStep <= 0 {
		cfg.InitRetryStep = 5 * time.Second
	}
	if cfg.InitRetryMax <= 0 {
		cfg.InitRetryMax = time.Hour
	}
	if cfg.MaxWorkers <= 0 {
		cfg.MaxWorkers = len(match.AllViews)
	}

	states := make(map[match.View]*refreshState, len(match.AllViews))
	for _, view := range match.AllViews {
		states[view] = &refreshState{
			backoff: resilience.NewLinearBackOff(cfg.Policy.BackoffStep, cfg.Policy.BackoffMax),
		}
	}

	return &MatchSyncService{
		repo:    repo,
		source:  source,
		devices: devices,
		prefs:   prefs,
		cfg:     cfg,
		logger:  logger,
		now:     time.Now,
		states:  states,
	}
}

// Fetch pulls one view from the remote API. Unless forced, it is skipped when
// the previous fetch for the view started within the throttle window. Fetch
// failures are absorbed into the view's error flag and back-off; only local
// failures such as an unreadable device id are returned.
func (s *MatchSyncService) Fetch(ctx context.Context, view match.View, force bool) (bool, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.Fetch",
		attribute.String("match.view", view.String()),
		attribute.Bool("fetch.force", force),
	)
	defer span.End()

	state, err := s.state(view)
	if err != nil {
		return false, err
	}

	now := s.now()
	state.mu.Lock()
	if !force && !state.lastStartedAt.IsZero() && now.Sub(state.lastStartedAt) < s.cfg.Policy.FetchThrottle {
		state.mu.Unlock()
		return false, nil
	}
	state.lastStartedAt = now
	state.nextSeq++
	seq := state.nextSeq
	state.mu.Unlock()

	deviceID, err := s.devices.DeviceID(ctx)
	if err != nil {
		return false, fmt.Errorf("resolve device id for view=%s: %w", view, err)
	}

	records, fetchErr := s.source.FetchMatches(ctx, view, deviceID)
	s.apply(ctx, view, state, seq, records, fetchErr)
	return true, nil
}

func (s *MatchSyncService) apply(ctx context.Context, view match.View, state *refreshState, seq uint64, records []match.Record, fetchErr error) {
	state.mu.Lock()
	defer state.mu.Unlock()

	state.lastCompletedAt = s.now()
	if seq < state.lastAppliedSeq {
		s.logger.DebugContext(ctx, "discarding stale match response",
			"view", view,
			"seq", seq,
			"last_applied_seq", state.lastAppliedSeq,
		)
		return
	}
	state.lastAppliedSeq = seq

	if fetchErr != nil {
		s.repo.SetError(view, true)
		state.lastErr = fetchErr.Error()
		wait := state.backoff.NextBackOff()
		s.logger.WarnContext(ctx, "fetch match data failed",
			"view", view,
			"backoff", wait.String(),
			"error", fetchErr,
		)
		return
	}

	if records == nil {
		records = []match.Record{}
	}
	s.repo.Set(view, records)
	s.repo.SetError(view, false)
	state.lastErr = ""
	state.backoff.Reset()
}

// ForceUpdate fetches view immediately, ignoring the throttle.
func (s *MatchSyncService) ForceUpdate(ctx context.Context, view match.View) error {
	_, err := s.Fetch(ctx, view, true)
	return err
}

// RefreshAll force-fetches every view concurrently.
func (s *MatchSyncService) RefreshAll(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.RefreshAll")
	defer span.End()

	pool, err := ants.NewPool(min(s.cfg.MaxWorkers, len(match.AllViews)))
	if err != nil {
		return fmt.Errorf("create worker pool: %w", err)
	}
	defer pool.Release()

	var (
		workers sync.WaitGroup
		mu      sync.Mutex
		errs    []error
	)
	for _, view := range match.AllViews {
		view := view
		workers.Add(1)
		if err := pool.Submit(func() {
			defer workers.Done()
			if _, err := s.Fetch(ctx, view, true); err != nil {
				mu.Lock()
				errs = append(errs, err)
				mu.Unlock()
			}
		}); err != nil {
			workers.Done()
			return fmt.Errorf("submit refresh task to worker pool: %w", err)
		}
	}
	workers.Wait()

	return errors.Join(errs...)
}

// Init loads every view once. When the followed competitions and teams are
// all empty nothing is fetched. While fixtures remain empty the load is
// retried with a linearly growing wait until ctx is done.
func (s *MatchSyncService) Init(ctx context.Context) error {
	ctx, span := startUsecaseSpan(ctx, "usecase.MatchSyncService.Init")
	defer span.End()

	prefs, err := s.prefs.Get(ctx)
	if err != nil {
		return fmt.Errorf("load preferences for match init: %w", err)
	}
	if !prefs.HasInterests() {
		s.logger.InfoContext(ctx, "no competitions or teams followed, skipping match init")
		s.initialized.Store(true)
		return nil
	}

	retry := resilience.NewLinearBackOff(s.cfg.InitRetryStep, s.cfg.InitRetryMax)
	operation := func() error {
		if err := s.RefreshAll(ctx); err != nil {
			return backoff.Permanent(err)
		}
		s.initialized.Store(true)
		if fixtures, ok := s.repo.Get(match.ViewFixtures); ok && len(fixtures) > 0 {
			return nil
		}
		return errNoFixtures
	}
	notify := func(err error, wait time.Duration) {
		s.logger.InfoContext(ctx, "no match data found, retrying init", "retry_in", wait.String(), "reason", err)
	}

	if err := backoff.RetryNotify(operation, backoff.WithContext(retry, ctx), notify); err != nil {
		return fmt.Errorf("init matches: %w", err)
	}
	s.logger.InfoContext(ctx, "matches initialized")
	return nil
}

func (s *MatchSyncService) Initialized() bool {
	return s.initialized.Load()
}

// NextDelay evaluates the refresh policy for view against the current store.
func (s *MatchSyncService) NextDelay(view match.View) time.Duration {
	state, err := s.state(view)
	if err != nil {
		return s.cfg.Policy.NoUpcomingInterval
	}
	return ComputeNextDelay(s.cfg.Policy, s.refreshInput(view, state.backoff.Current()))
}

func (s *MatchSyncService) refreshInput(view match.View, currentBackoff time.Duration) RefreshInput {
	in := RefreshInput{
		View:     view,
		Snapshot: s.repo.Snapshot(view),
		Backoff:  currentBackoff,
		Now:      s.now(),
	}
	if view == match.ViewResults {
		in.Fixtures, _ = s.repo.Get(match.ViewFixtures)
	}
	return in
}

// untilNextFetch converts the policy delay into a wait measured from now. The
// delay counts from the last fetch and never undercuts the throttle window.
func (s *MatchSyncService) untilNextFetch(view match.View) time.Duration {
	state, err := s.state(view)
	if err != nil {
		return s.cfg.Policy.RecheckInterval
	}

	state.mu.Lock()
	startedAt := state.lastStartedAt
	completedAt := state.lastCompletedAt
	state.mu.Unlock()
	if startedAt.IsZero() {
		return 0
	}

	base := completedAt
	if startedAt.After(base) {
		base = startedAt
	}
	due := base.Add(s.NextDelay(view))
	if throttleEnd := startedAt.Add(s.cfg.Policy.FetchThrottle); due.Before(throttleEnd) {
		due = throttleEnd
	}
	return due.Sub(s.now())
}

// RunView drives the fetch loop for one view until ctx is cancelled. The fetch
// timer is re-armed after every attempt and on every recheck tick, so a change
// in the data (a match going live) takes effect within one recheck interval.
func (s *MatchSyncService) RunView(ctx context.Context, view match.View) error {
	state, err := s.state(view)
	if err != nil {
		return err
	}

	slot := scheduler.NewSlot()
	state.mu.Lock()
	state.slot = slot
	state.mu.Unlock()
	defer func() {
		slot.Stop()
		state.mu.Lock()
		state.slot = nil
		state.mu.Unlock()
	}()
	recheck := time.NewTicker(s.cfg.Policy.RecheckInterval)
	defer recheck.Stop()

	slot.Arm(s.untilNextFetch(view))
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-slot.C():
			slot.Fired()
			if _, err := s.Fetch(ctx, view, false); err != nil {
				s.logger.WarnContext(ctx, "scheduled match fetch failed", "view", view, "error", err)
			}
			slot.Arm(s.untilNextFetch(view))
		case <-recheck.C:
			slot.Arm(s.untilNextFetch(view))
		}
	}
}

func (s *MatchSyncService) Status() []ViewStatus {
	out := make([]ViewStatus, 0, len(match.AllViews))
	for _, view := range match.AllViews {
		state := s.states[view]
		snapshot := s.repo.Snapshot(view)

		state.mu.Lock()
		item := ViewStatus{
			View:           view,
			Present:        snapshot.Present,
			HasError:       snapshot.HasError,
			RecordCount:    len(snapshot.Records),
			BackoffMs:      state.backoff.Current().Milliseconds(),
			LastFetchTime:  state.lastStartedAt,
			LastAppliedSeq: state.lastAppliedSeq,
			LastError:      state.lastErr,
		}
		if state.slot != nil {
			if due, armed := state.slot.Due(); armed {
				item.NextFetchAt = &due
			}
		}
		state.mu.Unlock()

		item.NextDelayMs = s.NextDelay(view).Milliseconds()
		out = append(out, item)
	}
	return out
}

func (s *MatchSyncService) state(view match.View) (*refreshState, error) {
	state, ok := s.states[view]
	if !ok {
		return nil, fmt.Errorf("%w: unknown match view %q", ErrInvalidInput, view)
	}
	return state, nil
}
