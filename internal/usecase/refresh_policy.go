package usecase

import (
	"time"

	"github.com/riskibarqy/matchcentre/internal/domain/match"
)

type RefreshPolicyConfig struct {
	BackoffStep           time.Duration
	BackoffMax            time.Duration
	ResultsLiveInterval   time.Duration
	ResultsIdleInterval   time.Duration
	LiveInterval          time.Duration
	PredictorLiveInterval time.Duration
	PredictorIdleInterval time.Duration
	KickoffLead           time.Duration
	KickoffDueInterval    time.Duration
	NoUpcomingInterval    time.Duration
	FetchThrottle         time.Duration
	RecheckInterval       time.Duration
}

func DefaultRefreshPolicyConfig() RefreshPolicyConfig {
	return RefreshPolicyConfig{
		BackoffStep:           5 * time.Second,
		BackoffMax:            5 * time.Minute,
		ResultsLiveInterval:   5 * time.Second,
		ResultsIdleInterval:   time.Hour,
		LiveInterval:          5 * time.Second,
		PredictorLiveInterval: time.Second,
		PredictorIdleInterval: 5 * time.Second,
		KickoffLead:           time.Minute,
		KickoffDueInterval:    5 * time.Second,
		NoUpcomingInterval:    time.Minute,
		FetchThrottle:         5 * time.Second,
		RecheckInterval:       time.Second,
	}
}

func normalizeRefreshPolicyConfig(cfg RefreshPolicyConfig) RefreshPolicyConfig {
	def := DefaultRefreshPolicyConfig()
	pick := func(value, fallback time.Duration) time.Duration {
		if value <= 0 {
			return fallback
		}
		return value
	}
	return RefreshPolicyConfig{
		BackoffStep:           pick(cfg.BackoffStep, def.BackoffStep),
		BackoffMax:            pick(cfg.BackoffMax, def.BackoffMax),
		ResultsLiveInterval:   pick(cfg.ResultsLiveInterval, def.ResultsLiveInterval),
		ResultsIdleInterval:   pick(cfg.ResultsIdleInterval, def.ResultsIdleInterval),
		LiveInterval:          pick(cfg.LiveInterval, def.LiveInterval),
		PredictorLiveInterval: pick(cfg.PredictorLiveInterval, def.PredictorLiveInterval),
		PredictorIdleInterval: pick(cfg.PredictorIdleInterval, def.PredictorIdleInterval),
		KickoffLead:           pick(cfg.KickoffLead, def.KickoffLead),
		KickoffDueInterval:    pick(cfg.KickoffDueInterval, def.KickoffDueInterval),
		NoUpcomingInterval:    pick(cfg.NoUpcomingInterval, def.NoUpcomingInterval),
		FetchThrottle:         pick(cfg.FetchThrottle, def.FetchThrottle),
		RecheckInterval:       pick(cfg.RecheckInterval, def.RecheckInterval),
	}
}

// RefreshInput is everything the policy looks at. Fixtures feeds the results
// rule, which watches fixtures still in progress.
type RefreshInput struct {
	View     match.View
	Snapshot match.Snapshot
	Fixtures []match.Record
	Backoff  time.Duration
	Now      time.Time
}

// ComputeNextDelay picks the wait before the next fetch of a view. It is a pure
// function of its input; advancing the back-off is the caller's job.
func ComputeNextDelay(cfg RefreshPolicyConfig, in RefreshInput) time.Duration {
	if !in.Snapshot.Present || in.Snapshot.HasError {
		return min(in.Backoff, cfg.BackoffMax)
	}

	if in.View == match.ViewResults {
		if anyInProgress(in.Snapshot.Records) || anyInProgress(in.Fixtures) {
			return cfg.ResultsLiveInterval
		}
		return cfg.ResultsIdleInterval
	}

	if anyLive(in.Snapshot.Records) {
		if in.View == match.ViewPredictor {
			return cfg.PredictorLiveInterval
		}
		return cfg.LiveInterval
	}

	if in.View == match.ViewPredictor {
		return cfg.PredictorIdleInterval
	}

	nearest := nearestKickoff(in.Snapshot.Records)
	if nearest == nil {
		return cfg.NoUpcomingInterval
	}
	untilKickoff := nearest.Sub(in.Now)
	if untilKickoff > cfg.KickoffLead {
		return untilKickoff - cfg.KickoffLead
	}
	return cfg.KickoffDueInterval
}

func anyInProgress(items []match.Record) bool {
	for _, item := range items {
		if item.InProgress() {
			return true
		}
	}
	return false
}

func anyLive(items []match.Record) bool {
	for _, item := range items {
		if item.IsLive() {
			return true
		}
	}
	return false
}

// nearestKickoff returns the earliest kickoff among records that have not
// finished. A kickoff already in the past means the match is due.
func nearestKickoff(items []match.Record) *time.Time {
	var nearest *time.Time
	for _, item := range items {
		if item.DateTimeUTC.IsZero() || item.Finished || match.IsTerminalLabel(item.TimeLabel) {
			continue
		}
		if nearest == nil || item.DateTimeUTC.Before(*nearest) {
			next := item.DateTimeUTC
			nearest = &next
		}
	}
	return nearest
}
