package predictor

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/matchcentre/internal/domain/match"
)

const (
	FullTimeMinute = 90
	KickOffMinute  = 1
)

type Speed string

const (
	SpeedSlow   Speed = "slow"
	SpeedMedium Speed = "medium"
	SpeedFast   Speed = "fast"
)

func ParseSpeed(value string) (Speed, bool) {
	switch Speed(strings.ToLower(strings.TrimSpace(value))) {
	case SpeedSlow:
		return SpeedSlow, true
	case SpeedMedium:
		return SpeedMedium, true
	case SpeedFast:
		return SpeedFast, true
	default:
		return "", false
	}
}

// RandomSource yields uniform values in [0,1). *rand.Rand from math/rand/v2
// satisfies it.
type RandomSource interface {
	Float64() float64
}

// Settings stores the simulation parameters.
type Settings struct {
	GoalChancePerMinute    float64
	TeamRatingDifferential float64
	IdleInterval           time.Duration
	DefaultSpeed           Speed
	Speeds                 map[Speed]time.Duration
}

func DefaultSettings() Settings {
	return Settings{
		GoalChancePerMinute:    0.015,
		TeamRatingDifferential: 3,
		IdleInterval:           time.Second,
		DefaultSpeed:           SpeedMedium,
		Speeds: map[Speed]time.Duration{
			SpeedSlow:   500 * time.Millisecond,
			SpeedMedium: 200 * time.Millisecond,
			SpeedFast:   10 * time.Millisecond,
		},
	}
}

// TickInterval returns the cadence for speed, falling back to the default speed.
func (s Settings) TickInterval(speed Speed) time.Duration {
	if interval, ok := s.Speeds[speed]; ok && interval > 0 {
		return interval
	}
	if interval, ok := s.Speeds[s.DefaultSpeed]; ok && interval > 0 {
		return interval
	}
	return s.IdleInterval
}

// GoalChance is the per-minute probability that a team rated own scores
// against a team rated opponent. Unknown ratings (<= 0) give the base chance.
func GoalChance(own, opponent float64, settings Settings) float64 {
	base := settings.GoalChancePerMinute
	if own <= 0 || opponent <= 0 {
		return base
	}
	ratingDiffPct := (100 - (opponent / own * 100)) * settings.TeamRatingDifferential
	return base + (ratingDiffPct / 100 * base)
}

// ScoreIncrement runs one goal trial and returns 0 or 1.
func ScoreIncrement(own, opponent float64, rnd RandomSource, settings Settings) int {
	if rnd.Float64() < GoalChance(own, opponent, settings) {
		return 1
	}
	return 0
}

// KickOff turns a fixture copy into a fresh in-play predictor state.
func KickOff(seed match.Record) match.Record {
	state := seed.Clone()
	state.HomeTeam.Score = 0
	state.AwayTeam.Score = 0
	state.Time = KickOffMinute
	state.TimeLabel = MinuteLabel(KickOffMinute)
	state.PredictorMatchStatus = match.PredictorInPlay
	state.StatusMessages = nil
	return state
}

func MinuteLabel(minute int) string {
	return strconv.Itoa(minute) + "'"
}

func IsFinished(state match.Record) bool {
	return state.PredictorMatchStatus == match.PredictorFinished
}

func IsInPlay(state match.Record) bool {
	return state.PredictorMatchStatus == match.PredictorInPlay
}

// Advance simulates one minute and returns the next state. Finished states
// are returned unchanged.
func Advance(state match.Record, rnd RandomSource, settings Settings) match.Record {
	if IsFinished(state) {
		return state
	}

	next := state.Clone()
	if next.Time < FullTimeMinute {
		homeGoal := ScoreIncrement(next.HomeTeam.Rating, next.AwayTeam.Rating, rnd, settings)
		awayGoal := ScoreIncrement(next.AwayTeam.Rating, next.HomeTeam.Rating, rnd, settings)
		next.HomeTeam.Score += homeGoal
		next.AwayTeam.Score += awayGoal
		next.Time++
		next.TimeLabel = MinuteLabel(next.Time)
		return next
	}

	next.Time = FullTimeMinute
	next.TimeLabel = match.LabelFullTime
	next.StatusMessages = []string{match.LabelFullTime}
	next.PredictorMatchStatus = match.PredictorFinished
	if next.PenaltyTieBreakApplies() {
		winner := next.HomeTeam
		if rnd.Float64() >= 0.5 {
			winner = next.AwayTeam
		}
		next.StatusMessages = append(next.StatusMessages, PenaltyWinnerMessage(winner.Names.DisplayName))
	}
	return next
}

func PenaltyWinnerMessage(displayName string) string {
	return fmt.Sprintf("Predicted penalty shoot-out winner: %s", displayName)
}
