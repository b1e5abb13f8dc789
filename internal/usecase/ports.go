package usecase

import (
	"context"

	"github.com/riskibarqy/matchcentre/internal/domain/match"
	"github.com/riskibarqy/matchcentre/internal/domain/news"
	"github.com/riskibarqy/matchcentre/internal/domain/preference"
)

// HealthStatus is the remote healthcheck payload.
type HealthStatus struct {
	Status string `json:"status"`
}

type MatchSource interface {
	FetchMatches(ctx context.Context, view match.View, deviceID string) ([]match.Record, error)
}

type HealthSource interface {
	FetchHealthcheck(ctx context.Context) (HealthStatus, error)
}

type NewsSource interface {
	FetchNews(ctx context.Context, deviceID string) ([]news.Article, error)
}

type ReferenceSource interface {
	FetchCompetitions(ctx context.Context) ([]string, error)
	FetchTeams(ctx context.Context, category string) ([]string, error)
}

type PreferenceUploader interface {
	UploadPreferences(ctx context.Context, deviceID string, prefs preference.Preferences) error
	UploadDevice(ctx context.Context, device preference.Device) error
}

// DeviceIDProvider resolves the identity used in per-user API paths.
type DeviceIDProvider interface {
	DeviceID(ctx context.Context) (string, error)
}

type PreferenceReader interface {
	Get(ctx context.Context) (preference.Preferences, error)
}

// PredictorSpeedReader returns the user's preferred simulation speed, empty
// when none is set.
type PredictorSpeedReader interface {
	PredictorSpeed(ctx context.Context) (string, error)
}
