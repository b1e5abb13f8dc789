package usecase

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/riskibarqy/matchcentre/internal/domain/kv"
	"github.com/riskibarqy/matchcentre/internal/domain/preference"
	"github.com/riskibarqy/matchcentre/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/matchcentre/internal/platform/logging"
)

type recordingUploader struct {
	mu      sync.Mutex
	prefs   []string
	devices []preference.Device
	err     error
}

func (u *recordingUploader) UploadPreferences(_ context.Context, deviceID string, _ preference.Preferences) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.prefs = append(u.prefs, deviceID)
	return u.err
}

func (u *recordingUploader) UploadDevice(_ context.Context, device preference.Device) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.devices = append(u.devices, device)
	return u.err
}

func TestPreferenceService_GetReturnsDefaults(t *testing.T) {
	t.Parallel()

	svc := NewPreferenceService(memory.NewKVStore(), nil, PreferenceConfig{}, logging.NewNop())
	prefs, err := svc.Get(context.Background())
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if !prefs.Notifications.Options.KickOff || prefs.Notifications.Speed != "medium" {
		t.Fatalf("unexpected defaults: %+v", prefs)
	}
	if prefs.Predictor.Speed != "" || prefs.HasInterests() {
		t.Fatalf("defaults must leave predictor speed and interests empty: %+v", prefs)
	}
}

func TestPreferenceService_SaveValidatesAndUploads(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewKVStore()
	uploader := &recordingUploader{err: errors.New("remote down")}
	svc := NewPreferenceService(store, uploader, PreferenceConfig{DeviceID: "device-9"}, logging.NewNop())
	svc.now = func() time.Time { return time.Date(2026, 10, 17, 9, 30, 0, 0, time.UTC) }

	prefs := preference.Default()
	prefs.Predictor.Speed = "fast"
	prefs.Competitions = []string{" Premier League ", "", "Premier League"}

	saved, err := svc.Save(ctx, prefs)
	if err != nil {
		t.Fatalf("save must ignore upload failures: %v", err)
	}
	if len(saved.Competitions) != 1 || saved.Competitions[0] != "Premier League" {
		t.Fatalf("unexpected competitions: %v", saved.Competitions)
	}
	if saved.LastUpdated != "2026-10-17T09:30:00Z" {
		t.Fatalf("unexpected last updated %q", saved.LastUpdated)
	}

	speed, err := svc.PredictorSpeed(ctx)
	if err != nil || speed != "fast" {
		t.Fatalf("unexpected predictor speed=%q err=%v", speed, err)
	}
	if len(uploader.prefs) != 1 || uploader.prefs[0] != "device-9" {
		t.Fatalf("expected one upload for device-9, got %v", uploader.prefs)
	}
	if len(uploader.devices) != 1 {
		t.Fatalf("expected device upload on first use, got %d", len(uploader.devices))
	}

	prefs.Predictor.Speed = "warp"
	if _, err := svc.Save(ctx, prefs); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestPreferenceService_DeviceIDIsGeneratedOnce(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := memory.NewKVStore()
	svc := NewPreferenceService(store, nil, PreferenceConfig{}, logging.NewNop())

	first, err := svc.DeviceID(ctx)
	if err != nil || first == "" {
		t.Fatalf("first device id=%q err=%v", first, err)
	}
	second, err := svc.DeviceID(ctx)
	if err != nil || second != first {
		t.Fatalf("device id must be stable, got=%q want=%q err=%v", second, first, err)
	}

	var device preference.Device
	if ok, err := store.Get(ctx, kv.KeyUserDeviceInfo, &device); err != nil || !ok || device.ID != first {
		t.Fatalf("device not persisted: %+v ok=%v err=%v", device, ok, err)
	}
}
