package usecase

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/riskibarqy/matchcentre/internal/domain/kv"
	"github.com/riskibarqy/matchcentre/internal/domain/preference"
	"github.com/riskibarqy/matchcentre/internal/platform/logging"
)

const devicePlatform = "server"

type PreferenceConfig struct {
	// DeviceID pins the device identity instead of generating one.
	DeviceID string
}

// PreferenceService owns user preferences and the device identity, both
// persisted in the kv store. Uploads to the remote API are best effort.
type PreferenceService struct {
	store    kv.Store
	uploader PreferenceUploader
	cfg      PreferenceConfig
	validate *validator.Validate
	logger   *logging.Logger
	now      func() time.Time

	deviceMu sync.Mutex
}

func NewPreferenceService(store kv.Store, uploader PreferenceUploader, cfg PreferenceConfig, logger *logging.Logger) *PreferenceService {
	if logger == nil {
		logger = logging.Default()
	}
	cfg.DeviceID = strings.TrimSpace(cfg.DeviceID)

	return &PreferenceService{
		store:    store,
		uploader: uploader,
		cfg:      cfg,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Get returns the saved preferences, or the defaults when nothing is stored.
func (s *PreferenceService) Get(ctx context.Context) (preference.Preferences, error) {
	prefs := preference.Default()
	ok, err := s.store.Get(ctx, kv.KeyPreferences, &prefs)
	if err != nil {
		return preference.Preferences{}, fmt.Errorf("%w: load preferences: %w", ErrStorage, err)
	}
	if !ok {
		return preference.Default(), nil
	}
	return prefs, nil
}

func (s *PreferenceService) PredictorSpeed(ctx context.Context) (string, error) {
	prefs, err := s.Get(ctx)
	if err != nil {
		return "", err
	}
	return prefs.Predictor.Speed, nil
}

// Save validates and persists prefs, then uploads them for the device.
func (s *PreferenceService) Save(ctx context.Context, prefs preference.Preferences) (preference.Preferences, error) {
	ctx, span := startUsecaseSpan(ctx, "usecase.PreferenceService.Save")
	defer span.End()

	prefs.Competitions = compactNames(prefs.Competitions)
	prefs.ClubTeams = compactNames(prefs.ClubTeams)
	prefs.InternationalTeams = compactNames(prefs.InternationalTeams)
	if err := s.validate.StructCtx(ctx, prefs); err != nil {
		return preference.Preferences{}, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	prefs.LastUpdated = s.now().UTC().Format(time.RFC3339)
	if err := s.store.Set(ctx, kv.KeyPreferences, prefs); err != nil {
		return preference.Preferences{}, fmt.Errorf("%w: save preferences: %w", ErrStorage, err)
	}

	deviceID, err := s.DeviceID(ctx)
	if err != nil {
		return preference.Preferences{}, err
	}
	if s.uploader != nil {
		if err := s.uploader.UploadPreferences(ctx, deviceID, prefs); err != nil {
			s.logger.WarnContext(ctx, "upload preferences failed", "device_id", deviceID, "error", err)
		}
	}

	s.logger.InfoContext(ctx, "preferences saved",
		"competitions", len(prefs.Competitions),
		"club_teams", len(prefs.ClubTeams),
		"international_teams", len(prefs.InternationalTeams),
	)
	return prefs, nil
}

// DeviceID returns the persisted device identity, creating it on first use.
func (s *PreferenceService) DeviceID(ctx context.Context) (string, error) {
	device, err := s.Device(ctx)
	if err != nil {
		return "", err
	}
	return device.ID, nil
}

func (s *PreferenceService) Device(ctx context.Context) (preference.Device, error) {
	s.deviceMu.Lock()
	defer s.deviceMu.Unlock()

	var device preference.Device
	ok, err := s.store.Get(ctx, kv.KeyUserDeviceInfo, &device)
	if err != nil {
		return preference.Device{}, fmt.Errorf("%w: load device info: %w", ErrStorage, err)
	}
	if ok && strings.TrimSpace(device.ID) != "" {
		return device, nil
	}

	device = preference.Device{
		ID:          s.cfg.DeviceID,
		Platform:    devicePlatform,
		LastUpdated: s.now().UTC().Format(time.RFC3339),
	}
	if device.ID == "" {
		device.ID = uuid.NewString()
	}
	if err := s.store.Set(ctx, kv.KeyUserDeviceInfo, device); err != nil {
		return preference.Device{}, fmt.Errorf("%w: save device info: %w", ErrStorage, err)
	}

	if s.uploader != nil {
		if err := s.uploader.UploadDevice(ctx, device); err != nil {
			s.logger.WarnContext(ctx, "upload device info failed", "device_id", device.ID, "error", err)
		}
	}
	s.logger.InfoContext(ctx, "device registered", "device_id", device.ID)
	return device, nil
}

func compactNames(items []string) []string {
	if len(items) == 0 {
		return items
	}
	out := make([]string, 0, len(items))
	seen := make(map[string]struct{}, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
