package httpapi

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/riskibarqy/matchcentre/internal/domain/match"
	"github.com/riskibarqy/matchcentre/internal/platform/logging"
	"github.com/riskibarqy/matchcentre/internal/usecase"
)

const defaultLiveInterval = 500 * time.Millisecond

type Handler struct {
	matchSync         *usecase.MatchSyncService
	matches           match.Repository
	predictorService  *usecase.PredictorService
	countService      *usecase.CountService
	healthService     *usecase.HealthService
	newsService       *usecase.NewsService
	referenceService  *usecase.ReferenceService
	preferenceService *usecase.PreferenceService
	liveInterval      time.Duration
	logger            *logging.Logger
	validator         *validator.Validate
}

func NewHandler(
	matchSync *usecase.MatchSyncService,
	matches match.Repository,
	predictorService *usecase.PredictorService,
	countService *usecase.CountService,
	healthService *usecase.HealthService,
	newsService *usecase.NewsService,
	referenceService *usecase.ReferenceService,
	preferenceService *usecase.PreferenceService,
	liveInterval time.Duration,
	logger *logging.Logger,
) *Handler {
	if logger == nil {
		logger = logging.Default()
	}
	if liveInterval <= 0 {
		liveInterval = defaultLiveInterval
	}

	return &Handler{
		matchSync:         matchSync,
		matches:           matches,
		predictorService:  predictorService,
		countService:      countService,
		healthService:     healthService,
		newsService:       newsService,
		referenceService:  referenceService,
		preferenceService: preferenceService,
		liveInterval:      liveInterval,
		logger:            logger,
		validator:         validator.New(),
	}
}

func (h *Handler) Healthz(w http.ResponseWriter, r *http.Request) {
	writeSuccess(r.Context(), w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) GetStatus(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetStatus")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, statusDTO{
		ServerHealthy: h.healthService.IsHealthy(),
		Initialized:   h.matchSync.Initialized(),
		Views:         h.matchSync.Status(),
	})
}

func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeError(r.Context(), w, fmt.Errorf("%w: route %s %s", usecase.ErrNotFound, r.Method, r.URL.Path))
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeError(r.Context(), w, fmt.Errorf("%w: %s %s", errMethodNotAllowed, r.Method, r.URL.Path))
}

func (h *Handler) validateRequest(ctx context.Context, payload any) error {
	ctx, span := startSpan(ctx, "httpapi.Handler.validateRequest")
	defer span.End()

	if err := h.validator.StructCtx(ctx, payload); err != nil {
		return fmt.Errorf("%w: validation failed: %v", usecase.ErrInvalidInput, err)
	}

	return nil
}

type statusDTO struct {
	ServerHealthy bool                 `json:"serverHealthy"`
	Initialized   bool                 `json:"initialized"`
	Views         []usecase.ViewStatus `json:"views"`
}
