package httpapi

import (
	"fmt"
	"net/http"

	jsoniter "github.com/json-iterator/go"
	"github.com/riskibarqy/matchcentre/internal/domain/preference"
	"github.com/riskibarqy/matchcentre/internal/usecase"
)

const maxPreferenceBodyBytes = 64 << 10

func (h *Handler) GetPreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPreferences")
	defer span.End()

	prefs, err := h.preferenceService.Get(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "get preferences failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, prefs)
}

func (h *Handler) UpdatePreferences(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.UpdatePreferences")
	defer span.End()

	var req preference.Preferences
	decoder := jsoniter.NewDecoder(http.MaxBytesReader(w, r.Body, maxPreferenceBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(&req); err != nil {
		writeError(ctx, w, fmt.Errorf("%w: invalid JSON body: %v", usecase.ErrInvalidInput, err))
		return
	}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	saved, err := h.preferenceService.Save(ctx, req)
	if err != nil {
		h.logger.WarnContext(ctx, "save preferences failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, saved)
}
