package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/riskibarqy/matchcentre/internal/domain/match"
	"github.com/riskibarqy/matchcentre/internal/usecase"
)

type startPredictorRequest struct {
	MatchID string `validate:"required,max=64"`
}

type predictorStartDTO struct {
	Started bool         `json:"started"`
	Match   match.Record `json:"match"`
}

func (h *Handler) ListPredictorMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListPredictorMatches")
	defer span.End()

	items, err := h.predictorService.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "list predictor matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) GetPredictorMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetPredictorMatch")
	defer span.End()

	matchID := strings.TrimSpace(mux.Vars(r)["matchID"])
	item, ok, err := h.predictorService.Get(ctx, matchID)
	if err != nil {
		writeError(ctx, w, err)
		return
	}
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: predictor match id=%s", usecase.ErrNotFound, matchID))
		return
	}
	writeSuccess(ctx, w, http.StatusOK, item)
}

// StartPredictorMatch registers and kicks off a simulation, then refreshes
// the predictor view so the client sees the match straight away.
func (h *Handler) StartPredictorMatch(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.StartPredictorMatch")
	defer span.End()

	req := startPredictorRequest{MatchID: strings.TrimSpace(mux.Vars(r)["matchID"])}
	if err := h.validateRequest(ctx, req); err != nil {
		writeError(ctx, w, err)
		return
	}

	item, started, err := h.predictorService.ControlMatch(ctx, req.MatchID)
	if err != nil {
		h.logger.ErrorContext(ctx, "start predictor match failed", "match_id", req.MatchID, "error", err)
		writeError(ctx, w, err)
		return
	}
	if item.ID == "" {
		writeError(ctx, w, fmt.Errorf("%w: match id=%s is not in fixtures", usecase.ErrNotFound, req.MatchID))
		return
	}

	if err := h.matchSync.ForceUpdate(ctx, match.ViewPredictor); err != nil {
		h.logger.WarnContext(ctx, "refresh predictor view failed", "match_id", req.MatchID, "error", err)
	}

	status := http.StatusOK
	if started {
		status = http.StatusCreated
	}
	writeSuccess(ctx, w, status, predictorStartDTO{Started: started, Match: item})
}

func (h *Handler) ClearPredictorMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ClearPredictorMatches")
	defer span.End()

	if err := h.predictorService.Clear(ctx); err != nil {
		h.logger.ErrorContext(ctx, "clear predictor matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
