package httpapi

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/mux"
	"github.com/riskibarqy/matchcentre/internal/domain/match"
	"github.com/riskibarqy/matchcentre/internal/domain/news"
	"github.com/riskibarqy/matchcentre/internal/usecase"
)

type matchListDTO struct {
	View     match.View     `json:"view"`
	Present  bool           `json:"present"`
	HasError bool           `json:"hasError"`
	Items    []match.Record `json:"items"`
}

func (h *Handler) ListMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListMatches")
	defer span.End()

	view, ok := match.ParseView(mux.Vars(r)["view"])
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: unknown match view %q", usecase.ErrInvalidInput, mux.Vars(r)["view"]))
		return
	}

	snapshot := h.matches.Snapshot(view)
	items := snapshot.Records
	if items == nil {
		items = []match.Record{}
	}
	writeSuccess(ctx, w, http.StatusOK, matchListDTO{
		View:     view,
		Present:  snapshot.Present,
		HasError: snapshot.HasError,
		Items:    items,
	})
}

func (h *Handler) RefreshMatches(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.RefreshMatches")
	defer span.End()

	if err := h.matchSync.RefreshAll(ctx); err != nil {
		h.logger.WarnContext(ctx, "refresh matches failed", "error", err)
		writeError(ctx, w, err)
		return
	}

	writeSuccess(ctx, w, http.StatusAccepted, h.matchSync.Status())
}

func (h *Handler) GetCounts(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.GetCounts")
	defer span.End()

	writeSuccess(ctx, w, http.StatusOK, h.countService.Counts())
}

func (h *Handler) ListNews(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListNews")
	defer span.End()

	items := h.newsService.Latest()
	if items == nil {
		items = []news.Article{}
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListCompetitions(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListCompetitions")
	defer span.End()

	items, err := h.referenceService.Competitions(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "list competitions failed", "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}

func (h *Handler) ListTeams(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.ListTeams")
	defer span.End()

	category := strings.TrimSpace(mux.Vars(r)["category"])
	items, err := h.referenceService.Teams(ctx, category)
	if err != nil {
		h.logger.WarnContext(ctx, "list teams failed", "category", category, "error", err)
		writeError(ctx, w, err)
		return
	}
	writeSuccess(ctx, w, http.StatusOK, items)
}
