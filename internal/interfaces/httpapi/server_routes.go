package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
)

const liveFeedPath = "/v1/live"

func registerSystemRoutes(router *mux.Router, handler *Handler) {
	router.HandleFunc("/healthz", handler.Healthz).Methods(http.MethodGet)
	router.HandleFunc("/v1/status", handler.GetStatus).Methods(http.MethodGet)
}

func registerMatchRoutes(router *mux.Router, handler *Handler) {
	router.HandleFunc("/v1/matches/refresh", handler.RefreshMatches).Methods(http.MethodPost)
	router.HandleFunc("/v1/matches/{view}", handler.ListMatches).Methods(http.MethodGet)
	router.HandleFunc("/v1/counts", handler.GetCounts).Methods(http.MethodGet)
	router.HandleFunc("/v1/news", handler.ListNews).Methods(http.MethodGet)
	router.HandleFunc("/v1/competitions", handler.ListCompetitions).Methods(http.MethodGet)
	router.HandleFunc("/v1/teams/{category}", handler.ListTeams).Methods(http.MethodGet)
}

func registerPredictorRoutes(router *mux.Router, handler *Handler) {
	router.HandleFunc("/v1/predictor/matches", handler.ListPredictorMatches).Methods(http.MethodGet)
	router.HandleFunc("/v1/predictor/matches", handler.ClearPredictorMatches).Methods(http.MethodDelete)
	router.HandleFunc("/v1/predictor/matches/{matchID}", handler.GetPredictorMatch).Methods(http.MethodGet)
	router.HandleFunc("/v1/predictor/matches/{matchID}/start", handler.StartPredictorMatch).Methods(http.MethodPost)
}

func registerPreferenceRoutes(router *mux.Router, handler *Handler) {
	router.HandleFunc("/v1/preferences", handler.GetPreferences).Methods(http.MethodGet)
	router.HandleFunc("/v1/preferences", handler.UpdatePreferences).Methods(http.MethodPut)
}
