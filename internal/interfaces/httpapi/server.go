package httpapi

import (
	"net/http"

	"github.com/gorilla/mux"
	"github.com/riskibarqy/matchcentre/internal/platform/logging"
)

func NewRouter(handler *Handler, logger *logging.Logger, corsAllowedOrigins []string) http.Handler {
	if logger == nil {
		logger = logging.Default()
	}

	router := mux.NewRouter()
	router.NotFoundHandler = http.HandlerFunc(handler.NotFound)
	router.MethodNotAllowedHandler = http.HandlerFunc(handler.MethodNotAllowed)

	registerSystemRoutes(router, handler)
	registerMatchRoutes(router, handler)
	registerPredictorRoutes(router, handler)
	registerPreferenceRoutes(router, handler)
	router.Handle(liveFeedPath, handler.LiveFeed(originChecker(corsAllowedOrigins))).Methods(http.MethodGet)

	return RequestTracing(RequestLogging(logger, CORS(corsAllowedOrigins, recoverPanic(logger, router))))
}

func recoverPanic(logger *logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		defer func() {
			if rec := recover(); rec != nil {
				logger.ErrorContext(ctx, "panic recovered", "panic", rec, "path", r.URL.Path)
				writeInternalError(ctx, w)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
