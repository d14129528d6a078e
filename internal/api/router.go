// internal/api/router.go
package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"barternow-matcher/internal/common/logger"
)

const requestIDHeader = "X-Request-ID"

// NewRouter wires all routes. Matching endpoints live under /api/v1, the
// dropdown listing endpoints keep their legacy /api prefix.
func NewRouter(h *Handler, log logger.Logger) *mux.Router {
	r := mux.NewRouter()
	r.Use(requestIDMiddleware)
	r.Use(loggingMiddleware(log))

	r.HandleFunc("/health", h.Health).Methods(http.MethodGet)
	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	r.HandleFunc("/api/brands", h.BrandsList).Methods(http.MethodGet)
	r.HandleFunc("/api/events", h.EventsList).Methods(http.MethodGet)

	v1 := r.PathPrefix("/api/v1").Subrouter()
	v1.HandleFunc("/brands/{id:[0-9]+}/matches", h.BrandMatches).Methods(http.MethodGet)
	v1.HandleFunc("/events/{id:[0-9]+}/matches", h.EventMatches).Methods(http.MethodGet)
	v1.HandleFunc("/geo/cities/{id:[0-9]+}", h.CityGeography).Methods(http.MethodGet)
	v1.HandleFunc("/geo/states/{id:[0-9]+}/cities", h.CitiesInState).Methods(http.MethodGet)
	v1.HandleFunc("/geo/countries/{id:[0-9]+}/cities", h.CitiesInCountry).Methods(http.MethodGet)
	v1.HandleFunc("/match/preview", h.MatchPreview).Methods(http.MethodPost)

	return r
}

func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(requestIDHeader)
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set(requestIDHeader, requestID)
		next.ServeHTTP(w, r)
	})
}

func loggingMiddleware(log logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			next.ServeHTTP(w, r)
			log.Info("request handled", map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"duration_ms": time.Since(start).Milliseconds(),
				"request_id":  w.Header().Get(requestIDHeader),
			})
		})
	}
}
