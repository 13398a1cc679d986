package api

import (
	"net/http"

	"socialgate/internal/models"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gorilla/mux/otelmux"
)

// RouteOption configures optional route behavior.
type RouteOption func(*mux.Router)

// WithOTelMiddleware adds OpenTelemetry HTTP instrumentation middleware.
func WithOTelMiddleware(serviceName string) RouteOption {
	return func(r *mux.Router) {
		r.Use(otelmux.Middleware(serviceName,
			otelmux.WithFilter(func(r *http.Request) bool {
				return r.URL.Path != "/health" &&
					r.URL.Path != "/api/v1/health"
			}),
		))
	}
}

// SetupRoutes configures the HTTP routes for the gateway
func SetupRoutes(handlers *Handlers, config *models.Config, opts ...RouteOption) *mux.Router {
	router := mux.NewRouter()

	// Request IDs and panic recovery wrap everything, including the
	// instrumentation added by opts.
	router.Use(requestIDMiddleware)
	router.Use(recoveryMiddleware)

	for _, opt := range opts {
		opt(router)
	}

	router.Use(loggingMiddleware)
	router.Use(maxBodyMiddleware(config.Server.MaxBodyBytes))

	router.HandleFunc("/", handlers.ServiceInfo).Methods("GET")
	router.HandleFunc("/twitter", handlers.Dispatch).Methods("POST")
	router.HandleFunc("/health", handlers.HealthCheck).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/twitter", handlers.Dispatch).Methods("POST")
	api.HandleFunc("/health", handlers.HealthCheck).Methods("GET")
	api.HandleFunc("/actions", handlers.ListActions).Methods("GET")
	api.HandleFunc("/actions/{name}", handlers.GetAction).Methods("GET")
	api.HandleFunc("/calls", handlers.ListCalls).Methods("GET")

	router.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusNotFound, models.ErrorCodeNotFound, "Not found")
	})
	router.MethodNotAllowedHandler = http.HandlerFunc(methodNotAllowedHandler)

	return router
}

// methodNotAllowedHandler handles requests with invalid HTTP methods
func methodNotAllowedHandler(w http.ResponseWriter, r *http.Request) {
	writeError(w, r, http.StatusMethodNotAllowed, models.ErrorCodeMethodNotAllowed, "Method not allowed")
}
