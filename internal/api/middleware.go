package api

import (
	"log/slog"
	"net/http"
	"time"

	"socialgate/internal/gateway"
	"socialgate/internal/models"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// HeaderRequestID carries the per-request correlation ID in both directions.
const HeaderRequestID = "X-Request-ID"

const maxRequestIDLength = 128

// requestIDMiddleware echoes a caller-supplied request ID or generates one,
// and attaches it to the request context.
func requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > maxRequestIDLength {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(gateway.WithRequestID(r.Context(), id)))
	})
}

// statusRecorder captures the status code written by downstream handlers.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(code int) {
	sr.status = code
	sr.ResponseWriter.WriteHeader(code)
}

// loggingMiddleware logs HTTP requests
func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		slog.Info("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
			"request_id", gateway.RequestIDFromContext(r.Context()))
	})
}

// recoveryMiddleware handles panics
func recoveryMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if err := recover(); err != nil {
				slog.Error("Panic recovered",
					"error", err,
					"path", r.URL.Path,
					"request_id", gateway.RequestIDFromContext(r.Context()))
				writeError(w, r, http.StatusInternalServerError, models.ErrorCodeInternalError, "Internal server error")
			}
		}()
		next.ServeHTTP(w, r)
	})
}

// maxBodyMiddleware caps request bodies at limit bytes. A non-positive limit
// disables the cap.
func maxBodyMiddleware(limit int64) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		if limit <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r.Body = http.MaxBytesReader(w, r.Body, limit)
			next.ServeHTTP(w, r)
		})
	}
}
