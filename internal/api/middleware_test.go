package api

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"socialgate/internal/gateway"
	"socialgate/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name     string
		incoming string
		echoed   bool
	}{
		{"echoes caller ID", "caller-supplied-id", true},
		{"generates when missing", "", false},
		{"replaces oversized ID", strings.Repeat("x", maxRequestIDLength+1), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen string
			handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				seen = gateway.RequestIDFromContext(r.Context())
				w.WriteHeader(http.StatusOK)
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.incoming != "" {
				req.Header.Set(HeaderRequestID, tt.incoming)
			}
			rr := httptest.NewRecorder()
			requestIDMiddleware(handler).ServeHTTP(rr, req)

			assert.Equal(t, seen, rr.Header().Get(HeaderRequestID))
			if tt.echoed {
				assert.Equal(t, tt.incoming, seen)
			} else {
				_, err := uuid.Parse(seen)
				assert.NoError(t, err, "generated ID should be a UUID")
			}
		})
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler exploded")
	})

	req := httptest.NewRequest(http.MethodPost, "/twitter", nil)
	req = req.WithContext(gateway.WithRequestID(req.Context(), "req-9"))
	rr := httptest.NewRecorder()

	require.NotPanics(t, func() {
		recoveryMiddleware(handler).ServeHTTP(rr, req)
	})

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeError(t, rr)
	assert.Equal(t, models.ErrorCodeInternalError, body.Code)
	assert.Equal(t, "req-9", body.RequestID)
}

func TestLoggingMiddleware_PassesThroughStatus(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	loggingMiddleware(handler).ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
}

func TestMaxBodyMiddleware(t *testing.T) {
	var readErr error
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, readErr = io.ReadAll(r.Body)
		w.WriteHeader(http.StatusOK)
	})

	t.Run("within limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/twitter", strings.NewReader("small"))
		maxBodyMiddleware(16)(handler).ServeHTTP(httptest.NewRecorder(), req)
		assert.NoError(t, readErr)
	})

	t.Run("over limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/twitter", strings.NewReader(strings.Repeat("a", 32)))
		maxBodyMiddleware(16)(handler).ServeHTTP(httptest.NewRecorder(), req)
		var maxErr *http.MaxBytesError
		assert.ErrorAs(t, readErr, &maxErr)
	})

	t.Run("disabled", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodPost, "/twitter", strings.NewReader(strings.Repeat("a", 32)))
		maxBodyMiddleware(0)(handler).ServeHTTP(httptest.NewRecorder(), req)
		assert.NoError(t, readErr)
	})
}

func TestSetupRoutes_WithOTelMiddleware(t *testing.T) {
	router := SetupRoutes(NewHandlers(newMockService()), models.NewDefaultConfig(), WithOTelMiddleware("test"))

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/v1/actions", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.NotEmpty(t, rr.Header().Get(HeaderRequestID))
}
