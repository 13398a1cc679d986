package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"socialgate/internal/actions"
	"socialgate/internal/gateway"
	"socialgate/internal/models"
	"socialgate/internal/storage"
	"socialgate/internal/version"

	"github.com/gorilla/mux"
)

const (
	serviceName  = "Twitter241 API Webhook"
	serviceUsage = "POST to /twitter with JSON body containing 'action' and 'params' fields"

	defaultCallsLimit = 50
	maxCallsLimit     = 1000

	healthPingTimeout = 2 * time.Second
)

// Endpoints advertised by the discovery responses.
var publicEndpoints = []string{"/twitter", "/health"}

// Handlers contains HTTP handlers for the gateway API
type Handlers struct {
	service gateway.ServiceInterface
	storage storage.Storage
	version version.Info
}

// HandlerOption configures optional Handlers dependencies.
type HandlerOption func(*Handlers)

// WithStorage sets the call log used by health checks and the calls listing.
func WithStorage(store storage.Storage) HandlerOption {
	return func(h *Handlers) {
		h.storage = store
	}
}

// WithVersion sets the build information reported by health and discovery.
func WithVersion(info version.Info) HandlerOption {
	return func(h *Handlers) {
		h.version = info
	}
}

// NewHandlers creates a new handlers instance
func NewHandlers(service gateway.ServiceInterface, opts ...HandlerOption) *Handlers {
	h := &Handlers{
		service: service,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Dispatch handles action envelopes
// POST /twitter
func (h *Handlers) Dispatch(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.Dispatch(r.Context(), r.Body)
	if err != nil {
		h.writeDispatchError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(resp.StatusCode)
	if _, err := w.Write(resp.Body); err != nil {
		slog.Warn("Failed to write upstream payload",
			"action", resp.Action,
			"request_id", gateway.RequestIDFromContext(r.Context()),
			"error", err)
	}
}

func (h *Handlers) writeDispatchError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		h.writeErrorResponse(w, r, http.StatusRequestEntityTooLarge, models.ErrorCodeRequestTooLarge,
			"Request body exceeds "+strconv.FormatInt(maxErr.Limit, 10)+" bytes")
		return
	}

	var gwErr *gateway.Error
	if !errors.As(err, &gwErr) {
		slog.Error("Unexpected dispatch error",
			"request_id", gateway.RequestIDFromContext(r.Context()),
			"error", err)
		h.writeErrorResponse(w, r, http.StatusInternalServerError, models.ErrorCodeInternalError, "Internal server error")
		return
	}

	body := gwErr.Response()
	body.RequestID = gateway.RequestIDFromContext(r.Context())
	h.writeJSONResponse(w, gwErr.StatusCode, body)
}

// HealthCheck handles health check requests
// GET /health
func (h *Handlers) HealthCheck(w http.ResponseWriter, r *http.Request) {
	registry := h.service.Registry()

	response := models.NewHealthCheckResponse(models.StatusHealthy)
	response.Version = h.version.Version
	response.Uptime = h.version.Uptime().String()
	response.AvailableActions = registry.Names()
	response.TotalEndpoints = registry.Len()

	if h.service.CredentialConfigured() {
		response.AddComponent("credential", models.StatusHealthy, "Upstream API key configured")
	} else {
		response.AddComponent("credential", models.StatusUnhealthy, gateway.MessageCredentialNotConfigured)
	}

	if h.storage != nil {
		ctx, cancel := context.WithTimeout(r.Context(), healthPingTimeout)
		defer cancel()
		if err := h.storage.Ping(ctx); err != nil {
			response.AddComponent("storage", models.StatusUnhealthy, err.Error())
		} else {
			response.AddComponent("storage", models.StatusHealthy, "Call log is operational")
		}
	}

	h.writeJSONResponse(w, http.StatusOK, response)
}

// ServiceInfo describes how to use the gateway
// GET /
func (h *Handlers) ServiceInfo(w http.ResponseWriter, r *http.Request) {
	registry := h.service.Registry()

	h.writeJSONResponse(w, http.StatusOK, &models.ServiceInfoResponse{
		Service:               serviceName,
		Version:               h.version.Version,
		Endpoints:             publicEndpoints,
		TotalAvailableActions: registry.Len(),
		AvailableActions:      registry.Names(),
		Usage:                 serviceUsage,
	})
}

// ListActions returns every registered action
// GET /api/v1/actions
func (h *Handlers) ListActions(w http.ResponseWriter, r *http.Request) {
	specs := h.service.Registry().Specs()

	infos := make([]models.ActionInfo, 0, len(specs))
	for _, spec := range specs {
		infos = append(infos, actionInfo(spec))
	}

	h.writeJSONResponse(w, http.StatusOK, &models.ListActionsResponse{
		Actions:    infos,
		TotalCount: len(infos),
	})
}

// GetAction describes a single action
// GET /api/v1/actions/{name}
func (h *Handlers) GetAction(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]

	spec, ok := h.service.Registry().Lookup(name)
	if !ok {
		h.writeErrorResponse(w, r, http.StatusNotFound, models.ErrorCodeNotFound, "Invalid action: "+name)
		return
	}

	h.writeJSONResponse(w, http.StatusOK, actionInfo(spec))
}

func actionInfo(spec *actions.ActionSpec) models.ActionInfo {
	return models.ActionInfo{
		Name:           spec.Name,
		Category:       spec.Category,
		UpstreamPath:   spec.Path,
		RequiredParams: spec.RequiredParams(),
		OptionalParams: spec.OptionalParams(),
		ParamAliases:   spec.ParamAliases(),
		Deprecated:     spec.Deprecated,
	}
}

// ListCalls returns recent call log records
// GET /api/v1/calls?limit=N
func (h *Handlers) ListCalls(w http.ResponseWriter, r *http.Request) {
	if h.storage == nil {
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, models.ErrorCodeStorageUnavailable, "Call log is not configured")
		return
	}

	limit := defaultCallsLimit
	if limitParam := r.URL.Query().Get("limit"); limitParam != "" {
		parsed, err := strconv.Atoi(limitParam)
		if err != nil || parsed <= 0 {
			h.writeErrorResponse(w, r, http.StatusBadRequest, models.ErrorCodeBadRequest, "limit must be a positive integer")
			return
		}
		limit = min(parsed, maxCallsLimit)
	}

	calls, err := h.storage.RecentCalls(r.Context(), limit)
	if err != nil {
		slog.Error("Failed to list calls", "error", err)
		h.writeErrorResponse(w, r, http.StatusServiceUnavailable, models.ErrorCodeStorageUnavailable, "Call log is unavailable")
		return
	}

	outcomes, err := h.storage.OutcomeCounts(r.Context())
	if err != nil {
		slog.Warn("Failed to count call outcomes", "error", err)
	}

	if calls == nil {
		calls = []*models.CallRecord{}
	}

	h.writeJSONResponse(w, http.StatusOK, &models.ListCallsResponse{
		Calls:      calls,
		TotalCount: len(calls),
		Limit:      limit,
		Outcomes:   outcomes,
	})
}

// writeJSONResponse writes a JSON response
func (h *Handlers) writeJSONResponse(w http.ResponseWriter, statusCode int, data interface{}) {
	writeJSON(w, statusCode, data)
}

// writeErrorResponse writes an error response tagged with the request ID
func (h *Handlers) writeErrorResponse(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	writeError(w, r, statusCode, errorCode, message)
}

func writeJSON(w http.ResponseWriter, statusCode int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		// Headers are already written; nothing left to send.
		slog.Error("Error encoding JSON response", "error", err)
	}
}

func writeError(w http.ResponseWriter, r *http.Request, statusCode int, errorCode, message string) {
	errorResp := models.NewErrorResponse(message, errorCode)
	errorResp.RequestID = gateway.RequestIDFromContext(r.Context())
	writeJSON(w, statusCode, errorResp)
}
