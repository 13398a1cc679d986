// Package models - API response types and error handling.
// This file defines the outgoing response structures produced by the gateway.
//
// Response Design Principles:
// - Error bodies always carry a human-readable "error" field
// - Machine-readable codes accompany every gateway-generated error
// - Successful upstream payloads are relayed verbatim and never wrapped
// - Optional fields use omitempty to keep bodies small
package models

import (
	"time"
)

// ErrorResponse is the body returned for every gateway-generated failure.
//
// Error Categories:
// - Envelope errors: malformed JSON, missing action
// - Validation errors: unknown action (carries AvailableActions), missing parameter
// - Upstream errors: rate limited (carries Suggestion and Status), unauthorized, other
// - Internal errors: credential not configured, transport failure
type ErrorResponse struct {
	Error            string   `json:"error"`
	Code             string   `json:"code,omitempty"`
	Suggestion       string   `json:"suggestion,omitempty"`
	Status           string   `json:"status,omitempty"`
	AvailableActions []string `json:"available_actions,omitempty"`
	RequestID        string   `json:"request_id,omitempty"`
}

type HealthCheckResponse struct {
	Status           string                     `json:"status"`
	Timestamp        time.Time                  `json:"timestamp"`
	Version          string                     `json:"version,omitempty"`
	Uptime           string                     `json:"uptime,omitempty"`
	Components       map[string]ComponentHealth `json:"components,omitempty"`
	AvailableActions []string                   `json:"available_actions"`
	TotalEndpoints   int                        `json:"total_endpoints"`
}

type ComponentHealth struct {
	Status    string    `json:"status"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ServiceInfoResponse is served from the root path so callers can discover
// how to use the gateway without reading documentation.
type ServiceInfoResponse struct {
	Service               string   `json:"service"`
	Version               string   `json:"version,omitempty"`
	Endpoints             []string `json:"endpoints"`
	TotalAvailableActions int      `json:"total_available_actions"`
	AvailableActions      []string `json:"available_actions"`
	Usage                 string   `json:"usage"`
}

// ActionInfo describes one registered action for discovery clients.
type ActionInfo struct {
	Name           string            `json:"name"`
	Category       string            `json:"category"`
	UpstreamPath   string            `json:"upstream_path"`
	RequiredParams []string          `json:"required_params"`
	OptionalParams map[string]string `json:"optional_params"`
	ParamAliases   map[string]string `json:"param_aliases"`
	Deprecated     bool              `json:"deprecated,omitempty"`
}

type ListActionsResponse struct {
	Actions    []ActionInfo `json:"actions"`
	TotalCount int          `json:"total_count"`
}

// ListCallsResponse lists recent call log records, newest first, with the
// per-outcome totals reported by the backend.
type ListCallsResponse struct {
	Calls      []*CallRecord    `json:"calls"`
	TotalCount int              `json:"total_count"`
	Limit      int              `json:"limit"`
	Outcomes   map[string]int64 `json:"outcomes,omitempty"`
}

// Health Status Constants
const (
	StatusHealthy   = "healthy"
	StatusUnhealthy = "unhealthy"
	StatusDegraded  = "degraded"
)

// Error codes carried in ErrorResponse.Code.
const (
	ErrorCodeMalformedEnvelope       = "MALFORMED_ENVELOPE"        // 400
	ErrorCodeMissingAction           = "MISSING_ACTION"            // 400
	ErrorCodeUnknownAction           = "UNKNOWN_ACTION"            // 400
	ErrorCodeMissingParameter        = "MISSING_PARAMETER"         // 400
	ErrorCodeCredentialNotConfigured = "CREDENTIAL_NOT_CONFIGURED" // 500
	ErrorCodeUpstreamRateLimited     = "UPSTREAM_RATE_LIMITED"     // 429
	ErrorCodeUpstreamUnauthorized    = "UPSTREAM_UNAUTHORIZED"     // 401
	ErrorCodeUpstreamError           = "UPSTREAM_ERROR"            // passthrough
	ErrorCodeTransport               = "TRANSPORT_ERROR"           // 500
	ErrorCodePacingCancelled         = "PACING_CANCELLED"          // 503
	ErrorCodeNotFound                = "NOT_FOUND"                 // 404
	ErrorCodeBadRequest              = "BAD_REQUEST"               // 400
	ErrorCodeMethodNotAllowed        = "METHOD_NOT_ALLOWED"        // 405
	ErrorCodeRequestTooLarge         = "REQUEST_TOO_LARGE"         // 413
	ErrorCodeStorageUnavailable      = "STORAGE_UNAVAILABLE"       // 503
	ErrorCodeInternalError           = "INTERNAL_ERROR"            // 500
)

// RateLimitedStatus is the value of ErrorResponse.Status when the upstream
// answers 429.
const RateLimitedStatus = "rate_limited"

func NewErrorResponse(message string, code string) *ErrorResponse {
	return &ErrorResponse{
		Error: message,
		Code:  code,
	}
}

func NewHealthCheckResponse(status string) *HealthCheckResponse {
	return &HealthCheckResponse{
		Status:     status,
		Timestamp:  time.Now(),
		Components: make(map[string]ComponentHealth),
	}
}

// AddComponent records a component's health. An unhealthy component degrades
// the overall status but never marks it unhealthy on its own.
func (h *HealthCheckResponse) AddComponent(name, status, message string) {
	h.Components[name] = ComponentHealth{
		Status:    status,
		Message:   message,
		Timestamp: time.Now(),
	}
	if status != StatusHealthy && h.Status == StatusHealthy {
		h.Status = StatusDegraded
	}
}
