package gateway

import (
	"fmt"
	"net/http"

	"socialgate/internal/actions"
	"socialgate/internal/models"
)

// ErrorKind classifies gateway failures.
type ErrorKind string

const (
	KindMalformedEnvelope       ErrorKind = "malformed_envelope"
	KindMissingAction           ErrorKind = "missing_action"
	KindUnknownAction           ErrorKind = "unknown_action"
	KindMissingParameter        ErrorKind = "missing_parameter"
	KindCredentialNotConfigured ErrorKind = "credential_not_configured"
	KindUpstreamRateLimited     ErrorKind = "upstream_rate_limited"
	KindUpstreamUnauthorized    ErrorKind = "upstream_unauthorized"
	KindUpstreamOther           ErrorKind = "upstream_other"
	KindTransport               ErrorKind = "transport"
	KindPacingCancelled         ErrorKind = "pacing_cancelled"
)

// Fixed messages returned to callers.
const (
	MessageCredentialNotConfigured = "RAPIDAPI_KEY environment variable not set"
	MessageInvalidJSON             = "Invalid JSON in request body"
	MessageEmptyBody               = "Request body must be valid JSON"
	MessageMissingAction           = "Missing required field: action"
	MessageRateLimited             = "Rate limit exceeded. Twitter API calls are limited on the BASIC plan."
	SuggestionRateLimited          = "Please wait a moment and try again, or consider upgrading your RapidAPI plan."
	MessageUnauthorized            = "Invalid API key or authentication failed."
	MessagePacingCancelled         = "Request cancelled while waiting for an upstream slot"
)

// Error is a gateway failure with its HTTP mapping.
type Error struct {
	Kind             ErrorKind
	Code             string
	Message          string
	StatusCode       int
	Suggestion       string
	Status           string
	AvailableActions []string
	Err              error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Response renders the error as a response body.
func (e *Error) Response() *models.ErrorResponse {
	resp := models.NewErrorResponse(e.Message, e.Code)
	resp.Suggestion = e.Suggestion
	resp.Status = e.Status
	resp.AvailableActions = e.AvailableActions
	return resp
}

// Error constructors

func NewCredentialNotConfiguredError() *Error {
	return &Error{
		Kind:       KindCredentialNotConfigured,
		Code:       models.ErrorCodeCredentialNotConfigured,
		Message:    MessageCredentialNotConfigured,
		StatusCode: http.StatusInternalServerError,
	}
}

func NewMalformedEnvelopeError(message string, err error) *Error {
	return &Error{
		Kind:       KindMalformedEnvelope,
		Code:       models.ErrorCodeMalformedEnvelope,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

func NewMissingActionError() *Error {
	return &Error{
		Kind:       KindMissingAction,
		Code:       models.ErrorCodeMissingAction,
		Message:    MessageMissingAction,
		StatusCode: http.StatusBadRequest,
	}
}

func NewUnknownActionError(err *actions.UnknownActionError) *Error {
	return &Error{
		Kind:             KindUnknownAction,
		Code:             models.ErrorCodeUnknownAction,
		Message:          err.Error(),
		StatusCode:       http.StatusBadRequest,
		AvailableActions: err.Available,
		Err:              err,
	}
}

func NewMissingParameterError(err *actions.MissingParameterError) *Error {
	return &Error{
		Kind:       KindMissingParameter,
		Code:       models.ErrorCodeMissingParameter,
		Message:    err.Error(),
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

func NewRateLimitedError() *Error {
	return &Error{
		Kind:       KindUpstreamRateLimited,
		Code:       models.ErrorCodeUpstreamRateLimited,
		Message:    MessageRateLimited,
		StatusCode: http.StatusTooManyRequests,
		Suggestion: SuggestionRateLimited,
		Status:     models.RateLimitedStatus,
	}
}

func NewUnauthorizedError() *Error {
	return &Error{
		Kind:       KindUpstreamUnauthorized,
		Code:       models.ErrorCodeUpstreamUnauthorized,
		Message:    MessageUnauthorized,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewUpstreamStatusError passes the upstream status through. Statuses that
// cannot carry a body are reported as 502.
func NewUpstreamStatusError(status int) *Error {
	outbound := status
	if !bodyAllowed(status) {
		outbound = http.StatusBadGateway
	}
	return &Error{
		Kind:       KindUpstreamOther,
		Code:       models.ErrorCodeUpstreamError,
		Message:    fmt.Sprintf("API request failed with status %d", status),
		StatusCode: outbound,
	}
}

func NewTransportError(err error) *Error {
	return &Error{
		Kind:       KindTransport,
		Code:       models.ErrorCodeTransport,
		Message:    fmt.Sprintf("API request failed with status %d", http.StatusInternalServerError),
		StatusCode: http.StatusInternalServerError,
		Err:        err,
	}
}

func NewPacingCancelledError(err error) *Error {
	return &Error{
		Kind:       KindPacingCancelled,
		Code:       models.ErrorCodePacingCancelled,
		Message:    MessagePacingCancelled,
		StatusCode: http.StatusServiceUnavailable,
		Err:        err,
	}
}

func bodyAllowed(status int) bool {
	switch {
	case status < 200 || status > 599:
		return false
	case status == http.StatusNoContent, status == http.StatusNotModified:
		return false
	}
	return true
}
