package models

import (
	"time"
)

// Call outcomes recorded in the call log.
const (
	OutcomeOK             = "ok"
	OutcomeRateLimited    = "rate_limited"
	OutcomeUnauthorized   = "unauthorized"
	OutcomeUpstreamError  = "upstream_error"
	OutcomeTransportError = "transport_error"
)

// CallRecord is one dispatched upstream call. Records are written after the
// upstream call completes; requests rejected before pacing produce none.
type CallRecord struct {
	ID             string            `json:"id"`
	RequestID      string            `json:"request_id,omitempty"`
	Action         string            `json:"action"`
	Params         map[string]string `json:"params"`
	UpstreamPath   string            `json:"upstream_path"`
	UpstreamStatus int               `json:"upstream_status"`
	Status         int               `json:"status"`
	Outcome        string            `json:"outcome"`
	PacingWait     time.Duration     `json:"pacing_wait_ns"`
	Duration       time.Duration     `json:"duration_ns"`
	DispatchedAt   time.Time         `json:"dispatched_at"`
}

// OutcomeForStatus classifies an upstream status code. A zero status means
// the call never produced an HTTP response.
func OutcomeForStatus(status int) string {
	switch {
	case status == 0:
		return OutcomeTransportError
	case status == 200:
		return OutcomeOK
	case status == 429:
		return OutcomeRateLimited
	case status == 401:
		return OutcomeUnauthorized
	default:
		return OutcomeUpstreamError
	}
}
