package gateway

import (
	"context"
	"io"
	"time"

	"socialgate/internal/actions"
	"socialgate/internal/models"
	"socialgate/internal/upstream"
)

// Pacer grants outbound dispatch slots.
type Pacer interface {
	Acquire(ctx context.Context) (time.Time, error)
}

// Upstream performs one outbound call.
type Upstream interface {
	Get(ctx context.Context, path string, query []actions.QueryParam) (*upstream.Outcome, error)
}

// CallRecorder persists a record of each dispatched call.
type CallRecorder interface {
	RecordCall(ctx context.Context, record *models.CallRecord) error
}

// ServiceInterface defines the dispatch operations used by the HTTP layer
type ServiceInterface interface {
	// Dispatch decodes an envelope from body and handles it
	Dispatch(ctx context.Context, body io.Reader) (*Response, error)

	// Handle validates, paces and forwards an already decoded envelope
	Handle(ctx context.Context, env *models.Envelope) (*Response, error)

	// Registry returns the action table
	Registry() *actions.Registry

	// CredentialConfigured reports whether the upstream API key is set
	CredentialConfigured() bool
}

// Ensure Service implements ServiceInterface
var _ ServiceInterface = (*Service)(nil)
