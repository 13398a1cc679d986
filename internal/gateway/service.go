// Package gateway turns an action envelope into exactly one paced upstream
// call and maps the result to the outbound response.
//
// Every request moves through the same sequence: credential check, envelope
// decode, action and parameter resolution, pacing, upstream call, and
// translation. Requests that fail before pacing never reach the upstream.
package gateway

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"time"

	"socialgate/internal/actions"
	"socialgate/internal/models"

	"github.com/google/uuid"
)

const recordTimeout = 5 * time.Second

// Service dispatches envelopes to the upstream provider.
type Service struct {
	registry      *actions.Registry
	pacer         Pacer
	upstream      Upstream
	recorder      CallRecorder
	hasCredential bool
	logger        *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithRecorder sets the call log. Without one, calls are not recorded.
func WithRecorder(recorder CallRecorder) Option {
	return func(s *Service) {
		s.recorder = recorder
	}
}

// WithLogger sets the service logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// NewService creates a dispatcher. hasCredential is fixed for the life of the
// service; when false every dispatch fails before touching the pacer.
func NewService(registry *actions.Registry, pacer Pacer, client Upstream, hasCredential bool, opts ...Option) *Service {
	s := &Service{
		registry:      registry,
		pacer:         pacer,
		upstream:      client,
		hasCredential: hasCredential,
		logger:        slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Registry() *actions.Registry {
	return s.registry
}

func (s *Service) CredentialConfigured() bool {
	return s.hasCredential
}

// Dispatch reads an envelope from body and handles it. The credential is
// checked before the body is read.
func (s *Service) Dispatch(ctx context.Context, body io.Reader) (*Response, error) {
	if !s.hasCredential {
		return nil, NewCredentialNotConfiguredError()
	}

	env, err := models.DecodeEnvelope(body)
	if err != nil {
		if errors.Is(err, models.ErrEmptyBody) {
			return nil, NewMalformedEnvelopeError(MessageEmptyBody, err)
		}
		return nil, NewMalformedEnvelopeError(MessageInvalidJSON, err)
	}

	return s.Handle(ctx, env)
}

// Handle validates env, waits for a pacing slot and performs the upstream
// call.
func (s *Service) Handle(ctx context.Context, env *models.Envelope) (*Response, error) {
	if !s.hasCredential {
		return nil, NewCredentialNotConfiguredError()
	}

	if env.Action == "" {
		return nil, NewMissingActionError()
	}

	resolved, err := s.registry.Resolve(env.Action, env.Params)
	if err != nil {
		return nil, resolveError(err)
	}

	logger := s.logger.With(
		"action", env.Action,
		"request_id", RequestIDFromContext(ctx))
	logger.Info("Executing action", "params", map[string]string(env.Params))

	queued := time.Now()
	if _, err := s.pacer.Acquire(ctx); err != nil {
		logger.Warn("Pacing wait abandoned", "error", err)
		return nil, NewPacingCancelledError(err)
	}
	pacingWait := time.Since(queued)

	dispatched := time.Now()
	outcome, callErr := s.upstream.Get(ctx, resolved.Path, resolved.Query)
	duration := time.Since(dispatched)

	upstreamStatus := 0
	if outcome != nil {
		upstreamStatus = outcome.StatusCode
	}

	resp, translateErr := Translate(outcome, callErr)
	status := http.StatusOK
	if translateErr != nil {
		var gwErr *Error
		if errors.As(translateErr, &gwErr) {
			status = gwErr.StatusCode
		}
	}

	attrs := []any{
		"params", map[string]string(env.Params),
		"upstream_path", resolved.Path,
		"upstream_status", upstreamStatus,
		"status", status,
		"pacing_wait", pacingWait.String(),
		"duration", duration.String(),
	}
	switch {
	case callErr != nil:
		logger.Error("Upstream request failed", append(attrs, "error", callErr)...)
	case upstreamStatus != http.StatusOK:
		logger.Warn("Upstream returned error status", attrs...)
	default:
		logger.Info("Upstream request completed", attrs...)
	}

	s.record(ctx, &models.CallRecord{
		ID:             uuid.NewString(),
		RequestID:      RequestIDFromContext(ctx),
		Action:         env.Action,
		Params:         env.Params,
		UpstreamPath:   resolved.Path,
		UpstreamStatus: upstreamStatus,
		Status:         status,
		Outcome:        models.OutcomeForStatus(upstreamStatus),
		PacingWait:     pacingWait,
		Duration:       duration,
		DispatchedAt:   dispatched.UTC(),
	})

	if translateErr != nil {
		return nil, translateErr
	}
	resp.Action = env.Action
	return resp, nil
}

// record writes to the call log. Failures are logged and otherwise ignored.
func (s *Service) record(ctx context.Context, rec *models.CallRecord) {
	if s.recorder == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), recordTimeout)
	defer cancel()

	if err := s.recorder.RecordCall(ctx, rec); err != nil {
		s.logger.Warn("Failed to record call",
			"action", rec.Action,
			"call_id", rec.ID,
			"error", err)
	}
}

func resolveError(err error) error {
	var unknown *actions.UnknownActionError
	if errors.As(err, &unknown) {
		return NewUnknownActionError(unknown)
	}
	var missing *actions.MissingParameterError
	if errors.As(err, &missing) {
		return NewMissingParameterError(missing)
	}
	return err
}
