package gateway

import (
	"net/http"

	"socialgate/internal/upstream"
)

// Response is a successful dispatch. Body is the upstream payload, unmodified.
type Response struct {
	Action      string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Translate maps an upstream result to the gateway response. Anything but a
// 200 becomes an *Error.
func Translate(outcome *upstream.Outcome, err error) (*Response, error) {
	if err != nil {
		return nil, NewTransportError(err)
	}

	switch outcome.StatusCode {
	case http.StatusOK:
		contentType := outcome.Header.Get("Content-Type")
		if contentType == "" {
			contentType = "application/json"
		}
		return &Response{
			StatusCode:  http.StatusOK,
			ContentType: contentType,
			Body:        outcome.Body,
		}, nil
	case http.StatusTooManyRequests:
		return nil, NewRateLimitedError()
	case http.StatusUnauthorized:
		return nil, NewUnauthorizedError()
	default:
		return nil, NewUpstreamStatusError(outcome.StatusCode)
	}
}
