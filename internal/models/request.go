// Package models - inbound request types.
//
// The gateway accepts a single envelope shape: {"action": "...", "params": {...}}.
// Parameter values are strings on the wire to the upstream, so scalar JSON
// values are normalized to their string form while decoding.
package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
)

// Envelope is the inbound dispatch request.
type Envelope struct {
	Action string `json:"action"`
	Params Params `json:"params"`
}

// Params maps inbound parameter names to string values.
type Params map[string]string

// UnmarshalJSON accepts strings, numbers and booleans. Null values are
// dropped so they behave as absent; objects and arrays are rejected.
func (p *Params) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*p = Params{}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("params must be an object: %w", err)
	}

	out := make(Params, len(raw))
	for name, value := range raw {
		s, present, err := scalarString(value)
		if err != nil {
			return fmt.Errorf("param %q: %w", name, err)
		}
		if present {
			out[name] = s
		}
	}
	*p = out
	return nil
}

func scalarString(value json.RawMessage) (string, bool, error) {
	dec := json.NewDecoder(bytes.NewReader(value))
	dec.UseNumber()
	var v interface{}
	if err := dec.Decode(&v); err != nil {
		return "", false, err
	}
	switch t := v.(type) {
	case nil:
		return "", false, nil
	case string:
		return t, true, nil
	case json.Number:
		return t.String(), true, nil
	case bool:
		return strconv.FormatBool(t), true, nil
	default:
		return "", false, errors.New("value must be a string, number or boolean")
	}
}

// ErrEmptyBody is returned by DecodeEnvelope when the body holds no JSON value.
var ErrEmptyBody = errors.New("request body must be valid JSON")

// DecodeEnvelope reads a single JSON envelope from r. A JSON null or empty
// body yields ErrEmptyBody; trailing data after the object is rejected.
func DecodeEnvelope(r io.Reader) (*Envelope, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return nil, ErrEmptyBody
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	var env Envelope
	if err := dec.Decode(&env); err != nil {
		return nil, fmt.Errorf("invalid JSON in request body: %w", err)
	}
	if dec.More() {
		return nil, errors.New("invalid JSON in request body: trailing data")
	}

	if env.Params == nil {
		env.Params = Params{}
	}
	return &env, nil
}
