package storage

import (
	"encoding/json"
	"fmt"
)

// marshalParams converts a params map to JSON bytes.
func marshalParams(params map[string]string) ([]byte, error) {
	if params == nil {
		params = map[string]string{}
	}
	return json.Marshal(params)
}

// unmarshalParams converts JSON bytes to a params map.
func unmarshalParams(data []byte) (map[string]string, error) {
	if len(data) == 0 {
		return map[string]string{}, nil
	}
	var params map[string]string
	if err := json.Unmarshal(data, &params); err != nil {
		return nil, fmt.Errorf("failed to unmarshal params: %w", err)
	}
	if params == nil {
		params = map[string]string{}
	}
	return params, nil
}
