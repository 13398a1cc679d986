package storage

import (
	"reflect"
	"testing"
)

func TestMarshalUnmarshalParams(t *testing.T) {
	tests := []struct {
		name     string
		input    map[string]string
		expected map[string]string
	}{
		{name: "several params", input: map[string]string{"user": "44196397", "count": "20"}, expected: map[string]string{"user": "44196397", "count": "20"}},
		{name: "empty map", input: map[string]string{}, expected: map[string]string{}},
		{name: "nil map", input: nil, expected: map[string]string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := marshalParams(tt.input)
			if err != nil {
				t.Fatalf("marshalParams error: %v", err)
			}

			result, err := unmarshalParams(data)
			if err != nil {
				t.Fatalf("unmarshalParams error: %v", err)
			}

			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}

func TestUnmarshalParamsEdgeCases(t *testing.T) {
	tests := []struct {
		name      string
		input     []byte
		expected  map[string]string
		expectErr bool
	}{
		{name: "empty bytes", input: nil, expected: map[string]string{}},
		{name: "json null", input: []byte("null"), expected: map[string]string{}},
		{name: "invalid json", input: []byte("{not json"), expectErr: true},
		{name: "non-string values", input: []byte(`{"count": 20}`), expectErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := unmarshalParams(tt.input)
			if tt.expectErr {
				if err == nil {
					t.Error("expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !reflect.DeepEqual(result, tt.expected) {
				t.Errorf("expected %v, got %v", tt.expected, result)
			}
		})
	}
}
