package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateParameters(t *testing.T) {
	schema := map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title":   map[string]any{"type": "string"},
			"limit":   map[string]any{"type": "integer"},
			"score":   map[string]any{"type": "number"},
			"dry_run": map[string]any{"type": "boolean"},
			"tags":    map[string]any{"type": "array"},
			"filter":  map[string]any{"type": "object"},
		},
		"required": []string{"title"},
	}

	tests := []struct {
		name    string
		params  map[string]any
		wantErr bool
	}{
		{
			name:   "all fields valid",
			params: map[string]any{"title": "q3 report", "limit": 5, "score": 0.5, "dry_run": true, "tags": []any{"a"}, "filter": map[string]any{"k": "v"}},
		},
		{
			name:    "missing required",
			params:  map[string]any{"limit": 5},
			wantErr: true,
		},
		{
			name:    "wrong string type",
			params:  map[string]any{"title": 7},
			wantErr: true,
		},
		{
			name:   "json numbers accepted as integers",
			params: map[string]any{"title": "x", "limit": float64(3)},
		},
		{
			name:    "fractional number rejected as integer",
			params:  map[string]any{"title": "x", "limit": 3.5},
			wantErr: true,
		},
		{
			name:   "nil values pass type checks",
			params: map[string]any{"title": "x", "filter": nil},
		},
		{
			name:   "undeclared fields allowed",
			params: map[string]any{"title": "x", "extra": struct{}{}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateParameters(tt.params, schema)
			if tt.wantErr {
				var vErr *ValidationError
				require.ErrorAs(t, err, &vErr)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateParameters_RequiredFromJSON(t *testing.T) {
	// Schemas round-tripped through JSON carry required as []any.
	schema := map[string]any{
		"type":       "object",
		"properties": map[string]any{"request": map[string]any{"type": "string"}},
		"required":   []any{"request"},
	}

	err := ValidateParameters(map[string]any{}, schema)
	require.Error(t, err)

	assert.NoError(t, ValidateParameters(map[string]any{"request": "hello"}, schema))
}

func TestValidationError_Error(t *testing.T) {
	err := &ValidationError{Field: "title", Message: "required field is missing"}
	assert.Equal(t, "validation error for field 'title': required field is missing", err.Error())
}
