package chain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decode(t *testing.T, raw string) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal([]byte(raw), &v))
	return v
}

func TestExtract(t *testing.T) {
	tests := []struct {
		name  string
		input string
		steps []Step
		want  any
	}{
		{
			name:  "scalar with empty chain",
			input: `"plain"`,
			want:  "plain",
		},
		{
			name:  "empty chain unwraps nested singletons",
			input: `[{"only": [[{"a": 1, "b": 2}]]}]`,
			want:  map[string]any{"a": float64(1), "b": float64(2)},
		},
		{
			name:  "empty chain stops at multi-element array",
			input: `[[1, 2]]`,
			want:  []any{float64(1), float64(2)},
		},
		{
			name:  "singleton arrays unwrapped before key",
			input: `[[[{"a": 1}]]]`,
			steps: []Step{"a"},
			want:  float64(1),
		},
		{
			name:  "non-singleton object indexed directly",
			input: `{"x": {"a": 1}, "a": 2}`,
			steps: []Step{"a"},
			want:  float64(2),
		},
		{
			name:  "singleton object holding the key is not unwrapped",
			input: `{"a": {"a": 1}}`,
			steps: []Step{"a"},
			want:  map[string]any{"a": float64(1)},
		},
		{
			name:  "singleton wrapper object is skipped",
			input: `{"wrapper": {"inner": {"title": "t"}}}`,
			steps: []Step{"title"},
			want:  "t",
		},
		{
			name:  "positional index",
			input: `{"items": [{"id": "a"}, {"id": "b"}]}`,
			steps: []Step{"items", 1, "id"},
			want:  "b",
		},
		{
			name:  "runs are joined",
			input: `{"title": {"runs": [{"text": "Hello"}, {"text": " World"}]}}`,
			steps: []Step{"title", RunsKey},
			want:  "Hello World",
		},
		{
			name:  "runs that are not an array are returned as is",
			input: `{"title": {"runs": "raw"}}`,
			steps: []Step{"title", RunsKey},
			want:  "raw",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract(decode(t, tt.input), tt.steps...)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestExtractErrors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		steps []Step
		want  error
		depth int
	}{
		{
			name:  "missing key",
			input: `{"a": 1, "b": 2}`,
			steps: []Step{"c"},
			want:  ErrAbsent,
		},
		{
			name:  "index out of range",
			input: `{"items": [1, 2], "other": 0}`,
			steps: []Step{"items", 5},
			want:  ErrAbsent,
			depth: 1,
		},
		{
			name:  "key into scalar",
			input: `{"a": "text", "b": 2}`,
			steps: []Step{"a", "b"},
			want:  ErrMalformed,
			depth: 1,
		},
		{
			name:  "index into object",
			input: `{"a": {"x": 1, "y": 2}, "b": 2}`,
			steps: []Step{"a", 0},
			want:  ErrMalformed,
			depth: 1,
		},
		{
			name:  "run without text",
			input: `{"title": {"runs": [{"text": "ok"}, {"bold": true}]}}`,
			steps: []Step{"title", RunsKey},
			want:  ErrAbsent,
			depth: -1,
		},
		{
			name:  "run with non-string text",
			input: `{"title": {"runs": [{"text": "ok"}, {"text": 7}]}}`,
			steps: []Step{"title", RunsKey},
			want:  ErrRunText,
			depth: -1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Extract(decode(t, tt.input), tt.steps...)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			if tt.depth >= 0 {
				var pathErr *PathError
				require.True(t, errors.As(err, &pathErr))
				assert.Equal(t, tt.depth, pathErr.Depth)
			}
		})
	}
}

func TestLookup(t *testing.T) {
	value := decode(t, `{"title": {"runs": [{"text": "x"}]}, "count": 3, "broken": {"runs": [{}]}, "typed": {"runs": [{"text": 1}]}}`)

	res := Lookup(value, "title", RunsKey)
	assert.Equal(t, Found, res.Outcome)
	assert.True(t, res.OK())
	assert.Equal(t, "x", res.Value)
	assert.NoError(t, res.Err)

	res = Lookup(value, "subtitle", RunsKey)
	assert.Equal(t, Absent, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrAbsent)

	res = Lookup(value, "count", "value")
	assert.Equal(t, Malformed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrMalformed)

	res = Lookup(value, "broken", RunsKey)
	assert.Equal(t, Absent, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrAbsent)

	res = Lookup(value, "typed", RunsKey)
	assert.Equal(t, Malformed, res.Outcome)
	assert.ErrorIs(t, res.Err, ErrRunText)
}

func TestOutcomeString(t *testing.T) {
	assert.Equal(t, "found", Found.String())
	assert.Equal(t, "absent", Absent.String())
	assert.Equal(t, "malformed", Malformed.String())
}
