package chain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinRuns(t *testing.T) {
	t.Run("separator", func(t *testing.T) {
		got, err := JoinRuns([]any{
			map[string]any{"text": "Hello"},
			map[string]any{"text": "World"},
		}, " ")
		require.NoError(t, err)
		assert.Equal(t, "Hello World", got)
	})

	t.Run("empty", func(t *testing.T) {
		got, err := JoinRuns(nil, ", ")
		require.NoError(t, err)
		assert.Equal(t, "", got)
	})

	t.Run("full width is folded", func(t *testing.T) {
		got, err := JoinRuns([]any{map[string]any{"text": "ＡＢＣ１２３"}}, "")
		require.NoError(t, err)
		assert.Equal(t, "ABC123", got)
	})

	t.Run("precomposed characters are decomposed", func(t *testing.T) {
		got, err := JoinRuns([]any{map[string]any{"text": "Beyonc\u00e9"}}, "")
		require.NoError(t, err)
		assert.Equal(t, "Beyonce\u0301", got)
	})

	t.Run("extra fields are ignored", func(t *testing.T) {
		got, err := JoinRuns([]any{
			map[string]any{"text": "A", "navigationEndpoint": map[string]any{}},
			map[string]any{"text": " & "},
			map[string]any{"text": "B"},
		}, "")
		require.NoError(t, err)
		assert.Equal(t, "A & B", got)
	})
}

func TestJoinRunsErrors(t *testing.T) {
	tests := []struct {
		name string
		runs []any
	}{
		{"text not a string", []any{map[string]any{"text": 12.0}}},
		{"fragment not an object", []any{"bare"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := JoinRuns(tt.runs, "")
			assert.ErrorIs(t, err, ErrRunText)
		})
	}
}

func TestJoinRunsMissingTextIsAbsent(t *testing.T) {
	_, err := JoinRuns([]any{map[string]any{"text": "a"}, map[string]any{"bold": true}}, "")
	assert.ErrorIs(t, err, ErrAbsent)
	assert.NotErrorIs(t, err, ErrRunText)
}

func TestRunText(t *testing.T) {
	text, err := RunText(map[string]any{"text": "Ｖａｒｉｏｕｓ"})
	require.NoError(t, err)
	assert.Equal(t, "Ｖａｒｉｏｕｓ", text)
}
