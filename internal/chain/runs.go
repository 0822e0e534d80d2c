package chain

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// ErrRunText is returned when a rich-text fragment is not an object or its
// "text" is not a string. It is never treated as a missing optional field.
// A fragment without "text" at all is reported as ErrAbsent instead.
var ErrRunText = errors.New("chain: run fragment without text")

// JoinRuns concatenates the "text" of each fragment with sep between them and
// returns the NFKD form of the result.
func JoinRuns(runs []any, sep string) (string, error) {
	parts := make([]string, 0, len(runs))
	for i, run := range runs {
		text, err := RunText(run)
		if err != nil {
			return "", fmt.Errorf("run %d: %w", i, err)
		}
		parts = append(parts, text)
	}

	return norm.NFKD.String(strings.Join(parts, sep)), nil
}

// RunText returns the raw, unnormalized text of a single fragment.
func RunText(run any) (string, error) {
	obj, ok := run.(map[string]any)
	if !ok {
		return "", fmt.Errorf("%w: fragment is %T", ErrRunText, run)
	}
	raw, ok := obj["text"]
	if !ok {
		return "", fmt.Errorf("%w: fragment has no text", ErrAbsent)
	}
	text, ok := raw.(string)
	if !ok {
		return "", fmt.Errorf("%w: text is %T", ErrRunText, raw)
	}
	return text, nil
}
