// Package chain walks untyped JSON trees along a fixed path of keys and
// indices, tolerating the single-element wrappers the music API puts around
// almost every value.
package chain

import (
	"errors"
	"fmt"
)

// RunsKey is the rich-text sentinel. A chain ending in it yields joined text.
const RunsKey = "runs"

var (
	// ErrAbsent is returned when a key is missing or an index is out of range.
	ErrAbsent = errors.New("chain: step not found")

	// ErrMalformed is returned when a step cannot be applied to the value
	// found at that depth (e.g. a key into an array or into a scalar).
	ErrMalformed = errors.New("chain: unexpected value type")
)

// Step is either a string (object key) or an int (array index).
type Step = any

// PathError records the step at which a traversal failed.
type PathError struct {
	Chain []Step
	Depth int
	Err   error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%v at step %d (%v) of %v", e.Err, e.Depth, e.Chain[e.Depth], e.Chain)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// Outcome tags the result of a Lookup.
type Outcome int

const (
	Found Outcome = iota
	Absent
	Malformed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case Absent:
		return "absent"
	case Malformed:
		return "malformed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// Result is the tagged outcome of a Lookup. Err is set unless Outcome is Found.
type Result struct {
	Value   any
	Outcome Outcome
	Err     error
}

// OK reports whether the chain resolved.
func (r Result) OK() bool {
	return r.Outcome == Found
}

// Lookup is Extract with the outcome tagged instead of returned as an error.
// Errors that are neither absent nor malformed (a broken run fragment) are
// reported as Malformed with Err preserved, so callers can still tell them
// apart with errors.Is.
func Lookup(value any, steps ...Step) Result {
	v, err := Extract(value, steps...)
	switch {
	case err == nil:
		return Result{Value: v, Outcome: Found}
	case errors.Is(err, ErrAbsent):
		return Result{Outcome: Absent, Err: err}
	default:
		return Result{Outcome: Malformed, Err: err}
	}
}

// Extract follows steps through value. Before each step, singleton arrays are
// unwrapped, and so are singleton objects that do not already hold the step
// key. With no steps it only unwraps. If the last step is "runs" and lands on
// an array, the fragments are joined into a string.
func Extract(value any, steps ...Step) (any, error) {
	if len(steps) == 0 {
		return Unwrap(value), nil
	}

	current := value
	for depth, step := range steps {
		current = unwrapFor(current, step)

		next, err := index(current, step)
		if err != nil {
			return nil, &PathError{Chain: steps, Depth: depth, Err: err}
		}
		current = next
	}

	if last, ok := steps[len(steps)-1].(string); ok && last == RunsKey {
		if runs, ok := current.([]any); ok {
			return JoinRuns(runs, "")
		}
	}

	return current, nil
}

// Unwrap strips singleton arrays and single-key objects until it reaches a
// container of any other size or a scalar.
func Unwrap(value any) any {
	for {
		switch v := value.(type) {
		case []any:
			if len(v) != 1 {
				return value
			}
			value = v[0]
		case map[string]any:
			if len(v) != 1 {
				return value
			}
			for _, inner := range v {
				value = inner
			}
		default:
			return value
		}
	}
}

// unwrapFor unwraps singletons ahead of step, stopping at an object that
// already contains the step key.
func unwrapFor(value any, step Step) any {
	for {
		switch v := value.(type) {
		case []any:
			if len(v) != 1 {
				return value
			}
			value = v[0]
		case map[string]any:
			if len(v) != 1 {
				return value
			}
			if key, ok := step.(string); ok {
				if _, has := v[key]; has {
					return value
				}
			}
			for _, inner := range v {
				value = inner
			}
		default:
			return value
		}
	}
}

func index(value any, step Step) (any, error) {
	switch s := step.(type) {
	case string:
		obj, ok := value.(map[string]any)
		if !ok {
			return nil, fmt.Errorf("%w: key %q into %T", ErrMalformed, s, value)
		}
		v, ok := obj[s]
		if !ok {
			return nil, fmt.Errorf("%w: key %q", ErrAbsent, s)
		}
		return v, nil
	case int:
		arr, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("%w: index %d into %T", ErrMalformed, s, value)
		}
		if s < 0 || s >= len(arr) {
			return nil, fmt.Errorf("%w: index %d of %d", ErrAbsent, s, len(arr))
		}
		return arr[s], nil
	default:
		return nil, fmt.Errorf("%w: step of type %T", ErrMalformed, step)
	}
}
