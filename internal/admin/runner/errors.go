package runner

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrUnknownAction is returned when the named action is not registered
	// on the descriptor.
	ErrUnknownAction = errors.New("unknown action")
	// ErrUnknownTask is returned when no task exists for a handle.
	ErrUnknownTask = errors.New("unknown task handle")
)

// ValidationError carries a field-keyed error map for bad action input:
// unknown or missing parameters, a disallowed scope kind, a missing
// confirmation on a destructive action.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, e.Fields[k]))
	}

	return "validation failed: " + strings.Join(parts, "; ")
}

func newValidationError(field, message string) *ValidationError {
	return &ValidationError{Fields: map[string]string{field: message}}
}
