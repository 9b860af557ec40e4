package validation

import (
	"sort"
	"strings"
)

// FieldErrors maps a field name to a single message. Writing a field twice
// keeps the last message.
type FieldErrors map[string]string

func (f FieldErrors) Set(field, message string) {
	f[field] = message
}

// Merge copies other into f, overwriting fields present in both.
func (f FieldErrors) Merge(other FieldErrors) {
	for k, v := range other {
		f[k] = v
	}
}

// Err returns nil when there are no violations.
func (f FieldErrors) Err() error {
	if len(f) == 0 {
		return nil
	}
	return &ValidationError{Fields: f}
}

// ValidationError carries every violated field of a rejected write.
type ValidationError struct {
	Fields FieldErrors
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e.Fields[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}
