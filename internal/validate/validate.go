// Package validate collects per-field form validation messages.
package validate

import (
	"errors"
	"fmt"
	"net/mail"
	"sort"
	"strings"
)

// Errors maps field names to a human readable problem.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// Add records the first problem seen for a field.
func (e Errors) Add(field, msg string) {
	if _, exists := e[field]; !exists {
		e[field] = msg
	}
}

// Err returns nil when no problems were recorded.
func (e Errors) Err() error {
	if len(e) == 0 {
		return nil
	}
	return e
}

// As unwraps a validation error from err.
func As(err error) (Errors, bool) {
	var ve Errors
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

func Required(e Errors, field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "is required")
	}
}

func MaxLen(e Errors, field, value string, max int) {
	if len([]rune(value)) > max {
		e.Add(field, fmt.Sprintf("must be at most %d characters", max))
	}
}

func Email(e Errors, field, value string) {
	if strings.TrimSpace(value) == "" {
		e.Add(field, "is required")
		return
	}
	if _, err := mail.ParseAddress(value); err != nil {
		e.Add(field, "must be a valid email address")
	}
}

func IntRange(e Errors, field string, v, min, max int) {
	if v < min || v > max {
		e.Add(field, fmt.Sprintf("must be between %d and %d", min, max))
	}
}

// OptionalIntRange validates v only when set.
func OptionalIntRange(e Errors, field string, v *int, min, max int) {
	if v != nil {
		IntRange(e, field, *v, min, max)
	}
}

// OptionalFloatRange validates v only when set.
func OptionalFloatRange(e Errors, field string, v *float64, min, max float64) {
	if v != nil && (*v < min || *v > max) {
		e.Add(field, fmt.Sprintf("must be between %g and %g", min, max))
	}
}

func NonNegative(e Errors, field string, v float64) {
	if v < 0 {
		e.Add(field, "must not be negative")
	}
}

func OneOf(e Errors, field, value string, allowed ...string) {
	for _, a := range allowed {
		if value == a {
			return
		}
	}
	e.Add(field, "must be one of "+strings.Join(allowed, ", "))
}
