package stoma

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ConfigurationError reports a malformed marker or route declaration:
// a literal default on a marker kind that forbids it, an unknown parameter
// kind in a struct tag, an unresolvable server at send time, and so on.
// It is always a programmer error and is never retried.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "stoma: " + e.Message
}

// configErrorf creates a new ConfigurationError with a formatted message.
func configErrorf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Message: fmt.Sprintf(format, args...)}
}

// Violation describes a single failed constraint on a single field.
type Violation struct {
	Field      string
	Constraint string
	Value      any
}

// ValidationError reports that an endpoint record violates its declared
// constraints. It carries one Violation per failed constraint.
type ValidationError struct {
	Message    string
	Violations []Violation
}

func (e *ValidationError) Error() string {
	return "stoma: validation failed: " + e.Message
}

// RoutingError reports a mismatch between a route's path template and the
// path bucket of a classified endpoint record: a placeholder with no path
// entry, or a path entry with no placeholder.
type RoutingError struct {
	Path      string
	Missing   []string // placeholders with no matching path entry
	Unmatched []string // path entries with no matching placeholder
}

func (e *RoutingError) Error() string {
	var parts []string
	if len(e.Missing) > 0 {
		parts = append(parts, "no value for placeholder(s) "+strings.Join(e.Missing, ", "))
	}
	if len(e.Unmatched) > 0 {
		parts = append(parts, "no placeholder for path value(s) "+strings.Join(e.Unmatched, ", "))
	}
	return fmt.Sprintf("stoma: route %q: %s", e.Path, strings.Join(parts, "; "))
}

// HTTPError reports that transport succeeded but the server returned a
// non-success status. It carries the status code and the raw response text.
type HTTPError struct {
	StatusCode   int
	ResponseText string
}

func (e *HTTPError) Error() string {
	text := e.ResponseText
	if len(text) > 256 {
		text = text[:256] + "..."
	}
	return fmt.Sprintf("stoma: http status %d: %s", e.StatusCode, text)
}

// ParseError reports that a response body could not be decoded into the
// endpoint's declared result type. ResponseText holds the raw body for
// debugging.
type ParseError struct {
	Message      string
	ResponseText string
}

func (e *ParseError) Error() string {
	return "stoma: parse response: " + e.Message
}

// translateValidationError converts validator errors into a *ValidationError
// carrying per-field violations.
func translateValidationError(err error) error {
	var valErrs validator.ValidationErrors
	if errors.As(err, &valErrs) {
		violations := make([]Violation, 0, len(valErrs))
		messages := make([]string, 0, len(valErrs))
		for _, ve := range valErrs {
			violations = append(violations, Violation{
				Field:      ve.Field(),
				Constraint: constraintName(ve),
				Value:      ve.Value(),
			})
			messages = append(messages, ve.Field()+": "+constraintMessage(ve))
		}
		return &ValidationError{
			Message:    strings.Join(messages, "; "),
			Violations: violations,
		}
	}
	return &ValidationError{Message: err.Error()}
}

// constraintName renders a validator tag as the constraint identifier
// reported in a Violation (e.g. "gte=1", "required").
func constraintName(ve validator.FieldError) string {
	if ve.Param() != "" {
		return ve.Tag() + "=" + ve.Param()
	}
	return ve.Tag()
}

// constraintMessage converts a validator.FieldError to a human-readable message.
func constraintMessage(ve validator.FieldError) string {
	switch ve.Tag() {
	case "required":
		return "required"
	case "min":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s", ve.Param())
	case "gt":
		return fmt.Sprintf("must be greater than %s", ve.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", ve.Param())
	case "lt":
		return fmt.Sprintf("must be less than %s", ve.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", ve.Param())
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "uuid":
		return "must be a valid UUID"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", ve.Param())
	default:
		if ve.Param() != "" {
			return fmt.Sprintf("failed %s=%s validation", ve.Tag(), ve.Param())
		}
		return fmt.Sprintf("failed %s validation", ve.Tag())
	}
}
