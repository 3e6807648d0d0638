package endpoint

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// ErrInvalid is matched by every *ValidationError via errors.Is.
var ErrInvalid = errors.New("invalid endpoint")

// ValidationError describes the first field that failed validation.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation error on %s: %s", e.Field, e.Message)
}

// Is lets errors.Is(err, ErrInvalid) succeed.
func (e *ValidationError) Is(target error) bool {
	return target == ErrInvalid
}

var validMethods = map[string]bool{
	MethodGet:     true,
	MethodPost:    true,
	MethodPut:     true,
	MethodDelete:  true,
	MethodPatch:   true,
	MethodOptions: true,
	MethodHead:    true,
}

// headerNameRegex validates HTTP header names (RFC 7230 token).
var headerNameRegex = regexp.MustCompile(`^[A-Za-z0-9!#$%&'*+\-.^_\x60|~]+$`)

// IsValidMethod reports whether method (any case) is one endpoints may use.
func IsValidMethod(method string) bool {
	return validMethods[strings.ToUpper(method)]
}

// Validate checks the endpoint's invariants. The ID is not required: stores
// assign one on insert.
func (e *Endpoint) Validate() error {
	if e.Path == "" {
		return &ValidationError{Field: "path", Message: "path is required"}
	}
	if !strings.HasPrefix(e.Path, "/") {
		return &ValidationError{Field: "path", Message: "path must start with /"}
	}
	if !IsValidMethod(e.Method) {
		return &ValidationError{Field: "method", Message: fmt.Sprintf("unsupported method %q", e.Method)}
	}
	if e.StatusCode < 100 || e.StatusCode > 599 {
		return &ValidationError{Field: "statusCode", Message: fmt.Sprintf("status code %d outside 100-599", e.StatusCode)}
	}
	if e.DelayMs < 0 {
		return &ValidationError{Field: "delayMs", Message: "delay must not be negative"}
	}
	for name := range e.Headers {
		if !headerNameRegex.MatchString(name) {
			return &ValidationError{Field: "headers", Message: fmt.Sprintf("invalid header name %q", name)}
		}
	}
	return nil
}
