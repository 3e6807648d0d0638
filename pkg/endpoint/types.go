// Package endpoint defines the mock endpoint served by the dispatch engine.
package endpoint

import (
	"maps"
	"strings"
	"time"
)

// HTTP methods an endpoint may answer.
const (
	MethodGet     = "GET"
	MethodPost    = "POST"
	MethodPut     = "PUT"
	MethodDelete  = "DELETE"
	MethodPatch   = "PATCH"
	MethodOptions = "OPTIONS"
	MethodHead    = "HEAD"
)

// Methods lists the allowed methods in display order.
var Methods = []string{MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch, MethodOptions, MethodHead}

// Endpoint is a developer-defined mock response for one path and method.
type Endpoint struct {
	// ID is unique within the owning scope.
	ID string `json:"id" yaml:"id"`

	// Name is a human-readable label.
	Name string `json:"name,omitempty" yaml:"name,omitempty"`

	// Path is matched exactly against the request path. Must start with "/".
	Path string `json:"path" yaml:"path"`

	// Method is matched case-insensitively against the request method.
	Method string `json:"method" yaml:"method"`

	// StatusCode is written verbatim (100-599).
	StatusCode int `json:"statusCode" yaml:"statusCode"`

	// ResponseBody is written verbatim.
	ResponseBody string `json:"responseBody,omitempty" yaml:"responseBody,omitempty"`

	// Headers are merged into the response. A Content-Type entry (any case)
	// replaces the default application/json.
	Headers map[string]string `json:"headers,omitempty" yaml:"headers,omitempty"`

	// DelayMs holds the response back for this many milliseconds.
	DelayMs int `json:"delayMs,omitempty" yaml:"delayMs,omitempty"`

	Enabled     bool   `json:"enabled" yaml:"enabled"`
	Description string `json:"description,omitempty" yaml:"description,omitempty"`

	CreatedAt time.Time `json:"createdAt" yaml:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt" yaml:"updatedAt"`

	// Scope is the owning isolation boundary (e.g. a project).
	Scope string `json:"scope,omitempty" yaml:"scope,omitempty"`
}

// Normalize upper-cases the method and trims surrounding whitespace from the path.
func (e *Endpoint) Normalize() {
	e.Method = strings.ToUpper(strings.TrimSpace(e.Method))
	e.Path = strings.TrimSpace(e.Path)
}

// Matches reports whether the endpoint answers method and path.
// Path comparison is exact and case-sensitive; method comparison ignores case.
// The enabled flag is not consulted.
func (e *Endpoint) Matches(method, path string) bool {
	return e.Path == path && strings.EqualFold(e.Method, method)
}

// Delay returns DelayMs as a duration.
func (e *Endpoint) Delay() time.Duration {
	if e.DelayMs <= 0 {
		return 0
	}
	return time.Duration(e.DelayMs) * time.Millisecond
}

// Clone returns a deep copy.
func (e *Endpoint) Clone() *Endpoint {
	if e == nil {
		return nil
	}
	c := *e
	if e.Headers != nil {
		c.Headers = maps.Clone(e.Headers)
	}
	return &c
}

// HeaderValue returns the custom header value for name, ignoring case.
func (e *Endpoint) HeaderValue(name string) (string, bool) {
	for k, v := range e.Headers {
		if strings.EqualFold(k, name) {
			return v, true
		}
	}
	return "", false
}
