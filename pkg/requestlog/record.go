package requestlog

import "time"

// Record is an immutable snapshot of one handled request.
type Record struct {
	// ID is unique per record.
	ID string `json:"id"`

	// EndpointID is the matched endpoint, empty when nothing matched.
	EndpointID string `json:"endpointId,omitempty"`

	// Timestamp is when the request was received.
	Timestamp time.Time `json:"timestamp"`

	Method string `json:"method"`
	Path   string `json:"path"`

	// Query holds parsed query parameters; repeated keys keep their order.
	Query map[string][]string `json:"query,omitempty"`

	// Headers are the request headers (multi-value).
	Headers map[string][]string `json:"headers,omitempty"`

	// Body is the request body (truncated if > 10KB). Nil when not captured.
	Body *string `json:"body,omitempty"`

	// Status is the response status code.
	Status int `json:"status"`

	// DurationMs is the handling time including any configured delay.
	DurationMs int64 `json:"durationMs"`

	// RemoteAddr is the client address.
	RemoteAddr string `json:"remoteAddr"`
}

// Matched reports whether the request was answered by an endpoint.
func (r *Record) Matched() bool {
	return r.EndpointID != ""
}

// Listener receives every record the dispatch engine produces.
// Implementations must be safe for concurrent use.
type Listener interface {
	OnRequest(rec *Record)
}

// ListenerFunc adapts a function to Listener.
type ListenerFunc func(rec *Record)

// OnRequest calls f(rec).
func (f ListenerFunc) OnRequest(rec *Record) {
	f(rec)
}
