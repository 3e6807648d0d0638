package engine

import (
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/getmockd/mockhost/pkg/endpoint"
	"github.com/getmockd/mockhost/pkg/httputil"
	"github.com/getmockd/mockhost/pkg/requestlog"
)

// DefaultContentType is sent when an endpoint sets no Content-Type header.
const DefaultContentType = "application/json; charset=utf-8"

// MaxLogBodySize caps the request body kept in a record (10KB).
const MaxLogBodySize = 10 * 1024

const truncatedMarker = "...(truncated)"

// notFoundBody is the 404 body for unmatched requests. Field order is fixed.
type notFoundBody struct {
	Error  string `json:"error"`
	Method string `json:"method"`
	Path   string `json:"path"`
}

// routes builds the router for one run. Paths are matched as received.
func (s *Server) routes(rc *requestContext) http.Handler {
	dispatch := s.dispatch(rc)

	r := mux.NewRouter().SkipClean(true)
	r.PathPrefix(StaticPrefix).Handler(s.serveStatic(rc))
	r.PathPrefix("/").Handler(dispatch)
	r.NotFoundHandler = dispatch
	r.MethodNotAllowedHandler = dispatch
	return r
}

// statusWriter records the status code written through it.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	if w.status == 0 {
		w.status = code
	}
	w.ResponseWriter.WriteHeader(code)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if w.status == 0 {
		w.status = http.StatusOK
	}
	return w.ResponseWriter.Write(b)
}

func (w *statusWriter) Unwrap() http.ResponseWriter {
	return w.ResponseWriter
}

// dispatch answers a request from the first enabled matching endpoint.
func (s *Server) dispatch(rc *requestContext) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if handlePreflight(rc, w, r) {
			return
		}

		start := s.now()
		var body *string
		if rc.cfg.LoggingEnabled {
			body = captureBody(r)
		}

		sw := &statusWriter{ResponseWriter: w}
		var endpointID string
		aborted := false

		defer func() {
			if p := recover(); p != nil {
				if p == http.ErrAbortHandler {
					panic(p)
				}
				s.log.Error("dispatch panicked", "method", r.Method, "path", r.URL.Path, "panic", p)
				if sw.status == 0 {
					httputil.WriteText(sw, http.StatusInternalServerError, fmt.Sprint(p))
				} else {
					sw.status = http.StatusInternalServerError
				}
			}
			if rc.cfg.LoggingEnabled && !aborted {
				s.emit(s.buildRecord(r, start, endpointID, body, sw.status))
			}
		}()

		endpointID, aborted = s.respond(rc, sw, r)
	}
}

// respond writes the response and returns the matched endpoint ID. aborted
// is true when a forced stop cut the delay short. A client that hangs up
// during the delay does not end it.
func (s *Server) respond(rc *requestContext, w http.ResponseWriter, r *http.Request) (string, bool) {
	list, err := s.endpoints.FindAll(r.Context(), rc.scope)
	if err != nil {
		s.log.Error("failed to load endpoints", "scope", rc.scope, "error", err)
		httputil.WriteText(w, http.StatusInternalServerError, err.Error())
		return "", false
	}

	ep := firstMatch(list, r.Method, r.URL.Path)
	if ep == nil {
		httputil.WriteJSON(w, http.StatusNotFound, notFoundBody{
			Error:  "No mock endpoint found",
			Method: r.Method,
			Path:   r.URL.Path,
		})
		return "", false
	}

	if d := ep.Delay(); d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-timer.C:
		case <-rc.stopping:
			timer.Stop()
			return ep.ID, true
		}
	}

	writeEndpoint(w, ep)
	return ep.ID, false
}

// firstMatch returns the first enabled endpoint answering method and path.
func firstMatch(list []*endpoint.Endpoint, method, path string) *endpoint.Endpoint {
	for _, ep := range list {
		if ep.Enabled && ep.Matches(method, path) {
			return ep
		}
	}
	return nil
}

func writeEndpoint(w http.ResponseWriter, ep *endpoint.Endpoint) {
	h := w.Header()
	for k, v := range ep.Headers {
		h.Set(k, v)
	}
	if h.Get("Content-Type") == "" {
		h.Set("Content-Type", DefaultContentType)
	}

	w.WriteHeader(ep.StatusCode)
	_, _ = io.WriteString(w, ep.ResponseBody)
}

// captureBody reads at most MaxLogBodySize bytes of a body with a declared
// positive length.
func captureBody(r *http.Request) *string {
	if r.ContentLength <= 0 || r.Body == nil {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(r.Body, MaxLogBodySize+1))
	if err != nil && len(data) == 0 {
		return nil
	}
	body := string(data)
	if len(data) > MaxLogBodySize {
		body = string(data[:MaxLogBodySize]) + truncatedMarker
	}
	return &body
}

func (s *Server) buildRecord(r *http.Request, start time.Time, endpointID string, body *string, status int) *requestlog.Record {
	if status == 0 {
		status = http.StatusOK
	}
	return &requestlog.Record{
		ID:         s.newID(),
		EndpointID: endpointID,
		Timestamp:  start,
		Method:     r.Method,
		Path:       r.URL.Path,
		Query:      r.URL.Query(),
		Headers:    r.Header.Clone(),
		Body:       body,
		Status:     status,
		DurationMs: s.now().Sub(start).Milliseconds(),
		RemoteAddr: r.RemoteAddr,
	}
}
