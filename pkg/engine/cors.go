// CORS headers for the mock engine.

package engine

import (
	"net/http"
	"strconv"
)

// CORS header values emitted when the running config enables CORS.
const (
	CORSAllowOrigin  = "*"
	CORSAllowHeaders = "Content-Type, Authorization"
	CORSAllowMethods = "GET,POST,PUT,DELETE,PATCH,HEAD,OPTIONS"
	CORSMaxAge       = 86400 // 24 hours
)

func setCORSHeaders(h http.Header) {
	h.Set("Access-Control-Allow-Origin", CORSAllowOrigin)
	h.Set("Access-Control-Allow-Headers", CORSAllowHeaders)
	h.Set("Access-Control-Allow-Methods", CORSAllowMethods)
	h.Set("Access-Control-Max-Age", strconv.Itoa(CORSMaxAge))
}

// handlePreflight writes the CORS headers when enabled and answers OPTIONS
// with 204. It reports whether the request was fully handled.
func handlePreflight(rc *requestContext, w http.ResponseWriter, r *http.Request) bool {
	if !rc.cfg.CORSEnabled {
		return false
	}
	setCORSHeaders(w.Header())
	if r.Method != http.MethodOptions {
		return false
	}
	w.WriteHeader(http.StatusNoContent)
	return true
}
