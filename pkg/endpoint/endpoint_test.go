package endpoint

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEndpoint() *Endpoint {
	return &Endpoint{
		ID:         "ep-1",
		Name:       "users",
		Path:       "/api/users",
		Method:     MethodGet,
		StatusCode: 200,
		Enabled:    true,
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(e *Endpoint)
		field  string
	}{
		{"valid", func(e *Endpoint) {}, ""},
		{"lowercase method accepted", func(e *Endpoint) { e.Method = "post" }, ""},
		{"empty path", func(e *Endpoint) { e.Path = "" }, "path"},
		{"relative path", func(e *Endpoint) { e.Path = "api/users" }, "path"},
		{"unknown method", func(e *Endpoint) { e.Method = "TRACE" }, "method"},
		{"status too low", func(e *Endpoint) { e.StatusCode = 99 }, "statusCode"},
		{"status too high", func(e *Endpoint) { e.StatusCode = 600 }, "statusCode"},
		{"status lower bound", func(e *Endpoint) { e.StatusCode = 100 }, ""},
		{"status upper bound", func(e *Endpoint) { e.StatusCode = 599 }, ""},
		{"negative delay", func(e *Endpoint) { e.DelayMs = -1 }, "delayMs"},
		{"bad header name", func(e *Endpoint) { e.Headers = map[string]string{"Bad Header": "x"} }, "headers"},
		{"good header name", func(e *Endpoint) { e.Headers = map[string]string{"X-Trace-Id": "x"} }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := validEndpoint()
			tt.mutate(e)
			err := e.Validate()
			if tt.field == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalid))
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestMatches(t *testing.T) {
	e := validEndpoint()

	assert.True(t, e.Matches("GET", "/api/users"))
	assert.True(t, e.Matches("get", "/api/users"), "method is case-insensitive")
	assert.False(t, e.Matches("GET", "/API/users"), "path is case-sensitive")
	assert.False(t, e.Matches("GET", "/api/users/"), "no trailing-slash folding")
	assert.False(t, e.Matches("POST", "/api/users"))
}

func TestNormalize(t *testing.T) {
	e := &Endpoint{Method: " patch ", Path: " /x "}
	e.Normalize()
	assert.Equal(t, "PATCH", e.Method)
	assert.Equal(t, "/x", e.Path)
}

func TestClone(t *testing.T) {
	e := validEndpoint()
	e.Headers = map[string]string{"X-A": "1"}

	c := e.Clone()
	c.Headers["X-A"] = "2"
	c.Name = "changed"

	assert.Equal(t, "1", e.Headers["X-A"])
	assert.Equal(t, "users", e.Name)
	assert.Nil(t, (*Endpoint)(nil).Clone())
}

func TestHeaderValue(t *testing.T) {
	e := validEndpoint()
	e.Headers = map[string]string{"content-type": "text/html"}

	v, ok := e.HeaderValue("Content-Type")
	assert.True(t, ok)
	assert.Equal(t, "text/html", v)

	_, ok = e.HeaderValue("X-Missing")
	assert.False(t, ok)
}

func TestDelay(t *testing.T) {
	e := validEndpoint()
	assert.Zero(t, e.Delay())

	e.DelayMs = 50
	assert.Equal(t, 50*time.Millisecond, e.Delay())
}
