package engine

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockhost/pkg/config"
	"github.com/getmockd/mockhost/pkg/endpoint"
	"github.com/getmockd/mockhost/pkg/requestlog"
	"github.com/getmockd/mockhost/pkg/store"
)

// ============================================================================
// Test Helpers
// ============================================================================

const testScope = "default"

// testConfig binds an ephemeral loopback port.
func testConfig() config.Config {
	cfg := config.Default()
	cfg.Host = "127.0.0.1"
	cfg.Port = 0
	return cfg
}

type testEnv struct {
	server  *Server
	store   *store.EndpointStore
	history *requestlog.History
	baseURL string
}

// startTestServer starts a Server over an in-memory store seeded with eps.
func startTestServer(t *testing.T, cfg config.Config, eps ...*endpoint.Endpoint) *testEnv {
	t.Helper()

	st := store.NewEndpointStore(store.NewMemoryProvider())
	for _, ep := range eps {
		_, err := st.Save(context.Background(), testScope, ep)
		require.NoError(t, err)
	}

	srv := NewServer(st, WithGracePeriod(200*time.Millisecond))
	history := requestlog.NewHistory(requestlog.DefaultCapacity)
	srv.AddRequestListener(history)

	require.NoError(t, srv.Start(testScope, cfg))
	t.Cleanup(func() {
		if srv.IsRunning() {
			_ = srv.Stop()
		}
	})

	return &testEnv{server: srv, store: st, history: history, baseURL: srv.ServerURL()}
}

type testResponse struct {
	status int
	header http.Header
	body   string
}

func doRequest(t *testing.T, method, url, body string) testResponse {
	t.Helper()

	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, r)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return testResponse{status: resp.StatusCode, header: resp.Header, body: string(data)}
}

func enabledEndpoint(method, path string, status int, body string) *endpoint.Endpoint {
	return &endpoint.Endpoint{
		Name:         method + " " + path,
		Method:       method,
		Path:         path,
		StatusCode:   status,
		ResponseBody: body,
		Enabled:      true,
	}
}

// waitForRecords waits until the history holds n records.
func waitForRecords(t *testing.T, h *requestlog.History, n int) []*requestlog.Record {
	t.Helper()
	require.Eventually(t, func() bool { return h.Len() >= n }, 2*time.Second, 5*time.Millisecond)
	return h.All()
}

// staticLister returns a fixed list or error.
type staticLister struct {
	list []*endpoint.Endpoint
	err  error
}

func (l staticLister) FindAll(context.Context, string) ([]*endpoint.Endpoint, error) {
	return l.list, l.err
}

// panicLister panics on every call.
type panicLister struct{}

func (panicLister) FindAll(context.Context, string) ([]*endpoint.Endpoint, error) {
	panic("lister exploded")
}
