package engine

import (
	"errors"
	"net"
	"net/http"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/getmockd/mockhost/pkg/config"
	"github.com/getmockd/mockhost/pkg/netaddr"
	"github.com/getmockd/mockhost/pkg/requestlog"
	"github.com/getmockd/mockhost/pkg/store"
)

// ============================================================================
// Server Creation Tests
// ============================================================================

func TestNewServer(t *testing.T) {
	srv := NewServer(staticLister{}, WithLogger(nil), WithGracePeriod(0))
	require.NotNil(t, srv)
	assert.NotNil(t, srv.log)
	assert.Equal(t, DefaultGracePeriod, srv.gracePeriod)
	assert.Equal(t, StateStopped, srv.State())
	assert.False(t, srv.IsRunning())
	assert.Empty(t, srv.ServerURL())
	assert.Empty(t, srv.NetworkAddresses())
	assert.Empty(t, srv.Scope())
	assert.Zero(t, srv.Port())

	_, running := srv.Config()
	assert.False(t, running)
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "stopped", StateStopped.String())
	assert.Equal(t, "starting", StateStarting.String())
	assert.Equal(t, "running", StateRunning.String())
}

// ============================================================================
// Lifecycle Tests
// ============================================================================

func TestServer_StartStop(t *testing.T) {
	srv := NewServer(staticLister{})
	cfg := testConfig()
	cfg.CORSEnabled = false

	require.NoError(t, srv.Start("proj", cfg))
	assert.True(t, srv.IsRunning())
	assert.Equal(t, StateRunning, srv.State())
	assert.Equal(t, "proj", srv.Scope())
	assert.NotZero(t, srv.Port())
	assert.Equal(t, "http://localhost:"+strconv.Itoa(srv.Port()), srv.ServerURL())

	active, running := srv.Config()
	assert.True(t, running)
	assert.False(t, active.CORSEnabled)

	require.NoError(t, srv.Stop())
	assert.False(t, srv.IsRunning())
	assert.Empty(t, srv.ServerURL())
}

func TestServer_DoubleStart(t *testing.T) {
	env := startTestServer(t, testConfig())

	err := env.server.Start(testScope, testConfig())
	assert.ErrorIs(t, err, ErrAlreadyRunning)
	assert.True(t, env.server.IsRunning(), "failed start leaves the running server alone")
}

func TestServer_StopWhenStopped(t *testing.T) {
	srv := NewServer(staticLister{})
	assert.ErrorIs(t, srv.Stop(), ErrNotRunning)

	require.NoError(t, srv.Start(testScope, testConfig()))
	require.NoError(t, srv.Stop())
	assert.ErrorIs(t, srv.Stop(), ErrNotRunning)
}

func TestServer_StartInvalidConfig(t *testing.T) {
	srv := NewServer(staticLister{})
	cfg := testConfig()
	cfg.Port = -1

	assert.ErrorIs(t, srv.Start(testScope, cfg), config.ErrInvalid)
	assert.Equal(t, StateStopped, srv.State())

	assert.Error(t, srv.Start("", testConfig()))
}

func TestServer_StartRejectsUnstorableScope(t *testing.T) {
	srv := NewServer(store.NewEndpointStore(store.NewMemoryProvider()))

	err := srv.Start("a/b", testConfig())
	assert.ErrorIs(t, err, store.ErrInvalidScope)
	assert.Equal(t, StateStopped, srv.State())

	// Listers without scope rules accept any non-empty scope
	srv = NewServer(staticLister{})
	require.NoError(t, srv.Start("a/b", testConfig()))
	require.NoError(t, srv.Stop())
}

func TestServer_PortUnavailable(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	cfg := testConfig()
	cfg.Port = ln.Addr().(*net.TCPAddr).Port

	srv := NewServer(staticLister{})
	err = srv.Start(testScope, cfg)
	assert.ErrorIs(t, err, ErrPortUnavailable)
	assert.Equal(t, StateStopped, srv.State())

	// The server is reusable after a failed start
	require.NoError(t, srv.Start(testScope, testConfig()))
	require.NoError(t, srv.Stop())
}

func TestServer_RestartWithNewConfig(t *testing.T) {
	env := startTestServer(t, testConfig(), enabledEndpoint("GET", "/a", 200, "a"))
	resp := doRequest(t, http.MethodGet, env.baseURL+"/a", "")
	assert.Equal(t, "*", resp.header.Get("Access-Control-Allow-Origin"))

	require.NoError(t, env.server.Stop())

	cfg := testConfig()
	cfg.CORSEnabled = false
	require.NoError(t, env.server.Start(testScope, cfg))

	resp = doRequest(t, http.MethodGet, env.server.ServerURL()+"/a", "")
	assert.Equal(t, http.StatusOK, resp.status)
	assert.Empty(t, resp.header.Get("Access-Control-Allow-Origin"))
}

func TestServer_StopForcesSlowRequests(t *testing.T) {
	slow := enabledEndpoint("GET", "/slow", 200, "late")
	slow.DelayMs = 10_000
	env := startTestServer(t, testConfig(), slow)

	done := make(chan error, 1)
	go func() {
		resp, err := http.Get(env.baseURL + "/slow")
		if err == nil {
			_ = resp.Body.Close()
		}
		done <- err
	}()

	// Let the request reach the handler
	time.Sleep(100 * time.Millisecond)

	start := time.Now()
	require.NoError(t, env.server.Stop())
	assert.Less(t, time.Since(start), 3*time.Second)
	assert.False(t, env.server.IsRunning())

	select {
	case err := <-done:
		assert.Error(t, err, "client sees the forced close")
	case <-time.After(3 * time.Second):
		t.Fatal("slow request was not torn down")
	}

	// Aborted requests produce no record
	assert.Zero(t, env.history.Len())
}

func TestServer_NetworkAddresses(t *testing.T) {
	resolver := netaddr.NewResolver(netaddr.WithInterfaces(func() ([]netaddr.Interface, error) {
		return []netaddr.Interface{{
			Name: "eth0", Up: true,
			Addrs: []net.Addr{&net.IPNet{IP: net.ParseIP("192.168.1.5"), Mask: net.CIDRMask(24, 32)}},
		}}, nil
	}))
	srv := NewServer(staticLister{}, WithResolver(resolver))
	require.NoError(t, srv.Start(testScope, testConfig()))
	defer srv.Stop()

	port := strconv.Itoa(srv.Port())
	assert.Equal(t, []string{
		"http://localhost:" + port,
		"http://192.168.1.5:" + port,
	}, srv.NetworkAddresses())
}

// ============================================================================
// Listener Tests
// ============================================================================

func TestServer_Listeners(t *testing.T) {
	env := startTestServer(t, testConfig(), enabledEndpoint("GET", "/x", 200, "x"))

	var mu sync.Mutex
	var order []string
	env.server.AddRequestListener(requestlog.ListenerFunc(func(*requestlog.Record) {
		panic("listener bug")
	}))
	second := env.server.AddRequestListener(requestlog.ListenerFunc(func(r *requestlog.Record) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, r.Path)
	}))

	resp := doRequest(t, http.MethodGet, env.baseURL+"/x", "")
	assert.Equal(t, http.StatusOK, resp.status, "listener panic does not affect the response")
	waitForRecords(t, env.history, 1)

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return len(order) == 1
	}, time.Second, 5*time.Millisecond)

	assert.True(t, env.server.RemoveRequestListener(second))
	assert.False(t, env.server.RemoveRequestListener(second))
	assert.False(t, env.server.RemoveRequestListener(ListenerID(9999)))

	doRequest(t, http.MethodGet, env.baseURL+"/x", "")
	waitForRecords(t, env.history, 2)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []string{"/x"}, order)
}

func TestServer_RecordIDGenerator(t *testing.T) {
	n := 0
	var mu sync.Mutex
	srv := NewServer(staticLister{}, WithRecordIDGenerator(func() string {
		mu.Lock()
		defer mu.Unlock()
		n++
		return "rec-" + strconv.Itoa(n)
	}))
	history := requestlog.NewHistory(0)
	srv.AddRequestListener(history)
	require.NoError(t, srv.Start(testScope, testConfig()))
	defer srv.Stop()

	doRequest(t, http.MethodGet, srv.ServerURL()+"/nope", "")
	recs := waitForRecords(t, history, 1)
	assert.Equal(t, "rec-1", recs[0].ID)
}

func TestErrorsAreDistinct(t *testing.T) {
	assert.False(t, errors.Is(ErrAlreadyRunning, ErrNotRunning))
	assert.False(t, errors.Is(ErrPortUnavailable, ErrNotRunning))
}
