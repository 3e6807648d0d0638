package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/getmockd/mockhost/pkg/config"
	"github.com/getmockd/mockhost/pkg/endpoint"
	"github.com/getmockd/mockhost/pkg/logging"
	"github.com/getmockd/mockhost/pkg/netaddr"
)

// DefaultGracePeriod bounds how long Stop waits for in-flight requests.
const DefaultGracePeriod = time.Second

// EndpointLister supplies a scope's endpoints, most recently modified first.
// *store.EndpointStore satisfies it.
type EndpointLister interface {
	FindAll(ctx context.Context, scope string) ([]*endpoint.Endpoint, error)
}

// ScopeValidator is implemented by listers that restrict scope names.
// Start rejects a scope the lister would refuse.
type ScopeValidator interface {
	ValidateScope(scope string) error
}

// requestContext is fixed at Start and shared read-only by every handler of
// that run. A restart builds a new one.
type requestContext struct {
	scope string
	cfg   config.Config
	port  int

	// stopping is closed when Stop gives up waiting and forces connections
	// closed. Delays end early only then.
	stopping chan struct{}
}

// Server is the mock dispatch server.
type Server struct {
	endpoints   EndpointLister
	log         *slog.Logger
	resolver    *netaddr.Resolver
	gracePeriod time.Duration
	newID       func() string
	now         func() time.Time

	mu         sync.RWMutex
	state      State
	httpServer *http.Server
	served     chan struct{}
	rc         *requestContext

	listenersMu    sync.RWMutex
	listeners      []listenerEntry
	nextListenerID ListenerID
}

// Option is a functional option for configuring a Server.
type Option func(*Server)

// WithLogger sets the operational logger for the server.
func WithLogger(log *slog.Logger) Option {
	return func(s *Server) {
		if log != nil {
			s.log = log
		}
	}
}

// WithGracePeriod sets how long Stop waits before forcing connections closed.
func WithGracePeriod(d time.Duration) Option {
	return func(s *Server) {
		if d > 0 {
			s.gracePeriod = d
		}
	}
}

// WithResolver sets the resolver used by NetworkAddresses.
func WithResolver(r *netaddr.Resolver) Option {
	return func(s *Server) {
		if r != nil {
			s.resolver = r
		}
	}
}

// WithRecordIDGenerator overrides the request record ID generator.
func WithRecordIDGenerator(gen func() string) Option {
	return func(s *Server) {
		if gen != nil {
			s.newID = gen
		}
	}
}

// NewServer creates a stopped Server dispatching to endpoints.
func NewServer(endpoints EndpointLister, opts ...Option) *Server {
	s := &Server{
		endpoints:   endpoints,
		log:         logging.Nop(),
		gracePeriod: DefaultGracePeriod,
		newID:       uuid.NewString,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.resolver == nil {
		s.resolver = netaddr.NewResolver()
	}
	s.log = s.log.With("component", "engine")
	return s
}

// Start binds cfg's address and begins serving scope's endpoints.
func (s *Server) Start(scope string, cfg config.Config) error {
	s.mu.Lock()
	if s.state != StateStopped {
		s.mu.Unlock()
		return ErrAlreadyRunning
	}
	if scope == "" {
		s.mu.Unlock()
		return errors.New("scope is required")
	}
	if v, ok := s.endpoints.(ScopeValidator); ok {
		if err := v.ValidateScope(scope); err != nil {
			s.mu.Unlock()
			return err
		}
	}
	if err := cfg.Validate(); err != nil {
		s.mu.Unlock()
		return err
	}
	s.state = StateStarting
	s.mu.Unlock()

	ln, err := s.listen(cfg)
	if err != nil {
		s.setState(StateStopped)
		return err
	}

	rc := &requestContext{
		scope:    scope,
		cfg:      cfg,
		port:     ln.Addr().(*net.TCPAddr).Port,
		stopping: make(chan struct{}),
	}
	srv := &http.Server{
		Handler:           s.routes(rc),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(s.log.Handler(), slog.LevelWarn),
	}
	served := make(chan struct{})

	s.mu.Lock()
	s.httpServer = srv
	s.served = served
	s.rc = rc
	s.state = StateRunning
	s.mu.Unlock()

	go func() {
		defer close(served)
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.log.Error("HTTP server error", "error", err)
		}
	}()

	s.log.Info("server started", "scope", scope, "addr", cfg.Addr(), "port", rc.port,
		"cors", cfg.CORSEnabled, "logging", cfg.LoggingEnabled)
	return nil
}

// listen probes then binds cfg's address. Port 0 skips the probe.
func (s *Server) listen(cfg config.Config) (net.Listener, error) {
	if cfg.Port != 0 && !netaddr.IsAddrAvailable(cfg.Host, cfg.Port) {
		return nil, fmt.Errorf("%w: %s", ErrPortUnavailable, cfg.Addr())
	}
	ln, err := net.Listen("tcp", cfg.Addr())
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrPortUnavailable, cfg.Addr(), err)
	}
	return ln, nil
}

// Stop shuts the server down, waiting up to the grace period for in-flight
// requests before closing connections. Shutdown failures are logged, not
// returned; the server always ends Stopped.
func (s *Server) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return ErrNotRunning
	}

	srv, served, rc := s.httpServer, s.served, s.rc
	defer func() {
		s.httpServer = nil
		s.served = nil
		s.rc = nil
		s.state = StateStopped
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.gracePeriod)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		s.log.Warn("graceful shutdown failed, closing connections", "error", err)
		close(rc.stopping)
		if err := srv.Close(); err != nil {
			s.log.Error("failed to close server", "error", err)
		}
	}
	<-served

	s.log.Info("server stopped", "scope", rc.scope, "port", rc.port)
	return nil
}

func (s *Server) setState(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

// State returns the lifecycle state.
func (s *Server) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// IsRunning reports whether the server is accepting requests.
func (s *Server) IsRunning() bool {
	return s.State() == StateRunning
}

func (s *Server) current() *requestContext {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state != StateRunning {
		return nil
	}
	return s.rc
}

// Port returns the bound port, or 0 when stopped.
func (s *Server) Port() int {
	if rc := s.current(); rc != nil {
		return rc.port
	}
	return 0
}

// ServerURL returns the loopback URL of the running server, or "".
func (s *Server) ServerURL() string {
	if rc := s.current(); rc != nil {
		return netaddr.LoopbackAddress(rc.port)
	}
	return ""
}

// NetworkAddresses returns every URL the running server can be reached at,
// loopback first. Empty when stopped.
func (s *Server) NetworkAddresses() []string {
	rc := s.current()
	if rc == nil {
		return []string{}
	}
	return s.resolver.AllAccessibleAddresses(rc.port)
}

// Scope returns the scope being served, or "".
func (s *Server) Scope() string {
	if rc := s.current(); rc != nil {
		return rc.scope
	}
	return ""
}

// Config returns the active config and whether the server is running.
func (s *Server) Config() (config.Config, bool) {
	if rc := s.current(); rc != nil {
		return rc.cfg, true
	}
	return config.Config{}, false
}
