package workspace

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/getmockd/mockhost/pkg/config"
	"github.com/getmockd/mockhost/pkg/endpoint"
	"github.com/getmockd/mockhost/pkg/engine"
	"github.com/getmockd/mockhost/pkg/logging"
	"github.com/getmockd/mockhost/pkg/requestlog"
	"github.com/getmockd/mockhost/pkg/store"
)

// ConfigOverride adjusts the stored config just before the server starts.
type ConfigOverride func(config.Config) (config.Config, error)

type options struct {
	log             *slog.Logger
	historyCapacity int
	override        ConfigOverride
}

// Option configures a Workspace.
type Option func(*options)

// WithLogger sets the operational logger.
func WithLogger(log *slog.Logger) Option {
	return func(o *options) {
		o.log = logging.OrNop(log)
	}
}

// WithHistoryCapacity sets how many request records are kept.
func WithHistoryCapacity(n int) Option {
	return func(o *options) {
		o.historyCapacity = n
	}
}

// WithConfigOverride applies fn to the stored config on every start.
// The stored document is not changed.
func WithConfigOverride(fn ConfigOverride) Option {
	return func(o *options) {
		o.override = fn
	}
}

// Workspace owns one scope.
type Workspace struct {
	scope     string
	endpoints *store.EndpointStore
	configs   *store.ConfigStore
	server    *engine.Server
	history   *requestlog.History
	historyID engine.ListenerID
	override  ConfigOverride
	log       *slog.Logger

	// lifecycleMu serializes Start, Stop and config restarts.
	lifecycleMu sync.Mutex

	subsMu  sync.RWMutex
	subs    []subscription
	nextSub int
}

type subscription struct {
	id int
	fn EventListener
}

// New creates a Workspace for scope and registers its history with server.
func New(scope string, endpoints *store.EndpointStore, configs *store.ConfigStore, server *engine.Server, opts ...Option) (*Workspace, error) {
	if err := store.ValidateScope(scope); err != nil {
		return nil, err
	}
	if endpoints == nil || configs == nil || server == nil {
		return nil, errors.New("workspace requires endpoint store, config store and server")
	}

	o := options{log: logging.Nop(), historyCapacity: requestlog.DefaultCapacity}
	for _, opt := range opts {
		opt(&o)
	}

	w := &Workspace{
		scope:     scope,
		endpoints: endpoints,
		configs:   configs,
		server:    server,
		history:   requestlog.NewHistory(o.historyCapacity),
		override:  o.override,
		log:       o.log.With("component", "workspace", "scope", scope),
	}
	w.historyID = server.AddRequestListener(w.history)
	return w, nil
}

// Scope returns the scope this workspace owns.
func (w *Workspace) Scope() string {
	return w.scope
}

// ============================================================================
// Endpoints
// ============================================================================

// CreateEndpoint stores a new endpoint. A caller-chosen ID must be unused.
func (w *Workspace) CreateEndpoint(ctx context.Context, e *endpoint.Endpoint) (*endpoint.Endpoint, error) {
	if e == nil {
		return nil, errors.New("endpoint is nil")
	}

	saved, err := w.endpoints.Insert(ctx, w.scope, e)
	if err != nil {
		return nil, err
	}
	w.log.Info("endpoint created", "id", saved.ID, "method", saved.Method, "path", saved.Path)
	w.publish(Event{Type: EventEndpointCreated, EndpointID: saved.ID, Endpoint: saved.Clone()})
	return saved, nil
}

// UpdateEndpoint replaces an existing endpoint.
func (w *Workspace) UpdateEndpoint(ctx context.Context, e *endpoint.Endpoint) (*endpoint.Endpoint, error) {
	if e == nil {
		return nil, errors.New("endpoint is nil")
	}

	saved, err := w.endpoints.Replace(ctx, w.scope, e)
	if err != nil {
		return nil, err
	}
	w.log.Info("endpoint updated", "id", saved.ID)
	w.publish(Event{Type: EventEndpointUpdated, EndpointID: saved.ID, Endpoint: saved.Clone()})
	return saved, nil
}

// SetEndpointEnabled toggles whether an endpoint is served.
func (w *Workspace) SetEndpointEnabled(ctx context.Context, id string, enabled bool) (*endpoint.Endpoint, error) {
	e, err := w.endpoints.FindByID(ctx, w.scope, id)
	if err != nil {
		return nil, fmt.Errorf("endpoint %s: %w", id, err)
	}
	e.Enabled = enabled
	return w.UpdateEndpoint(ctx, e)
}

// DeleteEndpoint removes an endpoint.
func (w *Workspace) DeleteEndpoint(ctx context.Context, id string) error {
	deleted, err := w.endpoints.Delete(ctx, w.scope, id)
	if err != nil {
		return err
	}
	if !deleted {
		return fmt.Errorf("endpoint %s: %w", id, store.ErrNotFound)
	}
	w.log.Info("endpoint deleted", "id", id)
	w.publish(Event{Type: EventEndpointDeleted, EndpointID: id})
	return nil
}

// Endpoint returns one endpoint.
func (w *Workspace) Endpoint(ctx context.Context, id string) (*endpoint.Endpoint, error) {
	return w.endpoints.FindByID(ctx, w.scope, id)
}

// Endpoints returns all endpoints, most recently modified first.
func (w *Workspace) Endpoints(ctx context.Context) ([]*endpoint.Endpoint, error) {
	return w.endpoints.FindAll(ctx, w.scope)
}

// ============================================================================
// Configuration
// ============================================================================

// Config returns the stored config, or the default.
func (w *Workspace) Config(ctx context.Context) config.Config {
	return w.configs.Load(ctx, w.scope)
}

// UpdateConfig stores cfg. If this workspace's server is running it is
// stopped and started again with the new config.
func (w *Workspace) UpdateConfig(ctx context.Context, cfg config.Config) error {
	if err := w.configs.Save(ctx, w.scope, cfg); err != nil {
		return err
	}

	w.lifecycleMu.Lock()
	defer w.lifecycleMu.Unlock()

	if !w.runningHere() {
		return nil
	}
	w.log.Info("config changed, restarting server")
	if err := w.stopLocked(); err != nil {
		return err
	}
	return w.startLocked(ctx)
}

// ============================================================================
// Server lifecycle
// ============================================================================

// Start runs the server with the stored config.
func (w *Workspace) Start(ctx context.Context) error {
	w.lifecycleMu.Lock()
	defer w.lifecycleMu.Unlock()
	return w.startLocked(ctx)
}

func (w *Workspace) startLocked(ctx context.Context) error {
	cfg := w.configs.Load(ctx, w.scope)
	if w.override != nil {
		var err error
		if cfg, err = w.override(cfg); err != nil {
			return err
		}
	}
	if err := w.server.Start(w.scope, cfg); err != nil {
		return err
	}
	w.publish(Event{Type: EventServerStarted, URL: w.server.ServerURL()})
	return nil
}

// Stop stops the server if it is serving this workspace.
func (w *Workspace) Stop() error {
	w.lifecycleMu.Lock()
	defer w.lifecycleMu.Unlock()

	if !w.runningHere() {
		return engine.ErrNotRunning
	}
	return w.stopLocked()
}

func (w *Workspace) stopLocked() error {
	if err := w.server.Stop(); err != nil {
		return err
	}
	w.publish(Event{Type: EventServerStopped})
	return nil
}

func (w *Workspace) runningHere() bool {
	return w.server.IsRunning() && w.server.Scope() == w.scope
}

// IsRunning reports whether the server is serving this workspace.
func (w *Workspace) IsRunning() bool {
	return w.runningHere()
}

// ServerURL returns the loopback URL, or "" when not running.
func (w *Workspace) ServerURL() string {
	if !w.runningHere() {
		return ""
	}
	return w.server.ServerURL()
}

// NetworkAddresses returns every reachable URL, or an empty list.
func (w *Workspace) NetworkAddresses() []string {
	if !w.runningHere() {
		return []string{}
	}
	return w.server.NetworkAddresses()
}

// Status summarizes the workspace.
func (w *Workspace) Status(ctx context.Context) (*StatusInfo, error) {
	list, err := w.Endpoints(ctx)
	if err != nil {
		return nil, err
	}
	info := &StatusInfo{
		Scope:         w.scope,
		Status:        engine.StateStopped.String(),
		EndpointCount: len(list),
		RequestCount:  w.history.Len(),
	}
	for _, e := range list {
		if e.Enabled {
			info.EnabledCount++
		}
	}
	if w.runningHere() {
		info.Status = w.server.State().String()
		info.Port = w.server.Port()
		info.URL = w.server.ServerURL()
		info.Addresses = w.server.NetworkAddresses()
	}
	return info, nil
}

// ============================================================================
// Request history
// ============================================================================

// History returns recorded requests, newest first.
func (w *Workspace) History() []*requestlog.Record {
	return w.history.All()
}

// Requests returns recorded requests matching filter, newest first.
func (w *Workspace) Requests(filter *requestlog.Filter) []*requestlog.Record {
	return w.history.List(filter)
}

// ClearHistory drops all recorded requests.
func (w *Workspace) ClearHistory() {
	w.history.Clear()
}

// ============================================================================
// Events
// ============================================================================

// Subscribe registers fn for workspace events and returns a function that
// removes it.
func (w *Workspace) Subscribe(fn EventListener) func() {
	w.subsMu.Lock()
	w.nextSub++
	id := w.nextSub
	w.subs = append(w.subs, subscription{id: id, fn: fn})
	w.subsMu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			w.subsMu.Lock()
			defer w.subsMu.Unlock()
			w.subs = slices.DeleteFunc(w.subs, func(s subscription) bool { return s.id == id })
		})
	}
}

func (w *Workspace) publish(ev Event) {
	ev.Scope = w.scope
	ev.Timestamp = time.Now()

	w.subsMu.RLock()
	subs := slices.Clone(w.subs)
	w.subsMu.RUnlock()

	for _, s := range subs {
		w.deliver(s, ev)
	}
}

func (w *Workspace) deliver(s subscription, ev Event) {
	defer func() {
		if r := recover(); r != nil {
			w.log.Error("event listener panicked", "event", ev.Type, "panic", r)
		}
	}()
	s.fn(ev)
}

// Close stops the server if it is serving this workspace and unregisters
// the request history.
func (w *Workspace) Close() error {
	w.lifecycleMu.Lock()
	defer w.lifecycleMu.Unlock()

	var err error
	if w.runningHere() {
		err = w.stopLocked()
	}
	w.server.RemoveRequestListener(w.historyID)
	return err
}
