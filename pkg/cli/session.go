package cli

import (
	"context"
	"fmt"

	"github.com/getmockd/mockhost/pkg/engine"
	"github.com/getmockd/mockhost/pkg/store"
	"github.com/getmockd/mockhost/pkg/store/file"
	"github.com/getmockd/mockhost/pkg/store/sqlite"
	"github.com/getmockd/mockhost/pkg/workspace"
)

// session is the storage and server stack for one scope.
type session struct {
	endpoints *store.EndpointStore
	configs   *store.ConfigStore
	server    *engine.Server
	ws        *workspace.Workspace
}

func (a *app) openProvider(ctx context.Context) (store.Provider, error) {
	backend, err := store.ParseBackend(a.backend)
	if err != nil {
		return nil, err
	}
	switch backend {
	case store.BackendSQLite:
		p, err := sqlite.OpenDir(ctx, a.dataDir)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, p.Close)
		return p, nil
	case store.BackendMemory:
		return store.NewMemoryProvider(), nil
	default:
		return file.New(a.dataDir), nil
	}
}

func (a *app) openSession(ctx context.Context, opts ...workspace.Option) (*session, error) {
	format, err := store.ParseFormat(a.format)
	if err != nil {
		return nil, err
	}
	provider, err := a.openProvider(ctx)
	if err != nil {
		return nil, err
	}

	storeOpts := []store.Option{store.WithFormat(format), store.WithLogger(a.log)}
	s := &session{
		endpoints: store.NewEndpointStore(provider, storeOpts...),
		configs:   store.NewConfigStore(provider, storeOpts...),
	}
	s.server = engine.NewServer(s.endpoints, engine.WithLogger(a.log))

	opts = append([]workspace.Option{workspace.WithLogger(a.log)}, opts...)
	s.ws, err = workspace.New(a.scope, s.endpoints, s.configs, s.server, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to open scope %s: %w", a.scope, err)
	}
	a.closers = append(a.closers, s.ws.Close)

	a.log.Debug("session opened", "scope", a.scope, "backend", a.backend, "format", format, "dataDir", a.dataDir)
	return s, nil
}
