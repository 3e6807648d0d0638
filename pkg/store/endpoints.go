package store

import (
	"context"
	"errors"
	"fmt"
	"path"
	"slices"
	"sort"
	"sync"

	"github.com/getmockd/mockhost/pkg/endpoint"
)

// EndpointStore is the single source of truth for a scope's mock endpoints.
// Every call reads the document afresh; nothing is cached between calls.
type EndpointStore struct {
	provider Provider
	settings

	locksMu sync.Mutex
	locks   map[string]*sync.Mutex
}

// NewEndpointStore creates an EndpointStore over provider.
func NewEndpointStore(provider Provider, opts ...Option) *EndpointStore {
	return &EndpointStore{
		provider: provider,
		settings: newSettings(opts),
		locks:    make(map[string]*sync.Mutex),
	}
}

// DocumentPath returns the provider path of the scope's endpoint collection.
func (s *EndpointStore) DocumentPath(scope string) string {
	return path.Join(scope, "endpoints."+s.format.Extension())
}

// lock serializes read-modify-write cycles for one scope.
func (s *EndpointStore) lock(scope string) func() {
	s.locksMu.Lock()
	mu, ok := s.locks[scope]
	if !ok {
		mu = &sync.Mutex{}
		s.locks[scope] = mu
	}
	s.locksMu.Unlock()

	mu.Lock()
	return mu.Unlock
}

// Inspect reads the collection in storage order and reports what was found.
// A corrupt document yields an empty collection together with the decode error.
func (s *EndpointStore) Inspect(ctx context.Context, scope string) ([]*endpoint.Endpoint, LoadState, error) {
	if err := ValidateScope(scope); err != nil {
		return nil, LoadStateAbsent, err
	}
	docPath := s.DocumentPath(scope)
	data, ok, err := s.provider.Read(ctx, docPath)
	if err != nil {
		return nil, LoadStateAbsent, fmt.Errorf("read %s: %w", docPath, err)
	}

	var list []*endpoint.Endpoint
	state, err := decodeDocument(s.format, data, ok, &list)
	if state != LoadStateLoaded {
		return nil, state, err
	}
	return slices.DeleteFunc(list, func(e *endpoint.Endpoint) bool { return e == nil }), state, nil
}

// load is Inspect with corruption downgraded to a logged empty collection.
func (s *EndpointStore) load(ctx context.Context, scope string) ([]*endpoint.Endpoint, error) {
	list, state, err := s.Inspect(ctx, scope)
	if state == LoadStateCorrupt {
		s.log.Warn("endpoint document is corrupt, using empty collection",
			"scope", scope, "path", s.DocumentPath(scope), "error", err)
		return nil, nil
	}
	return list, err
}

func (s *EndpointStore) write(ctx context.Context, scope string, list []*endpoint.Endpoint) error {
	if list == nil {
		list = []*endpoint.Endpoint{}
	}
	data, err := s.format.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode endpoints: %w", err)
	}
	docPath := s.DocumentPath(scope)
	if err := s.provider.Write(ctx, docPath, data); err != nil {
		return fmt.Errorf("write %s: %w", docPath, err)
	}
	return nil
}

// saveMode selects which existing-ID cases a save accepts.
type saveMode int

const (
	saveUpsert saveMode = iota
	saveInsert
	saveReplace
)

// Save inserts e, or replaces the stored endpoint with the same ID.
// An empty ID is replaced by a generated one. Inserts stamp both timestamps;
// replacements keep CreatedAt and refresh UpdatedAt. The caller's value is
// not modified; the stored copy is returned.
func (s *EndpointStore) Save(ctx context.Context, scope string, e *endpoint.Endpoint) (*endpoint.Endpoint, error) {
	return s.save(ctx, scope, e, saveUpsert)
}

// Insert is Save that fails with ErrAlreadyExists when e's ID is taken.
func (s *EndpointStore) Insert(ctx context.Context, scope string, e *endpoint.Endpoint) (*endpoint.Endpoint, error) {
	return s.save(ctx, scope, e, saveInsert)
}

// Replace is Save that fails with ErrNotFound unless e's ID is stored.
func (s *EndpointStore) Replace(ctx context.Context, scope string, e *endpoint.Endpoint) (*endpoint.Endpoint, error) {
	if e != nil && e.ID == "" {
		return nil, fmt.Errorf("endpoint id is required: %w", ErrNotFound)
	}
	return s.save(ctx, scope, e, saveReplace)
}

func (s *EndpointStore) save(ctx context.Context, scope string, e *endpoint.Endpoint, mode saveMode) (*endpoint.Endpoint, error) {
	if err := ValidateScope(scope); err != nil {
		return nil, err
	}
	if e == nil {
		return nil, errors.New("endpoint is nil")
	}
	saved := e.Clone()
	saved.Normalize()
	if err := saved.Validate(); err != nil {
		return nil, err
	}

	unlock := s.lock(scope)
	defer unlock()

	list, err := s.load(ctx, scope)
	if err != nil {
		return nil, err
	}

	now := s.now()
	saved.Scope = scope
	saved.UpdatedAt = now
	if saved.ID == "" {
		saved.ID = s.newID()
	}

	idx := slices.IndexFunc(list, func(existing *endpoint.Endpoint) bool { return existing.ID == saved.ID })
	switch {
	case idx >= 0 && mode == saveInsert:
		return nil, fmt.Errorf("endpoint %s: %w", saved.ID, ErrAlreadyExists)
	case idx < 0 && mode == saveReplace:
		return nil, fmt.Errorf("endpoint %s: %w", saved.ID, ErrNotFound)
	}

	if idx >= 0 {
		saved.CreatedAt = list[idx].CreatedAt
		if saved.CreatedAt.IsZero() {
			saved.CreatedAt = now
		}
		list[idx] = saved
	} else {
		saved.CreatedAt = now
		list = append(list, saved)
	}

	if err := s.write(ctx, scope, list); err != nil {
		return nil, err
	}
	s.log.Debug("endpoint saved", "scope", scope, "id", saved.ID, "method", saved.Method, "path", saved.Path)
	return saved.Clone(), nil
}

// ValidateScope reports whether scope can be stored. It lets the dispatch
// server reject an unusable scope at start.
func (s *EndpointStore) ValidateScope(scope string) error {
	return ValidateScope(scope)
}

// Delete removes the endpoint with id. It reports false when none exists.
func (s *EndpointStore) Delete(ctx context.Context, scope, id string) (bool, error) {
	if err := ValidateScope(scope); err != nil {
		return false, err
	}

	unlock := s.lock(scope)
	defer unlock()

	list, err := s.load(ctx, scope)
	if err != nil {
		return false, err
	}
	idx := slices.IndexFunc(list, func(e *endpoint.Endpoint) bool { return e.ID == id })
	if idx < 0 {
		return false, nil
	}
	list = slices.Delete(list, idx, idx+1)
	if err := s.write(ctx, scope, list); err != nil {
		return false, err
	}
	s.log.Debug("endpoint deleted", "scope", scope, "id", id)
	return true, nil
}

// FindByID returns the endpoint with id, or ErrNotFound.
func (s *EndpointStore) FindByID(ctx context.Context, scope, id string) (*endpoint.Endpoint, error) {
	list, err := s.load(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, e := range list {
		if e.ID == id {
			return e, nil
		}
	}
	return nil, ErrNotFound
}

// FindAll returns every endpoint, most recently modified first.
// Endpoints with equal timestamps keep the later-stored one first.
func (s *EndpointStore) FindAll(ctx context.Context, scope string) ([]*endpoint.Endpoint, error) {
	list, err := s.load(ctx, scope)
	if err != nil {
		return nil, err
	}
	slices.Reverse(list)
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].UpdatedAt.After(list[j].UpdatedAt)
	})
	if list == nil {
		list = []*endpoint.Endpoint{}
	}
	return list, nil
}

// FindByPathAndMethod returns the first endpoint in FindAll order whose path
// equals path exactly and whose method equals method ignoring case.
// Enabled state is not considered.
func (s *EndpointStore) FindByPathAndMethod(ctx context.Context, scope, path, method string) (*endpoint.Endpoint, error) {
	list, err := s.FindAll(ctx, scope)
	if err != nil {
		return nil, err
	}
	for _, e := range list {
		if e.Matches(method, path) {
			return e, nil
		}
	}
	return nil, ErrNotFound
}
