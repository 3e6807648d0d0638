package store

import (
	"context"
	"maps"
	"slices"
	"sync"
)

// Provider reads and writes whole documents addressed by slash-separated paths.
// Write must replace the document atomically so readers never see a torn value.
type Provider interface {
	// Read returns the document and true, or false when it does not exist.
	Read(ctx context.Context, path string) ([]byte, bool, error)

	// Write replaces the document.
	Write(ctx context.Context, path string, data []byte) error
}

// MemoryProvider is an in-process Provider.
type MemoryProvider struct {
	mu   sync.RWMutex
	docs map[string][]byte
}

// NewMemoryProvider creates an empty MemoryProvider.
func NewMemoryProvider() *MemoryProvider {
	return &MemoryProvider{docs: make(map[string][]byte)}
}

// Read implements Provider.
func (p *MemoryProvider) Read(ctx context.Context, path string) ([]byte, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	p.mu.RLock()
	defer p.mu.RUnlock()
	data, ok := p.docs[path]
	if !ok {
		return nil, false, nil
	}
	return slices.Clone(data), true, nil
}

// Write implements Provider.
func (p *MemoryProvider) Write(ctx context.Context, path string, data []byte) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.docs[path] = slices.Clone(data)
	return nil
}

// Paths returns the stored document paths, sorted.
func (p *MemoryProvider) Paths() []string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return slices.Sorted(maps.Keys(p.docs))
}
