package store

import (
	"context"
	"fmt"
	"path"

	"github.com/getmockd/mockhost/pkg/config"
)

// ConfigStore persists one config.Config per scope.
type ConfigStore struct {
	provider Provider
	settings
}

// NewConfigStore creates a ConfigStore over provider.
func NewConfigStore(provider Provider, opts ...Option) *ConfigStore {
	return &ConfigStore{provider: provider, settings: newSettings(opts)}
}

// DocumentPath returns the provider path of the scope's config.
func (s *ConfigStore) DocumentPath(scope string) string {
	return path.Join(scope, "config."+s.format.Extension())
}

// Save overwrites the scope's config.
func (s *ConfigStore) Save(ctx context.Context, scope string, cfg config.Config) error {
	if err := ValidateScope(scope); err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	data, err := s.format.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	docPath := s.DocumentPath(scope)
	if err := s.provider.Write(ctx, docPath, data); err != nil {
		return fmt.Errorf("write %s: %w", docPath, err)
	}
	return nil
}

// Inspect reads the scope's config and reports what was found. The returned
// config is always usable: fields missing from the document keep their
// defaults, and anything other than LoadStateLoaded yields config.Default().
// A document that decodes but fails validation is reported as corrupt.
func (s *ConfigStore) Inspect(ctx context.Context, scope string) (config.Config, LoadState, error) {
	if err := ValidateScope(scope); err != nil {
		return config.Default(), LoadStateAbsent, err
	}
	docPath := s.DocumentPath(scope)
	data, ok, err := s.provider.Read(ctx, docPath)
	if err != nil {
		return config.Default(), LoadStateAbsent, fmt.Errorf("read %s: %w", docPath, err)
	}

	cfg := config.Default()
	state, err := decodeDocument(s.format, data, ok, &cfg)
	if state != LoadStateLoaded {
		return config.Default(), state, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Default(), LoadStateCorrupt, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return cfg, LoadStateLoaded, nil
}

// Load returns the scope's config, or config.Default() when it is missing,
// corrupt or unreadable. Failures are logged, never returned.
func (s *ConfigStore) Load(ctx context.Context, scope string) config.Config {
	cfg, state, err := s.Inspect(ctx, scope)
	switch {
	case err != nil && state == LoadStateCorrupt:
		s.log.Warn("config document is corrupt, using defaults",
			"scope", scope, "path", s.DocumentPath(scope), "error", err)
	case err != nil:
		s.log.Error("failed to read config, using defaults", "scope", scope, "error", err)
	case state == LoadStateAbsent:
		s.log.Debug("no stored config, using defaults", "scope", scope)
	}
	return cfg
}
