// Package config defines the per-scope server configuration.
//
// A Config is persisted whole per scope by store.ConfigStore. Missing or
// unreadable documents fall back to Default. Process-level overrides come
// from MOCKHOST_* environment variables via ApplyEnv.
package config
