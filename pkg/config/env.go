package config

import (
	"fmt"
	"strconv"
)

// Environment variables read by ApplyEnv.
const (
	EnvPort     = "MOCKHOST_PORT"
	EnvHost     = "MOCKHOST_HOST"
	EnvImageDir = "MOCKHOST_IMAGE_DIR"
	EnvCORS     = "MOCKHOST_CORS"
	EnvLogging  = "MOCKHOST_LOGGING"
)

// LookupFunc matches os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ApplyEnv overlays MOCKHOST_* variables onto base. Unset or empty variables
// leave the field alone; malformed values are reported.
func ApplyEnv(base Config, lookup LookupFunc) (Config, error) {
	cfg := base

	if v, ok := lookup(EnvPort); ok && v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return base, fmt.Errorf("%s: %w", EnvPort, err)
		}
		cfg.Port = port
	}
	if v, ok := lookup(EnvHost); ok && v != "" {
		cfg.Host = v
	}
	if v, ok := lookup(EnvImageDir); ok && v != "" {
		cfg.ImageDir = v
	}
	if v, ok := lookup(EnvCORS); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return base, fmt.Errorf("%s: %w", EnvCORS, err)
		}
		cfg.CORSEnabled = b
	}
	if v, ok := lookup(EnvLogging); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return base, fmt.Errorf("%s: %w", EnvLogging, err)
		}
		cfg.LoggingEnabled = b
	}

	if err := cfg.Validate(); err != nil {
		return base, err
	}
	return cfg, nil
}
