package config

import (
	"errors"
	"fmt"
	"net"
	"strconv"
)

// Defaults for a scope without a stored config.
const (
	DefaultPort     = 8080
	DefaultHost     = "0.0.0.0"
	DefaultImageDir = "images"
)

// ErrInvalid is wrapped by every Validate failure.
var ErrInvalid = errors.New("invalid config")

// Config is the server configuration for one scope.
type Config struct {
	// Port to listen on. 0 binds an ephemeral port.
	Port int `json:"port" yaml:"port"`

	// Host is the bind address.
	Host string `json:"host" yaml:"host"`

	// ImageDir is the directory served under the static-asset prefix.
	ImageDir string `json:"imageDir" yaml:"imageDir"`

	// CORSEnabled emits CORS headers and answers preflights.
	CORSEnabled bool `json:"corsEnabled" yaml:"corsEnabled"`

	// LoggingEnabled records each dispatched request to request listeners.
	LoggingEnabled bool `json:"loggingEnabled" yaml:"loggingEnabled"`
}

// Default returns the configuration used when none is stored.
func Default() Config {
	return Config{
		Port:           DefaultPort,
		Host:           DefaultHost,
		ImageDir:       DefaultImageDir,
		CORSEnabled:    true,
		LoggingEnabled: true,
	}
}

// Validate checks the port range and that a host is set.
func (c Config) Validate() error {
	if c.Port < 0 || c.Port > 65535 {
		return fmt.Errorf("%w: port %d outside 0-65535", ErrInvalid, c.Port)
	}
	if c.Host == "" {
		return fmt.Errorf("%w: host is required", ErrInvalid)
	}
	return nil
}

// Addr returns host:port suitable for net.Listen.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
