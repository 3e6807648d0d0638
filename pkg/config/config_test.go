package config

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func envMap(m map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := m[key]
		return v, ok
	}
}

func TestDefault(t *testing.T) {
	cfg := Default()
	assert.Equal(t, DefaultPort, cfg.Port)
	assert.Equal(t, DefaultHost, cfg.Host)
	assert.Equal(t, DefaultImageDir, cfg.ImageDir)
	assert.True(t, cfg.CORSEnabled)
	assert.True(t, cfg.LoggingEnabled)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{"default", func(c *Config) {}, false},
		{"ephemeral port", func(c *Config) { c.Port = 0 }, false},
		{"max port", func(c *Config) { c.Port = 65535 }, false},
		{"negative port", func(c *Config) { c.Port = -1 }, true},
		{"port too large", func(c *Config) { c.Port = 65536 }, true},
		{"empty host", func(c *Config) { c.Host = "" }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalid))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestAddr(t *testing.T) {
	cfg := Config{Host: "127.0.0.1", Port: 9000}
	assert.Equal(t, "127.0.0.1:9000", cfg.Addr())

	cfg.Host = "::1"
	assert.Equal(t, "[::1]:9000", cfg.Addr())
}

func TestApplyEnv(t *testing.T) {
	t.Run("no variables leaves base", func(t *testing.T) {
		cfg, err := ApplyEnv(Default(), envMap(nil))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("overrides every field", func(t *testing.T) {
		cfg, err := ApplyEnv(Default(), envMap(map[string]string{
			EnvPort:     "9191",
			EnvHost:     "127.0.0.1",
			EnvImageDir: "/tmp/img",
			EnvCORS:     "false",
			EnvLogging:  "0",
		}))
		require.NoError(t, err)
		assert.Equal(t, Config{Port: 9191, Host: "127.0.0.1", ImageDir: "/tmp/img"}, cfg)
	})

	t.Run("empty values ignored", func(t *testing.T) {
		cfg, err := ApplyEnv(Default(), envMap(map[string]string{EnvPort: "", EnvHost: ""}))
		require.NoError(t, err)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("malformed port", func(t *testing.T) {
		cfg, err := ApplyEnv(Default(), envMap(map[string]string{EnvPort: "http"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvPort)
		assert.Equal(t, Default(), cfg)
	})

	t.Run("out of range port", func(t *testing.T) {
		_, err := ApplyEnv(Default(), envMap(map[string]string{EnvPort: "70000"}))
		assert.True(t, errors.Is(err, ErrInvalid))
	})

	t.Run("malformed bool", func(t *testing.T) {
		_, err := ApplyEnv(Default(), envMap(map[string]string{EnvCORS: "maybe"}))
		require.Error(t, err)
		assert.Contains(t, err.Error(), EnvCORS)
	})
}
