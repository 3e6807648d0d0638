package cli

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/getmockd/mockhost/pkg/config"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the scope's server config",
	}
	cmd.AddCommand(newConfigShowCmd(a), newConfigSetCmd(a))
	return cmd
}

type configView struct {
	config.Config
	Source string `json:"source"`
	Error  string `json:"error,omitempty"`
}

func newConfigShowCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show the stored config (defaults when none is stored)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			cfg, state, loadErr := s.configs.Inspect(cmd.Context(), a.scope)
			view := configView{Config: cfg, Source: state.String()}
			if loadErr != nil {
				view.Error = loadErr.Error()
			}
			return a.printResult(view, func(w io.Writer) {
				t := newTable(w)
				t.AppendHeader(table.Row{"Key", "Value"})
				t.AppendRow(table.Row{"port", cfg.Port})
				t.AppendRow(table.Row{"host", cfg.Host})
				t.AppendRow(table.Row{"imageDir", cfg.ImageDir})
				t.AppendRow(table.Row{"cors", cfg.CORSEnabled})
				t.AppendRow(table.Row{"logging", cfg.LoggingEnabled})
				t.Render()
				fmt.Fprintf(w, "source: %s\n", state)
				if loadErr != nil {
					fmt.Fprintf(w, "warning: %v\n", loadErr)
				}
			})
		},
	}
}

func newConfigSetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "set <key=value>...",
		Short: "Change config values (port, host, imageDir, cors, logging)",
		Example: `  mockhost config set port=3000 cors=false
  mockhost config set imageDir=./assets`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			cfg := s.ws.Config(cmd.Context())
			for _, arg := range args {
				if cfg, err = applySetting(cfg, arg); err != nil {
					return err
				}
			}
			if err := s.ws.UpdateConfig(cmd.Context(), cfg); err != nil {
				return err
			}
			return a.printResult(cfg, func(w io.Writer) {
				fmt.Fprintf(w, "Updated config for scope %q\n", a.scope)
			})
		},
	}
}

// applySetting applies one key=value pair to cfg.
func applySetting(cfg config.Config, kv string) (config.Config, error) {
	key, value, ok := strings.Cut(kv, "=")
	if !ok {
		return cfg, fmt.Errorf("invalid setting %q (want key=value)", kv)
	}
	switch strings.ToLower(strings.TrimSpace(key)) {
	case "port":
		port, err := strconv.Atoi(value)
		if err != nil {
			return cfg, fmt.Errorf("port: %w", err)
		}
		cfg.Port = port
	case "host":
		cfg.Host = value
	case "imagedir", "image-dir":
		cfg.ImageDir = value
	case "cors", "corsenabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return cfg, fmt.Errorf("cors: %w", err)
		}
		cfg.CORSEnabled = b
	case "logging", "loggingenabled":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return cfg, fmt.Errorf("logging: %w", err)
		}
		cfg.LoggingEnabled = b
	default:
		return cfg, fmt.Errorf("unknown config key %q", key)
	}
	return cfg, nil
}
