package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/getmockd/mockhost/pkg/logging"
	"github.com/getmockd/mockhost/pkg/store"
)

// EnvDataDir overrides the default data directory.
const EnvDataDir = "MOCKHOST_DATA_DIR"

var (
	// Version is injected during build
	Version = "dev"
	// Commit is injected during build
	Commit = "none"
	// BuildDate is injected during build
	BuildDate = "unknown"
)

// app holds global flag values and resources opened for one invocation.
type app struct {
	stdout io.Writer
	stderr io.Writer

	dataDir    string
	scope      string
	backend    string
	format     string
	logLevel   string
	logFormat  string
	logFile    string
	envFile    string
	jsonOutput bool

	log     *slog.Logger
	closers []func() error
}

// NewRootCmd builds the command tree writing to stdout and stderr.
func NewRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := &app{stdout: stdout, stderr: stderr, log: logging.Nop()}

	root := &cobra.Command{
		Use:   "mockhost",
		Short: "mockhost serves mock HTTP endpoints in place of a real backend",
		Long: `mockhost serves developer-defined mock responses over HTTP.

Endpoints and server settings are stored per scope in the data directory
(default: ` + store.DefaultDataDir() + `, or $` + EnvDataDir + `).`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error { return a.setup(cmd) },
		PersistentPostRunE: func(*cobra.Command, []string) error {
			return a.close()
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.dataDir, "data-dir", "", "Data directory (default: $"+EnvDataDir+" or the XDG data dir)")
	flags.StringVar(&a.scope, "scope", store.DefaultScope, "Scope (project) to operate on")
	flags.StringVar(&a.backend, "backend", string(store.BackendFile), "Storage backend: file, sqlite or memory")
	flags.StringVar(&a.format, "format", string(store.FormatJSON), "Document format: json or yaml")
	flags.StringVar(&a.logLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flags.StringVar(&a.logFormat, "log-format", "text", "Log format: text or json")
	flags.StringVar(&a.logFile, "log-file", "", "Also write JSON logs to this file")
	flags.StringVar(&a.envFile, "env-file", "", "Load environment variables from a dotenv file")
	flags.BoolVar(&a.jsonOutput, "json", false, "Output command results in JSON format")

	root.AddCommand(
		newServeCmd(a),
		newEndpointCmd(a),
		newConfigCmd(a),
		newAddressesCmd(a),
		newVersionCmd(a),
	)
	return root
}

// Execute runs the CLI with os.Args and exits non-zero on error.
func Execute() {
	root := NewRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func (a *app) setup(cmd *cobra.Command) error {
	if a.envFile != "" {
		if err := godotenv.Load(a.envFile); err != nil {
			return fmt.Errorf("failed to load env file %s: %w", a.envFile, err)
		}
	}

	if !cmd.Flags().Changed("data-dir") {
		if dir := os.Getenv(EnvDataDir); dir != "" {
			a.dataDir = dir
		}
	}
	if a.dataDir == "" {
		a.dataDir = store.DefaultDataDir()
	}

	if err := store.ValidateScope(a.scope); err != nil {
		return err
	}

	cfg := logging.Config{
		Level:  logging.ParseLevel(a.logLevel),
		Format: logging.ParseFormat(a.logFormat),
		Output: a.stderr,
	}
	handler := logging.Handler(cfg)
	if a.logFile != "" {
		f, err := os.OpenFile(a.logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		a.closers = append(a.closers, f.Close)
		handler = logging.NewMultiHandler(handler, logging.Handler(logging.Config{
			Level:  cfg.Level,
			Format: logging.FormatJSON,
			Output: f,
		}))
	}
	a.log = slog.New(handler)
	return nil
}

// close releases resources in reverse order of opening.
func (a *app) close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}
