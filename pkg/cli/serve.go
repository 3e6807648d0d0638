package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/getmockd/mockhost/pkg/config"
	"github.com/getmockd/mockhost/pkg/netaddr"
	"github.com/getmockd/mockhost/pkg/workspace"
)

// autoPortAttempts bounds the --auto-port search.
const autoPortAttempts = 100

type serveOptions struct {
	port     int
	host     string
	autoPort bool
	quiet    bool
}

func newServeCmd(a *app) *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the mock server for the scope",
		Long: `Start the mock server with the scope's stored config and serve its
endpoints until interrupted.

MOCKHOST_PORT, MOCKHOST_HOST, MOCKHOST_IMAGE_DIR, MOCKHOST_CORS and
MOCKHOST_LOGGING override the stored config; --port and --host override both.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return a.runServe(cmd, opts)
		},
	}
	cmd.Flags().IntVarP(&opts.port, "port", "p", 0, "Port to listen on (overrides stored config)")
	cmd.Flags().StringVar(&opts.host, "host", "", "Host to bind (overrides stored config)")
	cmd.Flags().BoolVar(&opts.autoPort, "auto-port", false, "Pick the next free port if the configured one is taken")
	cmd.Flags().BoolVarP(&opts.quiet, "quiet", "q", false, "Do not print handled requests")
	return cmd
}

func (a *app) runServe(cmd *cobra.Command, opts *serveOptions) error {
	portSet := cmd.Flags().Changed("port")
	override := func(cfg config.Config) (config.Config, error) {
		cfg, err := config.ApplyEnv(cfg, os.LookupEnv)
		if err != nil {
			return cfg, err
		}
		if portSet {
			cfg.Port = opts.port
		}
		if opts.host != "" {
			cfg.Host = opts.host
		}
		if opts.autoPort && cfg.Port != 0 && !netaddr.IsAddrAvailable(cfg.Host, cfg.Port) {
			port, err := netaddr.FindAvailablePort(cfg.Port+1, autoPortAttempts)
			if err != nil {
				return cfg, err
			}
			a.log.Warn("configured port is busy, using next free port", "configured", cfg.Port, "port", port)
			cfg.Port = port
		}
		return cfg, cfg.Validate()
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	s, err := a.openSession(ctx, workspace.WithConfigOverride(override))
	if err != nil {
		return err
	}
	if !opts.quiet {
		s.server.AddRequestListener(&requestPrinter{w: a.stdout})
	}

	if err := s.ws.Start(ctx); err != nil {
		return err
	}

	list, err := s.ws.Endpoints(ctx)
	if err != nil {
		return err
	}
	active, _ := s.server.Config()
	fmt.Fprintf(a.stdout, "Serving scope %q (%d endpoint(s)) on %s\n", a.scope, len(list), active.Addr())
	for _, addr := range s.ws.NetworkAddresses() {
		fmt.Fprintf(a.stdout, "  %s\n", urlColor.Sprint(addr))
	}
	fmt.Fprintln(a.stdout, "Press Ctrl+C to stop")

	<-ctx.Done()
	fmt.Fprintln(a.stdout, "Shutting down...")
	return s.ws.Stop()
}
