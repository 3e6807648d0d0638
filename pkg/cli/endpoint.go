package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/getmockd/mockhost/pkg/endpoint"
)

func newEndpointCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "endpoint",
		Aliases: []string{"endpoints", "ep"},
		Short:   "Manage mock endpoints",
	}
	cmd.AddCommand(
		newEndpointAddCmd(a),
		newEndpointListCmd(a),
		newEndpointGetCmd(a),
		newEndpointDeleteCmd(a),
		newEndpointToggleCmd(a, "enable", true),
		newEndpointToggleCmd(a, "disable", false),
	)
	return cmd
}

type addOptions struct {
	id          string
	name        string
	method      string
	path        string
	status      int
	body        string
	bodyFile    string
	headers     []string
	delayMs     int
	description string
	disabled    bool
}

func newEndpointAddCmd(a *app) *cobra.Command {
	opts := &addOptions{}
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Add a mock endpoint",
		Example: `  mockhost endpoint add --method POST --path /api/users --status 201 --body '{"id":1}'
  mockhost endpoint add --path /health -H "Content-Type: text/plain" --body ok`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			e, err := opts.build()
			if err != nil {
				return err
			}
			s, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			created, err := s.ws.CreateEndpoint(cmd.Context(), e)
			if err != nil {
				return err
			}
			return a.printResult(created, func(w io.Writer) {
				fmt.Fprintf(w, "Created endpoint %s: %s %s -> %d\n", created.ID, created.Method, created.Path, created.StatusCode)
			})
		},
	}
	f := cmd.Flags()
	f.StringVar(&opts.id, "id", "", "Endpoint ID (generated if empty)")
	f.StringVarP(&opts.name, "name", "n", "", "Display name")
	f.StringVarP(&opts.method, "method", "m", endpoint.MethodGet, "HTTP method")
	f.StringVar(&opts.path, "path", "", "Exact request path, e.g. /api/users")
	f.IntVarP(&opts.status, "status", "s", 200, "Response status code")
	f.StringVarP(&opts.body, "body", "b", "", "Response body")
	f.StringVar(&opts.bodyFile, "body-file", "", "Read the response body from a file")
	f.StringArrayVarP(&opts.headers, "header", "H", nil, `Response header "Name: value" (repeatable)`)
	f.IntVar(&opts.delayMs, "delay", 0, "Response delay in milliseconds")
	f.StringVar(&opts.description, "description", "", "Description")
	f.BoolVar(&opts.disabled, "disabled", false, "Create the endpoint disabled")
	_ = cmd.MarkFlagRequired("path")
	return cmd
}

func (o *addOptions) build() (*endpoint.Endpoint, error) {
	body := o.body
	if o.bodyFile != "" {
		if body != "" {
			return nil, fmt.Errorf("--body and --body-file are mutually exclusive")
		}
		data, err := os.ReadFile(o.bodyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read body file: %w", err)
		}
		body = string(data)
	}

	headers, err := parseHeaders(o.headers)
	if err != nil {
		return nil, err
	}

	return &endpoint.Endpoint{
		ID:           o.id,
		Name:         o.name,
		Path:         o.path,
		Method:       o.method,
		StatusCode:   o.status,
		ResponseBody: body,
		Headers:      headers,
		DelayMs:      o.delayMs,
		Enabled:      !o.disabled,
		Description:  o.description,
	}, nil
}

// parseHeaders parses "Name: value" or "Name=value" pairs.
func parseHeaders(raw []string) (map[string]string, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	headers := make(map[string]string, len(raw))
	for _, h := range raw {
		name, value, ok := strings.Cut(h, ":")
		if !ok {
			name, value, ok = strings.Cut(h, "=")
		}
		name = strings.TrimSpace(name)
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid header %q (want \"Name: value\")", h)
		}
		headers[name] = strings.TrimSpace(value)
	}
	return headers, nil
}

func newEndpointListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List endpoints, most recently modified first",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			s, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			list, err := s.ws.Endpoints(cmd.Context())
			if err != nil {
				return err
			}
			return a.printResult(list, func(w io.Writer) {
				printEndpointTable(w, list)
			})
		},
	}
}

func newEndpointGetCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			e, err := s.ws.Endpoint(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("endpoint %s: %w", args[0], err)
			}
			if a.jsonOutput {
				return writeJSON(a.stdout, e)
			}
			data, err := yaml.Marshal(e)
			if err != nil {
				return err
			}
			_, err = a.stdout.Write(data)
			return err
		},
	}
}

func newEndpointDeleteCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "delete <id>",
		Aliases: []string{"rm"},
		Short:   "Delete an endpoint",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			if err := s.ws.DeleteEndpoint(cmd.Context(), args[0]); err != nil {
				return err
			}
			return a.printResult(map[string]any{"id": args[0], "deleted": true}, func(w io.Writer) {
				fmt.Fprintf(w, "Deleted endpoint %s\n", args[0])
			})
		},
	}
}

func newEndpointToggleCmd(a *app, use string, enabled bool) *cobra.Command {
	return &cobra.Command{
		Use:   use + " <id>",
		Short: strings.ToUpper(use[:1]) + use[1:] + " an endpoint",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			s, err := a.openSession(cmd.Context())
			if err != nil {
				return err
			}
			e, err := s.ws.SetEndpointEnabled(cmd.Context(), args[0], enabled)
			if err != nil {
				return err
			}
			return a.printResult(e, func(w io.Writer) {
				fmt.Fprintf(w, "Endpoint %s %sd\n", e.ID, use)
			})
		},
	}
}
