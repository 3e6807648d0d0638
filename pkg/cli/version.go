package cli

import (
	"fmt"
	"io"
	"runtime"

	"github.com/spf13/cobra"
)

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			info := map[string]string{
				"version":   Version,
				"commit":    Commit,
				"buildDate": BuildDate,
				"go":        runtime.Version(),
			}
			return a.printResult(info, func(w io.Writer) {
				fmt.Fprintf(w, "mockhost %s (commit %s, built %s, %s)\n", Version, Commit, BuildDate, runtime.Version())
			})
		},
	}
}
