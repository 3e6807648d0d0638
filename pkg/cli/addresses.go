package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/getmockd/mockhost/pkg/netaddr"
)

func newAddressesCmd(a *app) *cobra.Command {
	var port int
	cmd := &cobra.Command{
		Use:   "addresses",
		Short: "List the URLs the server is reachable at (loopback first)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !cmd.Flags().Changed("port") {
				s, err := a.openSession(cmd.Context())
				if err != nil {
					return err
				}
				port = s.ws.Config(cmd.Context()).Port
			}
			addrs := netaddr.NewResolver().AllAccessibleAddresses(port)
			return a.printResult(addrs, func(w io.Writer) {
				for _, addr := range addrs {
					fmt.Fprintln(w, addr)
				}
			})
		},
	}
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port (default: the scope's configured port)")
	return cmd
}
