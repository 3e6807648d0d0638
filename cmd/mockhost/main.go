// mockhost CLI - serves mock HTTP endpoints in place of a real backend
package main

import "github.com/getmockd/mockhost/pkg/cli"

func main() {
	cli.Execute()
}
