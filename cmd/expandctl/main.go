// expandctl controls a running expandd daemon over its Unix control socket.
package main

import (
	"os"

	"expandd/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
