// Command netcfgbu is the CLI entry point for the concurrent SSH
// configuration backup tool (spec.md §6). All behavior lives in
// internal/cli and the packages it assembles; main only wires up
// cancellation on SIGINT/SIGTERM (spec.md §5 "Cancellation") and maps the
// final error to an exit code.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/netcfgbu/netcfgbu-go/internal/cli"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cli.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "netcfgbu:", err)
		os.Exit(1)
	}
}
