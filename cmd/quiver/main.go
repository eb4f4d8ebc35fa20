// Package main implements the quiver CLI, the host surface over the
// collection tree and request resolution engine.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	// Version is set at build time
	version = "0.3.0"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quiver",
		Short: "Quiver - local-first API request collections",
		Long: `Quiver stores reusable HTTP request definitions in a collection tree,
with environment-scoped variables and per-collection overrides for base
URL, shared headers, and shared auth. The resolve command computes the
exact request that would go over the wire.`,
		Version:      version,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringP("output", "o", "", "Output format: json, yaml, or text")

	cmd.AddCommand(newCollectionCmd())
	cmd.AddCommand(newEnvCmd())
	cmd.AddCommand(newRequestCmd())
	cmd.AddCommand(newResolveCmd())
	cmd.AddCommand(newAuthCmd())

	return cmd
}
