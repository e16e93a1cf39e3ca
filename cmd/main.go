package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// main is the entry point of the campaign service. The serve command runs
// the HTTP API; migrate and seed prepare the configured store.
func main() {
	rootCmd := &cobra.Command{
		Use:           "ad-campaigns",
		Short:         "Ad campaign lifecycle and metrics service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.AddCommand(
		serveCommand(),
		migrateCommand(),
		seedCommand(),
	)

	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
