// Command audience corre experimentos de audiencia sintetica desde la terminal.
//
//	audience run -f experiment.yaml > events.ndjson
//	audience token --client dashboard
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := buildRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:          "audience",
		Short:        "Run synthetic audience experiments",
		SilenceUsage: true,
	}
	rootCmd.AddCommand(
		buildRunCmd(),
		buildTokenCmd(),
	)
	return rootCmd
}
