package main

import (
	"github.com/spf13/cobra"
)

func buildRunCmd() *cobra.Command {
	var (
		file    string
		verbose bool
	)
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run an experiment file and stream NDJSON events to stdout",
		Long: `Run an experiment described in a YAML or JSON file.

The file uses the same shape as POST /experiments/run. Every progress event
is written to stdout as one JSON line; logs go to stderr.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExperimentCmd(cmd, file, verbose)
		},
	}
	cmd.Flags().StringVarP(&file, "file", "f", "", "Experiment file (.yaml, .yml or .json)")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Log at debug level")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func buildTokenCmd() *cobra.Command {
	var clientID string
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Mint an API access token (requires JWT_SECRET)",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTokenCmd(cmd, clientID)
		},
	}
	cmd.Flags().StringVar(&clientID, "client", "", "Client identifier embedded in the token")
	_ = cmd.MarkFlagRequired("client")
	return cmd
}
