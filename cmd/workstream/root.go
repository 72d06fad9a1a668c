package main

import (
	"os"

	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workstream",
		Short: "Operational tooling for the workstream HR server",
	}
	cmd.AddCommand(newMigrateCmd())
	cmd.AddCommand(newSweepCmd())
	return cmd
}

func execute() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
