package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/spf13/cobra"

	"github.com/workstream-hr/workstream/modules/workflow/infrastructure/persistence"
	"github.com/workstream-hr/workstream/modules/workflow/services"
	"github.com/workstream-hr/workstream/pkg/composables"
	"github.com/workstream-hr/workstream/pkg/configuration"
)

func newSweepCmd() *cobra.Command {
	var window string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Remove duplicate workflow records across all tenants",
		RunE: func(cmd *cobra.Command, args []string) error {
			if window != "" {
				opts := configuration.WorkflowOptions{DedupWindow: window}
				if err := opts.Validate(); err != nil {
					return err
				}
			}
			conf := configuration.Use()
			if window == "" {
				window = conf.Workflow.DedupWindow
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			pool, err := pgxpool.New(ctx, conf.Database.Opts)
			if err != nil {
				return fmt.Errorf("connect database: %w", err)
			}
			defer pool.Close()

			sweeper := services.NewDedupSweeper(
				persistence.NewWorkflowRepository(),
				window,
				conf.Logger(),
			)
			started := time.Now()
			report, err := sweeper.Run(composables.WithPool(ctx, pool))
			if err != nil {
				return err
			}

			out, _ := json.Marshal(map[string]any{
				"command":     "sweep",
				"duration_ms": time.Since(started).Milliseconds(),
				"result":      report,
				"deleted":     report.Total(),
			})
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
	cmd.Flags().StringVar(&window, "window", "", "dedup window for transfers (calendar-day or none)")
	return cmd
}
