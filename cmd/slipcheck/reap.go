package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/scheduler"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/service"
)

var reapCmd = &cobra.Command{
	Use:   "reap",
	Short: "Fail runs stuck in the running state",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		repo, closeStore, err := openRunStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		svc := service.NewRunService(repo, nil, service.WithLogger(log))
		n, err := scheduler.NewScheduler(svc, cfg.StaleAfter(), log).RunOnce(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "reaped %d stale run(s)\n", n)
		return nil
	},
}
