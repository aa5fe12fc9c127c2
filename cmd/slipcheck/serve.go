package main

import (
	"context"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Csp-Ai/ResearchBets-sub001/internal/api"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/health"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/metrics"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/scheduler"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/service"
	"github.com/Csp-Ai/ResearchBets-sub001/internal/stream"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, run stream and stale-run reaper",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		repo, closeStore, err := openRunStore(ctx, cfg, log)
		if err != nil {
			return err
		}
		defer closeStore()

		metricsPath := ""
		if cfg.Metrics.Enabled {
			metrics.InitRegistry()
			metricsPath = cfg.Metrics.Path
		}

		hub := stream.NewHub(log, cfg.Server.AllowedOrigins)
		defer hub.Close()

		enricher, injuryClient := buildEnricher(cfg, log)
		svc := service.NewRunService(
			repo,
			enricher,
			service.WithPublisher(hub),
			service.WithLogger(log),
			service.WithPanicOnInvariant(cfg.Debug.PanicOnInvariant),
		)

		checks := []health.Check{health.StoreCheck(cfg.Storage.Backend, repo)}
		if injuryClient != nil {
			checks = append(checks, health.BreakerCheck("injuries", injuryClient))
		}
		healthServer := health.NewServer(health.Config{
			ServiceName: cfg.App.Name,
			Version:     Version,
			Commit:      GitCommit,
			Addr:        ":" + strconv.Itoa(cfg.Server.HealthPort),
			Checks:      checks,
			Logger:      log,
		})
		if err := healthServer.Start(ctx); err != nil {
			return err
		}

		if cfg.Scheduler.Enabled {
			sched := scheduler.NewScheduler(svc, cfg.StaleAfter(), log)
			if err := sched.ScheduleReaper(cfg.Scheduler.ReaperCron); err != nil {
				return err
			}
			if err := sched.Start(); err != nil {
				return err
			}
			defer sched.Stop()
		}

		server := api.NewServer(cfg.Server, api.NewRouter(svc, hub, api.RouterOptions{
			AllowedOrigins: cfg.Server.AllowedOrigins,
			RequestTimeout: cfg.RequestTimeout(),
			MetricsPath:    metricsPath,
			Logger:         log,
		}), log)

		errCh := make(chan error, 1)
		go func() { errCh <- server.Start() }()
		healthServer.SetReady(true)

		select {
		case err := <-errCh:
			return err
		case <-ctx.Done():
		}

		log.Info("Shutting down")
		healthServer.SetReady(false)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	},
}
