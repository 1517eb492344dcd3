package cli

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"pickupwatch/pkg/handlers"
	"pickupwatch/pkg/logger"
	"pickupwatch/pkg/scheduler"
	"pickupwatch/pkg/server"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

func newWatchCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Check availability on the configured schedule until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.loadConfig()
			if err != nil {
				return err
			}

			a, err := newApp(cfg, cmd.OutOrStdout(), cfg.Watch.NotifyOnce)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			return a.watch(ctx)
		},
	}
}

// watch schedules the check, runs it once right away and blocks until ctx
// is done or the status server fails. It returns only after the first check
// has finished.
func (a *app) watch(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	ts := scheduler.NewTaskScheduler(gctx, &scheduler.Config{
		Timeout: time.Duration(a.cfg.Watch.CheckTimeout) * time.Second,
	})

	job, err := ts.AddJob("availability-check", a.cfg.Watch.Schedule, func(ctx context.Context) error {
		_, err := a.checker.Run(ctx, a.selection)
		return err
	})
	if err != nil {
		return err
	}

	if a.cfg.Server.Enabled {
		svc := handlers.NewHandlerService(a.cfg, a.checker)
		svc.SetScheduler(ts)
		svc.SetMetrics(a.metrics.Handler())
		srv := server.NewHTTPServer(a.cfg.Server, svc, a.cfg.App.IsDevelopment())

		g.Go(srv.Start)
		g.Go(func() error {
			<-gctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		})
	}

	var initial sync.WaitGroup
	initial.Add(1)
	go func() {
		defer initial.Done()
		if err := ts.TriggerJob(job.ID); err != nil {
			logger.Error("Initial check could not start", zap.Error(err))
		}
	}()

	logger.Info("Watching pickup availability",
		zap.String("country", a.selection.CountryName),
		zap.String("zip", a.selection.Zip),
		zap.String("schedule", a.cfg.Watch.Schedule))

	g.Go(ts.Start)
	err = g.Wait()
	initial.Wait()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := ts.Shutdown(shutdownCtx); err == nil {
		err = shutdownErr
	}
	return err
}
