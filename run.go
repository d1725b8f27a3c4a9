package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/spf13/cobra"

	"commcal/src-server/aggregate"
	"commcal/src-server/metric"
	"commcal/src-server/recur"
	"commcal/src-server/source"
	"commcal/src-server/utils"
)

func runCmd() *cobra.Command {
	var once bool

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Fetch all sources and regenerate the combined feed",
		RunE: func(cmd *cobra.Command, _ []string) error {
			as := utils.NewAppState()
			sources, err := source.Load(as.Config.GetSourcesFile())
			if err != nil {
				return err
			}
			if err := os.MkdirAll(as.Config.GetDataDir(), 0755); err != nil {
				return fmt.Errorf("can't create data dir: %w", err)
			}

			if once {
				runPipeline(cmd.Context(), as, sources)
				return nil
			}

			// loop mode gets the metrics listener; a one-off run has
			// nothing long-lived to scrape
			go func() {
				muxer := http.NewServeMux()
				muxer.Handle("GET /metrics", promhttp.Handler())
				slog.Info("metrics listening", "port", as.Config.GetPort())
				if err := http.ListenAndServe(":"+as.Config.GetPort(), muxer); err != nil {
					slog.Error("metrics server stopped", "error", err)
				}
			}()

			scheduler := cron.New()
			if _, err := scheduler.AddFunc(as.Config.GetCronSpec(), func() {
				runPipeline(context.Background(), as, sources)
			}); err != nil {
				return fmt.Errorf("invalid cron spec %q: %w", as.Config.GetCronSpec(), err)
			}

			// one pass right away, then on schedule
			runPipeline(cmd.Context(), as, sources)
			scheduler.Start()

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			<-sigCh
			slog.Info("shutting down")
			scheduler.Stop()
			return nil
		},
	}
	cmd.Flags().BoolVar(&once, "once", false, "run one pipeline pass and exit")
	return cmd
}

// One full pipeline pass: fetch every source, merge, rewrite the combined
// artifacts. Never fails; broken pieces degrade and get logged.
func runPipeline(ctx context.Context, as *utils.AppState, sources []source.Source) {
	started := time.Now()
	loc := as.Config.GetLocation()

	// the expansion window moves with "now", so the fetcher is rebuilt
	// per run rather than once at startup
	fetcher := source.NewFetcher(
		loc,
		recur.WindowAround(started, loc),
		as.Config.GetEventbriteToken(),
		as.Config.GetHTTPTimeout())
	runCtx := aggregate.NewDriver(fetcher, as.Config.GetDataDir()).Run(ctx, sources)

	if err := aggregate.WriteManifest(as.Config.GetDataDir(), runCtx.Manifest); err != nil {
		slog.Warn("can't write manifest", "error", err)
	}
	if err := aggregate.WriteCombinedIcal(
		as.Config.GetDataDir(),
		as.Config.GetIcalCalName(),
		runCtx.Events,
		loc); err != nil {
		slog.Warn("can't write combined calendar", "error", err)
	}

	metric.RunsTotal.Inc()
	metric.RunDurationSec.Set(time.Since(started).Seconds())
	slog.Info("pipeline run complete", "events", len(runCtx.Events), "took", time.Since(started))
}
