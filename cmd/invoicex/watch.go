package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
	"github.com/joseph-ayodele/invoice-extractor/internal/metrics"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

var (
	watchDSN         string
	watchMetricsAddr string
	watchInitialScan bool
	watchWorkers     int
)

var watchCmd = &cobra.Command{
	Use:   "watch <dir> [dir...]",
	Short: "Extract PDFs as they appear in watched directories",
	Long: `Watch directories recursively and extract every PDF that is created or
rewritten. A file is processed again only when its content changes.

Examples:
  invoicex watch ./inbox
  invoicex watch ./inbox --initial-scan --metrics-addr :9090`,
	Args: cobra.MinimumNArgs(1),
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchDSN, "db", "", "result store DSN; default DB_URL")
	watchCmd.Flags().StringVar(&watchMetricsAddr, "metrics-addr", "", "serve prometheus metrics on this address (e.g. :9090)")
	watchCmd.Flags().BoolVar(&watchInitialScan, "initial-scan", false, "process PDFs already present at startup")
	watchCmd.Flags().IntVar(&watchWorkers, "workers", 0, "concurrent documents (default INVOICE_WORKERS)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(slog.LevelInfo)
	if err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	db, store, err := a.openStore(ctx, watchDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	runID := uuid.NewString()
	ctx = common.WithRunID(ctx, runID)
	ctx = common.WithLogger(ctx, a.logger.With("command", "watch"))
	logger := a.logger.With("run_id", runID)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	if watchMetricsAddr != "" {
		srv := serveMetrics(watchMetricsAddr, reg, logger)
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	seen := ingest.NewSeen()
	sink := &resultSink{
		ctx: ctx, runID: runID, save: true, store: store, logger: logger,
		onDone: func(r *repository.Result) {
			if r.Status != constants.RunStatusOK {
				// retry on the next change event
				seen.Forget(r.SourcePath)
			}
		},
	}
	opts := append(a.queueOptions(ctx, watchWorkers), async.WithResultHandler(sink.handle), async.WithObserver(m))
	q := async.NewProcessorQueue(a.newEngine(), logger, opts...)
	defer q.Shutdown(context.Background())

	events, errs, err := ingest.StartWatcher(ctx, ingest.WatchConfig{
		Roots:       args,
		InitialScan: watchInitialScan,
		SkipHidden:  true,
		Debounce:    a.cfg.Batch.Debounce,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	logger.Info("watching", "roots", args)

	for {
		select {
		case p, ok := <-events:
			if !ok {
				logger.Info("watcher stopped")
				return nil
			}
			changed, err := seen.Changed(p)
			if err != nil {
				logger.Warn("cannot read document", "path", p, "error", err)
				continue
			}
			if !changed {
				logger.Debug("content unchanged, skipping", "path", p)
				continue
			}
			if err := q.Enqueue(ctx, async.Job{Path: p, RunID: runID}); err != nil {
				return err
			}
		case err, ok := <-errs:
			if ok {
				logger.Warn("watch error", "error", err)
			}
		}
	}
}

func serveMetrics(addr string, reg *prometheus.Registry, logger *slog.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler(reg))
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("serving metrics", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server failed", "error", err)
		}
	}()
	return srv
}
