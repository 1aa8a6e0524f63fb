package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
	"github.com/joseph-ayodele/invoice-extractor/internal/ingest"
	"github.com/joseph-ayodele/invoice-extractor/internal/metrics"
)

var (
	batchDSN           string
	batchXLSX          string
	batchWorkers       int
	batchIncludeHidden bool
	batchNoSave        bool
	batchMetricsFile   string
)

var batchCmd = &cobra.Command{
	Use:   "batch <dir>",
	Short: "Extract every PDF under a directory",
	Long: `Walk a directory for PDFs and extract each one on a worker pool.

Each document gets its own deadline (INVOICE_TIMEOUT); documents that exceed
it are reported as TIMEOUT and not retried. Records are written next to their
documents, optionally stored in a database and summarized in an XLSX file.

Examples:
  invoicex batch ./invoices
  invoicex batch ./invoices --workers 8 --xlsx summary.xlsx
  invoicex batch ./invoices --db sqlite:results.db
  invoicex batch ./invoices --metrics-file /var/lib/node_exporter/invoicex.prom`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	batchCmd.Flags().StringVar(&batchDSN, "db", "", "result store DSN (postgres://... or sqlite:<path>); default DB_URL")
	batchCmd.Flags().StringVar(&batchXLSX, "xlsx", "", "write an XLSX summary to this path")
	batchCmd.Flags().IntVar(&batchWorkers, "workers", 0, "concurrent documents (default INVOICE_WORKERS)")
	batchCmd.Flags().BoolVar(&batchIncludeHidden, "include-hidden", false, "also process dot files and dot directories")
	batchCmd.Flags().BoolVar(&batchNoSave, "no-save", false, "do not write <name>.invoice.json files")
	batchCmd.Flags().StringVar(&batchMetricsFile, "metrics-file", "", "write run metrics in Prometheus text format to this path")
}

func runBatch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := loadApp(slog.LevelInfo)
	if err != nil {
		return err
	}
	if err := a.cfg.Validate(); err != nil {
		return err
	}

	paths, failures, stats, err := ingest.FindDocuments(ctx, args[0], !batchIncludeHidden)
	if err != nil {
		return err
	}
	for _, f := range failures {
		a.logger.Warn("skipping unreadable entry", "path", f.Path, "error", f.Err)
	}

	db, store, err := a.openStore(ctx, batchDSN)
	if err != nil {
		return err
	}
	if db != nil {
		defer db.Close()
	}

	runID := uuid.NewString()
	ctx = common.WithRunID(ctx, runID)
	ctx = common.WithLogger(ctx, a.logger.With("command", "batch"))
	logger := a.logger.With("run_id", runID)
	logger.Info("batch started", "root", args[0], "documents", len(paths))

	sink := &resultSink{ctx: ctx, runID: runID, save: !batchNoSave, store: store, logger: logger}
	opts := append(a.queueOptions(ctx, batchWorkers), async.WithResultHandler(sink.handle))
	var reg *prometheus.Registry
	if batchMetricsFile != "" {
		reg = prometheus.NewRegistry()
		opts = append(opts, async.WithObserver(metrics.New(reg)))
	}
	q := async.NewProcessorQueue(a.newEngine(), logger, opts...)

	for _, p := range paths {
		if err := q.Enqueue(ctx, async.Job{Path: p, RunID: runID}); err != nil {
			break
		}
	}
	// drain fully; cancellation has already reached in-flight documents through the queue context
	q.Shutdown(context.Background())

	results := sink.snapshot()
	summary := summarize(runID, stats.Scanned, results)
	logger.Info("batch finished", "succeeded", summary.Succeeded, "failed", summary.Failed, "timed_out", summary.TimedOut)

	if batchXLSX != "" {
		data, err := export.NewService(store, logger).WriteXLSX(results)
		if err != nil {
			return err
		}
		if err := os.WriteFile(batchXLSX, data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", batchXLSX, err)
		}
		printError("Saved summary to: %s\n", batchXLSX)
	}

	if reg != nil {
		// textfile collector format, written atomically
		if err := prometheus.WriteToTextfile(batchMetricsFile, reg); err != nil {
			return fmt.Errorf("write %s: %w", batchMetricsFile, err)
		}
	}

	if err := printJSON(cmd, summary); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	return summary.err()
}
