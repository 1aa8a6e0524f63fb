package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/async"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/invoice"
	"github.com/joseph-ayodele/invoice-extractor/internal/ocr"
	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
	"github.com/joseph-ayodele/invoice-extractor/internal/selector"
)

type app struct {
	cfg    *common.Config
	logger *slog.Logger
}

// loadApp resolves configuration once and installs the process logger.
// defaultLevel applies when LOG_LEVEL is unset.
func loadApp(defaultLevel slog.Level) (*app, error) {
	cfg, err := common.LoadConfig(cfgFile)
	if err != nil {
		return nil, err
	}
	logger := common.NewLogger(os.Stderr, common.ParseLevel(cfg.Log.Level, defaultLevel))
	slog.SetDefault(logger)
	return &app{cfg: cfg, logger: logger}, nil
}

func (a *app) ocrConfig() ocr.Config {
	return ocr.Config{
		PopplerPath:   a.cfg.OCR.PopplerPath,
		TesseractCmd:  a.cfg.OCR.TesseractCmd,
		TesseractLang: a.cfg.OCR.Lang,
		TessdataDir:   a.cfg.OCR.TessdataDir,
		DPI:           a.cfg.OCR.DPI,
		PSM:           a.cfg.OCR.PSM,
		MaxPages:      a.cfg.OCR.MaxPages,
	}
}

// newEngine wires the three backends in preference order.
func (a *app) newEngine() *invoice.Engine {
	l := a.logger
	sel := selector.New(
		extract.NewPlainTextExtractor(l),
		extract.NewContentStreamExtractor(l),
		extract.NewOCRAdapter(a.ocrConfig(), l),
		selector.WithLogger(l),
	)
	return invoice.NewEngine(sel, l)
}

// openStore opens and migrates the result store. dsn overrides DB_URL; an
// empty result means no store is configured.
func (a *app) openStore(ctx context.Context, dsn string) (*repository.DB, repository.InvoiceRepository, error) {
	if dsn == "" {
		dsn = a.cfg.Database.DSN
	}
	if dsn == "" {
		return nil, nil, nil
	}
	db, err := repository.Open(ctx, repository.Config{
		DSN:         dsn,
		MaxConns:    a.cfg.Database.MaxConns,
		DialTimeout: a.cfg.Database.DialTimeout,
	}, a.logger)
	if err != nil {
		return nil, nil, common.NewAppError(common.CodeDatabase, "open result store", err)
	}
	if err := db.HealthCheck(ctx, a.cfg.Database.DialTimeout); err != nil {
		db.Close()
		return nil, nil, common.NewAppError(common.CodeDatabase, "ping result store", err)
	}
	if err := db.Migrate(ctx); err != nil {
		db.Close()
		return nil, nil, common.NewAppError(common.CodeDatabase, "migrate result store", err)
	}
	return db, repository.NewInvoiceRepository(db, a.logger), nil
}

func (a *app) queueOptions(ctx context.Context, workers int) []async.Option {
	if workers <= 0 {
		workers = a.cfg.Batch.Workers
	}
	return []async.Option{
		async.WithContext(ctx),
		async.WithWorkers(workers),
		async.WithQueueSize(a.cfg.Batch.QueueSize),
		async.WithProcessTimeout(a.cfg.Batch.Timeout),
	}
}

// resultSink persists every finished job: the .invoice.json next to the
// document, then the store row. Safe for concurrent use by queue workers.
type resultSink struct {
	ctx    context.Context
	runID  string
	save   bool
	store  repository.InvoiceRepository
	logger *slog.Logger
	onDone func(r *repository.Result)

	mu      sync.Mutex
	results []*repository.Result
}

func (s *resultSink) handle(_ context.Context, jr async.JobResult) {
	res := &repository.Result{
		RunID:      s.runID,
		SourcePath: jr.Job.Path,
		Record:     jr.Outcome.Record,
		Score:      jr.Outcome.Selected.Score,
		Escalated:  jr.Outcome.Selected.Escalated,
		Status:     jr.Status,
		Duration:   jr.Duration,
	}
	if jr.Err != nil {
		res.Error = jr.Err.Error()
		if res.Record.SourceFile == "" {
			res.Record = invoice.Record{SourceFile: filepath.Base(jr.Job.Path)}
		}
	}

	if jr.Err == nil && s.save {
		out, err := invoice.Save(jr.Outcome.Record, jr.Job.Path)
		if err != nil {
			s.logger.Error("failed to write record", "path", jr.Job.Path, "error", err)
			res.Status = constants.RunStatusFailed
			res.Error = err.Error()
		} else {
			s.logger.Debug("record written", "path", out)
		}
	}

	// the per-document context may already be past its deadline
	if s.store != nil {
		if err := s.store.Save(s.ctx, res); err != nil {
			s.logger.Error("failed to store result", "path", jr.Job.Path, "error", err)
		}
	}

	s.mu.Lock()
	s.results = append(s.results, res)
	s.mu.Unlock()
	if s.onDone != nil {
		s.onDone(res)
	}
}

// snapshot returns the results so far ordered by source path.
func (s *resultSink) snapshot() []*repository.Result {
	s.mu.Lock()
	out := append([]*repository.Result(nil), s.results...)
	s.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].SourcePath < out[j].SourcePath })
	return out
}

type runSummary struct {
	RunID     string `json:"run_id"`
	Scanned   uint32 `json:"scanned"`
	Matched   int    `json:"matched"`
	Succeeded int    `json:"succeeded"`
	Failed    int    `json:"failed"`
	TimedOut  int    `json:"timed_out"`
}

func summarize(runID string, scanned uint32, results []*repository.Result) runSummary {
	s := runSummary{RunID: runID, Scanned: scanned, Matched: len(results)}
	for _, r := range results {
		switch r.Status {
		case constants.RunStatusOK:
			s.Succeeded++
		case constants.RunStatusTimeout:
			s.TimedOut++
		default:
			s.Failed++
		}
	}
	return s
}

func (s runSummary) err() error {
	if bad := s.Failed + s.TimedOut; bad > 0 {
		return fmt.Errorf("%d of %d documents failed", bad, s.Matched)
	}
	return nil
}
