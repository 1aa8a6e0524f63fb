package invoice

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/document"
	"github.com/joseph-ayodele/invoice-extractor/internal/fields"
	"github.com/joseph-ayodele/invoice-extractor/internal/selector"
)

// Selector picks the text to extract fields from.
type Selector interface {
	Select(ctx context.Context, doc *document.Document) selector.SelectedText
}

// Outcome carries the record together with how it was produced.
type Outcome struct {
	Record   Record
	Selected selector.SelectedText
	Fields   fields.Fields
	Duration time.Duration
}

type Engine struct {
	selector Selector
	logger   *slog.Logger
}

func NewEngine(sel Selector, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{selector: sel, logger: logger}
}

// ExtractFile opens path, extracts one record and releases the document.
// Only opening the document can fail, apart from context cancellation.
func (e *Engine) ExtractFile(ctx context.Context, path string) (Record, error) {
	out, err := e.Run(ctx, path)
	if err != nil {
		return Record{}, err
	}
	return out.Record, nil
}

// Run is ExtractFile with the selection details kept.
func (e *Engine) Run(ctx context.Context, path string) (Outcome, error) {
	start := time.Now()
	doc, err := document.Open(path)
	if err != nil {
		return Outcome{}, common.NewAppError(common.CodeDocumentOpen, "open "+path,
			fmt.Errorf("%w: %w", common.ErrDocumentUnreadable, err))
	}
	defer func() {
		if cerr := doc.Close(); cerr != nil {
			e.logger.Warn("close document", "path", path, "error", cerr)
		}
	}()

	out, err := e.Extract(ctx, doc)
	out.Duration = time.Since(start)
	return out, err
}

// Extract runs selection and field extraction on an open document.
func (e *Engine) Extract(ctx context.Context, doc *document.Document) (Outcome, error) {
	logger := common.LoggerFromContext(ctx, e.logger)
	if runID := common.RunIDFromContext(ctx); runID != "" {
		logger = logger.With("run_id", runID)
	}

	sel := e.selector.Select(ctx, doc)
	if err := ctx.Err(); err != nil {
		return Outcome{}, err
	}

	f := fields.Extract(sel.Text)
	rec := Assemble(doc.Path(), sel.Backend, f)
	logger.Info("invoice extracted",
		"file", rec.SourceFile,
		"method", rec.ExtractionMethod,
		"score", sel.Score,
		"escalated", sel.Escalated,
		"number_strategy", f.InvoiceNumber.Strategy,
		"total_strategy", f.TotalAmount.Strategy,
	)
	if rec.Empty() {
		logger.Warn("no invoice fields found", "file", rec.SourceFile, "method", rec.ExtractionMethod)
	}
	return Outcome{Record: rec, Selected: sel, Fields: f}, nil
}
