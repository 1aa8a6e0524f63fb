package extract

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/document"
	"github.com/joseph-ayodele/invoice-extractor/internal/ocr"
)

// PDFOCR is the subset of *ocr.Extractor the adapter depends on.
type PDFOCR interface {
	ExtractPDF(ctx context.Context, path string) (ocr.Result, error)
}

type OCRAdapter struct {
	extractor PDFOCR
	logger    *slog.Logger
}

// NewOCRAdapter resolves the rendering toolkit and recognition engine once.
// When either is missing it returns an extractor that always yields empty text.
func NewOCRAdapter(cfg ocr.Config, logger *slog.Logger) TextExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	resolved, err := cfg.Resolve()
	if err != nil {
		logger.Warn("ocr backend disabled", "error", err)
		return NewNoop(constants.BackendOCR)
	}
	logger.Debug("ocr backend enabled", "pdftoppm", resolved.Pdftoppm, "tesseract", resolved.Tesseract)
	return NewOCRAdapterFrom(ocr.NewExtractor(resolved, logger), logger)
}

// NewOCRAdapterFrom wraps an already configured OCR engine.
func NewOCRAdapterFrom(e PDFOCR, l *slog.Logger) *OCRAdapter {
	if l == nil {
		l = slog.Default()
	}
	return &OCRAdapter{
		extractor: e,
		logger:    l,
	}
}

func (a *OCRAdapter) Name() string { return constants.BackendOCR }

func (a *OCRAdapter) Extract(ctx context.Context, doc *document.Document) string {
	r, err := a.extractor.ExtractPDF(ctx, doc.Path())
	if err != nil {
		a.logger.Warn("ocr extraction failed", "path", doc.Path(), "error", err, "warnings", len(r.Warnings))
		return ""
	}
	a.logger.Debug("ocr extraction done",
		"path", doc.Path(),
		"pages", r.Pages,
		"bytes", len(r.Text),
		"duration_ms", r.Duration.Milliseconds(),
	)
	return r.Text
}
