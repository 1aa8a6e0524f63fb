package extract

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ledongthuc/pdf"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/document"
)

// PlainTextExtractor reads the embedded text layer page by page with ledongthuc/pdf.
type PlainTextExtractor struct {
	logger *slog.Logger
}

func NewPlainTextExtractor(logger *slog.Logger) *PlainTextExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &PlainTextExtractor{logger: logger}
}

func (x *PlainTextExtractor) Name() string { return constants.BackendTextLayerA }

func (x *PlainTextExtractor) Extract(ctx context.Context, doc *document.Document) string {
	pages, err := x.pages(ctx, doc)
	if err != nil {
		x.logger.Warn("text layer extraction failed", "backend", x.Name(), "path", doc.Path(), "error", err)
		return ""
	}
	return joinPages(pages)
}

func (x *PlainTextExtractor) pages(ctx context.Context, doc *document.Document) (pages []string, err error) {
	// the reader panics on some malformed cross-reference tables
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdf reader panic: %v", r)
		}
	}()

	r, err := pdf.NewReader(doc.Reader(), doc.Size())
	if err != nil {
		return nil, fmt.Errorf("open pdf: %w", err)
	}

	n := r.NumPage()
	pages = make([]string, 0, n)
	for i := 1; i <= n; i++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		p := r.Page(i)
		if p.V.IsNull() {
			pages = append(pages, "")
			continue
		}
		txt, err := p.GetPlainText(nil)
		if err != nil {
			x.logger.Debug("page has no extractable text", "backend", x.Name(), "page", i, "error", err)
			txt = ""
		}
		pages = append(pages, txt)
	}
	return pages, nil
}
