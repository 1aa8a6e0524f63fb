package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/document"
)

var disableConfigDir sync.Once

// ContentStreamExtractor decodes text-showing operators from each page's content
// stream with pdfcpu. It is an independent second opinion to PlainTextExtractor.
type ContentStreamExtractor struct {
	logger *slog.Logger
}

func NewContentStreamExtractor(logger *slog.Logger) *ContentStreamExtractor {
	if logger == nil {
		logger = slog.Default()
	}
	// pdfcpu otherwise creates a config directory under the user's home
	disableConfigDir.Do(api.DisableConfigDir)
	return &ContentStreamExtractor{logger: logger}
}

func (x *ContentStreamExtractor) Name() string { return constants.BackendTextLayerB }

func (x *ContentStreamExtractor) Extract(ctx context.Context, doc *document.Document) string {
	pages, err := x.pages(ctx, doc)
	if err != nil {
		x.logger.Warn("content stream extraction failed", "backend", x.Name(), "path", doc.Path(), "error", err)
		return ""
	}
	return joinPages(pages)
}

func (x *ContentStreamExtractor) pages(ctx context.Context, doc *document.Document) (pages []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			pages, err = nil, fmt.Errorf("pdfcpu panic: %v", r)
		}
	}()

	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	pctx, err := api.ReadValidateAndOptimize(doc.Reader(), conf)
	if err != nil {
		return nil, fmt.Errorf("pdfcpu read: %w", err)
	}

	pages = make([]string, 0, pctx.PageCount)
	for pageNr := 1; pageNr <= pctx.PageCount; pageNr++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		pages = append(pages, x.pageText(pctx, pageNr))
	}
	return pages, nil
}

func (x *ContentStreamExtractor) pageText(pctx *model.Context, pageNr int) string {
	r, err := pdfcpu.ExtractPageContent(pctx, pageNr)
	if err != nil || r == nil {
		x.logger.Debug("page content unavailable", "backend", x.Name(), "page", pageNr, "error", err)
		return ""
	}
	data, err := io.ReadAll(r)
	if err != nil || len(data) == 0 {
		return ""
	}
	return streamText(data)
}
