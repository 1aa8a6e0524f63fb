// Package selector runs the text backends in preference order and keeps the
// highest scoring text, escalating to OCR only when the text layers are weak.
package selector

import (
	"context"
	"log/slog"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/document"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/quality"
)

// SelectedText is the single candidate chosen for field extraction.
type SelectedText struct {
	Backend   string
	Text      string
	Score     int
	Escalated bool // OCR was attempted
}

type Selector struct {
	primary   extract.TextExtractor
	secondary extract.TextExtractor
	ocr       extract.TextExtractor
	threshold int
	logger    *slog.Logger
}

type Option func(*Selector)

// WithThreshold overrides constants.EscalationThreshold.
func WithThreshold(n int) Option {
	return func(s *Selector) { s.threshold = n }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Selector) {
		if l != nil {
			s.logger = l
		}
	}
}

// New builds a selector over the two text-layer backends and the OCR backend, in that order.
func New(primary, secondary, ocr extract.TextExtractor, opts ...Option) *Selector {
	s := &Selector{
		primary:   primary,
		secondary: secondary,
		ocr:       ocr,
		threshold: constants.EscalationThreshold,
		logger:    slog.Default(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Select never fails: a document where every backend yields nothing selects the
// primary backend with empty text.
func (s *Selector) Select(ctx context.Context, doc *document.Document) SelectedText {
	best := s.score(ctx, doc, s.primary)
	if c := s.score(ctx, doc, s.secondary); c.Score > best.Score {
		best = c
	}

	if best.Score < s.threshold && ctx.Err() == nil {
		s.logger.Debug("escalating to ocr", "path", doc.Path(), "best_backend", best.Backend, "best_score", best.Score)
		c := s.score(ctx, doc, s.ocr)
		if c.Score > best.Score {
			best = c
		}
		best.Escalated = true
	}

	s.logger.Debug("backend selected", "path", doc.Path(), "backend", best.Backend, "score", best.Score, "escalated", best.Escalated)
	return best
}

func (s *Selector) score(ctx context.Context, doc *document.Document, x extract.TextExtractor) SelectedText {
	c := extract.Run(ctx, x, doc)
	sc := quality.Score(c.Text)
	s.logger.Debug("backend scored", "backend", c.Backend, "score", sc, "chars", len(c.Text))
	return SelectedText{Backend: c.Backend, Text: c.Text, Score: sc}
}
