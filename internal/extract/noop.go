package extract

import (
	"context"

	"github.com/joseph-ayodele/invoice-extractor/internal/document"
)

// noopExtractor stands in for a backend whose toolkit is not installed.
type noopExtractor struct {
	name string
}

// NewNoop returns an extractor that always yields empty text.
func NewNoop(name string) TextExtractor {
	return noopExtractor{name: name}
}

func (n noopExtractor) Name() string { return n.name }

func (noopExtractor) Extract(context.Context, *document.Document) string { return "" }
