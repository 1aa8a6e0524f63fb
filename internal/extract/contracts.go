// Package extract wraps each text-extraction technology behind one contract:
// given a document, produce text. Adapters never fail; a backend that is
// unavailable or errors yields empty text.
package extract

import (
	"context"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/internal/document"
)

// TextExtractor is Stage 1: document -> text.
type TextExtractor interface {
	// Name is the backend name recorded as extraction_method.
	Name() string
	// Extract returns the document text, or "" when nothing could be extracted.
	Extract(ctx context.Context, doc *document.Document) string
}

// Candidate is one backend's output.
type Candidate struct {
	Backend string
	Text    string
}

// Run invokes x and wraps its output.
func Run(ctx context.Context, x TextExtractor, doc *document.Document) Candidate {
	return Candidate{Backend: x.Name(), Text: x.Extract(ctx, doc)}
}

// joinPages appends every non-empty page followed by a newline.
func joinPages(pages []string) string {
	var b strings.Builder
	for _, p := range pages {
		if p == "" {
			continue
		}
		b.WriteString(p)
		b.WriteByte('\n')
	}
	return b.String()
}
