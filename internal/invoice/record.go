// Package invoice assembles extracted fields into the output record and runs
// the full document -> record pipeline.
package invoice

import (
	"path/filepath"

	"github.com/joseph-ayodele/invoice-extractor/internal/fields"
)

// Record is the per-document output artifact. Absent fields encode as null.
type Record struct {
	InvoiceNumber    *string  `json:"invoice_number"`
	InvoiceDate      *string  `json:"invoice_date"`
	InvoiceID        *string  `json:"invoice_id"`
	TotalAmount      *float64 `json:"total_amount"`
	SourceFile       string   `json:"source_file"`
	ExtractionMethod string   `json:"extraction_method"`
}

// Assemble merges field outputs with the document's base name and the winning
// backend. No cross-field checks are made.
func Assemble(sourcePath, method string, f fields.Fields) Record {
	return Record{
		InvoiceNumber:    f.InvoiceNumber.Value,
		InvoiceDate:      f.InvoiceDate.Value,
		InvoiceID:        f.InvoiceID.Value,
		TotalAmount:      f.TotalAmount.Value,
		SourceFile:       filepath.Base(sourcePath),
		ExtractionMethod: method,
	}
}

// Empty reports whether no field was extracted.
func (r Record) Empty() bool {
	return r.InvoiceNumber == nil && r.InvoiceDate == nil && r.InvoiceID == nil && r.TotalAmount == nil
}
