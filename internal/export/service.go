package export

import (
	"context"
	"fmt"
	"log/slog"
	"time"
	"unicode/utf8"

	"github.com/xuri/excelize/v2"

	"github.com/joseph-ayodele/invoice-extractor/internal/repository"
)

const sheet = "Invoices"

// Service produces XLSX summaries of multi-document runs.
type Service struct {
	repo   repository.InvoiceRepository
	logger *slog.Logger
}

// NewService accepts a nil repo when only in-memory results are exported.
func NewService(repo repository.InvoiceRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, logger: logger}
}

// ExportRunXLSX returns a workbook (as bytes) for every stored result of a run.
func (s *Service) ExportRunXLSX(ctx context.Context, runID string) ([]byte, error) {
	if s.repo == nil {
		return nil, fmt.Errorf("export run %s: no result store configured", runID)
	}
	results, err := s.repo.ListByRun(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("query results: %w", err)
	}
	return s.WriteXLSX(results)
}

// WriteXLSX renders results as one row per document.
func (s *Service) WriteXLSX(results []*repository.Result) ([]byte, error) {
	start := time.Now()

	f := excelize.NewFile()
	defer func() { _ = f.Close() }()
	if index, _ := f.GetSheetIndex(sheet); index == -1 {
		_, err := f.NewSheet(sheet)
		if err != nil {
			return nil, err
		}
	}
	activeIndex, _ := f.GetSheetIndex(sheet)
	f.SetActiveSheet(activeIndex)
	_ = f.DeleteSheet("Sheet1")

	headers := []string{
		"Source File",
		"Invoice Number",
		"Invoice Date",
		"Invoice ID",
		"Total Amount",
		"Extraction Method",
		"Quality Score",
		"OCR Attempted",
		"Status",
		"Error",
		"Source Path",
	}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 1)
		_ = f.SetCellValue(sheet, cell, h)
	}

	for i, r := range results {
		row := i + 2
		write := func(col int, v any) {
			cell, _ := excelize.CoordinatesToCellName(col, row)
			_ = f.SetCellValue(sheet, cell, v)
		}
		rec := r.Record
		write(1, rec.SourceFile)
		write(2, deref(rec.InvoiceNumber))
		write(3, deref(rec.InvoiceDate))
		write(4, deref(rec.InvoiceID))
		// numeric cell so the column sums
		if rec.TotalAmount != nil {
			write(5, *rec.TotalAmount)
		}
		write(6, rec.ExtractionMethod)
		write(7, r.Score)
		write(8, r.Escalated)
		write(9, string(r.Status))
		write(10, truncate(r.Error, 140))
		write(11, r.SourcePath)
	}

	_ = f.SetColWidth(sheet, "A", "A", 28) // file
	_ = f.SetColWidth(sheet, "B", "D", 24) // identifiers
	_ = f.SetColWidth(sheet, "E", "E", 14) // amount
	_ = f.SetColWidth(sheet, "F", "I", 14)
	_ = f.SetColWidth(sheet, "J", "J", 48) // error
	_ = f.SetColWidth(sheet, "K", "K", 60) // path

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("xlsx write: %w", err)
	}

	s.logger.Info("export.xlsx.ok",
		"rows", len(results),
		"elapsed_ms", time.Since(start).Milliseconds(),
	)
	return buf.Bytes(), nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// truncate caps s at n runes, marking the cut with an ellipsis.
func truncate(s string, n int) string {
	if n <= 0 || utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	if n == 1 {
		return string(r[:1])
	}
	return string(r[:n-1]) + "…"
}
