package invoice

import (
	"bytes"
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/document"
	"github.com/joseph-ayodele/invoice-extractor/internal/fields"
	"github.com/joseph-ayodele/invoice-extractor/internal/selector"
)

type stubSelector struct {
	selected selector.SelectedText
	calls    int
}

func (s *stubSelector) Select(context.Context, *document.Document) selector.SelectedText {
	s.calls++
	return s.selected
}

func writePDF(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4"), 0o644))
	return path
}

func TestAssemble(t *testing.T) {
	f := fields.Extract("Invoice No: INV/2024/001\nGrand Total ₹ 1,200.00")
	rec := Assemble("/data/in/acme.pdf", constants.BackendTextLayerB, f)

	require.NotNil(t, rec.InvoiceNumber)
	assert.Equal(t, "INV/2024/001", *rec.InvoiceNumber)
	assert.Nil(t, rec.InvoiceDate)
	assert.Nil(t, rec.InvoiceID)
	require.NotNil(t, rec.TotalAmount)
	assert.InDelta(t, 1200.0, *rec.TotalAmount, 1e-9)
	assert.Equal(t, "acme.pdf", rec.SourceFile)
	assert.Equal(t, "textlayer_b", rec.ExtractionMethod)
	assert.False(t, rec.Empty())
}

func TestEngine_ExtractFile(t *testing.T) {
	path := writePDF(t, t.TempDir(), "inv.pdf")
	sel := &stubSelector{selected: selector.SelectedText{
		Backend: constants.BackendOCR,
		Text:    "Invoice Date: 12/03/2024\nTotal ₹500",
		Score:   900,
	}}

	rec, err := NewEngine(sel, nil).ExtractFile(context.Background(), path)
	require.NoError(t, err)
	assert.Equal(t, 1, sel.calls)
	assert.Equal(t, "ocr", rec.ExtractionMethod)
	assert.Equal(t, "inv.pdf", rec.SourceFile)
	require.NotNil(t, rec.InvoiceDate)
	assert.Equal(t, "12/03/2024", *rec.InvoiceDate)
	require.NotNil(t, rec.TotalAmount)
	assert.InDelta(t, 500.0, *rec.TotalAmount, 1e-9)
}

func TestEngine_NoTextYieldsNullFields(t *testing.T) {
	path := writePDF(t, t.TempDir(), "blank.pdf")
	sel := &stubSelector{selected: selector.SelectedText{Backend: constants.BackendTextLayerA}}

	var logs bytes.Buffer
	logger := common.NewLogger(&logs, slog.LevelWarn)
	ctx := common.WithRunID(context.Background(), "run-7")

	rec, err := NewEngine(sel, logger).ExtractFile(ctx, path)
	require.NoError(t, err)
	assert.True(t, rec.Empty())
	assert.Equal(t, "textlayer_a", rec.ExtractionMethod)
	assert.NoError(t, Validate(rec))

	assert.Contains(t, logs.String(), `"msg":"no invoice fields found"`)
	assert.Contains(t, logs.String(), `"run_id":"run-7"`)
}

func TestEngine_MissingFile(t *testing.T) {
	sel := &stubSelector{}
	_, err := NewEngine(sel, nil).ExtractFile(context.Background(), filepath.Join(t.TempDir(), "nope.pdf"))

	require.Error(t, err)
	assert.True(t, errors.Is(err, fs.ErrNotExist))
	assert.True(t, errors.Is(err, common.ErrDocumentUnreadable))
	assert.True(t, common.IsCode(err, common.CodeDocumentOpen))
	assert.Equal(t, 0, sel.calls)
}

func TestEngine_CancelledContext(t *testing.T) {
	path := writePDF(t, t.TempDir(), "inv.pdf")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	sel := &stubSelector{selected: selector.SelectedText{Backend: constants.BackendTextLayerA, Text: "Total ₹5"}}
	_, err := NewEngine(sel, nil).Run(ctx, path)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestEngine_RunKeepsSelection(t *testing.T) {
	path := writePDF(t, t.TempDir(), "inv.pdf")
	sel := &stubSelector{selected: selector.SelectedText{
		Backend: constants.BackendOCR, Text: "Receipt P24251106", Score: 321, Escalated: true,
	}}

	out, err := NewEngine(sel, nil).Run(context.Background(), path)
	require.NoError(t, err)
	assert.True(t, out.Selected.Escalated)
	assert.Equal(t, 321, out.Selected.Score)
	assert.Equal(t, fields.StrategySingleCandidate, out.Fields.InvoiceNumber.Strategy)
	assert.Positive(t, int64(out.Duration))
}

func TestEncode(t *testing.T) {
	num := "चालान-7"
	total := 10.5
	rec := Record{
		InvoiceNumber:    &num,
		TotalAmount:      &total,
		SourceFile:       "a&b.pdf",
		ExtractionMethod: constants.BackendTextLayerA,
	}

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, rec))
	want := `{
    "invoice_number": "चालान-7",
    "invoice_date": null,
    "invoice_id": null,
    "total_amount": 10.5,
    "source_file": "a&b.pdf",
    "extraction_method": "textlayer_a"
}
`
	assert.Equal(t, want, buf.String())
}

func TestOutputPath(t *testing.T) {
	assert.Equal(t, filepath.Join("in", "acme.invoice.json"), OutputPath(filepath.Join("in", "acme.pdf")))
	assert.Equal(t, "scan.v2.invoice.json", OutputPath("scan.v2.PDF"))
}

func TestSaveAndLoad(t *testing.T) {
	dir := t.TempDir()
	pdf := writePDF(t, dir, "acme.pdf")
	id := "ACK-1234"
	rec := Record{InvoiceID: &id, SourceFile: "acme.pdf", ExtractionMethod: constants.BackendOCR}

	out, err := Save(rec, pdf)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "acme.invoice.json"), out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "{\n    \"invoice_number\": null"))

	loaded, err := Load(out)
	require.NoError(t, err)
	assert.Equal(t, rec, loaded)
}

func TestValidate(t *testing.T) {
	neg := -1.0
	cases := []struct {
		name string
		rec  Record
		ok   bool
	}{
		{"minimal", Record{SourceFile: "a.pdf", ExtractionMethod: "ocr"}, true},
		{"unknown method", Record{SourceFile: "a.pdf", ExtractionMethod: "magic"}, false},
		{"missing source", Record{ExtractionMethod: "ocr"}, false},
		{"negative total", Record{SourceFile: "a.pdf", ExtractionMethod: "ocr", TotalAmount: &neg}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.rec)
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}
}

func TestSave_RejectsInvalidRecord(t *testing.T) {
	pdf := writePDF(t, t.TempDir(), "x.pdf")
	_, err := Save(Record{SourceFile: "x.pdf", ExtractionMethod: "bogus"}, pdf)
	require.Error(t, err)
	assert.True(t, common.IsCode(err, common.CodeValidation))
	assert.ErrorIs(t, err, common.ErrValidation)
	_, statErr := os.Stat(OutputPath(pdf))
	assert.True(t, errors.Is(statErr, fs.ErrNotExist))
}

func TestValidateJSON_Garbage(t *testing.T) {
	assert.Error(t, ValidateJSON([]byte("{not json")))
	assert.Error(t, ValidateJSON([]byte(`{"invoice_number": null}`)))
}
