package invoice

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
)

// Encode writes rec as 4-space indented JSON with non-ASCII text left unescaped.
func Encode(w io.Writer, rec Record) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(rec)
}

// OutputPath maps report.pdf to report.invoice.json in the same directory.
func OutputPath(pdfPath string) string {
	return strings.TrimSuffix(pdfPath, filepath.Ext(pdfPath)) + constants.InvoiceJSONSuffix
}

// Save validates rec and writes it next to the source document, returning the written path.
func Save(rec Record, pdfPath string) (string, error) {
	if err := Validate(rec); err != nil {
		return "", common.NewAppError(common.CodeValidation, "invalid record for "+rec.SourceFile,
			fmt.Errorf("%w: %w", common.ErrValidation, err))
	}
	var buf bytes.Buffer
	if err := Encode(&buf, rec); err != nil {
		return "", fmt.Errorf("encode record: %w", err)
	}
	out := OutputPath(pdfPath)
	if err := os.WriteFile(out, buf.Bytes(), 0o644); err != nil {
		return "", fmt.Errorf("write %s: %w", out, err)
	}
	return out, nil
}

// Load reads a previously saved record.
func Load(path string) (Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Record{}, err
	}
	if err := ValidateJSON(data); err != nil {
		return Record{}, err
	}
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return Record{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return rec, nil
}
