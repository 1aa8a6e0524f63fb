package ocr

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"
)

// ExtractPDF renders every page of the PDF at path and recognizes it.
// Pages that fail recognition contribute no text; a render failure is an error.
func (e *Extractor) ExtractPDF(ctx context.Context, path string) (Result, error) {
	start := time.Now()
	e.logger.Debug("starting ocr extraction", "path", path, "dpi", e.cfg.DPI, "psm", e.cfg.PSM)

	tmpDir, err := os.MkdirTemp("", "invx-pp-*")
	if err != nil {
		return Result{}, err
	}
	defer func(dir string) {
		if err := os.RemoveAll(dir); err != nil {
			e.logger.Warn("failed to remove temp dir", "dir", dir, "error", err)
		}
	}(tmpDir)

	prefix := filepath.Join(tmpDir, "page")
	// pdftoppm -r 300 -png [-f 1 -l N] <in.pdf> <tmp/page>
	args := []string{"-r", strconv.Itoa(e.cfg.DPI), "-png"}
	if e.cfg.MaxPages > 0 {
		args = append(args, "-f", "1", "-l", strconv.Itoa(e.cfg.MaxPages))
	}
	args = append(args, path, prefix)
	_, errb, err := e.runner.Run(ctx, e.cfg.Pdftoppm, args...)
	if err != nil {
		return Result{Warnings: []string{firstLine(string(errb))}}, toolError(e.cfg.Pdftoppm, errb, err)
	}

	// pdftoppm zero-pads page numbers to a common width, so lexical order is page order.
	matches, _ := filepath.Glob(prefix + "-*.png")
	sort.Strings(matches)
	if e.cfg.MaxPages > 0 && len(matches) > e.cfg.MaxPages {
		matches = matches[:e.cfg.MaxPages]
	}
	if len(matches) == 0 {
		return Result{Warnings: []string{"pdftoppm produced no images"}}, errors.New("no pages rendered")
	}

	var b strings.Builder
	var warns []string
	for _, img := range matches {
		if err := ctx.Err(); err != nil {
			return Result{Warnings: warns}, err
		}
		txt, w, err := e.tesseractOCR(ctx, img)
		warns = append(warns, w...)
		if err != nil {
			warns = append(warns, err.Error())
			continue
		}
		if txt != "" {
			b.WriteString(txt)
			b.WriteByte('\n')
		}
	}

	return Result{
		Text:     b.String(),
		Pages:    len(matches),
		Language: e.cfg.TesseractLang,
		Duration: time.Since(start),
		Warnings: warns,
	}, nil
}

func (e *Extractor) tesseractOCR(ctx context.Context, img string) (string, []string, error) {
	// tesseract <img> stdout -l <lang> --psm <n>
	args := []string{img, "stdout", "-l", e.cfg.TesseractLang, "--psm", strconv.Itoa(e.cfg.PSM)}
	if e.cfg.OEM > 0 {
		args = append(args, "--oem", strconv.Itoa(e.cfg.OEM))
	}
	if e.cfg.TessdataDir != "" {
		args = append(args, "--tessdata-dir", e.cfg.TessdataDir)
	}

	out, errb, err := e.runner.Run(ctx, e.cfg.Tesseract, args...)
	if err != nil {
		return "", nil, toolError(e.cfg.Tesseract, errb, err)
	}
	return Normalize(string(out)), nil, nil
}
