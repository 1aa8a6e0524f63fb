// Package ocr renders PDF pages to images with poppler's pdftoppm and
// recognizes them with tesseract.
package ocr

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"time"
)

// ErrToolMissing is returned by Resolve when a required binary cannot be found.
var ErrToolMissing = errors.New("ocr tool not available")

type Config struct {
	PopplerPath  string // directory containing pdftoppm, or the pdftoppm binary; empty -> PATH lookup
	TesseractCmd string // tesseract executable; empty -> PATH lookup

	Pdftoppm  string // resolved pdftoppm binary
	Tesseract string // resolved tesseract binary

	TesseractLang string // default "eng"
	TessdataDir   string
	DPI           int // rasterization DPI, default 300
	PSM           int // page segmentation mode, default 6 (uniform block of text)
	OEM           int // 1 = LSTM; leave 0 to use default
	MaxPages      int // 0 = no limit
}

type Result struct {
	Text     string
	Pages    int
	Language string
	Duration time.Duration
	Warnings []string
}

// lookPath is swapped in tests.
var lookPath = exec.LookPath

// Resolve locates pdftoppm and tesseract. A configured location that does not
// exist falls back to a PATH lookup of the default binary name.
func (c Config) Resolve() (Config, error) {
	var candidates []string
	if c.PopplerPath != "" {
		if st, err := os.Stat(c.PopplerPath); err == nil && st.IsDir() {
			candidates = append(candidates, filepath.Join(c.PopplerPath, "pdftoppm"))
		} else {
			candidates = append(candidates, c.PopplerPath)
		}
	}
	candidates = append(candidates, "pdftoppm")
	pdftoppm, err := firstExecutable(candidates)
	if err != nil {
		return c, fmt.Errorf("%w: pdftoppm: %v", ErrToolMissing, err)
	}

	candidates = candidates[:0]
	if c.TesseractCmd != "" {
		candidates = append(candidates, c.TesseractCmd)
	}
	candidates = append(candidates, "tesseract")
	tesseract, err := firstExecutable(candidates)
	if err != nil {
		return c, fmt.Errorf("%w: tesseract: %v", ErrToolMissing, err)
	}

	c.Pdftoppm = pdftoppm
	c.Tesseract = tesseract
	return c, nil
}

func firstExecutable(candidates []string) (string, error) {
	var lastErr error
	for _, name := range candidates {
		p, err := lookPath(name)
		if err == nil {
			return p, nil
		}
		lastErr = err
	}
	return "", lastErr
}

type Extractor struct {
	cfg    Config
	runner Runner
	logger *slog.Logger
}

// NewExtractor builds an Extractor that shells out to the configured binaries.
func NewExtractor(cfg Config, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return NewExtractorWithRunner(cfg, execRunner{logger: logger}, logger)
}

// NewExtractorWithRunner is NewExtractor with an explicit command runner.
func NewExtractorWithRunner(cfg Config, r Runner, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	if cfg.Pdftoppm == "" {
		cfg.Pdftoppm = "pdftoppm"
	}
	if cfg.Tesseract == "" {
		cfg.Tesseract = "tesseract"
	}
	if cfg.TesseractLang == "" {
		cfg.TesseractLang = "eng"
	}
	if cfg.DPI <= 0 {
		cfg.DPI = 300
	}
	if cfg.PSM <= 0 {
		cfg.PSM = 6
	}
	return &Extractor{cfg: cfg, runner: r, logger: logger}
}
