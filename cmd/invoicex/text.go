package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/constants"
	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/document"
	"github.com/joseph-ayodele/invoice-extractor/internal/extract"
	"github.com/joseph-ayodele/invoice-extractor/internal/quality"
)

var textBackend string

var textCmd = &cobra.Command{
	Use:   "text <invoice.pdf>",
	Short: "Run text backends on a document and show what each one extracted",
	Long: `Run one or all text backends on a document and print each backend's
quality score and text. Useful when a field comes back null.

Examples:
  invoicex text scan.pdf
  invoicex text scan.pdf --backend ocr`,
	Args: cobra.ExactArgs(1),
	RunE: runText,
}

func init() {
	textCmd.Flags().StringVar(&textBackend, "backend", "all",
		fmt.Sprintf("%s, %s, %s or all", constants.BackendTextLayerA, constants.BackendTextLayerB, constants.BackendOCR))
	rootCmd.AddCommand(textCmd)
}

type backendText struct {
	Backend    string `json:"backend"`
	Score      int    `json:"score"`
	DurationMS int64  `json:"duration_ms"`
	Text       string `json:"text"`
}

func runText(cmd *cobra.Command, args []string) error {
	a, err := loadApp(slog.LevelWarn)
	if err != nil {
		return err
	}
	l := a.logger
	backends := []extract.TextExtractor{
		extract.NewPlainTextExtractor(l),
		extract.NewContentStreamExtractor(l),
		extract.NewOCRAdapter(a.ocrConfig(), l),
	}
	if textBackend != "all" {
		var picked []extract.TextExtractor
		for _, b := range backends {
			if b.Name() == textBackend {
				picked = append(picked, b)
			}
		}
		if len(picked) == 0 {
			return common.NewAppError(common.CodeConfig, "unknown backend "+textBackend, common.ErrInvalidInput)
		}
		backends = picked
	}

	doc, err := document.Open(args[0])
	if err != nil {
		return common.NewAppError(common.CodeDocumentOpen, "open "+args[0], err)
	}
	defer doc.Close()

	out := make([]backendText, 0, len(backends))
	for _, b := range backends {
		start := time.Now()
		c := extract.Run(cmd.Context(), b, doc)
		out = append(out, backendText{
			Backend:    c.Backend,
			Score:      quality.Score(c.Text),
			DurationMS: time.Since(start).Milliseconds(),
			Text:       c.Text,
		})
	}
	return printJSON(cmd, out)
}
