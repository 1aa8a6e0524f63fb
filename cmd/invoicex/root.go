package main

import (
	"encoding/json"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/invoice"
)

var (
	cfgFile string
	noSave  bool
)

var rootCmd = &cobra.Command{
	Use:   "invoicex <invoice.pdf>",
	Short: "Extract invoice number, date, identifier and total from a PDF",
	Long: `invoicex reads a PDF invoice and prints the extracted fields as JSON.

Text comes from the best of two embedded text-layer readers; when both
produce little usable text the pages are rendered with pdftoppm and read
with tesseract. The record is also written next to the document as
<name>.invoice.json.

Environment:
  POPPLER_PATH / POPPLER_BIN   directory holding pdftoppm
  TESSERACT_CMD                tesseract executable
  LOG_LEVEL                    debug, info, warn or error`,
	Args:          exactlyOneDocument,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runSingle,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "optional YAML config file")
	rootCmd.Flags().BoolVar(&noSave, "no-save", false, "print the record without writing <name>.invoice.json")

	rootCmd.AddCommand(batchCmd, watchCmd, exportCmd, showCmd)
}

func exactlyOneDocument(cmd *cobra.Command, args []string) error {
	if len(args) != 1 {
		printError("Usage: %s\n", cmd.UseLine())
		return errReported
	}
	return nil
}

func runSingle(cmd *cobra.Command, args []string) error {
	path := args[0]
	if st, err := os.Stat(path); err != nil || st.IsDir() {
		printError("File not found: %s\n", path)
		return errReported
	}

	a, err := loadApp(slog.LevelWarn)
	if err != nil {
		return err
	}
	rec, err := a.newEngine().ExtractFile(cmd.Context(), path)
	if err != nil {
		return err
	}

	if err := invoice.Encode(cmd.OutOrStdout(), rec); err != nil {
		return err
	}
	if noSave {
		return nil
	}
	out, err := invoice.Save(rec, path)
	if err != nil {
		return err
	}
	printError("Saved extraction to: %s\n", out)
	return nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "    ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}
