package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/joseph-ayodele/invoice-extractor/internal/common"
	"github.com/joseph-ayodele/invoice-extractor/internal/export"
)

var (
	exportDSN   string
	exportRunID string
	exportOut   string
	showDSN     string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the stored results of a batch run to XLSX",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := loadApp(slog.LevelInfo)
		if err != nil {
			return err
		}
		db, store, err := a.openStore(ctx, exportDSN)
		if err != nil {
			return err
		}
		if db == nil {
			return errors.New("no result store: pass --db or set DB_URL")
		}
		defer db.Close()

		data, err := export.NewService(store, a.logger).ExportRunXLSX(ctx, exportRunID)
		if err != nil {
			return err
		}
		if err := os.WriteFile(exportOut, data, 0o644); err != nil {
			return common.WrapError(err, "write "+exportOut)
		}
		printError("Saved export to: %s\n", exportOut)
		return nil
	},
}

var showCmd = &cobra.Command{
	Use:   "show <invoice.pdf>",
	Short: "Print the most recent stored record for a document",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := loadApp(slog.LevelWarn)
		if err != nil {
			return err
		}
		db, store, err := a.openStore(ctx, showDSN)
		if err != nil {
			return err
		}
		if db == nil {
			return errors.New("no result store: pass --db or set DB_URL")
		}
		defer db.Close()

		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}
		res, err := store.LatestBySource(ctx, path)
		if errors.Is(err, common.ErrNotFound) {
			// batch stores the path as discovered; try it verbatim
			res, err = store.LatestBySource(ctx, args[0])
		}
		if err != nil {
			return fmt.Errorf("lookup %s: %w", args[0], err)
		}
		return printJSON(cmd, res.Record)
	},
}

func init() {
	exportCmd.Flags().StringVar(&exportDSN, "db", "", "result store DSN; default DB_URL")
	exportCmd.Flags().StringVar(&exportRunID, "run", "", "run ID printed by batch")
	exportCmd.Flags().StringVar(&exportOut, "out", "invoices.xlsx", "output XLSX path")
	_ = exportCmd.MarkFlagRequired("run")

	showCmd.Flags().StringVar(&showDSN, "db", "", "result store DSN; default DB_URL")
}
