package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/sift/internal/cleaner"
	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/config"
	"github.com/Veraticus/sift/internal/sheets"
	"github.com/Veraticus/sift/internal/table"
)

// newSheetsWriter is replaced in tests.
var newSheetsWriter = func(ctx context.Context, cfg sheets.Config) (sheets.TableWriter, error) {
	return sheets.NewWriter(ctx, cfg, slog.Default())
}

func exportCmd() *cobra.Command {
	var (
		target        string
		output        string
		spreadsheetID string
		all           bool
	)

	cmd := &cobra.Command{
		Use:   "export <session-id>",
		Short: "Export the cleaned columns of a session",
		Long: `Export a session's cleaned table to a CSV or Excel file, or to Google Sheets.

The columns written are the ones chosen with 'sift clean'. Sessions without a
selection export every recognized column; --all exports every column.

Google Sheets export needs either sheets.service_account_path or an OAuth
refresh token from 'sift auth sheets'.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], exportOptions{
				target:        target,
				output:        output,
				spreadsheetID: spreadsheetID,
				all:           all,
			})
		},
	}

	cmd.Flags().StringVarP(&target, "to", "t", "csv", "export target: csv, xlsx or sheets")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file for csv and xlsx (default cleaned_<name>.<ext>)")
	cmd.Flags().StringVar(&spreadsheetID, "spreadsheet-id", "", "existing spreadsheet to write into (overrides sheets.spreadsheet_id)")
	cmd.Flags().BoolVar(&all, "all", false, "export every column, including unrecognized ones")

	return cmd
}

type exportOptions struct {
	target        string
	output        string
	spreadsheetID string
	all           bool
}

func runExport(cmd *cobra.Command, id string, opts exportOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close() }()

	src, err := loadSessionSource(cmd, store, id)
	if err != nil {
		return err
	}

	selected := src.session.Selected
	if opts.all || len(selected) == 0 {
		selected = exportColumns(src, opts.all)
	}

	cleaned, err := cleaner.Clean(src.table, src.results, cleaner.Options{
		Selected:  selected,
		Normalize: src.session.Normalize,
	})
	if err != nil {
		return fmt.Errorf("failed to clean table: %w", err)
	}

	switch opts.target {
	case "csv", "xlsx":
		return exportFile(cmd, cleaned.Table, opts)
	case "sheets":
		return exportSheets(cmd, cleaned.Table, opts)
	default:
		return fmt.Errorf("%w: unknown export target %q", common.ErrInvalidInput, opts.target)
	}
}

// exportColumns picks every column, or every recognized column.
func exportColumns(src cleanSource, all bool) []int {
	if !all {
		return cli.KnownColumns(src.results)
	}
	out := make([]int, src.table.NumColumns())
	for i := range out {
		out[i] = i
	}
	return out
}

func exportFile(cmd *cobra.Command, t *table.Table, opts exportOptions) error {
	output := opts.output
	if output == "" {
		output = cleaner.CleanedName(t.Name) + "." + opts.target
	}
	if format, err := table.FormatFromPath(output); err != nil || string(format) != opts.target {
		return fmt.Errorf("%w: output %s does not match target %s", common.ErrInvalidInput, output, opts.target)
	}

	if err := table.WriteFile(output, t); err != nil {
		return common.NewUserError(fmt.Sprintf("could not write %s", output), err)
	}

	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Exported %d rows to %s", t.NumRows(), output)))
	return nil
}

func exportSheets(cmd *cobra.Command, t *table.Table, opts exportOptions) error {
	sheetsCfg, err := config.LoadSheetsConfig(viper.GetViper())
	if err != nil {
		return common.NewUserError("Google Sheets is not configured, run 'sift auth sheets' or set sheets.service_account_path", err)
	}
	if opts.spreadsheetID != "" {
		sheetsCfg.SpreadsheetID = opts.spreadsheetID
	}
	if !viper.IsSet("sheets.spreadsheet_name") {
		sheetsCfg.SpreadsheetName = t.Name
	}

	writer, err := newSheetsWriter(cmd.Context(), *sheetsCfg)
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	res, err := writer.Write(cmd.Context(), t)
	if err != nil {
		return fmt.Errorf("failed to export to Google Sheets: %w", err)
	}

	msg := fmt.Sprintf("Exported %d rows to spreadsheet %s", res.Rows, res.SpreadsheetID)
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(msg))
	if res.URL != "" {
		fmt.Fprintln(cmd.OutOrStdout(), res.URL)
	}
	return nil
}
