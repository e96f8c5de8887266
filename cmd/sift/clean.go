package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Veraticus/sift/internal/cleaner"
	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/storage"
	"github.com/Veraticus/sift/internal/table"
	"github.com/Veraticus/sift/internal/tui"
	"github.com/Veraticus/sift/internal/tui/themes"
)

type cleanOptions struct {
	sessionID   string
	columns     []string
	output      string
	interactive bool
	normalize   bool
	localOnly   bool
}

func cleanCmd() *cobra.Command {
	var opts cleanOptions

	cmd := &cobra.Command{
		Use:   "clean [file]",
		Short: "Keep selected columns and rename them by category",
		Long: `Write a cleaned copy of a table containing only the chosen columns.

Each kept column is renamed after its detected category, for example an
"E-mail" column becomes "Email Address". Unrecognized columns keep their
original header.

The table comes from a saved session (--session) or is read and classified
from a file. Columns are chosen with --columns, with the interactive picker
(--interactive), from the selection already stored in the session, or at a
prompt.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && opts.sessionID == "" {
				return fmt.Errorf("provide a file or --session")
			}
			if len(args) == 1 && opts.sessionID != "" {
				return fmt.Errorf("provide either a file or --session, not both")
			}
			var path string
			if len(args) == 1 {
				path = args[0]
			}
			return runClean(cmd, path, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.sessionID, "session", "s", "", "clean a session saved with 'sift classify --save'")
	cmd.Flags().StringSliceVarP(&opts.columns, "columns", "c", nil, "columns to keep, by name or 1-based number")
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file, .csv or .xlsx (default cleaned_<name>.csv)")
	cmd.Flags().BoolVarP(&opts.interactive, "interactive", "i", false, "pick columns in a full-screen picker")
	cmd.Flags().BoolVar(&opts.normalize, "normalize", false, "trim values and normalize emails, phones and URLs")
	cmd.Flags().BoolVar(&opts.localOnly, "local", false, "classify files with the built-in heuristics only")

	return cmd
}

// cleanSource is the table being cleaned together with its classification.
type cleanSource struct {
	table   *table.Table
	session *storage.Session
	store   *storage.SQLiteStorage
	results []model.ClassificationResult
}

func runClean(cmd *cobra.Command, path string, opts cleanOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var src cleanSource
	if opts.sessionID != "" {
		store, err := initStorage(cmd.Context(), cfg)
		if err != nil {
			return err
		}
		defer func() { _ = store.Close() }()

		src, err = loadSessionSource(cmd, store, opts.sessionID)
		if err != nil {
			return err
		}
	} else {
		t, err := table.ReadFile(path)
		if err != nil {
			return common.NewUserError(fmt.Sprintf("could not read %s", path), err)
		}
		run, err := classifyTable(cmd, cfg, t, classifyOptions{localOnly: opts.localOnly})
		if err != nil {
			return err
		}
		src = cleanSource{table: t, results: run.results}
	}

	normalize := opts.normalize
	if src.session != nil && !cmd.Flags().Changed("normalize") {
		normalize = src.session.Normalize
	}

	selected, normalize, err := chooseColumns(cmd, src, opts, normalize)
	if err != nil {
		return err
	}

	cleaned, err := cleaner.Clean(src.table, src.results, cleaner.Options{
		Selected:  selected,
		Normalize: normalize,
	})
	if err != nil {
		return fmt.Errorf("failed to clean table: %w", err)
	}

	output := opts.output
	if output == "" {
		output = cleaner.CleanedFileName(src.table.Name)
	}
	if err := table.WriteFile(output, cleaned.Table); err != nil {
		return common.NewUserError(fmt.Sprintf("could not write %s", output), err)
	}

	if src.session != nil {
		if err := src.store.SaveSelection(cmd.Context(), src.session.ID, selected, normalize); err != nil {
			slog.Warn("Failed to remember column selection", "session", src.session.ID, "error", err)
		}
	}

	return renderMappings(cmd.OutOrStdout(), cleaned, output)
}

func loadSessionSource(cmd *cobra.Command, store *storage.SQLiteStorage, id string) (cleanSource, error) {
	session, err := store.GetSession(cmd.Context(), id)
	if err != nil {
		return cleanSource{}, fmt.Errorf("failed to load session %s: %w", id, err)
	}
	t, err := store.LoadTable(cmd.Context(), id)
	if err != nil {
		return cleanSource{}, fmt.Errorf("failed to load table for session %s: %w", id, err)
	}
	return cleanSource{
		table:   t,
		session: session,
		store:   store,
		results: session.Results,
	}, nil
}

// chooseColumns resolves the columns to keep. Flags win over the picker,
// the picker over a stored selection, and the stored selection over the
// prompt.
func chooseColumns(cmd *cobra.Command, src cleanSource, opts cleanOptions, normalize bool) ([]int, bool, error) {
	if names := splitNames(opts.columns); len(names) > 0 {
		selected, err := cleaner.SelectByName(src.table.Headers, names)
		return selected, normalize, err
	}

	if opts.interactive {
		theme := themes.ByName(viper.GetString("ui.theme"))
		sel, err := tui.PickColumns(cmd.Context(), src.table.Headers, src.results, normalize, theme)
		if errors.Is(err, tui.ErrCancelled) {
			return nil, false, common.NewUserError("nothing written", err)
		}
		if err != nil {
			return nil, false, err
		}
		return sel.Columns, sel.Normalize, nil
	}

	if src.session != nil && len(src.session.Selected) > 0 {
		return src.session.Selected, normalize, nil
	}

	prompter := cli.NewCLIPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	selected, err := prompter.SelectColumns(cmd.Context(), src.table.Headers, src.results)
	if err != nil {
		return nil, false, fmt.Errorf("failed to select columns: %w", err)
	}
	return selected, normalize, nil
}

func renderMappings(w io.Writer, cleaned *cleaner.Result, output string) error {
	var b strings.Builder
	for _, m := range cleaned.Mappings {
		fmt.Fprintf(&b, "%s → %s\n", m.Original, m.Header)
	}
	fmt.Fprintf(&b, "\n%d rows written to %s", cleaned.Table.NumRows(), filepath.Clean(output))

	_, err := fmt.Fprintln(w, cli.RenderBox("Cleaned Columns", b.String()))
	return err
}
