package main

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/storage"
)

func sessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage stored classification sessions",
		Long:  `List, inspect, and delete tables saved with 'sift classify --save'.`,
	}

	cmd.AddCommand(listSessionsCmd())
	cmd.AddCommand(showSessionCmd())
	cmd.AddCommand(deleteSessionCmd())
	cmd.AddCommand(purgeSessionsCmd())

	return cmd
}

func listSessionsCmd() *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List stored sessions, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			sessions, err := store.ListSessions(cmd.Context(), limit)
			if err != nil {
				return fmt.Errorf("failed to list sessions: %w", err)
			}

			rows := make([]cli.SessionRow, 0, len(sessions))
			for _, s := range sessions {
				rows = append(rows, cli.SessionRow{
					CreatedAt: s.CreatedAt,
					ID:        s.ID,
					Name:      s.Name,
					Rows:      s.RowCount,
					Columns:   s.ColumnCount,
				})
			}
			return cli.RenderSessions(cmd.OutOrStdout(), rows, time.Now())
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum sessions to show (0 for all)")

	return cmd
}

func showSessionCmd() *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "show <id>",
		Short: "Show the classification stored in a session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			session, err := store.GetSession(cmd.Context(), args[0])
			if err != nil {
				return fmt.Errorf("failed to load session %s: %w", args[0], err)
			}

			if jsonOutput {
				return writeJSON(cmd.OutOrStdout(), session)
			}
			return renderSession(cmd, session)
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the session as JSON")

	return cmd
}

func renderSession(cmd *cobra.Command, session *storage.Session) error {
	w := cmd.OutOrStdout()

	fmt.Fprintln(w, cli.FormatTitle("Session "+session.ID))
	fmt.Fprintf(w, "Name: %s\n", session.Name)
	if session.SourcePath != "" {
		fmt.Fprintf(w, "Source: %s\n", session.SourcePath)
	}
	fmt.Fprintf(w, "Rows: %s  Columns: %d\n", humanize.Comma(int64(session.RowCount)), session.ColumnCount)
	fmt.Fprintf(w, "Created: %s\n\n", humanize.Time(session.CreatedAt))

	report := cli.ResultsReport{Results: session.Results, ShowSamples: true}
	if err := report.Render(w); err != nil {
		return err
	}

	if len(session.Selected) > 0 {
		names := make([]string, 0, len(session.Selected))
		for _, idx := range session.Selected {
			names = append(names, session.Headers[idx])
		}
		fmt.Fprintf(w, "\nSelected: %v (normalize: %t)\n", names, session.Normalize)
	}
	return nil
}

func deleteSessionCmd() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a stored session",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Delete session %s?", args[0]))
				if err != nil || !ok {
					return err
				}
			}

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			if err := store.DeleteSession(cmd.Context(), args[0]); err != nil {
				return fmt.Errorf("failed to delete session %s: %w", args[0], err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Deleted session "+args[0]))
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func purgeSessionsCmd() *cobra.Command {
	var (
		olderThan time.Duration
		yes       bool
	)

	cmd := &cobra.Command{
		Use:   "purge",
		Short: "Delete sessions older than a given age",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if olderThan <= 0 {
				return fmt.Errorf("--older-than must be positive")
			}
			cutoff := time.Now().Add(-olderThan)

			if !yes {
				ok, err := confirm(cmd, fmt.Sprintf("Delete sessions created before %s?", humanize.Time(cutoff)))
				if err != nil || !ok {
					return err
				}
			}

			store, err := openStore(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = store.Close() }()

			n, err := store.PurgeSessionsOlderThan(cmd.Context(), cutoff)
			if err != nil {
				return fmt.Errorf("failed to purge sessions: %w", err)
			}

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Deleted %d session(s)", n)))
			return nil
		},
	}

	cmd.Flags().DurationVar(&olderThan, "older-than", 30*24*time.Hour, "age of the sessions to delete")
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "skip the confirmation prompt")

	return cmd
}

func openStore(cmd *cobra.Command) (*storage.SQLiteStorage, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}
	return initStorage(cmd.Context(), cfg)
}

func confirm(cmd *cobra.Command, question string) (bool, error) {
	prompter := cli.NewCLIPrompter(cmd.InOrStdin(), cmd.OutOrStdout())
	ok, err := prompter.Confirm(cmd.Context(), question, false)
	if err != nil {
		return false, fmt.Errorf("failed to read answer: %w", err)
	}
	if !ok {
		fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("Canceled"))
	}
	return ok, nil
}
