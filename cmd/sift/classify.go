package main

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/spf13/cobra"

	"github.com/Veraticus/sift/internal/classification"
	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/config"
	"github.com/Veraticus/sift/internal/engine"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/storage"
	"github.com/Veraticus/sift/internal/table"
)

type classifyOptions struct {
	strategy   string
	providers  []string
	localOnly  bool
	jsonOutput bool
	save       bool
	samples    bool
	noProgress bool
}

func classifyCmd() *cobra.Command {
	var opts classifyOptions

	cmd := &cobra.Command{
		Use:   "classify <file>",
		Short: "Detect what each column of a table contains",
		Long: `Classify every column of a CSV, Excel (.xlsx) or HTML table.

Configured AI providers are tried in priority order. When none is configured,
or every provider fails for a column, the built-in heuristics decide.

Use --save to keep the table and its classification as a session that
'sift clean' can pick columns from later.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClassify(cmd, args[0], opts)
		},
	}

	cmd.Flags().StringVar(&opts.strategy, "strategy", "", "ai-first or local-first (overrides engine.strategy)")
	cmd.Flags().StringSliceVar(&opts.providers, "providers", nil, "only use these providers, e.g. groq,openai")
	cmd.Flags().BoolVar(&opts.localOnly, "local", false, "skip AI providers and use the built-in heuristics only")
	cmd.Flags().BoolVar(&opts.jsonOutput, "json", false, "print results as JSON")
	cmd.Flags().BoolVar(&opts.save, "save", false, "store the table and results as a session")
	cmd.Flags().BoolVar(&opts.samples, "samples", false, "show sample values under each column")
	cmd.Flags().BoolVar(&opts.noProgress, "no-progress", false, "hide the progress bar")

	return cmd
}

type classifyOutput struct {
	File      string                       `json:"file"`
	SessionID string                       `json:"session_id,omitempty"`
	Providers []string                     `json:"providers"`
	Results   []model.ClassificationResult `json:"results"`
	Rows      int                          `json:"rows"`
}

// classifyRun is the outcome of classifying one table.
type classifyRun struct {
	results   []model.ClassificationResult
	providers []string
	floor     float64
	elapsed   time.Duration
}

func runClassify(cmd *cobra.Command, path string, opts classifyOptions) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	t, err := table.ReadFile(path)
	if err != nil {
		return common.NewUserError(fmt.Sprintf("could not read %s", path), err)
	}

	run, classifyErr := classifyTable(cmd, cfg, t, opts)
	if run.results == nil {
		return classifyErr
	}

	out := classifyOutput{
		File:      path,
		Rows:      t.NumRows(),
		Providers: run.providers,
		Results:   run.results,
	}

	if opts.save && classifyErr == nil {
		id, err := saveSession(cmd, cfg, t, path, run.results)
		if err != nil {
			return err
		}
		out.SessionID = id
	}

	if opts.jsonOutput {
		if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
			return err
		}
	} else {
		if err := renderClassification(cmd.OutOrStdout(), t, out, run.floor, opts.samples, run.elapsed); err != nil {
			return err
		}
	}

	return classifyErr
}

// classifyTable runs the orchestrator over every column of t. On
// interruption the results are still complete and the error is non-nil.
func classifyTable(cmd *cobra.Command, cfg *config.Config, t *table.Table, opts classifyOptions) (classifyRun, error) {
	if opts.strategy != "" {
		strategy, err := engine.ParseStrategy(opts.strategy)
		if err != nil {
			return classifyRun{}, err
		}
		cfg.Engine.Strategy = strategy
	}

	heuristic, err := cfg.Heuristic(classification.WithLogger(slog.Default()))
	if err != nil {
		return classifyRun{}, fmt.Errorf("failed to build local classifier: %w", err)
	}

	chain, err := providerChain(cfg, opts)
	if err != nil {
		return classifyRun{}, err
	}
	if chain.Len() == 0 && !opts.localOnly {
		slog.Info("No AI providers configured, using local heuristics")
	}

	columns := t.Columns()
	engineOpts := []engine.Option{engine.WithLogger(slog.Default())}
	if !opts.noProgress && !opts.jsonOutput && len(columns) > 0 {
		progress := cli.NewProgress(cmd.ErrOrStderr(), len(columns))
		engineOpts = append(engineOpts, engine.WithProgress(progress.Update))
	}

	orch := engine.New(heuristic, cfg.Engine, engineOpts...)
	defer orch.Close()

	handler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, cancel := handler.HandleInterrupts(cmd.Context(), "Columns still waiting on a provider were classified locally.")
	defer cancel()

	start := time.Now()
	results, err := orch.ClassifyTable(ctx, columns, chain)
	run := classifyRun{
		results:   results,
		providers: chain.Names(),
		floor:     heuristic.Floor(),
		elapsed:   time.Since(start),
	}
	if err != nil {
		return run, fmt.Errorf("classification interrupted: %w", err)
	}
	return run, nil
}

// providerChain resolves the providers a classify run may consult.
func providerChain(cfg *config.Config, opts classifyOptions) (engine.Chain, error) {
	if opts.localOnly {
		return engine.NewChain(), nil
	}

	chain, err := engine.BuildChain(cfg.ProviderSpecs())
	if err != nil {
		return engine.Chain{}, fmt.Errorf("failed to build provider chain: %w", err)
	}

	names := splitNames(opts.providers)
	if len(names) == 0 {
		return chain, nil
	}
	chain = chain.Only(names...)
	if chain.Len() == 0 {
		return engine.Chain{}, fmt.Errorf("%w: none of %v has an API key", common.ErrNoProviders, names)
	}
	return chain, nil
}

func saveSession(cmd *cobra.Command, cfg *config.Config, t *table.Table, path string, results []model.ClassificationResult) (string, error) {
	store, err := initStorage(cmd.Context(), cfg)
	if err != nil {
		return "", err
	}
	defer func() { _ = store.Close() }()

	format, _ := table.FormatFromPath(path)
	session, err := store.CreateSession(cmd.Context(), storage.NewSession{
		Table:      t,
		SourcePath: path,
		Format:     format,
		Results:    results,
	})
	if err != nil {
		return "", fmt.Errorf("failed to save session: %w", err)
	}
	slog.Debug("Saved session", "id", session.ID, "columns", session.ColumnCount)
	return session.ID, nil
}

func renderClassification(w io.Writer, t *table.Table, out classifyOutput, floor float64, samples bool, elapsed time.Duration) error {
	report := cli.ResultsReport{
		Results:     out.Results,
		Floor:       floor,
		ShowSamples: samples,
	}
	if err := report.Render(w); err != nil {
		return err
	}

	if _, err := fmt.Fprintln(w, cli.RenderSummary(t.Name, t.NumRows(), out.Results, elapsed)); err != nil {
		return err
	}

	if out.SessionID != "" {
		msg := fmt.Sprintf("Saved session %s. Run 'sift clean --session %s' to pick columns.", out.SessionID, out.SessionID)
		if _, err := fmt.Fprintln(w, cli.FormatSuccess(msg)); err != nil {
			return err
		}
	}
	return nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}
