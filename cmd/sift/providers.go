package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/engine"
	"github.com/Veraticus/sift/internal/llm"
)

func providersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "providers",
		Short: "Show the AI providers and the order they are tried in",
		Long: `List every supported AI provider, whether an API key is configured, and
the order 'sift classify' consults them in.

Keys come from providers.<name>.api_key or the provider's usual environment
variable, for example GROQ_API_KEY.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			chain, err := engine.BuildChain(cfg.ProviderSpecs())
			if err != nil {
				return fmt.Errorf("failed to build provider chain: %w", err)
			}
			order := make(map[string]int, chain.Len())
			for i, name := range chain.Names() {
				order[name] = i + 1
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
				headerStyle.Render("Order"),
				headerStyle.Render("Provider"),
				headerStyle.Render("Model"),
				headerStyle.Render("Key"),
				headerStyle.Render("Env var"))

			for _, info := range llm.KnownProviders() {
				pc := cfg.Providers[info.Name]
				modelName := pc.Model
				if modelName == "" {
					modelName = info.DefaultModel
				}
				pos, key := "-", cli.ErrorStyle.Render("missing")
				if n, ok := order[info.Name]; ok {
					pos, key = fmt.Sprint(n), cli.SuccessStyle.Render("configured")
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", pos, info.Name, modelName, key, info.EnvVar)
			}
			if err := w.Flush(); err != nil {
				return err
			}

			if chain.Len() == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), cli.FormatInfo("No provider keys found; columns are classified with the built-in heuristics."))
			}
			return nil
		},
	}
}
