package main

import (
	"fmt"
	"slices"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/reflow/truncate"
	"github.com/spf13/cobra"

	"github.com/Veraticus/sift/internal/classification"
	"github.com/Veraticus/sift/internal/cleaner"
	"github.com/Veraticus/sift/internal/cli"
	"github.com/Veraticus/sift/internal/model"
)

func categoriesCmd() *cobra.Command {
	var showKeywords bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "List the column categories sift recognizes",
		Long: `Display every category with the header a cleaned column receives.

With --keywords the header keywords of each category are shown, including
any added by classifier.definitions_file.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			defs := classification.DefaultDefinitions()
			if cfg.Classifier.DefinitionsFile != "" {
				defs, err = classification.LoadDefinitions(cfg.Classifier.DefinitionsFile, defs)
				if err != nil {
					return err
				}
			}
			keywords := make(map[model.Category]classification.Keywords, len(defs))
			for _, d := range defs {
				keywords[d.Category] = d.Keywords
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			defer func() { _ = w.Flush() }()

			headerStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("86"))
			if showKeywords {
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
					headerStyle.Render("ID"),
					headerStyle.Render("Category"),
					headerStyle.Render("Cleaned header"),
					headerStyle.Render("Keywords"))
			} else {
				fmt.Fprintf(w, "%s\t%s\t%s\n",
					headerStyle.Render("ID"),
					headerStyle.Render("Category"),
					headerStyle.Render("Cleaned header"))
			}

			for _, cat := range model.AllCategories() {
				header := cleaner.HeaderFor(cat, cli.SubtleStyle.Render("(original)"))
				if !showKeywords {
					fmt.Fprintf(w, "%s\t%s\t%s\n", cat.ID(), cat, header)
					continue
				}
				kw := keywords[cat]
				list := strings.Join(slices.Concat(kw.Strong, kw.Weak), ", ")
				if list == "" {
					list = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", cat.ID(), cat, header, truncate.StringWithTail(list, 60, "…"))
			}
			return nil
		},
	}

	cmd.Flags().BoolVarP(&showKeywords, "keywords", "k", false, "show header keywords per category")

	return cmd
}
