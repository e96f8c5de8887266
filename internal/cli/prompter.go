package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/Veraticus/sift/internal/cleaner"
	"github.com/Veraticus/sift/internal/common"
	"github.com/Veraticus/sift/internal/model"
)

// Prompter asks line-based questions on a terminal.
type Prompter struct {
	reader *NonBlockingReader
	writer io.Writer
}

// NewCLIPrompter creates a new CLI prompter with the given reader and writer.
func NewCLIPrompter(reader io.Reader, writer io.Writer) *Prompter {
	if reader == nil {
		reader = os.Stdin
	}
	if writer == nil {
		writer = os.Stdout
	}

	return &Prompter{
		reader: NewNonBlockingReader(reader),
		writer: writer,
	}
}

// Confirm asks a yes/no question. An empty answer picks defaultYes.
func (p *Prompter) Confirm(ctx context.Context, question string, defaultYes bool) (bool, error) {
	options := "[y/N]"
	if defaultYes {
		options = "[Y/n]"
	}

	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt(question+" "+options)); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}

		answer, err := p.reader.ReadLine(ctx)
		if err != nil {
			return false, err
		}

		switch strings.ToLower(answer) {
		case "":
			return defaultYes, nil
		case "y", "yes":
			return true, nil
		case "n", "no":
			return false, nil
		}

		if _, err := fmt.Fprintln(p.writer, FormatWarning("Please answer y or n")); err != nil {
			return false, fmt.Errorf("failed to write prompt: %w", err)
		}
	}
}

// SelectColumns lists the columns with their categories and reads a comma
// separated list of names or 1-based numbers. "all" keeps every column that
// is not Unknown.
func (p *Prompter) SelectColumns(ctx context.Context, headers []string, results []model.ClassificationResult) ([]int, error) {
	var b strings.Builder
	for i, h := range headers {
		category := model.CategoryUnknown
		if i < len(results) {
			category = results[i].Category
		}
		fmt.Fprintf(&b, "  [%d] %s %s\n", i+1, h, SubtleStyle.Render("("+string(category)+")"))
	}
	if _, err := fmt.Fprint(p.writer, RenderBox("Columns", strings.TrimRight(b.String(), "\n"))+"\n"); err != nil {
		return nil, fmt.Errorf("failed to write columns: %w", err)
	}

	for {
		if _, err := fmt.Fprint(p.writer, FormatPrompt("Columns to keep (e.g. 1,3,Email or all)")); err != nil {
			return nil, fmt.Errorf("failed to write prompt: %w", err)
		}

		answer, err := p.reader.ReadLine(ctx)
		if err != nil {
			return nil, err
		}

		if strings.EqualFold(answer, "all") {
			selected := KnownColumns(results)
			if len(selected) == 0 {
				return nil, common.ErrNoColumnsSelected
			}
			return selected, nil
		}

		selected, err := cleaner.SelectByName(headers, splitList(answer))
		if err == nil && len(selected) > 0 {
			return selected, nil
		}
		if err == nil {
			err = common.ErrNoColumnsSelected
		}
		if _, werr := fmt.Fprintln(p.writer, FormatWarning(err.Error())); werr != nil {
			return nil, fmt.Errorf("failed to write prompt: %w", werr)
		}
	}
}

// KnownColumns returns the indices of every column with a recognized category.
func KnownColumns(results []model.ClassificationResult) []int {
	var out []int
	for i, r := range results {
		if r.Category != model.CategoryUnknown {
			out = append(out, i)
		}
	}
	return out
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
