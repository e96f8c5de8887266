package cli

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"github.com/muesli/reflow/truncate"
	"github.com/muesli/reflow/wrap"

	"github.com/Veraticus/sift/internal/model"
)

const (
	columnWidth   = 24
	categoryWidth = 16
	sourceWidth   = 24
	defaultWidth  = 100
)

// ResultsReport renders classification results as a terminal table.
type ResultsReport struct {
	Results []model.ClassificationResult
	// Floor separates borderline from rejected confidences.
	Floor float64
	// Width is the terminal width; 0 means 100.
	Width int
	// ShowSamples adds one line of sample values under each row.
	ShowSamples bool
}

// Render writes the report to w.
func (r ResultsReport) Render(w io.Writer) error {
	width := r.Width
	if width <= 0 {
		width = defaultWidth
	}

	var b strings.Builder
	header := fmt.Sprintf("%-4s%s  %s  %-6s  %s",
		"#",
		cell("Column", columnWidth),
		cell("Category", categoryWidth),
		"Conf",
		"Source")
	b.WriteString(TableHeaderStyle.Render(header))
	b.WriteString("\n")

	for i, res := range r.Results {
		conf := ConfidenceStyle(res.Confidence, r.Floor).Render(fmt.Sprintf("%-6s", fmt.Sprintf("%.0f%%", res.Confidence*100)))
		fmt.Fprintf(&b, "%-4d%s  %s  %s  %s %s\n",
			i+1,
			cell(res.Column, columnWidth),
			cell(string(res.Category), categoryWidth),
			conf,
			SourceIcon(res.Source),
			truncate.StringWithTail(res.Source.String(), sourceWidth, "…"))

		if r.ShowSamples && len(res.SampleValues) > 0 {
			samples := wrap.String(strings.Join(res.SampleValues, ", "), max(width-8, 20))
			for _, line := range strings.Split(samples, "\n") {
				b.WriteString(SubtleStyle.Render("    " + line))
				b.WriteString("\n")
			}
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

// cell truncates s to width and pads it with spaces.
func cell(s string, width uint) string {
	s = truncate.StringWithTail(s, width, "…")
	if pad := int(width) - lipgloss.Width(s); pad > 0 {
		s += strings.Repeat(" ", pad)
	}
	return s
}

// Summary counts results per category and source.
type Summary struct {
	ByCategory map[model.Category]int
	AI         int
	Local      int
	Unknown    int
}

// Summarize tallies results.
func Summarize(results []model.ClassificationResult) Summary {
	s := Summary{ByCategory: make(map[model.Category]int)}
	for _, r := range results {
		s.ByCategory[r.Category]++
		if r.Source.IsAI() {
			s.AI++
		} else {
			s.Local++
		}
		if r.Category == model.CategoryUnknown {
			s.Unknown++
		}
	}
	return s
}

// RenderSummary formats a boxed summary of a classification run.
func RenderSummary(name string, rows int, results []model.ClassificationResult, elapsed time.Duration) string {
	s := Summarize(results)

	var b strings.Builder
	fmt.Fprintf(&b, "Table: %s\n", name)
	fmt.Fprintf(&b, "Rows: %s  Columns: %d\n", humanize.Comma(int64(rows)), len(results))
	fmt.Fprintf(&b, "Classified by provider: %d  locally: %d\n", s.AI, s.Local)
	fmt.Fprintf(&b, "Unrecognized columns: %d\n", s.Unknown)
	for _, cat := range model.AllCategories() {
		if n := s.ByCategory[cat]; n > 0 && cat != model.CategoryUnknown {
			fmt.Fprintf(&b, "  • %s: %d\n", cat, n)
		}
	}
	fmt.Fprintf(&b, "Time taken: %s", elapsed.Round(time.Millisecond))

	return RenderBox("Classification Complete", b.String())
}

// SessionRow is the listing view of a stored session.
type SessionRow struct {
	CreatedAt time.Time
	ID        string
	Name      string
	Rows      int
	Columns   int
}

// RenderSessions writes a session listing to w. now anchors relative times.
func RenderSessions(w io.Writer, sessions []SessionRow, now time.Time) error {
	if len(sessions) == 0 {
		_, err := fmt.Fprintln(w, FormatInfo("No sessions stored"))
		return err
	}

	var b strings.Builder
	b.WriteString(TableHeaderStyle.Render(fmt.Sprintf("%s  %s  %8s  %7s  %s",
		fmt.Sprintf("%-36s", "ID"), cell("Name", 20), "Rows", "Columns", "Created")))
	b.WriteString("\n")
	for _, s := range sessions {
		fmt.Fprintf(&b, "%-36s  %s  %8s  %7d  %s\n",
			s.ID,
			cell(s.Name, 20),
			humanize.Comma(int64(s.Rows)),
			s.Columns,
			SubtleStyle.Render(humanize.RelTime(s.CreatedAt, now, "ago", "from now")))
	}

	_, err := io.WriteString(w, b.String())
	return err
}
