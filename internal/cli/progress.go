package cli

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/schollz/progressbar/v3"

	"github.com/Veraticus/sift/internal/model"
)

// Progress shows a bar advancing as columns finish classifying.
type Progress struct {
	bar    *progressbar.ProgressBar
	writer io.Writer
	done   int
}

// NewProgress creates a progress bar for total columns.
func NewProgress(writer io.Writer, total int) *Progress {
	if writer == nil {
		writer = os.Stderr
	}
	p := &Progress{writer: writer}
	p.bar = progressbar.NewOptions(total,
		progressbar.OptionSetWriter(writer),
		progressbar.OptionEnableColorCodes(true),
		progressbar.OptionShowCount(),
		progressbar.OptionShowElapsedTimeOnFinish(),
		progressbar.OptionSetWidth(40),
		progressbar.OptionSetDescription("[cyan][bold]Classifying columns...[reset]"),
		progressbar.OptionSetTheme(progressbar.Theme{
			Saucer:        "[green]=[reset]",
			SaucerHead:    "[green]>[reset]",
			SaucerPadding: " ",
			BarStart:      "[",
			BarEnd:        "]",
		}),
		progressbar.OptionOnCompletion(func() {
			if _, err := fmt.Fprintln(writer); err != nil {
				slog.Warn("Failed to write newline after progress bar", "error", err)
			}
		}),
	)
	return p
}

// Update advances the bar. Its signature matches engine.ProgressFunc, which
// serializes calls.
func (p *Progress) Update(completed, _ int, result model.ClassificationResult) {
	p.bar.Describe(fmt.Sprintf("[cyan][bold]Classified[reset] %s", result.Column))
	if delta := completed - p.done; delta > 0 {
		if err := p.bar.Add(delta); err != nil {
			slog.Warn("Failed to update progress bar", "error", err)
		}
		p.done = completed
	}
}

// Done reports how many columns have been counted so far.
func (p *Progress) Done() int {
	return p.done
}
