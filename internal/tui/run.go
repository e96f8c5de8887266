package tui

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/tui/themes"
)

// ErrCancelled is returned when the user quits the picker without confirming.
var ErrCancelled = errors.New("selection canceled")

// PickColumns runs the interactive picker until the user confirms or quits.
func PickColumns(ctx context.Context, headers []string, results []model.ClassificationResult, normalize bool, theme themes.Theme) (Selection, error) {
	program := tea.NewProgram(
		NewPicker(headers, results, normalize, theme),
		tea.WithContext(ctx),
		tea.WithAltScreen(),
	)

	final, err := program.Run()
	if err != nil {
		return Selection{}, fmt.Errorf("failed to run column picker: %w", err)
	}

	picker, ok := final.(PickerModel)
	if !ok {
		return Selection{}, fmt.Errorf("unexpected picker model %T", final)
	}
	sel := picker.Selection()
	if !sel.Confirmed {
		return Selection{}, ErrCancelled
	}
	return sel, nil
}
