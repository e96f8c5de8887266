package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/muesli/reflow/truncate"

	"github.com/Veraticus/sift/internal/cleaner"
	"github.com/Veraticus/sift/internal/model"
	"github.com/Veraticus/sift/internal/tui/themes"
)

// Selection is what the user chose in the picker.
type Selection struct {
	Columns   []int
	Normalize bool
	Confirmed bool
}

// PickerModel lets the user choose which classified columns to keep.
type PickerModel struct {
	theme     themes.Theme
	keys      KeyMap
	help      help.Model
	headers   []string
	results   []model.ClassificationResult
	checked   []bool
	status    string
	cursor    int
	width     int
	normalize bool
	confirmed bool
	quitting  bool
}

// NewPicker creates a picker with recognized columns pre-selected.
func NewPicker(headers []string, results []model.ClassificationResult, normalize bool, theme themes.Theme) PickerModel {
	m := PickerModel{
		theme:     theme,
		keys:      DefaultKeyMap(),
		help:      help.New(),
		headers:   headers,
		results:   results,
		checked:   make([]bool, len(headers)),
		normalize: normalize,
		width:     80,
	}
	m.keepKnown()
	return m
}

// Init implements tea.Model.
func (m PickerModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m PickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case tea.KeyMsg:
		m.status = ""
		switch {
		case key.Matches(msg, m.keys.Quit):
			m.quitting = true
			return m, tea.Quit
		case key.Matches(msg, m.keys.Up):
			if m.cursor > 0 {
				m.cursor--
			}
		case key.Matches(msg, m.keys.Down):
			if m.cursor < len(m.headers)-1 {
				m.cursor++
			}
		case key.Matches(msg, m.keys.Toggle):
			if len(m.checked) > 0 {
				m.checked[m.cursor] = !m.checked[m.cursor]
			}
		case key.Matches(msg, m.keys.KeepKnown):
			m.keepKnown()
		case key.Matches(msg, m.keys.ClearAll):
			for i := range m.checked {
				m.checked[i] = false
			}
		case key.Matches(msg, m.keys.Normalize):
			m.normalize = !m.normalize
		case key.Matches(msg, m.keys.Help):
			m.help.ShowAll = !m.help.ShowAll
		case key.Matches(msg, m.keys.Confirm):
			if len(m.Selection().Columns) == 0 {
				m.status = "Select at least one column"
				return m, nil
			}
			m.confirmed = true
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m *PickerModel) keepKnown() {
	for i := range m.checked {
		m.checked[i] = i < len(m.results) && m.results[i].Category != model.CategoryUnknown
	}
}

// Selection returns the current choice.
func (m PickerModel) Selection() Selection {
	var cols []int
	for i, on := range m.checked {
		if on {
			cols = append(cols, i)
		}
	}
	return Selection{Columns: cols, Normalize: m.normalize, Confirmed: m.confirmed}
}

// View implements tea.Model.
func (m PickerModel) View() string {
	if m.quitting || m.confirmed {
		return ""
	}

	var b strings.Builder
	b.WriteString(m.theme.Title.Render("Select columns to keep"))
	b.WriteString("\n")

	nameWidth := uint(max(m.width/3, 12))
	for i, h := range m.headers {
		cursor := "  "
		if i == m.cursor {
			cursor = m.theme.Cursor.Render("> ")
		}
		box := "[ ]"
		if m.checked[i] {
			box = m.theme.Checked.Render("[x]")
		}

		category := model.CategoryUnknown
		confidence := 0.0
		if i < len(m.results) {
			category = m.results[i].Category
			confidence = m.results[i].Confidence
		}
		target := cleaner.HeaderFor(category, h)

		line := fmt.Sprintf("%s%s %s", cursor, box, truncate.StringWithTail(h, nameWidth, "…"))
		detail := fmt.Sprintf(" %s %.0f%% → %s", category, confidence*100, target)
		b.WriteString(line)
		b.WriteString(m.theme.Muted.Render(detail))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	normalize := "off"
	if m.normalize {
		normalize = "on"
	}
	fmt.Fprintf(&b, "%d of %d columns selected · normalize %s\n",
		len(m.Selection().Columns), len(m.headers), normalize)
	if m.status != "" {
		b.WriteString(m.theme.StatusError.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.help.View(m.keys))

	return m.theme.BorderedBox.Render(b.String())
}
