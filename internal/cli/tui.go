package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/thanhnhan2tn/package-updater/pkg/updater"
)

// =============================================================================
// DependencyPickerModel - Interactive selection of upgrades
// =============================================================================

// DependencyPickerModel is the bubbletea model for choosing which outdated
// dependencies to upgrade.
type DependencyPickerModel struct {
	Deps      []updater.Dependency
	Chosen    map[int]bool
	Cursor    int
	Height    int
	Offset    int
	Confirmed bool
}

// NewDependencyPickerModel starts with every dependency chosen.
func NewDependencyPickerModel(deps []updater.Dependency) DependencyPickerModel {
	chosen := make(map[int]bool, len(deps))
	for i := range deps {
		chosen[i] = true
	}
	return DependencyPickerModel{Deps: deps, Chosen: chosen, Height: 15}
}

// Selected returns the chosen dependencies in list order, or nil when the
// picker was cancelled.
func (m DependencyPickerModel) Selected() []updater.Dependency {
	if !m.Confirmed {
		return nil
	}
	var out []updater.Dependency
	for i, d := range m.Deps {
		if m.Chosen[i] {
			out = append(out, d)
		}
	}
	return out
}

func (m DependencyPickerModel) Init() tea.Cmd {
	return nil
}

func (m DependencyPickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				if m.Cursor < m.Offset {
					m.Offset = m.Cursor
				}
			}
		case "down", "j":
			if m.Cursor < len(m.Deps)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case " ", "x":
			if len(m.Deps) > 0 {
				m.Chosen[m.Cursor] = !m.Chosen[m.Cursor]
			}
		case "a":
			all := m.chosenCount() < len(m.Deps)
			for i := range m.Deps {
				m.Chosen[i] = all
			}
		case "enter":
			m.Confirmed = true
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-8, 5)
	}
	return m, nil
}

func (m DependencyPickerModel) chosenCount() int {
	n := 0
	for i := range m.Deps {
		if m.Chosen[i] {
			n++
		}
	}
	return n
}

func (m DependencyPickerModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Upgrades"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("↑/↓ navigate  space toggle  a all  ⏎ upgrade  q quit"))
	b.WriteString("\n\n")

	end := min(m.Offset+m.Height, len(m.Deps))
	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		d := m.Deps[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}
		box := "[ ]"
		if m.Chosen[i] {
			box = "[x]"
		}
		rows = append(rows, []string{cursor + box, d.Project, string(d.Type), d.Name, d.CurrentVersion, iconArrow + " " + d.LatestVersion})
	}

	b.WriteString(renderTable(
		[]string{"", "Project", "Type", "Package", "Current", "Latest"},
		rows,
		func(row, col int) lipgloss.Style {
			idx := m.Offset + row
			base := lipgloss.NewStyle()
			if col == 1 || col == 2 {
				base = base.Foreground(colorDim)
			}
			if idx == m.Cursor {
				base = base.Bold(true)
				if col != 1 && col != 2 {
					base = base.Foreground(colorCyan)
				}
			} else if !m.Chosen[idx] {
				base = base.Foreground(colorDim)
			}
			return base
		},
	))
	b.WriteString("\n\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("  %d of %d selected", m.chosenCount(), len(m.Deps))))

	return b.String()
}
