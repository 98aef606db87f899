package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/labelsmith/labelsmith/pkg/media"
)

// List styles
var (
	listDimStyle = lipgloss.NewStyle().Foreground(colorDim)
)

// =============================================================================
// MediaListModel - Interactive media profile selection
// =============================================================================

// MediaListModel is the bubbletea model for interactive media selection.
type MediaListModel struct {
	Profiles []media.Profile
	Cursor   int
	Selected *media.Profile
	Height   int
	Offset   int
}

// NewMediaListModel creates a new media list model.
func NewMediaListModel(profiles []media.Profile) MediaListModel {
	return MediaListModel{
		Profiles: profiles,
		Cursor:   0,
		Height:   15,
		Offset:   0,
	}
}

func (m MediaListModel) Init() tea.Cmd {
	return nil
}

func (m MediaListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Profiles)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "enter":
			m.Selected = &m.Profiles[m.Cursor]
			return m, tea.Quit
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 6
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m MediaListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Select Media"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ select  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Profiles) {
		end = len(m.Profiles)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		p := m.Profiles[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		rows = append(rows, []string{cursor, p.ID, p.Name, formatWidth(p), formatLength(p), mediaKind(p)})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Name", "Width", "Length", "Kind").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return lipgloss.NewStyle().Foreground(colorGreen).Bold(true)
			}
			if col == 5 {
				return lipgloss.NewStyle().Foreground(colorDim)
			}
			return lipgloss.NewStyle().Foreground(colorWhite)
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  [%d/%d]", m.Cursor+1, len(m.Profiles))))

	return b.String()
}

// =============================================================================
// Helpers
// =============================================================================

// pickMedia runs the interactive media selector. A nil profile with a nil
// error means the user quit without choosing.
func pickMedia(profiles []media.Profile) (*media.Profile, error) {
	p := tea.NewProgram(NewMediaListModel(profiles))
	finalModel, err := p.Run()
	if err != nil {
		return nil, err
	}

	fm, ok := finalModel.(MediaListModel)
	if !ok || fm.Selected == nil {
		return nil, nil
	}
	return fm.Selected, nil
}
