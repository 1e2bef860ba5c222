package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/arslanmit/istanbul-transportation-network/pkg/netgraph"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
)

// browseRanking opens the interactive stop ranking browser.
func browseRanking(ranking []netgraph.RankedStop) error {
	if len(ranking) == 0 {
		printInfo("No stops to rank")
		return nil
	}
	_, err := tea.NewProgram(NewStopListModel(ranking)).Run()
	return err
}

// StopListModel is the bubbletea model for browsing the stop ranking.
type StopListModel struct {
	Stops  []netgraph.RankedStop
	Cursor int
	Height int
	Offset int
}

// NewStopListModel creates a new stop list model.
func NewStopListModel(stops []netgraph.RankedStop) StopListModel {
	return StopListModel{
		Stops:  stops,
		Height: 15,
	}
}

func (m StopListModel) Init() tea.Cmd {
	return nil
}

func (m StopListModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
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
			if m.Cursor < len(m.Stops)-1 {
				m.Cursor++
				if m.Cursor >= m.Offset+m.Height {
					m.Offset = m.Cursor - m.Height + 1
				}
			}
		case "g", "home":
			m.Cursor = 0
			m.Offset = 0
		case "G", "end":
			m.Cursor = len(m.Stops) - 1
			if m.Cursor >= m.Height {
				m.Offset = m.Cursor - m.Height + 1
			}
		}
	case tea.WindowSizeMsg:
		m.Height = msg.Height - 8
		if m.Height < 5 {
			m.Height = 5
		}
	}
	return m, nil
}

func (m StopListModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Stop Ranking"))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  g/G first/last  q quit"))
	b.WriteString("\n\n")

	end := m.Offset + m.Height
	if end > len(m.Stops) {
		end = len(m.Stops)
	}

	rows := [][]string{}
	for i := m.Offset; i < end; i++ {
		s := m.Stops[i]

		cursor := "  "
		if i == m.Cursor {
			cursor = "▸ "
		}

		rows = append(rows, []string{
			cursor,
			fmt.Sprintf("%d", s.Rank),
			s.Name,
			fmt.Sprintf("%.5f", s.Betweenness),
			fmt.Sprintf("%.3f", s.LogBetweenness),
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "#", "Stop", "Betweenness", "log").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == -1 {
				return headerStyle
			}
			if m.Offset+row == m.Cursor {
				return listSelectedStyle
			}
			if col == 1 {
				return StyleDim
			}
			return lipgloss.NewStyle()
		})

	b.WriteString(t.Render())
	b.WriteString("\n\n")

	sel := m.Stops[m.Cursor]
	b.WriteString(listDimStyle.Render(fmt.Sprintf("  %s  %.5f, %.5f  [%d/%d]",
		sel.ID, sel.Lat, sel.Lon, m.Cursor+1, len(m.Stops))))

	return b.String()
}
