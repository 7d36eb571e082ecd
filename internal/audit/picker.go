package audit

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jobwatch/internal/model"
)

// Board is one pickable job board: a provider label, a display name, and
// a fetch that returns every listing on the board unfiltered.
type Board struct {
	Provider string
	Name     string
	Fetch    func(ctx context.Context) ([]model.Job, error)
}

var (
	pickerTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(lipgloss.Color("39")).
				Padding(1, 0, 1, 2)

	pickerProviderStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("245")).
				Padding(0, 0, 0, 2)

	pickerItemStyle = lipgloss.NewStyle().
			Padding(0, 0, 0, 6)

	pickerSelectedStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("39")).
				Bold(true).
				Padding(0, 0, 0, 4)

	pickerHintStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("240")).
			Padding(1, 0, 0, 2)
)

type pickerModel struct {
	boards []Board
	cursor int
	chosen int // -1 = no choice yet, -2 = quit
}

func (m pickerModel) Init() tea.Cmd {
	return nil
}

func (m pickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			m.chosen = -2
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
		case "down", "j":
			if m.cursor < len(m.boards)-1 {
				m.cursor++
			}
		case "enter":
			m.chosen = m.cursor
			return m, tea.Quit
		}
	}
	return m, nil
}

// View renders the boards under one heading per provider. The list is
// already grouped: buildBoards emits providers in the fixed sweep order.
func (m pickerModel) View() string {
	s := pickerTitleStyle.Render("Match Audit — Select a board")
	s += "\n"

	prevProvider := ""
	for i, b := range m.boards {
		if b.Provider != prevProvider {
			s += pickerProviderStyle.Render(b.Provider) + "\n"
			prevProvider = b.Provider
		}
		if i == m.cursor {
			s += pickerSelectedStyle.Render("> "+b.Name) + "\n"
		} else {
			s += pickerItemStyle.Render(b.Name) + "\n"
		}
	}

	s += pickerHintStyle.Render("↑/↓/j/k navigate  enter select  q quit")
	return s
}

// RunBoardPicker shows an interactive board selector.
// Returns the index of the chosen board, or a negative value if the user quit.
func RunBoardPicker(boards []Board) (int, error) {
	m := pickerModel{
		boards: boards,
		chosen: -1,
	}

	p := tea.NewProgram(m)
	result, err := p.Run()
	if err != nil {
		return -1, err
	}

	final := result.(pickerModel)
	return final.chosen, nil
}
