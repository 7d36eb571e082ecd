package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"jobwatch/internal/model"
)

// fetchTimeout bounds one audit fetch; a board that takes longer than
// this is not worth browsing interactively.
const fetchTimeout = 2 * time.Minute

type fetchDoneMsg struct {
	jobs []model.Job
	err  error
}

type loaderModel struct {
	board   Board
	spinner spinner.Model
	jobs    []model.Job
	err     error
	done    bool
}

func newLoaderModel(board Board) loaderModel {
	sp := spinner.New(
		spinner.WithSpinner(spinner.MiniDot),
		spinner.WithStyle(lipgloss.NewStyle().Foreground(lipgloss.Color("33"))),
	)
	return loaderModel{board: board, spinner: sp}
}

// fetchBoard runs the board's unfiltered fetch off the UI loop.
func fetchBoard(board Board) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		jobs, err := board.Fetch(ctx)
		return fetchDoneMsg{jobs: jobs, err: err}
	}
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(fetchBoard(m.board), m.spinner.Tick)
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchDoneMsg:
		m.jobs = msg.jobs
		m.err = msg.err
		m.done = true
		return m, tea.Quit
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.done = true
			m.err = fmt.Errorf("cancelled")
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Fetching listings from %s (%s)...\n", m.spinner.View(), m.board.Name, m.board.Provider)
}

// RunLoader fetches every listing on the board behind an inline spinner
// (no alt screen).
func RunLoader(board Board) ([]model.Job, error) {
	p := tea.NewProgram(newLoaderModel(board))
	result, err := p.Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.jobs, final.err
}
