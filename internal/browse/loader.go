package browse

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/amishk599/atsfeed/internal/model"
)

// ErrCancelled is returned when the user aborts a load with ctrl+c.
var ErrCancelled = errors.New("cancelled")

// FetchFunc extracts one company's jobs.
type FetchFunc func(ctx context.Context) ([]model.NormalizedJob, error)

type fetchDoneMsg struct {
	jobs []model.NormalizedJob
	err  error
}

type loaderModel struct {
	companyName string
	fetch       FetchFunc
	timeout     time.Duration
	spinner     spinner.Model
	result      []model.NormalizedJob
	err         error
	done        bool
}

func (m loaderModel) Init() tea.Cmd {
	return tea.Batch(m.doFetch(), m.spinner.Tick)
}

func (m loaderModel) doFetch() tea.Cmd {
	fetch, timeout := m.fetch, m.timeout
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		jobs, err := fetch(ctx)
		return fetchDoneMsg{jobs: jobs, err: err}
	}
}

func (m loaderModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fetchDoneMsg:
		m.result = msg.jobs
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
			m.err = ErrCancelled
			return m, tea.Quit
		}
	}
	return m, nil
}

func (m loaderModel) View() string {
	if m.done {
		return ""
	}
	return fmt.Sprintf("%s Extracting jobs from %s...\n", m.spinner.View(), m.companyName)
}

// RunLoader shows a spinner while fetch runs. It renders inline (no alt screen).
func RunLoader(companyName string, timeout time.Duration, fetch FetchFunc) ([]model.NormalizedJob, error) {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("33"))

	m := loaderModel{
		companyName: companyName,
		fetch:       fetch,
		timeout:     timeout,
		spinner:     s,
	}
	result, err := tea.NewProgram(m).Run()
	if err != nil {
		return nil, err
	}
	final := result.(loaderModel)
	return final.result, final.err
}
