package cmd

import (
	"fmt"

	"valheim-mod-manager/deploy"
	"valheim-mod-manager/mods"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// DeployProgressMsg represents a progress update from the deployment engine
type DeployProgressMsg struct {
	Type    string // "progress", "failed", "done"
	Current int
	Total   int
	Message string
	Err     error
}

// DeployModel controls the UI for the deploy command
type DeployModel struct {
	spinner      spinner.Model
	progressChan chan DeployProgressMsg
	engine       *deploy.Engine
	profile      *mods.Profile
	modCount     int

	// State
	status  string
	current int
	total   int
	recent  []string
	err     error
	done    bool
}

func initialDeployModel(engine *deploy.Engine, profile *mods.Profile, modCount int) DeployModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))

	return DeployModel{
		spinner:      s,
		progressChan: make(chan DeployProgressMsg, 100), // Buffer slightly to avoid blocking
		engine:       engine,
		profile:      profile,
		modCount:     modCount,
		status:       fmt.Sprintf("Deploying %s (%d mods)...", profile.Name, modCount),
	}
}

func (m DeployModel) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.startDeploy(),
		m.waitForActivity(),
	)
}

func (m DeployModel) startDeploy() tea.Cmd {
	return func() tea.Msg {
		// Run the engine in a separate goroutine and feed its progress
		// reports into the channel the model drains.
		go func() {
			defer close(m.progressChan)
			err := m.engine.DeployProfile(m.profile, func(current, total int, message string) {
				m.progressChan <- DeployProgressMsg{
					Type:    "progress",
					Current: current,
					Total:   total,
					Message: message,
				}
			})
			if err != nil {
				m.progressChan <- DeployProgressMsg{Type: "failed", Err: err}
			}
		}()
		return nil
	}
}

func (m DeployModel) waitForActivity() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-m.progressChan
		if !ok {
			return DeployProgressMsg{Type: "done"}
		}
		return msg
	}
}

func (m DeployModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "q" || msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.done {
			return m, tea.Quit
		}

	case spinner.TickMsg:
		if m.done {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case DeployProgressMsg:
		switch msg.Type {
		case "done":
			m.done = true
			if m.err == nil {
				m.status = fmt.Sprintf("Deployed %s", m.profile.Name)
			}
			return m, tea.Quit

		case "failed":
			m.err = msg.Err
			m.status = "Deployment failed, rolled back"

		case "progress":
			m.current = msg.Current
			m.total = msg.Total
			m.status = msg.Message
			m.recent = append(m.recent, msg.Message)
			if len(m.recent) > 5 {
				m.recent = m.recent[len(m.recent)-5:]
			}
		}

		return m, m.waitForActivity()
	}

	return m, nil
}

func (m DeployModel) View() string {
	var symbol string
	switch {
	case m.done && m.err != nil:
		symbol = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("✗")
	case m.done:
		symbol = lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("✓")
	default:
		symbol = m.spinner.View()
	}

	s := fmt.Sprintf("\n %s %s\n", symbol, m.status)
	if m.total > 0 && !m.done {
		s += fmt.Sprintf("   %d/%d operations\n", m.current, m.total)
	}
	s += "\n"

	if len(m.recent) > 0 && !m.done {
		for _, line := range m.recent {
			s += fmt.Sprintf("  • %s\n", line)
		}
		s += "\n"
	}

	if m.err != nil {
		s += lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render(m.err.Error()) + "\n"
	}

	return s
}
