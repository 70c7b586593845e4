// Package tui renders the episodic and profile memory panels and wires
// user actions to the tree models and the registration manager. It is
// pure dispatch: all behavior lives in the packages it coordinates.
package tui

import (
	"context"
	"fmt"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/memmachine/memview/internal/config"
	"github.com/memmachine/memview/internal/registration"
	"github.com/memmachine/memview/internal/tree"
)

type panelID int

const (
	panelEpisodic panelID = iota
	panelProfile
)

// mode selects which input surface is active.
type mode int

const (
	modeBrowse mode = iota
	modeRegister
	modeUnregister
)

type (
	treeChangedMsg struct{ panel panelID }
	statusMsg      string
)

// Model is the bubbletea model for the memview panels.
type Model struct {
	cfg     *config.Config
	logger  *zap.Logger
	manager *registration.Manager
	trees   [2]*tree.Model
	panels  [2]*panel

	keys  keyMap
	help  help.Model
	input textinput.Model

	focus    panelID
	mode     mode
	selected int
	status   string
	width    int
	quitting bool
}

// New builds the TUI over the two tree models and the manager.
func New(cfg *config.Config, logger *zap.Logger, episodic, profile *tree.Model, manager *registration.Manager) *Model {
	input := textinput.New()
	input.Placeholder = cfg.Registration.ServerName
	input.CharLimit = 64

	return &Model{
		cfg:     cfg,
		logger:  logger,
		manager: manager,
		trees:   [2]*tree.Model{episodic, profile},
		panels: [2]*panel{
			newPanel("Episodic Memories", episodic),
			newPanel("Profile Memories", profile),
		},
		keys:  defaultKeyMap(),
		help:  help.New(),
		input: input,
	}
}

// Init kicks off the change listeners and an initial refresh of both panels.
func (m *Model) Init() tea.Cmd {
	return tea.Batch(
		m.listen(panelEpisodic),
		m.listen(panelProfile),
		m.refresh(panelEpisodic),
		m.refresh(panelProfile),
	)
}

// listen forwards one change notification as a message, then re-arms.
func (m *Model) listen(id panelID) tea.Cmd {
	ch := m.trees[id].Changes()
	return func() tea.Msg {
		<-ch
		return treeChangedMsg{panel: id}
	}
}

// refresh runs a tree refresh off the UI goroutine. Completion surfaces
// through the change notification, not a message.
func (m *Model) refresh(id panelID) tea.Cmd {
	model := m.trees[id]
	m.logger.Debug("refreshing panel", zap.Int("panel", int(id)))
	return func() tea.Msg {
		model.Refresh(context.Background())
		return nil
	}
}

func (m *Model) registerCmd(name string) tea.Cmd {
	return func() tea.Msg {
		if err := m.manager.RegisterMemMachineServer(context.Background(), m.cfg.Registration, name); err != nil {
			return statusMsg(fmt.Sprintf("✗ %v", err))
		}
		cfg := registration.MemMachineServer(m.cfg.Registration, name)
		return statusMsg(fmt.Sprintf("✓ registered %q (%s)", cfg.Name, m.manager.Environment()))
	}
}

func (m *Model) unregisterCmd(name string) tea.Cmd {
	return func() tea.Msg {
		if err := m.manager.UnregisterServer(context.Background(), name); err != nil {
			return statusMsg(fmt.Sprintf("✗ %v", err))
		}
		return statusMsg(fmt.Sprintf("✓ unregistered %q", name))
	}
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.help.Width = msg.Width
		return m, nil

	case treeChangedMsg:
		m.panels[msg.panel].rebuild()
		return m, m.listen(msg.panel)

	case statusMsg:
		m.status = string(msg)
		return m, nil

	case tea.KeyMsg:
		switch m.mode {
		case modeRegister:
			return m.updateRegister(msg)
		case modeUnregister:
			return m.updateUnregister(msg)
		default:
			return m.updateBrowse(msg)
		}
	}
	return m, nil
}

func (m *Model) updateBrowse(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Episodic):
		m.focus = panelEpisodic
	case key.Matches(msg, m.keys.Profile):
		m.focus = panelProfile
	case key.Matches(msg, m.keys.NextPanel):
		m.focus = (m.focus + 1) % 2

	case key.Matches(msg, m.keys.Up):
		m.panels[m.focus].moveUp()
	case key.Matches(msg, m.keys.Down):
		m.panels[m.focus].moveDown()

	case key.Matches(msg, m.keys.Toggle):
		if node := m.panels[m.focus].toggle(); node != nil && node.ID == tree.SentinelRefresh {
			return m, m.refresh(m.focus)
		}

	case key.Matches(msg, m.keys.Refresh):
		return m, m.refresh(m.focus)
	case key.Matches(msg, m.keys.RefreshAll):
		return m, tea.Batch(m.refresh(panelEpisodic), m.refresh(panelProfile))

	case key.Matches(msg, m.keys.Register):
		m.mode = modeRegister
		m.input.SetValue("")
		m.input.Focus()
		return m, textinput.Blink

	case key.Matches(msg, m.keys.Unregister):
		if len(m.manager.Servers()) == 0 {
			m.status = "no servers registered"
			return m, nil
		}
		m.mode = modeUnregister
		m.selected = 0

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

func (m *Model) updateRegister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		m.input.Blur()
		return m, nil
	case "enter":
		name := m.input.Value()
		m.mode = modeBrowse
		m.input.Blur()
		m.status = "registering..."
		return m, m.registerCmd(name)
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m *Model) updateUnregister(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	servers := m.manager.Servers()
	switch msg.String() {
	case "esc":
		m.mode = modeBrowse
		return m, nil
	case "up", "k":
		if m.selected > 0 {
			m.selected--
		}
	case "down", "j":
		if m.selected < len(servers)-1 {
			m.selected++
		}
	case "enter":
		m.mode = modeBrowse
		if m.selected < len(servers) {
			m.status = "unregistering..."
			return m, m.unregisterCmd(servers[m.selected].Name)
		}
	}
	return m, nil
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.quitting {
		return ""
	}

	width := m.width
	if width == 0 {
		width = 120
	}
	panelWidth := width/2 - 4

	body := lipgloss.JoinHorizontal(lipgloss.Top,
		m.panels[panelEpisodic].render(panelWidth, m.focus == panelEpisodic),
		m.panels[panelProfile].render(panelWidth, m.focus == panelProfile),
	)

	sections := []string{body}
	switch m.mode {
	case modeRegister:
		sections = append(sections, promptStyle.Render("Register MCP server as: "+m.input.View()))
	case modeUnregister:
		sections = append(sections, m.renderUnregister())
	}
	if m.status != "" {
		sections = append(sections, statusStyle.Render(m.status))
	}
	sections = append(sections, m.help.View(m.keys))

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m *Model) renderUnregister() string {
	servers := m.manager.Servers()
	lines := make([]string, 0, len(servers)+1)
	lines = append(lines, "Unregister which server?")
	for i, s := range servers {
		line := fmt.Sprintf("  %s (%s)", s.Name, s.URL)
		if i == m.selected {
			line = cursorStyle.Render(line)
		}
		lines = append(lines, line)
	}
	return promptStyle.Render(lipgloss.JoinVertical(lipgloss.Left, lines...))
}
