// Package tui implements the interactive messaging interface. It is a
// thin rendering layer over the chat engine: the engine's store is the
// single source of truth, and the UI re-reads it on every refresh tick
// instead of holding its own copy.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gigspace/gigspace/internal/chat"
	"github.com/gigspace/gigspace/internal/models"
	"github.com/gigspace/gigspace/internal/tui/styles"
)

const (
	refreshInterval = time.Second
	alertLinger     = 5 * time.Second
)

// Config configures the TUI.
type Config struct {
	Theme          string
	ShowTimestamps bool
}

type refreshTickMsg struct{}

type alertMsg struct {
	alert chat.Alert
}

func refreshTickCmd() tea.Cmd {
	return tea.Tick(refreshInterval, func(time.Time) tea.Msg {
		return refreshTickMsg{}
	})
}

func waitAlertCmd(alerts <-chan chat.Alert) tea.Cmd {
	return func() tea.Msg {
		alert, ok := <-alerts
		if !ok {
			return nil
		}
		return alertMsg{alert: alert}
	}
}

// Model is the top-level bubbletea model: chrome plus the messaging
// view.
type Model struct {
	engine *chat.Engine
	self   models.User
	theme  styles.Theme
	alerts <-chan chat.Alert

	width    int
	height   int
	showHelp bool

	lastAlert   *chat.Alert
	lastAlertAt time.Time

	messages *messagesView
}

// NewModel builds the top-level model. The engine must already be
// started; the model only reads from it.
func NewModel(engine *chat.Engine, self models.User, cfg Config) (*Model, error) {
	themeName := strings.TrimSpace(cfg.Theme)
	if themeName == "" {
		themeName = "default"
	}
	theme, ok := styles.Themes[themeName]
	if !ok {
		return nil, fmt.Errorf("invalid theme %q", themeName)
	}

	return &Model{
		engine:   engine,
		self:     self,
		theme:    theme,
		alerts:   engine.Notifier().Alerts(),
		messages: newMessagesView(engine, self.ID, cfg.ShowTimestamps),
	}, nil
}

// Run starts the engine, runs the program until the user quits, and
// stops the engine on the way out.
func Run(ctx context.Context, engine *chat.Engine, self models.User, cfg Config) error {
	model, err := NewModel(engine, self, cfg)
	if err != nil {
		return err
	}

	if err := engine.Start(ctx); err != nil {
		return fmt.Errorf("start sync engine: %w", err)
	}
	defer func() { _ = engine.Stop() }()

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(refreshTickCmd(), waitAlertCmd(m.alerts), m.messages.Init())
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = typed.Width
		m.height = typed.Height
		return m, nil
	case refreshTickMsg:
		return m, refreshTickCmd()
	case alertMsg:
		alert := typed.alert
		m.lastAlert = &alert
		m.lastAlertAt = time.Now()
		return m, waitAlertCmd(m.alerts)
	case tea.KeyMsg:
		if cmd, handled := m.handleGlobalKey(typed); handled {
			return m, cmd
		}
	}

	return m, m.messages.Update(msg)
}

func (m *Model) View() string {
	header := m.renderHeader()
	footer := m.renderFooter()
	contentHeight := m.height - lipgloss.Height(header) - lipgloss.Height(footer)
	if contentHeight < 0 {
		contentHeight = 0
	}
	body := m.messages.View(m.width, contentHeight, m.theme)
	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m *Model) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	switch msg.String() {
	case "ctrl+c":
		return tea.Quit, true
	case "q":
		// Plain q only quits while the user is not typing a message.
		if !m.messages.composing() {
			return tea.Quit, true
		}
	case "?":
		if !m.messages.composing() {
			m.showHelp = !m.showHelp
			return nil, true
		}
	}
	return nil, false
}

func (m *Model) renderHeader() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Base.Foreground)).
		Background(lipgloss.Color(m.theme.Chrome.Header)).
		Bold(true).
		Padding(0, 1)

	left := "gigspace messages"
	right := m.self.Username
	if unread := m.engine.Store().TotalUnread(); unread > 0 {
		left = fmt.Sprintf("gigspace messages  (%d unread)", unread)
	}
	return style.Width(maxInt(0, m.width)).Render(joinEdges(left, right, m.width-2))
}

func (m *Model) renderFooter() string {
	style := lipgloss.NewStyle().
		Foreground(lipgloss.Color(m.theme.Base.Foreground)).
		Background(lipgloss.Color(m.theme.Chrome.Footer)).
		Padding(0, 1)

	if m.lastAlert != nil && time.Since(m.lastAlertAt) < alertLinger {
		color := m.theme.Chrome.Alert
		if m.lastAlert.Level == chat.AlertLevelError {
			color = m.theme.Chrome.AlertError
		}
		text := lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true).Render(m.lastAlert.Text)
		return style.Width(maxInt(0, m.width)).Render(truncate(text, maxInt(0, m.width-2)))
	}

	base := "[tab] focus  [enter] open/send  [/attach <path>] file  [?] help  [q] quit"
	if m.showHelp {
		base = "j/k or arrows select  enter open conversation  tab compose  enter send  esc back  pgup/pgdn scroll  q quit"
	}
	return style.Width(maxInt(0, m.width)).Render(truncate(base, maxInt(0, m.width-2)))
}

func joinEdges(left, right string, width int) string {
	if width <= 0 {
		return left
	}
	gap := width - lipgloss.Width(left) - lipgloss.Width(right)
	if gap < 2 {
		return truncate(left, width)
	}
	return left + strings.Repeat(" ", gap) + right
}
