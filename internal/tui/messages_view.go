package tui

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gigspace/gigspace/internal/api"
	"github.com/gigspace/gigspace/internal/chat"
)

const sendTimeout = 30 * time.Second

type focusArea int

const (
	focusList focusArea = iota
	focusCompose
)

type sendResultMsg struct {
	err error
}

type activatedMsg struct {
	conversationID string
}

// messagesView is the two-pane messaging page: the conversation list
// on the left, the active thread with its compose field on the right.
type messagesView struct {
	engine         *chat.Engine
	selfID         string
	showTimestamps bool

	focus    focusArea
	selected int
	scroll   int
	input    []rune
	sending  bool
	sendErr  string
}

func newMessagesView(engine *chat.Engine, selfID string, showTimestamps bool) *messagesView {
	return &messagesView{
		engine:         engine,
		selfID:         selfID,
		showTimestamps: showTimestamps,
	}
}

func (v *messagesView) Init() tea.Cmd {
	return nil
}

func (v *messagesView) composing() bool {
	return v.focus == focusCompose
}

func (v *messagesView) Update(msg tea.Msg) tea.Cmd {
	switch typed := msg.(type) {
	case sendResultMsg:
		v.sending = false
		if typed.err != nil {
			// The draft stays in the compose field for a retry.
			v.sendErr = typed.err.Error()
			return nil
		}
		v.input = nil
		v.sendErr = ""
		v.scroll = 0
		return nil
	case activatedMsg:
		v.scroll = 0
		return nil
	case tea.KeyMsg:
		if v.focus == focusCompose {
			return v.handleComposeKey(typed)
		}
		return v.handleListKey(typed)
	}
	return nil
}

func (v *messagesView) handleListKey(msg tea.KeyMsg) tea.Cmd {
	conversations := v.engine.Store().Conversations()
	switch msg.String() {
	case "up", "k":
		if v.selected > 0 {
			v.selected--
		}
	case "down", "j":
		if v.selected < len(conversations)-1 {
			v.selected++
		}
	case "enter":
		if v.selected < len(conversations) {
			return v.activateCmd(conversations[v.selected].ID)
		}
	case "tab":
		if v.engine.Store().ActiveID() != "" {
			v.focus = focusCompose
		}
	case "pgup":
		v.scroll += 5
	case "pgdown":
		v.scroll = maxInt(0, v.scroll-5)
	}
	return nil
}

func (v *messagesView) handleComposeKey(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		v.focus = focusList
		return nil
	case "tab":
		v.focus = focusList
		return nil
	case "enter":
		return v.sendCmd()
	case "backspace":
		if len(v.input) > 0 {
			v.input = v.input[:len(v.input)-1]
		}
		return nil
	case "pgup":
		v.scroll += 5
		return nil
	case "pgdown":
		v.scroll = maxInt(0, v.scroll-5)
		return nil
	}

	switch msg.Type {
	case tea.KeyRunes:
		v.input = append(v.input, msg.Runes...)
	case tea.KeySpace:
		v.input = append(v.input, ' ')
	}
	return nil
}

func (v *messagesView) activateCmd(conversationID string) tea.Cmd {
	engine := v.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()
		engine.Activate(ctx, conversationID)
		return activatedMsg{conversationID: conversationID}
	}
}

// sendCmd parses the compose field and submits it. A draft beginning
// with "/attach <path>" uploads that file; any text after the path is
// sent alongside it.
func (v *messagesView) sendCmd() tea.Cmd {
	if v.sending {
		return nil
	}
	draft := strings.TrimSpace(string(v.input))

	text := draft
	var attachPath string
	if rest, ok := strings.CutPrefix(draft, "/attach "); ok {
		fields := strings.Fields(rest)
		if len(fields) == 0 {
			v.sendErr = "/attach needs a file path"
			return nil
		}
		attachPath = fields[0]
		text = strings.TrimSpace(strings.TrimPrefix(rest, fields[0]))
	}
	if text == "" && attachPath == "" {
		return nil
	}

	v.sending = true
	v.sendErr = ""
	engine := v.engine
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), sendTimeout)
		defer cancel()

		var attachment *api.Attachment
		if attachPath != "" {
			file, err := os.Open(attachPath)
			if err != nil {
				return sendResultMsg{err: err}
			}
			defer file.Close()
			attachment = &api.Attachment{
				Filename: filepath.Base(attachPath),
				Reader:   file,
			}
		}

		_, err := engine.Send(ctx, text, attachment)
		if err != nil && errors.Is(err, chat.ErrEmptyDraft) {
			err = nil
		}
		return sendResultMsg{err: err}
	}
}
