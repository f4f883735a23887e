package tui

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gigspace/gigspace/internal/api"
	"github.com/gigspace/gigspace/internal/chat"
	"github.com/gigspace/gigspace/internal/events"
	"github.com/gigspace/gigspace/internal/models"
	"github.com/gigspace/gigspace/internal/tui/styles"
)

// stubClient satisfies chat.Client for view tests; the engine is never
// started so nothing is fetched.
type stubClient struct{}

func (stubClient) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	return nil, nil
}

func (stubClient) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	return nil, nil
}

func (stubClient) SendMessage(ctx context.Context, conversationID, text string, attachment *api.Attachment) (*models.Message, error) {
	return &models.Message{ID: "srv-1", ConversationID: conversationID, Text: text}, nil
}

func (stubClient) MarkRead(ctx context.Context, conversationID string) error { return nil }

func (stubClient) CreateConversation(ctx context.Context, userID, gigID string) (*models.Conversation, error) {
	return &models.Conversation{ID: "conv-new"}, nil
}

func newViewEngine() *chat.Engine {
	return chat.NewEngine(stubClient{}, events.NewInMemoryPublisher(), chat.EngineConfig{
		SelfID:       "me",
		PollInterval: time.Hour,
	})
}

func seedConversations(engine *chat.Engine, ids ...string) {
	conversations := make([]models.Conversation, 0, len(ids))
	for _, id := range ids {
		conversations = append(conversations, models.Conversation{
			ID: id,
			Participants: []models.UserRef{
				{ID: "me", DisplayName: "me"},
				{ID: "u-" + id, DisplayName: "Counterparty " + id},
			},
		})
	}
	engine.Store().ReplaceConversations(conversations)
}

func keyMsg(s string) tea.KeyMsg {
	switch s {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "backspace":
		return tea.KeyMsg{Type: tea.KeyBackspace}
	case "up":
		return tea.KeyMsg{Type: tea.KeyUp}
	case "down":
		return tea.KeyMsg{Type: tea.KeyDown}
	default:
		return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
	}
}

func TestListNavigationClampsToBounds(t *testing.T) {
	engine := newViewEngine()
	seedConversations(engine, "c1", "c2")
	view := newMessagesView(engine, "me", false)

	view.Update(keyMsg("up"))
	if view.selected != 0 {
		t.Errorf("up at top should clamp, got %d", view.selected)
	}
	view.Update(keyMsg("down"))
	view.Update(keyMsg("down"))
	view.Update(keyMsg("down"))
	if view.selected != 1 {
		t.Errorf("down at bottom should clamp, got %d", view.selected)
	}
}

func TestTabNeedsActiveConversation(t *testing.T) {
	engine := newViewEngine()
	seedConversations(engine, "c1")
	view := newMessagesView(engine, "me", false)

	view.Update(keyMsg("tab"))
	if view.composing() {
		t.Error("compose focus without an open conversation")
	}

	engine.Store().SetActive("c1")
	view.Update(keyMsg("tab"))
	if !view.composing() {
		t.Error("tab should focus compose once a conversation is open")
	}
	view.Update(keyMsg("esc"))
	if view.composing() {
		t.Error("esc should return focus to the list")
	}
}

func TestComposeBuffer(t *testing.T) {
	engine := newViewEngine()
	seedConversations(engine, "c1")
	engine.Store().SetActive("c1")
	view := newMessagesView(engine, "me", false)
	view.focus = focusCompose

	view.Update(keyMsg("hi"))
	view.Update(tea.KeyMsg{Type: tea.KeySpace})
	view.Update(keyMsg("there"))
	view.Update(keyMsg("backspace"))
	if got := string(view.input); got != "hi ther" {
		t.Errorf("compose buffer mismatch: %q", got)
	}
}

func TestSendClearsDraftOnSuccess(t *testing.T) {
	engine := newViewEngine()
	seedConversations(engine, "c1")
	engine.Store().SetActive("c1")
	view := newMessagesView(engine, "me", false)
	view.focus = focusCompose
	view.input = []rune("hello")

	cmd := view.sendCmd()
	if cmd == nil {
		t.Fatal("expected a send command")
	}
	result, ok := cmd().(sendResultMsg)
	if !ok {
		t.Fatalf("expected sendResultMsg, got %T", cmd())
	}
	view.Update(result)

	if len(view.input) != 0 {
		t.Errorf("draft should clear on success, got %q", string(view.input))
	}
}

func TestAttachWithMissingPathKeepsDraft(t *testing.T) {
	engine := newViewEngine()
	seedConversations(engine, "c1")
	engine.Store().SetActive("c1")
	view := newMessagesView(engine, "me", false)
	view.focus = focusCompose
	view.input = []rune("/attach /does/not/exist.pdf see attached")

	cmd := view.sendCmd()
	if cmd == nil {
		t.Fatal("expected a send command")
	}
	result := cmd().(sendResultMsg)
	if result.err == nil {
		t.Fatal("expected file-open error")
	}
	view.Update(result)

	if string(view.input) != "/attach /does/not/exist.pdf see attached" {
		t.Errorf("draft should survive a failed send, got %q", string(view.input))
	}
	if view.sendErr == "" {
		t.Error("failure should surface in the compose line")
	}
}

func TestAttachWithoutPathRejected(t *testing.T) {
	engine := newViewEngine()
	engine.Store().SetActive("c1")
	view := newMessagesView(engine, "me", false)
	view.input = []rune("/attach   ")

	if cmd := view.sendCmd(); cmd != nil {
		t.Error("bare /attach should not dispatch")
	}
	if view.sendErr == "" {
		t.Error("bare /attach should report a usage error")
	}
}

func TestViewRendersPanes(t *testing.T) {
	engine := newViewEngine()
	seedConversations(engine, "c1")
	engine.Store().SetActive("c1")
	engine.Store().ReplaceMessages("c1", []models.Message{
		{ID: "1", ConversationID: "c1", SenderID: "u-c1", Text: "hi there", CreatedAt: time.Now()},
	})
	view := newMessagesView(engine, "me", false)

	out := view.View(100, 30, styles.DefaultTheme)
	if !strings.Contains(out, "Counterparty c1") {
		t.Error("conversation list should show the counterparty")
	}
	if !strings.Contains(out, "hi there") {
		t.Error("thread should show the message body")
	}
}
