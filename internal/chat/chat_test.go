package chat

import (
	"context"
	"sync"
	"time"

	"github.com/gigspace/gigspace/internal/api"
	"github.com/gigspace/gigspace/internal/models"
)

// fakeClient implements Client with overridable per-method hooks.
type fakeClient struct {
	mu sync.Mutex

	listConversationsFn  func(ctx context.Context) ([]models.Conversation, error)
	listMessagesFn       func(ctx context.Context, conversationID string) ([]models.Message, error)
	sendMessageFn        func(ctx context.Context, conversationID, text string, attachment *api.Attachment) (*models.Message, error)
	markReadFn           func(ctx context.Context, conversationID string) error
	createConversationFn func(ctx context.Context, userID, gigID string) (*models.Conversation, error)

	listConversationsCalls int
	listMessagesCalls      int
	sendMessageCalls       int
	markReadCalls          []string
}

func (f *fakeClient) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	f.mu.Lock()
	f.listConversationsCalls++
	fn := f.listConversationsFn
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx)
}

func (f *fakeClient) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	f.mu.Lock()
	f.listMessagesCalls++
	fn := f.listMessagesFn
	f.mu.Unlock()
	if fn == nil {
		return nil, nil
	}
	return fn(ctx, conversationID)
}

func (f *fakeClient) SendMessage(ctx context.Context, conversationID, text string, attachment *api.Attachment) (*models.Message, error) {
	f.mu.Lock()
	f.sendMessageCalls++
	fn := f.sendMessageFn
	f.mu.Unlock()
	if fn == nil {
		return &models.Message{ID: "srv-1", ConversationID: conversationID, Text: text}, nil
	}
	return fn(ctx, conversationID, text, attachment)
}

func (f *fakeClient) MarkRead(ctx context.Context, conversationID string) error {
	f.mu.Lock()
	f.markReadCalls = append(f.markReadCalls, conversationID)
	fn := f.markReadFn
	f.mu.Unlock()
	if fn == nil {
		return nil
	}
	return fn(ctx, conversationID)
}

func (f *fakeClient) CreateConversation(ctx context.Context, userID, gigID string) (*models.Conversation, error) {
	f.mu.Lock()
	fn := f.createConversationFn
	f.mu.Unlock()
	if fn == nil {
		return &models.Conversation{ID: "conv-new", Participants: []models.UserRef{{ID: userID}}}, nil
	}
	return fn(ctx, userID, gigID)
}

func (f *fakeClient) sendCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sendMessageCalls
}

func (f *fakeClient) messageCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.listMessagesCalls
}

func (f *fakeClient) markedRead() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.markReadCalls))
	copy(out, f.markReadCalls)
	return out
}

// eventLog collects published events for assertions.
type eventLog struct {
	mu     sync.Mutex
	events []*models.Event
}

func (l *eventLog) handle(event *models.Event) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, event)
}

func (l *eventLog) byType(eventType models.EventType) []*models.Event {
	l.mu.Lock()
	defer l.mu.Unlock()

	var out []*models.Event
	for _, e := range l.events {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}

func msg(id, sender, text string, at time.Time) models.Message {
	return models.Message{
		ID:        id,
		SenderID:  sender,
		Text:      text,
		CreatedAt: at,
		State:     models.SendStateSent,
	}
}
