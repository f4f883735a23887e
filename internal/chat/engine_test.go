package chat

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gigspace/gigspace/internal/events"
	"github.com/gigspace/gigspace/internal/models"
)

func newTestEngine(client *fakeClient) *Engine {
	return NewEngine(client, events.NewInMemoryPublisher(), EngineConfig{
		SelfID:       "me",
		PollInterval: time.Hour,
	})
}

func TestEngineActivateMarksRead(t *testing.T) {
	client := &fakeClient{}
	engine := newTestEngine(client)

	engine.Activate(context.Background(), "c1")

	if got := engine.Store().ActiveID(); got != "c1" {
		t.Errorf("expected active c1, got %q", got)
	}
	if got := client.markedRead(); len(got) != 1 || got[0] != "c1" {
		t.Errorf("expected mark-read for c1, got %v", got)
	}

	// Re-activating the already active conversation is a no-op.
	engine.Activate(context.Background(), "c1")
	if got := client.markedRead(); len(got) != 1 {
		t.Errorf("re-activation should not re-report, got %d calls", len(got))
	}
}

func TestEngineActivateFetchFailureSkipsMarkRead(t *testing.T) {
	client := &fakeClient{
		listMessagesFn: func(ctx context.Context, conversationID string) ([]models.Message, error) {
			return nil, errors.New("backend down")
		},
	}
	engine := newTestEngine(client)

	engine.Activate(context.Background(), "c1")

	if got := engine.Store().ActiveID(); got != "c1" {
		t.Errorf("activation itself should stand, got %q", got)
	}
	if got := client.markedRead(); len(got) != 0 {
		t.Errorf("read must not be reported without a fetched thread, got %v", got)
	}
}

func TestEngineReactivationMarkReadFailureKeepsServerUnread(t *testing.T) {
	var failRead bool
	client := &fakeClient{
		markReadFn: func(ctx context.Context, conversationID string) error {
			if failRead {
				return errors.New("server error: 503")
			}
			return nil
		},
	}
	publisher := events.NewInMemoryPublisher()
	log := &eventLog{}
	if err := publisher.Subscribe("test", events.Filter{}, log.handle); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	engine := NewEngine(client, publisher, EngineConfig{SelfID: "me", PollInterval: time.Hour})

	engine.reconciler.ApplyConversations([]models.Conversation{
		{ID: "c1", UnreadCount: 2},
		{ID: "c2"},
	}, 1)

	engine.Activate(context.Background(), "c1")
	if c, _ := engine.Store().Conversation("c1"); c.UnreadCount != 0 {
		t.Fatalf("read conversation should show 0 unread, got %d", c.UnreadCount)
	}

	// The user switches away; new messages land in c1 while it is
	// closed, then its re-activation fails to report the read.
	engine.Activate(context.Background(), "c2")
	failRead = true
	engine.Activate(context.Background(), "c1")

	engine.reconciler.ApplyConversations([]models.Conversation{
		{ID: "c1", UnreadCount: 4},
		{ID: "c2"},
	}, 2)

	if c, _ := engine.Store().Conversation("c1"); c.UnreadCount != 4 {
		t.Errorf("failed mark-read must leave the server count in force, got %d unread", c.UnreadCount)
	}
	if got := log.byType(models.EventTypeActionFailed); len(got) != 1 {
		t.Errorf("expected one visible mark-read failure, got %d", len(got))
	}
}

func TestEngineDeactivateReleasesUnreadPin(t *testing.T) {
	var failRead bool
	client := &fakeClient{
		markReadFn: func(ctx context.Context, conversationID string) error {
			if failRead {
				return errors.New("server error: 503")
			}
			return nil
		},
	}
	engine := newTestEngine(client)

	engine.reconciler.ApplyConversations([]models.Conversation{{ID: "c1", UnreadCount: 1}}, 1)
	engine.Activate(context.Background(), "c1")
	engine.Deactivate()

	failRead = true
	engine.Activate(context.Background(), "c1")
	engine.reconciler.ApplyConversations([]models.Conversation{{ID: "c1", UnreadCount: 3}}, 2)

	if c, _ := engine.Store().Conversation("c1"); c.UnreadCount != 3 {
		t.Errorf("deactivation must release the local unread pin, got %d unread", c.UnreadCount)
	}
}

func TestEngineSendRequiresActiveConversation(t *testing.T) {
	engine := newTestEngine(&fakeClient{})

	if _, err := engine.Send(context.Background(), "hello", nil); err == nil {
		t.Fatal("expected error with no active conversation")
	}
}

func TestEngineStartConversationActivates(t *testing.T) {
	client := &fakeClient{
		createConversationFn: func(ctx context.Context, userID, gigID string) (*models.Conversation, error) {
			return &models.Conversation{
				ID:           "conv-7",
				Participants: []models.UserRef{{ID: "me"}, {ID: userID, DisplayName: "Dana"}},
			}, nil
		},
	}
	engine := newTestEngine(client)

	conversation, err := engine.StartConversation(context.Background(), "u2", "g1")
	if err != nil {
		t.Fatalf("start conversation: %v", err)
	}
	if conversation.ID != "conv-7" {
		t.Errorf("expected conv-7, got %q", conversation.ID)
	}
	if got := engine.Store().ActiveID(); got != "conv-7" {
		t.Errorf("new conversation should be active, got %q", got)
	}
	list := engine.Store().Conversations()
	if len(list) != 1 || list[0].ID != "conv-7" {
		t.Errorf("new conversation should be in the list, got %+v", list)
	}
}

func TestEngineStartStop(t *testing.T) {
	engine := newTestEngine(&fakeClient{})

	if err := engine.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := engine.Stop(); err != nil {
		t.Fatalf("stop: %v", err)
	}

	// The alert channel closes with the engine.
	if _, open := <-engine.Notifier().Alerts(); open {
		t.Error("alert channel should be closed after stop")
	}
}
