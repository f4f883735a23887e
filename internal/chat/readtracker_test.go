package chat

import (
	"context"
	"errors"
	"testing"

	"github.com/gigspace/gigspace/internal/events"
	"github.com/gigspace/gigspace/internal/models"
)

func newTestReadTracker(t *testing.T, client *fakeClient) (*ReadTracker, *Store, *eventLog) {
	t.Helper()

	store := NewStore()
	publisher := events.NewInMemoryPublisher()
	log := &eventLog{}
	if err := publisher.Subscribe("test", events.Filter{}, log.handle); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	return NewReadTracker(client, store, publisher), store, log
}

func TestMarkReadClearsUnreadAndConfirms(t *testing.T) {
	client := &fakeClient{}
	tracker, store, log := newTestReadTracker(t, client)
	store.ReplaceConversations([]models.Conversation{{ID: "c1", UnreadCount: 3}})

	tracker.MarkRead(context.Background(), "c1")

	c, _ := store.Conversation("c1")
	if c.UnreadCount != 0 {
		t.Errorf("expected unread cleared, got %d", c.UnreadCount)
	}
	if got := client.markedRead(); len(got) != 1 || got[0] != "c1" {
		t.Errorf("expected one mark-read call for c1, got %v", got)
	}
	if got := log.byType(models.EventTypeReadMarked); len(got) != 1 {
		t.Errorf("expected one read-marked event, got %d", len(got))
	}
}

func TestMarkReadFailureLeavesUnreadAndRaisesError(t *testing.T) {
	client := &fakeClient{
		markReadFn: func(ctx context.Context, conversationID string) error {
			return errors.New("503")
		},
	}
	tracker, store, log := newTestReadTracker(t, client)
	store.ReplaceConversations([]models.Conversation{{ID: "c1", UnreadCount: 3}})

	tracker.MarkRead(context.Background(), "c1")

	// An unacknowledged read keeps the badge; it retries on the next
	// activation.
	c, _ := store.Conversation("c1")
	if c.UnreadCount != 3 {
		t.Errorf("expected unread left at 3 after failure, got %d", c.UnreadCount)
	}
	failed := log.byType(models.EventTypeActionFailed)
	if len(failed) != 1 {
		t.Fatalf("expected one action-failed event, got %d", len(failed))
	}
	if failed[0].Err == "" {
		t.Error("event should carry the failure detail")
	}
	if got := log.byType(models.EventTypeReadMarked); len(got) != 0 {
		t.Errorf("failed report must not confirm, got %d events", len(got))
	}
}
