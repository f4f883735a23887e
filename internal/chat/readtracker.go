package chat

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigspace/gigspace/internal/events"
	"github.com/gigspace/gigspace/internal/logging"
	"github.com/gigspace/gigspace/internal/models"
)

// ReadTracker reports conversations as read to the backend and keeps
// the local unread counts consistent with what the user has seen.
type ReadTracker struct {
	client    Client
	store     *Store
	publisher events.Publisher
	logger    zerolog.Logger
	now       func() time.Time
}

// NewReadTracker creates a ReadTracker.
func NewReadTracker(client Client, store *Store, publisher events.Publisher) *ReadTracker {
	return &ReadTracker{
		client:    client,
		store:     store,
		publisher: publisher,
		logger:    logging.Component("chat-readtracker"),
		now:       time.Now,
	}
}

// MarkRead reports a conversation as read. The local unread count is
// zeroed only after the server acknowledges; on failure the count is
// left unchanged, an EventTypeActionFailed is published, and the
// report is retried the next time the conversation is activated, not
// on a timer.
func (t *ReadTracker) MarkRead(ctx context.Context, conversationID string) {
	if err := t.client.MarkRead(ctx, conversationID); err != nil {
		logger := logging.WithConversation(t.logger, conversationID)
		logger.Warn().Err(err).
			Msg("mark-read report failed")
		t.publisher.Publish(&models.Event{
			Type:           models.EventTypeActionFailed,
			Timestamp:      t.now(),
			ConversationID: conversationID,
			Err:            err.Error(),
		})
		return
	}

	t.store.SetUnread(conversationID, 0)

	t.publisher.Publish(&models.Event{
		Type:           models.EventTypeReadMarked,
		Timestamp:      t.now(),
		ConversationID: conversationID,
	})
}
