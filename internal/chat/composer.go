package chat

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/gigspace/gigspace/internal/api"
	"github.com/gigspace/gigspace/internal/events"
	"github.com/gigspace/gigspace/internal/logging"
	"github.com/gigspace/gigspace/internal/models"
)

// ErrEmptyDraft is returned when a send carries neither text nor an
// attachment.
var ErrEmptyDraft = errors.New("message has no text or attachment")

// Composer performs optimistic sends. The message appears in the local
// log immediately under a placeholder ID; on confirmation the
// placeholder is swapped for the canonical server copy in place, and
// on failure it is removed so the user can retry from a restored
// draft.
type Composer struct {
	client    Client
	store     *Store
	publisher events.Publisher
	selfID    string
	logger    zerolog.Logger
	now       func() time.Time
	newID     func() string
}

// NewComposer creates a Composer sending as the given user.
func NewComposer(client Client, store *Store, publisher events.Publisher, selfID string) *Composer {
	return &Composer{
		client:    client,
		store:     store,
		publisher: publisher,
		selfID:    selfID,
		logger:    logging.Component("chat-composer"),
		now:       time.Now,
		newID:     uuid.NewString,
	}
}

// Send submits a message to a conversation. It blocks until the server
// confirms or rejects the send; callers that must stay responsive run
// it in a goroutine. Exactly one of a confirmed message or an error is
// produced per call, for attachment-only sends included.
func (c *Composer) Send(ctx context.Context, conversationID, text string, attachment *api.Attachment) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" && attachment == nil {
		return nil, ErrEmptyDraft
	}

	placeholder := models.Message{
		ID:             "local-" + c.newID(),
		ConversationID: conversationID,
		SenderID:       c.selfID,
		Text:           text,
		CreatedAt:      c.now(),
		IsRead:         true,
		State:          models.SendStateSending,
	}
	if attachment != nil {
		placeholder.AttachmentRef = attachment.Filename
	}
	c.store.AppendLocal(placeholder)

	confirmed, err := c.client.SendMessage(ctx, conversationID, text, attachment)
	if err != nil {
		c.store.RemoveLocal(conversationID, placeholder.ID)
		logger := logging.WithConversation(c.logger, conversationID)
		logger.Warn().Err(err).
			Msg("send failed")
		c.publisher.Publish(&models.Event{
			Type:           models.EventTypeSendFailed,
			Timestamp:      c.now(),
			ConversationID: conversationID,
			Err:            err.Error(),
		})
		return nil, err
	}

	confirmed.State = models.SendStateSent
	c.store.ConfirmLocal(conversationID, placeholder.ID, *confirmed)

	c.publisher.Publish(&models.Event{
		Type:           models.EventTypeMessageSent,
		Timestamp:      c.now(),
		ConversationID: conversationID,
		Message:        confirmed,
	})
	return confirmed, nil
}
