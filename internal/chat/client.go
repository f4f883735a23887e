package chat

import (
	"context"

	"github.com/gigspace/gigspace/internal/api"
	"github.com/gigspace/gigspace/internal/models"
)

// Client is the slice of the API surface the engine needs. *api.Client
// satisfies it.
type Client interface {
	ListConversations(ctx context.Context) ([]models.Conversation, error)
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
	SendMessage(ctx context.Context, conversationID, text string, attachment *api.Attachment) (*models.Message, error)
	MarkRead(ctx context.Context, conversationID string) error
	CreateConversation(ctx context.Context, userID, gigID string) (*models.Conversation, error)
}
