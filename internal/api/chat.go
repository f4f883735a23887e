package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/gigspace/gigspace/internal/models"
)

// Attachment is an outgoing file for SendMessage.
type Attachment struct {
	// Filename is the name reported to the server.
	Filename string

	// Reader supplies the file content.
	Reader io.Reader
}

// ListConversations fetches the full conversation list snapshot for the
// authenticated user, ordered by most recent activity.
func (c *Client) ListConversations(ctx context.Context) ([]models.Conversation, error) {
	var wire []conversationWire
	if err := c.doJSON(ctx, http.MethodGet, "/chat/conversations/", nil, &wire); err != nil {
		return nil, err
	}

	conversations := make([]models.Conversation, 0, len(wire))
	for i := range wire {
		conversations = append(conversations, wire[i].toConversation())
	}
	return conversations, nil
}

// ListMessages fetches the ordered message log snapshot for a
// conversation.
func (c *Client) ListMessages(ctx context.Context, conversationID string) ([]models.Message, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("api: conversation ID required")
	}

	var wire []messageWire
	path := "/chat/conversations/" + url.PathEscape(conversationID) + "/messages/"
	if err := c.doJSON(ctx, http.MethodGet, path, nil, &wire); err != nil {
		return nil, err
	}

	messages := make([]models.Message, 0, len(wire))
	for i := range wire {
		messages = append(messages, *wire[i].toMessage())
	}
	return messages, nil
}

// MarkRead marks all counterparty messages in a conversation as read.
func (c *Client) MarkRead(ctx context.Context, conversationID string) error {
	if conversationID == "" {
		return fmt.Errorf("api: conversation ID required")
	}
	path := "/chat/conversations/" + url.PathEscape(conversationID) + "/read/"
	return c.doJSON(ctx, http.MethodPost, path, nil, nil)
}

// SendMessage posts a new message as a multipart form with optional
// text and attachment parts, returning the server-confirmed message
// with its canonical ID and timestamp. At least one of text and
// attachment must be present; the Composer validates that before
// calling here, so an empty send is rejected as a client bug rather
// than sent to the server.
func (c *Client) SendMessage(ctx context.Context, conversationID, text string, attachment *Attachment) (*models.Message, error) {
	if conversationID == "" {
		return nil, fmt.Errorf("api: conversation ID required")
	}
	if strings.TrimSpace(text) == "" && attachment == nil {
		return nil, fmt.Errorf("api: message requires text or attachment")
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	if strings.TrimSpace(text) != "" {
		if err := writer.WriteField("text", text); err != nil {
			return nil, fmt.Errorf("api: build form: %w", err)
		}
	}
	if attachment != nil {
		name := attachment.Filename
		if name == "" {
			name = "attachment"
		}
		part, err := writer.CreateFormFile("attachment", filepath.Base(name))
		if err != nil {
			return nil, fmt.Errorf("api: build form: %w", err)
		}
		if _, err := io.Copy(part, attachment.Reader); err != nil {
			return nil, fmt.Errorf("api: read attachment: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("api: build form: %w", err)
	}

	path := "/chat/conversations/" + url.PathEscape(conversationID) + "/messages/"
	body, err := c.doMultipart(ctx, path, writer.FormDataContentType(), buf.Bytes())
	if err != nil {
		return nil, err
	}

	var wire messageWire
	if err := json.Unmarshal(body, &wire); err != nil {
		return nil, fmt.Errorf("api: decode message response: %w", err)
	}
	return wire.toMessage(), nil
}

// doMultipart posts a prepared multipart body. The body is kept as a
// byte slice so the request can be replayed after a token refresh.
func (c *Client) doMultipart(ctx context.Context, path, contentType string, body []byte) ([]byte, error) {
	attempt := func() ([]byte, error) {
		request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("api: create request: %w", err)
		}
		request.Header.Set("Content-Type", contentType)
		if err := c.authorize(request); err != nil {
			return nil, err
		}
		return c.send(request, http.MethodPost, path)
	}

	responseBody, err := attempt()
	if IsAuthError(err) && c.refresh(ctx) {
		responseBody, err = attempt()
	}
	return responseBody, err
}

// CreateConversation starts (or returns the existing) conversation with
// another user, optionally scoped to a gig.
func (c *Client) CreateConversation(ctx context.Context, userID, gigID string) (*models.Conversation, error) {
	if userID == "" {
		return nil, fmt.Errorf("api: user ID required")
	}

	payload := map[string]string{"user_id": userID}
	if gigID != "" {
		payload["gig_id"] = gigID
	}

	var wire conversationWire
	if err := c.doJSON(ctx, http.MethodPost, "/chat/conversations/create/", payload, &wire); err != nil {
		return nil, err
	}
	conversation := wire.toConversation()
	return &conversation, nil
}
