package models

import "time"

// EventType categorizes events raised by the messaging engine.
type EventType string

const (
	// EventTypeMessageReceived fires once per poll tick when new
	// counterparty messages reconcile into a conversation.
	EventTypeMessageReceived EventType = "chat.message.received"

	// EventTypeMessageSent fires when an outgoing message is confirmed.
	EventTypeMessageSent EventType = "chat.message.sent"

	// EventTypeSendFailed fires when a user-initiated send fails.
	EventTypeSendFailed EventType = "chat.send.failed"

	// EventTypeConversationsUpdated fires when a conversation list
	// snapshot has been applied.
	EventTypeConversationsUpdated EventType = "chat.conversations.updated"

	// EventTypeMessagesUpdated fires when a message log snapshot has
	// been applied, regardless of whether anything changed.
	EventTypeMessagesUpdated EventType = "chat.messages.updated"

	// EventTypeReadMarked fires when a conversation's read state has
	// been confirmed by the server.
	EventTypeReadMarked EventType = "chat.read.marked"

	// EventTypeActionFailed fires when a user-initiated action other
	// than a send fails (mark-read, create conversation).
	EventTypeActionFailed EventType = "chat.action.failed"
)

// Event is a notification from the messaging engine to its observers.
type Event struct {
	// Type categorizes the event.
	Type EventType `json:"type"`

	// Timestamp is when the event was raised.
	Timestamp time.Time `json:"timestamp"`

	// ConversationID is the conversation the event relates to, when any.
	ConversationID string `json:"conversation_id,omitempty"`

	// Message carries the relevant message: the most recent new
	// counterparty message for EventTypeMessageReceived, the confirmed
	// message for EventTypeMessageSent.
	Message *Message `json:"message,omitempty"`

	// NewCount is the number of newly visible messages for
	// EventTypeMessageReceived.
	NewCount int `json:"new_count,omitempty"`

	// Err describes the failure for EventTypeSendFailed and
	// EventTypeActionFailed.
	Err string `json:"error,omitempty"`
}
