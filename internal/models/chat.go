// Package models defines the entities the gigspace client works with.
package models

import (
	"strings"
	"time"
)

// SendState tracks the lifecycle of an outgoing message.
type SendState string

const (
	// SendStateDrafting is the initial state while the user is typing.
	SendStateDrafting SendState = "drafting"

	// SendStateSending means the payload is in flight.
	SendStateSending SendState = "sending"

	// SendStateSent is terminal: the server confirmed the message and
	// assigned its canonical ID.
	SendStateSent SendState = "sent"

	// SendStateFailed is terminal for the attempt; the user may re-draft.
	SendStateFailed SendState = "failed"
)

// UserRef identifies a conversation participant.
type UserRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// UnknownUser is the defensive default for a missing participant.
var UnknownUser = UserRef{ID: "", DisplayName: "unknown"}

// GigRef is the summary of a gig linked to a conversation.
type GigRef struct {
	ID           string  `json:"id"`
	Title        string  `json:"title"`
	Price        float64 `json:"price"`
	Image        string  `json:"image,omitempty"`
	DeliveryDays int     `json:"delivery_days"`
}

// Message is a single text/attachment unit within a conversation.
// While an outgoing message is unconfirmed its ID is a locally generated
// placeholder; the server-assigned ID replaces it on confirmation.
type Message struct {
	ID             string    `json:"id"`
	ConversationID string    `json:"conversation_id"`
	SenderID       string    `json:"sender_id"`
	Text           string    `json:"text,omitempty"`
	AttachmentRef  string    `json:"attachment,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	IsRead         bool      `json:"is_read"`

	// State is only meaningful for locally created messages. Messages
	// decoded from server snapshots are always SendStateSent.
	State SendState `json:"-"`
}

// HasContent reports whether the message carries text or an attachment.
// A message with neither is invalid.
func (m *Message) HasContent() bool {
	return strings.TrimSpace(m.Text) != "" || m.AttachmentRef != ""
}

// Pending reports whether the message exists only locally.
func (m *Message) Pending() bool {
	return m.State == SendStateSending
}

// Before reports whether m sorts before other in the total order
// (CreatedAt, ID) that a conversation's log maintains.
func (m *Message) Before(other *Message) bool {
	if !m.CreatedAt.Equal(other.CreatedAt) {
		return m.CreatedAt.Before(other.CreatedAt)
	}
	return m.ID < other.ID
}

// Conversation is a channel between two participants, optionally linked
// to a gig.
type Conversation struct {
	ID           string    `json:"id"`
	Participants []UserRef `json:"participants"`
	LastMessage  *Message  `json:"last_message,omitempty"`
	UnreadCount  int       `json:"unread_count"`
	LinkedGig    *GigRef   `json:"gig_detail,omitempty"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Counterparty returns the participant that is not the given user, or
// UnknownUser when the snapshot did not include one.
func (c *Conversation) Counterparty(selfID string) UserRef {
	for _, p := range c.Participants {
		if p.ID != selfID {
			return p
		}
	}
	return UnknownUser
}

// LastActivity returns the timestamp ordering the conversation list:
// the last message's creation time when present, the conversation's
// update time otherwise.
func (c *Conversation) LastActivity() time.Time {
	if c.LastMessage != nil {
		return c.LastMessage.CreatedAt
	}
	return c.UpdatedAt
}
