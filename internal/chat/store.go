// Package chat implements the messaging synchronization engine: the
// local conversation/message stores, the periodic snapshot refresh
// loop, and the reconciliation that keeps them consistent with the
// server under concurrent user actions.
package chat

import (
	"sync"

	"github.com/gigspace/gigspace/internal/models"
)

// Store owns the local view of conversations and message logs for the
// lifetime of a session. It is an ephemeral cache rebuilt from server
// snapshots on every poll tick; only messages in the Sending state
// exist purely locally. The engine is the Store's single writer.
type Store struct {
	mu            sync.RWMutex
	order         []string
	conversations map[string]*models.Conversation
	messages      map[string][]models.Message

	// activeID is the conversation the user currently has open. It is
	// written only by user navigation, never by reconciliation.
	activeID string

	// localUnread tracks the unread count the user should see for
	// conversations they have opened, overriding the server snapshot
	// for the active conversation to avoid flicker.
	localUnread map[string]int
}

// NewStore creates an empty store.
func NewStore() *Store {
	return &Store{
		conversations: make(map[string]*models.Conversation),
		messages:      make(map[string][]models.Message),
		localUnread:   make(map[string]int),
	}
}

// SetActive records the open conversation. An empty ID means no
// conversation is open.
func (s *Store) SetActive(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.activeID = conversationID
}

// ActiveID returns the open conversation's ID, or "".
func (s *Store) ActiveID() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.activeID
}

// Conversations returns the conversation list ordered by most recent
// activity. The returned slice is a copy.
func (s *Store) Conversations() []models.Conversation {
	s.mu.RLock()
	defer s.mu.RUnlock()

	list := make([]models.Conversation, 0, len(s.order))
	for _, id := range s.order {
		if c, ok := s.conversations[id]; ok {
			list = append(list, *c)
		}
	}
	return list
}

// Conversation returns a copy of one conversation.
func (s *Store) Conversation(conversationID string) (models.Conversation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.conversations[conversationID]
	if !ok {
		return models.Conversation{}, false
	}
	return *c, true
}

// ReplaceConversations swaps in a fresh conversation list snapshot.
// The snapshot's order is the server's (most recent activity first)
// and is kept as-is. The active conversation's unread count is forced
// to the locally tracked value so a mark-read in flight does not
// flicker back to the server's stale count.
func (s *Store) ReplaceConversations(snapshot []models.Conversation) {
	s.mu.Lock()
	defer s.mu.Unlock()

	order := make([]string, 0, len(snapshot))
	conversations := make(map[string]*models.Conversation, len(snapshot))
	for i := range snapshot {
		c := snapshot[i]
		if c.ID == "" {
			continue
		}
		if c.ID == s.activeID {
			if local, ok := s.localUnread[c.ID]; ok {
				c.UnreadCount = local
			}
		}
		order = append(order, c.ID)
		conversations[c.ID] = &c
	}

	s.order = order
	s.conversations = conversations

	// Drop message logs for conversations the server no longer reports.
	for id := range s.messages {
		if _, ok := conversations[id]; !ok && id != s.activeID {
			delete(s.messages, id)
		}
	}

	s.recomputeLastMessage(s.activeID)
}

// UpsertConversation inserts or refreshes a single conversation,
// placing a new one at the front of the list.
func (s *Store) UpsertConversation(conversation models.Conversation) {
	if conversation.ID == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.conversations[conversation.ID]; !ok {
		s.order = append([]string{conversation.ID}, s.order...)
	}
	c := conversation
	s.conversations[c.ID] = &c
	s.recomputeLastMessage(c.ID)
}

// Messages returns a copy of a conversation's message log.
func (s *Store) Messages(conversationID string) []models.Message {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log := s.messages[conversationID]
	out := make([]models.Message, len(log))
	copy(out, log)
	return out
}

// MessageCount returns the length of a conversation's message log.
func (s *Store) MessageCount(conversationID string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.messages[conversationID])
}

// ReplaceMessages swaps in a fresh message log snapshot, preserving
// any messages still in the Sending state (they exist only locally
// until confirmed or discarded). The snapshot's order is the server's
// stable (createdAt, id) order; pending messages are kept at the tail,
// where the optimistic insert placed them.
func (s *Store) ReplaceMessages(conversationID string, snapshot []models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pending []models.Message
	for _, m := range s.messages[conversationID] {
		if m.Pending() {
			pending = append(pending, m)
		}
	}

	log := make([]models.Message, 0, len(snapshot)+len(pending))
	log = append(log, snapshot...)
	log = append(log, pending...)
	s.messages[conversationID] = log

	s.recomputeLastMessage(conversationID)
}

// AppendLocal performs the optimistic insert of an outgoing message.
func (s *Store) AppendLocal(message models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := message.ConversationID
	s.messages[id] = append(s.messages[id], message)
	s.recomputeLastMessage(id)
}

// RemoveLocal discards an optimistic message after a failed send,
// leaving no partial state behind.
func (s *Store) RemoveLocal(conversationID, messageID string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	log := s.messages[conversationID]
	for i := range log {
		if log[i].ID == messageID {
			s.messages[conversationID] = append(log[:i:i], log[i+1:]...)
			break
		}
	}
	if c, ok := s.conversations[conversationID]; ok {
		if c.LastMessage != nil && c.LastMessage.ID == messageID {
			c.LastMessage = nil
		}
	}
	s.recomputeLastMessage(conversationID)
}

// ConfirmLocal replaces an optimistic placeholder with the
// server-confirmed message at the same list position. If a poll
// snapshot already delivered the canonical copy, the placeholder is
// simply dropped so the message appears exactly once.
func (s *Store) ConfirmLocal(conversationID, placeholderID string, confirmed models.Message) {
	s.mu.Lock()
	defer s.mu.Unlock()

	confirmed.State = models.SendStateSent
	log := s.messages[conversationID]

	canonicalPresent := false
	for i := range log {
		if log[i].ID == confirmed.ID {
			canonicalPresent = true
			break
		}
	}

	replaced := false
	for i := range log {
		if log[i].ID != placeholderID {
			continue
		}
		if canonicalPresent {
			log = append(log[:i:i], log[i+1:]...)
		} else {
			log[i] = confirmed
		}
		replaced = true
		break
	}
	if !replaced && !canonicalPresent {
		log = append(log, confirmed)
	}
	s.messages[conversationID] = log

	s.recomputeLastMessage(conversationID)
}

// SetUnread sets the unread count shown for a conversation and records
// it as the locally tracked value that snapshot application preserves
// for the active conversation.
func (s *Store) SetUnread(conversationID string, count int) {
	if count < 0 {
		count = 0
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.localUnread[conversationID] = count
	if c, ok := s.conversations[conversationID]; ok {
		c.UnreadCount = count
	}
}

// ClearLocalUnread forgets the locally tracked unread value, letting
// the next snapshot's server count through. Called whenever a
// conversation stops being active.
func (s *Store) ClearLocalUnread(conversationID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.localUnread, conversationID)
}

// TotalUnread sums unread counts across all conversations.
func (s *Store) TotalUnread() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total := 0
	for _, c := range s.conversations {
		total += c.UnreadCount
	}
	return total
}

// recomputeLastMessage keeps the invariant that a conversation's
// LastMessage reflects the maximum (createdAt, id) message known
// locally, including pending ones. Callers must hold the lock.
func (s *Store) recomputeLastMessage(conversationID string) {
	c, ok := s.conversations[conversationID]
	if !ok {
		return
	}

	log := s.messages[conversationID]
	if len(log) == 0 {
		// No local log fetched; keep what the snapshot said.
		return
	}

	var last *models.Message
	for i := range log {
		if last == nil || last.Before(&log[i]) {
			m := log[i]
			last = &m
		}
	}
	c.LastMessage = last
}
