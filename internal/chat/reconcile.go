package chat

import (
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigspace/gigspace/internal/events"
	"github.com/gigspace/gigspace/internal/logging"
	"github.com/gigspace/gigspace/internal/models"
)

// Target names for the staleness guard. The conversation list is one
// target; each conversation's message log is its own.
const targetConversations = "conversations"

func targetMessages(conversationID string) string {
	return "messages:" + conversationID
}

// Reconciler merges fetched snapshots into the Store and computes the
// delta that drives notifications. Every fetch is tagged with a
// monotonic generation at dispatch time; a result is applied only if
// it is newer than the last applied generation for its target and, for
// message logs, only if the conversation is still the active one. A
// stale, late-arriving response never regresses a store that has
// already advanced.
type Reconciler struct {
	store     *Store
	publisher events.Publisher
	selfID    string
	logger    zerolog.Logger
	now       func() time.Time

	mu          sync.Mutex
	lastApplied map[string]uint64
	prevCounts  map[string]int
}

// NewReconciler creates a Reconciler writing into the given store.
func NewReconciler(store *Store, publisher events.Publisher, selfID string) *Reconciler {
	return &Reconciler{
		store:       store,
		publisher:   publisher,
		selfID:      selfID,
		logger:      logging.Component("chat-reconciler"),
		now:         time.Now,
		lastApplied: make(map[string]uint64),
		prevCounts:  make(map[string]int),
	}
}

// admit records the generation for a target and reports whether the
// result may be applied.
func (r *Reconciler) admit(target string, generation uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if generation <= r.lastApplied[target] {
		return false
	}
	r.lastApplied[target] = generation
	return true
}

// ApplyConversations applies a conversation list snapshot. Returns
// false when the snapshot was discarded as stale.
func (r *Reconciler) ApplyConversations(snapshot []models.Conversation, generation uint64) bool {
	if !r.admit(targetConversations, generation) {
		r.logger.Debug().Uint64("generation", generation).Msg("discarding stale conversation snapshot")
		return false
	}

	r.store.ReplaceConversations(snapshot)

	r.publisher.Publish(&models.Event{
		Type:      models.EventTypeConversationsUpdated,
		Timestamp: r.now(),
	})
	return true
}

// ApplyMessages applies a message log snapshot for a conversation.
// The result is discarded when the conversation is no longer active or
// the generation is stale. When the snapshot grows, the newly visible
// messages are exactly the tail beyond the previous length (ordering
// is stable); counterparty messages in that tail raise one batched
// EventTypeMessageReceived carrying the single most recent of them. A
// shrinking snapshot is a full reset with no delta notification.
func (r *Reconciler) ApplyMessages(conversationID string, snapshot []models.Message, generation uint64) bool {
	logger := logging.WithConversation(r.logger, conversationID)
	if r.store.ActiveID() != conversationID {
		logger.Debug().Msg("discarding snapshot for inactive conversation")
		return false
	}
	if !r.admit(targetMessages(conversationID), generation) {
		logger.Debug().
			Uint64("generation", generation).
			Msg("discarding stale message snapshot")
		return false
	}

	r.mu.Lock()
	prev, hadPrev := r.prevCounts[conversationID]
	r.prevCounts[conversationID] = len(snapshot)
	r.mu.Unlock()

	r.store.ReplaceMessages(conversationID, snapshot)

	r.publisher.Publish(&models.Event{
		Type:           models.EventTypeMessagesUpdated,
		Timestamp:      r.now(),
		ConversationID: conversationID,
	})

	// The first snapshot after activation establishes the baseline;
	// notifying then would re-alert history every time a conversation
	// is opened.
	if !hadPrev || len(snapshot) <= prev {
		return true
	}

	tail := snapshot[prev:]
	var latest *models.Message
	newCount := 0
	for i := range tail {
		if tail[i].SenderID == r.selfID {
			continue
		}
		newCount++
		latest = &tail[i]
	}
	if newCount == 0 {
		return true
	}

	logger.Debug().
		Int("new_messages", newCount).
		Msg("new counterparty messages reconciled")

	r.publisher.Publish(&models.Event{
		Type:           models.EventTypeMessageReceived,
		Timestamp:      r.now(),
		ConversationID: conversationID,
		Message:        latest,
		NewCount:       newCount,
	})
	return true
}

// ResetTarget forgets the snapshot baseline for a conversation so its
// next snapshot establishes a fresh one. Called on activation.
func (r *Reconciler) ResetTarget(conversationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.prevCounts, conversationID)
}
