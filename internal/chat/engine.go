package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigspace/gigspace/internal/api"
	"github.com/gigspace/gigspace/internal/events"
	"github.com/gigspace/gigspace/internal/logging"
	"github.com/gigspace/gigspace/internal/models"
)

// EngineConfig configures the sync engine.
type EngineConfig struct {
	// SelfID is the signed-in user, used to split own messages from
	// counterparty messages during reconciliation.
	SelfID string

	// PollInterval is how often snapshots are fetched.
	PollInterval time.Duration

	// RequestTimeout bounds a single snapshot fetch.
	RequestTimeout time.Duration
}

// Engine ties the store, poller, reconciler, composer, read tracker
// and notifier into the one object the UI talks to.
type Engine struct {
	client      Client
	store       *Store
	publisher   events.Publisher
	reconciler  *Reconciler
	poller      *Poller
	readTracker *ReadTracker
	composer    *Composer
	notifier    *Notifier
	logger      zerolog.Logger
}

// NewEngine wires up a sync engine around the given API client.
func NewEngine(client Client, publisher events.Publisher, config EngineConfig) *Engine {
	store := NewStore()
	reconciler := NewReconciler(store, publisher, config.SelfID)
	poller := NewPoller(PollerConfig{
		Interval:       config.PollInterval,
		RequestTimeout: config.RequestTimeout,
	}, client, store, reconciler)

	return &Engine{
		client:      client,
		store:       store,
		publisher:   publisher,
		reconciler:  reconciler,
		poller:      poller,
		readTracker: NewReadTracker(client, store, publisher),
		composer:    NewComposer(client, store, publisher, config.SelfID),
		notifier:    NewNotifier(store, publisher),
		logger:      logging.Component("chat-engine"),
	}
}

// Store returns the engine's in-memory store. Reads are safe from any
// goroutine; the UI renders from it directly.
func (e *Engine) Store() *Store {
	return e.store
}

// Notifier returns the engine's alert source.
func (e *Engine) Notifier() *Notifier {
	return e.notifier
}

// Start begins background synchronization.
func (e *Engine) Start(ctx context.Context) error {
	return e.poller.Start(ctx)
}

// Stop halts background synchronization and closes the alert channel.
func (e *Engine) Stop() error {
	err := e.poller.Stop()
	e.notifier.Close()
	return err
}

// Activate makes a conversation the active one: its message log starts
// being polled, its snapshot baseline is reset so history is not
// re-announced, an immediate fetch fills the thread and, once that
// snapshot has been applied, the conversation is reported read. A
// failed fetch leaves the unread count standing; the user has not seen
// the messages.
func (e *Engine) Activate(ctx context.Context, conversationID string) {
	previous := e.store.ActiveID()
	if previous == conversationID {
		return
	}
	if previous != "" {
		e.store.ClearLocalUnread(previous)
	}
	e.store.SetActive(conversationID)
	e.reconciler.ResetTarget(conversationID)

	logger := logging.WithConversation(e.logger, conversationID)
	logger.Debug().Msg("conversation activated")

	if err := e.poller.FetchMessages(ctx, conversationID); err != nil {
		logger.Warn().Err(err).Msg("activation fetch failed, read not reported")
		return
	}
	e.readTracker.MarkRead(ctx, conversationID)
}

// Deactivate clears the active conversation; its message log stops
// being polled and the server's unread count flows through again on
// the next snapshot.
func (e *Engine) Deactivate() {
	if active := e.store.ActiveID(); active != "" {
		e.store.ClearLocalUnread(active)
	}
	e.store.SetActive("")
}

// Send submits a message to the active conversation. See
// Composer.Send for the optimistic-insert contract.
func (e *Engine) Send(ctx context.Context, text string, attachment *api.Attachment) (*models.Message, error) {
	conversationID := e.store.ActiveID()
	if conversationID == "" {
		return nil, fmt.Errorf("no active conversation")
	}
	return e.composer.Send(ctx, conversationID, text, attachment)
}

// StartConversation creates (or retrieves, when one already exists) a
// conversation with a user, optionally anchored to a gig, and makes it
// active.
func (e *Engine) StartConversation(ctx context.Context, userID, gigID string) (*models.Conversation, error) {
	conversation, err := e.client.CreateConversation(ctx, userID, gigID)
	if err != nil {
		return nil, fmt.Errorf("starting conversation: %w", err)
	}

	e.store.UpsertConversation(*conversation)
	e.Activate(ctx, conversation.ID)

	e.publisher.Publish(&models.Event{
		Type:      models.EventTypeConversationsUpdated,
		Timestamp: time.Now(),
	})
	return conversation, nil
}

// RefreshNow triggers an immediate poll of all current targets.
func (e *Engine) RefreshNow() error {
	return e.poller.PollNow()
}
