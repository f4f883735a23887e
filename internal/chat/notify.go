package chat

import (
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/gigspace/gigspace/internal/events"
	"github.com/gigspace/gigspace/internal/logging"
	"github.com/gigspace/gigspace/internal/models"
)

// AlertLevel classifies an alert for display.
type AlertLevel string

// Alert levels.
const (
	AlertLevelInfo  AlertLevel = "info"
	AlertLevelError AlertLevel = "error"
)

// Alert is a human-readable notification derived from engine events.
type Alert struct {
	Level          AlertLevel
	Text           string
	ConversationID string
	Timestamp      time.Time
}

// Notifier turns engine events into display alerts. It subscribes to
// the publisher and exposes a channel the UI drains; when the channel
// is full the oldest alert is dropped, never the newest.
type Notifier struct {
	store  *Store
	logger zerolog.Logger

	mu        sync.Mutex
	closed    bool
	alerts    chan Alert
	publisher events.Publisher
}

// subscriberID identifies the notifier's subscription on the publisher.
const subscriberID = "chat-notifier"

// NewNotifier creates a Notifier subscribed to the publisher.
func NewNotifier(store *Store, publisher events.Publisher) *Notifier {
	n := &Notifier{
		store:     store,
		logger:    logging.Component("chat-notifier"),
		alerts:    make(chan Alert, 32),
		publisher: publisher,
	}
	if err := publisher.Subscribe(subscriberID, events.Filter{
		EventTypes: []models.EventType{
			models.EventTypeMessageReceived,
			models.EventTypeSendFailed,
			models.EventTypeActionFailed,
		},
	}, n.handle); err != nil {
		n.logger.Error().Err(err).Msg("subscribe failed")
	}
	return n
}

// Alerts returns the channel alerts are delivered on.
func (n *Notifier) Alerts() <-chan Alert {
	return n.alerts
}

// Close unsubscribes and closes the alert channel.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	n.closed = true
	if err := n.publisher.Unsubscribe(subscriberID); err != nil {
		n.logger.Debug().Err(err).Msg("unsubscribe failed")
	}
	close(n.alerts)
}

func (n *Notifier) handle(event *models.Event) {
	alert, ok := n.format(event)
	if !ok {
		return
	}

	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}
	for {
		select {
		case n.alerts <- alert:
			return
		default:
		}
		select {
		case <-n.alerts:
			n.logger.Debug().Msg("alert buffer full, dropped oldest")
		default:
		}
	}
}

func (n *Notifier) format(event *models.Event) (Alert, bool) {
	switch event.Type {
	case models.EventTypeMessageReceived:
		sender := "someone"
		if event.Message != nil {
			if conv, ok := n.store.Conversation(event.ConversationID); ok {
				for _, p := range conv.Participants {
					if p.ID == event.Message.SenderID {
						sender = p.DisplayName
						break
					}
				}
			}
		}
		text := fmt.Sprintf("New message from %s", sender)
		if event.NewCount > 1 {
			text = fmt.Sprintf("%d new messages, latest from %s", event.NewCount, sender)
		}
		return Alert{
			Level:          AlertLevelInfo,
			Text:           text,
			ConversationID: event.ConversationID,
			Timestamp:      event.Timestamp,
		}, true
	case models.EventTypeSendFailed:
		return Alert{
			Level:          AlertLevelError,
			Text:           "Message failed to send",
			ConversationID: event.ConversationID,
			Timestamp:      event.Timestamp,
		}, true
	case models.EventTypeActionFailed:
		return Alert{
			Level:          AlertLevelError,
			Text:           "Could not mark conversation as read",
			ConversationID: event.ConversationID,
			Timestamp:      event.Timestamp,
		}, true
	}
	return Alert{}, false
}
