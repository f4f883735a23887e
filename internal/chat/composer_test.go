package chat

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/gigspace/gigspace/internal/api"
	"github.com/gigspace/gigspace/internal/events"
	"github.com/gigspace/gigspace/internal/models"
)

func newTestComposer(t *testing.T, client *fakeClient) (*Composer, *Store, *eventLog) {
	t.Helper()

	store := NewStore()
	publisher := events.NewInMemoryPublisher()
	log := &eventLog{}
	if err := publisher.Subscribe("test", events.Filter{}, log.handle); err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	return NewComposer(client, store, publisher, "me"), store, log
}

func TestSendOptimisticInsertThenConfirm(t *testing.T) {
	var duringSend []models.Message
	store := (*Store)(nil)
	client := &fakeClient{}
	client.sendMessageFn = func(ctx context.Context, conversationID, text string, attachment *api.Attachment) (*models.Message, error) {
		// The optimistic placeholder must already be visible while the
		// request is in flight.
		duringSend = store.Messages(conversationID)
		return &models.Message{
			ID:             "42",
			ConversationID: conversationID,
			SenderID:       "me",
			Text:           text,
			CreatedAt:      time.Now(),
		}, nil
	}
	composer, s, log := newTestComposer(t, client)
	store = s

	confirmed, err := composer.Send(context.Background(), "c1", "  hello  ", nil)
	if err != nil {
		t.Fatalf("send: %v", err)
	}

	if len(duringSend) != 1 {
		t.Fatalf("expected placeholder visible during send, got %d messages", len(duringSend))
	}
	if !duringSend[0].Pending() {
		t.Error("in-flight message should be pending")
	}
	if !strings.HasPrefix(duringSend[0].ID, "local-") {
		t.Errorf("placeholder should carry a local ID, got %q", duringSend[0].ID)
	}
	if duringSend[0].Text != "hello" {
		t.Errorf("text should be trimmed before send, got %q", duringSend[0].Text)
	}

	final := store.Messages("c1")
	if len(final) != 1 {
		t.Fatalf("expected 1 message after confirm, got %d", len(final))
	}
	if final[0].ID != "42" || final[0].State != models.SendStateSent {
		t.Errorf("expected confirmed message in place, got %+v", final[0])
	}
	if confirmed.ID != "42" {
		t.Errorf("expected confirmed message returned, got %q", confirmed.ID)
	}
	if got := log.byType(models.EventTypeMessageSent); len(got) != 1 {
		t.Errorf("expected one sent event, got %d", len(got))
	}
}

func TestSendFailureRollsBackAndRaisesOneError(t *testing.T) {
	sendErr := errors.New("boom")
	client := &fakeClient{}
	client.sendMessageFn = func(ctx context.Context, conversationID, text string, attachment *api.Attachment) (*models.Message, error) {
		return nil, sendErr
	}
	composer, store, log := newTestComposer(t, client)

	_, err := composer.Send(context.Background(), "c1", "hello", nil)
	if !errors.Is(err, sendErr) {
		t.Fatalf("expected send error surfaced, got %v", err)
	}

	if n := store.MessageCount("c1"); n != 0 {
		t.Errorf("placeholder should be rolled back, %d messages remain", n)
	}
	failed := log.byType(models.EventTypeSendFailed)
	if len(failed) != 1 {
		t.Fatalf("expected exactly one send-failed event, got %d", len(failed))
	}
	if failed[0].ConversationID != "c1" {
		t.Errorf("event should name the conversation, got %q", failed[0].ConversationID)
	}
}

func TestSendEmptyDraftRejectedLocally(t *testing.T) {
	client := &fakeClient{}
	composer, store, log := newTestComposer(t, client)

	_, err := composer.Send(context.Background(), "c1", "   ", nil)
	if !errors.Is(err, ErrEmptyDraft) {
		t.Fatalf("expected ErrEmptyDraft, got %v", err)
	}
	if client.sendCalls() != 0 {
		t.Error("empty draft must not reach the API")
	}
	if store.MessageCount("c1") != 0 {
		t.Error("empty draft must not touch the store")
	}
	if len(log.byType(models.EventTypeSendFailed)) != 0 {
		t.Error("empty draft is a no-op, not a failure")
	}
}

func TestSendAttachmentOnlyExactlyOnce(t *testing.T) {
	client := &fakeClient{}
	client.sendMessageFn = func(ctx context.Context, conversationID, text string, attachment *api.Attachment) (*models.Message, error) {
		if text != "" {
			t.Errorf("expected empty text, got %q", text)
		}
		if attachment == nil || attachment.Filename != "cv.pdf" {
			t.Errorf("expected attachment to pass through, got %+v", attachment)
		}
		return &models.Message{
			ID:             "43",
			ConversationID: conversationID,
			SenderID:       "me",
			AttachmentRef:  "uploads/cv.pdf",
			CreatedAt:      time.Now(),
		}, nil
	}
	composer, store, _ := newTestComposer(t, client)

	attachment := &api.Attachment{Filename: "cv.pdf", Reader: strings.NewReader("%PDF")}
	if _, err := composer.Send(context.Background(), "c1", "", attachment); err != nil {
		t.Fatalf("send: %v", err)
	}

	if client.sendCalls() != 1 {
		t.Errorf("expected exactly one upload, got %d", client.sendCalls())
	}
	final := store.Messages("c1")
	if len(final) != 1 || final[0].ID != "43" {
		t.Fatalf("expected the confirmed attachment message, got %+v", final)
	}
}
