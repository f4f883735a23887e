package api

import (
	"bytes"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gigspace/gigspace/internal/models"
)

// The server is a trusted but not infallible collaborator: snapshot
// fields may be missing, null, or differently typed between versions
// (numeric IDs vs strings, decimal prices as strings). The wire types
// below absorb those shapes and default what they cannot parse, so the
// stores only ever see well-formed models.

// flexID decodes a JSON number or string into an opaque string ID.
type flexID string

func (f *flexID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		*f = ""
		return nil
	}
	*f = flexID(n.String())
	return nil
}

// flexFloat decodes a JSON number or numeric string into a float64,
// defaulting to zero on anything unparsable.
type flexFloat float64

func (f *flexFloat) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || string(data) == "null" {
		*f = 0
		return nil
	}
	raw := string(data)
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*f = 0
			return nil
		}
		raw = s
	}
	value, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		*f = 0
		return nil
	}
	*f = flexFloat(value)
	return nil
}

// flexTime decodes an RFC3339-ish timestamp, defaulting to zero time on
// anything unparsable.
type flexTime time.Time

func (f *flexTime) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*f = flexTime(time.Time{})
		return nil
	}
	for _, layout := range []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04:05"} {
		if ts, err := time.Parse(layout, s); err == nil {
			*f = flexTime(ts)
			return nil
		}
	}
	*f = flexTime(time.Time{})
	return nil
}

func (f flexTime) Time() time.Time { return time.Time(f) }

type userWire struct {
	ID           flexID   `json:"id"`
	Username     string   `json:"username"`
	Email        string   `json:"email"`
	IsFreelancer bool     `json:"is_freelancer"`
	IsBuyer      bool     `json:"is_buyer"`
	DateJoined   flexTime `json:"date_joined"`
}

func (w *userWire) toRef() models.UserRef {
	if w == nil || (w.ID == "" && w.Username == "") {
		return models.UnknownUser
	}
	name := w.Username
	if name == "" {
		name = models.UnknownUser.DisplayName
	}
	return models.UserRef{ID: string(w.ID), DisplayName: name}
}

func (w *userWire) toUser() models.User {
	return models.User{
		ID:           string(w.ID),
		Username:     w.Username,
		Email:        w.Email,
		IsFreelancer: w.IsFreelancer,
		IsBuyer:      w.IsBuyer,
		DateJoined:   w.DateJoined.Time(),
	}
}

type gigWire struct {
	ID            flexID    `json:"id"`
	Seller        *userWire `json:"seller"`
	CategoryName  string    `json:"category_name"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         flexFloat `json:"price"`
	DeliveryDays  int       `json:"delivery_days"`
	Image         string    `json:"image"`
	Tags          []string  `json:"tags_list"`
	IsActive      bool      `json:"is_active"`
	TotalOrders   int       `json:"total_orders"`
	AverageRating flexFloat `json:"average_rating"`
	CreatedAt     flexTime  `json:"created_at"`
}

func (w *gigWire) toRef() *models.GigRef {
	if w == nil || w.ID == "" {
		return nil
	}
	return &models.GigRef{
		ID:           string(w.ID),
		Title:        w.Title,
		Price:        float64(w.Price),
		Image:        w.Image,
		DeliveryDays: w.DeliveryDays,
	}
}

func (w *gigWire) toGig() models.Gig {
	return models.Gig{
		ID:            string(w.ID),
		Seller:        w.Seller.toRef(),
		CategoryName:  w.CategoryName,
		Title:         w.Title,
		Description:   w.Description,
		Price:         float64(w.Price),
		DeliveryDays:  w.DeliveryDays,
		Image:         w.Image,
		Tags:          w.Tags,
		IsActive:      w.IsActive,
		TotalOrders:   w.TotalOrders,
		AverageRating: float64(w.AverageRating),
		CreatedAt:     w.CreatedAt.Time(),
	}
}

type messageWire struct {
	ID           flexID   `json:"id"`
	Conversation flexID   `json:"conversation"`
	Sender       flexID   `json:"sender"`
	Text         string   `json:"text"`
	Attachment   string   `json:"attachment"`
	IsRead       bool     `json:"is_read"`
	CreatedAt    flexTime `json:"created_at"`
}

func (w *messageWire) toMessage() *models.Message {
	if w == nil {
		return nil
	}
	return &models.Message{
		ID:             string(w.ID),
		ConversationID: string(w.Conversation),
		SenderID:       string(w.Sender),
		Text:           w.Text,
		AttachmentRef:  w.Attachment,
		CreatedAt:      w.CreatedAt.Time(),
		IsRead:         w.IsRead,
		State:          models.SendStateSent,
	}
}

type conversationWire struct {
	ID           flexID       `json:"id"`
	Participants []userWire   `json:"participants"`
	GigDetail    *gigWire     `json:"gig_detail"`
	LastMessage  *messageWire `json:"last_message"`
	UnreadCount  int          `json:"unread_count"`
	UpdatedAt    flexTime     `json:"updated_at"`
}

func (w *conversationWire) toConversation() models.Conversation {
	participants := make([]models.UserRef, 0, len(w.Participants))
	for i := range w.Participants {
		participants = append(participants, w.Participants[i].toRef())
	}

	unread := w.UnreadCount
	if unread < 0 {
		unread = 0
	}

	return models.Conversation{
		ID:           string(w.ID),
		Participants: participants,
		LastMessage:  w.LastMessage.toMessage(),
		UnreadCount:  unread,
		LinkedGig:    w.GigDetail.toRef(),
		UpdatedAt:    w.UpdatedAt.Time(),
	}
}

type orderWire struct {
	ID        flexID    `json:"id"`
	Gig       *gigWire  `json:"gig"`
	Buyer     *userWire `json:"buyer"`
	Seller    *userWire `json:"seller"`
	Status    string    `json:"status"`
	Total     flexFloat `json:"total"`
	CreatedAt flexTime  `json:"created_at"`
}

func (w *orderWire) toOrder() models.Order {
	order := models.Order{
		ID:        string(w.ID),
		Buyer:     w.Buyer.toRef(),
		Seller:    w.Seller.toRef(),
		Status:    models.OrderStatus(w.Status),
		Total:     float64(w.Total),
		CreatedAt: w.CreatedAt.Time(),
	}
	if ref := w.Gig.toRef(); ref != nil {
		order.Gig = *ref
	}
	return order
}
