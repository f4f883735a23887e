package models

import "time"

// User is the authenticated account, as returned by the accounts API.
type User struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	IsFreelancer bool      `json:"is_freelancer"`
	IsBuyer      bool      `json:"is_buyer"`
	DateJoined   time.Time `json:"date_joined"`
}

// Gig is a service listing offered by a freelancer.
type Gig struct {
	ID            string    `json:"id"`
	Seller        UserRef   `json:"seller"`
	CategoryName  string    `json:"category_name"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	Price         float64   `json:"price"`
	DeliveryDays  int       `json:"delivery_days"`
	Image         string    `json:"image,omitempty"`
	Tags          []string  `json:"tags_list,omitempty"`
	IsActive      bool      `json:"is_active"`
	TotalOrders   int       `json:"total_orders"`
	AverageRating float64   `json:"average_rating"`
	CreatedAt     time.Time `json:"created_at"`
}

// Ref returns the gig's conversation-summary form.
func (g *Gig) Ref() GigRef {
	return GigRef{
		ID:           g.ID,
		Title:        g.Title,
		Price:        g.Price,
		Image:        g.Image,
		DeliveryDays: g.DeliveryDays,
	}
}

// OrderStatus is the lifecycle state of an order.
type OrderStatus string

const (
	OrderStatusPending    OrderStatus = "pending"
	OrderStatusInProgress OrderStatus = "in_progress"
	OrderStatusDelivered  OrderStatus = "delivered"
	OrderStatusCompleted  OrderStatus = "completed"
	OrderStatusCancelled  OrderStatus = "cancelled"
)

// Order is a purchase of a gig.
type Order struct {
	ID        string      `json:"id"`
	Gig       GigRef      `json:"gig"`
	Buyer     UserRef     `json:"buyer"`
	Seller    UserRef     `json:"seller"`
	Status    OrderStatus `json:"status"`
	Total     float64     `json:"total"`
	CreatedAt time.Time   `json:"created_at"`
}
