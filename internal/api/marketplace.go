package api

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/gigspace/gigspace/internal/models"
)

// GigFilter narrows ListGigs results. Zero values mean no restriction.
type GigFilter struct {
	Category string
	Search   string
	Mine     bool
}

func (f GigFilter) query() string {
	values := url.Values{}
	if f.Category != "" {
		values.Set("category", f.Category)
	}
	if f.Search != "" {
		values.Set("search", f.Search)
	}
	if f.Mine {
		values.Set("mine", "true")
	}
	if len(values) == 0 {
		return ""
	}
	return "?" + values.Encode()
}

// ListGigs fetches gig listings matching the filter.
func (c *Client) ListGigs(ctx context.Context, filter GigFilter) ([]models.Gig, error) {
	var wire []gigWire
	if err := c.doJSON(ctx, http.MethodGet, "/gigs/"+filter.query(), nil, &wire); err != nil {
		return nil, err
	}

	gigs := make([]models.Gig, 0, len(wire))
	for i := range wire {
		gigs = append(gigs, wire[i].toGig())
	}
	return gigs, nil
}

// GetGig fetches a single gig by ID.
func (c *Client) GetGig(ctx context.Context, gigID string) (*models.Gig, error) {
	if gigID == "" {
		return nil, fmt.Errorf("api: gig ID required")
	}

	var wire gigWire
	if err := c.doJSON(ctx, http.MethodGet, "/gigs/"+url.PathEscape(gigID)+"/", nil, &wire); err != nil {
		return nil, err
	}
	gig := wire.toGig()
	return &gig, nil
}

// ListOrders fetches the authenticated user's orders.
func (c *Client) ListOrders(ctx context.Context) ([]models.Order, error) {
	var wire []orderWire
	if err := c.doJSON(ctx, http.MethodGet, "/orders/", nil, &wire); err != nil {
		return nil, err
	}

	orders := make([]models.Order, 0, len(wire))
	for i := range wire {
		orders = append(orders, wire[i].toOrder())
	}
	return orders, nil
}
