package robinhood

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ckartner/hoodbot/internal/domain"
)

// PlaceOrder submits an order. The request is marshalled exactly once; the
// same bytes are signed and sent, which is what keeps the signature valid.
func (c *Client) PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return domain.Order{}, fmt.Errorf("robinhood: marshal order request: %w", err)
	}

	raw, err := c.Do(ctx, http.MethodPost, "/api/v1/crypto/trading/orders/", string(body))
	if err != nil {
		return domain.Order{}, fmt.Errorf("robinhood: place order: %w", err)
	}
	return decodeObject[domain.Order](raw)
}

// CancelOrder requests cancellation of an order by its exchange ID. The
// exchange acknowledges asynchronously; a nil error means the request was
// accepted, not that the order is already cancelled.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	path := fmt.Sprintf("/api/v1/crypto/trading/orders/%s/cancel/", url.PathEscape(orderID))
	if _, err := c.Do(ctx, http.MethodPost, path, ""); err != nil {
		return fmt.Errorf("robinhood: cancel order %s: %w", orderID, err)
	}
	return nil
}

// GetOrder returns a single order by its exchange ID.
func (c *Client) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	path := fmt.Sprintf("/api/v1/crypto/trading/orders/%s/", url.PathEscape(orderID))
	raw, err := c.Do(ctx, http.MethodGet, path, "")
	if err != nil {
		return domain.Order{}, fmt.Errorf("robinhood: get order %s: %w", orderID, err)
	}
	return decodeObject[domain.Order](raw)
}

// GetOrders returns all orders for the account.
func (c *Client) GetOrders(ctx context.Context) ([]domain.Order, error) {
	raw, err := c.Do(ctx, http.MethodGet, "/api/v1/crypto/trading/orders/", "")
	if err != nil {
		return nil, fmt.Errorf("robinhood: get orders: %w", err)
	}
	return decodeResults[domain.Order](raw, "orders")
}
