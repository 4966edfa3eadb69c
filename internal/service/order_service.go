package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ckartner/hoodbot/internal/domain"
)

// OrderPlacer submits and manages orders on the exchange.
type OrderPlacer interface {
	PlaceOrder(ctx context.Context, req domain.OrderRequest) (domain.Order, error)
	CancelOrder(ctx context.Context, orderID string) error
	GetOrder(ctx context.Context, orderID string) (domain.Order, error)
	GetOrders(ctx context.Context) ([]domain.Order, error)
}

// QuantitySizer converts a dollar spend into a validated asset quantity.
type QuantitySizer interface {
	CalculateQuantityFromDollars(ctx context.Context, symbol string, dollars decimal.Decimal) (domain.SizingResult, error)
}

// Notifier pushes a human-readable message to a chat channel. Implementations
// must tolerate being called with a nil-safe no-op.
type Notifier interface {
	Send(ctx context.Context, message string) error
}

// OrderService handles the order lifecycle for dollar-denominated buys:
// sizing, preview, confirmation, placement, and cancellation.
type OrderService struct {
	exchange OrderPlacer
	sizer    QuantitySizer
	journal  domain.AuditJournal
	notifier Notifier
	logger   *slog.Logger
}

// NewOrderService creates an OrderService. journal and notifier may be nil;
// both degrade to no-ops so the trade path never depends on them.
func NewOrderService(
	exchange OrderPlacer,
	sizer QuantitySizer,
	journal domain.AuditJournal,
	notifier Notifier,
	logger *slog.Logger,
) *OrderService {
	if logger == nil {
		logger = slog.Default()
	}
	return &OrderService{
		exchange: exchange,
		sizer:    sizer,
		journal:  journal,
		notifier: notifier,
		logger:   logger.With(slog.String("component", "order_service")),
	}
}

// BuyByDollarAmount sizes a market buy for the given dollar amount.
//
// With confirm=false (the default path) nothing is sent to the exchange: the
// outcome carries a preview of what a confirmed call would place. With
// confirm=true the order is placed with a fresh UUIDv4 client_order_id. An
// invalid sizing is rejected before any order is built, in both paths.
func (s *OrderService) BuyByDollarAmount(ctx context.Context, symbol string, dollars decimal.Decimal, confirm bool) (domain.BuyOutcome, error) {
	sized, err := s.sizer.CalculateQuantityFromDollars(ctx, symbol, dollars)
	if err != nil {
		return domain.BuyOutcome{}, fmt.Errorf("order_service: size buy: %w", err)
	}

	outcome := domain.BuyOutcome{Sizing: sized}

	if !sized.IsValid {
		return outcome, &domain.APIError{
			Code:   domain.ErrCodeInvalidOrderSize,
			Detail: sized.ValidationMessage,
		}
	}

	if !confirm {
		outcome.Preview = &domain.OrderPreview{
			Symbol:        symbol,
			Side:          domain.OrderSideBuy,
			Type:          domain.OrderTypeMarket,
			Quantity:      sized.Quantity,
			EstimatedCost: sized.ActualCost,
			CurrentPrice:  sized.CurrentPrice,
			Message:       "preview only, pass confirm to place the order",
		}

		s.audit(ctx, "order_previewed", map[string]any{
			"symbol":   symbol,
			"dollars":  dollars.String(),
			"quantity": sized.Quantity.String(),
			"cost":     sized.ActualCost.String(),
		})

		s.logger.InfoContext(ctx, "order_service: buy previewed",
			slog.String("symbol", symbol),
			slog.String("quantity", sized.Quantity.String()),
			slog.String("estimated_cost", sized.ActualCost.String()),
		)

		return outcome, nil
	}

	req := domain.OrderRequest{
		ClientOrderID: uuid.New().String(),
		Side:          domain.OrderSideBuy,
		Symbol:        symbol,
		Type:          domain.OrderTypeMarket,
		MarketOrderConfig: &domain.MarketOrderConfig{
			AssetQuantity: sized.Quantity.String(),
		},
	}

	order, err := s.exchange.PlaceOrder(ctx, req)
	if err != nil {
		return outcome, fmt.Errorf("order_service: place order: %w", err)
	}
	outcome.Order = &order

	s.audit(ctx, "order_placed", map[string]any{
		"order_id":        order.ID,
		"client_order_id": req.ClientOrderID,
		"symbol":          symbol,
		"side":            string(req.Side),
		"quantity":        sized.Quantity.String(),
		"estimated_cost":  sized.ActualCost.String(),
		"state":           order.State,
	})

	s.notify(ctx, fmt.Sprintf("Placed market buy: %s %s (~$%s), order %s, state %s",
		sized.Quantity, symbol, sized.ActualCost.StringFixed(2), order.ID, order.State))

	s.logger.InfoContext(ctx, "order_service: order placed",
		slog.String("order_id", order.ID),
		slog.String("symbol", symbol),
		slog.String("quantity", sized.Quantity.String()),
		slog.String("state", order.State),
	)

	return outcome, nil
}

// CancelOrder asks the exchange to cancel an order. A nil error means the
// cancellation was accepted, not completed.
func (s *OrderService) CancelOrder(ctx context.Context, orderID string) error {
	if err := s.exchange.CancelOrder(ctx, orderID); err != nil {
		return fmt.Errorf("order_service: cancel order %q: %w", orderID, err)
	}

	s.audit(ctx, "order_cancelled", map[string]any{"order_id": orderID})

	s.logger.InfoContext(ctx, "order_service: cancellation requested",
		slog.String("order_id", orderID),
	)
	return nil
}

// GetOrder retrieves a single order by its exchange ID.
func (s *OrderService) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	order, err := s.exchange.GetOrder(ctx, orderID)
	if err != nil {
		return domain.Order{}, fmt.Errorf("order_service: get order %q: %w", orderID, err)
	}
	return order, nil
}

// ListOrders returns all orders for the account.
func (s *OrderService) ListOrders(ctx context.Context) ([]domain.Order, error) {
	orders, err := s.exchange.GetOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("order_service: list orders: %w", err)
	}
	return orders, nil
}

// audit appends a journal entry; journal failures are logged, never surfaced.
func (s *OrderService) audit(ctx context.Context, event string, detail map[string]any) {
	if s.journal == nil {
		return
	}
	if err := s.journal.Log(ctx, event, detail); err != nil {
		s.logger.WarnContext(ctx, "order_service: audit log failed",
			slog.String("event", event),
			slog.String("error", err.Error()),
		)
	}
}

// notify sends a chat message; delivery failures are logged, never surfaced.
func (s *OrderService) notify(ctx context.Context, message string) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.Send(ctx, message); err != nil {
		s.logger.WarnContext(ctx, "order_service: notification failed",
			slog.String("error", err.Error()),
		)
	}
}
