package service

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ckartner/hoodbot/internal/domain"
)

type spyExchange struct {
	placeCalls  atomic.Int64
	lastRequest domain.OrderRequest
	placeErr    error

	cancelCalls atomic.Int64
	cancelErr   error
}

func (e *spyExchange) PlaceOrder(_ context.Context, req domain.OrderRequest) (domain.Order, error) {
	e.placeCalls.Add(1)
	e.lastRequest = req
	if e.placeErr != nil {
		return domain.Order{}, e.placeErr
	}
	return domain.Order{
		ID:            "order-1",
		ClientOrderID: req.ClientOrderID,
		Symbol:        req.Symbol,
		Side:          req.Side,
		State:         "open",
	}, nil
}

func (e *spyExchange) CancelOrder(context.Context, string) error {
	e.cancelCalls.Add(1)
	return e.cancelErr
}

func (e *spyExchange) GetOrder(context.Context, string) (domain.Order, error) {
	return domain.Order{ID: "order-1"}, nil
}

func (e *spyExchange) GetOrders(context.Context) ([]domain.Order, error) {
	return []domain.Order{{ID: "order-1"}}, nil
}

type stubSizer struct {
	result domain.SizingResult
	err    error
}

func (s *stubSizer) CalculateQuantityFromDollars(context.Context, string, decimal.Decimal) (domain.SizingResult, error) {
	return s.result, s.err
}

type recordingJournal struct {
	events []string
}

func (j *recordingJournal) Log(_ context.Context, event string, _ map[string]any) error {
	j.events = append(j.events, event)
	return nil
}

type recordingNotifier struct {
	messages []string
}

func (n *recordingNotifier) Send(_ context.Context, message string) error {
	n.messages = append(n.messages, message)
	return nil
}

func validSizing() domain.SizingResult {
	return domain.SizingResult{
		Symbol:           "SOL-USD",
		DollarsRequested: decimal.RequireFromString("5"),
		Quantity:         decimal.RequireFromString("0.03"),
		CurrentPrice:     decimal.RequireFromString("150.00"),
		BuyPrice:         decimal.RequireFromString("150.10"),
		ActualCost:       decimal.RequireFromString("4.503"),
		IsValid:          true,
	}
}

func TestBuyDefaultsToPreview(t *testing.T) {
	exchange := &spyExchange{}
	journal := &recordingJournal{}
	svc := NewOrderService(exchange, &stubSizer{result: validSizing()}, journal, nil, nil)

	outcome, err := svc.BuyByDollarAmount(context.Background(), "SOL-USD", decimal.RequireFromString("5"), false)
	if err != nil {
		t.Fatalf("BuyByDollarAmount: %v", err)
	}

	if exchange.placeCalls.Load() != 0 {
		t.Errorf("preview placed %d orders, want 0", exchange.placeCalls.Load())
	}
	if outcome.Preview == nil {
		t.Fatal("expected a preview")
	}
	if outcome.Order != nil {
		t.Error("preview outcome must not carry an order")
	}
	if !outcome.Preview.Quantity.Equal(decimal.RequireFromString("0.03")) {
		t.Errorf("preview quantity = %s", outcome.Preview.Quantity)
	}
	if len(journal.events) != 1 || journal.events[0] != "order_previewed" {
		t.Errorf("journal events = %v", journal.events)
	}
}

func TestBuyConfirmedPlacesOrder(t *testing.T) {
	exchange := &spyExchange{}
	journal := &recordingJournal{}
	notifier := &recordingNotifier{}
	svc := NewOrderService(exchange, &stubSizer{result: validSizing()}, journal, notifier, nil)

	outcome, err := svc.BuyByDollarAmount(context.Background(), "SOL-USD", decimal.RequireFromString("5"), true)
	if err != nil {
		t.Fatalf("BuyByDollarAmount: %v", err)
	}

	if exchange.placeCalls.Load() != 1 {
		t.Fatalf("place calls = %d, want 1", exchange.placeCalls.Load())
	}
	if outcome.Order == nil || outcome.Order.ID != "order-1" {
		t.Fatalf("outcome order = %+v", outcome.Order)
	}
	if outcome.Preview != nil {
		t.Error("confirmed outcome must not carry a preview")
	}

	req := exchange.lastRequest
	if _, err := uuid.Parse(req.ClientOrderID); err != nil {
		t.Errorf("client_order_id %q is not a UUID: %v", req.ClientOrderID, err)
	}
	if req.Side != domain.OrderSideBuy || req.Type != domain.OrderTypeMarket {
		t.Errorf("request side/type = %s/%s", req.Side, req.Type)
	}
	if req.MarketOrderConfig == nil || req.MarketOrderConfig.AssetQuantity != "0.03" {
		t.Errorf("market order config = %+v", req.MarketOrderConfig)
	}
	if req.LimitOrderConfig != nil {
		t.Error("market order must not carry a limit config")
	}

	if len(journal.events) != 1 || journal.events[0] != "order_placed" {
		t.Errorf("journal events = %v", journal.events)
	}
	if len(notifier.messages) != 1 {
		t.Errorf("notifications = %v", notifier.messages)
	}
}

func TestBuyRejectsInvalidSizing(t *testing.T) {
	invalid := validSizing()
	invalid.IsValid = false
	invalid.ValidationMessage = "quantity 0.001 is below the minimum order size 0.01 for SOL-USD"

	for _, confirm := range []bool{false, true} {
		exchange := &spyExchange{}
		svc := NewOrderService(exchange, &stubSizer{result: invalid}, nil, nil, nil)

		outcome, err := svc.BuyByDollarAmount(context.Background(), "SOL-USD", decimal.RequireFromString("0.10"), confirm)
		apiErr, ok := domain.AsAPIError(err)
		if !ok || apiErr.Code != domain.ErrCodeInvalidOrderSize {
			t.Fatalf("confirm=%v: err = %v, want invalid_order_size", confirm, err)
		}
		if exchange.placeCalls.Load() != 0 {
			t.Errorf("confirm=%v: invalid sizing placed an order", confirm)
		}
		// The sizing numbers are still returned for display.
		if outcome.Sizing.ValidationMessage == "" {
			t.Errorf("confirm=%v: sizing detail missing", confirm)
		}
	}
}

func TestBuyPropagatesExchangeError(t *testing.T) {
	exchange := &spyExchange{placeErr: &domain.APIError{Code: domain.ErrCodeBadRequest, Status: 400}}
	svc := NewOrderService(exchange, &stubSizer{result: validSizing()}, nil, nil, nil)

	_, err := svc.BuyByDollarAmount(context.Background(), "SOL-USD", decimal.RequireFromString("5"), true)
	apiErr, ok := domain.AsAPIError(err)
	if !ok || apiErr.Code != domain.ErrCodeBadRequest {
		t.Fatalf("err = %v, want wrapped bad_request", err)
	}
}

func TestCancelOrderWrapsError(t *testing.T) {
	exchange := &spyExchange{cancelErr: errors.New("boom")}
	svc := NewOrderService(exchange, &stubSizer{result: validSizing()}, nil, nil, nil)

	if err := svc.CancelOrder(context.Background(), "order-1"); err == nil {
		t.Fatal("expected error")
	}
	if exchange.cancelCalls.Load() != 1 {
		t.Errorf("cancel calls = %d", exchange.cancelCalls.Load())
	}
}
