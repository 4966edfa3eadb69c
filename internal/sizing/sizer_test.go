package sizing

import (
	"context"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/ckartner/hoodbot/internal/domain"
)

type fakeMarket struct {
	quote domain.Quote
	pair  domain.TradingPair
}

func (f *fakeMarket) GetQuote(context.Context, string) (domain.Quote, error) {
	return f.quote, nil
}

func (f *fakeMarket) GetTradingPair(context.Context, string) (domain.TradingPair, error) {
	return f.pair, nil
}

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func solMarket() *fakeMarket {
	return &fakeMarket{
		quote: domain.Quote{
			Symbol:                   "SOL-USD",
			Price:                    dec("150.00"),
			BidInclusiveOfSellSpread: dec("149.90"),
			AskInclusiveOfBuySpread:  dec("150.10"),
		},
		pair: domain.TradingPair{
			Symbol:         "SOL-USD",
			MinOrderSize:   dec("0.01"),
			MaxOrderSize:   dec("10"),
			AssetIncrement: dec("0.01"),
		},
	}
}

func TestRoundToIncrement(t *testing.T) {
	tests := []struct {
		x, inc, want string
	}{
		{"0.0333", "0.01", "0.03"},
		{"0.0305", "0.001", "0.031"}, // halfway rounds up
		{"0.035", "0.01", "0.04"},
		{"1.2345", "0.0001", "1.2345"},
		{"7", "1", "7"},
		{"0.00049", "0.001", "0"},
		{"123.456", "0", "123.456"}, // no increment, unchanged
	}
	for _, tt := range tests {
		got := RoundToIncrement(dec(tt.x), dec(tt.inc))
		if !got.Equal(dec(tt.want)) {
			t.Errorf("RoundToIncrement(%s, %s) = %s, want %s", tt.x, tt.inc, got, tt.want)
		}
	}
}

func TestRoundToIncrementIdempotent(t *testing.T) {
	inc := dec("0.001")
	once := RoundToIncrement(dec("0.123456"), inc)
	twice := RoundToIncrement(once, inc)
	if !once.Equal(twice) {
		t.Errorf("rounding not idempotent: %s then %s", once, twice)
	}
}

func TestCalculateQuantityFromDollars(t *testing.T) {
	s := NewSizer(solMarket(), nil)

	result, err := s.CalculateQuantityFromDollars(context.Background(), "SOL-USD", dec("5"))
	if err != nil {
		t.Fatalf("CalculateQuantityFromDollars: %v", err)
	}

	if !result.Quantity.Equal(dec("0.03")) {
		t.Errorf("quantity = %s, want 0.03", result.Quantity)
	}
	if !result.BuyPrice.Equal(dec("150.10")) {
		t.Errorf("buy price = %s, want 150.10 (ask, not mid)", result.BuyPrice)
	}
	if !result.ActualCost.Equal(dec("4.503")) {
		t.Errorf("actual cost = %s, want 4.503", result.ActualCost)
	}
	if !result.IsValid {
		t.Errorf("result invalid: %s", result.ValidationMessage)
	}
}

func TestQuantityAtMinimumIsValid(t *testing.T) {
	m := solMarket()
	m.quote.AskInclusiveOfBuySpread = dec("100")
	s := NewSizer(m, nil)

	// $1 at $100 is exactly the 0.01 minimum.
	result, err := s.CalculateQuantityFromDollars(context.Background(), "SOL-USD", dec("1"))
	if err != nil {
		t.Fatalf("CalculateQuantityFromDollars: %v", err)
	}
	if !result.Quantity.Equal(dec("0.01")) {
		t.Fatalf("quantity = %s, want 0.01", result.Quantity)
	}
	if !result.IsValid {
		t.Errorf("boundary quantity rejected: %s", result.ValidationMessage)
	}
}

func TestQuantityBelowMinimumIsInvalid(t *testing.T) {
	s := NewSizer(solMarket(), nil)

	result, err := s.CalculateQuantityFromDollars(context.Background(), "SOL-USD", dec("0.50"))
	if err != nil {
		t.Fatalf("CalculateQuantityFromDollars: %v", err)
	}
	if result.IsValid {
		t.Fatal("expected invalid result")
	}
	if !strings.Contains(result.ValidationMessage, "minimum order size") {
		t.Errorf("message = %q", result.ValidationMessage)
	}
	// Computed numbers still populated for display.
	if result.Quantity.IsZero() && result.BuyPrice.IsZero() {
		t.Error("invalid result should keep the computed numbers")
	}
}

func TestQuantityAboveMaximumIsInvalid(t *testing.T) {
	s := NewSizer(solMarket(), nil)

	result, err := s.CalculateQuantityFromDollars(context.Background(), "SOL-USD", dec("2000"))
	if err != nil {
		t.Fatalf("CalculateQuantityFromDollars: %v", err)
	}
	if result.IsValid {
		t.Fatal("expected invalid result")
	}
	if !strings.Contains(result.ValidationMessage, "maximum order size") {
		t.Errorf("message = %q", result.ValidationMessage)
	}
}

func TestNonPositiveDollarsRejected(t *testing.T) {
	s := NewSizer(solMarket(), nil)

	for _, amount := range []string{"0", "-5"} {
		if _, err := s.CalculateQuantityFromDollars(context.Background(), "SOL-USD", dec(amount)); err == nil {
			t.Errorf("dollars=%s: expected error", amount)
		}
	}
}
