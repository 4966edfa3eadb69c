// Package sizing converts dollar amounts into asset quantities that satisfy
// the exchange's per-pair constraints.
package sizing

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/ckartner/hoodbot/internal/domain"
)

// MarketData is the slice of the exchange client the sizer needs.
type MarketData interface {
	GetQuote(ctx context.Context, symbol string) (domain.Quote, error)
	GetTradingPair(ctx context.Context, symbol string) (domain.TradingPair, error)
}

// Sizer computes order quantities from dollar amounts. Pair constraints are
// fetched fresh on every call; increments and limits can change server-side.
type Sizer struct {
	market MarketData
	logger *slog.Logger
}

// NewSizer creates a Sizer over the given market data source.
func NewSizer(market MarketData, logger *slog.Logger) *Sizer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sizer{
		market: market,
		logger: logger.With(slog.String("component", "sizing")),
	}
}

// CalculateQuantityFromDollars sizes a buy of the given dollar amount.
//
// The quantity is derived from the ask inclusive of buy spread, which is the
// price a buyer actually pays, then rounded to the pair's asset increment.
// The result always carries the computed numbers even when invalid, so
// callers can show the user why an order was rejected.
func (s *Sizer) CalculateQuantityFromDollars(ctx context.Context, symbol string, dollars decimal.Decimal) (domain.SizingResult, error) {
	if dollars.LessThanOrEqual(decimal.Zero) {
		return domain.SizingResult{}, fmt.Errorf("sizing: dollar amount must be positive, got %s", dollars)
	}

	pair, err := s.market.GetTradingPair(ctx, symbol)
	if err != nil {
		return domain.SizingResult{}, fmt.Errorf("sizing: %w", err)
	}

	quote, err := s.market.GetQuote(ctx, symbol)
	if err != nil {
		return domain.SizingResult{}, fmt.Errorf("sizing: %w", err)
	}

	buyPrice := quote.AskInclusiveOfBuySpread
	if buyPrice.LessThanOrEqual(decimal.Zero) {
		return domain.SizingResult{}, fmt.Errorf("sizing: non-positive buy price %s for %s", buyPrice, symbol)
	}

	quantity := RoundToIncrement(dollars.Div(buyPrice), pair.AssetIncrement)

	result := domain.SizingResult{
		Symbol:           symbol,
		DollarsRequested: dollars,
		Quantity:         quantity,
		CurrentPrice:     quote.Price,
		BuyPrice:         buyPrice,
		ActualCost:       quantity.Mul(buyPrice),
		MinOrderSize:     pair.MinOrderSize,
		MaxOrderSize:     pair.MaxOrderSize,
	}

	switch {
	case quantity.LessThan(pair.MinOrderSize):
		result.ValidationMessage = fmt.Sprintf(
			"quantity %s is below the minimum order size %s for %s",
			quantity, pair.MinOrderSize, symbol)
	case pair.MaxOrderSize.GreaterThan(decimal.Zero) && quantity.GreaterThan(pair.MaxOrderSize):
		result.ValidationMessage = fmt.Sprintf(
			"quantity %s is above the maximum order size %s for %s",
			quantity, pair.MaxOrderSize, symbol)
	default:
		result.IsValid = true
	}

	s.logger.DebugContext(ctx, "sized order",
		slog.String("symbol", symbol),
		slog.String("dollars", dollars.String()),
		slog.String("quantity", quantity.String()),
		slog.Bool("valid", result.IsValid),
	)

	return result, nil
}

// RoundToIncrement rounds x to the nearest multiple of inc. Halfway cases
// round up, matching the exchange's own rounding of displayed quantities.
// A non-positive increment returns x unchanged.
func RoundToIncrement(x, inc decimal.Decimal) decimal.Decimal {
	if inc.LessThanOrEqual(decimal.Zero) {
		return x
	}
	return x.Div(inc).Round(0).Mul(inc)
}
