package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/ckartner/hoodbot/internal/domain"
)

// MarketSource is the market-data slice of the exchange client.
type MarketSource interface {
	GetQuote(ctx context.Context, symbol string) (domain.Quote, error)
	GetBestBidAsk(ctx context.Context, symbols ...string) ([]domain.Quote, error)
	GetEstimatedPrice(ctx context.Context, symbol, side, quantities string) ([]domain.EstimatedPrice, error)
	GetTradingPair(ctx context.Context, symbol string) (domain.TradingPair, error)
}

// PriceService wraps market-data lookups and the polling monitor.
type PriceService struct {
	market MarketSource
	logger *slog.Logger
}

// NewPriceService creates a PriceService over the given market data source.
func NewPriceService(market MarketSource, logger *slog.Logger) *PriceService {
	if logger == nil {
		logger = slog.Default()
	}
	return &PriceService{
		market: market,
		logger: logger.With(slog.String("component", "price_service")),
	}
}

// GetQuote returns the current quote for a symbol.
func (s *PriceService) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	quote, err := s.market.GetQuote(ctx, symbol)
	if err != nil {
		return domain.Quote{}, fmt.Errorf("price_service: get quote %q: %w", symbol, err)
	}
	return quote, nil
}

// GetQuotes returns quotes for several symbols in one call.
func (s *PriceService) GetQuotes(ctx context.Context, symbols ...string) ([]domain.Quote, error) {
	quotes, err := s.market.GetBestBidAsk(ctx, symbols...)
	if err != nil {
		return nil, fmt.Errorf("price_service: get quotes: %w", err)
	}
	return quotes, nil
}

// GetEstimatedPrice returns execution price estimates for the given
// quantities. side is "bid", "ask", or "both".
func (s *PriceService) GetEstimatedPrice(ctx context.Context, symbol, side, quantities string) ([]domain.EstimatedPrice, error) {
	estimates, err := s.market.GetEstimatedPrice(ctx, symbol, side, quantities)
	if err != nil {
		return nil, fmt.Errorf("price_service: estimated price %q: %w", symbol, err)
	}
	return estimates, nil
}

// QuoteHandler receives each quote observed by Monitor.
type QuoteHandler func(domain.Quote)

// Monitor polls quotes for each symbol on the given interval until the
// context is cancelled, invoking handler per observation. Each symbol polls
// on its own goroutine so one slow symbol never delays the others. A poll
// failure is logged and the loop keeps going; only cancellation ends it.
func (s *PriceService) Monitor(ctx context.Context, symbols []string, interval time.Duration, handler QuoteHandler) error {
	if len(symbols) == 0 {
		return errors.New("price_service: monitor needs at least one symbol")
	}
	if interval <= 0 {
		interval = 5 * time.Second
	}

	g, ctx := errgroup.WithContext(ctx)
	for _, symbol := range symbols {
		symbol := symbol
		g.Go(func() error {
			return s.pollSymbol(ctx, symbol, interval, handler)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("price_service: monitor: %w", err)
	}
	return nil
}

func (s *PriceService) pollSymbol(ctx context.Context, symbol string, interval time.Duration, handler QuoteHandler) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		quote, err := s.market.GetQuote(ctx, symbol)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			s.logger.WarnContext(ctx, "price_service: poll failed",
				slog.String("symbol", symbol),
				slog.String("error", err.Error()),
			)
		} else {
			s.logger.InfoContext(ctx, "price_service: quote",
				slog.String("symbol", quote.Symbol),
				slog.String("price", quote.Price.String()),
				slog.String("bid", quote.BidInclusiveOfSellSpread.String()),
				slog.String("ask", quote.AskInclusiveOfBuySpread.String()),
			)
			if handler != nil {
				handler(quote)
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}
