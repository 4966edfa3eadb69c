package robinhood

import (
	"context"
	"fmt"
	"net/http"
	"net/url"

	"github.com/ckartner/hoodbot/internal/domain"
)

// GetTradingPairs returns trading-pair constraints, optionally filtered by
// symbols like "BTC-USD". With no symbols, all pairs are returned.
func (c *Client) GetTradingPairs(ctx context.Context, symbols ...string) ([]domain.TradingPair, error) {
	path := "/api/v1/crypto/trading/trading_pairs/" + queryParams("symbol", symbols...)
	raw, err := c.Do(ctx, http.MethodGet, path, "")
	if err != nil {
		return nil, fmt.Errorf("robinhood: get trading pairs: %w", err)
	}
	return decodeResults[domain.TradingPair](raw, "trading pair info")
}

// GetTradingPair returns the constraints for a single symbol. Constraints
// are fetched fresh per call; increments and limits can change server-side.
func (c *Client) GetTradingPair(ctx context.Context, symbol string) (domain.TradingPair, error) {
	path := "/api/v1/crypto/trading/trading_pairs/" + queryParams("symbol", symbol)
	raw, err := c.Do(ctx, http.MethodGet, path, "")
	if err != nil {
		return domain.TradingPair{}, fmt.Errorf("robinhood: get trading pair %s: %w", symbol, err)
	}
	return decodeFirstResult[domain.TradingPair](raw, "trading pair info")
}

// GetBestBidAsk returns best bid/ask quotes, optionally filtered by symbols.
func (c *Client) GetBestBidAsk(ctx context.Context, symbols ...string) ([]domain.Quote, error) {
	path := "/api/v1/crypto/marketdata/best_bid_ask/" + queryParams("symbol", symbols...)
	raw, err := c.Do(ctx, http.MethodGet, path, "")
	if err != nil {
		return nil, fmt.Errorf("robinhood: get best bid ask: %w", err)
	}
	return decodeResults[domain.Quote](raw, "price data")
}

// GetQuote returns the quote for a single symbol.
func (c *Client) GetQuote(ctx context.Context, symbol string) (domain.Quote, error) {
	path := "/api/v1/crypto/marketdata/best_bid_ask/" + queryParams("symbol", symbol)
	raw, err := c.Do(ctx, http.MethodGet, path, "")
	if err != nil {
		return domain.Quote{}, fmt.Errorf("robinhood: get quote %s: %w", symbol, err)
	}
	return decodeFirstResult[domain.Quote](raw, "price data")
}

// GetEstimatedPrice returns estimated execution prices for a symbol.
// side is "bid" (selling), "ask" (buying), or "both"; quantities is a
// comma-separated list like "0.1,1,1.999".
func (c *Client) GetEstimatedPrice(ctx context.Context, symbol, side, quantities string) ([]domain.EstimatedPrice, error) {
	path := fmt.Sprintf("/api/v1/crypto/marketdata/estimated_price/?symbol=%s&side=%s&quantity=%s",
		url.QueryEscape(symbol), url.QueryEscape(side), url.QueryEscape(quantities))
	raw, err := c.Do(ctx, http.MethodGet, path, "")
	if err != nil {
		return nil, fmt.Errorf("robinhood: get estimated price %s: %w", symbol, err)
	}
	return decodeResults[domain.EstimatedPrice](raw, "estimated price")
}
