package robinhood

import (
	"context"
	"fmt"
	"net/http"

	"github.com/ckartner/hoodbot/internal/domain"
)

// GetAccount returns the crypto trading account summary. It doubles as the
// cheapest authenticated probe: a successful call proves the key pair and
// API key are valid.
func (c *Client) GetAccount(ctx context.Context) (domain.Account, error) {
	raw, err := c.Do(ctx, http.MethodGet, "/api/v1/crypto/trading/accounts/", "")
	if err != nil {
		return domain.Account{}, fmt.Errorf("robinhood: get account: %w", err)
	}
	return decodeObject[domain.Account](raw)
}

// GetHoldings returns crypto holdings, optionally filtered by asset codes
// like "BTC", "ETH". With no codes, all holdings are returned.
func (c *Client) GetHoldings(ctx context.Context, assetCodes ...string) ([]domain.Holding, error) {
	path := "/api/v1/crypto/trading/holdings/" + queryParams("asset_code", assetCodes...)
	raw, err := c.Do(ctx, http.MethodGet, path, "")
	if err != nil {
		return nil, fmt.Errorf("robinhood: get holdings: %w", err)
	}
	return decodeResults[domain.Holding](raw, "holdings")
}
