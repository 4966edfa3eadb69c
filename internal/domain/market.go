package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Quote is a best-bid/ask snapshot for a single trading pair. Price is the
// raw mid/last price; the spread-inclusive fields are the effective prices a
// taker pays or receives. Order sizing must use AskInclusiveOfBuySpread,
// never Price.
type Quote struct {
	Symbol                   string          `json:"symbol"`
	Price                    decimal.Decimal `json:"price"`
	BidInclusiveOfSellSpread decimal.Decimal `json:"bid_inclusive_of_sell_spread"`
	AskInclusiveOfBuySpread  decimal.Decimal `json:"ask_inclusive_of_buy_spread"`
	Timestamp                time.Time       `json:"timestamp"`
}

// TradingPair holds the exchange-supplied order constraints for a symbol.
// Invariant (exchange-guaranteed): AssetIncrement > 0, MinOrderSize <= MaxOrderSize.
type TradingPair struct {
	Symbol         string          `json:"symbol"`
	AssetCode      string          `json:"asset_code"`
	QuoteCode      string          `json:"quote_code"`
	MinOrderSize   decimal.Decimal `json:"min_order_size"`
	MaxOrderSize   decimal.Decimal `json:"max_order_size"`
	AssetIncrement decimal.Decimal `json:"asset_increment"`
	QuoteIncrement decimal.Decimal `json:"quote_increment"`
	Status         string          `json:"status"`
}

// Holding is a single crypto position as reported by the exchange.
type Holding struct {
	AccountNumber               string          `json:"account_number"`
	AssetCode                   string          `json:"asset_code"`
	TotalQuantity               decimal.Decimal `json:"total_quantity"`
	QuantityAvailableForTrading decimal.Decimal `json:"quantity_available_for_trading"`
}

// Account is the crypto trading account summary.
type Account struct {
	AccountNumber       string          `json:"account_number"`
	Status              string          `json:"status"`
	BuyingPower         decimal.Decimal `json:"buying_power"`
	BuyingPowerCurrency string          `json:"buying_power_currency"`
}

// EstimatedPrice is one row of the estimated-price endpoint: the expected
// execution price for a given side and quantity.
type EstimatedPrice struct {
	Symbol   string          `json:"symbol"`
	Side     string          `json:"side"`
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// RateLimitStats is an informational snapshot of the transport's sliding
// window. RemainingCapacity is measured against the burst budget;
// MaxPerMinute is reported but not enforced.
type RateLimitStats struct {
	RequestsLastMinute int   `json:"requests_last_minute"`
	RemainingCapacity  int   `json:"remaining_capacity"`
	MaxBurst           int   `json:"max_burst"`
	MaxPerMinute       int   `json:"max_per_minute"`
	TotalRequests      int64 `json:"total_requests_made"`
}
