package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderSide indicates whether this is a buy or sell.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "buy"
	OrderSideSell OrderSide = "sell"
)

// OrderType selects the exchange order type and determines which
// *_order_config key is sent on the wire.
type OrderType string

const (
	OrderTypeMarket    OrderType = "market"
	OrderTypeLimit     OrderType = "limit"
	OrderTypeStopLoss  OrderType = "stop_loss"
	OrderTypeStopLimit OrderType = "stop_limit"
)

// MarketOrderConfig carries the asset quantity for a market order. The
// quantity is a decimal string because the exchange rejects float-formatted
// quantities with trailing precision noise.
type MarketOrderConfig struct {
	AssetQuantity string `json:"asset_quantity"`
}

// LimitOrderConfig carries the quantity and limit price for a limit order.
type LimitOrderConfig struct {
	AssetQuantity string `json:"asset_quantity"`
	LimitPrice    string `json:"limit_price"`
	TimeInForce   string `json:"time_in_force,omitempty"`
}

// OrderRequest is the POST body for order placement. Field order is fixed so
// that one json.Marshal produces the exact bytes that are both signed and
// sent; re-serializing elsewhere would break the signature.
type OrderRequest struct {
	ClientOrderID     string             `json:"client_order_id"`
	Side              OrderSide          `json:"side"`
	Symbol            string             `json:"symbol"`
	Type              OrderType          `json:"type"`
	MarketOrderConfig *MarketOrderConfig `json:"market_order_config,omitempty"`
	LimitOrderConfig  *LimitOrderConfig  `json:"limit_order_config,omitempty"`
}

// Order is the exchange's view of an order. The exchange is authoritative
// for order state; this client does not track lifecycle beyond single
// response payloads.
type Order struct {
	ID                  string           `json:"id"`
	AccountNumber       string           `json:"account_number"`
	ClientOrderID       string           `json:"client_order_id"`
	Symbol              string           `json:"symbol"`
	Side                OrderSide        `json:"side"`
	Type                OrderType        `json:"type"`
	State               string           `json:"state"`
	AveragePrice        *decimal.Decimal `json:"average_price"`
	FilledAssetQuantity decimal.Decimal  `json:"filled_asset_quantity"`
	CreatedAt           time.Time        `json:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at"`
}
