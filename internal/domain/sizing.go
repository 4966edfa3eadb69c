package domain

import "github.com/shopspring/decimal"

// SizingResult is the outcome of converting a dollar spend into an
// exchange-compliant asset quantity. It is created once per sizing call and
// never mutated afterwards.
type SizingResult struct {
	Symbol            string
	DollarsRequested  decimal.Decimal
	Quantity          decimal.Decimal // rounded to the pair's asset increment
	CurrentPrice      decimal.Decimal
	BuyPrice          decimal.Decimal // ask inclusive of buy spread
	ActualCost        decimal.Decimal
	MinOrderSize      decimal.Decimal
	MaxOrderSize      decimal.Decimal
	IsValid           bool
	ValidationMessage string
}

// OrderPreview is returned by the dollar-amount buy path when confirm is
// false. Nothing is sent to the exchange for a preview.
type OrderPreview struct {
	Symbol        string
	Side          OrderSide
	Type          OrderType
	Quantity      decimal.Decimal
	EstimatedCost decimal.Decimal
	CurrentPrice  decimal.Decimal
	Message       string
}

// BuyOutcome bundles the sizing calculation with either a preview or the
// placed order. Exactly one of Preview/Order is set.
type BuyOutcome struct {
	Sizing  SizingResult
	Preview *OrderPreview
	Order   *Order
}
