package app

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ckartner/hoodbot/internal/crypto"
	"github.com/ckartner/hoodbot/internal/domain"
)

// symbol returns the CLI symbol or the configured default.
func (a *App) symbol() string {
	if a.opts.Symbol != "" {
		return strings.ToUpper(a.opts.Symbol)
	}
	return a.cfg.Trading.DefaultSymbol
}

// dollars parses the -dollars flag.
func (a *App) dollars() (decimal.Decimal, error) {
	if a.opts.Dollars == "" {
		return decimal.Zero, errors.New("app: -dollars is required for this mode")
	}
	d, err := decimal.NewFromString(a.opts.Dollars)
	if err != nil {
		return decimal.Zero, fmt.Errorf("app: invalid -dollars value %q: %w", a.opts.Dollars, err)
	}
	return d, nil
}

// VerifyMode runs the layered connectivity checks and prints one line per
// check. It fails the process only when a check failed, so CI and cron can
// gate on the exit code.
func (a *App) VerifyMode(ctx context.Context, deps *Dependencies) error {
	fmt.Printf("Connectivity check against %s\n\n", deps.Client.BaseURL())

	checks, ok := deps.Account.VerifyConnectivity(ctx)
	for _, c := range checks {
		status := "ok"
		if !c.OK {
			status = "FAIL"
		}
		fmt.Printf("  %-12s %-4s %s (%s)\n", c.Name, status, c.Detail, c.Elapsed.Round(1e6))
	}

	stats, err := deps.Account.RateLimitStats(ctx)
	if err == nil {
		fmt.Printf("\nRate limit: %d/%d requests in the last minute, %d total\n",
			stats.RequestsLastMinute, stats.MaxBurst, stats.TotalRequests)
	}

	if !ok {
		return errors.New("app: connectivity verification failed")
	}
	fmt.Println("\nAll checks passed.")
	return nil
}

// AccountMode prints the trading account summary.
func (a *App) AccountMode(ctx context.Context, deps *Dependencies) error {
	account, err := deps.Account.GetAccount(ctx)
	if err != nil {
		return err
	}

	fmt.Printf("Account %s\n", account.AccountNumber)
	fmt.Printf("  status:        %s\n", account.Status)
	fmt.Printf("  buying power:  %s %s\n", account.BuyingPower.StringFixed(2), account.BuyingPowerCurrency)
	return nil
}

// HoldingsMode prints crypto holdings. With -symbol the value is treated as
// an asset code filter ("BTC", not "BTC-USD").
func (a *App) HoldingsMode(ctx context.Context, deps *Dependencies) error {
	var codes []string
	if a.opts.Symbol != "" {
		codes = append(codes, strings.ToUpper(strings.TrimSuffix(a.opts.Symbol, "-USD")))
	}

	holdings, err := deps.Account.GetHoldings(ctx, codes...)
	if err != nil {
		return err
	}
	if len(holdings) == 0 {
		fmt.Println("No holdings.")
		return nil
	}

	fmt.Printf("%-8s %-20s %-20s\n", "asset", "total", "tradable")
	for _, h := range holdings {
		fmt.Printf("%-8s %-20s %-20s\n", h.AssetCode, h.TotalQuantity, h.QuantityAvailableForTrading)
	}
	return nil
}

// QuoteMode prints the quote for one symbol, plus estimated execution prices
// when -quantities is given.
func (a *App) QuoteMode(ctx context.Context, deps *Dependencies) error {
	symbol := a.symbol()

	quote, err := deps.Prices.GetQuote(ctx, symbol)
	if err != nil {
		return err
	}

	fmt.Printf("%s\n", quote.Symbol)
	fmt.Printf("  price:  %s\n", quote.Price)
	fmt.Printf("  bid:    %s (inclusive of sell spread)\n", quote.BidInclusiveOfSellSpread)
	fmt.Printf("  ask:    %s (inclusive of buy spread)\n", quote.AskInclusiveOfBuySpread)

	if a.opts.Quantities != "" {
		side := a.opts.Side
		if side == "" {
			side = "both"
		}
		estimates, err := deps.Prices.GetEstimatedPrice(ctx, symbol, side, a.opts.Quantities)
		if err != nil {
			return err
		}
		fmt.Println("\nEstimated execution prices:")
		for _, e := range estimates {
			fmt.Printf("  %-4s qty %-12s -> %s\n", e.Side, e.Quantity, e.Price)
		}
	}
	return nil
}

// SizeMode shows what a dollar buy would translate to without touching the
// order endpoints. Invalid sizings are reported, not fatal.
func (a *App) SizeMode(ctx context.Context, deps *Dependencies) error {
	dollars, err := a.dollars()
	if err != nil {
		return err
	}

	outcome, err := deps.Orders.BuyByDollarAmount(ctx, a.symbol(), dollars, false)
	if apiErr, ok := domain.AsAPIError(err); ok && apiErr.Code == domain.ErrCodeInvalidOrderSize {
		printSizing(outcome.Sizing)
		fmt.Printf("\nNot placeable: %s\n", apiErr.Detail)
		return nil
	}
	if err != nil {
		return err
	}

	printSizing(outcome.Sizing)
	fmt.Println("\nPlaceable. Run with -mode buy -confirm to place it.")
	return nil
}

// BuyMode sizes a dollar buy and either previews it (default) or places it
// with -confirm. The configured per-order dollar cap is enforced before
// anything reaches the exchange.
func (a *App) BuyMode(ctx context.Context, deps *Dependencies) error {
	dollars, err := a.dollars()
	if err != nil {
		return err
	}

	maxPerOrder := decimal.NewFromFloat(a.cfg.Trading.MaxDollarsPerOrder)
	if dollars.GreaterThan(maxPerOrder) {
		return fmt.Errorf("app: %s exceeds the configured per-order cap of $%s", dollars, maxPerOrder)
	}

	outcome, err := deps.Orders.BuyByDollarAmount(ctx, a.symbol(), dollars, a.opts.Confirm)
	if apiErr, ok := domain.AsAPIError(err); ok && apiErr.Code == domain.ErrCodeInvalidOrderSize {
		printSizing(outcome.Sizing)
		fmt.Printf("\nRejected: %s\n", apiErr.Detail)
		return nil
	}
	if err != nil {
		return err
	}

	printSizing(outcome.Sizing)

	if outcome.Preview != nil {
		fmt.Printf("\nPREVIEW ONLY — %s\n", outcome.Preview.Message)
		return nil
	}

	order := outcome.Order
	fmt.Printf("\nOrder placed\n")
	fmt.Printf("  id:       %s\n", order.ID)
	fmt.Printf("  client:   %s\n", order.ClientOrderID)
	fmt.Printf("  state:    %s\n", order.State)
	return nil
}

// OrdersMode lists all orders for the account.
func (a *App) OrdersMode(ctx context.Context, deps *Dependencies) error {
	orders, err := deps.Orders.ListOrders(ctx)
	if err != nil {
		return err
	}
	if len(orders) == 0 {
		fmt.Println("No orders.")
		return nil
	}

	fmt.Printf("%-38s %-10s %-5s %-8s %-10s %s\n", "id", "symbol", "side", "type", "state", "filled")
	for _, o := range orders {
		fmt.Printf("%-38s %-10s %-5s %-8s %-10s %s\n",
			o.ID, o.Symbol, o.Side, o.Type, o.State, o.FilledAssetQuantity)
	}
	return nil
}

// OrderMode prints a single order by -order-id.
func (a *App) OrderMode(ctx context.Context, deps *Dependencies) error {
	if a.opts.OrderID == "" {
		return errors.New("app: -order-id is required for order mode")
	}

	order, err := deps.Orders.GetOrder(ctx, a.opts.OrderID)
	if err != nil {
		return err
	}

	fmt.Printf("Order %s\n", order.ID)
	fmt.Printf("  client:   %s\n", order.ClientOrderID)
	fmt.Printf("  symbol:   %s\n", order.Symbol)
	fmt.Printf("  side:     %s %s\n", order.Side, order.Type)
	fmt.Printf("  state:    %s\n", order.State)
	fmt.Printf("  filled:   %s\n", order.FilledAssetQuantity)
	if order.AveragePrice != nil {
		fmt.Printf("  avg px:   %s\n", order.AveragePrice)
	}
	fmt.Printf("  created:  %s\n", order.CreatedAt)
	return nil
}

// CancelMode requests cancellation of the order named by -order-id.
func (a *App) CancelMode(ctx context.Context, deps *Dependencies) error {
	if a.opts.OrderID == "" {
		return errors.New("app: -order-id is required for cancel mode")
	}

	if err := deps.Orders.CancelOrder(ctx, a.opts.OrderID); err != nil {
		return err
	}
	fmt.Printf("Cancellation requested for %s (the exchange confirms asynchronously).\n", a.opts.OrderID)
	return nil
}

// MonitorMode polls quotes for the configured symbols until interrupted.
func (a *App) MonitorMode(ctx context.Context, deps *Dependencies) error {
	symbols := a.cfg.Trading.MonitorSymbols
	if a.opts.Symbol != "" {
		symbols = strings.Split(strings.ToUpper(a.opts.Symbol), ",")
	}

	fmt.Printf("Monitoring %s every %s (ctrl-c to stop)\n",
		strings.Join(symbols, ", "), a.cfg.Trading.MonitorInterval.Duration)

	return deps.Prices.Monitor(ctx, symbols, a.cfg.Trading.MonitorInterval.Duration, func(q domain.Quote) {
		fmt.Printf("%-10s price %-14s bid %-14s ask %s\n",
			q.Symbol, q.Price, q.BidInclusiveOfSellSpread, q.AskInclusiveOfBuySpread)
	})
}

// GenkeyMode generates a fresh Ed25519 keypair and prints it. The public key
// is what gets registered in the Robinhood API console; the seed must be
// stored securely (ideally encrypted with encrypt-key mode).
func (a *App) GenkeyMode() error {
	seed, public, err := crypto.GenerateKeypair()
	if err != nil {
		return err
	}

	fmt.Println("Generated Ed25519 keypair.")
	fmt.Printf("\n  private key (base64 seed):  %s\n", seed)
	fmt.Printf("  public key  (register it):  %s\n", public)
	fmt.Println("\nKeep the private key secret. Consider encrypting it:")
	fmt.Println("  RH_BASE64_PRIVATE_KEY=<seed> hoodbot -mode encrypt-key -key-out hoodbot_key.enc.json")
	return nil
}

// EncryptKeyMode encrypts the configured seed with the configured password
// and writes the JSON blob to the -key-out path.
func (a *App) EncryptKeyMode() error {
	if a.cfg.Robinhood.Base64PrivateKey == "" {
		return errors.New("app: encrypt-key needs a seed (set RH_BASE64_PRIVATE_KEY or robinhood.base64_private_key)")
	}
	if a.cfg.Robinhood.KeyPassword == "" {
		return errors.New("app: encrypt-key needs a password (set robinhood.key_password)")
	}

	out := a.opts.KeyOutPath
	if out == "" {
		out = "hoodbot_key.enc.json"
	}

	blob, err := crypto.EncryptSeed(a.cfg.Robinhood.Base64PrivateKey, a.cfg.Robinhood.KeyPassword)
	if err != nil {
		return err
	}
	if err := os.WriteFile(out, blob, 0o600); err != nil {
		return fmt.Errorf("app: write encrypted key: %w", err)
	}

	fmt.Printf("Encrypted key written to %s\n", out)
	fmt.Println("Point robinhood.encrypted_key_path at it and drop the raw seed from your environment.")
	return nil
}

func printSizing(s domain.SizingResult) {
	fmt.Printf("Sizing %s for $%s\n", s.Symbol, s.DollarsRequested)
	fmt.Printf("  current price:  %s\n", s.CurrentPrice)
	fmt.Printf("  buy price:      %s (ask inclusive of buy spread)\n", s.BuyPrice)
	fmt.Printf("  quantity:       %s\n", s.Quantity)
	fmt.Printf("  actual cost:    $%s\n", s.ActualCost)
	fmt.Printf("  allowed range:  %s .. %s\n", s.MinOrderSize, s.MaxOrderSize)
}
