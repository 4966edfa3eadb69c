// Package app provides the top-level application lifecycle for the trading
// client. It wires dependencies (signer, transport, limiter, journal,
// notifications, services) and dispatches to the configured run mode.
package app

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/ckartner/hoodbot/internal/config"
)

// Options carries the per-invocation parameters that come from CLI flags
// rather than the config file.
type Options struct {
	Symbol     string
	Dollars    string
	Confirm    bool
	OrderID    string
	Side       string
	Quantities string
	// KeyOutPath is where encrypt-key mode writes the encrypted key file.
	KeyOutPath string
}

// App is the root application object. It owns the configuration, logger, and
// a list of cleanup functions that are called in reverse order on shutdown.
type App struct {
	cfg     *config.Config
	opts    Options
	logger  *slog.Logger
	closers []func()
}

// New creates a new App from the given configuration, CLI options, and logger.
func New(cfg *config.Config, opts Options, logger *slog.Logger) *App {
	return &App{
		cfg:    cfg,
		opts:   opts,
		logger: logger.With(slog.String("component", "app")),
	}
}

// Run is the main entry point. Key-management modes run offline; every other
// mode wires the full dependency graph first. On return all registered
// cleanup functions run via Close.
func (a *App) Run(ctx context.Context) error {
	mode := strings.ToLower(a.cfg.Mode)

	a.logger.InfoContext(ctx, "starting",
		slog.String("mode", mode),
		slog.String("log_level", a.cfg.LogLevel),
	)

	// Offline modes never need credentials or network dependencies.
	switch mode {
	case "genkey":
		return a.GenkeyMode()
	case "encrypt-key":
		return a.EncryptKeyMode()
	}

	deps, cleanup, err := Wire(ctx, a.cfg)
	if err != nil {
		return fmt.Errorf("app: wire dependencies: %w", err)
	}
	a.closers = append(a.closers, cleanup)

	switch mode {
	case "verify":
		return a.VerifyMode(ctx, deps)
	case "account":
		return a.AccountMode(ctx, deps)
	case "holdings":
		return a.HoldingsMode(ctx, deps)
	case "quote":
		return a.QuoteMode(ctx, deps)
	case "size":
		return a.SizeMode(ctx, deps)
	case "buy":
		return a.BuyMode(ctx, deps)
	case "orders":
		return a.OrdersMode(ctx, deps)
	case "order":
		return a.OrderMode(ctx, deps)
	case "cancel":
		return a.CancelMode(ctx, deps)
	case "monitor":
		return a.MonitorMode(ctx, deps)
	default:
		return fmt.Errorf("app: unsupported mode %q", a.cfg.Mode)
	}
}

// Close tears down all resources in reverse registration order. It is safe to
// call multiple times; subsequent calls are no-ops.
func (a *App) Close() {
	a.logger.Info("shutting down")
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}
