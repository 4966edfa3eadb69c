// Command hoodbot is a CLI for trading crypto through the Robinhood API: it
// signs requests with the account's Ed25519 key, sizes dollar-denominated
// buys, and previews orders before placing them.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/ckartner/hoodbot/internal/app"
	"github.com/ckartner/hoodbot/internal/config"
)

func main() {
	configPath := flag.String("config", "", "path to configuration file (optional)")
	mode := flag.String("mode", "", "run mode (verify, account, holdings, quote, size, buy, orders, order, cancel, monitor, genkey, encrypt-key)")
	symbol := flag.String("symbol", "", "trading pair symbol, e.g. BTC-USD")
	dollars := flag.String("dollars", "", "dollar amount for size/buy modes")
	confirm := flag.Bool("confirm", false, "actually place the order in buy mode (default is preview)")
	orderID := flag.String("order-id", "", "exchange order id for order/cancel modes")
	side := flag.String("side", "", "estimated-price side: bid, ask, or both")
	quantities := flag.String("quantities", "", "comma-separated quantities for estimated prices, e.g. 0.1,1")
	keyOut := flag.String("key-out", "", "output path for encrypt-key mode")
	flag.Parse()

	// Bootstrap logger; replaced once the configured level is known.
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Error("failed to load config",
			slog.String("path", *configPath),
			slog.String("error", err.Error()),
		)
		os.Exit(1)
	}

	// The -mode flag wins over the config file.
	if *mode != "" {
		cfg.Mode = *mode
	}

	var level slog.Level
	switch cfg.LogLevel {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}
	logger = slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}

	application := app.New(cfg, app.Options{
		Symbol:     *symbol,
		Dollars:    *dollars,
		Confirm:    *confirm,
		OrderID:    *orderID,
		Side:       *side,
		Quantities: *quantities,
		KeyOutPath: *keyOut,
	}, logger)
	defer application.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := application.Run(ctx); err != nil {
		// context.Canceled is expected on clean shutdown (monitor mode).
		if errors.Is(err, context.Canceled) {
			return
		}
		logger.Error("exited with error", slog.String("error", err.Error()))
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}
