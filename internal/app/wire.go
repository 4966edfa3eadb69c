package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/ckartner/hoodbot/internal/cache/redis"
	"github.com/ckartner/hoodbot/internal/config"
	"github.com/ckartner/hoodbot/internal/crypto"
	"github.com/ckartner/hoodbot/internal/domain"
	"github.com/ckartner/hoodbot/internal/notify"
	"github.com/ckartner/hoodbot/internal/robinhood"
	"github.com/ckartner/hoodbot/internal/service"
	"github.com/ckartner/hoodbot/internal/sizing"
	"github.com/ckartner/hoodbot/internal/store/postgres"
)

// Dependencies bundles everything the run modes need. It is constructed by
// Wire and torn down by the returned cleanup function.
type Dependencies struct {
	Client *robinhood.Client

	Orders  *service.OrderService
	Prices  *service.PriceService
	Account *service.AccountService

	// Journal is non-nil only when the audit journal is enabled; JournalStore
	// additionally exposes Recent for operator inspection.
	Journal      domain.AuditJournal
	JournalStore *postgres.JournalStore

	Notifier *notify.Dispatcher
}

// Wire constructs all concrete dependencies from the configuration and
// returns them together with a cleanup function for shutdown.
func Wire(ctx context.Context, cfg *config.Config) (*Dependencies, func(), error) {
	logger := slog.Default()

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	deps := &Dependencies{}

	// --- Signing credentials ---
	seed, err := crypto.LoadSeed(crypto.KeyConfig{
		RawSeedB64:       cfg.Robinhood.Base64PrivateKey,
		EncryptedKeyPath: cfg.Robinhood.EncryptedKeyPath,
		KeyPassword:      cfg.Robinhood.KeyPassword,
	})
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: load key: %w", err)
	}
	signer, err := crypto.NewSigner(cfg.Robinhood.ApiKey, seed)
	if err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("wire: signer: %w", err)
	}

	// --- Rate limiter ---
	// A shared Redis window keeps several processes under one API key budget.
	// With Redis disabled, the client falls back to its in-process window.
	var limiter domain.Limiter
	if cfg.Redis.Enabled {
		redisClient, err := redis.New(ctx, redis.ClientConfig{
			Addr:       cfg.Redis.Addr,
			Password:   cfg.Redis.Password,
			DB:         cfg.Redis.DB,
			PoolSize:   cfg.Redis.PoolSize,
			MaxRetries: cfg.Redis.MaxRetries,
			TLSEnabled: cfg.Redis.TLSEnabled,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: redis: %w", err)
		}
		closers = append(closers, func() { _ = redisClient.Close() })
		limiter = redis.NewRateLimiter(redisClient, cfg.Transport.MaxBurst, cfg.Transport.MaxPerMinute)
	}

	// --- Exchange client ---
	deps.Client = robinhood.NewClient(
		cfg.Robinhood.BaseURL,
		signer,
		robinhood.TransportPolicy{
			MaxRetries:   cfg.Transport.MaxRetries,
			RetryDelay:   cfg.Transport.RetryDelay.Duration,
			MaxBurst:     cfg.Transport.MaxBurst,
			MaxPerMinute: cfg.Transport.MaxPerMinute,
			Timeout:      cfg.Transport.Timeout.Duration,
		},
		limiter,
		logger,
	)

	// --- Audit journal ---
	if cfg.Journal.Enabled {
		pgClient, err := postgres.New(ctx, postgres.ClientConfig{
			DSN:      cfg.Journal.DSN,
			Host:     cfg.Journal.Host,
			Port:     cfg.Journal.Port,
			Database: cfg.Journal.Database,
			User:     cfg.Journal.User,
			Password: cfg.Journal.Password,
			SSLMode:  cfg.Journal.SSLMode,
			MaxConns: cfg.Journal.PoolMaxConns,
			MinConns: cfg.Journal.PoolMinConns,
		})
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("wire: postgres: %w", err)
		}
		closers = append(closers, pgClient.Close)

		deps.JournalStore = postgres.NewJournalStore(pgClient.Pool())
		deps.Journal = deps.JournalStore
	}

	// --- Notifications ---
	var senders []notify.Sender
	if cfg.Notify.TelegramToken != "" && cfg.Notify.TelegramChatID != "" {
		senders = append(senders, notify.NewTelegramSender(
			cfg.Notify.TelegramToken,
			cfg.Notify.TelegramChatID,
		))
	}
	if cfg.Notify.DiscordWebhookURL != "" {
		senders = append(senders, notify.NewDiscordSender(cfg.Notify.DiscordWebhookURL))
	}
	deps.Notifier = notify.NewDispatcher(senders, logger)

	// --- Services ---
	sizer := sizing.NewSizer(deps.Client, logger)
	deps.Orders = service.NewOrderService(deps.Client, sizer, deps.Journal, deps.Notifier, logger)
	deps.Prices = service.NewPriceService(deps.Client, logger)
	deps.Account = service.NewAccountService(deps.Client, deps.Client, logger)

	return deps, cleanup, nil
}
