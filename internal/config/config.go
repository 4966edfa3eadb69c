// Package config defines the top-level configuration for the trading client
// and provides validation helpers.
package config

import (
	"fmt"
	"strings"
	"time"
)

// Config is the root configuration structure. Fields are populated from a TOML
// file and then optionally overridden by HOODBOT_* environment variables.
type Config struct {
	Robinhood RobinhoodConfig `toml:"robinhood"`
	Transport TransportConfig `toml:"transport"`
	Redis     RedisConfig     `toml:"redis"`
	Journal   JournalConfig   `toml:"journal"`
	Notify    NotifyConfig    `toml:"notify"`
	Trading   TradingConfig   `toml:"trading"`
	Mode      string          `toml:"mode"`
	LogLevel  string          `toml:"log_level"`
}

// RobinhoodConfig holds the API credentials and endpoint.
type RobinhoodConfig struct {
	ApiKey           string `toml:"api_key"`
	Base64PrivateKey string `toml:"base64_private_key"`
	EncryptedKeyPath string `toml:"encrypted_key_path"`
	KeyPassword      string `toml:"key_password"`
	BaseURL          string `toml:"base_url"`
}

// TransportConfig holds the retry and rate-limit parameters of the signed
// transport.
type TransportConfig struct {
	MaxRetries   int      `toml:"max_retries"`
	RetryDelay   duration `toml:"retry_delay"`
	MaxBurst     int      `toml:"max_burst"`
	MaxPerMinute int      `toml:"max_per_minute"`
	Timeout      duration `toml:"timeout"`
}

// RedisConfig holds Redis connection parameters for the optional shared
// rate limiter. When disabled, an in-process limiter is used instead.
type RedisConfig struct {
	Enabled    bool   `toml:"enabled"`
	Addr       string `toml:"addr"`
	Password   string `toml:"password"`
	DB         int    `toml:"db"`
	PoolSize   int    `toml:"pool_size"`
	MaxRetries int    `toml:"max_retries"`
	TLSEnabled bool   `toml:"tls_enabled"`
}

// JournalConfig holds PostgreSQL connection parameters for the optional
// append-only audit journal.
type JournalConfig struct {
	Enabled      bool   `toml:"enabled"`
	DSN          string `toml:"dsn"`
	Host         string `toml:"host"`
	Port         int    `toml:"port"`
	Database     string `toml:"database"`
	User         string `toml:"user"`
	Password     string `toml:"password"`
	SSLMode      string `toml:"ssl_mode"`
	PoolMaxConns int    `toml:"pool_max_conns"`
	PoolMinConns int    `toml:"pool_min_conns"`
}

// NotifyConfig holds notification channel credentials.
type NotifyConfig struct {
	TelegramToken     string `toml:"telegram_token"`
	TelegramChatID    string `toml:"telegram_chat_id"`
	DiscordWebhookURL string `toml:"discord_webhook_url"`
}

// TradingConfig holds defaults for the order and monitor modes.
type TradingConfig struct {
	DefaultSymbol      string   `toml:"default_symbol"`
	MonitorSymbols     []string `toml:"monitor_symbols"`
	MonitorInterval    duration `toml:"monitor_interval"`
	MaxDollarsPerOrder float64  `toml:"max_dollars_per_order"`
}

// duration is a wrapper around time.Duration that supports TOML string
// decoding (e.g. "5m", "30s").
type duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler so the TOML decoder can
// parse duration strings like "5m" or "30s".
func (d *duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// MarshalText implements encoding.TextMarshaler for round-trip encoding.
func (d duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Defaults returns a Config populated with reasonable default values.
// These match the values in config.example.toml.
func Defaults() Config {
	return Config{
		Robinhood: RobinhoodConfig{
			BaseURL: "https://trading.robinhood.com",
		},
		Transport: TransportConfig{
			MaxRetries:   3,
			RetryDelay:   duration{time.Second},
			MaxBurst:     300,
			MaxPerMinute: 100,
			Timeout:      duration{10 * time.Second},
		},
		Redis: RedisConfig{
			Enabled:    false,
			Addr:       "localhost:6379",
			DB:         0,
			PoolSize:   20,
			MaxRetries: 3,
			TLSEnabled: false,
		},
		Journal: JournalConfig{
			Enabled:      false,
			Host:         "localhost",
			Port:         5432,
			Database:     "hoodbot",
			User:         "postgres",
			SSLMode:      "disable",
			PoolMaxConns: 5,
			PoolMinConns: 1,
		},
		Trading: TradingConfig{
			DefaultSymbol:      "BTC-USD",
			MonitorSymbols:     []string{"BTC-USD", "ETH-USD"},
			MonitorInterval:    duration{5 * time.Second},
			MaxDollarsPerOrder: 100.0,
		},
		Mode:     "verify",
		LogLevel: "info",
	}
}

// validModes enumerates the accepted values for Config.Mode.
var validModes = map[string]bool{
	"verify":      true,
	"account":     true,
	"holdings":    true,
	"quote":       true,
	"size":        true,
	"buy":         true,
	"orders":      true,
	"order":       true,
	"cancel":      true,
	"monitor":     true,
	"genkey":      true,
	"encrypt-key": true,
}

// validLogLevels enumerates the accepted values for Config.LogLevel.
var validLogLevels = map[string]bool{
	"debug": true,
	"info":  true,
	"warn":  true,
	"error": true,
}

// needsCredentials reports whether a mode talks to the API and therefore
// requires a signing key. Key management modes run entirely offline.
func needsCredentials(mode string) bool {
	return mode != "genkey" && mode != "encrypt-key"
}

// Validate checks Config for obviously invalid or missing values and returns
// a combined error describing every problem found.
func (c *Config) Validate() error {
	var errs []string

	// Mode
	mode := strings.ToLower(c.Mode)
	if !validModes[mode] {
		errs = append(errs, fmt.Sprintf("unknown mode %q (valid: verify, account, holdings, quote, size, buy, orders, order, cancel, monitor, genkey, encrypt-key)", c.Mode))
	}

	// LogLevel
	if !validLogLevels[strings.ToLower(c.LogLevel)] {
		errs = append(errs, fmt.Sprintf("unknown log_level %q (valid: debug, info, warn, error)", c.LogLevel))
	}

	// Robinhood — a credential source is required for API modes.
	if needsCredentials(mode) {
		if c.Robinhood.ApiKey == "" {
			errs = append(errs, "robinhood: api_key must be set for mode "+c.Mode)
		}
		if c.Robinhood.Base64PrivateKey == "" && c.Robinhood.EncryptedKeyPath == "" {
			errs = append(errs, "robinhood: either base64_private_key or encrypted_key_path must be set for mode "+c.Mode)
		}
	}
	if c.Robinhood.EncryptedKeyPath != "" && c.Robinhood.KeyPassword == "" {
		errs = append(errs, "robinhood: key_password is required when encrypted_key_path is set")
	}
	if c.Robinhood.BaseURL == "" {
		errs = append(errs, "robinhood: base_url must not be empty")
	}

	// Transport
	if c.Transport.MaxRetries < 1 {
		errs = append(errs, "transport: max_retries must be >= 1")
	}
	if c.Transport.RetryDelay.Duration <= 0 {
		errs = append(errs, "transport: retry_delay must be positive")
	}
	if c.Transport.MaxBurst < 1 {
		errs = append(errs, "transport: max_burst must be >= 1")
	}
	if c.Transport.MaxPerMinute < 1 {
		errs = append(errs, "transport: max_per_minute must be >= 1")
	}
	if c.Transport.Timeout.Duration <= 0 {
		errs = append(errs, "transport: timeout must be positive")
	}

	// Redis
	if c.Redis.Enabled {
		if c.Redis.Addr == "" {
			errs = append(errs, "redis: addr must not be empty when enabled")
		}
		if c.Redis.PoolSize < 1 {
			errs = append(errs, "redis: pool_size must be >= 1")
		}
	}

	// Journal
	if c.Journal.Enabled {
		if strings.TrimSpace(c.Journal.DSN) == "" {
			if c.Journal.Host == "" {
				errs = append(errs, "journal: host must not be empty (or set journal.dsn)")
			}
			if c.Journal.Port <= 0 || c.Journal.Port > 65535 {
				errs = append(errs, fmt.Sprintf("journal: port must be 1-65535, got %d", c.Journal.Port))
			}
			if c.Journal.Database == "" {
				errs = append(errs, "journal: database must not be empty")
			}
		}
		if c.Journal.PoolMaxConns < 1 {
			errs = append(errs, "journal: pool_max_conns must be >= 1")
		}
		if c.Journal.PoolMinConns < 0 {
			errs = append(errs, "journal: pool_min_conns must be >= 0")
		}
		if c.Journal.PoolMinConns > c.Journal.PoolMaxConns {
			errs = append(errs, "journal: pool_min_conns must not exceed pool_max_conns")
		}
	}

	// Notify — both Telegram fields must be set together, or neither.
	tt := c.Notify.TelegramToken != ""
	tc := c.Notify.TelegramChatID != ""
	if tt != tc {
		errs = append(errs, "notify: telegram_token and telegram_chat_id must be set together")
	}

	// Trading
	if mode == "monitor" && len(c.Trading.MonitorSymbols) == 0 {
		errs = append(errs, "trading: monitor_symbols must not be empty for monitor mode")
	}
	if c.Trading.MonitorInterval.Duration <= 0 {
		errs = append(errs, "trading: monitor_interval must be positive")
	}
	if c.Trading.MaxDollarsPerOrder <= 0 {
		errs = append(errs, "trading: max_dollars_per_order must be > 0")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
