package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"
)

// Load reads a TOML configuration file at path, merges it on top of the
// built-in defaults, applies HOODBOT_* environment variable overrides, and
// returns the final Config. With an empty path only defaults and env
// overrides apply. The returned Config has NOT been validated; the caller
// should invoke Config.Validate() after Load.
func Load(path string) (*Config, error) {
	cfg := Defaults()

	if path != "" {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	// Load .env file if present (silently ignore if missing).
	_ = godotenv.Load()

	applyEnvOverrides(&cfg)

	return &cfg, nil
}

// applyEnvOverrides reads well-known HOODBOT_* environment variables and
// overwrites the corresponding Config fields when a variable is set (i.e.
// not empty). This lets operators inject secrets at deploy time without
// touching the TOML file.
func applyEnvOverrides(cfg *Config) {
	// ── Robinhood ──
	setStr(&cfg.Robinhood.ApiKey, "HOODBOT_ROBINHOOD_API_KEY")
	setStr(&cfg.Robinhood.ApiKey, "RH_API_KEY") // compatibility alias
	setStr(&cfg.Robinhood.Base64PrivateKey, "HOODBOT_ROBINHOOD_BASE64_PRIVATE_KEY")
	setStr(&cfg.Robinhood.Base64PrivateKey, "RH_BASE64_PRIVATE_KEY") // compatibility alias
	setStr(&cfg.Robinhood.EncryptedKeyPath, "HOODBOT_ROBINHOOD_ENCRYPTED_KEY_PATH")
	setStr(&cfg.Robinhood.KeyPassword, "HOODBOT_ROBINHOOD_KEY_PASSWORD")
	setStr(&cfg.Robinhood.BaseURL, "HOODBOT_ROBINHOOD_BASE_URL")

	// ── Transport ──
	setInt(&cfg.Transport.MaxRetries, "HOODBOT_TRANSPORT_MAX_RETRIES")
	setDuration(&cfg.Transport.RetryDelay, "HOODBOT_TRANSPORT_RETRY_DELAY")
	setInt(&cfg.Transport.MaxBurst, "HOODBOT_TRANSPORT_MAX_BURST")
	setInt(&cfg.Transport.MaxPerMinute, "HOODBOT_TRANSPORT_MAX_PER_MINUTE")
	setDuration(&cfg.Transport.Timeout, "HOODBOT_TRANSPORT_TIMEOUT")

	// ── Redis ──
	setBool(&cfg.Redis.Enabled, "HOODBOT_REDIS_ENABLED")
	setStr(&cfg.Redis.Addr, "HOODBOT_REDIS_ADDR")
	setStr(&cfg.Redis.Password, "HOODBOT_REDIS_PASSWORD")
	setInt(&cfg.Redis.DB, "HOODBOT_REDIS_DB")
	setInt(&cfg.Redis.PoolSize, "HOODBOT_REDIS_POOL_SIZE")
	setInt(&cfg.Redis.MaxRetries, "HOODBOT_REDIS_MAX_RETRIES")
	setBool(&cfg.Redis.TLSEnabled, "HOODBOT_REDIS_TLS_ENABLED")

	// ── Journal ──
	setBool(&cfg.Journal.Enabled, "HOODBOT_JOURNAL_ENABLED")
	setStr(&cfg.Journal.DSN, "HOODBOT_JOURNAL_DSN")
	setStr(&cfg.Journal.Host, "HOODBOT_JOURNAL_HOST")
	setInt(&cfg.Journal.Port, "HOODBOT_JOURNAL_PORT")
	setStr(&cfg.Journal.Database, "HOODBOT_JOURNAL_DATABASE")
	setStr(&cfg.Journal.User, "HOODBOT_JOURNAL_USER")
	setStr(&cfg.Journal.Password, "HOODBOT_JOURNAL_PASSWORD")
	setStr(&cfg.Journal.SSLMode, "HOODBOT_JOURNAL_SSLMODE")
	setInt(&cfg.Journal.PoolMaxConns, "HOODBOT_JOURNAL_POOL_MAX_CONNS")
	setInt(&cfg.Journal.PoolMinConns, "HOODBOT_JOURNAL_POOL_MIN_CONNS")

	// ── Notify ──
	setStr(&cfg.Notify.TelegramToken, "HOODBOT_NOTIFY_TELEGRAM_TOKEN")
	setStr(&cfg.Notify.TelegramChatID, "HOODBOT_NOTIFY_TELEGRAM_CHAT_ID")
	setStr(&cfg.Notify.DiscordWebhookURL, "HOODBOT_NOTIFY_DISCORD_WEBHOOK_URL")

	// ── Trading ──
	setStr(&cfg.Trading.DefaultSymbol, "HOODBOT_TRADING_DEFAULT_SYMBOL")
	setStringSlice(&cfg.Trading.MonitorSymbols, "HOODBOT_TRADING_MONITOR_SYMBOLS")
	setDuration(&cfg.Trading.MonitorInterval, "HOODBOT_TRADING_MONITOR_INTERVAL")
	setFloat64(&cfg.Trading.MaxDollarsPerOrder, "HOODBOT_TRADING_MAX_DOLLARS_PER_ORDER")

	// ── Top-level ──
	setStr(&cfg.Mode, "HOODBOT_MODE")
	setStr(&cfg.LogLevel, "HOODBOT_LOG_LEVEL")
}

// ---------------------------------------------------------------------------
// Typed env-var helpers. Each only mutates the target when the environment
// variable is present and non-empty.
// ---------------------------------------------------------------------------

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat64(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setBool(dst *bool, key string) {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			*dst = b
		}
	}
}

func setDuration(dst *duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			dst.Duration = d
		}
	}
}

func setStringSlice(dst *[]string, key string) {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		cleaned := make([]string, 0, len(parts))
		for _, p := range parts {
			p = strings.TrimSpace(p)
			if p != "" {
				cleaned = append(cleaned, p)
			}
		}
		if len(cleaned) > 0 {
			*dst = cleaned
		}
	}
}
