package service

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/url"
	"time"

	"github.com/ckartner/hoodbot/internal/domain"
)

// AccountSource is the account slice of the exchange client.
type AccountSource interface {
	GetAccount(ctx context.Context) (domain.Account, error)
	GetHoldings(ctx context.Context, assetCodes ...string) ([]domain.Holding, error)
	RateLimitStats(ctx context.Context) (domain.RateLimitStats, error)
	BaseURL() string
}

// CheckResult is one step of the connectivity verification.
type CheckResult struct {
	Name    string
	OK      bool
	Detail  string
	Elapsed time.Duration
}

// AccountService wraps account lookups and the connectivity verification
// used by the verify run mode.
type AccountService struct {
	account AccountSource
	market  MarketSource
	logger  *slog.Logger

	dialTimeout time.Duration
}

// NewAccountService creates an AccountService.
func NewAccountService(account AccountSource, market MarketSource, logger *slog.Logger) *AccountService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AccountService{
		account:     account,
		market:      market,
		logger:      logger.With(slog.String("component", "account_service")),
		dialTimeout: 5 * time.Second,
	}
}

// GetAccount returns the trading account summary.
func (s *AccountService) GetAccount(ctx context.Context) (domain.Account, error) {
	account, err := s.account.GetAccount(ctx)
	if err != nil {
		return domain.Account{}, fmt.Errorf("account_service: get account: %w", err)
	}
	return account, nil
}

// GetHoldings returns crypto holdings, optionally filtered by asset codes.
func (s *AccountService) GetHoldings(ctx context.Context, assetCodes ...string) ([]domain.Holding, error) {
	holdings, err := s.account.GetHoldings(ctx, assetCodes...)
	if err != nil {
		return nil, fmt.Errorf("account_service: get holdings: %w", err)
	}
	return holdings, nil
}

// RateLimitStats returns the transport's current rate-limit snapshot.
func (s *AccountService) RateLimitStats(ctx context.Context) (domain.RateLimitStats, error) {
	return s.account.RateLimitStats(ctx)
}

// VerifyConnectivity runs the layered connectivity checks in order: DNS
// resolution, TCP reachability on 443, a signed account call to prove the
// credentials, and an unauthenticated-shape market data call. Later checks
// still run when earlier ones fail, so the operator sees the full picture.
// The second return value is true only when every check passed.
func (s *AccountService) VerifyConnectivity(ctx context.Context) ([]CheckResult, bool) {
	host := s.apiHost()

	checks := []CheckResult{
		s.runCheck("dns", func() (string, error) {
			addrs, err := net.DefaultResolver.LookupHost(ctx, host)
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("%s resolves to %d address(es)", host, len(addrs)), nil
		}),
		s.runCheck("tcp", func() (string, error) {
			conn, err := (&net.Dialer{Timeout: s.dialTimeout}).DialContext(ctx, "tcp", net.JoinHostPort(host, "443"))
			if err != nil {
				return "", err
			}
			_ = conn.Close()
			return host + ":443 reachable", nil
		}),
		s.runCheck("auth", func() (string, error) {
			account, err := s.account.GetAccount(ctx)
			if err != nil {
				return "", err
			}
			return "authenticated as account " + account.AccountNumber, nil
		}),
		s.runCheck("market_data", func() (string, error) {
			quote, err := s.market.GetQuote(ctx, "BTC-USD")
			if err != nil {
				return "", err
			}
			return fmt.Sprintf("BTC-USD at %s", quote.Price), nil
		}),
	}

	ok := true
	for _, c := range checks {
		if !c.OK {
			ok = false
		}
		s.logger.InfoContext(ctx, "account_service: connectivity check",
			slog.String("check", c.Name),
			slog.Bool("ok", c.OK),
			slog.String("detail", c.Detail),
			slog.Duration("elapsed", c.Elapsed),
		)
	}
	return checks, ok
}

func (s *AccountService) runCheck(name string, fn func() (string, error)) CheckResult {
	start := time.Now()
	detail, err := fn()
	result := CheckResult{
		Name:    name,
		OK:      err == nil,
		Detail:  detail,
		Elapsed: time.Since(start),
	}
	if err != nil {
		result.Detail = err.Error()
	}
	return result
}

func (s *AccountService) apiHost() string {
	u, err := url.Parse(s.account.BaseURL())
	if err != nil || u.Host == "" {
		return "trading.robinhood.com"
	}
	return u.Hostname()
}
