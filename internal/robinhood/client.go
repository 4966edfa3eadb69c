// Package robinhood is the REST client for the Robinhood crypto trading API.
// Every request is signed with the account's Ed25519 key; dispatch goes
// through a sliding-window admission gate and a bounded retry loop that
// distinguishes retryable from terminal failures.
package robinhood

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ckartner/hoodbot/internal/crypto"
	"github.com/ckartner/hoodbot/internal/domain"
	"github.com/ckartner/hoodbot/internal/ratelimit"
)

// DefaultBaseURL is the production API root. Sandbox and production share
// the same host.
const DefaultBaseURL = "https://trading.robinhood.com"

// TransportPolicy centralizes the retry, backoff, and rate-limit parameters
// of the transport. It is passed once at construction; nothing reads ambient
// defaults at call time.
type TransportPolicy struct {
	// MaxRetries bounds the attempts for retryable failures (429, 5xx,
	// network errors). Terminal failures never retry.
	MaxRetries int
	// RetryDelay is the base backoff; attempt n sleeps RetryDelay * (n+1).
	// The backoff is linear, not exponential.
	RetryDelay time.Duration
	// MaxBurst is the admission ceiling: requests in the trailing 60s.
	MaxBurst int
	// MaxPerMinute is reported in stats but not enforced.
	MaxPerMinute int
	// Timeout is the per-request socket timeout.
	Timeout time.Duration
}

// DefaultPolicy returns the production transport parameters.
func DefaultPolicy() TransportPolicy {
	return TransportPolicy{
		MaxRetries:   3,
		RetryDelay:   time.Second,
		MaxBurst:     300,
		MaxPerMinute: 100,
		Timeout:      10 * time.Second,
	}
}

// Client is the signed REST client. A single Client is safe for concurrent
// use; the shared limiter state is guarded by the limiter itself.
type Client struct {
	baseURL    string
	httpClient *http.Client
	signer     *crypto.Signer
	policy     TransportPolicy
	limiter    domain.Limiter
	logger     *slog.Logger

	// injectable for tests
	now   func() int64
	sleep func(ctx context.Context, d time.Duration) error
}

// NewClient creates a Client for the given base URL and signer. A nil
// limiter gets an in-process sliding window sized from the policy; a nil
// logger falls back to slog.Default.
func NewClient(baseURL string, signer *crypto.Signer, policy TransportPolicy, limiter domain.Limiter, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if policy.MaxRetries <= 0 {
		policy.MaxRetries = DefaultPolicy().MaxRetries
	}
	if policy.RetryDelay <= 0 {
		policy.RetryDelay = DefaultPolicy().RetryDelay
	}
	if policy.MaxBurst <= 0 {
		policy.MaxBurst = DefaultPolicy().MaxBurst
	}
	if policy.MaxPerMinute <= 0 {
		policy.MaxPerMinute = DefaultPolicy().MaxPerMinute
	}
	if policy.Timeout <= 0 {
		policy.Timeout = DefaultPolicy().Timeout
	}
	if limiter == nil {
		limiter = ratelimit.NewWindow(policy.MaxBurst, policy.MaxPerMinute)
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: policy.Timeout},
		signer:     signer,
		policy:     policy,
		limiter:    limiter,
		logger:     logger.With(slog.String("component", "robinhood")),
		now:        func() int64 { return time.Now().UTC().Unix() },
		sleep:      sleepCtx,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// RateLimitStats returns the current limiter snapshot.
func (c *Client) RateLimitStats(ctx context.Context) (domain.RateLimitStats, error) {
	return c.limiter.Stats(ctx)
}

// Do performs one signed API call with admission control and bounded retry.
// Expected failures come back as *domain.APIError values; callers must check
// the error on every call. The returned message is valid JSON (an empty 2xx
// body is normalized to "{}").
func (c *Client) Do(ctx context.Context, method, path, body string) (json.RawMessage, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("robinhood: rate limit wait: %w", err)
	}

	for attempt := 0; attempt < c.policy.MaxRetries; attempt++ {
		status, respBody, err := c.dispatch(ctx, method, path, body)
		if err != nil {
			apiErr := classifyNetworkError(err)
			if attempt < c.policy.MaxRetries-1 {
				c.logger.WarnContext(ctx, "request failed, retrying",
					slog.String("method", method),
					slog.String("path", path),
					slog.Int("attempt", attempt+1),
					slog.String("error", err.Error()),
				)
				if serr := c.backoff(ctx, attempt); serr != nil {
					return nil, serr
				}
				continue
			}
			return nil, apiErr
		}

		switch {
		case status == http.StatusOK || status == http.StatusCreated:
			if len(respBody) == 0 {
				return json.RawMessage("{}"), nil
			}
			if !json.Valid(respBody) {
				return nil, &domain.APIError{
					Code:   domain.ErrCodeJSONDecodeFailed,
					Status: status,
					Detail: truncate(respBody),
				}
			}
			return json.RawMessage(respBody), nil

		case status == http.StatusUnauthorized:
			return nil, &domain.APIError{
				Code:   domain.ErrCodeAuthenticationFailed,
				Status: status,
				Detail: truncate(respBody),
			}

		case status == http.StatusBadRequest:
			return nil, &domain.APIError{
				Code:   domain.ErrCodeBadRequest,
				Status: status,
				Detail: truncate(respBody),
			}

		case status == http.StatusTooManyRequests || status >= http.StatusInternalServerError:
			c.logger.WarnContext(ctx, "retryable status, backing off",
				slog.String("method", method),
				slog.String("path", path),
				slog.Int("status", status),
				slog.Int("attempt", attempt+1),
			)
			if serr := c.backoff(ctx, attempt); serr != nil {
				return nil, serr
			}
			continue

		default:
			return nil, &domain.APIError{
				Code:   domain.ErrCodeUnexpectedStatus,
				Status: status,
				Detail: truncate(respBody),
			}
		}
	}

	return nil, &domain.APIError{Code: domain.ErrCodeMaxRetriesExceeded}
}

// dispatch signs and sends a single HTTP request. The body string is signed
// verbatim and sent byte-for-byte; the signature covers exactly the bytes on
// the wire.
func (c *Client) dispatch(ctx context.Context, method, path, body string) (int, []byte, error) {
	timestamp := c.now()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("create request: %w", err)
	}

	for k, v := range c.signer.Headers(method, path, body, timestamp) {
		req.Header.Set(k, v)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.DebugContext(ctx, "api request",
		slog.String("method", method),
		slog.String("path", path),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer resp.Body.Close()

	if rerr := c.limiter.Record(ctx); rerr != nil {
		c.logger.WarnContext(ctx, "rate limiter record failed",
			slog.String("error", rerr.Error()),
		)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("read response: %w", err)
	}

	return resp.StatusCode, respBody, nil
}

// backoff sleeps the linear retry delay for the given attempt index.
func (c *Client) backoff(ctx context.Context, attempt int) error {
	d := c.policy.RetryDelay * time.Duration(attempt+1)
	if err := c.sleep(ctx, d); err != nil {
		return fmt.Errorf("robinhood: backoff interrupted: %w", err)
	}
	return nil
}

// classifyNetworkError maps transport-level errors to timeout vs
// request_failed API errors.
func classifyNetworkError(err error) *domain.APIError {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &domain.APIError{Code: domain.ErrCodeTimeout, Detail: err.Error()}
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return &domain.APIError{Code: domain.ErrCodeTimeout, Detail: err.Error()}
	}
	return &domain.APIError{Code: domain.ErrCodeRequestFailed, Detail: err.Error()}
}

// queryParams renders repeated key=value pairs, e.g. "?symbol=BTC-USD&symbol=ETH-USD".
func queryParams(key string, values ...string) string {
	if len(values) == 0 {
		return ""
	}
	parts := make([]string, 0, len(values))
	for _, v := range values {
		parts = append(parts, key+"="+url.QueryEscape(v))
	}
	return "?" + strings.Join(parts, "&")
}

// truncate limits response bodies embedded in error details.
func truncate(b []byte) string {
	const max = 512
	if len(b) > max {
		return string(b[:max]) + "..."
	}
	return string(b)
}

// sleepCtx sleeps for d, returning early if the context is cancelled.
func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
