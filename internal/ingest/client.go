package ingest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// DefaultTimeout bounds each upstream attempt unless WithTimeout overrides it.
	DefaultTimeout = 10 * time.Second
	maxBodyInError = 256
)

// Client performs GET requests against one provider's JSON API. Every attempt is
// bounded by its own timeout; 429 responses are retried with linear backoff.
type Client struct {
	provider   string
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter
	attempts   int
	backoff    time.Duration
	logger     zerolog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the provider base URL.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(baseURL, "/")
	}
}

// WithHTTPClient sets the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithTimeout sets the per-attempt timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLimiter gates every attempt on limiter.
func WithLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithRetry sets how many attempts a rate-limited request gets and the backoff
// unit; attempt n waits n*backoff before running.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts > 0 {
			c.attempts = attempts
		}
		c.backoff = backoff
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient creates a client for provider rooted at baseURL.
func NewClient(provider, baseURL string, opts ...Option) *Client {
	c := &Client{
		provider:   provider,
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		attempts:   1,
		backoff:    time.Second,
		logger:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.logger = c.logger.With().Str("provider", provider).Logger()
	return c
}

// Provider returns the provider name the client was built for.
func (c *Client) Provider() string {
	return c.provider
}

// GetJSON fetches path with params and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, path string, params url.Values, out any) error {
	var lastErr error
	for attempt := 0; attempt < c.attempts; attempt++ {
		if attempt > 0 {
			wait := time.Duration(attempt) * c.backoff
			c.logger.Debug().Str("endpoint", path).Int("attempt", attempt+1).Dur("backoff", wait).Msg("retrying rate-limited request")
			select {
			case <-ctx.Done():
				return fmt.Errorf("%s %s: %w: %w", c.provider, path, ErrUpstream, ctx.Err())
			case <-time.After(wait):
			}
		}

		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return fmt.Errorf("%s %s: waiting for rate limiter: %w: %w", c.provider, path, ErrUpstream, err)
			}
		}

		lastErr = c.do(ctx, path, params, out)
		if lastErr == nil {
			return nil
		}
		if !errors.Is(lastErr, ErrRateLimited) || ctx.Err() != nil {
			return lastErr
		}
	}
	return lastErr
}

func (c *Client) do(ctx context.Context, path string, params url.Values, out any) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s %s: creating request: %w: %w", c.provider, path, ErrUpstream, err)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		// url.Error embeds the full URL, which carries the API key.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			err = uerr.Err
		}
		return fmt.Errorf("%s %s: executing request: %w: %w", c.provider, path, ErrUpstream, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("%s %s: reading response: %w: %w", c.provider, path, ErrUpstream, err)
	}

	c.logger.Debug().Str("endpoint", path).Int("status", resp.StatusCode).Dur("duration", time.Since(start)).Msg("upstream call")

	if resp.StatusCode != http.StatusOK {
		msg := strings.TrimSpace(string(body))
		if len(msg) > maxBodyInError {
			msg = msg[:maxBodyInError]
		}
		return &APIError{
			Provider:   c.provider,
			StatusCode: resp.StatusCode,
			Endpoint:   path,
			Message:    msg,
		}
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: parsing response: %w: %w", c.provider, path, ErrUpstream, err)
	}
	return nil
}
