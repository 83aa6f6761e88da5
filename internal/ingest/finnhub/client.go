// Package finnhub supplies analyst EPS estimates and surprises from Finnhub.
// Estimates are optional enrichment: every failure is logged and reported as
// no data.
package finnhub

import (
	"context"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/mauv0809/stockcache/internal/ingest"
	"github.com/mauv0809/stockcache/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

const (
	// Name is the provider name used in logs.
	Name = "Finnhub"

	baseURL = "https://finnhub.io/api/v1"

	// CacheTTL is how long fetched estimates are reused per ticker.
	CacheTTL = 6 * time.Hour

	DefaultMinInterval = 2 * time.Second
	retryAttempts      = 3
	retryBackoff       = 2 * time.Second
)

type cacheEntry struct {
	lines     []models.EstimateLine
	fetchedAt time.Time
}

// Client fetches earnings estimates. It is safe for concurrent use; the cache
// and the call spacing are shared by every caller in the process.
type Client struct {
	apiKey string
	http   *ingest.Client
	logger zerolog.Logger
	now    func() time.Time

	mu    sync.Mutex
	cache map[string]cacheEntry
}

// NewClient creates a Finnhub client whose upstream calls are spaced at least
// minInterval apart. Rate-limited calls are retried with linear backoff.
func NewClient(apiKey string, minInterval time.Duration, logger zerolog.Logger, opts ...ingest.Option) *Client {
	limit := rate.Inf
	if minInterval > 0 {
		limit = rate.Every(minInterval)
	}
	opts = append([]ingest.Option{
		ingest.WithLogger(logger),
		ingest.WithLimiter(rate.NewLimiter(limit, 1)),
		ingest.WithRetry(retryAttempts, retryBackoff),
	}, opts...)
	return &Client{
		apiKey: apiKey,
		http:   ingest.NewClient(Name, baseURL, opts...),
		logger: logger.With().Str("provider", Name).Logger(),
		now:    time.Now,
		cache:  make(map[string]cacheEntry),
	}
}

func (c *Client) Name() string     { return Name }
func (c *Client) Configured() bool { return c.apiKey != "" }

type earning struct {
	Actual          *float64 `json:"actual"`
	Estimate        *float64 `json:"estimate"`
	Period          string   `json:"period"`
	Quarter         int      `json:"quarter"`
	Year            int      `json:"year"`
	Surprise        *float64 `json:"surprise"`
	SurprisePercent *float64 `json:"surprisePercent"`
	Symbol          string   `json:"symbol"`
}

// FetchEstimates returns the estimate history for ticker, or nil when the
// client is unconfigured, the provider has nothing, or the call fails.
func (c *Client) FetchEstimates(ctx context.Context, ticker string) []models.EstimateLine {
	if !c.Configured() {
		return nil
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	log := c.logger.With().Str("ticker", ticker).Logger()

	if lines, ok := c.cached(ticker); ok {
		log.Debug().Msg("using cached estimates")
		return lines
	}

	var resp []earning
	params := url.Values{"symbol": {ticker}, "token": {c.apiKey}}
	if err := c.http.GetJSON(ctx, "/stock/earnings", params, &resp); err != nil {
		log.Warn().Err(err).Msg("estimates unavailable")
		return nil
	}

	lines := make([]models.EstimateLine, 0, len(resp))
	for _, e := range resp {
		date, ok := NormalizePeriod(e.Period)
		if !ok {
			continue
		}
		lines = append(lines, models.EstimateLine{
			FiscalDate:   date,
			ReportedEPS:  ingest.Round2Ptr(e.Actual),
			EstimatedEPS: e.Estimate,
			SurprisePct:  ingest.Round2Ptr(e.SurprisePercent),
		})
	}
	if len(lines) == 0 {
		log.Info().Msg("no estimates")
		return nil
	}

	c.mu.Lock()
	c.cache[ticker] = cacheEntry{lines: lines, fetchedAt: c.now()}
	c.mu.Unlock()

	log.Info().Int("quarters", len(lines)).Msg("fetched estimates")
	return lines
}

func (c *Client) cached(ticker string) ([]models.EstimateLine, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.cache[ticker]
	if !ok {
		return nil, false
	}
	if c.now().Sub(e.fetchedAt) >= CacheTTL {
		delete(c.cache, ticker)
		return nil, false
	}
	return e.lines, true
}

var quarterEnds = map[string]string{"1": "03-31", "2": "06-30", "3": "09-30", "4": "12-31"}

// NormalizePeriod maps a provider period label onto a calendar date:
// "2024-Q1" becomes the quarter's last day, "2024-01" the month's last day,
// and full dates pass through.
func NormalizePeriod(period string) (string, bool) {
	period = strings.TrimSpace(period)
	if year, q, ok := strings.Cut(period, "-Q"); ok {
		end, known := quarterEnds[q]
		if !known || len(year) != 4 {
			return "", false
		}
		return year + "-" + end, true
	}
	if t, err := time.Parse("2006-01", period); err == nil {
		return t.AddDate(0, 1, -1).Format(models.DateLayout), true
	}
	if t, ok := ingest.ParseDate(period); ok {
		return t.Format(models.DateLayout), true
	}
	return "", false
}
