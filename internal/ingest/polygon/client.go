// Package polygon is the primary fundamentals adapter, backed by Polygon.io.
package polygon

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mauv0809/stockcache/internal/ingest"
	"github.com/mauv0809/stockcache/internal/models"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
)

const (
	// Name is the source tag stamped on payloads from this adapter.
	Name = "Polygon.io"

	baseURL         = "https://api.polygon.io"
	financialsLimit = 12
	rangeDays       = 365

	retryAttempts = 2
	retryBackoff  = time.Second
)

// Client fetches and normalizes Polygon.io data.
type Client struct {
	apiKey string
	http   *ingest.Client
	logger zerolog.Logger
	now    func() time.Time
}

// NewClient creates a Polygon adapter. An empty apiKey yields an unconfigured
// client whose calls fail with ingest.ErrNotConfigured.
func NewClient(apiKey string, logger zerolog.Logger, opts ...ingest.Option) *Client {
	opts = append([]ingest.Option{
		ingest.WithLogger(logger),
		ingest.WithRetry(retryAttempts, retryBackoff),
	}, opts...)
	return &Client{
		apiKey: apiKey,
		http:   ingest.NewClient(Name, baseURL, opts...),
		logger: logger.With().Str("provider", Name).Logger(),
		now:    time.Now,
	}
}

// Name returns the provider name.
func (c *Client) Name() string { return Name }

// Configured reports whether an API key is available.
func (c *Client) Configured() bool { return c.apiKey != "" }

// FetchFull issues the reference, price, financials, daily range and dividend
// queries for ticker and assembles one payload. Only the reference query is
// mandatory; a failed secondary query leaves its metrics unset unless the
// failure is a rate limit or credential rejection, which fails the fetch.
func (c *Client) FetchFull(ctx context.Context, ticker string) (*models.ProviderPayload, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%s: %w", Name, ingest.ErrNotConfigured)
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	now := c.now().UTC()
	log := c.logger.With().Str("ticker", ticker).Logger()

	var (
		details   *tickerDetails
		price     *float64
		filings   []Filing
		bars      []models.PriceBar
		dividends []dividend
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		details, err = c.tickerDetails(gctx, ticker)
		return err
	})
	g.Go(func() error {
		var err error
		price, err = c.previousClose(gctx, ticker)
		return optional(log, "previous close", err)
	})
	g.Go(func() error {
		var err error
		filings, err = c.financials(gctx, ticker)
		return optional(log, "financials", err)
	})
	g.Go(func() error {
		var err error
		bars, err = c.DailyBars(gctx, ticker, now.AddDate(0, 0, -rangeDays), now)
		return optional(log, "daily range", err)
	})
	g.Go(func() error {
		var err error
		dividends, err = c.dividends(gctx, ticker)
		return optional(log, "dividends", err)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if price == nil && len(bars) > 0 {
		last := bars[len(bars)-1].Close
		price = &last
	}

	name := details.Name
	if name == "" {
		name = ticker
	}

	payload := &models.ProviderPayload{
		Ticker:   ticker,
		Name:     name,
		Metrics:  deriveMetrics(details, price, filings, bars, dividends, now),
		Earnings: buildEarnings(filings, bars),
		Source:   Name,
	}
	log.Info().Int("filings", len(filings)).Int("earnings", len(payload.Earnings)).Msg("fetched fundamentals")
	return payload, nil
}

// optional swallows failures of non-essential queries, except those that will
// affect every other call too.
func optional(log zerolog.Logger, what string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ingest.ErrRateLimited) || errors.Is(err, ingest.ErrUnauthorized) {
		return err
	}
	log.Warn().Err(err).Str("query", what).Msg("query failed, continuing without it")
	return nil
}

func (c *Client) params(extra url.Values) url.Values {
	p := url.Values{}
	for k, v := range extra {
		p[k] = v
	}
	p.Set("apiKey", c.apiKey)
	return p
}

func (c *Client) tickerDetails(ctx context.Context, ticker string) (*tickerDetails, error) {
	var resp tickerDetailsResponse
	if err := c.http.GetJSON(ctx, "/v3/reference/tickers/"+url.PathEscape(ticker), c.params(nil), &resp); err != nil {
		return nil, err
	}
	if resp.Status != "OK" || resp.Results == nil {
		return nil, fmt.Errorf("%s: ticker %s: %w", Name, ticker, ingest.ErrNotFound)
	}
	return resp.Results, nil
}

func (c *Client) previousClose(ctx context.Context, ticker string) (*float64, error) {
	var resp aggsResponse
	if err := c.http.GetJSON(ctx, "/v2/aggs/ticker/"+url.PathEscape(ticker)+"/prev", c.params(nil), &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, nil
	}
	return resp.Results[0].Close, nil
}

func (c *Client) financials(ctx context.Context, ticker string) ([]Filing, error) {
	var resp financialsResponse
	params := c.params(url.Values{
		"ticker":    {ticker},
		"timeframe": {"quarterly"},
		"order":     {"desc"},
		"sort":      {"filing_date"},
		"limit":     {fmt.Sprint(financialsLimit)},
	})
	if err := c.http.GetJSON(ctx, "/vX/reference/financials", params, &resp); err != nil {
		return nil, err
	}
	filings := resp.Results
	sort.SliceStable(filings, func(i, j int) bool {
		return fiscalDate(&filings[i]) > fiscalDate(&filings[j])
	})
	return filings, nil
}

func (c *Client) dividends(ctx context.Context, ticker string) ([]dividend, error) {
	var resp dividendsResponse
	params := c.params(url.Values{
		"ticker": {ticker},
		"order":  {"desc"},
		"limit":  {"12"},
	})
	if err := c.http.GetJSON(ctx, "/v3/reference/dividends", params, &resp); err != nil {
		return nil, err
	}
	return resp.Results, nil
}

// DailyBars returns adjusted daily OHLCV bars between from and to, oldest first.
func (c *Client) DailyBars(ctx context.Context, ticker string, from, to time.Time) ([]models.PriceBar, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%s: %w", Name, ingest.ErrNotConfigured)
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	path := fmt.Sprintf("/v2/aggs/ticker/%s/range/1/day/%s/%s",
		url.PathEscape(ticker), from.Format(models.DateLayout), to.Format(models.DateLayout))

	var resp aggsResponse
	params := c.params(url.Values{
		"adjusted": {"true"},
		"sort":     {"asc"},
		"limit":    {"50000"},
	})
	if err := c.http.GetJSON(ctx, path, params, &resp); err != nil {
		return nil, err
	}

	bars := make([]models.PriceBar, 0, len(resp.Results))
	for _, a := range resp.Results {
		if a.Close == nil || a.Timestamp == 0 {
			continue
		}
		t := time.UnixMilli(a.Timestamp).UTC()
		bars = append(bars, models.PriceBar{
			Date:   time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC),
			Open:   value(a.Open),
			High:   value(a.High),
			Low:    value(a.Low),
			Close:  *a.Close,
			Volume: value(a.Volume),
		})
	}
	return bars, nil
}
