// Package alphavantage is the fallback fundamentals adapter, backed by Alpha
// Vantage. Ratios arrive as fractions and are scaled to percentages.
package alphavantage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/mauv0809/stockcache/internal/ingest"
	"github.com/mauv0809/stockcache/internal/models"
	"github.com/rs/zerolog"
)

const (
	// Name is the source tag stamped on payloads from this adapter.
	Name = "Alpha Vantage"

	baseURL          = "https://www.alphavantage.co"
	queryPath        = "/query"
	earningsQuarters = 8
)

// Client fetches and normalizes Alpha Vantage data.
type Client struct {
	apiKey string
	http   *ingest.Client
	logger zerolog.Logger
}

// NewClient creates an Alpha Vantage adapter. An empty apiKey yields an
// unconfigured client.
func NewClient(apiKey string, logger zerolog.Logger, opts ...ingest.Option) *Client {
	opts = append([]ingest.Option{ingest.WithLogger(logger)}, opts...)
	return &Client{
		apiKey: apiKey,
		http:   ingest.NewClient(Name, baseURL, opts...),
		logger: logger.With().Str("provider", Name).Logger(),
	}
}

func (c *Client) Name() string     { return Name }
func (c *Client) Configured() bool { return c.apiKey != "" }

// FetchFull queries OVERVIEW, GLOBAL_QUOTE and EARNINGS in sequence. The free
// tier allows a handful of calls a minute, so the calls are not fanned out.
func (c *Client) FetchFull(ctx context.Context, ticker string) (*models.ProviderPayload, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("%s: %w", Name, ingest.ErrNotConfigured)
	}
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	log := c.logger.With().Str("ticker", ticker).Logger()

	var ov overview
	if err := c.query(ctx, "OVERVIEW", ticker, &ov); err != nil {
		return nil, err
	}
	if err := ov.err("OVERVIEW", ticker); err != nil {
		return nil, err
	}
	if ov.Symbol == "" {
		return nil, fmt.Errorf("%s OVERVIEW %s: empty overview: %w", Name, ticker, ingest.ErrNotFound)
	}

	var quote globalQuote
	err := c.query(ctx, "GLOBAL_QUOTE", ticker, &quote)
	if err == nil {
		err = quote.err("GLOBAL_QUOTE", ticker)
	}
	if err := optional(log, "GLOBAL_QUOTE", err); err != nil {
		return nil, err
	}

	var earnings earningsResponse
	err = c.query(ctx, "EARNINGS", ticker, &earnings)
	if err == nil {
		err = earnings.err("EARNINGS", ticker)
	}
	if err := optional(log, "EARNINGS", err); err != nil {
		return nil, err
	}

	name := ov.Name
	if name == "" {
		name = ticker
	}
	payload := &models.ProviderPayload{
		Ticker:   ticker,
		Name:     name,
		Metrics:  overviewMetrics(&ov, ingest.ParseFloat(quote.Quote.Price)),
		Earnings: earningsLines(earnings.Quarterly),
		Source:   Name,
	}
	log.Info().Int("earnings", len(payload.Earnings)).Msg("fetched fundamentals")
	return payload, nil
}

func optional(log zerolog.Logger, function string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ingest.ErrRateLimited) || errors.Is(err, ingest.ErrUnauthorized) {
		return err
	}
	log.Warn().Err(err).Str("function", function).Msg("query failed, continuing without it")
	return nil
}

func (c *Client) query(ctx context.Context, function, ticker string, out any) error {
	params := url.Values{
		"function": {function},
		"symbol":   {ticker},
		"apikey":   {c.apiKey},
	}
	return c.http.GetJSON(ctx, queryPath, params, out)
}

func overviewMetrics(ov *overview, price *float64) models.Metrics {
	p := ingest.ParseFloat
	revenue := p(ov.RevenueTTM)

	return models.Metrics{
		MarketCap:         p(ov.MarketCapitalization),
		PERatio:           ingest.Round2Ptr(p(ov.PERatio)),
		PSRatio:           ingest.Round2Ptr(p(ov.PriceToSalesRatioTTM)),
		PBRatio:           ingest.Round2Ptr(p(ov.PriceToBookRatio)),
		EVEBITDA:          ingest.Round2Ptr(p(ov.EVToEBITDA)),
		SharesOutstanding: p(ov.SharesOutstanding),

		ProfitMargin:    ingest.Scale(p(ov.ProfitMargin), 100),
		OperatingMargin: ingest.Scale(p(ov.OperatingMarginTTM), 100),
		GrossMargin:     percentOf(p(ov.GrossProfitTTM), revenue),
		EBITDAMargin:    percentOf(p(ov.EBITDA), revenue),
		ROE:             ingest.Scale(p(ov.ReturnOnEquityTTM), 100),
		ROA:             ingest.Scale(p(ov.ReturnOnAssetsTTM), 100),

		DebtToEquity: ingest.Round2Ptr(p(ov.DebtToEquityRatio)),

		DividendYield: ingest.Scale(p(ov.DividendYield), 100),
		Beta:          ingest.Round2Ptr(p(ov.Beta)),
		Price52wHigh:  ingest.Round2Ptr(p(ov.High52)),
		Price52wLow:   ingest.Round2Ptr(p(ov.Low52)),
		CurrentPrice:  ingest.Round2Ptr(price),
		RevenueGrowth: ingest.Scale(p(ov.QuarterlyRevenueGrowthYOY), 100),
	}
}

func percentOf(part, whole *float64) *float64 {
	if part == nil || whole == nil || *whole <= 0 {
		return nil
	}
	return ingest.Round2(*part / *whole * 100)
}

// earningsLines keeps the most recent quarters, newest first as delivered.
func earningsLines(quarters []quarterlyEarning) []models.EarningsLine {
	lines := make([]models.EarningsLine, 0, min(len(quarters), earningsQuarters))
	for _, q := range quarters {
		if len(lines) == earningsQuarters {
			break
		}
		date := q.ReportedDate
		if date == "" {
			date = q.FiscalDateEnding
		}
		if date == "" {
			continue
		}
		period := ingest.QuarterOf(q.FiscalDateEnding)
		if q.FiscalDateEnding == "" {
			period = ingest.QuarterOf(date)
		}
		lines = append(lines, models.EarningsLine{
			FiscalDate:   date,
			PeriodEnd:    q.FiscalDateEnding,
			Period:       period,
			ReportedEPS:  ingest.Round2Ptr(ingest.ParseFloat(q.ReportedEPS)),
			EstimatedEPS: ingest.Round2Ptr(ingest.ParseFloat(q.EstimatedEPS)),
			SurprisePct:  ingest.Round2Ptr(ingest.ParseFloat(q.SurprisePercentage)),
		})
	}
	return lines
}
