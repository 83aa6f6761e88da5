// Package stock decides where a ticker's snapshot comes from: the cache, a
// chain of fundamentals providers, or stale cache as a last resort.
package stock

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/mauv0809/stockcache/internal/earnings"
	"github.com/mauv0809/stockcache/internal/ingest"
	"github.com/mauv0809/stockcache/internal/models"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// FundamentalsProvider produces a full payload for a ticker.
type FundamentalsProvider interface {
	Name() string
	Configured() bool
	FetchFull(ctx context.Context, ticker string) (*models.ProviderPayload, error)
}

// EstimatesProvider supplies analyst estimates. A nil result means no data.
type EstimatesProvider interface {
	Name() string
	Configured() bool
	FetchEstimates(ctx context.Context, ticker string) []models.EstimateLine
}

// PriceSource serves daily bars.
type PriceSource interface {
	Configured() bool
	DailyBars(ctx context.Context, ticker string, from, to time.Time) ([]models.PriceBar, error)
}

// Cache is the snapshot store. Reads return nil when nothing qualifies.
type Cache interface {
	ReadFresh(ctx context.Context, ticker string) (*models.Snapshot, error)
	ReadAny(ctx context.Context, ticker string) (*models.Snapshot, error)
	Write(ctx context.Context, p *models.ProviderPayload) (*models.Snapshot, error)
}

// Provider roles reported by Providers.
const (
	RolePrimary   = "primary"
	RoleFallback  = "fallback"
	RoleEstimates = "estimates"
)

// ProviderStatus describes one wired provider.
type ProviderStatus struct {
	Name       string `json:"name"`
	Role       string `json:"role"`
	Configured bool   `json:"configured"`
}

// Service orchestrates cache reads, provider fallback, estimate merging and
// persistence.
type Service struct {
	cache     Cache
	providers []FundamentalsProvider
	estimates []EstimatesProvider
	prices    PriceSource
	logger    zerolog.Logger
	now       func() time.Time
}

// Option configures a Service.
type Option func(*Service)

// WithEstimates adds supplemental estimate providers, tried in order.
func WithEstimates(providers ...EstimatesProvider) Option {
	return func(s *Service) {
		s.estimates = append(s.estimates, providers...)
	}
}

// WithPriceSource sets the source for daily price series.
func WithPriceSource(p PriceSource) Option {
	return func(s *Service) {
		s.prices = p
	}
}

// WithLogger sets the logger.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates an orchestrator. providers is the fallback chain; the
// first entry is the primary.
func NewService(cache Cache, providers []FundamentalsProvider, opts ...Option) *Service {
	s := &Service{
		cache:     cache,
		providers: providers,
		logger:    zerolog.Nop(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Get returns the snapshot for ticker. A fresh cached snapshot is returned
// without upstream calls unless forceRefresh is set. When every provider fails
// and an older snapshot exists, it is returned with a warning instead of an
// error. Failures are reported as *Error.
func (s *Service) Get(ctx context.Context, ticker string, forceRefresh bool) (*models.StockResponse, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	log := s.logger.With().Str("ticker", ticker).Logger()

	if !forceRefresh {
		snap, err := s.cache.ReadFresh(ctx, ticker)
		if err != nil {
			log.Warn().Err(err).Msg("cache read failed, treating as miss")
		}
		if snap != nil {
			log.Debug().Float64("age_hours", snap.AgeHours).Msg("cache hit")
			return s.response(snap, ""), nil
		}
	}

	if len(s.providers) > 0 && !s.providers[0].Configured() {
		primary := s.providers[0].Name()
		if snap := s.readAny(ctx, ticker, log); snap != nil {
			log.Warn().Str("provider", primary).Msg("primary provider not configured, serving cache")
			return s.response(snap, fmt.Sprintf("Using cached data - %s API key not configured", primary)), nil
		}
	}

	var errs []error
	for _, p := range s.providers {
		plog := log.With().Str("provider", p.Name()).Logger()
		if !p.Configured() {
			errs = append(errs, fmt.Errorf("%s: %w", p.Name(), ingest.ErrNotConfigured))
			continue
		}

		payload, err := p.FetchFull(ctx, ticker)
		if err != nil {
			plog.Warn().Err(err).Msg("provider failed, trying next")
			errs = append(errs, err)
			continue
		}

		if est := s.fetchEstimates(ctx, ticker); len(est) > 0 {
			payload.Earnings = earnings.Merge(payload.Earnings, est)
		}

		snap, err := s.cache.Write(ctx, payload)
		if err != nil {
			plog.Error().Err(err).Msg("persisting snapshot failed")
			return nil, &Error{Ticker: ticker, Category: CategoryUpstreamUnavailable, Cause: err}
		}
		plog.Info().Int("earnings", len(snap.Earnings)).Msg("refreshed snapshot")
		return s.response(snap, ""), nil
	}

	if snap := s.readAny(ctx, ticker, log); snap != nil {
		hours := roundHours(snap.AgeHours)
		log.Warn().Float64("age_hours", hours).Msg("all providers failed, serving stale cache")
		return s.response(snap, fmt.Sprintf("Using %s hour old data - API temporarily unavailable", formatHours(hours))), nil
	}

	e := classify(ticker, errs)
	log.Error().Err(e.Cause).Str("category", string(e.Category)).Msg("no data available")
	return nil, e
}

// Earnings returns only the earnings history for ticker, resolved like Get.
func (s *Service) Earnings(ctx context.Context, ticker string) ([]models.EarningsRecord, error) {
	resp, err := s.Get(ctx, ticker, false)
	if err != nil {
		return nil, err
	}
	return resp.Earnings, nil
}

// Prices returns daily bars for the trailing days, bypassing the snapshot cache.
func (s *Service) Prices(ctx context.Context, ticker string, days int) ([]models.PriceBar, error) {
	ticker = strings.ToUpper(strings.TrimSpace(ticker))
	if s.prices == nil || !s.prices.Configured() {
		return nil, &Error{Ticker: ticker, Category: CategoryNotConfigured, Cause: ingest.ErrNotConfigured}
	}
	now := s.now().UTC()
	bars, err := s.prices.DailyBars(ctx, ticker, now.AddDate(0, 0, -days), now)
	if err != nil {
		s.logger.Warn().Err(err).Str("ticker", ticker).Msg("price series unavailable")
		return nil, &Error{Ticker: ticker, Category: CategoryOf(err), Cause: err}
	}
	return bars, nil
}

// Providers lists the wired providers in the order they are consulted.
func (s *Service) Providers() []ProviderStatus {
	out := make([]ProviderStatus, 0, len(s.providers)+len(s.estimates))
	for i, p := range s.providers {
		role := RoleFallback
		if i == 0 {
			role = RolePrimary
		}
		out = append(out, ProviderStatus{Name: p.Name(), Role: role, Configured: p.Configured()})
	}
	for _, p := range s.estimates {
		out = append(out, ProviderStatus{Name: p.Name(), Role: RoleEstimates, Configured: p.Configured()})
	}
	return out
}

func (s *Service) fetchEstimates(ctx context.Context, ticker string) []models.EstimateLine {
	for _, p := range s.estimates {
		if !p.Configured() {
			continue
		}
		if lines := p.FetchEstimates(ctx, ticker); len(lines) > 0 {
			return lines
		}
	}
	return nil
}

func (s *Service) readAny(ctx context.Context, ticker string, log zerolog.Logger) *models.Snapshot {
	snap, err := s.cache.ReadAny(ctx, ticker)
	if err != nil {
		log.Warn().Err(err).Msg("stale cache read failed")
		return nil
	}
	return snap
}

func (s *Service) response(snap *models.Snapshot, warning string) *models.StockResponse {
	sum := snap.Summary
	earnings := append([]models.EarningsRecord{}, snap.Earnings...)
	sort.SliceStable(earnings, func(i, j int) bool {
		return earnings[i].FiscalDate.After(earnings[j].FiscalDate)
	})

	fetchedAt := sum.FetchedAt.UTC()
	resp := &models.StockResponse{
		Ticker:   sum.Ticker,
		Name:     sum.Name,
		Summary:  sum,
		Earnings: earnings,
		Source:   sum.Source,
		CachedAt: &fetchedAt,
		Warning:  warning,
	}
	if warning != "" {
		hours := roundHours(snap.AgeHours)
		resp.CacheAgeHours = &hours
	}
	return resp
}

func roundHours(h float64) float64 {
	return decimal.NewFromFloat(h).Round(1).InexactFloat64()
}

func formatHours(h float64) string {
	return decimal.NewFromFloat(h).StringFixed(1)
}
