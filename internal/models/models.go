package models

import (
	"time"
)

// Period markers for an earnings line.
const (
	PeriodQ1      = "Q1"
	PeriodQ2      = "Q2"
	PeriodQ3      = "Q3"
	PeriodQ4      = "Q4"
	PeriodFY      = "FY"
	PeriodUnknown = "Q"
)

// DateLayout is the calendar-date format used on the wire and for merge keys.
const DateLayout = "2006-01-02"

// Metrics holds every numeric fundamentals field. Any of them may be nil when the
// provider omits it or it cannot be derived.
type Metrics struct {
	MarketCap         *float64 `json:"market_cap"`
	PERatio           *float64 `json:"pe_ratio"`
	PSRatio           *float64 `json:"ps_ratio"`
	PBRatio           *float64 `json:"pb_ratio"`
	EVEBITDA          *float64 `json:"ev_ebitda"`
	EnterpriseValue   *float64 `json:"enterprise_value"`
	SharesOutstanding *float64 `json:"shares_outstanding"`

	ProfitMargin    *float64 `json:"profit_margin"`
	OperatingMargin *float64 `json:"operating_margin"`
	GrossMargin     *float64 `json:"gross_margin"`
	EBITDAMargin    *float64 `json:"ebitda_margin"`
	ROE             *float64 `json:"roe"`
	ROA             *float64 `json:"roa"`
	ROIC            *float64 `json:"roic"`

	DebtToEquity     *float64 `json:"debt_to_equity"`
	CurrentRatio     *float64 `json:"current_ratio"`
	QuickRatio       *float64 `json:"quick_ratio"`
	InterestCoverage *float64 `json:"interest_coverage"`
	Cash             *float64 `json:"cash"`
	WorkingCapital   *float64 `json:"working_capital"`

	DividendYield *float64 `json:"dividend_yield"`
	Beta          *float64 `json:"beta"`
	Price52wHigh  *float64 `json:"price_52w_high"`
	Price52wLow   *float64 `json:"price_52w_low"`
	CurrentPrice  *float64 `json:"current_price"`
	AvgVolume     *float64 `json:"avg_volume"`
	RevenueGrowth *float64 `json:"revenue_growth"`
	FreeCashFlow  *float64 `json:"free_cash_flow"`
}

// StockSummary is the persisted one-row-per-ticker record.
type StockSummary struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Metrics
	NextEarningsDate *time.Time `json:"next_earnings_date"`
	Source           string     `json:"-"`
	FetchedAt        time.Time  `json:"-"`
}

// EarningsRecord is one persisted quarterly row.
type EarningsRecord struct {
	Ticker       string    `json:"-"`
	FiscalDate   time.Time `json:"fiscal_date"`
	Period       string    `json:"period"`
	ReportedEPS  *float64  `json:"reported_eps"`
	EstimatedEPS *float64  `json:"estimated_eps"`
	SurprisePct  *float64  `json:"surprise_pct"`
	Revenue      *float64  `json:"revenue"`
	FreeCashFlow *float64  `json:"free_cash_flow"`
	PERatio      *float64  `json:"pe_ratio"`
	Price        *float64  `json:"price"`
}

// Snapshot is a summary with its earnings history as read back from the store.
type Snapshot struct {
	Summary  StockSummary
	Earnings []EarningsRecord
	// AgeHours is computed at read time from Summary.FetchedAt.
	AgeHours float64
}

// EarningsLine is one quarter as produced by an adapter, before persistence.
type EarningsLine struct {
	FiscalDate string
	// PeriodEnd is the quarter end date when the provider reports it separately
	// from FiscalDate. Used only for cross-provider matching.
	PeriodEnd    string
	Period       string
	ReportedEPS  *float64
	EstimatedEPS *float64
	SurprisePct  *float64
	Revenue      *float64
	FreeCashFlow *float64
	PERatio      *float64
	Price        *float64
}

// EstimateLine is one quarter of analyst data from a supplemental provider.
type EstimateLine struct {
	FiscalDate   string
	ReportedEPS  *float64
	EstimatedEPS *float64
	SurprisePct  *float64
}

// ProviderPayload is the provider-agnostic shape every fundamentals adapter returns.
type ProviderPayload struct {
	Ticker string
	Name   string
	Metrics
	NextEarningsDate *time.Time
	Earnings         []EarningsLine
	Source           string
}

// PriceBar is one daily OHLCV bar.
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// StockResponse is the JSON document served for a ticker.
type StockResponse struct {
	Ticker        string           `json:"ticker"`
	Name          string           `json:"name"`
	Summary       StockSummary     `json:"summary"`
	Earnings      []EarningsRecord `json:"earnings"`
	Source        string           `json:"source"`
	CachedAt      *time.Time       `json:"cached_at"`
	Warning       string           `json:"warning,omitempty"`
	CacheAgeHours *float64         `json:"cache_age_hours,omitempty"`
}

// SearchResult is one catalog match.
type SearchResult struct {
	Ticker string `json:"ticker"`
	Name   string `json:"name"`
	Sector string `json:"sector"`
}

// Float returns a pointer to v.
func Float(v float64) *float64 {
	return &v
}
