// Package catalog searches a fixed list of well-known tickers.
package catalog

import (
	"sort"
	"strings"

	"github.com/mauv0809/stockcache/internal/models"
)

const (
	// DefaultLimit applies when Search is called with a non-positive limit.
	DefaultLimit = 10
	// MaxLimit caps the number of results Search returns.
	MaxLimit = 50
)

type entry struct {
	ticker, name, sector string
}

var entries = []entry{
	{"AAPL", "Apple Inc.", "Technology"},
	{"MSFT", "Microsoft Corporation", "Technology"},
	{"GOOGL", "Alphabet Inc.", "Technology"},
	{"AMZN", "Amazon.com Inc.", "Consumer Discretionary"},
	{"NVDA", "NVIDIA Corporation", "Technology"},
	{"TSLA", "Tesla Inc.", "Consumer Discretionary"},
	{"META", "Meta Platforms Inc.", "Technology"},
	{"NFLX", "Netflix Inc.", "Communication Services"},
	{"JPM", "JPMorgan Chase & Co.", "Financials"},
	{"V", "Visa Inc.", "Financials"},
	{"JNJ", "Johnson & Johnson", "Healthcare"},
	{"WMT", "Walmart Inc.", "Consumer Staples"},
	{"PG", "Procter & Gamble Co.", "Consumer Staples"},
	{"DIS", "Walt Disney Co.", "Communication Services"},
	{"MA", "Mastercard Inc.", "Financials"},
	{"HD", "Home Depot Inc.", "Consumer Discretionary"},
	{"BAC", "Bank of America Corp.", "Financials"},
	{"ABBV", "AbbVie Inc.", "Healthcare"},
	{"PFE", "Pfizer Inc.", "Healthcare"},
	{"KO", "Coca-Cola Co.", "Consumer Staples"},
	{"PEP", "PepsiCo Inc.", "Consumer Staples"},
	{"MRK", "Merck & Co.", "Healthcare"},
	{"CSCO", "Cisco Systems Inc.", "Technology"},
	{"TMO", "Thermo Fisher Scientific Inc.", "Healthcare"},
	{"ACN", "Accenture plc", "Technology"},
	{"ADBE", "Adobe Inc.", "Technology"},
	{"CRM", "Salesforce Inc.", "Technology"},
	{"NKE", "Nike Inc.", "Consumer Discretionary"},
	{"ABT", "Abbott Laboratories", "Healthcare"},
	{"CMCSA", "Comcast Corporation", "Communication Services"},
	{"XOM", "Exxon Mobil Corporation", "Energy"},
	{"CVX", "Chevron Corporation", "Energy"},
	{"LLY", "Eli Lilly and Company", "Healthcare"},
	{"AVGO", "Broadcom Inc.", "Technology"},
	{"TXN", "Texas Instruments Inc.", "Technology"},
	{"COST", "Costco Wholesale Corporation", "Consumer Staples"},
	{"QCOM", "Qualcomm Inc.", "Technology"},
	{"NEE", "NextEra Energy Inc.", "Utilities"},
	{"UPS", "United Parcel Service Inc.", "Industrials"},
	{"PM", "Philip Morris International Inc.", "Consumer Staples"},
	{"RTX", "Raytheon Technologies Corporation", "Industrials"},
	{"HON", "Honeywell International Inc.", "Industrials"},
	{"UNH", "UnitedHealth Group Inc.", "Healthcare"},
	{"BMY", "Bristol Myers Squibb Co.", "Healthcare"},
	{"AMD", "Advanced Micro Devices Inc.", "Technology"},
	{"INTC", "Intel Corporation", "Technology"},
	{"SPGI", "S&P Global Inc.", "Financials"},
	{"IBM", "International Business Machines", "Technology"},
	{"SBUX", "Starbucks Corporation", "Consumer Discretionary"},
	{"GS", "Goldman Sachs Group Inc.", "Financials"},
	{"MS", "Morgan Stanley", "Financials"},
	{"BLK", "BlackRock Inc.", "Financials"},
	{"PLTR", "Palantir Technologies Inc.", "Technology"},
	{"UBER", "Uber Technologies Inc.", "Technology"},
	{"LYFT", "Lyft Inc.", "Technology"},
	{"SNOW", "Snowflake Inc.", "Technology"},
	{"ZM", "Zoom Video Communications Inc.", "Technology"},
	{"SHOP", "Shopify Inc.", "Technology"},
	{"SQ", "Block Inc.", "Technology"},
	{"PYPL", "PayPal Holdings Inc.", "Technology"},
	{"ROKU", "Roku Inc.", "Technology"},
	{"TWLO", "Twilio Inc.", "Technology"},
	{"DDOG", "Datadog Inc.", "Technology"},
	{"NET", "Cloudflare Inc.", "Technology"},
	{"CRWD", "CrowdStrike Holdings Inc.", "Technology"},
	{"OKTA", "Okta Inc.", "Technology"},
	{"MDB", "MongoDB Inc.", "Technology"},
}

// Search returns catalog entries whose ticker or name contains q,
// case-insensitively. An exact ticker match ranks first, then ticker prefix
// matches, then the rest, each group in ticker order. A blank query matches
// nothing. limit is clamped to [1, MaxLimit]; zero means DefaultLimit.
func Search(q string, limit int) []models.SearchResult {
	q = strings.ToUpper(strings.TrimSpace(q))
	if q == "" {
		return []models.SearchResult{}
	}
	switch {
	case limit <= 0:
		limit = DefaultLimit
	case limit > MaxLimit:
		limit = MaxLimit
	}

	matches := make([]entry, 0, limit)
	for _, e := range entries {
		if strings.Contains(e.ticker, q) || strings.Contains(strings.ToUpper(e.name), q) {
			matches = append(matches, e)
		}
	}

	rank := func(e entry) int {
		switch {
		case e.ticker == q:
			return 0
		case strings.HasPrefix(e.ticker, q):
			return 1
		default:
			return 2
		}
	}
	sort.Slice(matches, func(i, j int) bool {
		ri, rj := rank(matches[i]), rank(matches[j])
		if ri != rj {
			return ri < rj
		}
		return matches[i].ticker < matches[j].ticker
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}
	out := make([]models.SearchResult, len(matches))
	for i, e := range matches {
		out[i] = models.SearchResult{Ticker: e.ticker, Name: e.name, Sector: e.sector}
	}
	return out
}
