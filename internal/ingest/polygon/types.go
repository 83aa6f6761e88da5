package polygon

// tickerDetailsResponse is /v3/reference/tickers/{ticker}.
type tickerDetailsResponse struct {
	Status  string         `json:"status"`
	Results *tickerDetails `json:"results"`
}

type tickerDetails struct {
	Ticker                      string   `json:"ticker"`
	Name                        string   `json:"name"`
	MarketCap                   *float64 `json:"market_cap"`
	ShareClassSharesOutstanding *float64 `json:"share_class_shares_outstanding"`
	WeightedSharesOutstanding   *float64 `json:"weighted_shares_outstanding"`
}

// aggsResponse is /v2/aggs/ticker/{ticker}/prev and /range.
type aggsResponse struct {
	Status       string `json:"status"`
	ResultsCount int    `json:"resultsCount"`
	Results      []agg  `json:"results"`
}

type agg struct {
	Open      *float64 `json:"o"`
	High      *float64 `json:"h"`
	Low       *float64 `json:"l"`
	Close     *float64 `json:"c"`
	Volume    *float64 `json:"v"`
	Timestamp int64    `json:"t"` // unix ms
}

// financialsResponse is /vX/reference/financials.
type financialsResponse struct {
	Status  string   `json:"status"`
	Results []Filing `json:"results"`
}

// Filing is one quarterly financial statement set.
type Filing struct {
	StartDate    string `json:"start_date"`
	EndDate      string `json:"end_date"`
	FilingDate   string `json:"filing_date"`
	FiscalPeriod string `json:"fiscal_period"`
	FiscalYear   string `json:"fiscal_year"`
	// Financials maps statement name to line item name to data point.
	Financials map[string]map[string]DataPoint `json:"financials"`
}

// DataPoint is one line item value.
type DataPoint struct {
	Value *float64 `json:"value"`
	Unit  string   `json:"unit"`
	Label string   `json:"label"`
}

// dividendsResponse is /v3/reference/dividends.
type dividendsResponse struct {
	Results []dividend `json:"results"`
}

type dividend struct {
	CashAmount     *float64 `json:"cash_amount"`
	ExDividendDate string   `json:"ex_dividend_date"`
}
