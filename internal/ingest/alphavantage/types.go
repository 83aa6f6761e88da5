package alphavantage

import (
	"fmt"
	"strings"

	"github.com/mauv0809/stockcache/internal/ingest"
)

// notice is the set of advisory keys the API returns with a 200 status in
// place of data.
type notice struct {
	Note         string `json:"Note"`
	Information  string `json:"Information"`
	ErrorMessage string `json:"Error Message"`
}

func (n notice) err(function, ticker string) error {
	switch {
	case n.Note != "":
		return fmt.Errorf("%s %s %s: %s: %w", Name, function, ticker, truncate(n.Note), ingest.ErrRateLimited)
	case n.Information != "":
		return fmt.Errorf("%s %s %s: %s: %w", Name, function, ticker, truncate(n.Information), ingest.ErrRateLimited)
	case n.ErrorMessage != "":
		return fmt.Errorf("%s %s %s: %s: %w", Name, function, ticker, truncate(n.ErrorMessage), ingest.ErrNotFound)
	}
	return nil
}

func truncate(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 120 {
		return s[:120]
	}
	return s
}

// overview is function=OVERVIEW. Every value arrives as a string.
type overview struct {
	notice
	Symbol                    string `json:"Symbol"`
	Name                      string `json:"Name"`
	Sector                    string `json:"Sector"`
	MarketCapitalization      string `json:"MarketCapitalization"`
	EBITDA                    string `json:"EBITDA"`
	PERatio                   string `json:"PERatio"`
	PriceToSalesRatioTTM      string `json:"PriceToSalesRatioTTM"`
	PriceToBookRatio          string `json:"PriceToBookRatio"`
	EVToEBITDA                string `json:"EVToEBITDA"`
	SharesOutstanding         string `json:"SharesOutstanding"`
	ProfitMargin              string `json:"ProfitMargin"`
	OperatingMarginTTM        string `json:"OperatingMarginTTM"`
	ReturnOnAssetsTTM         string `json:"ReturnOnAssetsTTM"`
	ReturnOnEquityTTM         string `json:"ReturnOnEquityTTM"`
	RevenueTTM                string `json:"RevenueTTM"`
	GrossProfitTTM            string `json:"GrossProfitTTM"`
	QuarterlyRevenueGrowthYOY string `json:"QuarterlyRevenueGrowthYOY"`
	DebtToEquityRatio         string `json:"DebtToEquityRatio"`
	DividendYield             string `json:"DividendYield"`
	Beta                      string `json:"Beta"`
	High52                    string `json:"52WeekHigh"`
	Low52                     string `json:"52WeekLow"`
}

// globalQuote is function=GLOBAL_QUOTE.
type globalQuote struct {
	notice
	Quote struct {
		Symbol string `json:"01. symbol"`
		Price  string `json:"05. price"`
		Volume string `json:"06. volume"`
	} `json:"Global Quote"`
}

// earningsResponse is function=EARNINGS.
type earningsResponse struct {
	notice
	Symbol    string             `json:"symbol"`
	Quarterly []quarterlyEarning `json:"quarterlyEarnings"`
}

type quarterlyEarning struct {
	FiscalDateEnding   string `json:"fiscalDateEnding"`
	ReportedDate       string `json:"reportedDate"`
	ReportedEPS        string `json:"reportedEPS"`
	EstimatedEPS       string `json:"estimatedEPS"`
	SurprisePercentage string `json:"surprisePercentage"`
}
