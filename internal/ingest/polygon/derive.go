package polygon

import (
	"time"

	"github.com/mauv0809/stockcache/internal/ingest"
	"github.com/mauv0809/stockcache/internal/models"
)

// Derived metrics. Every function returns nil instead of failing when an input is
// missing or a denominator is zero or negative. Results are rounded to 2 dp.

const (
	ttmQuarters        = 4
	ttmMinPositive     = 3
	growthLookback     = 4
	dividendWindowDays = 365
)

// TrailingPE divides price by the sum of the most recent four quarterly EPS
// values. It needs at least three positive quarters so a company too young to
// have reported four can still get a P/E.
func TrailingPE(price *float64, quarterlyEPS []*float64) *float64 {
	if price == nil || *price <= 0 {
		return nil
	}
	if len(quarterlyEPS) > ttmQuarters {
		quarterlyEPS = quarterlyEPS[:ttmQuarters]
	}
	var sum float64
	positive := 0
	for _, v := range quarterlyEPS {
		if v == nil {
			continue
		}
		sum += *v
		if *v > 0 {
			positive++
		}
	}
	if positive < ttmMinPositive || sum <= 0 {
		return nil
	}
	return ingest.Round2(*price / sum)
}

// RevenueGrowth is the year-over-year change between the latest quarter and the
// same quarter a year earlier, in percent. revenues is newest first.
func RevenueGrowth(revenues []*float64) *float64 {
	if len(revenues) <= growthLookback {
		return nil
	}
	cur, prev := revenues[0], revenues[growthLookback]
	if cur == nil || prev == nil || *prev <= 0 {
		return nil
	}
	return ingest.Round2((*cur - *prev) / *prev * 100)
}

// Percent returns part / whole * 100 for a positive whole.
func Percent(part, whole *float64) *float64 {
	if part == nil || whole == nil || *whole <= 0 {
		return nil
	}
	return ingest.Round2(*part / *whole * 100)
}

// Ratio returns a / b for a positive b.
func Ratio(a, b *float64) *float64 {
	if a == nil || b == nil || *b <= 0 {
		return nil
	}
	return ingest.Round2(*a / *b)
}

// ROIC is operating income over invested capital (equity + debt - cash), in
// percent. Missing debt or cash count as zero; equity is required.
func ROIC(operatingIncome, equity, debt, cash *float64) *float64 {
	if operatingIncome == nil || equity == nil {
		return nil
	}
	invested := *equity + value(debt) - value(cash)
	return Percent(operatingIncome, &invested)
}

// QuickRatio is (current assets - inventory) / current liabilities.
func QuickRatio(currentAssets, inventory, currentLiabilities *float64) *float64 {
	if currentAssets == nil {
		return nil
	}
	liquid := *currentAssets - value(inventory)
	return Ratio(&liquid, currentLiabilities)
}

// WorkingCapital is current assets - current liabilities.
func WorkingCapital(currentAssets, currentLiabilities *float64) *float64 {
	if currentAssets == nil || currentLiabilities == nil {
		return nil
	}
	return ingest.Round2(*currentAssets - *currentLiabilities)
}

// MarketCap prefers the reported figure, else shares * price.
func MarketCap(reported, shares, price *float64) *float64 {
	if reported != nil && *reported > 0 {
		return ingest.Round2(*reported)
	}
	if shares == nil || price == nil || *shares <= 0 || *price <= 0 {
		return nil
	}
	return ingest.Round2(*shares * *price)
}

// EnterpriseValue is market cap + debt - cash.
func EnterpriseValue(marketCap, debt, cash *float64) *float64 {
	if marketCap == nil {
		return nil
	}
	return ingest.Round2(*marketCap + value(debt) - value(cash))
}

// TrailingSum adds the first four values. All four must be present.
func TrailingSum(values []*float64) *float64 {
	if len(values) < ttmQuarters {
		return nil
	}
	var sum float64
	for _, v := range values[:ttmQuarters] {
		if v == nil {
			return nil
		}
		sum += *v
	}
	return &sum
}

// DividendYield is cash dividends with an ex-date in the trailing year over
// price, in percent.
func DividendYield(dividends []dividend, price *float64, now time.Time) *float64 {
	if len(dividends) == 0 {
		return nil
	}
	cutoff := now.AddDate(0, 0, -dividendWindowDays)
	var total float64
	for _, d := range dividends {
		ex, ok := ingest.ParseDate(d.ExDividendDate)
		if !ok || d.CashAmount == nil || ex.Before(cutoff) || ex.After(now) {
			continue
		}
		total += *d.CashAmount
	}
	if total == 0 {
		return nil
	}
	return Percent(&total, price)
}

// priceRange returns the 52-week high and low and the mean daily volume.
func priceRange(bars []models.PriceBar) (high, low, avgVolume *float64) {
	if len(bars) == 0 {
		return nil, nil, nil
	}
	h, l := bars[0].High, bars[0].Low
	var vol float64
	for _, b := range bars {
		if b.High > h {
			h = b.High
		}
		if b.Low > 0 && (l <= 0 || b.Low < l) {
			l = b.Low
		}
		vol += b.Volume
	}
	high = ingest.Round2(h)
	if l > 0 {
		low = ingest.Round2(l)
	}
	avgVolume = ingest.Round2(vol / float64(len(bars)))
	return high, low, avgVolume
}

func value(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}

// deriveMetrics assembles the summary metrics from the provider's raw inputs.
// filings is newest first.
func deriveMetrics(details *tickerDetails, price *float64, filings []Filing, bars []models.PriceBar, dividends []dividend, now time.Time) models.Metrics {
	var latest *Filing
	if len(filings) > 0 {
		latest = &filings[0]
	}

	quarterEPS := make([]*float64, 0, ttmQuarters)
	revenues := make([]*float64, 0, len(filings))
	ebitdas := make([]*float64, 0, ttmQuarters)
	for i := range filings {
		f := &filings[i]
		revenues = append(revenues, revenue.Lookup(f))
		if i < ttmQuarters {
			quarterEPS = append(quarterEPS, eps.Lookup(f))
			ebitdas = append(ebitdas, ebitda.Lookup(f))
		}
	}

	shares := concept{
		func(*Filing) *float64 { return details.ShareClassSharesOutstanding },
		func(*Filing) *float64 { return details.WeightedSharesOutstanding },
		averageShares.Lookup,
	}.Lookup(latest)

	rev := revenue.Lookup(latest)
	eq := equity.Lookup(latest)
	dbt := debt.Lookup(latest)
	csh := cash.Lookup(latest)
	opInc := operatingIncome.Lookup(latest)
	ca := currentAssets.Lookup(latest)
	cl := currentLiabilities.Lookup(latest)

	mcap := MarketCap(details.MarketCap, shares, price)
	ev := EnterpriseValue(mcap, dbt, csh)

	high, low, avgVol := priceRange(bars)

	m := models.Metrics{
		MarketCap:         mcap,
		PERatio:           TrailingPE(price, quarterEPS),
		PSRatio:           Ratio(mcap, TrailingSum(revenues)),
		PBRatio:           Ratio(mcap, eq),
		EVEBITDA:          Ratio(ev, TrailingSum(ebitdas)),
		EnterpriseValue:   ev,
		SharesOutstanding: ingest.Round2Ptr(shares),

		ProfitMargin:    Percent(netIncome.Lookup(latest), rev),
		OperatingMargin: Percent(opInc, rev),
		GrossMargin:     Percent(grossProfit.Lookup(latest), rev),
		EBITDAMargin:    Percent(ebitda.Lookup(latest), rev),
		ROE:             Percent(netIncome.Lookup(latest), eq),
		ROA:             Percent(netIncome.Lookup(latest), totalAssets.Lookup(latest)),
		ROIC:            ROIC(opInc, eq, dbt, csh),

		CurrentRatio:     Ratio(ca, cl),
		QuickRatio:       QuickRatio(ca, inventory.Lookup(latest), cl),
		InterestCoverage: Ratio(opInc, interestExpense.Lookup(latest)),
		Cash:             ingest.Round2Ptr(csh),
		WorkingCapital:   WorkingCapital(ca, cl),

		DividendYield: DividendYield(dividends, price, now),
		Price52wHigh:  high,
		Price52wLow:   low,
		CurrentPrice:  ingest.Round2Ptr(price),
		AvgVolume:     avgVol,
		RevenueGrowth: RevenueGrowth(revenues),
		FreeCashFlow:  ingest.Round2Ptr(freeCashFlow.Lookup(latest)),
	}

	if dbt != nil {
		m.DebtToEquity = Ratio(dbt, eq)
	} else {
		m.DebtToEquity = Ratio(totalLiabilities.Lookup(latest), eq)
	}
	return m
}
