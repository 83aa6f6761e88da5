package polygon

import (
	"math"

	"github.com/mauv0809/stockcache/internal/ingest"
	"github.com/mauv0809/stockcache/internal/models"
)

const (
	incomeStatement   = "income_statement"
	balanceSheet      = "balance_sheet"
	cashFlowStatement = "cash_flow_statement"

	earningsQuarters = 8
)

type concept = ingest.Candidates[*Filing]

func item(statement, name string) ingest.Accessor[*Filing] {
	return func(f *Filing) *float64 {
		if f == nil {
			return nil
		}
		return f.Financials[statement][name].Value
	}
}

func abs(c concept) ingest.Accessor[*Filing] {
	return func(f *Filing) *float64 {
		v := c.Lookup(f)
		if v == nil {
			return nil
		}
		a := math.Abs(*v)
		return &a
	}
}

// Line item concepts, each an ordered list of candidate fields.
var (
	revenue = concept{
		item(incomeStatement, "revenues"),
		item(incomeStatement, "total_revenue"),
		item(incomeStatement, "revenue"),
	}
	costOfRevenue = concept{
		item(incomeStatement, "cost_of_revenue"),
		item(incomeStatement, "cost_of_revenue_goods"),
	}
	grossProfit = concept{
		item(incomeStatement, "gross_profit"),
		ingest.Difference(revenue, costOfRevenue),
	}
	operatingIncome = concept{
		item(incomeStatement, "operating_income_loss"),
		item(incomeStatement, "operating_income"),
	}
	netIncome = concept{
		item(incomeStatement, "net_income_loss"),
		item(incomeStatement, "net_income_loss_attributable_to_parent"),
		item(incomeStatement, "net_income"),
	}
	depreciation = concept{
		item(incomeStatement, "depreciation_and_amortization"),
		item(cashFlowStatement, "depreciation_and_amortization"),
	}
	ebitda = concept{
		item(incomeStatement, "ebitda"),
		ingest.Sum(operatingIncome, depreciation),
	}
	interestExpense = concept{
		abs(concept{
			item(incomeStatement, "interest_expense_operating"),
			item(incomeStatement, "interest_expense"),
			item(incomeStatement, "interest_and_debt_expense"),
		}),
	}
	averageShares = concept{
		item(incomeStatement, "basic_average_shares"),
		item(incomeStatement, "diluted_average_shares"),
	}
	eps = concept{
		item(incomeStatement, "basic_earnings_per_share"),
		item(incomeStatement, "diluted_earnings_per_share"),
		ingest.Quotient(netIncome, averageShares),
	}

	equity = concept{
		item(balanceSheet, "equity_attributable_to_parent"),
		item(balanceSheet, "equity"),
		item(balanceSheet, "stockholders_equity"),
	}
	totalAssets = concept{
		item(balanceSheet, "assets"),
		item(balanceSheet, "total_assets"),
	}
	totalLiabilities = concept{
		item(balanceSheet, "liabilities"),
		item(balanceSheet, "total_liabilities"),
	}
	currentAssets = concept{
		item(balanceSheet, "current_assets"),
		item(balanceSheet, "total_current_assets"),
	}
	currentLiabilities = concept{
		item(balanceSheet, "current_liabilities"),
		item(balanceSheet, "total_current_liabilities"),
	}
	inventory = concept{
		item(balanceSheet, "inventory"),
	}
	cash = concept{
		item(balanceSheet, "cash"),
		item(balanceSheet, "cash_and_cash_equivalents"),
		item(balanceSheet, "cash_and_equivalents"),
	}
	debt = concept{
		item(balanceSheet, "long_term_debt"),
		item(balanceSheet, "total_debt"),
		item(balanceSheet, "debt"),
	}

	operatingCashFlow = concept{
		item(cashFlowStatement, "net_cash_flow_from_operating_activities"),
		item(cashFlowStatement, "net_cash_flow_from_operating_activities_continuing"),
	}
	capex = concept{
		abs(concept{
			item(cashFlowStatement, "capital_expenditure"),
			item(cashFlowStatement, "payments_for_property_plant_and_equipment"),
		}),
	}
	freeCashFlow = concept{
		item(cashFlowStatement, "free_cash_flow"),
		ingest.Difference(operatingCashFlow, capex),
		operatingCashFlow.Lookup,
	}
)

// fiscalDate prefers the filing date, then the period end date.
func fiscalDate(f *Filing) string {
	if f.FilingDate != "" {
		return f.FilingDate
	}
	return f.EndDate
}

// buildEarnings turns the most recent filings (newest first) into earnings
// lines. This provider has no analyst estimates, so estimates, surprise and the
// point-in-time P/E stay unset.
func buildEarnings(filings []Filing, bars []models.PriceBar) []models.EarningsLine {
	lines := make([]models.EarningsLine, 0, min(len(filings), earningsQuarters))
	for i := range filings {
		if len(lines) == earningsQuarters {
			break
		}
		f := &filings[i]
		date := fiscalDate(f)
		if date == "" {
			continue
		}
		lines = append(lines, models.EarningsLine{
			FiscalDate:   date,
			PeriodEnd:    f.EndDate,
			Period:       ingest.QuarterOf(date),
			ReportedEPS:  ingest.Round2Ptr(eps.Lookup(f)),
			Revenue:      revenue.Lookup(f),
			FreeCashFlow: freeCashFlow.Lookup(f),
			Price:        closeOnOrBefore(bars, date),
		})
	}
	return lines
}

// closeOnOrBefore returns the close of the last bar dated on or before date.
// Bars are in ascending date order.
func closeOnOrBefore(bars []models.PriceBar, date string) *float64 {
	t, ok := ingest.ParseDate(date)
	if !ok || len(bars) == 0 || t.Before(bars[0].Date) {
		return nil
	}
	for i := len(bars) - 1; i >= 0; i-- {
		if !bars[i].Date.After(t) {
			return ingest.Round2(bars[i].Close)
		}
	}
	return nil
}
