package models

import (
	"encoding/json"
)

// Dates are served as plain calendar dates rather than RFC 3339 timestamps.

func (r EarningsRecord) MarshalJSON() ([]byte, error) {
	type alias EarningsRecord
	return json.Marshal(struct {
		alias
		FiscalDate string `json:"fiscal_date"`
	}{alias(r), r.FiscalDate.Format(DateLayout)})
}

func (s StockSummary) MarshalJSON() ([]byte, error) {
	type alias StockSummary
	var next *string
	if s.NextEarningsDate != nil {
		d := s.NextEarningsDate.Format(DateLayout)
		next = &d
	}
	return json.Marshal(struct {
		alias
		NextEarningsDate *string `json:"next_earnings_date"`
	}{alias(s), next})
}

func (b PriceBar) MarshalJSON() ([]byte, error) {
	type alias PriceBar
	return json.Marshal(struct {
		alias
		Date string `json:"date"`
	}{alias(b), b.Date.Format(DateLayout)})
}
