// Package earnings combines a primary provider's earnings history with analyst
// data from a supplemental provider.
package earnings

import "github.com/mauv0809/stockcache/internal/models"

// Merge fills estimate fields of primary from supplemental lines that share a
// fiscal date, trying each line's FiscalDate and then its PeriodEnd.
//
// The primary provider is authoritative for actuals and the supplemental one
// for estimates:
//   - EstimatedEPS is copied only when the primary line has none.
//   - SurprisePct is overwritten whenever the supplemental value is present.
//   - ReportedEPS is copied only when the primary line has none.
//
// The input slice is not modified. With no supplemental lines primary is
// returned as is.
func Merge(primary []models.EarningsLine, supplemental []models.EstimateLine) []models.EarningsLine {
	if len(supplemental) == 0 {
		return primary
	}

	byDate := make(map[string]models.EstimateLine, len(supplemental))
	for _, s := range supplemental {
		if s.FiscalDate == "" {
			continue
		}
		if _, dup := byDate[s.FiscalDate]; !dup {
			byDate[s.FiscalDate] = s
		}
	}

	merged := make([]models.EarningsLine, len(primary))
	for i, line := range primary {
		merged[i] = line
		s, ok := match(byDate, line)
		if !ok {
			continue
		}
		if merged[i].EstimatedEPS == nil && s.EstimatedEPS != nil {
			merged[i].EstimatedEPS = s.EstimatedEPS
		}
		if s.SurprisePct != nil {
			merged[i].SurprisePct = s.SurprisePct
		}
		if merged[i].ReportedEPS == nil && s.ReportedEPS != nil {
			merged[i].ReportedEPS = s.ReportedEPS
		}
	}
	return merged
}

func match(byDate map[string]models.EstimateLine, line models.EarningsLine) (models.EstimateLine, bool) {
	for _, key := range []string{line.FiscalDate, line.PeriodEnd} {
		if key == "" {
			continue
		}
		if s, ok := byDate[key]; ok {
			return s, true
		}
	}
	return models.EstimateLine{}, false
}
