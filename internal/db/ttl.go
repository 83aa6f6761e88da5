package db

import "time"

// Freshness windows per data category.
const (
	PriceTTL       = time.Minute
	FinancialsTTL  = 24 * time.Hour
	CompanyInfoTTL = 24 * time.Hour
)

// RecordTTL is the whole-record freshness window: the longest category TTL.
// A snapshot is refreshed as a unit, never field by field.
func RecordTTL() time.Duration {
	return max(PriceTTL, FinancialsTTL, CompanyInfoTTL)
}

func isFresh(fetchedAt, now time.Time, ttl time.Duration) bool {
	return now.Sub(fetchedAt) < ttl
}

func ageHours(fetchedAt, now time.Time) float64 {
	return now.Sub(fetchedAt).Hours()
}
