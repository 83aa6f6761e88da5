package earnings

import (
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/mauv0809/stockcache/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var f = models.Float

func TestMergePrecedence(t *testing.T) {
	primary := []models.EarningsLine{{FiscalDate: "2024-10-31", Period: "Q4", ReportedEPS: f(1.50), SurprisePct: f(1)}}
	supplemental := []models.EstimateLine{{FiscalDate: "2024-10-31", ReportedEPS: f(1.45), EstimatedEPS: f(1.40), SurprisePct: f(7.1)}}

	merged := Merge(primary, supplemental)
	require.Len(t, merged, 1)
	assert.Equal(t, 1.50, *merged[0].ReportedEPS, "actuals stay with the primary")
	assert.Equal(t, 1.40, *merged[0].EstimatedEPS, "filled in")
	assert.Equal(t, 7.1, *merged[0].SurprisePct, "overwritten")

	assert.Equal(t, 1.0, *primary[0].SurprisePct, "input untouched")
	assert.Nil(t, primary[0].EstimatedEPS)
}

func TestMergeKeepsExistingEstimate(t *testing.T) {
	primary := []models.EarningsLine{{FiscalDate: "2024-10-31", EstimatedEPS: f(1.2)}}
	supplemental := []models.EstimateLine{{FiscalDate: "2024-10-31", EstimatedEPS: f(1.4)}}

	merged := Merge(primary, supplemental)
	assert.Equal(t, 1.2, *merged[0].EstimatedEPS)
	assert.Nil(t, merged[0].SurprisePct, "absent supplemental surprise leaves it unset")
}

func TestMergeFillsMissingActual(t *testing.T) {
	primary := []models.EarningsLine{{FiscalDate: "2024-10-31"}}
	supplemental := []models.EstimateLine{{FiscalDate: "2024-10-31", ReportedEPS: f(1.45)}}

	assert.Equal(t, 1.45, *Merge(primary, supplemental)[0].ReportedEPS)
}

func TestMergeMatchesPeriodEnd(t *testing.T) {
	primary := []models.EarningsLine{
		{FiscalDate: "2024-11-01", PeriodEnd: "2024-09-28"},
		{FiscalDate: "2024-08-02", PeriodEnd: "2024-06-29"},
	}
	supplemental := []models.EstimateLine{
		{FiscalDate: "2024-09-28", EstimatedEPS: f(1.6)},
		{FiscalDate: "2024-03-31", EstimatedEPS: f(1.5)},
	}

	merged := Merge(primary, supplemental)
	assert.Equal(t, 1.6, *merged[0].EstimatedEPS)
	assert.Nil(t, merged[1].EstimatedEPS, "no estimate for that quarter")
}

func TestMergeWithoutSupplemental(t *testing.T) {
	primary := []models.EarningsLine{{FiscalDate: "2024-10-31", ReportedEPS: f(1)}}
	assert.Equal(t, primary, Merge(primary, nil))
	assert.Equal(t, primary, Merge(primary, []models.EstimateLine{}))
	assert.Empty(t, Merge(nil, []models.EstimateLine{{FiscalDate: "2024-10-31"}}))
}

func optionalFloat() gopter.Gen {
	return gen.PtrOf(gen.Float64Range(-10, 10))
}

// floatAt reads an optional float from combined generator values; PtrOf
// yields an untyped nil for the absent case.
func floatAt(v []any, i int) *float64 {
	p, _ := v[i].(*float64)
	return p
}

func dateGen() gopter.Gen {
	return gen.OneConstOf("2024-03-31", "2024-06-30", "2024-09-30", "2024-12-31")
}

func earningsLineGen() gopter.Gen {
	return gopter.CombineGens(dateGen(), optionalFloat(), optionalFloat(), optionalFloat()).
		Map(func(v []any) models.EarningsLine {
			return models.EarningsLine{
				FiscalDate:   v[0].(string),
				ReportedEPS:  floatAt(v, 1),
				EstimatedEPS: floatAt(v, 2),
				SurprisePct:  floatAt(v, 3),
			}
		})
}

func estimateLineGen() gopter.Gen {
	return gopter.CombineGens(dateGen(), optionalFloat(), optionalFloat(), optionalFloat()).
		Map(func(v []any) models.EstimateLine {
			return models.EstimateLine{
				FiscalDate:   v[0].(string),
				ReportedEPS:  floatAt(v, 1),
				EstimatedEPS: floatAt(v, 2),
				SurprisePct:  floatAt(v, 3),
			}
		})
}

func TestMergeProperties(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("reported EPS and estimates present in the primary survive", prop.ForAll(
		func(primary []models.EarningsLine, supplemental []models.EstimateLine) bool {
			merged := Merge(primary, supplemental)
			if len(merged) != len(primary) {
				return false
			}
			for i := range primary {
				if primary[i].FiscalDate != merged[i].FiscalDate {
					return false
				}
				if primary[i].ReportedEPS != nil && merged[i].ReportedEPS != primary[i].ReportedEPS {
					return false
				}
				if primary[i].EstimatedEPS != nil && merged[i].EstimatedEPS != primary[i].EstimatedEPS {
					return false
				}
			}
			return true
		},
		gen.SliceOf(earningsLineGen()),
		gen.SliceOf(estimateLineGen()),
	))

	properties.Property("merging is idempotent", prop.ForAll(
		func(primary []models.EarningsLine, supplemental []models.EstimateLine) bool {
			once := Merge(primary, supplemental)
			twice := Merge(once, supplemental)
			return assert.ObjectsAreEqual(once, twice)
		},
		gen.SliceOf(earningsLineGen()),
		gen.SliceOf(estimateLineGen()),
	))

	properties.TestingRun(t)
}
