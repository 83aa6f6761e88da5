package ingest

import (
	"testing"
	"time"

	"github.com/mauv0809/stockcache/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFloat(t *testing.T) {
	tests := []struct {
		in   string
		want *float64
	}{
		{"1.25", ptr(1.25)},
		{" 42 ", ptr(42)},
		{"-0.5", ptr(-0.5)},
		{"7.1%", ptr(7.1)},
		{"None", nil},
		{"-", nil},
		{"", nil},
		{"abc", nil},
	}
	for _, tt := range tests {
		got := ParseFloat(tt.in)
		if tt.want == nil {
			assert.Nil(t, got, tt.in)
			continue
		}
		require.NotNil(t, got, tt.in)
		assert.InDelta(t, *tt.want, *got, 1e-9, tt.in)
	}
}

func TestFloatValue(t *testing.T) {
	assert.Nil(t, FloatValue(nil))
	assert.Equal(t, 3.5, *FloatValue(3.5))
	assert.Equal(t, 2.0, *FloatValue("2"))
	assert.Nil(t, FloatValue("None"))
	assert.Equal(t, 5.0, *FloatValue(5))
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.23, *Round2(1.2345))
	assert.Equal(t, 1.24, *Round2(1.235))
	assert.Equal(t, -0.67, *Round2(-2.0 / 3.0))
	assert.Nil(t, Round2Ptr(nil))
	assert.Equal(t, 12.5, *Scale(ptr(0.125), 100))
	assert.Nil(t, Scale(nil, 100))
}

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 31, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-03-31", "2024-03-31T16:00:00Z", "2024-03-31 09:30:00"} {
		got, ok := ParseDate(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}
	_, ok := ParseDate("2024-Q1")
	assert.False(t, ok)
	_, ok = ParseDate("")
	assert.False(t, ok)
}

func ptr(v float64) *float64 { return &v }

func TestQuarterOf(t *testing.T) {
	assert.Equal(t, models.PeriodQ1, QuarterOf("2024-02-01"))
	assert.Equal(t, models.PeriodQ1, QuarterOf("2024-03-31"))
	assert.Equal(t, models.PeriodQ2, QuarterOf("2024-04-01"))
	assert.Equal(t, models.PeriodQ3, QuarterOf("2024-09-30"))
	assert.Equal(t, models.PeriodQ4, QuarterOf("2024-10-15"))
	assert.Equal(t, models.PeriodUnknown, QuarterOf("garbage"))
}
