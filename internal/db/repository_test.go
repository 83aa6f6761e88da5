package db

import (
	"context"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/mauv0809/stockcache/internal/models"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestRepository connects to TEST_DATABASE_URL, skipping when it is unset.
func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	url := os.Getenv("TEST_DATABASE_URL")
	if url == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	require.NoError(t, RunMigrations(url, zerolog.Nop()))

	ctx := context.Background()
	pool, err := Connect(ctx, url)
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	return NewRepository(pool)
}

func testTicker(t *testing.T, repo *Repository) string {
	t.Helper()
	ticker := fmt.Sprintf("T%d", time.Now().UnixNano()%1_000_000_000)
	t.Cleanup(func() {
		ctx := context.Background()
		repo.pool.Exec(ctx, "DELETE FROM earnings WHERE ticker = $1", ticker)
		repo.pool.Exec(ctx, "DELETE FROM stock_summaries WHERE ticker = $1", ticker)
	})
	return ticker
}

func payload(ticker string, quarters int) *models.ProviderPayload {
	p := &models.ProviderPayload{
		Ticker: ticker,
		Name:   "Test Corp",
		Source: "Polygon.io",
		Metrics: models.Metrics{
			MarketCap:    models.Float(1e9),
			PERatio:      models.Float(21.5),
			CurrentPrice: models.Float(42),
		},
	}
	start := time.Date(2024, 12, 31, 0, 0, 0, 0, time.UTC)
	for i := 0; i < quarters; i++ {
		p.Earnings = append(p.Earnings, models.EarningsLine{
			FiscalDate:  start.AddDate(0, -3*i, 0).Format(models.DateLayout),
			Period:      "Q4",
			ReportedEPS: models.Float(float64(i) + 0.5),
		})
	}
	return p
}

func TestWriteAndRead(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	ticker := testTicker(t, repo)

	snap, err := repo.Write(ctx, payload(ticker, 3))
	require.NoError(t, err)
	assert.Equal(t, "Test Corp", snap.Summary.Name)
	assert.Equal(t, "Polygon.io", snap.Summary.Source)
	assert.Equal(t, 21.5, *snap.Summary.PERatio)
	assert.Nil(t, snap.Summary.ROE)
	require.Len(t, snap.Earnings, 3)
	assert.True(t, snap.Earnings[0].FiscalDate.After(snap.Earnings[1].FiscalDate), "newest first")

	fresh, err := repo.ReadFresh(ctx, ticker)
	require.NoError(t, err)
	require.NotNil(t, fresh)
	assert.Equal(t, snap.Summary.FetchedAt.Unix(), fresh.Summary.FetchedAt.Unix())

	missing, err := repo.ReadAny(ctx, "NOPE0")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestReadFreshExpires(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	ticker := testTicker(t, repo)

	written := time.Now()
	repo.now = func() time.Time { return written }
	_, err := repo.Write(ctx, payload(ticker, 1))
	require.NoError(t, err)

	repo.now = func() time.Time { return written.Add(RecordTTL() + time.Minute) }
	fresh, err := repo.ReadFresh(ctx, ticker)
	require.NoError(t, err)
	assert.Nil(t, fresh)

	stale, err := repo.ReadAny(ctx, ticker)
	require.NoError(t, err)
	require.NotNil(t, stale)
	assert.InDelta(t, 24.0, stale.AgeHours, 0.1)
}

func TestWriteReplacesEarnings(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	ticker := testTicker(t, repo)

	_, err := repo.Write(ctx, payload(ticker, 8))
	require.NoError(t, err)

	snap, err := repo.Write(ctx, payload(ticker, 4))
	require.NoError(t, err)
	assert.Len(t, snap.Earnings, 4)

	var n int
	require.NoError(t, repo.pool.QueryRow(ctx, "SELECT COUNT(*) FROM earnings WHERE ticker = $1", ticker).Scan(&n))
	assert.Equal(t, 4, n)
}

func TestConcurrentWrites(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()
	ticker := testTicker(t, repo)

	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = repo.Write(ctx, payload(ticker, 4+i))
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		assert.NoError(t, err)
	}

	var summaries, earnings int
	require.NoError(t, repo.pool.QueryRow(ctx, "SELECT COUNT(*) FROM stock_summaries WHERE ticker = $1", ticker).Scan(&summaries))
	require.NoError(t, repo.pool.QueryRow(ctx, "SELECT COUNT(*) FROM earnings WHERE ticker = $1", ticker).Scan(&earnings))
	assert.Equal(t, 1, summaries)
	assert.Contains(t, []int{4, 5}, earnings, "one writer's full set")
}
