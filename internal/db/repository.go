package db

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mauv0809/stockcache/internal/ingest"
	"github.com/mauv0809/stockcache/internal/models"
)

// Repository reads and writes cached stock snapshots.
type Repository struct {
	pool *pgxpool.Pool
	ttl  time.Duration
	now  func() time.Time
}

// NewRepository creates a new repository using the whole-record TTL.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool, ttl: RecordTTL(), now: time.Now}
}

var metricColumns = []string{
	"market_cap", "pe_ratio", "ps_ratio", "pb_ratio", "ev_ebitda", "enterprise_value", "shares_outstanding",
	"profit_margin", "operating_margin", "gross_margin", "ebitda_margin", "roe", "roa", "roic",
	"debt_to_equity", "current_ratio", "quick_ratio", "interest_coverage", "cash", "working_capital",
	"dividend_yield", "beta", "price_52w_high", "price_52w_low", "current_price", "avg_volume",
	"revenue_growth", "free_cash_flow",
}

// metricRefs returns pointers to m's fields in metricColumns order.
func metricRefs(m *models.Metrics) []**float64 {
	return []**float64{
		&m.MarketCap, &m.PERatio, &m.PSRatio, &m.PBRatio, &m.EVEBITDA, &m.EnterpriseValue, &m.SharesOutstanding,
		&m.ProfitMargin, &m.OperatingMargin, &m.GrossMargin, &m.EBITDAMargin, &m.ROE, &m.ROA, &m.ROIC,
		&m.DebtToEquity, &m.CurrentRatio, &m.QuickRatio, &m.InterestCoverage, &m.Cash, &m.WorkingCapital,
		&m.DividendYield, &m.Beta, &m.Price52wHigh, &m.Price52wLow, &m.CurrentPrice, &m.AvgVolume,
		&m.RevenueGrowth, &m.FreeCashFlow,
	}
}

var (
	selectSummarySQL = `SELECT name, source, next_earnings_date, fetched_at, ` +
		strings.Join(metricColumns, ", ") +
		` FROM stock_summaries WHERE ticker = $1`

	upsertSummarySQL = buildUpsertSummary()
)

func buildUpsertSummary() string {
	cols := append([]string{"ticker", "name", "source", "next_earnings_date", "fetched_at"}, metricColumns...)
	placeholders := make([]string, len(cols))
	updates := make([]string, 0, len(cols)-1)
	for i, col := range cols {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		if col != "ticker" {
			updates = append(updates, col+" = EXCLUDED."+col)
		}
	}
	return `INSERT INTO stock_summaries (` + strings.Join(cols, ", ") + `)
		VALUES (` + strings.Join(placeholders, ", ") + `)
		ON CONFLICT (ticker) DO UPDATE SET ` + strings.Join(updates, ", ")
}

const (
	selectEarningsSQL = `
		SELECT fiscal_date, period, reported_eps, estimated_eps, surprise_pct,
			revenue, free_cash_flow, pe_ratio, price
		FROM earnings
		WHERE ticker = $1
		ORDER BY fiscal_date DESC`

	insertEarningSQL = `
		INSERT INTO earnings (
			ticker, fiscal_date, period, reported_eps, estimated_eps, surprise_pct,
			revenue, free_cash_flow, pe_ratio, price, fetched_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`
)

// ReadFresh returns the cached snapshot for ticker when it is younger than the
// record TTL. It returns nil when nothing is cached or the record is stale.
func (r *Repository) ReadFresh(ctx context.Context, ticker string) (*models.Snapshot, error) {
	summary, err := r.readSummary(ctx, ticker)
	if err != nil || summary == nil {
		return nil, err
	}
	if !isFresh(summary.FetchedAt, r.now(), r.ttl) {
		return nil, nil
	}
	return r.withEarnings(ctx, summary)
}

// ReadAny returns the cached snapshot for ticker regardless of age, or nil when
// nothing is cached.
func (r *Repository) ReadAny(ctx context.Context, ticker string) (*models.Snapshot, error) {
	summary, err := r.readSummary(ctx, ticker)
	if err != nil || summary == nil {
		return nil, err
	}
	return r.withEarnings(ctx, summary)
}

func (r *Repository) readSummary(ctx context.Context, ticker string) (*models.StockSummary, error) {
	s := &models.StockSummary{Ticker: ticker}
	dest := []any{&s.Name, &s.Source, &s.NextEarningsDate, &s.FetchedAt}
	for _, ref := range metricRefs(&s.Metrics) {
		dest = append(dest, ref)
	}

	err := r.pool.QueryRow(ctx, selectSummarySQL, ticker).Scan(dest...)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("querying summary for %s: %w", ticker, err)
	}
	return s, nil
}

func (r *Repository) withEarnings(ctx context.Context, summary *models.StockSummary) (*models.Snapshot, error) {
	rows, err := r.pool.Query(ctx, selectEarningsSQL, summary.Ticker)
	if err != nil {
		return nil, fmt.Errorf("querying earnings for %s: %w", summary.Ticker, err)
	}
	defer rows.Close()

	earnings := []models.EarningsRecord{}
	for rows.Next() {
		e := models.EarningsRecord{Ticker: summary.Ticker}
		if err := rows.Scan(&e.FiscalDate, &e.Period, &e.ReportedEPS, &e.EstimatedEPS, &e.SurprisePct,
			&e.Revenue, &e.FreeCashFlow, &e.PERatio, &e.Price); err != nil {
			return nil, fmt.Errorf("scanning earnings for %s: %w", summary.Ticker, err)
		}
		earnings = append(earnings, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("reading earnings for %s: %w", summary.Ticker, err)
	}

	return &models.Snapshot{
		Summary:  *summary,
		Earnings: earnings,
		AgeHours: ageHours(summary.FetchedAt, r.now()),
	}, nil
}

// Write replaces the cached snapshot for the payload's ticker in one
// transaction and returns it as persisted.
func (r *Repository) Write(ctx context.Context, p *models.ProviderPayload) (*models.Snapshot, error) {
	ticker := p.Ticker
	fetchedAt := r.now().UTC()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if err := writeSnapshot(ctx, tx, p, fetchedAt); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("committing snapshot for %s: %w", ticker, err)
	}

	snap, err := r.ReadAny(ctx, ticker)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, fmt.Errorf("snapshot for %s missing after write", ticker)
	}
	return snap, nil
}

// txExecer is the part of pgx.Tx that writeSnapshot uses.
type txExecer interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	SendBatch(ctx context.Context, b *pgx.Batch) pgx.BatchResults
}

// writeSnapshot upserts the summary row first, so concurrent writers of one
// ticker queue on its row lock, then replaces the earnings set.
func writeSnapshot(ctx context.Context, tx txExecer, p *models.ProviderPayload, fetchedAt time.Time) error {
	ticker := p.Ticker
	metrics := p.Metrics
	args := []any{ticker, p.Name, p.Source, p.NextEarningsDate, fetchedAt}
	for _, ref := range metricRefs(&metrics) {
		args = append(args, *ref)
	}
	if _, err := tx.Exec(ctx, upsertSummarySQL, args...); err != nil {
		return fmt.Errorf("upserting summary for %s: %w", ticker, err)
	}

	if _, err := tx.Exec(ctx, "DELETE FROM earnings WHERE ticker = $1", ticker); err != nil {
		return fmt.Errorf("deleting earnings for %s: %w", ticker, err)
	}

	batch := &pgx.Batch{}
	for _, line := range p.Earnings {
		date, ok := ingest.ParseDate(line.FiscalDate)
		if !ok {
			continue
		}
		period := line.Period
		if period == "" {
			period = models.PeriodUnknown
		}
		batch.Queue(insertEarningSQL,
			ticker, date, period,
			line.ReportedEPS, line.EstimatedEPS, line.SurprisePct,
			line.Revenue, line.FreeCashFlow, line.PERatio, line.Price,
			fetchedAt,
		)
	}
	if batch.Len() > 0 {
		br := tx.SendBatch(ctx, batch)
		for i := 0; i < batch.Len(); i++ {
			if _, err := br.Exec(); err != nil {
				br.Close()
				return fmt.Errorf("inserting earnings for %s: %w", ticker, err)
			}
		}
		if err := br.Close(); err != nil {
			return fmt.Errorf("inserting earnings for %s: %w", ticker, err)
		}
	}
	return nil
}

// Stats returns the number of cached summaries and earnings rows.
func (r *Repository) Stats(ctx context.Context) (summaries, earnings int, err error) {
	err = r.pool.QueryRow(ctx, "SELECT (SELECT COUNT(*) FROM stock_summaries), (SELECT COUNT(*) FROM earnings)").
		Scan(&summaries, &earnings)
	if err != nil {
		return 0, 0, fmt.Errorf("counting cached rows: %w", err)
	}
	return summaries, earnings, nil
}

// Ping checks the database connection.
func (r *Repository) Ping(ctx context.Context) error {
	return r.pool.Ping(ctx)
}
