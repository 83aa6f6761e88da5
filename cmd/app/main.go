package main

import (
	"context"
	"fmt"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/mauv0809/stockcache/internal/config"
	"github.com/mauv0809/stockcache/internal/db"
	"github.com/mauv0809/stockcache/internal/ingest"
	"github.com/mauv0809/stockcache/internal/ingest/alphavantage"
	"github.com/mauv0809/stockcache/internal/ingest/finnhub"
	"github.com/mauv0809/stockcache/internal/ingest/polygon"
	"github.com/mauv0809/stockcache/internal/logging"
	"github.com/mauv0809/stockcache/internal/stock"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// app holds what every subcommand needs.
type app struct {
	cfg    *config.Config
	logger zerolog.Logger
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:           "stockcache",
		Short:         "Cached stock fundamentals API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, loaded, err := config.Load()
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logging.New(logging.Config{Level: cfg.LogLevel, File: cfg.LogFile}, os.Stderr)
			if !loaded {
				a.logger.Debug().Msg("no .env file found, using environment variables")
			}
			return nil
		},
	}

	root.AddCommand(
		newServeCmd(a),
		newMigrateCmd(a),
		newFetchCmd(a),
	)
	root.CompletionOptions.DisableDefaultCmd = true
	return root
}

// openStore migrates and connects to the database.
func (a *app) openStore(ctx context.Context) (*pgxpool.Pool, *db.Repository, error) {
	if err := a.cfg.RequireDatabase(); err != nil {
		return nil, nil, err
	}
	if err := db.RunMigrations(a.cfg.DatabaseURL, a.logger); err != nil {
		return nil, nil, fmt.Errorf("running migrations: %w", err)
	}
	pool, err := db.Connect(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, nil, err
	}
	return pool, db.NewRepository(pool), nil
}

// newService wires the provider chain: Polygon.io first, Alpha Vantage as
// fallback and Finnhub for estimates.
func (a *app) newService(cache stock.Cache) *stock.Service {
	timeout := ingest.WithTimeout(a.cfg.UpstreamTimeout)

	poly := polygon.NewClient(a.cfg.PolygonAPIKey, a.logger, timeout)
	av := alphavantage.NewClient(a.cfg.AlphaVantageAPIKey, a.logger, timeout)
	fh := finnhub.NewClient(a.cfg.FinnhubAPIKey, a.cfg.EstimatesMinInterval, a.logger, timeout)

	svc := stock.NewService(cache, []stock.FundamentalsProvider{poly, av},
		stock.WithEstimates(fh),
		stock.WithPriceSource(poly),
		stock.WithLogger(a.logger),
	)
	for _, p := range svc.Providers() {
		ev := a.logger.Info()
		if !p.Configured {
			ev = a.logger.Warn()
		}
		ev.Str("provider", p.Name).Str("role", p.Role).Bool("configured", p.Configured).Msg("provider wired")
	}
	return svc
}
