package main

import (
	"encoding/json"
	"os"

	"github.com/mauv0809/stockcache/internal/db"
	"github.com/spf13/cobra"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.cfg.RequireDatabase(); err != nil {
				return err
			}
			if err := db.RunMigrations(a.cfg.DatabaseURL, a.logger); err != nil {
				a.logger.Error().Err(err).Msg("migrations failed")
				return err
			}
			a.logger.Info().Msg("migrations completed")
			return nil
		},
	}
}

func newFetchCmd(a *app) *cobra.Command {
	var refresh bool

	cmd := &cobra.Command{
		Use:   "fetch TICKER",
		Short: "Resolve one ticker through the cache and print it as JSON",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			pool, repo, err := a.openStore(ctx)
			if err != nil {
				return err
			}
			defer pool.Close()

			svc := a.newService(repo)
			resp, err := svc.Get(ctx, args[0], refresh)
			if err != nil {
				a.logger.Error().Err(err).Str("ticker", args[0]).Msg("fetch failed")
				return err
			}

			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(resp)
		},
	}
	cmd.Flags().BoolVar(&refresh, "refresh", false, "bypass the cache")
	return cmd
}
