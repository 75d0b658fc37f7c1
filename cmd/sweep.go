package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/searchfusion/cache"
	"github.com/mohammad-safakhou/searchfusion/config"
	"github.com/mohammad-safakhou/searchfusion/internal/store"
)

// sweepCMD runs one bounded expiry sweep against the configured backend.
func sweepCMD() *cobra.Command {
	var cfgPath string
	var batchSize int
	var sweep = &cobra.Command{
		Use:   "sweep",
		Short: "Delete a batch of expired cache entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			st, closeStore, err := openStore(ctx, cfg)
			if err != nil {
				return err
			}
			defer closeStore()

			c := cache.New(st, cache.DefaultTTLPolicy())
			deleted, err := c.Sweep(ctx, batchSize)
			if err != nil {
				return err
			}
			fmt.Printf("deleted %d expired entries\n", deleted)
			return nil
		},
	}
	sweep.Flags().IntVar(&batchSize, "batch", 200, "max deletions in this sweep")
	sweep.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return sweep
}

func openStore(ctx context.Context, cfg *config.Config) (cache.Store, func(), error) {
	if cfg.Cache.Backend == "redis" {
		st, err := store.NewRedis(ctx, cfg.Storage.Redis.Host+":"+cfg.Storage.Redis.Port, cfg.Storage.Redis.Password, cfg.Storage.Redis.DB)
		if err != nil {
			return nil, nil, err
		}
		return st, func() { _ = st.Close() }, nil
	}
	dsn, err := cfg.Storage.Postgres.DSN()
	if err != nil {
		return nil, nil, err
	}
	st, err := store.NewPostgres(ctx, dsn)
	if err != nil {
		return nil, nil, err
	}
	return st, func() { _ = st.Close() }, nil
}
