package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mohammad-safakhou/searchfusion/adapters"
	"github.com/mohammad-safakhou/searchfusion/config"
	"github.com/mohammad-safakhou/searchfusion/engine"
	"github.com/mohammad-safakhou/searchfusion/internal/store"
	"github.com/mohammad-safakhou/searchfusion/models"
)

// searchCMD runs a single fused search from the terminal and prints the
// versioned envelope as JSON. It uses an in-memory cache so one-shot runs
// never touch the configured backend.
func searchCMD() *cobra.Command {
	var cfgPath string
	var mode string
	var maxResults int
	var sources []string
	var search = &cobra.Command{
		Use:   "search [query]",
		Short: "Run one fused search and print the result envelope",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(cfgPath)
			if err != nil {
				return err
			}
			registry := adapters.NewRegistry(cfg.Sources)
			eng := engine.New(cfg, registry, store.NewMemory())

			opts := models.SearchOptions{MaxResults: maxResults}
			for _, s := range sources {
				opts.Sources = append(opts.Sources, models.Source(s))
			}
			env, err := eng.Search(cmd.Context(), strings.Join(args, " "), models.SearchMode(mode), opts)
			if err != nil {
				return err
			}
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(env)
		},
	}
	search.Flags().StringVar(&mode, "mode", "balanced", "search mode (fast, balanced, comprehensive)")
	search.Flags().IntVar(&maxResults, "max", 10, "maximum fused results")
	search.Flags().StringSliceVar(&sources, "sources", nil, fmt.Sprintf("source subset (default all: %v)", models.AllSources()))
	search.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "config file (default is .)")

	return search
}
