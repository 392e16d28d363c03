package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/courtstats/internal/analytics"
	service "github.com/okian/courtstats/internal/app"
	"github.com/okian/courtstats/internal/domain/model"
)

func (c *cli) generateCmd() *cobra.Command {
	var (
		players, tournaments, matches int
		workers, batchSize            int
		seed                          int64
	)

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Regenerate the corpus, replacing whatever the store holds",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			flags := cmd.Flags()
			if flags.Changed("players") {
				c.cfg.Players = players
			}
			if flags.Changed("tournaments") {
				c.cfg.Tournaments = tournaments
			}
			if flags.Changed("matches") {
				c.cfg.Matches = matches
			}
			if flags.Changed("workers") {
				c.cfg.WorkerCount = workers
			}
			if flags.Changed("batch-size") {
				c.cfg.BatchSize = batchSize
			}
			if flags.Changed("seed") {
				c.cfg.Seed = seed
			}

			return c.withService(cmd.Context(), func(svc *service.Service) error {
				sum, err := svc.Generate(cmd.Context())
				if err != nil {
					return fmt.Errorf("generate: %w", err)
				}
				return writeTable(cmd.OutOrStdout(),
					[]string{"COLLECTION", "RECORDS"},
					[][]string{
						{string(model.Players), strconv.Itoa(sum.Players)},
						{string(model.Tournaments), strconv.Itoa(sum.Tournaments)},
						{string(model.Matches), strconv.Itoa(sum.Matches)},
					},
					fmt.Sprintf("%d workers, %s", sum.Workers, sum.Duration.Round(time.Millisecond)),
				)
			})
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&players, "players", 0, "number of players (overrides players)")
	flags.IntVar(&tournaments, "tournaments", 0, "number of tournaments (overrides tournaments)")
	flags.IntVar(&matches, "matches", 0, "number of matches (overrides matches)")
	flags.IntVar(&workers, "workers", 0, "match-generation workers (overrides worker_count)")
	flags.IntVar(&batchSize, "batch-size", 0, "records per bulk insert (overrides batch_size)")
	flags.Int64Var(&seed, "seed", 0, "random seed; 0 picks a time-based seed")
	return cmd
}

func (c *cli) reportCmd() *cobra.Command {
	var (
		limit, minMatches int
		all               bool
		format            string
	)

	cmd := &cobra.Command{
		Use:   "report <name>",
		Short: "Run one report; see 'courtstats reports' for names",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			desc, ok := analytics.Lookup(args[0])
			if !ok {
				return fmt.Errorf("unknown report %q; available: %s", args[0], strings.Join(reportNames(), ", "))
			}
			if format != formatTable && format != formatJSON {
				return fmt.Errorf("unknown format %q: want %s or %s", format, formatTable, formatJSON)
			}

			params := desc.Defaults
			if cmd.Flags().Changed("limit") {
				params.Limit = limit
			}
			if all {
				params.Limit = analytics.Unlimited
			}
			if cmd.Flags().Changed("min-matches") {
				params.MinMatches = minMatches
			}

			return c.withService(cmd.Context(), func(svc *service.Service) error {
				result, err := svc.Engine().Run(cmd.Context(), desc.Name, params)
				if err != nil {
					return err
				}
				return render(cmd.OutOrStdout(), format, result)
			})
		},
	}

	flags := cmd.Flags()
	flags.IntVar(&limit, "limit", 0, "maximum rows; 0 returns none (default per report)")
	flags.BoolVar(&all, "all", false, "return every row")
	flags.IntVar(&minMatches, "min-matches", 0, "minimum matches per group (default per report)")
	flags.StringVarP(&format, "format", "f", formatTable, "output format: table or json")
	return cmd
}

func (c *cli) reportsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "reports",
		Short: "List available reports and their defaults",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rows := make([][]string, 0, len(analytics.Reports()))
			for _, d := range analytics.Reports() {
				limit, minMatches := "-", "-"
				if d.HasLimit {
					limit = strconv.Itoa(d.Defaults.Limit)
				}
				if d.HasMinMatches {
					minMatches = strconv.Itoa(d.Defaults.MinMatches)
				}
				rows = append(rows, []string{d.Name, d.Description, limit, minMatches})
			}
			return writeTable(cmd.OutOrStdout(), []string{"NAME", "DESCRIPTION", "LIMIT", "MIN MATCHES"}, rows, "")
		},
	}
}

func (c *cli) indexesCmd() *cobra.Command {
	var ensure bool

	cmd := &cobra.Command{
		Use:   "indexes",
		Short: "List store indexes, optionally creating the required ones first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(svc *service.Service) error {
				if ensure {
					if _, err := svc.EnsureIndexes(cmd.Context()); err != nil {
						return err
					}
				}
				specs, err := svc.Indexes(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(specs))
				for _, s := range specs {
					rows = append(rows, []string{
						s.Name(), string(s.Collection), strings.Join(s.Fields, ", "), strconv.FormatBool(s.Unique),
					})
				}
				return writeTable(cmd.OutOrStdout(), []string{"NAME", "COLLECTION", "FIELDS", "UNIQUE"}, rows,
					fmt.Sprintf("%d indexes", len(specs)))
			})
		},
	}
	cmd.Flags().BoolVar(&ensure, "ensure", false, "create missing required indexes first")
	return cmd
}

func (c *cli) truncateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "truncate",
		Short: "Delete every player, tournament and match",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(svc *service.Service) error {
				if err := svc.Truncate(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "store truncated")
				return nil
			})
		},
	}
}

func (c *cli) countsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "counts",
		Short: "Show the number of records per collection",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return c.withService(cmd.Context(), func(svc *service.Service) error {
				counts, err := svc.Counts(cmd.Context())
				if err != nil {
					return err
				}
				rows := make([][]string, 0, len(counts))
				for _, col := range model.Collections() {
					rows = append(rows, []string{string(col), strconv.Itoa(counts[col])})
				}
				return writeTable(cmd.OutOrStdout(), []string{"COLLECTION", "RECORDS"}, rows, "")
			})
		},
	}
}

func reportNames() []string {
	names := make([]string, 0, len(analytics.Reports()))
	for _, d := range analytics.Reports() {
		names = append(names, d.Name)
	}
	return names
}
