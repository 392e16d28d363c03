// Command courtstats generates a synthetic tennis corpus into a store and
// computes aggregate reports over it.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/courtstats/internal/adapters/repository"
	service "github.com/okian/courtstats/internal/app"
	"github.com/okian/courtstats/internal/config"
	"github.com/okian/courtstats/pkg/logger"
	"github.com/okian/courtstats/pkg/metrics"
)

// HTTP server timeout constants for the metrics endpoint.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 10 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 5 * time.Second
)

func main() {
	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

// cli carries the state shared by every subcommand for one invocation.
type cli struct {
	cfg     *config.Config
	log     logger.Logger
	metrics *http.Server

	driver      string
	dsn         string
	logLevel    string
	logFormat   string
	metricsAddr string
}

func newRootCmd() *cobra.Command {
	c := &cli{log: logger.Nop()}

	root := &cobra.Command{
		Use:   "courtstats",
		Short: "Tennis dataset generator and aggregation reports",
		Long: "Generate a synthetic corpus of players, tournaments and matches into a store,\n" +
			"then compute win rates, durations, performance and tournament reports over it.",
		SilenceUsage:       true,
		PersistentPreRunE:  c.setup,
		PersistentPostRunE: c.teardown,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&c.driver, "driver", "", "store driver: memory or sqlite (overrides store_driver)")
	flags.StringVar(&c.dsn, "db", "", "SQLite database path (overrides store_dsn)")
	flags.StringVar(&c.logLevel, "log-level", "", "debug, info, warn or error (overrides log_level)")
	flags.StringVar(&c.logFormat, "log-format", "", "text or json (overrides log_format)")
	flags.StringVar(&c.metricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address while running")

	root.AddCommand(
		c.generateCmd(),
		c.reportCmd(),
		c.reportsCmd(),
		c.indexesCmd(),
		c.truncateCmd(),
		c.countsCmd(),
	)
	return root
}

// setup loads configuration (defaults -> optional file -> env -> flags),
// initializes logging and starts the metrics endpoint when configured.
func (c *cli) setup(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	cfg, err := config.Load(ctx)
	if err != nil {
		return err
	}
	flags := cmd.Flags()
	if flags.Changed("driver") {
		cfg.StoreDriver = c.driver
	}
	if flags.Changed("db") {
		cfg.StoreDSN = c.dsn
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = c.logLevel
	}
	if flags.Changed("log-format") {
		cfg.LogFormat = c.logFormat
	}
	if flags.Changed("metrics-addr") {
		cfg.MetricsAddr = c.metricsAddr
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	if err := logger.Init(logger.WithFormat(cfg.LogFormat), logger.WithWriter(cmd.ErrOrStderr())); err != nil {
		return fmt.Errorf("init logging: %w", err)
	}
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		_ = logger.SetLevelString("info")
	}
	c.log = logger.Named("courtstats")

	if cfg.MetricsAddr != "" {
		c.startMetrics(ctx, cfg.MetricsAddr)
	}
	return nil
}

func (c *cli) teardown(cmd *cobra.Command, _ []string) error {
	if c.metrics == nil {
		return nil
	}
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(cmd.Context()), shutdownTimeout)
	defer cancel()
	if err := c.metrics.Shutdown(shutdownCtx); err != nil {
		c.log.Error(cmd.Context(), "metrics server shutdown failed", logger.Error(err))
	}
	return nil
}

func (c *cli) startMetrics(ctx context.Context, addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", metrics.Handler())

	c.metrics = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}
	srv := c.metrics
	go func() {
		c.log.Info(ctx, "serving metrics", logger.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			c.log.Error(ctx, "metrics server failed", logger.Error(err))
		}
	}()
}

// withService opens the configured store, builds the service on it and
// runs fn. The store is closed when fn returns.
func (c *cli) withService(ctx context.Context, fn func(*service.Service) error) error {
	store, err := repository.Open(ctx, c.cfg.StoreDriver, c.cfg.StoreDSN)
	if err != nil {
		return err
	}

	svc, err := service.New(
		service.WithStore(store),
		service.WithLogger(c.log),
		service.WithGeneratorConfig(c.cfg.GeneratorConfig()),
	)
	if err != nil {
		_ = store.Close()
		return err
	}
	defer func() {
		if err := svc.Close(); err != nil {
			c.log.Error(ctx, "close store", logger.Error(err))
		}
	}()

	return fn(svc)
}
