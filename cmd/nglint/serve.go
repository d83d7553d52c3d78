package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/metrics"
	"github.com/chris-regnier/nglint/internal/output"
	"github.com/chris-regnier/nglint/internal/rules"
	"github.com/chris-regnier/nglint/internal/server"
	"github.com/chris-regnier/nglint/internal/telemetry"
	"github.com/chris-regnier/nglint/internal/worker"
)

var (
	flagAddr    string
	flagLogJSON bool
)

func init() {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve lint requests over HTTP and websockets",
		RunE:  runServe,
	}
	cmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (default from config, NGLINT_ADDR)")
	cmd.Flags().BoolVar(&flagLogJSON, "log-json", false, "Write JSON log records")
	cmd.Flags().IntVar(&flagRuleJobs, "rule-jobs", 1, "Rules applied concurrently within one request")
	cmd.Flags().StringVar(&flagRulesFile, "rules", "", "JSON rule set file replacing the configured rules")

	rootCmd.AddCommand(cmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	// A missing .env file is fine.
	_ = godotenv.Load()

	if flagLogJSON {
		slog.SetDefault(output.NewLogger(output.LogOptions{
			Quiet: flagQuiet, Verbose: true, Debug: flagDebug, JSON: true,
		}, os.Stderr))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.Server.Addr = flagAddr
	}
	debounce, err := cfg.Session.Debounce()
	if err != nil {
		return err
	}

	shutdownTelemetry, err := telemetry.Init(ctx, cfg.Telemetry)
	if err != nil {
		return fmt.Errorf("initializing telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			slog.Warn("telemetry shutdown", "err", err)
		}
	}()

	rs, err := ruleSet(cfg)
	if err != nil {
		return err
	}
	reg, err := rules.DefaultRegistry()
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	collector := metrics.NewCollector()
	instruments, err := metrics.NewInstruments(nil)
	if err != nil {
		return fmt.Errorf("creating instruments: %w", err)
	}
	recorder := metrics.Tee{collector, instruments}

	newHandler := func() (*worker.Handler, error) {
		return worker.NewHandler(
			lint.NewLinter(reg, lint.WithRecorder(recorder), lint.WithParallel(flagRuleJobs)),
			rs,
			worker.WithCache(cfg.Server.CacheSize),
			worker.WithCacheRecorder(collector),
		)
	}
	h, err := newHandler()
	if err != nil {
		return err
	}

	srv := server.New(h, reg.Metadata(),
		server.WithCollector(collector),
		server.WithDebounce(debounce),
		server.WithHandlerFactory(newHandler),
	)
	return server.ListenAndServe(ctx, cfg.Server.Addr, srv)
}
