package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
	"golang.org/x/term"

	"github.com/chris-regnier/nglint/internal/cache"
	"github.com/chris-regnier/nglint/internal/config"
	"github.com/chris-regnier/nglint/internal/evaluator"
	"github.com/chris-regnier/nglint/internal/input"
	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/metrics"
	"github.com/chris-regnier/nglint/internal/output"
	"github.com/chris-regnier/nglint/internal/rules"
	"github.com/chris-regnier/nglint/internal/sarif"
	"github.com/chris-regnier/nglint/internal/store"
	"github.com/chris-regnier/nglint/internal/telemetry"
	"github.com/chris-regnier/nglint/internal/worker"
)

var (
	flagFormat    string
	flagRulesFile string
	flagStrict    bool
	flagParallel  int
	flagRuleJobs  int
	flagGate      bool
	flagStdinName string
	flagReport    string
	flagSave      string
	flagCacheDir  string
)

func init() {
	lintCmd := &cobra.Command{
		Use:   "lint [paths...]",
		Short: "Lint TypeScript sources and their Angular templates",
		Long: `Lint files and directories. Directories are walked for .ts and .tsx
files; "-" reads one program from stdin.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runLint,
	}

	lintCmd.Flags().StringVarP(&flagFormat, "format", "f", "", "Output format: json, html, sarif, markdown, pretty (default: pretty on a terminal, json otherwise)")
	lintCmd.Flags().StringVar(&flagRulesFile, "rules", "", "JSON rule set file replacing the configured rules")
	lintCmd.Flags().BoolVar(&flagStrict, "strict", false, "Abort on the first rule error instead of reporting it as a failure")
	lintCmd.Flags().IntVarP(&flagParallel, "parallel", "j", 0, "Files linted concurrently (default: GOMAXPROCS)")
	lintCmd.Flags().IntVar(&flagRuleJobs, "rule-jobs", 1, "Rules applied concurrently within one file")
	lintCmd.Flags().BoolVar(&flagGate, "gate", false, "Evaluate the rego gate policy and exit non-zero when it fails")
	lintCmd.Flags().StringVar(&flagStdinName, "stdin-filename", "stdin.ts", "File name used for source read from stdin")
	lintCmd.Flags().StringVar(&flagReport, "metrics-report", "", "Write pass metrics as JSON to this file")
	lintCmd.Flags().StringVar(&flagCacheDir, "cache-dir", "", "Reuse results of unchanged files cached under this directory")
	lintCmd.Flags().StringVar(&flagSave, "save", "", "Archive the run (failures, SARIF, verdict) under this directory")

	rootCmd.AddCommand(lintCmd)
}

func runLint(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
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

	sources, err := input.NewHandler().Collect(args, cmd.InOrStdin(), flagStdinName)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}
	slog.Info("linting", "files", len(sources), "rules", len(rs.Enabled()))

	collector := metrics.NewCollector()
	instruments, err := metrics.NewInstruments(nil)
	if err != nil {
		return fmt.Errorf("creating instruments: %w", err)
	}
	recorder := metrics.Tee{collector, instruments}

	var results cache.CacheManager
	if flagCacheDir != "" {
		results = cache.NewLocalCache(flagCacheDir)
	}

	failures, err := lintSources(ctx, reg, rs, sources, recorder, results)
	if err != nil {
		return err
	}

	texts := make(map[string]string, len(sources))
	for _, src := range sources {
		texts[src.Path] = src.Content
	}
	format := output.ResolveFormat(flagFormat, term.IsTerminal(int(os.Stdout.Fd())))
	formatter, err := output.NewFormatter(format, output.Options{
		Rules:   reg.Metadata(),
		Sources: texts,
		Version: version,
		Color:   format == "pretty" && term.IsTerminal(int(os.Stdout.Fd())),
	})
	if err != nil {
		return err
	}
	rendered, err := formatter.Format(failures)
	if err != nil {
		return fmt.Errorf("formatting: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), rendered)

	if flagReport != "" {
		if err := metrics.NewExporter(collector).ExportJSON(flagReport); err != nil {
			return fmt.Errorf("writing metrics report: %w", err)
		}
	}

	var runID string
	if flagSave != "" {
		doc := sarif.NewBuilder("nglint", version).
			AddRules(reg.Metadata()).
			AddFailures(failures).
			WithInputScope("files").
			Build()
		runID, err = store.NewFileStore(flagSave).WriteRun(ctx, failures, doc)
		if err != nil {
			return fmt.Errorf("saving run: %w", err)
		}
		slog.Info("saved run", "id", runID, "dir", flagSave)
	}

	if !flagGate {
		return nil
	}
	verdict, err := gate(ctx, cfg, failures, reg.Metadata())
	if err != nil {
		return err
	}
	if runID != "" {
		if err := store.NewFileStore(flagSave).WriteVerdict(ctx, runID, verdict); err != nil {
			return fmt.Errorf("saving verdict: %w", err)
		}
	}
	if !verdict.Passed() {
		fmt.Fprintf(os.Stderr, "gate %s: %s\n", verdict.Decision, verdict.Reason)
		return errGateFailed
	}
	return nil
}

// ruleSet returns the --rules file when given, else the configured rules.
func ruleSet(cfg *config.Config) (*lint.RuleSet, error) {
	if flagRulesFile == "" {
		return cfg.Rules.Value(), nil
	}
	data, err := os.ReadFile(flagRulesFile)
	if err != nil {
		return nil, fmt.Errorf("reading rules file: %w", err)
	}
	rs, err := lint.ParseRuleSetJSON(data)
	if err != nil {
		return nil, fmt.Errorf("parsing rules file %s: %w", flagRulesFile, err)
	}
	return rs, nil
}

// lintSources lints every source on its own Linter, flagParallel at a
// time, and concatenates the failures in input order. A non-nil cache
// serves and stores per-file results.
func lintSources(ctx context.Context, resolver lint.Resolver, rs *lint.RuleSet, sources []input.Source, rec lint.Recorder, results cache.CacheManager) ([]lint.Failure, error) {
	jobs := flagParallel
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	cacheRec, _ := rec.(worker.CacheRecorder)
	perFile := make([][]lint.Failure, len(sources))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(jobs)

	for i, src := range sources {
		g.Go(func() error {
			var key cache.CacheKey
			if results != nil {
				var err error
				key, err = cache.NewKey(src.Path, src.Content, rs, version)
				if err != nil {
					return fmt.Errorf("cache key for %s: %w", src.Path, err)
				}
				entry, err := results.Get(gctx, key)
				if cacheRec != nil {
					cacheRec.RecordCache(err == nil)
				}
				if err == nil {
					perFile[i] = entry.Failures
					return nil
				}
				if !errors.Is(err, cache.ErrCacheMiss) {
					slog.Warn("cache lookup", "file", src.Path, "err", err)
				}
			}

			linter := lint.NewLinter(resolver,
				lint.WithIsolation(!flagStrict),
				lint.WithRecorder(rec),
				lint.WithParallel(flagRuleJobs),
			)
			if err := linter.Lint(gctx, src.Path, src.Content, rs); err != nil {
				return fmt.Errorf("linting %s: %w", src.Path, err)
			}
			res, err := linter.Result()
			if err != nil {
				return fmt.Errorf("linting %s: %w", src.Path, err)
			}
			perFile[i] = res.Failures

			if results != nil {
				if err := results.Put(gctx, &cache.CacheEntry{Key: key, Failures: res.Failures}); err != nil {
					slog.Warn("cache store", "file", src.Path, "err", err)
				}
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	var all []lint.Failure
	for _, r := range perFile {
		all = append(all, r...)
	}
	return all, nil
}

func gate(ctx context.Context, cfg *config.Config, failures []lint.Failure, md []lint.Metadata) (*evaluator.Verdict, error) {
	eval, err := evaluator.NewEvaluator(cfg.Gate.PolicyDir, cfg.Gate.MaxFailures)
	if err != nil {
		return nil, fmt.Errorf("creating evaluator: %w", err)
	}
	verdict, err := eval.Evaluate(ctx, failures, md)
	if err != nil {
		return nil, fmt.Errorf("evaluating gate: %w", err)
	}
	slog.Info("gate", "decision", verdict.Decision, "reason", verdict.Reason)
	return verdict, nil
}
