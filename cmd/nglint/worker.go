package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/chris-regnier/nglint/internal/lint"
	"github.com/chris-regnier/nglint/internal/rules"
	"github.com/chris-regnier/nglint/internal/worker"
)

func init() {
	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Serve lint requests over stdin/stdout",
		Long: `Start a lint worker for editor integrations.

Requests and responses are JSON messages framed with Content-Length
headers. A request carries the full program text; its response carries
either the JSON failure list or an error.`,
		RunE: runWorker,
	}
	cmd.Flags().StringVar(&flagRulesFile, "rules", "", "JSON rule set file replacing the configured rules")

	rootCmd.AddCommand(cmd)
}

func runWorker(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	rs, err := ruleSet(cfg)
	if err != nil {
		return err
	}
	reg, err := rules.DefaultRegistry()
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	h, err := worker.NewHandler(lint.NewLinter(reg), rs, worker.WithCache(cfg.Server.CacheSize))
	if err != nil {
		return err
	}
	return worker.Serve(ctx, os.Stdin, os.Stdout, h)
}
