package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"

	"github.com/spf13/cobra"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/chris-regnier/nglint/internal/rules"
	"github.com/chris-regnier/nglint/internal/store"
)

var judgeTracer = otel.Tracer("github.com/chris-regnier/nglint/cmd/nglint")

var (
	flagJudgeResult string
	flagJudgeDir    string
)

func init() {
	judgeCmd := &cobra.Command{
		Use:   "judge",
		Short: "Re-evaluate the gate policy against a saved lint run",
		RunE:  runJudge,
	}

	judgeCmd.Flags().StringVar(&flagJudgeResult, "result", "", "Saved run ID to evaluate (default: most recent)")
	judgeCmd.Flags().StringVar(&flagJudgeDir, "dir", ".nglint/results", "Directory containing saved runs")

	rootCmd.AddCommand(judgeCmd)
}

func runJudge(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := rules.DefaultRegistry()
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}

	fs := store.NewFileStore(flagJudgeDir)

	resultID := flagJudgeResult
	if resultID == "" {
		resultID, err = fs.Latest(ctx)
		if err != nil {
			return fmt.Errorf("finding latest run in %s: %w", flagJudgeDir, err)
		}
	}

	ctx, span := judgeTracer.Start(ctx, "judge",
		trace.WithAttributes(
			attribute.String("nglint.result_id", resultID),
		),
	)
	defer span.End()

	failures, err := fs.ReadFailures(ctx, resultID)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("reading failures for %s: %w", resultID, err)
	}

	verdict, err := gate(ctx, cfg, failures, reg.Metadata())
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	if err := fs.WriteVerdict(ctx, resultID, verdict); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return fmt.Errorf("storing verdict: %w", err)
	}

	span.SetAttributes(
		attribute.String("nglint.decision", verdict.Decision),
	)

	out, _ := json.MarshalIndent(verdict, "", "  ")
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	if !verdict.Passed() {
		return errGateFailed
	}
	return nil
}
