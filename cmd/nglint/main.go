package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/chris-regnier/nglint/internal/config"
	"github.com/chris-regnier/nglint/internal/output"
)

var (
	// Version information injected by goreleaser
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagQuiet      bool
	flagVerbose    bool
	flagDebug      bool
	flagProjectDir string
)

// errGateFailed makes the process exit non-zero without printing twice.
var errGateFailed = errors.New("gate failed")

var rootCmd = &cobra.Command{
	Use:           "nglint",
	Short:         "Static analysis for Angular projects",
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		slog.SetDefault(output.SetupLogger(flagQuiet, flagVerbose, flagDebug, os.Stderr))
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("nglint %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built at: %s\n", date)
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress all log output")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Log progress")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Log debug details")
	rootCmd.PersistentFlags().StringVar(&flagProjectDir, "project", ".", "Project root containing .nglint/nglint.yaml")

	rootCmd.AddCommand(versionCmd)
}

// loadConfig merges the tiered configuration and validates it.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadTiered(config.MachinePath(), config.ProjectPath(flagProjectDir))
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}
	if err := config.ApplyEnv(cfg, os.Getenv); err != nil {
		return nil, fmt.Errorf("applying environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		if !errors.Is(err, errGateFailed) {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}
