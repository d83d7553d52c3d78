package main

import (
	"encoding/json"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/chris-regnier/nglint/internal/rules"
)

var flagRulesJSON bool

func init() {
	rulesCmd := &cobra.Command{
		Use:   "rules",
		Short: "List available rules and whether the configuration enables them",
		RunE:  runRules,
	}
	rulesCmd.Flags().BoolVar(&flagRulesJSON, "json", false, "Print rule metadata as JSON")

	rootCmd.AddCommand(rulesCmd)
}

func runRules(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	reg, err := rules.DefaultRegistry()
	if err != nil {
		return fmt.Errorf("loading rules: %w", err)
	}
	md := reg.Metadata()

	if flagRulesJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(md)
	}

	rs := cfg.Rules.Value()
	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RULE\tTYPE\tENABLED\tDESCRIPTION")
	for _, m := range md {
		opts, ok := rs.Get(m.Name)
		fmt.Fprintf(tw, "%s\t%s\t%t\t%s\n", m.Name, m.Type, ok && opts.Enabled, m.Description)
	}
	return tw.Flush()
}
