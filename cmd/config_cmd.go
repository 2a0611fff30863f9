// Package cmd implements the emicalc CLI commands.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/emicalc/internal/cli"
	"github.com/theirongolddev/emicalc/internal/config"
	"github.com/theirongolddev/emicalc/internal/store"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show current configuration",
	RunE:  runConfig,
}

func init() {
	rootCmd.AddCommand(configCmd)
}

func runConfig(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return err
	}

	fmt.Printf("  Config file: %s\n", config.Path())
	if config.Exists() {
		fmt.Println("  Status: loaded")
	} else {
		fmt.Println("  Status: using defaults (no config file)")
	}
	fmt.Println()

	fmt.Println("  [General]")
	fmt.Printf("    Property price:  %s\n", cli.FormatINR(cfg.General.PropertyPrice))
	fmt.Printf("    Down payment:    %s\n", cli.FormatPercent(cfg.General.DownPaymentPercent))
	fmt.Printf("    Tenure:          %s\n", cli.FormatTenure(cfg.General.TenureYears))
	fmt.Printf("    Scheme:          %s\n", cfg.General.Scheme)
	if cfg.General.MonthlyIncome > 0 {
		fmt.Printf("    Monthly income:  %s\n", cli.FormatINR(cfg.General.MonthlyIncome))
	} else {
		fmt.Println("    Monthly income:  not set")
	}
	if cfg.General.SaveHistory {
		fmt.Printf("    History:         %s\n", store.DefaultPath())
	} else {
		fmt.Println("    History:         off")
	}
	fmt.Println()

	fmt.Println("  [Tax]")
	fmt.Printf("    80C cap:         %s\n", cli.FormatINR(policy.Section80CCap))
	fmt.Printf("    24(b) cap:       %s\n", cli.FormatINR(policy.Section24bCap))
	fmt.Printf("    Tax bracket:     %s\n", cli.FormatPercent(policy.TaxBracketPercent))
	fmt.Println()

	fmt.Println("  [Affordability]  EMI / income")
	fmt.Printf("    Excellent:       up to %s\n", cli.FormatPercent(policy.ExcellentMaxRatio))
	fmt.Printf("    Good:            up to %s\n", cli.FormatPercent(policy.GoodMaxRatio))
	fmt.Printf("    Stretched:       up to %s\n", cli.FormatPercent(policy.StretchedMaxRatio))
	fmt.Println()

	fmt.Println("  [Schemes]")
	if cfg.Schemes.CatalogFile != "" {
		fmt.Printf("    Catalog file:    %s\n", cfg.Schemes.CatalogFile)
	}
	fmt.Printf("    Overrides:       %d\n", len(cfg.Schemes.Overrides))
	fmt.Println()

	fmt.Println("  [Server]")
	fmt.Printf("    Address:         %s\n", cfg.Server.Addr)
	if cfg.Server.RateLimit > 0 {
		fmt.Printf("    Rate limit:      %d per %ds\n", cfg.Server.RateLimit, cfg.Server.RateWindowSec)
	} else {
		fmt.Println("    Rate limit:      off")
	}
	if addr := config.GetRedisAddr(cfg); addr != "" {
		fmt.Printf("    Redis:           %s\n", addr)
	}
	fmt.Printf("    Log:             %s (%s)\n", config.GetLogLevel(cfg), cfg.Log.Format)
	fmt.Println()

	fmt.Println("  [Appearance]")
	fmt.Printf("    Theme: %s\n", cfg.Appearance.Theme)
	fmt.Println()

	fmt.Println("  Run `emicalc setup` to reconfigure.")
	return nil
}
