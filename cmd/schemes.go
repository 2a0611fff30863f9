package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/emicalc/internal/cli"
	"github.com/theirongolddev/emicalc/internal/config"
	"github.com/theirongolddev/emicalc/internal/model"
)

var schemesCmd = &cobra.Command{
	Use:   "schemes",
	Short: "List the loan scheme catalog",
	RunE:  runSchemes,
}

func init() {
	rootCmd.AddCommand(schemesCmd)
}

func runSchemes(_ *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}

	type entry struct {
		Key string `json:"key"`
		model.LoanScheme
	}

	keys := rt.catalog.Keys()
	if flagJSON {
		out := make([]entry, 0, len(keys))
		for _, k := range keys {
			s, _ := rt.catalog.Lookup(k)
			out = append(out, entry{Key: k, LoanScheme: s})
		}
		return printJSON(out)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle("LOAN SCHEMES"))
	fmt.Println()

	table := cli.Table{Headers: []string{"Key", "Name", "Rate", "Subsidy", "Eligibility"}}
	for _, k := range keys {
		s, _ := rt.catalog.Lookup(k)
		subsidy := "-"
		if s.SubsidyAmount > 0 {
			subsidy = cli.FormatINR(s.SubsidyAmount)
		}
		marker := ""
		if k == config.NormalizeSchemeName(rt.cfg.General.Scheme) {
			marker = " *"
		}
		table.Rows = append(table.Rows, []string{k + marker, s.Name, cli.FormatRate(s.AnnualRatePercent), subsidy, s.EligibilityText})
	}
	fmt.Print(cli.RenderTable(table))

	if !flagQuiet {
		fmt.Println()
		fmt.Println("  * default scheme. Add or override schemes in " + config.Path())
	}
	fmt.Println()
	return nil
}
