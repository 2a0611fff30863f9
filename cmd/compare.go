package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/emicalc/internal/amortization"
	"github.com/theirongolddev/emicalc/internal/cli"
)

var compareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare every catalog scheme on the same scenario",
	RunE:  runCompare,
}

func init() {
	rootCmd.AddCommand(compareCmd)
}

func runCompare(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	in, _, err := rt.scenario(cmd)
	if err != nil {
		return err
	}
	if err := amortization.Validate(in); err != nil {
		return err
	}

	results := rt.engine.Compare(in, rt.catalog.All())
	if flagJSON {
		return printJSON(results)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("COMPARE  %s, %s down, %s",
		cli.FormatCompactINR(in.PropertyPrice),
		cli.FormatPercent(in.DownPaymentPercent),
		cli.FormatTenure(in.TenureYears))))
	fmt.Println()

	headers := []string{"Scheme", "Rate", "EMI", "Total interest", "Tax saving/yr"}
	if in.MonthlyIncome > 0 {
		headers = append(headers, "EMI/income", "Status")
	}
	table := cli.Table{Headers: headers}

	var cheapest float64
	for i, c := range results {
		if c.Err != "" {
			rt.logger.Debug("scheme rejected", zap.String("scheme", c.Scheme.Name), zap.String("reason", c.Err))
			table.Rows = append(table.Rows, []string{c.Scheme.Name, cli.FormatRate(c.Scheme.AnnualRatePercent), c.Err})
			continue
		}
		r := c.Result
		if i == 0 {
			cheapest = r.TotalInterest
		}
		row := []string{
			c.Scheme.Name,
			cli.FormatRate(c.Scheme.AnnualRatePercent),
			cli.FormatINRPaise(r.MonthlyInstallment),
			cli.FormatINR(r.TotalInterest),
			cli.FormatINR(r.AnnualTaxSaving),
		}
		if in.MonthlyIncome > 0 {
			row = append(row, cli.FormatPercent(r.EMIToIncomeRatioPercent), cli.StatusLabel(r.Affordability))
		}
		table.Rows = append(table.Rows, row)
	}
	fmt.Print(cli.RenderTable(table))

	var maxInterest float64
	for _, c := range results {
		if c.Err == "" && c.Result.TotalInterest > maxInterest {
			maxInterest = c.Result.TotalInterest
		}
	}
	if maxInterest > 0 && !flagQuiet {
		fmt.Println()
		fmt.Println("  Total interest")
		for _, c := range results {
			if c.Err != "" {
				continue
			}
			fmt.Printf("  %-20s %s %s\n", c.Scheme.Name,
				cli.RenderHorizontalBar(c.Result.TotalInterest, maxInterest, 30),
				cli.FormatCompactINR(c.Result.TotalInterest))
		}
	}

	if len(results) > 1 && results[0].Err == "" && !flagQuiet {
		last := results[len(results)-1]
		if diff := last.Result.TotalInterest - cheapest; last.Err == "" && diff > 0 {
			fmt.Printf("\n  %s saves %s in interest over %s.\n",
				results[0].Scheme.Name,
				cli.FormatINR(diff),
				last.Scheme.Name)
		}
	}
	fmt.Println()
	return nil
}
