package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/emicalc/internal/cli"
)

var affordCmd = &cobra.Command{
	Use:   "afford",
	Short: "Largest loan and property price an income supports",
	Long: "Works backwards from --income: the EMI that keeps the EMI-to-income ratio in the\n" +
		"good band, the loan that EMI repays, and the property price it buys after the down payment.",
	RunE: runAfford,
}

func init() {
	rootCmd.AddCommand(affordCmd)
}

func runAfford(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	in, _, err := rt.scenario(cmd)
	if err != nil {
		return err
	}
	if in.MonthlyIncome <= 0 {
		return errors.New("afford needs a monthly income: pass --income or set general.monthly_income")
	}

	h, err := rt.engine.Headroom(in.MonthlyIncome, in.Scheme, in.DownPaymentPercent, in.TenureYears)
	if err != nil {
		return err
	}

	if flagJSON {
		return printJSON(h)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("AFFORDABILITY  %s / month", cli.FormatINR(h.MonthlyIncome))))
	fmt.Println()

	rows := [][]string{
		{"Scheme", fmt.Sprintf("%s (%s)", h.Scheme.Name, cli.FormatRate(h.Scheme.AnnualRatePercent))},
		{"Tenure", cli.FormatTenure(h.TenureYears)},
		{"Down payment", cli.FormatPercent(h.DownPaymentPercent)},
		{"---"},
		{"Target EMI / income", "up to " + cli.FormatPercent(h.TargetRatioPercent)},
		{"Max EMI", cli.FormatINR(h.MaxInstallment)},
		{"Max loan", cli.FormatINR(h.MaxLoan)},
		{"Max property price", cli.FormatINR(h.MaxPropertyPrice)},
	}
	if h.Scheme.SubsidyAmount > 0 {
		rows = append(rows, []string{"Includes subsidy", cli.FormatINR(h.Scheme.SubsidyAmount)})
	}
	fmt.Print(cli.RenderTable(cli.Table{Headers: []string{"Item", "Value"}, Rows: rows}))

	if !flagQuiet && in.PropertyPrice > 0 {
		fmt.Println()
		if in.PropertyPrice <= h.MaxPropertyPrice {
			fmt.Printf("  %s is within reach (%s spare).\n",
				cli.FormatCompactINR(in.PropertyPrice), cli.FormatCompactINR(h.MaxPropertyPrice-in.PropertyPrice))
		} else {
			fmt.Printf("  %s is %s over the comfortable price.\n",
				cli.FormatCompactINR(in.PropertyPrice), cli.FormatCompactINR(in.PropertyPrice-h.MaxPropertyPrice))
		}
	}
	fmt.Println()
	return nil
}
