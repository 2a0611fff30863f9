package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/emicalc/internal/cli"
	"github.com/theirongolddev/emicalc/internal/model"
)

var emiCmd = &cobra.Command{
	Use:   "emi",
	Short: "Monthly installment, totals, tax benefit and affordability",
	RunE:  runEMI,
}

func init() {
	rootCmd.AddCommand(emiCmd)
}

func runEMI(cmd *cobra.Command, _ []string) error {
	rt, err := loadRuntime()
	if err != nil {
		return err
	}
	defer func() { _ = rt.logger.Sync() }()

	in, _, err := rt.scenario(cmd)
	if err != nil {
		return err
	}

	res, err := rt.engine.Compute(in)
	if err != nil {
		return err
	}
	rt.record(in, res)

	if flagJSON {
		return printJSON(struct {
			Input  model.LoanInput          `json:"input"`
			Result model.AmortizationResult `json:"result"`
		}{in, res})
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("%s  %s", in.Scheme.Name, cli.FormatRate(in.Scheme.AnnualRatePercent))))
	fmt.Println()
	fmt.Print(cli.RenderTable(resultTable(in, res)))

	fmt.Println()
	fmt.Printf("  Principal %s  %s  Interest %s\n",
		cli.FormatPercent(res.PrincipalSharePercent),
		cli.RenderShareBar(res.PrincipalSharePercent, 40),
		cli.FormatPercent(res.InterestSharePercent),
	)

	if in.MonthlyIncome > 0 {
		fmt.Printf("  Affordability %s\n", cli.RenderStatus(res.Affordability))
	} else if !flagQuiet {
		fmt.Println()
		fmt.Println("  Pass --income to check affordability.")
	}
	fmt.Println()
	return nil
}

func resultTable(in model.LoanInput, res model.AmortizationResult) cli.Table {
	rows := [][]string{
		{"Property price", cli.FormatINR(in.PropertyPrice)},
		{"Down payment", fmt.Sprintf("%s (%s)", cli.FormatINR(res.DownPayment), cli.FormatPercent(in.DownPaymentPercent))},
	}
	if res.Subsidy > 0 {
		rows = append(rows, []string{"Subsidy", cli.FormatINR(res.Subsidy)})
	}
	rows = append(rows,
		[]string{"Loan amount", cli.FormatINR(res.LoanAmount)},
		[]string{"---"},
		[]string{"Tenure", cli.FormatTenure(in.TenureYears)},
		[]string{"Monthly EMI", cli.FormatINRPaise(res.MonthlyInstallment)},
		[]string{"Total payment", cli.FormatINR(res.TotalPayment)},
		[]string{"Total interest", cli.FormatINR(res.TotalInterest)},
		[]string{"---"},
		[]string{"80C deduction / yr", cli.FormatINR(res.Section80CDeduction)},
		[]string{"24(b) deduction / yr", cli.FormatINR(res.Section24bDeduction)},
		[]string{"Tax saving / yr", cli.FormatINR(res.AnnualTaxSaving)},
	)
	if in.MonthlyIncome > 0 {
		rows = append(rows,
			[]string{"---"},
			[]string{"Monthly income", cli.FormatINR(in.MonthlyIncome)},
			[]string{"EMI / income", cli.FormatPercent(res.EMIToIncomeRatioPercent)},
			[]string{"Affordability", cli.StatusLabel(res.Affordability)},
		)
	}

	return cli.Table{
		Headers: []string{"Item", "Value"},
		Rows:    rows,
	}
}
