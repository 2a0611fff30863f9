package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/theirongolddev/emicalc/internal/amortization"
	"github.com/theirongolddev/emicalc/internal/cli"
)

var flagMonthly bool

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Amortization schedule by year (or month)",
	RunE:  runSchedule,
}

func init() {
	scheduleCmd.Flags().BoolVar(&flagMonthly, "monthly", false, "Show every installment instead of yearly totals")
	rootCmd.AddCommand(scheduleCmd)
}

func runSchedule(cmd *cobra.Command, _ []string) error {
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
	rows, err := rt.engine.Schedule(in)
	if err != nil {
		return err
	}
	rt.record(in, res)
	yearly := amortization.YearlySummary(rows)

	if flagJSON {
		if flagMonthly {
			return printJSON(rows)
		}
		return printJSON(yearly)
	}

	fmt.Println()
	fmt.Println(cli.RenderTitle(fmt.Sprintf("SCHEDULE  %s over %s", cli.FormatINR(res.LoanAmount), cli.FormatTenure(in.TenureYears))))
	fmt.Println()

	if len(rows) == 0 {
		fmt.Println("  Nothing to repay: the subsidy and down payment cover the price.")
		fmt.Println()
		return nil
	}

	var table cli.Table
	if flagMonthly {
		table.Headers = []string{"Month", "Opening", "EMI", "Principal", "Interest", "Closing"}
		for _, r := range rows {
			table.Rows = append(table.Rows, []string{
				strconv.Itoa(r.Month),
				cli.FormatINR(r.OpeningBalance),
				cli.FormatINRPaise(r.Installment),
				cli.FormatINR(r.Principal),
				cli.FormatINR(r.Interest),
				cli.FormatINR(r.ClosingBalance),
			})
		}
		table.Rows = append(table.Rows,
			[]string{"---"},
			[]string{"Total", "", cli.FormatINR(res.TotalPayment), cli.FormatINR(res.LoanAmount), cli.FormatINR(res.TotalInterest), ""},
		)
	} else {
		table.Headers = []string{"Year", "Paid", "Principal", "Interest", "Balance", "Interest %"}
		for _, y := range yearly {
			share := 0.0
			if y.Paid > 0 {
				share = y.Interest / y.Paid * 100
			}
			table.Rows = append(table.Rows, []string{
				strconv.Itoa(y.Year),
				cli.FormatINR(y.Paid),
				cli.FormatINR(y.Principal),
				cli.FormatINR(y.Interest),
				cli.FormatINR(y.ClosingBalance),
				cli.FormatPercent(share),
			})
		}
		table.Rows = append(table.Rows,
			[]string{"---"},
			[]string{"Total", cli.FormatINR(res.TotalPayment), cli.FormatINR(res.LoanAmount), cli.FormatINR(res.TotalInterest), "", cli.FormatPercent(res.InterestSharePercent)},
		)
	}

	fmt.Print(cli.RenderTable(table))
	fmt.Println()
	return nil
}
