package amortization

import (
	"sort"

	"github.com/theirongolddev/emicalc/internal/model"
)

// Schedule validates the input and returns its month-by-month schedule.
func (e *Engine) Schedule(in model.LoanInput) ([]model.ScheduleRow, error) {
	res, err := e.Compute(in)
	if err != nil {
		return nil, err
	}
	return BuildSchedule(res.LoanAmount, in.Scheme.AnnualRatePercent, in.TenureYears), nil
}

// BuildSchedule splits each installment into interest on the opening balance
// and principal. The final row pays off whatever balance remains, so the
// closing balance of the last month is exactly zero.
func BuildSchedule(loanAmount, annualRatePercent float64, tenureYears int) []model.ScheduleRow {
	n := tenureYears * 12
	if loanAmount <= 0 || n <= 0 {
		return nil
	}

	emi := ComputeMonthlyInstallment(loanAmount, annualRatePercent, tenureYears)
	r := annualRatePercent / 12 / 100

	rows := make([]model.ScheduleRow, 0, n)
	balance := loanAmount
	for month := 1; month <= n; month++ {
		interest := balance * r
		principal := emi - interest
		installment := emi
		if month == n || principal > balance {
			principal = balance
			installment = principal + interest
		}

		rows = append(rows, model.ScheduleRow{
			Month:          month,
			OpeningBalance: balance,
			Installment:    installment,
			Interest:       interest,
			Principal:      principal,
			ClosingBalance: balance - principal,
		})

		balance -= principal
		if balance <= 0 {
			break
		}
	}
	return rows
}

// YearlySummary groups schedule rows into loan years (months 1-12 are year 1).
func YearlySummary(rows []model.ScheduleRow) []model.YearSummary {
	byYear := make(map[int]*model.YearSummary)
	for _, r := range rows {
		year := (r.Month-1)/12 + 1
		ys, ok := byYear[year]
		if !ok {
			ys = &model.YearSummary{Year: year}
			byYear[year] = ys
		}
		ys.Paid += r.Installment
		ys.Interest += r.Interest
		ys.Principal += r.Principal
		ys.ClosingBalance = r.ClosingBalance
	}

	out := make([]model.YearSummary, 0, len(byYear))
	for _, ys := range byYear {
		out = append(out, *ys)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Year < out[j].Year
	})
	return out
}
