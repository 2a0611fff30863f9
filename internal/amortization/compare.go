package amortization

import (
	"sort"

	"github.com/theirongolddev/emicalc/internal/model"
)

// Compare evaluates the same scenario under each scheme. Rows are ordered by
// monthly installment, cheapest first; schemes that fail validation keep
// their error and sort last.
func (e *Engine) Compare(in model.LoanInput, schemes []model.LoanScheme) []model.SchemeComparison {
	rows := make([]model.SchemeComparison, 0, len(schemes))
	for _, s := range schemes {
		scenario := in
		scenario.Scheme = s

		row := model.SchemeComparison{Scheme: s}
		res, err := e.Compute(scenario)
		if err != nil {
			row.Err = err.Error()
		} else {
			row.Result = res
		}
		rows = append(rows, row)
	}

	sort.SliceStable(rows, func(i, j int) bool {
		if (rows[i].Err == "") != (rows[j].Err == "") {
			return rows[i].Err == ""
		}
		return rows[i].Result.MonthlyInstallment < rows[j].Result.MonthlyInstallment
	})
	return rows
}
