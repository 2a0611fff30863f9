package amortization

import "github.com/theirongolddev/emicalc/internal/model"

// Headroom works out how much the given income can borrow under scheme and
// the property price that loan supports after the down payment and subsidy.
func (e *Engine) Headroom(monthlyIncome float64, scheme model.LoanScheme, downPaymentPercent float64, tenureYears int) (model.Headroom, error) {
	switch {
	case !isFinite(monthlyIncome) || monthlyIncome <= 0:
		return model.Headroom{}, &ValidationError{Field: "monthly_income", Value: monthlyIncome, Reason: "must be greater than 0"}
	case !isFinite(downPaymentPercent) || downPaymentPercent < 0 || downPaymentPercent >= 100:
		return model.Headroom{}, &ValidationError{Field: "down_payment_percent", Value: downPaymentPercent, Reason: "must be at least 0 and below 100"}
	case tenureYears < MinTenureYears || tenureYears > MaxTenureYears:
		return model.Headroom{}, &ValidationError{Field: "tenure_years", Value: float64(tenureYears), Reason: "must be between 1 and 50"}
	case !isFinite(scheme.SubsidyAmount) || scheme.SubsidyAmount < 0:
		return model.Headroom{}, &ValidationError{Field: "subsidy_amount", Value: scheme.SubsidyAmount, Reason: "must be a finite number >= 0"}
	}

	if err := ValidateRate(scheme.AnnualRatePercent); err != nil {
		return model.Headroom{}, err
	}

	maxLoan := e.policy.MaxLoan(monthlyIncome, scheme.AnnualRatePercent, tenureYears)

	// price*(1-d) - subsidy = loan
	price := (maxLoan + scheme.SubsidyAmount) / (1 - downPaymentPercent/100)

	return model.Headroom{
		MonthlyIncome:      monthlyIncome,
		TargetRatioPercent: e.policy.GoodMaxRatio,
		MaxInstallment:     monthlyIncome * e.policy.GoodMaxRatio / 100,
		MaxLoan:            maxLoan,
		MaxPropertyPrice:   price,
		DownPaymentPercent: downPaymentPercent,
		TenureYears:        tenureYears,
		Scheme:             scheme,
	}, nil
}
