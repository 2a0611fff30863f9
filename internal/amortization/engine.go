// Package amortization computes loan installments, totals, tax benefits and
// affordability for home-loan scenarios. Every function is pure.
package amortization

import (
	"math"

	"github.com/theirongolddev/emicalc/internal/model"
)

// Accepted tenure range in years.
const (
	MinTenureYears = 1
	MaxTenureYears = 50
)

// MaxAnnualRatePercent bounds scheme rates so (1+r)^n stays finite.
const MaxAnnualRatePercent = 100.0

// Engine evaluates loan scenarios under a fixed Policy.
// It holds no mutable state and is safe for concurrent use.
type Engine struct {
	policy Policy
}

// New returns an engine applying the given policy.
func New(policy Policy) *Engine {
	return &Engine{policy: policy}
}

var defaultEngine = New(DefaultPolicy())

// Policy returns the policy the engine was built with.
func (e *Engine) Policy() Policy {
	return e.policy
}

// Compute evaluates a scenario under DefaultPolicy.
func Compute(in model.LoanInput) (model.AmortizationResult, error) {
	return defaultEngine.Compute(in)
}

// Compute validates the input and derives the full result.
func (e *Engine) Compute(in model.LoanInput) (model.AmortizationResult, error) {
	if err := Validate(in); err != nil {
		return model.AmortizationResult{}, err
	}

	down := ComputeDownPayment(in.PropertyPrice, in.DownPaymentPercent)
	loan := ComputeLoanAmount(in.PropertyPrice, down, in.Scheme.SubsidyAmount)
	n := in.TenureYears * 12
	emi := ComputeMonthlyInstallment(loan, in.Scheme.AnnualRatePercent, in.TenureYears)
	total, interest := ComputeTotals(emi, n, loan)
	tax := e.policy.TaxBenefit(loan, interest, in.TenureYears)
	ratio, status := e.policy.Classify(emi, in.MonthlyIncome)

	res := model.AmortizationResult{
		DownPayment:             down,
		Subsidy:                 in.Scheme.SubsidyAmount,
		LoanAmount:              loan,
		MonthlyRatePercent:      in.Scheme.AnnualRatePercent / 12,
		Installments:            n,
		MonthlyInstallment:      emi,
		TotalPayment:            total,
		TotalInterest:           interest,
		AnnualPrincipal:         tax.AnnualPrincipal,
		AnnualInterest:          tax.AnnualInterest,
		Section80CDeduction:     tax.Section80C,
		Section24bDeduction:     tax.Section24b,
		AnnualTaxSaving:         tax.AnnualTaxSaving,
		EMIToIncomeRatioPercent: ratio,
		Affordability:           status,
	}

	if total > 0 {
		res.PrincipalSharePercent = math.Min(loan/total*100, 100)
		res.InterestSharePercent = 100 - res.PrincipalSharePercent
	}

	return res, nil
}

// Validate checks every numeric field of the input and returns the first
// offending one as a *ValidationError.
func Validate(in model.LoanInput) error {
	switch {
	case !isFinite(in.PropertyPrice):
		return &ValidationError{Field: "property_price", Value: in.PropertyPrice, Reason: "must be a finite number"}
	case in.PropertyPrice <= 0:
		return &ValidationError{Field: "property_price", Value: in.PropertyPrice, Reason: "must be greater than 0"}
	case !isFinite(in.DownPaymentPercent):
		return &ValidationError{Field: "down_payment_percent", Value: in.DownPaymentPercent, Reason: "must be a finite number"}
	case in.DownPaymentPercent < 0 || in.DownPaymentPercent > 100:
		return &ValidationError{Field: "down_payment_percent", Value: in.DownPaymentPercent, Reason: "must be between 0 and 100"}
	case in.TenureYears < MinTenureYears || in.TenureYears > MaxTenureYears:
		return &ValidationError{Field: "tenure_years", Value: float64(in.TenureYears), Reason: "must be between 1 and 50"}
	case !validRate(in.Scheme.AnnualRatePercent):
		return ValidateRate(in.Scheme.AnnualRatePercent)
	case !isFinite(in.Scheme.SubsidyAmount) || in.Scheme.SubsidyAmount < 0:
		return &ValidationError{Field: "subsidy_amount", Value: in.Scheme.SubsidyAmount, Reason: "must be a finite number >= 0"}
	case !isFinite(in.MonthlyIncome):
		return &ValidationError{Field: "monthly_income", Value: in.MonthlyIncome, Reason: "must be a finite number"}
	}
	return nil
}

// ValidateRate accepts annual rates in [0, MaxAnnualRatePercent].
func ValidateRate(annualRatePercent float64) error {
	if !validRate(annualRatePercent) {
		return &ValidationError{Field: "annual_rate_percent", Value: annualRatePercent, Reason: "must be between 0 and 100"}
	}
	return nil
}

// ComputeDownPayment returns price * pct / 100 with pct clamped to [0,100].
func ComputeDownPayment(propertyPrice, downPaymentPercent float64) float64 {
	pct := math.Max(0, math.Min(100, downPaymentPercent))
	return propertyPrice * pct / 100
}

// ComputeLoanAmount is the financed principal, never negative.
func ComputeLoanAmount(propertyPrice, downPayment, subsidy float64) float64 {
	return math.Max(0, propertyPrice-downPayment-subsidy)
}

// ComputeMonthlyInstallment applies the annuity formula
// EMI = P*r*(1+r)^n / ((1+r)^n - 1). A rate too small to register divides
// the principal evenly.
func ComputeMonthlyInstallment(loanAmount, annualRatePercent float64, tenureYears int) float64 {
	if loanAmount <= 0 || tenureYears <= 0 {
		return 0
	}

	n := float64(tenureYears * 12)
	k, ok := annuityFactor(annualRatePercent, n)
	if !ok {
		return loanAmount / n
	}
	return loanAmount * k
}

// annuityFactor returns r*(1+r)^n / ((1+r)^n - 1) for the monthly rate of
// annualRatePercent. ok is false when the rate is zero or so small that the
// growth term vanishes, and also when the factor is not finite.
// (1+r)^n - 1 is taken as expm1(n*log1p(r)) so tiny rates keep their precision.
func annuityFactor(annualRatePercent, n float64) (float64, bool) {
	r := annualRatePercent / 12 / 100
	if r <= 0 || n <= 0 {
		return 0, false
	}

	growth := math.Expm1(n * math.Log1p(r))
	if growth <= 0 || !isFinite(growth) {
		return 0, false
	}
	k := r * (1 + growth) / growth
	if !isFinite(k) || k <= 0 {
		return 0, false
	}
	return k, true
}

// ComputeTotals returns the total paid over n installments and the interest
// component, clamped at zero.
func ComputeTotals(emi float64, n int, loanAmount float64) (totalPayment, totalInterest float64) {
	totalPayment = emi * float64(n)
	totalInterest = math.Max(0, totalPayment-loanAmount)
	return totalPayment, totalInterest
}

func validRate(pct float64) bool {
	return isFinite(pct) && pct >= 0 && pct <= MaxAnnualRatePercent
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
