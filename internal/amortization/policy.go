package amortization

import (
	"errors"
	"fmt"
	"math"

	"github.com/theirongolddev/emicalc/internal/model"
)

// Statutory defaults for the Indian home-loan deductions.
const (
	DefaultSection80CCap     = 150_000.0
	DefaultSection24bCap     = 200_000.0
	DefaultTaxBracketPercent = 30.0

	DefaultExcellentMaxRatio = 40.0
	DefaultGoodMaxRatio      = 50.0
	DefaultStretchedMaxRatio = 60.0
)

// Policy holds the regulatory and lending constants the engine applies.
// Ratios are EMI as a percentage of monthly income; each bound is inclusive.
type Policy struct {
	Section80CCap     float64
	Section24bCap     float64
	TaxBracketPercent float64

	ExcellentMaxRatio float64
	GoodMaxRatio      float64
	StretchedMaxRatio float64
}

// DefaultPolicy returns the current Indian tax caps, the 30% bracket and the
// 40/50/60 affordability bands.
func DefaultPolicy() Policy {
	return Policy{
		Section80CCap:     DefaultSection80CCap,
		Section24bCap:     DefaultSection24bCap,
		TaxBracketPercent: DefaultTaxBracketPercent,
		ExcellentMaxRatio: DefaultExcellentMaxRatio,
		GoodMaxRatio:      DefaultGoodMaxRatio,
		StretchedMaxRatio: DefaultStretchedMaxRatio,
	}
}

// Validate reports a policy that would produce meaningless results.
func (p Policy) Validate() error {
	if p.Section80CCap < 0 || p.Section24bCap < 0 {
		return errors.New("deduction caps must not be negative")
	}
	if p.TaxBracketPercent < 0 || p.TaxBracketPercent > 100 {
		return fmt.Errorf("tax bracket %.2f%% outside [0,100]", p.TaxBracketPercent)
	}
	if !(p.ExcellentMaxRatio > 0 && p.ExcellentMaxRatio < p.GoodMaxRatio && p.GoodMaxRatio < p.StretchedMaxRatio) {
		return fmt.Errorf("affordability bands must ascend: %.2f < %.2f < %.2f",
			p.ExcellentMaxRatio, p.GoodMaxRatio, p.StretchedMaxRatio)
	}
	return nil
}

// TaxBenefit is the yearly deduction estimate for a loan.
type TaxBenefit struct {
	AnnualPrincipal float64
	AnnualInterest  float64
	Section80C      float64
	Section24b      float64
	AnnualTaxSaving float64
}

// TaxBenefit spreads principal and interest evenly over the tenure and caps
// each yearly amount at its section limit.
func (p Policy) TaxBenefit(loanAmount, totalInterest float64, tenureYears int) TaxBenefit {
	if tenureYears <= 0 {
		return TaxBenefit{}
	}
	years := float64(tenureYears)

	tb := TaxBenefit{
		AnnualPrincipal: loanAmount / years,
		AnnualInterest:  totalInterest / years,
	}
	tb.Section80C = math.Min(tb.AnnualPrincipal, p.Section80CCap)
	tb.Section24b = math.Min(tb.AnnualInterest, p.Section24bCap)
	tb.AnnualTaxSaving = (tb.Section80C + tb.Section24b) * p.TaxBracketPercent / 100
	return tb
}

// Classify returns the EMI-to-income ratio and its band. A non-positive
// income yields a zero ratio and AffordabilityUnknown.
func (p Policy) Classify(emi, monthlyIncome float64) (float64, model.AffordabilityStatus) {
	if monthlyIncome <= 0 {
		return 0, model.AffordabilityUnknown
	}

	// emi*100/income keeps round figures exact (50000*100/100000 == 50).
	ratio := emi * 100 / monthlyIncome

	switch {
	case ratio <= p.ExcellentMaxRatio:
		return ratio, model.AffordabilityExcellent
	case ratio <= p.GoodMaxRatio:
		return ratio, model.AffordabilityGood
	case ratio <= p.StretchedMaxRatio:
		return ratio, model.AffordabilityStretched
	default:
		return ratio, model.AffordabilityRisky
	}
}

// MaxLoan returns the largest principal whose EMI stays within the "good"
// band for the given income, rate and tenure.
func (p Policy) MaxLoan(monthlyIncome, annualRatePercent float64, tenureYears int) float64 {
	if monthlyIncome <= 0 || tenureYears <= 0 || annualRatePercent < 0 {
		return 0
	}

	emi := monthlyIncome * p.GoodMaxRatio / 100
	n := float64(tenureYears * 12)
	k, ok := annuityFactor(annualRatePercent, n)
	if !ok {
		return emi * n
	}
	return emi / k
}

// ComputeTaxBenefit applies the default caps with a caller-chosen bracket.
func ComputeTaxBenefit(loanAmount, totalInterest float64, tenureYears int, taxBracketPercent float64) TaxBenefit {
	p := DefaultPolicy()
	p.TaxBracketPercent = taxBracketPercent
	return p.TaxBenefit(loanAmount, totalInterest, tenureYears)
}

// ClassifyAffordability applies the default 40/50/60 bands.
func ClassifyAffordability(emi, monthlyIncome float64) model.AffordabilityStatus {
	_, status := DefaultPolicy().Classify(emi, monthlyIncome)
	return status
}
