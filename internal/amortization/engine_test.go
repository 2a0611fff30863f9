package amortization

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/emicalc/internal/model"
)

func scenario(rate, subsidy float64) model.LoanInput {
	return model.LoanInput{
		PropertyPrice:      9_000_000,
		DownPaymentPercent: 20,
		TenureYears:        20,
		Scheme: model.LoanScheme{
			Name:              "test",
			AnnualRatePercent: rate,
			SubsidyAmount:     subsidy,
		},
	}
}

func TestCompute_StandardScenario(t *testing.T) {
	res, err := Compute(scenario(8.5, 0))
	require.NoError(t, err)

	assert.Equal(t, 1_800_000.0, res.DownPayment)
	assert.Equal(t, 7_200_000.0, res.LoanAmount)
	assert.Equal(t, 240, res.Installments)
	assert.InDelta(t, 0.0070833, res.MonthlyRatePercent/100, 1e-7)
	assert.InDelta(t, 62_483.27, res.MonthlyInstallment, 1)
	assert.InDelta(t, 14_995_985.47, res.TotalPayment, 240)
	assert.InDelta(t, 7_795_985.47, res.TotalInterest, 240)
	assert.Equal(t, res.MonthlyInstallment*240, res.TotalPayment)
	assert.Equal(t, res.TotalPayment-res.LoanAmount, res.TotalInterest)
	assert.Equal(t, model.AffordabilityUnknown, res.Affordability)
	assert.InDelta(t, 100, res.PrincipalSharePercent+res.InterestSharePercent, 1e-9)
}

func TestCompute_SubsidisedSchemeIsCheaper(t *testing.T) {
	base, err := Compute(scenario(8.5, 0))
	require.NoError(t, err)

	pmay, err := Compute(scenario(6.5, 267_000))
	require.NoError(t, err)

	assert.Equal(t, 6_933_000.0, pmay.LoanAmount)
	assert.Equal(t, 267_000.0, pmay.Subsidy)
	assert.Less(t, pmay.MonthlyInstallment, base.MonthlyInstallment)
}

func TestCompute_ZeroRateFallsBackToStraightLine(t *testing.T) {
	res, err := Compute(scenario(0, 0))
	require.NoError(t, err)

	assert.False(t, math.IsNaN(res.MonthlyInstallment))
	assert.Equal(t, res.LoanAmount/240, res.MonthlyInstallment)
	assert.Equal(t, 0.0, res.TotalInterest)
	assert.Equal(t, 0.0, res.AnnualInterest)
}

func TestCompute_Idempotent(t *testing.T) {
	in := scenario(8.5, 0)
	in.MonthlyIncome = 150_000

	first, err := Compute(in)
	require.NoError(t, err)
	second, err := Compute(in)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestCompute_SubsidyCoveringPriceYieldsZeroLoan(t *testing.T) {
	in := scenario(8.5, 20_000_000)
	res, err := Compute(in)
	require.NoError(t, err)

	assert.Equal(t, 0.0, res.LoanAmount)
	assert.Equal(t, 0.0, res.MonthlyInstallment)
	assert.Equal(t, 0.0, res.TotalPayment)
	assert.Equal(t, 0.0, res.TotalInterest)
	assert.Equal(t, 0.0, res.PrincipalSharePercent)
}

func TestCompute_AffordabilityFromIncome(t *testing.T) {
	in := scenario(8.5, 0)
	in.MonthlyIncome = 100_000

	res, err := Compute(in)
	require.NoError(t, err)

	assert.InDelta(t, 62.48, res.EMIToIncomeRatioPercent, 0.01)
	assert.Equal(t, model.AffordabilityRisky, res.Affordability)
}

func TestMonthlyInstallment_PositiveAndCoversPrincipal(t *testing.T) {
	for _, loan := range []float64{1, 50_000, 2_500_000, 75_000_000} {
		for _, rate := range []float64{0.1, 6.5, 8.5, 12, 24} {
			for _, years := range []int{1, 5, 20, 30, 50} {
				emi := ComputeMonthlyInstallment(loan, rate, years)
				total, interest := ComputeTotals(emi, years*12, loan)

				require.Greater(t, emi, 0.0, "loan=%v rate=%v years=%d", loan, rate, years)
				require.GreaterOrEqual(t, total, loan, "loan=%v rate=%v years=%d", loan, rate, years)
				require.GreaterOrEqual(t, interest, 0.0)
			}
		}
	}
}

func TestCompute_ExtremeRatesStayFinite(t *testing.T) {
	for _, rate := range []float64{1e-300, 1e-20, 1e-14, 1e-9, MaxAnnualRatePercent} {
		res, err := Compute(scenario(rate, 0))
		if err != nil {
			t.Fatalf("Compute(rate=%g) error = %v", rate, err)
		}
		for name, v := range map[string]float64{
			"MonthlyInstallment": res.MonthlyInstallment,
			"TotalPayment":       res.TotalPayment,
			"TotalInterest":      res.TotalInterest,
		} {
			if math.IsNaN(v) || math.IsInf(v, 0) {
				t.Fatalf("rate=%g: %s = %v, want finite", rate, name, v)
			}
		}
		if res.MonthlyInstallment <= 0 {
			t.Fatalf("rate=%g: MonthlyInstallment = %v, want > 0", rate, res.MonthlyInstallment)
		}
		if res.TotalPayment < res.LoanAmount*(1-1e-12) {
			t.Fatalf("rate=%g: TotalPayment = %v, want >= LoanAmount %v", rate, res.TotalPayment, res.LoanAmount)
		}
	}

	tiny, _ := Compute(scenario(1e-14, 0))
	if got, want := tiny.MonthlyInstallment, tiny.LoanAmount/240; math.Abs(got-want) > 1e-6 {
		t.Fatalf("rate=1e-14: MonthlyInstallment = %v, want %v", got, want)
	}
}

func TestCompute_RejectsRateAboveMaximum(t *testing.T) {
	for _, rate := range []float64{MaxAnnualRatePercent + 0.01, 1e5, math.Inf(1)} {
		_, err := Compute(scenario(rate, 0))
		ve, ok := AsValidation(err)
		if !ok {
			t.Fatalf("Compute(rate=%g) error = %v, want ValidationError", rate, err)
		}
		if ve.Field != "annual_rate_percent" {
			t.Fatalf("Compute(rate=%g) field = %q, want annual_rate_percent", rate, ve.Field)
		}
	}
}

func TestMaxLoan_TinyRateMatchesStraightLine(t *testing.T) {
	p := DefaultPolicy()
	got := p.MaxLoan(100_000, 1e-14, 20)
	want := p.MaxLoan(100_000, 0, 20)
	if math.IsInf(got, 0) || math.IsNaN(got) || math.Abs(got-want) > 1e-3 {
		t.Fatalf("MaxLoan(rate=1e-14) = %v, want %v", got, want)
	}
}

func TestComputeTotals_ClampsNegativeInterest(t *testing.T) {
	total, interest := ComputeTotals(99.99999999, 12, 1200)
	assert.Less(t, total, 1200.0)
	assert.Equal(t, 0.0, interest)
}

func TestComputeDownPayment_ClampsPercent(t *testing.T) {
	assert.Equal(t, 1_000_000.0, ComputeDownPayment(1_000_000, 150))
	assert.Equal(t, 0.0, ComputeDownPayment(1_000_000, -5))
	assert.Equal(t, 250_000.0, ComputeDownPayment(1_000_000, 25))
}

func TestComputeLoanAmount_FloorsAtZero(t *testing.T) {
	assert.Equal(t, 0.0, ComputeLoanAmount(1_000_000, 900_000, 200_000))
	assert.Equal(t, 600_000.0, ComputeLoanAmount(1_000_000, 200_000, 200_000))
}

func TestTaxBenefit_CapsDeductions(t *testing.T) {
	res, err := Compute(scenario(8.5, 0))
	require.NoError(t, err)

	assert.Greater(t, res.AnnualPrincipal, DefaultSection80CCap)
	assert.Equal(t, 150_000.0, res.Section80CDeduction)
	assert.Greater(t, res.AnnualInterest, DefaultSection24bCap)
	assert.Equal(t, 200_000.0, res.Section24bDeduction)
	assert.Equal(t, 105_000.0, res.AnnualTaxSaving)
}

func TestTaxBenefit_BelowCaps(t *testing.T) {
	tb := ComputeTaxBenefit(1_000_000, 400_000, 10, 20)

	assert.Equal(t, 100_000.0, tb.AnnualPrincipal)
	assert.Equal(t, 40_000.0, tb.AnnualInterest)
	assert.Equal(t, 100_000.0, tb.Section80C)
	assert.Equal(t, 40_000.0, tb.Section24b)
	assert.Equal(t, 28_000.0, tb.AnnualTaxSaving)
}

func TestTaxBenefit_InjectedPolicy(t *testing.T) {
	p := DefaultPolicy()
	p.Section80CCap = 50_000
	p.TaxBracketPercent = 10

	tb := p.TaxBenefit(7_200_000, 0, 20)
	assert.Equal(t, 50_000.0, tb.Section80C)
	assert.Equal(t, 5_000.0, tb.AnnualTaxSaving)
}

func TestClassifyAffordability_Boundaries(t *testing.T) {
	tests := []struct {
		name   string
		emi    float64
		income float64
		want   model.AffordabilityStatus
	}{
		{"no income", 50_000, 0, model.AffordabilityUnknown},
		{"negative income", 50_000, -1, model.AffordabilityUnknown},
		{"well under", 10_000, 100_000, model.AffordabilityExcellent},
		{"exactly 40", 40_000, 100_000, model.AffordabilityExcellent},
		{"just over 40", 40_001, 100_000, model.AffordabilityGood},
		{"exactly 50", 50_000, 100_000, model.AffordabilityGood},
		{"exactly 60", 60_000, 100_000, model.AffordabilityStretched},
		{"60.0001", 60_000.1, 100_000, model.AffordabilityRisky},
		{"above income", 120_000, 100_000, model.AffordabilityRisky},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ClassifyAffordability(tt.emi, tt.income))
		})
	}
}

func TestClassify_ReturnsRatio(t *testing.T) {
	ratio, status := DefaultPolicy().Classify(50_000, 100_000)
	assert.Equal(t, 50.0, ratio)
	assert.Equal(t, model.AffordabilityGood, status)
}

func TestValidate_RejectsBadInput(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(*model.LoanInput)
		field string
	}{
		{"zero price", func(in *model.LoanInput) { in.PropertyPrice = 0 }, "property_price"},
		{"negative price", func(in *model.LoanInput) { in.PropertyPrice = -1 }, "property_price"},
		{"NaN price", func(in *model.LoanInput) { in.PropertyPrice = math.NaN() }, "property_price"},
		{"infinite price", func(in *model.LoanInput) { in.PropertyPrice = math.Inf(1) }, "property_price"},
		{"down over 100", func(in *model.LoanInput) { in.DownPaymentPercent = 101 }, "down_payment_percent"},
		{"down negative", func(in *model.LoanInput) { in.DownPaymentPercent = -1 }, "down_payment_percent"},
		{"down NaN", func(in *model.LoanInput) { in.DownPaymentPercent = math.NaN() }, "down_payment_percent"},
		{"zero tenure", func(in *model.LoanInput) { in.TenureYears = 0 }, "tenure_years"},
		{"tenure over 50", func(in *model.LoanInput) { in.TenureYears = 51 }, "tenure_years"},
		{"negative rate", func(in *model.LoanInput) { in.Scheme.AnnualRatePercent = -0.5 }, "annual_rate_percent"},
		{"NaN rate", func(in *model.LoanInput) { in.Scheme.AnnualRatePercent = math.NaN() }, "annual_rate_percent"},
		{"negative subsidy", func(in *model.LoanInput) { in.Scheme.SubsidyAmount = -10 }, "subsidy_amount"},
		{"infinite income", func(in *model.LoanInput) { in.MonthlyIncome = math.Inf(1) }, "monthly_income"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := scenario(8.5, 0)
			tt.edit(&in)

			_, err := Compute(in)
			require.Error(t, err)
			assert.True(t, IsValidation(err))

			ve, ok := AsValidation(err)
			require.True(t, ok)
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestValidate_AcceptsBoundaries(t *testing.T) {
	in := scenario(8.5, 0)
	in.DownPaymentPercent = 100
	in.TenureYears = MaxTenureYears
	require.NoError(t, Validate(in))

	in.DownPaymentPercent = 0
	in.TenureYears = MinTenureYears
	require.NoError(t, Validate(in))
}

func TestPolicy_Validate(t *testing.T) {
	require.NoError(t, DefaultPolicy().Validate())

	p := DefaultPolicy()
	p.GoodMaxRatio = 30
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.TaxBracketPercent = 120
	assert.Error(t, p.Validate())

	p = DefaultPolicy()
	p.Section24bCap = -1
	assert.Error(t, p.Validate())
}

func TestMaxLoan_RoundTripsToGoodBand(t *testing.T) {
	p := DefaultPolicy()
	loan := p.MaxLoan(100_000, 8.5, 20)
	emi := ComputeMonthlyInstallment(loan, 8.5, 20)

	assert.InDelta(t, 50_000, emi, 1e-6)
	assert.Equal(t, 50_000.0*240, p.MaxLoan(100_000, 0, 20))
	assert.Equal(t, 0.0, p.MaxLoan(0, 8.5, 20))
}

func TestEngine_UsesInjectedPolicy(t *testing.T) {
	p := DefaultPolicy()
	p.ExcellentMaxRatio = 70
	p.GoodMaxRatio = 80
	p.StretchedMaxRatio = 90
	e := New(p)

	in := scenario(8.5, 0)
	in.MonthlyIncome = 100_000

	res, err := e.Compute(in)
	require.NoError(t, err)
	assert.Equal(t, model.AffordabilityExcellent, res.Affordability)
	assert.Equal(t, p, e.Policy())
}

func BenchmarkCompute(b *testing.B) {
	in := scenario(8.5, 0)
	in.MonthlyIncome = 150_000

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := Compute(in); err != nil {
			b.Fatal(err)
		}
	}
}
