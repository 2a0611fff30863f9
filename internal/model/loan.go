// Package model defines value types for loan scenarios and their computed results.
package model

// LoanScheme is one entry of the lender/subsidy catalog.
type LoanScheme struct {
	Name              string  `json:"name" yaml:"name" toml:"name"`
	AnnualRatePercent float64 `json:"annual_rate_percent" yaml:"annual_rate_percent" toml:"annual_rate_percent"`
	SubsidyAmount     float64 `json:"subsidy_amount" yaml:"subsidy_amount" toml:"subsidy_amount"`
	EligibilityText   string  `json:"eligibility" yaml:"eligibility" toml:"eligibility"`
}

// LoanInput is a single loan scenario supplied by the caller.
type LoanInput struct {
	PropertyPrice      float64    `json:"property_price"`
	DownPaymentPercent float64    `json:"down_payment_percent"`
	TenureYears        int        `json:"tenure_years"`
	Scheme             LoanScheme `json:"scheme"`
	MonthlyIncome      float64    `json:"monthly_income,omitempty"` // 0 means not supplied
}

// AffordabilityStatus classifies the EMI-to-income ratio.
type AffordabilityStatus string

const (
	AffordabilityUnknown   AffordabilityStatus = "unknown"
	AffordabilityExcellent AffordabilityStatus = "excellent"
	AffordabilityGood      AffordabilityStatus = "good"
	AffordabilityStretched AffordabilityStatus = "stretched"
	AffordabilityRisky     AffordabilityStatus = "risky"
)

// AmortizationResult holds every value derived from a LoanInput.
// All amounts are unrounded; rounding is a display concern.
type AmortizationResult struct {
	DownPayment        float64 `json:"down_payment"`
	Subsidy            float64 `json:"subsidy"`
	LoanAmount         float64 `json:"loan_amount"`
	MonthlyRatePercent float64 `json:"monthly_rate_percent"`
	Installments       int     `json:"installments"`
	MonthlyInstallment float64 `json:"monthly_installment"`
	TotalPayment       float64 `json:"total_payment"`
	TotalInterest      float64 `json:"total_interest"`

	AnnualPrincipal     float64 `json:"annual_principal"`
	AnnualInterest      float64 `json:"annual_interest"`
	Section80CDeduction float64 `json:"section_80c_deduction"`
	Section24bDeduction float64 `json:"section_24b_deduction"`
	AnnualTaxSaving     float64 `json:"annual_tax_saving"`

	EMIToIncomeRatioPercent float64             `json:"emi_to_income_ratio_percent"`
	Affordability           AffordabilityStatus `json:"affordability_status"`

	// Shares of TotalPayment, used for the principal vs interest chart.
	PrincipalSharePercent float64 `json:"principal_share_percent"`
	InterestSharePercent  float64 `json:"interest_share_percent"`
}

// ScheduleRow is one month of an amortization schedule.
type ScheduleRow struct {
	Month          int     `json:"month"`
	OpeningBalance float64 `json:"opening_balance"`
	Installment    float64 `json:"installment"`
	Interest       float64 `json:"interest"`
	Principal      float64 `json:"principal"`
	ClosingBalance float64 `json:"closing_balance"`
}

// YearSummary rolls twelve schedule rows into one loan year.
type YearSummary struct {
	Year           int     `json:"year"`
	Paid           float64 `json:"paid"`
	Interest       float64 `json:"interest"`
	Principal      float64 `json:"principal"`
	ClosingBalance float64 `json:"closing_balance"`
}

// SchemeComparison is one scheme evaluated against a shared scenario.
type SchemeComparison struct {
	Scheme LoanScheme         `json:"scheme"`
	Result AmortizationResult `json:"result"`
	Err    string             `json:"error,omitempty"`
}

// Headroom is the most a given income can borrow while staying in the
// "good" affordability band.
type Headroom struct {
	MonthlyIncome      float64    `json:"monthly_income"`
	TargetRatioPercent float64    `json:"target_ratio_percent"`
	MaxInstallment     float64    `json:"max_installment"`
	MaxLoan            float64    `json:"max_loan"`
	MaxPropertyPrice   float64    `json:"max_property_price"`
	DownPaymentPercent float64    `json:"down_payment_percent"`
	TenureYears        int        `json:"tenure_years"`
	Scheme             LoanScheme `json:"scheme"`
}
