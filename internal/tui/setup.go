package tui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"

	"github.com/theirongolddev/emicalc/internal/amortization"
	"github.com/theirongolddev/emicalc/internal/cli"
	"github.com/theirongolddev/emicalc/internal/config"
	"github.com/theirongolddev/emicalc/internal/tui/theme"
)

// SetupValues backs the setup form fields. Amounts are kept as text so
// people can type "90L" or "1.2 Cr".
type SetupValues struct {
	PropertyPrice string
	DownPayment   string
	Tenure        string
	Scheme        string
	Income        string
	Theme         string
	SaveHistory   bool
}

// NewSetupValues seeds the form from an existing config.
func NewSetupValues(cfg config.Config) *SetupValues {
	income := ""
	if cfg.General.MonthlyIncome > 0 {
		income = cli.FormatINR(cfg.General.MonthlyIncome)
	}
	return &SetupValues{
		PropertyPrice: cli.FormatINR(cfg.General.PropertyPrice),
		DownPayment:   strconv.FormatFloat(cfg.General.DownPaymentPercent, 'f', -1, 64),
		Tenure:        strconv.Itoa(cfg.General.TenureYears),
		Scheme:        config.NormalizeSchemeName(cfg.General.Scheme),
		Income:        income,
		Theme:         cfg.Appearance.Theme,
		SaveHistory:   cfg.General.SaveHistory,
	}
}

func validatePrice(s string) error {
	v, err := cli.ParseINR(s)
	if err != nil {
		return err
	}
	if v <= 0 {
		return errors.New("must be greater than 0")
	}
	return nil
}

func validateIncome(s string) error {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	v, err := cli.ParseINR(s)
	if err != nil {
		return err
	}
	if v < 0 {
		return errors.New("must not be negative")
	}
	return nil
}

func validatePercent(s string) error {
	v, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(s, "%")), 64)
	if err != nil {
		return errors.New("enter a number")
	}
	if v < 0 || v > 100 {
		return errors.New("must be between 0 and 100")
	}
	return nil
}

func validateTenure(s string) error {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return errors.New("enter whole years")
	}
	if v < amortization.MinTenureYears || v > amortization.MaxTenureYears {
		return fmt.Errorf("must be between %d and %d", amortization.MinTenureYears, amortization.MaxTenureYears)
	}
	return nil
}

// NewSetupForm builds the first-run and `emicalc setup` form.
func NewSetupForm(v *SetupValues, catalog *config.Catalog) *huh.Form {
	var schemeOpts []huh.Option[string]
	for _, key := range catalog.Keys() {
		s, _ := catalog.Lookup(key)
		schemeOpts = append(schemeOpts, huh.NewOption(fmt.Sprintf("%s (%.2f%%)", s.Name, s.AnnualRatePercent), key))
	}

	themeOpts := make([]huh.Option[string], 0, len(theme.All))
	for _, th := range theme.All {
		themeOpts = append(themeOpts, huh.NewOption(th.Name, th.Name))
	}

	return huh.NewForm(
		huh.NewGroup(
			huh.NewNote().
				Title("Welcome to emicalc").
				Description("Set the scenario every command starts from.\nAmounts accept 90,00,000 or 90L or 1.2 Cr."),
			huh.NewInput().
				Title("Property price").
				Value(&v.PropertyPrice).
				Validate(validatePrice),
			huh.NewInput().
				Title("Down payment (%)").
				Value(&v.DownPayment).
				Validate(validatePercent),
			huh.NewInput().
				Title("Tenure (years)").
				Value(&v.Tenure).
				Validate(validateTenure),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Default loan scheme").
				Options(schemeOpts...).
				Value(&v.Scheme),
			huh.NewInput().
				Title("Monthly income").
				Description("Optional. Enables the affordability check.").
				Value(&v.Income).
				Validate(validateIncome),
		),
		huh.NewGroup(
			huh.NewSelect[string]().
				Title("Color theme").
				Options(themeOpts...).
				Value(&v.Theme),
			huh.NewConfirm().
				Title("Keep a history of calculations?").
				Affirmative("Yes").
				Negative("No").
				Value(&v.SaveHistory),
		),
	).WithShowHelp(false)
}

// Apply copies validated form values into cfg.
func (v *SetupValues) Apply(cfg *config.Config) error {
	price, err := cli.ParseINR(v.PropertyPrice)
	if err != nil {
		return fmt.Errorf("property price: %w", err)
	}
	down, err := strconv.ParseFloat(strings.TrimSpace(strings.TrimSuffix(v.DownPayment, "%")), 64)
	if err != nil {
		return fmt.Errorf("down payment: %w", err)
	}
	tenure, err := strconv.Atoi(strings.TrimSpace(v.Tenure))
	if err != nil {
		return fmt.Errorf("tenure: %w", err)
	}
	income := 0.0
	if strings.TrimSpace(v.Income) != "" {
		if income, err = cli.ParseINR(v.Income); err != nil {
			return fmt.Errorf("monthly income: %w", err)
		}
	}

	cfg.General.PropertyPrice = price
	cfg.General.DownPaymentPercent = down
	cfg.General.TenureYears = tenure
	cfg.General.Scheme = v.Scheme
	cfg.General.MonthlyIncome = income
	cfg.General.SaveHistory = v.SaveHistory
	cfg.Appearance.Theme = v.Theme
	return nil
}
