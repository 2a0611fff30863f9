// Package tui provides the interactive Bubble Tea loan calculator for emicalc.
package tui

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/theirongolddev/emicalc/internal/amortization"
	"github.com/theirongolddev/emicalc/internal/cli"
	"github.com/theirongolddev/emicalc/internal/config"
	"github.com/theirongolddev/emicalc/internal/model"
	"github.com/theirongolddev/emicalc/internal/store"
	"github.com/theirongolddev/emicalc/internal/tui/components"
	"github.com/theirongolddev/emicalc/internal/tui/theme"
)

// HistorySaver persists calculations saved from the calculator.
type HistorySaver interface {
	Save(ctx context.Context, c model.Calculation) error
}

// SavedMsg reports the outcome of a history save.
type SavedMsg struct {
	ID  string
	Err error
}

type field int

const (
	fieldPrice field = iota
	fieldDown
	fieldTenure
	fieldScheme
	fieldIncome
	fieldCount
)

var fieldLabels = [fieldCount]string{
	"Property price",
	"Down payment",
	"Tenure",
	"Scheme",
	"Monthly income",
}

// Adjustment steps and the ranges the sliders move within.
const (
	priceStep     = 100_000
	priceBigStep  = 1_000_000
	minPrice      = 100_000
	maxPrice      = 500_000_000
	downStep      = 1
	downBigStep   = 5
	minDown       = 10
	maxDown       = 50
	tenureStep    = 1
	tenureBigStep = 5
	minTenure     = 5
	maxTenure     = 30
	incomeStep    = 5_000
	incomeBigStep = 25_000
	maxIncome     = 10_000_000

	minTerminalWidth = 60
	maxContentWidth  = 140
)

const (
	tabCalculator = iota
	tabSchedule
	tabCompare
)

// Options configures a new App.
type Options struct {
	Engine    *amortization.Engine
	Catalog   *config.Catalog
	Config    config.Config
	Input     model.LoanInput
	SchemeKey string
	History   HistorySaver // nil disables saving
	NeedSetup bool
}

// App is the root Bubble Tea model.
type App struct {
	engine     *amortization.Engine
	catalog    *config.Catalog
	schemeKeys []string
	schemeIdx  int
	cfg        config.Config

	input      model.LoanInput
	initial    model.LoanInput
	result     model.AmortizationResult
	yearly     []model.YearSummary
	comparison []model.SchemeComparison
	err        error

	history HistorySaver
	message string

	// UI state
	width     int
	height    int
	activeTab int
	focus     field
	scroll    int
	showHelp  bool

	// First-run setup (huh form)
	setupForm *huh.Form
	setupVals *SetupValues
	needSetup bool
}

// NewApp builds the calculator and computes the starting scenario.
func NewApp(opts Options) App {
	engine := opts.Engine
	if engine == nil {
		engine = amortization.New(amortization.DefaultPolicy())
	}

	a := App{
		engine:     engine,
		catalog:    opts.Catalog,
		schemeKeys: opts.Catalog.Keys(),
		cfg:        opts.Config,
		input:      opts.Input,
		initial:    opts.Input,
		history:    opts.History,
		needSetup:  opts.NeedSetup,
	}

	key := config.NormalizeSchemeName(opts.SchemeKey)
	for i, k := range a.schemeKeys {
		if k == key {
			a.schemeIdx = i
		}
	}

	if a.needSetup {
		a.setupVals = NewSetupValues(opts.Config)
		a.setupForm = NewSetupForm(a.setupVals, opts.Catalog)
	}

	a.recompute()
	return a
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	if a.needSetup && a.setupForm != nil {
		return a.setupForm.Init()
	}
	return nil
}

// recompute evaluates the current input eagerly after every change.
func (a *App) recompute() {
	res, err := a.engine.Compute(a.input)
	a.err = err
	if err != nil {
		a.result = model.AmortizationResult{}
		a.yearly = nil
		a.comparison = nil
		return
	}
	a.result = res

	rows, err := a.engine.Schedule(a.input)
	if err == nil {
		a.yearly = amortization.YearlySummary(rows)
	}

	a.comparison = a.engine.Compare(a.input, a.catalog.All())
	if a.scroll > len(a.yearly) {
		a.scroll = 0
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// adjust moves the focused field by dir steps (dir is -1 or +1).
func (a *App) adjust(dir int, big bool) {
	d := float64(dir)
	switch a.focus {
	case fieldPrice:
		step := float64(priceStep)
		if big {
			step = priceBigStep
		}
		a.input.PropertyPrice = clamp(a.input.PropertyPrice+d*step, minPrice, maxPrice)
	case fieldDown:
		step := float64(downStep)
		if big {
			step = downBigStep
		}
		a.input.DownPaymentPercent = clamp(a.input.DownPaymentPercent+d*step, minDown, maxDown)
	case fieldTenure:
		step := tenureStep
		if big {
			step = tenureBigStep
		}
		a.input.TenureYears = int(clamp(float64(a.input.TenureYears+dir*step), minTenure, maxTenure))
	case fieldScheme:
		if len(a.schemeKeys) == 0 {
			return
		}
		a.schemeIdx = (a.schemeIdx + dir + len(a.schemeKeys)) % len(a.schemeKeys)
		if s, ok := a.catalog.Lookup(a.schemeKeys[a.schemeIdx]); ok {
			a.input.Scheme = s
		}
	case fieldIncome:
		step := float64(incomeStep)
		if big {
			step = incomeBigStep
		}
		a.input.MonthlyIncome = clamp(a.input.MonthlyIncome+d*step, 0, maxIncome)
	}
	a.message = ""
	a.recompute()
}

func saveCmd(h HistorySaver, c model.Calculation) tea.Cmd {
	return func() tea.Msg {
		return SavedMsg{ID: c.ID, Err: h.Save(context.Background(), c)}
	}
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {

	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.setupForm != nil {
			a.setupForm = a.setupForm.WithWidth(msg.Width).WithHeight(msg.Height)
		}
		return a, nil

	case SavedMsg:
		if msg.Err != nil {
			a.message = "save failed: " + msg.Err.Error()
		} else {
			a.message = "saved " + shortID(msg.ID)
		}
		return a, nil

	case tea.KeyMsg:
		key := msg.String()

		if key == "ctrl+c" {
			return a, tea.Quit
		}

		if a.needSetup && a.setupForm != nil {
			return a.updateSetupForm(msg)
		}

		if key == "?" {
			a.showHelp = !a.showHelp
			return a, nil
		}
		if a.showHelp {
			if key == "esc" || key == "q" {
				a.showHelp = false
			}
			return a, nil
		}

		return a.handleKey(key)
	}

	// Forward unhandled messages to the setup form (cursor blinks, etc.)
	if a.needSetup && a.setupForm != nil {
		return a.updateSetupForm(msg)
	}

	return a, nil
}

func (a App) handleKey(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "q", "esc":
		return a, tea.Quit
	case "tab":
		a.activeTab = (a.activeTab + 1) % len(components.Tabs)
		return a, nil
	case "shift+tab":
		a.activeTab = (a.activeTab + len(components.Tabs) - 1) % len(components.Tabs)
		return a, nil
	case "r":
		a.input = a.initial
		a.message = "reset"
		a.recompute()
		return a, nil
	case "s":
		if a.history == nil {
			a.message = "history is disabled"
			return a, nil
		}
		if a.err != nil {
			a.message = "nothing to save"
			return a, nil
		}
		return a, saveCmd(a.history, store.NewCalculation("tui", a.input, a.result))
	}

	if len(key) == 1 {
		if idx := components.TabIdxByKey(rune(key[0])); idx >= 0 {
			a.activeTab = idx
			return a, nil
		}
	}

	if a.activeTab == tabSchedule {
		switch key {
		case "up", "k":
			if a.scroll > 0 {
				a.scroll--
			}
		case "down", "j":
			if a.scroll < len(a.yearly)-1 {
				a.scroll++
			}
		}
		return a, nil
	}

	switch key {
	case "up", "k":
		a.focus = (a.focus + fieldCount - 1) % fieldCount
	case "down", "j":
		a.focus = (a.focus + 1) % fieldCount
	case "left", "h":
		a.adjust(-1, false)
	case "right", "l":
		a.adjust(1, false)
	case "shift+left", "H":
		a.adjust(-1, true)
	case "shift+right", "L":
		a.adjust(1, true)
	}
	return a, nil
}

func (a App) updateSetupForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	form, cmd := a.setupForm.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		a.setupForm = f
	}

	if a.setupForm.State == huh.StateCompleted {
		a.applySetup()
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	if a.setupForm.State == huh.StateAborted {
		a.needSetup = false
		a.setupForm = nil
		return a, nil
	}

	return a, cmd
}

// applySetup saves the form values and restarts the calculator from them.
func (a *App) applySetup() {
	if err := a.setupVals.Apply(&a.cfg); err != nil {
		a.message = err.Error()
		return
	}
	if err := config.Save(a.cfg); err != nil {
		a.message = "could not save config: " + err.Error()
	} else {
		a.message = "saved " + config.Path()
	}

	theme.SetActive(a.cfg.Appearance.Theme)

	a.input.PropertyPrice = a.cfg.General.PropertyPrice
	a.input.DownPaymentPercent = a.cfg.General.DownPaymentPercent
	a.input.TenureYears = a.cfg.General.TenureYears
	a.input.MonthlyIncome = a.cfg.General.MonthlyIncome
	for i, k := range a.schemeKeys {
		if k == a.cfg.General.Scheme {
			a.schemeIdx = i
			if s, ok := a.catalog.Lookup(k); ok {
				a.input.Scheme = s
			}
		}
	}
	a.initial = a.input
	a.recompute()
}

func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func (a App) contentWidth() int {
	cw := a.width
	if cw > maxContentWidth {
		cw = maxContentWidth
	}
	return cw
}

// View implements tea.Model.
func (a App) View() string {
	if a.width == 0 {
		return ""
	}

	if a.width < minTerminalWidth {
		return lipgloss.NewStyle().Foreground(theme.Active.TextMuted).
			Render(fmt.Sprintf("\n  Terminal too narrow (%d cols, need %d)", a.width, minTerminalWidth))
	}

	if a.needSetup && a.setupForm != nil {
		return a.setupForm.View()
	}

	if a.showHelp {
		return a.viewHelp()
	}

	var body string
	switch a.activeTab {
	case tabSchedule:
		body = a.viewSchedule()
	case tabCompare:
		body = a.viewCompare()
	default:
		body = a.viewCalculator()
	}

	hints := "↑↓ field  ←→ adjust  ⇧←→ big step  [s]ave  [r]eset  [?]help  [q]uit"
	if a.activeTab == tabSchedule {
		hints = "↑↓ scroll  tab next  [s]ave  [?]help  [q]uit"
	}

	return components.RenderTabBar(a.activeTab) + "\n\n" +
		body + "\n" +
		components.RenderStatusBar(a.contentWidth(), hints, a.message)
}

func (a App) fieldValue(f field) string {
	switch f {
	case fieldPrice:
		return cli.FormatCompactINR(a.input.PropertyPrice)
	case fieldDown:
		return fmt.Sprintf("%.0f%%  %s", a.input.DownPaymentPercent, cli.FormatCompactINR(a.result.DownPayment))
	case fieldTenure:
		return cli.FormatTenure(a.input.TenureYears)
	case fieldScheme:
		s := a.input.Scheme
		out := fmt.Sprintf("%s  %s", s.Name, cli.FormatRate(s.AnnualRatePercent))
		if s.SubsidyAmount > 0 {
			out += "  subsidy " + cli.FormatCompactINR(s.SubsidyAmount)
		}
		return out
	case fieldIncome:
		if a.input.MonthlyIncome <= 0 {
			return "not set"
		}
		return cli.FormatINR(a.input.MonthlyIncome)
	}
	return ""
}

func (a App) viewInputs(width int) string {
	t := theme.Active
	labelStyle := lipgloss.NewStyle().Foreground(t.TextMuted)
	valueStyle := lipgloss.NewStyle().Foreground(t.TextPrimary)
	focusStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)

	var b strings.Builder
	for f := field(0); f < fieldCount; f++ {
		marker := "  "
		label := labelStyle.Render(fmt.Sprintf("%-15s", fieldLabels[f]))
		value := valueStyle.Render(a.fieldValue(f))
		if f == a.focus {
			marker = focusStyle.Render("▸ ")
			label = focusStyle.Render(fmt.Sprintf("%-15s", fieldLabels[f]))
		}
		b.WriteString(marker + label + " " + value)
		if f < fieldCount-1 {
			b.WriteString("\n")
		}
	}
	return components.ContentCard("Scenario", b.String(), width, true)
}

func (a App) viewCalculator() string {
	cw := a.contentWidth()

	if a.err != nil {
		errStyle := lipgloss.NewStyle().Foreground(theme.Active.Red)
		return a.viewInputs(cw) + "\n" + errStyle.Render("  "+a.err.Error())
	}

	r := a.result
	metrics := components.MetricCardRow([]components.Metric{
		{Label: "Monthly EMI", Value: cli.FormatINR(r.MonthlyInstallment), Sub: fmt.Sprintf("%d installments", r.Installments)},
		{Label: "Loan amount", Value: cli.FormatCompactINR(r.LoanAmount), Sub: "after down payment"},
		{Label: "Total interest", Value: cli.FormatCompactINR(r.TotalInterest), Sub: "total " + cli.FormatCompactINR(r.TotalPayment)},
		{Label: "Tax saving / yr", Value: cli.FormatINR(r.AnnualTaxSaving), Sub: "80C + 24(b)"},
	}, cw)

	widths := components.LayoutRow(cw, 2)
	share := components.ContentCard("Principal vs interest",
		components.ShareBar(r.PrincipalSharePercent, components.CardInnerWidth(widths[0])), widths[0], false)
	gauge := components.ContentCard("Affordability",
		components.RatioGauge(r.EMIToIncomeRatioPercent, r.Affordability, components.CardInnerWidth(widths[1])), widths[1], false)

	return a.viewInputs(cw) + "\n" + metrics + "\n" + components.CardRow([]string{share, gauge})
}

func (a App) viewSchedule() string {
	cw := a.contentWidth()
	if a.err != nil || len(a.yearly) == 0 {
		return components.ContentCard("Schedule", "No schedule for this scenario.", cw, false)
	}

	visible := a.yearly[a.scroll:]
	if a.height > 0 {
		rows := a.height - 8
		if rows < 3 {
			rows = 3
		}
		if len(visible) > rows {
			visible = visible[:rows]
		}
	}

	table := cli.Table{Headers: []string{"Year", "Paid", "Principal", "Interest", "Balance"}}
	for _, y := range visible {
		table.Rows = append(table.Rows, []string{
			fmt.Sprintf("%d", y.Year),
			cli.FormatINR(y.Paid),
			cli.FormatINR(y.Principal),
			cli.FormatINR(y.Interest),
			cli.FormatINR(y.ClosingBalance),
		})
	}

	balances := make([]float64, 0, len(a.yearly))
	for _, y := range a.yearly {
		balances = append(balances, y.ClosingBalance)
	}
	trend := lipgloss.NewStyle().Foreground(theme.Active.TextMuted).Render("Balance  ") +
		components.Sparkline(balances, theme.Active.Principal)

	widths := components.LayoutRow(cw, 2)
	inner := components.CardInnerWidth(widths[1])
	chart := components.ContentCard("Principal ▮ vs interest ▮ by year",
		trend+"\n\n"+components.YearlySplitChart(visible, inner), widths[1], false)

	return components.CardRow([]string{
		lipgloss.NewStyle().Width(widths[0]).Render(cli.RenderTable(table)),
		chart,
	})
}

func (a App) viewCompare() string {
	if a.err != nil {
		return components.ContentCard("Compare", "Fix the scenario to compare schemes.", a.contentWidth(), false)
	}

	table := cli.Table{Headers: []string{"Scheme", "Rate", "EMI", "Total interest", "Tax saving/yr", "Status"}}
	for _, c := range a.comparison {
		name := c.Scheme.Name
		if name == a.input.Scheme.Name {
			name = "▸ " + name
		}
		if c.Err != "" {
			table.Rows = append(table.Rows, []string{name, cli.FormatRate(c.Scheme.AnnualRatePercent), "-", "-", "-", c.Err})
			continue
		}
		table.Rows = append(table.Rows, []string{
			name,
			cli.FormatRate(c.Scheme.AnnualRatePercent),
			cli.FormatINR(c.Result.MonthlyInstallment),
			cli.FormatCompactINR(c.Result.TotalInterest),
			cli.FormatINR(c.Result.AnnualTaxSaving),
			string(c.Result.Affordability),
		})
	}
	return cli.RenderTable(table)
}

func (a App) viewHelp() string {
	t := theme.Active
	keyStyle := lipgloss.NewStyle().Foreground(t.Accent).Bold(true)
	descStyle := lipgloss.NewStyle().Foreground(t.TextMuted)

	keys := []struct{ key, desc string }{
		{"↑/↓  k/j", "select field (scroll on Schedule)"},
		{"←/→  h/l", "adjust selected field"},
		{"⇧←/⇧→  H/L", "adjust in big steps"},
		{"1 2 3  tab", "switch view"},
		{"s", "save calculation to history"},
		{"r", "reset to starting scenario"},
		{"?", "toggle help"},
		{"q", "quit"},
	}

	var b strings.Builder
	for _, k := range keys {
		b.WriteString(keyStyle.Render(fmt.Sprintf("  %-12s", k.key)))
		b.WriteString(descStyle.Render(k.desc))
		b.WriteString("\n")
	}
	return components.ContentCard("Keys", b.String(), a.contentWidth(), true)
}
