package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/theirongolddev/emicalc/internal/amortization"
	"github.com/theirongolddev/emicalc/internal/cli"
	"github.com/theirongolddev/emicalc/internal/config"
	"github.com/theirongolddev/emicalc/internal/logging"
	"github.com/theirongolddev/emicalc/internal/model"
	"github.com/theirongolddev/emicalc/internal/store"
)

var (
	flagPrice     string
	flagDown      float64
	flagTenure    int
	flagScheme    string
	flagIncome    string
	flagQuiet     bool
	flagNoHistory bool
	flagJSON      bool
)

var rootCmd = &cobra.Command{
	Use:   "emicalc",
	Short: "Home loan EMI calculator",
	Long:  "Work out EMIs, amortization schedules, tax benefits and affordability for Indian home loans.",
	RunE:  runEMI,
}

// Execute is the main entry point called from main.go.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flagPrice, "price", "P", "", "Property price (accepts 90,00,000, 90L or 1.2Cr)")
	pf.Float64VarP(&flagDown, "down", "D", 0, "Down payment percent of the price")
	pf.IntVarP(&flagTenure, "tenure", "t", 0, "Tenure in years")
	pf.StringVarP(&flagScheme, "scheme", "s", "", "Loan scheme key or name (see `emicalc schemes`)")
	pf.StringVarP(&flagIncome, "income", "i", "", "Monthly income for the affordability check")
	pf.BoolVarP(&flagQuiet, "quiet", "q", false, "Suppress informational output")
	pf.BoolVar(&flagNoHistory, "no-history", false, "Do not record this calculation")
	pf.BoolVar(&flagJSON, "json", false, "Print machine-readable JSON")
}

// runtime bundles what every command builds from the config file.
type runtime struct {
	cfg     config.Config
	engine  *amortization.Engine
	catalog *config.Catalog
	logger  *zap.Logger
}

func loadRuntime() (*runtime, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	policy, err := cfg.Policy()
	if err != nil {
		return nil, err
	}
	catalog, err := config.NewCatalog(cfg)
	if err != nil {
		return nil, fmt.Errorf("loading schemes: %w", err)
	}
	return &runtime{
		cfg:     cfg,
		engine:  amortization.New(policy),
		catalog: catalog,
		logger:  logging.New(config.GetLogLevel(cfg), cfg.Log.Format),
	}, nil
}

// scenario merges command-line flags over the configured defaults.
// It returns the input and the catalog key of the chosen scheme.
func (rt *runtime) scenario(cmd *cobra.Command) (model.LoanInput, string, error) {
	g := rt.cfg.General
	in := model.LoanInput{
		PropertyPrice:      g.PropertyPrice,
		DownPaymentPercent: g.DownPaymentPercent,
		TenureYears:        g.TenureYears,
		MonthlyIncome:      g.MonthlyIncome,
	}
	flags := cmd.Flags()

	if flags.Changed("price") {
		v, err := cli.ParseINR(flagPrice)
		if err != nil {
			return in, "", fmt.Errorf("--price: %w", err)
		}
		in.PropertyPrice = v
	}
	if flags.Changed("down") {
		in.DownPaymentPercent = flagDown
	}
	if flags.Changed("tenure") {
		in.TenureYears = flagTenure
	}
	if flags.Changed("income") {
		v, err := cli.ParseINR(flagIncome)
		if err != nil {
			return in, "", fmt.Errorf("--income: %w", err)
		}
		in.MonthlyIncome = v
	}

	key := g.Scheme
	if flags.Changed("scheme") {
		key = flagScheme
	}
	scheme, ok := rt.catalog.Lookup(key)
	if !ok {
		return in, "", fmt.Errorf("unknown scheme %q (known: %v)", key, rt.catalog.Keys())
	}
	in.Scheme = scheme
	return in, config.NormalizeSchemeName(key), nil
}

func (rt *runtime) historyEnabled() bool {
	return rt.cfg.General.SaveHistory && !flagNoHistory
}

// record saves a CLI calculation. Failures are logged, never returned.
func (rt *runtime) record(in model.LoanInput, res model.AmortizationResult) {
	if !rt.historyEnabled() {
		return
	}
	h, err := store.Open(store.DefaultPath())
	if err != nil {
		rt.logger.Warn("history unavailable", zap.Error(err))
		return
	}
	defer func() { _ = h.Close() }()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	c := store.NewCalculation("cli", in, res)
	if err := h.Save(ctx, c); err != nil {
		rt.logger.Warn("history save failed", zap.String("id", c.ID), zap.Error(err))
		return
	}
	rt.logger.Debug("calculation recorded", zap.String("id", c.ID))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
