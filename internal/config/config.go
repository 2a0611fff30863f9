// Package config loads emicalc settings, lending policy and the loan-scheme catalog.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/theirongolddev/emicalc/internal/amortization"
)

// Config holds all emicalc configuration.
type Config struct {
	General       GeneralConfig       `toml:"general"`
	Tax           TaxConfig           `toml:"tax"`
	Affordability AffordabilityConfig `toml:"affordability"`
	Schemes       SchemesConfig       `toml:"schemes"`
	Server        ServerConfig        `toml:"server"`
	Log           LogConfig           `toml:"log"`
	Appearance    AppearanceConfig    `toml:"appearance"`
}

// GeneralConfig holds the default scenario used when flags are omitted.
type GeneralConfig struct {
	PropertyPrice      float64 `toml:"property_price"`
	DownPaymentPercent float64 `toml:"down_payment_percent"`
	TenureYears        int     `toml:"tenure_years"`
	Scheme             string  `toml:"scheme"`
	MonthlyIncome      float64 `toml:"monthly_income,omitempty"`
	SaveHistory        bool    `toml:"save_history"`
}

// TaxConfig overrides the statutory deduction constants.
type TaxConfig struct {
	Section80CCap     *float64 `toml:"section_80c_cap,omitempty"`
	Section24bCap     *float64 `toml:"section_24b_cap,omitempty"`
	TaxBracketPercent *float64 `toml:"tax_bracket_percent,omitempty"`
}

// AffordabilityConfig overrides the EMI-to-income band ceilings.
type AffordabilityConfig struct {
	ExcellentMaxRatio *float64 `toml:"excellent_max_ratio,omitempty"`
	GoodMaxRatio      *float64 `toml:"good_max_ratio,omitempty"`
	StretchedMaxRatio *float64 `toml:"stretched_max_ratio,omitempty"`
}

// SchemesConfig points at an extra catalog file and per-scheme overrides.
type SchemesConfig struct {
	CatalogFile string                    `toml:"catalog_file,omitempty"`
	Overrides   map[string]SchemeOverride `toml:"overrides,omitempty"`
}

// SchemeOverride replaces selected fields of a catalog scheme.
type SchemeOverride struct {
	AnnualRatePercent *float64 `toml:"annual_rate_percent,omitempty"`
	SubsidyAmount     *float64 `toml:"subsidy_amount,omitempty"`
	Eligibility       string   `toml:"eligibility,omitempty"`
}

// ServerConfig holds HTTP service settings.
type ServerConfig struct {
	Addr          string `toml:"addr"`
	RateLimit     int    `toml:"rate_limit"`
	RateWindowSec int    `toml:"rate_window_sec"`
	RedisAddr     string `toml:"redis_addr,omitempty"`
	EventsBuffer  int    `toml:"events_buffer"`
}

// LogConfig controls zap output.
type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"` // "console" or "json"
}

// AppearanceConfig holds theme settings.
type AppearanceConfig struct {
	Theme string `toml:"theme"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		General: GeneralConfig{
			PropertyPrice:      9_000_000,
			DownPaymentPercent: 20,
			TenureYears:        20,
			Scheme:             "sbi",
			SaveHistory:        true,
		},
		Server: ServerConfig{
			Addr:          "127.0.0.1:8790",
			RateLimit:     60,
			RateWindowSec: 60,
			EventsBuffer:  200,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
		Appearance: AppearanceConfig{
			Theme: "flexoki-dark",
		},
	}
}

// Dir returns the XDG-compliant config directory.
func Dir() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "emicalc")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "emicalc")
}

// Path returns the full path to the config file.
func Path() string {
	return filepath.Join(Dir(), "config.toml")
}

// Load reads the config file, returning defaults if it doesn't exist.
func Load() (Config, error) {
	return LoadFrom(Path())
}

// LoadFrom reads a config file at an explicit path.
func LoadFrom(path string) (Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path) //nolint:gosec // path is the user's own config
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return cfg, fmt.Errorf("reading config: %w", err)
	}

	if err := toml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// Save writes the config to disk.
func Save(cfg Config) error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}

	f, err := os.OpenFile(Path(), os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("creating config file: %w", err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	return enc.Encode(cfg)
}

// Exists returns true if a config file exists on disk.
func Exists() bool {
	_, err := os.Stat(Path())
	return err == nil
}

// Policy builds the engine policy, keeping statutory defaults for any value
// the config leaves unset.
func (c Config) Policy() (amortization.Policy, error) {
	p := amortization.DefaultPolicy()

	if v := c.Tax.Section80CCap; v != nil {
		p.Section80CCap = *v
	}
	if v := c.Tax.Section24bCap; v != nil {
		p.Section24bCap = *v
	}
	if v := c.Tax.TaxBracketPercent; v != nil {
		p.TaxBracketPercent = *v
	}
	if v := c.Affordability.ExcellentMaxRatio; v != nil {
		p.ExcellentMaxRatio = *v
	}
	if v := c.Affordability.GoodMaxRatio; v != nil {
		p.GoodMaxRatio = *v
	}
	if v := c.Affordability.StretchedMaxRatio; v != nil {
		p.StretchedMaxRatio = *v
	}

	if err := p.Validate(); err != nil {
		return p, fmt.Errorf("policy in %s: %w", Path(), err)
	}
	return p, nil
}

// GetRedisAddr returns the Redis address from env var or config, in that order.
func GetRedisAddr(cfg Config) string {
	if addr := os.Getenv("EMICALC_REDIS_ADDR"); addr != "" {
		return addr
	}
	return cfg.Server.RedisAddr
}

// GetLogLevel returns the log level from env var or config, in that order.
func GetLogLevel(cfg Config) string {
	if lvl := os.Getenv("EMICALC_LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return cfg.Log.Level
}
