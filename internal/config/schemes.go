package config

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/theirongolddev/emicalc/internal/amortization"
	"github.com/theirongolddev/emicalc/internal/model"
)

// SchemeVersion is one set of scheme terms and the date it takes effect.
// A zero EffectiveFrom applies from the beginning.
type SchemeVersion struct {
	EffectiveFrom time.Time
	Scheme        model.LoanScheme
}

// DefaultSchemes maps catalog keys to the built-in lender and subsidy schemes.
var DefaultSchemes = map[string]model.LoanScheme{
	"sbi": {
		Name: "SBI Home Loan", AnnualRatePercent: 8.50,
		EligibilityText: "Salaried or self-employed, age 18-70",
	},
	"hdfc": {
		Name: "HDFC Home Loan", AnnualRatePercent: 8.75,
		EligibilityText: "Salaried or self-employed, minimum income ₹25,000/month",
	},
	"icici": {
		Name: "ICICI Home Loan", AnnualRatePercent: 9.00,
		EligibilityText: "Salaried or self-employed, CIBIL 750+ preferred",
	},
	"lic-hfl": {
		Name: "LIC Housing Finance", AnnualRatePercent: 8.60,
		EligibilityText: "Resident Indians and NRIs, age 21-60",
	},
	"pmay": {
		Name: "PMAY-CLSS", AnnualRatePercent: 6.50, SubsidyAmount: 267_000,
		EligibilityText: "First home, household income up to ₹18 lakh/year",
	},
}

// defaultSchemeHistory stores effective-dated terms for each scheme.
// Entries must be sorted by EffectiveFrom ascending.
var defaultSchemeHistory = makeDefaultSchemeHistory(DefaultSchemes)

func makeDefaultSchemeHistory(base map[string]model.LoanScheme) map[string][]SchemeVersion {
	history := make(map[string][]SchemeVersion, len(base))
	for key, s := range base {
		history[key] = []SchemeVersion{
			{Scheme: s},
		}
	}
	return history
}

// NormalizeSchemeName turns user input into a catalog key.
// e.g., "LIC_HFL" -> "lic-hfl", "SBI Home Loan" -> "sbi"
func NormalizeSchemeName(raw string) string {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "-", "_", "-").Replace(key)
	if _, ok := defaultSchemeHistory[key]; ok {
		return key
	}

	// Fall back to matching the display name
	for k, s := range DefaultSchemes {
		if strings.EqualFold(s.Name, strings.TrimSpace(raw)) {
			return k
		}
	}
	return key
}

// schemeAt picks the latest version in force at the given time. ok is false
// when every version starts after at.
func schemeAt(versions []SchemeVersion, at time.Time) (model.LoanScheme, bool) {
	if len(versions) == 0 {
		return model.LoanScheme{}, false
	}
	if at.IsZero() {
		return versions[len(versions)-1].Scheme, true
	}

	at = at.UTC()
	var (
		selected model.LoanScheme
		found    bool
	)
	for _, v := range versions {
		if v.EffectiveFrom.IsZero() || !at.Before(v.EffectiveFrom.UTC()) {
			selected = v.Scheme
			found = true
			continue
		}
		break
	}
	return selected, found
}

// mergeVersions adds extra to base keeping EffectiveFrom order. A version
// with the same date as an existing one replaces it.
func mergeVersions(base, extra []SchemeVersion) []SchemeVersion {
	out := make([]SchemeVersion, len(base), len(base)+len(extra))
	copy(out, base)
	for _, v := range extra {
		replaced := false
		for i := range out {
			if out[i].EffectiveFrom.Equal(v.EffectiveFrom) {
				out[i] = v
				replaced = true
				break
			}
		}
		if !replaced {
			out = append(out, v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].EffectiveFrom.Before(out[j].EffectiveFrom)
	})
	return out
}

// Catalog is the resolved set of schemes: built-ins, then the catalog file,
// then per-scheme overrides.
type Catalog struct {
	schemes map[string]model.LoanScheme
}

// NewCatalog resolves the catalog for the given config at the current time.
func NewCatalog(cfg Config) (*Catalog, error) {
	return NewCatalogAt(cfg, time.Now())
}

// NewCatalogAt resolves the catalog with the scheme versions in force at the
// given time. Catalog-file versions are merged into the built-in history; a
// scheme whose every version starts after at is left out.
func NewCatalogAt(cfg Config, at time.Time) (*Catalog, error) {
	history := make(map[string][]SchemeVersion, len(defaultSchemeHistory))
	for key, versions := range defaultSchemeHistory {
		history[key] = versions
	}

	if cfg.Schemes.CatalogFile != "" {
		extra, err := LoadCatalogFile(cfg.Schemes.CatalogFile)
		if err != nil {
			return nil, err
		}
		for key, versions := range extra {
			history[key] = mergeVersions(history[key], versions)
		}
	}

	c := &Catalog{schemes: make(map[string]model.LoanScheme, len(history))}
	for key, versions := range history {
		if s, ok := schemeAt(versions, at); ok {
			c.schemes[key] = s
		}
	}

	for name, o := range cfg.Schemes.Overrides {
		key := NormalizeSchemeName(name)
		s, ok := c.schemes[key]
		if !ok {
			return nil, fmt.Errorf("override for unknown scheme %q", name)
		}
		if o.AnnualRatePercent != nil {
			if err := amortization.ValidateRate(*o.AnnualRatePercent); err != nil {
				return nil, fmt.Errorf("override for %q: %w", name, err)
			}
			s.AnnualRatePercent = *o.AnnualRatePercent
		}
		if o.SubsidyAmount != nil {
			s.SubsidyAmount = *o.SubsidyAmount
		}
		if o.Eligibility != "" {
			s.EligibilityText = o.Eligibility
		}
		c.schemes[key] = s
	}

	return c, nil
}

// Lookup finds a scheme by key or display name.
func (c *Catalog) Lookup(name string) (model.LoanScheme, bool) {
	if s, ok := c.schemes[NormalizeSchemeName(name)]; ok {
		return s, true
	}
	for _, s := range c.schemes {
		if strings.EqualFold(s.Name, strings.TrimSpace(name)) {
			return s, true
		}
	}
	return model.LoanScheme{}, false
}

// Keys returns the catalog keys in sorted order.
func (c *Catalog) Keys() []string {
	keys := make([]string, 0, len(c.schemes))
	for k := range c.schemes {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// All returns the schemes ordered by key.
func (c *Catalog) All() []model.LoanScheme {
	keys := c.Keys()
	out := make([]model.LoanScheme, 0, len(keys))
	for _, k := range keys {
		out = append(out, c.schemes[k])
	}
	return out
}

type catalogFile struct {
	Schemes []catalogEntry `yaml:"schemes" toml:"schemes"`
}

type catalogEntry struct {
	Key               string  `yaml:"key" toml:"key"`
	Name              string  `yaml:"name" toml:"name"`
	AnnualRatePercent float64 `yaml:"annual_rate_percent" toml:"annual_rate_percent"`
	SubsidyAmount     float64 `yaml:"subsidy_amount" toml:"subsidy_amount"`
	Eligibility       string  `yaml:"eligibility" toml:"eligibility"`
	EffectiveFrom     string  `yaml:"effective_from" toml:"effective_from"`
}

// LoadCatalogFile reads extra schemes from a .yaml/.yml or .toml file.
// Entries without a key are keyed by their normalized name. Repeating a key
// with different effective_from dates (YYYY-MM-DD) gives the scheme a
// history; the versions come back sorted by date.
func LoadCatalogFile(path string) (map[string][]SchemeVersion, error) {
	data, err := os.ReadFile(path) //nolint:gosec // catalog path comes from the user's config
	if err != nil {
		return nil, fmt.Errorf("reading catalog: %w", err)
	}

	var f catalogFile
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("catalog %s: unsupported format (want .yaml or .toml)", path)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing catalog: %w", err)
	}

	out := make(map[string][]SchemeVersion, len(f.Schemes))
	for i, e := range f.Schemes {
		if strings.TrimSpace(e.Name) == "" {
			return nil, fmt.Errorf("catalog %s: entry %d has no name", path, i+1)
		}
		if err := amortization.ValidateRate(e.AnnualRatePercent); err != nil {
			return nil, fmt.Errorf("catalog %s: %q: %w", path, e.Name, err)
		}
		if e.SubsidyAmount < 0 {
			return nil, fmt.Errorf("catalog %s: %q has a negative subsidy", path, e.Name)
		}
		var from time.Time
		if e.EffectiveFrom != "" {
			from, err = time.Parse("2006-01-02", e.EffectiveFrom)
			if err != nil {
				return nil, fmt.Errorf("catalog %s: %q effective_from: %w", path, e.Name, err)
			}
		}
		key := e.Key
		if key == "" {
			key = e.Name
		}
		key = NormalizeSchemeName(key)
		for _, v := range out[key] {
			if v.EffectiveFrom.Equal(from) {
				return nil, fmt.Errorf("catalog %s: %q listed twice for the same date", path, key)
			}
		}
		out[key] = mergeVersions(out[key], []SchemeVersion{{
			EffectiveFrom: from,
			Scheme: model.LoanScheme{
				Name:              e.Name,
				AnnualRatePercent: e.AnnualRatePercent,
				SubsidyAmount:     e.SubsidyAmount,
				EligibilityText:   e.Eligibility,
			},
		}})
	}
	return out, nil
}
