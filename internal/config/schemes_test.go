package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustDate(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func writeCatalog(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write catalog: %v", err)
	}
	return path
}

const datedCatalog = `schemes:
  - key: test-bank
    name: Test Bank
    annual_rate_percent: 8.9
    effective_from: "2025-07-01"
  - key: test-bank
    name: Test Bank
    annual_rate_percent: 8.4
    effective_from: "2025-01-01"
  - key: sbi
    name: SBI Home Loan
    annual_rate_percent: 8.25
    effective_from: "2026-04-01"
`

func TestLoadCatalogFile_SortsVersions(t *testing.T) {
	schemes, err := LoadCatalogFile(writeCatalog(t, "catalog.yaml", datedCatalog))
	if err != nil {
		t.Fatalf("LoadCatalogFile error = %v", err)
	}

	versions := schemes["test-bank"]
	if len(versions) != 2 {
		t.Fatalf("test-bank versions = %d, want 2", len(versions))
	}
	if !versions[0].EffectiveFrom.Equal(mustDate(t, "2025-01-01")) {
		t.Fatalf("first version from %v, want 2025-01-01", versions[0].EffectiveFrom)
	}
	if versions[1].Scheme.AnnualRatePercent != 8.9 {
		t.Fatalf("second version rate = %.2f, want 8.9", versions[1].Scheme.AnnualRatePercent)
	}
}

func TestNewCatalogAt_UsesEffectiveDate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Schemes.CatalogFile = writeCatalog(t, "catalog.yaml", datedCatalog)

	tests := []struct {
		at      string
		key     string
		want    float64
		present bool
	}{
		{"2024-12-31", "test-bank", 0, false},
		{"2025-04-15", "test-bank", 8.4, true},
		{"2025-08-15", "test-bank", 8.9, true},
		{"2026-03-31", "sbi", 8.5, true},
		{"2026-04-01", "sbi", 8.25, true},
	}
	for _, tt := range tests {
		c, err := NewCatalogAt(cfg, mustDate(t, tt.at))
		if err != nil {
			t.Fatalf("NewCatalogAt(%s) error = %v", tt.at, err)
		}
		s, ok := c.Lookup(tt.key)
		if ok != tt.present {
			t.Fatalf("%s at %s: present = %v, want %v", tt.key, tt.at, ok, tt.present)
		}
		if ok && s.AnnualRatePercent != tt.want {
			t.Fatalf("%s at %s: rate = %.2f, want %.2f", tt.key, tt.at, s.AnnualRatePercent, tt.want)
		}
	}
}

func TestNewCatalogAt_UsesLatestWhenTimeZero(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Schemes.CatalogFile = writeCatalog(t, "catalog.yaml", datedCatalog)

	c, err := NewCatalogAt(cfg, time.Time{})
	if err != nil {
		t.Fatalf("NewCatalogAt error = %v", err)
	}
	s, _ := c.Lookup("sbi")
	if s.AnnualRatePercent != 8.25 {
		t.Fatalf("sbi rate = %.2f, want 8.25", s.AnnualRatePercent)
	}
}

func TestNewCatalog_BuiltIns(t *testing.T) {
	c, err := NewCatalog(DefaultConfig())
	if err != nil {
		t.Fatalf("NewCatalog error = %v", err)
	}
	pmay, ok := c.Lookup("PMAY")
	if !ok {
		t.Fatal("Lookup(PMAY) returned !ok")
	}
	if pmay.AnnualRatePercent != 6.5 || pmay.SubsidyAmount != 267_000 {
		t.Fatalf("PMAY = %.2f%% / %.0f, want 6.50%% / 267000", pmay.AnnualRatePercent, pmay.SubsidyAmount)
	}
	if _, ok := c.Lookup("no-such-bank"); ok {
		t.Fatal("Lookup(no-such-bank) returned ok")
	}
}

func TestNormalizeSchemeName(t *testing.T) {
	tests := map[string]string{
		"sbi":           "sbi",
		"  SBI ":        "sbi",
		"LIC_HFL":       "lic-hfl",
		"lic hfl":       "lic-hfl",
		"SBI Home Loan": "sbi",
		"Axis Bank":     "axis-bank",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeSchemeName(in), "input %q", in)
	}
}

func TestNewCatalog_AppliesOverrides(t *testing.T) {
	rate := 7.9
	cfg := DefaultConfig()
	cfg.Schemes.Overrides = map[string]SchemeOverride{
		"SBI": {AnnualRatePercent: &rate, Eligibility: "Women borrowers"},
	}

	c, err := NewCatalog(cfg)
	require.NoError(t, err)

	sbi, ok := c.Lookup("sbi")
	require.True(t, ok)
	assert.Equal(t, 7.9, sbi.AnnualRatePercent)
	assert.Equal(t, "Women borrowers", sbi.EligibilityText)
	assert.Equal(t, "SBI Home Loan", sbi.Name)

	assert.Equal(t, []string{"hdfc", "icici", "lic-hfl", "pmay", "sbi"}, c.Keys())
	assert.Len(t, c.All(), 5)
}

func TestNewCatalog_UnknownOverride(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Schemes.Overrides = map[string]SchemeOverride{"nope": {}}

	_, err := NewCatalog(cfg)
	assert.Error(t, err)
}

func TestLoadCatalogFile_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`schemes:
  - key: axis
    name: Axis Bank Home Loan
    annual_rate_percent: 8.95
    eligibility: Salaried only
  - name: Employer Advance
    annual_rate_percent: 0
`), 0o600))

	schemes, err := LoadCatalogFile(path)
	require.NoError(t, err)
	require.Len(t, schemes, 2)
	require.Len(t, schemes["axis"], 1)
	assert.Equal(t, 8.95, schemes["axis"][0].Scheme.AnnualRatePercent)
	assert.Equal(t, "Salaried only", schemes["axis"][0].Scheme.EligibilityText)
	assert.True(t, schemes["axis"][0].EffectiveFrom.IsZero())
	assert.Equal(t, 0.0, schemes["employer-advance"][0].Scheme.AnnualRatePercent)
}

func TestLoadCatalogFile_TOML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.toml")
	require.NoError(t, os.WriteFile(path, []byte(`[[schemes]]
key = "kotak"
name = "Kotak Home Loan"
annual_rate_percent = 8.7
subsidy_amount = 0
`), 0o600))

	schemes, err := LoadCatalogFile(path)
	require.NoError(t, err)
	require.Len(t, schemes["kotak"], 1)
	assert.Equal(t, "Kotak Home Loan", schemes["kotak"][0].Scheme.Name)
}

func TestLoadCatalogFile_Errors(t *testing.T) {
	dir := t.TempDir()

	_, err := LoadCatalogFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "catalog.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{}`), 0o600))
	_, err = LoadCatalogFile(bad)
	assert.Error(t, err)

	negative := filepath.Join(dir, "neg.yaml")
	require.NoError(t, os.WriteFile(negative, []byte("schemes:\n  - name: X\n    annual_rate_percent: -1\n"), 0o600))
	_, err = LoadCatalogFile(negative)
	assert.Error(t, err)

	for name, body := range map[string]string{
		"usury.yaml":   "schemes:\n  - name: X\n    annual_rate_percent: 100000\n",
		"baddate.yaml": "schemes:\n  - name: X\n    annual_rate_percent: 8\n    effective_from: July\n",
		"twice.yaml":   "schemes:\n  - name: X\n    annual_rate_percent: 8\n  - name: X\n    annual_rate_percent: 9\n",
		"subsidy.yaml": "schemes:\n  - name: X\n    annual_rate_percent: 8\n    subsidy_amount: -5\n",
	} {
		if _, err := LoadCatalogFile(writeCatalog(t, name, body)); err == nil {
			t.Fatalf("LoadCatalogFile(%s) error = nil, want error", name)
		}
	}
}

func TestNewCatalog_RejectsOutOfRangeOverride(t *testing.T) {
	rate := 250.0
	cfg := DefaultConfig()
	cfg.Schemes.Overrides = map[string]SchemeOverride{"sbi": {AnnualRatePercent: &rate}}

	if _, err := NewCatalog(cfg); err == nil {
		t.Fatal("NewCatalog with a 250% override returned nil error")
	}
}

func TestNewCatalog_MergesCatalogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.yml")
	require.NoError(t, os.WriteFile(path, []byte("schemes:\n  - key: sbi\n    name: SBI Flexipay\n    annual_rate_percent: 8.65\n"), 0o600))

	cfg := DefaultConfig()
	cfg.Schemes.CatalogFile = path

	c, err := NewCatalog(cfg)
	require.NoError(t, err)

	sbi, ok := c.Lookup("SBI Flexipay")
	require.True(t, ok)
	assert.Equal(t, 8.65, sbi.AnnualRatePercent)
}
