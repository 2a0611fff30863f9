package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/theirongolddev/emicalc/internal/model"
)

func openTemp(t *testing.T) *History {
	t.Helper()
	h, err := Open(filepath.Join(t.TempDir(), "nested", "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })
	return h
}

func sampleCalc(source string, price float64, at time.Time) model.Calculation {
	c := NewCalculation(source, model.LoanInput{
		PropertyPrice:      price,
		DownPaymentPercent: 20,
		TenureYears:        20,
		Scheme:             model.LoanScheme{Name: "SBI Home Loan", AnnualRatePercent: 8.5},
		MonthlyIncome:      150_000,
	}, model.AmortizationResult{
		LoanAmount:         price * 0.8,
		MonthlyInstallment: 62_483.27,
		Installments:       240,
		Affordability:      model.AffordabilityExcellent,
	})
	c.CreatedAt = at
	return c
}

func TestSaveAndList_NewestFirst(t *testing.T) {
	h := openTemp(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	require.NoError(t, h.Save(ctx, sampleCalc("cli", 5_000_000, base)))
	require.NoError(t, h.Save(ctx, sampleCalc("http", 9_000_000, base.Add(time.Minute))))
	require.NoError(t, h.Save(ctx, sampleCalc("tui", 7_000_000, base.Add(2*time.Minute))))

	got, err := h.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "tui", got[0].Source)
	assert.Equal(t, 7_000_000.0, got[0].Input.PropertyPrice)
	assert.Equal(t, "http", got[1].Source)
	assert.Equal(t, model.AffordabilityExcellent, got[1].Result.Affordability)
	assert.True(t, got[1].CreatedAt.Equal(base.Add(time.Minute)))

	n, err := h.Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, n)
}

func TestList_DefaultLimit(t *testing.T) {
	h := openTemp(t)
	ctx := context.Background()
	for i := 0; i < DefaultLimit+5; i++ {
		require.NoError(t, h.Save(ctx, sampleCalc("cli", float64(1_000_000+i), time.Now().Add(time.Duration(i)*time.Second))))
	}

	got, err := h.List(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, got, DefaultLimit)
}

func TestSave_AssignsIDAndTime(t *testing.T) {
	h := openTemp(t)
	ctx := context.Background()

	c := sampleCalc("cli", 1_000_000, time.Time{})
	c.ID = ""
	require.NoError(t, h.Save(ctx, c))

	got, err := h.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.NotEmpty(t, got[0].ID)
	assert.False(t, got[0].CreatedAt.IsZero())
}

func TestGet(t *testing.T) {
	h := openTemp(t)
	ctx := context.Background()
	c := sampleCalc("http", 3_000_000, time.Now())
	require.NoError(t, h.Save(ctx, c))

	got, ok, err := h.Get(ctx, c.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, c.Input, got.Input)
	assert.Equal(t, 240, got.Result.Installments)

	_, ok, err = h.Get(ctx, "missing")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestClear(t *testing.T) {
	h := openTemp(t)
	ctx := context.Background()
	require.NoError(t, h.Save(ctx, sampleCalc("cli", 1_000_000, time.Now())))
	require.NoError(t, h.Save(ctx, sampleCalc("cli", 2_000_000, time.Now())))

	n, err := h.Clear(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	count, err := h.Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestDefaultPath_UsesXDGDataHome(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_DATA_HOME", dir)
	assert.Equal(t, filepath.Join(dir, "emicalc", "history.db"), DefaultPath())
}
