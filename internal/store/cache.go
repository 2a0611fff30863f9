// Package store provides a SQLite-backed history of loan calculations.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // register sqlite driver

	"github.com/theirongolddev/emicalc/internal/model"
)

// DefaultLimit caps List when the caller passes a non-positive limit.
const DefaultLimit = 20

// Fixed-width UTC timestamps so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z"

// History provides SQLite-backed calculation history.
type History struct {
	db *sql.DB
}

// DataDir returns the platform-appropriate data directory.
func DataDir() string {
	if xdg := os.Getenv("XDG_DATA_HOME"); xdg != "" {
		return filepath.Join(xdg, "emicalc")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "emicalc")
}

// DefaultPath returns the full path to the history database.
func DefaultPath() string {
	return filepath.Join(DataDir(), "history.db")
}

// Open opens or creates the history database at the given path.
func Open(dbPath string) (*History, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("creating history dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=synchronous(normal)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}

	if _, err := db.Exec(schemaSQL); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	return &History{db: db}, nil
}

// Close closes the history database.
func (h *History) Close() error {
	return h.db.Close()
}

// NewCalculation stamps an input/result pair with a fresh ID and time.
func NewCalculation(source string, in model.LoanInput, res model.AmortizationResult) model.Calculation {
	return model.Calculation{
		ID:        uuid.NewString(),
		CreatedAt: time.Now().UTC(),
		Source:    source,
		Input:     in,
		Result:    res,
	}
}

// Save stores a calculation, replacing any row with the same ID.
func (h *History) Save(ctx context.Context, c model.Calculation) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	inputJSON, err := json.Marshal(c.Input)
	if err != nil {
		return fmt.Errorf("encoding input: %w", err)
	}
	resultJSON, err := json.Marshal(c.Result)
	if err != nil {
		return fmt.Errorf("encoding result: %w", err)
	}

	_, err = h.db.ExecContext(ctx, `INSERT OR REPLACE INTO calculations
		(id, created_at, source, scheme, property_price, down_payment_percent,
		 tenure_years, loan_amount, monthly_installment, total_interest,
		 affordability, input_json, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		c.ID, c.CreatedAt.UTC().Format(timeLayout), c.Source, c.Input.Scheme.Name,
		c.Input.PropertyPrice, c.Input.DownPaymentPercent, c.Input.TenureYears,
		c.Result.LoanAmount, c.Result.MonthlyInstallment, c.Result.TotalInterest,
		string(c.Result.Affordability), string(inputJSON), string(resultJSON),
	)
	if err != nil {
		return fmt.Errorf("saving calculation: %w", err)
	}
	return nil
}

// List returns the most recent calculations, newest first.
func (h *History) List(ctx context.Context, limit int) ([]model.Calculation, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	rows, err := h.db.QueryContext(ctx, `SELECT id, created_at, source, input_json, result_json
		FROM calculations ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing calculations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []model.Calculation
	for rows.Next() {
		var c model.Calculation
		var created, inputJSON, resultJSON string
		if err := rows.Scan(&c.ID, &created, &c.Source, &inputJSON, &resultJSON); err != nil {
			return nil, err
		}
		if err := decodeRow(&c, created, inputJSON, resultJSON); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Get returns one calculation by ID.
func (h *History) Get(ctx context.Context, id string) (model.Calculation, bool, error) {
	var c model.Calculation
	var created, inputJSON, resultJSON string
	err := h.db.QueryRowContext(ctx, `SELECT id, created_at, source, input_json, result_json
		FROM calculations WHERE id = ?`, id).Scan(&c.ID, &created, &c.Source, &inputJSON, &resultJSON)
	if err == sql.ErrNoRows {
		return c, false, nil
	}
	if err != nil {
		return c, false, fmt.Errorf("reading calculation: %w", err)
	}
	if err := decodeRow(&c, created, inputJSON, resultJSON); err != nil {
		return c, false, err
	}
	return c, true, nil
}

func decodeRow(c *model.Calculation, created, inputJSON, resultJSON string) error {
	c.CreatedAt, _ = time.Parse(timeLayout, created)
	if err := json.Unmarshal([]byte(inputJSON), &c.Input); err != nil {
		return fmt.Errorf("decoding input of %s: %w", c.ID, err)
	}
	if err := json.Unmarshal([]byte(resultJSON), &c.Result); err != nil {
		return fmt.Errorf("decoding result of %s: %w", c.ID, err)
	}
	return nil
}

// Clear removes every stored calculation and returns how many were deleted.
func (h *History) Clear(ctx context.Context) (int64, error) {
	res, err := h.db.ExecContext(ctx, "DELETE FROM calculations")
	if err != nil {
		return 0, fmt.Errorf("clearing history: %w", err)
	}
	return res.RowsAffected()
}

// Count returns the number of stored calculations.
func (h *History) Count(ctx context.Context) (int, error) {
	var count int
	err := h.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM calculations").Scan(&count)
	return count, err
}
