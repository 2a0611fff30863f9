package model

import "time"

// Calculation is a stored input/result pair from the history log.
type Calculation struct {
	ID        string             `json:"id"`
	CreatedAt time.Time          `json:"created_at"`
	Source    string             `json:"source"` // "cli", "tui" or "http"
	Input     LoanInput          `json:"input"`
	Result    AmortizationResult `json:"result"`
}
