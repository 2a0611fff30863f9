package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"github.com/theirongolddev/emicalc/internal/amortization"
	"github.com/theirongolddev/emicalc/internal/model"
)

const maxBodyBytes = 1 << 20

// CalcRequest is the body of /v1/emi, /v1/schedule and /v1/compare.
// CustomScheme, when set, takes precedence over Scheme.
type CalcRequest struct {
	PropertyPrice      float64           `json:"property_price"`
	DownPaymentPercent float64           `json:"down_payment_percent"`
	TenureYears        int               `json:"tenure_years"`
	Scheme             string            `json:"scheme,omitempty"`
	CustomScheme       *model.LoanScheme `json:"custom_scheme,omitempty"`
	MonthlyIncome      float64           `json:"monthly_income,omitempty"`
}

// AffordRequest is the body of /v1/afford.
type AffordRequest struct {
	MonthlyIncome      float64           `json:"monthly_income"`
	DownPaymentPercent float64           `json:"down_payment_percent"`
	TenureYears        int               `json:"tenure_years"`
	Scheme             string            `json:"scheme,omitempty"`
	CustomScheme       *model.LoanScheme `json:"custom_scheme,omitempty"`
}

// ScheduleResponse is returned by /v1/schedule. Monthly rows are included
// only with ?monthly=true.
type ScheduleResponse struct {
	Calculation model.Calculation   `json:"calculation"`
	Yearly      []model.YearSummary `json:"yearly"`
	Monthly     []model.ScheduleRow `json:"monthly,omitempty"`
}

type schemeEntry struct {
	Key string `json:"key"`
	model.LoanScheme
}

type errorBody struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// writeJSON encodes v before touching the response so an encoding failure
// can still be reported as a 500.
func (s *Service) writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		s.logger.Error("encoding response failed", zap.Int("status", status), zap.Error(err))
		status = http.StatusInternalServerError
		data = []byte(`{"error":"internal error"}`)
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(append(data, '\n')); err != nil {
		s.logger.Debug("writing response failed", zap.Error(err))
	}
}

func (s *Service) decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		msg := "malformed JSON body"
		if !errors.Is(err, io.EOF) {
			msg = fmt.Sprintf("malformed JSON body: %v", err)
		}
		s.writeJSON(w, http.StatusBadRequest, errorBody{Error: msg})
		return false
	}
	return true
}

// writeError maps engine validation failures to 422 and everything else to 500.
func (s *Service) writeError(w http.ResponseWriter, err error) {
	if ve, ok := amortization.AsValidation(err); ok {
		s.metrics.validationErrors.WithLabelValues(ve.Field).Inc()
		s.writeJSON(w, http.StatusUnprocessableEntity, errorBody{Error: ve.Error(), Field: ve.Field})
		return
	}
	s.logger.Error("calculation failed", zap.Error(err))
	s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
}

func (s *Service) resolveScheme(name string, custom *model.LoanScheme) (model.LoanScheme, error) {
	if custom != nil {
		return *custom, nil
	}
	if name == "" {
		name = s.cfg.DefaultScheme
	}
	if s.cfg.Catalog != nil {
		if sc, ok := s.cfg.Catalog.Lookup(name); ok {
			return sc, nil
		}
	}
	return model.LoanScheme{}, &amortization.ValidationError{Field: "scheme", Reason: fmt.Sprintf("unknown scheme %q", name)}
}

func (s *Service) decodeInput(w http.ResponseWriter, r *http.Request) (model.LoanInput, bool) {
	var req CalcRequest
	if !s.decodeBody(w, r, &req) {
		return model.LoanInput{}, false
	}

	scheme, err := s.resolveScheme(req.Scheme, req.CustomScheme)
	if err != nil {
		s.writeError(w, err)
		return model.LoanInput{}, false
	}

	return model.LoanInput{
		PropertyPrice:      req.PropertyPrice,
		DownPaymentPercent: req.DownPaymentPercent,
		TenureYears:        req.TenureYears,
		Scheme:             scheme,
		MonthlyIncome:      req.MonthlyIncome,
	}, true
}

func (s *Service) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok\n"))
}

func (s *Service) handleEMI(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeInput(w, r)
	if !ok {
		return
	}

	res, err := s.engine.Compute(in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.record(r.Context(), in, res))
}

func (s *Service) handleSchedule(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeInput(w, r)
	if !ok {
		return
	}

	res, err := s.engine.Compute(in)
	if err != nil {
		s.writeError(w, err)
		return
	}
	rows, err := s.engine.Schedule(in)
	if err != nil {
		s.writeError(w, err)
		return
	}

	resp := ScheduleResponse{
		Calculation: s.record(r.Context(), in, res),
		Yearly:      amortization.YearlySummary(rows),
	}
	if monthly, _ := strconv.ParseBool(r.URL.Query().Get("monthly")); monthly {
		resp.Monthly = rows
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Service) handleCompare(w http.ResponseWriter, r *http.Request) {
	in, ok := s.decodeInput(w, r)
	if !ok {
		return
	}
	if err := amortization.Validate(in); err != nil {
		s.writeError(w, err)
		return
	}

	var schemes []model.LoanScheme
	if s.cfg.Catalog != nil {
		for _, key := range s.cfg.Catalog.Keys() {
			if sc, ok := s.cfg.Catalog.Lookup(key); ok {
				schemes = append(schemes, sc)
			}
		}
	}
	s.writeJSON(w, http.StatusOK, s.engine.Compare(in, schemes))
}

func (s *Service) handleAfford(w http.ResponseWriter, r *http.Request) {
	var req AffordRequest
	if !s.decodeBody(w, r, &req) {
		return
	}
	scheme, err := s.resolveScheme(req.Scheme, req.CustomScheme)
	if err != nil {
		s.writeError(w, err)
		return
	}

	h, err := s.engine.Headroom(req.MonthlyIncome, scheme, req.DownPaymentPercent, req.TenureYears)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.writeJSON(w, http.StatusOK, h)
}

func (s *Service) handleSchemes(w http.ResponseWriter, _ *http.Request) {
	entries := []schemeEntry{}
	if s.cfg.Catalog != nil {
		for _, key := range s.cfg.Catalog.Keys() {
			if sc, ok := s.cfg.Catalog.Lookup(key); ok {
				entries = append(entries, schemeEntry{Key: key, LoanScheme: sc})
			}
		}
	}
	s.writeJSON(w, http.StatusOK, entries)
}

func (s *Service) handleHistory(w http.ResponseWriter, r *http.Request) {
	if s.cfg.History == nil {
		s.writeJSON(w, http.StatusServiceUnavailable, errorBody{Error: "history is disabled"})
		return
	}

	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeJSON(w, http.StatusBadRequest, errorBody{Error: "limit must be a non-negative integer", Field: "limit"})
			return
		}
		limit = n
	}

	calcs, err := s.cfg.History.List(r.Context(), limit)
	if err != nil {
		s.logger.Error("listing history failed", zap.Error(err))
		s.writeJSON(w, http.StatusInternalServerError, errorBody{Error: "internal error"})
		return
	}
	if calcs == nil {
		calcs = []model.Calculation{}
	}
	s.writeJSON(w, http.StatusOK, calcs)
}

func (s *Service) handleRecent(w http.ResponseWriter, _ *http.Request) {
	s.mu.RLock()
	events := make([]Event, len(s.events))
	copy(events, s.events)
	s.mu.RUnlock()

	s.writeJSON(w, http.StatusOK, events)
}

func (s *Service) handleStatus(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, s.snapshotStatus())
}
