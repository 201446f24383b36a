package httpserver

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
)

type Server struct {
	svc  *application.Service
	ping func(ctx context.Context) error
}

// NewServer wraps the application service for the read-only HTTP surface.
// ping may be nil when no backing store needs a readiness probe.
func NewServer(svc *application.Service, ping func(ctx context.Context) error) *Server {
	return &Server{svc: svc, ping: ping}
}

type rateResponse struct {
	Pair   string          `json:"pair"`
	Rate   decimal.Decimal `json:"rate"`
	AsOf   time.Time       `json:"as_of"`
	Source string          `json:"source"`
	Stale  bool            `json:"stale"`
}

type snapshotEntry struct {
	Pair      string          `json:"pair"`
	Rate      decimal.Decimal `json:"rate"`
	UpdatedAt time.Time       `json:"updated_at"`
	ExpiresAt time.Time       `json:"expires_at"`
	Source    string          `json:"source"`
}

type refreshResponse struct {
	RefreshID  string   `json:"refresh_id"`
	Updated    int      `json:"updated"`
	Unresolved int      `json:"unresolved"`
	Failures   []string `json:"failures,omitempty"`
}

func (s *Server) getRate(w http.ResponseWriter, r *http.Request) {
	from := chi.URLParam(r, "from")
	to := chi.URLParam(r, "to")
	res, err := s.svc.Resolve(r.Context(), from, to)
	if err != nil {
		writeAppError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rateResponse{
		Pair:   res.Pair.Key(),
		Rate:   res.Rate,
		AsOf:   res.AsOf,
		Source: res.Source,
		Stale:  res.Stale,
	})
}

func (s *Server) listRates(w http.ResponseWriter, r *http.Request) {
	entries, err := s.svc.Rates(r.Context(), r.URL.Query().Get("currency"))
	if err != nil {
		writeAppError(w, err)
		return
	}
	out := make([]snapshotEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, snapshotEntry{
			Pair:      e.Pair.Key(),
			Rate:      e.Rate,
			UpdatedAt: e.ObservedAt,
			ExpiresAt: e.ExpiresAt,
			Source:    e.Source,
		})
	}
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) refresh(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Pairs []string `json:"pairs"`
	}
	if r.Body != nil && r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			writeError(w, http.StatusBadRequest, "invalid JSON body")
			return
		}
	}
	var pairs []domain.Pair
	for _, key := range body.Pairs {
		p, err := domain.ParsePairKey(key)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid pair "+key)
			return
		}
		pairs = append(pairs, p)
	}
	report, err := s.svc.RefreshRates(r.Context(), r.URL.Query().Get("source"), pairs)
	if err != nil {
		writeAppError(w, err)
		return
	}
	resp := refreshResponse{RefreshID: report.ID, Updated: report.Updated, Unresolved: report.Unresolved}
	for _, f := range report.Failures {
		resp.Failures = append(resp.Failures, f.Source+": "+f.Err.Error())
	}
	writeJSON(w, http.StatusOK, resp)
}

func writeAppError(w http.ResponseWriter, err error) {
	var vErr *application.ValidationError
	var rateErr *application.RateUnavailableError
	var cfgErr *application.ConfigurationError
	switch {
	case errors.As(err, &vErr):
		writeError(w, http.StatusBadRequest, vErr.Error())
	case errors.As(err, &rateErr):
		writeError(w, http.StatusNotFound, rateErr.Error())
	case errors.As(err, &cfgErr):
		writeError(w, http.StatusBadGateway, cfgErr.Error())
	default:
		writeError(w, http.StatusInternalServerError, http.StatusText(http.StatusInternalServerError))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
