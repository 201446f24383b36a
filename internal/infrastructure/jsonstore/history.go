package jsonstore

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"
)

// History is the append-only observation journal (exchange_rates.json).
type History struct {
	mu   sync.Mutex
	path string
}

var _ application.ObservationRepo = (*History)(nil)

func NewHistory(path string) *History { return &History{path: path} }

type historyRecord struct {
	ID           string          `json:"id"`
	FromCurrency string          `json:"from_currency"`
	ToCurrency   string          `json:"to_currency"`
	Rate         decimal.Decimal `json:"rate"`
	QuotedAt     time.Time       `json:"quoted_at"`
	Source       string          `json:"source"`
	RefreshID    string          `json:"refresh_id"`
}

func (s *History) Append(_ context.Context, obs []domain.Observation) error {
	if len(obs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	var records []historyRecord
	if _, err := readJSON(s.path, &records); err != nil {
		return err
	}
	for _, o := range obs {
		records = append(records, historyRecord{
			ID:           o.ID,
			FromCurrency: o.Pair.From,
			ToCurrency:   o.Pair.To,
			Rate:         o.Rate,
			QuotedAt:     o.QuotedAt.UTC(),
			Source:       o.Source,
			RefreshID:    o.RefreshID,
		})
	}
	return writeAtomic(s.path, records)
}
