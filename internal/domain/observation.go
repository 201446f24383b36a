package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Observation is an append-only journal record of one accepted quote.
// RefreshID ties observations from the same refresh run together.
type Observation struct {
	ID        string
	Pair      Pair
	Rate      decimal.Decimal
	QuotedAt  time.Time
	Source    string
	RefreshID string
}

// NewObservation derives a journal record from an accepted quote.
func NewObservation(q Quote, refreshID string) Observation {
	return Observation{
		ID:        q.Pair.Key() + "_" + q.ObservedAt.UTC().Format(time.RFC3339),
		Pair:      q.Pair,
		Rate:      q.Rate,
		QuotedAt:  q.ObservedAt,
		Source:    q.Source,
		RefreshID: refreshID,
	}
}
