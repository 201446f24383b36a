package jsonstore

import (
	"context"
	"sync"

	"github.com/shopspring/decimal"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"
)

// Portfolios persists holdings in portfolios.json. Save is read-modify-write
// per user record; balances are decimal strings so crypto amounts round-trip
// exactly.
type Portfolios struct {
	mu   sync.Mutex
	path string
}

var _ application.PortfolioRepo = (*Portfolios)(nil)

func NewPortfolios(path string) *Portfolios { return &Portfolios{path: path} }

type portfolioRecord struct {
	UserID   int64                      `json:"user_id"`
	Balances map[string]decimal.Decimal `json:"balances"`
}

func (s *Portfolios) load() ([]portfolioRecord, error) {
	var records []portfolioRecord
	if _, err := readJSON(s.path, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func (s *Portfolios) Get(_ context.Context, userID int64) (*domain.Portfolio, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return nil, err
	}
	for _, r := range records {
		if r.UserID == userID {
			return domain.RestorePortfolio(r.UserID, r.Balances)
		}
	}
	return nil, application.ErrNotFound
}

func (s *Portfolios) Save(_ context.Context, p *domain.Portfolio) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	records, err := s.load()
	if err != nil {
		return err
	}
	rec := portfolioRecord{UserID: p.UserID, Balances: p.Balances()}
	replaced := false
	for i, r := range records {
		if r.UserID == p.UserID {
			records[i] = rec
			replaced = true
			break
		}
	}
	if !replaced {
		records = append(records, rec)
	}
	return writeAtomic(s.path, records)
}
