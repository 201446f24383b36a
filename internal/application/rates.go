package application

import (
	"context"

	"valutatrade-hub/internal/domain"
)

// Rates returns the cache snapshot for inspection, ordered by pair.
// currency filters to entries involving that code when non-empty.
func (s *Service) Rates(ctx context.Context, currency string) ([]domain.CacheEntry, error) {
	if currency != "" {
		code, err := domain.NormalizeCode(currency)
		if err != nil {
			return nil, &ValidationError{Reason: "bad currency filter", Err: err}
		}
		currency = code
	}
	return s.cache.Snapshot(ctx, currency)
}
