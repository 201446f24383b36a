package pg

import (
	"context"
	"fmt"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"
)

// ObservationRepo journals accepted quotes into rate_observations.
// Re-inserting the same (pair, quoted_at, source) is a no-op, which keeps
// repeated refreshes idempotent at the journal level.
type ObservationRepo struct{ db *DB }

var _ application.ObservationRepo = (*ObservationRepo)(nil)

func NewObservationRepo(db *DB) *ObservationRepo { return &ObservationRepo{db: db} }

func (r *ObservationRepo) Append(ctx context.Context, obs []domain.Observation) error {
	const ins = `
        INSERT INTO rate_observations(id, pair, rate, quoted_at, source, refresh_id)
        VALUES ($1, $2, $3, $4, $5, $6)
        ON CONFLICT (pair, quoted_at, source) DO NOTHING`
	for _, o := range obs {
		_, err := r.db.Pool.Exec(ctx, ins, o.ID, o.Pair.Key(), o.Rate, o.QuotedAt, o.Source, o.RefreshID)
		if err != nil {
			return fmt.Errorf("append observation %s: %w", o.Pair, err)
		}
	}
	return nil
}

// Recent returns up to limit most recent observations for a pair,
// newest first.
func (r *ObservationRepo) Recent(ctx context.Context, pair domain.Pair, limit int) ([]domain.Observation, error) {
	const q = `
        SELECT id, pair, rate, quoted_at, source, refresh_id
        FROM rate_observations
        WHERE pair = $1
        ORDER BY quoted_at DESC
        LIMIT $2`
	rows, err := r.db.Pool.Query(ctx, q, pair.Key(), limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Observation
	for rows.Next() {
		var o domain.Observation
		var key string
		if err := rows.Scan(&o.ID, &key, &o.Rate, &o.QuotedAt, &o.Source, &o.RefreshID); err != nil {
			return nil, err
		}
		if o.Pair, err = domain.ParsePairKey(key); err != nil {
			return nil, err
		}
		out = append(out, o)
	}
	return out, rows.Err()
}
