package application

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"valutatrade-hub/internal/domain"
)

const identitySource = "identity"

// divisionPrecision bounds inverse and cross-rate division. Sixteen digits
// keep buy/sell round-trips exact for any realistic rate.
const divisionPrecision = 16

// Resolution is a resolved conversion rate with its effective freshness.
// Stale is set only when an expired entry was served because every source
// was down; callers are expected to flag that to the user.
type Resolution struct {
	Pair   domain.Pair
	Rate   decimal.Decimal
	AsOf   time.Time
	Source string
	Stale  bool
}

// Resolve finds a rate between two currencies: identity, direct cache hit,
// inverse hit, triangulation through the base currency, then a bounded
// synchronous refresh followed by one retry. Expired entries are served as
// a last resort when the refresh reached no source at all.
func (s *Service) Resolve(ctx context.Context, from, to string) (Resolution, error) {
	fromCur, err := domain.GetCurrency(from)
	if err != nil {
		return Resolution{}, &ValidationError{Reason: "bad 'from' currency", Err: err}
	}
	toCur, err := domain.GetCurrency(to)
	if err != nil {
		return Resolution{}, &ValidationError{Reason: "bad 'to' currency", Err: err}
	}
	if fromCur.Code == toCur.Code {
		return Resolution{
			Pair:   domain.Pair{From: fromCur.Code, To: toCur.Code},
			Rate:   decimal.NewFromInt(1),
			AsOf:   s.clock.Now(),
			Source: identitySource,
		}, nil
	}
	pair := domain.Pair{From: fromCur.Code, To: toCur.Code}

	if res, ok := s.resolveCached(ctx, pair, true); ok {
		return res, nil
	}

	// Nothing fresh: refresh the missing legs synchronously, bounded so a
	// single get-rate cannot hang on a dead upstream, then retry once.
	refreshCtx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
	report, refreshErr := s.RefreshRates(refreshCtx, "", s.missingLegs(ctx, pair))
	cancel()
	if refreshErr != nil {
		s.log.Warn("implicit refresh failed", zap.String("pair", pair.String()), zap.Error(refreshErr))
	}

	if res, ok := s.resolveCached(ctx, pair, true); ok {
		return res, nil
	}

	if report.Updated == 0 && (refreshErr != nil || len(report.Failures) > 0) {
		if res, ok := s.resolveCached(ctx, pair, false); ok {
			res.Stale = true
			s.log.Warn("serving stale rate, all sources down",
				zap.String("pair", pair.String()),
				zap.Time("as_of", res.AsOf))
			return res, nil
		}
	}
	return Resolution{}, &RateUnavailableError{Pair: pair}
}

// resolveCached walks direct, inverse and triangulated lookups. With
// freshOnly=false it accepts expired entries (stale fallback).
func (s *Service) resolveCached(ctx context.Context, pair domain.Pair, freshOnly bool) (Resolution, bool) {
	if e, ok := s.lookup(ctx, pair, freshOnly); ok {
		return Resolution{
			Pair:   pair,
			Rate:   e.Quote.Rate,
			AsOf:   e.Quote.ObservedAt,
			Source: e.Quote.Source,
			Stale:  !e.Fresh(s.clock.Now()),
		}, true
	}
	if e, ok := s.lookup(ctx, pair.Inverse(), freshOnly); ok {
		if inv, valid := invert(e.Quote.Rate); valid {
			return Resolution{
				Pair:   pair,
				Rate:   inv,
				AsOf:   e.Quote.ObservedAt,
				Source: e.Quote.Source,
				Stale:  !e.Fresh(s.clock.Now()),
			}, true
		}
	}
	if pair.From != s.base && pair.To != s.base {
		fromLeg, okFrom := s.lookup(ctx, domain.Pair{From: pair.From, To: s.base}, freshOnly)
		toLeg, okTo := s.lookup(ctx, domain.Pair{From: pair.To, To: s.base}, freshOnly)
		if okFrom && okTo && toLeg.Quote.Rate.IsPositive() {
			rate := fromLeg.Quote.Rate.DivRound(toLeg.Quote.Rate, divisionPrecision)
			if rate.IsPositive() {
				// Conservative staleness: report the older leg.
				asOf := fromLeg.Quote.ObservedAt
				if toLeg.Quote.ObservedAt.Before(asOf) {
					asOf = toLeg.Quote.ObservedAt
				}
				now := s.clock.Now()
				return Resolution{
					Pair:   pair,
					Rate:   rate,
					AsOf:   asOf,
					Source: fromLeg.Quote.Source + "+" + toLeg.Quote.Source,
					Stale:  !fromLeg.Fresh(now) || !toLeg.Fresh(now),
				}, true
			}
		}
	}
	return Resolution{}, false
}

func (s *Service) lookup(ctx context.Context, pair domain.Pair, freshOnly bool) (domain.CacheEntry, bool) {
	e, err := s.cache.Get(ctx, pair)
	switch {
	case err == nil:
		return e, true
	case errors.Is(err, ErrCacheExpired):
		return e, !freshOnly
	default:
		return domain.CacheEntry{}, false
	}
}

// missingLegs lists the to-base legs that are not fresh and therefore
// worth refreshing before the retry.
func (s *Service) missingLegs(ctx context.Context, pair domain.Pair) []domain.Pair {
	var legs []domain.Pair
	for _, code := range []string{pair.From, pair.To} {
		if code == s.base {
			continue
		}
		leg := domain.Pair{From: code, To: s.base}
		if _, ok := s.lookup(ctx, leg, true); !ok {
			legs = append(legs, leg)
		}
	}
	return legs
}

func invert(rate decimal.Decimal) (decimal.Decimal, bool) {
	if !rate.IsPositive() {
		return decimal.Decimal{}, false
	}
	inv := decimal.NewFromInt(1).DivRound(rate, divisionPrecision)
	// A rate large enough to round its inverse to zero is unusable.
	if !inv.IsPositive() {
		return decimal.Decimal{}, false
	}
	return inv, true
}
