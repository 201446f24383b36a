package application

import (
	"context"
	"errors"
	"sort"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"valutatrade-hub/internal/domain"
)

// SourceFailure is one source's structured failure within a refresh run.
type SourceFailure struct {
	Source string
	Err    error
}

// RefreshReport summarizes one refresh run. A run with failures is still a
// success for whichever sources responded.
type RefreshReport struct {
	ID         string
	Updated    int
	Unresolved int
	Failures   []SourceFailure
}

// RefreshRates queries the selected sources concurrently, merges their
// quotes by category precedence and writes accepted quotes to the cache.
//
// sourceName selects one source by name (case-insensitive); empty means all.
// pairs narrows the request; nil asks each source for its full coverage.
//
// A ConfigurationError aborts the run only when its source was requested
// explicitly. Every other per-source failure is recorded and skipped.
func (s *Service) RefreshRates(ctx context.Context, sourceName string, pairs []domain.Pair) (RefreshReport, error) {
	report := RefreshReport{ID: s.idgen.NewID()}

	selected := s.sources
	explicit := sourceName != ""
	if explicit {
		selected = nil
		for _, src := range s.sources {
			if matchSource(src.Name(), sourceName) {
				selected = []QuoteSource{src}
				break
			}
		}
		if selected == nil {
			return report, &ValidationError{Reason: "unknown source '" + sourceName + "'"}
		}
	}

	type outcome struct {
		res FetchResult
		err error
	}
	outcomes := make([]outcome, len(selected))
	var g errgroup.Group
	for i, src := range selected {
		i, src := i, src
		g.Go(func() error {
			fctx, cancel := context.WithTimeout(ctx, s.sourceTimeout)
			defer cancel()
			res, err := src.Fetch(fctx, pairs)
			outcomes[i] = outcome{res: res, err: err}
			return nil
		})
	}
	_ = g.Wait()

	specialties := make(map[string]domain.Kind, len(selected))
	for _, src := range selected {
		specialties[src.Name()] = src.Specialty()
	}

	accepted := map[string]domain.Quote{}
	for i, src := range selected {
		out := outcomes[i]
		if out.err != nil {
			var confErr *ConfigurationError
			if errors.As(out.err, &confErr) {
				if explicit {
					return report, out.err
				}
				report.Failures = append(report.Failures, SourceFailure{Source: src.Name(), Err: out.err})
				continue
			}
			var srcErr *SourceUnavailableError
			if !errors.As(out.err, &srcErr) {
				out.err = &SourceUnavailableError{Source: src.Name(), Err: out.err}
			}
			s.log.Warn("source fetch failed", zap.String("source", src.Name()), zap.Error(out.err))
			report.Failures = append(report.Failures, SourceFailure{Source: src.Name(), Err: out.err})
			continue
		}
		report.Unresolved += out.res.Unresolved
		for _, q := range out.res.Quotes {
			q, ok := s.normalizeToBase(q)
			if !ok {
				continue
			}
			if err := q.Validate(); err != nil {
				s.log.Warn("quote rejected", zap.String("source", src.Name()), zap.Error(err))
				continue
			}
			key := q.Pair.Key()
			prev, exists := accepted[key]
			if !exists {
				accepted[key] = q
				continue
			}
			accepted[key] = pickQuote(prev, q, specialties)
		}
	}

	keys := make([]string, 0, len(accepted))
	for k := range accepted {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	obs := make([]domain.Observation, 0, len(keys))
	for _, k := range keys {
		q := accepted[k]
		if err := s.cache.Put(ctx, q); err != nil {
			return report, err
		}
		report.Updated++
		obs = append(obs, domain.NewObservation(q, report.ID))
	}
	if s.history != nil && len(obs) > 0 {
		if err := s.history.Append(ctx, obs); err != nil {
			// The cache is already updated; a journal failure must not
			// undo a successful refresh.
			s.log.Warn("history append failed", zap.Error(err))
		}
	}

	s.log.Info("rates refreshed",
		zap.String("refresh_id", report.ID),
		zap.Int("updated", report.Updated),
		zap.Int("unresolved", report.Unresolved),
		zap.Int("failed_sources", len(report.Failures)))
	return report, nil
}

// matchSource compares source names loosely: case-insensitive, ignoring
// separator punctuation, so "exchangerate" selects "ExchangeRate-API".
func matchSource(name, query string) bool {
	clean := func(s string) string {
		var b strings.Builder
		for _, r := range strings.ToLower(s) {
			if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
				b.WriteRune(r)
			}
		}
		return b.String()
	}
	n, q := clean(name), clean(query)
	return n == q || strings.HasPrefix(n, q)
}

// normalizeToBase keeps the cache star-shaped: quotes arrive as X→base or
// base→X; the latter is inverted, anything else is dropped.
func (s *Service) normalizeToBase(q domain.Quote) (domain.Quote, bool) {
	switch {
	case q.Pair.To == s.base:
		return q, true
	case q.Pair.From == s.base:
		inv, ok := invert(q.Rate)
		if !ok {
			return domain.Quote{}, false
		}
		q.Pair = q.Pair.Inverse()
		q.Rate = inv
		return q, true
	default:
		s.log.Warn("dropping off-base quote", zap.String("pair", q.Pair.String()))
		return domain.Quote{}, false
	}
}

// pickQuote resolves two sources reporting the same pair in one run: the
// source specialized in the pair's category wins; between peers the newer
// observation wins.
func pickQuote(a, b domain.Quote, specialties map[string]domain.Kind) domain.Quote {
	want := domain.CurrencyKind(a.Pair.From)
	aMatch := specialties[a.Source] == want
	bMatch := specialties[b.Source] == want
	switch {
	case aMatch && !bMatch:
		return a
	case bMatch && !aMatch:
		return b
	case b.ObservedAt.After(a.ObservedAt):
		return b
	default:
		return a
	}
}
