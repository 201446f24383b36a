package provider

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"
)

// Ensure Fake implements application.QuoteSource.
var _ application.QuoteSource = (*Fake)(nil)

// Fake serves fixed X→Base rates; used in dev mode and tests.
type Fake struct {
	SourceName string
	Kind       domain.Kind
	Base       string
	Rates      map[string]decimal.Decimal
	Err        error
}

func NewFake(base string, rates map[string]decimal.Decimal) *Fake {
	return &Fake{SourceName: "Fake", Kind: domain.KindCrypto, Base: base, Rates: rates}
}

func (f *Fake) Name() string           { return f.SourceName }
func (f *Fake) Specialty() domain.Kind { return f.Kind }

func (f *Fake) Fetch(_ context.Context, pairs []domain.Pair) (application.FetchResult, error) {
	if f.Err != nil {
		return application.FetchResult{}, f.Err
	}
	now := time.Now().UTC()
	var out application.FetchResult
	emit := func(code string) {
		rate, ok := f.Rates[code]
		if !ok {
			out.Unresolved++
			return
		}
		out.Quotes = append(out.Quotes, domain.Quote{
			Pair:       domain.Pair{From: code, To: f.Base},
			Rate:       rate,
			ObservedAt: now,
			Source:     f.SourceName,
		})
	}
	if pairs == nil {
		for code := range f.Rates {
			emit(code)
		}
		return out, nil
	}
	for _, p := range pairs {
		if p.To != f.Base {
			out.Unresolved++
			continue
		}
		emit(p.From)
	}
	return out, nil
}
