package application

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"valutatrade-hub/internal/domain"
)

// ValuationLine prices one holding into the base currency. Priced is false
// when no rate could be resolved; the line is still reported.
type ValuationLine struct {
	Currency string
	Amount   decimal.Decimal
	Rate     decimal.Decimal
	Value    decimal.Decimal
	AsOf     time.Time
	Priced   bool
	Stale    bool
}

type Valuation struct {
	Username string
	Base     string
	Lines    []ValuationLine
	Total    decimal.Decimal
}

// ShowPortfolio values the current user's holdings in the base currency.
// A holding whose rate cannot be resolved degrades to an unpriced line
// instead of failing the whole valuation.
func (s *Service) ShowPortfolio(ctx context.Context, base string) (Valuation, error) {
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return Valuation{}, err
	}
	if base == "" {
		base = s.base
	}
	baseCur, err := domain.GetCurrency(base)
	if err != nil {
		return Valuation{}, &ValidationError{Reason: "bad base currency", Err: err}
	}
	base = baseCur.Code

	portfolio, err := s.portfolioFor(ctx, user.ID)
	if err != nil {
		return Valuation{}, err
	}

	v := Valuation{Username: user.Username, Base: base}
	total := decimal.Zero
	for _, code := range portfolio.Currencies() {
		amount := portfolio.Balance(code)
		line := ValuationLine{Currency: code, Amount: amount}
		switch {
		case code == base:
			line.Rate = decimal.NewFromInt(1)
			line.Value = amount
			line.AsOf = s.clock.Now()
			line.Priced = true
		case amount.IsZero():
			// Nothing to price; keep the line for display.
		default:
			res, err := s.Resolve(ctx, code, base)
			if err != nil {
				s.log.Warn("valuation line unpriced: " + code + "->" + base)
			} else {
				line.Rate = res.Rate
				line.Value = amount.Mul(res.Rate)
				line.AsOf = res.AsOf
				line.Priced = true
				line.Stale = res.Stale
			}
		}
		if line.Priced {
			total = total.Add(line.Value)
		}
		v.Lines = append(v.Lines, line)
	}
	v.Total = total
	return v, nil
}
