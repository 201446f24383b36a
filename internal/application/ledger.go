package application

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"

	"valutatrade-hub/internal/domain"
)

// TradeReceipt reports an executed buy or sell. Rate and Value are
// display-only: when no rate resolves, Priced is false and the trade
// still goes through.
type TradeReceipt struct {
	Side     string
	Currency string
	Amount   decimal.Decimal
	Base     string
	Rate     decimal.Decimal
	Value    decimal.Decimal
	Priced   bool
	Before   decimal.Decimal
	After    decimal.Decimal
}

// Buy credits amount units of currency to the current user's portfolio.
func (s *Service) Buy(ctx context.Context, currency string, amount decimal.Decimal) (TradeReceipt, error) {
	return s.trade(ctx, "buy", currency, amount)
}

// Sell debits amount units, failing with InsufficientFundsError when the
// balance does not cover it. The portfolio is untouched on any failure.
func (s *Service) Sell(ctx context.Context, currency string, amount decimal.Decimal) (TradeReceipt, error) {
	return s.trade(ctx, "sell", currency, amount)
}

func (s *Service) trade(ctx context.Context, side, currency string, amount decimal.Decimal) (TradeReceipt, error) {
	if !amount.IsPositive() {
		return TradeReceipt{}, &ValidationError{Reason: "amount must be positive"}
	}
	cur, err := domain.GetCurrency(currency)
	if err != nil {
		return TradeReceipt{}, &ValidationError{Reason: "bad currency", Err: err}
	}
	user, err := s.CurrentUser(ctx)
	if err != nil {
		return TradeReceipt{}, err
	}
	portfolio, err := s.portfolioFor(ctx, user.ID)
	if err != nil {
		return TradeReceipt{}, err
	}

	receipt := TradeReceipt{
		Side:     side,
		Currency: cur.Code,
		Amount:   amount,
		Base:     s.base,
		Before:   portfolio.Balance(cur.Code),
	}

	// Check-then-apply as one logical step; Save only after it succeeded.
	if side == "buy" {
		err = portfolio.Deposit(cur.Code, amount)
	} else {
		err = portfolio.Withdraw(cur.Code, amount)
	}
	if err != nil {
		return TradeReceipt{}, err
	}
	if err := s.portfolios.Save(ctx, portfolio); err != nil {
		return TradeReceipt{}, err
	}
	receipt.After = portfolio.Balance(cur.Code)

	// Pricing is informational; a dead upstream must not block the trade.
	if cur.Code == s.base {
		receipt.Rate = decimal.NewFromInt(1)
		receipt.Value = amount
		receipt.Priced = true
	} else if res, err := s.Resolve(ctx, cur.Code, s.base); err == nil {
		receipt.Rate = res.Rate
		receipt.Value = amount.Mul(res.Rate)
		receipt.Priced = true
	}
	return receipt, nil
}

// portfolioFor loads the user's portfolio, creating an empty one the first
// time it is needed.
func (s *Service) portfolioFor(ctx context.Context, userID int64) (*domain.Portfolio, error) {
	p, err := s.portfolios.Get(ctx, userID)
	if errors.Is(err, ErrNotFound) {
		p = domain.NewPortfolio(userID)
		if err := s.portfolios.Save(ctx, p); err != nil {
			return nil, err
		}
		return p, nil
	}
	return p, err
}
