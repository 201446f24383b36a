package domain

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

// Portfolio holds per-currency balances for one user. Balances are never
// negative; mutation is check-then-apply so a failed operation leaves the
// portfolio untouched.
type Portfolio struct {
	UserID   int64
	balances map[string]decimal.Decimal
}

func NewPortfolio(userID int64) *Portfolio {
	return &Portfolio{UserID: userID, balances: map[string]decimal.Decimal{}}
}

// RestorePortfolio rebuilds a portfolio from persisted balances.
// Negative amounts are rejected.
func RestorePortfolio(userID int64, balances map[string]decimal.Decimal) (*Portfolio, error) {
	p := NewPortfolio(userID)
	for code, amt := range balances {
		c, err := NormalizeCode(code)
		if err != nil {
			return nil, err
		}
		if amt.IsNegative() {
			return nil, fmt.Errorf("portfolio %d: negative balance %s %s", userID, amt, c)
		}
		p.balances[c] = amt
	}
	return p, nil
}

// Balance returns the held amount, zero for currencies never touched.
func (p *Portfolio) Balance(code string) decimal.Decimal {
	return p.balances[code]
}

// Currencies lists held currency codes in sorted order, including
// zero balances that were explicitly created.
func (p *Portfolio) Currencies() []string {
	out := make([]string, 0, len(p.balances))
	for code := range p.balances {
		out = append(out, code)
	}
	sort.Strings(out)
	return out
}

// Balances returns a copy of the balance map.
func (p *Portfolio) Balances() map[string]decimal.Decimal {
	out := make(map[string]decimal.Decimal, len(p.balances))
	for code, amt := range p.balances {
		out[code] = amt
	}
	return out
}

// Deposit credits a positive amount, quantized to the currency's precision.
func (p *Portfolio) Deposit(code string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("deposit %s: amount must be positive, got %s", code, amount)
	}
	p.balances[code] = QuantizeAmount(code, p.balances[code].Add(amount))
	return nil
}

// Withdraw debits a positive amount, failing without mutation when the
// balance does not cover it.
func (p *Portfolio) Withdraw(code string, amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("withdraw %s: amount must be positive, got %s", code, amount)
	}
	held := p.balances[code]
	if held.LessThan(amount) {
		return &InsufficientFundsError{Code: code, Available: held, Required: amount}
	}
	p.balances[code] = QuantizeAmount(code, held.Sub(amount))
	return nil
}
