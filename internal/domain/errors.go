package domain

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidCurrencyCode = errors.New("invalid currency code")
	ErrUnknownCurrency     = errors.New("unknown currency")
	ErrInvalidPair         = errors.New("invalid pair")
)

// InsufficientFundsError reports a withdrawal exceeding the held balance.
type InsufficientFundsError struct {
	Code      string
	Available decimal.Decimal
	Required  decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: available %s %s, required %s %s",
		e.Available, e.Code, e.Required, e.Code)
}
