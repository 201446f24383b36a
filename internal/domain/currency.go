package domain

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

type Kind string

const (
	KindFiat   Kind = "fiat"
	KindCrypto Kind = "crypto"
)

// Currency describes a tradable asset known to the system.
// CoinGeckoID is set only for crypto assets and is the identifier the
// CoinGecko simple/price endpoint expects.
type Currency struct {
	Code           string
	Name           string
	Kind           Kind
	IssuingCountry string
	Algorithm      string
	CoinGeckoID    string
}

var registry = map[string]Currency{
	"USD": {Code: "USD", Name: "US Dollar", Kind: KindFiat, IssuingCountry: "United States"},
	"EUR": {Code: "EUR", Name: "Euro", Kind: KindFiat, IssuingCountry: "Eurozone"},
	"GBP": {Code: "GBP", Name: "Pound Sterling", Kind: KindFiat, IssuingCountry: "United Kingdom"},
	"RUB": {Code: "RUB", Name: "Russian Ruble", Kind: KindFiat, IssuingCountry: "Russia"},
	"BTC": {Code: "BTC", Name: "Bitcoin", Kind: KindCrypto, Algorithm: "SHA-256", CoinGeckoID: "bitcoin"},
	"ETH": {Code: "ETH", Name: "Ethereum", Kind: KindCrypto, Algorithm: "Ethash", CoinGeckoID: "ethereum"},
	"SOL": {Code: "SOL", Name: "Solana", Kind: KindCrypto, Algorithm: "PoH", CoinGeckoID: "solana"},
	"USDT": {Code: "USDT", Name: "Tether", Kind: KindCrypto, Algorithm: "n/a", CoinGeckoID: "tether"},
}

var codeRe = regexp.MustCompile(`^[A-Z0-9]{2,5}$`)

// NormalizeCode canonicalizes a currency code: trimmed, uppercase,
// 2-5 alphanumeric characters. It does not require the code to be known.
func NormalizeCode(code string) (string, error) {
	c := strings.ToUpper(strings.TrimSpace(code))
	if !codeRe.MatchString(c) {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrencyCode, code)
	}
	return c, nil
}

// GetCurrency resolves a (possibly lowercase) code against the registry.
func GetCurrency(code string) (Currency, error) {
	c, err := NormalizeCode(code)
	if err != nil {
		return Currency{}, err
	}
	cur, ok := registry[c]
	if !ok {
		return Currency{}, fmt.Errorf("%w: %q", ErrUnknownCurrency, c)
	}
	return cur, nil
}

// CurrencyKind reports the registered kind for a canonical code.
// Unknown codes are treated as fiat, the conservative precision choice.
func CurrencyKind(code string) Kind {
	if cur, ok := registry[code]; ok {
		return cur.Kind
	}
	return KindFiat
}

// Codes returns the registered codes of the given kind, sorted.
func Codes(kind Kind) []string {
	var out []string
	for code, cur := range registry {
		if cur.Kind == kind {
			out = append(out, code)
		}
	}
	sort.Strings(out)
	return out
}

const (
	fiatPlaces   = 2
	cryptoPlaces = 8
)

// QuantizeAmount rounds an amount to the currency's display precision:
// 2 fractional digits for fiat, 8 for crypto.
func QuantizeAmount(code string, amount decimal.Decimal) decimal.Decimal {
	if CurrencyKind(code) == KindCrypto {
		return amount.Round(cryptoPlaces)
	}
	return amount.Round(fiatPlaces)
}
