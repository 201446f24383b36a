package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewPair_Normalizes(t *testing.T) {
	t.Parallel()
	p, err := NewPair(" btc ", "usd")
	require.NoError(t, err)
	require.Equal(t, "BTC", p.From)
	require.Equal(t, "USD", p.To)
	require.Equal(t, "BTC_USD", p.Key())
	require.Equal(t, "BTC/USD", p.String())
}

func TestNewPair_Rejects(t *testing.T) {
	t.Parallel()
	_, err := NewPair("USD", "USD")
	require.ErrorIs(t, err, ErrInvalidPair)

	_, err = NewPair("b!c", "USD")
	require.ErrorIs(t, err, ErrInvalidCurrencyCode)

	_, err = NewPair("", "USD")
	require.ErrorIs(t, err, ErrInvalidCurrencyCode)

	_, err = NewPair("TOOLONGCODE", "USD")
	require.ErrorIs(t, err, ErrInvalidCurrencyCode)
}

func TestParsePairKey(t *testing.T) {
	t.Parallel()
	p, err := ParsePairKey("ETH_USD")
	require.NoError(t, err)
	require.Equal(t, Pair{From: "ETH", To: "USD"}, p)

	_, err = ParsePairKey("ETHUSD")
	require.ErrorIs(t, err, ErrInvalidPair)
}

func TestPair_InverseInvolves(t *testing.T) {
	t.Parallel()
	p := Pair{From: "BTC", To: "USD"}
	require.Equal(t, Pair{From: "USD", To: "BTC"}, p.Inverse())
	require.True(t, p.Involves("BTC"))
	require.True(t, p.Involves("USD"))
	require.False(t, p.Involves("EUR"))
}

func TestGetCurrency(t *testing.T) {
	t.Parallel()
	cur, err := GetCurrency("btc")
	require.NoError(t, err)
	require.Equal(t, "BTC", cur.Code)
	require.Equal(t, KindCrypto, cur.Kind)
	require.Equal(t, "bitcoin", cur.CoinGeckoID)

	_, err = GetCurrency("XYZ")
	require.ErrorIs(t, err, ErrUnknownCurrency)
}

func TestCurrencyKind_DefaultsToFiat(t *testing.T) {
	t.Parallel()
	require.Equal(t, KindCrypto, CurrencyKind("BTC"))
	require.Equal(t, KindFiat, CurrencyKind("EUR"))
	require.Equal(t, KindFiat, CurrencyKind("XYZ"))
}
