package domain

import (
	"fmt"
	"strings"
)

// Pair is an ordered (From, To) currency combination. Both sides are
// canonical uppercase codes and From never equals To.
type Pair struct {
	From string
	To   string
}

// NewPair normalizes both codes and rejects identical sides.
func NewPair(from, to string) (Pair, error) {
	f, err := NormalizeCode(from)
	if err != nil {
		return Pair{}, err
	}
	t, err := NormalizeCode(to)
	if err != nil {
		return Pair{}, err
	}
	if f == t {
		return Pair{}, fmt.Errorf("%w: %s/%s", ErrInvalidPair, f, t)
	}
	return Pair{From: f, To: t}, nil
}

// ParsePairKey parses the storage key form, e.g. "BTC_USD".
func ParsePairKey(key string) (Pair, error) {
	from, to, ok := strings.Cut(key, "_")
	if !ok {
		return Pair{}, fmt.Errorf("%w: %q", ErrInvalidPair, key)
	}
	return NewPair(from, to)
}

// Key is the canonical storage key, e.g. "BTC_USD".
func (p Pair) Key() string { return p.From + "_" + p.To }

// Inverse returns the pair with sides swapped.
func (p Pair) Inverse() Pair { return Pair{From: p.To, To: p.From} }

// Involves reports whether either side matches the given canonical code.
func (p Pair) Involves(code string) bool { return p.From == code || p.To == code }

func (p Pair) String() string { return p.From + "/" + p.To }
