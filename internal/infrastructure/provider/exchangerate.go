package provider

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"
	"valutatrade-hub/internal/infrastructure/httpx"
)

const exchangeRateLatestPath = "/v1/latest"

// ExchangeRate fetches fiat reference rates. The upstream quotes every
// symbol against its own base (EUR on the free tier), so rates are
// re-denominated into X→Base before they leave this source.
// Requires an API key.
type ExchangeRate struct {
	BaseURL string
	APIKey  string
	// Base is the configured base currency, e.g. USD.
	Base   string
	Client *httpx.Client
}

var _ application.QuoteSource = (*ExchangeRate)(nil)

type xrLatestResp struct {
	Success   bool               `json:"success"`
	Timestamp int64              `json:"timestamp"`
	Base      string             `json:"base"`
	Date      string             `json:"date"`
	Rates     map[string]float64 `json:"rates"`
	Error     *struct {
		Code int    `json:"code"`
		Info string `json:"info"`
	} `json:"error,omitempty"`
}

func (p *ExchangeRate) Name() string           { return "ExchangeRate-API" }
func (p *ExchangeRate) Specialty() domain.Kind { return domain.KindFiat }

func (p *ExchangeRate) Fetch(ctx context.Context, pairs []domain.Pair) (application.FetchResult, error) {
	if p.APIKey == "" {
		return application.FetchResult{}, &application.ConfigurationError{
			Source:  p.Name(),
			Missing: "EXCHANGERATE_API_KEY",
		}
	}
	if p.BaseURL == "" {
		return application.FetchResult{}, fmt.Errorf("exchangerate: missing base url")
	}

	codes, unresolved := p.fiatCodes(pairs)
	if len(codes) == 0 {
		return application.FetchResult{Unresolved: unresolved}, nil
	}

	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return application.FetchResult{}, fmt.Errorf("exchangerate: invalid base url: %w", err)
	}
	u.Path += exchangeRateLatestPath
	q := u.Query()
	q.Set("access_key", p.APIKey)
	q.Set("symbols", strings.Join(append(codes, p.Base), ","))
	u.RawQuery = q.Encode()

	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var body xrLatestResp
	if err := client.GetJSON(ctx, u.String(), &body); err != nil {
		return application.FetchResult{}, fmt.Errorf("exchangerate: %w", err)
	}
	if !body.Success {
		if body.Error != nil {
			return application.FetchResult{}, fmt.Errorf("exchangerate: %d %s", body.Error.Code, body.Error.Info)
		}
		return application.FetchResult{}, errors.New("exchangerate: unsuccessful response")
	}

	// Rates are respBase→symbol; X→Base = (respBase→Base) / (respBase→X).
	respTo := func(c string) (float64, bool) {
		if c == body.Base {
			return 1.0, true
		}
		v, ok := body.Rates[c]
		return v, ok && v > 0
	}
	toBase, ok := respTo(p.Base)
	if !ok {
		return application.FetchResult{}, fmt.Errorf("exchangerate: missing rate for %s", p.Base)
	}

	observedAt := time.Now().UTC()
	if body.Timestamp > 0 {
		observedAt = time.Unix(body.Timestamp, 0).UTC()
	}

	var quotes []domain.Quote
	for _, code := range codes {
		toX, ok := respTo(code)
		if !ok {
			unresolved++
			continue
		}
		rate := decimal.NewFromFloat(toBase).DivRound(decimal.NewFromFloat(toX), 16)
		if !rate.IsPositive() {
			unresolved++
			continue
		}
		quotes = append(quotes, domain.Quote{
			Pair:       domain.Pair{From: code, To: p.Base},
			Rate:       rate,
			ObservedAt: observedAt,
			Source:     p.Name(),
		})
	}
	return application.FetchResult{Quotes: quotes, Unresolved: unresolved}, nil
}

// fiatCodes selects the fiat symbols to request, excluding the base itself.
func (p *ExchangeRate) fiatCodes(pairs []domain.Pair) (codes []string, unresolved int) {
	if pairs == nil {
		for _, code := range domain.Codes(domain.KindFiat) {
			if code != p.Base {
				codes = append(codes, code)
			}
		}
		return codes, 0
	}
	seen := map[string]bool{}
	for _, pair := range pairs {
		if pair.To != p.Base || pair.From == p.Base || domain.CurrencyKind(pair.From) != domain.KindFiat {
			unresolved++
			continue
		}
		if !seen[pair.From] {
			seen[pair.From] = true
			codes = append(codes, pair.From)
		}
	}
	return codes, unresolved
}
