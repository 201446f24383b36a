package provider

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/domain"
	"valutatrade-hub/internal/infrastructure/httpx"
)

const coinGeckoSimplePricePath = "/simple/price"

// CoinGecko fetches crypto spot prices against one fiat currency from the
// CoinGecko simple/price endpoint. No credentials required.
type CoinGecko struct {
	BaseURL string
	// Base is the fiat side every quote is expressed against, e.g. USD.
	Base   string
	Client *httpx.Client
}

var _ application.QuoteSource = (*CoinGecko)(nil)

func (p *CoinGecko) Name() string           { return "CoinGecko" }
func (p *CoinGecko) Specialty() domain.Kind { return domain.KindCrypto }

func (p *CoinGecko) Fetch(ctx context.Context, pairs []domain.Pair) (application.FetchResult, error) {
	if p.BaseURL == "" {
		return application.FetchResult{}, fmt.Errorf("coingecko: missing base url")
	}

	codes, unresolved := p.cryptoCodes(pairs)
	if len(codes) == 0 {
		return application.FetchResult{Unresolved: unresolved}, nil
	}

	ids := make([]string, 0, len(codes))
	byID := make(map[string]string, len(codes))
	for _, code := range codes {
		cur, err := domain.GetCurrency(code)
		if err != nil || cur.CoinGeckoID == "" {
			unresolved++
			continue
		}
		ids = append(ids, cur.CoinGeckoID)
		byID[cur.CoinGeckoID] = cur.Code
	}

	u, err := url.Parse(p.BaseURL)
	if err != nil {
		return application.FetchResult{}, fmt.Errorf("coingecko: invalid base url: %w", err)
	}
	u.Path += coinGeckoSimplePricePath
	q := u.Query()
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", strings.ToLower(p.Base))
	u.RawQuery = q.Encode()

	client := p.Client
	if client == nil {
		client = &httpx.Client{}
	}
	var body map[string]map[string]float64
	if err := client.GetJSON(ctx, u.String(), &body); err != nil {
		return application.FetchResult{}, fmt.Errorf("coingecko: %w", err)
	}

	observedAt := time.Now().UTC()
	vs := strings.ToLower(p.Base)
	var quotes []domain.Quote
	for _, id := range ids {
		price, ok := body[id][vs]
		if !ok || price <= 0 {
			unresolved++
			continue
		}
		quotes = append(quotes, domain.Quote{
			Pair:       domain.Pair{From: byID[id], To: p.Base},
			Rate:       decimal.NewFromFloat(price),
			ObservedAt: observedAt,
			Source:     p.Name(),
		})
	}
	return application.FetchResult{Quotes: quotes, Unresolved: unresolved}, nil
}

// cryptoCodes selects which crypto codes to request: the crypto side of
// every requested X→Base pair, or full registry coverage for nil pairs.
// Pairs this source cannot serve count as unresolved.
func (p *CoinGecko) cryptoCodes(pairs []domain.Pair) (codes []string, unresolved int) {
	if pairs == nil {
		return domain.Codes(domain.KindCrypto), 0
	}
	seen := map[string]bool{}
	for _, pair := range pairs {
		if pair.To != p.Base || domain.CurrencyKind(pair.From) != domain.KindCrypto {
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
