package bootstrap

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"valutatrade-hub/internal/application"
	"valutatrade-hub/internal/config"
	"valutatrade-hub/internal/infrastructure/cache"
	"valutatrade-hub/internal/infrastructure/httpx"
	"valutatrade-hub/internal/infrastructure/jsonstore"
	"valutatrade-hub/internal/infrastructure/logx"
	"valutatrade-hub/internal/infrastructure/pg"
	"valutatrade-hub/internal/infrastructure/provider"
	"valutatrade-hub/internal/infrastructure/worker"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
)

// Stores groups the persistence ports behind the service.
type Stores struct {
	Cache      application.RateCache
	History    application.ObservationRepo
	Users      application.UserRepo
	Portfolios application.PortfolioRepo
	Sessions   application.SessionStore
}

// BuildStores assembles storage backends from config. The returned cleanup
// closes whatever connections were opened; always safe to call.
func BuildStores(ctx context.Context, cfg config.Config) (Stores, func(), error) {
	log := logx.L()
	cleanups := []func(){}
	cleanup := func() {
		for i := len(cleanups) - 1; i >= 0; i-- {
			cleanups[i]()
		}
	}

	st := Stores{
		Users:      jsonstore.NewUsers(cfg.UsersFile()),
		Portfolios: jsonstore.NewPortfolios(cfg.PortfoliosFile()),
		Sessions:   jsonstore.NewSession(cfg.SessionFile()),
	}

	switch cfg.CacheBackend {
	case "memory":
		st.Cache = cache.NewMemory(cfg.RatesTTL)
	case "redis":
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		cleanups = append(cleanups, func() { _ = client.Close() })
		st.Cache = cache.NewRedis(client, cfg.RatesTTL)
	case "file":
		st.Cache = jsonstore.NewRates(cfg.RatesFile(), cfg.RatesTTL)
	default:
		cleanup()
		return Stores{}, func() {}, fmt.Errorf("unknown CACHE_BACKEND %q", cfg.CacheBackend)
	}

	switch cfg.HistoryBackend {
	case "pg":
		if cfg.DatabaseURL == "" {
			cleanup()
			return Stores{}, func() {}, fmt.Errorf("DATABASE_URL is required for HISTORY_BACKEND=pg")
		}
		db, err := pg.Connect(ctx, cfg.DatabaseURL)
		if err != nil {
			cleanup()
			return Stores{}, func() {}, err
		}
		if err := pg.RunMigrations(ctx, db); err != nil {
			db.Close()
			cleanup()
			return Stores{}, func() {}, err
		}
		cleanups = append(cleanups, func() {
			log.Info("closing pg")
			db.Close()
		})
		st.History = pg.NewObservationRepo(db)
	case "file":
		st.History = jsonstore.NewHistory(cfg.HistoryFile())
	default:
		cleanup()
		return Stores{}, func() {}, fmt.Errorf("unknown HISTORY_BACKEND %q", cfg.HistoryBackend)
	}

	return st, cleanup, nil
}

// BuildSources returns the quote sources in precedence-neutral order. Local
// env profiles get a fixed fake so commands work offline.
func BuildSources(cfg config.Config) []application.QuoteSource {
	if cfg.Env == "local" && cfg.ExchangeRateAPIKey == "" {
		return []application.QuoteSource{provider.NewFake(cfg.BaseCurrency, map[string]decimal.Decimal{
			"BTC": decimal.RequireFromString("60000"),
			"ETH": decimal.RequireFromString("3000"),
			"SOL": decimal.RequireFromString("150"),
		})}
	}
	client := &httpx.Client{HTTP: &http.Client{Timeout: cfg.SourceTimeout + time.Second}}
	return []application.QuoteSource{
		&provider.CoinGecko{
			BaseURL: cfg.CoinGeckoURL,
			Base:    cfg.BaseCurrency,
			Client:  client,
		},
		&provider.ExchangeRate{
			BaseURL: cfg.ExchangeRateURL,
			APIKey:  cfg.ExchangeRateAPIKey,
			Base:    cfg.BaseCurrency,
			Client:  client,
		},
	}
}

// BuildService wires everything into the application service.
func BuildService(ctx context.Context, cfg config.Config) (*application.Service, func(), error) {
	stores, cleanup, err := BuildStores(ctx, cfg)
	if err != nil {
		return nil, func() {}, err
	}
	svc := application.NewService(
		stores.Cache,
		BuildSources(cfg),
		stores.History,
		stores.Users,
		stores.Portfolios,
		stores.Sessions,
		application.WithBaseCurrency(cfg.BaseCurrency),
		application.WithSourceTimeout(cfg.SourceTimeout),
		application.WithLogger(logx.L()),
	)
	return svc, cleanup, nil
}

// BuildWorker returns a background refresh worker, or nil when the refresh
// interval is unset.
func BuildWorker(svc *application.Service, cfg config.Config) application.Worker {
	if cfg.RefreshEvery <= 0 {
		return nil
	}
	return &worker.Ticker{Svc: svc, Every: cfg.RefreshEvery, Log: logx.L()}
}
