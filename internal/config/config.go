package config

import (
	"os"
	"path/filepath"
	"strconv"
	"time"
)

type Config struct {
	// Common
	Env      string
	LogLevel string
	DataDir  string
	// Rates
	BaseCurrency  string
	RatesTTL      time.Duration
	SourceTimeout time.Duration
	// Cache backend: "file", "memory" or "redis"
	CacheBackend string
	// History backend: "file" or "pg"
	HistoryBackend string
	DatabaseURL    string
	// Sources
	CoinGeckoURL       string
	ExchangeRateURL    string
	ExchangeRateAPIKey string
	// API
	Port string
	// Worker
	RefreshEvery time.Duration
	// Redis
	RedisAddr     string
	RedisPassword string
	RedisDB       int
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func atoiDef(s string, def int) int {
	i, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return i
}

// Load reads environment variables and applies defaults.
func Load() Config {
	return Config{
		Env:                getEnv("ENV", "local"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		DataDir:            getEnv("DATA_DIR", "data"),
		BaseCurrency:       getEnv("BASE_CURRENCY", "USD"),
		RatesTTL:           time.Duration(atoiDef(getEnv("RATES_TTL_SECONDS", "300"), 300)) * time.Second,
		SourceTimeout:      time.Duration(atoiDef(getEnv("SOURCE_TIMEOUT_MS", "5000"), 5000)) * time.Millisecond,
		CacheBackend:       getEnv("CACHE_BACKEND", "file"),
		HistoryBackend:     getEnv("HISTORY_BACKEND", "file"),
		DatabaseURL:        getEnv("DATABASE_URL", ""),
		CoinGeckoURL:       getEnv("COINGECKO_URL", "https://api.coingecko.com/api/v3"),
		ExchangeRateURL:    getEnv("EXCHANGERATE_API_URL", "https://api.exchangeratesapi.io"),
		ExchangeRateAPIKey: getEnv("EXCHANGERATE_API_KEY", ""),
		Port:               getEnv("PORT", "8080"),
		RefreshEvery:       time.Duration(atoiDef(getEnv("REFRESH_EVERY_SECONDS", "0"), 0)) * time.Second,
		RedisAddr:          getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:      getEnv("REDIS_PASSWORD", ""),
		RedisDB:            atoiDef(getEnv("REDIS_DB", "0"), 0),
	}
}

// File paths inside DataDir for the JSON-file persistence backend.

func (c Config) RatesFile() string      { return filepath.Join(c.DataDir, "rates.json") }
func (c Config) HistoryFile() string    { return filepath.Join(c.DataDir, "exchange_rates.json") }
func (c Config) UsersFile() string      { return filepath.Join(c.DataDir, "users.json") }
func (c Config) PortfoliosFile() string { return filepath.Join(c.DataDir, "portfolios.json") }
func (c Config) SessionFile() string    { return filepath.Join(c.DataDir, "session.json") }
