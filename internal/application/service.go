package application

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultBaseCurrency  = "USD"
	DefaultSourceTimeout = 5 * time.Second
)

type Clock interface{ Now() time.Time }

type realClock struct{}

func (realClock) Now() time.Time { return time.Now().UTC() }

type IDGen interface{ NewID() string }

type uuidGen struct{}

func (uuidGen) NewID() string { return uuid.NewString() }

// Service wires the rate cache, quote sources and the persistence ports
// into the command surface: conversion, refresh, valuation, trades, auth.
type Service struct {
	cache      RateCache
	sources    []QuoteSource
	history    ObservationRepo
	users      UserRepo
	portfolios PortfolioRepo
	sessions   SessionStore

	base          string
	sourceTimeout time.Duration
	clock         Clock
	idgen         IDGen
	log           *zap.Logger
}

type Option func(*Service)

func WithClock(c Clock) Option          { return func(s *Service) { s.clock = c } }
func WithIDGen(g IDGen) Option          { return func(s *Service) { s.idgen = g } }
func WithLogger(l *zap.Logger) Option   { return func(s *Service) { s.log = l } }
func WithBaseCurrency(b string) Option  { return func(s *Service) { s.base = b } }
func WithSourceTimeout(d time.Duration) Option {
	return func(s *Service) { s.sourceTimeout = d }
}

func NewService(cache RateCache, sources []QuoteSource, history ObservationRepo,
	users UserRepo, portfolios PortfolioRepo, sessions SessionStore, opts ...Option) *Service {
	s := &Service{
		cache:      cache,
		sources:    sources,
		history:    history,
		users:      users,
		portfolios: portfolios,
		sessions:   sessions,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.base == "" {
		s.base = DefaultBaseCurrency
	}
	if s.sourceTimeout <= 0 {
		s.sourceTimeout = DefaultSourceTimeout
	}
	if s.clock == nil {
		s.clock = realClock{}
	}
	if s.idgen == nil {
		s.idgen = uuidGen{}
	}
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return s
}

// Base is the configured base currency, hub of the rate graph.
func (s *Service) Base() string { return s.base }
