package application

import (
	"errors"
	"fmt"

	"valutatrade-hub/internal/domain"
)

var (
	ErrNotFound           = errors.New("not found")
	ErrUserExists         = errors.New("user already exists")
	ErrNotLoggedIn        = errors.New("not logged in")
	ErrInvalidCredentials = errors.New("invalid username or password")

	// ErrCacheMiss and ErrCacheExpired are the two distinct negative
	// outcomes of a cache read. Expired reads still carry the stale entry
	// so callers may serve it explicitly when every source is down.
	ErrCacheMiss    = errors.New("rate not cached")
	ErrCacheExpired = errors.New("cached rate expired")
)

// ValidationError reports bad user input (amount, currency code, source name).
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("validation: %s: %v", e.Reason, e.Err)
	}
	return "validation: " + e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// RateUnavailableError means direct, inverse, triangulated and
// refresh-and-retry resolution all came up empty for the pair.
type RateUnavailableError struct {
	Pair domain.Pair
}

func (e *RateUnavailableError) Error() string {
	return fmt.Sprintf("no rate available for %s after refresh", e.Pair)
}

// SourceUnavailableError wraps a network or provider failure of one source.
type SourceUnavailableError struct {
	Source string
	Err    error
}

func (e *SourceUnavailableError) Error() string {
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

func (e *SourceUnavailableError) Unwrap() error { return e.Err }

// ConfigurationError reports a missing credential or malformed source
// config. It is surfaced as-is when the user requested that source
// explicitly, so the command can abort instead of skipping.
type ConfigurationError struct {
	Source  string
	Missing string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("source %s misconfigured: missing %s", e.Source, e.Missing)
}
