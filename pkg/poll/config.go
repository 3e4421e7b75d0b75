package poll

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidConfig is returned by NewConfig and Config.Validate when the
// durations cannot describe a meaningful poll.
var ErrInvalidConfig = errors.New("invalid poll config")

// Config holds the three durations of a single poll invocation.
type Config struct {
	// InitialDelay is slept once before the first probe. It keeps the
	// first observation away from stale UI state.
	InitialDelay time.Duration

	// Interval separates consecutive probes. Must be positive.
	Interval time.Duration

	// Timeout bounds the whole invocation, initial delay included.
	Timeout time.Duration
}

// NewConfig builds and validates a Config.
func NewConfig(initialDelay, interval, timeout time.Duration) (Config, error) {
	cfg := Config{
		InitialDelay: initialDelay,
		Interval:     interval,
		Timeout:      timeout,
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// MustConfig is like NewConfig but panics on invalid input. It is meant
// for package-level defaults built from constants.
func MustConfig(initialDelay, interval, timeout time.Duration) Config {
	cfg, err := NewConfig(initialDelay, interval, timeout)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Validate reports whether the durations are usable.
func (c Config) Validate() error {
	if c.InitialDelay < 0 {
		return fmt.Errorf("%w: initial delay must not be negative, got %v", ErrInvalidConfig, c.InitialDelay)
	}
	if c.Interval <= 0 {
		return fmt.Errorf("%w: interval must be positive, got %v", ErrInvalidConfig, c.Interval)
	}
	if c.Timeout < c.InitialDelay {
		return fmt.Errorf("%w: timeout %v is shorter than initial delay %v", ErrInvalidConfig, c.Timeout, c.InitialDelay)
	}
	return nil
}

// WithTimeout returns a copy of c with a different budget, validated.
func (c Config) WithTimeout(timeout time.Duration) (Config, error) {
	return NewConfig(c.InitialDelay, c.Interval, timeout)
}

// String renders the config for logs.
func (c Config) String() string {
	return fmt.Sprintf("initial_delay=%v interval=%v timeout=%v", c.InitialDelay, c.Interval, c.Timeout)
}
