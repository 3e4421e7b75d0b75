package poll

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Attempt describes one completed probe invocation. Observers receive it
// after every probe, before Run decides what to do next.
type Attempt struct {
	Number  int
	Status  Status
	Elapsed time.Duration
	Err     error
}

type options struct {
	clock    Clock
	observer func(Attempt)
}

// Option customizes a Run.
type Option func(*options)

// WithClock replaces the real clock.
func WithClock(c Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// WithObserver registers a callback invoked synchronously after every
// probe. It is used for progress reporting and logging.
func WithObserver(fn func(Attempt)) Option {
	return func(o *options) {
		o.observer = fn
	}
}

// Run drives probe until it reports Done or ProbeFailed, or until the
// budget in cfg is exhausted. It returns exactly one Outcome and never
// panics on behalf of the probe.
//
// Run assumes cfg was built by NewConfig; an invalid cfg is reported as a
// Failed outcome without probing.
//
// Cancelling ctx during a suspend returns a Timeout outcome immediately.
// A probe already running is allowed to finish: it receives a context
// that is detached from ctx's cancellation.
func Run[T any](ctx context.Context, cfg Config, probe Probe[T], opts ...Option) Outcome[T] {
	o := options{clock: RealClock()}
	for _, opt := range opts {
		opt(&o)
	}

	if err := cfg.Validate(); err != nil {
		return failed[T](&ProbeError{Attempt: 0, Err: err}, 0, 0)
	}
	if probe == nil {
		return failed[T](&ProbeError{Attempt: 0, Err: errors.New("nil probe")}, 0, 0)
	}

	start := o.clock.Now()
	elapsed := func() time.Duration { return o.clock.Now().Sub(start) }
	probeCtx := context.WithoutCancel(ctx)

	if cfg.InitialDelay > 0 {
		if err := sleep(ctx, o.clock, cfg.InitialDelay); err != nil {
			return timeout[T](err, elapsed(), 0)
		}
	}

	for attempt := 1; ; attempt++ {
		obs := invoke(probeCtx, probe)
		spent := elapsed()

		if o.observer != nil {
			o.observer(Attempt{Number: attempt, Status: obs.status, Elapsed: spent, Err: obs.cause})
		}

		switch obs.status {
		case StatusDone:
			return success(obs.payload, spent, attempt)
		case StatusFailed:
			cause := obs.cause
			if cause == nil {
				cause = errors.New("probe reported failure without a cause")
			}
			return failed[T](&ProbeError{Attempt: attempt, Err: cause}, spent, attempt)
		}

		if err := context.Cause(ctx); err != nil {
			return timeout[T](err, spent, attempt)
		}

		remaining := cfg.Timeout - spent
		if remaining <= 0 {
			return timeout[T](nil, spent, attempt)
		}

		if err := sleep(ctx, o.clock, min(cfg.Interval, remaining)); err != nil {
			return timeout[T](err, elapsed(), attempt)
		}

		if spent = elapsed(); spent >= cfg.Timeout {
			return timeout[T](nil, spent, attempt)
		}
	}
}

// sleep suspends for d or until ctx is done, whichever comes first.
func sleep(ctx context.Context, clock Clock, d time.Duration) error {
	if err := context.Cause(ctx); err != nil {
		return err
	}
	select {
	case <-ctx.Done():
		return context.Cause(ctx)
	case <-clock.After(d):
		return nil
	}
}

// invoke calls probe and converts a panic into a ProbeFailed observation.
func invoke[T any](ctx context.Context, probe Probe[T]) (obs Observation[T]) {
	defer func() {
		if r := recover(); r != nil {
			err, ok := r.(error)
			if !ok {
				err = fmt.Errorf("%v", r)
			}
			obs = ProbeFailed[T](fmt.Errorf("probe panicked: %w", err))
		}
	}()
	return probe(ctx)
}
