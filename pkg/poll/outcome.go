package poll

import (
	"errors"
	"fmt"
	"time"
)

// ErrTimeout is wrapped by Outcome.Err for Timeout outcomes.
var ErrTimeout = errors.New("condition not reached before timeout")

// ProbeError reports that a probe could not perform its check. Probe
// errors are never retried within one Run.
type ProbeError struct {
	// Attempt is the 1-based probe invocation that failed.
	Attempt int
	// Err is the underlying cause.
	Err error
}

func (e *ProbeError) Error() string {
	return fmt.Sprintf("probe attempt %d failed: %v", e.Attempt, e.Err)
}

func (e *ProbeError) Unwrap() error { return e.Err }

// Kind classifies the terminal state of a Run.
type Kind int

const (
	// KindSuccess means the probe reported Done.
	KindSuccess Kind = iota + 1
	// KindTimeout means the budget ran out while the probe was Pending.
	KindTimeout
	// KindFailed means the probe reported ProbeFailed or panicked.
	KindFailed
)

// String returns the lowercase name of the kind.
func (k Kind) String() string {
	switch k {
	case KindSuccess:
		return "success"
	case KindTimeout:
		return "timeout"
	case KindFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Outcome is the single terminal result of one Run.
type Outcome[T any] struct {
	kind     Kind
	value    T
	cause    error
	elapsed  time.Duration
	attempts int
}

// Kind returns the outcome classification.
func (o Outcome[T]) Kind() Kind { return o.kind }

// Value returns the payload of a Success outcome and the zero value
// otherwise.
func (o Outcome[T]) Value() T { return o.value }

// Elapsed is measured from the start of Run, initial delay included.
func (o Outcome[T]) Elapsed() time.Duration { return o.elapsed }

// Attempts is the number of probe invocations that were made.
func (o Outcome[T]) Attempts() int { return o.attempts }

// Succeeded reports whether the outcome is Success.
func (o Outcome[T]) Succeeded() bool { return o.kind == KindSuccess }

// Retryable reports whether re-running the whole workflow step could
// help. Only timeouts qualify.
func (o Outcome[T]) Retryable() bool { return o.kind == KindTimeout }

// Err returns nil for Success, an error wrapping ErrTimeout for Timeout
// (joined with the context cause when the caller cancelled), and a
// *ProbeError for Failed.
func (o Outcome[T]) Err() error {
	switch o.kind {
	case KindSuccess:
		return nil
	case KindTimeout:
		err := fmt.Errorf("%w after %s", ErrTimeout, o.elapsed.Round(time.Millisecond))
		if o.cause != nil {
			return errors.Join(err, o.cause)
		}
		return err
	default:
		return o.cause
	}
}

// Cancelled reports whether a Timeout outcome was caused by the caller's
// context rather than by the configured budget.
func (o Outcome[T]) Cancelled() bool {
	return o.kind == KindTimeout && o.cause != nil
}

func success[T any](value T, elapsed time.Duration, attempts int) Outcome[T] {
	return Outcome[T]{kind: KindSuccess, value: value, elapsed: elapsed, attempts: attempts}
}

func timeout[T any](cause error, elapsed time.Duration, attempts int) Outcome[T] {
	return Outcome[T]{kind: KindTimeout, cause: cause, elapsed: elapsed, attempts: attempts}
}

func failed[T any](cause *ProbeError, elapsed time.Duration, attempts int) Outcome[T] {
	return Outcome[T]{kind: KindFailed, cause: cause, elapsed: elapsed, attempts: attempts}
}
