package poll

import "context"

// Status is the tri-state result of a single probe.
type Status int

const (
	// StatusPending means the condition has not been reached yet.
	StatusPending Status = iota
	// StatusDone means the condition was observed.
	StatusDone
	// StatusFailed means the check itself could not be performed.
	StatusFailed
)

// String returns the lowercase name of the status.
func (s Status) String() string {
	switch s {
	case StatusPending:
		return "pending"
	case StatusDone:
		return "done"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Observation is produced fresh by every probe invocation.
type Observation[T any] struct {
	status  Status
	payload T
	cause   error
}

// Pending reports that the condition is not reached yet.
func Pending[T any]() Observation[T] {
	return Observation[T]{status: StatusPending}
}

// Done reports that the condition was observed, carrying its payload.
func Done[T any](payload T) Observation[T] {
	return Observation[T]{status: StatusDone, payload: payload}
}

// ProbeFailed reports that the check could not be performed.
func ProbeFailed[T any](cause error) Observation[T] {
	return Observation[T]{status: StatusFailed, cause: cause}
}

// Status returns the observation's state.
func (o Observation[T]) Status() Status { return o.status }

// Payload returns the value carried by a Done observation.
func (o Observation[T]) Payload() T { return o.payload }

// Cause returns the error carried by a ProbeFailed observation.
func (o Observation[T]) Cause() error { return o.cause }

// Probe performs one external check and returns immediately. It must not
// loop, must not mutate remote state, and reports ordinary "not ready"
// conditions as Pending rather than as failures.
type Probe[T any] func(ctx context.Context) Observation[T]

// Any combines probes that watch the same remote operation. They are
// invoked in order and the first non-Pending observation wins, so an
// error banner probe listed first takes precedence over a completion
// marker that might be visible at the same time.
func Any[T any](probes ...Probe[T]) Probe[T] {
	return func(ctx context.Context) Observation[T] {
		for _, probe := range probes {
			if obs := probe(ctx); obs.status != StatusPending {
				return obs
			}
		}
		return Pending[T]()
	}
}

// Map converts the payload of a Done observation.
func Map[T, U any](probe Probe[T], fn func(T) U) Probe[U] {
	return func(ctx context.Context) Observation[U] {
		obs := probe(ctx)
		switch obs.status {
		case StatusDone:
			return Done(fn(obs.payload))
		case StatusFailed:
			return ProbeFailed[U](obs.cause)
		default:
			return Pending[U]()
		}
	}
}
