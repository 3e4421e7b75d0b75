package poll

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/entrhq/shipyard/pkg/poll/polltest"
)

func newSteppingClock() *polltest.Clock { return polltest.NewClock() }

// scriptedProbe returns Pending until call number doneAt (1-based), then
// Done. A zero doneAt never completes.
type scriptedProbe struct {
	calls   int
	doneAt  int
	failAt  int
	clock   *polltest.Clock
	callsAt []time.Duration
	start   time.Time
}

func (p *scriptedProbe) probe(ctx context.Context) Observation[string] {
	p.calls++
	if p.clock != nil {
		p.callsAt = append(p.callsAt, p.clock.Now().Sub(p.start))
	}
	if p.failAt > 0 && p.calls == p.failAt {
		return ProbeFailed[string](errors.New("page is gone"))
	}
	if p.doneAt > 0 && p.calls >= p.doneAt {
		return Done("finished")
	}
	return Pending[string]()
}

func TestNewConfig_Validation(t *testing.T) {
	tests := []struct {
		name         string
		initialDelay time.Duration
		interval     time.Duration
		timeout      time.Duration
		wantErr      bool
	}{
		{name: "zero interval", interval: 0, timeout: 10 * time.Second, wantErr: true},
		{name: "negative interval", interval: -time.Second, timeout: 10 * time.Second, wantErr: true},
		{name: "timeout shorter than initial delay", initialDelay: 10 * time.Second, interval: time.Second, timeout: 5 * time.Second, wantErr: true},
		{name: "negative initial delay", initialDelay: -time.Second, interval: time.Second, timeout: 5 * time.Second, wantErr: true},
		{name: "timeout equal to initial delay", initialDelay: 5 * time.Second, interval: time.Second, timeout: 5 * time.Second},
		{name: "interval longer than timeout", interval: time.Minute, timeout: time.Second},
		{name: "implementation defaults", initialDelay: 90 * time.Second, interval: 3 * time.Second, timeout: 300 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := NewConfig(tt.initialDelay, tt.interval, tt.timeout)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Equal(t, Config{}, cfg)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.interval, cfg.Interval)
		})
	}
}

func TestMustConfig_PanicsOnInvalid(t *testing.T) {
	assert.Panics(t, func() { MustConfig(0, 0, time.Second) })
	assert.NotPanics(t, func() { MustConfig(0, time.Second, time.Second) })
}

func TestRun_SuccessAfterPendingCalls(t *testing.T) {
	clock := newSteppingClock()
	cfg := MustConfig(90*time.Second, 3*time.Second, 300*time.Second)
	p := &scriptedProbe{doneAt: 11, clock: clock, start: clock.Now()}

	outcome := Run(context.Background(), cfg, p.probe, WithClock(clock))

	require.Equal(t, KindSuccess, outcome.Kind())
	assert.Equal(t, "finished", outcome.Value())
	assert.Equal(t, 120*time.Second, outcome.Elapsed())
	assert.Equal(t, 11, outcome.Attempts())
	assert.NoError(t, outcome.Err())
	assert.Equal(t, 90*time.Second, p.callsAt[0], "first probe happens after the initial delay")
	for i := 1; i < len(p.callsAt); i++ {
		assert.Equal(t, 3*time.Second, p.callsAt[i]-p.callsAt[i-1])
	}
}

func TestRun_AlwaysPendingTimesOut(t *testing.T) {
	clock := newSteppingClock()
	cfg := MustConfig(90*time.Second, 3*time.Second, 300*time.Second)
	p := &scriptedProbe{}

	outcome := Run(context.Background(), cfg, p.probe, WithClock(clock))

	require.Equal(t, KindTimeout, outcome.Kind())
	assert.Equal(t, 300*time.Second, outcome.Elapsed())
	assert.Equal(t, 70, p.calls)
	assert.Equal(t, 70, outcome.Attempts())
	assert.True(t, outcome.Retryable())
	assert.False(t, outcome.Cancelled())
	assert.ErrorIs(t, outcome.Err(), ErrTimeout)
	assert.Empty(t, outcome.Value())
}

func TestRun_ProbeFailureIsImmediate(t *testing.T) {
	clock := newSteppingClock()
	cfg := MustConfig(0, time.Second, 60*time.Second)
	p := &scriptedProbe{failAt: 3}

	outcome := Run(context.Background(), cfg, p.probe, WithClock(clock))

	require.Equal(t, KindFailed, outcome.Kind())
	assert.Equal(t, 3, p.calls)
	assert.Equal(t, 2*time.Second, outcome.Elapsed())
	assert.False(t, outcome.Retryable())

	var probeErr *ProbeError
	require.ErrorAs(t, outcome.Err(), &probeErr)
	assert.Equal(t, 3, probeErr.Attempt)
	assert.EqualError(t, probeErr.Err, "page is gone")
}

func TestRun_PanickingProbeBecomesFailed(t *testing.T) {
	clock := newSteppingClock()
	cfg := MustConfig(0, time.Second, 10*time.Second)
	calls := 0
	probe := func(ctx context.Context) Observation[int] {
		calls++
		if calls == 2 {
			panic("locator exploded")
		}
		return Pending[int]()
	}

	var outcome Outcome[int]
	require.NotPanics(t, func() {
		outcome = Run(context.Background(), cfg, probe, WithClock(clock))
	})

	assert.Equal(t, KindFailed, outcome.Kind())
	assert.Equal(t, 2, outcome.Attempts())
	assert.Contains(t, outcome.Err().Error(), "locator exploded")
}

func TestRun_FailedWithoutCauseStillCarriesError(t *testing.T) {
	cfg := MustConfig(0, time.Second, time.Second)
	probe := func(ctx context.Context) Observation[struct{}] {
		return ProbeFailed[struct{}](nil)
	}

	outcome := Run(context.Background(), cfg, probe, WithClock(newSteppingClock()))

	assert.Equal(t, KindFailed, outcome.Kind())
	assert.Error(t, outcome.Err())
}

func TestRun_ElapsedNeverOvershootsTimeout(t *testing.T) {
	clock := newSteppingClock()
	cfg := MustConfig(0, 7*time.Second, 20*time.Second)
	p := &scriptedProbe{}

	outcome := Run(context.Background(), cfg, p.probe, WithClock(clock))

	assert.Equal(t, KindTimeout, outcome.Kind())
	assert.Equal(t, 20*time.Second, outcome.Elapsed())
	assert.Equal(t, 3, p.calls, "probes at 0s, 7s and 14s; the capped 6s suspend ends exactly at the deadline")
	assert.Equal(t, []time.Duration{7 * time.Second, 7 * time.Second, 6 * time.Second}, clock.Slept())
}

func TestRun_SlowProbesCountAgainstTimeout(t *testing.T) {
	clock := newSteppingClock()
	cfg := MustConfig(0, time.Second, 10*time.Second)
	calls := 0

	out := Run(context.Background(), cfg, func(context.Context) Observation[string] {
		calls++
		clock.Advance(4 * time.Second)
		return Pending[string]()
	}, WithClock(clock))

	assert.Equal(t, KindTimeout, out.Kind())
	assert.Equal(t, 2, calls)
	assert.Equal(t, 10*time.Second, out.Elapsed())
	assert.Equal(t, []time.Duration{time.Second, time.Second}, clock.Slept())
}

func TestRun_TimeoutEqualToInitialDelayStillProbesOnce(t *testing.T) {
	clock := newSteppingClock()
	cfg := MustConfig(5*time.Second, time.Second, 5*time.Second)
	p := &scriptedProbe{}

	outcome := Run(context.Background(), cfg, p.probe, WithClock(clock))

	assert.Equal(t, KindTimeout, outcome.Kind())
	assert.Equal(t, 1, p.calls)
	assert.Equal(t, 5*time.Second, outcome.Elapsed())
}

func TestRun_DeterministicAcrossInvocations(t *testing.T) {
	cfg := MustConfig(time.Second, time.Second, 30*time.Second)
	for _, doneAt := range []int{0, 1, 5} {
		first := Run(context.Background(), cfg, (&scriptedProbe{doneAt: doneAt}).probe, WithClock(newSteppingClock()))
		second := Run(context.Background(), cfg, (&scriptedProbe{doneAt: doneAt}).probe, WithClock(newSteppingClock()))
		assert.Equal(t, first.Kind(), second.Kind())
		assert.Equal(t, first.Attempts(), second.Attempts())
		assert.Equal(t, first.Elapsed(), second.Elapsed())
	}
}

func TestRun_CancellationDuringSuspendReturnsTimeout(t *testing.T) {
	cfg := MustConfig(0, time.Hour, 2*time.Hour)
	ctx, cancel := context.WithCancel(context.Background())
	calls := 0
	probe := func(ctx context.Context) Observation[string] {
		calls++
		return Pending[string]()
	}

	go func() {
		time.Sleep(20 * time.Millisecond)
		cancel()
	}()

	started := time.Now()
	outcome := Run(ctx, cfg, probe)

	assert.Less(t, time.Since(started), 10*time.Second)
	assert.Equal(t, KindTimeout, outcome.Kind())
	assert.True(t, outcome.Cancelled())
	assert.ErrorIs(t, outcome.Err(), ErrTimeout)
	assert.ErrorIs(t, outcome.Err(), context.Canceled)
	assert.Equal(t, 1, calls)
}

func TestRun_CancellationLetsInFlightProbeFinish(t *testing.T) {
	cfg := MustConfig(0, time.Second, time.Minute)
	ctx, cancel := context.WithCancel(context.Background())
	var probeCtxErr error
	probe := func(probeCtx context.Context) Observation[string] {
		cancel()
		probeCtxErr = probeCtx.Err()
		return Done("completed anyway")
	}

	outcome := Run(ctx, cfg, probe)

	assert.NoError(t, probeCtxErr, "probe context must not be cancelled under it")
	assert.Equal(t, KindSuccess, outcome.Kind())
	assert.Equal(t, "completed anyway", outcome.Value())
}

func TestRun_AlreadyCancelledSkipsInitialDelay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	calls := 0

	outcome := Run(ctx, MustConfig(time.Hour, time.Second, 2*time.Hour), func(ctx context.Context) Observation[int] {
		calls++
		return Done(1)
	})

	assert.Equal(t, KindTimeout, outcome.Kind())
	assert.Equal(t, 0, calls)
	assert.Equal(t, 0, outcome.Attempts())
}

func TestRun_InvalidConfigIsNotProbed(t *testing.T) {
	calls := 0
	outcome := Run(context.Background(), Config{Interval: 0, Timeout: 10 * time.Second}, func(ctx context.Context) Observation[int] {
		calls++
		return Done(1)
	})

	assert.Equal(t, KindFailed, outcome.Kind())
	assert.ErrorIs(t, outcome.Err(), ErrInvalidConfig)
	assert.Equal(t, 0, calls)
}

func TestRun_ObserverSeesEveryAttempt(t *testing.T) {
	clock := newSteppingClock()
	var seen []Attempt
	p := &scriptedProbe{doneAt: 3}

	outcome := Run(context.Background(), MustConfig(0, 2*time.Second, time.Minute), p.probe,
		WithClock(clock),
		WithObserver(func(a Attempt) { seen = append(seen, a) }),
	)

	require.Equal(t, KindSuccess, outcome.Kind())
	require.Len(t, seen, 3)
	assert.Equal(t, StatusPending, seen[0].Status)
	assert.Equal(t, StatusPending, seen[1].Status)
	assert.Equal(t, StatusDone, seen[2].Status)
	assert.Equal(t, 4*time.Second, seen[2].Elapsed)
	assert.Equal(t, 3, seen[2].Number)
}

func TestAny_FirstNonPendingWins(t *testing.T) {
	errBanner := errors.New("internal error banner")
	var order []string
	banner := func(ctx context.Context) Observation[string] {
		order = append(order, "banner")
		return Pending[string]()
	}
	failing := func(ctx context.Context) Observation[string] {
		order = append(order, "failing")
		return ProbeFailed[string](errBanner)
	}
	finished := func(ctx context.Context) Observation[string] {
		order = append(order, "finished")
		return Done("url")
	}

	obs := Any(banner, failing, finished)(context.Background())

	assert.Equal(t, StatusFailed, obs.Status())
	assert.ErrorIs(t, obs.Cause(), errBanner)
	assert.Equal(t, []string{"banner", "failing"}, order)

	obs = Any(banner, finished)(context.Background())
	assert.Equal(t, StatusDone, obs.Status())
	assert.Equal(t, "url", obs.Payload())

	assert.Equal(t, StatusPending, Any(banner)(context.Background()).Status())
}

func TestMap_ConvertsPayload(t *testing.T) {
	done := func(ctx context.Context) Observation[int] { return Done(21) }
	doubled := Map(done, func(v int) int { return v * 2 })
	assert.Equal(t, 42, doubled(context.Background()).Payload())

	failing := func(ctx context.Context) Observation[int] { return ProbeFailed[int](errors.New("x")) }
	assert.Equal(t, StatusFailed, Map(failing, func(v int) string { return "" })(context.Background()).Status())
}
