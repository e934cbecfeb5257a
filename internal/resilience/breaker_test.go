package resilience_test

import (
	"context"
	"testing"
	"time"

	"github.com/nikolayk812/storefront/internal/resilience"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

type clock struct {
	now time.Time
}

func (c *clock) Now() time.Time { return c.now }

func (c *clock) Advance(d time.Duration) { c.now = c.now.Add(d) }

func newBreaker(target string, minRequests int, ratio float64, c *clock) *resilience.Breaker {
	return resilience.NewBreaker(resilience.BreakerConfig{
		Target:       target,
		MinRequests:  minRequests,
		FailureRatio: ratio,
		OpenFor:      time.Minute,
	}, resilience.WithBreakerClock(c.Now))
}

func TestBreakerTransitions(t *testing.T) {
	c := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	breaker := newBreaker("transitions", 2, 0.5, c)
	ctx := context.Background()

	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)
	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, false)

	require.False(t, breaker.Allow(ctx), "opens once the failing share reaches the ratio")
	require.Equal(t, resilience.Open, breaker.State())

	c.Advance(59 * time.Second)
	require.False(t, breaker.Allow(ctx), "still cooling off")

	c.Advance(time.Second)
	require.True(t, breaker.Allow(ctx), "first request after cool off is the trial")
	require.Equal(t, resilience.HalfOpen, breaker.State())

	breaker.Report(ctx, true)
	require.True(t, breaker.Allow(ctx))
	require.Equal(t, resilience.Closed, breaker.State())

	require.Equal(t, float64(1), testutil.ToFloat64(resilience.BreakerOpenedTotal.WithLabelValues("transitions")))
	require.Equal(t, float64(1), testutil.ToFloat64(resilience.BreakerTransitions.WithLabelValues("transitions", "open", "half_open")))
	require.Equal(t, float64(resilience.Closed), testutil.ToFloat64(resilience.BreakerState.WithLabelValues("transitions")))
}

func TestBreakerSingleTrialRequest(t *testing.T) {
	c := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	breaker := newBreaker("half_open_trial", 1, 1, c)
	ctx := context.Background()

	breaker.Report(ctx, false)
	require.Equal(t, resilience.Open, breaker.State())

	c.Advance(time.Minute)
	require.True(t, breaker.Allow(ctx))
	require.False(t, breaker.Allow(ctx), "only one trial request while half-open")

	breaker.Report(ctx, false)
	require.Equal(t, resilience.Open, breaker.State(), "failed trial reopens")
	require.False(t, breaker.Allow(ctx))

	c.Advance(time.Minute)
	require.True(t, breaker.Allow(ctx))
	breaker.Report(ctx, true)
	require.Equal(t, resilience.Closed, breaker.State())
}

func TestBreakerWindowForgetsOldFailures(t *testing.T) {
	c := &clock{now: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	// window of 4 outcomes, opens at 3 failures out of 4
	breaker := newBreaker("window", 2, 0.75, c)
	ctx := context.Background()

	for _, ok := range []bool{false, true, true, false, true, false, true} {
		breaker.Report(ctx, ok)
		require.Equal(t, resilience.Closed, breaker.State())
	}

	// the first failure has left the window: two of the last four failed
	breaker.Report(ctx, false)
	require.Equal(t, resilience.Closed, breaker.State(), "still two of four")
	breaker.Report(ctx, false)
	require.Equal(t, resilience.Open, breaker.State())
}

func TestBackoffWithJitter(t *testing.T) {
	base := 100 * time.Millisecond
	require.Equal(t, base, resilience.Backoff(base, 1, 0))
	require.Equal(t, base*4, resilience.Backoff(base, 3, 0))
	require.Equal(t, base, resilience.Backoff(base, 0, 0))

	d := resilience.Backoff(base, 2, 0.2)
	require.GreaterOrEqual(t, d, base*2-(base*2/5))
	require.LessOrEqual(t, d, base*2+(base*2/5))
}

func TestRegister(t *testing.T) {
	reg := prometheus.NewRegistry()
	require.NoError(t, resilience.Register(reg))
	require.Error(t, resilience.Register(reg), "collectors are registered once")
}
