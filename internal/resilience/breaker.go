package resilience

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel/trace"
)

// ErrOpenCircuit is returned when the breaker refuses a request.
var ErrOpenCircuit = errors.New("resilience: circuit breaker open")

type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// BreakerConfig describes when the backend is considered down. The breaker
// looks at the last 2*MinRequests outcomes and opens once at least MinRequests
// of them are known and the failing share reaches FailureRatio.
type BreakerConfig struct {
	Target       string
	MinRequests  int
	FailureRatio float64
	OpenFor      time.Duration
}

func (c BreakerConfig) withDefaults() BreakerConfig {
	c.Target = strings.TrimSpace(c.Target)
	if c.Target == "" {
		c.Target = "default"
	}
	c.MinRequests = max(c.MinRequests, 1)
	if c.FailureRatio <= 0 {
		c.FailureRatio = 0.5
	}
	c.FailureRatio = min(c.FailureRatio, 1)
	if c.OpenFor <= 0 {
		c.OpenFor = 30 * time.Second
	}
	return c
}

type BreakerOption func(*Breaker)

func WithBreakerLogger(logger zerolog.Logger) BreakerOption {
	return func(b *Breaker) {
		b.logger = logger
	}
}

func WithBreakerClock(now func() time.Time) BreakerOption {
	return func(b *Breaker) {
		if now != nil {
			b.now = now
		}
	}
}

// Breaker guards the backend. While half-open it lets a single trial request
// through and refuses everything else until that trial is reported.
type Breaker struct {
	cfg BreakerConfig

	mu            sync.Mutex
	state         State
	window        []bool // true = failure
	next          int
	filled        int
	failures      int
	trialInFlight bool
	openedAt      time.Time

	logger zerolog.Logger
	now    func() time.Time
}

func NewBreaker(cfg BreakerConfig, opts ...BreakerOption) *Breaker {
	cfg = cfg.withDefaults()
	b := &Breaker{
		cfg:    cfg,
		window: make([]bool, 2*cfg.MinRequests),
		logger: zerolog.Nop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(b)
	}
	BreakerState.WithLabelValues(cfg.Target).Set(float64(Closed))
	return b
}

func (b *Breaker) Target() string {
	return b.cfg.Target
}

func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Allow reports whether a request may go out now. Every allowed request must
// be followed by a Report.
func (b *Breaker) Allow(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Closed:
		return true
	case Open:
		if b.now().Sub(b.openedAt) < b.cfg.OpenFor {
			return false
		}
		b.moveLocked(ctx, HalfOpen)
		b.trialInFlight = true
		return true
	default:
		if b.trialInFlight {
			return false
		}
		b.trialInFlight = true
		return true
	}
}

func (b *Breaker) Report(ctx context.Context, success bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		return
	case HalfOpen:
		b.trialInFlight = false
		if success {
			b.moveLocked(ctx, Closed)
		} else {
			b.moveLocked(ctx, Open)
		}
		return
	}

	b.recordLocked(!success)
	if b.filled < b.cfg.MinRequests {
		return
	}
	if float64(b.failures)/float64(b.filled) >= b.cfg.FailureRatio {
		b.moveLocked(ctx, Open)
	}
}

// recordLocked pushes one outcome into the window, evicting the oldest.
func (b *Breaker) recordLocked(failed bool) {
	if b.filled == len(b.window) {
		if b.window[b.next] {
			b.failures--
		}
	} else {
		b.filled++
	}
	b.window[b.next] = failed
	if failed {
		b.failures++
	}
	b.next = (b.next + 1) % len(b.window)
}

func (b *Breaker) moveLocked(ctx context.Context, to State) {
	from := b.state
	if from == to {
		return
	}
	b.state = to
	b.next, b.filled, b.failures = 0, 0, 0
	if to == Open {
		b.openedAt = b.now()
	}

	target := b.cfg.Target
	BreakerState.WithLabelValues(target).Set(float64(to))
	BreakerTransitions.WithLabelValues(target, from.String(), to.String()).Inc()
	if to == Open {
		BreakerOpenedTotal.WithLabelValues(target).Inc()
	}

	evt := b.logger.Info().
		Str("target", target).
		Str("from_state", from.String()).
		Str("to_state", to.String())
	if sc := trace.SpanContextFromContext(ctx); sc.IsValid() {
		evt = evt.Str("trace_id", sc.TraceID().String())
	}
	evt.Msg("breaker_transition")
}
