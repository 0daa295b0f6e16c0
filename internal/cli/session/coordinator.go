package session

import (
	"context"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/rs/zerolog"
)

// MinInterval is the shortest time allowed between two silent checks
const MinInterval = 60 * time.Second

// Checker is what the coordinator keeps fresh
type Checker interface {
	HasToken() bool
	Check(ctx context.Context, policy ErrorPolicy) error
}

// Coordinator turns visibility and focus signals into silent session checks.
// At most one check is in flight, checks start at least minInterval apart,
// and signals that arrive while a check runs are dropped.
type Coordinator struct {
	checker     Checker
	clock       clockwork.Clock
	minInterval time.Duration
	log         zerolog.Logger

	mu        sync.Mutex
	inFlight  bool
	lastCheck time.Time
	wg        sync.WaitGroup
}

// CoordinatorOption configures a Coordinator
type CoordinatorOption func(*Coordinator)

// WithClock replaces the wall clock
func WithClock(clock clockwork.Clock) CoordinatorOption {
	return func(c *Coordinator) {
		c.clock = clock
	}
}

// WithInterval lengthens the minimum interval between checks. Values below
// MinInterval are ignored.
func WithInterval(d time.Duration) CoordinatorOption {
	return func(c *Coordinator) {
		if d > MinInterval {
			c.minInterval = d
		}
	}
}

// WithLogger sets the coordinator logger
func WithLogger(log zerolog.Logger) CoordinatorOption {
	return func(c *Coordinator) {
		c.log = log
	}
}

// NewCoordinator creates a coordinator for the given checker
func NewCoordinator(checker Checker, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		checker:     checker,
		clock:       clockwork.NewRealClock(),
		minInterval: MinInterval,
		log:         zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.With().Str("component", "freshness").Logger()
	return c
}

// Trigger handles one signal. It reports whether a check was started.
func (c *Coordinator) Trigger(ctx context.Context, sig Signal) bool {
	if !c.checker.HasToken() {
		c.log.Debug().Stringer("signal", sig).Msg("Ignored: no token")
		return false
	}

	c.mu.Lock()
	if c.inFlight {
		c.mu.Unlock()
		c.log.Debug().Stringer("signal", sig).Msg("Ignored: check in flight")
		return false
	}

	now := c.clock.Now()
	if !c.lastCheck.IsZero() && now.Sub(c.lastCheck) < c.minInterval {
		c.mu.Unlock()
		c.log.Debug().
			Stringer("signal", sig).
			Dur("since_last", now.Sub(c.lastCheck)).
			Msg("Ignored: checked recently")
		return false
	}

	c.inFlight = true
	c.lastCheck = now
	c.wg.Add(1)
	c.mu.Unlock()

	c.log.Debug().Stringer("signal", sig).Msg("Starting silent session check")

	go func() {
		defer c.wg.Done()
		defer func() {
			c.mu.Lock()
			c.inFlight = false
			c.mu.Unlock()
		}()

		// silent checks never fail
		_ = c.checker.Check(ctx, PolicySilent)
	}()

	return true
}

// Attach subscribes the coordinator to every source. The returned function
// unsubscribes from all of them; a check already running is left to finish.
func (c *Coordinator) Attach(ctx context.Context, sources ...Source) (detach func()) {
	unsubs := make([]func(), 0, len(sources))
	for _, src := range sources {
		unsubs = append(unsubs, src.Subscribe(func(sig Signal) {
			c.Trigger(ctx, sig)
		}))
	}

	var once sync.Once
	return func() {
		once.Do(func() {
			for _, unsub := range unsubs {
				unsub()
			}
		})
	}
}

// InFlight reports whether a check is currently running
func (c *Coordinator) InFlight() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.inFlight
}

// LastCheck returns when the most recent check started
func (c *Coordinator) LastCheck() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastCheck
}

// Wait blocks until every started check has finished
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
