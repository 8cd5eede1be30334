// Package refresh fetches departure feed text in the background and
// hands finished results to the render loop without blocking it.
//
// A Coordinator moves through Idle -> Fetching -> Ready -> Idle. Only one
// fetch is in flight at a time; a due fetch is skipped while another is
// running.
package refresh

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// State is the coordinator's position in the fetch cycle
type State int32

const (
	Idle State = iota
	Fetching
	Ready
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Fetching:
		return "fetching"
	case Ready:
		return "ready"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// DefaultInterval is how often a new fetch becomes due
const DefaultInterval = 60 * time.Second

// DefaultTimeout bounds a single fetch
const DefaultTimeout = 30 * time.Second

// ErrNoFetcher is returned by FetchNow on a coordinator without a fetcher
var ErrNoFetcher = errors.New("refresh: no fetcher configured")

// Fetcher retrieves raw feed text. destination may be empty.
type Fetcher interface {
	FetchDepartures(ctx context.Context, origin, destination string) ([]byte, error)
}

// FetcherFunc adapts a function to Fetcher
type FetcherFunc func(ctx context.Context, origin, destination string) ([]byte, error)

// FetchDepartures implements Fetcher
func (f FetcherFunc) FetchDepartures(ctx context.Context, origin, destination string) ([]byte, error) {
	return f(ctx, origin, destination)
}

// Coordinator schedules background fetches
type Coordinator struct {
	fetcher     Fetcher
	origin      string
	destination string
	interval    time.Duration
	timeout     time.Duration
	logger      *log.Logger

	state   atomic.Int32
	results chan []byte
	wg      sync.WaitGroup

	mu      sync.Mutex
	last    time.Time
	lastErr error

	version  atomic.Uint64
	failures atomic.Uint64
}

// Option configures a Coordinator
type Option func(*Coordinator)

// WithInterval sets how often a fetch becomes due
func WithInterval(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.interval = d
		}
	}
}

// WithTimeout bounds each fetch
func WithTimeout(d time.Duration) Option {
	return func(c *Coordinator) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger sets the logger
func WithLogger(l *log.Logger) Option {
	return func(c *Coordinator) {
		c.logger = l
	}
}

// New creates an idle coordinator for the origin/destination pair
func New(fetcher Fetcher, origin, destination string, opts ...Option) *Coordinator {
	c := &Coordinator{
		fetcher:     fetcher,
		origin:      origin,
		destination: destination,
		interval:    DefaultInterval,
		timeout:     DefaultTimeout,
		logger:      log.New(io.Discard),
		results:     make(chan []byte, 1),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// State returns the current state
func (c *Coordinator) State() State {
	return State(c.state.Load())
}

// Version returns the number of successful fetches
func (c *Coordinator) Version() uint64 {
	return c.version.Load()
}

// Failures returns the number of failed fetches
func (c *Coordinator) Failures() uint64 {
	return c.failures.Load()
}

// Err returns the error of the most recent fetch, nil if it succeeded
func (c *Coordinator) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}

// Interval returns the refresh interval
func (c *Coordinator) Interval() time.Duration {
	return c.interval
}

// Defer restarts the interval at now, typically after a synchronous
// fetch at startup
func (c *Coordinator) Defer(now time.Time) {
	c.mu.Lock()
	c.last = now
	c.mu.Unlock()
}

// FetchNow fetches synchronously, bounded by the coordinator's timeout.
// It does not touch the background state.
func (c *Coordinator) FetchNow(ctx context.Context) ([]byte, error) {
	if c.fetcher == nil {
		return nil, ErrNoFetcher
	}
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.fetcher.FetchDepartures(ctx, c.origin, c.destination)
}

// MaybeStart begins a background fetch if the interval has elapsed since
// the last one started and no fetch is in flight. It never blocks.
func (c *Coordinator) MaybeStart(ctx context.Context, now time.Time) bool {
	if c.fetcher == nil {
		return false
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.last.IsZero() && now.Sub(c.last) < c.interval {
		return false
	}
	if !c.state.CompareAndSwap(int32(Idle), int32(Fetching)) {
		return false
	}
	c.last = now

	c.wg.Add(1)
	go c.fetch(ctx)
	return true
}

func (c *Coordinator) fetch(ctx context.Context) {
	defer c.wg.Done()

	start := time.Now()
	raw, err := c.FetchNow(ctx)
	if err != nil {
		c.failures.Add(1)
		c.mu.Lock()
		c.lastErr = err
		c.mu.Unlock()
		c.state.Store(int32(Idle))
		c.logger.Warn("Background fetch failed",
			"origin", c.origin,
			"destination", c.destination,
			"elapsed", time.Since(start),
			"err", err)
		return
	}

	c.mu.Lock()
	c.lastErr = nil
	c.mu.Unlock()

	// The slot is empty: a result is only sent from Fetching, and Poll
	// drains it before returning to Idle.
	c.results <- raw
	v := c.version.Add(1)
	c.state.Store(int32(Ready))
	c.logger.Debug("Background fetch complete", "version", v, "bytes", len(raw), "elapsed", time.Since(start))
}

// Poll hands a finished fetch to apply and returns to Idle. It reports
// false without blocking when nothing is ready. The error is apply's.
func (c *Coordinator) Poll(apply func(raw []byte) error) (bool, error) {
	if c.State() != Ready {
		return false, nil
	}

	var raw []byte
	select {
	case raw = <-c.results:
	default:
		return false, nil
	}

	err := apply(raw)
	c.state.Store(int32(Idle))
	return true, err
}

// Wait blocks until any background fetch has finished
func (c *Coordinator) Wait() {
	c.wg.Wait()
}
