package refresh

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/mobil-koeln/moko-board/internal/testutil"
)

var t0 = time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)

// gatedFetcher blocks every fetch until release is closed or a value is sent
type gatedFetcher struct {
	gate  chan struct{}
	body  []byte
	err   error
	calls atomic.Int32

	mu          sync.Mutex
	origin      string
	destination string
}

func newGatedFetcher(body string) *gatedFetcher {
	return &gatedFetcher{gate: make(chan struct{}), body: []byte(body)}
}

func (f *gatedFetcher) FetchDepartures(ctx context.Context, origin, destination string) ([]byte, error) {
	f.calls.Add(1)

	f.mu.Lock()
	f.origin, f.destination = origin, destination
	f.mu.Unlock()

	select {
	case <-f.gate:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	if f.err != nil {
		return nil, f.err
	}
	return f.body, nil
}

func (f *gatedFetcher) release() { close(f.gate) }

func instantFetcher(body string) FetcherFunc {
	return func(ctx context.Context, origin, destination string) ([]byte, error) {
		return []byte(body), nil
	}
}

func TestState_String(t *testing.T) {
	testutil.AssertEqual(t, Idle.String(), "idle")
	testutil.AssertEqual(t, Fetching.String(), "fetching")
	testutil.AssertEqual(t, Ready.String(), "ready")
	testutil.AssertEqual(t, State(7).String(), "State(7)")
}

func TestCoordinator_FetchCycle(t *testing.T) {
	f := newGatedFetcher(`{"locationName":"Reading"}`)
	c := New(f, "RDG", "PAD", WithInterval(time.Minute))
	ctx := context.Background()

	testutil.AssertEqual(t, c.State(), Idle)
	testutil.AssertTrue(t, c.MaybeStart(ctx, t0))
	testutil.AssertEqual(t, c.State(), Fetching)

	applied, err := c.Poll(func([]byte) error {
		t.Fatal("apply called while fetching")
		return nil
	})
	testutil.AssertNil(t, err)
	testutil.AssertFalse(t, applied)

	f.release()
	testutil.Eventually(t, time.Second, func() bool { return c.State() == Ready })
	testutil.AssertEqual(t, c.Version(), uint64(1))

	var got string
	applied, err = c.Poll(func(raw []byte) error {
		got = string(raw)
		return nil
	})
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, applied)
	testutil.AssertEqual(t, got, `{"locationName":"Reading"}`)
	testutil.AssertEqual(t, c.State(), Idle)

	f.mu.Lock()
	testutil.AssertEqual(t, f.origin, "RDG")
	testutil.AssertEqual(t, f.destination, "PAD")
	f.mu.Unlock()

	c.Wait()
}

func TestCoordinator_SingleFetchInFlight(t *testing.T) {
	f := newGatedFetcher("{}")
	c := New(f, "PAD", "", WithInterval(time.Second))
	ctx := context.Background()

	testutil.AssertTrue(t, c.MaybeStart(ctx, t0))
	for i := 1; i <= 5; i++ {
		testutil.AssertFalse(t, c.MaybeStart(ctx, t0.Add(time.Duration(i)*time.Minute)))
	}
	testutil.AssertEqual(t, f.calls.Load(), int32(1))

	f.release()
	c.Wait()
	testutil.AssertEqual(t, c.State(), Ready)

	// Not restarted until the ready result is taken
	testutil.AssertFalse(t, c.MaybeStart(ctx, t0.Add(time.Hour)))
}

func TestCoordinator_IntervalGating(t *testing.T) {
	c := New(instantFetcher("{}"), "PAD", "", WithInterval(time.Minute))
	ctx := context.Background()
	apply := func([]byte) error { return nil }

	testutil.AssertTrue(t, c.MaybeStart(ctx, t0))
	c.Wait()
	applied, _ := c.Poll(apply)
	testutil.AssertTrue(t, applied)

	testutil.AssertFalse(t, c.MaybeStart(ctx, t0.Add(59*time.Second)))
	testutil.AssertTrue(t, c.MaybeStart(ctx, t0.Add(time.Minute)))
	c.Wait()
	testutil.AssertEqual(t, c.Version(), uint64(2))
}

func TestCoordinator_Defer(t *testing.T) {
	c := New(instantFetcher("{}"), "PAD", "", WithInterval(time.Minute))
	c.Defer(t0)

	testutil.AssertFalse(t, c.MaybeStart(context.Background(), t0.Add(30*time.Second)))
	testutil.AssertTrue(t, c.MaybeStart(context.Background(), t0.Add(time.Minute)))
	c.Wait()
}

func TestCoordinator_FetchErrorReturnsToIdle(t *testing.T) {
	fetchErr := errors.New("connection refused")
	f := newGatedFetcher("")
	f.err = fetchErr
	c := New(f, "PAD", "", WithInterval(time.Second))

	testutil.AssertTrue(t, c.MaybeStart(context.Background(), t0))
	f.release()
	c.Wait()

	testutil.AssertEqual(t, c.State(), Idle)
	testutil.AssertErrorIs(t, c.Err(), fetchErr)
	testutil.AssertEqual(t, c.Failures(), uint64(1))
	testutil.AssertEqual(t, c.Version(), uint64(0))

	applied, err := c.Poll(func([]byte) error {
		t.Fatal("apply called after a failed fetch")
		return nil
	})
	testutil.AssertFalse(t, applied)
	testutil.AssertNil(t, err)

	// The next due fetch starts normally
	testutil.AssertTrue(t, c.MaybeStart(context.Background(), t0.Add(time.Second)))
	c.Wait()
}

func TestCoordinator_ApplyErrorStillReturnsToIdle(t *testing.T) {
	c := New(instantFetcher("not json"), "PAD", "")
	testutil.AssertTrue(t, c.MaybeStart(context.Background(), t0))
	c.Wait()

	applyErr := errors.New("parse failed")
	applied, err := c.Poll(func([]byte) error { return applyErr })
	testutil.AssertTrue(t, applied)
	testutil.AssertErrorIs(t, err, applyErr)
	testutil.AssertEqual(t, c.State(), Idle)
}

func TestCoordinator_SuccessClearsError(t *testing.T) {
	fail := true
	var mu sync.Mutex
	c := New(FetcherFunc(func(ctx context.Context, origin, destination string) ([]byte, error) {
		mu.Lock()
		defer mu.Unlock()
		if fail {
			return nil, errors.New("timeout")
		}
		return []byte("{}"), nil
	}), "PAD", "", WithInterval(time.Second))

	c.MaybeStart(context.Background(), t0)
	c.Wait()
	testutil.AssertError(t, c.Err())

	mu.Lock()
	fail = false
	mu.Unlock()
	c.MaybeStart(context.Background(), t0.Add(time.Second))
	c.Wait()
	testutil.AssertNil(t, c.Err())
}

func TestCoordinator_WaitJoinsCancelledFetch(t *testing.T) {
	f := newGatedFetcher("{}")
	c := New(f, "PAD", "")

	ctx, cancel := context.WithCancel(context.Background())
	testutil.AssertTrue(t, c.MaybeStart(ctx, t0))
	cancel()

	done := make(chan struct{})
	go func() {
		c.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Wait did not return after cancel")
	}
	testutil.AssertEqual(t, c.State(), Idle)
	testutil.AssertErrorIs(t, c.Err(), context.Canceled)
}

func TestCoordinator_FetchNowTimeout(t *testing.T) {
	f := newGatedFetcher("{}")
	c := New(f, "PAD", "", WithTimeout(20*time.Millisecond))

	_, err := c.FetchNow(context.Background())
	testutil.AssertErrorIs(t, err, context.DeadlineExceeded)
	testutil.AssertEqual(t, c.State(), Idle)
}

func TestCoordinator_NoFetcher(t *testing.T) {
	c := New(nil, "PAD", "")

	testutil.AssertFalse(t, c.MaybeStart(context.Background(), t0))
	_, err := c.FetchNow(context.Background())
	testutil.AssertErrorIs(t, err, ErrNoFetcher)
}

func TestCoordinator_ConcurrentTicks(t *testing.T) {
	var inFlight, maxSeen atomic.Int32
	c := New(FetcherFunc(func(ctx context.Context, origin, destination string) ([]byte, error) {
		n := inFlight.Add(1)
		defer inFlight.Add(-1)
		if n > maxSeen.Load() {
			maxSeen.Store(n)
		}
		time.Sleep(50 * time.Microsecond)
		return []byte("{}"), nil
	}), "PAD", "", WithInterval(time.Nanosecond))

	ctx := context.Background()
	applied := 0
	for i := 0; i < 2000; i++ {
		c.MaybeStart(ctx, t0.Add(time.Duration(i)*time.Second))
		ok, err := c.Poll(func([]byte) error { return nil })
		testutil.AssertNil(t, err)
		if ok {
			applied++
		}
	}
	c.Wait()
	if ok, _ := c.Poll(func([]byte) error { return nil }); ok {
		applied++
	}

	testutil.AssertEqual(t, maxSeen.Load(), int32(1))
	testutil.AssertEqual(t, uint64(applied), c.Version())
}
