package display

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"
)

// Refresher fetches feed text in the background. MaybeStart begins a
// fetch when one is due and none is in flight; Poll hands a finished
// result to apply without blocking; Wait joins any outstanding fetch.
type Refresher interface {
	MaybeStart(ctx context.Context, now time.Time) bool
	Poll(apply func(raw []byte) error) (bool, error)
	Wait()
}

// failureCounter is implemented by refreshers that count failed fetches
type failureCounter interface {
	Failures() uint64
}

// Tick runs one frame: it picks up fetched data, advances the row
// states, renders, then moves the scrolling texts.
func (b *Board) Tick(ctx context.Context, now time.Time, r Refresher) error {
	if r != nil {
		r.MaybeStart(ctx, now)
		if applied, err := r.Poll(b.ApplyFeed); err != nil {
			b.logger.Warn("Keeping previous departures", "err", err)
		} else if applied {
			b.logger.Info("Departures refreshed", "version", b.engine.Version())
		}
		if fc, ok := r.(failureCounter); ok {
			b.fetchFailures = fc.Failures()
		}
	}

	if b.platformDirty.Swap(false) {
		b.UpdateContent()
	}

	b.checkFirstRow(now)
	b.checkThirdRow(now)
	b.checkFourthRow(now)

	if err := b.Render(now); err != nil {
		return fmt.Errorf("render: %w", err)
	}
	b.advanceScroll()
	b.publishStatus()
	return nil
}

func (b *Board) safeTick(ctx context.Context, now time.Time, r Refresher) (err error) {
	defer func() {
		if p := recover(); p != nil {
			b.logger.Debug("Frame panicked", "stack", string(debug.Stack()))
			err = fmt.Errorf("frame panic: %v", p)
		}
	}()
	return b.Tick(ctx, now, r)
}

// Run drives the board until ctx is done or Stop is called. A failing
// frame is logged and the loop pauses for the refresh interval before
// trying again. Any fetch still in flight is joined before Run returns.
func (b *Board) Run(ctx context.Context, r Refresher) error {
	b.running.Store(true)
	if r != nil {
		defer r.Wait()
	}

	ticker := time.NewTicker(b.opts.FrameInterval)
	defer ticker.Stop()

	b.logger.Info("Display running", "frame", b.opts.FrameInterval, "refresh", b.opts.RefreshInterval)
	for b.running.Load() {
		select {
		case <-ctx.Done():
			b.running.Store(false)
			return ctx.Err()
		case <-ticker.C:
		}

		if err := b.safeTick(ctx, b.now(), r); err != nil {
			b.logger.Error("Display loop error", "err", err, "retryIn", b.opts.RefreshInterval)
			if !sleep(ctx, b.opts.RefreshInterval) {
				b.running.Store(false)
				return ctx.Err()
			}
		}
	}
	b.logger.Info("Display stopped")
	return nil
}

// Stop makes Run return at the next frame boundary
func (b *Board) Stop() {
	b.running.Store(false)
}

func sleep(ctx context.Context, d time.Duration) bool {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
