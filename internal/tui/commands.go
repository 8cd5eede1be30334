package tui

import (
	"context"
	"image"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobil-koeln/moko-board/internal/matrix"
)

const (
	// DefaultFrameInterval caps how often frames reach the terminal
	DefaultFrameInterval = 100 * time.Millisecond
	statusInterval       = time.Second
)

// Sender delivers messages into a running program. *tea.Program is one.
type Sender interface {
	Send(msg tea.Msg)
}

// FrameSink returns a sink that forwards at most one frame per interval
// to s. Show never waits for s: frames go through a single pending slot
// and are dropped while it is full. Delivery stops when ctx is done.
func FrameSink(ctx context.Context, s Sender, interval time.Duration) matrix.Sink {
	if interval <= 0 {
		interval = DefaultFrameInterval
	}
	pending := make(chan frameMsg, 1)
	go func() {
		for {
			select {
			case <-ctx.Done():
				return
			case msg := <-pending:
				s.Send(msg)
			}
		}
	}()

	return matrix.Throttle(matrix.SinkFunc(func(frame *image.RGBA) error {
		cp := image.NewRGBA(frame.Bounds())
		copy(cp.Pix, frame.Pix)
		select {
		case pending <- frameMsg{img: cp, at: time.Now()}:
		default:
		}
		return nil
	}), interval)
}

// statusTick returns a tea.Cmd that sends a tick after the status interval.
func statusTick() tea.Cmd {
	return tea.Tick(statusInterval, func(t time.Time) tea.Msg {
		return statusTickMsg(t)
	})
}
