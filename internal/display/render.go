package display

import (
	"time"

	"github.com/mobil-koeln/moko-board/internal/departures"
	"github.com/mobil-koeln/moko-board/internal/matrix"
)

// Render draws one frame and swaps it onto the display. The canvas does
// not blend, so every overlapping text gets a black rectangle behind it.
func (b *Board) Render(now time.Time) error {
	b.surface.Clear()

	b.draw(&b.firstDeparture, 0)
	if b.selection.First() != departures.NoService {
		if b.firstRow == ShowETD {
			b.drawBacked(&b.firstETD)
		} else {
			b.drawBacked(&b.firstCoaches)
		}
	}

	b.renderCallingPoints()

	if b.thirdRow == ShowSecond {
		b.draw(&b.second, 0)
		b.drawBacked(&b.secondETD)
	} else {
		b.draw(&b.third, 0)
		b.drawBacked(&b.thirdETD)
	}

	if b.fourthRow == ShowLocation {
		b.draw(&b.location, b.location.X)
	} else {
		b.draw(&b.message, b.message.X)
	}

	b.updateClock(now)
	b.drawBacked(&b.clock)

	return b.surface.Swap()
}

func (b *Board) renderCallingPoints() {
	b.draw(&b.callingPoints, b.callingPoints.X)
	b.clearRow(0, b.callingAt.Width(), b.callingAt.Y)
	b.draw(&b.callingAt, 0)
}

func (b *Board) updateClock(now time.Time) {
	b.clock.Set(now.Format(clockFormat), b.fonts, b.displayVersion.Load())
	b.clock.RightAlign(b.width)
}

func (b *Board) draw(t *Text, x int) {
	if t.String() == "" {
		return
	}
	b.surface.DrawText(b.fonts.Font(), x, t.Y, b.opts.Color, t.String())
}

// drawBacked clears from just left of t to the right edge, then draws t
func (b *Board) drawBacked(t *Text) {
	if t.String() == "" {
		return
	}
	b.clearRow(t.X-backingGap, b.width, t.Y)
	b.draw(t, t.X)
}

// clearRow blanks [x0,x1) over the glyph cell of the row with baseline y
func (b *Board) clearRow(x0, x1, y int) {
	top := y - b.fonts.Baseline()
	matrix.FillRect(b.surface, x0, top, x1, top+b.fonts.Height(), matrix.Black)
}
