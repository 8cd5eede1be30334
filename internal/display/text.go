package display

import "github.com/mobil-koeln/moko-board/internal/matrix"

// Text is one renderable string with its position and measured width.
// The width is recomputed whenever the text changes.
type Text struct {
	X int
	Y int

	text    string
	width   int
	version uint64
}

// Set replaces the text and measures it with fc
func (t *Text) Set(s string, fc *matrix.FontCache, version uint64) {
	t.text = s
	t.width = fc.TextWidth(s)
	t.version = version
}

// String returns the text
func (t *Text) String() string { return t.text }

// Width returns the pixel width of the text
func (t *Text) Width() int { return t.width }

// Version returns the display data version the text was set under
func (t *Text) Version() uint64 { return t.version }

// Scroll moves the text one pixel left. Once it has passed the left edge
// by its full width it restarts at screenWidth, and Scroll reports true.
func (t *Text) Scroll(screenWidth int) bool {
	t.X--
	if t.X <= -t.width {
		t.X = screenWidth
		return true
	}
	return false
}

// RightAlign places the text flush with the right edge
func (t *Text) RightAlign(screenWidth int) {
	t.X = screenWidth - t.width
}

// Center places the text in the middle of the screen
func (t *Text) Center(screenWidth int) {
	t.X = (screenWidth - t.width) / 2
}
