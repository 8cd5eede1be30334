package display

import "time"

// FirstRowState selects what the right of row 1 shows
type FirstRowState int

const (
	ShowETD FirstRowState = iota
	ShowCoaches
)

func (s FirstRowState) String() string {
	if s == ShowCoaches {
		return "coaches"
	}
	return "etd"
}

// ThirdRowState selects which departure row 3 shows
type ThirdRowState int

const (
	ShowSecond ThirdRowState = iota
	ShowThird
)

func (s ThirdRowState) String() string {
	if s == ShowThird {
		return "third"
	}
	return "second"
}

// FourthRowState selects what row 4 shows next to the clock
type FourthRowState int

const (
	ShowLocation FourthRowState = iota
	ShowMessage
)

func (s FourthRowState) String() string {
	if s == ShowMessage {
		return "message"
	}
	return "location"
}

// timer tracks when a row last toggled
type timer struct {
	interval time.Duration
	last     time.Time
}

func (t *timer) due(now time.Time) bool {
	return now.Sub(t.last) >= t.interval
}

func (t *timer) reset(now time.Time) {
	t.last = now
}

// checkFirstRow toggles ETD and coaches on the timer
func (b *Board) checkFirstRow(now time.Time) {
	if !b.firstTimer.due(now) {
		return
	}
	if b.firstRow == ShowETD {
		b.firstRow = ShowCoaches
	} else {
		b.firstRow = ShowETD
	}
	b.firstTimer.reset(now)
}

// checkThirdRow toggles between the second and third departure on the timer
func (b *Board) checkThirdRow(now time.Time) {
	if !b.thirdTimer.due(now) {
		return
	}
	if b.thirdRow == ShowSecond {
		b.thirdRow = ShowThird
	} else {
		b.thirdRow = ShowSecond
	}
	b.thirdTimer.reset(now)
}

// checkFourthRow moves between location and message. Without a message
// the row stays on the location; a message is left only after it has
// scrolled through completely.
func (b *Board) checkFourthRow(now time.Time) {
	if !b.opts.ShowMessages || !b.hasMessage {
		b.fourthRow = ShowLocation
		return
	}

	if !b.fourthTimer.due(now) {
		return
	}
	if b.fourthRow == ShowMessage && !b.messageScrollComplete {
		return
	}

	if b.fourthRow == ShowLocation {
		b.fourthRow = ShowMessage
		b.message.X = b.width
		b.messageScrollComplete = false
	} else {
		b.fourthRow = ShowLocation
	}
	b.fourthTimer.reset(now)
}

// advanceScroll moves the scrolling texts one pixel
func (b *Board) advanceScroll() {
	if b.scrollCallingPoints {
		b.callingPoints.Scroll(b.width)
	} else {
		b.callingPoints.X = b.callingAt.Width() + 2
	}

	// set only until the next pixel of the following cycle
	b.messageScrollComplete = b.message.Scroll(b.width)
}
