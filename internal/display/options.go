package display

import (
	"image/color"
	"time"

	"github.com/mobil-koeln/moko-board/internal/matrix"
)

// Options holds the board's layout and timing
type Options struct {
	ShowPlatforms bool
	ShowLocation  bool
	ShowMessages  bool

	ETDCoachInterval time.Duration
	ThirdRowInterval time.Duration
	MessageInterval  time.Duration
	RefreshInterval  time.Duration
	FrameInterval    time.Duration

	// Baseline positions of the four rows
	FirstLineY  int
	SecondLineY int
	ThirdLineY  int
	FourthLineY int

	Color color.Color
}

// DefaultOptions returns the layout for a 64 pixel high panel and the
// builtin font
func DefaultOptions() Options {
	return Options{
		ShowPlatforms:    true,
		ShowLocation:     true,
		ShowMessages:     true,
		ETDCoachInterval: 10 * time.Second,
		ThirdRowInterval: 10 * time.Second,
		MessageInterval:  20 * time.Second,
		RefreshInterval:  60 * time.Second,
		FrameInterval:    15 * time.Millisecond,
		FirstLineY:       14,
		SecondLineY:      30,
		ThirdLineY:       46,
		FourthLineY:      62,
		Color:            matrix.Amber,
	}
}

// withDefaults fills unset intervals and color from DefaultOptions
func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.ETDCoachInterval <= 0 {
		o.ETDCoachInterval = d.ETDCoachInterval
	}
	if o.ThirdRowInterval <= 0 {
		o.ThirdRowInterval = d.ThirdRowInterval
	}
	if o.MessageInterval <= 0 {
		o.MessageInterval = d.MessageInterval
	}
	if o.RefreshInterval <= 0 {
		o.RefreshInterval = d.RefreshInterval
	}
	if o.FrameInterval <= 0 {
		o.FrameInterval = d.FrameInterval
	}
	if o.Color == nil {
		o.Color = d.Color
	}
	return o
}
