package tui

import (
	"image"
	"time"
)

// frameMsg carries a private copy of the last frame the panel swapped in
type frameMsg struct {
	img *image.RGBA
	at  time.Time
}

// statusTickMsg refreshes the status line while no frames arrive
type statusTickMsg time.Time
