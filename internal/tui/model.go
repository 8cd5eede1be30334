// Package tui previews the LED panel in a terminal. Each pixel pair is
// drawn as one half block, so a 64 row panel takes 32 terminal rows.
package tui

import (
	"image"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/textinput"

	"github.com/mobil-koeln/moko-board/internal/display"
)

type focusPanel int

const (
	focusBoard focusPanel = iota
	focusPlatform
)

// Controller is the part of the display board the preview talks to.
// All methods must be safe to call from the UI goroutine.
type Controller interface {
	Status() display.Status
	SelectPlatform(platform string)
	UnselectPlatform()
}

// Model is the root Bubble Tea model for the preview.
type Model struct {
	board  Controller
	width  int
	height int

	focus         focusPanel
	platformInput textinput.Model
	help          help.Model

	frame     *image.RGBA
	frames    uint64
	lastFrame time.Time
	status    display.Status
}

// New creates a new preview model.
func New(board Controller) Model {
	ti := textinput.New()
	ti.Placeholder = "platform, empty for all"
	ti.CharLimit = 8
	ti.Width = 24

	return Model{
		board:         board,
		focus:         focusBoard,
		platformInput: ti,
		help:          help.New(),
		status:        board.Status(),
	}
}
