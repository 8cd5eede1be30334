package tui

import (
	"fmt"
	"image/color"

	"github.com/charmbracelet/lipgloss"
)

var (
	colorAmber = lipgloss.Color("214")
	colorRed   = lipgloss.Color("1")
	colorGray  = lipgloss.Color("8")
	colorWhite = lipgloss.Color("15")
)

var (
	styleTitle    = lipgloss.NewStyle().Foreground(colorAmber).Bold(true)
	styleLocation = lipgloss.NewStyle().Foreground(colorWhite).Bold(true)
	styleError    = lipgloss.NewStyle().Foreground(colorRed)
	styleLoading  = lipgloss.NewStyle().Foreground(colorAmber).Italic(true)
)

// Frame border, amber while the platform prompt is closed
var (
	stylePanelFocused = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorAmber)

	stylePanelNormal = lipgloss.NewStyle().
				Border(lipgloss.RoundedBorder()).
				BorderForeground(colorGray)
)

// Status bar at the bottom
var styleStatusBar = lipgloss.NewStyle().
	Foreground(colorGray).
	Background(lipgloss.Color("0"))

// pixelStyle draws the upper pixel as foreground and the lower as background
// of a half block
func pixelStyle(top, bottom color.RGBA) lipgloss.Style {
	return lipgloss.NewStyle().
		Foreground(lipgloss.Color(hexColor(top))).
		Background(lipgloss.Color(hexColor(bottom)))
}

func hexColor(c color.RGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
