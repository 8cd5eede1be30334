package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"

	"github.com/mobil-koeln/moko-board/internal/models"
)

// ColorMode represents the color output mode
type ColorMode int

const (
	// ColorAuto enables colors if output is a TTY
	ColorAuto ColorMode = iota
	// ColorAlways forces colors on
	ColorAlways
	// ColorNever disables colors
	ColorNever
)

// String returns the flag spelling of the mode
func (m ColorMode) String() string {
	switch m {
	case ColorAlways:
		return "always"
	case ColorNever:
		return "never"
	default:
		return "auto"
	}
}

type sprintf func(format string, a ...interface{}) string

// Colors holds the color functions for the parts of a board
type Colors struct {
	Time     sprintf
	OnTime   sprintf
	Delayed  sprintf
	Canceled sprintf
	Platform sprintf
	Dest     sprintf
	Calling  sprintf
	Operator sprintf
	Header   sprintf
	Message  sprintf
	Muted    sprintf
}

// NewColors creates a new Colors instance based on the color mode
func NewColors(mode ColorMode) *Colors {
	return newColors(mode, os.Stdout)
}

// NewColorsFor is NewColors with the TTY check made against w
func NewColorsFor(mode ColorMode, w io.Writer) *Colors {
	return newColors(mode, w)
}

func newColors(mode ColorMode, w io.Writer) *Colors {
	useColors := false
	switch mode {
	case ColorAlways:
		useColors = true
		color.NoColor = false
	case ColorNever:
		useColors = false
	case ColorAuto:
		useColors = IsTerminal(w)
	}

	if !useColors {
		noColor := func(format string, a ...interface{}) string {
			if len(a) == 0 {
				return format
			}
			return fmt.Sprintf(format, a...)
		}
		return &Colors{
			Time:     noColor,
			OnTime:   noColor,
			Delayed:  noColor,
			Canceled: noColor,
			Platform: noColor,
			Dest:     noColor,
			Calling:  noColor,
			Operator: noColor,
			Header:   noColor,
			Message:  noColor,
			Muted:    noColor,
		}
	}

	return &Colors{
		Time:     color.New(color.FgYellow, color.Bold).SprintfFunc(),
		OnTime:   color.New(color.FgGreen).SprintfFunc(),
		Delayed:  color.New(color.FgYellow).SprintfFunc(),
		Canceled: color.New(color.FgRed, color.Bold).SprintfFunc(),
		Platform: color.New(color.FgMagenta).SprintfFunc(),
		Dest:     color.New(color.FgWhite, color.Bold).SprintfFunc(),
		Calling:  color.New(color.FgHiBlack).SprintfFunc(),
		Operator: color.New(color.FgCyan).SprintfFunc(),
		Header:   color.New(color.FgYellow, color.Bold, color.Underline).SprintfFunc(),
		Message:  color.New(color.FgHiYellow).SprintfFunc(),
		Muted:    color.New(color.FgHiBlack).SprintfFunc(),
	}
}

// FormatETD colors an estimated time by what it says about the service,
// padded to the width of "Cancelled" so columns line up.
func (c *Colors) FormatETD(etd string) string {
	const width = len(models.StatusCancelled)
	padded := etd
	for len(padded) < width {
		padded += " "
	}
	switch {
	case models.IsOnTime(etd):
		return c.OnTime("%s", padded)
	case models.IsCancelledStatus(etd):
		return c.Canceled("%s", padded)
	case etd == "":
		return padded
	default:
		return c.Delayed("%s", padded)
	}
}

// ParseColorMode parses a color mode string
func ParseColorMode(s string) ColorMode {
	switch s {
	case "always":
		return ColorAlways
	case "never":
		return ColorNever
	default:
		return ColorAuto
	}
}

// IsTerminal reports whether w is a terminal, including Cygwin ptys.
// Writers without a file descriptor are never terminals.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
