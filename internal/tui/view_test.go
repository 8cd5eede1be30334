package tui

import (
	"image"
	"image/color"
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobil-koeln/moko-board/internal/testutil"
)

func TestView_Loading(t *testing.T) {
	testutil.AssertEqual(t, New(newFakeBoard()).View(), "Loading...")
}

func TestView_WaitingForFrame(t *testing.T) {
	m, _ := update(t, New(newFakeBoard()), tea.WindowSizeMsg{Width: 100, Height: 40})

	view := m.View()
	testutil.AssertContains(t, view, "Waiting for the first frame")
	testutil.AssertContains(t, view, "London Paddington")
	testutil.AssertContains(t, view, "data v3")
	testutil.AssertContains(t, view, "display v4")
	testutil.AssertContains(t, view, "platform:all")
	testutil.AssertContains(t, view, "p platform")
}

func TestView_FetchFailures(t *testing.T) {
	fb := newFakeBoard()
	m, _ := update(t, New(fb), tea.WindowSizeMsg{Width: 160, Height: 40})
	testutil.AssertNotContains(t, m.View(), "fetch errors")

	fb.status.FetchFailures = 3
	m, _ = update(t, m, statusTickMsg(time.Now()))
	testutil.AssertContains(t, m.View(), "fetch errors:3")
}

func TestView_PlatformPrompt(t *testing.T) {
	m, _ := update(t, New(newFakeBoard()), tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(t, m, runes("p"))

	view := m.View()
	testutil.AssertContains(t, view, "Platform: ")
	testutil.AssertContains(t, view, "enter apply")
	testutil.AssertNotContains(t, view, "p platform")
}

func TestView_Frame(t *testing.T) {
	m, _ := update(t, New(newFakeBoard()), tea.WindowSizeMsg{Width: 100, Height: 40})
	m, _ = update(t, m, frameMsg{img: image.NewRGBA(image.Rect(0, 0, 8, 4))})

	view := m.View()
	testutil.AssertContains(t, view, strings.Repeat("▀", 8))
	testutil.AssertContains(t, view, "frames:1")
	testutil.AssertNotContains(t, view, "Waiting")
}

func TestRenderPanel_HalfBlocks(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 6, 5))
	img.SetRGBA(2, 0, color.RGBA{R: 0xff, G: 0xb0, A: 0xff})

	out := renderPanel(img, 0)
	lines := strings.Split(out, "\n")

	// Odd heights get a final row with a black lower half
	testutil.AssertLen(t, lines, 3)
	for _, line := range lines {
		testutil.AssertEqual(t, utf8.RuneCountInString(stripANSI(line)), 6)
	}
}

func TestRenderPanel_SamplesDown(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 192, 64))

	out := renderPanel(img, 80)
	lines := strings.Split(out, "\n")

	// step 3: 64 columns, 64/6 rounded up rows
	testutil.AssertLen(t, lines, 11)
	testutil.AssertEqual(t, utf8.RuneCountInString(stripANSI(lines[0])), 64)
}

func TestRenderPanel_Empty(t *testing.T) {
	testutil.AssertEqual(t, renderPanel(image.NewRGBA(image.Rect(0, 0, 0, 0)), 10), "")
}

func TestHexColor(t *testing.T) {
	testutil.AssertEqual(t, hexColor(color.RGBA{R: 0xff, G: 0xb0, A: 0xff}), "#ffb000")
}

func stripANSI(s string) string {
	var result strings.Builder
	inEscape := false

	for _, r := range s {
		if r == '\033' {
			inEscape = true
			continue
		}
		if inEscape {
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		result.WriteRune(r)
	}

	return result.String()
}
