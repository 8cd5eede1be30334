package tui

import (
	"fmt"
	"image"
	"image/color"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// staleAfter marks the preview as stalled when no frame arrived for this long
const staleAfter = 3 * time.Second

// View renders the entire TUI.
func (m Model) View() string {
	if m.width == 0 || m.height == 0 {
		return "Loading..."
	}

	header := m.renderHeader()
	statusBar := m.renderStatusBar()

	var panel string
	if m.frame == nil {
		panel = styleLoading.Render("Waiting for the first frame...")
	} else {
		panel = renderPanel(m.frame, m.width-2)
	}

	border := stylePanelFocused
	if m.focus == focusPlatform {
		border = stylePanelNormal
	}
	panel = border.Render(panel)

	sections := []string{header, panel}
	if m.focus == focusPlatform {
		sections = append(sections, "Platform: "+m.platformInput.View())
	}
	sections = append(sections, statusBar)

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m Model) renderHeader() string {
	title := styleTitle.Render("moko-board")
	if m.status.Location == "" {
		return title
	}
	return title + "  " + styleLocation.Render(m.status.Location)
}

// renderStatusBar shows the row states, versions and keyboard hints.
func (m Model) renderStatusBar() string {
	s := m.status
	platform := "all"
	if s.PlatformOnly {
		platform = s.Platform
	}

	line := fmt.Sprintf("row1:%s row3:%s row4:%s  data v%d  display v%d  platform:%s  frames:%d",
		s.FirstRow, s.ThirdRow, s.FourthRow, s.DataVersion, s.DisplayVersion, platform, m.frames)
	if s.FetchFailures > 0 {
		line += "  " + styleError.Render(fmt.Sprintf("fetch errors:%d", s.FetchFailures))
	}
	if age := m.frameAge(time.Now()); age > staleAfter {
		line += "  " + styleError.Render(fmt.Sprintf("stalled %s", age.Truncate(time.Second)))
	}

	var hints string
	switch m.focus {
	case focusPlatform:
		hints = m.help.View(platformKeys{keys})
	default:
		hints = m.help.View(boardKeys{keys})
	}

	return styleStatusBar.Width(m.width).Render(line) + "\n" + hints
}

// renderPanel draws img with one half block per vertical pixel pair.
// Panels wider than maxCols are sampled down by a whole factor.
func renderPanel(img *image.RGBA, maxCols int) string {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	if w == 0 || h == 0 {
		return ""
	}

	step := 1
	if maxCols > 0 {
		for w/step > maxCols {
			step++
		}
	}

	var sb strings.Builder
	for y := 0; y < h; y += 2 * step {
		if y > 0 {
			sb.WriteByte('\n')
		}
		renderPanelRow(&sb, img, y, step)
	}
	return sb.String()
}

// renderPanelRow writes one terminal row, styling runs of equal cells once
func renderPanelRow(sb *strings.Builder, img *image.RGBA, y, step int) {
	b := img.Bounds()
	var run int
	var runTop, runBottom color.RGBA

	flush := func() {
		if run == 0 {
			return
		}
		sb.WriteString(pixelStyle(runTop, runBottom).Render(strings.Repeat("▀", run)))
		run = 0
	}

	for x := 0; x < b.Dx(); x += step {
		top := img.RGBAAt(b.Min.X+x, b.Min.Y+y)
		bottom := color.RGBA{A: 0xff}
		if y+step < b.Dy() {
			bottom = img.RGBAAt(b.Min.X+x, b.Min.Y+y+step)
		}
		if run > 0 && (top != runTop || bottom != runBottom) {
			flush()
		}
		runTop, runBottom = top, bottom
		run++
	}
	flush()
}
