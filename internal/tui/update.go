package tui

import (
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// Init starts the status ticker.
func (m Model) Init() tea.Cmd {
	return statusTick()
}

// Update handles all messages and key events.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case frameMsg:
		m.frame = msg.img
		m.frames++
		m.lastFrame = msg.at
		m.status = m.board.Status()
		return m, nil

	case statusTickMsg:
		m.status = m.board.Status()
		return m, statusTick()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	if m.focus == focusPlatform {
		var cmd tea.Cmd
		m.platformInput, cmd = m.platformInput.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.ForceQuit) {
		return m, tea.Quit
	}

	if m.focus == focusPlatform {
		return m.handlePlatformKeys(msg)
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, keys.Platform):
		m.focus = focusPlatform
		m.platformInput.SetValue(m.status.Platform)
		return m, m.platformInput.Focus()
	case key.Matches(msg, keys.AllPlatforms):
		m.board.UnselectPlatform()
		m.status = m.board.Status()
	}
	return m, nil
}

func (m Model) handlePlatformKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, keys.Apply):
		platform := strings.TrimSpace(m.platformInput.Value())
		if platform == "" {
			m.board.UnselectPlatform()
		} else {
			m.board.SelectPlatform(platform)
		}
		m.status = m.board.Status()
		return m.closePlatformInput(), nil

	case key.Matches(msg, keys.Cancel):
		return m.closePlatformInput(), nil
	}

	var cmd tea.Cmd
	m.platformInput, cmd = m.platformInput.Update(msg)
	return m, cmd
}

func (m Model) closePlatformInput() Model {
	m.platformInput.Blur()
	m.platformInput.SetValue("")
	m.focus = focusBoard
	return m
}

// frameAge is how long ago the shown frame was drawn
func (m Model) frameAge(now time.Time) time.Duration {
	if m.lastFrame.IsZero() {
		return 0
	}
	return now.Sub(m.lastFrame)
}
