package tui

import (
	"context"
	"image"
	"image/color"
	"sync/atomic"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mobil-koeln/moko-board/internal/departures"
	"github.com/mobil-koeln/moko-board/internal/display"
	"github.com/mobil-koeln/moko-board/internal/matrix"
	"github.com/mobil-koeln/moko-board/internal/testutil"
)

type fakeBoard struct {
	status     display.Status
	selected   []string
	unselected int
}

func (f *fakeBoard) Status() display.Status { return f.status }

func (f *fakeBoard) SelectPlatform(platform string) {
	f.selected = append(f.selected, platform)
	f.status.Platform = platform
	f.status.PlatformOnly = true
}

func (f *fakeBoard) UnselectPlatform() {
	f.unselected++
	f.status.PlatformOnly = false
}

func newFakeBoard() *fakeBoard {
	return &fakeBoard{status: display.Status{
		DataVersion:    3,
		DisplayVersion: 4,
		Selection:      departures.EmptySelection(),
		Location:       "London Paddington",
	}}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	next, cmd := m.Update(msg)
	return next.(Model), cmd
}

func TestNew(t *testing.T) {
	fb := newFakeBoard()
	m := New(fb)

	testutil.AssertEqual(t, m.focus, focusBoard)
	testutil.AssertEqual(t, m.status.DataVersion, uint64(3))
	testutil.AssertTrue(t, m.frame == nil)
	testutil.AssertTrue(t, m.Init() != nil)
}

func TestModel_WindowSize(t *testing.T) {
	m, _ := update(t, New(newFakeBoard()), tea.WindowSizeMsg{Width: 120, Height: 40})

	testutil.AssertEqual(t, m.width, 120)
	testutil.AssertEqual(t, m.height, 40)
}

func TestModel_FrameRefreshesStatus(t *testing.T) {
	fb := newFakeBoard()
	m := New(fb)
	fb.status.DataVersion = 9

	at := time.Date(2025, 3, 14, 9, 58, 0, 0, time.UTC)
	m, _ = update(t, m, frameMsg{img: image.NewRGBA(image.Rect(0, 0, 4, 4)), at: at})

	testutil.AssertEqual(t, m.frames, uint64(1))
	testutil.AssertEqual(t, m.status.DataVersion, uint64(9))
	testutil.AssertTrue(t, m.frame != nil)
	testutil.AssertEqual(t, m.frameAge(at.Add(2*time.Second)), 2*time.Second)
}

func TestModel_StatusTickReschedules(t *testing.T) {
	fb := newFakeBoard()
	m := New(fb)
	fb.status.DisplayVersion = 7

	m, cmd := update(t, m, statusTickMsg(time.Now()))

	testutil.AssertEqual(t, m.status.DisplayVersion, uint64(7))
	testutil.AssertTrue(t, cmd != nil)
}

func TestModel_SelectPlatform(t *testing.T) {
	fb := newFakeBoard()
	m := New(fb)

	m, cmd := update(t, m, runes("p"))
	testutil.AssertEqual(t, m.focus, focusPlatform)
	testutil.AssertTrue(t, cmd != nil)

	m, _ = update(t, m, runes("2"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	testutil.AssertEqual(t, m.focus, focusBoard)
	testutil.AssertSliceEqual(t, fb.selected, []string{"2"})
	testutil.AssertEqual(t, m.status.Platform, "2")
	testutil.AssertTrue(t, m.status.PlatformOnly)
	testutil.AssertEqual(t, m.platformInput.Value(), "")
}

func TestModel_EmptyPlatformUnselects(t *testing.T) {
	fb := newFakeBoard()
	m := New(fb)

	m, _ = update(t, m, runes("p"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	testutil.AssertEqual(t, fb.unselected, 1)
	testutil.AssertLen(t, fb.selected, 0)
}

func TestModel_EscCancelsPlatform(t *testing.T) {
	fb := newFakeBoard()
	m := New(fb)

	m, _ = update(t, m, runes("p"))
	m, _ = update(t, m, runes("5"))
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})

	testutil.AssertEqual(t, m.focus, focusBoard)
	testutil.AssertLen(t, fb.selected, 0)
	testutil.AssertEqual(t, fb.unselected, 0)
}

func TestModel_AllPlatforms(t *testing.T) {
	fb := newFakeBoard()
	fb.SelectPlatform("1")
	m := New(fb)

	m, _ = update(t, m, runes("a"))

	testutil.AssertEqual(t, fb.unselected, 1)
	testutil.AssertFalse(t, m.status.PlatformOnly)
}

func TestModel_Quit(t *testing.T) {
	tests := []struct {
		name string
		msg  tea.KeyMsg
	}{
		{"q", runes("q")},
		{"ctrl+c", tea.KeyMsg{Type: tea.KeyCtrlC}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, cmd := update(t, New(newFakeBoard()), tt.msg)
			testutil.AssertTrue(t, cmd != nil)
			_, ok := cmd().(tea.QuitMsg)
			testutil.AssertTrue(t, ok)
		})
	}
}

func TestModel_QInPlatformInputTypes(t *testing.T) {
	m := New(newFakeBoard())

	m, _ = update(t, m, runes("p"))
	m, _ = update(t, m, runes("q"))

	testutil.AssertEqual(t, m.focus, focusPlatform)
	testutil.AssertEqual(t, m.platformInput.Value(), "q")
}

type recordingSender struct {
	msgs chan tea.Msg
}

func (r *recordingSender) Send(msg tea.Msg) { r.msgs <- msg }

func TestFrameSink_CopiesAndThrottles(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rs := &recordingSender{msgs: make(chan tea.Msg, 4)}
	sink := FrameSink(ctx, rs, time.Hour)

	frame := image.NewRGBA(image.Rect(0, 0, 2, 2))
	frame.SetRGBA(0, 0, color.RGBA{R: 0xff, G: 0xb0, A: 0xff})

	testutil.AssertNil(t, sink.Show(frame))
	testutil.AssertNil(t, sink.Show(frame))
	frame.SetRGBA(0, 0, color.RGBA{A: 0xff})

	var got frameMsg
	select {
	case msg := <-rs.msgs:
		got = msg.(frameMsg)
	case <-time.After(time.Second):
		t.Fatal("frame was not delivered")
	}
	testutil.AssertEqual(t, got.img.RGBAAt(0, 0), color.RGBA{R: 0xff, G: 0xb0, A: 0xff})

	select {
	case <-rs.msgs:
		t.Fatal("throttled frame was delivered")
	case <-time.After(50 * time.Millisecond):
	}
}

// stuckSender never returns from Send until released
type stuckSender struct {
	calls   atomic.Int32
	release chan struct{}
}

func (s *stuckSender) Send(tea.Msg) {
	s.calls.Add(1)
	<-s.release
}

func TestFrameSink_SwapDoesNotWaitForSender(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	ss := &stuckSender{release: make(chan struct{})}
	defer close(ss.release)

	panel := matrix.NewPanel(8, 4, FrameSink(ctx, ss, time.Nanosecond))

	done := make(chan struct{})
	go func() {
		defer close(done)
		for i := 0; i < 50; i++ {
			_ = panel.Swap()
			time.Sleep(time.Millisecond)
		}
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Swap blocked on the preview")
	}

	// one frame in Send, one pending, the rest dropped
	testutil.Eventually(t, time.Second, func() bool { return ss.calls.Load() == 1 })
	testutil.AssertEqual(t, ss.calls.Load(), int32(1))
}

func TestFrameSink_StopsWithContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	rs := &recordingSender{msgs: make(chan tea.Msg, 4)}
	sink := FrameSink(ctx, rs, time.Nanosecond)
	cancel()
	time.Sleep(20 * time.Millisecond)

	testutil.AssertNil(t, sink.Show(image.NewRGBA(image.Rect(0, 0, 1, 1))))
	select {
	case <-rs.msgs:
		t.Fatal("frame delivered after cancel")
	case <-time.After(50 * time.Millisecond):
	}
}
