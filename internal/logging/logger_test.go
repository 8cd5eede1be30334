package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mobil-koeln/moko-board/internal/testutil"
)

func TestNew_Levels(t *testing.T) {
	var buf bytes.Buffer
	l := New(&buf, Options{})
	l.Debug("hidden frame detail")
	l.Info("Departures refreshed", "version", 3)

	out := buf.String()
	testutil.AssertNotContains(t, out, "hidden frame detail")
	testutil.AssertContains(t, out, "Departures refreshed")
	testutil.AssertContains(t, out, "version=3")

	buf.Reset()
	l = New(&buf, Options{Debug: true, Prefix: "board"})
	l.Debug("frame", "x", -4)
	testutil.AssertContains(t, buf.String(), "frame")
	testutil.AssertContains(t, buf.String(), "board")
}

func TestOpenFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "board.log")

	l, err := OpenFile(path, Options{Debug: true})
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, l.Path(), path)

	l.Info("Display running")
	testutil.AssertNil(t, l.Close())

	data, err := os.ReadFile(path)
	testutil.AssertNil(t, err)
	testutil.AssertContains(t, string(data), "Display running")
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	p, err := DefaultPath()
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, strings.HasSuffix(filepath.Dir(p), filepath.Join(".moko-board", "logs")))
	testutil.AssertContains(t, filepath.Base(p), "moko-board-")
}

func TestDiscard(t *testing.T) {
	Discard().Error("nobody hears this")
}
