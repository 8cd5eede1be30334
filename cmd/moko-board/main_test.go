package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image/png"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mobil-koeln/moko-board/internal/api"
	"github.com/mobil-koeln/moko-board/internal/cache"
	"github.com/mobil-koeln/moko-board/internal/config"
	"github.com/mobil-koeln/moko-board/internal/output"
	"github.com/mobil-koeln/moko-board/internal/testutil"
)

// isolate keeps caches, logs and default config lookups inside the test
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CACHE_HOME", filepath.Join(dir, "cache"))
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func execute(t *testing.T, ctx context.Context, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCmd()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(ctx)
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	testutil.AssertNil(t, os.WriteFile(path, []byte(content), 0600))
	return path
}

func feedConfig(t *testing.T, dir, url string) string {
	t.Helper()
	return writeFile(t, dir, "board.yaml", "from: PAD\napi_url: "+url+"\n")
}

func TestCLI_Version(t *testing.T) {
	isolate(t)
	stdout, _, err := execute(t, context.Background(), "--version")

	testutil.AssertNil(t, err)
	testutil.AssertContains(t, stdout, "moko-board version "+version)
}

func TestCLI_Help(t *testing.T) {
	isolate(t)
	stdout, _, err := execute(t, context.Background(), "--help")

	testutil.AssertNil(t, err)
	testutil.AssertContains(t, stdout, "platform departure board")
	for _, sub := range []string{"board", "snapshot", "config"} {
		testutil.AssertContains(t, stdout, sub)
	}
	for _, flag := range []string{"--debug", "--config", "--headless", "--frame"} {
		testutil.AssertContains(t, stdout, flag)
	}
}

func TestCLI_TooManyArgs(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, context.Background(), "board", "PAD", "RDG", "60", "extra")

	testutil.AssertError(t, err)
}

func TestBoard_FromFile(t *testing.T) {
	dir := isolate(t)
	feed := writeFile(t, dir, "feed.json", testutil.SampleBoardResponse)

	stdout, _, err := execute(t, context.Background(), "board", "--input", feed, "--color", "never")

	testutil.AssertNil(t, err)
	testutil.AssertContains(t, stdout, "London Paddington\n")
	testutil.AssertContains(t, stdout, "Oxford\n")
	testutil.AssertContains(t, stdout, "Calling at: ")
	testutil.AssertContains(t, stdout, testutil.SampleSystemMessage)
	testutil.AssertNotContains(t, stdout, "\033[")
}

func TestBoard_LimitAndNoCallingPoints(t *testing.T) {
	dir := isolate(t)
	feed := writeFile(t, dir, "feed.json", testutil.SampleBoardResponse)

	stdout, _, err := execute(t, context.Background(), "board", "-i", feed, "-n", "1", "--calling-points=false", "--color", "never")

	testutil.AssertNil(t, err)
	testutil.AssertContains(t, stdout, "Oxford\n")
	testutil.AssertNotContains(t, stdout, "Heathrow Airport T5")
	testutil.AssertNotContains(t, stdout, "Calling at:")
}

func TestBoard_Next(t *testing.T) {
	dir := isolate(t)
	feed := writeFile(t, dir, "feed.json", testutil.SampleBoardResponse)

	stdout, _, err := execute(t, context.Background(), "board", "-i", feed, "--next", "--color", "never")

	testutil.AssertNil(t, err)
	testutil.AssertContains(t, stdout, "Oxford\n")
	testutil.AssertContains(t, stdout, "Heathrow Airport T5\n")
	testutil.AssertContains(t, stdout, "Didcot Parkway\n")
	testutil.AssertNotContains(t, stdout, "  Bristol Temple Meads\n")
}

func TestBoard_JSON(t *testing.T) {
	dir := isolate(t)
	feed := writeFile(t, dir, "feed.json", testutil.SampleBoardResponse)

	stdout, _, err := execute(t, context.Background(), "board", "--input", feed, "--json")
	testutil.AssertNil(t, err)

	var view output.BoardView
	testutil.AssertNil(t, json.Unmarshal([]byte(stdout), &view))
	testutil.AssertEqual(t, view.Location, "London Paddington")
	testutil.AssertLen(t, view.Services, 4)
	testutil.AssertEqual(t, view.Services[0].Destination, "Oxford")
}

func TestBoard_PlatformFromConfig(t *testing.T) {
	dir := isolate(t)
	feed := writeFile(t, dir, "feed.json", testutil.SamplePlatformBoardResponse)
	cfg := writeFile(t, dir, "board.yaml", "platform: \"2\"\n")

	stdout, _, err := execute(t, context.Background(), "-f", cfg, "board", "--input", feed, "--json")
	testutil.AssertNil(t, err)

	var view output.BoardView
	testutil.AssertNil(t, json.Unmarshal([]byte(stdout), &view))
	testutil.AssertLen(t, view.Services, 1)
	testutil.AssertEqual(t, view.Services[0].Destination, "Victoria")
}

func TestBoard_Fetch(t *testing.T) {
	dir := isolate(t)
	server := testutil.NewFeedServer(http.StatusOK, testutil.SampleBoardResponse)
	defer server.Close()
	cfg := feedConfig(t, dir, server.URL)

	stdout, _, err := execute(t, context.Background(), "-f", cfg, "--no-cache", "--color", "never", "board", "PAD", "RDG")

	testutil.AssertNil(t, err)
	testutil.AssertContains(t, stdout, "Bristol Temple Meads")
	testutil.AssertEqual(t, server.RequestCount(), 1)
	testutil.AssertEqual(t, server.LastRequest().URL.Path, "/departures/PAD/to/RDG/10")
}

func TestBoard_RawJSON(t *testing.T) {
	dir := isolate(t)
	server := testutil.NewFeedServer(http.StatusOK, `{"locationName":"Bedwyn","trainServices":null}`)
	defer server.Close()
	cfg := feedConfig(t, dir, server.URL)

	stdout, _, err := execute(t, context.Background(), "-f", cfg, "--no-cache", "board", "--raw-json")

	testutil.AssertNil(t, err)
	testutil.AssertContains(t, stdout, "\"locationName\": \"Bedwyn\"")
}

func TestBoard_Errors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		body   string
		check  func(t *testing.T, err error)
	}{
		{"server error", http.StatusInternalServerError, "oops", func(t *testing.T, err error) {
			testutil.AssertTrue(t, errors.Is(err, api.ErrServerError))
		}},
		{"not found", http.StatusNotFound, testutil.SampleErrorResponse, func(t *testing.T, err error) {
			testutil.AssertTrue(t, errors.Is(err, api.ErrNotFound))
		}},
		{"malformed feed", http.StatusOK, testutil.SampleMalformedResponse, func(t *testing.T, err error) {
			testutil.AssertContains(t, err.Error(), "parse")
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := isolate(t)
			server := testutil.NewFeedServer(tt.status, tt.body)
			defer server.Close()
			cfg := feedConfig(t, dir, server.URL)

			_, _, err := execute(t, context.Background(), "-f", cfg, "--no-cache", "board")
			testutil.AssertError(t, err)
			tt.check(t, err)
		})
	}
}

func TestBoard_MissingStation(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, context.Background(), "board")

	testutil.AssertError(t, err)
	testutil.AssertContains(t, err.Error(), "From")
}

func TestBoard_MissingConfigFile(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, context.Background(), "-f", "nope.yaml", "board", "PAD")

	testutil.AssertError(t, err)
	testutil.AssertTrue(t, errors.Is(err, os.ErrNotExist))
}

func TestSnapshot_FromFile(t *testing.T) {
	dir := isolate(t)
	feed := writeFile(t, dir, "feed.json", testutil.SampleBoardResponse)
	out := filepath.Join(dir, "frame.png")

	stdout, _, err := execute(t, context.Background(), "snapshot", "--input", feed, "--at", "09:58:07", "--scale", "2", "-o", out)
	testutil.AssertNil(t, err)
	testutil.AssertContains(t, stdout, "Wrote "+out)

	f, err := os.Open(out)
	testutil.AssertNil(t, err)
	defer func() { _ = f.Close() }()
	img, err := png.Decode(f)
	testutil.AssertNil(t, err)

	def := config.Default()
	testutil.AssertEqual(t, img.Bounds().Dx(), def.Width()*2)
	testutil.AssertEqual(t, img.Bounds().Dy(), def.Height()*2)
}

func TestSnapshot_InvalidFlags(t *testing.T) {
	dir := isolate(t)
	feed := writeFile(t, dir, "feed.json", testutil.SampleBoardResponse)

	_, _, err := execute(t, context.Background(), "snapshot", "--input", feed, "--at", "25:00")
	testutil.AssertError(t, err)
	testutil.AssertContains(t, err.Error(), "--at")

	_, _, err = execute(t, context.Background(), "snapshot", "--input", feed, "--scale", "0")
	testutil.AssertError(t, err)
	testutil.AssertContains(t, err.Error(), "--scale")
}

func TestConfigShow(t *testing.T) {
	dir := isolate(t)
	legacy := writeFile(t, dir, "config.txt", "# board\nfrom=EUS\nShowMessages=no\n")

	stdout, _, err := execute(t, context.Background(), "-f", legacy, "config", "show", "EUS", "MKC")
	testutil.AssertNil(t, err)
	testutil.AssertContains(t, stdout, "from: EUS\n")
	testutil.AssertContains(t, stdout, "to: MKC\n")
	testutil.AssertContains(t, stdout, "show_messages: false\n")

	stdout, _, err = execute(t, context.Background(), "-f", legacy, "config", "show", "--json")
	testutil.AssertNil(t, err)
	var cfg config.Config
	testutil.AssertNil(t, json.Unmarshal([]byte(stdout), &cfg))
	testutil.AssertEqual(t, cfg.From, "EUS")
}

func TestConfigShow_DefaultLegacyFile(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, "config.txt", "from=KGX\n")

	stdout, _, err := execute(t, context.Background(), "config", "show")

	testutil.AssertNil(t, err)
	testutil.AssertContains(t, stdout, "from: KGX\n")
}

func TestConfigValidate(t *testing.T) {
	dir := isolate(t)
	good := writeFile(t, dir, "good.yaml", "from: PAD\n")
	bad := writeFile(t, dir, "bad.yaml", "from: PAD\nrefresh_interval_seconds: 0\n")

	stdout, _, err := execute(t, context.Background(), "-f", good, "config", "validate")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, stdout, good+": ok\n")

	_, _, err = execute(t, context.Background(), "-f", bad, "config", "validate")
	testutil.AssertError(t, err)
	testutil.AssertContains(t, err.Error(), "invalid configuration")
}

func TestConfigInit(t *testing.T) {
	dir := isolate(t)

	stdout, _, err := execute(t, context.Background(), "config", "init")
	testutil.AssertNil(t, err)
	testutil.AssertContains(t, stdout, "Wrote moko-board.yaml")

	cfg, err := config.Read(filepath.Join(dir, "moko-board.yaml"))
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, cfg.RefreshIntervalSeconds, 60)

	_, _, err = execute(t, context.Background(), "config", "init")
	testutil.AssertError(t, err)
	testutil.AssertContains(t, err.Error(), "already exists")

	_, _, err = execute(t, context.Background(), "config", "init", "--force")
	testutil.AssertNil(t, err)

	_, _, err = execute(t, context.Background(), "config", "init", "config.txt")
	testutil.AssertError(t, err)
}

func TestRunDisplay_Headless(t *testing.T) {
	dir := isolate(t)
	server := testutil.NewFeedServer(http.StatusOK, testutil.SampleBoardResponse)
	defer server.Close()
	cfg := feedConfig(t, dir, server.URL)
	frame := filepath.Join(dir, "live.png")

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	var stderr string
	go func() {
		var err error
		_, stderr, err = execute(t, ctx, "-f", cfg, "--headless", "--frame", frame, "--frame-interval", "1ms")
		done <- err
	}()

	testutil.Eventually(t, 5*time.Second, func() bool {
		_, err := os.Stat(frame)
		return err == nil
	})
	cancel()

	select {
	case err := <-done:
		testutil.AssertNil(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("board did not stop")
	}
	testutil.AssertContains(t, stderr, "Board starting")
	testutil.AssertEqual(t, server.RequestCount(), 1)

	// The accepted feed is kept for the next start
	entries, err := os.ReadDir(filepath.Join(dir, "cache", "moko-board", "feeds"))
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, len(entries) > 0)
}

func TestRunDisplay_InvalidConfig(t *testing.T) {
	isolate(t)
	_, _, err := execute(t, context.Background(), "--headless")

	testutil.AssertError(t, err)
}

func TestIgnoreCanceled(t *testing.T) {
	testutil.AssertNil(t, ignoreCanceled(context.Canceled))
	testutil.AssertNil(t, ignoreCanceled(nil))
	testutil.AssertErrorIs(t, ignoreCanceled(context.DeadlineExceeded), context.DeadlineExceeded)
}

func TestResolveConfigPath(t *testing.T) {
	dir := isolate(t)

	testutil.AssertEqual(t, resolveConfigPath(&globalFlags{}), "")
	testutil.AssertEqual(t, resolveConfigPath(&globalFlags{configPath: "x.yaml"}), "x.yaml")

	writeFile(t, dir, "config.txt", "from=PAD\n")
	testutil.AssertEqual(t, resolveConfigPath(&globalFlags{}), "config.txt")

	writeFile(t, dir, "moko-board.yaml", "from: PAD\n")
	testutil.AssertEqual(t, resolveConfigPath(&globalFlags{}), "moko-board.yaml")
}

func TestNewLogger_File(t *testing.T) {
	dir := isolate(t)
	path := filepath.Join(dir, "logs", "board.log")

	logger, closeLog, err := newLogger(&globalFlags{logFile: path}, os.Stderr, false)
	testutil.AssertNil(t, err)
	logger.Info("hello", "k", "v")
	closeLog()

	data, err := os.ReadFile(path)
	testutil.AssertNil(t, err)
	testutil.AssertTrue(t, strings.Contains(string(data), "hello"))
}

func TestCache_PathAndClear(t *testing.T) {
	dir := isolate(t)
	base := filepath.Join(dir, "cache", "moko-board")

	feeds, err := cache.NewFileCache(filepath.Join(base, feedStoreDir), time.Hour)
	testutil.AssertNil(t, err)
	testutil.AssertNil(t, feeds.Set("feed:PAD", []byte(testutil.SampleBoardResponse)))
	responses, err := cache.NewFileCache(base, time.Hour)
	testutil.AssertNil(t, err)
	testutil.AssertNil(t, responses.Set("https://feed/departures/PAD/10", []byte("{}")))

	stdout, _, err := execute(t, context.Background(), "cache", "path")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, stdout, base+"\n"+filepath.Join(base, feedStoreDir)+"\n")

	stdout, _, err = execute(t, context.Background(), "cache", "clear")
	testutil.AssertNil(t, err)
	testutil.AssertEqual(t, strings.Count(stdout, "Cleared "), 2)

	_, _, ok := feeds.GetStale("feed:PAD")
	testutil.AssertFalse(t, ok)
	_, _, ok = responses.GetStale("https://feed/departures/PAD/10")
	testutil.AssertFalse(t, ok)
}
