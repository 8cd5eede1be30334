package main

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync/atomic"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mobil-koeln/moko-board/internal/cache"
	"github.com/mobil-koeln/moko-board/internal/config"
	"github.com/mobil-koeln/moko-board/internal/departures"
	"github.com/mobil-koeln/moko-board/internal/display"
	"github.com/mobil-koeln/moko-board/internal/matrix"
	"github.com/mobil-koeln/moko-board/internal/output"
	"github.com/mobil-koeln/moko-board/internal/refresh"
	"github.com/mobil-koeln/moko-board/internal/tui"
)

// displayFlags configure where the running board's frames go
type displayFlags struct {
	headless      bool
	framePath     string
	frameScale    int
	frameInterval time.Duration
}

func (d *displayFlags) register(cmd *cobra.Command) {
	f := cmd.Flags()
	f.BoolVar(&d.headless, "headless", false, "Do not open the terminal preview")
	f.StringVar(&d.framePath, "frame", "", "Keep writing the current frame to this PNG file")
	f.IntVar(&d.frameScale, "frame-scale", 4, "Pixel size of --frame output")
	f.DurationVar(&d.frameInterval, "frame-interval", time.Second, "Minimum time between --frame writes")
}

// runDisplay is the board itself: an initial fetch, then the frame loop
// with background refreshes until interrupted
func runDisplay(cmd *cobra.Command, g *globalFlags, d *displayFlags, args []string) error {
	cfg, err := loadConfig(g, args)
	if err != nil {
		return err
	}

	// The preview owns the terminal, so logs go to a file
	preview := !d.headless && output.IsTerminal(cmd.OutOrStdout())
	logger, closeLog, err := newLogger(g, cmd.ErrOrStderr(), preview)
	if err != nil {
		return err
	}
	defer closeLog()

	ctx, stop := output.SignalContext(cmd.Context())
	defer stop()

	client, err := newClient(cfg, logger, false)
	if err != nil {
		return err
	}
	engine := newEngine(cfg, logger)
	coord := refresh.New(client, cfg.From, cfg.To,
		refresh.WithInterval(cfg.RefreshInterval()),
		refresh.WithLogger(logger))

	feeds := lastGoodFeeds{store: openFeedStore(logger), key: "feed:" + client.DeparturesURL(cfg.From, cfg.To), logger: logger}
	initialFeed(ctx, coord, engine, feeds, logger)

	font, err := matrix.LoadFont(cfg.FontPath, cfg.FontSize)
	if err != nil {
		return err
	}

	sender := &programSender{}
	var previewSink, frameSink matrix.Sink
	if preview {
		previewSink = tui.FrameSink(ctx, sender, tui.DefaultFrameInterval)
	}
	if d.framePath != "" {
		frameSink = matrix.Throttle(&matrix.PNGSink{Path: d.framePath, Scale: d.frameScale}, d.frameInterval)
	}
	panel := matrix.NewPanel(cfg.Width(), cfg.Height(), matrix.Tee(previewSink, frameSink))

	board, err := display.New(engine, panel, font, cfg.DisplayOptions(), display.WithLogger(logger))
	if err != nil {
		return err
	}

	logger.Info("Board starting",
		"from", cfg.From,
		"to", cfg.To,
		"feed", client.BaseURL(),
		"panel", fmt.Sprintf("%dx%d", cfg.Width(), cfg.Height()),
		"font", font.Name(),
		"refresh", cfg.RefreshInterval())
	defer func() { logger.Info("Board stopped", "frames", panel.Frames()) }()

	refresher := &recordingRefresher{Coordinator: coord, feeds: feeds}
	if !preview {
		return ignoreCanceled(board.Run(ctx, refresher))
	}
	return runWithPreview(ctx, board, refresher, sender)
}

// runWithPreview runs the board loop next to the terminal preview and
// stops both when either ends
func runWithPreview(ctx context.Context, board *display.Board, r display.Refresher, sender *programSender) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	p := tea.NewProgram(tui.New(board), tea.WithAltScreen(), tea.WithContext(ctx))
	sender.set(p)

	runErr := make(chan error, 1)
	go func() {
		runErr <- board.Run(ctx, r)
	}()

	_, progErr := p.Run()
	cancel()
	err := ignoreCanceled(<-runErr)

	if progErr != nil && !errors.Is(progErr, tea.ErrProgramKilled) {
		return progErr
	}
	return err
}

// initialFeed fetches once before the display starts. If that fails the
// last good feed is shown and the coordinator retries on its first tick.
func initialFeed(ctx context.Context, coord *refresh.Coordinator, engine *departures.Engine, feeds lastGoodFeeds, logger *log.Logger) {
	raw, err := coord.FetchNow(ctx)
	fresh := err == nil
	if err != nil {
		logger.Error("Initial fetch failed", "err", err)
		stale, at, ok := feeds.load()
		if !ok {
			return
		}
		logger.Warn("Showing last good departures", "fetched_at", at.Format(time.RFC3339))
		raw = stale
	} else {
		coord.Defer(time.Now())
	}

	if err := engine.Ingest(raw); err != nil {
		logger.Error("Initial feed rejected", "err", err)
		return
	}
	if fresh {
		feeds.save(raw)
	}
}

// lastGoodFeeds keeps the most recent feed the engine accepted
type lastGoodFeeds struct {
	store  *cache.FileCache
	key    string
	logger *log.Logger
}

// feedRetention is how long a last good feed stays usable after it expires
const feedRetention = 7 * 24 * time.Hour

func openFeedStore(logger *log.Logger) *cache.FileCache {
	fc, err := cache.NewFileCache(filepath.Join(cache.DefaultCacheDir(), feedStoreDir), time.Hour)
	if err != nil {
		logger.Warn("Last good feed will not be kept", "err", err)
		return nil
	}
	if err := fc.Cleanup(feedRetention); err != nil {
		logger.Debug("Removing old feeds failed", "err", err)
	}
	return fc
}

func (f lastGoodFeeds) load() ([]byte, time.Time, bool) {
	if f.store == nil {
		return nil, time.Time{}, false
	}
	return f.store.GetStale(f.key)
}

func (f lastGoodFeeds) save(raw []byte) {
	if f.store == nil {
		return
	}
	if err := f.store.Set(f.key, raw); err != nil {
		f.logger.Debug("Could not keep feed", "err", err)
	}
}

// recordingRefresher saves every feed the board applies
type recordingRefresher struct {
	*refresh.Coordinator
	feeds lastGoodFeeds
}

func (r *recordingRefresher) Poll(apply func(raw []byte) error) (bool, error) {
	return r.Coordinator.Poll(func(raw []byte) error {
		if err := apply(raw); err != nil {
			return err
		}
		r.feeds.save(raw)
		return nil
	})
}

// programSender forwards to the preview program once it exists
type programSender struct {
	p atomic.Pointer[tea.Program]
}

func (s *programSender) set(p *tea.Program) {
	s.p.Store(p)
}

func (s *programSender) Send(msg tea.Msg) {
	if p := s.p.Load(); p != nil {
		p.Send(msg)
	}
}

func ignoreCanceled(err error) error {
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// configSummary is logged by commands that do not log anything else
func configSummary(cfg config.Config) []interface{} {
	return []interface{}{"from", cfg.From, "to", cfg.To, "platform", cfg.Platform}
}
