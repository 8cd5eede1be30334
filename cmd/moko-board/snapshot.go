package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/mobil-koeln/moko-board/internal/api"
	"github.com/mobil-koeln/moko-board/internal/config"
	"github.com/mobil-koeln/moko-board/internal/display"
	"github.com/mobil-koeln/moko-board/internal/matrix"
)

// snapshotFlags are the flags of the snapshot command
type snapshotFlags struct {
	out   string
	scale int
	input string
	at    string
}

func newSnapshotCmd(g *globalFlags) *cobra.Command {
	s := &snapshotFlags{}
	cmd := &cobra.Command{
		Use:   "snapshot [from [to]]",
		Short: "Render one frame of the board to a PNG file",
		Long: `Fetch the departure board and draw the first frame the panel would
show, written as a PNG image.

Examples:
  moko-board snapshot PAD -o board.png
  moko-board snapshot PAD --scale 8 -o big.png
  moko-board snapshot --input feed.json --at 09:58:07 -o fixed.png`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSnapshot(cmd, g, s, args)
		},
	}

	f := cmd.Flags()
	f.StringVarP(&s.out, "output", "o", "board.png", "PNG file to write")
	f.IntVar(&s.scale, "scale", 4, "Pixel size in the image")
	f.StringVarP(&s.input, "input", "i", "", "Read the feed from this file instead of fetching it")
	f.StringVar(&s.at, "at", "", "Clock time to draw (HH:MM:SS), default now")
	return cmd
}

func runSnapshot(cmd *cobra.Command, g *globalFlags, s *snapshotFlags, args []string) error {
	var cfg config.Config
	var err error
	if s.input != "" {
		cfg, err = readConfig(g, args)
	} else {
		cfg, err = loadConfig(g, args)
	}
	if err != nil {
		return err
	}

	if s.scale < 1 {
		return fmt.Errorf("invalid --scale %d: must be at least 1", s.scale)
	}

	now := time.Now()
	if s.at != "" {
		t, err := time.ParseInLocation("15:04:05", s.at, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --at time %q: %w", s.at, err)
		}
		y, m, d := now.Date()
		now = time.Date(y, m, d, t.Hour(), t.Minute(), t.Second(), 0, time.Local)
	}

	logger, closeLog, err := newLogger(g, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Debug("Snapshot command", configSummary(cfg)...)

	var client *api.Client
	if s.input == "" {
		if client, err = newClient(cfg, logger, !g.noCache); err != nil {
			return err
		}
	}
	raw, err := readFeed(cmd.Context(), client, cfg, s.input)
	if err != nil {
		return err
	}

	engine := newEngine(cfg, logger)
	if err := engine.Ingest(raw); err != nil {
		return err
	}

	font, err := matrix.LoadFont(cfg.FontPath, cfg.FontSize)
	if err != nil {
		return err
	}
	panel := matrix.NewPanel(cfg.Width(), cfg.Height(), &matrix.PNGSink{Path: s.out, Scale: s.scale})
	board, err := display.New(engine, panel, font, cfg.DisplayOptions(),
		display.WithLogger(logger),
		display.WithClock(func() time.Time { return now }))
	if err != nil {
		return err
	}

	if err := board.Render(now); err != nil {
		return err
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "Wrote %s (%dx%d)\n", s.out, cfg.Width()*s.scale, cfg.Height()*s.scale)
	return nil
}
