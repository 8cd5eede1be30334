package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/mobil-koeln/moko-board/internal/api"
	"github.com/mobil-koeln/moko-board/internal/config"
	"github.com/mobil-koeln/moko-board/internal/output"
)

// boardFlags are the flags of the board command
type boardFlags struct {
	json          bool
	rawJSON       bool
	watch         bool
	limit         int
	callingPoints bool
	next          bool
	input         string
}

func newBoardCmd(g *globalFlags) *cobra.Command {
	b := &boardFlags{}
	cmd := &cobra.Command{
		Use:   "board [from [to [refresh_seconds]]]",
		Short: "Print the departure board as text",
		Long: `Fetch the departure board once and print it as colored text, every
service in departure order with its calling points.

Examples:
  moko-board board PAD                # all departures from London Paddington
  moko-board board PAD RDG            # only services calling at Reading
  moko-board board PAD --limit 3      # the next three departures
  moko-board board PAD --next         # what the LED panel shows
  moko-board board PAD --json         # structured output for scripting
  moko-board board PAD --watch        # redraw every refresh interval
  moko-board board --input feed.json  # render a saved feed`,
		Args: cobra.MaximumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBoard(cmd, g, b, args)
		},
	}

	f := cmd.Flags()
	f.BoolVar(&b.json, "json", false, "Output as JSON")
	f.BoolVar(&b.rawJSON, "raw-json", false, "Output raw API response")
	f.BoolVarP(&b.watch, "watch", "w", false, "Watch mode: refresh every refresh interval")
	f.IntVarP(&b.limit, "limit", "n", 0, "Show at most this many services (0 for all)")
	f.BoolVar(&b.callingPoints, "calling-points", true, "Show calling points")
	f.BoolVar(&b.next, "next", false, "Show only the three departures the display selects")
	f.StringVarP(&b.input, "input", "i", "", "Read the feed from this file instead of fetching it")
	return cmd
}

func runBoard(cmd *cobra.Command, g *globalFlags, b *boardFlags, args []string) error {
	var cfg config.Config
	var err error
	if b.input != "" {
		// A saved feed does not need a station
		cfg, err = readConfig(g, args)
	} else {
		cfg, err = loadConfig(g, args)
	}
	if err != nil {
		return err
	}

	logger, closeLog, err := newLogger(g, cmd.ErrOrStderr(), false)
	if err != nil {
		return err
	}
	defer closeLog()
	logger.Debug("Board command", configSummary(cfg)...)

	var client *api.Client
	if b.input == "" {
		if client, err = newClient(cfg, logger, !g.noCache); err != nil {
			return err
		}
	}
	engine := newEngine(cfg, logger)
	w := cmd.OutOrStdout()

	fetchAndRender := func(ctx context.Context) error {
		raw, err := readFeed(ctx, client, cfg, b.input)
		if err != nil {
			return err
		}
		if b.rawJSON {
			return output.WritePrettyJSON(w, raw)
		}

		if err := engine.Ingest(raw); err != nil {
			return err
		}
		snap := engine.Snapshot()
		platform, only := engine.SelectedPlatform()
		if !only {
			platform = ""
		}

		if b.json {
			return output.WriteJSON(w, output.NewBoardView(snap, platform))
		}
		opts := output.BoardOptions{
			Colors:            output.NewColorsFor(colorMode(g), w),
			Platform:          platform,
			Limit:             b.limit,
			ShowCallingPoints: b.callingPoints,
			ShowMessages:      cfg.ShowMessages,
			ShowPlatforms:     cfg.ShowPlatforms,
		}
		if b.next {
			sel, current := engine.FindServices()
			output.RenderSelection(w, current, sel, opts)
			return nil
		}
		output.RenderBoard(w, snap, opts)
		return nil
	}

	if b.watch {
		ctx, stop := output.SignalContext(cmd.Context())
		defer stop()
		return runWatch(ctx, w, cmd.ErrOrStderr(), cfg.RefreshInterval(), fetchAndRender)
	}
	return fetchAndRender(cmd.Context())
}

// readFeed loads the raw feed from path, or fetches it when path is empty
func readFeed(ctx context.Context, client *api.Client, cfg config.Config, path string) ([]byte, error) {
	if path != "" {
		// #nosec G304 -- input file is chosen by the operator
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read feed: %w", err)
		}
		return data, nil
	}
	return client.FetchDepartures(ctx, cfg.From, cfg.To)
}

// runWatch runs a continuous refresh loop for watch mode
func runWatch(ctx context.Context, w, errW io.Writer, interval time.Duration, fetchAndRender func(context.Context) error) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	// Hide cursor during watch mode
	output.HideCursor(w)
	defer output.ShowCursor(w)

	for {
		output.ClearScreen(w)

		now := time.Now()
		_, _ = fmt.Fprintf(w, "Last update: %s | Next refresh in %s | Press Ctrl+C to exit\n\n",
			now.Format("15:04:05"), interval)

		if err := fetchAndRender(ctx); err != nil {
			_, _ = fmt.Fprintf(errW, "Error: %v\n", err)
		}

		select {
		case <-ticker.C:
			continue
		case <-ctx.Done():
			output.ClearScreen(w)
			_, _ = fmt.Fprintln(w, "Watch mode ended.")
			return nil
		}
	}
}
