package main

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/mobil-koeln/moko-board/internal/api"
	"github.com/mobil-koeln/moko-board/internal/config"
	"github.com/mobil-koeln/moko-board/internal/departures"
	"github.com/mobil-koeln/moko-board/internal/logging"
	"github.com/mobil-koeln/moko-board/internal/output"
)

var version = "0.1.0"

// defaultConfigPaths are tried in order when --config is not given
var defaultConfigPaths = []string{"moko-board.yaml", "moko-board.yml", "config.txt"}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// globalFlags are shared by every command
type globalFlags struct {
	debug      bool
	configPath string
	logFile    string
	color      string
	noCache    bool
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}
	d := &displayFlags{}

	cmd := &cobra.Command{
		Use:   "moko-board [from [to [refresh_seconds]]]",
		Short: "Live train departure board for RGB LED matrix panels",
		Long: `moko-board shows the next departures from a station on an LED matrix
panel, in the style of a platform departure board.

The first row shows the next departure, alternating between its expected
time and its number of coaches. Its calling points scroll underneath. The
third row alternates between the second and third departures, and the
fourth row shows the station name or scrolling service messages next to
a clock. Departures are refreshed in the background.

Stations are CRS codes (PAD, RDG, ...). Settings come from a YAML file or
a legacy key=value config.txt; positional arguments override them.

Quick Start:
  1. Preview a board:          moko-board PAD
  2. Only trains to Reading:   moko-board PAD RDG
  3. Print the board once:     moko-board board PAD
  4. Save one frame as PNG:    moko-board snapshot PAD -o frame.png
  5. Edit settings remotely:   moko-board config serve`,
		Version:       version,
		Args:          cobra.MaximumNArgs(3),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDisplay(cmd, g, d, args)
		},
	}

	pf := cmd.PersistentFlags()
	pf.BoolVarP(&g.debug, "debug", "d", false, "Enable debug logging")
	pf.StringVarP(&g.configPath, "config", "f", "", "Config file, YAML or key=value (default moko-board.yaml or config.txt)")
	pf.StringVar(&g.logFile, "log-file", "", "Append logs to this file instead of stderr")
	pf.StringVar(&g.color, "color", "auto", "Color output: auto, always, never")
	pf.BoolVar(&g.noCache, "no-cache", false, "Disable response caching")

	d.register(cmd)

	cmd.AddCommand(newBoardCmd(g))
	cmd.AddCommand(newSnapshotCmd(g))
	cmd.AddCommand(newConfigCmd(g))
	cmd.AddCommand(newCacheCmd())
	return cmd
}

// resolveConfigPath returns --config, or the first default file that
// exists, or "" when there is none
func resolveConfigPath(g *globalFlags) string {
	if g.configPath != "" {
		return g.configPath
	}
	for _, p := range defaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// readConfig reads the config file and applies positional overrides
// without validating
func readConfig(g *globalFlags, args []string) (config.Config, error) {
	cfg := config.Default()
	if path := resolveConfigPath(g); path != "" {
		var err error
		cfg, err = config.Read(path)
		if err != nil && (g.configPath != "" || !errors.Is(err, fs.ErrNotExist)) {
			return cfg, err
		}
	}
	if err := cfg.ApplyArgs(args); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// loadConfig is readConfig followed by validation
func loadConfig(g *globalFlags, args []string) (config.Config, error) {
	cfg, err := readConfig(g, args)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newLogger logs to w, or to a file when --log-file is set or toFile
// is true. The returned func closes the file.
func newLogger(g *globalFlags, w io.Writer, toFile bool) (*log.Logger, func(), error) {
	opts := logging.Options{Debug: g.debug}
	if g.logFile == "" && !toFile {
		return logging.New(w, opts), func() {}, nil
	}
	f, err := logging.OpenFile(g.logFile, opts)
	if err != nil {
		return nil, nil, err
	}
	return f.Logger, func() { _ = f.Close() }, nil
}

// newClient creates the feed client for cfg
func newClient(cfg config.Config, logger *log.Logger, cached bool) (*api.Client, error) {
	opts := []api.ClientOption{
		api.WithLogger(logger),
		api.WithRows(cfg.Rows),
		api.WithRateLimit(cfg.RequestInterval()),
	}
	if cfg.APIURL != "" {
		opts = append(opts, api.WithBaseURL(cfg.APIURL))
	}
	if cfg.APIKey != "" {
		opts = append(opts, api.WithAPIKey(cfg.APIKey))
	}
	if cached {
		opts = append(opts, api.WithDefaultCache())
	}

	client, err := api.NewClient(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create API client: %w", err)
	}
	return client, nil
}

// newEngine creates the departure engine for cfg
func newEngine(cfg config.Config, logger *log.Logger) *departures.Engine {
	opts := []departures.Option{
		departures.WithLogger(logger),
		departures.WithCallingPointTimes(cfg.ShowCallingPointETD),
	}
	if cfg.Platform != "" {
		opts = append(opts, departures.WithPlatform(cfg.Platform))
	}
	return departures.New(opts...)
}

// colorMode returns the color mode based on flag
func colorMode(g *globalFlags) output.ColorMode {
	return output.ParseColorMode(g.color)
}
