// Package config holds the board's settings: station codes, feed
// endpoint, panel geometry, row layout and timing.
package config

import (
	"image/color"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/mobil-koeln/moko-board/internal/display"
)

// MatrixConfig describes the LED panel chain
type MatrixConfig struct {
	Cols        int `yaml:"cols" json:"cols" validate:"gte=8,lte=1024"`
	Rows        int `yaml:"rows" json:"rows" validate:"gte=8,lte=512"`
	ChainLength int `yaml:"chain_length" json:"chain_length" validate:"gte=1,lte=16"`
	Parallel    int `yaml:"parallel" json:"parallel" validate:"gte=1,lte=4"`
}

// LinesConfig holds the baseline of each text row
type LinesConfig struct {
	FirstY  int `yaml:"first_y" json:"first_y" validate:"gte=0"`
	SecondY int `yaml:"second_y" json:"second_y" validate:"gte=0"`
	ThirdY  int `yaml:"third_y" json:"third_y" validate:"gte=0"`
	FourthY int `yaml:"fourth_y" json:"fourth_y" validate:"gte=0"`
}

// Config is the complete board configuration
type Config struct {
	From     string `yaml:"from" json:"from" validate:"required"`
	To       string `yaml:"to" json:"to"`
	Platform string `yaml:"platform" json:"platform"`

	APIURL string `yaml:"api_url" json:"api_url" validate:"omitempty,url"`
	APIKey string `yaml:"api_key" json:"api_key"`

	// Rows is how many services the feed is asked for. More rows let a
	// platform filter find three departures.
	Rows              int `yaml:"rows" json:"rows" validate:"gte=3,lte=150"`
	RequestIntervalMS int `yaml:"request_interval_ms" json:"request_interval_ms" validate:"gte=0"`

	FontPath string  `yaml:"font_path" json:"font_path"`
	FontSize float64 `yaml:"font_size" json:"font_size" validate:"gte=0,lte=128"`
	Color    string  `yaml:"color" json:"color" validate:"omitempty,hexcolor"`

	ScrollSleepMS           int `yaml:"scroll_slowdown_sleep_ms" json:"scroll_slowdown_sleep_ms" validate:"gte=1,lte=1000"`
	RefreshIntervalSeconds  int `yaml:"refresh_interval_seconds" json:"refresh_interval_seconds" validate:"gte=1"`
	MessageRefreshSeconds   int `yaml:"message_refresh_interval" json:"message_refresh_interval" validate:"gte=1"`
	ETDCoachRefreshSeconds  int `yaml:"etd_coach_refresh_seconds" json:"etd_coach_refresh_seconds" validate:"gte=1"`
	ThirdLineRefreshSeconds int `yaml:"third_line_refresh_seconds" json:"third_line_refresh_seconds" validate:"gte=1"`

	Matrix MatrixConfig `yaml:"matrix" json:"matrix"`
	Lines  LinesConfig  `yaml:"lines" json:"lines"`

	ShowCallingPointETD bool `yaml:"show_calling_point_etd" json:"show_calling_point_etd"`
	ShowMessages        bool `yaml:"show_messages" json:"show_messages"`
	ShowPlatforms       bool `yaml:"show_platforms" json:"show_platforms"`
	ShowLocation        bool `yaml:"show_location" json:"show_location"`
}

// Default returns the settings used when nothing is configured. From is
// empty, so a default config does not validate until a station is set.
func Default() Config {
	return Config{
		Rows:                    10,
		RequestIntervalMS:       1000,
		ScrollSleepMS:           15,
		RefreshIntervalSeconds:  60,
		MessageRefreshSeconds:   20,
		ETDCoachRefreshSeconds:  10,
		ThirdLineRefreshSeconds: 10,
		Color:                   "#FFB000",
		Matrix: MatrixConfig{
			Cols:        128,
			Rows:        64,
			ChainLength: 3,
			Parallel:    1,
		},
		Lines: LinesConfig{
			FirstY:  14,
			SecondY: 30,
			ThirdY:  46,
			FourthY: 62,
		},
		ShowCallingPointETD: true,
		ShowMessages:        true,
		ShowPlatforms:       true,
		ShowLocation:        true,
	}
}

var validate = validator.New()

// Validate checks every field constraint and that the rows fit the panel
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	h := c.Height()
	rows := []struct {
		key string
		y   int
	}{
		{"lines.first_y", c.Lines.FirstY},
		{"lines.second_y", c.Lines.SecondY},
		{"lines.third_y", c.Lines.ThirdY},
		{"lines.fourth_y", c.Lines.FourthY},
	}
	for _, r := range rows {
		if r.y >= h {
			return &FieldError{Key: r.key, Value: strconv.Itoa(r.y), Reason: "row is below the bottom of the panel (height " + strconv.Itoa(h) + ")"}
		}
	}
	return nil
}

// Width returns the panel width in pixels
func (c *Config) Width() int {
	return c.Matrix.Cols * c.Matrix.ChainLength
}

// Height returns the panel height in pixels
func (c *Config) Height() int {
	return c.Matrix.Rows * c.Matrix.Parallel
}

// RequestInterval returns the minimum time between feed requests
func (c *Config) RequestInterval() time.Duration {
	return time.Duration(c.RequestIntervalMS) * time.Millisecond
}

// RefreshInterval returns the feed refresh interval
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.RefreshIntervalSeconds) * time.Second
}

// ApplyArgs overrides the origin, destination and refresh interval from
// up to three positional arguments
func (c *Config) ApplyArgs(args []string) error {
	if len(args) > 3 {
		return &FieldError{Key: "args", Value: strings.Join(args, " "), Reason: "expected at most [from [to [refresh_seconds]]]"}
	}
	if len(args) > 0 {
		c.From = args[0]
	}
	if len(args) > 1 {
		c.To = args[1]
	}
	if len(args) > 2 {
		n, err := strconv.Atoi(args[2])
		if err != nil || n < 1 {
			return &FieldError{Key: "refresh_interval_seconds", Value: args[2], Reason: "not a positive integer"}
		}
		c.RefreshIntervalSeconds = n
	}
	return nil
}

// TextColor returns Color as an RGBA value, amber if unset or invalid
func (c *Config) TextColor() color.RGBA {
	amber := color.RGBA{R: 0xFF, G: 0xB0, A: 0xFF}
	s := strings.TrimPrefix(c.Color, "#")
	if len(s) == 3 {
		s = string([]byte{s[0], s[0], s[1], s[1], s[2], s[2]})
	}
	if len(s) != 6 {
		return amber
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return amber
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xFF}
}

// DisplayOptions maps the configuration onto the board's options
func (c *Config) DisplayOptions() display.Options {
	return display.Options{
		ShowPlatforms:    c.ShowPlatforms,
		ShowLocation:     c.ShowLocation,
		ShowMessages:     c.ShowMessages,
		ETDCoachInterval: time.Duration(c.ETDCoachRefreshSeconds) * time.Second,
		ThirdRowInterval: time.Duration(c.ThirdLineRefreshSeconds) * time.Second,
		MessageInterval:  time.Duration(c.MessageRefreshSeconds) * time.Second,
		RefreshInterval:  c.RefreshInterval(),
		FrameInterval:    time.Duration(c.ScrollSleepMS) * time.Millisecond,
		FirstLineY:       c.Lines.FirstY,
		SecondLineY:      c.Lines.SecondY,
		ThirdLineY:       c.Lines.ThirdY,
		FourthLineY:      c.Lines.FourthY,
		Color:            c.TextColor(),
	}
}
