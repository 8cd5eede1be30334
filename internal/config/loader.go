package config

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Format is a configuration file syntax
type Format int

const (
	FormatYAML Format = iota
	// FormatLegacy is the key=value config.txt syntax
	FormatLegacy
)

// DetectFormat picks the syntax from the file extension
func DetectFormat(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yml", ".yaml":
		return FormatYAML
	default:
		return FormatLegacy
	}
}

// Load reads path over the defaults and validates the result
func Load(path string) (Config, error) {
	cfg, err := Read(path)
	if err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config %s: %w", path, err)
	}
	return cfg, nil
}

// Read reads path over the defaults without validating, so command line
// overrides can still fill in required settings
func Read(path string) (Config, error) {
	cfg := Default()

	// #nosec G304 -- path is the operator's config file
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("could not open config file: %w", err)
	}

	switch DetectFormat(path) {
	case FormatYAML:
		err = decodeYAML(data, &cfg)
	default:
		err = decodeLegacy(data, &cfg)
	}
	if err != nil {
		return cfg, fmt.Errorf("parse %s: %w", path, err)
	}
	return cfg, nil
}

// DecodeYAML decodes a YAML (or JSON) document over cfg. Unknown keys are
// an error; keys the document leaves out keep their current value.
func DecodeYAML(data []byte, cfg *Config) error {
	return decodeYAML(data, cfg)
}

func decodeYAML(data []byte, cfg *Config) error {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// Save writes cfg to path as YAML
func Save(path string, cfg Config) error {
	data, err := yaml.Marshal(&cfg)
	if err != nil {
		return err
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// ParseBool accepts true/yes/1/on and false/no/0/off in any case
func ParseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "true", "yes", "1", "on":
		return true, nil
	case "false", "no", "0", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid boolean %q", s)
}

type setter func(cfg *Config, value string) error

func str(field func(*Config) *string) setter {
	return func(cfg *Config, v string) error {
		*field(cfg) = v
		return nil
	}
}

func integer(field func(*Config) *int) setter {
	return func(cfg *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return errors.New("not an integer")
		}
		*field(cfg) = n
		return nil
	}
}

func boolean(field func(*Config) *bool) setter {
	return func(cfg *Config, v string) error {
		b, err := ParseBool(v)
		if err != nil {
			return errors.New("not a boolean (true/yes/1/on, false/no/0/off)")
		}
		*field(cfg) = b
		return nil
	}
}

// legacyKeys maps config.txt keys onto Config fields
var legacyKeys = map[string]setter{
	"from":                       str(func(c *Config) *string { return &c.From }),
	"to":                         str(func(c *Config) *string { return &c.To }),
	"platform":                   str(func(c *Config) *string { return &c.Platform }),
	"APIURL":                     str(func(c *Config) *string { return &c.APIURL }),
	"APIkey":                     str(func(c *Config) *string { return &c.APIKey }),
	"rows":                       integer(func(c *Config) *int { return &c.Rows }),
	"request_interval_ms":        integer(func(c *Config) *int { return &c.RequestIntervalMS }),
	"fontPath":                   str(func(c *Config) *string { return &c.FontPath }),
	"color":                      str(func(c *Config) *string { return &c.Color }),
	"scroll_slowdown_sleep_ms":   integer(func(c *Config) *int { return &c.ScrollSleepMS }),
	"refresh_interval_seconds":   integer(func(c *Config) *int { return &c.RefreshIntervalSeconds }),
	"Message_Refresh_interval":   integer(func(c *Config) *int { return &c.MessageRefreshSeconds }),
	"ETD_coach_refresh_seconds":  integer(func(c *Config) *int { return &c.ETDCoachRefreshSeconds }),
	"third_line_refresh_seconds": integer(func(c *Config) *int { return &c.ThirdLineRefreshSeconds }),
	"matrixcols":                 integer(func(c *Config) *int { return &c.Matrix.Cols }),
	"matrixrows":                 integer(func(c *Config) *int { return &c.Matrix.Rows }),
	"matrixchain_length":         integer(func(c *Config) *int { return &c.Matrix.ChainLength }),
	"matrixparallel":             integer(func(c *Config) *int { return &c.Matrix.Parallel }),
	"first_line_y":               integer(func(c *Config) *int { return &c.Lines.FirstY }),
	"second_line_y":              integer(func(c *Config) *int { return &c.Lines.SecondY }),
	"third_line_y":               integer(func(c *Config) *int { return &c.Lines.ThirdY }),
	"fourth_line_y":              integer(func(c *Config) *int { return &c.Lines.FourthY }),
	"ShowCallingPointETD":        boolean(func(c *Config) *bool { return &c.ShowCallingPointETD }),
	"ShowMessages":               boolean(func(c *Config) *bool { return &c.ShowMessages }),
	"ShowPlatforms":              boolean(func(c *Config) *bool { return &c.ShowPlatforms }),
	"ShowLocation":               boolean(func(c *Config) *bool { return &c.ShowLocation }),
	"font_size": func(c *Config, v string) error {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return errors.New("not a number")
		}
		c.FontSize = f
		return nil
	},
}

// decodeLegacy reads key=value lines. Blank lines and lines starting with
// '#' are skipped, as are keys this program does not use (LED driver
// tuning such as led-brightness). An empty value keeps the default.
func decodeLegacy(data []byte, cfg *Config) error {
	sc := bufio.NewScanner(bytes.NewReader(data))
	line := 0
	for sc.Scan() {
		line++
		text := sc.Text()
		if text == "" || strings.HasPrefix(text, "#") {
			continue
		}
		key, value, ok := strings.Cut(text, "=")
		if !ok {
			continue
		}
		key, value = strings.TrimSpace(key), strings.TrimSpace(value)
		if key == "" || value == "" {
			continue
		}

		set, known := legacyKeys[key]
		if !known {
			continue
		}
		if err := set(cfg, value); err != nil {
			return &FieldError{Line: line, Key: key, Value: value, Reason: err.Error()}
		}
	}
	return sc.Err()
}
