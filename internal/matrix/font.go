// Package matrix provides the pixel surface the board is drawn on: font
// metrics, an off-screen frame buffer and the swap to an output sink.
package matrix

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/opentype"
)

// DefaultFontSize is the point size used for scalable fonts
const DefaultFontSize = 12

// ErrUnsupportedFont is returned for font files that cannot be loaded
var ErrUnsupportedFont = errors.New("unsupported font format")

// Font wraps a font face with the metrics the board layout needs
type Font struct {
	name     string
	face     font.Face
	baseline int
	height   int
}

// NewFont wraps an already loaded face
func NewFont(name string, face font.Face) *Font {
	m := face.Metrics()
	return &Font{
		name:     name,
		face:     face,
		baseline: m.Ascent.Ceil(),
		height:   m.Height.Ceil(),
	}
}

// BuiltinFont returns the 7x13 bitmap font compiled into the binary
func BuiltinFont() *Font {
	return NewFont("basicfont 7x13", basicfont.Face7x13)
}

// LoadFont loads a TrueType or OpenType font at size points. An empty
// path selects the built-in bitmap font.
func LoadFont(path string, size float64) (*Font, error) {
	if path == "" {
		return BuiltinFont(), nil
	}

	switch strings.ToLower(filepath.Ext(path)) {
	case ".ttf", ".otf":
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFont, path)
	}

	// #nosec G304 -- font path comes from the operator's configuration
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read font: %w", err)
	}

	parsed, err := opentype.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse font %s: %w", path, err)
	}

	if size <= 0 {
		size = DefaultFontSize
	}
	face, err := opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingFull,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create font face: %w", err)
	}

	return NewFont(filepath.Base(path), face), nil
}

// Name returns a human-readable font name
func (f *Font) Name() string { return f.name }

// Face returns the underlying face for drawing
func (f *Font) Face() font.Face { return f.face }

// Baseline returns the pixel distance from the top of a line to its baseline
func (f *Font) Baseline() int { return f.baseline }

// Height returns the line height in pixels
func (f *Font) Height() int { return f.height }

// CharacterWidth returns the advance of r in whole pixels. Runes missing
// from the face measure as '?'.
func (f *Font) CharacterWidth(r rune) int {
	adv, ok := f.face.GlyphAdvance(r)
	if !ok {
		adv, _ = f.face.GlyphAdvance('?')
	}
	return adv.Round()
}
