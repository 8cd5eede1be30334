package matrix

import (
	"image"
	"image/color"
	"image/draw"
	"sync"
	"sync/atomic"

	"golang.org/x/image/font"
	"golang.org/x/image/math/fixed"
)

// Common colors
var (
	White = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Black = color.RGBA{A: 255}
	Amber = color.RGBA{R: 255, G: 176, A: 255}
)

// Canvas is an off-screen frame the board draws into
type Canvas interface {
	Width() int
	Height() int
	Clear()
	DrawText(f *Font, x, y int, c color.Color, text string)
	SetPixel(x, y int, c color.Color)
}

// Surface is a Canvas that can be shown
type Surface interface {
	Canvas
	Swap() error
}

// Sink receives each frame after a swap. The frame must not be kept
// past the call.
type Sink interface {
	Show(frame *image.RGBA) error
}

// SinkFunc adapts a function to Sink
type SinkFunc func(frame *image.RGBA) error

// Show implements Sink
func (f SinkFunc) Show(frame *image.RGBA) error { return f(frame) }

// Panel is a double-buffered RGBA frame of a fixed size. Drawing goes to
// the back buffer; Swap makes it the front buffer and hands it to the sink.
type Panel struct {
	width  int
	height int
	sink   Sink

	mu    sync.Mutex // guards front
	front *image.RGBA
	back  *image.RGBA

	frames atomic.Uint64
}

// NewPanel creates a panel of width x height pixels. sink may be nil.
func NewPanel(width, height int, sink Sink) *Panel {
	bounds := image.Rect(0, 0, width, height)
	p := &Panel{
		width:  width,
		height: height,
		sink:   sink,
		front:  image.NewRGBA(bounds),
		back:   image.NewRGBA(bounds),
	}
	p.Clear()
	draw.Draw(p.front, bounds, image.NewUniform(Black), image.Point{}, draw.Src)
	return p
}

// Width returns the panel width in pixels
func (p *Panel) Width() int { return p.width }

// Height returns the panel height in pixels
func (p *Panel) Height() int { return p.height }

// Clear fills the back buffer with black
func (p *Panel) Clear() {
	draw.Draw(p.back, p.back.Bounds(), image.NewUniform(Black), image.Point{}, draw.Src)
}

// DrawText draws text with its baseline at y. Pixels outside the panel
// are clipped.
func (p *Panel) DrawText(f *Font, x, y int, c color.Color, text string) {
	if text == "" {
		return
	}
	d := font.Drawer{
		Dst:  p.back,
		Src:  image.NewUniform(c),
		Face: f.Face(),
		Dot:  fixed.P(x, y),
	}
	d.DrawString(text)
}

// SetPixel sets one pixel of the back buffer
func (p *Panel) SetPixel(x, y int, c color.Color) {
	if image.Pt(x, y).In(p.back.Rect) {
		p.back.Set(x, y, c)
	}
}

// Swap publishes the back buffer and sends it to the sink
func (p *Panel) Swap() error {
	p.mu.Lock()
	p.front, p.back = p.back, p.front
	front := p.front
	p.mu.Unlock()

	p.frames.Add(1)
	if p.sink == nil {
		return nil
	}
	return p.sink.Show(front)
}

// Frame returns a copy of the last swapped frame
func (p *Panel) Frame() *image.RGBA {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := image.NewRGBA(p.front.Rect)
	copy(out.Pix, p.front.Pix)
	return out
}

// Frames returns the number of swaps so far
func (p *Panel) Frames() uint64 {
	return p.frames.Load()
}

// FillRect paints the rectangle [x0,x1) x [y0,y1) clipped to the canvas
func FillRect(c Canvas, x0, y0, x1, y1 int, col color.Color) {
	if x0 < 0 {
		x0 = 0
	}
	if y0 < 0 {
		y0 = 0
	}
	if x1 > c.Width() {
		x1 = c.Width()
	}
	if y1 > c.Height() {
		y1 = c.Height()
	}
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c.SetPixel(x, y, col)
		}
	}
}
