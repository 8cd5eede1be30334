package matrix

import (
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"time"

	"golang.org/x/time/rate"
)

// WritePNG encodes frame as PNG, scaling each pixel to a scale x scale block
func WritePNG(w io.Writer, frame *image.RGBA, scale int) error {
	if scale > 1 {
		frame = Scale(frame, scale)
	}
	if err := png.Encode(w, frame); err != nil {
		return fmt.Errorf("failed to encode frame: %w", err)
	}
	return nil
}

// Scale enlarges frame by an integer factor using nearest neighbour
func Scale(frame *image.RGBA, scale int) *image.RGBA {
	b := frame.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, b.Dx()*scale, b.Dy()*scale))
	for y := 0; y < out.Rect.Dy(); y++ {
		for x := 0; x < out.Rect.Dx(); x++ {
			out.SetRGBA(x, y, frame.RGBAAt(b.Min.X+x/scale, b.Min.Y+y/scale))
		}
	}
	return out
}

// PNGSink writes every frame it is shown to a file, replacing the previous one
type PNGSink struct {
	Path  string
	Scale int
}

// Show implements Sink
func (s *PNGSink) Show(frame *image.RGBA) error {
	tmp := s.Path + ".tmp"
	// #nosec G304 -- output path is chosen by the operator
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("failed to create frame file: %w", err)
	}
	if err := WritePNG(f, frame, s.Scale); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(tmp, s.Path)
}

// Throttle passes at most one frame per interval on to s and drops the
// rest. The first frame always goes through.
func Throttle(s Sink, interval time.Duration) Sink {
	limiter := &rate.Sometimes{Interval: interval}
	return SinkFunc(func(frame *image.RGBA) error {
		var err error
		limiter.Do(func() {
			err = s.Show(frame)
		})
		return err
	})
}

// Tee shows every frame on each non-nil sink in turn. It returns nil when
// no sink is left, which a Panel treats as "draw only".
func Tee(sinks ...Sink) Sink {
	var live []Sink
	for _, s := range sinks {
		if s != nil {
			live = append(live, s)
		}
	}
	switch len(live) {
	case 0:
		return nil
	case 1:
		return live[0]
	}
	return SinkFunc(func(frame *image.RGBA) error {
		var errs []error
		for _, s := range live {
			if err := s.Show(frame); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	})
}
