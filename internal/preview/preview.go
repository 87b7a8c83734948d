// Package preview renders a baked height field as a WebP image.
package preview

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"io"
	gomath "math"
	"os"
	"path/filepath"

	"github.com/HugoSmits86/nativewebp"

	"github.com/Faultbox/oceanbake/internal/engine/scene"
	"github.com/Faultbox/oceanbake/pkg/math"
)

// Preview errors.
var (
	ErrFrameNotBaked = errors.New("frame has no keyframes")
	ErrShape         = errors.New("height count does not match resolution")
)

// Ocean colour ramp, trough to crest.
var (
	troughColor = [3]float64{8, 42, 92}
	midColor    = [3]float64{31, 111, 178}
	crestColor  = [3]float64{232, 244, 255}
)

// Options controls rendering.
type Options struct {
	Scale     int     // pixels per vertex, at least 1
	Amplitude float64 // heights in [-Amplitude, Amplitude] span the ramp
}

// Shade maps a height to the ocean ramp.
func Shade(h, amplitude float64) color.NRGBA {
	t := 0.5
	if amplitude != 0 {
		t = (h/gomath.Abs(amplitude) + 1) / 2
	}
	t = gomath.Max(0, gomath.Min(1, t))

	from, to, k := troughColor, midColor, t*2
	if t > 0.5 {
		from, to, k = midColor, crestColor, (t-0.5)*2
	}
	return color.NRGBA{
		R: uint8(gomath.Round(math.Lerp(from[0], to[0], k))),
		G: uint8(gomath.Round(math.Lerp(from[1], to[1], k))),
		B: uint8(gomath.Round(math.Lerp(from[2], to[2], k))),
		A: 255,
	}
}

// Render draws a row-major resolution x resolution height grid. Grid row 0
// (lowest y) is drawn at the bottom of the image.
func Render(heights []float64, resolution int, opts Options) (*image.NRGBA, error) {
	if resolution < 1 || len(heights) != resolution*resolution {
		return nil, fmt.Errorf("%w: %d heights for resolution %d", ErrShape, len(heights), resolution)
	}
	scale := max(opts.Scale, 1)
	size := resolution * scale
	img := image.NewNRGBA(image.Rect(0, 0, size, size))

	for row := range resolution {
		py := (resolution - 1 - row) * scale
		for col := range resolution {
			c := Shade(heights[row*resolution+col], opts.Amplitude)
			px := col * scale
			for dy := range scale {
				for dx := range scale {
					img.SetNRGBA(px+dx, py+dy, c)
				}
			}
		}
	}
	return img, nil
}

// RenderFrame renders the keyed heights of obj at frame.
func RenderFrame(obj *scene.Object, frame int, opts Options) (*image.NRGBA, error) {
	positions, ok := obj.Curves.Sample(frame)
	if !ok {
		return nil, fmt.Errorf("%w: %d", ErrFrameNotBaked, frame)
	}
	heights := make([]float64, len(positions))
	for i, p := range positions {
		heights[i] = p.Z
	}
	return Render(heights, obj.Mesh.Resolution, opts)
}

// Encode writes img to w as lossless WebP.
func Encode(w io.Writer, img image.Image) error {
	if err := nativewebp.Encode(w, img, nil); err != nil {
		return fmt.Errorf("WebP encode: %w", err)
	}
	return nil
}

// WriteFile encodes img to path, creating parent directories.
func WriteFile(path string, img image.Image) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, img); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
