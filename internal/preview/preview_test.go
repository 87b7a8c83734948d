package preview

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/Faultbox/oceanbake/internal/bake"
	"github.com/Faultbox/oceanbake/internal/engine/scene"
	"github.com/Faultbox/oceanbake/internal/engine/water"
)

func TestShade(t *testing.T) {
	trough := Shade(-1, 1)
	if trough.R != 8 || trough.G != 42 || trough.B != 92 || trough.A != 255 {
		t.Errorf("unexpected trough colour %v", trough)
	}
	crest := Shade(1, 1)
	if crest.R != 232 || crest.G != 244 || crest.B != 255 {
		t.Errorf("unexpected crest colour %v", crest)
	}
	flat := Shade(0, 0)
	if flat.R != 31 || flat.G != 111 || flat.B != 178 {
		t.Errorf("expected mid colour for zero amplitude, got %v", flat)
	}
	if Shade(5, 1) != crest {
		t.Error("heights above amplitude should clamp to crest")
	}
}

func TestRender(t *testing.T) {
	heights := []float64{-1, -1, 1, 1} // bottom row trough, top row crest
	img, err := Render(heights, 2, Options{Scale: 3, Amplitude: 1})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	if img.Bounds().Dx() != 6 || img.Bounds().Dy() != 6 {
		t.Fatalf("unexpected size %v", img.Bounds())
	}
	if img.NRGBAAt(0, 0) != Shade(1, 1) {
		t.Error("expected crest at top of image")
	}
	if img.NRGBAAt(5, 5) != Shade(-1, 1) {
		t.Error("expected trough at bottom of image")
	}
}

func TestRender_BadShape(t *testing.T) {
	if _, err := Render([]float64{1, 2, 3}, 2, Options{}); !errors.Is(err, ErrShape) {
		t.Errorf("expected ErrShape, got %v", err)
	}
}

func TestRenderFrame(t *testing.T) {
	p := water.Params{Width: 10, Depth: 10, Resolution: 8, Frequency: 1, Amplitude: 1}
	settings := bake.DefaultSettings()
	settings.LastFrame = 3
	obj, _, err := bake.Ocean(context.Background(), scene.New(nil), "", p, settings)
	if err != nil {
		t.Fatalf("bake failed: %v", err)
	}

	img, err := RenderFrame(obj, 2, Options{Scale: 1, Amplitude: p.Amplitude})
	if err != nil {
		t.Fatalf("RenderFrame failed: %v", err)
	}
	if img.Bounds().Dx() != 8 {
		t.Errorf("expected 8px image, got %v", img.Bounds())
	}

	if _, err := RenderFrame(obj, 4, Options{}); !errors.Is(err, ErrFrameNotBaked) {
		t.Errorf("expected ErrFrameNotBaked, got %v", err)
	}

	path := filepath.Join(t.TempDir(), "out", "frame.webp")
	if err := WriteFile(path, img); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read output: %v", err)
	}
	if !bytes.HasPrefix(data, []byte("RIFF")) || !bytes.Equal(data[8:12], []byte("WEBP")) {
		t.Error("output is not a WebP container")
	}
}
