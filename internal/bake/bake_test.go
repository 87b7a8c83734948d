package bake

import (
	"context"
	"errors"
	gomath "math"
	"testing"

	"github.com/Faultbox/oceanbake/internal/engine/anim"
	"github.com/Faultbox/oceanbake/internal/engine/scene"
	"github.com/Faultbox/oceanbake/internal/engine/water"
)

func oceanParams() water.Params {
	return water.Params{Width: 10, Depth: 10, Resolution: 50, Frequency: 1.0, Amplitude: 1.0}
}

func TestSettingsDefaults(t *testing.T) {
	s := DefaultSettings()
	if s.FirstFrame != 1 || s.LastFrame != 249 {
		t.Errorf("expected frames 1..249, got %d..%d", s.FirstFrame, s.LastFrame)
	}
	if s.FrameCount() != 249 {
		t.Errorf("expected 249 frames, got %d", s.FrameCount())
	}
	if got := s.TimeAt(249); gomath.Abs(got-24.9) > 1e-12 {
		t.Errorf("expected time 24.9 at frame 249, got %v", got)
	}
}

func TestSettingsValidate(t *testing.T) {
	tests := []struct {
		name string
		s    Settings
		want error
	}{
		{"zero first frame", Settings{FirstFrame: 0, LastFrame: 10, TimeStep: 0.1}, ErrInvalidFrameRange},
		{"reversed", Settings{FirstFrame: 5, LastFrame: 4, TimeStep: 0.1}, ErrInvalidFrameRange},
		{"nan step", Settings{FirstFrame: 1, LastFrame: 4, TimeStep: gomath.NaN()}, ErrInvalidTimeStep},
		{"ok", Settings{FirstFrame: 3, LastFrame: 3, TimeStep: 0.1}, nil},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.s.Validate(); !errors.Is(err, tc.want) {
				t.Errorf("expected %v, got %v", tc.want, err)
			}
		})
	}
}

func TestOcean_FullRun(t *testing.T) {
	p := oceanParams()
	sc := scene.New(nil)

	var seen []int
	obj, res, err := Ocean(context.Background(), sc, "OceanPlane", p, DefaultSettings(),
		WithFrameFunc(func(frame int, _ float64, _ []float64) {
			seen = append(seen, frame)
		}))
	if err != nil {
		t.Fatalf("Ocean failed: %v", err)
	}

	if res.Frames != 249 || res.Vertices != 2500 {
		t.Errorf("unexpected result %+v", res)
	}
	if res.Keyframes != 2500*249*anim.NumChannels {
		t.Errorf("expected %d keyframes, got %d", 2500*249*anim.NumChannels, res.Keyframes)
	}
	if sc.Frame() != 249 {
		t.Errorf("expected scene at frame 249, got %d", sc.Frame())
	}

	for i, f := range seen {
		if f != i+1 {
			t.Fatalf("callback %d saw frame %d", i, f)
		}
	}

	// Every vertex has 249 keys per channel, frames 1..249 in order.
	for _, v := range []int{0, 1249, 2499} {
		for _, ch := range anim.Channels {
			c, err := obj.Curves.Curve(v, ch)
			if err != nil {
				t.Fatalf("Curve failed: %v", err)
			}
			if c.Len() != 249 {
				t.Fatalf("vertex %d %s: expected 249 keys, got %d", v, ch, c.Len())
			}
			for i, k := range c.Keys {
				if k.Frame != i+1 {
					t.Fatalf("vertex %d %s: key %d has frame %d", v, ch, i, k.Frame)
				}
			}
		}
	}
}

func TestOcean_KeyedHeightsMatchFormula(t *testing.T) {
	p := oceanParams()
	settings := DefaultSettings()
	obj, _, err := Ocean(context.Background(), scene.New(nil), "", p, settings)
	if err != nil {
		t.Fatalf("Ocean failed: %v", err)
	}

	for _, frame := range []int{1, 2, 125, 249} {
		positions, ok := obj.Curves.Sample(frame)
		if !ok {
			t.Fatalf("frame %d missing", frame)
		}
		tm := float64(frame) * 0.1
		for i, pos := range positions {
			want := p.Amplitude * gomath.Sin(p.Frequency*(pos.X/p.Width*float64(p.Resolution)+pos.Y/p.Depth*float64(p.Resolution))-tm)
			if gomath.Abs(pos.Z-want) > 1e-12 {
				t.Fatalf("frame %d vertex %d: z %v, want %v", frame, i, pos.Z, want)
			}
			if pos.X != obj.Mesh.Vertices[i].X || pos.Y != obj.Mesh.Vertices[i].Y {
				t.Fatalf("frame %d vertex %d: xy drifted", frame, i)
			}
		}
	}
}

func TestOcean_InvalidParams(t *testing.T) {
	p := oceanParams()
	p.Width = 0
	sc := scene.New(nil)
	_, _, err := Ocean(context.Background(), sc, "p", p, DefaultSettings())
	if !errors.Is(err, water.ErrInvalidParameter) {
		t.Errorf("expected invalid parameter error, got %v", err)
	}
	if len(sc.Names()) != 0 {
		t.Error("no object should be added on invalid params")
	}
}

func TestOcean_ClearsExistingObjects(t *testing.T) {
	sc := scene.New(nil)
	old, _ := water.CreateGrid("Old", 2, 2, 2)
	if _, err := sc.AddObject(old); err != nil {
		t.Fatalf("AddObject failed: %v", err)
	}

	p := water.Params{Width: 10, Depth: 10, Resolution: 4, Frequency: 1, Amplitude: 1}
	settings := Settings{FirstFrame: 1, LastFrame: 3, TimeStep: DefaultTimeStep}
	if _, _, err := Ocean(context.Background(), sc, water.DefaultPlaneName, p, settings); err != nil {
		t.Fatalf("Ocean failed: %v", err)
	}

	names := sc.Names()
	if len(names) != 1 || names[0] != water.DefaultPlaneName {
		t.Errorf("expected only %q in scene, got %v", water.DefaultPlaneName, names)
	}
	if _, err := sc.Object("Old"); !errors.Is(err, scene.ErrNoSuchObject) {
		t.Errorf("expected Old to be removed, got %v", err)
	}
}

func TestRun_Cancelled(t *testing.T) {
	p := water.Params{Width: 10, Depth: 10, Resolution: 4, Frequency: 1, Amplitude: 1}
	sc := scene.New(nil)
	grid, _ := water.CreateGrid("p", 10, 10, 4)
	obj, _ := sc.AddObject(grid)

	ctx, cancel := context.WithCancel(context.Background())
	b, err := New(sc, p, DefaultSettings(), WithFrameFunc(func(frame int, _ float64, _ []float64) {
		if frame == 10 {
			cancel()
		}
	}))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	res, err := b.Run(ctx, obj)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if res.Frames != 10 {
		t.Errorf("expected 10 committed frames, got %d", res.Frames)
	}
	first, last, ok := obj.Curves.FrameRange()
	if !ok || first != 1 || last != 10 {
		t.Errorf("expected keyed range 1..10, got %d..%d", first, last)
	}
}

func TestRun_MeshMismatch(t *testing.T) {
	sc := scene.New(nil)
	grid, _ := water.CreateGrid("p", 10, 10, 8)
	obj, _ := sc.AddObject(grid)

	b, err := New(sc, oceanParams(), DefaultSettings())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if _, err := b.Run(context.Background(), obj); !errors.Is(err, ErrMeshMismatch) {
		t.Errorf("expected ErrMeshMismatch, got %v", err)
	}
}
