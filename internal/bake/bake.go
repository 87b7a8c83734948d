// Package bake drives the frame loop: evaluate the wave, commit it to the
// mesh, and record a keyframe, one frame at a time in increasing order.
package bake

import (
	"context"
	"errors"
	"fmt"
	gomath "math"
	"time"

	"go.uber.org/zap"

	"github.com/Faultbox/oceanbake/internal/engine/anim"
	"github.com/Faultbox/oceanbake/internal/engine/scene"
	"github.com/Faultbox/oceanbake/internal/engine/water"
)

// Defaults reproduce the reference ocean run.
const (
	DefaultFirstFrame = 1
	DefaultLastFrame  = 249
	DefaultTimeStep   = 0.1
)

// Settings errors.
var (
	ErrInvalidFrameRange = errors.New("invalid frame range")
	ErrInvalidTimeStep   = errors.New("time step must be finite")
	ErrMeshMismatch      = errors.New("mesh does not match wave resolution")
)

// Settings controls the frame loop.
type Settings struct {
	FirstFrame int
	LastFrame  int
	TimeStep   float64
	Workers    int // 0 = GOMAXPROCS
}

// DefaultSettings returns frames 1..249 at 0.1 time units per frame.
func DefaultSettings() Settings {
	return Settings{
		FirstFrame: DefaultFirstFrame,
		LastFrame:  DefaultLastFrame,
		TimeStep:   DefaultTimeStep,
	}
}

// Validate checks the frame range and time step.
func (s Settings) Validate() error {
	if s.FirstFrame < 1 || s.LastFrame < s.FirstFrame {
		return fmt.Errorf("%w: %d..%d", ErrInvalidFrameRange, s.FirstFrame, s.LastFrame)
	}
	if gomath.IsInf(s.TimeStep, 0) || gomath.IsNaN(s.TimeStep) {
		return ErrInvalidTimeStep
	}
	return nil
}

// FrameCount returns the number of frames in the range.
func (s Settings) FrameCount() int {
	return s.LastFrame - s.FirstFrame + 1
}

// TimeAt returns the wave time for frame.
func (s Settings) TimeAt(frame int) float64 {
	return float64(frame) * s.TimeStep
}

// FrameFunc is called after a frame has been committed and keyed.
// heights is only valid for the duration of the call.
type FrameFunc func(frame int, t float64, heights []float64)

// Result summarises a completed run.
type Result struct {
	Frames    int
	Vertices  int
	Keyframes int
	Elapsed   time.Duration
}

// Baker runs the frame loop for one object.
type Baker struct {
	scene    *scene.Scene
	sampler  *water.Sampler
	settings Settings
	log      *zap.Logger
	onFrame  FrameFunc
}

// Option configures a Baker.
type Option func(*Baker)

// WithLogger sets the logger used for progress messages.
func WithLogger(log *zap.Logger) Option {
	return func(b *Baker) {
		if log != nil {
			b.log = log
		}
	}
}

// WithFrameFunc registers a callback invoked after every frame.
func WithFrameFunc(fn FrameFunc) Option {
	return func(b *Baker) {
		b.onFrame = fn
	}
}

// New validates params and settings and returns a Baker bound to sc.
func New(sc *scene.Scene, params water.Params, settings Settings, opts ...Option) (*Baker, error) {
	if err := settings.Validate(); err != nil {
		return nil, err
	}
	sampler, err := water.NewSampler(params, settings.Workers)
	if err != nil {
		return nil, err
	}
	b := &Baker{
		scene:    sc,
		sampler:  sampler,
		settings: settings,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Run animates obj over the configured frame range. Frame N is committed
// and keyed before frame N+1 is evaluated. Cancellation stops the loop
// between frames; keyframes already written stay in place.
func (b *Baker) Run(ctx context.Context, obj *scene.Object) (Result, error) {
	if obj == nil || obj.Mesh == nil {
		return Result{}, scene.ErrNilMesh
	}
	p := b.sampler.Params()
	if obj.Mesh.Resolution != p.Resolution {
		return Result{}, fmt.Errorf("%w: mesh %d, wave %d", ErrMeshMismatch, obj.Mesh.Resolution, p.Resolution)
	}

	start := time.Now()
	res := Result{Vertices: obj.Mesh.VertexCount()}
	heights := make([]float64, obj.Mesh.VertexCount())
	logEvery := max(b.settings.FrameCount()/10, 1)

	b.log.Info("bake started",
		zap.String("object", obj.Name),
		zap.Int("vertices", res.Vertices),
		zap.Int("first_frame", b.settings.FirstFrame),
		zap.Int("last_frame", b.settings.LastFrame),
		zap.Float64("time_step", b.settings.TimeStep))

	for frame := b.settings.FirstFrame; frame <= b.settings.LastFrame; frame++ {
		if err := ctx.Err(); err != nil {
			return res, fmt.Errorf("bake interrupted at frame %d: %w", frame, err)
		}

		t := b.settings.TimeAt(frame)
		if err := b.scene.SetFrame(frame); err != nil {
			return res, err
		}

		var err error
		heights, err = b.sampler.Heights(ctx, obj.Mesh, t, heights)
		if err != nil {
			return res, fmt.Errorf("frame %d: %w", frame, err)
		}
		water.Commit(obj.Mesh, heights)

		if err := b.scene.KeyframeInsert(obj, frame); err != nil {
			return res, fmt.Errorf("frame %d: %w", frame, err)
		}
		res.Frames++
		res.Keyframes += res.Vertices * anim.NumChannels

		if b.onFrame != nil {
			b.onFrame(frame, t, heights)
		}
		if res.Frames%logEvery == 0 {
			b.log.Debug("frame baked", zap.Int("frame", frame), zap.Float64("time", t))
		}
	}

	res.Elapsed = time.Since(start)
	b.log.Info("bake finished",
		zap.String("object", obj.Name),
		zap.Int("frames", res.Frames),
		zap.Int("keyframes", res.Keyframes),
		zap.Duration("elapsed", res.Elapsed))
	return res, nil
}

// Ocean builds the grid described by params, replaces every object in sc
// with it under name and bakes it. It is the whole reference procedure in
// one call.
func Ocean(ctx context.Context, sc *scene.Scene, name string, params water.Params, settings Settings, opts ...Option) (*scene.Object, Result, error) {
	b, err := New(sc, params, settings, opts...)
	if err != nil {
		return nil, Result{}, err
	}
	grid, err := water.CreateGrid(name, params.Width, params.Depth, params.Resolution)
	if err != nil {
		return nil, Result{}, err
	}
	sc.RemoveAll()
	obj, err := sc.AddObject(grid)
	if err != nil {
		return nil, Result{}, err
	}
	res, err := b.Run(ctx, obj)
	return obj, res, err
}
