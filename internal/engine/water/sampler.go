package water

import (
	"context"
	gomath "math"
	"runtime"

	"golang.org/x/sync/errgroup"
)

// minChunk keeps tiny meshes on a single goroutine.
const minChunk = 1024

// Sampler evaluates the height field over a surface, splitting the vertex
// range across workers. Results do not depend on the worker count.
type Sampler struct {
	params  Params
	workers int
}

// NewSampler validates p and returns a sampler. workers <= 0 means GOMAXPROCS.
func NewSampler(p Params, workers int) (*Sampler, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	return &Sampler{params: p, workers: workers}, nil
}

// Params returns the sampler's wave parameters.
func (s *Sampler) Params() Params {
	return s.params
}

// Heights computes the new height of every vertex of surf at time t without
// touching surf. dst is reused when large enough.
func (s *Sampler) Heights(ctx context.Context, surf Surface, t float64, dst []float64) ([]float64, error) {
	if gomath.IsInf(t, 0) || gomath.IsNaN(t) {
		return nil, ErrInvalidTime
	}

	n := surf.VertexCount()
	if cap(dst) < n {
		dst = make([]float64, n)
	}
	dst = dst[:n]

	chunk := (n + s.workers - 1) / s.workers
	if chunk < minChunk {
		chunk = minChunk
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers)
	for lo := 0; lo < n; lo += chunk {
		hi := min(lo+chunk, n)
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			for i := lo; i < hi; i++ {
				p := surf.Position(i)
				dst[i] = Height(s.params, p.X, p.Y, t)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return dst, nil
}

// Apply overwrites the height of every vertex of surf with the field at t.
// Heights are computed in parallel and committed on the calling goroutine.
func (s *Sampler) Apply(ctx context.Context, surf Surface, t float64) error {
	heights, err := s.Heights(ctx, surf, t, nil)
	if err != nil {
		return err
	}
	Commit(surf, heights)
	return nil
}

// Commit writes precomputed heights onto surf.
func Commit(surf Surface, heights []float64) {
	for i, z := range heights {
		surf.SetHeight(i, z)
	}
}

// Apply is the single-threaded form of Sampler.Apply.
func Apply(surf Surface, p Params, t float64) error {
	s, err := NewSampler(p, 1)
	if err != nil {
		return err
	}
	return s.Apply(context.Background(), surf, t)
}
