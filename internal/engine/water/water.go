// Package water provides the ocean plane grid and its sine height field.
package water

import (
	"errors"
	"fmt"
	gomath "math"

	"github.com/Faultbox/oceanbake/pkg/math"
)

// DefaultPlaneName is the object name used when none is configured.
const DefaultPlaneName = "OceanPlane"

// Parameter errors. All of them match ErrInvalidParameter with errors.Is.
var (
	ErrInvalidParameter  = errors.New("invalid wave parameter")
	ErrInvalidWidth      = fmt.Errorf("%w: width must be finite and greater than zero", ErrInvalidParameter)
	ErrInvalidDepth      = fmt.Errorf("%w: depth must be finite and greater than zero", ErrInvalidParameter)
	ErrInvalidResolution = fmt.Errorf("%w: resolution must be at least 1", ErrInvalidParameter)
	ErrInvalidFrequency  = fmt.Errorf("%w: frequency must be finite", ErrInvalidParameter)
	ErrInvalidAmplitude  = fmt.Errorf("%w: amplitude must be finite", ErrInvalidParameter)
	ErrInvalidTime       = fmt.Errorf("%w: time must be finite", ErrInvalidParameter)
)

// Surface is the mesh capability the wave sampler needs: read a vertex
// position and overwrite its height. *Grid implements it.
type Surface interface {
	VertexCount() int
	Position(i int) math.Vec3
	SetHeight(i int, z float64)
}

// Bounds holds the axis-aligned bounding box of a grid.
type Bounds struct {
	Min math.Vec3
	Max math.Vec3
}

// Grid is a planar lattice of Resolution x Resolution vertices centred at
// the origin in the XY plane. X and Y are fixed at creation; only Z moves.
type Grid struct {
	Name       string
	Width      float64
	Depth      float64
	Resolution int
	Vertices   []math.Vec3 // row-major: index = row*Resolution + col
	Indices    []uint32    // two triangles per cell, counter-clockwise
}

func validateExtent(width, depth float64, resolution int) error {
	if width <= 0 || gomath.IsInf(width, 0) || gomath.IsNaN(width) {
		return ErrInvalidWidth
	}
	if depth <= 0 || gomath.IsInf(depth, 0) || gomath.IsNaN(depth) {
		return ErrInvalidDepth
	}
	if resolution < 1 {
		return ErrInvalidResolution
	}
	return nil
}

// CreateGrid builds a grid spanning [-width/2, width/2] x [-depth/2, depth/2]
// with resolution vertices along each axis. A resolution of 1 yields a single
// vertex at the origin and no triangles.
func CreateGrid(name string, width, depth float64, resolution int) (*Grid, error) {
	if err := validateExtent(width, depth, resolution); err != nil {
		return nil, err
	}
	if name == "" {
		name = DefaultPlaneName
	}

	g := &Grid{
		Name:       name,
		Width:      width,
		Depth:      depth,
		Resolution: resolution,
		Vertices:   make([]math.Vec3, 0, resolution*resolution),
	}

	for row := range resolution {
		y := axisCoord(depth, row, resolution)
		for col := range resolution {
			x := axisCoord(width, col, resolution)
			g.Vertices = append(g.Vertices, math.Vec3{X: x, Y: y})
		}
	}

	if resolution > 1 {
		cells := resolution - 1
		g.Indices = make([]uint32, 0, cells*cells*6)
		for row := range cells {
			for col := range cells {
				bl := uint32(g.Index(col, row))
				br := uint32(g.Index(col+1, row))
				tl := uint32(g.Index(col, row+1))
				tr := uint32(g.Index(col+1, row+1))
				g.Indices = append(g.Indices, bl, br, tr, bl, tr, tl)
			}
		}
	}

	return g, nil
}

// axisCoord places lattice point i of n along an extent centred on zero.
func axisCoord(extent float64, i, n int) float64 {
	if n == 1 {
		return 0
	}
	half := extent / 2
	return math.Lerp(-half, half, float64(i)/float64(n-1))
}

// Index returns the vertex index for a lattice position.
func (g *Grid) Index(col, row int) int {
	return row*g.Resolution + col
}

// VertexCount returns the number of vertices.
func (g *Grid) VertexCount() int {
	return len(g.Vertices)
}

// Position returns the position of vertex i.
func (g *Grid) Position(i int) math.Vec3 {
	return g.Vertices[i]
}

// SetHeight overwrites the Z coordinate of vertex i.
func (g *Grid) SetHeight(i int, z float64) {
	g.Vertices[i].Z = z
}

// Bounds returns the current bounding box, including displaced heights.
func (g *Grid) Bounds() Bounds {
	if len(g.Vertices) == 0 {
		return Bounds{}
	}
	b := Bounds{Min: g.Vertices[0], Max: g.Vertices[0]}
	for _, v := range g.Vertices[1:] {
		b.Min = b.Min.Min(v)
		b.Max = b.Max.Max(v)
	}
	return b
}

// Params holds the immutable inputs of one wave run.
type Params struct {
	Width      float64
	Depth      float64
	Resolution int
	Frequency  float64
	Amplitude  float64
}

// Validate rejects parameters that would divide by zero or produce NaN heights.
func (p Params) Validate() error {
	if err := validateExtent(p.Width, p.Depth, p.Resolution); err != nil {
		return err
	}
	if gomath.IsInf(p.Frequency, 0) || gomath.IsNaN(p.Frequency) {
		return ErrInvalidFrequency
	}
	if gomath.IsInf(p.Amplitude, 0) || gomath.IsNaN(p.Amplitude) {
		return ErrInvalidAmplitude
	}
	return nil
}

// Height evaluates the height field at (x, y) and time t.
// u and v map plane coordinates to texture space scaled by resolution.
func Height(p Params, x, y, t float64) float64 {
	u := x / p.Width * float64(p.Resolution)
	v := y / p.Depth * float64(p.Resolution)
	return p.Amplitude * gomath.Sin(p.Frequency*(u+v)-t)
}
