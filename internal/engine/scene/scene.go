// Package scene holds the objects being animated and the current frame.
// It stands in for a host application's scene graph: objects are passed
// around explicitly and there is no notion of an active selection.
package scene

import (
	"errors"
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/Faultbox/oceanbake/internal/engine/anim"
	"github.com/Faultbox/oceanbake/internal/engine/water"
)

// Scene errors.
var (
	ErrNoSuchObject = errors.New("no such object")
	ErrNilMesh      = errors.New("object mesh is nil")
)

// Object is a named mesh together with its keyframed position curves.
type Object struct {
	Name   string
	Mesh   *water.Grid
	Curves *anim.MemoryStore
}

// Scene manages animated objects and the frame pointer.
type Scene struct {
	objects map[string]*Object
	frame   int
	log     *zap.Logger
}

// New creates an empty scene positioned at frame 1.
func New(log *zap.Logger) *Scene {
	if log == nil {
		log = zap.NewNop()
	}
	return &Scene{
		objects: make(map[string]*Object),
		frame:   1,
		log:     log,
	}
}

// AddObject links grid into the scene under grid.Name with an empty curve
// store. An existing object with the same name is replaced.
func (s *Scene) AddObject(grid *water.Grid) (*Object, error) {
	if grid == nil {
		return nil, ErrNilMesh
	}
	if old, ok := s.objects[grid.Name]; ok {
		s.log.Debug("replacing object",
			zap.String("name", grid.Name),
			zap.Int("old_vertices", old.Mesh.VertexCount()))
	}
	obj := &Object{
		Name:   grid.Name,
		Mesh:   grid,
		Curves: anim.NewMemoryStore(grid.VertexCount()),
	}
	s.objects[grid.Name] = obj
	s.log.Debug("object added",
		zap.String("name", obj.Name),
		zap.Int("vertices", grid.VertexCount()))
	return obj, nil
}

// RemoveAll deletes every object from the scene.
func (s *Scene) RemoveAll() {
	clear(s.objects)
}

// Object returns the object named name.
func (s *Scene) Object(name string) (*Object, error) {
	obj, ok := s.objects[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrNoSuchObject, name)
	}
	return obj, nil
}

// Names returns object names in sorted order.
func (s *Scene) Names() []string {
	names := make([]string, 0, len(s.objects))
	for name := range s.objects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Frame returns the current frame.
func (s *Scene) Frame() int {
	return s.frame
}

// SetFrame moves the frame pointer.
func (s *Scene) SetFrame(frame int) error {
	if frame < 1 {
		return fmt.Errorf("%w: got %d", anim.ErrInvalidFrame, frame)
	}
	s.frame = frame
	return nil
}

// KeyframeInsert snapshots the full position (x, y and z) of every vertex of
// obj into its curves at frame.
func (s *Scene) KeyframeInsert(obj *Object, frame int) error {
	if obj == nil || obj.Mesh == nil {
		return ErrNilMesh
	}
	for i, p := range obj.Mesh.Vertices {
		if err := obj.Curves.InsertPosition(i, frame, p); err != nil {
			return fmt.Errorf("keyframe %s: %w", obj.Name, err)
		}
	}
	return nil
}
