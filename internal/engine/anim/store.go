package anim

import (
	"fmt"
	"sync"

	"github.com/Faultbox/oceanbake/pkg/math"
)

// Store receives keyframes for per-vertex position channels.
type Store interface {
	Insert(vertex int, ch Channel, frame int, value float64) error
}

// MemoryStore keeps every curve in memory. It is safe for concurrent use;
// inserts for different vertices do not contend beyond a short lock.
type MemoryStore struct {
	mu     sync.RWMutex
	curves [][NumChannels]Curve
}

// NewMemoryStore creates a store for vertexCount vertices.
func NewMemoryStore(vertexCount int) *MemoryStore {
	return &MemoryStore{curves: make([][NumChannels]Curve, vertexCount)}
}

// Insert implements Store.
func (s *MemoryStore) Insert(vertex int, ch Channel, frame int, value float64) error {
	if int(ch) >= NumChannels {
		return fmt.Errorf("unknown channel %v", ch)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if vertex < 0 || vertex >= len(s.curves) {
		return fmt.Errorf("%w: %d", ErrUnknownVertex, vertex)
	}
	if err := s.curves[vertex][ch].Insert(frame, value); err != nil {
		return fmt.Errorf("vertex %d channel %s: %w", vertex, ch, err)
	}
	return nil
}

// InsertPosition records all three channels of p for vertex at frame.
func (s *MemoryStore) InsertPosition(vertex, frame int, p math.Vec3) error {
	for ch, v := range [NumChannels]float64{p.X, p.Y, p.Z} {
		if err := s.Insert(vertex, Channel(ch), frame, v); err != nil {
			return err
		}
	}
	return nil
}

// VertexCount returns the number of vertices tracked.
func (s *MemoryStore) VertexCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.curves)
}

// Curve returns a copy of the curve for vertex/ch.
func (s *MemoryStore) Curve(vertex int, ch Channel) (Curve, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if vertex < 0 || vertex >= len(s.curves) {
		return Curve{}, fmt.Errorf("%w: %d", ErrUnknownVertex, vertex)
	}
	if int(ch) >= NumChannels {
		return Curve{}, fmt.Errorf("unknown channel %v", ch)
	}
	src := s.curves[vertex][ch].Keys
	return Curve{Keys: append([]Keyframe(nil), src...)}, nil
}

// FrameRange returns the frame span of vertex 0's Z curve. Every vertex is
// keyed together, so this is the span of the whole store.
func (s *MemoryStore) FrameRange() (first, last int, ok bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.curves) == 0 {
		return 0, 0, false
	}
	return s.curves[0][ChannelZ].FrameRange()
}

// KeyframeCount returns the total number of keyframes across all curves.
func (s *MemoryStore) KeyframeCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for i := range s.curves {
		for ch := range s.curves[i] {
			n += s.curves[i][ch].Len()
		}
	}
	return n
}

// Sample returns the recorded positions of every vertex at frame.
// ok is false if any vertex lacks a key at that frame.
func (s *MemoryStore) Sample(frame int) ([]math.Vec3, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]math.Vec3, len(s.curves))
	for i := range s.curves {
		var vals [NumChannels]float64
		for ch := range s.curves[i] {
			v, found := s.curves[i][ch].Value(frame)
			if !found {
				return nil, false
			}
			vals[ch] = v
		}
		out[i] = math.Vec3{X: vals[0], Y: vals[1], Z: vals[2]}
	}
	return out, true
}
