// Package anim stores keyframed vertex channels.
package anim

import (
	"errors"
	"fmt"
)

// Keyframe errors.
var (
	ErrInvalidFrame  = errors.New("frame must be at least 1")
	ErrFrameOrder    = errors.New("keyframe frame must be strictly increasing")
	ErrUnknownVertex = errors.New("vertex index out of range")
)

// Channel identifies one coordinate of the position data path.
type Channel uint8

// Position channels.
const (
	ChannelX Channel = iota
	ChannelY
	ChannelZ
)

// NumChannels is the number of position channels recorded per keyframe.
const NumChannels = 3

// Channels lists the position channels in storage order.
var Channels = [NumChannels]Channel{ChannelX, ChannelY, ChannelZ}

// String returns the channel's axis name.
func (c Channel) String() string {
	switch c {
	case ChannelX:
		return "x"
	case ChannelY:
		return "y"
	case ChannelZ:
		return "z"
	default:
		return fmt.Sprintf("Channel(%d)", uint8(c))
	}
}

// Keyframe is one sampled value at an integer frame.
type Keyframe struct {
	Frame int     `yaml:"frame"`
	Value float64 `yaml:"value"`
}

// Curve is an append-only list of keyframes sorted by frame.
type Curve struct {
	Keys []Keyframe
}

// Insert appends a keyframe. Frames must be >= 1 and strictly increasing;
// an existing keyframe is never overwritten.
func (c *Curve) Insert(frame int, value float64) error {
	if frame < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidFrame, frame)
	}
	if n := len(c.Keys); n > 0 && c.Keys[n-1].Frame >= frame {
		return fmt.Errorf("%w: frame %d after %d", ErrFrameOrder, frame, c.Keys[n-1].Frame)
	}
	c.Keys = append(c.Keys, Keyframe{Frame: frame, Value: value})
	return nil
}

// Len returns the number of keyframes.
func (c *Curve) Len() int {
	return len(c.Keys)
}

// Value returns the value recorded at exactly frame.
// Interpolation between keys is left to the consumer.
func (c *Curve) Value(frame int) (float64, bool) {
	lo, hi := 0, len(c.Keys)
	for lo < hi {
		mid := (lo + hi) / 2
		if c.Keys[mid].Frame < frame {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	if lo < len(c.Keys) && c.Keys[lo].Frame == frame {
		return c.Keys[lo].Value, true
	}
	return 0, false
}

// FrameRange returns the first and last recorded frames, or ok=false if empty.
func (c *Curve) FrameRange() (first, last int, ok bool) {
	if len(c.Keys) == 0 {
		return 0, 0, false
	}
	return c.Keys[0].Frame, c.Keys[len(c.Keys)-1].Frame, true
}
