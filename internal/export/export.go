// Package export writes baked curves to disk as OKF or YAML.
package export

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/Faultbox/oceanbake/internal/engine/anim"
	"github.com/Faultbox/oceanbake/internal/engine/scene"
	"github.com/Faultbox/oceanbake/pkg/formats"
)

// Format names accepted by Write.
const (
	FormatOKF  = "okf"
	FormatYAML = "yaml"
)

// Export errors.
var (
	ErrUnknownFormat = errors.New("unknown export format")
	ErrEmptyCurves   = errors.New("object has no keyframes")
	ErrRaggedCurves  = errors.New("curves do not share a contiguous frame range")
)

// FormatFromPath picks a format from a file extension, defaulting to OKF.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatOKF
	}
}

// ToOKF packs the curves of obj into a dense OKF block.
func ToOKF(obj *scene.Object) (*formats.OKF, error) {
	first, last, ok := obj.Curves.FrameRange()
	if !ok {
		return nil, ErrEmptyCurves
	}
	vertices := obj.Curves.VertexCount()
	okf := formats.NewOKF(vertices, first, last-first+1)

	for v := range vertices {
		for _, ch := range anim.Channels {
			c, err := obj.Curves.Curve(v, ch)
			if err != nil {
				return nil, err
			}
			if c.Len() != last-first+1 {
				return nil, fmt.Errorf("%w: vertex %d channel %s has %d keys", ErrRaggedCurves, v, ch, c.Len())
			}
			for _, k := range c.Keys {
				if err := okf.Set(v, int(ch), k.Frame, k.Value); err != nil {
					return nil, fmt.Errorf("%w: %v", ErrRaggedCurves, err)
				}
			}
		}
	}
	return okf, nil
}

// Document is the YAML layout of an exported object.
type Document struct {
	Object     string        `yaml:"object"`
	FirstFrame int           `yaml:"first_frame"`
	LastFrame  int           `yaml:"last_frame"`
	Vertices   []VertexCurve `yaml:"vertices"`
}

// VertexCurve holds the three position curves of one vertex.
type VertexCurve struct {
	Index int             `yaml:"index"`
	X     []anim.Keyframe `yaml:"x,flow"`
	Y     []anim.Keyframe `yaml:"y,flow"`
	Z     []anim.Keyframe `yaml:"z,flow"`
}

// ToDocument converts the curves of obj into a YAML document.
func ToDocument(obj *scene.Object) (*Document, error) {
	first, last, ok := obj.Curves.FrameRange()
	if !ok {
		return nil, ErrEmptyCurves
	}
	doc := &Document{
		Object:     obj.Name,
		FirstFrame: first,
		LastFrame:  last,
		Vertices:   make([]VertexCurve, obj.Curves.VertexCount()),
	}
	for v := range doc.Vertices {
		vc := VertexCurve{Index: v}
		for _, ch := range anim.Channels {
			c, err := obj.Curves.Curve(v, ch)
			if err != nil {
				return nil, err
			}
			switch ch {
			case anim.ChannelX:
				vc.X = c.Keys
			case anim.ChannelY:
				vc.Y = c.Keys
			case anim.ChannelZ:
				vc.Z = c.Keys
			}
		}
		doc.Vertices[v] = vc
	}
	return doc, nil
}

// Write encodes obj's curves to w in the given format.
func Write(w io.Writer, obj *scene.Object, format string) error {
	switch format {
	case FormatOKF:
		okf, err := ToOKF(obj)
		if err != nil {
			return err
		}
		return okf.Encode(w)
	case FormatYAML:
		doc, err := ToDocument(obj)
		if err != nil {
			return err
		}
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteFile writes obj's curves to path, creating parent directories.
// An empty format is inferred from the file extension.
func WriteFile(path string, obj *scene.Object, format string) error {
	if format == "" {
		format = FormatFromPath(path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Write(f, obj, format); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
