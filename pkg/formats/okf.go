package formats

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// OKF format errors.
var (
	ErrInvalidOKFMagic       = errors.New("invalid OKF magic: expected 'OKFR'")
	ErrUnsupportedOKFVersion = errors.New("unsupported OKF version")
	ErrTruncatedOKFData      = errors.New("truncated OKF data")
	ErrOKFOutOfRange         = errors.New("OKF index out of range")
)

const (
	okfMagic      = "OKFR"
	okfHeaderSize = 4 + 2 + 3*4

	// OKFChannels is the number of position channels stored per vertex.
	OKFChannels = 3
)

// OKFVersion represents the OKF file version.
type OKFVersion struct {
	Major uint8
	Minor uint8
}

// String returns the version as "Major.Minor".
func (v OKFVersion) String() string {
	return fmt.Sprintf("%d.%d", v.Major, v.Minor)
}

// OKFCurrentVersion is the version written by Encode.
var OKFCurrentVersion = OKFVersion{Major: 1, Minor: 0}

// OKF holds baked position curves for a mesh. Every vertex is keyed on the
// same contiguous frame range, so the curves are stored as a dense block:
// Values[((vertex*3)+channel)*FrameCount + (frame-FirstFrame)].
type OKF struct {
	Version     OKFVersion
	VertexCount uint32
	FirstFrame  uint32
	FrameCount  uint32
	Values      []float64
}

// NewOKF allocates an empty OKF for the given shape.
func NewOKF(vertexCount, firstFrame, frameCount int) *OKF {
	return &OKF{
		Version:     OKFCurrentVersion,
		VertexCount: uint32(vertexCount),
		FirstFrame:  uint32(firstFrame),
		FrameCount:  uint32(frameCount),
		Values:      make([]float64, vertexCount*OKFChannels*frameCount),
	}
}

// LastFrame returns the final frame stored.
func (o *OKF) LastFrame() int {
	return int(o.FirstFrame) + int(o.FrameCount) - 1
}

func (o *OKF) offset(vertex, channel, frame int) (int, error) {
	f := frame - int(o.FirstFrame)
	if vertex < 0 || vertex >= int(o.VertexCount) ||
		channel < 0 || channel >= OKFChannels ||
		f < 0 || f >= int(o.FrameCount) {
		return 0, fmt.Errorf("%w: vertex %d channel %d frame %d", ErrOKFOutOfRange, vertex, channel, frame)
	}
	return (vertex*OKFChannels+channel)*int(o.FrameCount) + f, nil
}

// Set stores the value of a channel at frame.
func (o *OKF) Set(vertex, channel, frame int, value float64) error {
	i, err := o.offset(vertex, channel, frame)
	if err != nil {
		return err
	}
	o.Values[i] = value
	return nil
}

// Value returns the value of a channel at frame.
func (o *OKF) Value(vertex, channel, frame int) (float64, error) {
	i, err := o.offset(vertex, channel, frame)
	if err != nil {
		return 0, err
	}
	return o.Values[i], nil
}

// Encode writes the OKF in little-endian binary form.
func (o *OKF) Encode(w io.Writer) error {
	want := int(o.VertexCount) * OKFChannels * int(o.FrameCount)
	if len(o.Values) != want {
		return fmt.Errorf("OKF has %d values, header describes %d", len(o.Values), want)
	}

	bw := bufio.NewWriter(w)
	bw.WriteString(okfMagic)
	// Version is stored as [minor, major]
	bw.WriteByte(OKFCurrentVersion.Minor)
	bw.WriteByte(OKFCurrentVersion.Major)

	header := []uint32{o.VertexCount, o.FirstFrame, o.FrameCount}
	if err := binary.Write(bw, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("writing OKF header: %w", err)
	}
	if err := binary.Write(bw, binary.LittleEndian, o.Values); err != nil {
		return fmt.Errorf("writing OKF values: %w", err)
	}
	return bw.Flush()
}

// ParseOKF parses an OKF file from raw bytes.
func ParseOKF(data []byte) (*OKF, error) {
	if len(data) < okfHeaderSize {
		return nil, ErrTruncatedOKFData
	}

	if string(data[0:4]) != okfMagic {
		return nil, ErrInvalidOKFMagic
	}

	version := OKFVersion{
		Major: data[5],
		Minor: data[4],
	}
	if version.Major != OKFCurrentVersion.Major {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedOKFVersion, version)
	}

	r := bytes.NewReader(data[6:])

	var header [3]uint32
	if err := binary.Read(r, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: reading header", ErrTruncatedOKFData)
	}

	o := &OKF{
		Version:     version,
		VertexCount: header[0],
		FirstFrame:  header[1],
		FrameCount:  header[2],
	}
	if o.FrameCount > 0 && o.FirstFrame < 1 {
		return nil, fmt.Errorf("invalid OKF first frame %d", o.FirstFrame)
	}

	// Compare against what the body can hold before multiplying, so huge
	// header counts cannot wrap around.
	available := uint64(r.Len()) / 8
	perVertex := uint64(OKFChannels) * uint64(o.FrameCount)
	if perVertex != 0 && uint64(o.VertexCount) > available/perVertex {
		return nil, fmt.Errorf("%w: header describes %d vertices x %d frames, body holds %d values",
			ErrTruncatedOKFData, o.VertexCount, o.FrameCount, available)
	}
	count := uint64(o.VertexCount) * perVertex

	o.Values = make([]float64, count)
	if err := binary.Read(r, binary.LittleEndian, o.Values); err != nil {
		return nil, fmt.Errorf("%w: reading values", ErrTruncatedOKFData)
	}
	return o, nil
}

// LoadOKF reads and parses an OKF file from disk.
func LoadOKF(path string) (*OKF, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseOKF(data)
}
