package formats

import (
	"bytes"
	"encoding/binary"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

// createTestOKF creates a minimal valid OKF file for testing.
func createTestOKF(vertexCount, firstFrame, frameCount uint32, fill func(i int) float64) []byte {
	buf := new(bytes.Buffer)

	buf.WriteString("OKFR")
	buf.WriteByte(0) // minor
	buf.WriteByte(1) // major

	binary.Write(buf, binary.LittleEndian, vertexCount)
	binary.Write(buf, binary.LittleEndian, firstFrame)
	binary.Write(buf, binary.LittleEndian, frameCount)

	n := int(vertexCount * OKFChannels * frameCount)
	for i := 0; i < n; i++ {
		binary.Write(buf, binary.LittleEndian, fill(i))
	}
	return buf.Bytes()
}

func TestParseOKF_ValidFile(t *testing.T) {
	data := createTestOKF(2, 1, 4, func(i int) float64 { return float64(i) })

	okf, err := ParseOKF(data)
	if err != nil {
		t.Fatalf("ParseOKF failed: %v", err)
	}

	if okf.Version.Major != 1 || okf.Version.Minor != 0 {
		t.Errorf("expected version 1.0, got %s", okf.Version)
	}
	if okf.VertexCount != 2 || okf.FirstFrame != 1 || okf.FrameCount != 4 {
		t.Errorf("unexpected header: %+v", okf)
	}
	if okf.LastFrame() != 4 {
		t.Errorf("expected last frame 4, got %d", okf.LastFrame())
	}
	if len(okf.Values) != 24 {
		t.Fatalf("expected 24 values, got %d", len(okf.Values))
	}

	// vertex 1, channel z (2), frame 3 => ((1*3)+2)*4 + 2 = 22
	v, err := okf.Value(1, 2, 3)
	if err != nil {
		t.Fatalf("Value failed: %v", err)
	}
	if v != 22 {
		t.Errorf("expected 22, got %v", v)
	}
}

func TestParseOKF_InvalidMagic(t *testing.T) {
	data := createTestOKF(1, 1, 1, func(int) float64 { return 0 })
	copy(data, "XXXX")

	if _, err := ParseOKF(data); !errors.Is(err, ErrInvalidOKFMagic) {
		t.Errorf("expected ErrInvalidOKFMagic, got %v", err)
	}
}

func TestParseOKF_UnsupportedVersion(t *testing.T) {
	data := createTestOKF(1, 1, 1, func(int) float64 { return 0 })
	data[5] = 9

	if _, err := ParseOKF(data); !errors.Is(err, ErrUnsupportedOKFVersion) {
		t.Errorf("expected ErrUnsupportedOKFVersion, got %v", err)
	}
}

func TestParseOKF_TruncatedData(t *testing.T) {
	if _, err := ParseOKF([]byte("OKFR")); !errors.Is(err, ErrTruncatedOKFData) {
		t.Errorf("expected ErrTruncatedOKFData, got %v", err)
	}

	data := createTestOKF(3, 1, 5, func(int) float64 { return 1 })
	if _, err := ParseOKF(data[:len(data)-8]); !errors.Is(err, ErrTruncatedOKFData) {
		t.Errorf("expected ErrTruncatedOKFData for short body, got %v", err)
	}
}

func TestParseOKF_OversizedHeader(t *testing.T) {
	tests := []struct {
		name        string
		vertexCount uint32
		frameCount  uint32
	}{
		// 3<<30 * 3 * 1<<31 wraps a uint64 to 2^61, and *8 wraps to 0.
		{"count wraps", 3 << 30, 1 << 31},
		{"max counts", ^uint32(0), ^uint32(0)},
		{"one vertex many frames", 1, ^uint32(0)},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			// Header only: no value bytes follow.
			buf := new(bytes.Buffer)
			buf.WriteString("OKFR")
			buf.WriteByte(0)
			buf.WriteByte(1)
			binary.Write(buf, binary.LittleEndian, tc.vertexCount)
			binary.Write(buf, binary.LittleEndian, uint32(1))
			binary.Write(buf, binary.LittleEndian, tc.frameCount)
			if buf.Len() != okfHeaderSize {
				t.Fatalf("expected %d byte header, got %d", okfHeaderSize, buf.Len())
			}

			if _, err := ParseOKF(buf.Bytes()); !errors.Is(err, ErrTruncatedOKFData) {
				t.Errorf("expected ErrTruncatedOKFData, got %v", err)
			}
		})
	}
}

func TestParseOKF_ZeroFrames(t *testing.T) {
	data := createTestOKF(1<<20, 1, 0, func(int) float64 { return 0 })
	okf, err := ParseOKF(data)
	if err != nil {
		t.Fatalf("ParseOKF failed: %v", err)
	}
	if len(okf.Values) != 0 {
		t.Errorf("expected no values, got %d", len(okf.Values))
	}
}

func TestOKF_EncodeParse(t *testing.T) {
	okf := NewOKF(3, 1, 249)
	for v := range 3 {
		for ch := range OKFChannels {
			for f := 1; f <= 249; f++ {
				if err := okf.Set(v, ch, f, float64(v)*1000+float64(ch)*100+float64(f)*0.1); err != nil {
					t.Fatalf("Set failed: %v", err)
				}
			}
		}
	}

	var buf bytes.Buffer
	if err := okf.Encode(&buf); err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	if buf.Len() != okfHeaderSize+3*3*249*8 {
		t.Errorf("unexpected encoded size %d", buf.Len())
	}

	got, err := ParseOKF(buf.Bytes())
	if err != nil {
		t.Fatalf("ParseOKF failed: %v", err)
	}
	for i := range okf.Values {
		if got.Values[i] != okf.Values[i] {
			t.Fatalf("value %d: got %v, want %v", i, got.Values[i], okf.Values[i])
		}
	}
}

func TestOKF_OutOfRange(t *testing.T) {
	okf := NewOKF(2, 5, 3)
	tests := []struct {
		name                   string
		vertex, channel, frame int
	}{
		{"vertex", 2, 0, 5},
		{"channel", 0, 3, 5},
		{"before first", 0, 0, 4},
		{"after last", 0, 0, 8},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := okf.Set(tc.vertex, tc.channel, tc.frame, 1); !errors.Is(err, ErrOKFOutOfRange) {
				t.Errorf("expected ErrOKFOutOfRange, got %v", err)
			}
		})
	}
}

func TestOKF_EncodeShapeMismatch(t *testing.T) {
	okf := NewOKF(2, 1, 2)
	okf.Values = okf.Values[:3]
	if err := okf.Encode(new(bytes.Buffer)); err == nil {
		t.Error("expected error when values do not match header")
	}
}

func TestLoadOKF(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ocean.okf")
	data := createTestOKF(1, 1, 2, func(i int) float64 { return -float64(i) })
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("failed to write test file: %v", err)
	}

	okf, err := LoadOKF(path)
	if err != nil {
		t.Fatalf("LoadOKF failed: %v", err)
	}
	if okf.Values[5] != -5 {
		t.Errorf("expected -5, got %v", okf.Values[5])
	}

	if _, err := LoadOKF(filepath.Join(t.TempDir(), "missing.okf")); err == nil {
		t.Error("expected error for missing file")
	}
}
