// SPDX-License-Identifier: EPL-2.0

package aiff

import (
	"bytes"
	"errors"
	"io"
	"math"
	"testing"

	goaudio "github.com/go-audio/audio"
)

// stubPCM serves ints from samples, at most step per call.
type stubPCM struct {
	samples []int
	step    int
	err     error
}

func (s *stubPCM) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	if len(s.samples) == 0 {
		return 0, nil
	}
	n := min(len(buf.Data), len(s.samples))
	if s.step > 0 {
		n = min(n, s.step)
	}
	copy(buf.Data, s.samples[:n])
	s.samples = s.samples[n:]
	return n, nil
}

func newSource(channels, bits int, dec pcmReader) *source {
	return &source{
		dec:      dec,
		format:   &goaudio.Format{SampleRate: 44100, NumChannels: channels},
		bitDepth: bits,
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		r    io.Reader
	}{
		{"text", bytes.NewReader([]byte("This is not AIFF data"))},
		{"wav header", bytes.NewReader([]byte("RIFF\x24\x00\x00\x00WAVEfmt "))},
		{"empty non-seeker", io.LimitReader(bytes.NewReader(nil), 0)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Decoder{}.Decode(tt.r)
			if err == nil {
				t.Fatal("Decode() error = nil, want error")
			}
		})
	}
}

func TestSource_ReadSamples_Scaling(t *testing.T) {
	t.Parallel()

	tests := []struct {
		bits int
		raw  []int
		want []float32
	}{
		{8, []int{-128, -64, 0, 64, 127}, []float32{-1, -0.5, 0, 0.5, 127.0 / 128}},
		{16, []int{-32768, -16384, 0, 16384}, []float32{-1, -0.5, 0, 0.5}},
		{24, []int{-8388608, 4194304}, []float32{-1, 0.5}},
		{32, []int{-2147483648, 1073741824}, []float32{-1, 0.5}},
	}

	for _, tt := range tests {
		t.Run("", func(t *testing.T) {
			t.Parallel()
			src := newSource(1, tt.bits, &stubPCM{samples: tt.raw})
			buf := make([]float32, 16)
			n, err := src.ReadSamples(buf)
			if err != io.EOF {
				t.Fatalf("ReadSamples() error = %v, want EOF", err)
			}
			if n != len(tt.want) {
				t.Fatalf("n = %d, want %d", n, len(tt.want))
			}
			for i, w := range tt.want {
				if math.Abs(float64(buf[i]-w)) > 1e-6 {
					t.Errorf("%d-bit sample[%d] = %f, want %f", tt.bits, i, buf[i], w)
				}
			}
		})
	}
}

func TestSource_ReadSamples_Chunked(t *testing.T) {
	t.Parallel()

	raw := make([]int, 300)
	for i := range raw {
		raw[i] = i * 100
	}
	src := newSource(3, 16, &stubPCM{samples: raw})

	var got []float32
	buf := make([]float32, 64)
	for {
		n, err := src.ReadSamples(buf)
		if n%3 != 0 {
			t.Fatalf("n = %d, not a whole number of frames", n)
		}
		got = append(got, buf[:n]...)
		if err == io.EOF {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
	if len(got) != len(raw) {
		t.Fatalf("got %d samples, want %d", len(got), len(raw))
	}
	if got[299] != float32(29900)/32768 {
		t.Errorf("last sample = %f", got[299])
	}
}

func TestSource_ReadSamples_DropsPartialFrame(t *testing.T) {
	t.Parallel()

	src := newSource(2, 16, &stubPCM{samples: []int{1, 2, 3}})
	n, err := src.ReadSamples(make([]float32, 8))
	if n != 2 || err != io.EOF {
		t.Errorf("ReadSamples() = %d, %v; want 2, EOF", n, err)
	}
	n, err = src.ReadSamples(make([]float32, 8))
	if n != 0 || err != io.EOF {
		t.Errorf("ReadSamples() after EOF = %d, %v; want 0, EOF", n, err)
	}
}

func TestSource_ReadSamples_EmptyDst(t *testing.T) {
	t.Parallel()

	src := newSource(2, 16, &stubPCM{samples: []int{1, 2}})
	n, err := src.ReadSamples(make([]float32, 1))
	if n != 0 || err != nil {
		t.Errorf("ReadSamples() = %d, %v; want 0, nil", n, err)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	src := newSource(1, 16, &stubPCM{err: io.ErrUnexpectedEOF})
	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("error = %v, want ErrUnexpectedEOF", err)
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := newSource(2, 16, &stubPCM{})
	if src.SampleRate() != 44100 || src.Channels() != 2 {
		t.Errorf("format = %d/%d, want 44100/2", src.SampleRate(), src.Channels())
	}
	if src.BufSize() != 4096 {
		t.Errorf("BufSize() = %d, want 4096", src.BufSize())
	}
	if err := src.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestErrors_Distinct(t *testing.T) {
	t.Parallel()

	errs := []error{ErrNotAiffFile, ErrUnsupportedBitDepth, ErrUnsupportedAiffLayout}
	for i, a := range errs {
		for j, b := range errs {
			if i != j && errors.Is(a, b) {
				t.Errorf("%v matches %v", a, b)
			}
		}
	}
}
