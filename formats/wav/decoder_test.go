// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

type rawChunk struct {
	id   string
	data []byte
}

// buildWAV assembles a RIFF/WAVE file with the given fmt fields,
// optional chunks between fmt and data, and raw PCM bytes.
func buildWAV(formatTag, channels, sampleRate, bits int, extra []rawChunk, pcm []byte) []byte {
	body := new(bytes.Buffer)
	body.WriteString("WAVE")

	body.WriteString("fmt ")
	binary.Write(body, binary.LittleEndian, uint32(16))
	binary.Write(body, binary.LittleEndian, uint16(formatTag))
	binary.Write(body, binary.LittleEndian, uint16(channels))
	binary.Write(body, binary.LittleEndian, uint32(sampleRate))
	binary.Write(body, binary.LittleEndian, uint32(sampleRate*channels*bits/8))
	binary.Write(body, binary.LittleEndian, uint16(channels*bits/8))
	binary.Write(body, binary.LittleEndian, uint16(bits))

	for _, c := range extra {
		body.WriteString(c.id)
		binary.Write(body, binary.LittleEndian, uint32(len(c.data)))
		body.Write(c.data)
	}

	body.WriteString("data")
	binary.Write(body, binary.LittleEndian, uint32(len(pcm)))
	body.Write(pcm)

	out := new(bytes.Buffer)
	out.WriteString("RIFF")
	binary.Write(out, binary.LittleEndian, uint32(body.Len()))
	out.Write(body.Bytes())
	return out.Bytes()
}

func pcm16(samples ...int16) []byte {
	buf := new(bytes.Buffer)
	for _, s := range samples {
		binary.Write(buf, binary.LittleEndian, s)
	}
	return buf.Bytes()
}

func readAll(t *testing.T, data []byte) ([]float32, int, int) {
	t.Helper()

	src, err := Decoder{}.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	defer src.Close()

	var out []float32
	buf := make([]float32, 6)
	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, src.SampleRate(), src.Channels()
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}
}

func TestDecoder_PCM16(t *testing.T) {
	t.Parallel()

	data := buildWAV(1, 1, 8000, 16, nil, pcm16(0, 16384, 32767, -16384, -32768))
	got, rate, ch := readAll(t, data)

	if rate != 8000 || ch != 1 {
		t.Errorf("format = %d Hz/%d ch, want 8000/1", rate, ch)
	}

	want := []float32{0, 0.5, 0.99997, -0.5, -1}
	if len(got) != len(want) {
		t.Fatalf("got %d samples, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(float64(got[i]-want[i])) > 0.001 {
			t.Errorf("sample[%d] = %v, want ≈%v", i, got[i], want[i])
		}
	}
}

func TestDecoder_Stereo(t *testing.T) {
	t.Parallel()

	data := buildWAV(1, 2, 44100, 16, nil, pcm16(100, 200, 300, 400, 500, 600))
	got, rate, ch := readAll(t, data)

	if rate != 44100 || ch != 2 {
		t.Errorf("format = %d Hz/%d ch, want 44100/2", rate, ch)
	}
	if len(got) != 6 {
		t.Errorf("got %d samples, want 6", len(got))
	}
}

func TestDecoder_BitDepths(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		bits int
		pcm  []byte
		want float32
	}{
		{"8-bit unsigned midpoint", 8, []byte{128, 192}, 0.5},
		{"24-bit", 24, []byte{0, 0, 0, 0, 0, 0x40}, 0.5},
		{"32-bit", 32, []byte{0, 0, 0, 0, 0, 0, 0, 0x40}, 0.5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, _, _ := readAll(t, buildWAV(1, 1, 8000, tt.bits, nil, tt.pcm))
			if len(got) != 2 {
				t.Fatalf("got %d samples, want 2", len(got))
			}
			if got[0] != 0 {
				t.Errorf("sample[0] = %v, want 0", got[0])
			}
			if math.Abs(float64(got[1]-tt.want)) > 0.001 {
				t.Errorf("sample[1] = %v, want ≈%v", got[1], tt.want)
			}
		})
	}
}

func TestDecoder_SkipsChunksBeforeData(t *testing.T) {
	t.Parallel()

	extra := []rawChunk{{id: "JUNK", data: make([]byte, 28)}}
	got, _, _ := readAll(t, buildWAV(1, 1, 16000, 16, extra, pcm16(100, 200)))
	if len(got) != 2 {
		t.Errorf("got %d samples, want 2", len(got))
	}
}

func TestDecoder_EmptyDataChunk(t *testing.T) {
	t.Parallel()

	got, rate, _ := readAll(t, buildWAV(1, 1, 48000, 16, nil, nil))
	if len(got) != 0 {
		t.Errorf("got %d samples, want 0", len(got))
	}
	if rate != 48000 {
		t.Errorf("rate = %d, want 48000", rate)
	}
}

func TestDecoder_DropsPartialFrame(t *testing.T) {
	t.Parallel()

	got, _, _ := readAll(t, buildWAV(1, 2, 8000, 16, nil, pcm16(1, 2, 3)))
	if len(got) != 2 {
		t.Errorf("got %d samples, want 2", len(got))
	}
}

func TestDecoder_Errors(t *testing.T) {
	t.Parallel()

	valid := buildWAV(1, 1, 8000, 16, nil, pcm16(1, 2))
	noData := valid[:36]
	noDataHeader := append([]byte{}, noData...)
	binary.LittleEndian.PutUint32(noDataHeader[4:8], 28)

	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"not riff", []byte("NOT A WAV FILE DATA"), ErrNotWavFile},
		{"empty", nil, ErrNotWavFile},
		{"wrong form type", append([]byte("RIFF\x04\x00\x00\x00AVI "), make([]byte, 32)...), ErrNotWavFile},
		{"float samples", buildWAV(3, 1, 8000, 32, nil, make([]byte, 8)), ErrUnsupportedWavLayout},
		{"12-bit", buildWAV(1, 1, 8000, 12, nil, make([]byte, 4)), ErrUnsupportedBitDepth},
		{"truncated before fmt", valid[:16], ErrUnsupportedWavChunks},
		{"missing data chunk", noDataHeader, ErrUnsupportedWavChunks},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			_, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if !errors.Is(err, tt.want) {
				t.Errorf("Decode() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestDecoder_TruncatedData(t *testing.T) {
	t.Parallel()

	full := buildWAV(1, 2, 8000, 16, nil, pcm16(1, 2, 3, 4, 5, 6, 7, 8))

	tests := []struct {
		name   string
		data   []byte
		frames int
	}{
		{name: "cut on a frame boundary", data: full[:len(full)-8], frames: 2},
		{name: "cut inside a frame", data: full[:len(full)-3], frames: 3},
		{name: "header only", data: full[:44], frames: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			src, err := Decoder{}.Decode(bytes.NewReader(tt.data))
			if err != nil {
				t.Fatalf("Decode() error = %v", err)
			}

			var got []float32
			buf := make([]float32, 4)
			for {
				n, err := src.ReadSamples(buf)
				got = append(got, buf[:n]...)
				if err == nil {
					continue
				}
				if !errors.Is(err, ErrTruncatedData) {
					t.Fatalf("ReadSamples() error = %v, want ErrTruncatedData", err)
				}
				break
			}
			if len(got) != tt.frames*2 {
				t.Errorf("got %d samples before the error, want %d", len(got), tt.frames*2)
			}
		})
	}
}

// Streaming encoders leave the data size unset, which must not read as
// truncation.
func TestDecoder_UnknownDataSize(t *testing.T) {
	t.Parallel()

	data := buildWAV(1, 1, 8000, 16, nil, pcm16(1, 2, 3))
	binary.LittleEndian.PutUint32(data[40:44], 0xFFFFFFFF)

	got, _, _ := readAll(t, data)
	if len(got) != 3 {
		t.Errorf("got %d samples, want 3", len(got))
	}
}

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	data := buildWAV(1, 1, 8000, 16, nil, pcm16(1000, -1000))
	src, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.SampleRate() != 8000 {
		t.Errorf("SampleRate() = %d, want 8000", src.SampleRate())
	}
}

func TestSource_ReadSamples_EmptyBuffer(t *testing.T) {
	t.Parallel()

	src, err := Decoder{}.Decode(bytes.NewReader(buildWAV(1, 1, 8000, 16, nil, pcm16(1, 2))))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	n, err := src.ReadSamples(nil)
	if n != 0 || err != nil {
		t.Errorf("ReadSamples(nil) = (%d, %v), want (0, nil)", n, err)
	}
}
