// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audclean/audio"
)

const (
	formatPCM        = 1
	formatExtensible = 0xFFFE

	// unknownDataSize is written by encoders that cannot seek back to
	// patch the data chunk size.
	unknownDataSize = 0xFFFFFFFF
)

// pcmReader is an interface for wav.Decoder to allow testing
type pcmReader interface {
	PCMBuffer(buf *goaudio.IntBuffer) (int, error)
}

type wavSource struct {
	dec        pcmReader
	sampleRate int
	channels   int
	bitDepth   int
	intBuf     *goaudio.IntBuffer
	eof        bool

	// declared is the frame count the data chunk header promises, 0 when
	// the size is unknown. frames counts what was actually delivered.
	declared int64
	frames   int64
}

func (s *wavSource) SampleRate() int { return s.sampleRate }
func (s *wavSource) Channels() int   { return s.channels }
func (s *wavSource) Close() error    { return nil }

func (s *wavSource) BufSize() int {
	if s.intBuf != nil {
		return cap(s.intBuf.Data)
	}
	return 4096
}

func (s *wavSource) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	if s.intBuf == nil || cap(s.intBuf.Data) < want {
		s.intBuf = &goaudio.IntBuffer{Data: make([]int, want)}
	}
	s.intBuf.Data = s.intBuf.Data[:want]

	n, err := s.dec.PCMBuffer(s.intBuf)
	if err != nil {
		return 0, fmt.Errorf("%w", err)
	}
	if n < want {
		// the data chunk is exhausted; drop a trailing partial frame
		s.eof = true
		n -= n % s.channels
	}

	scale, offset := sampleScale(s.bitDepth)
	for i := range n {
		dst[i] = (float32(s.intBuf.Data[i]) - offset) / scale
	}
	s.frames += int64(n / s.channels)

	if s.eof {
		if s.frames < s.declared {
			return n, fmt.Errorf("%w: %d of %d frames", ErrTruncatedData, s.frames, s.declared)
		}
		return n, io.EOF
	}
	return n, nil
}

// declaredFrames converts the data chunk size to whole frames. Sizes that
// encoders use as placeholders report 0.
func declaredFrames(size int64, channels, bitDepth int) int64 {
	if size <= 0 || size >= unknownDataSize {
		return 0
	}
	return size / int64(channels*((bitDepth+7)/8))
}

// sampleScale returns the divisor and offset that map a raw sample to [-1,1].
// 8-bit WAV samples are unsigned.
func sampleScale(bitDepth int) (float32, float32) {
	switch bitDepth {
	case 8:
		return 128.0, 128.0
	case 24:
		return 8388608.0, 0
	case 32:
		return 2147483648.0, 0
	default:
		return 32768.0, 0
	}
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading wav data: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	var magic [12]byte
	if _, err := io.ReadFull(rs, magic[:]); err != nil {
		return nil, ErrNotWavFile
	}
	if !bytes.Equal(magic[:4], []byte("RIFF")) || !bytes.Equal(magic[8:12], []byte("WAVE")) {
		return nil, ErrNotWavFile
	}
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	dec := gowav.NewDecoder(rs)
	dec.ReadInfo()
	if err := dec.Err(); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrUnsupportedWavLayout, err)
	}
	if dec.NumChans == 0 || dec.SampleRate == 0 {
		return nil, fmt.Errorf("%w: missing fmt chunk", ErrUnsupportedWavChunks)
	}
	if dec.WavAudioFormat != formatPCM && dec.WavAudioFormat != formatExtensible {
		return nil, fmt.Errorf("%w: format tag %#x", ErrUnsupportedWavLayout, dec.WavAudioFormat)
	}
	switch dec.BitDepth {
	case 8, 16, 24, 32:
	default:
		return nil, fmt.Errorf("%w: %d-bit", ErrUnsupportedBitDepth, dec.BitDepth)
	}

	if err := dec.FwdToPCM(); err != nil {
		return nil, fmt.Errorf("%w: data chunk not found", ErrUnsupportedWavChunks)
	}
	if dec.PCMChunk == nil {
		return nil, fmt.Errorf("%w: data chunk not found", ErrUnsupportedWavChunks)
	}

	return &wavSource{
		dec:        dec,
		sampleRate: int(dec.SampleRate),
		channels:   int(dec.NumChans),
		bitDepth:   int(dec.BitDepth),
		declared:   declaredFrames(dec.PCMLen(), int(dec.NumChans), int(dec.BitDepth)),
	}, nil
}
