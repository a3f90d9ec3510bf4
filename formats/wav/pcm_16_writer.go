// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audclean/audio"
	"github.com/ik5/audclean/utils"
)

// PCM16Writer streams interleaved float32 samples into a 16-bit PCM WAV file.
// The header is written on creation, so a writer closed without any samples
// still produces a valid file with an empty data chunk.
type PCM16Writer struct {
	enc      *gowav.Encoder
	buf      *goaudio.IntBuffer
	channels int
	frames   int
	closed   bool
}

func NewPCM16Writer(w io.WriteSeeker, sampleRate, channels int) (*PCM16Writer, error) {
	if sampleRate <= 0 || channels <= 0 {
		return nil, audio.ErrInvalidFormat
	}

	format := &goaudio.Format{NumChannels: channels, SampleRate: sampleRate}
	pw := &PCM16Writer{
		enc:      gowav.NewEncoder(w, sampleRate, 16, channels, formatPCM),
		buf:      &goaudio.IntBuffer{Format: format, SourceBitDepth: 16},
		channels: channels,
	}

	// an empty write emits the RIFF, fmt and data headers
	if err := pw.enc.Write(pw.buf); err != nil {
		return nil, fmt.Errorf("writing wav header: %w", err)
	}
	return pw, nil
}

// WriteFloat32 appends whole frames; len(samples) must be a multiple of the channel count.
func (pw *PCM16Writer) WriteFloat32(samples []float32) error {
	if pw.closed {
		return ErrWriterClosed
	}
	if len(samples)%pw.channels != 0 {
		return audio.ErrInvalidDstSize
	}
	if len(samples) == 0 {
		return nil
	}

	if cap(pw.buf.Data) < len(samples) {
		pw.buf.Data = make([]int, len(samples))
	}
	pw.buf.Data = pw.buf.Data[:len(samples)]
	for i, s := range samples {
		pw.buf.Data[i] = int(utils.Float32ToInt16(s))
	}

	if err := pw.enc.Write(pw.buf); err != nil {
		return fmt.Errorf("%w", err)
	}
	pw.frames += len(samples) / pw.channels
	return nil
}

// Frames is the number of frames written so far.
func (pw *PCM16Writer) Frames() int { return pw.frames }

// Close patches the header sizes. It is safe to call more than once.
func (pw *PCM16Writer) Close() error {
	if pw.closed {
		return nil
	}
	pw.closed = true
	if err := pw.enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}

// EncodePCM16 renders interleaved int16 samples as a complete WAV file.
func EncodePCM16(sampleRate, channels int, samples []int16) ([]byte, error) {
	if channels > 0 && len(samples)%channels != 0 {
		return nil, audio.ErrInvalidDstSize
	}

	mem := &MemFile{}
	pw, err := NewPCM16Writer(mem, sampleRate, channels)
	if err != nil {
		return nil, err
	}

	pw.buf.Data = make([]int, len(samples))
	for i, s := range samples {
		pw.buf.Data[i] = int(s)
	}
	if len(samples) > 0 {
		if err := pw.enc.Write(pw.buf); err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		pw.frames = len(samples) / channels
	}

	if err := pw.Close(); err != nil {
		return nil, err
	}
	return mem.Bytes(), nil
}
