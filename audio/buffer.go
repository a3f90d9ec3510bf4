// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"fmt"
	"io"
	"time"
)

// maxEmptyReads bounds how many (0, nil) reads ReadAll tolerates in a row.
const maxEmptyReads = 64

// Buffer is a fully decoded signal held in memory.
// Data is interleaved float32 in [-1,1].
type Buffer struct {
	SampleRate int
	Channels   int
	Data       []float32
}

// Frames is the number of sample frames in the buffer.
func (b *Buffer) Frames() int {
	if b == nil || b.Channels <= 0 {
		return 0
	}
	return len(b.Data) / b.Channels
}

// Seconds is the playback duration in seconds.
func (b *Buffer) Seconds() float64 {
	if b == nil || b.SampleRate <= 0 {
		return 0
	}
	return float64(b.Frames()) / float64(b.SampleRate)
}

// Duration is the playback duration.
func (b *Buffer) Duration() time.Duration {
	return time.Duration(b.Seconds() * float64(time.Second))
}

// Channel returns a copy of a single channel.
func (b *Buffer) Channel(c int) []float32 {
	if b == nil || c < 0 || c >= b.Channels {
		return nil
	}
	frames := b.Frames()
	out := make([]float32, frames)
	for f := range frames {
		out[f] = b.Data[f*b.Channels+c]
	}
	return out
}

// Mono returns the average of all channels.
func (b *Buffer) Mono() []float32 {
	if b == nil || b.Channels <= 0 {
		return nil
	}
	if b.Channels == 1 {
		out := make([]float32, len(b.Data))
		copy(out, b.Data)
		return out
	}
	frames := b.Frames()
	out := make([]float32, frames)
	inv := 1 / float32(b.Channels)
	for f := range frames {
		var sum float32
		base := f * b.Channels
		for c := range b.Channels {
			sum += b.Data[base+c]
		}
		out[f] = sum * inv
	}
	return out
}

// Source returns a fresh stream over the buffer contents.
func (b *Buffer) Source() Source {
	return &bufferSource{buf: b}
}

// ReadAll drains src into a Buffer. It does not close src.
func ReadAll(src Source) (*Buffer, error) {
	return ReadAllContext(context.Background(), src)
}

// ReadAllContext drains src into a Buffer, checking ctx between reads.
func ReadAllContext(ctx context.Context, src Source) (*Buffer, error) {
	channels := src.Channels()
	rate := src.SampleRate()
	if channels <= 0 || rate <= 0 {
		return nil, ErrInvalidFormat
	}

	size := max(src.BufSize(), 4096)
	size -= size % channels
	chunk := make([]float32, size)

	out := &Buffer{SampleRate: rate, Channels: channels}
	empty := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		n, err := src.ReadSamples(chunk)
		if n > 0 {
			out.Data = append(out.Data, chunk[:n]...)
			empty = 0
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w", err)
		}
		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return nil, ErrNoProgress
			}
		}
	}

	// drop a trailing partial frame
	out.Data = out.Data[:out.Frames()*channels]
	return out, nil
}

type bufferSource struct {
	buf *Buffer
	pos int
}

func (s *bufferSource) SampleRate() int { return s.buf.SampleRate }
func (s *bufferSource) Channels() int   { return s.buf.Channels }
func (s *bufferSource) BufSize() int    { return 4096 }
func (s *bufferSource) Close() error    { return nil }

func (s *bufferSource) ReadSamples(dst []float32) (int, error) {
	if s.pos >= len(s.buf.Data) {
		return 0, io.EOF
	}
	n := copy(dst, s.buf.Data[s.pos:])
	s.pos += n
	if s.pos >= len(s.buf.Data) {
		return n, io.EOF
	}
	return n, nil
}
