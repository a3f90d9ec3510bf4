// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"

	"github.com/ik5/audclean/utils"
)

// antiAliasCutoff is the low-pass corner as a fraction of the destination rate.
const antiAliasCutoff = 0.45

// resampleChunk is how many source frames the Resampler pulls per read.
const resampleChunk = 1024

// Resampler converts a Source to another sample rate by Catmull-Rom
// interpolation over a sliding four-frame window. The channel count is kept.
//
// Output covers the whole input: a source of N frames at rate A yields
// ceil(N*B/A) frames at rate B, the last one held at the final input frame.
type Resampler struct {
	src      Source
	from, to int64
	channels int

	// Output frame k sits at source position k*from/to. at is the index
	// of window[1]; window[1] and window[2] bracket the position and real
	// marks which slots hold a frame from src rather than an edge copy.
	window [4][]float32
	real   [4]bool
	out    int64
	at     int64
	primed bool

	in         []float32
	head, tail int
	eof        bool
	empty      int

	lowpass *onePole
}

// NewResampler converts src to dstRate. When downsampling, a one-pole
// low-pass at 45% of the destination rate runs ahead of interpolation.
func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()

	r := &Resampler{
		src:      src,
		from:     int64(src.SampleRate()),
		to:       int64(dstRate),
		channels: channels,
		in:       make([]float32, resampleChunk*channels),
	}
	for i := range r.window {
		r.window[i] = make([]float32, channels)
	}

	if dstRate < src.SampleRate() {
		cutoff := antiAliasCutoff * float64(dstRate)
		r.lowpass = &onePole{
			alpha: float32(1 - math.Exp(-2*math.Pi*cutoff/float64(src.SampleRate()))),
			state: make([]float32, channels),
		}
	}

	return r
}

func (r *Resampler) SampleRate() int { return int(r.to) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }
func (r *Resampler) Close() error    { return r.src.Close() }

// ReadSamples fills dst with interleaved frames at the destination rate.
// len(dst) must be a multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	frames := len(dst) / r.channels
	written := 0
	for written < frames {
		pos := r.out * r.from
		for r.at < pos/r.to && r.real[1] {
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}
		if !r.real[1] {
			return written * r.channels, io.EOF
		}

		x := float32(pos%r.to) / float32(r.to)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range out {
			out[c] = utils.CubicInterpolate(
				r.window[0][c], r.window[1][c], r.window[2][c], r.window[3][c], x)
		}
		written++
		r.out++
	}

	return written * r.channels, nil
}

// prime fills the window around the first source frame. The frame before
// it is an edge copy.
func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.next(r.window[1])
	if err != nil || !ok {
		return err
	}
	copy(r.window[0], r.window[1])
	r.real[0], r.real[1] = true, true

	for i := 2; i < len(r.window); i++ {
		if r.real[i-1] {
			if r.real[i], err = r.next(r.window[i]); err != nil {
				return err
			}
		}
		if !r.real[i] {
			copy(r.window[i], r.window[i-1])
		}
	}
	return nil
}

// advance slides the window one source frame forward.
func (r *Resampler) advance() error {
	w := r.window
	r.window = [4][]float32{w[1], w[2], w[3], w[0]}
	r.real = [4]bool{r.real[1], r.real[2], r.real[3], false}
	r.at++

	if r.real[2] {
		ok, err := r.next(r.window[3])
		if err != nil {
			return err
		}
		r.real[3] = ok
	}
	if !r.real[3] {
		copy(r.window[3], r.window[2])
	}
	return nil
}

// next copies the following source frame into frame. ok is false once the
// source is exhausted.
func (r *Resampler) next(frame []float32) (bool, error) {
	for r.head >= r.tail {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.in)
		n -= n % r.channels
		r.head, r.tail = 0, n

		switch {
		case errors.Is(err, io.EOF):
			r.eof = true
		case err != nil:
			return false, err
		case n == 0:
			r.empty++
			if r.empty > maxEmptyReads {
				return false, ErrNoProgress
			}
		default:
			r.empty = 0
		}
	}

	copy(frame, r.in[r.head:r.head+r.channels])
	r.head += r.channels
	if r.lowpass != nil {
		r.lowpass.apply(frame)
	}
	return true, nil
}

// onePole is y[n] = y[n-1] + alpha*(x[n]-y[n-1]) per channel, seeded with
// the first frame it sees.
type onePole struct {
	alpha  float32
	state  []float32
	seeded bool
}

func (p *onePole) apply(frame []float32) {
	if !p.seeded {
		copy(p.state, frame)
		p.seeded = true
		return
	}
	for c, x := range frame {
		p.state[c] += p.alpha * (x - p.state[c])
		frame[c] = p.state[c]
	}
}
