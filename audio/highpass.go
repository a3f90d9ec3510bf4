// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
	"math/cmplx"
)

// Biquad holds normalized second-order section coefficients (a0 == 1).
type Biquad struct {
	B0, B1, B2 float64
	A1, A2     float64
}

// HighPassCoefficients computes an RBJ cookbook high-pass section.
func HighPassCoefficients(sampleRate int, cutoff, q float64) (Biquad, error) {
	if sampleRate <= 0 {
		return Biquad{}, ErrInvalidFormat
	}
	if q <= 0 {
		return Biquad{}, ErrInvalidQ
	}
	nyquist := float64(sampleRate) / 2
	if cutoff <= 0 || cutoff >= nyquist {
		return Biquad{}, fmt.Errorf("%w: %.1f Hz at %d Hz", ErrInvalidCutoff, cutoff, sampleRate)
	}

	w0 := 2 * math.Pi * cutoff / float64(sampleRate)
	cosw := math.Cos(w0)
	alpha := math.Sin(w0) / (2 * q)
	a0 := 1 + alpha

	return Biquad{
		B0: (1 + cosw) / 2 / a0,
		B1: -(1 + cosw) / a0,
		B2: (1 + cosw) / 2 / a0,
		A1: -2 * cosw / a0,
		A2: (1 - alpha) / a0,
	}, nil
}

// Response returns the magnitude response at freq Hz.
func (bq Biquad) Response(sampleRate int, freq float64) float64 {
	w := 2 * math.Pi * freq / float64(sampleRate)
	z1 := complex(math.Cos(-w), math.Sin(-w))
	z2 := z1 * z1
	num := complex(bq.B0, 0) + complex(bq.B1, 0)*z1 + complex(bq.B2, 0)*z2
	den := 1 + complex(bq.A1, 0)*z1 + complex(bq.A2, 0)*z2
	return cmplx.Abs(num / den)
}

// HighPass is a Source that runs a biquad high-pass over every channel of src.
// Filter state is kept per channel in transposed direct form II.
type HighPass struct {
	src      Source
	coef     Biquad
	channels int
	z1, z2   []float64
}

// NewHighPass wraps src with a high-pass filter at cutoff Hz and quality q.
func NewHighPass(src Source, cutoff, q float64) (*HighPass, error) {
	channels := src.Channels()
	if channels <= 0 {
		return nil, ErrInvalidFormat
	}
	coef, err := HighPassCoefficients(src.SampleRate(), cutoff, q)
	if err != nil {
		return nil, err
	}

	return &HighPass{
		src:      src,
		coef:     coef,
		channels: channels,
		z1:       make([]float64, channels),
		z2:       make([]float64, channels),
	}, nil
}

func (h *HighPass) SampleRate() int      { return h.src.SampleRate() }
func (h *HighPass) Channels() int        { return h.channels }
func (h *HighPass) BufSize() int         { return h.src.BufSize() }
func (h *HighPass) Coefficients() Biquad { return h.coef }

func (h *HighPass) Close() error {
	err := h.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// Reset clears the filter history.
func (h *HighPass) Reset() {
	clear(h.z1)
	clear(h.z2)
}

func (h *HighPass) ReadSamples(dst []float32) (int, error) {
	if len(dst)%h.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	n, err := h.src.ReadSamples(dst)
	h.Process(dst[:n])
	return n, err
}

// Process filters interleaved samples in place.
func (h *HighPass) Process(samples []float32) {
	c := h.coef
	for i, x := range samples {
		ch := i % h.channels
		in := float64(x)
		out := c.B0*in + h.z1[ch]
		h.z1[ch] = c.B1*in - c.A1*out + h.z2[ch]
		h.z2[ch] = c.B2*in - c.A2*out
		samples[i] = float32(out)
	}
}
