// SPDX-License-Identifier: EPL-2.0

// Package analysis measures band energy of decoded and captured audio, used
// to report how much low-frequency content a run removed.
package analysis

import (
	"errors"
	"fmt"
	"math"
	"math/bits"
	"math/cmplx"

	"github.com/ik5/audclean/audio"
	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/dsp/window"
)

// DefaultFFTSize gives 11.7 Hz bins at 48 kHz, fine enough to separate the
// sub-80 Hz band.
const DefaultFFTSize = 4096

var ErrInvalidSize = errors.New("fft size must be a power of 2")

// Analyzer computes averaged power spectra with a Hann window and 50% overlap.
// It is not safe for concurrent use.
type Analyzer struct {
	size   int
	fft    *fourier.FFT
	window []float64
	input  []float64
	coeffs []complex128
}

func NewAnalyzer(size int) (*Analyzer, error) {
	if size < 2 || bits.OnesCount(uint(size)) != 1 {
		return nil, fmt.Errorf("%w, got %d", ErrInvalidSize, size)
	}

	win := make([]float64, size)
	for i := range win {
		win[i] = 1
	}
	window.Hann(win)

	return &Analyzer{
		size:   size,
		fft:    fourier.NewFFT(size),
		window: win,
		input:  make([]float64, size),
		coeffs: make([]complex128, size/2+1),
	}, nil
}

func (a *Analyzer) Size() int { return a.size }

// PowerSpectrum returns the mean power per bin over the full frames of
// mono. Samples after the last full frame are not analysed, since cutting
// the signal inside the window smears power across every bin. A signal
// shorter than one frame is zero padded into a single frame.
func (a *Analyzer) PowerSpectrum(mono []float32) []float64 {
	power := make([]float64, a.size/2+1)
	if len(mono) == 0 {
		return power
	}

	hop := a.size / 2
	last := max(len(mono)-a.size, 0)
	frames := 0
	for start := 0; start <= last; start += hop {
		for i := range a.size {
			var s float64
			if start+i < len(mono) {
				s = float64(mono[start+i])
			}
			a.input[i] = s * a.window[i]
		}
		a.fft.Coefficients(a.coeffs, a.input)
		for i, c := range a.coeffs {
			m := cmplx.Abs(c)
			power[i] += m * m
		}
		frames++
	}

	for i := range power {
		power[i] /= float64(frames)
	}
	return power
}

// BandEnergy sums the mean power of the bins whose centre lies in [lo, hi).
func (a *Analyzer) BandEnergy(mono []float32, sampleRate int, lo, hi float64) float64 {
	power := a.PowerSpectrum(mono)
	var sum float64
	for i, p := range power {
		f := a.fft.Freq(i) * float64(sampleRate)
		if f >= lo && f < hi {
			sum += p
		}
	}
	return sum
}

// ReductionDB is how far after sits below before, in dB. Silence on both
// sides is 0; removing all of a non-zero band is +Inf.
func ReductionDB(before, after float64) float64 {
	if before <= 0 {
		return 0
	}
	if after <= 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(before/after)
}

// Report compares a decoded input with its captured output.
type Report struct {
	InputSeconds  float64
	OutputSeconds float64
	LowBandIn     float64
	LowBandOut    float64
	ReductionDB   float64
}

// Compare measures the energy below cutoff Hz in both buffers. Both are
// folded to mono first.
func (a *Analyzer) Compare(in, out *audio.Buffer, cutoff float64) Report {
	r := Report{
		InputSeconds:  in.Seconds(),
		OutputSeconds: out.Seconds(),
	}
	if in != nil && in.SampleRate > 0 {
		r.LowBandIn = a.BandEnergy(in.Mono(), in.SampleRate, 0, cutoff)
	}
	if out != nil && out.SampleRate > 0 {
		r.LowBandOut = a.BandEnergy(out.Mono(), out.SampleRate, 0, cutoff)
	}
	r.ReductionDB = ReductionDB(r.LowBandIn, r.LowBandOut)
	return r
}
