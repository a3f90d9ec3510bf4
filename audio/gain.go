// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
	"sync/atomic"
)

// Gain scales every sample of src by a linear factor.
type Gain struct {
	src  Source
	bits atomic.Uint32
}

func NewGain(src Source, gain float32) *Gain {
	g := &Gain{src: src}
	g.SetGain(gain)
	return g
}

func (g *Gain) SampleRate() int { return g.src.SampleRate() }
func (g *Gain) Channels() int   { return g.src.Channels() }
func (g *Gain) BufSize() int    { return g.src.BufSize() }

func (g *Gain) Close() error {
	err := g.src.Close()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// SetGain may be called while another goroutine is reading.
func (g *Gain) SetGain(gain float32) { g.bits.Store(math.Float32bits(gain)) }
func (g *Gain) Value() float32       { return math.Float32frombits(g.bits.Load()) }

func (g *Gain) ReadSamples(dst []float32) (int, error) {
	n, err := g.src.ReadSamples(dst)
	gain := g.Value()
	if gain != 1 {
		for i := range n {
			dst[i] *= gain
		}
	}
	return n, err
}
