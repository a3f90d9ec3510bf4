// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"encoding/binary"
	"io"
	"math"
)

// Waveform yields the sample for one channel of one frame.
type Waveform func(frame, channel int) float32

// MockSource plays a generated waveform for a fixed number of frames. It
// satisfies audio.Source structurally; importing audio here would cycle.
type MockSource struct {
	rate, channels int
	frames, pos    int
	wave           Waveform
}

// NewMockSource plays frames frames of wave.
func NewMockSource(sampleRate, channels, frames int, wave Waveform) *MockSource {
	return &MockSource{rate: sampleRate, channels: channels, frames: frames, wave: wave}
}

func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewConstantSource(sampleRate, channels, frames, 0)
}

func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

// NewSineSource plays a full-scale sine at freq Hz on every channel.
func NewSineSource(sampleRate, channels, frames int, freq float64) *MockSource {
	step := 2 * math.Pi * freq / float64(sampleRate)
	return NewMockSource(sampleRate, channels, frames, func(frame, _ int) float32 {
		return float32(math.Sin(step * float64(frame)))
	})
}

func (m *MockSource) SampleRate() int { return m.rate }
func (m *MockSource) Channels() int   { return m.channels }
func (m *MockSource) BufSize() int    { return 4096 }
func (m *MockSource) Close() error    { return nil }

// ReadSamples writes whole frames only. The read that delivers the last
// frame also reports io.EOF.
func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	n := min(len(dst)/m.channels, m.frames-m.pos)
	if n <= 0 && m.pos >= m.frames {
		return 0, io.EOF
	}

	for f := range n {
		for c := range m.channels {
			dst[f*m.channels+c] = m.wave(m.pos+f, c)
		}
	}
	m.pos += n

	if m.pos >= m.frames {
		return n * m.channels, io.EOF
	}
	return n * m.channels, nil
}

// SpeechWithHum returns a waveform of a speech-band signal (three modulated
// partials between 300 Hz and 2.4 kHz) with mains hum at humHz and a small DC
// offset underneath. The low components are what an 80 Hz high-pass removes.
func SpeechWithHum(sampleRate int, humHz float64) func(sample int, channel int) float32 {
	return func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		envelope := 0.5 + 0.5*math.Sin(2*math.Pi*3*t)
		speech := envelope * (0.25*math.Sin(2*math.Pi*300*t) +
			0.15*math.Sin(2*math.Pi*1200*t) +
			0.08*math.Sin(2*math.Pi*2400*t))
		hum := 0.3 * math.Sin(2*math.Pi*humHz*t)
		return float32(speech + hum + 0.05)
	}
}

// Interleaved renders frames of waveform into an interleaved slice.
func Interleaved(channels, frames int, waveform func(sample int, channel int) float32) []float32 {
	out := make([]float32, channels*frames)
	for f := range frames {
		for c := range channels {
			out[f*channels+c] = waveform(f, c)
		}
	}
	return out
}

// PCM16WAV builds a canonical 44-byte-header 16-bit PCM WAV file.
func PCM16WAV(sampleRate, channels int, samples []float32) []byte {
	dataSize := 2 * len(samples)
	out := make([]byte, 44+dataSize)

	copy(out[0:], "RIFF")
	binary.LittleEndian.PutUint32(out[4:], uint32(36+dataSize))
	copy(out[8:], "WAVE")
	copy(out[12:], "fmt ")
	binary.LittleEndian.PutUint32(out[16:], 16)
	binary.LittleEndian.PutUint16(out[20:], 1)
	binary.LittleEndian.PutUint16(out[22:], uint16(channels))
	binary.LittleEndian.PutUint32(out[24:], uint32(sampleRate))
	binary.LittleEndian.PutUint32(out[28:], uint32(sampleRate*channels*2))
	binary.LittleEndian.PutUint16(out[32:], uint16(channels*2))
	binary.LittleEndian.PutUint16(out[34:], 16)
	copy(out[36:], "data")
	binary.LittleEndian.PutUint32(out[40:], uint32(dataSize))

	for i, s := range samples {
		s = max(-1, min(1, s))
		binary.LittleEndian.PutUint16(out[44+2*i:], uint16(int16(s*32767)))
	}
	return out
}

// SineWAV is a ready-made mono fixture: seconds of a tone at freq Hz.
func SineWAV(sampleRate int, seconds, freq float64) []byte {
	frames := int(seconds * float64(sampleRate))
	return PCM16WAV(sampleRate, 1, Interleaved(1, frames, func(sample, _ int) float32 {
		return float32(0.5 * math.Sin(2*math.Pi*freq*float64(sample)/float64(sampleRate)))
	}))
}
