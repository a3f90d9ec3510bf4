// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"errors"
	"testing"
	"time"

	"github.com/ik5/audclean/audio"
)

func constBuffer(rate, channels, frames int, v float32) *audio.Buffer {
	data := make([]float32, channels*frames)
	for i := range data {
		data[i] = v
	}
	return &audio.Buffer{SampleRate: rate, Channels: channels, Data: data}
}

func TestNewContext_Invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name                    string
		rate, channels, quantum int
		speed                   float64
	}{
		{"zero rate", 0, 1, 128, 1},
		{"zero channels", 48000, 0, 128, 1},
		{"zero quantum", 48000, 1, 0, 1},
		{"zero speed", 48000, 1, 128, 0},
		{"negative speed", 48000, 1, 128, -2},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewContext(tt.rate, tt.channels, tt.quantum, tt.speed)
			if !errors.Is(err, ErrInvalidContext) {
				t.Errorf("error = %v, want ErrInvalidContext", err)
			}
		})
	}
}

func TestContext_Period(t *testing.T) {
	t.Parallel()

	c, err := NewContext(48000, 1, 480, 1)
	if err != nil {
		t.Fatalf("NewContext() error = %v", err)
	}
	if c.Period() != 10*time.Millisecond {
		t.Errorf("Period() = %v, want 10ms", c.Period())
	}

	fast, _ := NewContext(48000, 1, 480, 1e6)
	if fast.Period() != minPeriod {
		t.Errorf("Period() = %v, want clamp to %v", fast.Period(), minPeriod)
	}
}

func TestContext_RenderFeedsTaps(t *testing.T) {
	t.Parallel()

	c, _ := NewContext(8000, 2, 64, 1)
	src := NewBufferSourceNode(constBuffer(8000, 2, 100, 0.5))
	if err := src.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}

	var calls, samples int
	var last float32
	err := c.Connect(src, func(s []float32) error {
		calls++
		samples += len(s)
		last = s[len(s)-1]
		return nil
	})
	if err != nil {
		t.Fatalf("Connect() error = %v", err)
	}

	if err := c.Render(3); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if calls != 3 || samples != 3*64*2 {
		t.Errorf("taps saw %d calls, %d samples; want 3, 384", calls, samples)
	}
	if c.Frames() != 192 {
		t.Errorf("Frames() = %d, want 192", c.Frames())
	}
	// 100 frames of signal, then silence
	if last != 0 {
		t.Errorf("last sample = %f, want silence after the buffer ends", last)
	}
}

func TestContext_ConnectRejectsMismatchedGraph(t *testing.T) {
	t.Parallel()

	c, _ := NewContext(48000, 1, 128, 1)
	err := c.Connect(NewBufferSourceNode(constBuffer(44100, 1, 10, 0)))
	if !errors.Is(err, audio.ErrInvalidFormat) {
		t.Errorf("error = %v, want ErrInvalidFormat", err)
	}
}

func TestContext_TapErrorFailsContext(t *testing.T) {
	t.Parallel()

	boom := errors.New("disk full")
	c, _ := NewContext(8000, 1, 32, 1)
	_ = c.Connect(NewBufferSourceNode(constBuffer(8000, 1, 10, 0)), func([]float32) error { return boom })

	if err := c.Render(1); !errors.Is(err, boom) {
		t.Fatalf("Render() error = %v, want %v", err, boom)
	}
	select {
	case <-c.Failed():
	default:
		t.Fatal("Failed() not closed after a tap error")
	}
	if !errors.Is(c.Err(), boom) {
		t.Errorf("Err() = %v", c.Err())
	}
	if err := c.Render(1); !errors.Is(err, boom) {
		t.Errorf("Render() after failure = %v, want the first error", err)
	}
}

func TestContext_RealTimePacing(t *testing.T) {
	t.Parallel()

	// 1ms per quantum
	c, _ := NewContext(48000, 1, 48, 1)
	_ = c.Connect(NewBufferSourceNode(constBuffer(48000, 1, 0, 0)))

	start := time.Now()
	if err := c.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(60 * time.Millisecond)
	c.Flush()
	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	elapsed := time.Since(start)

	quanta := c.Frames() / 48
	if quanta < 50 {
		t.Errorf("rendered %d quanta in %v, want at least 50", quanta, elapsed)
	}
	if limit := int64(elapsed/time.Millisecond) + 1; quanta > limit {
		t.Errorf("rendered %d quanta in %v, ahead of the clock", quanta, elapsed)
	}
}

func TestContext_CloseStopsRendering(t *testing.T) {
	t.Parallel()

	c, _ := NewContext(48000, 1, 48, 1)
	_ = c.Connect(NewBufferSourceNode(constBuffer(48000, 1, 0, 0)))
	if err := c.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	time.Sleep(5 * time.Millisecond)

	if err := c.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("second Close() error = %v", err)
	}
	if !c.Closed() {
		t.Error("Closed() = false after Close")
	}

	frames := c.Frames()
	time.Sleep(10 * time.Millisecond)
	c.Flush()
	if c.Frames() != frames {
		t.Errorf("rendered after Close: %d -> %d frames", frames, c.Frames())
	}
	if err := c.Start(); err == nil {
		t.Error("Start() after Close should fail")
	}
}

func TestContext_StartTwice(t *testing.T) {
	t.Parallel()

	c, _ := NewContext(48000, 1, 480, 1)
	defer c.Close()
	if err := c.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := c.Start(); !errors.Is(err, ErrAlreadyStarted) {
		t.Errorf("second Start() = %v, want ErrAlreadyStarted", err)
	}
}
