// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/ik5/audclean/audio"
)

// minPeriod keeps very high speeds from asking for a zero ticker interval.
const minPeriod = 50 * time.Microsecond

// Tap receives every rendered quantum. The slice is reused between calls.
type Tap func(samples []float32) error

// Context is a temporary audio processing context. It pulls one render
// quantum at a time from the connected graph and hands it to the taps,
// paced against the wall clock at speed times real time.
//
// Graph nodes are not safe for concurrent use; anything that touches them
// from outside the render loop must go through Do.
type Context struct {
	rate     int
	channels int
	quantum  int
	period   time.Duration

	mu     sync.Mutex
	dest   audio.Source
	taps   []Tap
	buf    []float32
	quanta int64
	start  time.Time
	err    error

	failed    chan struct{}
	done      chan struct{}
	wg        sync.WaitGroup
	running   bool
	closed    bool
	closeOnce sync.Once
	closeErr  error
}

// NewContext creates a context rendering quantum frames per tick.
func NewContext(sampleRate, channels, quantum int, speed float64) (*Context, error) {
	if sampleRate <= 0 || channels <= 0 || quantum <= 0 || speed <= 0 {
		return nil, fmt.Errorf("%w: %d Hz, %d channels, %d frames per quantum, speed %g",
			ErrInvalidContext, sampleRate, channels, quantum, speed)
	}

	seconds := float64(quantum) / float64(sampleRate) / speed
	period := max(time.Duration(seconds*float64(time.Second)), minPeriod)

	return &Context{
		rate:     sampleRate,
		channels: channels,
		quantum:  quantum,
		period:   period,
		buf:      make([]float32, quantum*channels),
		failed:   make(chan struct{}),
		done:     make(chan struct{}),
	}, nil
}

func (c *Context) SampleRate() int         { return c.rate }
func (c *Context) Channels() int           { return c.channels }
func (c *Context) Quantum() int            { return c.quantum }
func (c *Context) Period() time.Duration   { return c.period }
func (c *Context) Failed() <-chan struct{} { return c.failed }

// Connect sets the graph output and the taps that consume it.
func (c *Context) Connect(dest audio.Source, taps ...Tap) error {
	if dest.SampleRate() != c.rate || dest.Channels() != c.channels {
		return fmt.Errorf("%w: graph is %d Hz/%d ch, context is %d Hz/%d ch",
			audio.ErrInvalidFormat, dest.SampleRate(), dest.Channels(), c.rate, c.channels)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.dest = dest
	c.taps = append(c.taps, taps...)
	return nil
}

// Do runs fn between two render quanta.
func (c *Context) Do(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn()
}

// Start begins real-time rendering. The clock starts now.
func (c *Context) Start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return io.ErrClosedPipe
	}
	if c.running {
		return ErrAlreadyStarted
	}
	c.running = true
	c.start = time.Now()

	c.wg.Add(1)
	go c.run()
	return nil
}

func (c *Context) run() {
	defer c.wg.Done()

	ticker := time.NewTicker(c.period)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case <-ticker.C:
			c.Flush()
		}
	}
}

// Flush renders every quantum that is due by the wall clock. Ticks the
// runtime dropped are caught up here.
func (c *Context) Flush() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.running || c.closed || c.err != nil {
		return
	}
	due := int64(time.Since(c.start) / c.period)
	for c.quanta < due {
		if err := c.renderLocked(); err != nil {
			c.failLocked(err)
			return
		}
	}
}

// Render renders n quanta immediately, ignoring the clock.
func (c *Context) Render(n int) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.err != nil {
		return c.err
	}
	for range n {
		if err := c.renderLocked(); err != nil {
			c.failLocked(err)
			return err
		}
	}
	return nil
}

func (c *Context) renderLocked() error {
	n := 0
	if c.dest != nil {
		var err error
		n, err = c.dest.ReadSamples(c.buf)
		if err != nil && !errors.Is(err, io.EOF) {
			return err
		}
	}
	clear(c.buf[n:])

	for _, tap := range c.taps {
		if err := tap(c.buf); err != nil {
			return err
		}
	}
	c.quanta++
	return nil
}

func (c *Context) failLocked(err error) {
	if c.err == nil {
		c.err = err
		close(c.failed)
	}
}

// Err is the first render failure, if any.
func (c *Context) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.err
}

// Frames is the number of frames rendered so far.
func (c *Context) Frames() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.quanta * int64(c.quantum)
}

// Close stops the render loop, waits for it to exit and closes the graph.
// It is safe to call more than once.
func (c *Context) Close() error {
	c.closeOnce.Do(func() {
		c.mu.Lock()
		running := c.running
		c.closed = true
		c.mu.Unlock()

		if running {
			close(c.done)
			c.wg.Wait()
		}

		c.mu.Lock()
		defer c.mu.Unlock()
		if c.dest != nil {
			c.closeErr = c.dest.Close()
		}
	})
	return c.closeErr
}

// Closed reports whether Close has run.
func (c *Context) Closed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}
