// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"sync"

	"github.com/ik5/audclean/audio"
)

// BufferSourceNode plays an audio.Buffer once into the graph. Before Start
// and after it ends it renders silence, so the graph never runs dry.
// Start and Stop must be called through Context.Do once rendering runs.
type BufferSourceNode struct {
	buf     *audio.Buffer
	pos     int
	started bool
	playing bool

	ended   chan struct{}
	endOnce sync.Once
}

func NewBufferSourceNode(buf *audio.Buffer) *BufferSourceNode {
	return &BufferSourceNode{
		buf:   buf,
		ended: make(chan struct{}),
	}
}

func (n *BufferSourceNode) SampleRate() int { return n.buf.SampleRate }
func (n *BufferSourceNode) Channels() int   { return n.buf.Channels }
func (n *BufferSourceNode) BufSize() int    { return 4096 }
func (n *BufferSourceNode) Close() error    { return nil }

// Ended is closed once playback reaches the end of the buffer or Stop is called.
func (n *BufferSourceNode) Ended() <-chan struct{} { return n.ended }

// Start begins playback. A node can only be started once; an empty buffer
// ends immediately.
func (n *BufferSourceNode) Start() error {
	if n.started {
		return ErrAlreadyStarted
	}
	n.started = true
	n.playing = true
	if len(n.buf.Data) == 0 {
		n.end()
	}
	return nil
}

// Stop halts playback. Stopping an ended or unstarted node is a no-op
// apart from firing Ended.
func (n *BufferSourceNode) Stop() {
	n.end()
}

func (n *BufferSourceNode) end() {
	n.playing = false
	n.endOnce.Do(func() { close(n.ended) })
}

// Playing reports whether the node is between Start and its end.
func (n *BufferSourceNode) Playing() bool { return n.playing }

func (n *BufferSourceNode) ReadSamples(dst []float32) (int, error) {
	if len(dst)%n.buf.Channels != 0 {
		return 0, audio.ErrInvalidDstSize
	}
	if !n.playing {
		clear(dst)
		return len(dst), nil
	}

	copied := copy(dst, n.buf.Data[n.pos:])
	n.pos += copied
	clear(dst[copied:])

	if n.pos >= len(n.buf.Data) {
		n.end()
	}
	return len(dst), nil
}
