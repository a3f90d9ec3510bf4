// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"fmt"
	"sync"

	"github.com/ik5/audclean/formats/wav"
)

type recorderState int

const (
	recorderInactive recorderState = iota
	recorderRecording
	recorderStopped
)

// Recorder is the capture sink. While recording it encodes every quantum
// it is handed into an in-memory 16-bit PCM WAV file.
type Recorder struct {
	mu       sync.Mutex
	rate     int
	channels int
	state    recorderState
	mem      *wav.MemFile
	w        *wav.PCM16Writer
}

func NewRecorder(sampleRate, channels int) *Recorder {
	return &Recorder{rate: sampleRate, channels: channels}
}

// Start writes the WAV header and begins accepting quanta.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != recorderInactive {
		return ErrAlreadyStarted
	}
	mem := &wav.MemFile{}
	w, err := wav.NewPCM16Writer(mem, r.rate, r.channels)
	if err != nil {
		return fmt.Errorf("starting recorder: %w", err)
	}
	r.mem, r.w = mem, w
	r.state = recorderRecording
	return nil
}

// Write is the Tap the context feeds. Quanta outside Start..Stop are dropped.
func (r *Recorder) Write(samples []float32) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != recorderRecording {
		return nil
	}
	return r.w.WriteFloat32(samples)
}

// Stop finalises the WAV header. Later quanta are ignored.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.state != recorderRecording {
		return ErrNotRecording
	}
	r.state = recorderStopped
	if err := r.w.Close(); err != nil {
		return fmt.Errorf("stopping recorder: %w", err)
	}
	return nil
}

// Blob returns the encoded file. It is complete only after Stop.
func (r *Recorder) Blob() []byte {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.mem == nil {
		return nil
	}
	out := make([]byte, r.mem.Len())
	copy(out, r.mem.Bytes())
	return out
}

// Frames is the number of frames recorded.
func (r *Recorder) Frames() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.w == nil {
		return 0
	}
	return r.w.Frames()
}

func (r *Recorder) Recording() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state == recorderRecording
}
