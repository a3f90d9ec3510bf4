// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"context"
	"time"

	"github.com/ik5/audclean/audio"
	"github.com/ik5/audclean/internal/config"
	"github.com/ik5/audclean/internal/logging"
	"github.com/sirupsen/logrus"
)

// Filter policy. Not configurable.
const (
	HighPassCutoff = 80.0
	HighPassQ      = 0.7
	UnityGain      = 1.0
)

// How a capture was stopped, reported in Result.StoppedBy.
const (
	StoppedByTimer = "timer"
	StoppedByEnded = "ended"
)

// Result is the captured, filtered signal.
type Result struct {
	Blob       []byte // 16-bit PCM WAV
	Frames     int
	SampleRate int
	Channels   int
	Elapsed    time.Duration
	StoppedBy  string
}

// Duration of the captured audio.
func (r *Result) Duration() time.Duration {
	if r.SampleRate <= 0 {
		return 0
	}
	return time.Duration(r.Frames) * time.Second / time.Duration(r.SampleRate)
}

// Engine runs the filter graph over a buffer in real time and records it.
type Engine struct {
	cfg config.EngineConfig
	log logrus.FieldLogger

	newContext func(rate, channels, quantum int, speed float64) (*Context, error)
}

func New(cfg config.EngineConfig, log logrus.FieldLogger) *Engine {
	return &Engine{
		cfg:        cfg,
		log:        logging.Component(log, "capture"),
		newContext: NewContext,
	}
}

// StopAfter is when the stop timer fires for a buffer of duration d. Only
// the playback time is scaled by the speed; the slack is wall clock.
func (e *Engine) StopAfter(d time.Duration) time.Duration {
	return time.Duration(float64(d)/e.cfg.Speed) + e.cfg.StopSlack
}

// Capture plays buf through source -> high-pass -> gain -> recorder and
// returns the recording. The processing context is closed on every path.
func (e *Engine) Capture(ctx context.Context, buf *audio.Buffer) (*Result, error) {
	if buf == nil {
		return nil, &Error{Op: OpContext, Err: ErrNoBuffer}
	}

	actx, err := e.newContext(buf.SampleRate, buf.Channels, e.cfg.FramesPerQuantum, e.cfg.Speed)
	if err != nil {
		return nil, &Error{Op: OpContext, Err: err}
	}
	defer actx.Close()

	src := NewBufferSourceNode(buf)
	highpass, err := audio.NewHighPass(src, HighPassCutoff, HighPassQ)
	if err != nil {
		return nil, &Error{Op: OpGraph, Err: err}
	}
	gain := audio.NewGain(highpass, UnityGain)
	rec := NewRecorder(buf.SampleRate, buf.Channels)
	if err := actx.Connect(gain, rec.Write); err != nil {
		return nil, &Error{Op: OpGraph, Err: err}
	}

	// source and recorder start together, before the first quantum
	var srcErr, recErr error
	actx.Do(func() {
		if srcErr = src.Start(); srcErr != nil {
			return
		}
		recErr = rec.Start()
	})
	if srcErr != nil {
		return nil, &Error{Op: OpGraph, Err: srcErr}
	}
	if recErr != nil {
		return nil, &Error{Op: OpRecorder, Err: recErr}
	}

	started := time.Now()
	if err := actx.Start(); err != nil {
		return nil, &Error{Op: OpContext, Err: err}
	}

	stopAfter := e.StopAfter(buf.Duration())
	timer := time.NewTimer(stopAfter)
	defer timer.Stop()

	var ended <-chan struct{}
	if e.cfg.StopOnEnded {
		ended = src.Ended()
	}

	log := e.log.WithFields(logrus.Fields{
		"duration":   buf.Duration(),
		"stop_after": stopAfter,
		"rate":       buf.SampleRate,
		"channels":   buf.Channels,
	})
	log.Debug("capture started")

	stop := func() error {
		var stopErr error
		actx.Do(func() {
			stopErr = rec.Stop()
			src.Stop()
		})
		return stopErr
	}

	var stoppedBy string
	select {
	case <-timer.C:
		// render what the clock says is due before stopping
		actx.Flush()
		stoppedBy = StoppedByTimer
	case <-ended:
		stoppedBy = StoppedByEnded
	case <-actx.Failed():
		_ = stop()
		return nil, &Error{Op: OpRender, Err: actx.Err()}
	case <-ctx.Done():
		_ = stop()
		return nil, &Error{Op: OpCancel, Err: ctx.Err()}
	}

	if err := stop(); err != nil {
		return nil, &Error{Op: OpRecorder, Err: err}
	}
	if err := actx.Close(); err != nil {
		log.WithError(err).Warn("closing processing context")
	}
	if err := actx.Err(); err != nil {
		return nil, &Error{Op: OpRender, Err: err}
	}

	blob := rec.Blob()
	if len(blob) == 0 {
		return nil, &Error{Op: OpRecorder, Err: ErrEmptyCapture}
	}

	res := &Result{
		Blob:       blob,
		Frames:     rec.Frames(),
		SampleRate: buf.SampleRate,
		Channels:   buf.Channels,
		Elapsed:    time.Since(started),
		StoppedBy:  stoppedBy,
	}
	log.WithFields(logrus.Fields{
		"frames":     res.Frames,
		"elapsed":    res.Elapsed,
		"stopped_by": stoppedBy,
	}).Debug("capture finished")
	return res, nil
}
