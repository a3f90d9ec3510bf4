// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ik5/audclean/audio"
	"github.com/ik5/audclean/capture"
	"github.com/ik5/audclean/decode"
	"github.com/ik5/audclean/formats/wav"
	"github.com/ik5/audclean/internal/analysis"
	"github.com/ik5/audclean/internal/logging"
	"github.com/ik5/audclean/transcode"
	"github.com/sirupsen/logrus"
)

// Stage contracts. The decode, capture and transcode packages satisfy them.
type (
	Decoder interface {
		Decode(ctx context.Context, in decode.Input) (*audio.Buffer, error)
	}
	Capturer interface {
		Capture(ctx context.Context, buf *audio.Buffer) (*capture.Result, error)
	}
	Encoder interface {
		Transcode(ctx context.Context, blob []byte, format transcode.Format) (*transcode.Output, error)
	}
)

type Options struct {
	Display   Display   // defaults to a no-op display
	Publisher Publisher // nil skips publishing
	Logger    logrus.FieldLogger
	Clock     func() time.Time // names the artifact; defaults to time.Now

	// Report logs the sub-80 Hz energy removed by the run.
	Report bool
}

// Request is one trigger: the chosen file and the output format.
type Request struct {
	Input  decode.Input
	Format transcode.Format
}

// Runner sequences decode, capture and transcode for one run at a time.
type Runner struct {
	decoder  Decoder
	capturer Capturer
	encoder  Encoder

	display   Display
	publisher Publisher
	log       logrus.FieldLogger
	clock     func() time.Time
	report    bool

	busy  atomic.Bool
	mu    sync.Mutex
	state State
}

func NewRunner(dec Decoder, capt Capturer, enc Encoder, opts Options) *Runner {
	r := &Runner{
		decoder:   dec,
		capturer:  capt,
		encoder:   enc,
		display:   opts.Display,
		publisher: opts.Publisher,
		log:       logging.Component(opts.Logger, "pipeline"),
		clock:     opts.Clock,
		report:    opts.Report,
		state:     Idle{},
	}
	if r.display == nil {
		r.display = nopDisplay{}
	}
	if r.clock == nil {
		r.clock = time.Now
	}
	return r
}

// State is the current machine state.
func (r *Runner) State() State {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Busy reports whether a run is in flight.
func (r *Runner) Busy() bool { return r.busy.Load() }

func (r *Runner) fire(e Event) {
	r.mu.Lock()
	next, err := Transition(r.state, e)
	if err == nil {
		r.state = next
	}
	r.mu.Unlock()

	if err != nil {
		r.log.WithError(err).Error("state machine")
		return
	}
	if st, ok := StatusOf(next); ok {
		r.display.SetStatus(st)
	}
}

// Run executes one pipeline run. The artifact is published only when every
// stage succeeded; on failure the error is shown and returned.
func (r *Runner) Run(ctx context.Context, req Request) (*Artifact, error) {
	if !r.busy.CompareAndSwap(false, true) {
		return nil, ErrBusy
	}
	defer r.busy.Store(false)

	if req.Input.Data == nil && req.Input.Name == "" {
		r.display.SetStatus(Status{Text: TextNoInput, Class: ClassError})
		return nil, ErrNoInput
	}
	if !req.Format.Valid() {
		err := fmt.Errorf("%w: %q", transcode.ErrUnknownFormat, string(req.Format))
		r.display.SetStatus(ErrorStatus(err))
		return nil, err
	}

	r.display.SetTriggerEnabled(false)
	defer r.display.SetTriggerEnabled(true)
	r.display.HideArtifact()

	log := r.log.WithFields(logrus.Fields{
		"run":    uuid.NewString(),
		"file":   req.Input.Name,
		"format": req.Format,
	})

	r.fire(Started{Format: req.Format})
	defer r.fire(Reset{})

	artifact, link, err := r.run(ctx, req, log)
	if err != nil {
		log.WithError(err).WithField("stage", StageOf(err)).Warn("run failed")
		r.fire(Aborted{Err: err})
		return nil, err
	}

	r.fire(Transcoded{Artifact: artifact})
	if r.publisher != nil {
		r.display.ShowArtifact(link)
	}
	log.WithFields(logrus.Fields{
		"filename": artifact.Filename,
		"bytes":    len(artifact.Data),
	}).Info("run completed")
	return artifact, nil
}

func (r *Runner) run(ctx context.Context, req Request, log logrus.FieldLogger) (*Artifact, Link, error) {
	buf, err := r.decoder.Decode(ctx, req.Input)
	if err != nil {
		return nil, Link{}, err
	}
	log.WithFields(logrus.Fields{
		"rate":     buf.SampleRate,
		"channels": buf.Channels,
		"duration": buf.Duration(),
	}).Debug("decoded")
	r.fire(Decoded{})

	res, err := r.capturer.Capture(ctx, buf)
	if err != nil {
		return nil, Link{}, err
	}
	if r.report {
		r.logReport(log, buf, res)
	}
	r.fire(Captured{})

	out, err := r.encoder.Transcode(ctx, res.Blob, req.Format)
	if err != nil {
		return nil, Link{}, err
	}

	artifact := newArtifact(out, r.clock())
	var link Link
	if r.publisher != nil {
		link, err = r.publisher.Publish(artifact)
		if err != nil {
			return nil, Link{}, &PublishError{Err: err}
		}
	}
	return artifact, link, nil
}

func (r *Runner) logReport(log logrus.FieldLogger, in *audio.Buffer, res *capture.Result) {
	src, err := wav.Decoder{}.Decode(bytes.NewReader(res.Blob))
	if err != nil {
		log.WithError(err).Warn("report: reading capture")
		return
	}
	out, err := audio.ReadAll(src)
	if err != nil {
		log.WithError(err).Warn("report: reading capture")
		return
	}

	a, err := analysis.NewAnalyzer(analysis.DefaultFFTSize)
	if err != nil {
		log.WithError(err).Warn("report")
		return
	}
	rep := a.Compare(in, out, capture.HighPassCutoff)
	log.WithFields(logrus.Fields{
		"input_seconds":  rep.InputSeconds,
		"output_seconds": rep.OutputSeconds,
		"stopped_by":     res.StoppedBy,
		"low_band_db":    fmt.Sprintf("%.1f", rep.ReductionDB),
	}).Info("noise reduction")
}
