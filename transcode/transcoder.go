// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"context"
	"errors"
	"time"

	"github.com/ik5/audclean/internal/config"
	"github.com/ik5/audclean/internal/logging"
	"github.com/sirupsen/logrus"
)

// Output is an encoded artifact body.
type Output struct {
	Data     []byte
	Format   Format
	MIMEType string
}

// Transcoder turns a captured WAV blob into the requested format, using a
// fresh engine for every call.
type Transcoder struct {
	factory Factory
	timeout time.Duration
	log     logrus.FieldLogger
}

// New returns a Transcoder. A nil factory uses ffmpeg as configured in cfg.
func New(cfg config.TranscoderConfig, factory Factory, log logrus.FieldLogger) *Transcoder {
	if factory == nil {
		factory = NewFFmpegFactory(cfg, log)
	}
	return &Transcoder{
		factory: factory,
		timeout: cfg.Timeout,
		log:     logging.Component(log, "transcode"),
	}
}

func (t *Transcoder) Transcode(ctx context.Context, blob []byte, format Format) (*Output, error) {
	args, err := Command(format)
	if err != nil {
		return nil, &Error{Op: OpRun, Format: format, Err: err}
	}
	if t.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, t.timeout)
		defer cancel()
	}

	start := time.Now()
	var data []byte
	err = WithEngine(ctx, t.factory, func(e Engine) error {
		if err := e.WriteFile(ctx, InputName, blob); err != nil {
			return &Error{Op: OpWrite, Format: format, Err: err}
		}
		if err := e.Run(ctx, args...); err != nil {
			return &Error{Op: OpRun, Format: format, Err: err}
		}
		out, err := e.ReadFile(ctx, format.OutputName())
		if err != nil {
			return &Error{Op: OpRead, Format: format, Err: err}
		}
		if len(out) == 0 {
			return &Error{Op: OpRead, Format: format, Err: ErrEmptyOutput}
		}
		data = out
		return nil
	})
	if err != nil {
		var terr *Error
		if errors.As(err, &terr) && terr.Format == "" {
			terr.Format = format
		}
		t.log.WithError(err).WithField("format", format).Debug("transcode failed")
		return nil, err
	}

	t.log.WithFields(logrus.Fields{
		"format":  format,
		"in":      len(blob),
		"out":     len(data),
		"elapsed": time.Since(start),
	}).Debug("transcoded")
	return &Output{Data: data, Format: format, MIMEType: format.MIMEType()}, nil
}
