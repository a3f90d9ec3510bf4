// SPDX-License-Identifier: EPL-2.0

package decode

import (
	"bytes"
	"context"
	"errors"

	"github.com/ik5/audclean/audio"
	"github.com/ik5/audclean/formats/aiff"
	"github.com/ik5/audclean/formats/ffmpeg"
	"github.com/ik5/audclean/formats/mp3"
	"github.com/ik5/audclean/formats/vorbis"
	"github.com/ik5/audclean/formats/wav"
	"github.com/ik5/audclean/internal/config"
	"github.com/ik5/audclean/internal/logging"
	"github.com/sirupsen/logrus"
)

// Input is one user-supplied file.
type Input struct {
	Name        string
	ContentType string
	Data        []byte
}

// Decoder turns Input bytes into an audio.Buffer at the engine rate.
type Decoder struct {
	registry *audio.Registry
	fallback *ffmpeg.Decoder
	rate     int
	log      logrus.FieldLogger
}

// NewRegistry returns a registry holding every native decoder.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register(FormatWAV, wav.Decoder{})
	r.Register(FormatMP3, mp3.Decoder{})
	r.Register(FormatOgg, vorbis.Decoder{})
	r.Register(FormatAIFF, aiff.Decoder{})
	return r
}

func New(cfg *config.Config, log logrus.FieldLogger) *Decoder {
	d := &Decoder{
		registry: NewRegistry(),
		rate:     cfg.Engine.SampleRate,
		log:      logging.Component(log, "decode"),
	}
	if cfg.Decoder.FFmpegFallback {
		d.fallback = &ffmpeg.Decoder{
			FFmpeg:  cfg.Transcoder.FFmpeg,
			FFprobe: cfg.Decoder.FFprobe,
			TempDir: cfg.Transcoder.TempDir,
		}
	}
	return d
}

// SampleRate is the rate every decoded buffer is delivered at.
func (d *Decoder) SampleRate() int { return d.rate }

// Decode reads in fully. Layouts wider than stereo are folded to mono and
// the result is resampled to the engine rate. On failure the error is a
// *Error.
func (d *Decoder) Decode(ctx context.Context, in Input) (*audio.Buffer, error) {
	if len(in.Data) == 0 {
		return nil, &Error{Err: ErrEmptyInput}
	}

	det := Detect(in)
	log := d.log.WithFields(logrus.Fields{
		"name":   in.Name,
		"bytes":  len(in.Data),
		"mime":   det.MIME,
		"format": det.Key,
		"by":     det.By,
	})

	var nativeErr error
	if dec, ok := d.registry.Get(det.Key); ok {
		buf, err := d.read(ctx, func() (audio.Source, error) {
			return dec.Decode(bytes.NewReader(in.Data))
		})
		if err == nil {
			log.WithField("frames", buf.Frames()).Debug("decoded natively")
			return buf, nil
		}
		// a short data chunk is damage, not a layout ffmpeg could read better
		if ctx.Err() != nil || errors.Is(err, wav.ErrTruncatedData) {
			return nil, &Error{Format: det.Key, Err: err}
		}
		nativeErr = err
		log.WithError(err).Debug("native decoder failed")
	}

	if d.fallback == nil || !d.fallback.Available() {
		if nativeErr != nil {
			return nil, &Error{Format: det.Key, Err: nativeErr}
		}
		return nil, &Error{Format: det.MIME, Err: ErrUnsupportedFormat}
	}

	buf, err := d.read(ctx, func() (audio.Source, error) {
		return d.fallback.DecodeContext(ctx, bytes.NewReader(in.Data))
	})
	if err != nil {
		// the native diagnostic is more specific when there was one
		if nativeErr != nil {
			return nil, &Error{Format: det.Key, Err: nativeErr}
		}
		return nil, &Error{Format: det.MIME, Err: err}
	}

	log.WithField("frames", buf.Frames()).Debug("decoded with ffmpeg")
	return buf, nil
}

// read opens a source, brings it to the engine layout and drains it.
func (d *Decoder) read(ctx context.Context, open func() (audio.Source, error)) (*audio.Buffer, error) {
	src, err := open()
	if err != nil {
		return nil, err
	}
	src, err = d.normalize(src)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	buf, err := audio.ReadAllContext(ctx, src)
	if err != nil {
		return nil, err
	}
	return buf, nil
}

func (d *Decoder) normalize(src audio.Source) (audio.Source, error) {
	if src.Channels() <= 0 || src.SampleRate() <= 0 {
		src.Close()
		return nil, audio.ErrInvalidFormat
	}
	if src.Channels() > 2 {
		src = audio.NewMonoMixer(src)
	}
	if src.SampleRate() != d.rate {
		src = audio.NewResampler(src, d.rate)
	}
	return src, nil
}
