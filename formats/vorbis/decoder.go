// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/audclean/audio"
	"github.com/jfreymuth/oggvorbis"
)

var ErrNotOggVorbis = errors.New("not an Ogg Vorbis stream")

// frameReader is the part of oggvorbis.Reader the source reads from.
// Read fills p with interleaved samples and always returns a multiple of Channels.
type frameReader interface {
	SampleRate() int
	Channels() int
	Read(p []float32) (int, error)
}

type source struct {
	dec        frameReader
	sampleRate int
	channels   int
	eof        bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 - 4096%s.channels }

func (s *source) ReadSamples(dst []float32) (int, error) {
	if s.eof {
		return 0, io.EOF
	}
	want := len(dst) - len(dst)%s.channels
	if want == 0 {
		return 0, nil
	}

	total := 0
	for total < want {
		n, err := s.dec.Read(dst[total:want])
		total += n
		if err == io.EOF {
			s.eof = true
			break
		}
		if err != nil {
			return 0, fmt.Errorf("%w", err)
		}
		if n == 0 {
			break
		}
	}

	total -= total % s.channels
	if s.eof {
		return total, io.EOF
	}
	return total, nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotOggVorbis, err)
	}
	if dec.Channels() <= 0 || dec.SampleRate() <= 0 {
		return nil, fmt.Errorf("%w: %w", ErrNotOggVorbis, audio.ErrInvalidFormat)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}
