// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"fmt"
	"strings"
)

// Format is an output format token.
type Format string

const (
	MP3 Format = "mp3"
	MP4 Format = "mp4"
	WAV Format = "wav"
)

// InputName is the file the captured WAV blob is written to inside the engine.
const InputName = "input.wav"

type profile struct {
	codec string
	param []string
	mime  string
}

var profiles = map[Format]profile{
	MP3: {codec: "libmp3lame", param: []string{"-qscale:a", "2"}, mime: "audio/mpeg"},
	MP4: {codec: "aac", param: []string{"-b:a", "192k"}, mime: "audio/mp4"},
	WAV: {codec: "pcm_s16le", mime: "audio/wav"},
}

// Formats lists the supported output formats in menu order.
func Formats() []Format { return []Format{MP3, MP4, WAV} }

// ParseFormat accepts a format token, case-insensitively.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(strings.TrimSpace(s)))
	if !f.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
	}
	return f, nil
}

func (f Format) Valid() bool {
	_, ok := profiles[f]
	return ok
}

func (f Format) String() string { return string(f) }

// Extension doubles as the container name.
func (f Format) Extension() string { return string(f) }

func (f Format) MIMEType() string { return profiles[f].mime }

// OutputName is the file the engine writes the encoded result to.
func (f Format) OutputName() string { return "output." + f.Extension() }

// Command returns the encoder arguments for f:
// -i input.wav -codec:a <codec> [param] output.<ext>
func Command(f Format) ([]string, error) {
	p, ok := profiles[f]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}

	args := []string{"-i", InputName, "-codec:a", p.codec}
	args = append(args, p.param...)
	return append(args, f.OutputName()), nil
}
