// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import (
	"bytes"
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/ik5/audclean/audio"
)

// Decoder turns any container ffmpeg understands into float32 PCM.
// The input is spooled to a temp file so that ffprobe and ffmpeg can both
// seek in it.
type Decoder struct {
	FFmpeg  string // defaults to "ffmpeg"
	FFprobe string // defaults to "ffprobe"
	TempDir string // defaults to os.TempDir()
}

func (d Decoder) binaries() (string, string) {
	ffmpeg, ffprobe := d.FFmpeg, d.FFprobe
	if ffmpeg == "" {
		ffmpeg = "ffmpeg"
	}
	if ffprobe == "" {
		ffprobe = "ffprobe"
	}
	return ffmpeg, ffprobe
}

// Available reports whether both binaries can be found.
func (d Decoder) Available() bool {
	ffmpeg, ffprobe := d.binaries()
	if _, err := exec.LookPath(ffmpeg); err != nil {
		return false
	}
	_, err := exec.LookPath(ffprobe)
	return err == nil
}

func (d Decoder) Decode(r io.Reader) (audio.Source, error) {
	return d.DecodeContext(context.Background(), r)
}

// DecodeContext is Decode with cancellation of the child processes.
func (d Decoder) DecodeContext(ctx context.Context, r io.Reader) (audio.Source, error) {
	buf, err := d.decode(ctx, r)
	if err != nil {
		return nil, err
	}
	return buf.Source(), nil
}

func (d Decoder) decode(ctx context.Context, r io.Reader) (*audio.Buffer, error) {
	ffmpeg, ffprobe := d.binaries()

	tmp, err := os.CreateTemp(d.TempDir, "audclean-decode-*")
	if err != nil {
		return nil, fmt.Errorf("creating temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	written, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("spooling input: %w", err)
	}
	if written == 0 {
		return nil, ErrEmptyInput
	}

	info, err := Probe(ctx, ffprobe, tmp.Name())
	if err != nil {
		return nil, err
	}

	// keep the native layout; the caller resamples and downmixes
	cmd := exec.CommandContext(ctx, ffmpeg,
		"-hide_banner", "-nostdin",
		"-loglevel", "error",
		"-i", tmp.Name(),
		"-map", "0:a:0",
		"-f", "f32le",
		"-acodec", "pcm_f32le",
		"-ac", strconv.Itoa(info.Channels),
		"-ar", strconv.Itoa(info.Rate()),
		"pipe:1",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("ffmpeg decode: %w: %s", err, strings.TrimSpace(stderr.String()))
	}

	return &audio.Buffer{
		SampleRate: info.Rate(),
		Channels:   info.Channels,
		Data:       float32le(out, info.Channels),
	}, nil
}

// float32le converts raw little-endian float32 PCM, dropping any trailing
// partial frame.
func float32le(raw []byte, channels int) []float32 {
	n := len(raw) / 4
	n -= n % channels
	out := make([]float32, n)
	for i := range out {
		out[i] = math.Float32frombits(binary.LittleEndian.Uint32(raw[4*i:]))
	}
	return out
}
