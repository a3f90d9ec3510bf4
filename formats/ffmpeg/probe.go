// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// StreamInfo is the subset of an ffprobe stream entry the decoder needs.
type StreamInfo struct {
	CodecName     string `json:"codec_name"`
	ChannelLayout string `json:"channel_layout"`
	Channels      int    `json:"channels"`
	SampleRate    string `json:"sample_rate"`
	Duration      string `json:"duration"`
}

type probeOutput struct {
	Streams []StreamInfo `json:"streams"`
}

// Rate parses the sample rate, which ffprobe reports as a string.
func (s StreamInfo) Rate() int {
	rate, err := strconv.Atoi(s.SampleRate)
	if err != nil {
		return 0
	}
	return rate
}

// Seconds is the stream duration, or 0 when ffprobe did not report one.
func (s StreamInfo) Seconds() float64 {
	d, err := strconv.ParseFloat(s.Duration, 64)
	if err != nil {
		return 0
	}
	return d
}

func parseProbe(out []byte) (StreamInfo, error) {
	var probe probeOutput
	if err := json.Unmarshal(out, &probe); err != nil {
		return StreamInfo{}, fmt.Errorf("parsing ffprobe output: %w", err)
	}
	if len(probe.Streams) == 0 {
		return StreamInfo{}, ErrNoAudioStream
	}

	info := probe.Streams[0]
	if info.Channels <= 0 || info.Rate() <= 0 {
		return StreamInfo{}, fmt.Errorf("%w: %d channels at %q Hz", ErrInvalidStreamInfo, info.Channels, info.SampleRate)
	}
	return info, nil
}

// Probe reports the first audio stream of the file at path.
func Probe(ctx context.Context, ffprobe, path string) (StreamInfo, error) {
	cmd := exec.CommandContext(ctx, ffprobe,
		"-v", "error",
		"-print_format", "json",
		"-show_streams",
		"-select_streams", "a:0",
		path,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	out, err := cmd.Output()
	if err != nil {
		return StreamInfo{}, fmt.Errorf("ffprobe: %w: %s", err, strings.TrimSpace(stderr.String()))
	}
	return parseProbe(out)
}
