// SPDX-License-Identifier: EPL-2.0

package ffmpeg

import "errors"

var (
	// ErrNoAudioStream indicates ffprobe found no audio stream in the input.
	ErrNoAudioStream = errors.New("no audio stream found")

	// ErrInvalidStreamInfo indicates ffprobe reported a stream without a usable rate or channel count.
	ErrInvalidStreamInfo = errors.New("invalid audio stream info")

	// ErrEmptyInput is returned before any process is started.
	ErrEmptyInput = errors.New("empty input")
)
