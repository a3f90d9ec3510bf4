// SPDX-License-Identifier: EPL-2.0

// Package ffmpeg is the fallback decoder for containers without a native Go
// decoder (WebM/Opus, MP4/AAC, FLAC, ...). It shells out to ffprobe for the
// stream layout and to ffmpeg for raw float32 PCM, so both binaries must be
// on PATH or configured explicitly.
package ffmpeg
