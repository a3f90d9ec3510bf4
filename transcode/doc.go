// SPDX-License-Identifier: EPL-2.0

// Package transcode encodes a captured WAV blob into mp3, mp4 (AAC) or wav.
//
// Encoding runs in an Engine: a loadable encoder with its own file system.
// The FFmpeg engine shells out to the ffmpeg binary and uses a temp directory
// as that file system. WithEngine guarantees the engine is terminated.
//
//	t := transcode.New(cfg.Transcoder, nil, log)
//	out, err := t.Transcode(ctx, blob, transcode.MP3)
package transcode
