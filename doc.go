// SPDX-License-Identifier: EPL-2.0

// Package audclean removes low-frequency noise from audio files.
//
// A run decodes the input, plays it through an 80 Hz high-pass filter in a
// real-time render loop while recording the output, and re-encodes the
// recording as mp3, mp4 (AAC) or wav:
//
//	art, err := audclean.Clean(ctx, nil, decode.Input{Name: "talk.wav", Data: data}, transcode.MP3)
//	if err != nil {
//	    return err
//	}
//	os.WriteFile(art.Filename, art.Data, 0o644)
//
// A nil configuration means the defaults. Callers that need to tune the
// render speed or ffmpeg paths start from DefaultConfig or LoadConfig.
//
// # Packages
//
//   - decode: container sniffing and decoding to an audio.Buffer
//   - capture: the filter graph, render loop and WAV recorder
//   - transcode: the ffmpeg encoding engine
//   - pipeline: the run state machine and status reporting
//   - audio: stream primitives (sources, filters, resampling, mixing)
//   - formats/*: native wav, mp3, ogg vorbis and aiff decoders plus an ffmpeg fallback
//
// The audclean command serves the pipeline behind a web page or runs it on a
// single file from the terminal.
package audclean
