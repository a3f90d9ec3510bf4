// SPDX-License-Identifier: EPL-2.0

// Package audio holds the in-memory signal types and the pull-based
// processing nodes the cleanup pipeline is assembled from.
//
// # Sources
//
// Everything that produces samples implements Source: decoders, filters
// and the capture graph alike. Samples are interleaved float32 in [-1,1]
// and a read of (0, io.EOF) marks the end of the stream. Nodes wrap a
// Source and are themselves a Source, so a graph is built by nesting:
//
//	hp, err := audio.NewHighPass(src, 80, 0.7)
//	if err != nil {
//		return err
//	}
//	out := audio.NewGain(hp, 1)
//
// # Buffers
//
// A Buffer is a fully decoded signal. ReadAll drains a Source into one and
// Buffer.Source replays it, which is how decoded files are handed to the
// capture engine.
//
// # Normalization
//
// MonoMixer folds any channel layout to mono by averaging and Resampler
// changes the sample rate with Catmull-Rom interpolation, low-passing
// first when it downsamples.
//
// # Registry
//
// Registry maps container keys ("wav", "mp3", "ogg", "aiff") to the
// Decoder that opens them. It is safe for concurrent use.
package audio
