// SPDX-License-Identifier: EPL-2.0

// Package capture is the filter-and-capture engine.
//
// A decoded buffer is played through a fixed graph
//
//	BufferSourceNode -> audio.HighPass(80 Hz, Q 0.7) -> audio.Gain(1) -> Recorder
//
// inside a temporary Context that renders one quantum at a time, paced by
// the wall clock. Rendering is real time at speed 1, so capturing a three
// second buffer takes about three seconds.
//
// The recording stops when the source reports it has ended (if enabled) or
// when the stop timer fires at (duration + slack) / speed, whichever comes
// first. The recorder is stopped before the source, in the same step. The
// output is always a 16-bit PCM WAV at the buffer's rate and channel count.
package capture
