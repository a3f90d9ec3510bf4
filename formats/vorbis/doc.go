// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis audio with github.com/jfreymuth/oggvorbis.
//
// The returned Source keeps the stream's native channel count and sample
// rate. Each read fills as much of dst as the stream allows, in whole
// frames, and the last read returns (n, io.EOF).
package vorbis
