// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF files with github.com/go-audio/aiff.
//
// Uncompressed 8, 16, 24 and 32-bit big-endian PCM is supported at any
// channel count and sample rate. Readers that cannot seek are buffered in
// memory first since go-audio needs an io.ReadSeeker.
package aiff
