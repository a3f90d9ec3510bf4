// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrNotWavFile           = errors.New("not a WAV file")
	ErrUnsupportedWavLayout = errors.New("unsupported WAV layout")
	ErrUnsupportedBitDepth  = errors.New("only 8, 16, 24 and 32-bit integer PCM supported")
	ErrUnsupportedWavChunks = errors.New("unsupported WAV chunks")

	// ErrTruncatedData is returned when the data chunk ends before the size
	// its header declares.
	ErrTruncatedData = errors.New("WAV data chunk is truncated")

	// ErrWriterClosed is returned when writing to a finished PCM16Writer.
	ErrWriterClosed = errors.New("WAV writer already closed")
)
