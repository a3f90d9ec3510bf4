// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize = errors.New("dst size must be multiple of channels")

	// ErrInvalidFormat is returned for a non-positive sample rate or channel count.
	ErrInvalidFormat = errors.New("invalid sample rate or channel count")

	// ErrInvalidCutoff is returned when a filter cutoff is outside (0, Nyquist).
	ErrInvalidCutoff = errors.New("filter cutoff must be between 0 and the Nyquist frequency")

	// ErrInvalidQ is returned for a non-positive filter quality factor.
	ErrInvalidQ = errors.New("filter Q must be positive")

	// ErrNoProgress is returned when a source keeps returning zero samples without an error.
	ErrNoProgress = errors.New("source returned no samples")
)
