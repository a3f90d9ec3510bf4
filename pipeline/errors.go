// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"errors"

	"github.com/ik5/audclean/capture"
	"github.com/ik5/audclean/decode"
	"github.com/ik5/audclean/transcode"
)

// Stage names returned by StageOf.
const (
	StageDecode    = "decode"
	StageCapture   = "capture"
	StageTranscode = "transcode"
	StagePublish   = "publish"
)

var (
	ErrBusy    = errors.New("a run is already in progress")
	ErrNoInput = errors.New("no audio file")
)

// PublishError wraps a Publisher failure.
type PublishError struct{ Err error }

func (e *PublishError) Error() string { return "publishing artifact: " + e.Err.Error() }
func (e *PublishError) Unwrap() error { return e.Err }

// StageOf names the stage err came from, or "" when it is not a stage error.
func StageOf(err error) string {
	var (
		de *decode.Error
		ce *capture.Error
		te *transcode.Error
		pe *PublishError
	)
	switch {
	case errors.As(err, &de):
		return StageDecode
	case errors.As(err, &ce):
		return StageCapture
	case errors.As(err, &te):
		return StageTranscode
	case errors.As(err, &pe):
		return StagePublish
	default:
		return ""
	}
}
