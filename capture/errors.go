// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"errors"
	"fmt"
)

// Capture stage operations, reported in Error.Op.
const (
	OpContext  = "context"
	OpGraph    = "graph"
	OpRecorder = "recorder"
	OpRender   = "render"
	OpCancel   = "cancel"
)

var (
	ErrInvalidContext = errors.New("invalid processing context parameters")
	ErrNoBuffer       = errors.New("no audio buffer")
	ErrEmptyCapture   = errors.New("recorder produced no data")
	ErrAlreadyStarted = errors.New("already started")
	ErrNotRecording   = errors.New("recorder is not recording")
)

// Error is the capture stage failure.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("capture %s failed: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
