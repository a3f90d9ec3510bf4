// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"errors"
	"fmt"
)

// Transcode stage operations, reported in Error.Op.
const (
	OpLoad      = "load"
	OpWrite     = "write"
	OpRun       = "run"
	OpRead      = "read"
	OpTerminate = "terminate"
)

var (
	ErrUnknownFormat = errors.New("unknown output format")
	ErrEmptyOutput   = errors.New("encoder produced no output")
	ErrNotLoaded     = errors.New("engine is not loaded")
	ErrTerminated    = errors.New("engine was terminated")
	ErrInvalidName   = errors.New("invalid file name")
)

// Error is the transcode stage failure.
type Error struct {
	Op     string
	Format Format
	Err    error
}

func (e *Error) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("transcode %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("transcode to %s: %s failed: %v", e.Format, e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
