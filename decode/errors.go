// SPDX-License-Identifier: EPL-2.0

package decode

import (
	"errors"
	"fmt"
)

var (
	ErrEmptyInput        = errors.New("input is empty")
	ErrUnsupportedFormat = errors.New("unrecognised audio container")
)

// Error is the decode stage failure. Err carries the underlying decoder's
// diagnostic.
type Error struct {
	Format string // format key or detected MIME type, may be empty
	Err    error
}

func (e *Error) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("unable to decode audio: %v", e.Err)
	}
	return fmt.Sprintf("unable to decode %s audio: %v", e.Format, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }
