// SPDX-License-Identifier: EPL-2.0

package pipeline

import (
	"errors"
	"fmt"

	"github.com/ik5/audclean/transcode"
)

var ErrInvalidTransition = errors.New("invalid pipeline transition")

// State is one of Idle, Loading, Filtering, Converting, Succeeded or Failed.
type State interface {
	fmt.Stringer
	state()
}

type (
	Idle      struct{}
	Loading   struct{ Format transcode.Format }
	Filtering struct{ Format transcode.Format }
	// Converting carries the target format for its status text.
	Converting struct{ Format transcode.Format }
	Succeeded  struct{ Artifact *Artifact }
	Failed     struct{ Err error }
)

func (Idle) state()       {}
func (Loading) state()    {}
func (Filtering) state()  {}
func (Converting) state() {}
func (Succeeded) state()  {}
func (Failed) state()     {}

func (Idle) String() string       { return "idle" }
func (Loading) String() string    { return "loading" }
func (Filtering) String() string  { return "filtering" }
func (Converting) String() string { return "converting" }
func (Succeeded) String() string  { return "succeeded" }
func (Failed) String() string     { return "failed" }

// Event drives Transition.
type Event interface {
	fmt.Stringer
	event()
}

type (
	// Started is the single external trigger.
	Started    struct{ Format transcode.Format }
	Decoded    struct{}
	Captured   struct{}
	Transcoded struct{ Artifact *Artifact }
	Aborted    struct{ Err error }
	// Reset returns a finished run to Idle.
	Reset struct{}
)

func (Started) event()    {}
func (Decoded) event()    {}
func (Captured) event()   {}
func (Transcoded) event() {}
func (Aborted) event()    {}
func (Reset) event()      {}

func (Started) String() string    { return "start" }
func (Decoded) String() string    { return "decoded" }
func (Captured) String() string   { return "captured" }
func (Transcoded) String() string { return "transcoded" }
func (Aborted) String() string    { return "aborted" }
func (Reset) String() string      { return "reset" }

// Terminal reports whether s ends a run.
func Terminal(s State) bool {
	switch s.(type) {
	case Succeeded, Failed:
		return true
	default:
		return false
	}
}

// Transition returns the state that follows s on e. Any running state may
// abort; finished runs may reset to Idle or start again.
func Transition(s State, e Event) (State, error) {
	if ev, ok := e.(Aborted); ok {
		switch s.(type) {
		case Loading, Filtering, Converting:
			return Failed{Err: ev.Err}, nil
		}
		return s, invalid(s, e)
	}

	switch st := s.(type) {
	case Idle:
		if ev, ok := e.(Started); ok {
			return Loading{Format: ev.Format}, nil
		}
	case Loading:
		if _, ok := e.(Decoded); ok {
			return Filtering{Format: st.Format}, nil
		}
	case Filtering:
		if _, ok := e.(Captured); ok {
			return Converting{Format: st.Format}, nil
		}
	case Converting:
		if ev, ok := e.(Transcoded); ok {
			return Succeeded{Artifact: ev.Artifact}, nil
		}
	case Succeeded, Failed:
		switch ev := e.(type) {
		case Reset:
			return Idle{}, nil
		case Started:
			return Loading{Format: ev.Format}, nil
		}
	default:
		return s, fmt.Errorf("%w: unknown state %T", ErrInvalidTransition, s)
	}
	return s, invalid(s, e)
}

func invalid(s State, e Event) error {
	return fmt.Errorf("%w: %s on %s", ErrInvalidTransition, s, e)
}
