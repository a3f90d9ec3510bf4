// SPDX-License-Identifier: EPL-2.0

package transcode

import "context"

// Engine is a software encoder with a private file system.
// An instance is loaded once, used, then terminated.
type Engine interface {
	Load(ctx context.Context) error
	WriteFile(ctx context.Context, name string, data []byte) error
	Run(ctx context.Context, args ...string) error
	ReadFile(ctx context.Context, name string) ([]byte, error)
	Terminate() error
}

// Factory creates a fresh, unloaded engine.
type Factory func() Engine

// WithEngine creates and loads an engine, hands it to fn and terminates it
// exactly once, whether Load or fn fail or not. A termination failure is
// returned only when nothing failed before it.
func WithEngine(ctx context.Context, factory Factory, fn func(Engine) error) (err error) {
	e := factory()
	defer func() {
		terr := e.Terminate()
		if terr != nil && err == nil {
			err = &Error{Op: OpTerminate, Err: terr}
		}
	}()

	if err := e.Load(ctx); err != nil {
		return &Error{Op: OpLoad, Err: err}
	}
	return fn(e)
}
