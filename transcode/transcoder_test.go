// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"context"
	"errors"
	"slices"
	"sync"
	"testing"

	"github.com/ik5/audclean/internal/config"
	"github.com/ik5/audclean/internal/logging"
)

// fakeEngine is an in-memory Engine with injectable failures.
type fakeEngine struct {
	mu         sync.Mutex
	files      map[string][]byte
	runs       [][]string
	terminates int

	loadErr, writeErr, runErr, readErr, terminateErr error
	output                                           []byte
}

func (f *fakeEngine) Load(context.Context) error {
	f.files = map[string][]byte{}
	return f.loadErr
}

func (f *fakeEngine) WriteFile(_ context.Context, name string, data []byte) error {
	if f.writeErr != nil {
		return f.writeErr
	}
	f.files[name] = data
	return nil
}

func (f *fakeEngine) Run(_ context.Context, args ...string) error {
	f.runs = append(f.runs, args)
	if f.runErr != nil {
		return f.runErr
	}
	f.files[args[len(args)-1]] = f.output
	return nil
}

func (f *fakeEngine) ReadFile(_ context.Context, name string) ([]byte, error) {
	if f.readErr != nil {
		return nil, f.readErr
	}
	data, ok := f.files[name]
	if !ok {
		return nil, errors.New("no such file")
	}
	return data, nil
}

func (f *fakeEngine) Terminate() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.terminates++
	return f.terminateErr
}

func (f *fakeEngine) factory() Factory {
	return func() Engine { return f }
}

func TestTranscoder_Transcode(t *testing.T) {
	t.Parallel()

	for _, format := range Formats() {
		t.Run(string(format), func(t *testing.T) {
			t.Parallel()

			fe := &fakeEngine{output: []byte("encoded")}
			tr := New(config.TranscoderConfig{}, fe.factory(), logging.Discard())

			out, err := tr.Transcode(context.Background(), []byte("RIFF"), format)
			if err != nil {
				t.Fatalf("Transcode() error = %v", err)
			}
			if string(out.Data) != "encoded" || out.Format != format || out.MIMEType != format.MIMEType() {
				t.Errorf("Output = %+v", out)
			}
			if string(fe.files[InputName]) != "RIFF" {
				t.Errorf("input.wav = %q", fe.files[InputName])
			}
			want, _ := Command(format)
			if len(fe.runs) != 1 || !slices.Equal(fe.runs[0], want) {
				t.Errorf("runs = %q, want one run of %q", fe.runs, want)
			}
			if fe.terminates != 1 {
				t.Errorf("Terminate called %d times, want 1", fe.terminates)
			}
		})
	}
}

func TestTranscoder_Failures(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	tests := []struct {
		name   string
		engine *fakeEngine
		wantOp string
		want   error
	}{
		{"load", &fakeEngine{loadErr: boom}, OpLoad, boom},
		{"write", &fakeEngine{writeErr: boom}, OpWrite, boom},
		{"run", &fakeEngine{runErr: boom}, OpRun, boom},
		{"read", &fakeEngine{readErr: boom}, OpRead, boom},
		{"empty output", &fakeEngine{}, OpRead, ErrEmptyOutput},
		{"terminate", &fakeEngine{output: []byte("x"), terminateErr: boom}, OpTerminate, boom},
		{"run and terminate", &fakeEngine{runErr: boom, terminateErr: errors.New("cleanup")}, OpRun, boom},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := New(config.TranscoderConfig{}, tt.engine.factory(), logging.Discard())
			out, err := tr.Transcode(context.Background(), []byte("RIFF"), MP4)
			if out != nil {
				t.Errorf("Output = %+v, want nil on failure", out)
			}

			var terr *Error
			if !errors.As(err, &terr) {
				t.Fatalf("error = %v, want *Error", err)
			}
			if terr.Op != tt.wantOp || terr.Format != MP4 {
				t.Errorf("Error = {%s %s}, want {%s mp4}", terr.Op, terr.Format, tt.wantOp)
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
			if tt.engine.terminates != 1 {
				t.Errorf("Terminate called %d times, want 1", tt.engine.terminates)
			}
		})
	}
}

func TestTranscoder_UnknownFormat(t *testing.T) {
	t.Parallel()

	fe := &fakeEngine{}
	tr := New(config.TranscoderConfig{}, fe.factory(), logging.Discard())
	if _, err := tr.Transcode(context.Background(), nil, "flac"); !errors.Is(err, ErrUnknownFormat) {
		t.Errorf("error = %v, want ErrUnknownFormat", err)
	}
	if fe.terminates != 0 {
		t.Error("no engine should be created for an unknown format")
	}
}

func TestWithEngine_PassesFnError(t *testing.T) {
	t.Parallel()

	fe := &fakeEngine{}
	boom := errors.New("fn failed")
	err := WithEngine(context.Background(), fe.factory(), func(Engine) error { return boom })
	if !errors.Is(err, boom) {
		t.Errorf("error = %v, want %v", err, boom)
	}
	if fe.terminates != 1 {
		t.Errorf("Terminate called %d times, want 1", fe.terminates)
	}
}

func TestError_Message(t *testing.T) {
	t.Parallel()

	err := &Error{Op: OpRun, Format: MP3, Err: errors.New("exit status 1")}
	if got := err.Error(); got != "transcode to mp3: run failed: exit status 1" {
		t.Errorf("Error() = %q", got)
	}
	err = &Error{Op: OpLoad, Err: errors.New("not found")}
	if got := err.Error(); got != "transcode load failed: not found" {
		t.Errorf("Error() = %q", got)
	}
}
