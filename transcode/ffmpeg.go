// SPDX-License-Identifier: EPL-2.0

package transcode

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ik5/audclean/internal/config"
	"github.com/ik5/audclean/internal/logging"
	"github.com/sirupsen/logrus"
)

var baseArgs = []string{"-hide_banner", "-nostdin", "-y", "-loglevel", "error"}

// FFmpeg runs the ffmpeg binary against a private temp directory.
type FFmpeg struct {
	Binary  string // defaults to "ffmpeg"
	TempDir string // defaults to os.TempDir()

	log logrus.FieldLogger

	mu         sync.Mutex
	bin        string
	dir        string
	terminated bool
}

// NewFFmpegFactory returns a Factory building FFmpeg engines from cfg.
func NewFFmpegFactory(cfg config.TranscoderConfig, log logrus.FieldLogger) Factory {
	log = logging.Component(log, "ffmpeg")
	return func() Engine {
		return &FFmpeg{Binary: cfg.FFmpeg, TempDir: cfg.TempDir, log: log}
	}
}

// Load resolves the binary, checks that it runs and creates the work directory.
func (f *FFmpeg) Load(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.terminated {
		return ErrTerminated
	}
	if f.dir != "" {
		return nil
	}

	name := f.Binary
	if name == "" {
		name = "ffmpeg"
	}
	bin, err := exec.LookPath(name)
	if err != nil {
		return fmt.Errorf("locating ffmpeg: %w", err)
	}

	version, err := exec.CommandContext(ctx, bin, "-version").Output()
	if err != nil {
		return fmt.Errorf("probing %s: %w", bin, err)
	}

	dir, err := os.MkdirTemp(f.TempDir, "audclean-ffmpeg-*")
	if err != nil {
		return fmt.Errorf("creating work dir: %w", err)
	}
	f.bin, f.dir = bin, dir

	if f.log != nil {
		first, _, _ := strings.Cut(string(version), "\n")
		f.log.WithFields(logrus.Fields{"bin": bin, "dir": dir}).Debug(strings.TrimSpace(first))
	}
	return nil
}

// workDir returns the directory, or an error when the engine is not usable.
func (f *FFmpeg) workDir() (string, string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.terminated {
		return "", "", ErrTerminated
	}
	if f.dir == "" {
		return "", "", ErrNotLoaded
	}
	return f.bin, f.dir, nil
}

func (f *FFmpeg) path(name string) (string, error) {
	_, dir, err := f.workDir()
	if err != nil {
		return "", err
	}
	if name == "" || filepath.Base(name) != name || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return filepath.Join(dir, name), nil
}

func (f *FFmpeg) WriteFile(_ context.Context, name string, data []byte) error {
	p, err := f.path(name)
	if err != nil {
		return err
	}
	if err := os.WriteFile(p, data, 0o600); err != nil {
		return fmt.Errorf("writing %s: %w", name, err)
	}
	return nil
}

// Run executes ffmpeg with args inside the work directory.
func (f *FFmpeg) Run(ctx context.Context, args ...string) error {
	bin, dir, err := f.workDir()
	if err != nil {
		return err
	}

	cmd := exec.CommandContext(ctx, bin, append(append([]string{}, baseArgs...), args...)...)
	cmd.Dir = dir
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("ffmpeg: %w: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg: %w", err)
	}
	return nil
}

func (f *FFmpeg) ReadFile(_ context.Context, name string) ([]byte, error) {
	p, err := f.path(name)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(p)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return data, nil
}

// Terminate removes the work directory. Only the first call does anything.
func (f *FFmpeg) Terminate() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.terminated {
		return nil
	}
	f.terminated = true
	if f.dir == "" {
		return nil
	}
	if err := os.RemoveAll(f.dir); err != nil {
		return fmt.Errorf("removing work dir: %w", err)
	}
	return nil
}

// Dir is the work directory, empty before Load.
func (f *FFmpeg) Dir() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dir
}
