// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeTempConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}
	return path
}

func TestLoad_EmptyPathUsesDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Engine.SampleRate != DefaultSampleRate {
		t.Errorf("sample rate = %d, want %d", cfg.Engine.SampleRate, DefaultSampleRate)
	}
	if cfg.Engine.StopSlack != 100*time.Millisecond {
		t.Errorf("stop slack = %v, want 100ms", cfg.Engine.StopSlack)
	}
	if !cfg.Engine.StopOnEnded || !cfg.Decoder.FFmpegFallback {
		t.Error("stop_on_ended and ffmpeg_fallback should default to true")
	}
}

func TestLoad_FileNotFound(t *testing.T) {
	t.Parallel()

	cfg, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	if err == nil {
		t.Error("expected error for missing file, got nil")
	}
	if cfg != nil {
		t.Errorf("expected nil config on error, got %+v", cfg)
	}
}

func TestLoad_UnmarshalError(t *testing.T) {
	t.Parallel()

	path := writeTempConfig(t, ":\n:bad")
	_, err := Load(path)
	if err == nil || !strings.Contains(err.Error(), "failed to parse config file") {
		t.Errorf("error = %v, want parse error", err)
	}
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	t.Parallel()

	path := writeTempConfig(t, `
log_level: debug
server:
  addr: "127.0.0.1:9000"
  artifact_ttl: 5m
engine:
  sample_rate: 44100
  speed: 8
  stop_slack: 250ms
  stop_on_ended: false
decoder:
  ffmpeg_fallback: false
transcoder:
  ffmpeg: /opt/ffmpeg/bin/ffmpeg
`)
	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.LogLevel != "debug" {
		t.Errorf("log level = %q", cfg.LogLevel)
	}
	if cfg.Server.Addr != "127.0.0.1:9000" || cfg.Server.ArtifactTTL != 5*time.Minute {
		t.Errorf("server = %+v", cfg.Server)
	}
	if cfg.Server.MaxUploadBytes != DefaultMaxUploadBytes {
		t.Errorf("unset max_upload_bytes = %d, want default", cfg.Server.MaxUploadBytes)
	}
	if cfg.Engine.SampleRate != 44100 || cfg.Engine.Speed != 8 || cfg.Engine.StopSlack != 250*time.Millisecond {
		t.Errorf("engine = %+v", cfg.Engine)
	}
	if cfg.Engine.StopOnEnded || cfg.Decoder.FFmpegFallback {
		t.Error("booleans from file were not applied")
	}
	if cfg.Engine.FramesPerQuantum != DefaultFramesPerQuantum {
		t.Errorf("unset frames_per_quantum = %d, want default", cfg.Engine.FramesPerQuantum)
	}
	if cfg.Transcoder.FFmpeg != "/opt/ffmpeg/bin/ffmpeg" {
		t.Errorf("ffmpeg = %q", cfg.Transcoder.FFmpeg)
	}
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
	}{
		{"rate too low", "engine:\n  sample_rate: 100\n"},
		{"rate too high", "engine:\n  sample_rate: 384000\n"},
		{"zero quantum", "engine:\n  frames_per_quantum: 0\n"},
		{"negative speed", "engine:\n  speed: -1\n"},
		{"negative slack", "engine:\n  stop_slack: -5ms\n"},
		{"empty addr", "server:\n  addr: \"\"\n"},
		{"empty ffmpeg", "transcoder:\n  ffmpeg: \"\"\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := Load(writeTempConfig(t, tt.content))
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error = %v, want ErrInvalidConfig", err)
			}
		})
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("AUDCLEAN_ADDR", ":9999")
	t.Setenv("AUDCLEAN_LOG_LEVEL", "warn")
	t.Setenv("AUDCLEAN_STOP_SLACK", "40ms")
	t.Setenv("AUDCLEAN_FFMPEG", "/usr/local/bin/ffmpeg")
	t.Setenv("AUDCLEAN_FFMPEG_FALLBACK", "not-a-bool")

	cfg, err := Load(writeTempConfig(t, "server:\n  addr: \":7000\"\n"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Server.Addr != ":9999" {
		t.Errorf("addr = %q, env should win over file", cfg.Server.Addr)
	}
	if cfg.LogLevel != "warn" || cfg.Engine.StopSlack != 40*time.Millisecond {
		t.Errorf("log level %q, slack %v", cfg.LogLevel, cfg.Engine.StopSlack)
	}
	if cfg.Transcoder.FFmpeg != "/usr/local/bin/ffmpeg" {
		t.Errorf("ffmpeg = %q", cfg.Transcoder.FFmpeg)
	}
	if !cfg.Decoder.FFmpegFallback {
		t.Error("unparsable bool override should be ignored")
	}
	if len(cfg.Overrides) != 4 {
		t.Errorf("Overrides = %v, want 4 entries", cfg.Overrides)
	}
}

func TestDefault_Validates(t *testing.T) {
	t.Parallel()

	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() = %v", err)
	}
}
