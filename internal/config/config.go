// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Defaults and limits for the processing engine and the service.
const (
	DefaultAddr             = ":8080"
	DefaultLogLevel         = "info"
	DefaultSampleRate       = 48000
	DefaultFramesPerQuantum = 1024
	DefaultSpeed            = 1.0
	DefaultStopSlack        = 100 * time.Millisecond
	DefaultMaxUploadBytes   = 200 << 20
	DefaultArtifactTTL      = 30 * time.Minute
	DefaultCacheVersion     = "v1"
	DefaultTranscodeTimeout = 10 * time.Minute

	MinSampleRate = 8000
	MaxSampleRate = 192000
	MaxQuantum    = 16384
)

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full runtime configuration, loaded from YAML.
type Config struct {
	LogLevel   string           `yaml:"log_level"`
	Server     ServerConfig     `yaml:"server"`
	Engine     EngineConfig     `yaml:"engine"`
	Decoder    DecoderConfig    `yaml:"decoder"`
	Transcoder TranscoderConfig `yaml:"transcoder"`

	// Overrides lists the environment variables that were applied.
	Overrides []string `yaml:"-"`
}

type ServerConfig struct {
	Addr           string        `yaml:"addr"`
	MaxUploadBytes int64         `yaml:"max_upload_bytes"`
	ArtifactTTL    time.Duration `yaml:"artifact_ttl"`
	CacheVersion   string        `yaml:"cache_version"` // offline cache name suffix
}

// EngineConfig drives the filter-and-capture render loop.
type EngineConfig struct {
	SampleRate       int           `yaml:"sample_rate"`        // decoded buffers are brought to this rate
	FramesPerQuantum int           `yaml:"frames_per_quantum"` // frames rendered per tick
	Speed            float64       `yaml:"speed"`              // 1 is real time
	StopSlack        time.Duration `yaml:"stop_slack"`         // wall clock added after the scaled buffer duration
	StopOnEnded      bool          `yaml:"stop_on_ended"`      // stop as soon as the source reports it ended
}

type DecoderConfig struct {
	FFmpegFallback bool   `yaml:"ffmpeg_fallback"`
	FFprobe        string `yaml:"ffprobe"`
}

type TranscoderConfig struct {
	FFmpeg  string        `yaml:"ffmpeg"`
	TempDir string        `yaml:"temp_dir"`
	Timeout time.Duration `yaml:"timeout"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Server: ServerConfig{
			Addr:           DefaultAddr,
			MaxUploadBytes: DefaultMaxUploadBytes,
			ArtifactTTL:    DefaultArtifactTTL,
			CacheVersion:   DefaultCacheVersion,
		},
		Engine: EngineConfig{
			SampleRate:       DefaultSampleRate,
			FramesPerQuantum: DefaultFramesPerQuantum,
			Speed:            DefaultSpeed,
			StopSlack:        DefaultStopSlack,
			StopOnEnded:      true,
		},
		Decoder: DecoderConfig{
			FFmpegFallback: true,
			FFprobe:        "ffprobe",
		},
		Transcoder: TranscoderConfig{
			FFmpeg:  "ffmpeg",
			Timeout: DefaultTranscodeTimeout,
		},
	}
}

// Load reads the YAML file at path on top of the defaults. An empty path
// uses ./config.yaml when it exists and the defaults otherwise. Environment
// overrides are applied last, then the result is validated.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		if _, err := os.Stat("config.yaml"); err == nil {
			path = "config.yaml"
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch {
	case c.Server.Addr == "":
		return fmt.Errorf("%w: server.addr must be set", ErrInvalidConfig)
	case c.Server.MaxUploadBytes <= 0:
		return fmt.Errorf("%w: server.max_upload_bytes must be positive", ErrInvalidConfig)
	case c.Server.ArtifactTTL <= 0:
		return fmt.Errorf("%w: server.artifact_ttl must be positive", ErrInvalidConfig)
	case c.Server.CacheVersion == "":
		return fmt.Errorf("%w: server.cache_version must be set", ErrInvalidConfig)
	case c.Engine.SampleRate < MinSampleRate || c.Engine.SampleRate > MaxSampleRate:
		return fmt.Errorf("%w: engine.sample_rate %d outside [%d, %d]",
			ErrInvalidConfig, c.Engine.SampleRate, MinSampleRate, MaxSampleRate)
	case c.Engine.FramesPerQuantum <= 0 || c.Engine.FramesPerQuantum > MaxQuantum:
		return fmt.Errorf("%w: engine.frames_per_quantum %d outside (0, %d]",
			ErrInvalidConfig, c.Engine.FramesPerQuantum, MaxQuantum)
	case c.Engine.Speed <= 0:
		return fmt.Errorf("%w: engine.speed must be positive", ErrInvalidConfig)
	case c.Engine.StopSlack < 0:
		return fmt.Errorf("%w: engine.stop_slack must not be negative", ErrInvalidConfig)
	case c.Transcoder.FFmpeg == "":
		return fmt.Errorf("%w: transcoder.ffmpeg must be set", ErrInvalidConfig)
	case c.Transcoder.Timeout <= 0:
		return fmt.Errorf("%w: transcoder.timeout must be positive", ErrInvalidConfig)
	case c.Decoder.FFmpegFallback && c.Decoder.FFprobe == "":
		return fmt.Errorf("%w: decoder.ffprobe must be set when the ffmpeg fallback is on", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) applyEnvOverrides() {
	// AUDCLEAN_ADDR
	if val, ok := os.LookupEnv("AUDCLEAN_ADDR"); ok {
		c.Server.Addr = val
		c.Overrides = append(c.Overrides, "AUDCLEAN_ADDR")
	}
	// AUDCLEAN_LOG_LEVEL
	if val, ok := os.LookupEnv("AUDCLEAN_LOG_LEVEL"); ok {
		c.LogLevel = val
		c.Overrides = append(c.Overrides, "AUDCLEAN_LOG_LEVEL")
	}
	// AUDCLEAN_FFMPEG
	if val, ok := os.LookupEnv("AUDCLEAN_FFMPEG"); ok {
		c.Transcoder.FFmpeg = val
		c.Overrides = append(c.Overrides, "AUDCLEAN_FFMPEG")
	}
	// AUDCLEAN_FFPROBE
	if val, ok := os.LookupEnv("AUDCLEAN_FFPROBE"); ok {
		c.Decoder.FFprobe = val
		c.Overrides = append(c.Overrides, "AUDCLEAN_FFPROBE")
	}
	// AUDCLEAN_TEMP_DIR
	if val, ok := os.LookupEnv("AUDCLEAN_TEMP_DIR"); ok {
		c.Transcoder.TempDir = val
		c.Overrides = append(c.Overrides, "AUDCLEAN_TEMP_DIR")
	}
	// AUDCLEAN_STOP_SLACK
	if val, ok := os.LookupEnv("AUDCLEAN_STOP_SLACK"); ok {
		if dur, err := time.ParseDuration(val); err == nil {
			c.Engine.StopSlack = dur
			c.Overrides = append(c.Overrides, "AUDCLEAN_STOP_SLACK")
		}
	}
	// AUDCLEAN_FFMPEG_FALLBACK
	if val, ok := os.LookupEnv("AUDCLEAN_FFMPEG_FALLBACK"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Decoder.FFmpegFallback = b
			c.Overrides = append(c.Overrides, "AUDCLEAN_FFMPEG_FALLBACK")
		}
	}
}
