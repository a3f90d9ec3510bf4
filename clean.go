// SPDX-License-Identifier: EPL-2.0

package audclean

import (
	"context"

	"github.com/ik5/audclean/capture"
	"github.com/ik5/audclean/decode"
	"github.com/ik5/audclean/internal/config"
	"github.com/ik5/audclean/pipeline"
	"github.com/ik5/audclean/transcode"
	"github.com/sirupsen/logrus"
)

// Config is the runtime configuration accepted by NewStages, NewRunner and
// Clean. Start from DefaultConfig or LoadConfig and adjust the fields.
type Config = config.Config

// EngineConfig, DecoderConfig and TranscoderConfig are the sections of Config.
type (
	EngineConfig     = config.EngineConfig
	DecoderConfig    = config.DecoderConfig
	TranscoderConfig = config.TranscoderConfig
)

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config { return config.Default() }

// LoadConfig reads a YAML file over the defaults, applies the AUDCLEAN_*
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) { return config.Load(path) }

// Stages are the three pipeline stages built from one configuration.
type Stages struct {
	Decoder  *decode.Decoder
	Capturer *capture.Engine
	Encoder  *transcode.Transcoder
}

// NewStages builds the stages. A nil cfg uses the defaults.
func NewStages(cfg *Config, log logrus.FieldLogger) Stages {
	if cfg == nil {
		cfg = config.Default()
	}
	return Stages{
		Decoder:  decode.New(cfg, log),
		Capturer: capture.New(cfg.Engine, log),
		Encoder:  transcode.New(cfg.Transcoder, nil, log),
	}
}

// NewRunner returns a pipeline runner over freshly built stages. A nil cfg
// uses the defaults.
func NewRunner(cfg *Config, opts pipeline.Options) *pipeline.Runner {
	st := NewStages(cfg, opts.Logger)
	return pipeline.NewRunner(st.Decoder, st.Capturer, st.Encoder, opts)
}

// Clean runs a single file through the pipeline without any display. A nil
// cfg uses the defaults.
func Clean(ctx context.Context, cfg *Config, in decode.Input, format transcode.Format) (*pipeline.Artifact, error) {
	return NewRunner(cfg, pipeline.Options{}).Run(ctx, pipeline.Request{Input: in, Format: format})
}
