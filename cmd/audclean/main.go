// SPDX-License-Identifier: EPL-2.0

// Command audclean removes low-frequency noise from audio files, either as
// a web service or one file at a time from the terminal.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/ik5/audclean"
	"github.com/ik5/audclean/decode"
	"github.com/ik5/audclean/internal/cli"
	"github.com/ik5/audclean/internal/config"
	"github.com/ik5/audclean/internal/logging"
	"github.com/ik5/audclean/internal/server"
	"github.com/ik5/audclean/pipeline"
	"github.com/ik5/audclean/transcode"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var version = "dev"

type options struct {
	configPath string
	logLevel   string
	addr       string
	format     string
	outDir     string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.As(err, new(reportedError)) {
			cli.PrintError(os.Stderr, err.Error())
		}
		os.Exit(1)
	}
}

// reportedError has already been shown to the user as a status line.
type reportedError struct{ error }

func (e reportedError) Unwrap() error { return e.error }

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:           "audclean",
		Short:         "Remove hum and rumble below 80 Hz from audio files",
		Version:       version,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to YAML config file (default ./config.yaml when present)")
	rootCmd.PersistentFlags().StringVarP(&opts.logLevel, "log-level", "l", "",
		"Override the configured log level")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the web service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServe(cmd.Context(), opts, stderr)
		},
	}
	serveCmd.Flags().StringVarP(&opts.addr, "addr", "a", "", "Listen address (overrides server.addr)")
	rootCmd.AddCommand(serveCmd)

	processCmd := &cobra.Command{
		Use:   "process FILE",
		Short: "Clean a single file and save the result",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runProcess(cmd.Context(), opts, args[0], stdout, stderr)
		},
	}
	processCmd.Flags().StringVarP(&opts.format, "format", "f", string(transcode.WAV), "Output format: mp3, mp4 or wav")
	processCmd.Flags().StringVarP(&opts.outDir, "out", "o", ".", "Directory the cleaned file is written to")
	rootCmd.AddCommand(processCmd)

	rootCmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			cli.PrintVersion(cmd.OutOrStdout(), version)
		},
	})

	return rootCmd
}

func loadConfig(opts *options, stderr io.Writer) (*config.Config, *logrus.Logger, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	log := logging.New(cfg.LogLevel, stderr)
	if len(cfg.Overrides) > 0 {
		log.WithField("vars", cfg.Overrides).Debug("applied environment overrides")
	}
	return cfg, log, nil
}

func runServe(ctx context.Context, opts *options, stderr io.Writer) error {
	cfg, log, err := loadConfig(opts, stderr)
	if err != nil {
		return err
	}
	if opts.addr != "" {
		cfg.Server.Addr = opts.addr
	}
	if log.GetLevel() < logrus.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}

	st := audclean.NewStages(cfg, log)
	srv, err := server.New(cfg.Server, server.Stages{
		Decoder:  st.Decoder,
		Capturer: st.Capturer,
		Encoder:  st.Encoder,
	}, log)
	if err != nil {
		return err
	}
	return srv.Run(ctx)
}

func runProcess(ctx context.Context, opts *options, path string, stdout, stderr io.Writer) error {
	format, err := transcode.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	cfg, log, err := loadConfig(opts, stderr)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read input: %w", err)
	}

	runner := audclean.NewRunner(cfg, pipeline.Options{
		Display:   cli.NewTerminalDisplay(stdout),
		Publisher: &cli.FilePublisher{Dir: opts.outDir},
		Logger:    log,
		Report:    true,
	})
	_, err = runner.Run(ctx, pipeline.Request{
		Input:  decode.Input{Name: filepath.Base(path), Data: data},
		Format: format,
	})
	if err != nil {
		return reportedError{err}
	}
	return nil
}
