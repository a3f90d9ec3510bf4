// SPDX-License-Identifier: EPL-2.0

// Package logging builds the process-wide logrus logger.
package logging

import (
	"io"
	"strings"

	"github.com/sirupsen/logrus"
)

// ParseLevel converts a case-insensitive level name. Unknown names map to
// info and report false.
func ParseLevel(name string) (logrus.Level, bool) {
	lvl, err := logrus.ParseLevel(strings.TrimSpace(name))
	if err != nil {
		return logrus.InfoLevel, false
	}
	return lvl, true
}

// New returns a text logger with full timestamps writing to out.
func New(level string, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02 15:04:05.000",
	})

	lvl, ok := ParseLevel(level)
	log.SetLevel(lvl)
	if !ok && level != "" {
		log.WithField("level", level).Warn("unknown log level, using info")
	}
	return log
}

// Component tags every entry with the component name.
func Component(log logrus.FieldLogger, name string) logrus.FieldLogger {
	if log == nil {
		log = Discard()
	}
	return log.WithField("component", name)
}

// Discard returns a logger that drops everything.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
