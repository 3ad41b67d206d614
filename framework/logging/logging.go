// Package logging builds the application's logrus logger from configuration.
package logging

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/km-arc/go-gems/framework/config"
)

// New returns a logger writing to stderr with the configured level and
// format. An unknown level falls back to info; any format other than "json"
// uses the text formatter.
func New(cfg config.LogConfig) *logrus.Logger {
	return NewWithWriter(cfg, os.Stderr)
}

// NewWithWriter is New with an explicit output.
func NewWithWriter(cfg config.LogConfig, out io.Writer) *logrus.Logger {
	log := logrus.New()
	log.SetOutput(out)

	if cfg.Format == "json" {
		log.SetFormatter(&logrus.JSONFormatter{})
	} else {
		log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	}

	level, err := logrus.ParseLevel(cfg.Level)
	if err != nil {
		level = logrus.InfoLevel
	}
	log.SetLevel(level)
	return log
}

// Discard returns a logger that drops everything, for tests and for
// components constructed without one.
func Discard() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}
