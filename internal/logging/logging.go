// Package logging configures zerolog for the picboot command and bridges it
// to the bootloader.Logger interface.
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/moffa90/go-picboot/bootloader"
)

// Options selects where log output goes.
type Options struct {
	// Level is the minimum level written
	Level zerolog.Level

	// File, when set, receives a rotated copy of the log
	File string

	// Console receives human-readable output; nil means stderr
	Console io.Writer

	// NoColor disables ANSI colors on the console
	NoColor bool
}

// Setup builds the logger described by opts and installs it as log.Logger.
func Setup(opts Options) (zerolog.Logger, error) {
	console := opts.Console
	if console == nil {
		console = os.Stderr
	}

	writers := []io.Writer{zerolog.ConsoleWriter{
		Out:        console,
		NoColor:    opts.NoColor,
		TimeFormat: "15:04:05.000",
	}}

	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o750); err != nil {
			return zerolog.Logger{}, fmt.Errorf("failed to create log directory: %w", err)
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   opts.File,
			MaxSize:    1,
			MaxBackups: 2,
		})
	}

	logger := zerolog.New(io.MultiWriter(writers...)).
		Level(opts.Level).
		With().Timestamp().Caller().Logger()

	log.Logger = logger
	return logger, nil
}

// ParseLevel maps a level name such as "debug" to a zerolog level.
func ParseLevel(name string) (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(name)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", name, err)
	}
	return level, nil
}

// Adapter implements bootloader.Logger on a zerolog.Logger.
type Adapter struct {
	logger zerolog.Logger
}

var _ bootloader.Logger = (*Adapter)(nil)

// NewAdapter wraps logger.
func NewAdapter(logger zerolog.Logger) *Adapter {
	return &Adapter{logger: logger}
}

func (a *Adapter) Debug(msg string, keysAndValues ...interface{}) {
	a.logger.Debug().Fields(keysAndValues).Msg(msg)
}

func (a *Adapter) Info(msg string, keysAndValues ...interface{}) {
	a.logger.Info().Fields(keysAndValues).Msg(msg)
}

func (a *Adapter) Error(msg string, keysAndValues ...interface{}) {
	a.logger.Error().Fields(keysAndValues).Msg(msg)
}
