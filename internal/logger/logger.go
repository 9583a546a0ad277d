// Package logger provides structured logging using zerolog.
package logger

import (
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
)

var globalLogger = zerolog.New(os.Stderr).With().Timestamp().Logger()

// Config controls the global logger.
type Config struct {
	Level  string `mapstructure:"log_level"`
	Debug  bool   `mapstructure:"debug"`
	Output string `mapstructure:"log_output"` // stderr (default), stdout
	Pretty bool   `mapstructure:"log_pretty"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Level:  "info",
		Output: "stderr",
		Pretty: true,
	}
}

// Init replaces the global logger according to config.
func Init(config Config) error {
	var output io.Writer = os.Stderr
	if config.Output == "stdout" {
		output = os.Stdout
	}

	level := zerolog.InfoLevel
	if config.Debug {
		level = zerolog.DebugLevel
	} else if config.Level != "" {
		var err error
		level, err = zerolog.ParseLevel(config.Level)
		if err != nil {
			return err
		}
	}

	if config.Pretty {
		output = zerolog.ConsoleWriter{Out: output, TimeFormat: time.Kitchen}
	}

	globalLogger = zerolog.New(output).Level(level).With().Timestamp().Logger()
	return nil
}

// Get returns the global logger.
func Get() zerolog.Logger {
	return globalLogger
}

// WithComponent returns a child of the global logger tagged with component.
func WithComponent(component string) zerolog.Logger {
	return globalLogger.With().Str("component", component).Logger()
}

// Nop returns a logger that discards everything, for tests.
func Nop() zerolog.Logger {
	return zerolog.New(io.Discard).Level(zerolog.Disabled)
}
