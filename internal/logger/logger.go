package logger

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/natefinch/lumberjack.v2"

	"signalbox/internal/config"
)

var defaultLogger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}).
	Level(zerolog.WarnLevel).With().Timestamp().Logger()

// GetLogLevelFromString maps a config level name, unknown values fall back to warn.
func GetLogLevelFromString(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return zerolog.DebugLevel
	case "info":
		return zerolog.InfoLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.WarnLevel
	}
}

/**
 * Initialize the logging system
 * @param {*config.LogConfig} cfg - Log level, file path and rotation limits
 * @param {bool} console - Also write human readable lines to stdout (server mode)
 * @description
 * - path "console" or empty writes to stdout only
 * - Any other path is a JSON log file rotated by lumberjack
 * - Falls back to stdout when the log directory can't be created
 */
func InitLogger(cfg *config.LogConfig, console bool) {
	var writers []io.Writer

	if cfg.Path == "" || cfg.Path == "console" {
		console = true
	} else if w := setupLogFileOutput(cfg); w != nil {
		writers = append(writers, w)
	} else {
		console = true
	}
	if console {
		writers = append(writers, zerolog.ConsoleWriter{Out: os.Stdout, TimeFormat: time.RFC3339})
	}

	defaultLogger = zerolog.New(zerolog.MultiLevelWriter(writers...)).
		Level(GetLogLevelFromString(cfg.Level)).
		With().Timestamp().Logger()
}

// setupLogFileOutput returns a rotating file writer, nil when the directory is unusable.
func setupLogFileOutput(cfg *config.LogConfig) io.Writer {
	if err := os.MkdirAll(filepath.Dir(cfg.Path), 0755); err != nil {
		fmt.Fprintf(os.Stderr, "failed to create log directory: %v\n", err)
		return nil
	}
	return &lumberjack.Logger{
		Filename:   cfg.Path,
		MaxSize:    cfg.MaxSize,
		MaxBackups: cfg.MaxBackups,
		MaxAge:     cfg.MaxAge,
	}
}

// SetOutput redirects the logger, used by tests to capture lines.
func SetOutput(w io.Writer, level string) {
	defaultLogger = zerolog.New(w).Level(GetLogLevelFromString(level)).With().Timestamp().Logger()
}

// With returns a child logger carrying the component field.
func With(component string) zerolog.Logger {
	return defaultLogger.With().Str("component", component).Logger()
}

func Debug(v ...interface{}) {
	defaultLogger.Debug().Msg(fmt.Sprint(v...))
}

func Debugf(format string, v ...interface{}) {
	defaultLogger.Debug().Msgf(format, v...)
}

func Info(v ...interface{}) {
	defaultLogger.Info().Msg(fmt.Sprint(v...))
}

func Infof(format string, v ...interface{}) {
	defaultLogger.Info().Msgf(format, v...)
}

func Warn(v ...interface{}) {
	defaultLogger.Warn().Msg(fmt.Sprint(v...))
}

func Warnf(format string, v ...interface{}) {
	defaultLogger.Warn().Msgf(format, v...)
}

func Error(v ...interface{}) {
	defaultLogger.Error().Msg(fmt.Sprint(v...))
}

func Errorf(format string, v ...interface{}) {
	defaultLogger.Error().Msgf(format, v...)
}

// Fatal logs and exits the program.
func Fatal(v ...interface{}) {
	defaultLogger.Fatal().Msg(fmt.Sprint(v...))
}

// Fatalf logs and exits the program.
func Fatalf(format string, v ...interface{}) {
	defaultLogger.Fatal().Msgf(format, v...)
}
