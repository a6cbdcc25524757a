// Package zaplog implements observability.Logger on go.uber.org/zap.
//
// Every entry goes to two cores: a JSON stream on stdout and, when a log
// file is configured, an append-only file in the classic
// "timestamp:LEVEL:message" console layout.
package zaplog

import (
	"context"
	"fmt"
	"os"
	"sort"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"firds/shared/config"
	"firds/shared/domain/observability"
)

// FileTimeLayout matches the timestamp of the historical download log
const FileTimeLayout = "2006-01-02 15:04:05,000"

// Logger implements observability.Logger
type Logger struct {
	sugar *zap.SugaredLogger
	file  zapcore.WriteSyncer
}

// New builds the stdout and file cores from configuration
func New(cfg *config.Config) (*Logger, error) {
	stdoutLevel, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL %q: %w", cfg.LogLevel, err)
	}

	var file zapcore.WriteSyncer
	fileLevel := zapcore.DebugLevel
	if cfg.Observability.LogFile != "" {
		if fileLevel, err = zapcore.ParseLevel(cfg.Observability.LogFileLevel); err != nil {
			return nil, fmt.Errorf("invalid LOG_FILE_LEVEL %q: %w", cfg.Observability.LogFileLevel, err)
		}
		// zap opens file sinks with O_APPEND|O_CREATE
		file, _, err = zap.Open(cfg.Observability.LogFile)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file %s: %w", cfg.Observability.LogFile, err)
		}
	}

	return NewWithWriters(zapcore.Lock(os.Stdout), stdoutLevel, file, fileLevel), nil
}

// NewWithWriters builds a logger over explicit writers. file may be nil.
func NewWithWriters(stdout zapcore.WriteSyncer, stdoutLevel zapcore.Level, file zapcore.WriteSyncer, fileLevel zapcore.Level) *Logger {
	cores := []zapcore.Core{
		zapcore.NewCore(zapcore.NewJSONEncoder(stdoutEncoderConfig()), stdout, stdoutLevel),
	}
	if file != nil {
		cores = append(cores, zapcore.NewCore(zapcore.NewConsoleEncoder(fileEncoderConfig()), file, fileLevel))
	}

	return &Logger{
		sugar: zap.New(zapcore.NewTee(cores...)).Sugar(),
		file:  file,
	}
}

func stdoutEncoderConfig() zapcore.EncoderConfig {
	enc := zap.NewProductionEncoderConfig()
	enc.TimeKey = "timestamp"
	enc.EncodeTime = zapcore.ISO8601TimeEncoder
	return enc
}

func fileEncoderConfig() zapcore.EncoderConfig {
	return zapcore.EncoderConfig{
		TimeKey:          "time",
		LevelKey:         "level",
		MessageKey:       "msg",
		LineEnding:       zapcore.DefaultLineEnding,
		EncodeTime:       zapcore.TimeEncoderOfLayout(FileTimeLayout),
		EncodeLevel:      zapcore.CapitalLevelEncoder,
		EncodeDuration:   zapcore.StringDurationEncoder,
		ConsoleSeparator: ":",
	}
}

func (l *Logger) Debug(msg string, fields ...interface{}) {
	l.sugar.Debugw(msg, fields...)
}

func (l *Logger) Info(msg string, fields ...interface{}) {
	l.sugar.Infow(msg, fields...)
}

func (l *Logger) Warn(msg string, fields ...interface{}) {
	l.sugar.Warnw(msg, fields...)
}

func (l *Logger) Error(msg string, fields ...interface{}) {
	l.sugar.Errorw(msg, fields...)
}

// WithFields returns a child logger; keys are added in sorted order so
// output is stable
func (l *Logger) WithFields(fields map[string]interface{}) observability.Logger {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	args := make([]interface{}, 0, len(fields)*2)
	for _, k := range keys {
		args = append(args, k, fields[k])
	}

	return &Logger{
		sugar: l.sugar.With(args...),
		file:  l.file,
	}
}

// Flush syncs the log file. Stdout is unbuffered.
func (l *Logger) Flush(_ context.Context) error {
	if l.file == nil {
		return nil
	}
	return l.file.Sync()
}
