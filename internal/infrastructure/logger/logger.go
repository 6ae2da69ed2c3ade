// Package logger builds the zap loggers of the CRM services and carries the
// request logger through contexts, gin and GORM.
package logger

import (
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds logger configuration
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path

	// Service and Env are stamped on every entry when set
	Service string
	Env     string
}

// New builds a zap logger. Extra cores, such as the OTLP bridge, receive
// every entry they enable; nil cores are skipped.
func New(cfg Config, extra ...zapcore.Core) *zap.Logger {
	sink, sinkErr := openSink(cfg.Output)
	cores := []zapcore.Core{zapcore.NewCore(encoderFor(cfg.Format), sink, ParseLevel(cfg.Level))}
	for _, c := range extra {
		if c != nil {
			cores = append(cores, c)
		}
	}

	opts := []zap.Option{zap.AddCaller(), zap.AddStacktrace(zapcore.ErrorLevel)}
	var fields []zap.Field
	if cfg.Service != "" {
		fields = append(fields, zap.String("service", cfg.Service))
	}
	if cfg.Env != "" {
		fields = append(fields, zap.String("env", cfg.Env))
	}
	if len(fields) > 0 {
		opts = append(opts, zap.Fields(fields...))
	}

	l := zap.New(zapcore.NewTee(cores...), opts...)
	if sinkErr != nil {
		l.Warn("Log output unavailable, writing to stdout", zap.String("output", cfg.Output), zap.Error(sinkErr))
	}
	return l
}

// ParseLevel maps a level name to a zap level, defaulting to info
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	}
	return zapcore.InfoLevel
}

func encoderFor(format string) zapcore.Encoder {
	ec := zap.NewProductionEncoderConfig()
	ec.TimeKey = "time"
	ec.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02T15:04:05.000Z07:00")
	ec.EncodeDuration = zapcore.MillisDurationEncoder

	if format == "console" {
		ec.EncodeLevel = zapcore.CapitalColorLevelEncoder
		return zapcore.NewConsoleEncoder(ec)
	}
	return zapcore.NewJSONEncoder(ec)
}

func openSink(output string) (zapcore.WriteSyncer, error) {
	switch strings.ToLower(output) {
	case "", "stdout":
		return zapcore.Lock(os.Stdout), nil
	case "stderr":
		return zapcore.Lock(os.Stderr), nil
	}
	f, err := os.OpenFile(output, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return zapcore.Lock(os.Stdout), err
	}
	return zapcore.AddSync(f), nil
}
