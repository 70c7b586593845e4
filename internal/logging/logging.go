// Package logging builds the zap logger used across memview.
//
// The TUI owns the terminal, so interactive runs direct log output to a
// file instead of stderr; one-shot CLI commands log to stderr as usual.
package logging

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/memmachine/memview/internal/config"
)

// New creates a logger from config. The caller owns Sync.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	sink := zapcore.Lock(os.Stderr)
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0o700); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}
		f, err := os.OpenFile(cfg.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
		if err != nil {
			return nil, fmt.Errorf("failed to open log file: %w", err)
		}
		sink = zapcore.Lock(f)
	}

	core := zapcore.NewCore(newEncoder(cfg.Format), sink, level)
	return zap.New(core, zap.AddStacktrace(zapcore.ErrorLevel)), nil
}

// newEncoder creates a JSON or console encoder.
func newEncoder(format string) zapcore.Encoder {
	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.TimeKey = "ts"
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder

	if format == "console" {
		return zapcore.NewConsoleEncoder(encoderCfg)
	}
	return zapcore.NewJSONEncoder(encoderCfg)
}

// RedactedString creates a field carrying only the value's length.
// Used for bearer tokens and other credentials.
func RedactedString(key, val string) zap.Field {
	return zap.String(key, fmt.Sprintf("[REDACTED:%d]", len(val)))
}

// Headers creates a field for an HTTP header map with credential values
// redacted. Header names are preserved so registrations stay debuggable.
func Headers(key string, headers map[string]string) zap.Field {
	redacted := make(map[string]string, len(headers))
	for k, v := range headers {
		switch k {
		case "Authorization", "Proxy-Authorization", "X-Api-Key":
			redacted[k] = fmt.Sprintf("[REDACTED:%d]", len(v))
		default:
			redacted[k] = v
		}
	}
	return zap.Any(key, redacted)
}
