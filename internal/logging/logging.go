// Package logging builds the zap loggers used by the commands and masks
// credentials before they reach a log line.
package logging

import (
	"fmt"
	"regexp"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	reDSNPass  = regexp.MustCompile(`(://)([^:/@]+):([^@]+)(@)`)
	rePassword = regexp.MustCompile(`(?i)(password=)([^\s&;]+)`)
	reAPIKey   = regexp.MustCompile(`(?i)(apikey=|api_key=)([^\s&;]+)`)
)

// Options controls where and how verbosely logs are written.
type Options struct {
	// Path is a file to append to. Empty means Stderr, "-" discards.
	Path  string
	Debug bool
	// Console selects the human-readable encoder instead of JSON.
	Console bool
}

// New builds a logger from opts.
func New(opts Options) (*zap.Logger, error) {
	if opts.Path == "-" {
		return zap.NewNop(), nil
	}

	cfg := zap.NewProductionConfig()
	if opts.Console {
		cfg.Encoding = "console"
		cfg.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	}
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if opts.Debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}

	cfg.OutputPaths = []string{"stderr"}
	if opts.Path != "" {
		cfg.OutputPaths = []string{opts.Path}
	}

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// Mask replaces credentials in s with "*".
// For DSN strings, both username and password are masked.
func Mask(s string) string {
	out := reDSNPass.ReplaceAllString(s, "$1*:*$4")
	out = rePassword.ReplaceAllString(out, "$1***")
	out = reAPIKey.ReplaceAllString(out, "$1***")
	return out
}
