package config

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger contains node logger configuration.
type Logger struct {
	LogEncoding string `yaml:"LogEncoding"`
	LogLevel    string `yaml:"LogLevel"`
	LogPath     string `yaml:"LogPath"`
}

// Validate returns an error if Logger configuration is not valid.
func (l Logger) Validate() error {
	if len(l.LogEncoding) > 0 && l.LogEncoding != "console" && l.LogEncoding != "json" {
		return fmt.Errorf("invalid LogEncoding: %s", l.LogEncoding)
	}
	return nil
}

// NewLogger builds a zap logger from the configuration. The returned
// AtomicLevel can be used to adjust the level at runtime.
func (l Logger) NewLogger() (*zap.Logger, zap.AtomicLevel, error) {
	level := zapcore.InfoLevel
	if l.LogLevel != "" {
		var err error
		level, err = zapcore.ParseLevel(l.LogLevel)
		if err != nil {
			return nil, zap.AtomicLevel{}, fmt.Errorf("log setting: %w", err)
		}
	}
	atomicLevel := zap.NewAtomicLevelAt(level)

	cc := zap.NewProductionConfig()
	cc.DisableCaller = true
	cc.DisableStacktrace = true
	cc.EncoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	cc.EncoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	cc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if l.LogEncoding != "" {
		cc.Encoding = l.LogEncoding
	} else {
		cc.Encoding = "console"
	}
	cc.Level = atomicLevel
	cc.Sampling = nil
	if l.LogPath != "" {
		cc.OutputPaths = []string{l.LogPath}
	}

	log, err := cc.Build()
	return log, atomicLevel, err
}
