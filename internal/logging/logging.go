// Package logging builds the zap loggers used by the CLI.
package logging

import (
	"io"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New returns a logger writing to w. The default is production JSON at info
// level; verbose switches to the development console encoder at debug level.
func New(w io.Writer, verbose bool) *zap.Logger {
	encCfg := zap.NewProductionEncoderConfig()
	level := zapcore.InfoLevel
	encoder := zapcore.NewJSONEncoder(encCfg)

	if verbose {
		encCfg = zap.NewDevelopmentEncoderConfig()
		level = zapcore.DebugLevel
		encoder = zapcore.NewConsoleEncoder(encCfg)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(w), zap.NewAtomicLevelAt(level))
	return zap.New(core)
}
