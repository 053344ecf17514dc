package app

import (
	"os"
	"path/filepath"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds a file-backed zap logger under the data dir. The TUI
// owns the terminal, so logs never go to stdout. Logging failures fall
// back to a no-op logger; the app must start regardless.
func NewLogger(dataRoot string, debug bool) *zap.Logger {
	if err := os.MkdirAll(dataRoot, 0o755); err != nil {
		return zap.NewNop()
	}
	config := zap.NewProductionConfig()
	config.OutputPaths = []string{filepath.Join(dataRoot, "studyboard.log")}
	config.ErrorOutputPaths = config.OutputPaths
	if debug {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	logger, err := config.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}
