package tgmarkup

import "log/slog"

// Logger receives warnings from degraded paths, such as a filter applied
// with an unusable argument. It is never used for control flow. The
// default discards everything.
var Logger = slog.New(slog.DiscardHandler)

// SetLogger replaces the package logger. Call it before compiling
// templates; registries built earlier keep the logger they were created
// with.
func SetLogger(logger *slog.Logger) {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	Logger = logger
}
