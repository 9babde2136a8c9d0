package main

import (
	"log/slog"
	"os"

	"github.com/cantools/canlog/internal/logging"
)

func setupLogger(format, level string) *slog.Logger {
	l := logging.New(format, logging.Level(level), os.Stderr).With("app", "log2long")
	logging.Set(l)
	return l
}
