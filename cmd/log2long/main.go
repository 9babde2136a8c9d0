// Command log2long renders compact one-frame-per-line logs in the long
// human-readable format with an ASCII sidebar.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/cantools/canlog/internal/metrics"
	"github.com/cantools/canlog/internal/translate"
)

func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

func openOutput(path string) (io.WriteCloser, error) {
	if path == "-" {
		return os.Stdout, nil
	}
	return os.Create(path)
}

func main() {
	cfg, showVersion := parseFlags()
	if showVersion {
		fmt.Printf("log2long %s (commit %s, built %s)\n", version, commit, date)
		return
	}
	if cfg == nil {
		os.Exit(1)
	}
	l := setupLogger(cfg.logFormat, cfg.logLevel)

	if cfg.metricsAddr != "" {
		metrics.InitBuildInfo(version, commit, date)
		srv := metrics.StartHTTP(cfg.metricsAddr)
		defer func() { _ = srv.Shutdown(context.Background()) }()
	}

	in, err := openInput(cfg.infile)
	if err != nil {
		l.Error("input_open_error", "error", err)
		os.Exit(1)
	}
	defer in.Close()
	out, err := openOutput(cfg.outfile)
	if err != nil {
		l.Error("output_open_error", "error", err)
		os.Exit(1)
	}

	convErr := translate.LogToLong(in, out, translate.LogToLongOptions{Color: cfg.color})
	if out != os.Stdout {
		if cerr := out.Close(); cerr != nil && convErr == nil {
			convErr = cerr
		}
	}
	snap := metrics.Snap()
	l.Info("done",
		"lines_read", snap.LinesRead,
		"lines_written", snap.LinesWritten,
		"malformed", snap.Malformed,
		"frames_cc", snap.FramesCC,
		"frames_fd", snap.FramesFD,
		"frames_xl", snap.FramesXL,
	)
	if convErr != nil {
		l.Error("convert_error", "error", convErr)
		os.Exit(1)
	}
}
