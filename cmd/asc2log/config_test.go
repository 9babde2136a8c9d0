package main

import (
	"flag"
	"io"
	"testing"
)

func parseTestArgs(t *testing.T, args ...string) *appConfig {
	t.Helper()
	fs := flag.NewFlagSet("asc2log", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	cfg, _ := parseArgs(fs, args)
	if cfg == nil {
		t.Fatalf("parseArgs(%v) returned nil", args)
	}
	return cfg
}

func TestParseArgs_Verbose(t *testing.T) {
	if got := parseTestArgs(t, "-v").logLevel; got != "debug" {
		t.Errorf("-v: log level %q, want debug", got)
	}
}

func TestParseArgs_VerboseExplicitLevelWins(t *testing.T) {
	if got := parseTestArgs(t, "-v", "-log-level", "warn").logLevel; got != "warn" {
		t.Errorf("-v -log-level=warn: log level %q, want warn", got)
	}
}
