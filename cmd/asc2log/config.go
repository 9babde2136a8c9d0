package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/cantools/canlog/internal/config"
)

type appConfig struct {
	infile      string
	outfile     string
	logFormat   string
	logLevel    string
	metricsAddr string
}

func parseFlags() (*appConfig, bool) {
	return parseArgs(flag.CommandLine, os.Args[1:])
}

func parseArgs(fs *flag.FlagSet, args []string) (*appConfig, bool) {
	cfg := &appConfig{}
	infile := fs.String("I", "-", "Input ASC file ('-' = stdin)")
	outfile := fs.String("O", "-", "Output compact log file ('-' = stdout)")
	verbose := fs.Bool("v", false, "Verbose: log header findings (shorthand for -log-level=debug)")
	configFile := fs.String("config", "", "Optional INI configuration file")
	logFormat := fs.String("log-format", "text", "Log format: text|json")
	logLevel := fs.String("log-level", "info", "Log level: debug|info|warn|error")
	metricsAddr := fs.String("metrics-addr", "", "Metrics HTTP listen address (e.g., :9100); empty disables")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, false
	}

	// Track which flags were explicitly set to give them precedence over
	// env and config file.
	setFlags := map[string]struct{}{}
	fs.Visit(func(f *flag.Flag) { setFlags[f.Name] = struct{}{} })
	cfg.infile = *infile
	cfg.outfile = *outfile
	cfg.logFormat = *logFormat
	cfg.logLevel = *logLevel
	cfg.metricsAddr = *metricsAddr

	if *configFile != "" {
		file, err := config.Load(*configFile)
		if err != nil {
			fmt.Printf("configuration error: %v\n", err)
			return nil, *showVersion
		}
		applyFile(cfg, file, setFlags)
	}
	if err := applyEnvOverrides(cfg, setFlags); err != nil {
		fmt.Printf("environment override error: %v\n", err)
		return nil, *showVersion
	}
	// -v turns on the header/dplace findings; an explicit -log-level wins
	if *verbose {
		if _, ok := setFlags["log-level"]; !ok {
			cfg.logLevel = "debug"
		}
	}
	if err := cfg.validate(); err != nil {
		fmt.Printf("configuration error: %v\n", err)
		return nil, *showVersion
	}
	return cfg, *showVersion
}

// applyFile merges config file values below env and flags.
func applyFile(c *appConfig, f *config.File, set map[string]struct{}) {
	if _, ok := set["log-format"]; !ok && f.LogFormat != "" {
		c.logFormat = f.LogFormat
	}
	if _, ok := set["log-level"]; !ok && f.LogLevel != "" {
		c.logLevel = f.LogLevel
	}
	if _, ok := set["metrics-addr"]; !ok && f.MetricsAddr != "" {
		c.metricsAddr = f.MetricsAddr
	}
}

func (c *appConfig) validate() error {
	if c == nil {
		return errors.New("nil config")
	}
	switch c.logFormat {
	case "text", "json":
	default:
		return fmt.Errorf("invalid log-format: %s", c.logFormat)
	}
	switch c.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log-level: %s", c.logLevel)
	}
	if c.infile == "" {
		return errors.New("empty input file")
	}
	if c.outfile == "" {
		return errors.New("empty output file")
	}
	return nil
}

// applyEnvOverrides maps CAN_LOG_* environment variables to config fields
// unless a corresponding flag was explicitly set.
func applyEnvOverrides(c *appConfig, set map[string]struct{}) error {
	get := func(k string) (string, bool) { v, ok := os.LookupEnv(k); return strings.TrimSpace(v), ok }
	if _, ok := set["I"]; !ok {
		if v, ok := get("CAN_LOG_INPUT"); ok && v != "" {
			c.infile = v
		}
	}
	if _, ok := set["O"]; !ok {
		if v, ok := get("CAN_LOG_OUTPUT"); ok && v != "" {
			c.outfile = v
		}
	}
	if _, ok := set["log-format"]; !ok {
		if v, ok := get("CAN_LOG_LOG_FORMAT"); ok && v != "" {
			c.logFormat = v
		}
	}
	if _, ok := set["log-level"]; !ok {
		if v, ok := get("CAN_LOG_LOG_LEVEL"); ok && v != "" {
			c.logLevel = v
		}
	}
	if _, ok := set["metrics-addr"]; !ok {
		if v, ok := get("CAN_LOG_METRICS"); ok {
			c.metricsAddr = v
		}
	}
	return nil
}
