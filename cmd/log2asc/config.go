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
	interfaces  []string
	d4          bool
	noRTRDLC    bool
	fdFormat    bool
	crlf        bool
	logFormat   string
	logLevel    string
	metricsAddr string
}

func parseFlags() (*appConfig, bool) {
	return parseArgs(flag.CommandLine, os.Args[1:])
}

func parseArgs(fs *flag.FlagSet, args []string) (*appConfig, bool) {
	cfg := &appConfig{}
	infile := fs.String("I", "-", "Input compact log file ('-' = stdin)")
	outfile := fs.String("O", "-", "Output ASC file ('-' = stdout)")
	d4 := fs.Bool("4", false, "Reduce the decimal place of the timestamp to 4 digits")
	crlf := fs.Bool("n", false, "CR/LF line endings (DOS/Windows tools)")
	fdFormat := fs.Bool("f", false, "Use the CANFD line format for classic frames too")
	noRTRDLC := fs.Bool("r", false, "Suppress the DLC on RTR frames (pre v8.5 tools)")
	configFile := fs.String("config", "", "Optional INI configuration file (channel map etc.)")
	logFormat := fs.String("log-format", "text", "Log format: text|json")
	logLevel := fs.String("log-level", "info", "Log level: debug|info|warn|error")
	metricsAddr := fs.String("metrics-addr", "", "Metrics HTTP listen address (e.g., :9100); empty disables")
	showVersion := fs.Bool("version", false, "Print version and exit")
	if err := fs.Parse(args); err != nil {
		return nil, false
	}

	setFlags := map[string]struct{}{}
	fs.Visit(func(f *flag.Flag) { setFlags[f.Name] = struct{}{} })
	cfg.infile = *infile
	cfg.outfile = *outfile
	cfg.d4 = *d4
	cfg.noRTRDLC = *noRTRDLC
	cfg.fdFormat = *fdFormat
	cfg.crlf = *crlf
	cfg.logFormat = *logFormat
	cfg.logLevel = *logLevel
	cfg.metricsAddr = *metricsAddr
	// positional args: interface names, first becomes channel 1
	cfg.interfaces = fs.Args()

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
	if err := cfg.validate(); err != nil {
		fmt.Printf("configuration error: %v\n", err)
		return nil, *showVersion
	}
	return cfg, *showVersion
}

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
	if _, ok := set["4"]; !ok && f.ASCTimestamp4 {
		c.d4 = true
	}
	if _, ok := set["n"]; !ok && f.ASCCRLF {
		c.crlf = true
	}
	if _, ok := set["f"]; !ok && f.ASCFDFormat {
		c.fdFormat = true
	}
	if _, ok := set["r"]; !ok && f.ASCNoRTRDLC {
		c.noRTRDLC = true
	}
	// positional interfaces win over the config file channel map
	if len(c.interfaces) == 0 && len(f.Channels) > 0 {
		c.interfaces = f.Interfaces()
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
	if len(c.interfaces) == 0 {
		return errors.New("no CAN interfaces defined (pass interface names or a [channels] config section)")
	}
	return nil
}

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
	if len(c.interfaces) == 0 {
		if v, ok := get("CAN_LOG_INTERFACES"); ok && v != "" {
			c.interfaces = strings.Fields(v)
		}
	}
	return nil
}
