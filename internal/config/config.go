// Package config loads the optional INI configuration file shared by the
// converter commands. File values sit below environment variables and
// flags in precedence: a command applies the file first, then the
// CAN_LOG_* environment, then any explicitly set flags.
package config

import (
	"fmt"
	"strings"

	"gopkg.in/ini.v1"
)

// File is the parsed configuration file content.
//
//	[log]
//	level  = info        ; debug|info|warn|error
//	format = text        ; text|json
//
//	[metrics]
//	addr = :9100
//
//	[asc]
//	timestamp4 = false   ; 4 decimal places
//	crlf       = false
//	fd-format  = false
//	no-rtr-dlc = false
//
//	[channels]           ; log2asc channel assignment, 1-based
//	can0 = 1
//	vcan0 = 2
type File struct {
	LogLevel    string
	LogFormat   string
	MetricsAddr string

	ASCTimestamp4 bool
	ASCCRLF       bool
	ASCFDFormat   bool
	ASCNoRTRDLC   bool

	// Channels maps interface names to ASC channel numbers.
	Channels map[string]int
}

// Load reads and validates an INI configuration file.
func Load(path string) (*File, error) {
	src, err := ini.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load config %s: %w", path, err)
	}
	f := &File{Channels: map[string]int{}}

	logSec := src.Section("log")
	f.LogLevel = strings.TrimSpace(logSec.Key("level").String())
	f.LogFormat = strings.TrimSpace(logSec.Key("format").String())
	switch f.LogLevel {
	case "", "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("config %s: invalid log level %q", path, f.LogLevel)
	}
	switch f.LogFormat {
	case "", "text", "json":
	default:
		return nil, fmt.Errorf("config %s: invalid log format %q", path, f.LogFormat)
	}

	f.MetricsAddr = strings.TrimSpace(src.Section("metrics").Key("addr").String())

	ascSec := src.Section("asc")
	f.ASCTimestamp4 = ascSec.Key("timestamp4").MustBool(false)
	f.ASCCRLF = ascSec.Key("crlf").MustBool(false)
	f.ASCFDFormat = ascSec.Key("fd-format").MustBool(false)
	f.ASCNoRTRDLC = ascSec.Key("no-rtr-dlc").MustBool(false)

	for _, key := range src.Section("channels").Keys() {
		n, err := key.Int()
		if err != nil || n < 1 {
			return nil, fmt.Errorf("config %s: invalid channel number for %s", path, key.Name())
		}
		f.Channels[key.Name()] = n
	}
	return f, nil
}

// Interfaces flattens the channel map into the positional interface list
// the ASC emitter expects: index i holds the name of channel i+1. Gaps
// are left empty and match no device.
func (f *File) Interfaces() []string {
	max := 0
	for _, n := range f.Channels {
		if n > max {
			max = n
		}
	}
	out := make([]string, max)
	for name, n := range f.Channels {
		out[n-1] = name
	}
	return out
}
