// Package asc reads and writes the vendor plain-text ASC CAN log format.
package asc

import (
	"fmt"
	"strings"
	"time"

	"github.com/cantools/canlog/internal/can"
	"github.com/cantools/canlog/internal/logging"
	"github.com/cantools/canlog/internal/metrics"
	"github.com/cantools/canlog/internal/timeval"
)

// Header holds the ASC file preamble state absorbed before the first
// data line.
type Header struct {
	Base       byte // 'h'ex or 'd'ec payload and id representation
	Timestamps byte // 'a'bsolute or 'r'elative line timestamps
	Date       timeval.Time
	DPlace     int // decimal places of the timestamp column: 4, 5 or 6
}

// date layouts seen in the wild: EN/US files carry an am/pm field, DE
// files do not; both may squeeze a millisecond value into the time.
var dateLayouts = []string{
	"January 2 3:04:05.000 PM 2006",
	"January 2 3:04:05 PM 2006",
	"Jan 2 3:04:05.000 PM 2006",
	"Jan 2 3:04:05 PM 2006",
	"January 2 15:04:05.000 2006",
	"January 2 15:04:05 2006",
	"Jan 2 15:04:05.000 2006",
	"Jan 2 15:04:05 2006",
}

// parseDate interprets the payload of a `date <weekday> <...>` header
// line.
func parseDate(s string) (timeval.Time, error) {
	fields := strings.Fields(s)
	if len(fields) < 3 {
		return timeval.Time{}, fmt.Errorf("asc date %q: %w", s, can.ErrMalformed)
	}
	// drop the weekday, uppercase a lowercase am/pm marker
	fields = fields[1:]
	for i, f := range fields {
		switch strings.ToLower(f) {
		case "am":
			fields[i] = "AM"
		case "pm":
			fields[i] = "PM"
		}
	}
	joined := strings.Join(fields, " ")
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, joined, time.Local); err == nil {
			return timeval.FromTime(t), nil
		}
	}
	return timeval.Time{}, fmt.Errorf("asc date %q: %w", s, can.ErrMalformed)
}

// absorb consumes base/timestamps and date header lines. It reports
// whether the line was recognized as a header entry.
func (h *Header) absorb(line string, fields []string) (bool, error) {
	if h.Base == 0 && len(fields) >= 4 && fields[0] == "base" && fields[2] == "timestamps" {
		base := fields[1][0]
		stamps := fields[3][0]
		if base != 'h' && base != 'd' {
			return true, fmt.Errorf("invalid base %q (must be 'hex' or 'dez'): %w",
				fields[1], can.ErrMalformed)
		}
		if stamps != 'a' && stamps != 'r' {
			return true, fmt.Errorf("invalid timestamps %q (must be 'absolute' or 'relative'): %w",
				fields[3], can.ErrMalformed)
		}
		h.Base = base
		h.Timestamps = stamps
		logging.L().Debug("asc_header", "base", string(base), "timestamps", string(stamps))
		return true, nil
	}

	if h.Date.IsZero() && strings.HasPrefix(line, "date") {
		d, err := parseDate(strings.TrimSpace(line[4:]))
		if err != nil {
			// keep converting with the current time as origin
			logging.L().Warn("asc_date_unparsed", "line", line)
			metrics.IncError(metrics.ErrDate)
			d = timeval.Now()
		}
		h.Date = d
		logging.L().Debug("asc_date", "sec", h.Date.Sec)
		return true, nil
	}
	return false, nil
}
