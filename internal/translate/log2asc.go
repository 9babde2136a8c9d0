package translate

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/cantools/canlog/internal/asc"
	"github.com/cantools/canlog/internal/can"
	"github.com/cantools/canlog/internal/compact"
	"github.com/cantools/canlog/internal/logging"
	"github.com/cantools/canlog/internal/metrics"
	"github.com/cantools/canlog/internal/timeval"
)

// LogToASCOptions configures the compact→ASC conversion.
type LogToASCOptions struct {
	// Interfaces assigns ASC channel numbers: the first name becomes
	// channel 1. Frames on unlisted interfaces are skipped.
	Interfaces []string
	D4         bool // reduce the timestamp to 4 decimal places
	CRLF       bool // cr/lf line endings
	FDFormat   bool // use the CANFD line format for classic frames too
	NoRTRDLC   bool // suppress the DLC on RTR frames (pre v8.5 tools)
}

// splitLogLine splits a compact log line `(sec.usec) iface frame [extra]`.
func splitLogLine(line string) (tv timeval.Time, device, frame, extra string, ok bool) {
	fields := strings.Fields(line)
	if len(fields) < 3 {
		return
	}
	ts := fields[0]
	if len(ts) < 5 || ts[0] != '(' || ts[len(ts)-1] != ')' {
		return
	}
	dot := strings.IndexByte(ts, '.')
	if dot < 0 {
		return
	}
	sec, err1 := strconv.ParseInt(ts[1:dot], 10, 64)
	usec, err2 := strconv.ParseInt(ts[dot+1:len(ts)-1], 10, 64)
	if err1 != nil || err2 != nil {
		return
	}
	tv = timeval.Time{Sec: sec, USec: usec}
	device = fields[1]
	frame = fields[2]
	if len(fields) > 3 {
		extra = fields[3]
	}
	return tv, device, frame, extra, true
}

// LogToASC converts a compact log stream into an ASC log file.
func LogToASC(r io.Reader, w io.Writer, opt LogToASCOptions) error {
	if len(opt.Interfaces) == 0 {
		return errors.New("no CAN interfaces defined")
	}
	eol := "\n"
	if opt.CRLF {
		eol = "\r\n"
	}

	sc := newScanner(r)
	bw := bufio.NewWriter(w)
	var start timeval.Time
	started := false

	for sc.Scan() {
		metrics.IncLineRead()
		line := sc.Text()
		if len(line) == 0 || line[0] != '(' { // comment line
			continue
		}
		tv, device, frameTok, extra, ok := splitLogLine(line)
		if !ok {
			logging.L().Warn("malformed_log_line", "line", line)
			metrics.IncMalformed()
			continue
		}

		if !started { // print banner
			started = true
			start = tv
			fmt.Fprintf(bw, "date %s\n", time.Unix(start.Sec, 0).Format("Mon Jan _2 15:04:05 2006"))
			fmt.Fprintf(bw, "base hex  timestamps absolute%s", eol)
			fmt.Fprintf(bw, "no internal events logged%s", eol)
		}

		devno := 0
		for i, name := range opt.Interfaces {
			if name == device {
				devno = i + 1 // channels start with '1'
				break
			}
		}
		if devno == 0 { // only convert selected CAN devices
			continue
		}

		var f can.Frame
		mtu := compact.Parse(frameTok, &f)
		switch {
		case mtu == can.MTUNone:
			logging.L().Warn("malformed_frame", "frame", frameTok)
			continue
		case mtu == can.XLMTU:
			// the ASC format has no CAN XL representation
			logging.L().Debug("xl_frame_skipped", "frame", frameTok)
			continue
		case mtu == can.FDMTU && f.ID&can.ErrFlag != 0:
			// no error message frames in the CANFD format
			continue
		}

		d := timeval.Time{Sec: tv.Sec - start.Sec, USec: tv.USec - start.USec}
		if d.USec < 0 {
			d.Sec--
			d.USec += 1_000_000
		}
		if d.Sec < 0 {
			d = timeval.Time{}
		}
		if opt.D4 {
			fmt.Fprintf(bw, "%4d.%04d ", d.Sec, d.USec/100)
		} else {
			fmt.Fprintf(bw, "%4d.%06d ", d.Sec, d.USec)
		}

		dir := byte('R')
		if len(extra) > 0 && extra[0] == 'T' {
			dir = 'T'
		}
		var body []byte
		if mtu == can.CCMTU && !opt.FDFormat {
			body = asc.AppendClassicLine(nil, &f, devno, dir, opt.NoRTRDLC)
		} else {
			body = asc.AppendFDLine(nil, &f, devno, dir)
		}
		bw.Write(body)
		if _, err := bw.WriteString(eol); err != nil {
			metrics.IncError(metrics.ErrWrite)
			return fmt.Errorf("output write: %w", err)
		}
		metrics.IncLineWritten()
		incFrameMetric(&f)
	}
	if err := sc.Err(); err != nil {
		metrics.IncError(metrics.ErrRead)
		return fmt.Errorf("input read: %w", err)
	}
	if err := bw.Flush(); err != nil {
		metrics.IncError(metrics.ErrWrite)
		return fmt.Errorf("output flush: %w", err)
	}
	return nil
}
