// Package translate wires the frame codecs into the streaming log format
// converters. Translators preserve input-line order, emit at most one
// output line per input line, and drop lines that do not parse.
package translate

import (
	"bufio"
	"fmt"
	"io"

	"github.com/cantools/canlog/internal/asc"
	"github.com/cantools/canlog/internal/can"
	"github.com/cantools/canlog/internal/compact"
	"github.com/cantools/canlog/internal/metrics"
)

// scanBufSize bounds one input line; CANFD-format ASC lines get long.
const scanBufSize = 1 << 20

func newScanner(r io.Reader) *bufio.Scanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), scanBufSize)
	return sc
}

func incFrameMetric(f *can.Frame) {
	switch f.Kind {
	case can.KindFD:
		metrics.IncFrame(metrics.TransportFD)
	case can.KindXL:
		metrics.IncFrame(metrics.TransportXL)
	default:
		metrics.IncFrame(metrics.TransportCC)
	}
}

// ASCToLog converts an ASC log stream into the compact log format with
// microsecond timestamps.
func ASCToLog(r io.Reader, w io.Writer) error {
	sc := newScanner(r)
	bw := bufio.NewWriter(w)
	var p asc.Parser

	for sc.Scan() {
		metrics.IncLineRead()
		rec, err := p.ParseLine(sc.Text())
		if err != nil {
			metrics.IncError(metrics.ErrHeader)
			return fmt.Errorf("asc header: %w", err)
		}
		if rec == nil {
			continue
		}
		if err := writeCompactLine(bw, rec); err != nil {
			metrics.IncError(metrics.ErrWrite)
			return err
		}
		metrics.IncLineWritten()
		incFrameMetric(&rec.Frame)
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

func writeCompactLine(w *bufio.Writer, rec *asc.Record) error {
	if _, err := fmt.Fprintf(w, "(%d.%06d) ", rec.TV.Sec, rec.TV.USec); err != nil {
		return fmt.Errorf("output write: %w", err)
	}
	// ASC channels are 1-based, SocketCAN interfaces 0-based
	if rec.Channel > 0 {
		fmt.Fprintf(w, "can%d ", rec.Channel-1)
	} else {
		w.WriteString("canX ")
	}
	w.Write(compact.Append(nil, &rec.Frame, false))
	if rec.Dir != 0 {
		w.WriteByte(' ')
		w.WriteByte(rec.Dir)
	}
	if err := w.WriteByte('\n'); err != nil {
		return fmt.Errorf("output write: %w", err)
	}
	return nil
}
