package translate

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/cantools/canlog/internal/can"
	"github.com/cantools/canlog/internal/compact"
	"github.com/cantools/canlog/internal/logging"
	"github.com/cantools/canlog/internal/longfmt"
	"github.com/cantools/canlog/internal/metrics"
)

// LogToLongOptions configures the compact→long pretty printer.
type LogToLongOptions struct {
	// Color renders each interface name in its own ANSI color.
	Color bool
}

// interface name colors, assigned in first-seen order
var devicePalette = []*color.Color{
	color.New(color.FgRed),
	color.New(color.FgGreen),
	color.New(color.FgYellow),
	color.New(color.FgBlue),
	color.New(color.FgMagenta),
	color.New(color.FgCyan),
}

// LogToLong converts a compact log stream into the long human-readable
// rendering with SFF indentation and the ASCII sidebar.
func LogToLong(r io.Reader, w io.Writer, opt LogToLongOptions) error {
	sc := newScanner(r)
	bw := bufio.NewWriter(w)
	deviceColors := make(map[string]*color.Color)

	for sc.Scan() {
		metrics.IncLineRead()
		fields := strings.Fields(sc.Text())
		if len(fields) < 3 {
			if len(fields) > 0 {
				logging.L().Warn("malformed_log_line", "line", sc.Text())
				metrics.IncMalformed()
			}
			continue
		}
		timestamp, device, frameTok := fields[0], fields[1], fields[2]

		var f can.Frame
		if compact.Parse(frameTok, &f) == can.MTUNone {
			logging.L().Warn("malformed_frame", "frame", frameTok)
			continue
		}

		if opt.Color {
			c, ok := deviceColors[device]
			if !ok {
				c = devicePalette[len(deviceColors)%len(devicePalette)]
				deviceColors[device] = c
			}
			device = c.Sprint(device)
		}

		long := longfmt.Sprint(&f, longfmt.ViewIndentSFF|longfmt.ViewASCII)
		if _, err := fmt.Fprintf(bw, "%s  %s  %s\n", timestamp, device, long); err != nil {
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
