// Package errframe decodes the payload of CAN error message frames into
// symbolic class and sub-field descriptions.
package errframe

import (
	"fmt"
	"strings"

	"github.com/cantools/canlog/internal/can"
	"github.com/cantools/canlog/internal/logging"
)

// DefaultSep joins error classes unless the caller overrides it.
const DefaultSep = ","

var errorClasses = []string{
	"tx-timeout",
	"lost-arbitration",
	"controller-problem",
	"protocol-violation",
	"transceiver-status",
	"no-acknowledgement-on-tx",
	"bus-off",
	"bus-error",
	"restarted-after-bus-off",
	"error-counter-tx-rx",
}

var controllerProblems = []string{
	"rx-overflow",
	"tx-overflow",
	"rx-error-warning",
	"tx-error-warning",
	"rx-error-passive",
	"tx-error-passive",
	"back-to-error-active",
}

var protocolViolationTypes = []string{
	"single-bit-error",
	"frame-format-error",
	"bit-stuffing-error",
	"tx-dominant-bit-error",
	"tx-recessive-bit-error",
	"bus-overload",
	"active-error",
	"error-on-tx",
}

var protocolViolationLocations = [32]string{
	"unspecified",
	"unspecified",
	"id.28-to-id.21",
	"start-of-frame",
	"bit-srtr",
	"bit-ide",
	"id.20-to-id.18",
	"id.17-to-id.13",
	"crc-sequence",
	"reserved-bit-0",
	"data-field",
	"data-length-code",
	"bit-rtr",
	"reserved-bit-1",
	"id.4-to-id.0",
	"id.12-to-id.5",
	"unspecified",
	"active-error-flag",
	"intermission",
	"tolerate-dominant-bits",
	"unspecified",
	"unspecified",
	"passive-error-flag",
	"error-delimiter",
	"crc-delimiter",
	"acknowledge-slot",
	"end-of-frame",
	"acknowledge-delimiter",
	"overload-flag",
	"unspecified",
	"unspecified",
	"unspecified",
}

// Sprint renders the symbolic breakdown of an error frame, classes joined
// by sep (DefaultSep when empty). It returns "" when f is not an error
// frame or carries an invalid class mask.
func Sprint(f *can.Frame, sep string) string {
	if f.Kind != can.KindCC || f.ID&can.ErrFlag == 0 {
		return ""
	}
	class := f.ID & can.EFFMask
	if class > 1<<uint(len(errorClasses)) {
		logging.L().Warn("invalid_error_class", "class", fmt.Sprintf("%#x", class))
		return ""
	}
	if sep == "" {
		sep = DefaultSep
	}

	data := func(i int) uint8 {
		if i < len(f.Data) {
			return f.Data[i]
		}
		return 0
	}

	var sb strings.Builder
	classes := 0
	for i, name := range errorClasses {
		mask := uint32(1) << uint(i)
		if class&mask == 0 {
			continue
		}
		if classes > 0 {
			sb.WriteString(sep)
		}
		sb.WriteString(name)
		switch mask {
		case can.ErrLostArb:
			fmt.Fprintf(&sb, "{at bit %d}", data(0))
		case can.ErrCrtl:
			sb.WriteByte('{')
			writeBits(&sb, data(1), controllerProblems)
			sb.WriteByte('}')
		case can.ErrProt:
			sb.WriteString("{{")
			writeBits(&sb, data(2), protocolViolationTypes)
			sb.WriteString("}{")
			if loc := data(3); loc > 0 && int(loc) < len(protocolViolationLocations) {
				sb.WriteString(protocolViolationLocations[loc])
			}
			sb.WriteString("}}")
		case can.ErrCnt:
			fmt.Fprintf(&sb, "{{%d}{%d}}", data(6), data(7))
		}
		classes++
	}

	// tx/rx error counters may also arrive without the counter class bit
	if class&can.ErrCnt == 0 && (data(6) != 0 || data(7) != 0) {
		sb.WriteString(sep)
		fmt.Fprintf(&sb, "error-counter-tx-rx{{%d}{%d}}", data(6), data(7))
	}
	return sb.String()
}

// writeBits emits the csv of names whose bit is set in err.
func writeBits(sb *strings.Builder, err uint8, names []string) {
	count := 0
	for i, name := range names {
		if err&(1<<uint(i)) == 0 {
			continue
		}
		if count > 0 {
			sb.WriteByte(',')
		}
		sb.WriteString(name)
		count++
	}
}

// Decode writes the breakdown into buf and returns the number of bytes
// written, 0 when f is not a decodable error frame. A buffer that cannot
// hold the full output yields can.ErrBufferTooSmall with nothing written.
func Decode(buf []byte, f *can.Frame, sep string) (int, error) {
	s := Sprint(f, sep)
	if s == "" {
		return 0, nil
	}
	if len(s) > len(buf) {
		return 0, can.ErrBufferTooSmall
	}
	return copy(buf, s), nil
}
