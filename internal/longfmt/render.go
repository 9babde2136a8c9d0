// Package longfmt renders CAN frames into the fixed multi-column layout
// used for terminal display.
package longfmt

import (
	"fmt"

	"github.com/cantools/canlog/internal/can"
	"github.com/cantools/canlog/internal/errframe"
)

// View selects optional renderings. Two calls with the same view produce
// byte-identical output for equal frames.
type View uint

const (
	ViewASCII     View = 1 << iota // trailing quoted ASCII pane (payload <= 8)
	ViewBinary                     // expand each byte to 8 bits MSB first
	ViewSwap                       // reverse data byte order, '`' delimiter
	ViewError                      // append decoded error detail on next line
	ViewIndentSFF                  // right-pad SFF ids into the EFF column
	ViewLen8DLC                    // render raw DLC as {H} instead of [N]
)

// SwapDelimiter joins data bytes when ViewSwap is set.
const SwapDelimiter = '`'

const hexUpper = "0123456789ABCDEF"

// Sprint renders f in the long human-readable format.
func Sprint(f *can.Frame, view View) string {
	if f.Kind == can.KindXL {
		return sprintXL(f, view)
	}

	maxdlen := can.MaxDLen
	if f.Kind == can.KindFD {
		maxdlen = can.FDMaxDLen
	}
	length := int(f.Len)
	if length > maxdlen {
		length = maxdlen
	}

	// space prefill for the CAN-ID and length columns
	b := make([]byte, 15, 256)
	for i := range b {
		b[i] = ' '
	}
	var offset int
	switch {
	case f.ID&can.ErrFlag != 0:
		can.PutID(b[0:8], f.ID&(can.ErrMask|can.ErrFlag))
		offset = 10
	case f.ID&can.EFFFlag != 0:
		can.PutID(b[0:8], f.ID&can.EFFMask)
		offset = 10
	default:
		if view&ViewIndentSFF != 0 {
			can.PutID(b[5:8], f.ID&can.SFFMask)
			offset = 10
		} else {
			can.PutID(b[0:3], f.ID&can.SFFMask)
			offset = 5
		}
	}

	if maxdlen == can.MaxDLen {
		if view&ViewLen8DLC != 0 {
			dlc := f.Len8DLC
			// fall back to len without a valid raw DLC > 8
			if !(length == can.MaxDLen && dlc > can.MaxDLen && dlc <= can.MaxRawDLC) {
				dlc = uint8(length)
			}
			b[offset+1] = '{'
			b[offset+2] = hexUpper[dlc&0x0F]
			b[offset+3] = '}'
		} else {
			b[offset+1] = '['
			b[offset+2] = byte(length) + '0'
			b[offset+3] = ']'
		}

		// standard CAN frames may have RTR enabled
		if f.ID&can.RTRFlag != 0 {
			return string(append(b[:offset+5], " remote request"...))
		}
	} else {
		b[offset] = '['
		b[offset+1] = byte(length/10) + '0'
		b[offset+2] = byte(length%10) + '0'
		b[offset+3] = ']'
	}
	offset += 5
	b = b[:offset]

	var dlen int // rendered width per data byte
	if view&ViewBinary != 0 {
		dlen = 9
	} else {
		dlen = 3
	}
	b = appendData(b, f.Data[:length], view)

	// ASCII and ERRORFRAME panes only for payloads up to 8 bytes
	if length > can.MaxDLen {
		return string(b)
	}

	if f.ID&can.ErrFlag != 0 {
		b = append(b, fmt.Sprintf("%*s", dlen*(8-length)+13, "ERRORFRAME")...)
		if view&ViewError != 0 {
			if detail := errframe.Sprint(f, "\n\t"); detail != "" {
				b = append(b, "\n\t"...)
				b = append(b, detail...)
			}
		}
	} else if view&ViewASCII != 0 {
		b = appendASCIIPane(b, f.Data[:length], view, dlen*(8-length)+4)
	}
	return string(b)
}

// appendData renders the payload column, honoring binary and swap views.
func appendData(b []byte, data []byte, view View) []byte {
	put := func(b []byte, v byte) []byte {
		if view&ViewBinary != 0 {
			for j := 7; j >= 0; j-- {
				if v&(1<<uint(j)) != 0 {
					b = append(b, '1')
				} else {
					b = append(b, '0')
				}
			}
			return b
		}
		var hx [2]byte
		can.PutHexByte(hx[:], v)
		return append(b, hx[:]...)
	}

	if view&ViewSwap != 0 {
		for i := len(data) - 1; i >= 0; i-- {
			if i == len(data)-1 {
				b = append(b, ' ')
			} else {
				b = append(b, SwapDelimiter)
			}
			b = put(b, data[i])
		}
		return b
	}
	for _, v := range data {
		b = append(b, ' ')
		b = put(b, v)
	}
	return b
}

func appendASCIIPane(b []byte, data []byte, view View, pad int) []byte {
	quote := byte('\'')
	if view&ViewSwap != 0 {
		quote = SwapDelimiter
	}
	b = append(b, fmt.Sprintf("%*s", pad, string(quote))...)
	printable := func(v byte) byte {
		if v > 0x1F && v < 0x7F {
			return v
		}
		return '.'
	}
	if view&ViewSwap != 0 {
		for i := len(data) - 1; i >= 0; i-- {
			b = append(b, printable(data[i]))
		}
	} else {
		for _, v := range data {
			b = append(b, printable(v))
		}
	}
	return append(b, quote)
}

// sprintXL renders a CAN XL frame: 3-digit priority column, 4-digit
// length marker, the (VCID|flags:sdt:af) group, and the payload cropped
// to 64 bytes.
func sprintXL(f *can.Frame, view View) string {
	b := make([]byte, 0, 256)
	if view&ViewIndentSFF != 0 {
		b = append(b, "     "...)
	}
	var id [3]byte
	can.PutID(id[:], uint32(f.Prio&can.XLPrioMask))
	b = append(b, id[:]...)

	length := int(f.Len)
	if length > can.XLMaxDLen {
		length = can.XLMaxDLen
	}
	b = append(b, fmt.Sprintf("  [%04d] (%02X|%02X:%02X:%08X)",
		length, f.VCID, f.XLFlags, f.SDT, f.AF)...)

	crop := length
	if crop > can.FDMaxDLen {
		crop = can.FDMaxDLen
	}
	b = appendData(b, f.Data[:crop], view)
	if length > crop {
		b = append(b, " …"...)
	}

	if length <= can.MaxDLen && view&ViewASCII != 0 {
		var dlen int
		if view&ViewBinary != 0 {
			dlen = 9
		} else {
			dlen = 3
		}
		b = appendASCIIPane(b, f.Data[:length], view, dlen*(8-length)+4)
	}
	return string(b)
}
