package asc

import (
	"fmt"

	"github.com/cantools/canlog/internal/can"
)

// Synthetic values for the MessageDuration and MessageLength columns,
// which the compact log format does not record.
const (
	fillMsgDuration = 130000
	fillMsgLength   = 130
)

func dirString(dir byte) string {
	if dir == 'T' {
		return "Tx"
	}
	return "Rx"
}

func idTag(f *can.Frame) string {
	marker := byte(' ')
	if f.ID&can.EFFFlag != 0 {
		marker = 'x'
	}
	return fmt.Sprintf("%X%c", f.ID&can.EFFMask, marker)
}

// AppendClassicLine appends the classic-format ASC body for one frame:
// channel, identifier, direction and payload columns.
func AppendClassicLine(dst []byte, f *can.Frame, devno int, dir byte, noRTRDLC bool) []byte {
	dst = append(dst, fmt.Sprintf("%-2d ", devno)...) // channel left aligned
	if f.ID&can.ErrFlag != 0 {
		return append(dst, "ErrorFrame"...)
	}

	dst = append(dst, fmt.Sprintf("%-15s %s   ", idTag(f), dirString(dir))...)
	if f.ID&can.RTRFlag != 0 {
		if noRTRDLC {
			return append(dst, 'r') // pre v8.5 tools have no RTR DLC
		}
		return append(dst, fmt.Sprintf("r %d", f.Len)...)
	}

	dst = append(dst, fmt.Sprintf("d %d", f.Len)...)
	for _, b := range f.Data[:f.Len] {
		dst = append(dst, fmt.Sprintf(" %02X", b)...)
	}
	return dst
}

// AppendFDLine appends the CANFD-format ASC body, which carries classic
// CAN frames as well (their FD flag bits stay clear).
func AppendFDLine(dst []byte, f *can.Frame, devno int, dir byte) []byte {
	// channel number right aligned in the CANFD format
	dst = append(dst, fmt.Sprintf("CANFD %3d %s ", devno, dirString(dir))...)
	dst = append(dst, fmt.Sprintf("%11s                                  ", idTag(f))...)

	brs, esi := byte('0'), byte('0')
	if f.Kind == can.KindFD {
		if f.FDFlags&can.FDBRS != 0 {
			brs = '1'
		}
		if f.FDFlags&can.FDESI != 0 {
			esi = '1'
		}
	}
	dlen := int(f.Len)
	dlc, _ := can.Len2DLC(dlen) // frame lengths never exceed 64 here
	dst = append(dst, fmt.Sprintf("%c %c %x ", brs, esi, dlc)...)

	var flags uint32
	if f.Kind == can.KindCC {
		if f.ID&can.RTRFlag != 0 {
			// no data length but a valid DLC column for RTR frames
			dlen = 0
			flags = FlagRTR
		}
	} else {
		flags = FlagFDF
		if f.FDFlags&can.FDBRS != 0 {
			flags |= FlagBRS
		}
		if f.FDFlags&can.FDESI != 0 {
			flags |= FlagESI
		}
	}

	dst = append(dst, fmt.Sprintf("%2d", dlen)...)
	for _, b := range f.Data[:dlen] {
		dst = append(dst, fmt.Sprintf(" %02X", b)...)
	}
	dst = append(dst, fmt.Sprintf(" %8d %4d %8X 0 0 0 0 0",
		fillMsgDuration, fillMsgLength, flags)...)
	return dst
}
