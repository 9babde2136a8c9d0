// Package compact implements the one-line `<id>#...` textual CAN frame
// encoding used by the log file format, covering Classical CAN, CAN FD
// and CAN XL.
package compact

import (
	"fmt"
	"io"

	"github.com/cantools/canlog/internal/can"
	"github.com/cantools/canlog/internal/metrics"
)

const (
	idDelim  = '#'
	dlcDelim = '_'
	dataSep  = '.'
)

// Parse scans the compact form of a single CAN frame into f. The return
// value tags the detected transport: can.CCMTU, can.FDMTU or can.XLMTU.
// can.MTUNone means the text did not match the grammar; f is then left
// zero-initialized, never partially filled.
//
// Examples:
//
//	123#               SFF id 0x123, no data
//	123#R7             SFF RTR with DLC 7
//	123#1122334455667788_9   8 data bytes, raw DLC 9
//	12345678#DEADBEEF  EFF id, 4 data bytes
//	123##1.11.22.33    CAN FD, BRS, 3 data bytes ('.' separators optional)
//	45123#81:00:12345678#11223344   CAN XL, VCID 0x45, prio 0x123
func Parse(cs string, f *can.Frame) int {
	*f = can.Frame{}
	n := len(cs)
	if n < 4 {
		return reject(f)
	}

	var idx, maxdlen, mtu int
	switch {
	case cs[3] == idDelim: // 3 digits: SFF
		for i := 0; i < 3; i++ {
			v := can.Nibble(cs[i])
			if v > 0x0F {
				return reject(f)
			}
			f.ID |= uint32(v) << uint((2-i)*4)
		}
		idx = 4
	case n > 8 && cs[8] == idDelim: // 8 digits: EFF or error frame
		for i := 0; i < 8; i++ {
			v := can.Nibble(cs[i])
			if v > 0x0F {
				return reject(f)
			}
			f.ID |= uint32(v) << uint((7-i)*4)
		}
		if f.ID&can.ErrFlag == 0 { // 8 digits but no error frame?
			f.ID |= can.EFFFlag // then it is an extended frame
		}
		idx = 9
	case n > 5 && cs[5] == idDelim: // 5 digits: CAN XL
		return parseXL(cs, f)
	default:
		return reject(f)
	}
	f.Kind = can.KindCC
	maxdlen = can.MaxDLen
	mtu = can.CCMTU

	if idx < n && (cs[idx] == 'R' || cs[idx] == 'r') { // RTR frame
		f.ID |= can.RTRFlag
		idx++
		// optional DLC nibble for CAN 2.0B frames
		if idx < n {
			if v := can.Nibble(cs[idx]); v <= can.MaxDLen {
				f.Len = uint16(v)
				idx++
				// optional raw DLC behind the '_' delimiter
				if v == can.MaxDLen && idx+1 < n && cs[idx] == dlcDelim {
					if d := can.Nibble(cs[idx+1]); d > can.MaxDLen && d <= can.MaxRawDLC {
						f.Len8DLC = d
					}
				}
			}
		}
		return mtu
	}

	if idx < n && cs[idx] == idDelim { // CAN FD frame escape char '##'
		if idx+1 >= n {
			return reject(f)
		}
		v := can.Nibble(cs[idx+1])
		if v > 0x0F {
			return reject(f)
		}
		// the FD variant implies FDF regardless of the flags nibble
		f.Kind = can.KindFD
		f.FDFlags = v | can.FDFDF
		maxdlen = can.FDMaxDLen
		mtu = can.FDMTU
		idx += 2
	}

	var data [can.FDMaxDLen]byte
	dlen := 0
	for i := 0; i < maxdlen; i++ {
		if idx < n && cs[idx] == dataSep { // skip (optional) separator
			idx++
		}
		if idx >= n { // end of string, end of data
			break
		}
		if idx+1 >= n { // odd number of hex digits
			return reject(f)
		}
		hi := can.Nibble(cs[idx])
		lo := can.Nibble(cs[idx+1])
		if hi > 0x0F || lo > 0x0F {
			return reject(f)
		}
		data[i] = hi<<4 | lo
		idx += 2
		dlen++
	}
	f.Len = uint16(dlen)
	if dlen > 0 {
		f.Data = append([]byte(nil), data[:dlen]...)
	}

	// extra raw DLC for a Classical CAN frame with full 8 byte payload
	if maxdlen == can.MaxDLen && dlen == can.MaxDLen && idx+1 < n && cs[idx] == dlcDelim {
		if d := can.Nibble(cs[idx+1]); d > can.MaxDLen && d <= can.MaxRawDLC {
			f.Len8DLC = d
		}
	}

	return mtu
}

// parseXL scans `<vcid:2><prio:3>#<flags:2>:<sdt:2>:<af:8>#<data>`.
func parseXL(cs string, f *can.Frame) int {
	n := len(cs)
	// 5 id digits + '#' + 2 + ':' + 2 + ':' + 8 + '#' + at least one byte
	if n < 23 {
		return reject(f)
	}
	var hdr uint32
	for i := 0; i < 5; i++ {
		v := can.Nibble(cs[i])
		if v > 0x0F {
			return reject(f)
		}
		hdr = hdr<<4 | uint32(v)
	}
	prio := uint16(hdr & 0xFFF)
	if prio > can.XLPrioMask {
		return reject(f)
	}
	if cs[8] != ':' || cs[11] != ':' || cs[20] != idDelim {
		return reject(f)
	}
	flags, ok := hexByte(cs[6], cs[7])
	if !ok {
		return reject(f)
	}
	sdt, ok := hexByte(cs[9], cs[10])
	if !ok {
		return reject(f)
	}
	var af uint32
	for i := 12; i < 20; i++ {
		v := can.Nibble(cs[i])
		if v > 0x0F {
			return reject(f)
		}
		af = af<<4 | uint32(v)
	}

	data := make([]byte, 0, 64)
	idx := 21
	for len(data) < can.XLMaxDLen {
		if idx < n && cs[idx] == dataSep {
			idx++
		}
		if idx >= n {
			break
		}
		if idx+1 >= n {
			return reject(f)
		}
		hi := can.Nibble(cs[idx])
		lo := can.Nibble(cs[idx+1])
		if hi > 0x0F || lo > 0x0F {
			return reject(f)
		}
		data = append(data, hi<<4|lo)
		idx += 2
	}
	if len(data) < can.XLMinDLen {
		return reject(f)
	}

	f.Kind = can.KindXL
	f.VCID = uint8(hdr >> 12)
	f.Prio = prio
	f.SDT = sdt
	f.AF = af
	f.XLFlags = flags | can.XLXLF
	f.Len = uint16(len(data))
	f.Data = data
	return can.XLMTU
}

func hexByte(hi, lo byte) (uint8, bool) {
	h := can.Nibble(hi)
	l := can.Nibble(lo)
	if h > 0x0F || l > 0x0F {
		return 0, false
	}
	return h<<4 | l, true
}

func reject(f *can.Frame) int {
	*f = can.Frame{}
	metrics.IncMalformed()
	return can.MTUNone
}

// Append appends the compact form of f to dst and returns the extended
// slice. When sep is true, data bytes are joined with '.' (CAN XL groups
// four bytes per separator). Output is the exact inverse of Parse.
func Append(dst []byte, f *can.Frame, sep bool) []byte {
	if f.Kind == can.KindXL {
		return appendXL(dst, f, sep)
	}

	var id [8]byte
	switch {
	case f.ID&can.ErrFlag != 0:
		can.PutID(id[:8], f.ID&(can.ErrMask|can.ErrFlag))
		dst = append(dst, id[:8]...)
	case f.ID&can.EFFFlag != 0:
		can.PutID(id[:8], f.ID&can.EFFMask)
		dst = append(dst, id[:8]...)
	default:
		can.PutID(id[:3], f.ID&can.SFFMask)
		dst = append(dst, id[:3]...)
	}
	dst = append(dst, idDelim)

	maxdlen := can.MaxDLen
	if f.Kind == can.KindFD {
		maxdlen = can.FDMaxDLen
	}
	dlen := int(f.Len)
	if dlen > maxdlen {
		dlen = maxdlen
	}

	// standard CAN frames may have RTR enabled, there is no FD-RTR
	if f.Kind == can.KindCC && f.ID&can.RTRFlag != 0 {
		dst = append(dst, 'R')
		if dlen > 0 {
			dst = append(dst, hexDigit(uint8(dlen)))
			if dlen == can.MaxDLen && f.Len8DLC > can.MaxDLen && f.Len8DLC <= can.MaxRawDLC {
				dst = append(dst, dlcDelim, hexDigit(f.Len8DLC))
			}
		}
		return dst
	}

	if f.Kind == can.KindFD {
		// FD escape char and flags; FDF itself is implied by the escape
		dst = append(dst, idDelim, hexDigit(f.FDFlags&^can.FDFDF))
		if sep && dlen > 0 {
			dst = append(dst, dataSep)
		}
	}

	var hx [2]byte
	for i := 0; i < dlen; i++ {
		can.PutHexByte(hx[:], f.Data[i])
		dst = append(dst, hx[:]...)
		if sep && i+1 < dlen {
			dst = append(dst, dataSep)
		}
	}

	if f.Kind == can.KindCC && dlen == can.MaxDLen &&
		f.Len8DLC > can.MaxDLen && f.Len8DLC <= can.MaxRawDLC {
		dst = append(dst, dlcDelim, hexDigit(f.Len8DLC))
	}
	return dst
}

func appendXL(dst []byte, f *can.Frame, sep bool) []byte {
	var id [5]byte
	can.PutID(id[:2], uint32(f.VCID))
	can.PutID(id[2:], uint32(f.Prio&can.XLPrioMask))
	dst = append(dst, id[:]...)

	var hx [2]byte
	dst = append(dst, idDelim)
	can.PutHexByte(hx[:], f.XLFlags)
	dst = append(dst, hx[:]...)
	dst = append(dst, ':')
	can.PutHexByte(hx[:], f.SDT)
	dst = append(dst, hx[:]...)
	dst = append(dst, ':')
	var af [8]byte
	can.PutID(af[:], f.AF)
	dst = append(dst, af[:]...)
	dst = append(dst, idDelim)

	dlen := int(f.Len)
	if dlen > can.XLMaxDLen {
		dlen = can.XLMaxDLen
	}
	for i := 0; i < dlen; i++ {
		can.PutHexByte(hx[:], f.Data[i])
		dst = append(dst, hx[:]...)
		// XL payloads group four bytes per separator
		if sep && (i+1)%4 == 0 && i+1 < dlen {
			dst = append(dst, dataSep)
		}
	}
	return dst
}

func hexDigit(v uint8) byte {
	return "0123456789ABCDEF"[v&0x0F]
}

// Encode writes the compact form of f into buf and returns the byte
// count. It returns can.ErrBufferTooSmall when buf cannot hold the full
// rendering; buf is then left untouched.
func Encode(buf []byte, f *can.Frame, sep bool) (int, error) {
	s := Append(nil, f, sep)
	if len(s) > len(buf) {
		return 0, can.ErrBufferTooSmall
	}
	return copy(buf, s), nil
}

// Sprint returns the compact form of f.
func Sprint(f *can.Frame, sep bool) string {
	return string(Append(nil, f, sep))
}

// Fprint writes the compact form of f followed by eol to w.
func Fprint(w io.Writer, f *can.Frame, eol string, sep bool) error {
	buf := Append(nil, f, sep)
	buf = append(buf, eol...)
	if _, err := w.Write(buf); err != nil {
		return fmt.Errorf("compact write: %w", err)
	}
	return nil
}
