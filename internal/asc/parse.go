package asc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cantools/canlog/internal/can"
	"github.com/cantools/canlog/internal/logging"
	"github.com/cantools/canlog/internal/timeval"
)

// Flags word bits of the ASC CANFD line format.
const (
	FlagRTR uint32 = 0x00000010
	FlagFDF uint32 = 0x00001000
	FlagBRS uint32 = 0x00002000
	FlagESI uint32 = 0x00004000
)

// Record is one converted ASC data line.
type Record struct {
	TV      timeval.Time
	Channel int  // 1-based ASC channel number
	Frame   can.Frame
	Dir     byte // 'R' or 'T'; 0 when the line carries no direction
}

// Parser is a stateful reader of ASC log lines. It absorbs the header,
// captures the timestamp decimal width from the first data line, and
// keeps the running time accumulators the relative-timestamp mode needs.
type Parser struct {
	Hdr Header

	// separate running timestamps for the classic and the CANFD
	// evaluators, matching the reference converter
	ccTV timeval.Time
	fdTV timeval.Time
}

// ParseLine consumes one ASC line. It returns a Record for a converted
// data line, (nil, nil) for header lines and lines that match nothing,
// and an error for unusable header values.
func (p *Parser) ParseLine(line string) (*Record, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return nil, nil
	}

	if p.Hdr.DPlace == 0 { // frame representation not known yet
		if handled, err := p.Hdr.absorb(line, fields); handled || err != nil {
			return nil, err
		}
		_, _, digits, ok := splitStamp(fields[0])
		if !ok || len(fields) < 2 {
			return nil, nil // still before the first data line
		}
		if digits < 4 || digits > 6 {
			return nil, fmt.Errorf("invalid decimal places %d (must be 4, 5 or 6): %w",
				digits, can.ErrMalformed)
		}
		p.Hdr.DPlace = digits
		logging.L().Debug("asc_dplace", "digits", digits)
	}

	if len(fields) >= 3 && fields[1] == "CANFD" {
		return p.evalFD(fields), nil
	}
	return p.evalCC(fields), nil
}

// splitStamp splits a `<sec>.<frac>` token, returning the raw fraction
// digits value and their count.
func splitStamp(tok string) (sec, frac int64, digits int, ok bool) {
	dot := strings.IndexByte(tok, '.')
	if dot <= 0 || dot == len(tok)-1 {
		return 0, 0, 0, false
	}
	var err error
	if sec, err = strconv.ParseInt(tok[:dot], 10, 64); err != nil {
		return 0, 0, 0, false
	}
	if frac, err = strconv.ParseInt(tok[dot+1:], 10, 64); err != nil {
		return 0, 0, 0, false
	}
	return sec, frac, len(tok) - dot - 1, true
}

// calcTV folds a line timestamp into the accumulator, scaling the raw
// fraction by the header decimal width first.
func (p *Parser) calcTV(acc *timeval.Time, read timeval.Time) timeval.Time {
	switch p.Hdr.DPlace {
	case 4:
		read.USec *= 100
	case 5:
		read.USec *= 10
	}

	if p.Hdr.Timestamps == 'a' {
		*acc = timeval.Time{Sec: p.Hdr.Date.Sec + read.Sec, USec: p.Hdr.Date.USec + read.USec}
	} else {
		if acc.IsZero() && !p.Hdr.Date.IsZero() {
			*acc = p.Hdr.Date // initial date/time
		}
		acc.Sec += read.Sec
		acc.USec += read.USec
	}
	// carry only when strictly above one second, like the reference tools
	if acc.USec > 1_000_000 {
		acc.USec -= 1_000_000
		acc.Sec++
	}
	return *acc
}

// parseID interprets an ASC identifier token: a trailing 'x' marks an
// extended frame.
func parseID(tok string, base int) (uint32, bool) {
	var flags uint32
	if strings.HasSuffix(tok, "x") {
		flags = can.EFFFlag
		tok = tok[:len(tok)-1]
	}
	id, err := strconv.ParseUint(tok, base, 32)
	if err != nil {
		return 0, false
	}
	return uint32(id) | flags, true
}

// evalCC matches classic data, RTR and ErrorFrame lines:
//
//	0.002367 1 390x Rx d 8 17 00 14 00 C0 00 08 00
func (p *Parser) evalCC(fields []string) *Record {
	if len(fields) < 3 {
		return nil
	}
	sec, frac, _, ok := splitStamp(fields[0])
	if !ok {
		return nil
	}
	ch, err := strconv.Atoi(fields[1])
	if err != nil {
		return nil
	}
	read := timeval.Time{Sec: sec, USec: frac}

	if strings.HasPrefix(fields[2], "ErrorFrame") {
		// no more detail than 'Error' in this format
		f, _ := can.NewErrorFrame(can.ErrBusError, nil)
		return &Record{TV: p.calcTV(&p.ccTV, read), Channel: ch, Frame: f}
	}

	if len(fields) < 5 || len(fields[3]) != 2 {
		return nil
	}
	base := 16
	if p.Hdr.Base == 'd' {
		base = 10
	}
	id, ok := parseID(fields[2], base)
	if !ok {
		return nil
	}
	dir := byte('T')
	if fields[3][0] == 'R' {
		dir = 'R'
	}

	// Lines may end in frame attributes (`Length = 233910 BitCount = 121`)
	// which the scanners below must tolerate after the payload.
	var f can.Frame
	switch fields[4] {
	case "r": // remote request, DLC column optional
		var dlc int
		if len(fields) >= 6 {
			if v, derr := strconv.Atoi(fields[5]); derr == nil {
				if v < 0 || v > can.MaxDLC {
					return nil
				}
				dlc = v
			}
		}
		f, err = can.NewCCRTR(id&^can.EFFFlag, id&can.EFFFlag != 0, uint8(dlc))
	case "d": // data frame
		if len(fields) < 6 {
			return nil
		}
		dlc, derr := strconv.Atoi(fields[5])
		if derr != nil || dlc < 0 || dlc > can.MaxDLC || len(fields) < 6+dlc {
			return nil
		}
		data := make([]byte, dlc)
		for i := 0; i < dlc; i++ {
			v, verr := strconv.ParseUint(fields[6+i], base, 16)
			if verr != nil {
				return nil
			}
			data[i] = byte(v)
		}
		// a further token that still reads as a payload byte means the
		// DLC column lied about the length
		if dlc < can.MaxDLC && len(fields) > 6+dlc {
			if _, verr := strconv.ParseUint(fields[6+dlc], base, 8); verr == nil {
				return nil
			}
		}
		f, err = can.NewCC(id&^can.EFFFlag, id&can.EFFFlag != 0, data)
	default:
		return nil
	}
	if err != nil {
		return nil
	}
	return &Record{TV: p.calcTV(&p.ccTV, read), Channel: ch, Frame: f, Dir: dir}
}

// evalFD matches CANFD-format lines, which can carry classic CAN content
// as well:
//
//	21.671796 CANFD 1 Tx 11 [symbolic] 1 0 a 16 <bytes...> 100000 214 223040 ...
func (p *Parser) evalFD(fields []string) *Record {
	if len(fields) < 12 {
		return nil
	}
	sec, frac, _, ok := splitStamp(fields[0])
	if !ok {
		return nil
	}
	ch, err := strconv.Atoi(fields[2])
	if err != nil || len(fields[3]) != 2 {
		return nil
	}
	read := timeval.Time{Sec: sec, USec: frac}
	dir := byte('T')
	if fields[3][0] == 'R' {
		dir = 'R'
	}
	id, ok := parseID(fields[4], 16)
	if !ok {
		return nil
	}

	// the id may be followed by a symbolic message name
	for _, off := range []int{5, 6} {
		if rec := p.evalFDAt(fields, off, id, ch, dir, read); rec != nil {
			return rec
		}
	}
	return nil
}

func (p *Parser) evalFDAt(fields []string, off int, id uint32, ch int, dir byte, read timeval.Time) *Record {
	// <brs> <esi> <dlc> <dlen> <data>*dlen <msgDuration> <msgLength> <flags>
	if len(fields) < off+7 {
		return nil
	}
	brs, err1 := strconv.ParseUint(fields[off], 16, 8)
	esi, err2 := strconv.ParseUint(fields[off+1], 16, 8)
	dlc, err3 := strconv.ParseUint(fields[off+2], 16, 8)
	dlen, err4 := strconv.Atoi(fields[off+3])
	if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
		return nil
	}
	if brs > 1 || esi > 1 || dlc > can.FDMaxDLC || dlen > can.FDMaxDLen {
		return nil
	}
	// don't trust ASCII content, the data length must be self-consistent
	if n, err := can.SanitizeFDLen(dlen); err != nil || n != dlen {
		return nil
	}
	if len(fields) < off+4+dlen+3 {
		return nil
	}
	data := make([]byte, dlen)
	for i := 0; i < dlen; i++ {
		tok := fields[off+4+i]
		if len(tok) != 2 {
			return nil
		}
		hi := can.Nibble(tok[0])
		lo := can.Nibble(tok[1])
		if hi > 0x0F || lo > 0x0F {
			return nil
		}
		data[i] = hi<<4 | lo
	}
	flags64, err := strconv.ParseUint(fields[off+4+dlen+2], 16, 32)
	if err != nil {
		return nil
	}
	flags := uint32(flags64)

	var f can.Frame
	ext := id&can.EFFFlag != 0
	raw := id &^ can.EFFFlag
	if flags&FlagFDF != 0 {
		var fdf uint8
		if flags&FlagBRS != 0 {
			fdf |= can.FDBRS
		}
		if flags&FlagESI != 0 {
			fdf |= can.FDESI
		}
		f, err = can.NewFD(raw, ext, fdf, data)
	} else if flags&FlagRTR != 0 {
		// classic CAN RTR carried in CANFD format: the DLC column is
		// valid, the data length is not
		f, err = can.NewCCRTR(raw, ext, uint8(dlc))
	} else {
		if dlen > can.MaxDLen {
			dlen = can.MaxDLen
		}
		f, err = can.NewCC(raw, ext, data[:dlen])
	}
	if err != nil {
		return nil
	}
	return &Record{TV: p.calcTV(&p.fdTV, read), Channel: ch, Frame: f, Dir: dir}
}
