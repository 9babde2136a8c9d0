package can

import "bytes"

// Kind discriminates the three CAN frame generations.
type Kind uint8

const (
	KindNone Kind = iota
	KindCC        // Classical CAN (2.0B), up to 8 data bytes
	KindFD        // CAN FD, up to 64 data bytes
	KindXL        // CAN XL, up to 2048 data bytes
)

// SocketCAN flag bits for the identifier (same values as <linux/can.h>).
const (
	EFFFlag uint32 = 0x80000000
	RTRFlag uint32 = 0x40000000
	ErrFlag uint32 = 0x20000000
	SFFMask uint32 = 0x000007FF
	EFFMask uint32 = 0x1FFFFFFF
	ErrMask uint32 = EFFMask
)

// Payload and DLC limits per generation.
const (
	MaxDLen   = 8
	MaxDLC    = 8
	MaxRawDLC = 15
	FDMaxDLen = 64
	FDMaxDLC  = 15
	XLMinDLen = 1
	XLMaxDLen = 2048

	XLPrioMask uint16 = 0x07FF
)

// CAN FD frame flags (canfd_frame.flags).
const (
	FDBRS uint8 = 0x01 // bit rate switch
	FDESI uint8 = 0x02 // error state indicator
	FDFDF uint8 = 0x04 // FD format marker
)

// CAN XL frame flags.
const (
	XLSEC uint8 = 0x01 // simple extended content
	XLRRS uint8 = 0x02 // remote request substitution
	XLXLF uint8 = 0x80 // mandatory XL frame flag
)

// Transport MTU sizes as returned by the compact parser
// (same values as the SocketCAN frame struct sizes).
const (
	MTUNone = 0
	CCMTU   = 16
	FDMTU   = 72
	XLMTU   = 2060
)

// Frame is the unified in-memory representation of a CC, FD or XL frame.
// Kind selects which field groups are meaningful. For CC and FD the
// identifier carries EFF/RTR/ERR flags in its upper bits like SocketCAN.
// Data is owned by the frame; constructors and parsers always copy.
type Frame struct {
	Kind Kind

	// CC and FD fields.
	ID      uint32
	Len     uint16 // payload byte count; CC 0..8, FD sanitized set, XL 1..2048
	Len8DLC uint8  // raw CC DLC 9..15, meaningful only when Len == 8
	FDFlags uint8  // BRS/ESI/FDF for KindFD

	// XL header fields.
	Prio    uint16 // 11-bit priority
	VCID    uint8
	SDT     uint8  // service data type
	AF      uint32 // acceptance field
	XLFlags uint8  // XLF always set, plus optional SEC/RRS

	Data []byte
}

// IsExtended reports whether a CC/FD frame uses the 29-bit identifier.
func (f *Frame) IsExtended() bool { return f.ID&EFFFlag != 0 }

// IsRTR reports whether the frame is a remote transmission request.
func (f *Frame) IsRTR() bool { return f.Kind == KindCC && f.ID&RTRFlag != 0 }

// IsError reports whether the frame is an error message frame.
func (f *Frame) IsError() bool { return f.Kind == KindCC && f.ID&ErrFlag != 0 }

// RawDLC returns the on-wire DLC of a CC frame: the len8 DLC when one is
// recorded, the payload length otherwise.
func (f *Frame) RawDLC() uint8 {
	if f.Len == MaxDLen && f.Len8DLC > MaxDLen && f.Len8DLC <= MaxRawDLC {
		return f.Len8DLC
	}
	return uint8(f.Len)
}

// Equal reports structural equality.
func (f *Frame) Equal(g *Frame) bool {
	if f.Kind != g.Kind || f.Len != g.Len {
		return false
	}
	if !bytes.Equal(f.Data, g.Data) {
		return false
	}
	switch f.Kind {
	case KindCC:
		return f.ID == g.ID && f.Len8DLC == g.Len8DLC
	case KindFD:
		return f.ID == g.ID && f.FDFlags == g.FDFlags
	case KindXL:
		return f.Prio == g.Prio && f.VCID == g.VCID && f.SDT == g.SDT &&
			f.AF == g.AF && f.XLFlags == g.XLFlags
	}
	return true
}

// NewCC builds a classical data frame. The extended flag is forced on when
// the identifier does not fit into 11 bits.
func NewCC(id uint32, extended bool, data []byte) (Frame, error) {
	if len(data) > MaxDLen {
		return Frame{}, ErrLengthOutOfRange
	}
	canID := id & EFFMask
	if extended || canID > SFFMask {
		canID |= EFFFlag
	}
	return Frame{
		Kind: KindCC,
		ID:   canID,
		Len:  uint16(len(data)),
		Data: append([]byte(nil), data...),
	}, nil
}

// NewCCLen8DLC builds a classical 8-byte data frame carrying a raw DLC in
// the 9..15 range (bus timing instrumentation).
func NewCCLen8DLC(id uint32, extended bool, data []byte, rawDLC uint8) (Frame, error) {
	if len(data) != MaxDLen || rawDLC <= MaxDLen || rawDLC > MaxRawDLC {
		return Frame{}, ErrInvariant
	}
	f, err := NewCC(id, extended, data)
	if err != nil {
		return Frame{}, err
	}
	f.Len8DLC = rawDLC
	return f, nil
}

// NewCCRTR builds a remote transmission request. dlc may be 0..15; values
// above 8 are recorded as len8 DLC with payload length 8. RTR frames never
// carry data bytes.
func NewCCRTR(id uint32, extended bool, dlc uint8) (Frame, error) {
	if dlc > MaxRawDLC {
		return Frame{}, ErrLengthOutOfRange
	}
	canID := id & EFFMask
	if extended || canID > SFFMask {
		canID |= EFFFlag
	}
	f := Frame{Kind: KindCC, ID: canID | RTRFlag}
	if dlc > MaxDLen {
		f.Len = MaxDLen
		f.Len8DLC = dlc
	} else {
		f.Len = uint16(dlc)
	}
	return f, nil
}

// NewErrorFrame builds a CC error message frame for the given class mask.
// The payload is padded to the fixed 8-byte error DLC.
func NewErrorFrame(class uint32, data []byte) (Frame, error) {
	if len(data) > MaxDLen {
		return Frame{}, ErrLengthOutOfRange
	}
	buf := make([]byte, MaxDLen)
	copy(buf, data)
	return Frame{
		Kind: KindCC,
		ID:   (class & ErrMask) | ErrFlag,
		Len:  MaxDLen,
		Data: buf,
	}, nil
}

// NewFD builds a CAN FD frame. The payload length must already be a valid
// FD length (it must sanitize to itself); the FDF flag is forced on.
func NewFD(id uint32, extended bool, flags uint8, data []byte) (Frame, error) {
	n, err := SanitizeFDLen(len(data))
	if err != nil || n != len(data) {
		return Frame{}, ErrLengthOutOfRange
	}
	canID := id & EFFMask
	if extended || canID > SFFMask {
		canID |= EFFFlag
	}
	return Frame{
		Kind:    KindFD,
		ID:      canID,
		Len:     uint16(len(data)),
		FDFlags: flags | FDFDF,
		Data:    append([]byte(nil), data...),
	}, nil
}

// NewXL builds a CAN XL frame. The XLF flag is forced on.
func NewXL(prio uint16, vcid, sdt uint8, af uint32, flags uint8, data []byte) (Frame, error) {
	if prio > XLPrioMask {
		return Frame{}, ErrInvariant
	}
	if len(data) < XLMinDLen || len(data) > XLMaxDLen {
		return Frame{}, ErrLengthOutOfRange
	}
	return Frame{
		Kind:    KindXL,
		Prio:    prio,
		VCID:    vcid,
		SDT:     sdt,
		AF:      af,
		XLFlags: flags | XLXLF,
		Len:     uint16(len(data)),
		Data:    append([]byte(nil), data...),
	}, nil
}
