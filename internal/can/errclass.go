package can

// Error class bits in the identifier of an error message frame
// (same values as <linux/can/error.h>).
const (
	ErrTxTimeout uint32 = 0x00000001
	ErrLostArb   uint32 = 0x00000002
	ErrCrtl      uint32 = 0x00000004
	ErrProt      uint32 = 0x00000008
	ErrTrx       uint32 = 0x00000010
	ErrAck       uint32 = 0x00000020
	ErrBusOff    uint32 = 0x00000040
	ErrBusError  uint32 = 0x00000080
	ErrRestarted uint32 = 0x00000100
	ErrCnt       uint32 = 0x00000200
)

// ErrDLC is the fixed payload length of an error message frame.
const ErrDLC = 8
