package can

import "errors"

// Sentinel errors used for wrapping so callers can classify via errors.Is.
var (
	// ErrMalformed: textual input does not match the grammar or contains
	// non-hex characters.
	ErrMalformed = errors.New("malformed frame text")
	// ErrLengthOutOfRange: declared length exceeds the CC/FD/XL maximum or
	// does not sanitize to itself.
	ErrLengthOutOfRange = errors.New("length out of range")
	// ErrBufferTooSmall: an emitter cannot fit its output into the
	// caller-supplied buffer. Emitters never partial-write in this case.
	ErrBufferTooSmall = errors.New("buffer too small")
	// ErrInvariant: internal consistency check failed.
	ErrInvariant = errors.New("frame invariant violated")
)
