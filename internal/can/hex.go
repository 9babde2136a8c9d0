package can

const hexUpper = "0123456789ABCDEF"

// InvalidNibble is returned by Nibble for characters outside [0-9a-fA-F].
const InvalidNibble byte = 0x10

// Nibble returns the value of an ASCII hex digit, or InvalidNibble.
func Nibble(c byte) byte {
	switch {
	case c >= '0' && c <= '9':
		return c - '0'
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10
	}
	return InvalidNibble
}

// PutHexByte writes the two uppercase hex digits of b into buf[0:2].
func PutHexByte(buf []byte, b byte) {
	buf[0] = hexUpper[b>>4]
	buf[1] = hexUpper[b&0x0F]
}

// PutID writes id as fixed-width uppercase hex covering all of buf,
// least significant nibble last. Used with 3 (SFF) or 8 (EFF) digit slots.
func PutID(buf []byte, id uint32) {
	for i := len(buf) - 1; i >= 0; i-- {
		buf[i] = hexUpper[id&0x0F]
		id >>= 4
	}
}

// HexToBytes decodes the hex string src into dst and zero-fills the rest
// of dst. It rejects empty or odd-length input, input longer than dst can
// hold, and non-hex characters.
func HexToBytes(src string, dst []byte) (int, error) {
	n := len(src)
	if n == 0 || n%2 != 0 || n > len(dst)*2 {
		return 0, ErrMalformed
	}
	for i := range dst {
		dst[i] = 0
	}
	for i := 0; i < n/2; i++ {
		hi := Nibble(src[2*i])
		lo := Nibble(src[2*i+1])
		if hi > 0x0F || lo > 0x0F {
			return 0, ErrMalformed
		}
		dst[i] = hi<<4 | lo
	}
	return n / 2, nil
}
