package can

// DLC to payload length conversion tables, process-wide constants.

var dlc2len = [16]uint8{0, 1, 2, 3, 4, 5, 6, 7, 8, 12, 16, 20, 24, 32, 48, 64}

var len2dlc = [65]uint8{
	0, 1, 2, 3, 4, 5, 6, 7, 8, // 0 - 8
	9, 9, 9, 9, // 9 - 12
	10, 10, 10, 10, // 13 - 16
	11, 11, 11, 11, // 17 - 20
	12, 12, 12, 12, // 21 - 24
	13, 13, 13, 13, 13, 13, 13, 13, // 25 - 32
	14, 14, 14, 14, 14, 14, 14, 14, // 33 - 40
	14, 14, 14, 14, 14, 14, 14, 14, // 41 - 48
	15, 15, 15, 15, 15, 15, 15, 15, // 49 - 56
	15, 15, 15, 15, 15, 15, 15, 15, // 57 - 64
}

// DLC2Len returns the payload length encoded by a raw 4-bit DLC.
func DLC2Len(dlc uint8) uint8 { return dlc2len[dlc&0x0F] }

// Len2DLC maps a payload length to the smallest DLC whose decoded length
// covers it. Lengths above 64 are out of range.
func Len2DLC(n int) (uint8, error) {
	if n < 0 || n > FDMaxDLen {
		return 0, ErrLengthOutOfRange
	}
	return len2dlc[n], nil
}

// SanitizeFDLen rounds n up to the next valid CAN FD payload length.
// Applying it twice gives the same result as applying it once.
func SanitizeFDLen(n int) (int, error) {
	dlc, err := Len2DLC(n)
	if err != nil {
		return 0, err
	}
	return int(DLC2Len(dlc)), nil
}
