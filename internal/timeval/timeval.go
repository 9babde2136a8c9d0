// Package timeval provides seconds+microseconds timestamps in the shape
// CAN log files use, with normalized arithmetic.
package timeval

import "time"

// Time is a split seconds/microseconds time point. A normalized value has
// 0 <= USec < 1e6.
type Time struct {
	Sec  int64
	USec int64
}

const usecPerSec = 1_000_000

// Now returns the current wall clock as a normalized Time.
func Now() Time {
	t := time.Now()
	return Time{Sec: t.Unix(), USec: int64(t.Nanosecond() / 1000)}
}

// FromTime converts a time.Time.
func FromTime(t time.Time) Time {
	return Time{Sec: t.Unix(), USec: int64(t.Nanosecond() / 1000)}
}

// IsZero reports whether both fields are zero.
func (t Time) IsZero() bool { return t.Sec == 0 && t.USec == 0 }

// Normalize carries microsecond overflow/underflow into the seconds field
// so that the sub-second part is non-negative and below one second.
func (t Time) Normalize() Time {
	t.Sec += t.USec / usecPerSec
	t.USec %= usecPerSec
	if t.USec < 0 {
		t.Sec--
		t.USec += usecPerSec
	}
	return t
}

// Add returns the normalized sum of two time points.
func (t Time) Add(d Time) Time {
	return Time{Sec: t.Sec + d.Sec, USec: t.USec + d.USec}.Normalize()
}

// Sub returns the normalized difference t - d.
func (t Time) Sub(d Time) Time {
	return Time{Sec: t.Sec - d.Sec, USec: t.USec - d.USec}.Normalize()
}

// DiffMS returns a - b in milliseconds.
func DiffMS(a, b Time) int64 {
	return (a.Sec-b.Sec)*1000 + (a.USec-b.USec)/1000
}

// AddMS returns t shifted by ms milliseconds, normalized.
func AddMS(t Time, ms int64) Time {
	return Time{Sec: t.Sec, USec: t.USec + ms*1000}.Normalize()
}
