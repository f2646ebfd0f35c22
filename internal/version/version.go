// Package version allocates the compact run identifiers recorded with each
// indexing pass.
//
// A version id is the number of seconds elapsed since 2000-01-01T00:00:00Z
// encoded in base 26 using the letters A-Z, most significant digit first.
// Ids therefore sort lexically in time order and are safe in filenames and
// URLs.
package version

import "time"

var epoch = time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)

// Compute returns the version id for the given instant. Instants at or
// before the epoch encode to "A".
func Compute(t time.Time) string {
	seconds := int64(t.Sub(epoch) / time.Second)
	if seconds < 0 {
		seconds = 0
	}
	return encodeBase26(seconds)
}

func encodeBase26(value int64) string {
	if value <= 0 {
		return "A"
	}
	var buf [16]byte
	i := len(buf)
	for value > 0 {
		i--
		buf[i] = byte('A' + value%26)
		value /= 26
	}
	return string(buf[i:])
}
