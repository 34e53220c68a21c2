package pac

import (
	"bytes"
	"encoding/binary"
)

// Hard cap on how many code units a single decode will look at, no matter
// how long the field is
const MaxDecodedUnits = 257

// Names in the container are stored as arrays of 16 bit units, of which only
// the low byte means anything. This strips the high byte off each unit until
// it hits a unit that is exactly zero (or the cap), and returns the result as
// a NUL-terminated byte string. A unit like 0x0100 is NOT a terminator.
// The returned slice is always freshly allocated.
func DecodeObfuscatedCString(units []uint16) []byte {
	if len(units) == 0 || units[0] == 0 {
		return []byte{0}
	}
	limit := len(units)
	if limit > MaxDecodedUnits {
		limit = MaxDecodedUnits
	}
	result := make([]byte, 0, limit+1)
	for _, u := range units[:limit] {
		if u == 0 {
			break
		}
		result = append(result, byte(u&0xFF))
	}
	return append(result, 0)
}

// Same as DecodeObfuscatedCString, but as a regular string (the C string view,
// so it stops at the first NUL byte)
func DecodeObfuscated(units []uint16) string {
	raw := DecodeObfuscatedCString(units)
	return string(raw[:bytes.IndexByte(raw, 0)])
}

// Pull count little-endian 16 bit units out of data starting at offset.
// Stops early if data runs out.
func UnitsAt(data []byte, offset int, count int) []uint16 {
	if offset < 0 || offset >= len(data) {
		return nil
	}
	avail := (len(data) - offset) / 2
	if count > avail {
		count = avail
	}
	result := make([]uint16, count)
	for i := range result {
		result[i] = binary.LittleEndian.Uint16(data[offset+i*2:])
	}
	return result
}

// Decode the obfuscated string field of count units at offset
func DecodeFieldAt(data []byte, offset int, count int) string {
	return DecodeObfuscated(UnitsAt(data, offset, count))
}
