package data

import (
	"math"
	"strings"
)

// xmlParseInt reads an optionally signed decimal or 0x-prefixed hex number
// from the start of s, ignoring anything after the digits. Values outside
// [lo, hi] are clamped; text without digits is 0.
func xmlParseInt(s string, lo, hi int64) int64 {
	s = strings.TrimSpace(s)
	neg := false
	if s != "" && (s[0] == '-' || s[0] == '+') {
		neg = s[0] == '-'
		s = s[1:]
	}
	base := uint64(10)
	if len(s) > 2 && s[0] == '0' && (s[1] == 'x' || s[1] == 'X') {
		base = 16
		s = s[2:]
	}

	var v uint64
	overflow := false
	for i := 0; i < len(s); i++ {
		d, ok := digitValue(s[i], base)
		if !ok {
			break
		}
		if v > (math.MaxUint64-d)/base {
			overflow = true
			break
		}
		v = v*base + d
	}

	if neg {
		if lo >= 0 {
			return 0
		}
		if overflow || v > uint64(-lo) {
			return lo
		}
		return -int64(v)
	}
	if overflow || v > uint64(hi) {
		return hi
	}
	return int64(v)
}

func digitValue(c byte, base uint64) (uint64, bool) {
	var d uint64
	switch {
	case c >= '0' && c <= '9':
		d = uint64(c - '0')
	case c >= 'a' && c <= 'f':
		d = uint64(c-'a') + 10
	case c >= 'A' && c <= 'F':
		d = uint64(c-'A') + 10
	default:
		return 0, false
	}
	return d, d < base
}

func xmlInt(s string) int64 {
	return xmlParseInt(s, math.MinInt32, math.MaxInt32)
}

func xmlUint32(s string) uint32 {
	return uint32(xmlParseInt(s, 0, math.MaxUint32))
}

func xmlUint16(s string) uint16 {
	return uint16(xmlParseInt(s, 0, math.MaxUint16))
}

func xmlUint16OrZero(s string, ok bool) uint16 {
	if !ok {
		return 0
	}
	return xmlUint16(s)
}

// xmlBool is true when the value starts with 1, t, T, y or Y.
func xmlBool(s string) bool {
	s = strings.TrimSpace(s)
	if s == "" {
		return false
	}
	switch s[0] {
	case '1', 't', 'T', 'y', 'Y':
		return true
	}
	return false
}
