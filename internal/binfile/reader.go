package binfile

import (
	"encoding/binary"
	"math"

	"golang.org/x/text/encoding/charmap"
)

// Reader is a little-endian cursor over a byte window.
// Every read reports success; a failed read leaves the cursor where it was.
type Reader struct {
	data []byte
	off  int
}

func NewReader(data []byte) *Reader {
	return &Reader{data: data}
}

// ReadU8 reads 1 unsigned byte.
func (r *Reader) ReadU8() (uint8, bool) {
	if r.off >= len(r.data) {
		return 0, false
	}
	v := r.data[r.off]
	r.off++
	return v, true
}

// ReadU16 reads 2 bytes as little-endian uint16.
func (r *Reader) ReadU16() (uint16, bool) {
	if r.Remaining() < 2 {
		return 0, false
	}
	v := binary.LittleEndian.Uint16(r.data[r.off:])
	r.off += 2
	return v, true
}

// ReadU32 reads 4 bytes as little-endian uint32.
func (r *Reader) ReadU32() (uint32, bool) {
	if r.Remaining() < 4 {
		return 0, false
	}
	v := binary.LittleEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, true
}

// ReadU64 reads 8 bytes as little-endian uint64.
func (r *Reader) ReadU64() (uint64, bool) {
	if r.Remaining() < 8 {
		return 0, false
	}
	v := binary.LittleEndian.Uint64(r.data[r.off:])
	r.off += 8
	return v, true
}

// ReadFloat64 reads 8 raw bytes and reinterprets them as an IEEE-754 double.
func (r *Reader) ReadFloat64() (float64, bool) {
	bits, ok := r.ReadU64()
	if !ok {
		return 0, false
	}
	return math.Float64frombits(bits), true
}

// ReadBytes copies n raw bytes. Nothing is consumed when fewer than n remain.
func (r *Reader) ReadBytes(n int) ([]byte, bool) {
	if n < 0 || r.Remaining() < n {
		return nil, false
	}
	b := make([]byte, n)
	copy(b, r.data[r.off:r.off+n])
	r.off += n
	return b, true
}

// Skip advances n bytes, failing without moving if the window is too short.
func (r *Reader) Skip(n int) bool {
	if n < 0 || r.Remaining() < n {
		return false
	}
	r.off += n
	return true
}

// ReadString reads a u16 length-prefixed Latin-1 string and returns UTF-8.
func (r *Reader) ReadString() (string, bool) {
	start := r.off
	n, ok := r.ReadU16()
	if !ok {
		return "", false
	}
	raw, ok := r.ReadBytes(int(n))
	if !ok {
		r.off = start
		return "", false
	}
	return Latin1ToUTF8(raw), true
}

// Remaining returns the number of unread bytes.
func (r *Reader) Remaining() int {
	return len(r.data) - r.off
}

// Offset returns the cursor position inside the window.
func (r *Reader) Offset() int {
	return r.off
}

// Latin1ToUTF8 converts ISO-8859-1 bytes to a UTF-8 string, stopping at the
// first NUL so fixed-size padded buffers decode to their text.
func Latin1ToUTF8(raw []byte) string {
	for i, b := range raw {
		if b == 0 {
			raw = raw[:i]
			break
		}
	}
	if len(raw) == 0 {
		return ""
	}
	// Fast path: if all bytes are ASCII, no conversion needed
	allASCII := true
	for _, b := range raw {
		if b >= 0x80 {
			allASCII = false
			break
		}
	}
	if allASCII {
		return string(raw)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return string(raw) // fallback to raw bytes
	}
	return string(decoded)
}
