package binfile

import (
	"encoding/binary"
	"math"

	"golang.org/x/text/encoding/charmap"
)

// Writer builds a little-endian byte buffer. It is the counterpart of Reader
// and is used for canonical record encodings and for building test inputs.
type Writer struct {
	buf []byte
}

func NewWriter() *Writer {
	return &Writer{buf: make([]byte, 0, 64)}
}

// WriteU8 writes 1 byte.
func (w *Writer) WriteU8(v uint8) {
	w.buf = append(w.buf, v)
}

// WriteU16 writes 2 bytes little-endian.
func (w *Writer) WriteU16(v uint16) {
	w.buf = binary.LittleEndian.AppendUint16(w.buf, v)
}

// WriteU32 writes 4 bytes little-endian.
func (w *Writer) WriteU32(v uint32) {
	w.buf = binary.LittleEndian.AppendUint32(w.buf, v)
}

// WriteU64 writes 8 bytes little-endian.
func (w *Writer) WriteU64(v uint64) {
	w.buf = binary.LittleEndian.AppendUint64(w.buf, v)
}

// WriteFloat64 writes the raw IEEE-754 bits of v.
func (w *Writer) WriteFloat64(v float64) {
	w.WriteU64(math.Float64bits(v))
}

// WriteBool writes 1 for true and 0 for false.
func (w *Writer) WriteBool(v bool) {
	if v {
		w.WriteU8(1)
		return
	}
	w.WriteU8(0)
}

// WriteString writes a u16 length prefix followed by the Latin-1 encoding of s.
func (w *Writer) WriteString(s string) {
	encoded, err := charmap.ISO8859_1.NewEncoder().Bytes([]byte(s))
	if err != nil {
		// Fallback: write raw bytes (works for pure ASCII)
		encoded = []byte(s)
	}
	w.WriteU16(uint16(len(encoded)))
	w.buf = append(w.buf, encoded...)
}

// WriteBytes writes raw bytes.
func (w *Writer) WriteBytes(b []byte) {
	w.buf = append(w.buf, b...)
}

// Bytes returns the buffer written so far.
func (w *Writer) Bytes() []byte {
	return w.buf
}

// Len returns the number of bytes written.
func (w *Writer) Len() int {
	return len(w.buf)
}
