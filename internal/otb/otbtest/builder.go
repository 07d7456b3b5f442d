// Package otbtest builds in-memory node-tree images for tests.
package otbtest

import (
	"github.com/l1jgo/itemdb/internal/binfile"
	"github.com/l1jgo/itemdb/internal/otb"
)

// Node describes one node to encode. Data starts with the type byte.
type Node struct {
	Data     []byte
	Children []Node
}

// Build encodes identifier followed by root, escaping control bytes.
func Build(identifier string, root Node) []byte {
	w := binfile.NewWriter()
	w.WriteBytes([]byte(identifier))
	writeNode(w, root)
	return w.Bytes()
}

func writeNode(w *binfile.Writer, n Node) {
	w.WriteU8(otb.NodeStart)
	for _, b := range n.Data {
		if b == otb.NodeStart || b == otb.NodeEnd || b == otb.NodeEscape {
			w.WriteU8(otb.NodeEscape)
		}
		w.WriteU8(b)
	}
	for _, c := range n.Children {
		writeNode(w, c)
	}
	w.WriteU8(otb.NodeEnd)
}

// Props accumulates a node's property bytes.
type Props struct {
	w *binfile.Writer
}

func NewProps() *Props {
	return &Props{w: binfile.NewWriter()}
}

func (p *Props) U8(v uint8) *Props {
	p.w.WriteU8(v)
	return p
}

func (p *Props) U16(v uint16) *Props {
	p.w.WriteU16(v)
	return p
}

func (p *Props) U32(v uint32) *Props {
	p.w.WriteU32(v)
	return p
}

func (p *Props) Raw(b []byte) *Props {
	p.w.WriteBytes(b)
	return p
}

// Attr writes tag, a u16 length of len(payload), then payload.
func (p *Props) Attr(tag uint8, payload []byte) *Props {
	return p.AttrLen(tag, uint16(len(payload)), payload)
}

// AttrLen writes tag and an explicit declared length, for malformed inputs.
func (p *Props) AttrLen(tag uint8, declared uint16, payload []byte) *Props {
	p.w.WriteU8(tag)
	p.w.WriteU16(declared)
	p.w.WriteBytes(payload)
	return p
}

func (p *Props) Bytes() []byte {
	return p.w.Bytes()
}

// U16 returns the little-endian encoding of v.
func U16(v uint16) []byte {
	w := binfile.NewWriter()
	w.WriteU16(v)
	return w.Bytes()
}

// U32 returns the little-endian encoding of v.
func U32(v uint32) []byte {
	w := binfile.NewWriter()
	w.WriteU32(v)
	return w.Bytes()
}

// F64 returns the raw little-endian bits of v.
func F64(v float64) []byte {
	w := binfile.NewWriter()
	w.WriteFloat64(v)
	return w.Bytes()
}
