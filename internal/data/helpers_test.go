package data

import (
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/l1jgo/itemdb/internal/binfile"
	"github.com/l1jgo/itemdb/internal/otb/otbtest"
)

func newTestLoader(t *testing.T, opts LoadOptions) *Loader {
	t.Helper()
	return NewLoader(NewRegistry(), nil, opts, zaptest.NewLogger(t))
}

// versionPayload is the 140-byte root version attribute.
func versionPayload(major, minor, build uint32, desc string) []byte {
	w := binfile.NewWriter()
	w.WriteU32(major)
	w.WriteU32(minor)
	w.WriteU32(build)
	d := make([]byte, 128)
	copy(d, desc)
	w.WriteBytes(d)
	return w.Bytes()
}

func otbRoot(payload []byte, items ...otbtest.Node) otbtest.Node {
	return otbtest.Node{
		Data:     otbtest.NewProps().U8(0).U32(0).Attr(rootAttrVersion, payload).Bytes(),
		Children: items,
	}
}

func otbImage(major uint32, items ...otbtest.Node) []byte {
	return otbtest.Build("OTBI", otbRoot(versionPayload(major, 57, 62, "OTB 3.57.62-10.98"), items...))
}

// otbItem builds an item node with the server id and client id attributes
// followed by any extra property bytes.
func otbItem(group ItemGroup, flags uint32, serverID, clientID uint16, extra ...byte) otbtest.Node {
	p := otbtest.NewProps().
		U8(uint8(group)).
		U32(flags).
		Attr(attrServerID, otbtest.U16(serverID)).
		Attr(attrClientID, otbtest.U16(clientID)).
		Raw(extra)
	return otbtest.Node{Data: p.Bytes()}
}

func mustDecodeOTB(t *testing.T, l *Loader, raw []byte) Warnings {
	t.Helper()
	warns, err := l.DecodeOTB(raw)
	require.NoError(t, err)
	return warns
}
