package data

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/l1jgo/itemdb/internal/otb"
	"github.com/l1jgo/itemdb/internal/otb/otbtest"
)

func TestDecodeOTBReadsHeaderAndItems(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	top := otbtest.NewProps().Attr(attrTopOrder, []byte{1}).Attr(attrClassification, []byte{3}).Bytes()
	raw := otbImage(3,
		otbItem(GroupGround, flagMoveable|flagPickupable|flagAlwaysOnTop, 100, 200, top...),
		otbItem(GroupContainer, 0, 101, 201),
	)

	warns := mustDecodeOTB(t, l, raw)
	assert.Empty(t, warns)

	reg := l.Registry()
	assert.Equal(t, Version{Major: 3, Minor: 57, Build: 62, Description: "OTB 3.57.62-10.98"}, reg.Version())
	assert.Equal(t, 2, reg.Count())
	assert.Equal(t, uint16(101), reg.MaxID())

	ground, ok := reg.Lookup(100)
	require.True(t, ok)
	assert.Equal(t, uint16(200), ground.ClientID)
	assert.Equal(t, GroupGround, ground.Group)
	assert.True(t, ground.IsGroundTile())
	assert.True(t, ground.Moveable)
	assert.True(t, ground.Pickupable)
	assert.True(t, ground.AlwaysOnBottom)
	assert.Equal(t, uint8(1), ground.AlwaysOnTopOrder)
	assert.Equal(t, uint8(3), ground.Classification)

	box := reg.Get(101)
	assert.True(t, box.IsContainer())
	assert.False(t, box.Moveable, "flags word without the moveable bit clears the default")
}

func TestDecodeOTBDuplicateKeepsLater(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	raw := otbImage(3,
		otbItem(GroupNone, 0, 500, 1000),
		otbItem(GroupNone, 0, 500, 1001),
	)

	warns := mustDecodeOTB(t, l, raw)
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "duplicate item id 500")
	assert.Equal(t, 1, l.Registry().Count())
	assert.Equal(t, uint16(1001), l.Registry().Get(500).ClientID)
}

func TestDecodeOTBSkipsDeprecated(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	raw := otbImage(3,
		otbItem(GroupDeprecated, 0, 10, 10),
		otbItem(GroupDeprecated, 0, 11, 11),
	)

	warns := mustDecodeOTB(t, l, raw)
	assert.Empty(t, warns)
	assert.Equal(t, 0, l.Registry().Count())
}

func TestDecodeOTBFloorChange(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	raw := otbImage(3, otbItem(GroupGround, flagFloorChangeDown, 1, 1))
	mustDecodeOTB(t, l, raw)

	it := l.Registry().Get(1)
	assert.True(t, it.FloorChangeDown)
	assert.True(t, it.FloorChange)
	assert.True(t, it.IsFloorChange())
	assert.False(t, it.FloorChangeNorth)
}

func TestDecodeOTBClientFlags(t *testing.T) {
	raw := otbImage(3, otbItem(GroupNone, flagClientCharges|flagIgnoreLook|flagHookEast, 1, 1))

	l := newTestLoader(t, LoadOptions{})
	mustDecodeOTB(t, l, raw)
	it := l.Registry().Get(1)
	assert.True(t, it.ClientChargeable)
	assert.True(t, it.IgnoreLook)
	assert.True(t, it.HookEast)

	// Version 2 does not know the client charge bits.
	l = newTestLoader(t, LoadOptions{})
	mustDecodeOTB(t, l, otbImage(2, otbItem(GroupNone, flagClientCharges|flagIgnoreLook, 1, 1)))
	it = l.Registry().Get(1)
	assert.False(t, it.ClientChargeable)
	assert.False(t, it.IgnoreLook)
}

func TestDecodeOTBServerIDLengthIsFatal(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	item := otbtest.Node{Data: otbtest.NewProps().
		U8(uint8(GroupNone)).
		U32(0).
		AttrLen(attrServerID, 3, []byte{1, 2, 3}).
		Bytes()}

	_, err := l.DecodeOTB(otbImage(3, item))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrServerIDLength))
}

func TestDecodeOTBClientIDLengthIsFatal(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	item := otbtest.Node{Data: otbtest.NewProps().
		U8(uint8(GroupNone)).
		U32(0).
		Attr(attrServerID, otbtest.U16(7)).
		AttrLen(attrClientID, 1, []byte{9}).
		Bytes()}

	_, err := l.DecodeOTB(otbImage(3, item))
	assert.ErrorIs(t, err, ErrClientIDLength)
}

func TestDecodeOTBVersionHeaderLength(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	payload := versionPayload(3, 57, 62, "")[:139]
	raw := otbtest.Build("OTBI", otbRoot(payload))

	_, err := l.DecodeOTB(raw)
	assert.ErrorIs(t, err, ErrVersionHeader)
	assert.Equal(t, 0, l.Registry().Count())
}

func TestDecodeOTBMissingVersionAttribute(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	root := otbtest.Node{Data: otbtest.NewProps().U8(0).U32(0).Attr(0x02, []byte{1, 2}).Bytes()}

	_, err := l.DecodeOTB(otbtest.Build("OTBI", root))
	assert.ErrorIs(t, err, ErrVersionHeader)
}

func TestDecodeOTBVersionChecks(t *testing.T) {
	t.Run("unknown major", func(t *testing.T) {
		l := newTestLoader(t, LoadOptions{})
		_, err := l.DecodeOTB(otbImage(9))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
	})

	t.Run("signature mismatch", func(t *testing.T) {
		l := newTestLoader(t, LoadOptions{CheckSignatures: true, ExpectedOTBVersion: 3})
		_, err := l.DecodeOTB(otbImage(2, otbItem(GroupNone, 0, 1, 1)))
		assert.ErrorIs(t, err, ErrUnsupportedVersion)
		assert.Equal(t, 0, l.Registry().Count())
	})

	t.Run("signature match", func(t *testing.T) {
		l := newTestLoader(t, LoadOptions{CheckSignatures: true, ExpectedOTBVersion: 3})
		mustDecodeOTB(t, l, otbImage(3, otbItem(GroupNone, 0, 1, 1)))
		assert.Equal(t, 1, l.Registry().Count())
	})
}

func TestDecodeOTBBadIdentifier(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	raw := otbtest.Build("XXXX", otbRoot(versionPayload(3, 0, 0, "")))

	_, err := l.DecodeOTB(raw)
	assert.ErrorIs(t, err, otb.ErrBadIdentifier)
}

func TestDecodeOTBLegacyAttributes(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	extra := otbtest.NewProps().
		Attr(attrName, []byte("Sword")).
		Attr(attrDescription, []byte("sharp")).
		Attr(attrWeight, otbtest.F64(35.5)).
		Attr(attrMaxItems, otbtest.U16(20)).
		Attr(attrRotateTo, otbtest.U16(3)).
		Attr(attrWriteable, append(otbtest.U16(0), otbtest.U16(255)...)).
		Bytes()
	raw := otbImage(1, otbItem(GroupWeapon, 0, 2376, 3264, extra...))

	warns := mustDecodeOTB(t, l, raw)
	assert.Empty(t, warns)

	it := l.Registry().Get(2376)
	assert.Equal(t, GroupWeapon, it.Group)
	assert.Equal(t, "Sword", it.Name)
	assert.Equal(t, "sharp", it.Description)
	assert.Equal(t, 35.5, it.Weight)
	assert.Equal(t, uint16(20), it.Volume)
	assert.Equal(t, uint16(3), it.RotateTo)
	assert.Equal(t, uint16(255), it.MaxTextLen)
}

func TestDecodeOTBLatin1Name(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	extra := otbtest.NewProps().Attr(attrName, []byte{'M', 0xFC, 'n', 'z', 'e'}).Bytes()
	mustDecodeOTB(t, l, otbImage(1, otbItem(GroupNone, 0, 1, 1, extra...)))

	assert.Equal(t, "Münze", l.Registry().Get(1).Name)
}

func TestDecodeOTBLaterVersionsIgnoreLegacyAttributes(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	extra := otbtest.NewProps().Attr(attrName, []byte("Sword")).Bytes()
	warns := mustDecodeOTB(t, l, otbImage(3, otbItem(GroupNone, 0, 1, 1, extra...)))

	assert.Empty(t, warns)
	assert.Empty(t, l.Registry().Get(1).Name)
}

func TestDecodeOTBSkipsUnknownAndMisizedAttributes(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	item := otbtest.Node{Data: otbtest.NewProps().
		U8(uint8(GroupNone)).
		U32(0).
		Attr(attrServerID, otbtest.U16(42)).
		Attr(0x50, []byte{1, 2, 3}).
		Attr(attrSpeed, []byte{1, 2, 3, 4}).
		Attr(attrLight, []byte{1, 2}).
		Attr(attrClientID, otbtest.U16(4242)).
		Bytes()}

	warns := mustDecodeOTB(t, l, otbImage(3, item))
	require.Len(t, warns, 2)
	assert.Contains(t, warns[0], "speed")
	assert.Contains(t, warns[1], "light")
	assert.Equal(t, uint16(4242), l.Registry().Get(42).ClientID)
}

func TestDecodeOTBAttributeOverrun(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	item := otbtest.Node{Data: otbtest.NewProps().
		U8(uint8(GroupNone)).
		U32(0).
		Attr(attrServerID, otbtest.U16(42)).
		AttrLen(0x50, 100, []byte{1, 2}).
		Bytes()}

	warns := mustDecodeOTB(t, l, otbImage(3, item))
	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "declares 100 bytes")
	assert.True(t, l.Registry().Exists(42))
}

func TestDecodeOTBUnknownGroup(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	warns := mustDecodeOTB(t, l, otbImage(3, otbItem(GroupWeapon, 0, 5, 5)))

	require.Len(t, warns, 1)
	assert.Contains(t, warns[0], "unknown item group declaration 3")
	assert.Equal(t, GroupNone, l.Registry().Get(5).Group)
}

func TestDecodeOTBGroupDefaults(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	mustDecodeOTB(t, l, otbImage(2,
		otbItem(GroupRune, 0, 1, 1),
		otbItem(GroupDoor, 0, 2, 2),
		otbItem(GroupTeleport, 0, 3, 3),
		otbItem(GroupMagicField, 0, 4, 4),
	))

	reg := l.Registry()
	assert.True(t, reg.Get(1).ClientChargeable)
	assert.True(t, reg.Get(2).IsDoor())
	assert.True(t, reg.Get(3).IsTeleport())
	assert.Equal(t, KindMagicField, reg.Get(4).Kind)
}

func TestDecodeOTBTruncatedTree(t *testing.T) {
	l := newTestLoader(t, LoadOptions{})
	raw := otbImage(3,
		otbItem(GroupNone, 0, 1, 1),
		otbItem(GroupNone, 0, 2, 2),
	)
	raw = raw[:len(raw)-2] // drop the closing bytes of the last item and the root

	warns := mustDecodeOTB(t, l, raw)
	assert.Empty(t, warns)
	assert.True(t, l.Registry().Exists(1))
	assert.False(t, l.Registry().Exists(2))
}

func TestDecodeOTBResolvesSprites(t *testing.T) {
	sprites := SpriteFunc(func(clientID uint16) (Sprite, bool) {
		if clientID == 200 {
			return "sprite-200", true
		}
		return nil, false
	})
	l := NewLoader(NewRegistry(), sprites, LoadOptions{}, nil)
	mustDecodeOTB(t, l, otbImage(3,
		otbItem(GroupNone, 0, 1, 200),
		otbItem(GroupNone, 0, 2, 201),
	))

	assert.Equal(t, Sprite("sprite-200"), l.Registry().Get(1).Sprite)
	assert.Nil(t, l.Registry().Get(2).Sprite)
}

func TestDecodeOTBIsDeterministic(t *testing.T) {
	raw := otbImage(3,
		otbItem(GroupGround, flagFloorChangeDown|flagMoveable, 100, 200),
		otbItem(GroupContainer, flagPickupable, 101, 201),
		otbItem(GroupNone, flagStackable, 500, 300),
	)

	a := newTestLoader(t, LoadOptions{})
	b := newTestLoader(t, LoadOptions{})
	mustDecodeOTB(t, a, raw)
	mustDecodeOTB(t, b, raw)
	assert.Equal(t, a.Registry().Fingerprint(), b.Registry().Fingerprint())

	c := newTestLoader(t, LoadOptions{})
	mustDecodeOTB(t, c, otbImage(3, otbItem(GroupGround, flagMoveable, 100, 200)))
	assert.NotEqual(t, a.Registry().Fingerprint(), c.Registry().Fingerprint())
}
