package data

import (
	"github.com/l1jgo/itemdb/internal/binfile"
	"github.com/l1jgo/itemdb/internal/otb"
)

// items.otb attribute tags.
const (
	attrServerID       uint8 = 0x10
	attrClientID       uint8 = 0x11
	attrName           uint8 = 0x12
	attrDescription    uint8 = 0x13
	attrSpeed          uint8 = 0x14
	attrMaxItems       uint8 = 0x16
	attrWeight         uint8 = 0x17
	attrRotateTo       uint8 = 0x1E
	attrLight          uint8 = 0x2A
	attrTopOrder       uint8 = 0x2B
	attrWriteable      uint8 = 0x2C
	attrClassification uint8 = 0x2E

	rootAttrVersion uint8 = 0x01
)

// items.otb flag bits.
const (
	flagUnpassable       uint32 = 1 << 0
	flagBlockMissiles    uint32 = 1 << 1
	flagBlockPathfinder  uint32 = 1 << 2
	flagHasElevation     uint32 = 1 << 3
	flagUseable          uint32 = 1 << 4
	flagPickupable       uint32 = 1 << 5
	flagMoveable         uint32 = 1 << 6
	flagStackable        uint32 = 1 << 7
	flagFloorChangeDown  uint32 = 1 << 8
	flagFloorChangeNorth uint32 = 1 << 9
	flagFloorChangeEast  uint32 = 1 << 10
	flagFloorChangeSouth uint32 = 1 << 11
	flagFloorChangeWest  uint32 = 1 << 12
	flagAlwaysOnTop      uint32 = 1 << 13
	flagReadable         uint32 = 1 << 14
	flagRotatable        uint32 = 1 << 15
	flagHangable         uint32 = 1 << 16
	flagHookEast         uint32 = 1 << 17
	flagHookSouth        uint32 = 1 << 18
	flagCannotDecay      uint32 = 1 << 19
	flagAllowDistRead    uint32 = 1 << 20
	flagClientCharges    uint32 = 1 << 22
	flagIgnoreLook       uint32 = 1 << 23
)

// versionHeaderLen is major + minor + build + the 128-byte description.
const versionHeaderLen = 4 + 4 + 4 + 128

// otbSchema is everything that differs between items.otb major versions.
// The decoding loop itself is shared.
type otbSchema struct {
	major  uint32
	groups map[ItemGroup]func(*ItemType) // recognised groups; nil means no defaults
	flags  []flagBit
	attrs  map[uint8]attrSpec
}

type flagBit struct {
	mask uint32
	set  func(t *ItemType, on bool)
}

type attrSpec struct {
	name   string
	size   int   // exact payload size
	maxLen int   // if set, payload must be shorter than this instead
	fatal  error // returned when the declared length is wrong
	read   func(l *Loader, t *ItemType, n *otb.Node, datalen int) bool
}

func (s attrSpec) accepts(datalen int) bool {
	if s.maxLen > 0 {
		return datalen < s.maxLen
	}
	return datalen == s.size
}

func (s *otbSchema) applyFlags(t *ItemType, flags uint32) {
	for _, f := range s.flags {
		f.set(t, flags&f.mask == f.mask)
	}
	t.updateFloorChange()
}

func schemaFor(major uint32) (*otbSchema, bool) {
	switch major {
	case 1:
		return schemaV1, true
	case 2:
		return schemaV2, true
	case 3:
		return schemaV3, true
	}
	return nil, false
}

func withKind(k ItemKind) func(*ItemType) {
	return func(t *ItemType) { t.Kind = k }
}

func runeDefaults(t *ItemType) {
	t.ClientChargeable = true
}

var commonFlags = []flagBit{
	{flagUnpassable, func(t *ItemType, on bool) { t.Unpassable = on }},
	{flagBlockMissiles, func(t *ItemType, on bool) { t.BlockMissiles = on }},
	{flagBlockPathfinder, func(t *ItemType, on bool) { t.BlockPathfinder = on }},
	{flagHasElevation, func(t *ItemType, on bool) { t.HasElevation = on }},
	{flagPickupable, func(t *ItemType, on bool) { t.Pickupable = on }},
	{flagMoveable, func(t *ItemType, on bool) { t.Moveable = on }},
	{flagStackable, func(t *ItemType, on bool) { t.Stackable = on }},
	{flagFloorChangeDown, func(t *ItemType, on bool) { t.FloorChangeDown = on }},
	{flagFloorChangeNorth, func(t *ItemType, on bool) { t.FloorChangeNorth = on }},
	{flagFloorChangeEast, func(t *ItemType, on bool) { t.FloorChangeEast = on }},
	{flagFloorChangeSouth, func(t *ItemType, on bool) { t.FloorChangeSouth = on }},
	{flagFloorChangeWest, func(t *ItemType, on bool) { t.FloorChangeWest = on }},
	// The "always on top" bit means always on bottom. Map drawing depends on it.
	{flagAlwaysOnTop, func(t *ItemType, on bool) { t.AlwaysOnBottom = on }},
	{flagHangable, func(t *ItemType, on bool) { t.Hangable = on }},
	{flagHookEast, func(t *ItemType, on bool) { t.HookEast = on }},
	{flagHookSouth, func(t *ItemType, on bool) { t.HookSouth = on }},
	{flagAllowDistRead, func(t *ItemType, on bool) { t.AllowDistRead = on }},
	{flagRotatable, func(t *ItemType, on bool) { t.Rotatable = on }},
	{flagReadable, func(t *ItemType, on bool) { t.CanReadText = on }},
}

var v3Flags = []flagBit{
	{flagClientCharges, func(t *ItemType, on bool) { t.ClientChargeable = on }},
	{flagIgnoreLook, func(t *ItemType, on bool) { t.IgnoreLook = on }},
}

// Attributes every version understands.
var commonAttrs = map[uint8]attrSpec{
	attrServerID: {
		name: "server id", size: 2, fatal: ErrServerIDLength,
		read: func(l *Loader, t *ItemType, n *otb.Node, _ int) bool {
			id, ok := n.ReadU16()
			if !ok {
				return false
			}
			t.ID = id
			l.reg.trackID(id)
			return true
		},
	},
	attrClientID: {
		name: "client id", size: 2, fatal: ErrClientIDLength,
		read: func(l *Loader, t *ItemType, n *otb.Node, _ int) bool {
			id, ok := n.ReadU16()
			if !ok {
				return false
			}
			t.ClientID = id
			l.lookupSprite(t)
			return true
		},
	},
	attrSpeed: {
		name: "speed", size: 2,
		read: func(_ *Loader, _ *ItemType, n *otb.Node, _ int) bool {
			return n.Skip(2)
		},
	},
	attrLight: {
		name: "light", size: 4,
		read: func(_ *Loader, _ *ItemType, n *otb.Node, _ int) bool {
			return n.Skip(4)
		},
	},
	attrTopOrder: {
		name: "top order", size: 1,
		read: func(_ *Loader, t *ItemType, n *otb.Node, _ int) bool {
			v, ok := n.ReadU8()
			t.AlwaysOnTopOrder = v
			return ok
		},
	},
}

// Attributes only the first version stores; later versions get them from items.xml.
var legacyAttrs = map[uint8]attrSpec{
	attrName: {
		name: "name", maxLen: 128,
		read: func(_ *Loader, t *ItemType, n *otb.Node, datalen int) bool {
			raw, ok := n.ReadBytes(datalen)
			if !ok {
				return false
			}
			t.Name = binfile.Latin1ToUTF8(raw)
			return true
		},
	},
	attrDescription: {
		name: "description", maxLen: 128,
		read: func(_ *Loader, t *ItemType, n *otb.Node, datalen int) bool {
			raw, ok := n.ReadBytes(datalen)
			if !ok {
				return false
			}
			t.Description = binfile.Latin1ToUTF8(raw)
			return true
		},
	},
	attrMaxItems: {
		name: "volume", size: 2,
		read: func(_ *Loader, t *ItemType, n *otb.Node, _ int) bool {
			v, ok := n.ReadU16()
			if ok {
				t.Volume = v
			}
			return ok
		},
	},
	attrWeight: {
		name: "weight", size: 8,
		read: func(_ *Loader, t *ItemType, n *otb.Node, _ int) bool {
			v, ok := n.ReadFloat64()
			if ok {
				t.Weight = v
			}
			return ok
		},
	},
	attrRotateTo: {
		name: "rotate to", size: 2,
		read: func(_ *Loader, t *ItemType, n *otb.Node, _ int) bool {
			v, ok := n.ReadU16()
			if ok {
				t.RotateTo = v
			}
			return ok
		},
	},
	attrWriteable: {
		name: "writeable", size: 4,
		read: func(_ *Loader, t *ItemType, n *otb.Node, _ int) bool {
			if !n.Skip(2) { // read-only id, unused
				return false
			}
			v, ok := n.ReadU16()
			if ok {
				t.MaxTextLen = v
			}
			return ok
		},
	},
}

var classificationAttrs = map[uint8]attrSpec{
	attrClassification: {
		name: "classification", size: 1,
		read: func(_ *Loader, t *ItemType, n *otb.Node, _ int) bool {
			v, ok := n.ReadU8()
			t.Classification = v
			return ok
		},
	},
}

var (
	schemaV1 = &otbSchema{
		major: 1,
		groups: map[ItemGroup]func(*ItemType){
			GroupNone:       nil,
			GroupGround:     nil,
			GroupSplash:     nil,
			GroupFluid:      nil,
			GroupWeapon:     nil,
			GroupAmmunition: nil,
			GroupArmor:      nil,
			GroupWriteable:  nil,
			GroupKey:        nil,
			GroupDoor:       withKind(KindDoor),
			GroupContainer:  withKind(KindContainer),
			GroupRune:       runeDefaults,
			GroupTeleport:   withKind(KindTeleport),
			GroupMagicField: withKind(KindMagicField),
		},
		flags: commonFlags,
		attrs: mergeAttrs(commonAttrs, legacyAttrs),
	}

	schemaV2 = &otbSchema{
		major: 2,
		groups: map[ItemGroup]func(*ItemType){
			GroupNone:       nil,
			GroupGround:     nil,
			GroupSplash:     nil,
			GroupFluid:      nil,
			GroupDoor:       withKind(KindDoor),
			GroupContainer:  withKind(KindContainer),
			GroupRune:       runeDefaults,
			GroupTeleport:   withKind(KindTeleport),
			GroupMagicField: withKind(KindMagicField),
		},
		flags: commonFlags,
		attrs: commonAttrs,
	}

	schemaV3 = &otbSchema{
		major: 3,
		groups: map[ItemGroup]func(*ItemType){
			GroupNone:      nil,
			GroupGround:    nil,
			GroupSplash:    nil,
			GroupFluid:     nil,
			GroupContainer: withKind(KindContainer),
			GroupPodium:    withKind(KindPodium),
		},
		flags: append(append([]flagBit{}, commonFlags...), v3Flags...),
		attrs: mergeAttrs(commonAttrs, classificationAttrs),
	}
)

func mergeAttrs(tables ...map[uint8]attrSpec) map[uint8]attrSpec {
	out := make(map[uint8]attrSpec)
	for _, tbl := range tables {
		for tag, spec := range tbl {
			out[tag] = spec
		}
	}
	return out
}
