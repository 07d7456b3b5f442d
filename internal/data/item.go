package data

import "fmt"

// ItemGroup is the item group byte stored as the node type of every
// items.otb record.
type ItemGroup uint8

const (
	GroupNone ItemGroup = iota
	GroupGround
	GroupContainer
	GroupWeapon
	GroupAmmunition
	GroupArmor
	GroupRune
	GroupTeleport
	GroupMagicField
	GroupWriteable
	GroupKey
	GroupSplash
	GroupFluid
	GroupDoor
	GroupDeprecated
	GroupPodium
)

var groupNames = [...]string{
	GroupNone:       "none",
	GroupGround:     "ground",
	GroupContainer:  "container",
	GroupWeapon:     "weapon",
	GroupAmmunition: "ammunition",
	GroupArmor:      "armor",
	GroupRune:       "rune",
	GroupTeleport:   "teleport",
	GroupMagicField: "magicfield",
	GroupWriteable:  "writeable",
	GroupKey:        "key",
	GroupSplash:     "splash",
	GroupFluid:      "fluid",
	GroupDoor:       "door",
	GroupDeprecated: "deprecated",
	GroupPodium:     "podium",
}

func (g ItemGroup) String() string {
	if int(g) < len(groupNames) {
		return groupNames[g]
	}
	return fmt.Sprintf("unknown(%d)", uint8(g))
}

// ItemKind is the behavioural type of an item.
type ItemKind uint8

const (
	KindNone ItemKind = iota
	KindDepot
	KindMailbox
	KindTrashHolder
	KindContainer
	KindDoor
	KindMagicField
	KindTeleport
	KindBed
	KindKey
	KindPodium
)

var kindNames = [...]string{
	KindNone:        "none",
	KindDepot:       "depot",
	KindMailbox:     "mailbox",
	KindTrashHolder: "trashholder",
	KindContainer:   "container",
	KindDoor:        "door",
	KindMagicField:  "magicfield",
	KindTeleport:    "teleport",
	KindBed:         "bed",
	KindKey:         "key",
	KindPodium:      "podium",
}

func (k ItemKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("unknown(%d)", uint8(k))
}

// kindByName maps items.xml "type" values. magicfield also sets the group.
var kindByName = map[string]ItemKind{
	"depot":       KindDepot,
	"mailbox":     KindMailbox,
	"trashholder": KindTrashHolder,
	"container":   KindContainer,
	"door":        KindDoor,
	"magicfield":  KindMagicField,
	"teleport":    KindTeleport,
	"bed":         KindBed,
	"key":         KindKey,
	"podium":      KindPodium,
}

// WeaponType is the weapon class of an item.
type WeaponType uint8

const (
	WeaponNone WeaponType = iota
	WeaponSword
	WeaponClub
	WeaponAxe
	WeaponShield
	WeaponDistance
	WeaponWand
	WeaponAmmo
)

var weaponNames = [...]string{
	WeaponNone:     "none",
	WeaponSword:    "sword",
	WeaponClub:     "club",
	WeaponAxe:      "axe",
	WeaponShield:   "shield",
	WeaponDistance: "distance",
	WeaponWand:     "wand",
	WeaponAmmo:     "ammunition",
}

func (w WeaponType) String() string {
	if int(w) < len(weaponNames) {
		return weaponNames[w]
	}
	return fmt.Sprintf("unknown(%d)", uint8(w))
}

var weaponByName = map[string]WeaponType{
	"sword":      WeaponSword,
	"club":       WeaponClub,
	"axe":        WeaponAxe,
	"shield":     WeaponShield,
	"distance":   WeaponDistance,
	"wand":       WeaponWand,
	"ammunition": WeaponAmmo,
}

// SlotMask is the set of equipment slots an item fits.
type SlotMask uint32

const (
	SlotHead     SlotMask = 1 << 0
	SlotNecklace SlotMask = 1 << 1
	SlotBackpack SlotMask = 1 << 2
	SlotArmor    SlotMask = 1 << 3
	SlotRight    SlotMask = 1 << 4
	SlotLeft     SlotMask = 1 << 5
	SlotLegs     SlotMask = 1 << 6
	SlotFeet     SlotMask = 1 << 7
	SlotRing     SlotMask = 1 << 8
	SlotAmmo     SlotMask = 1 << 9
	SlotDepot    SlotMask = 1 << 10
	SlotTwoHand  SlotMask = 1 << 11

	SlotHand = SlotLeft | SlotRight
)

func (m SlotMask) Has(s SlotMask) bool {
	return m&s == s
}

// ItemType is one item definition. Fields that do not apply to an item
// keep their zero value.
type ItemType struct {
	ID       uint16
	ClientID uint16
	Sprite   Sprite // opaque handle from the SpriteSource, may be nil

	Group ItemGroup
	Kind  ItemKind

	Name         string
	Description  string
	EditorSuffix string

	Volume     uint16
	MaxTextLen uint16
	Weight     float64
	Attack     int32
	Defense    int32
	Armor      int32
	Charges    uint32
	RotateTo   uint16

	SlotPosition SlotMask
	WeaponType   WeaponType

	AlwaysOnTopOrder uint8
	Classification   uint8

	IsMetaItem bool
	HasRaw     bool

	ClientChargeable bool
	ExtraChargeable  bool
	IgnoreLook       bool

	Hangable      bool
	HookEast      bool
	HookSouth     bool
	CanReadText   bool
	CanWriteText  bool
	AllowDistRead bool
	Replaceable   bool
	Decays        bool
	Stackable     bool
	Moveable      bool
	Pickupable    bool
	Rotatable     bool

	// Set from the otb "always on top" flag bit; the name is the one the
	// rest of the editor uses.
	AlwaysOnBottom bool

	FloorChangeDown  bool
	FloorChangeNorth bool
	FloorChangeSouth bool
	FloorChangeEast  bool
	FloorChangeWest  bool
	FloorChange      bool

	Unpassable      bool
	BlockPickupable bool
	BlockMissiles   bool
	BlockPathfinder bool
	HasElevation    bool
}

// NewItemType returns a record with the defaults every source starts from.
func NewItemType() *ItemType {
	return &ItemType{
		SlotPosition: SlotHand,
		Replaceable:  true,
		Moveable:     true,
	}
}

// IsFloorChange reports whether walking onto the item changes floor.
func (t *ItemType) IsFloorChange() bool {
	return t.FloorChange || t.FloorChangeDown || t.FloorChangeNorth ||
		t.FloorChangeSouth || t.FloorChangeEast || t.FloorChangeWest
}

// IsChargeable reports whether the item carries charges from either source.
func (t *ItemType) IsChargeable() bool {
	return t.ClientChargeable || t.ExtraChargeable
}

func (t *ItemType) IsGroundTile() bool { return t.Group == GroupGround }
func (t *ItemType) IsContainer() bool  { return t.Kind == KindContainer }
func (t *ItemType) IsDoor() bool       { return t.Kind == KindDoor }
func (t *ItemType) IsTeleport() bool   { return t.Kind == KindTeleport }
func (t *ItemType) IsPodium() bool     { return t.Kind == KindPodium }
func (t *ItemType) IsSplash() bool     { return t.Group == GroupSplash }
func (t *ItemType) IsFluidContainer() bool {
	return t.Group == GroupFluid
}

// updateFloorChange recomputes the composite flag from the directional ones.
func (t *ItemType) updateFloorChange() {
	t.FloorChange = t.FloorChangeDown || t.FloorChangeNorth ||
		t.FloorChangeSouth || t.FloorChangeEast || t.FloorChangeWest
}
