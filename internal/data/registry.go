package data

import (
	"sort"

	"github.com/l1jgo/itemdb/internal/binfile"
	"golang.org/x/crypto/blake2b"
)

// Version is the header information of the last loaded item store.
type Version struct {
	Major       uint32
	Minor       uint32
	Build       uint32
	Description string
}

// dummyItemType is what Get hands out for unknown ids. It is copied on every
// call and never written.
var dummyItemType = ItemType{}

// Registry holds every item definition indexed by server id.
// It is not safe for concurrent mutation; once loading is done it is only read.
type Registry struct {
	items   map[uint16]*ItemType
	maxID   uint16
	version Version
}

func NewRegistry() *Registry {
	return &Registry{items: make(map[uint16]*ItemType, 4096)}
}

// Get returns the item with the given id. Unknown ids yield a fresh copy of
// an empty record, so callers never branch on nil and must not compare
// identities.
func (r *Registry) Get(id uint16) *ItemType {
	if t, ok := r.items[id]; ok {
		return t
	}
	d := dummyItemType
	return &d
}

// Lookup returns the stored record for id, if any.
func (r *Registry) Lookup(id uint16) (*ItemType, bool) {
	t, ok := r.items[id]
	return t, ok
}

// Exists reports whether id holds a record.
func (r *Registry) Exists(id uint16) bool {
	_, ok := r.items[id]
	return ok
}

// Put stores t under t.ID, dropping any previous record for that id.
// It reports whether a record was replaced; warning about it is up to the caller.
func (r *Registry) Put(t *ItemType) (replaced bool) {
	_, replaced = r.items[t.ID]
	r.items[t.ID] = t
	r.trackID(t.ID)
	return replaced
}

func (r *Registry) trackID(id uint16) {
	if id > r.maxID {
		r.maxID = id
	}
}

// MaxID returns the highest id seen by any loader, including ids whose
// records were later dropped.
func (r *Registry) MaxID() uint16 {
	return r.maxID
}

// Count returns total loaded items.
func (r *Registry) Count() int {
	return len(r.items)
}

// IDs returns every stored id in ascending order.
func (r *Registry) IDs() []uint16 {
	ids := make([]uint16, 0, len(r.items))
	for id := range r.items {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Each calls fn for every record in ascending id order.
func (r *Registry) Each(fn func(t *ItemType)) {
	for _, id := range r.IDs() {
		fn(r.items[id])
	}
}

func (r *Registry) Version() Version {
	return r.version
}

func (r *Registry) SetVersion(v Version) {
	r.version = v
}

// Fingerprint hashes every record (except sprite handles) in id order.
// Two registries decoded from the same inputs have equal fingerprints.
func (r *Registry) Fingerprint() [32]byte {
	w := binfile.NewWriter()
	w.WriteU32(r.version.Major)
	w.WriteU32(r.version.Minor)
	w.WriteU32(r.version.Build)
	w.WriteU16(r.maxID)
	r.Each(func(t *ItemType) {
		encodeItemType(w, t)
	})
	return blake2b.Sum256(w.Bytes())
}

func encodeItemType(w *binfile.Writer, t *ItemType) {
	w.WriteU16(t.ID)
	w.WriteU16(t.ClientID)
	w.WriteU8(uint8(t.Group))
	w.WriteU8(uint8(t.Kind))
	w.WriteString(t.Name)
	w.WriteString(t.Description)
	w.WriteString(t.EditorSuffix)
	w.WriteU16(t.Volume)
	w.WriteU16(t.MaxTextLen)
	w.WriteFloat64(t.Weight)
	w.WriteU32(uint32(t.Attack))
	w.WriteU32(uint32(t.Defense))
	w.WriteU32(uint32(t.Armor))
	w.WriteU32(t.Charges)
	w.WriteU16(t.RotateTo)
	w.WriteU32(uint32(t.SlotPosition))
	w.WriteU8(uint8(t.WeaponType))
	w.WriteU8(t.AlwaysOnTopOrder)
	w.WriteU8(t.Classification)
	w.WriteU64(t.FlagBits())
}

// FlagBits packs the boolean capabilities in declaration order, bit 0 first.
func (t *ItemType) FlagBits() uint64 {
	flags := [...]bool{
		t.IsMetaItem, t.HasRaw, t.ClientChargeable, t.ExtraChargeable,
		t.IgnoreLook, t.Hangable, t.HookEast, t.HookSouth,
		t.CanReadText, t.CanWriteText, t.AllowDistRead, t.Replaceable,
		t.Decays, t.Stackable, t.Moveable, t.Pickupable,
		t.Rotatable, t.AlwaysOnBottom, t.FloorChangeDown, t.FloorChangeNorth,
		t.FloorChangeSouth, t.FloorChangeEast, t.FloorChangeWest, t.FloorChange,
		t.Unpassable, t.BlockPickupable, t.BlockMissiles, t.BlockPathfinder,
		t.HasElevation,
	}
	var bits uint64
	for i, f := range flags {
		if f {
			bits |= 1 << uint(i)
		}
	}
	return bits
}
