package data

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

type dumpFile struct {
	Version dumpVersion `yaml:"version"`
	MaxID   uint16      `yaml:"max_id"`
	Items   []dumpItem  `yaml:"items"`
}

type dumpVersion struct {
	Major       uint32 `yaml:"major"`
	Minor       uint32 `yaml:"minor"`
	Build       uint32 `yaml:"build"`
	Description string `yaml:"description,omitempty"`
}

type dumpItem struct {
	ID           uint16   `yaml:"id"`
	ClientID     uint16   `yaml:"client_id"`
	Name         string   `yaml:"name,omitempty"`
	Description  string   `yaml:"description,omitempty"`
	EditorSuffix string   `yaml:"editor_suffix,omitempty"`
	Group        string   `yaml:"group"`
	Kind         string   `yaml:"kind,omitempty"`
	Weight       float64  `yaml:"weight,omitempty"`
	Attack       int32    `yaml:"attack,omitempty"`
	Defense      int32    `yaml:"defense,omitempty"`
	Armor        int32    `yaml:"armor,omitempty"`
	Charges      uint32   `yaml:"charges,omitempty"`
	Volume       uint16   `yaml:"volume,omitempty"`
	MaxTextLen   uint16   `yaml:"max_text_len,omitempty"`
	RotateTo     uint16   `yaml:"rotate_to,omitempty"`
	WeaponType   string   `yaml:"weapon_type,omitempty"`
	Slots        uint32   `yaml:"slots"`
	TopOrder     uint8    `yaml:"top_order,omitempty"`
	Class        uint8    `yaml:"classification,omitempty"`
	Flags        []string `yaml:"flags,flow,omitempty"`
}

// itemFlagNames lists the boolean capabilities in the order FlagBits
// packs them.
var itemFlagNames = [...]string{
	"meta", "raw", "client_charges", "extra_charges",
	"ignore_look", "hangable", "hook_east", "hook_south",
	"readable", "writeable", "dist_read", "replaceable",
	"decays", "stackable", "moveable", "pickupable",
	"rotatable", "always_on_bottom", "floor_down", "floor_north",
	"floor_south", "floor_east", "floor_west", "floor_change",
	"unpassable", "block_pickupable", "block_missiles", "block_pathfinder",
	"elevation",
}

// DumpYAML writes every record in ascending id order.
func DumpYAML(reg *Registry, w io.Writer) error {
	v := reg.Version()
	out := dumpFile{
		Version: dumpVersion{Major: v.Major, Minor: v.Minor, Build: v.Build, Description: v.Description},
		MaxID:   reg.MaxID(),
		Items:   make([]dumpItem, 0, reg.Count()),
	}
	reg.Each(func(t *ItemType) {
		out.Items = append(out.Items, newDumpItem(t))
	})

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(&out); err != nil {
		return fmt.Errorf("encode item dump: %w", err)
	}
	return enc.Close()
}

func newDumpItem(t *ItemType) dumpItem {
	d := dumpItem{
		ID:           t.ID,
		ClientID:     t.ClientID,
		Name:         t.Name,
		Description:  t.Description,
		EditorSuffix: t.EditorSuffix,
		Group:        t.Group.String(),
		Weight:       t.Weight,
		Attack:       t.Attack,
		Defense:      t.Defense,
		Armor:        t.Armor,
		Charges:      t.Charges,
		Volume:       t.Volume,
		MaxTextLen:   t.MaxTextLen,
		RotateTo:     t.RotateTo,
		Slots:        uint32(t.SlotPosition),
		TopOrder:     t.AlwaysOnTopOrder,
		Class:        t.Classification,
	}
	if t.Kind != KindNone {
		d.Kind = t.Kind.String()
	}
	if t.WeaponType != WeaponNone {
		d.WeaponType = t.WeaponType.String()
	}
	bits := t.FlagBits()
	for i, name := range itemFlagNames {
		if bits&(1<<uint(i)) != 0 {
			d.Flags = append(d.Flags, name)
		}
	}
	return d
}
