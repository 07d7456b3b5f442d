package data

import (
	"fmt"

	"github.com/l1jgo/itemdb/internal/binfile"
	"github.com/l1jgo/itemdb/internal/otb"
	"go.uber.org/zap"
)

const otbFile = "items.otb"

// LoadOTB decodes an items.otb file into the registry.
func (l *Loader) LoadOTB(path string) (Warnings, error) {
	f, err := otb.Open(path, "OTBI")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", otbFile, err)
	}
	return l.decodeOTB(f)
}

// DecodeOTB decodes an in-memory items.otb image.
func (l *Loader) DecodeOTB(raw []byte) (Warnings, error) {
	f, err := otb.Parse(raw, "OTBI")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", otbFile, err)
	}
	return l.decodeOTB(f)
}

func (l *Loader) decodeOTB(f *otb.File) (Warnings, error) {
	root := f.Root()
	v, err := readVersionHeader(root)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", otbFile, err)
	}

	if l.opts.CheckSignatures && v.Major != l.opts.ExpectedOTBVersion {
		return nil, fmt.Errorf("%s: %w: version %d, expected %d",
			otbFile, ErrUnsupportedVersion, v.Major, l.opts.ExpectedOTBVersion)
	}
	schema, ok := schemaFor(v.Major)
	if !ok {
		return nil, fmt.Errorf("%s: %w: version %d", otbFile, ErrUnsupportedVersion, v.Major)
	}
	l.reg.SetVersion(v)

	if f.Truncated() {
		l.log.Debug("items.otb ends inside a node, stopping at the last complete item")
	}

	warn := l.newWarnSink(otbFile)
	before := l.reg.Count()
	if err := l.decodeItems(schema, root.Child(), warn); err != nil {
		return warn.list, fmt.Errorf("%s: %w", otbFile, err)
	}

	l.log.Info("items.otb loaded",
		zap.Uint32("major", v.Major),
		zap.Uint32("minor", v.Minor),
		zap.Uint32("build", v.Build),
		zap.Int("items", l.reg.Count()-before),
		zap.Uint16("max_id", l.reg.MaxID()),
		zap.Int("warnings", len(warn.list)),
	)
	return warn.list, nil
}

// readVersionHeader reads the root node: type byte, 4 reserved bytes, then
// the mandatory version attribute.
func readVersionHeader(root *otb.Node) (Version, error) {
	var v Version
	if !root.Skip(1) || !root.Skip(4) {
		return v, fmt.Errorf("%w: root node too short", ErrVersionHeader)
	}
	attr, ok := root.ReadU8()
	if !ok {
		return v, fmt.Errorf("%w: unreadable root attribute", ErrVersionHeader)
	}
	if attr != rootAttrVersion {
		return v, fmt.Errorf("%w: expected version attribute as first root attribute, got 0x%02x", ErrVersionHeader, attr)
	}
	datalen, ok := root.ReadU16()
	if !ok || int(datalen) != versionHeaderLen {
		return v, fmt.Errorf("%w: size of version header is invalid, updated items.otb version?", ErrVersionHeader)
	}

	if v.Major, ok = root.ReadU32(); !ok {
		return v, fmt.Errorf("%w: truncated major version", ErrVersionHeader)
	}
	if v.Minor, ok = root.ReadU32(); !ok {
		return v, fmt.Errorf("%w: truncated minor version", ErrVersionHeader)
	}
	if v.Build, ok = root.ReadU32(); !ok {
		return v, fmt.Errorf("%w: truncated build number", ErrVersionHeader)
	}
	desc, ok := root.ReadBytes(128)
	if !ok {
		return v, fmt.Errorf("%w: truncated description", ErrVersionHeader)
	}
	v.Description = binfile.Latin1ToUTF8(desc)
	return v, nil
}

// decodeItems walks the item nodes: group, flags, attributes, commit.
func (l *Loader) decodeItems(schema *otbSchema, first *otb.Node, warn *warnSink) error {
	for n := first; n != nil; n = n.Advance() {
		group, ok := n.ReadU8()
		if !ok {
			warn.add("invalid item type encountered")
			continue
		}
		if ItemGroup(group) == GroupDeprecated {
			continue
		}

		t := NewItemType()
		t.Group = ItemGroup(group)
		if defaults, known := schema.groups[t.Group]; !known {
			warn.add("unknown item group declaration %d", group)
			t.Group = GroupNone
		} else if defaults != nil {
			defaults(t)
		}

		// A missing flag word reads as zero.
		flags, _ := n.ReadU32()
		schema.applyFlags(t, flags)

		if err := l.readAttributes(schema, t, n, warn); err != nil {
			return err
		}

		if l.reg.Put(t) {
			warn.add("duplicate item id %d, keeping the later definition", t.ID)
		}
	}
	return nil
}

func (l *Loader) readAttributes(schema *otbSchema, t *ItemType, n *otb.Node, warn *warnSink) error {
	for {
		attr, ok := n.ReadU8()
		if !ok {
			return nil
		}
		u16, ok := n.ReadU16()
		if !ok {
			warn.add("invalid item type property: missing length of attribute 0x%02x", attr)
			return nil
		}
		datalen := int(u16)

		spec, known := schema.attrs[attr]
		if !known || !spec.accepts(datalen) {
			if known {
				if spec.fatal != nil {
					return fmt.Errorf("item %d: %w, got %d", t.ID, spec.fatal, datalen)
				}
				warn.add("unexpected data length of item %s block (%d bytes)", spec.name, datalen)
			}
			if !n.Skip(datalen) {
				warn.add("attribute 0x%02x declares %d bytes, only %d remain", attr, datalen, n.Remaining())
				return nil
			}
			continue
		}

		if !spec.read(l, t, n, datalen) {
			warn.add("invalid item type property (%s)", spec.name)
			return nil
		}
	}
}
