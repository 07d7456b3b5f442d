package data

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/text/encoding/charmap"
)

const (
	xmlFile     = "items.xml"
	metaXMLFile = "metaitems.xml"
)

// xmlElement is a generic element: items.xml keys are matched by hand so
// that element and key names compare case-insensitively.
type xmlElement struct {
	XMLName  xml.Name
	Attrs    []xml.Attr   `xml:",any,attr"`
	Children []xmlElement `xml:",any"`
}

func (e *xmlElement) attr(name string) (string, bool) {
	for _, a := range e.Attrs {
		if strings.EqualFold(a.Name.Local, name) {
			return a.Value, true
		}
	}
	return "", false
}

func (e *xmlElement) is(name string) bool {
	return strings.EqualFold(e.XMLName.Local, name)
}

// xmlCharsets are the non-UTF-8 encodings item markup is saved in.
var xmlCharsets = map[string]*charmap.Charmap{
	"iso-8859-1":   charmap.ISO8859_1,
	"iso8859-1":    charmap.ISO8859_1,
	"latin1":       charmap.ISO8859_1,
	"latin-1":      charmap.ISO8859_1,
	"windows-1252": charmap.Windows1252,
	"cp1252":       charmap.Windows1252,
}

func xmlCharsetReader(label string, input io.Reader) (io.Reader, error) {
	cm, ok := xmlCharsets[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return nil, fmt.Errorf("unsupported encoding %q", label)
	}
	return cm.NewDecoder().Reader(input), nil
}

func parseXMLDocument(raw []byte, rootName string) (*xmlElement, error) {
	d := xml.NewDecoder(bytes.NewReader(raw))
	d.CharsetReader = xmlCharsetReader

	var root xmlElement
	if err := d.Decode(&root); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMarkupSyntax, err)
	}
	if root.XMLName.Local != rootName {
		return nil, fmt.Errorf("%w: expected <%s>, got <%s>", ErrInvalidRoot, rootName, root.XMLName.Local)
	}
	return &root, nil
}

// LoadXML applies an items.xml overlay to the registry.
func (l *Loader) LoadXML(path string) (Warnings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: read %s: %w", xmlFile, path, err)
	}
	return l.DecodeXML(raw)
}

// DecodeXML applies an in-memory items.xml overlay. Every <item> names one
// id or an inclusive fromid/toid range; ids without a record get a meta
// placeholder before their attributes are applied.
func (l *Loader) DecodeXML(raw []byte) (Warnings, error) {
	root, err := parseXMLDocument(raw, "items")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", xmlFile, err)
	}

	warn := l.newWarnSink(xmlFile)
	applied, skipped := 0, 0
	for i := range root.Children {
		el := &root.Children[i]
		if !el.is("item") {
			continue
		}

		var fromID, toID uint16
		if v, ok := el.attr("id"); ok {
			fromID = xmlUint16(v)
			toID = fromID
		} else {
			fromID = xmlUint16OrZero(el.attr("fromid"))
			toID = xmlUint16OrZero(el.attr("toid"))
		}
		if fromID == 0 || toID == 0 {
			return warn.list, fmt.Errorf("%s: %w (element %d)", xmlFile, ErrMissingItemID, i+1)
		}

		for id := int(fromID); id <= int(toID); id++ {
			// Bad values are reported once per element, not once per id.
			sink := warn
			if id != int(fromID) {
				sink = nil
			}
			if l.applyXMLItem(el, uint16(id), sink) {
				applied++
			} else {
				skipped++
			}
		}
	}

	l.log.Info("items.xml applied",
		zap.Int("items", applied),
		zap.Int("reserved_skipped", skipped),
		zap.Int("warnings", len(warn.list)),
	)
	return warn.list, nil
}

// reservedID reports whether id lies in a band the markup and the item
// store number differently across client eras.
func (l *Loader) reservedID(id uint16) bool {
	if l.opts.PreferClientID {
		return false
	}
	if l.opts.ClientVersion < 980 && id > 20000 && id < 20100 {
		return true
	}
	return id > 30000 && id < 30100
}

func (l *Loader) applyXMLItem(el *xmlElement, id uint16, warn *warnSink) bool {
	if l.reservedID(id) {
		return false
	}

	t, ok := l.reg.Lookup(id)
	if !ok {
		t = newMetaItem(id)
		l.reg.Put(t)
	}

	if v, ok := el.attr("name"); ok {
		t.Name = v
	}
	if v, ok := el.attr("editorsuffix"); ok {
		t.EditorSuffix = v
	}

	for i := range el.Children {
		child := &el.Children[i]
		key, ok := child.attr("key")
		if !ok {
			continue
		}
		value, hasValue := child.attr("value")
		key = strings.ToLower(key)
		if !applyXMLAttribute(t, key, value, hasValue) && warn != nil {
			warn.add("item %d: unknown %s value %q", id, key, value)
		}
	}
	return true
}

// applyXMLAttribute applies one key/value directive. Keys other than decayto
// do nothing without a value. It reports false for an enum word it does not
// recognise; the record is left unchanged then.
func applyXMLAttribute(t *ItemType, key, value string, hasValue bool) bool {
	if key == "decayto" {
		t.Decays = true
		return true
	}
	if !hasValue {
		return true
	}
	word := strings.ToLower(strings.TrimSpace(value))

	switch key {
	case "type":
		k, ok := kindByName[word]
		if !ok {
			return false
		}
		t.Kind = k
		if k == KindMagicField {
			t.Group = GroupMagicField
		}
	case "name":
		t.Name = value
	case "description":
		t.Description = value
	case "weight":
		t.Weight = float64(xmlInt(value)) / 100
	case "armor":
		t.Armor = int32(xmlInt(value))
	case "defense":
		t.Defense = int32(xmlInt(value))
	case "attack":
		t.Attack = int32(xmlInt(value))
	case "slottype":
		return applySlotType(t, word)
	case "weapontype":
		w, ok := weaponByName[word]
		if !ok {
			return false
		}
		t.WeaponType = w
	case "rotateto":
		t.RotateTo = xmlUint16(value)
	case "containersize":
		t.Volume = xmlUint16(value)
	case "readable":
		t.CanReadText = xmlBool(value)
	case "writeable":
		t.CanWriteText = xmlBool(value)
		t.CanReadText = t.CanWriteText
	case "maxtextlen", "maxtextlength":
		t.MaxTextLen = xmlUint16(value)
		t.CanReadText = t.MaxTextLen > 0
	case "allowdistread":
		t.AllowDistRead = xmlBool(value)
	case "charges":
		t.Charges = xmlUint32(value)
		t.ExtraChargeable = true
	case "floorchange":
		return applyFloorChange(t, word)
	case "runespellname", "writeonceitemid":
		// known, not used by the editor
	}
	return true
}

var slotByName = map[string]SlotMask{
	"head":       SlotHead,
	"body":       SlotArmor,
	"legs":       SlotLegs,
	"feet":       SlotFeet,
	"backpack":   SlotBackpack,
	"two-handed": SlotTwoHand,
	"necklace":   SlotNecklace,
	"ring":       SlotRing,
	"ammo":       SlotAmmo,
	"hand":       SlotHand,
}

// applySlotType ORs a slot into the mask. right-hand and left-hand instead
// clear the opposite hand.
func applySlotType(t *ItemType, word string) bool {
	switch word {
	case "right-hand":
		t.SlotPosition &^= SlotLeft
	case "left-hand":
		t.SlotPosition &^= SlotRight
	default:
		s, ok := slotByName[word]
		if !ok {
			return false
		}
		t.SlotPosition |= s
	}
	return true
}

func applyFloorChange(t *ItemType, word string) bool {
	switch word {
	case "down":
		t.FloorChangeDown = true
	case "north":
		t.FloorChangeNorth = true
	case "south":
		t.FloorChangeSouth = true
	case "west":
		t.FloorChangeWest = true
	case "east":
		t.FloorChangeEast = true
	case "northex", "southex", "westex", "eastex", "southalt", "eastalt":
		// composite only
	default:
		return false
	}
	t.FloorChange = true
	return true
}

func newMetaItem(id uint16) *ItemType {
	t := NewItemType()
	t.ID = id
	t.IsMetaItem = true
	return t
}

// AddMetaItem stores a placeholder for id. It fails for id 0 and for ids
// that already hold a record.
func (r *Registry) AddMetaItem(id uint16) bool {
	if id == 0 || r.Exists(id) {
		return false
	}
	r.Put(newMetaItem(id))
	return true
}

// LoadMetaItems reads a <metaitems> document of <metaitem id=".."/> entries.
func (l *Loader) LoadMetaItems(path string) (Warnings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: read %s: %w", metaXMLFile, path, err)
	}
	return l.DecodeMetaItems(raw)
}

func (l *Loader) DecodeMetaItems(raw []byte) (Warnings, error) {
	root, err := parseXMLDocument(raw, "metaitems")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", metaXMLFile, err)
	}

	warn := l.newWarnSink(metaXMLFile)
	added := 0
	for i := range root.Children {
		el := &root.Children[i]
		if !el.is("metaitem") {
			continue
		}
		v, ok := el.attr("id")
		if !ok {
			warn.add("meta item without id (element %d)", i+1)
			continue
		}
		id := xmlUint16(v)
		if !l.reg.AddMetaItem(id) {
			warn.add("meta item %d skipped: zero or already defined", id)
			continue
		}
		added++
	}

	l.log.Info("meta items loaded", zap.Int("items", added), zap.Int("warnings", len(warn.list)))
	return warn.list, nil
}
