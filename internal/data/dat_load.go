package data

import (
	"fmt"
	"os"
	"strings"

	"github.com/l1jgo/itemdb/internal/binfile"
	"go.uber.org/zap"
)

const datFile = "Tibia.dat"

// DatFormat identifies the sprite metadata sub-format of a client release.
type DatFormat int

const (
	DatFormatUnknown DatFormat = iota
	DatFormat74
	DatFormat755
	DatFormat78
	DatFormat86
	DatFormat96
	DatFormat1010
	DatFormat1050
	DatFormat1057
)

var datFormatNames = map[string]DatFormat{
	"7.4":   DatFormat74,
	"7.55":  DatFormat755,
	"7.8":   DatFormat78,
	"8.6":   DatFormat86,
	"9.6":   DatFormat96,
	"10.10": DatFormat1010,
	"10.50": DatFormat1050,
	"10.57": DatFormat1057,
}

// ParseDatFormat maps a release name such as "10.57" to its format.
func ParseDatFormat(s string) (DatFormat, error) {
	if f, ok := datFormatNames[strings.TrimSpace(s)]; ok {
		return f, nil
	}
	return DatFormatUnknown, fmt.Errorf("unknown dat format %q", s)
}

func (f DatFormat) String() string {
	for name, v := range datFormatNames {
		if v == f {
			return name
		}
	}
	return "unknown"
}

// Extended formats address sprites with 4 bytes instead of 2.
func (f DatFormat) extended() bool       { return f >= DatFormat96 }
func (f DatFormat) frameDurations() bool { return f >= DatFormat1050 }
func (f DatFormat) patternZ() bool       { return f > DatFormat74 }

// Sprite metadata attribute tags.
const (
	datGround                uint8 = 0
	datGroundBorder          uint8 = 1
	datOnBottom              uint8 = 2
	datOnTop                 uint8 = 3
	datContainer             uint8 = 4
	datStackable             uint8 = 5
	datForceUse              uint8 = 6
	datMultiUse              uint8 = 7
	datWritable              uint8 = 8
	datWritableOnce          uint8 = 9
	datFluidContainer        uint8 = 10
	datSplash                uint8 = 11
	datNotWalkable           uint8 = 12
	datNotMoveable           uint8 = 13
	datBlockProjectile       uint8 = 14
	datNotPathable           uint8 = 15
	datNoMoveAnimation       uint8 = 16
	datPickupable            uint8 = 17
	datHangable              uint8 = 18
	datHookSouth             uint8 = 19
	datHookEast              uint8 = 20
	datRotateable            uint8 = 21
	datLight                 uint8 = 22
	datDontHide              uint8 = 23
	datTranslucent           uint8 = 24
	datDisplacement          uint8 = 25
	datElevation             uint8 = 26
	datLyingCorpse           uint8 = 27
	datAnimateAlways         uint8 = 28
	datMinimapColor          uint8 = 29
	datLensHelp              uint8 = 30
	datFullGround            uint8 = 31
	datLook                  uint8 = 32
	datCloth                 uint8 = 33
	datMarket                uint8 = 34
	datDefaultAction         uint8 = 35
	datWrappable             uint8 = 36
	datUnwrappable           uint8 = 37
	datTopEffect             uint8 = 38
	datNpcSaleData           uint8 = 39
	datChangedToExpire       uint8 = 40
	datCorpse                uint8 = 41
	datPlayerCorpse          uint8 = 42
	datCyclopediaItem        uint8 = 43
	datAmmo                  uint8 = 44
	datShowOffSocket         uint8 = 45
	datReportable            uint8 = 46
	datUpgradeClassification uint8 = 47
	datWearout               uint8 = 48
	datClockExpire           uint8 = 49
	datExpire                uint8 = 50
	datExpireStop            uint8 = 51
	datUsable                uint8 = 254
	datLast                  uint8 = 255
)

// helpInfoReadable is the lens help code of readable items.
const helpInfoReadable = 1112

// firstItemID is the first client id of the item category.
const firstItemID = 100

type datHeader struct {
	Signature    uint32
	ObjectCount  uint16
	OutfitCount  uint16
	EffectCount  uint16
	MissileCount uint16
}

// LoadDAT decodes a Tibia.dat sprite metadata file into the registry.
func (l *Loader) LoadDAT(path string) (Warnings, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%s: read %s: %w", datFile, path, err)
	}
	return l.DecodeDAT(raw)
}

// DecodeDAT decodes an in-memory sprite metadata image. Items are created
// (or reused) for ids 100 up to the object count; client id equals item id.
// A corrupt record is reported and decoding moves on to the next id.
func (l *Loader) DecodeDAT(raw []byte) (Warnings, error) {
	r := binfile.NewReader(raw)
	h, ok := readDatHeader(r)
	if !ok {
		return nil, fmt.Errorf("%s: %w", datFile, ErrDatHeader)
	}
	if l.opts.CheckSignatures && l.opts.ExpectedDatSignature != 0 && h.Signature != l.opts.ExpectedDatSignature {
		return nil, fmt.Errorf("%s: %w: signature %08X, expected %08X",
			datFile, ErrUnsupportedVersion, h.Signature, l.opts.ExpectedDatSignature)
	}

	format := l.opts.DatFormat
	if format == DatFormatUnknown {
		format = DatFormat96
	}

	l.reg.SetVersion(Version{Major: 16, Minor: 16})

	warn := l.newWarnSink(datFile)
	loaded := 0
	exhausted := false
	for id := uint16(firstItemID); id < h.ObjectCount; id++ {
		t, exists := l.reg.Lookup(id)
		if !exists {
			t = NewItemType()
			t.ID = id
			l.reg.Put(t)
		}
		t.ClientID = id
		l.lookupSprite(t)
		l.reg.trackID(id)
		loaded++

		// Once the stream is used up the remaining ids keep their defaults.
		if exhausted {
			continue
		}
		if !readDatFlags(r, t) {
			warn.add("failed to load flags for sprite %d", id)
		}
		if !skipDatGeometry(r, format) {
			warn.add("frame data of sprite %d is truncated", id)
		}
		if r.Remaining() == 0 && id+1 < h.ObjectCount {
			exhausted = true
			warn.add("stream ends after sprite %d, sprites %d to %d have no metadata", id, id+1, h.ObjectCount-1)
		}
	}

	l.log.Info("Tibia.dat loaded",
		zap.String("signature", fmt.Sprintf("%08X", h.Signature)),
		zap.String("format", format.String()),
		zap.Int("items", loaded),
		zap.Uint16("outfits", h.OutfitCount),
		zap.Uint16("effects", h.EffectCount),
		zap.Uint16("missiles", h.MissileCount),
		zap.Int("warnings", len(warn.list)),
	)
	return warn.list, nil
}

func readDatHeader(r *binfile.Reader) (datHeader, bool) {
	var h datHeader
	var ok bool
	if h.Signature, ok = r.ReadU32(); !ok {
		return h, false
	}
	for _, c := range []*uint16{&h.ObjectCount, &h.OutfitCount, &h.EffectCount, &h.MissileCount} {
		if *c, ok = r.ReadU16(); !ok {
			return h, false
		}
	}
	return h, true
}

// readDatFlags reads the attribute list of one thing up to the terminator.
func readDatFlags(r *binfile.Reader, t *ItemType) bool {
	for i := 0; i < int(datLast); i++ {
		flag, ok := r.ReadU8()
		if !ok {
			return false
		}
		if flag == datLast {
			return true
		}
		if !applyDatFlag(r, t, flag) {
			return false
		}
	}
	return false
}

func applyDatFlag(r *binfile.Reader, t *ItemType, flag uint8) bool {
	switch flag {
	case datGround, datMinimapColor, datCloth, datDefaultAction,
		datChangedToExpire, datCyclopediaItem, datUpgradeClassification:
		return r.Skip(2)
	case datGroundBorder:
		t.AlwaysOnTopOrder = 1
	case datOnBottom:
		t.AlwaysOnTopOrder = 2
	case datOnTop:
		t.AlwaysOnTopOrder = 3
	case datContainer:
		t.Kind = KindContainer
	case datStackable:
		t.Stackable = true
	case datWritable, datWritableOnce:
		t.CanReadText = true
		v, ok := r.ReadU16()
		t.MaxTextLen = v
		return ok
	case datNotPathable:
		t.BlockPathfinder = true
	case datPickupable:
		t.Pickupable = true
	case datHangable:
		t.Hangable = true
	case datRotateable:
		t.Rotatable = true
	case datLight, datDisplacement:
		return r.Skip(4)
	case datElevation:
		t.HasElevation = true
		return r.Skip(2)
	case datLensHelp:
		opt, ok := r.ReadU16()
		if opt == helpInfoReadable {
			t.CanReadText = true
		}
		return ok
	case datLook:
		t.IgnoreLook = true
	case datMarket:
		// category, trade-as, show-as; name; vocation, level
		if !r.Skip(6) {
			return false
		}
		if _, ok := r.ReadString(); !ok {
			return false
		}
		return r.Skip(4)
	}
	// Remaining tags carry no payload.
	return true
}

// skipDatGeometry skips the dimensions and sprite ids of one item. Frame
// groups (10.57 and later) only exist for outfits, which come after the
// items and are not decoded.
func skipDatGeometry(r *binfile.Reader, format DatFormat) bool {
	var dims [7]uint8 // width, height, layers, patternX, patternY, patternZ, frames
	if !readU8s(r, dims[0:2]) {
		return false
	}
	if dims[0] > 1 || dims[1] > 1 {
		if !r.Skip(1) { // exact size
			return false
		}
	}
	if !readU8s(r, dims[2:5]) {
		return false
	}
	dims[5] = 1
	if format.patternZ() && !readU8s(r, dims[5:6]) {
		return false
	}
	if !readU8s(r, dims[6:7]) {
		return false
	}

	frames := int(dims[6])
	if frames > 1 && format.frameDurations() {
		// animation mode, loop count, start phase, then min/max per frame
		if !r.Skip(1+4+1) || !r.Skip(8*frames) {
			return false
		}
	}

	cells := 1
	for _, d := range dims {
		cells *= int(d)
	}
	size := 2
	if format.extended() {
		size = 4
	}
	return r.Skip(cells * size)
}

func readU8s(r *binfile.Reader, dst []uint8) bool {
	for i := range dst {
		v, ok := r.ReadU8()
		if !ok {
			return false
		}
		dst[i] = v
	}
	return true
}
