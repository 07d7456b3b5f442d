package data

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// Fatal load errors. A load that returns one of these leaves the registry
// partially filled; callers are expected to discard it.
var (
	ErrVersionHeader      = errors.New("invalid version header")
	ErrUnsupportedVersion = errors.New("unsupported version")
	ErrServerIDLength     = errors.New("unexpected data length of server id block (should be 2 bytes)")
	ErrClientIDLength     = errors.New("unexpected data length of client id block (should be 2 bytes)")
	ErrDatHeader          = errors.New("truncated sprite metadata header")
	ErrMarkupSyntax       = errors.New("markup syntax error")
	ErrInvalidRoot        = errors.New("invalid root node")
	ErrMissingItemID      = errors.New("could not read item id from item node")
)

// Warnings are non-fatal problems, in the order they were found.
type Warnings []string

// LoadOptions carries the settings a load consults.
type LoadOptions struct {
	// CheckSignatures rejects files whose format version differs from
	// ExpectedOTBVersion / ExpectedDatSignature.
	CheckSignatures      bool
	ExpectedOTBVersion   uint32
	ExpectedDatSignature uint32

	// PreferClientID disables the reserved id bands of the markup overlay.
	PreferClientID bool

	// ClientVersion is the numeric client version, e.g. 1098 for 10.98.
	ClientVersion int
	DatFormat     DatFormat
}

// Loader fills one Registry from the item store, the sprite metadata and the
// markup overlay. It is used from a single goroutine.
type Loader struct {
	reg     *Registry
	sprites SpriteSource
	opts    LoadOptions
	log     *zap.Logger
}

func NewLoader(reg *Registry, sprites SpriteSource, opts LoadOptions, log *zap.Logger) *Loader {
	if sprites == nil {
		sprites = NoSprites
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Loader{reg: reg, sprites: sprites, opts: opts, log: log}
}

// Registry returns the registry being filled.
func (l *Loader) Registry() *Registry {
	return l.reg
}

func (l *Loader) lookupSprite(t *ItemType) {
	if s, ok := l.sprites.Sprite(t.ClientID); ok {
		t.Sprite = s
	} else {
		t.Sprite = nil
	}
}

// warnSink collects warnings for one file and mirrors them to the log.
type warnSink struct {
	file string
	list Warnings
	log  *zap.Logger
}

func (l *Loader) newWarnSink(file string) *warnSink {
	return &warnSink{file: file, log: l.log}
}

func (w *warnSink) add(format string, args ...any) {
	msg := w.file + ": " + fmt.Sprintf(format, args...)
	w.list = append(w.list, msg)
	w.log.Warn("item load warning", zap.String("file", w.file), zap.String("msg", msg))
}
