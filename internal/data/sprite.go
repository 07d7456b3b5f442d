package data

import (
	lru "github.com/hashicorp/golang-lru/v2"
)

// Sprite is an opaque handle owned by the graphics layer.
type Sprite any

// SpriteSource resolves a client id to a sprite handle.
type SpriteSource interface {
	Sprite(clientID uint16) (Sprite, bool)
}

// SpriteFunc adapts a plain function to SpriteSource.
type SpriteFunc func(clientID uint16) (Sprite, bool)

func (f SpriteFunc) Sprite(clientID uint16) (Sprite, bool) {
	return f(clientID)
}

type noSprites struct{}

func (noSprites) Sprite(uint16) (Sprite, bool) { return nil, false }

// NoSprites is a SpriteSource that never resolves anything.
var NoSprites SpriteSource = noSprites{}

// cachedSprites memoises lookups, including misses.
type cachedSprites struct {
	src   SpriteSource
	cache *lru.Cache[uint16, cachedSprite]
}

type cachedSprite struct {
	sprite Sprite
	ok     bool
}

// NewCachedSpriteSource wraps src with an LRU cache of the given size.
// A size below one returns src unchanged.
func NewCachedSpriteSource(src SpriteSource, size int) (SpriteSource, error) {
	if size < 1 {
		return src, nil
	}
	c, err := lru.New[uint16, cachedSprite](size)
	if err != nil {
		return nil, err
	}
	return &cachedSprites{src: src, cache: c}, nil
}

func (c *cachedSprites) Sprite(clientID uint16) (Sprite, bool) {
	if e, ok := c.cache.Get(clientID); ok {
		return e.sprite, e.ok
	}
	s, ok := c.src.Sprite(clientID)
	c.cache.Add(clientID, cachedSprite{sprite: s, ok: ok})
	return s, ok
}
