package mapdata

import "github.com/zyedidia/generic/cache"

// FaceSizer reports the footprint of a face in tiles.
type FaceSizer interface {
	FaceSize(face uint16) (w, h int)
}

// SizerFunc adapts a function to FaceSizer.
type SizerFunc func(face uint16) (w, h int)

func (f SizerFunc) FaceSize(face uint16) (int, int) { return f(face) }

// UnitSizer treats every face as a single tile.
type UnitSizer struct{}

func (UnitSizer) FaceSize(uint16) (int, int) { return 1, 1 }

// FaceTable is a fixed footprint table; faces not listed are 1x1.
type FaceTable map[uint16]Point

func (t FaceTable) FaceSize(face uint16) (int, int) {
	if p, ok := t[face]; ok {
		return p.X, p.Y
	}
	return 1, 1
}

// CachedSizer keeps recently used footprints so a slow source, typically
// image decoding, is consulted once per face.
type CachedSizer struct {
	src FaceSizer
	lru *cache.Cache[uint16, Point]

	hits, misses int
}

func NewCachedSizer(src FaceSizer, capacity int) *CachedSizer {
	if capacity < 1 {
		capacity = 1
	}
	return &CachedSizer{src: src, lru: cache.New[uint16, Point](capacity)}
}

func (c *CachedSizer) FaceSize(face uint16) (int, int) {
	if p, ok := c.lru.Get(face); ok {
		c.hits++
		return p.X, p.Y
	}
	c.misses++
	w, h := c.src.FaceSize(face)
	c.lru.Put(face, Point{w, h})
	return w, h
}

// Invalidate drops a face, for when its image is replaced.
func (c *CachedSizer) Invalidate(face uint16) {
	c.lru.Remove(face)
}

// Stats returns cache hits and misses.
func (c *CachedSizer) Stats() (hits, misses int) {
	return c.hits, c.misses
}

func clampFootprint(w, h int) (int, int) {
	return clampDim(w), clampDim(h)
}

func clampDim(n int) int {
	switch {
	case n < 1:
		return 1
	case n > MaxFaceSize:
		return MaxFaceSize
	}
	return n
}
