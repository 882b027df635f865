// Package mapdata holds the client side map state: a virtual map larger than
// the visible area so that fog of war survives scrolling, a side table for
// big faces anchored outside the view, and the animation state of every
// displayed layer.
package mapdata

const (
	// MaxView is the largest view area a server may negotiate.
	MaxView = 64
	// MaxFaceSize is the largest big face footprint in tiles. Larger faces
	// are clipped top/left.
	MaxFaceSize = 16
	// MaxLayers is the number of face layers per tile.
	MaxLayers = 10
	// DefaultFogSize is the edge length of the virtual map.
	DefaultFogSize = 512

	// minFogSize keeps room for the view, a face sized margin and a
	// recentering border on both sides.
	minFogSize = 256
)

// Point is a tile coordinate.
type Point struct {
	X, Y int
}

// Head is the face of a layer as sent by the server, anchored at its
// bottom right tile.
type Head struct {
	Face   uint16
	Width  uint8
	Height uint8

	Animation uint16
	Phase     uint8
	Speed     uint8
	Left      uint8
	Sync      bool
}

// Tail is the part of a big face covering a tile other than its anchor. DX
// and DY give the offset from this tile to the anchor.
type Tail struct {
	Face uint16
	DX   uint8
	DY   uint8
}

// Cell is one tile of the virtual map.
type Cell struct {
	Heads  [MaxLayers]Head
	Tails  [MaxLayers]Tail
	Smooth [MaxLayers]uint8

	Darkness      uint8
	HasDarkness   bool
	NeedsRedraw   bool
	NeedsResmooth bool
	Fog           bool
}

// blankCell is the reset state of a tile: no faces, unit footprints.
var blankCell = func() Cell {
	var c Cell
	for i := range c.Heads {
		c.Heads[i].Width = 1
		c.Heads[i].Height = 1
	}
	return c
}()

func (h *Head) reset() {
	*h = Head{Width: 1, Height: 1}
}

func (t *Tail) matches(face uint16, dx, dy int) bool {
	return t.Face == face && int(t.DX) == dx && int(t.DY) == dy
}

// blank reports whether nothing is displayed on the tile.
func (c *Cell) blank() bool {
	if c.HasDarkness {
		return false
	}
	for i := 0; i < MaxLayers; i++ {
		if c.Heads[i].Face != 0 || c.Tails[i].Face != 0 {
			return false
		}
	}
	return true
}

// CellView is the result of a tile query: the tile's own head, the tail
// contribution of a face anchored elsewhere and the per tile attributes.
type CellView struct {
	Face   uint16
	Width  int
	Height int

	Animation uint16
	Phase     int

	TailFace uint16
	TailDX   int
	TailDY   int

	Darkness    uint8
	HasDarkness bool
	Smooth      uint8
	Fog         bool
	NeedsRedraw bool

	// Outside is set when the tile lies outside the view area and was
	// served from the big face side table.
	Outside bool
}
