package mapdata

// A face larger than one tile is stored as a head at its bottom right tile
// and a tail on every other tile it covers. Heads outside the view area live
// in a separate side table indexed by view relative position, because the
// virtual map only tracks what the server sends for the view itself.

const (
	bigCells = MaxView * MaxView * MaxLayers
	noCell   = -1
)

type bigCell struct {
	head Head
	tail Tail

	prev, next int32
	linked     bool
	x, y       uint8
	layer      uint8
}

// bigTable is the side table. Occupied heads are threaded through an index
// based doubly linked list so that scrolling can drop them without scanning
// the whole table.
type bigTable struct {
	cells []bigCell
	first int32
	count int
}

func bigIndex(x, y, layer int) int {
	return (x*MaxView+y)*MaxLayers + layer
}

func (t *bigTable) init() {
	t.cells = make([]bigCell, bigCells)
	t.clearAll()
}

func (t *bigTable) at(x, y, layer int) *bigCell {
	return &t.cells[bigIndex(x, y, layer)]
}

func (t *bigTable) clearAll() {
	for x := 0; x < MaxView; x++ {
		for y := 0; y < MaxView; y++ {
			for layer := 0; layer < MaxLayers; layer++ {
				t.cells[bigIndex(x, y, layer)] = bigCell{
					head:  Head{Width: 1, Height: 1},
					prev:  noCell,
					next:  noCell,
					x:     uint8(x),
					y:     uint8(y),
					layer: uint8(layer),
				}
			}
		}
	}
	t.first = noCell
	t.count = 0
}

func (t *bigTable) link(i int32) {
	c := &t.cells[i]
	if c.linked {
		return
	}
	c.linked = true
	c.prev = noCell
	c.next = t.first
	if t.first != noCell {
		t.cells[t.first].prev = i
	}
	t.first = i
	t.count++
}

func (t *bigTable) unlink(i int32) {
	c := &t.cells[i]
	if !c.linked {
		return
	}
	if c.prev != noCell {
		t.cells[c.prev].next = c.next
	} else {
		t.first = c.next
	}
	if c.next != noCell {
		t.cells[c.next].prev = c.prev
	}
	c.prev, c.next = noCell, noCell
	c.linked = false
	t.count--
}

// anchors returns the side table anchors currently linked.
func (t *bigTable) anchors() []int32 {
	out := make([]int32, 0, t.count)
	for i := t.first; i != noCell; i = t.cells[i].next {
		out = append(out, i)
	}
	return out
}

// BigFaces returns the number of faces anchored outside the view.
func (s *Store) BigFaces() int { return s.big.count }

func (s *Store) footprint(face uint16) (int, int) {
	if face == 0 {
		return 1, 1
	}
	return clampFootprint(s.sizer.FaceSize(face))
}

func startRow(dx int) int {
	if dx == 0 {
		return 1
	}
	return 0
}

// expandSet places face as the head of a layer and stamps its tails. With
// clear the previous face is removed first. Without it the existing tails
// are overwritten in place, which is how animation frames are refreshed.
func (s *Store) expandSet(ax, ay, layer int, face uint16, clear bool) {
	c := s.at(ax, ay)
	h := &c.Heads[layer]
	w, ht := s.footprint(face)
	if clear {
		s.expandClear(ax, ay, layer)
	} else if h.Face != 0 && (int(h.Width) != w || int(h.Height) != ht) {
		saved := *h
		s.expandClear(ax, ay, layer)
		h.setAnimation(saved)
	}
	h.Face = face
	h.Width = uint8(w)
	h.Height = uint8(ht)
	c.NeedsRedraw = true
	for dx := 0; dx < w; dx++ {
		for dy := startRow(dx); dy < ht; dy++ {
			tc := s.at(ax-dx, ay-dy)
			tc.Tails[layer] = Tail{Face: face, DX: uint8(dx), DY: uint8(dy)}
			tc.NeedsRedraw = true
		}
	}
}

// expandClear removes the head of a layer together with the tails it owns.
func (s *Store) expandClear(ax, ay, layer int) {
	c := s.at(ax, ay)
	h := &c.Heads[layer]
	if h.Face == 0 {
		return
	}
	face := h.Face
	w, ht := int(h.Width), int(h.Height)
	for dx := 0; dx < w; dx++ {
		for dy := startRow(dx); dy < ht; dy++ {
			tc := s.at(ax-dx, ay-dy)
			if tc.Tails[layer].matches(face, dx, dy) {
				tc.Tails[layer] = Tail{}
				tc.NeedsRedraw = true
			}
		}
	}
	h.reset()
	c.NeedsRedraw = true
	c.NeedsResmooth = true
}

// markFootprint flags every tile covered by the head of a layer.
func (s *Store) markFootprint(ax, ay, layer int) {
	h := &s.at(ax, ay).Heads[layer]
	for dx := 0; dx < int(h.Width); dx++ {
		for dy := 0; dy < int(h.Height); dy++ {
			s.at(ax-dx, ay-dy).NeedsRedraw = true
		}
	}
}

// markView flags a view relative tile if it lies in the view.
func (s *Store) markView(x, y int) {
	if s.IsInside(x, y) {
		s.view(x, y).NeedsRedraw = true
	}
}

// bigClear removes a side table head and its tails.
func (s *Store) bigClear(x, y, layer int, redraw bool) {
	i := int32(bigIndex(x, y, layer))
	b := &s.big.cells[i]
	face := b.head.Face
	if face != 0 {
		w, ht := int(b.head.Width), int(b.head.Height)
		for dx := 0; dx < w && dx <= x; dx++ {
			for dy := startRow(dx); dy < ht && dy <= y; dy++ {
				t := &s.big.at(x-dx, y-dy, layer).tail
				if t.matches(face, dx, dy) {
					*t = Tail{}
				}
				if redraw {
					s.markView(x-dx, y-dy)
				}
			}
		}
	}
	b.head.reset()
	s.big.unlink(i)
}

// bigSet places face as a side table head. Face 0 clears it.
func (s *Store) bigSet(x, y, layer int, face uint16, clear bool) {
	i := int32(bigIndex(x, y, layer))
	b := &s.big.cells[i]
	w, ht := s.footprint(face)
	if clear || face == 0 {
		s.bigClear(x, y, layer, true)
	} else if b.head.Face != 0 && (int(b.head.Width) != w || int(b.head.Height) != ht) {
		saved := b.head
		s.bigClear(x, y, layer, true)
		b.head.setAnimation(saved)
	}
	if face == 0 {
		return
	}
	b.head.Face = face
	b.head.Width = uint8(w)
	b.head.Height = uint8(ht)
	for dx := 0; dx < w && dx <= x; dx++ {
		for dy := startRow(dx); dy < ht && dy <= y; dy++ {
			s.big.at(x-dx, y-dy, layer).tail = Tail{Face: face, DX: uint8(dx), DY: uint8(dy)}
			s.markView(x-dx, y-dy)
		}
	}
	s.big.link(i)
}

// dropBigFaces empties the side table without touching redraw flags.
func (s *Store) dropBigFaces() {
	for s.big.first != noCell {
		b := &s.big.cells[s.big.first]
		s.bigClear(int(b.x), int(b.y), int(b.layer), false)
	}
}
