package mapdata

// ResolveTailOrInvalidate returns the big face tail covering a view tile on
// a layer, if any. A tail from the map whose anchor no longer shows the face
// is stale: the anchor's face is removed, and the side table tail, if any,
// is returned instead. A tail on a fog tile is always kept.
func (s *Store) ResolveTailOrInvalidate(x, y, layer int) (Tail, bool) {
	if !s.IsInside(x, y) || layer < 0 || layer >= MaxLayers {
		return Tail{}, false
	}
	ax, ay := s.origin.X+x, s.origin.Y+y
	c := s.at(ax, ay)
	if t := c.Tails[layer]; t.Face != 0 {
		if !s.staleTail(x, y, layer, t) {
			return t, true
		}
		anchor := s.at(ax+int(t.DX), ay+int(t.DY))
		if anchor.Heads[layer].Face == t.Face {
			s.expandClear(ax+int(t.DX), ay+int(t.DY), layer)
		}
		// A mismatched anchor means the tail lost its owner.
		if c.Tails[layer].Face != 0 {
			c.Tails[layer] = Tail{}
			c.NeedsRedraw = true
		}
	}
	if t := s.big.at(x, y, layer).tail; t.Face != 0 {
		return t, true
	}
	return Tail{}, false
}

func (s *Store) staleTail(x, y, layer int, t Tail) bool {
	if s.view(x, y).Fog {
		return false
	}
	hx, hy := x+int(t.DX), y+int(t.DY)
	if s.IsInside(hx, hy) {
		return s.view(hx, hy).Fog
	}
	if !s.inRange(hx, hy) {
		return true
	}
	return s.big.at(hx, hy, layer).head.Face == 0
}
