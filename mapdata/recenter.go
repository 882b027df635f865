package mapdata

type shiftKind int

const (
	noShift shiftKind = iota
	boundedShift
	unboundedShift
)

// computeShift works out how far the stored map must move so that the view,
// after scrolling by dx,dy, keeps a face sized margin to the store edges.
// When one axis has to move the other is re-centred as well.
func (s *Store) computeShift(dx, dy int) (Point, shiftKind) {
	nx, ny := s.origin.X+dx, s.origin.Y+dy
	sh := Point{s.axisShift(nx, false), s.axisShift(ny, false)}
	if sh.X == 0 && sh.Y == 0 {
		return sh, noShift
	}
	if sh.X == 0 {
		sh.X = s.axisShift(nx, true)
	}
	if sh.Y == 0 {
		sh.Y = s.axisShift(ny, true)
	}
	if abs(sh.X) >= s.size || abs(sh.Y) >= s.size {
		return sh, unboundedShift
	}
	return sh, boundedShift
}

func (s *Store) axisShift(n int, border bool) int {
	lo, hi := MaxFaceSize, s.size-MaxView
	if border {
		lo, hi = s.border+MaxFaceSize, s.size-MaxView-s.border
	}
	switch {
	case n < lo:
		return s.border + MaxFaceSize - n
	case n > hi:
		return s.size - s.border - MaxView - n
	}
	return 0
}

// recenter moves the stored map ahead of a scroll by dx,dy. It reports true
// when the shift was too large to keep anything and the store was reset.
func (s *Store) recenter(dx, dy int) bool {
	sh, kind := s.computeShift(dx, dy)
	switch kind {
	case noShift:
		return false
	case unboundedShift:
		s.clearCells(0, 0, s.size, s.size)
		s.dropBigFaces()
		s.origin = s.defaultOrigin()
		return true
	}
	s.moveCells(sh)
	s.origin.X += sh.X
	s.origin.Y += sh.Y
	return false
}

// moveCells moves every tile by sh and blanks the area it leaves behind.
func (s *Store) moveCells(sh Point) {
	n := s.size
	srcX, dstX := 0, sh.X
	if sh.X < 0 {
		srcX, dstX = -sh.X, 0
	}
	srcY, dstY := 0, sh.Y
	if sh.Y < 0 {
		srcY, dstY = -sh.Y, 0
	}
	lenX, lenY := n-abs(sh.X), n-abs(sh.Y)

	col := func(i int) {
		dst := (dstX+i)*n + dstY
		src := (srcX+i)*n + srcY
		copy(s.cells[dst:dst+lenY], s.cells[src:src+lenY])
	}
	if sh.X > 0 {
		for i := lenX - 1; i >= 0; i-- {
			col(i)
		}
	} else {
		for i := 0; i < lenX; i++ {
			col(i)
		}
	}

	switch {
	case sh.X < 0:
		s.clearCells(lenX, 0, n-lenX, n)
	case sh.X > 0:
		s.clearCells(0, 0, sh.X, n)
	}
	switch {
	case sh.Y < 0:
		s.clearCells(0, lenY, n, n-lenY)
	case sh.Y > 0:
		s.clearCells(0, 0, n, sh.Y)
	}
}

// Scroll moves the view by dx,dy tiles. Tiles that scroll into view are
// shown as fog until the server sends them, and the side table is emptied
// since its positions are view relative.
func (s *Store) Scroll(dx, dy int) {
	if dx == 0 && dy == 0 {
		return
	}
	// Redraw marks go on the current cells; a bounded recenter carries
	// them along with the content.
	if s.mapScroll {
		s.markBigFaces()
	} else {
		s.markAll()
	}
	if s.recenter(dx, dy) {
		s.big.clearAll()
		s.markAll()
		return
	}

	s.origin.X += dx
	s.origin.Y += dy
	for x := 0; x < s.width; x++ {
		for y := 0; y < s.height; y++ {
			if s.IsInside(x+dx, y+dy) {
				continue
			}
			c := s.view(x, y)
			c.Fog = true
			c.NeedsRedraw = true
		}
	}
	s.dropBigFaces()
}

// markBigFaces flags the footprints of the side table heads.
func (s *Store) markBigFaces() {
	for _, i := range s.big.anchors() {
		b := &s.big.cells[i]
		for fx := 0; fx < int(b.head.Width); fx++ {
			for fy := 0; fy < int(b.head.Height); fy++ {
				s.at(s.origin.X+int(b.x)-fx, s.origin.Y+int(b.y)-fy).NeedsRedraw = true
			}
		}
	}
}

func (s *Store) markAll() {
	for x := 0; x < s.width; x++ {
		for y := 0; y < s.height; y++ {
			s.view(x, y).NeedsRedraw = true
		}
	}
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
