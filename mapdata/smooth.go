package mapdata

// SmoothTable maps a face to the face used to draw its smoothed edges.
type SmoothTable struct {
	faces map[uint16]uint16
}

func NewSmoothTable() *SmoothTable {
	return &SmoothTable{faces: make(map[uint16]uint16)}
}

func (t *SmoothTable) Insert(face, smooth uint16) {
	t.faces[face] = smooth
}

// Lookup returns the smoothing face of face, or 0.
func (t *SmoothTable) Lookup(face uint16) (uint16, bool) {
	s, ok := t.faces[face]
	return s, ok
}

func (t *SmoothTable) Len() int { return len(t.faces) }

func (t *SmoothTable) Reset() {
	clear(t.faces)
}
