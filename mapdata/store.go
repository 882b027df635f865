package mapdata

import (
	"fmt"
	"math/rand/v2"
	"time"
)

// Config controls allocation of a Store.
type Config struct {
	// FogSize is the edge length of the virtual map; zero selects
	// DefaultFogSize.
	FogSize int
	// Sizer provides face footprints. Nil treats every face as 1x1.
	Sizer FaceSizer
	// Animations is the animation table shared with the protocol layer.
	// Nil allocates a private one.
	Animations *Animations
	// PixelLighting marks neighbours dirty when darkness changes.
	PixelLighting bool
	// MapScroll means the renderer can blit the previous frame on scroll,
	// so only tiles touched by big faces need repainting.
	MapScroll bool
	// Rand seeds random animation phases. Nil uses a time based source.
	Rand *rand.Rand
}

// Store is the virtual map. Coordinates passed to its methods are relative
// to the view origin and lie in [0, MaxView); the view itself covers
// [0, width) x [0, height).
type Store struct {
	size   int
	border int
	cells  []Cell

	width, height int
	origin        Point

	big   bigTable
	sizer FaceSizer
	anims *Animations
	rng   *rand.Rand

	pixelLighting bool
	mapScroll     bool
}

// New allocates a store. The backing memory is never reallocated; view
// changes and new maps only reset logical state.
func New(cfg Config) (*Store, error) {
	size := cfg.FogSize
	if size == 0 {
		size = DefaultFogSize
	}
	if size < minFogSize {
		return nil, fmt.Errorf("fog size %d below minimum %d", size, minFogSize)
	}
	s := &Store{
		size:          size,
		border:        size / 4,
		cells:         make([]Cell, size*size),
		sizer:         cfg.Sizer,
		anims:         cfg.Animations,
		rng:           cfg.Rand,
		pixelLighting: cfg.PixelLighting,
		mapScroll:     cfg.MapScroll,
	}
	if s.sizer == nil {
		s.sizer = UnitSizer{}
	}
	if s.anims == nil {
		s.anims = NewAnimations()
	}
	if s.rng == nil {
		s.rng = rand.New(rand.NewPCG(uint64(time.Now().UnixNano()), 0x5eed))
	}
	s.big.init()
	s.Reset()
	return s, nil
}

// Reset forgets everything: all tiles blank, no view, origin centred.
func (s *Store) Reset() {
	s.clearCells(0, 0, s.size, s.size)
	s.big.clearAll()
	s.width, s.height = 0, 0
	s.origin = s.defaultOrigin()
}

// SetViewSize resets the map and installs a new view area.
func (s *Store) SetViewSize(width, height int) error {
	if width < 1 || width > MaxView || height < 1 || height > MaxView {
		return fmt.Errorf("view size %dx%d outside 1..%d", width, height, MaxView)
	}
	s.Reset()
	s.width, s.height = width, height
	return nil
}

// NewMap blanks all tiles and the side table, keeping the view size and
// origin. Every tile is marked for redraw.
func (s *Store) NewMap() {
	for i := range s.cells {
		s.cells[i] = blankCell
		s.cells[i].NeedsRedraw = true
	}
	s.big.clearAll()
}

// ViewSize returns the current view dimensions.
func (s *Store) ViewSize() (width, height int) { return s.width, s.height }

// Origin returns the absolute position of view tile (0,0).
func (s *Store) Origin() Point { return s.origin }

// FogSize returns the edge length of the virtual map.
func (s *Store) FogSize() int { return s.size }

// Animations returns the animation table used by the store.
func (s *Store) Animations() *Animations { return s.anims }

func (s *Store) defaultOrigin() Point {
	return Point{X: s.size / 2, Y: s.size / 2}
}

// IsInside reports whether a view relative tile lies in the view area.
func (s *Store) IsInside(x, y int) bool {
	return x >= 0 && x < s.width && y >= 0 && y < s.height
}

func (s *Store) inRange(x, y int) bool {
	return x >= 0 && x < MaxView && y >= 0 && y < MaxView
}

func (s *Store) at(ax, ay int) *Cell {
	return &s.cells[ax*s.size+ay]
}

func (s *Store) view(x, y int) *Cell {
	return s.at(s.origin.X+x, s.origin.Y+y)
}

func (s *Store) clearCells(x, y, w, h int) {
	for ax := x; ax < x+w; ax++ {
		col := s.cells[ax*s.size+y : ax*s.size+y+h]
		for i := range col {
			col[i] = blankCell
		}
	}
}

// SetFace sets the face of a layer. Face 0 clears the layer. Inside the view
// this also lifts fog; outside it only updates the big face side table.
func (s *Store) SetFace(x, y, layer int, face uint16) error {
	if err := s.check(x, y, layer); err != nil {
		return err
	}
	if !s.IsInside(x, y) {
		s.bigSet(x, y, layer, face, true)
		return nil
	}
	ax, ay := s.origin.X+x, s.origin.Y+y
	c := s.at(ax, ay)
	c.NeedsRedraw = true
	if face != 0 {
		s.expandSet(ax, ay, layer, face, true)
	} else {
		s.expandClear(ax, ay, layer)
	}
	c.Fog = false
	return nil
}

// SetAnim assigns animation anim (with its flag bits) to a layer and shows
// its current frame. Speed is ticks per frame.
func (s *Store) SetAnim(x, y, layer int, anim uint16, speed uint8) error {
	if err := s.check(x, y, layer); err != nil {
		return err
	}
	h, face := s.anims.start(anim, speed, s.rng)
	if !s.IsInside(x, y) {
		s.bigSet(x, y, layer, face, true)
		if face != 0 {
			s.big.at(x, y, layer).head.setAnimation(h)
		}
		return nil
	}
	ax, ay := s.origin.X+x, s.origin.Y+y
	c := s.at(ax, ay)
	c.NeedsRedraw = true
	if c.Fog {
		s.wipe(ax, ay)
	}
	if face != 0 {
		s.expandSet(ax, ay, layer, face, true)
		c.Heads[layer].setAnimation(h)
	} else {
		s.expandClear(ax, ay, layer)
	}
	c.Fog = false
	return nil
}

func (h *Head) setAnimation(src Head) {
	h.Animation = src.Animation
	h.Phase = src.Phase
	h.Speed = src.Speed
	h.Left = src.Left
	h.Sync = src.Sync
}

// ClearTile turns a visible tile into fog, keeping what is on it, or empties
// every side table layer of a tile outside the view.
func (s *Store) ClearTile(x, y int) error {
	if err := s.check(x, y, 0); err != nil {
		return err
	}
	if !s.IsInside(x, y) {
		for layer := 0; layer < MaxLayers; layer++ {
			s.bigSet(x, y, layer, 0, true)
		}
		return nil
	}
	ax, ay := s.origin.X+x, s.origin.Y+y
	c := s.at(ax, ay)
	if c.Fog {
		return nil
	}
	c.Fog = true
	c.NeedsRedraw = true
	for layer := 0; layer < MaxLayers; layer++ {
		if c.Heads[layer].Face != 0 {
			s.markFootprint(ax, ay, layer)
		}
	}
	return nil
}

// SetDarkness records the light level of a visible tile as 255-value.
// Tiles outside the view are ignored.
func (s *Store) SetDarkness(x, y int, value uint8) error {
	if err := s.check(x, y, 0); err != nil {
		return err
	}
	if !s.IsInside(x, y) {
		return nil
	}
	ax, ay := s.origin.X+x, s.origin.Y+y
	c := s.at(ax, ay)
	c.Fog = false
	s.setDarkness(ax, ay, 255-value)
	return nil
}

func (s *Store) setDarkness(ax, ay int, darkness uint8) {
	c := s.at(ax, ay)
	c.HasDarkness = true
	if c.Darkness == darkness {
		return
	}
	c.Darkness = darkness
	c.NeedsRedraw = true
	if !s.pixelLighting {
		return
	}
	for _, d := range [4]Point{{-1, 0}, {1, 0}, {0, -1}, {0, 1}} {
		nx, ny := ax+d.X, ay+d.Y
		if nx >= 0 && nx < s.size && ny >= 0 && ny < s.size {
			s.at(nx, ny).NeedsRedraw = true
		}
	}
}

// SetSmooth stores the smoothing level of a layer and flags the tile and its
// eight neighbours for resmoothing when it changes.
func (s *Store) SetSmooth(x, y, layer int, value uint8) error {
	if err := s.check(x, y, layer); err != nil {
		return err
	}
	ax, ay := s.origin.X+x, s.origin.Y+y
	c := s.at(ax, ay)
	if c.Smooth[layer] == value {
		return nil
	}
	for dx := -1; dx <= 1; dx++ {
		for dy := -1; dy <= 1; dy++ {
			nx, ny := ax+dx, ay+dy
			if nx >= 0 && nx < s.size && ny >= 0 && ny < s.size {
				s.at(nx, ny).NeedsResmooth = true
			}
		}
	}
	c.Smooth[layer] = value
	return nil
}

// BeginTile starts a fresh record for a tile. A fog tile drops its
// remembered content so the record replaces it rather than merging.
func (s *Store) BeginTile(x, y int) error {
	if err := s.check(x, y, 0); err != nil {
		return err
	}
	if !s.IsInside(x, y) {
		return nil
	}
	ax, ay := s.origin.X+x, s.origin.Y+y
	if s.at(ax, ay).Fog {
		s.wipe(ax, ay)
	}
	return nil
}

// EndTile closes a record. A visible tile left with nothing on it becomes
// fog.
func (s *Store) EndTile(x, y int) error {
	if err := s.check(x, y, 0); err != nil {
		return err
	}
	if !s.IsInside(x, y) {
		return nil
	}
	ax, ay := s.origin.X+x, s.origin.Y+y
	c := s.at(ax, ay)
	if c.Fog || !c.blank() {
		return nil
	}
	c.Fog = true
	c.NeedsRedraw = true
	for layer := 0; layer < MaxLayers; layer++ {
		if c.Heads[layer].Face != 0 {
			s.markFootprint(ax, ay, layer)
		}
	}
	return nil
}

// wipe clears all layers and darkness of a tile.
func (s *Store) wipe(ax, ay int) {
	c := s.at(ax, ay)
	for layer := 0; layer < MaxLayers; layer++ {
		s.expandClear(ax, ay, layer)
	}
	c.Darkness = 0
	c.HasDarkness = false
}

// QueryCell reports what is displayed on a layer of a view relative tile.
// Tiles inside the view are served from the map, with stale big face tails
// dropped; other tiles in [0, MaxView) come from the side table.
func (s *Store) QueryCell(x, y, layer int) (CellView, error) {
	if err := s.check(x, y, layer); err != nil {
		return CellView{}, err
	}
	var v CellView
	if !s.IsInside(x, y) {
		b := s.big.at(x, y, layer)
		v = CellView{
			Face:      b.head.Face,
			Width:     int(b.head.Width),
			Height:    int(b.head.Height),
			Animation: b.head.Animation,
			Phase:     int(b.head.Phase),
			TailFace:  b.tail.Face,
			TailDX:    int(b.tail.DX),
			TailDY:    int(b.tail.DY),
			Outside:   true,
		}
		if v.Width == 0 {
			v.Width, v.Height = 1, 1
		}
		return v, nil
	}
	c := s.view(x, y)
	h := c.Heads[layer]
	v = CellView{
		Face:        h.Face,
		Width:       int(h.Width),
		Height:      int(h.Height),
		Animation:   h.Animation,
		Phase:       int(h.Phase),
		Darkness:    c.Darkness,
		HasDarkness: c.HasDarkness,
		Smooth:      c.Smooth[layer],
		Fog:         c.Fog,
		NeedsRedraw: c.NeedsRedraw,
	}
	if t, ok := s.ResolveTailOrInvalidate(x, y, layer); ok {
		v.TailFace = t.Face
		v.TailDX = int(t.DX)
		v.TailDY = int(t.DY)
	}
	return v, nil
}

// Redraws returns the view tiles flagged for redraw in column order.
func (s *Store) Redraws() []Point {
	var pts []Point
	for x := 0; x < s.width; x++ {
		for y := 0; y < s.height; y++ {
			if s.view(x, y).NeedsRedraw {
				pts = append(pts, Point{x, y})
			}
		}
	}
	return pts
}

// MarkRedrawn clears the redraw and resmooth flags of the view.
func (s *Store) MarkRedrawn() {
	for x := 0; x < s.width; x++ {
		for y := 0; y < s.height; y++ {
			c := s.view(x, y)
			c.NeedsRedraw = false
			c.NeedsResmooth = false
		}
	}
}

// RangeError reports a tile or layer outside the addressable range.
type RangeError struct {
	X, Y, Layer int
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("tile %d,%d layer %d out of range", e.X, e.Y, e.Layer)
}

func (s *Store) check(x, y, layer int) error {
	if !s.inRange(x, y) || layer < 0 || layer >= MaxLayers {
		return &RangeError{X: x, Y: y, Layer: layer}
	}
	return nil
}
