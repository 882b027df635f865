package mapdata

import (
	"fmt"
	"math/rand/v2"

	"github.com/zyedidia/generic/mapset"
)

// Animation word layout as sent by the server.
const (
	FaceIsAnim    = 0x8000
	AnimFlagsMask = 0x6000
	AnimRandom    = 0x2000
	AnimSync      = 0x4000
	AnimMask      = 0x1fff

	// MaxAnim is the size of the animation id space.
	MaxAnim = AnimMask + 1
)

// Animation is a face cycle defined by the server. Phase, Speed and Left are
// the shared state used by synchronized animations.
type Animation struct {
	Flags uint16
	Faces []uint16

	Phase uint8
	Speed uint8
	Left  uint8
}

// Animations is the table of defined animations.
type Animations struct {
	table  []Animation
	active mapset.Set[uint16]
}

func NewAnimations() *Animations {
	return &Animations{
		table:  make([]Animation, MaxAnim),
		active: mapset.New[uint16](),
	}
}

// Define installs the face cycle of an animation.
func (a *Animations) Define(id, flags uint16, faces []uint16) error {
	if id == 0 || id >= MaxAnim {
		return fmt.Errorf("animation id %d out of range", id)
	}
	if len(faces) == 0 {
		return fmt.Errorf("animation %d has no faces", id)
	}
	if len(faces) > 255 {
		return fmt.Errorf("animation %d has %d faces", id, len(faces))
	}
	a.table[id] = Animation{Flags: flags, Faces: append([]uint16(nil), faces...)}
	a.active.Remove(id)
	return nil
}

// Get returns a defined animation or nil.
func (a *Animations) Get(id uint16) *Animation {
	id &= AnimMask
	if id == 0 || len(a.table[id].Faces) == 0 {
		return nil
	}
	return &a.table[id]
}

// Active returns the number of synchronized animations being advanced.
func (a *Animations) Active() int { return a.active.Size() }

// start resolves an animation word into the head state of a layer showing
// it and the face to display first. Undefined animations yield face 0.
func (a *Animations) start(word uint16, speed uint8, rng *rand.Rand) (Head, uint16) {
	id := word & AnimMask
	anim := a.Get(id)
	if anim == nil {
		return Head{}, 0
	}
	h := Head{Animation: id, Speed: speed}
	n := len(anim.Faces)
	switch word & AnimFlagsMask {
	case AnimSync:
		anim.Speed = speed
		if int(anim.Phase) >= n {
			anim.Phase = 0
		}
		h.Phase = anim.Phase
		h.Left = anim.Left
		h.Sync = true
		a.active.Put(id)
	case AnimRandom:
		h.Phase = uint8(rng.IntN(n))
		if speed > 0 {
			h.Left = uint8(rng.IntN(int(speed)))
		}
	}
	return h, anim.Faces[h.Phase]
}

// advance moves every synchronized animation on by one tick. Animations
// with speed 0 hold their frame.
func (a *Animations) advance() {
	a.active.Each(func(id uint16) {
		anim := &a.table[id]
		if len(anim.Faces) == 0 || anim.Speed == 0 {
			return
		}
		anim.Left++
		if anim.Left >= anim.Speed {
			anim.Left = 0
			anim.Phase = uint8((int(anim.Phase) + 1) % len(anim.Faces))
		}
	})
}

// step moves the animation of a head on by one tick and reports the face to
// show when the frame changed.
func (a *Animations) step(h *Head) (uint16, bool) {
	anim := a.Get(h.Animation)
	if anim == nil {
		return 0, false
	}
	n := len(anim.Faces)
	if h.Sync {
		if h.Phase == anim.Phase && int(h.Phase) < n {
			return 0, false
		}
		h.Phase = anim.Phase % uint8(n)
		h.Left = anim.Left
		return anim.Faces[h.Phase], true
	}
	h.Left++
	if h.Left < h.Speed {
		return 0, false
	}
	h.Left = 0
	h.Phase = uint8((int(h.Phase) + 1) % n)
	return anim.Faces[h.Phase], true
}

// Tick advances all animations shown in the view and in the side table by
// one server tick. Fog tiles are frozen.
func (s *Store) Tick() {
	s.anims.advance()
	for x := 0; x < s.width; x++ {
		for y := 0; y < s.height; y++ {
			ax, ay := s.origin.X+x, s.origin.Y+y
			c := s.at(ax, ay)
			if c.Fog {
				continue
			}
			for layer := 0; layer < MaxLayers; layer++ {
				h := &c.Heads[layer]
				if h.Animation == 0 || h.Face == 0 {
					continue
				}
				if face, ok := s.anims.step(h); ok {
					s.expandSet(ax, ay, layer, face, false)
				}
			}
		}
	}
	for _, i := range s.big.anchors() {
		b := &s.big.cells[i]
		if b.head.Animation == 0 {
			continue
		}
		if face, ok := s.anims.step(&b.head); ok {
			s.bigSet(int(b.x), int(b.y), int(b.layer), face, false)
		}
	}
}
