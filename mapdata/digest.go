package mapdata

import (
	"encoding/binary"
	"slices"

	"golang.org/x/crypto/blake2b"
)

// Digest fingerprints what the view shows: faces, tails, darkness,
// smoothing and fog of every visible tile, plus the side table heads.
// Redraw flags are not included.
func (s *Store) Digest() [32]byte {
	h, _ := blake2b.New256(nil)
	var buf [8]byte
	put := func(v ...uint16) {
		for _, n := range v {
			binary.BigEndian.PutUint16(buf[:2], n)
			h.Write(buf[:2])
		}
	}
	put(uint16(s.width), uint16(s.height))
	for x := 0; x < s.width; x++ {
		for y := 0; y < s.height; y++ {
			c := s.view(x, y)
			fog := uint16(0)
			if c.Fog {
				fog = 1
			}
			dark := uint16(c.Darkness)
			if c.HasDarkness {
				dark |= 0x100
			}
			put(fog, dark)
			for layer := 0; layer < MaxLayers; layer++ {
				hd, t := c.Heads[layer], c.Tails[layer]
				put(hd.Face, uint16(hd.Width)<<8|uint16(hd.Height), hd.Animation,
					t.Face, uint16(t.DX)<<8|uint16(t.DY), uint16(c.Smooth[layer]))
			}
		}
	}
	anchors := s.big.anchors()
	slices.Sort(anchors)
	for _, i := range anchors {
		b := &s.big.cells[i]
		put(uint16(b.x)<<8|uint16(b.y), uint16(b.layer), b.head.Face)
	}
	var sum [32]byte
	copy(sum[:], h.Sum(nil))
	return sum
}
