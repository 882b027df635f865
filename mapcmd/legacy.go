package mapcmd

import "encoding/binary"

// LegacyLayers is the number of face layers of the legacy encoding.
const LegacyLayers = 3

const legacyDarkness = 0x8

type reader struct {
	data []byte
	pos  int
}

func (r *reader) remaining() int { return len(r.data) - r.pos }

func (r *reader) u8() (byte, bool) {
	if r.pos >= len(r.data) {
		return 0, false
	}
	b := r.data[r.pos]
	r.pos++
	return b, true
}

func (r *reader) u16() (uint16, bool) {
	if r.pos+2 > len(r.data) {
		return 0, false
	}
	v := binary.BigEndian.Uint16(r.data[r.pos:])
	r.pos += 2
	return v, true
}

func (r *reader) skip(n int) bool {
	if r.pos+n > len(r.data) {
		return false
	}
	r.pos += n
	return true
}

// decodeLegacy decodes a map1a message. Each record is a coordinate word
// x:6 y:6 mask:4 followed by an optional darkness byte and one face per
// layer bit, layer 0 first. A record is emitted only once complete. Unlike
// map2 a record never closes the tile, so zeroing every face leaves a
// blank visible tile rather than fog.
func decodeLegacy(data []byte, emit func(Op) error) error {
	r := reader{data: data}
	var buf [LegacyLayers + 2]Op
	for r.remaining() > 0 {
		start := r.pos
		w, ok := r.u16()
		if !ok {
			return protoErr(FormatLegacy, start, "coord", errTruncated)
		}
		x, y := int(w>>10&0x3f), int(w>>4&0x3f)
		mask := w & 0xf
		if mask == 0 {
			if err := emit(Op{Kind: OpClearTile, X: x, Y: y}); err != nil {
				return err
			}
			continue
		}

		ops := append(buf[:0], Op{Kind: OpBeginTile, X: x, Y: y})
		var dark *Op
		if mask&legacyDarkness != 0 {
			d, ok := r.u8()
			if !ok {
				return protoErr(FormatLegacy, start, "darkness", errTruncated)
			}
			dark = &Op{Kind: OpSetDarkness, X: x, Y: y, Value: d}
		}
		for bit := LegacyLayers - 1; bit >= 0; bit-- {
			if mask&(1<<bit) == 0 {
				continue
			}
			face, ok := r.u16()
			if !ok {
				return protoErr(FormatLegacy, start, "face", errTruncated)
			}
			ops = append(ops, Op{Kind: OpSetFace, X: x, Y: y, Layer: LegacyLayers - 1 - bit, Face: face})
		}
		if dark != nil {
			ops = append(ops, *dark)
		}
		for _, op := range ops {
			if err := emit(op); err != nil {
				return err
			}
		}
	}
	return nil
}
