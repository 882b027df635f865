package mapcmd

import (
	"encoding/binary"

	"cfclient/mapdata"
)

const (
	// Map2CoordOffset biases map2 coordinates so that tiles left of and
	// above the view can be addressed.
	Map2CoordOffset = 15

	map2Scroll    = 0x1
	map2Clear     = 0x0
	map2Darkness  = 0x1
	map2LayerBase = 0x10
	map2TypeMask  = 0x1f
	map2End       = 0xff
)

// decodeMap2 decodes a map2 message. A coordinate word with the scroll bit
// set scrolls the view; otherwise a run of sub-records for that tile
// follows, closed by the end marker. Unknown sub-record types are skipped by
// their length.
func (d *Decoder) decodeMap2(data []byte, emit func(Op) error) error {
	r := reader{data: data}
	for r.remaining() > 0 {
		start := r.pos
		w, ok := r.u16()
		if !ok {
			return protoErr(FormatGeneralized, start, "coord", errTruncated)
		}
		x := int(w>>10&0x3f) - Map2CoordOffset
		y := int(w>>4&0x3f) - Map2CoordOffset
		if w&map2Scroll != 0 {
			if err := emit(Op{Kind: OpScroll, X: x, Y: y}); err != nil {
				return err
			}
			continue
		}
		if x < 0 || x >= mapdata.MaxView || y < 0 || y >= mapdata.MaxView {
			return protoErr(FormatGeneralized, start, "coord", errCoord)
		}
		if err := emit(Op{Kind: OpBeginTile, X: x, Y: y}); err != nil {
			return err
		}
		if err := d.decodeMap2Tile(&r, x, y, emit); err != nil {
			return err
		}
	}
	return nil
}

func (d *Decoder) decodeMap2Tile(r *reader, x, y int, emit func(Op) error) error {
	for {
		start := r.pos
		t, ok := r.u8()
		if !ok {
			return protoErr(FormatGeneralized, start, "tile", errMissingEnd)
		}
		if t == map2End {
			return emit(Op{Kind: OpEndTile, X: x, Y: y})
		}
		n := int(t >> 5)
		typ := t & map2TypeMask
		if r.remaining() < n {
			return protoErr(FormatGeneralized, start, "sub-record", errTruncated)
		}
		body := r.data[r.pos : r.pos+n]
		r.pos += n

		switch {
		case typ == map2Clear:
			if err := emit(Op{Kind: OpClearTile, X: x, Y: y}); err != nil {
				return err
			}
		case typ == map2Darkness:
			if n < 1 {
				d.warn.printf("map2: darkness at offset %d: %v", start, errBadLength)
				continue
			}
			if err := emit(Op{Kind: OpSetDarkness, X: x, Y: y, Value: body[0]}); err != nil {
				return err
			}
		case typ >= map2LayerBase:
			layer := int(typ - map2LayerBase)
			if layer >= mapdata.MaxLayers {
				return protoErr(FormatGeneralized, start, "layer", errLayer)
			}
			if n < 2 {
				d.warn.printf("map2: layer %d at offset %d: %v", layer, start, errBadLength)
				continue
			}
			if err := d.emitLayer(x, y, layer, body, emit); err != nil {
				return err
			}
		default:
			d.warn.printf("map2: skipping sub-record type %#x len %d at offset %d", typ, n, start)
		}
	}
}

// emitLayer handles a layer sub-record: a face or animation word, then an
// optional byte that is the animation speed for animations and smoothing
// otherwise, then an optional smoothing byte.
func (d *Decoder) emitLayer(x, y, layer int, body []byte, emit func(Op) error) error {
	face := binary.BigEndian.Uint16(body)
	anim := face&mapdata.FaceIsAnim != 0
	if !anim {
		if err := emit(Op{Kind: OpSetFace, X: x, Y: y, Layer: layer, Face: face}); err != nil {
			return err
		}
	}
	if len(body) > 2 {
		if anim {
			if err := emit(Op{Kind: OpSetAnim, X: x, Y: y, Layer: layer, Face: face, Value: body[2]}); err != nil {
				return err
			}
		} else if err := emit(Op{Kind: OpSetSmooth, X: x, Y: y, Layer: layer, Value: body[2]}); err != nil {
			return err
		}
	} else if anim {
		d.warn.printf("map2: animation %#x without speed at %d,%d", face, x, y)
	}
	if len(body) > 3 {
		return emit(Op{Kind: OpSetSmooth, X: x, Y: y, Layer: layer, Value: body[3]})
	}
	return nil
}
