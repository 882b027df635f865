package mapcmd

const (
	extNoRedraw   = 0x01
	extSmooth     = 0x02
	extMoreBits   = 0x80
	maxExtMaskLen = 8
)

// decodeExtended decodes a mapextended message. It reports whether the
// server asked for the redraw to wait for the next map message.
func decodeExtended(data []byte, emit func(Op) error) (bool, error) {
	r := reader{data: data}
	mask, ok := r.u8()
	if !ok {
		return false, protoErr(FormatExtended, 0, "header", errTruncated)
	}
	noRedraw := mask&extNoRedraw != 0
	smooth := mask&extSmooth != 0
	for i := 0; mask&extMoreBits != 0; i++ {
		if i == maxExtMaskLen {
			return noRedraw, protoErr(FormatExtended, r.pos, "header", errBadLength)
		}
		if mask, ok = r.u8(); !ok {
			return noRedraw, protoErr(FormatExtended, r.pos, "header", errTruncated)
		}
	}
	stride, ok := r.u8()
	if !ok {
		return noRedraw, protoErr(FormatExtended, r.pos, "header", errTruncated)
	}
	if smooth && stride < 1 {
		return noRedraw, protoErr(FormatExtended, r.pos-1, "header", errBadLength)
	}

	for r.remaining() > 0 {
		start := r.pos
		w, ok := r.u16()
		if !ok {
			return noRedraw, protoErr(FormatExtended, start, "coord", errTruncated)
		}
		x, y := int(w>>10&0x3f), int(w>>4&0x3f)
		for bit := LegacyLayers - 1; bit >= 0; bit-- {
			if w&(1<<bit) == 0 {
				continue
			}
			entry := r.pos
			if !r.skip(int(stride)) {
				return noRedraw, protoErr(FormatExtended, entry, "entry", errTruncated)
			}
			if !smooth {
				continue
			}
			op := Op{Kind: OpSetSmooth, X: x, Y: y, Layer: LegacyLayers - 1 - bit, Value: r.data[entry]}
			if err := emit(op); err != nil {
				return noRedraw, err
			}
		}
	}
	return noRedraw, nil
}
