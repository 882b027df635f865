// Package mapcmd decodes the server's map commands into map store updates.
package mapcmd

import (
	"fmt"

	"cfclient/mapdata"
)

// Format selects one of the map wire encodings.
type Format uint8

const (
	// FormatLegacy is the fixed three layer encoding (map1, map1a).
	FormatLegacy Format = iota
	// FormatGeneralized is the layered sub-record encoding (map2).
	FormatGeneralized
	// FormatExtended is the smoothing sideband (mapextended).
	FormatExtended
)

func (f Format) String() string {
	switch f {
	case FormatLegacy:
		return "map1a"
	case FormatGeneralized:
		return "map2"
	case FormatExtended:
		return "mapextended"
	}
	return fmt.Sprintf("format(%d)", uint8(f))
}

// OpKind is the kind of a decoded map update.
type OpKind uint8

const (
	OpBeginTile OpKind = iota
	OpSetFace
	OpSetAnim
	OpClearTile
	OpSetDarkness
	OpSetSmooth
	OpEndTile
	OpScroll
)

var opNames = [...]string{"begin", "face", "anim", "clear", "darkness", "smooth", "end", "scroll"}

func (k OpKind) String() string {
	if int(k) < len(opNames) {
		return opNames[k]
	}
	return fmt.Sprintf("op(%d)", uint8(k))
}

// Op is one normalized map update. For OpScroll X and Y hold the scroll
// delta. Face carries the animation word for OpSetAnim. Value is the
// darkness, smoothing level or animation speed.
type Op struct {
	Kind  OpKind
	X, Y  int
	Layer int
	Face  uint16
	Value uint8
}

func (o Op) String() string {
	switch o.Kind {
	case OpSetFace, OpSetAnim:
		return fmt.Sprintf("%v %d,%d/%d %d:%d", o.Kind, o.X, o.Y, o.Layer, o.Face, o.Value)
	case OpSetSmooth:
		return fmt.Sprintf("%v %d,%d/%d %d", o.Kind, o.X, o.Y, o.Layer, o.Value)
	case OpSetDarkness:
		return fmt.Sprintf("%v %d,%d %d", o.Kind, o.X, o.Y, o.Value)
	}
	return fmt.Sprintf("%v %d,%d", o.Kind, o.X, o.Y)
}

// apply performs op on the store.
func apply(st *mapdata.Store, op Op) error {
	switch op.Kind {
	case OpBeginTile:
		return st.BeginTile(op.X, op.Y)
	case OpSetFace:
		return st.SetFace(op.X, op.Y, op.Layer, op.Face)
	case OpSetAnim:
		return st.SetAnim(op.X, op.Y, op.Layer, op.Face, op.Value)
	case OpClearTile:
		return st.ClearTile(op.X, op.Y)
	case OpSetDarkness:
		return st.SetDarkness(op.X, op.Y, op.Value)
	case OpSetSmooth:
		return st.SetSmooth(op.X, op.Y, op.Layer, op.Value)
	case OpEndTile:
		return st.EndTile(op.X, op.Y)
	case OpScroll:
		st.Scroll(op.X, op.Y)
		return nil
	}
	return fmt.Errorf("unknown op %v", op.Kind)
}
