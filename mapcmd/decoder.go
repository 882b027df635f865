package mapcmd

import (
	"errors"
	"log"

	"cfclient/mapdata"
)

// Notifier is told when a batch of map updates starts and ends so that a
// renderer can repaint once per batch.
type Notifier interface {
	UpdateBegin()
	UpdateEnd(fullRedraw, scrollHint bool)
}

// NopNotifier ignores notifications.
type NopNotifier struct{}

func (NopNotifier) UpdateBegin()         {}
func (NopNotifier) UpdateEnd(bool, bool) {}

// Stats counts decoder activity.
type Stats struct {
	Messages  int
	Bytes     int
	Ops       int
	Errors    int
	ByFormat  [3]int
	OpsByKind [OpScroll + 1]int
}

// Decoder applies map messages to a store. Updates from one message, and
// from a sideband message that asked to hold the redraw together with the
// map message after it, reach the notifier as a single batch.
type Decoder struct {
	store  *mapdata.Store
	notify Notifier
	warn   *warnLog

	depth int
	held  int
	full  bool
	moved bool

	// Trace, when set, sees every op before it is applied.
	Trace func(Op)

	stats Stats
}

func NewDecoder(st *mapdata.Store, n Notifier, l *log.Logger) *Decoder {
	if n == nil {
		n = NopNotifier{}
	}
	return &Decoder{store: st, notify: n, warn: newWarnLog(l)}
}

// Stats returns a copy of the decoder counters.
func (d *Decoder) Stats() Stats { return d.stats }

// Begin opens a batch. Batches nest; only the outermost pair reaches the
// notifier.
func (d *Decoder) Begin() {
	if d.depth == 0 {
		d.notify.UpdateBegin()
	}
	d.depth++
}

// End closes a batch.
func (d *Decoder) End() {
	if d.depth == 0 {
		return
	}
	d.depth--
	if d.depth == 0 {
		full, moved := d.full, d.moved
		d.full, d.moved = false, false
		d.notify.UpdateEnd(full, moved)
	}
}

// Depth returns the number of open batches.
func (d *Decoder) Depth() int { return d.depth }

// RequestFullRedraw makes the current or next batch end with a full
// redraw.
func (d *Decoder) RequestFullRedraw() { d.full = true }

// RequestScrollHint marks the current or next batch as a scroll.
func (d *Decoder) RequestScrollHint() { d.moved = true }

func (d *Decoder) emit(op Op) error {
	if d.Trace != nil {
		d.Trace(op)
	}
	d.stats.Ops++
	d.stats.OpsByKind[op.Kind]++
	if op.Kind == OpScroll {
		d.moved = true
	}
	return apply(d.store, op)
}

// Apply decodes one map message of format f and applies it. On a malformed
// message the updates decoded so far stay applied and a *ProtocolError is
// returned.
func (d *Decoder) Apply(data []byte, f Format) error {
	if f > FormatExtended {
		d.stats.Errors++
		d.warn.printf("mapcmd: %v: %v", f, ErrUnknownFormat)
		return ErrUnknownFormat
	}
	d.stats.Messages++
	d.stats.Bytes += len(data)
	d.stats.ByFormat[f]++

	d.Begin()
	var err error
	hold := false
	switch f {
	case FormatLegacy:
		err = decodeLegacy(data, d.emit)
	case FormatGeneralized:
		err = d.decodeMap2(data, d.emit)
	case FormatExtended:
		hold, err = decodeExtended(data, d.emit)
	}
	if err != nil {
		d.stats.Errors++
		var pe *ProtocolError
		if !errors.As(err, &pe) {
			err = protoErr(f, len(data), "apply", err)
		}
		d.warn.printf("mapcmd: %v", err)
	}
	if hold {
		d.held++
		return err
	}
	for ; d.held > 0; d.held-- {
		d.End()
	}
	d.End()
	return err
}

// Flush closes batches left open by sideband messages.
func (d *Decoder) Flush() {
	for ; d.held > 0; d.held-- {
		d.End()
	}
}
