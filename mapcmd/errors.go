package mapcmd

import (
	"errors"
	"fmt"
)

var (
	errTruncated      = errors.New("truncated record")
	errCoord          = errors.New("coordinate out of range")
	errLayer          = errors.New("layer out of range")
	errMissingEnd     = errors.New("missing end of tile")
	errBadLength      = errors.New("bad sub-record length")
	ErrUnknownFormat  = errors.New("unknown map format")
	ErrUnknownCommand = errors.New("unknown command")
)

// ProtocolError describes a malformed map message. Updates decoded before
// the error stay applied.
type ProtocolError struct {
	Format Format
	Offset int
	Stage  string
	Err    error
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("%v: %s at offset %d: %v", e.Format, e.Stage, e.Offset, e.Err)
}

func (e *ProtocolError) Unwrap() error { return e.Err }

// Truncated reports whether err is a record cut short by the end of the
// message.
func Truncated(err error) bool { return errors.Is(err, errTruncated) }

// OutOfRange reports whether err is a coordinate or layer outside the view
// limits.
func OutOfRange(err error) bool {
	return errors.Is(err, errCoord) || errors.Is(err, errLayer)
}

func protoErr(f Format, off int, stage string, err error) error {
	return &ProtocolError{Format: f, Offset: off, Stage: stage, Err: err}
}
