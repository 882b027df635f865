package mapcmd

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"log"
	"math/rand/v2"
	"strconv"
	"strings"
	"time"

	"cfclient/mapdata"
)

// Options configures a Session.
type Options struct {
	ViewWidth, ViewHeight int
	FogSize               int
	Sizer                 mapdata.FaceSizer
	Notifier              Notifier
	Logger                *log.Logger
	PixelLighting         bool
	MapScroll             bool
	// Seed fixes random animation phases; zero uses the clock.
	Seed uint64
}

// Session owns the map state of one server connection.
type Session struct {
	Store   *mapdata.Store
	Anims   *mapdata.Animations
	Smooth  *mapdata.SmoothTable
	Decoder *Decoder

	warn  *warnLog
	ticks uint32
	cmds  map[string]int
}

func NewSession(opts Options) (*Session, error) {
	seed := opts.Seed
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	anims := mapdata.NewAnimations()
	st, err := mapdata.New(mapdata.Config{
		FogSize:       opts.FogSize,
		Sizer:         opts.Sizer,
		Animations:    anims,
		PixelLighting: opts.PixelLighting,
		MapScroll:     opts.MapScroll,
		Rand:          rand.New(rand.NewPCG(seed, seed>>1|1)),
	})
	if err != nil {
		return nil, err
	}
	w, h := opts.ViewWidth, opts.ViewHeight
	if w == 0 || h == 0 {
		w, h = 11, 11
	}
	if err := st.SetViewSize(w, h); err != nil {
		return nil, err
	}
	return &Session{
		Store:   st,
		Anims:   anims,
		Smooth:  mapdata.NewSmoothTable(),
		Decoder: NewDecoder(st, opts.Notifier, opts.Logger),
		warn:    newWarnLog(opts.Logger),
		cmds:    make(map[string]int),
	}, nil
}

// Close drops all map state.
func (s *Session) Close() {
	s.Decoder.Flush()
	s.Store.Reset()
	s.Smooth.Reset()
}

// Ticks returns the last server tick seen.
func (s *Session) Ticks() uint32 { return s.ticks }

// Commands returns how often each command was handled.
func (s *Session) Commands() map[string]int { return s.cmds }

// Tick advances animations by one tick inside its own batch.
func (s *Session) Tick() {
	s.Decoder.Begin()
	s.Store.Tick()
	s.Decoder.End()
}

// Handle processes one server command. Commands unrelated to the map return
// ErrUnknownCommand.
func (s *Session) Handle(cmd string, data []byte) error {
	s.cmds[cmd]++
	switch cmd {
	case "map1", "map1a":
		return s.Decoder.Apply(data, FormatLegacy)
	case "map2":
		return s.Decoder.Apply(data, FormatGeneralized)
	case "mapextended":
		return s.Decoder.Apply(data, FormatExtended)
	case "newmap":
		s.newMap()
		return nil
	case "map_scroll":
		return s.mapScroll(data)
	case "anim":
		return s.defineAnim(data)
	case "smooth":
		return s.smooth(data)
	case "tick":
		return s.tick(data)
	case "setup":
		return s.setup(data)
	}
	return ErrUnknownCommand
}

func (s *Session) newMap() {
	s.Decoder.Begin()
	s.Store.NewMap()
	s.Decoder.RequestFullRedraw()
	s.Decoder.End()
}

// mapScroll handles the ASCII "dx dy" scroll command.
func (s *Session) mapScroll(data []byte) error {
	fields := strings.Fields(string(data))
	if len(fields) != 2 {
		return fmt.Errorf("map_scroll: bad payload %q", data)
	}
	dx, err := strconv.Atoi(fields[0])
	if err != nil {
		return fmt.Errorf("map_scroll: %w", err)
	}
	dy, err := strconv.Atoi(fields[1])
	if err != nil {
		return fmt.Errorf("map_scroll: %w", err)
	}
	s.Decoder.Begin()
	s.Store.Scroll(dx, dy)
	s.Decoder.RequestScrollHint()
	s.Decoder.End()
	return nil
}

// defineAnim handles an animation definition: id, flags, then the faces.
func (s *Session) defineAnim(data []byte) error {
	if len(data) < 6 || len(data)%2 != 0 {
		return fmt.Errorf("anim: bad length %d", len(data))
	}
	id := binary.BigEndian.Uint16(data)
	flags := binary.BigEndian.Uint16(data[2:])
	faces := make([]uint16, 0, (len(data)-4)/2)
	for i := 4; i+1 < len(data); i += 2 {
		faces = append(faces, binary.BigEndian.Uint16(data[i:]))
	}
	if err := s.Anims.Define(id, flags, faces); err != nil {
		s.warn.printf("anim: %v", err)
		return err
	}
	return nil
}

// smooth handles a face to smoothing face mapping.
func (s *Session) smooth(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("smooth: bad length %d", len(data))
	}
	s.Smooth.Insert(binary.BigEndian.Uint16(data), binary.BigEndian.Uint16(data[2:]))
	return nil
}

func (s *Session) tick(data []byte) error {
	if len(data) < 4 {
		return fmt.Errorf("tick: bad length %d", len(data))
	}
	s.ticks = binary.BigEndian.Uint32(data)
	s.Tick()
	return nil
}

// setup applies the negotiated settings that concern the map. Only the
// view size is used.
func (s *Session) setup(data []byte) error {
	fields := bytes.Fields(data)
	for i := 0; i+1 < len(fields); i += 2 {
		if string(fields[i]) != "mapsize" {
			continue
		}
		var w, h int
		if _, err := fmt.Sscanf(string(fields[i+1]), "%dx%d", &w, &h); err != nil {
			s.warn.printf("setup: mapsize %q: %v", fields[i+1], err)
			continue
		}
		s.Decoder.Begin()
		err := s.Store.SetViewSize(w, h)
		s.Decoder.RequestFullRedraw()
		s.Decoder.End()
		if err != nil {
			return fmt.Errorf("setup: %w", err)
		}
	}
	return nil
}
