package main

import (
	"context"
	"encoding/binary"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func testSettings() Settings {
	s := defaultSettings
	s.FogSize = 256
	s.ViewWidth, s.ViewHeight = 11, 11
	s.Jobs = 2
	return s
}

func animFrame(id, flags uint16, faces ...uint16) []byte {
	m := []byte("anim ")
	m = binary.BigEndian.AppendUint16(m, id)
	m = binary.BigEndian.AppendUint16(m, flags)
	for _, f := range faces {
		m = binary.BigEndian.AppendUint16(m, f)
	}
	return m
}

func writeRecording(t *testing.T, name string, frames ...[]byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := saveRecording(path, frames); err != nil {
		t.Fatalf("save: %v", err)
	}
	return path
}

func TestReplayFileReport(t *testing.T) {
	bad := map2Face(1, 1, 3)
	path := writeRecording(t, "a.cfrec",
		[]byte("setup mapsize 9x9"),
		[]byte("newmap"),
		map2Face(2, 2, 5),
		[]byte("drawinfo 0 welcome"),
		bad[:len(bad)-1],
		[]byte("map_scroll 1 0"),
	)
	rep := replayFile(context.Background(), path, testSettings(), true)
	if rep.Err != nil {
		t.Fatalf("replay: %v", rep.Err)
	}
	if rep.Frames != 6 || rep.Skipped != 1 || rep.Errors != 1 {
		t.Fatalf("got frames %d skipped %d errors %d", rep.Frames, rep.Skipped, rep.Errors)
	}
	if rep.Map.Messages != 2 || rep.Map.Errors != 1 {
		t.Fatalf("got map stats %+v", rep.Map)
	}
	if rep.NewMaps != 2 || rep.Scrolls != 1 {
		t.Fatalf("got %d full redraws %d scrolls", rep.NewMaps, rep.Scrolls)
	}
	if w, h := rep.session.Store.ViewSize(); w != 9 || h != 9 {
		t.Fatalf("got view %dx%d", w, h)
	}
	v, err := rep.session.Store.QueryCell(1, 2, 0)
	if err != nil || v.Face != 5 {
		t.Fatalf("scrolled face: got %+v %v", v, err)
	}
	if len(rep.Digest) != 64 {
		t.Fatalf("got digest %q", rep.Digest)
	}
}

func TestReplayFileDropsSession(t *testing.T) {
	path := writeRecording(t, "a.cfrec", []byte("newmap"))
	if rep := replayFile(context.Background(), path, testSettings(), false); rep.session != nil {
		t.Fatalf("session kept")
	}
}

func TestReplayPacedTicks(t *testing.T) {
	s := testSettings()
	s.ReplayFPS = 200
	m := []byte("map2 ")
	m = binary.BigEndian.AppendUint16(m, uint16(3+15)<<10|uint16(3+15)<<4)
	m = append(m, 3<<5|0x10)
	m = binary.BigEndian.AppendUint16(m, 0x8000|1)
	m = append(m, 1, 0xff)
	path := writeRecording(t, "anim.cfrec", animFrame(1, 0, 10, 11, 12), m)

	rep := replayFile(context.Background(), path, s, true)
	if rep.Err != nil {
		t.Fatalf("replay: %v", rep.Err)
	}
	if rep.Frames != 2 {
		t.Fatalf("got %d frames", rep.Frames)
	}
	v, err := rep.session.Store.QueryCell(3, 3, 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if v.Face != 11 {
		t.Fatalf("got face %d after one paced tick", v.Face)
	}
	if rep.Span != 10*time.Millisecond {
		t.Fatalf("got span %v", rep.Span)
	}
}

func TestReplayCancelled(t *testing.T) {
	s := testSettings()
	s.ReplayFPS = 1
	path := writeRecording(t, "slow.cfrec", []byte("newmap"), []byte("newmap"))
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep := replayFile(ctx, path, s, false)
	if !errors.Is(rep.Err, context.Canceled) {
		t.Fatalf("got %v", rep.Err)
	}
}

func TestReplayFilesOrder(t *testing.T) {
	a := writeRecording(t, "a.cfrec", []byte("newmap"))
	b := writeRecording(t, "b.cfrec", []byte("newmap"), []byte("newmap"))
	missing := filepath.Join(t.TempDir(), "missing.cfrec")
	reports := replayFiles(context.Background(), []string{a, missing, b}, testSettings(), false)
	if len(reports) != 3 {
		t.Fatalf("got %d reports", len(reports))
	}
	if reports[0].Path != a || reports[0].Frames != 1 {
		t.Fatalf("report 0: %+v", reports[0])
	}
	if reports[1].Err == nil {
		t.Fatalf("missing file replayed")
	}
	if reports[2].Frames != 2 || reports[2].NewMaps != 2 {
		t.Fatalf("report 2: %+v", reports[2])
	}
}

func TestReplayPacedUsesRecordedTicks(t *testing.T) {
	s := testSettings()
	s.ReplayFPS = 200
	m := []byte("map2 ")
	m = binary.BigEndian.AppendUint16(m, uint16(3+15)<<10|uint16(3+15)<<4)
	m = append(m, 3<<5|0x10)
	m = binary.BigEndian.AppendUint16(m, 0x8000|1)
	m = append(m, 1, 0xff)
	path := writeRecording(t, "ticks.cfrec",
		animFrame(1, 0, 10, 11, 12, 13, 14),
		m,
		[]byte("tick \x00\x00\x00\x01"),
		[]byte("tick \x00\x00\x00\x02"),
	)

	rep := replayFile(context.Background(), path, s, true)
	if rep.Err != nil {
		t.Fatalf("replay: %v", rep.Err)
	}
	v, err := rep.session.Store.QueryCell(3, 3, 0)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if v.Face != 12 {
		t.Fatalf("got face %d after two recorded ticks", v.Face)
	}
}

func TestHasTicks(t *testing.T) {
	if hasTicks([][]byte{[]byte("newmap"), []byte("ticker 1")}) {
		t.Fatalf("ticker is not tick")
	}
	if !hasTicks([][]byte{[]byte("newmap"), []byte("tick \x00\x00\x00\x01")}) {
		t.Fatalf("tick not found")
	}
}

func TestReplayFilesRecoversPanic(t *testing.T) {
	a := writeRecording(t, "a.cfrec", []byte("newmap"))
	b := writeRecording(t, "b.cfrec", []byte("newmap"))
	saved := replayOne
	replayOne = func(ctx context.Context, path string, s Settings, keep bool) *replayReport {
		if path == a {
			panic("bad frame")
		}
		return saved(ctx, path, s, keep)
	}
	t.Cleanup(func() { replayOne = saved })

	reports := replayFiles(context.Background(), []string{a, b}, testSettings(), false)
	if reports[0].Path != a || reports[0].Err == nil || reports[0].Err.Error() != "panic: bad frame" {
		t.Fatalf("report 0: %+v", reports[0])
	}
	if reports[1].Err != nil || reports[1].Frames != 1 {
		t.Fatalf("report 1: %+v", reports[1])
	}
}
