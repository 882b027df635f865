package mapdata

import "testing"

func TestDefineAnimation(t *testing.T) {
	a := NewAnimations()
	cases := []struct {
		name  string
		id    uint16
		faces []uint16
		ok    bool
	}{
		{"ok", 5, []uint16{1, 2}, true},
		{"zero id", 0, []uint16{1}, false},
		{"id too large", MaxAnim, []uint16{1}, false},
		{"no faces", 7, nil, false},
	}
	for _, c := range cases {
		err := a.Define(c.id, 0, c.faces)
		if (err == nil) != c.ok {
			t.Errorf("%v: got err %v", c.name, err)
		}
	}
	if a.Get(5) == nil || a.Get(7) != nil {
		t.Fatalf("unexpected table state")
	}
}

func faceAt(t *testing.T, s *Store, x, y, layer int) uint16 {
	t.Helper()
	return query(t, s, x, y, layer).Face
}

func TestNormalAnimationCycles(t *testing.T) {
	s := newTestStore(t, 11, 11, nil)
	s.Animations().Define(5, 0, []uint16{10, 11, 12})
	s.SetAnim(2, 2, 0, 5, 2)

	want := []uint16{10, 10, 11, 11, 12, 12, 10}
	for i, w := range want {
		if got := faceAt(t, s, 2, 2, 0); got != w {
			t.Fatalf("tick %d: got face %d, want %d", i, got, w)
		}
		s.Tick()
	}
}

func TestSyncAnimationsShareFrame(t *testing.T) {
	s := newTestStore(t, 11, 11, nil)
	s.Animations().Define(6, AnimSync, []uint16{20, 21, 22, 23})
	s.SetAnim(1, 1, 0, 6|AnimSync, 1)
	s.Tick()
	s.SetAnim(5, 5, 0, 6|AnimSync, 1)
	if a, b := faceAt(t, s, 1, 1, 0), faceAt(t, s, 5, 5, 0); a != b || a != 21 {
		t.Fatalf("after one tick got %d and %d", a, b)
	}
	for i := 0; i < 5; i++ {
		s.Tick()
		if a, b := faceAt(t, s, 1, 1, 0), faceAt(t, s, 5, 5, 0); a != b {
			t.Fatalf("tick %d: frames diverged %d vs %d", i, a, b)
		}
	}
	if s.Animations().Active() != 1 {
		t.Fatalf("got %d active sync animations", s.Animations().Active())
	}
}

func TestRandomAnimationStartsInRange(t *testing.T) {
	s := newTestStore(t, 11, 11, nil)
	faces := []uint16{30, 31, 32}
	s.Animations().Define(7, AnimRandom, faces)
	for x := 0; x < 11; x++ {
		s.SetAnim(x, 0, 0, 7|AnimRandom, 4)
		v := query(t, s, x, 0, 0)
		if v.Phase < 0 || v.Phase >= len(faces) || v.Face != faces[v.Phase] {
			t.Fatalf("tile %d: got %+v", x, v)
		}
		if h := s.view(x, 0).Heads[0]; h.Left >= 4 {
			t.Fatalf("tile %d: ticks left %d", x, h.Left)
		}
	}
}

func TestFogFreezesAnimation(t *testing.T) {
	s := newTestStore(t, 11, 11, nil)
	s.Animations().Define(5, 0, []uint16{10, 11})
	s.SetAnim(3, 3, 0, 5, 0)
	s.ClearTile(3, 3)
	for i := 0; i < 3; i++ {
		s.Tick()
	}
	if got := faceAt(t, s, 3, 3, 0); got != 10 {
		t.Fatalf("fog tile animated to %d", got)
	}
}

func TestUndefinedAnimationClearsLayer(t *testing.T) {
	s := newTestStore(t, 11, 11, nil)
	s.SetFace(3, 3, 0, 8)
	s.SetAnim(3, 3, 0, 99, 1)
	if got := faceAt(t, s, 3, 3, 0); got != 0 {
		t.Fatalf("got face %d", got)
	}
}

func TestSideTableAnimation(t *testing.T) {
	s := newTestStore(t, 11, 11, FaceTable{40: {2, 2}, 41: {2, 2}})
	s.Animations().Define(9, 0, []uint16{40, 41})
	s.SetAnim(40, 40, 2, 9, 0)
	for i := 0; i < 4; i++ {
		s.Tick()
		if s.BigFaces() != 1 {
			t.Fatalf("tick %d: %d anchors", i, s.BigFaces())
		}
		want := uint16(40)
		if i%2 == 0 {
			want = 41
		}
		v := query(t, s, 39, 39, 2)
		if v.TailFace != want {
			t.Fatalf("tick %d: tail face %d, want %d", i, v.TailFace, want)
		}
	}
}

func TestAnimationFootprintChange(t *testing.T) {
	s := newTestStore(t, 11, 11, FaceTable{50: {2, 2}})
	s.Animations().Define(4, 0, []uint16{50, 51})
	s.SetAnim(5, 5, 0, 4, 0)
	if v := query(t, s, 4, 4, 0); v.TailFace != 50 {
		t.Fatalf("tail face %d", v.TailFace)
	}
	s.Tick()
	if v := query(t, s, 4, 4, 0); v.TailFace != 0 {
		t.Fatalf("tail of larger frame kept: %+v", v)
	}
	v := query(t, s, 5, 5, 0)
	if v.Face != 51 || v.Width != 1 || v.Animation != 4 {
		t.Fatalf("got %+v", v)
	}
	s.Tick()
	if v := query(t, s, 4, 4, 0); v.TailFace != 50 {
		t.Fatalf("tail not restamped: %+v", v)
	}
}

func TestSyncAnimationSpeedZeroHolds(t *testing.T) {
	s := newTestStore(t, 11, 11, nil)
	s.Animations().Define(7, AnimSync, []uint16{30, 31, 32})
	s.SetAnim(4, 4, 0, 7|AnimSync, 0)
	for i := 0; i < 5; i++ {
		s.Tick()
		if got := faceAt(t, s, 4, 4, 0); got != 30 {
			t.Fatalf("tick %d: got face %d", i, got)
		}
	}
}
