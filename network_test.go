package main

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"
)

func TestReadWriteMessage(t *testing.T) {
	var buf bytes.Buffer
	msgs := [][]byte{[]byte("newmap"), []byte("map2 \x01\x02"), {}}
	for _, m := range msgs {
		if err := writeMessage(&buf, m); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	for i, want := range msgs {
		got, err := readMessage(&buf)
		if err != nil {
			t.Fatalf("read %d: %v", i, err)
		}
		if !bytes.Equal(got, want) {
			t.Fatalf("read %d: got %q want %q", i, got, want)
		}
	}
	if _, err := readMessage(&buf); !errors.Is(err, io.EOF) {
		t.Fatalf("got %v at end of stream", err)
	}
}

func TestReadMessageTruncated(t *testing.T) {
	r := bytes.NewReader([]byte{0, 5, 'm', 'a'})
	if _, err := readMessage(r); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Fatalf("got %v", err)
	}
}

func TestWriteMessageTooLarge(t *testing.T) {
	if err := writeMessage(io.Discard, make([]byte, maxFrameLen+1)); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSplitFrames(t *testing.T) {
	stream := []byte{0, 3, 'a', 'b', 'c', 0, 1, 'x', 0, 4, 'p'}
	frames, rest := splitFrames(stream)
	if len(frames) != 2 || string(frames[0]) != "abc" || string(frames[1]) != "x" {
		t.Fatalf("got frames %q", frames)
	}
	if !bytes.Equal(rest, []byte{0, 4, 'p'}) {
		t.Fatalf("got rest % x", rest)
	}
	frames, rest = splitFrames([]byte{0})
	if len(frames) != 0 || len(rest) != 1 {
		t.Fatalf("got %q % x", frames, rest)
	}
}

func TestRecordingRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.cfrec")
	frames := [][]byte{[]byte("newmap"), []byte("map_scroll 1 0")}
	if err := saveRecording(path, frames); err != nil {
		t.Fatalf("save: %v", err)
	}
	got, err := loadRecording(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got) != 2 || string(got[1]) != "map_scroll 1 0" {
		t.Fatalf("got %q", got)
	}
}

func TestLoadRecordingTruncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cut.cfrec")
	if err := os.WriteFile(path, []byte{0, 6, 'n', 'e', 'w', 'm', 'a', 'p', 0, 9, 'x'}, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	frames, err := loadRecording(path)
	if err == nil {
		t.Fatalf("expected error")
	}
	if len(frames) != 1 {
		t.Fatalf("got %d frames before the error", len(frames))
	}
}
