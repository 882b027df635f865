package main

import (
	"bufio"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
)

// maxFrameLen is the largest payload a 2 byte length prefix can carry.
const maxFrameLen = 0xffff

// readMessage reads a single length-prefixed server message.
func readMessage(r io.Reader) ([]byte, error) {
	var sizeBuf [2]byte
	if _, err := io.ReadFull(r, sizeBuf[:]); err != nil {
		return nil, err
	}
	sz := binary.BigEndian.Uint16(sizeBuf[:])
	buf := make([]byte, sz)
	if _, err := io.ReadFull(r, buf); err != nil {
		logError("read payload: %v", err)
		return nil, io.ErrUnexpectedEOF
	}
	cmd, _ := splitCommand(buf)
	logDebug("recv %s len %d", cmd, len(buf))
	return buf, nil
}

// writeMessage writes a length-prefixed message.
func writeMessage(w io.Writer, payload []byte) error {
	if len(payload) > maxFrameLen {
		return fmt.Errorf("message of %d bytes exceeds frame limit", len(payload))
	}
	var size [2]byte
	binary.BigEndian.PutUint16(size[:], uint16(len(payload)))
	if err := writeAll(w, size[:]); err != nil {
		logError("send size: %v", err)
		return err
	}
	if err := writeAll(w, payload); err != nil {
		logError("send payload: %v", err)
		return err
	}
	return nil
}

// writeAll writes the entirety of data to w, returning an error if the
// write fails or is short.
func writeAll(w io.Writer, data []byte) error {
	for len(data) > 0 {
		n, err := w.Write(data)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		data = data[n:]
	}
	return nil
}

// splitFrames cuts complete messages off the front of a byte stream and
// returns them along with the unconsumed remainder.
func splitFrames(stream []byte) ([][]byte, []byte) {
	var frames [][]byte
	for len(stream) >= 2 {
		sz := int(binary.BigEndian.Uint16(stream))
		if len(stream) < 2+sz {
			break
		}
		frames = append(frames, stream[2:2+sz:2+sz])
		stream = stream[2+sz:]
	}
	return frames, stream
}

// loadRecording reads a .cfrec file: a plain concatenation of
// length-prefixed server messages.
func loadRecording(path string) ([][]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)
	var frames [][]byte
	for {
		m, err := readMessage(r)
		if errors.Is(err, io.EOF) {
			return frames, nil
		}
		if err != nil {
			return frames, fmt.Errorf("%s: frame %d: %w", path, len(frames), err)
		}
		frames = append(frames, m)
	}
}

// saveRecording writes frames as a .cfrec file.
func saveRecording(path string, frames [][]byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	w := bufio.NewWriter(f)
	for _, m := range frames {
		if err := writeMessage(w, m); err != nil {
			f.Close()
			return err
		}
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
