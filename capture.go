package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// packetSource is the common part of the pcap and pcapng readers.
type packetSource interface {
	ReadPacketData() ([]byte, gopacket.CaptureInfo, error)
	LinkType() layers.LinkType
}

// capture is the server to client byte stream recovered from a packet
// capture, cut into messages.
type capture struct {
	frames      [][]byte
	first, last time.Time
	packets     int
	retransmits int
	// gap is set when packets were missing; reassembly stops there.
	gap bool
}

func (c *capture) span() time.Duration {
	if c.first.IsZero() {
		return 0
	}
	return c.last.Sub(c.first)
}

// seqBefore compares TCP sequence numbers with wraparound.
func seqBefore(a, b uint32) bool {
	return int32(a-b) < 0
}

// loadCapture reads a pcap or pcapng file and reassembles the TCP payload
// sent from port.
func loadCapture(path string, port int) (*capture, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := bufio.NewReader(f)
	magic, err := r.Peek(4)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	var src packetSource
	if magic[0] == 0x0a && magic[1] == 0x0d && magic[2] == 0x0d && magic[3] == 0x0a {
		src, err = pcapgo.NewNgReader(r, pcapgo.DefaultNgReaderOptions)
	} else {
		src, err = pcapgo.NewReader(r)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	c, err := reassemble(src, layers.TCPPort(port))
	if err != nil {
		return c, fmt.Errorf("%s: %w", path, err)
	}
	return c, nil
}

func reassemble(src packetSource, port layers.TCPPort) (*capture, error) {
	c := &capture{}
	var (
		buf     []byte
		next    uint32
		started bool
	)
	for {
		data, ci, err := src.ReadPacketData()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return c, err
		}
		pkt := gopacket.NewPacket(data, src.LinkType(), gopacket.Default)
		l := pkt.Layer(layers.LayerTypeTCP)
		if l == nil {
			continue
		}
		tcp := l.(*layers.TCP)
		if tcp.SrcPort != port {
			continue
		}
		c.packets++
		if c.first.IsZero() {
			c.first = ci.Timestamp
		}
		c.last = ci.Timestamp

		if tcp.SYN {
			next = tcp.Seq + 1
			started = true
			continue
		}
		payload := tcp.Payload
		if len(payload) == 0 {
			continue
		}
		if !started {
			next = tcp.Seq
			started = true
		}
		end := tcp.Seq + uint32(len(payload))
		switch {
		case tcp.Seq == next:
		case seqBefore(tcp.Seq, next):
			if !seqBefore(next, end) {
				c.retransmits++
				continue
			}
			payload = payload[next-tcp.Seq:]
		default:
			logError("capture: missing %d bytes at seq %d, stopping after %d frames", tcp.Seq-next, next, len(c.frames))
			c.gap = true
			return c, nil
		}
		next = end
		buf = append(buf, payload...)
		var frames [][]byte
		frames, buf = splitFrames(buf)
		c.frames = append(c.frames, frames...)
		if len(buf) == 0 {
			buf = nil
		}
	}
	if len(buf) > 0 {
		logDebug("capture: %d trailing bytes of an incomplete message", len(buf))
	}
	return c, nil
}
