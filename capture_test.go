package main

import (
	"context"
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

const (
	testServerPort = 13327
	testClientPort = 40000
)

type testSegment struct {
	seq     uint32
	payload []byte
	syn     bool
	toSrv   bool
}

func tcpPacket(t *testing.T, s testSegment) []byte {
	t.Helper()
	srcIP, dstIP := net.IP{10, 0, 0, 1}, net.IP{10, 0, 0, 2}
	srcPort, dstPort := layers.TCPPort(testServerPort), layers.TCPPort(testClientPort)
	if s.toSrv {
		srcIP, dstIP = dstIP, srcIP
		srcPort, dstPort = dstPort, srcPort
	}
	eth := &layers.Ethernet{
		SrcMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 5},
		DstMAC:       net.HardwareAddr{0, 1, 2, 3, 4, 6},
		EthernetType: layers.EthernetTypeIPv4,
	}
	ip := &layers.IPv4{
		Version:  4,
		IHL:      5,
		TTL:      64,
		Protocol: layers.IPProtocolTCP,
		SrcIP:    srcIP,
		DstIP:    dstIP,
	}
	tcp := &layers.TCP{
		SrcPort: srcPort,
		DstPort: dstPort,
		Seq:     s.seq,
		SYN:     s.syn,
		ACK:     !s.syn,
		Window:  65535,
	}
	if err := tcp.SetNetworkLayerForChecksum(ip); err != nil {
		t.Fatalf("checksum layer: %v", err)
	}
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, tcp, gopacket.Payload(s.payload)); err != nil {
		t.Fatalf("serialize: %v", err)
	}
	return buf.Bytes()
}

// writeCapture writes the segments one second apart to a pcap file.
func writeCapture(t *testing.T, segs []testSegment) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "session.pcap")
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	defer f.Close()
	w := pcapgo.NewWriter(f)
	if err := w.WriteFileHeader(65536, layers.LinkTypeEthernet); err != nil {
		t.Fatalf("header: %v", err)
	}
	base := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	for i, s := range segs {
		data := tcpPacket(t, s)
		ci := gopacket.CaptureInfo{
			Timestamp:     base.Add(time.Duration(i) * time.Second),
			CaptureLength: len(data),
			Length:        len(data),
		}
		if err := w.WritePacket(ci, data); err != nil {
			t.Fatalf("write packet: %v", err)
		}
	}
	return path
}

func framed(msgs ...[]byte) []byte {
	var out []byte
	for _, m := range msgs {
		out = append(out, byte(len(m)>>8), byte(len(m)))
		out = append(out, m...)
	}
	return out
}

func TestLoadCaptureReassembles(t *testing.T) {
	stream := framed(map2Face(1, 1, 7), []byte("newmap"))
	const isn = 1000
	path := writeCapture(t, []testSegment{
		{seq: isn, syn: true},
		{seq: 5000, payload: []byte("setup"), toSrv: true},
		{seq: isn + 1, payload: stream[:5]},
		{seq: isn + 1, payload: stream[:5]},
		{seq: isn + 4, payload: stream[3:9]},
		{seq: isn + 10, payload: stream[9:]},
	})
	c, err := loadCapture(path, testServerPort)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(c.frames) != 2 || string(c.frames[1]) != "newmap" {
		t.Fatalf("got frames %q", c.frames)
	}
	if c.retransmits != 1 {
		t.Fatalf("got %d retransmits", c.retransmits)
	}
	if c.gap {
		t.Fatalf("unexpected gap")
	}
	if c.packets != 5 {
		t.Fatalf("got %d server packets", c.packets)
	}
	if c.span() != 5*time.Second {
		t.Fatalf("got span %v", c.span())
	}
}

func TestLoadCaptureStopsAtGap(t *testing.T) {
	stream := framed([]byte("newmap"), []byte("map_scroll 1 0"))
	path := writeCapture(t, []testSegment{
		{seq: 1, payload: stream[:8]},
		{seq: 1 + 12, payload: stream[12:]},
	})
	c, err := loadCapture(path, testServerPort)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !c.gap {
		t.Fatalf("gap not detected")
	}
	if len(c.frames) != 1 || string(c.frames[0]) != "newmap" {
		t.Fatalf("got frames %q", c.frames)
	}
}

func TestLoadCaptureNotPcap(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.pcap")
	if err := os.WriteFile(path, []byte("not a capture file"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := loadCapture(path, testServerPort); err == nil {
		t.Fatalf("expected error")
	}
}

func TestSeqBefore(t *testing.T) {
	if !seqBefore(1, 2) || seqBefore(2, 1) || seqBefore(3, 3) {
		t.Fatalf("plain comparison wrong")
	}
	if !seqBefore(0xfffffff0, 0x10) {
		t.Fatalf("wraparound comparison wrong")
	}
}

func TestReplayCapture(t *testing.T) {
	stream := framed(map2Face(4, 5, 9), []byte("tick \x00\x00\x00\x01"))
	path := writeCapture(t, []testSegment{
		{seq: 77, payload: stream},
	})
	s := defaultSettings
	s.FogSize = 256
	s.ViewWidth, s.ViewHeight = 11, 11
	rep := replayFile(context.Background(), path, s, true)
	if rep.Err != nil {
		t.Fatalf("replay: %v", rep.Err)
	}
	if rep.Frames != 2 || rep.Map.Messages != 1 {
		t.Fatalf("got %d frames %d map messages", rep.Frames, rep.Map.Messages)
	}
	v, err := rep.session.Store.QueryCell(4, 5, 0)
	if err != nil || v.Face != 9 {
		t.Fatalf("got %+v %v", v, err)
	}
	if rep.session.Ticks() != 1 {
		t.Fatalf("got tick %d", rep.session.Ticks())
	}
}
