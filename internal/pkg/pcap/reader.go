// Package pcap reads and writes classic PCAP capture files so packet
// payloads can be searched like any other text.
package pcap

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
)

// Packet is one captured frame that carries an application-layer payload.
type Packet struct {
	// Index is the 0-based position of the frame in the capture, counting
	// frames without payload.
	Index int

	// CaptureInfo is the frame's capture metadata.
	CaptureInfo gopacket.CaptureInfo

	// Data is the raw frame.
	Data []byte

	// Payload is the application-layer payload inside Data.
	Payload []byte

	// Flow describes the endpoints as "src:port->dst:port", or is empty
	// when the frame has no network or transport layer.
	Flow string
}

// Reader yields the payload-bearing packets of a capture.
type Reader struct {
	file    *os.File
	reader  *pcapgo.Reader
	index   int
	skipped int
}

// Open opens a PCAP file for reading.
func Open(path string) (*Reader, error) {
	// #nosec G304 -- Path is supplied by the user on the command line
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	r, err := NewReader(file)
	if err != nil {
		_ = file.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	r.file = file
	return r, nil
}

// NewReader reads a PCAP stream from r.
func NewReader(r io.Reader) (*Reader, error) {
	pr, err := pcapgo.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read PCAP header: %w", err)
	}
	return &Reader{reader: pr}, nil
}

// LinkType returns the capture's link layer type.
func (r *Reader) LinkType() layers.LinkType {
	return r.reader.LinkType()
}

// Next returns the next packet with a non-empty application-layer payload.
// It returns io.EOF after the last packet.
func (r *Reader) Next() (Packet, error) {
	for {
		data, ci, err := r.reader.ReadPacketData()
		if err != nil {
			if errors.Is(err, io.ErrUnexpectedEOF) {
				return Packet{}, fmt.Errorf("truncated capture at packet %d: %w", r.index, err)
			}
			return Packet{}, err
		}
		index := r.index
		r.index++

		// ReadPacketData returns a fresh slice per packet, so decoding may alias it.
		packet := gopacket.NewPacket(data, r.reader.LinkType(), gopacket.DecodeOptions{Lazy: true, NoCopy: true})
		app := packet.ApplicationLayer()
		if app == nil || len(app.Payload()) == 0 {
			r.skipped++
			continue
		}

		return Packet{
			Index:       index,
			CaptureInfo: ci,
			Data:        data,
			Payload:     app.Payload(),
			Flow:        flowOf(packet),
		}, nil
	}
}

// Skipped returns how many frames had no payload so far.
func (r *Reader) Skipped() int {
	return r.skipped
}

// Close closes the underlying file when the reader was created by Open.
func (r *Reader) Close() error {
	if r.file == nil {
		return nil
	}
	err := r.file.Close()
	r.file = nil
	return err
}

func flowOf(packet gopacket.Packet) string {
	network := packet.NetworkLayer()
	transport := packet.TransportLayer()
	if network == nil || transport == nil {
		return ""
	}
	nf, tf := network.NetworkFlow(), transport.TransportFlow()
	return fmt.Sprintf("%s:%s->%s:%s", nf.Src(), tf.Src(), nf.Dst(), tf.Dst())
}
