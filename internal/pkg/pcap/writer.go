package pcap

import (
	"fmt"
	"os"
	"sync"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"

	"github.com/endorses/strsearch/internal/pkg/logger"
)

// Config holds PCAP writer configuration.
type Config struct {
	FilePath string          // Path to output PCAP file
	LinkType layers.LinkType // Link layer type (usually Ethernet)
	Snaplen  uint32          // Snapshot length (usually 65536)
}

// DefaultConfig returns default PCAP writer configuration.
func DefaultConfig() Config {
	return Config{
		LinkType: layers.LinkTypeEthernet,
		Snaplen:  65536,
	}
}

// Writer is a simple, synchronous PCAP writer. It is used to save the
// packets whose payloads matched.
type Writer struct {
	config      Config
	file        *os.File
	writer      *pcapgo.Writer
	packetCount int
	mu          sync.Mutex
	closed      bool
}

// NewWriter creates the file and writes the PCAP header.
func NewWriter(config Config) (*Writer, error) {
	if config.FilePath == "" {
		return nil, fmt.Errorf("file path cannot be empty")
	}

	// Apply defaults
	if config.LinkType == 0 {
		config.LinkType = DefaultConfig().LinkType
	}
	if config.Snaplen == 0 {
		config.Snaplen = DefaultConfig().Snaplen
	}

	// #nosec G304 -- Path is supplied by the user on the command line
	file, err := os.Create(config.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create PCAP file: %w", err)
	}

	pcapWriter := pcapgo.NewWriter(file)
	if err := pcapWriter.WriteFileHeader(config.Snaplen, config.LinkType); err != nil {
		if closeErr := file.Close(); closeErr != nil {
			logger.Error("Failed to close file during error cleanup", "error", closeErr, "file", config.FilePath)
		}
		return nil, fmt.Errorf("failed to write PCAP header: %w", err)
	}

	logger.Debug("Created PCAP writer",
		"file", config.FilePath,
		"link_type", config.LinkType,
		"snaplen", config.Snaplen)

	return &Writer{
		config: config,
		file:   file,
		writer: pcapWriter,
	}, nil
}

// WritePacket writes one captured frame.
func (w *Writer) WritePacket(ci gopacket.CaptureInfo, data []byte) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return fmt.Errorf("writer is closed")
	}
	if len(data) == 0 {
		return fmt.Errorf("packet has no data")
	}

	if ci.CaptureLength == 0 {
		ci.CaptureLength = len(data)
	}
	if ci.Length == 0 {
		ci.Length = len(data)
	}

	if err := w.writer.WritePacket(ci, data); err != nil {
		return fmt.Errorf("failed to write packet: %w", err)
	}

	w.packetCount++
	return nil
}

// Close closes the writer and flushes data to disk.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return nil // Already closed
	}

	w.closed = true

	if w.file != nil {
		if err := w.file.Sync(); err != nil {
			logger.Warn("Failed to sync PCAP file", "error", err, "file", w.config.FilePath)
		}
		if err := w.file.Close(); err != nil {
			return fmt.Errorf("failed to close PCAP file: %w", err)
		}
		w.file = nil
	}

	logger.Debug("Closed PCAP writer",
		"file", w.config.FilePath,
		"packets", w.packetCount)

	return nil
}

// PacketCount returns the number of packets written.
func (w *Writer) PacketCount() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.packetCount
}

// FilePath returns the path to the PCAP file.
func (w *Writer) FilePath() string {
	return w.config.FilePath
}
