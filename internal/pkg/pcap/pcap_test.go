package pcap

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/google/gopacket/pcapgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serializeFrame(t *testing.T, payload []byte, tcp bool) []byte {
	t.Helper()
	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{
		FixLengths:       true,
		ComputeChecksums: true,
	}

	ethLayer := &layers.Ethernet{
		SrcMAC:       []byte{0x00, 0x11, 0x22, 0x33, 0x44, 0x55},
		DstMAC:       []byte{0x66, 0x77, 0x88, 0x99, 0xaa, 0xbb},
		EthernetType: layers.EthernetTypeIPv4,
	}

	ipLayer := &layers.IPv4{
		Version: 4,
		IHL:     5,
		TTL:     64,
		SrcIP:   []byte{192, 168, 1, 1},
		DstIP:   []byte{192, 168, 1, 2},
	}

	var err error
	if tcp {
		ipLayer.Protocol = layers.IPProtocolTCP
		tcpLayer := &layers.TCP{SrcPort: 50123, DstPort: 50124, SYN: true, Window: 1024}
		require.NoError(t, tcpLayer.SetNetworkLayerForChecksum(ipLayer))
		if len(payload) == 0 {
			err = gopacket.SerializeLayers(buf, opts, ethLayer, ipLayer, tcpLayer)
		} else {
			err = gopacket.SerializeLayers(buf, opts, ethLayer, ipLayer, tcpLayer, gopacket.Payload(payload))
		}
	} else {
		ipLayer.Protocol = layers.IPProtocolUDP
		udpLayer := &layers.UDP{SrcPort: 50123, DstPort: 50124}
		require.NoError(t, udpLayer.SetNetworkLayerForChecksum(ipLayer))
		err = gopacket.SerializeLayers(buf, opts, ethLayer, ipLayer, udpLayer, gopacket.Payload(payload))
	}
	require.NoError(t, err)
	return buf.Bytes()
}

// writeCapture writes a capture with two UDP payloads around a TCP SYN.
func writeCapture(t *testing.T, path string) {
	t.Helper()
	w, err := NewWriter(Config{FilePath: path})
	require.NoError(t, err)

	frames := [][]byte{
		serializeFrame(t, []byte("GET /index.html"), false),
		serializeFrame(t, nil, true),
		serializeFrame(t, []byte("user=alice&pass=hunter2"), false),
	}
	for i, frame := range frames {
		ci := gopacket.CaptureInfo{Timestamp: time.Unix(1700000000+int64(i), 0)}
		require.NoError(t, w.WritePacket(ci, frame))
	}
	assert.Equal(t, 3, w.PacketCount())
	require.NoError(t, w.Close())
}

func TestReader_Payloads(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.pcap")
	writeCapture(t, path)

	r, err := Open(path)
	require.NoError(t, err)
	defer r.Close()
	assert.Equal(t, layers.LinkTypeEthernet, r.LinkType())

	first, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "GET /index.html", string(first.Payload))
	assert.Equal(t, "192.168.1.1:50123->192.168.1.2:50124", first.Flow)
	assert.True(t, first.CaptureInfo.Timestamp.Equal(time.Unix(1700000000, 0)))
	// Ethernet(14) + IPv4(20) + UDP(8); short frames carry trailing padding.
	assert.Equal(t, first.Payload, first.Data[42:42+len(first.Payload)])
	assert.True(t, bytes.Contains(first.Data, first.Payload))

	second, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, second.Index)
	assert.Equal(t, "user=alice&pass=hunter2", string(second.Payload))
	assert.Equal(t, 1, r.Skipped())

	_, err = r.Next()
	assert.ErrorIs(t, err, io.EOF)
}

func TestReader_TCPPayload(t *testing.T) {
	var buf bytes.Buffer
	w := pcapgo.NewWriter(&buf)
	require.NoError(t, w.WriteFileHeader(65536, layers.LinkTypeEthernet))
	frame := serializeFrame(t, []byte("HELO example.com"), true)
	require.NoError(t, w.WritePacket(gopacket.CaptureInfo{CaptureLength: len(frame), Length: len(frame)}, frame))

	r, err := NewReader(&buf)
	require.NoError(t, err)

	pkt, err := r.Next()
	require.NoError(t, err)
	assert.Equal(t, "HELO example.com", string(pkt.Payload))
	require.NoError(t, r.Close())
}

func TestReader_InvalidHeader(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("not a pcap file at all")))
	assert.Error(t, err)

	path := filepath.Join(t.TempDir(), "bad.pcap")
	require.NoError(t, os.WriteFile(path, []byte("garbage"), 0o600))
	_, err = Open(path)
	assert.Error(t, err)

	_, err = Open(filepath.Join(t.TempDir(), "missing.pcap"))
	assert.True(t, os.IsNotExist(err))
}

func TestReader_Truncated(t *testing.T) {
	path := filepath.Join(t.TempDir(), "capture.pcap")
	writeCapture(t, path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	r, err := NewReader(bytes.NewReader(data[:len(data)-5]))
	require.NoError(t, err)

	_, err = r.Next()
	require.NoError(t, err)
	_, err = r.Next()
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)
}

func TestWriter_Errors(t *testing.T) {
	_, err := NewWriter(Config{})
	assert.Error(t, err)

	_, err = NewWriter(Config{FilePath: filepath.Join(t.TempDir(), "missing", "x.pcap")})
	assert.Error(t, err)

	w, err := NewWriter(Config{FilePath: filepath.Join(t.TempDir(), "x.pcap")})
	require.NoError(t, err)
	assert.Error(t, w.WritePacket(gopacket.CaptureInfo{}, nil))

	require.NoError(t, w.Close())
	require.NoError(t, w.Close(), "second close is a no-op")
	assert.Error(t, w.WritePacket(gopacket.CaptureInfo{}, []byte{1}))
}
