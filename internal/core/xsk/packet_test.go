package xsk

import (
	"encoding/binary"
	"net"
	"net/netip"
	"testing"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testBuilder(t *testing.T) *HeaderBuilder {
	t.Helper()
	localMAC, err := net.ParseMAC("02:00:00:00:00:01")
	require.NoError(t, err)
	gatewayMAC, err := net.ParseMAC("02:00:00:00:00:02")
	require.NoError(t, err)
	return NewHeaderBuilder(localMAC, gatewayMAC)
}

func buildFrame(t *testing.T, b *HeaderBuilder, peer, src netip.AddrPort, payload []byte) []byte {
	t.Helper()
	isIPv6 := peer.Addr().Is6() && !peer.Addr().Is4In6()
	frame := make([]byte, 2048)
	copy(frame[HeaderLen(isIPv6):], payload)
	require.NoError(t, b.WriteHeaders(frame, peer, src, len(payload)))
	return frame[:HeaderLen(isIPv6)+len(payload)]
}

func TestHeaderLen(t *testing.T) {
	assert.Equal(t, 42, HeaderLen(false), "eth(14)+ipv4(20)+udp(8)")
	assert.Equal(t, 62, HeaderLen(true), "eth(14)+ipv6(40)+udp(8)")
}

func TestWriteHeaders_IPv4(t *testing.T) {
	b := testBuilder(t)
	payload := []byte("quic datagram payload")
	peer := netip.MustParseAddrPort("192.0.2.1:4433")
	src := netip.MustParseAddrPort("192.0.2.2:443")

	frame := buildFrame(t, b, peer, src, payload)

	pkt := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)
	require.Nil(t, pkt.ErrorLayer())

	eth := pkt.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
	assert.Equal(t, layers.EthernetTypeIPv4, eth.EthernetType)
	assert.Equal(t, "02:00:00:00:00:01", eth.SrcMAC.String())
	assert.Equal(t, "02:00:00:00:00:02", eth.DstMAC.String())

	ip := pkt.Layer(layers.LayerTypeIPv4).(*layers.IPv4)
	assert.Equal(t, uint8(64), ip.TTL)
	assert.Equal(t, uint8(0), ip.TOS)
	assert.Equal(t, layers.IPv4DontFragment, ip.Flags&layers.IPv4DontFragment, "DF 置位")
	assert.Equal(t, layers.IPProtocolUDP, ip.Protocol)
	assert.Equal(t, "192.0.2.2", ip.SrcIP.String())
	assert.Equal(t, "192.0.2.1", ip.DstIP.String())
	assert.Equal(t, uint16(20+8+len(payload)), ip.Length)

	udp := pkt.Layer(layers.LayerTypeUDP).(*layers.UDP)
	assert.Equal(t, layers.UDPPort(443), udp.SrcPort)
	assert.Equal(t, layers.UDPPort(4433), udp.DstPort)
	assert.Equal(t, uint16(8+len(payload)), udp.Length)
	assert.NotZero(t, udp.Checksum, "IPv4 下同样计算校验和")

	assert.Equal(t, payload, pkt.ApplicationLayer().Payload())

	verifyUDPChecksum(t, frame)
}

func TestWriteHeaders_IPv6(t *testing.T) {
	b := testBuilder(t)
	payload := []byte{0x40, 0x01, 0x02, 0x03}
	peer := netip.MustParseAddrPort("[2001:db8::1]:4433")
	src := netip.MustParseAddrPort("[2001:db8::2]:443")

	frame := buildFrame(t, b, peer, src, payload)

	pkt := gopacket.NewPacket(frame, layers.LayerTypeEthernet, gopacket.Default)
	require.Nil(t, pkt.ErrorLayer())

	eth := pkt.Layer(layers.LayerTypeEthernet).(*layers.Ethernet)
	assert.Equal(t, layers.EthernetTypeIPv6, eth.EthernetType)

	ip := pkt.Layer(layers.LayerTypeIPv6).(*layers.IPv6)
	assert.Equal(t, uint8(64), ip.HopLimit)
	assert.Equal(t, uint8(0), ip.TrafficClass)
	assert.Equal(t, layers.IPProtocolUDP, ip.NextHeader)
	assert.Equal(t, "2001:db8::2", ip.SrcIP.String())
	assert.Equal(t, "2001:db8::1", ip.DstIP.String())
	assert.Equal(t, uint16(8+len(payload)), ip.Length, "IPv6 载荷长度")

	udp := pkt.Layer(layers.LayerTypeUDP).(*layers.UDP)
	assert.Equal(t, layers.UDPPort(443), udp.SrcPort)
	assert.Equal(t, layers.UDPPort(4433), udp.DstPort)
	assert.NotZero(t, udp.Checksum, "IPv6 下校验和必算")
}

func TestWriteHeaders_FrameTooSmall(t *testing.T) {
	b := testBuilder(t)
	frame := make([]byte, 32)
	err := b.WriteHeaders(frame, netip.MustParseAddrPort("192.0.2.1:1"),
		netip.MustParseAddrPort("192.0.2.2:2"), 64)
	assert.ErrorIs(t, err, ErrFrameTooSmall)
}

func TestWriteHeaders_MixedFamilies(t *testing.T) {
	b := testBuilder(t)
	frame := make([]byte, 2048)
	err := b.WriteHeaders(frame, netip.MustParseAddrPort("192.0.2.1:1"),
		netip.MustParseAddrPort("[2001:db8::2]:2"), 0)
	assert.ErrorIs(t, err, ErrInvalidAddress)
}

// verifyUDPChecksum 以伪头部求和验证 IPv4 UDP 校验和
func verifyUDPChecksum(t *testing.T, frame []byte) {
	t.Helper()
	ip := frame[ethHeaderLen : ethHeaderLen+ipv4HeaderLen]
	udpAndPayload := frame[ethHeaderLen+ipv4HeaderLen:]

	var sum uint32
	add16 := func(b []byte) {
		for i := 0; i+1 < len(b); i += 2 {
			sum += uint32(binary.BigEndian.Uint16(b[i : i+2]))
		}
		if len(b)%2 == 1 {
			sum += uint32(b[len(b)-1]) << 8
		}
	}
	// 伪头部：源地址、目的地址、协议、UDP 长度
	add16(ip[12:16])
	add16(ip[16:20])
	sum += uint32(ip[9])
	sum += uint32(len(udpAndPayload))
	// UDP 头 + 载荷（含对端填好的校验和字段）
	add16(udpAndPayload)

	for sum>>16 != 0 {
		sum = (sum & 0xffff) + (sum >> 16)
	}
	assert.Equal(t, uint16(0xffff), uint16(sum), "含校验和字段的全量求和应为 0xffff")
}
