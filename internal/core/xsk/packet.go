package xsk

import (
	"fmt"
	"net"
	"net/netip"

	"github.com/google/gopacket"
	"github.com/google/gopacket/layers"
)

// 数据报头部默认值
const (
	defaultTOS = 0
	defaultTTL = 64

	ethHeaderLen  = 14
	ipv4HeaderLen = 20
	ipv6HeaderLen = 40
	udpHeaderLen  = 8
)

// HeaderLen 返回给定地址族的头部总长
func HeaderLen(isIPv6 bool) int {
	if isIPv6 {
		return ethHeaderLen + ipv6HeaderLen + udpHeaderLen
	}
	return ethHeaderLen + ipv4HeaderLen + udpHeaderLen
}

// HeaderBuilder 以太网/IP/UDP 头部组装器
//
// 以太网源地址与网关目的地址在初始化时固定，
// 每包只填 IP 地址、端口、长度与校验和。
type HeaderBuilder struct {
	localMAC   net.HardwareAddr
	gatewayMAC net.HardwareAddr
}

// NewHeaderBuilder 创建头部组装器
func NewHeaderBuilder(localMAC, gatewayMAC net.HardwareAddr) *HeaderBuilder {
	return &HeaderBuilder{localMAC: localMAC, gatewayMAC: gatewayMAC}
}

// WriteHeaders 把头部写入帧前部
//
// frame 布局为 [头部预留区][载荷]，载荷必须已在
// frame[HeaderLen(isIPv6):] 就位。校验和覆盖伪头部 + UDP 头 + 载荷。
func (b *HeaderBuilder) WriteHeaders(frame []byte, peer, src netip.AddrPort, payloadLen int) error {
	isIPv6 := peer.Addr().Is6() && !peer.Addr().Is4In6()
	hdrLen := HeaderLen(isIPv6)
	if len(frame) < hdrLen+payloadLen {
		return fmt.Errorf("%w: need %d bytes, have %d", ErrFrameTooSmall, hdrLen+payloadLen, len(frame))
	}
	payload := frame[hdrLen : hdrLen+payloadLen]

	eth := &layers.Ethernet{
		SrcMAC:       b.localMAC,
		DstMAC:       b.gatewayMAC,
		EthernetType: layers.EthernetTypeIPv4,
	}
	udp := &layers.UDP{
		SrcPort: layers.UDPPort(src.Port()),
		DstPort: layers.UDPPort(peer.Port()),
	}

	var ip gopacket.SerializableLayer
	if isIPv6 {
		eth.EthernetType = layers.EthernetTypeIPv6
		ip6 := &layers.IPv6{
			Version:      6,
			TrafficClass: defaultTOS,
			HopLimit:     defaultTTL,
			NextHeader:   layers.IPProtocolUDP,
			SrcIP:        src.Addr().AsSlice(),
			DstIP:        peer.Addr().AsSlice(),
		}
		if err := udp.SetNetworkLayerForChecksum(ip6); err != nil {
			return err
		}
		ip = ip6
	} else {
		srcAddr := src.Addr().Unmap()
		dstAddr := peer.Addr().Unmap()
		if !srcAddr.Is4() || !dstAddr.Is4() {
			return fmt.Errorf("%w: mixed address families", ErrInvalidAddress)
		}
		ip4 := &layers.IPv4{
			Version:  4,
			IHL:      5,
			TOS:      defaultTOS,
			TTL:      defaultTTL,
			Flags:    layers.IPv4DontFragment,
			Protocol: layers.IPProtocolUDP,
			SrcIP:    srcAddr.AsSlice(),
			DstIP:    dstAddr.AsSlice(),
		}
		if err := udp.SetNetworkLayerForChecksum(ip4); err != nil {
			return err
		}
		ip = ip4
	}

	buf := gopacket.NewSerializeBuffer()
	opts := gopacket.SerializeOptions{FixLengths: true, ComputeChecksums: true}
	if err := gopacket.SerializeLayers(buf, opts, eth, ip, udp, gopacket.Payload(payload)); err != nil {
		return fmt.Errorf("serialize headers: %w", err)
	}
	copy(frame[:hdrLen], buf.Bytes()[:hdrLen])
	return nil
}
