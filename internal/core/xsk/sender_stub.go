//go:build !linux

package xsk

import (
	"net/netip"

	"github.com/dep2p/go-quic/config"
	"github.com/dep2p/go-quic/pkg/interfaces"
)

// Sender AF_XDP 发送器（仅 Linux 支持）
type Sender struct{}

var _ interfaces.PacketSink = (*Sender)(nil)

// NewSender 当前平台不支持
func NewSender(config.XskConfig) (*Sender, error) {
	return nil, ErrNotSupported
}

// Bind 当前平台不支持
func (s *Sender) Bind(int) error { return ErrNotSupported }

// GetBuffer 当前平台不支持
func (s *Sender) GetBuffer(bool) (*interfaces.XskBuffer, bool) { return nil, false }

// WriteBuffer 当前平台不支持
func (s *Sender) WriteBuffer(*interfaces.XskBuffer, netip.AddrPort, netip.AddrPort) error {
	return ErrNotSupported
}

// ReturnBuffer 当前平台不支持
func (s *Sender) ReturnBuffer(*interfaces.XskBuffer) {}

// WriteUDPPacket 当前平台不支持
func (s *Sender) WriteUDPPacket(netip.AddrPort, netip.AddrPort, []byte) error {
	return ErrNotSupported
}

// Flush 当前平台不支持
func (s *Sender) Flush() error { return ErrNotSupported }

// FreeFrameCount 当前平台不支持
func (s *Sender) FreeFrameCount() int { return 0 }

// Close 当前平台不支持
func (s *Sender) Close() error { return nil }
