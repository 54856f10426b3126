package quic

import (
	"github.com/dep2p/go-quic/config"
	"github.com/dep2p/go-quic/pkg/interfaces"
)

// Option 端点选项函数
type Option func(*Endpoint) error

// WithConfig 设置配置
func WithConfig(cfg *config.Config) Option {
	return func(ep *Endpoint) error {
		if cfg == nil {
			return config.ErrInvalidConfig
		}
		ep.cfg = cfg
		return nil
	}
}

// WithPacketSink 注入 AF_XDP 发包下沉
func WithPacketSink(sink interfaces.PacketSink) Option {
	return func(ep *Endpoint) error {
		ep.sink = sink
		return nil
	}
}
