package xsk

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-quic/config"
	"github.com/dep2p/go-quic/pkg/interfaces"
)

// Params Sender 依赖参数
type Params struct {
	fx.In

	Config *config.Config
}

// Output Sender 模块输出
type Output struct {
	fx.Out

	Sink interfaces.PacketSink
}

// Module AF_XDP 发送路径 Fx 模块
//
// 未配置网卡接口时不提供 PacketSink。
var Module = fx.Module("xsk",
	fx.Provide(provideSender),
)

func provideSender(params Params) (Output, error) {
	if params.Config.Xsk.Interface == "" {
		return Output{}, nil
	}
	sender, err := NewSender(params.Config.Xsk)
	if err != nil {
		return Output{}, err
	}
	return Output{Sink: sender}, nil
}
