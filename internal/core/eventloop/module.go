package eventloop

import (
	"github.com/benbjohnson/clock"
	"go.uber.org/fx"

	"github.com/dep2p/go-quic/pkg/interfaces"
)

// Output EventLoop 模块输出
type Output struct {
	fx.Out

	Loop interfaces.EventLoop
}

// Module 事件循环 Fx 模块
var Module = fx.Module("eventloop",
	fx.Provide(provideEventLoop),
)

func provideEventLoop() Output {
	return Output{Loop: New(clock.New())}
}
