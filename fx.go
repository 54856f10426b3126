package quic

import (
	"context"
	"fmt"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"github.com/dep2p/go-quic/config"
	"github.com/dep2p/go-quic/internal/core/eventloop"
	"github.com/dep2p/go-quic/internal/core/metrics"
	"github.com/dep2p/go-quic/internal/core/streammgr"
	"github.com/dep2p/go-quic/internal/core/xsk"
	"github.com/dep2p/go-quic/pkg/interfaces"
)

// buildFxApp 构建 Fx 应用
//
// 装配顺序（按依赖）：
//  1. 配置注入与校验
//  2. 基础组件：EventLoop → Metrics → Streammgr Factory
//  3. 发送路径：XSK（未配置接口时不提供 Sink）
//  4. Endpoint 装配
func buildFxApp(cfg *config.Config, ep **Endpoint) (*fx.App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	app := fx.New(
		fx.WithLogger(func() fxevent.Logger {
			return &fxevent.ZapLogger{Logger: zap.NewNop()}
		}),

		fx.Supply(cfg),

		eventloop.Module,
		metrics.Module,
		streammgr.Module,
		xsk.Module,

		fx.Provide(provideEndpoint),
		fx.Populate(ep),
	)
	if err := app.Err(); err != nil {
		return nil, err
	}
	return app, nil
}

// EndpointParams Endpoint 依赖参数
type EndpointParams struct {
	fx.In

	Config  *config.Config
	Loop    interfaces.EventLoop
	Metrics *metrics.Metrics
	Sink    interfaces.PacketSink `optional:"true"`
}

func provideEndpoint(params EndpointParams, lc fx.Lifecycle) (*Endpoint, error) {
	loop, ok := params.Loop.(*eventloop.EventLoop)
	if !ok {
		return nil, fmt.Errorf("unexpected event loop implementation %T", params.Loop)
	}
	ep := &Endpoint{
		cfg:     params.Config,
		loop:    loop,
		sink:    params.Sink,
		metrics: params.Metrics,
		conns:   make(map[string]*Conn),
	}
	lc.Append(fx.Hook{
		OnStop: func(context.Context) error {
			return ep.Close()
		},
	})
	return ep, nil
}

// NewWithFx 通过 Fx 装配创建端点
//
// 与 New 等价，但所有组件经依赖注入装配；
// 返回的 App 负责生命周期，Stop 时关闭端点。
func NewWithFx(cfg *config.Config) (*Endpoint, *fx.App, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	var ep *Endpoint
	app, err := buildFxApp(cfg, &ep)
	if err != nil {
		return nil, nil, err
	}
	return ep, app, nil
}
