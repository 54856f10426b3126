package streammgr

import (
	"go.uber.org/fx"

	"github.com/dep2p/go-quic/config"
	"github.com/dep2p/go-quic/pkg/interfaces"
	"github.com/dep2p/go-quic/pkg/types"
)

// Factory 按连接创建流管理器
//
// 管理器是每连接对象，无法作为单例注入；
// Fx 提供工厂，连接建立时调用。
type Factory struct {
	settings *config.TransportSettings
}

// NewFactory 创建流管理器工厂
func NewFactory(settings *config.TransportSettings) *Factory {
	return &Factory{settings: settings}
}

// NewManager 为连接创建流管理器
func (f *Factory) NewManager(conn interfaces.Connection, nodeType types.NodeType) *Manager {
	return New(conn, nodeType, f.settings)
}

// FactoryParams Factory 依赖参数
type FactoryParams struct {
	fx.In

	Config *config.Config
}

// Module 流管理器 Fx 模块
var Module = fx.Module("streammgr",
	fx.Provide(provideFactory),
)

func provideFactory(params FactoryParams) *Factory {
	return NewFactory(&params.Config.Transport)
}
