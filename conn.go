package quic

import (
	"github.com/google/uuid"

	"github.com/dep2p/go-quic/internal/core/streammgr"
	"github.com/dep2p/go-quic/pkg/interfaces"
	"github.com/dep2p/go-quic/pkg/lib/log"
	"github.com/dep2p/go-quic/pkg/types"
)

var connLogger = log.Logger("quic/conn")

// Conn 单条连接的状态载体
//
// 实现 interfaces.Connection；流管理器与每条流记录只借用
// 对它的引用。所有方法只在事件循环线程调用。
type Conn struct {
	id       string
	nodeType types.NodeType
	mgr      *streammgr.Manager
	ep       *Endpoint
	appIdle  bool
}

var _ interfaces.Connection = (*Conn)(nil)

func newConn(ep *Endpoint, nodeType types.NodeType) *Conn {
	c := &Conn{
		id:       uuid.NewString(),
		nodeType: nodeType,
		ep:       ep,
	}
	c.mgr = streammgr.New(c, nodeType, &ep.cfg.Transport)
	return c
}

// ID 返回连接标识
func (c *Conn) ID() string {
	return c.id
}

// NodeType 返回端点角色
func (c *Conn) NodeType() types.NodeType {
	return c.nodeType
}

// Streams 返回连接的流管理器
func (c *Conn) Streams() *streammgr.Manager {
	return c.mgr
}

// OnAppIdleChanged 应用空闲状态翻转通知
//
// 记录空闲状态、写调试日志，配置了指标时刷新该连接的指标；
// 连接上没有挂接拥塞控制器，翻转不再向其他组件转发。
func (c *Conn) OnAppIdleChanged(idle bool) {
	c.appIdle = idle
	connLogger.Debug("app idle changed", "conn", c.id, "idle", idle)
	if c.ep != nil && c.ep.metrics != nil {
		c.ep.metrics.ObserveConn(c.id, c.mgr)
	}
}

// IsAppIdle 返回连接是否应用空闲
func (c *Conn) IsAppIdle() bool {
	return c.appIdle
}

// MigrateTo 把连接的流状态迁移到新的连接载体
//
// 在新拥有线程上、任何并发访问之前调用；
// 全部映射与集合批量转移，每条流记录重绑到新连接。
func (c *Conn) MigrateTo(ep *Endpoint) *Conn {
	nc := &Conn{
		id:       c.id,
		nodeType: c.nodeType,
		ep:       ep,
		appIdle:  c.appIdle,
	}
	nc.mgr = streammgr.NewFromMigration(nc, c.nodeType, &ep.cfg.Transport, c.mgr)
	c.mgr = nil
	return nc
}
