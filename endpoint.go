package quic

import (
	"context"
	"errors"

	"go.uber.org/multierr"
	"golang.org/x/sync/errgroup"

	"github.com/dep2p/go-quic/config"
	"github.com/dep2p/go-quic/internal/core/eventloop"
	"github.com/dep2p/go-quic/internal/core/metrics"
	"github.com/dep2p/go-quic/pkg/interfaces"
	"github.com/dep2p/go-quic/pkg/lib/log"
	"github.com/dep2p/go-quic/pkg/types"
)

var logger = log.Logger("quic/endpoint")

// Endpoint QUIC 端点
//
// 拥有事件循环与可选的 AF_XDP 发包下沉；连接在循环线程上创建。
type Endpoint struct {
	cfg     *config.Config
	loop    *eventloop.EventLoop
	sink    interfaces.PacketSink
	metrics *metrics.Metrics

	conns  map[string]*Conn
	closed bool
}

// New 创建端点
func New(opts ...Option) (*Endpoint, error) {
	ep := &Endpoint{
		cfg:   config.DefaultConfig(),
		conns: make(map[string]*Conn),
	}
	for _, opt := range opts {
		if err := opt(ep); err != nil {
			return nil, err
		}
	}
	if err := ep.cfg.Validate(); err != nil {
		return nil, err
	}
	if ep.loop == nil {
		ep.loop = eventloop.New(nil)
	}
	return ep, nil
}

// EventLoop 返回端点的事件循环
func (ep *Endpoint) EventLoop() interfaces.EventLoop {
	return ep.loop
}

// PacketSink 返回发包下沉（未配置时为 nil）
func (ep *Endpoint) PacketSink() interfaces.PacketSink {
	return ep.sink
}

// NewConnection 创建一条连接
func (ep *Endpoint) NewConnection(nodeType types.NodeType) *Conn {
	c := newConn(ep, nodeType)
	ep.conns[c.id] = c
	logger.Info("connection created", "conn", c.id, "role", nodeType.String())
	return c
}

// Conn 按标识查找连接
func (ep *Endpoint) Conn(id string) (*Conn, error) {
	c, ok := ep.conns[id]
	if !ok {
		return nil, ErrConnNotFound
	}
	return c, nil
}

// RemoveConnection 移除连接并清除其指标
func (ep *Endpoint) RemoveConnection(id string) {
	c, ok := ep.conns[id]
	if !ok {
		return
	}
	c.mgr.ClearOpenStreams()
	delete(ep.conns, id)
	if ep.metrics != nil {
		ep.metrics.RemoveConn(id)
	}
}

// Run 运行端点直到 ctx 取消
//
// Run 阻塞调用方；事件循环运行在 errgroup 启动的 goroutine 上，
// ctx 取消时停止循环。
func (ep *Endpoint) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		ep.loop.Loop()
		return nil
	})
	g.Go(func() error {
		<-ctx.Done()
		ep.loop.Stop()
		return ctx.Err()
	})
	err := g.Wait()
	if errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}

// Close 关闭端点
func (ep *Endpoint) Close() error {
	if ep.closed {
		return nil
	}
	ep.closed = true
	ep.loop.Stop()
	var err error
	if ep.sink != nil {
		if closer, ok := ep.sink.(interface{ Close() error }); ok {
			err = multierr.Append(err, closer.Close())
		}
	}
	return err
}
