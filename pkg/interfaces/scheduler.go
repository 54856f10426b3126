package interfaces

import "github.com/dep2p/go-quic/pkg/types"

// WriteScheduler 定义可写数据流的优先级调度契约
//
// 方法不会被并发调用（单连接单线程模型）。
//
// 出队顺序：
//  1. 级别小者（优先级高）先出
//  2. 同级别内轮转
//  3. 每条流连续获得至多 maxNextsPerStream 次调度机会，
//     之后让位给同级别下一条流
//
// 控制流不进入本调度器，由管理器单独维护有序队列。
type WriteScheduler interface {
	// Insert 以给定优先级插入流；已存在时等价于 UpdatePriority
	Insert(id types.StreamID, pri types.Priority)

	// Erase 移除流；流不存在时为空操作
	Erase(id types.StreamID)

	// UpdatePriority 更新已入队流的优先级
	//
	// 优先级未变化时不重新排队。返回值表示是否发生了变化。
	UpdatePriority(id types.StreamID, pri types.Priority) bool

	// Next 返回下一条应被调度的流并推进轮转状态
	Next() (types.StreamID, bool)

	// Peek 返回下一条应被调度的流，不推进轮转状态
	Peek() (types.StreamID, bool)

	// Contains 返回流是否在队列中
	Contains(id types.StreamID) bool

	// Empty 返回队列是否为空
	Empty() bool

	// Len 返回队列中的流数
	Len() int

	// Clear 清空队列
	Clear()

	// SetMaxNextsPerStream 设置每条流的连续调度配额
	SetMaxNextsPerStream(n uint64)
}
