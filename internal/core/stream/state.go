package stream

import (
	"github.com/dep2p/go-quic/pkg/interfaces"
	"github.com/dep2p/go-quic/pkg/types"
)

// State 每条流的状态记录
//
// 记录由流管理器拥有；对连接状态的引用只是借用，
// 管理器迁移时通过 BindConn 重绑。
//
// 字节缓冲由外部管理，这里只保留派生集合判定所需的
// 偏移与计数视图。视图字段由帧处理管线直接更新，
// 更新后必须调用管理器对应的 Update*Streams 方法。
type State struct {
	// ID 流标识
	ID types.StreamID

	// GroupID 所属流组（可选）
	GroupID *types.StreamGroupID

	// IsControl 是否被标记为控制流
	IsControl bool

	// Priority 当前调度优先级
	Priority types.Priority

	// Send 发送方向状态机
	Send SendMachine

	// Recv 接收方向状态机
	Recv RecvMachine

	// ReadOffset 应用当前读偏移
	ReadOffset uint64

	// ReadBufferHead 接收缓冲首字节的流内偏移
	ReadBufferHead uint64

	// ReadBufferBytes 接收缓冲中的字节数
	ReadBufferBytes uint64

	// ReadError 有待投递的流复位错误
	ReadError bool

	// PendingWriteBytes 发送缓冲中待发送的字节数
	PendingWriteBytes uint64

	// PendingDSRBytes 待由远端代理发送的字节数（DSR）
	PendingDSRBytes uint64

	// FlowCredit 发送方向剩余流控额度
	FlowCredit uint64

	// AckedOffset 已确认的连续字节偏移
	AckedOffset uint64

	// DeliveryNotifiedOffset 已完成送达回调的偏移
	DeliveryNotifiedOffset uint64

	// TxOffset 已写上线路的偏移
	TxOffset uint64

	// TxNotifiedOffset 已完成发送回调的偏移
	TxNotifiedOffset uint64

	// LossBytes 丢失缓冲中的字节数
	LossBytes uint64

	// LossMetaBytes DSR 丢失元数据的字节数
	LossMetaBytes uint64

	conn interfaces.Connection
}

// New 创建流状态记录
func New(id types.StreamID, conn interfaces.Connection) *State {
	return &State{
		ID:       id,
		Priority: types.DefaultPriority(),
		conn:     conn,
	}
}

// Conn 返回借用的连接引用
func (s *State) Conn() interfaces.Connection {
	return s.conn
}

// BindConn 重绑连接引用
//
// 管理器迁移到新连接上下文时对每条记录调用。
func (s *State) BindConn(conn interfaces.Connection) {
	s.conn = conn
}

// HasReadableData 返回当前读偏移处是否有可投递数据
//
// 收到复位且尚未投递时同样视为可读，以便派发读回调。
func (s *State) HasReadableData() bool {
	if s.ReadError && !s.Recv.State().Terminal() {
		return true
	}
	return s.ReadBufferBytes > 0 && s.ReadBufferHead == s.ReadOffset
}

// HasPeekableData 返回接收缓冲中是否有任何字节
func (s *State) HasPeekableData() bool {
	return s.ReadBufferBytes > 0
}

// HasWritableData 返回是否有额度且有待发送载荷且未复位
func (s *State) HasWritableData() bool {
	return s.PendingWriteBytes > 0 && s.FlowCredit > 0 && !s.Send.State().Reset()
}

// HasWritableDSRData 返回 DSR 路径是否可写
func (s *State) HasWritableDSRData() bool {
	return s.PendingDSRBytes > 0 && s.FlowCredit > 0 && !s.Send.State().Reset()
}

// HasDeliverableData 返回是否有已确认但未通知送达的字节
func (s *State) HasDeliverableData() bool {
	return s.AckedOffset > s.DeliveryNotifiedOffset
}

// HasTxData 返回是否有新写上线路但未通知的字节
func (s *State) HasTxData() bool {
	return s.TxOffset > s.TxNotifiedOffset
}

// HasLoss 返回丢失缓冲是否非空
func (s *State) HasLoss() bool {
	return s.LossBytes > 0
}

// HasDSRLoss 返回 DSR 丢失元数据是否非空
func (s *State) HasDSRLoss() bool {
	return s.LossMetaBytes > 0
}

// HasSchedulableData 返回是否有任何应进入写队列的数据
func (s *State) HasSchedulableData() bool {
	return s.HasWritableData() || s.HasWritableDSRData() || s.HasLoss() || s.HasDSRLoss()
}

// Closed 返回两个方向是否都已到达终态
func (s *State) Closed() bool {
	return s.Send.State().Terminal() && s.Recv.State().Terminal()
}
