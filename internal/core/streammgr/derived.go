package streammgr

import (
	"sort"

	"github.com/dep2p/go-quic/internal/core/stream"
	"github.com/dep2p/go-quic/pkg/interfaces"
	"github.com/dep2p/go-quic/pkg/types"
)

// UpdateReadableStreams 按当前谓词刷新流的可读集合成员关系
//
// 配置 UnidirectionalStreamsReadCallbacksFirst 时，单向流进入
// 独立集合，回调派发器优先消费。
func (m *Manager) UpdateReadableStreams(s *stream.State) {
	target := m.readableStreams
	if m.settings.UnidirectionalStreamsReadCallbacksFirst && s.ID.IsUnidirectional() {
		target = m.uniReadableStreams
	}
	if s.HasReadableData() {
		target[s.ID] = struct{}{}
	} else {
		delete(m.readableStreams, s.ID)
		delete(m.uniReadableStreams, s.ID)
	}
}

// UpdatePeekableStreams 按当前谓词刷新流的可窥集合成员关系
func (m *Manager) UpdatePeekableStreams(s *stream.State) {
	if s.HasPeekableData() {
		m.peekableStreams[s.ID] = struct{}{}
	} else {
		delete(m.peekableStreams, s.ID)
	}
}

// UpdateWritableStreams 按当前谓词刷新流的可写集合与写队列成员关系
//
// 可写或有丢失数据的流进入写队列；控制流进入独立的有序队列。
func (m *Manager) UpdateWritableStreams(s *stream.State) {
	if s.HasWritableData() {
		m.writableStreams[s.ID] = struct{}{}
	} else {
		delete(m.writableStreams, s.ID)
	}
	if s.HasWritableDSRData() {
		m.writableDSRStreams[s.ID] = struct{}{}
	} else {
		delete(m.writableDSRStreams, s.ID)
	}

	if s.HasSchedulableData() {
		if s.IsControl {
			m.controlQueueInsert(s.ID)
		} else {
			m.writeQueue.Insert(s.ID, s.Priority)
		}
	} else {
		if s.IsControl {
			m.controlQueueRemove(s.ID)
		} else {
			m.writeQueue.Erase(s.ID)
		}
	}
}

// UpdateLossStreams 按丢失缓冲刷新流的丢失集合成员关系
func (m *Manager) UpdateLossStreams(s *stream.State) {
	if s.HasLoss() {
		m.lossStreams[s.ID] = struct{}{}
	} else {
		delete(m.lossStreams, s.ID)
	}
	if s.HasDSRLoss() {
		m.lossDSRStreams[s.ID] = struct{}{}
	} else {
		delete(m.lossDSRStreams, s.ID)
	}
}

// UpdateDeliverableStreams 按送达回调记账刷新集合成员关系
func (m *Manager) UpdateDeliverableStreams(s *stream.State) {
	if s.HasDeliverableData() {
		m.deliverableStreams[s.ID] = struct{}{}
	} else {
		delete(m.deliverableStreams, s.ID)
	}
}

// UpdateTxStreams 按发送回调记账刷新集合成员关系
func (m *Manager) UpdateTxStreams(s *stream.State) {
	if s.HasTxData() {
		m.txStreams[s.ID] = struct{}{}
	} else {
		delete(m.txStreams, s.ID)
	}
}

// ReadableStreams 返回可读流集合
func (m *Manager) ReadableStreams() map[types.StreamID]struct{} {
	return m.readableStreams
}

// ReadableUnidirectionalStreams 返回独立维护的单向可读流集合
func (m *Manager) ReadableUnidirectionalStreams() map[types.StreamID]struct{} {
	return m.uniReadableStreams
}

// PeekableStreams 返回可窥流集合
func (m *Manager) PeekableStreams() map[types.StreamID]struct{} {
	return m.peekableStreams
}

// WritableStreams 返回可写流集合
func (m *Manager) WritableStreams() map[types.StreamID]struct{} {
	return m.writableStreams
}

// WritableDSRStreams 返回 DSR 可写流集合
func (m *Manager) WritableDSRStreams() map[types.StreamID]struct{} {
	return m.writableDSRStreams
}

// HasWritable 返回是否有任何可调度的流
func (m *Manager) HasWritable() bool {
	return !m.writeQueue.Empty() || len(m.controlWriteQueue) > 0
}

// HasNonDSRWritable 返回是否有非 DSR 可写流
func (m *Manager) HasNonDSRWritable() bool {
	return len(m.writableStreams) > 0 || len(m.controlWriteQueue) > 0
}

// HasDSRWritable 返回是否有 DSR 可写流
func (m *Manager) HasDSRWritable() bool {
	return len(m.writableDSRStreams) > 0
}

// RemoveWritable 把流从全部写相关集合与队列移除
func (m *Manager) RemoveWritable(s *stream.State) {
	if s.IsControl {
		m.controlQueueRemove(s.ID)
	} else {
		m.writeQueue.Erase(s.ID)
	}
	delete(m.writableStreams, s.ID)
	delete(m.writableDSRStreams, s.ID)
	delete(m.lossStreams, s.ID)
	delete(m.lossDSRStreams, s.ID)
}

// ClearWritable 清空可写集合、DSR 可写集合、优先级写队列与控制流写队列
//
// 丢失集合（loss / loss-DSR）不在清空之列。
func (m *Manager) ClearWritable() {
	for id := range m.writableStreams {
		delete(m.writableStreams, id)
	}
	for id := range m.writableDSRStreams {
		delete(m.writableDSRStreams, id)
	}
	m.writeQueue.Clear()
	m.controlWriteQueue = nil
}

// WriteQueue 返回非控制流的优先级写队列
func (m *Manager) WriteQueue() interfaces.WriteScheduler {
	return m.writeQueue
}

// ControlWriteQueue 返回控制流的有序写队列（升序）
func (m *Manager) ControlWriteQueue() []types.StreamID {
	return m.controlWriteQueue
}

// controlQueueInsert 有序插入控制流 ID（去重）
func (m *Manager) controlQueueInsert(id types.StreamID) {
	i := sort.Search(len(m.controlWriteQueue), func(i int) bool {
		return m.controlWriteQueue[i] >= id
	})
	if i < len(m.controlWriteQueue) && m.controlWriteQueue[i] == id {
		return
	}
	m.controlWriteQueue = append(m.controlWriteQueue, 0)
	copy(m.controlWriteQueue[i+1:], m.controlWriteQueue[i:])
	m.controlWriteQueue[i] = id
}

// controlQueueRemove 移除控制流 ID
func (m *Manager) controlQueueRemove(id types.StreamID) {
	i := sort.Search(len(m.controlWriteQueue), func(i int) bool {
		return m.controlWriteQueue[i] >= id
	})
	if i < len(m.controlWriteQueue) && m.controlWriteQueue[i] == id {
		m.controlWriteQueue = append(m.controlWriteQueue[:i], m.controlWriteQueue[i+1:]...)
	}
}

// SetStreamAsControl 把流标记为控制流
//
// 控制流绝不进入优先级写队列，改入按流 ID 升序的有序队列，
// 帧构建器总是先行排空。
func (m *Manager) SetStreamAsControl(s *stream.State) {
	if s.IsControl {
		return
	}
	s.IsControl = true
	m.numControlStreams++
	m.writeQueue.Erase(s.ID)
	m.UpdateWritableStreams(s)
	m.updateAppIdleState()
}

// NumControlStreams 返回控制流数
func (m *Manager) NumControlStreams() uint64 {
	return m.numControlStreams
}

// HasNonCtrlStreams 返回是否存在非控制流
func (m *Manager) HasNonCtrlStreams() bool {
	return uint64(len(m.streams)) != m.numControlStreams
}

// SetStreamPriority 更新流的调度优先级
//
// 流存在且优先级确有变化时返回 true，此时已入队的流按新优先级
// 重新排队；优先级未变时不动写队列。
func (m *Manager) SetStreamPriority(id types.StreamID, pri types.Priority) bool {
	s := m.streams[id]
	if s == nil {
		return false
	}
	if s.Priority.Equals(pri) {
		return false
	}
	s.Priority = pri
	m.writeQueue.UpdatePriority(id, pri)
	return true
}

// ClearActionable 清空可触发应用回调的全部集合
func (m *Manager) ClearActionable() {
	m.deliverableStreams = make(map[types.StreamID]struct{})
	m.txStreams = make(map[types.StreamID]struct{})
	m.readableStreams = make(map[types.StreamID]struct{})
	m.uniReadableStreams = make(map[types.StreamID]struct{})
	m.peekableStreams = make(map[types.StreamID]struct{})
	m.flowControlUpdated = make(map[types.StreamID]struct{})
}
