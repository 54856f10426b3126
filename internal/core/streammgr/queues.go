package streammgr

import (
	"github.com/dep2p/go-quic/internal/core/streamid"
	"github.com/dep2p/go-quic/pkg/types"
)

// QueueBlocked 为流在给定偏移排队一个 STREAM_DATA_BLOCKED 事件
func (m *Manager) QueueBlocked(id types.StreamID, offset uint64) {
	m.blockedStreams[id] = types.StreamDataBlockedFrame{StreamID: id, Offset: offset}
}

// RemoveBlocked 移除流的阻塞事件
func (m *Manager) RemoveBlocked(id types.StreamID) {
	delete(m.blockedStreams, id)
}

// HasBlocked 返回是否有阻塞的流
func (m *Manager) HasBlocked() bool {
	return len(m.blockedStreams) > 0
}

// BlockedStreams 返回阻塞事件集合
func (m *Manager) BlockedStreams() map[types.StreamID]types.StreamDataBlockedFrame {
	return m.blockedStreams
}

// QueueWindowUpdate 为流排队一个窗口更新事件
func (m *Manager) QueueWindowUpdate(id types.StreamID) {
	m.windowUpdates[id] = struct{}{}
}

// RemoveWindowUpdate 移除流的窗口更新事件
func (m *Manager) RemoveWindowUpdate(id types.StreamID) {
	delete(m.windowUpdates, id)
}

// PendingWindowUpdate 返回流是否有待发送的窗口更新
func (m *Manager) PendingWindowUpdate(id types.StreamID) bool {
	_, ok := m.windowUpdates[id]
	return ok
}

// HasWindowUpdates 返回是否有任何待发送的窗口更新
func (m *Manager) HasWindowUpdates() bool {
	return len(m.windowUpdates) > 0
}

// WindowUpdates 返回窗口更新集合
func (m *Manager) WindowUpdates() map[types.StreamID]struct{} {
	return m.windowUpdates
}

// QueueFlowControlUpdated 登记一条流控额度发生变化的流
func (m *Manager) QueueFlowControlUpdated(id types.StreamID) {
	m.flowControlUpdated[id] = struct{}{}
}

// FlowControlUpdatedContains 返回流是否在流控变化集合中
func (m *Manager) FlowControlUpdatedContains(id types.StreamID) bool {
	_, ok := m.flowControlUpdated[id]
	return ok
}

// RemoveFlowControlUpdated 移除流控变化登记
func (m *Manager) RemoveFlowControlUpdated(id types.StreamID) {
	delete(m.flowControlUpdated, id)
}

// PopFlowControlUpdated 取走任意一条流控变化的流
func (m *Manager) PopFlowControlUpdated() (types.StreamID, bool) {
	for id := range m.flowControlUpdated {
		delete(m.flowControlUpdated, id)
		return id, true
	}
	return 0, false
}

// ConsumeFlowControlUpdated 取走全部流控变化的流
func (m *Manager) ConsumeFlowControlUpdated() []types.StreamID {
	res := make([]types.StreamID, 0, len(m.flowControlUpdated))
	for id := range m.flowControlUpdated {
		res = append(res, id)
	}
	m.flowControlUpdated = make(map[types.StreamID]struct{})
	return res
}

// ClearFlowControlUpdated 清空流控变化集合
func (m *Manager) ClearFlowControlUpdated() {
	m.flowControlUpdated = make(map[types.StreamID]struct{})
}

// AddLoss 登记一条丢失缓冲非空的流（仅测试直接使用）
func (m *Manager) AddLoss(id types.StreamID) {
	m.lossStreams[id] = struct{}{}
}

// RemoveLoss 移除丢失登记（仅测试直接使用）
func (m *Manager) RemoveLoss(id types.StreamID) {
	delete(m.lossStreams, id)
	delete(m.lossDSRStreams, id)
}

// HasLoss 返回是否有任何类型的数据丢失
func (m *Manager) HasLoss() bool {
	return len(m.lossStreams) > 0 || len(m.lossDSRStreams) > 0
}

// HasNonDSRLoss 返回是否有非 DSR 数据丢失
func (m *Manager) HasNonDSRLoss() bool {
	return len(m.lossStreams) > 0
}

// HasDSRLoss 返回是否有 DSR 数据丢失
func (m *Manager) HasDSRLoss() bool {
	return len(m.lossDSRStreams) > 0
}

// LossStreams 返回丢失流集合
func (m *Manager) LossStreams() map[types.StreamID]struct{} {
	return m.lossStreams
}

// LossDSRStreams 返回 DSR 丢失流集合
func (m *Manager) LossDSRStreams() map[types.StreamID]struct{} {
	return m.lossDSRStreams
}

// AddDeliverable 登记一条可触发送达回调的流
func (m *Manager) AddDeliverable(id types.StreamID) {
	m.deliverableStreams[id] = struct{}{}
}

// RemoveDeliverable 移除送达登记
func (m *Manager) RemoveDeliverable(id types.StreamID) {
	delete(m.deliverableStreams, id)
}

// PopDeliverable 取走任意一条可送达流
func (m *Manager) PopDeliverable() (types.StreamID, bool) {
	for id := range m.deliverableStreams {
		delete(m.deliverableStreams, id)
		return id, true
	}
	return 0, false
}

// HasDeliverable 返回是否有可送达流
func (m *Manager) HasDeliverable() bool {
	return len(m.deliverableStreams) > 0
}

// DeliverableContains 返回流是否在可送达集合中
func (m *Manager) DeliverableContains(id types.StreamID) bool {
	_, ok := m.deliverableStreams[id]
	return ok
}

// DeliverableStreams 返回可送达流集合
func (m *Manager) DeliverableStreams() map[types.StreamID]struct{} {
	return m.deliverableStreams
}

// AddTx 登记一条可触发发送回调的流
func (m *Manager) AddTx(id types.StreamID) {
	m.txStreams[id] = struct{}{}
}

// RemoveTx 移除发送回调登记
func (m *Manager) RemoveTx(id types.StreamID) {
	delete(m.txStreams, id)
}

// PopTx 取走任意一条可触发发送回调的流
func (m *Manager) PopTx() (types.StreamID, bool) {
	for id := range m.txStreams {
		delete(m.txStreams, id)
		return id, true
	}
	return 0, false
}

// HasTx 返回是否有可触发发送回调的流
func (m *Manager) HasTx() bool {
	return len(m.txStreams) > 0
}

// TxContains 返回流是否在发送回调集合中
func (m *Manager) TxContains(id types.StreamID) bool {
	_, ok := m.txStreams[id]
	return ok
}

// TxStreams 返回发送回调流集合
func (m *Manager) TxStreams() map[types.StreamID]struct{} {
	return m.txStreams
}

// AddStopSending 登记一条要求对端停止发送的流
func (m *Manager) AddStopSending(id types.StreamID, code types.ApplicationErrorCode) {
	m.stopSendingStreams[id] = code
}

// StopSendingStreams 返回停止发送事件集合
func (m *Manager) StopSendingStreams() map[types.StreamID]types.ApplicationErrorCode {
	return m.stopSendingStreams
}

// ConsumeStopSending 取走全部停止发送事件
func (m *Manager) ConsumeStopSending() map[types.StreamID]types.ApplicationErrorCode {
	res := m.stopSendingStreams
	m.stopSendingStreams = make(map[types.StreamID]types.ApplicationErrorCode)
	return res
}

// ClearStopSending 清空停止发送事件
func (m *Manager) ClearStopSending() {
	m.stopSendingStreams = make(map[types.StreamID]types.ApplicationErrorCode)
}

// OpenBidirectionalPeerStreams 返回对端双向打开集合
func (m *Manager) OpenBidirectionalPeerStreams() *streamid.Set {
	return m.openBidiPeer
}

// OpenUnidirectionalPeerStreams 返回对端单向打开集合
func (m *Manager) OpenUnidirectionalPeerStreams() *streamid.Set {
	return m.openUniPeer
}

// OpenBidirectionalLocalStreams 返回本端双向打开集合
func (m *Manager) OpenBidirectionalLocalStreams() *streamid.Set {
	return m.openBidiLocal
}

// OpenUnidirectionalLocalStreams 返回本端单向打开集合
func (m *Manager) OpenUnidirectionalLocalStreams() *streamid.Set {
	return m.openUniLocal
}
