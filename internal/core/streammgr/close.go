package streammgr

import (
	"fmt"

	"github.com/dep2p/go-quic/pkg/types"
)

// AddClosed 把两个方向都已到达终态的流移入待回收集合
func (m *Manager) AddClosed(id types.StreamID) {
	m.closedStreams[id] = struct{}{}
}

// ClosedStreams 返回待回收的流集合
func (m *Manager) ClosedStreams() map[types.StreamID]struct{} {
	return m.closedStreams
}

// RemoveClosedStream 回收一条已关闭的流
//
// 记录必须存在且两个方向都到达终态，违反属于程序错误。
// 回收后该 ID 从所有派生集合、打开集合与写队列中消失；
// 对端流的回收会推动 MAX_STREAMS 通告窗口。
func (m *Manager) RemoveClosedStream(id types.StreamID) {
	s := m.streams[id]
	if s == nil {
		panic(fmt.Sprintf("streammgr: remove of unknown or already removed stream %s", id))
	}
	if !s.Closed() {
		panic(fmt.Sprintf("streammgr: remove of non-terminal stream %s (send=%s recv=%s)",
			id, s.Send.State(), s.Recv.State()))
	}

	logger.Debug("removing closed stream", "stream", uint64(id))

	delete(m.streams, id)
	delete(m.readableStreams, id)
	delete(m.uniReadableStreams, id)
	delete(m.peekableStreams, id)
	delete(m.writableStreams, id)
	delete(m.writableDSRStreams, id)
	delete(m.txStreams, id)
	delete(m.deliverableStreams, id)
	delete(m.lossStreams, id)
	delete(m.lossDSRStreams, id)
	delete(m.windowUpdates, id)
	delete(m.flowControlUpdated, id)
	delete(m.blockedStreams, id)
	delete(m.stopSendingStreams, id)
	delete(m.closedStreams, id)
	m.writeQueue.Erase(id)
	m.controlQueueRemove(id)

	if s.IsControl {
		m.numControlStreams--
	}

	if id.IsPeer(m.nodeType) {
		m.removeClosedPeerStream(id)
	} else if id.IsUnidirectional() {
		m.openUniLocal.Remove(id)
	} else {
		m.openBidiLocal.Remove(id)
	}

	m.updateAppIdleState()
}

// removeClosedPeerStream 从打开集合移除对端流并推动限额通告窗口
//
// 当可打开数与仍打开数之和不超过初始限额减窗口时，以
// 已关闭数 + 初始限额 作为新的累计 MAX_STREAMS 值。
func (m *Manager) removeClosedPeerStream(id types.StreamID) {
	if id.IsUnidirectional() {
		m.openUniPeer.Remove(id)
		initialLimit := m.settings.InitialMaxStreamsUni
		window := initialLimit / m.windowingFraction
		openable := m.OpenableRemoteUnidirectionalStreams()
		openCount := m.openUniPeer.Size()
		if openable+openCount <= initialLimit-window {
			closed := uint64(m.nextAcceptablePeerUni-m.initialRemoteUni)/types.StreamIncrement - openCount
			update := closed + initialLimit
			m.setMaxRemoteUniStreamsInternal(update, true)
			m.remoteUniLimitUpdate = &update
		}
		return
	}

	m.openBidiPeer.Remove(id)
	initialLimit := m.settings.InitialMaxStreamsBidi
	window := initialLimit / m.windowingFraction
	openable := m.OpenableRemoteBidirectionalStreams()
	openCount := m.openBidiPeer.Size()
	if openable+openCount <= initialLimit-window {
		closed := uint64(m.nextAcceptablePeerBidi-m.initialRemoteBidi)/types.StreamIncrement - openCount
		update := closed + initialLimit
		m.setMaxRemoteBidiStreamsInternal(update, true)
		m.remoteBidiLimitUpdate = &update
	}
}
