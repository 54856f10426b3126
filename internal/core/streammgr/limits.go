package streammgr

import (
	"github.com/quic-go/quic-go/quicvarint"

	"github.com/dep2p/go-quic/pkg/types"
)

// maxStreamsCount 单方向流数上限，保证 initial + n*4 不溢出 uint62
const maxStreamsCount = quicvarint.Max / types.StreamIncrement

// SetMaxLocalBidirectionalStreams 设置本端双向流限额
//
// 非 force 时只允许提升；严格提升会置位确认标志，
// 由 ConsumeMaxLocalBidirectionalStreamIDIncreased 消费。
func (m *Manager) SetMaxLocalBidirectionalStreams(n uint64, force bool) {
	m.setMaxStreams(&m.maxLocalBidi, m.initialLocalBidi, n, force, &m.maxLocalBidiIncreased)
}

// SetMaxLocalUnidirectionalStreams 设置本端单向流限额
func (m *Manager) SetMaxLocalUnidirectionalStreams(n uint64, force bool) {
	m.setMaxStreams(&m.maxLocalUni, m.initialLocalUni, n, force, &m.maxLocalUniIncreased)
}

// SetMaxRemoteBidirectionalStreams 设置对端双向流限额（只升不降）
func (m *Manager) SetMaxRemoteBidirectionalStreams(n uint64) {
	m.setMaxRemoteBidiStreamsInternal(n, false)
}

// SetMaxRemoteUnidirectionalStreams 设置对端单向流限额（只升不降）
func (m *Manager) SetMaxRemoteUnidirectionalStreams(n uint64) {
	m.setMaxRemoteUniStreamsInternal(n, false)
}

func (m *Manager) setMaxRemoteBidiStreamsInternal(n uint64, force bool) {
	m.setMaxStreams(&m.maxRemoteBidi, m.initialRemoteBidi, n, force, nil)
}

func (m *Manager) setMaxRemoteUniStreamsInternal(n uint64, force bool) {
	m.setMaxStreams(&m.maxRemoteUni, m.initialRemoteUni, n, force, nil)
}

func (m *Manager) setMaxStreams(max *types.StreamID, initial types.StreamID,
	n uint64, force bool, increased *bool) {
	if n > maxStreamsCount {
		n = maxStreamsCount
	}
	newMax := initial + types.StreamID(n*types.StreamIncrement)
	if !force && newMax < *max {
		return
	}
	if newMax > *max && increased != nil {
		*increased = true
	}
	*max = newMax
}

// ConsumeMaxLocalBidirectionalStreamIDIncreased 取走并清除双向限额提升标志
func (m *Manager) ConsumeMaxLocalBidirectionalStreamIDIncreased() bool {
	res := m.maxLocalBidiIncreased
	m.maxLocalBidiIncreased = false
	return res
}

// ConsumeMaxLocalUnidirectionalStreamIDIncreased 取走并清除单向限额提升标志
func (m *Manager) ConsumeMaxLocalUnidirectionalStreamIDIncreased() bool {
	res := m.maxLocalUniIncreased
	m.maxLocalUniIncreased = false
	return res
}

// SetStreamLimitWindowingFraction 设置流限额通告的窗口分数
//
// 取 2 表示每关闭初始限额一半的对端流就通告一次新的 MAX_STREAMS。
// 0 被忽略。
func (m *Manager) SetStreamLimitWindowingFraction(fraction uint64) {
	if fraction > 0 {
		m.windowingFraction = fraction
	}
}

// RemoteBidirectionalStreamLimitUpdate 取走待发送的双向 MAX_STREAMS 值
//
// 每次关闭双向对端流都可能刷新该值；调用即消费。
func (m *Manager) RemoteBidirectionalStreamLimitUpdate() (uint64, bool) {
	if m.remoteBidiLimitUpdate == nil {
		return 0, false
	}
	res := *m.remoteBidiLimitUpdate
	m.remoteBidiLimitUpdate = nil
	return res, true
}

// RemoteUnidirectionalStreamLimitUpdate 取走待发送的单向 MAX_STREAMS 值
func (m *Manager) RemoteUnidirectionalStreamLimitUpdate() (uint64, bool) {
	if m.remoteUniLimitUpdate == nil {
		return 0, false
	}
	res := *m.remoteUniLimitUpdate
	m.remoteUniLimitUpdate = nil
	return res, true
}

// queueStreamsBlocked 排队一个 STREAMS_BLOCKED（仅告知性质）
func (m *Manager) queueStreamsBlocked(uni bool, max, initial types.StreamID) {
	limit := uint64(max-initial) / types.StreamIncrement
	m.pendingStreamsBlocked = append(m.pendingStreamsBlocked, types.StreamsBlockedFrame{
		Unidirectional: uni,
		StreamLimit:    limit,
	})
}

// ConsumeStreamsBlocked 取走待发送的 STREAMS_BLOCKED 帧
func (m *Manager) ConsumeStreamsBlocked() []types.StreamsBlockedFrame {
	res := m.pendingStreamsBlocked
	m.pendingStreamsBlocked = nil
	return res
}
