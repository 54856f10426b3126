package streammgr

import (
	"fmt"

	"github.com/dep2p/go-quic/internal/core/stream"
	"github.com/dep2p/go-quic/internal/core/streamid"
	"github.com/dep2p/go-quic/pkg/types"
)

// GetStream 返回流记录，必要时创建
//
// 对端类别的 ID 走 getOrCreatePeerStream（可能隐式打开更低的 ID）；
// 本端类别的 ID 只做查找，已关闭或从未打开时返回 ErrStreamNotFound。
// 已关闭的对端流返回 (nil, nil)，调用方应忽略该帧。
func (m *Manager) GetStream(id types.StreamID, group *types.StreamGroupID) (*stream.State, error) {
	if id.IsPeer(m.nodeType) {
		return m.getOrCreatePeerStream(id, group)
	}
	if s := m.streams[id]; s != nil {
		return s, nil
	}
	if s := m.getOrCreateOpenedLocalStream(id); s != nil {
		return s, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrStreamNotFound, id)
}

// getOrCreatePeerStream 返回对端流记录，必要时创建
//
// 帧处理管线对任何携带对端流 ID 的帧调用本方法。QUIC 允许对端
// 先打开更高的 ID：从 nextAcceptable 到 id 的全部同类 ID 都被隐式打开。
func (m *Manager) getOrCreatePeerStream(id types.StreamID, group *types.StreamGroupID) (*stream.State, error) {
	if !id.IsPeer(m.nodeType) {
		return nil, fmt.Errorf("%w: %s is not a peer stream", ErrInvalidStreamID, id)
	}
	if group != nil {
		if err := m.validatePeerGroup(id, *group); err != nil {
			return nil, err
		}
	}

	if s := m.streams[id]; s != nil {
		return s, nil
	}

	var (
		open *streamid.Set
		next *types.StreamID
		max  types.StreamID
	)
	if id.IsUnidirectional() {
		open, next, max = m.openUniPeer, &m.nextAcceptablePeerUni, m.maxRemoteUni
	} else {
		open, next, max = m.openBidiPeer, &m.nextAcceptablePeerBidi, m.maxRemoteBidi
	}

	if open.Contains(id) {
		// 打开过但记录已回收：流已关闭，帧应被忽略
		return nil, nil
	}
	if id >= max {
		return nil, fmt.Errorf("%w: %s >= %d", ErrStreamLimitExceeded, id, max)
	}
	if id < *next {
		// 低于游标却不在打开集合中：流已关闭
		return nil, nil
	}

	// 隐式打开 [next, id] 内的全部同类 ID
	var terminal *stream.State
	for cur := *next; cur <= id; cur += types.StreamIncrement {
		var g *types.StreamGroupID
		if cur == id {
			g = group
		}
		terminal = m.instantiatePeerStream(cur, open, g)
	}
	*next = id + types.StreamIncrement
	m.updateAppIdleState()
	return terminal, nil
}

// instantiatePeerStream 创建单条对端流记录并登记新流
func (m *Manager) instantiatePeerStream(id types.StreamID, open *streamid.Set, group *types.StreamGroupID) *stream.State {
	s := stream.New(id, m.conn)
	m.streams[id] = s
	open.Add(id)
	m.newPeerStreams = append(m.newPeerStreams, id)
	if group != nil {
		g := *group
		s.GroupID = &g
		m.newGroupedPeerStreams = append(m.newGroupedPeerStreams, id)
		m.recordPeerGroup(id, g)
	}
	return s
}

// validatePeerGroup 校验对端引用的流组 ID
func (m *Manager) validatePeerGroup(id types.StreamID, group types.StreamGroupID) error {
	if group.IsUnidirectional() != id.IsUnidirectional() {
		return fmt.Errorf("%w: group %d direction mismatch for %s", ErrInvalidStreamID, group, id)
	}
	base := uint64(m.initialRemoteBidi)
	if id.IsUnidirectional() {
		base = uint64(m.initialRemoteUni)
	}
	if (uint64(group)-base)%types.StreamGroupIncrement != 0 {
		return fmt.Errorf("%w: group %d not aligned", ErrInvalidStreamID, group)
	}
	if uint64(group) >= base+uint64(types.MaxStreamGroupID) {
		return fmt.Errorf("%w: group %d", ErrGroupLimitReached, group)
	}
	return nil
}

// recordPeerGroup 登记对端流组，首次出现时进入新组集合
func (m *Manager) recordPeerGroup(id types.StreamID, group types.StreamGroupID) {
	seen := m.peerBidiGroupsSeen
	if id.IsUnidirectional() {
		seen = m.peerUniGroupsSeen
	}
	if !seen.Contains(types.StreamID(group)) {
		seen.Add(types.StreamID(group))
		m.newPeerStreamGroups[group] = struct{}{}
	}
}

// ConsumeNewPeerStreams 取走最近打开的对端流列表
func (m *Manager) ConsumeNewPeerStreams() []types.StreamID {
	res := m.newPeerStreams
	m.newPeerStreams = nil
	return res
}

// ConsumeNewGroupedPeerStreams 取走最近打开的带组对端流列表
func (m *Manager) ConsumeNewGroupedPeerStreams() []types.StreamID {
	res := m.newGroupedPeerStreams
	m.newGroupedPeerStreams = nil
	return res
}

// ConsumeNewPeerStreamGroups 取走最近出现的对端流组集合
func (m *Manager) ConsumeNewPeerStreamGroups() map[types.StreamGroupID]struct{} {
	res := m.newPeerStreamGroups
	m.newPeerStreamGroups = make(map[types.StreamGroupID]struct{})
	return res
}

// NumNewPeerStreamGroups 返回尚未消费的对端新流组数
func (m *Manager) NumNewPeerStreamGroups() int {
	return len(m.newPeerStreamGroups)
}

// NumPeerStreamGroupsSeen 返回对端出现过的流组总数
func (m *Manager) NumPeerStreamGroupsSeen() uint64 {
	return m.peerBidiGroupsSeen.Size() + m.peerUniGroupsSeen.Size()
}
