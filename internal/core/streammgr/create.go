package streammgr

import (
	"fmt"

	"github.com/dep2p/go-quic/internal/core/stream"
	"github.com/dep2p/go-quic/internal/core/streamid"
	"github.com/dep2p/go-quic/pkg/types"
)

// CreateNextBidirectionalStream 创建下一条本端双向流
//
// 限额耗尽时返回 ErrStreamLimitReached 并排队一个 STREAMS_BLOCKED；
// 引用了未创建的流组时返回 ErrGroupUnknown。
func (m *Manager) CreateNextBidirectionalStream(group *types.StreamGroupID) (*stream.State, error) {
	if group != nil && !hasLocalGroup(m.openBidiLocalGroups, *group) {
		return nil, fmt.Errorf("%w: group %d", ErrGroupUnknown, *group)
	}
	if m.nextBidi == m.maxLocalBidi {
		m.queueStreamsBlocked(false, m.maxLocalBidi, m.initialLocalBidi)
		return nil, ErrStreamLimitReached
	}
	s, err := m.createLocalStream(m.nextBidi, group)
	if err != nil {
		return nil, err
	}
	m.nextBidi += types.StreamIncrement
	return s, nil
}

// CreateNextUnidirectionalStream 创建下一条本端单向流
func (m *Manager) CreateNextUnidirectionalStream(group *types.StreamGroupID) (*stream.State, error) {
	if group != nil && !hasLocalGroup(m.openUniLocalGroups, *group) {
		return nil, fmt.Errorf("%w: group %d", ErrGroupUnknown, *group)
	}
	if m.nextUni == m.maxLocalUni {
		m.queueStreamsBlocked(true, m.maxLocalUni, m.initialLocalUni)
		return nil, ErrStreamLimitReached
	}
	s, err := m.createLocalStream(m.nextUni, group)
	if err != nil {
		return nil, err
	}
	m.nextUni += types.StreamIncrement
	return s, nil
}

// hasLocalGroup 判断本端流组是否已创建；与集合类别不对齐的组 ID 视为未创建
func hasLocalGroup(groups *streamid.Set, group types.StreamGroupID) bool {
	if (uint64(group)-uint64(groups.Base()))%types.StreamGroupIncrement != 0 {
		return false
	}
	return groups.Contains(types.StreamID(group))
}

// CreateStream 以指定 ID 创建本端流
//
// 仅供内部与测试使用。ID 必须属于本端类别；已存在时返回既有记录。
func (m *Manager) CreateStream(id types.StreamID, group *types.StreamGroupID) (*stream.State, error) {
	if !id.IsLocal(m.nodeType) {
		return nil, fmt.Errorf("%w: %s is not a local stream", ErrInvalidStreamID, id)
	}
	if s := m.streams[id]; s != nil {
		return s, nil
	}
	if s := m.getOrCreateOpenedLocalStream(id); s != nil {
		if group != nil {
			g := *group
			s.GroupID = &g
		}
		return s, nil
	}

	next, max := m.localCursors(id)
	if id < *next {
		// ID 在已分配区间之内却没有记录：流已关闭
		return nil, fmt.Errorf("%w: %s", ErrStreamNotFound, id)
	}
	if id >= max {
		return nil, ErrStreamLimitReached
	}
	s, err := m.createLocalStream(id, group)
	if err != nil {
		return nil, err
	}
	return s, nil
}

// localCursors 返回 ID 所属本端类别的游标与上限
func (m *Manager) localCursors(id types.StreamID) (next *types.StreamID, max types.StreamID) {
	if id.IsUnidirectional() {
		return &m.nextAcceptableLocalUni, m.maxLocalUni
	}
	return &m.nextAcceptableLocalBidi, m.maxLocalBidi
}

// createLocalStream 分配记录并推进游标
func (m *Manager) createLocalStream(id types.StreamID, group *types.StreamGroupID) (*stream.State, error) {
	s := stream.New(id, m.conn)
	if group != nil {
		g := *group
		s.GroupID = &g
	}
	m.streams[id] = s
	if id.IsUnidirectional() {
		m.openUniLocal.Add(id)
		if id >= m.nextAcceptableLocalUni {
			m.nextAcceptableLocalUni = id + types.StreamIncrement
		}
	} else {
		m.openBidiLocal.Add(id)
		if id >= m.nextAcceptableLocalBidi {
			m.nextAcceptableLocalBidi = id + types.StreamIncrement
		}
	}
	m.updateAppIdleState()
	return s, nil
}

// getOrCreateOpenedLocalStream 为已打开但缺少记录的本端流补建记录
//
// 迁移或批量打开后记录可能滞后于打开集合；其余情况返回 nil。
func (m *Manager) getOrCreateOpenedLocalStream(id types.StreamID) *stream.State {
	var open *streamid.Set
	if id.IsUnidirectional() {
		open = m.openUniLocal
	} else {
		open = m.openBidiLocal
	}
	if !open.Contains(id) {
		return nil
	}
	if s := m.streams[id]; s != nil {
		return s
	}
	s := stream.New(id, m.conn)
	m.streams[id] = s
	m.updateAppIdleState()
	return s
}

// CreateNextBidirectionalStreamGroup 创建下一个双向流组
//
// 返回当前组 ID 并推进游标；达到 128 组上限时返回 ErrGroupLimitReached。
func (m *Manager) CreateNextBidirectionalStreamGroup() (types.StreamGroupID, error) {
	return m.createNextStreamGroup(&m.nextBidiGroup, m.openBidiLocalGroups)
}

// CreateNextUnidirectionalStreamGroup 创建下一个单向流组
func (m *Manager) CreateNextUnidirectionalStreamGroup() (types.StreamGroupID, error) {
	return m.createNextStreamGroup(&m.nextUniGroup, m.openUniLocalGroups)
}

func (m *Manager) createNextStreamGroup(next *types.StreamGroupID, groups *streamid.Set) (types.StreamGroupID, error) {
	if groups.Size() >= types.MaxStreamGroupCount {
		return 0, ErrGroupLimitReached
	}
	id := *next
	*next += types.StreamGroupIncrement
	groups.Add(types.StreamID(id))
	return id, nil
}

// NumBidirectionalGroups 返回本端双向流组数
func (m *Manager) NumBidirectionalGroups() uint64 {
	return m.openBidiLocalGroups.Size()
}

// NumUnidirectionalGroups 返回本端单向流组数
func (m *Manager) NumUnidirectionalGroups() uint64 {
	return m.openUniLocalGroups.Size()
}
