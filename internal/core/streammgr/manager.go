package streammgr

import (
	"fmt"

	"github.com/dep2p/go-quic/config"
	"github.com/dep2p/go-quic/internal/core/priority"
	"github.com/dep2p/go-quic/internal/core/stream"
	"github.com/dep2p/go-quic/internal/core/streamid"
	"github.com/dep2p/go-quic/pkg/interfaces"
	"github.com/dep2p/go-quic/pkg/lib/log"
	"github.com/dep2p/go-quic/pkg/types"
)

var logger = log.Logger("core/streammgr")

// Manager 连接内全部流的管理器
//
// 零值不可用，必须通过 New 或 NewFromMigration 构造。
type Manager struct {
	conn     interfaces.Connection
	nodeType types.NodeType
	settings *config.TransportSettings

	// 各类别下一个可接受 / 可创建的流 ID（单调递增）
	nextAcceptablePeerBidi  types.StreamID
	nextAcceptablePeerUni   types.StreamID
	nextAcceptableLocalBidi types.StreamID
	nextAcceptableLocalUni  types.StreamID
	nextBidi                types.StreamID
	nextUni                 types.StreamID

	// 流组分配游标（与流 ID 共用编号空间）
	nextBidiGroup types.StreamGroupID
	nextUniGroup  types.StreamGroupID

	// 流限额上限
	maxLocalBidi  types.StreamID
	maxLocalUni   types.StreamID
	maxRemoteBidi types.StreamID
	maxRemoteUni  types.StreamID

	// 各类别初始 ID
	initialLocalBidi  types.StreamID
	initialLocalUni   types.StreamID
	initialRemoteBidi types.StreamID
	initialRemoteUni  types.StreamID

	// 流限额通告窗口分数
	windowingFraction uint64

	// 待发送的 MAX_STREAMS 值（消费即清除）
	remoteBidiLimitUpdate *uint64
	remoteUniLimitUpdate  *uint64

	numControlStreams uint64

	// 四个类别的已打开流集合
	openBidiPeer  *streamid.Set
	openUniPeer   *streamid.Set
	openBidiLocal *streamid.Set
	openUniLocal  *streamid.Set

	// 本端已创建的流组集合
	openBidiLocalGroups *streamid.Set
	openUniLocalGroups  *streamid.Set

	// 对端出现过的流组集合
	peerBidiGroupsSeen *streamid.Set
	peerUniGroupsSeen  *streamid.Set

	// 活跃流记录（事实来源）
	streams map[types.StreamID]*stream.State

	// 最近打开的对端流（消费即清除）
	newPeerStreams        []types.StreamID
	newGroupedPeerStreams []types.StreamID
	newPeerStreamGroups   map[types.StreamGroupID]struct{}

	// 派生集合
	blockedStreams        map[types.StreamID]types.StreamDataBlockedFrame
	stopSendingStreams    map[types.StreamID]types.ApplicationErrorCode
	windowUpdates         map[types.StreamID]struct{}
	flowControlUpdated    map[types.StreamID]struct{}
	lossStreams           map[types.StreamID]struct{}
	lossDSRStreams        map[types.StreamID]struct{}
	readableStreams       map[types.StreamID]struct{}
	uniReadableStreams    map[types.StreamID]struct{}
	peekableStreams       map[types.StreamID]struct{}
	writableStreams       map[types.StreamID]struct{}
	writableDSRStreams    map[types.StreamID]struct{}
	txStreams             map[types.StreamID]struct{}
	deliverableStreams    map[types.StreamID]struct{}
	closedStreams         map[types.StreamID]struct{}
	pendingStreamsBlocked []types.StreamsBlockedFrame

	// 非控制可写流的优先级队列
	writeQueue interfaces.WriteScheduler

	// 控制流的有序写队列（升序）
	controlWriteQueue []types.StreamID

	isAppIdle bool

	maxLocalBidiIncreased bool
	maxLocalUniIncreased  bool
}

// New 创建流管理器
//
// 端点角色决定四个类别的基准 ID；初始限额来自传输参数。
func New(conn interfaces.Connection, nodeType types.NodeType, settings *config.TransportSettings) *Manager {
	m := &Manager{
		conn:                conn,
		nodeType:            nodeType,
		settings:            settings,
		streams:             make(map[types.StreamID]*stream.State),
		newPeerStreamGroups: make(map[types.StreamGroupID]struct{}),
		blockedStreams:      make(map[types.StreamID]types.StreamDataBlockedFrame),
		stopSendingStreams:  make(map[types.StreamID]types.ApplicationErrorCode),
		windowUpdates:       make(map[types.StreamID]struct{}),
		flowControlUpdated:  make(map[types.StreamID]struct{}),
		lossStreams:         make(map[types.StreamID]struct{}),
		lossDSRStreams:      make(map[types.StreamID]struct{}),
		readableStreams:     make(map[types.StreamID]struct{}),
		uniReadableStreams:  make(map[types.StreamID]struct{}),
		peekableStreams:     make(map[types.StreamID]struct{}),
		writableStreams:     make(map[types.StreamID]struct{}),
		writableDSRStreams:  make(map[types.StreamID]struct{}),
		txStreams:           make(map[types.StreamID]struct{}),
		deliverableStreams:  make(map[types.StreamID]struct{}),
		closedStreams:       make(map[types.StreamID]struct{}),
		writeQueue:          priority.NewQueue(),
		windowingFraction:   config.DefaultStreamLimitWindowingFraction,
	}

	if nodeType == types.NodeTypeServer {
		m.nextAcceptablePeerBidi = 0x00
		m.nextAcceptablePeerUni = 0x02
		m.nextAcceptableLocalBidi = 0x01
		m.nextAcceptableLocalUni = 0x03
		m.nextBidi = 0x01
		m.nextUni = 0x03
		m.initialLocalBidi = 0x01
		m.initialLocalUni = 0x03
		m.initialRemoteBidi = 0x00
		m.initialRemoteUni = 0x02
	} else {
		m.nextAcceptablePeerBidi = 0x01
		m.nextAcceptablePeerUni = 0x03
		m.nextAcceptableLocalBidi = 0x00
		m.nextAcceptableLocalUni = 0x02
		m.nextBidi = 0x00
		m.nextUni = 0x02
		m.initialLocalBidi = 0x00
		m.initialLocalUni = 0x02
		m.initialRemoteBidi = 0x01
		m.initialRemoteUni = 0x03
	}
	// 流组与流 ID 共用编号空间
	m.nextBidiGroup = types.StreamGroupID(m.nextBidi)
	m.nextUniGroup = types.StreamGroupID(m.nextUni)

	m.maxLocalBidi = m.initialLocalBidi
	m.maxLocalUni = m.initialLocalUni
	m.maxRemoteBidi = m.initialRemoteBidi
	m.maxRemoteUni = m.initialRemoteUni

	m.openBidiLocal = streamid.New(m.initialLocalBidi)
	m.openUniLocal = streamid.New(m.initialLocalUni)
	m.openBidiPeer = streamid.New(m.initialRemoteBidi)
	m.openUniPeer = streamid.New(m.initialRemoteUni)
	m.openBidiLocalGroups = streamid.New(types.StreamID(m.nextBidiGroup))
	m.openUniLocalGroups = streamid.New(types.StreamID(m.nextUniGroup))
	m.peerBidiGroupsSeen = streamid.New(m.initialRemoteBidi)
	m.peerUniGroupsSeen = streamid.New(m.initialRemoteUni)

	m.RefreshTransportSettings(settings)
	return m
}

// NewFromMigration 从既有管理器迁移构造
//
// 在新的拥有线程上、任何并发访问之前调用：批量转移全部映射与集合，
// 并把每条流记录的连接引用重绑到新连接。
// 迁移后 other 不得再被使用。
func NewFromMigration(conn interfaces.Connection, nodeType types.NodeType,
	settings *config.TransportSettings, other *Manager) *Manager {
	m := *other
	m.conn = conn
	m.nodeType = nodeType
	m.settings = settings
	other.streams = nil

	// 连接引用不随记录自动迁移，逐条重绑
	for _, s := range m.streams {
		s.BindConn(conn)
	}
	return &m
}

// RefreshTransportSettings 应用传输参数
//
// 本端通告的 initial_max_streams 作为对端流限额的初始上限；
// 窗口分数与写配额同步生效。
func (m *Manager) RefreshTransportSettings(settings *config.TransportSettings) {
	m.settings = settings
	m.setMaxRemoteBidiStreamsInternal(settings.InitialMaxStreamsBidi, true)
	m.setMaxRemoteUniStreamsInternal(settings.InitialMaxStreamsUni, true)
	m.SetStreamLimitWindowingFraction(settings.StreamLimitWindowingFraction)
	m.writeQueue.SetMaxNextsPerStream(settings.PriorityQueueWritesPerStream)
}

// NodeType 返回端点角色
func (m *Manager) NodeType() types.NodeType {
	return m.nodeType
}

// FindStream 查找活跃流记录，不存在时返回 nil
func (m *Manager) FindStream(id types.StreamID) *stream.State {
	return m.streams[id]
}

// StreamExists 返回流是否存在记录
func (m *Manager) StreamExists(id types.StreamID) bool {
	_, ok := m.streams[id]
	return ok
}

// StreamCount 返回活跃流数
func (m *Manager) StreamCount() int {
	return len(m.streams)
}

// StreamStateForEach 对每条活跃流执行 f
//
// 迭代开销与流数成正比，仅用于连接拆除或批量巡检。
func (m *Manager) StreamStateForEach(f func(*stream.State)) {
	for _, s := range m.streams {
		f(s)
	}
}

// OpenableLocalBidirectionalStreams 返回本端还可创建的双向流数
func (m *Manager) OpenableLocalBidirectionalStreams() uint64 {
	return m.openable(m.maxLocalBidi, m.nextAcceptableLocalBidi)
}

// OpenableLocalUnidirectionalStreams 返回本端还可创建的单向流数
func (m *Manager) OpenableLocalUnidirectionalStreams() uint64 {
	return m.openable(m.maxLocalUni, m.nextAcceptableLocalUni)
}

// OpenableRemoteBidirectionalStreams 返回对端还可打开的双向流数
func (m *Manager) OpenableRemoteBidirectionalStreams() uint64 {
	return m.openable(m.maxRemoteBidi, m.nextAcceptablePeerBidi)
}

// OpenableRemoteUnidirectionalStreams 返回对端还可打开的单向流数
func (m *Manager) OpenableRemoteUnidirectionalStreams() uint64 {
	return m.openable(m.maxRemoteUni, m.nextAcceptablePeerUni)
}

func (m *Manager) openable(max, next types.StreamID) uint64 {
	if max < next {
		panic(fmt.Sprintf("streammgr: max stream id %d below next acceptable %d", max, next))
	}
	return uint64(max-next) / types.StreamIncrement
}

// NextAcceptablePeerBidirectionalStreamID 返回对端下一个可用双向流 ID
//
// 限额耗尽时返回 false。
func (m *Manager) NextAcceptablePeerBidirectionalStreamID() (types.StreamID, bool) {
	return nextIfBelow(m.nextAcceptablePeerBidi, m.maxRemoteBidi)
}

// NextAcceptablePeerUnidirectionalStreamID 返回对端下一个可用单向流 ID
func (m *Manager) NextAcceptablePeerUnidirectionalStreamID() (types.StreamID, bool) {
	return nextIfBelow(m.nextAcceptablePeerUni, m.maxRemoteUni)
}

// NextAcceptableLocalBidirectionalStreamID 返回本端下一个可用双向流 ID
func (m *Manager) NextAcceptableLocalBidirectionalStreamID() (types.StreamID, bool) {
	return nextIfBelow(m.nextAcceptableLocalBidi, m.maxLocalBidi)
}

// NextAcceptableLocalUnidirectionalStreamID 返回本端下一个可用单向流 ID
func (m *Manager) NextAcceptableLocalUnidirectionalStreamID() (types.StreamID, bool) {
	return nextIfBelow(m.nextAcceptableLocalUni, m.maxLocalUni)
}

func nextIfBelow(next, max types.StreamID) (types.StreamID, bool) {
	if max < next {
		panic(fmt.Sprintf("streammgr: max stream id %d below next acceptable %d", max, next))
	}
	if next == max {
		return 0, false
	}
	return next, true
}

// IsAppIdle 返回当前是否应用空闲（只剩控制流）
func (m *Manager) IsAppIdle() bool {
	return m.isAppIdle
}

// updateAppIdleState 在流数量变化后刷新应用空闲状态
//
// 状态翻转时通知连接，驱动拥塞控制器的 app-idle 模式。
func (m *Manager) updateAppIdleState() {
	idle := uint64(len(m.streams)) == m.numControlStreams
	if idle == m.isAppIdle {
		return
	}
	m.isAppIdle = idle
	if m.conn != nil {
		m.conn.OnAppIdleChanged(idle)
	}
}

// ClearOpenStreams 清除全部打开的流
//
// 用于连接拆除：所有记录、打开集合与派生集合一并清空。
func (m *Manager) ClearOpenStreams() {
	m.openBidiLocal.Clear()
	m.openUniLocal.Clear()
	m.openBidiPeer.Clear()
	m.openUniPeer.Clear()
	m.streams = make(map[types.StreamID]*stream.State)
	m.numControlStreams = 0
	m.newPeerStreams = nil
	m.newGroupedPeerStreams = nil
	m.newPeerStreamGroups = make(map[types.StreamGroupID]struct{})
	m.blockedStreams = make(map[types.StreamID]types.StreamDataBlockedFrame)
	m.stopSendingStreams = make(map[types.StreamID]types.ApplicationErrorCode)
	m.windowUpdates = make(map[types.StreamID]struct{})
	m.flowControlUpdated = make(map[types.StreamID]struct{})
	m.lossStreams = make(map[types.StreamID]struct{})
	m.lossDSRStreams = make(map[types.StreamID]struct{})
	m.readableStreams = make(map[types.StreamID]struct{})
	m.uniReadableStreams = make(map[types.StreamID]struct{})
	m.peekableStreams = make(map[types.StreamID]struct{})
	m.writableStreams = make(map[types.StreamID]struct{})
	m.writableDSRStreams = make(map[types.StreamID]struct{})
	m.txStreams = make(map[types.StreamID]struct{})
	m.deliverableStreams = make(map[types.StreamID]struct{})
	m.closedStreams = make(map[types.StreamID]struct{})
	m.writeQueue.Clear()
	m.controlWriteQueue = nil
	m.updateAppIdleState()
}
