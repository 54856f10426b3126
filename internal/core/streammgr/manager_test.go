package streammgr

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-quic/config"
	"github.com/dep2p/go-quic/internal/core/stream"
	"github.com/dep2p/go-quic/pkg/types"
)

// mockConn 实现 interfaces.Connection 用于测试
type mockConn struct {
	id          string
	idleChanges []bool
}

func (c *mockConn) ID() string { return c.id }

func (c *mockConn) OnAppIdleChanged(idle bool) {
	c.idleChanges = append(c.idleChanges, idle)
}

func newTestManager(t *testing.T, nodeType types.NodeType) (*Manager, *mockConn) {
	t.Helper()
	conn := &mockConn{id: "conn-test"}
	settings := config.DefaultTransportSettings()
	return New(conn, nodeType, &settings), conn
}

func terminate(t *testing.T, s *stream.State) {
	t.Helper()
	require.NoError(t, s.Send.OnWriteFIN())
	require.NoError(t, s.Send.OnFINAcked())
	require.NoError(t, s.Recv.OnFinalSize())
	require.NoError(t, s.Recv.OnAllDataReceived())
	require.NoError(t, s.Recv.OnAllDataRead())
}

func TestManager_RoleBases(t *testing.T) {
	server, _ := newTestManager(t, types.NodeTypeServer)
	server.SetMaxLocalBidirectionalStreams(1, false)
	s, err := server.CreateNextBidirectionalStream(nil)
	require.NoError(t, err)
	assert.Equal(t, types.StreamID(0x01), s.ID)

	client, _ := newTestManager(t, types.NodeTypeClient)
	client.SetMaxLocalBidirectionalStreams(1, false)
	client.SetMaxLocalUnidirectionalStreams(1, false)
	cs, err := client.CreateNextBidirectionalStream(nil)
	require.NoError(t, err)
	assert.Equal(t, types.StreamID(0x00), cs.ID)
	cu, err := client.CreateNextUnidirectionalStream(nil)
	require.NoError(t, err)
	assert.Equal(t, types.StreamID(0x02), cu.ID)
}

// TestManager_PeerOpensHigherIDFirst 对端先打开更高的流 ID（场景 1）
func TestManager_PeerOpensHigherIDFirst(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)

	s, err := m.GetStream(8, nil)
	require.NoError(t, err)
	require.NotNil(t, s)
	assert.Equal(t, types.StreamID(8), s.ID)

	assert.Equal(t, 3, m.StreamCount())
	for _, id := range []types.StreamID{0, 4, 8} {
		assert.True(t, m.StreamExists(id), "stream %d", id)
		assert.True(t, m.OpenBidirectionalPeerStreams().Contains(id))
	}
	assert.Equal(t, []types.StreamID{0, 4, 8}, m.ConsumeNewPeerStreams())

	next, ok := m.NextAcceptablePeerBidirectionalStreamID()
	require.True(t, ok)
	assert.Equal(t, types.StreamID(12), next)
}

// TestManager_StreamLimitWindowing MAX_STREAMS 通告窗口（场景 2）
func TestManager_StreamLimitWindowing(t *testing.T) {
	conn := &mockConn{id: "conn-windowing"}
	settings := config.DefaultTransportSettings()
	settings.InitialMaxStreamsBidi = 100
	settings.StreamLimitWindowingFraction = 2
	m := New(conn, types.NodeTypeServer, &settings)

	// 对端打开 0..196 共 50 条流
	_, err := m.GetStream(196, nil)
	require.NoError(t, err)
	require.Equal(t, 50, m.StreamCount())

	// 关闭前 49 条不产生通告
	for id := types.StreamID(0); id < 196; id += types.StreamIncrement {
		terminate(t, m.FindStream(id))
		m.RemoveClosedStream(id)
		_, pending := m.RemoteBidirectionalStreamLimitUpdate()
		assert.False(t, pending, "过早通告于 id %d", id)
	}

	// 第 50 条触发一次通告：150 = 已关闭 50 + 初始限额 100
	terminate(t, m.FindStream(196))
	m.RemoveClosedStream(196)
	update, pending := m.RemoteBidirectionalStreamLimitUpdate()
	require.True(t, pending)
	assert.Equal(t, uint64(150), update)

	// 消费后清除
	_, pending = m.RemoteBidirectionalStreamLimitUpdate()
	assert.False(t, pending)

	// 再打开并关闭 50 条，通告推进到 200
	_, err = m.GetStream(396, nil)
	require.NoError(t, err)
	for id := types.StreamID(200); id <= 396; id += types.StreamIncrement {
		terminate(t, m.FindStream(id))
		m.RemoveClosedStream(id)
	}
	update, pending = m.RemoteBidirectionalStreamLimitUpdate()
	require.True(t, pending)
	assert.Equal(t, uint64(200), update)
}

// TestManager_ControlStreamIsolation 控制流隔离（场景 3）
func TestManager_ControlStreamIsolation(t *testing.T) {
	m, conn := newTestManager(t, types.NodeTypeServer)
	m.SetMaxLocalBidirectionalStreams(10, false)

	s, err := m.CreateNextBidirectionalStream(nil)
	require.NoError(t, err)
	require.Equal(t, types.StreamID(1), s.ID)
	assert.False(t, m.IsAppIdle())

	m.SetStreamAsControl(s)

	assert.False(t, m.HasNonCtrlStreams())
	assert.Equal(t, uint64(1), m.NumControlStreams())
	assert.True(t, m.IsAppIdle())
	assert.Equal(t, []bool{true}, conn.idleChanges)

	// 控制流绝不进入优先级写队列
	s.PendingWriteBytes = 100
	s.FlowCredit = 100
	m.UpdateWritableStreams(s)
	assert.False(t, m.WriteQueue().Contains(s.ID))
	assert.Equal(t, []types.StreamID{1}, m.ControlWriteQueue())
	assert.True(t, m.HasWritable())
}

// TestManager_StreamGroupLimit 流组上限（场景 4）
func TestManager_StreamGroupLimit(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)

	want := types.StreamGroupID(1)
	for i := 0; i < 128; i++ {
		g, err := m.CreateNextBidirectionalStreamGroup()
		require.NoError(t, err, "group %d", i)
		assert.Equal(t, want, g)
		want += types.StreamGroupIncrement
	}

	_, err := m.CreateNextBidirectionalStreamGroup()
	assert.ErrorIs(t, err, ErrGroupLimitReached)
	assert.Equal(t, uint64(128), m.NumBidirectionalGroups())
}

// TestManager_LocalStreamLimit 本端流限额（场景 5）
func TestManager_LocalStreamLimit(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)
	m.SetMaxLocalBidirectionalStreams(2, false)

	s1, err := m.CreateNextBidirectionalStream(nil)
	require.NoError(t, err)
	assert.Equal(t, types.StreamID(1), s1.ID)

	s2, err := m.CreateNextBidirectionalStream(nil)
	require.NoError(t, err)
	assert.Equal(t, types.StreamID(5), s2.ID)

	_, err = m.CreateNextBidirectionalStream(nil)
	assert.ErrorIs(t, err, ErrStreamLimitReached)

	// 限额撞顶排队一个 STREAMS_BLOCKED
	blocked := m.ConsumeStreamsBlocked()
	require.Len(t, blocked, 1)
	assert.False(t, blocked[0].Unidirectional)
	assert.Equal(t, uint64(2), blocked[0].StreamLimit)
}

// TestManager_PeerStreamLimitExceeded 协议违规（场景 6）
func TestManager_PeerStreamLimitExceeded(t *testing.T) {
	conn := &mockConn{id: "conn-violation"}
	settings := config.DefaultTransportSettings()
	settings.InitialMaxStreamsBidi = 10
	m := New(conn, types.NodeTypeServer, &settings)

	// maxRemoteBidi = 0 + 10*4 = 40
	_, err := m.GetStream(40, nil)
	assert.ErrorIs(t, err, ErrStreamLimitExceeded)

	// 状态不变
	assert.Equal(t, 0, m.StreamCount())
	next, ok := m.NextAcceptablePeerBidirectionalStreamID()
	require.True(t, ok)
	assert.Equal(t, types.StreamID(0), next)
	assert.Equal(t, uint64(10), m.OpenableRemoteBidirectionalStreams())
}

// TestManager_MonotoneIDsAndBudget P2/P3：ID 单调与预算算术
func TestManager_MonotoneIDsAndBudget(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)
	m.SetMaxLocalUnidirectionalStreams(5, false)

	prev := types.StreamID(0)
	for i := 0; i < 5; i++ {
		left := m.OpenableLocalUnidirectionalStreams()
		assert.Equal(t, uint64(5-i), left)

		s, err := m.CreateNextUnidirectionalStream(nil)
		require.NoError(t, err)
		if i > 0 {
			assert.Equal(t, types.StreamIncrement, int(s.ID-prev), "每次创建推进 4")
		}
		prev = s.ID
	}
	assert.Equal(t, uint64(0), m.OpenableLocalUnidirectionalStreams())
	_, ok := m.NextAcceptableLocalUnidirectionalStreamID()
	assert.False(t, ok)
}

// TestManager_RemoveClosedStream P5：关闭一致性
func TestManager_RemoveClosedStream(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)

	s, err := m.GetStream(4, nil)
	require.NoError(t, err)
	m.ConsumeNewPeerStreams()

	// 塞满各个派生集合
	s.ReadBufferBytes = 10
	s.PendingWriteBytes = 10
	s.FlowCredit = 10
	s.LossBytes = 5
	m.UpdateReadableStreams(s)
	m.UpdatePeekableStreams(s)
	m.UpdateWritableStreams(s)
	m.UpdateLossStreams(s)
	m.QueueBlocked(s.ID, 10)
	m.QueueWindowUpdate(s.ID)
	m.QueueFlowControlUpdated(s.ID)
	m.AddDeliverable(s.ID)
	m.AddTx(s.ID)
	m.AddStopSending(s.ID, 0)
	m.AddClosed(s.ID)

	// 非终态移除是程序错误
	assert.Panics(t, func() { m.RemoveClosedStream(s.ID) })

	s.ReadBufferBytes = 0
	s.PendingWriteBytes = 0
	s.LossBytes = 0
	require.NoError(t, s.Send.OnReset())
	require.NoError(t, s.Send.OnResetAcked())
	require.NoError(t, s.Recv.OnReset())
	require.NoError(t, s.Recv.OnResetRead())
	m.RemoveClosedStream(s.ID)

	assert.False(t, m.StreamExists(s.ID))
	assert.False(t, m.OpenBidirectionalPeerStreams().Contains(s.ID))
	assert.NotContains(t, m.ReadableStreams(), s.ID)
	assert.NotContains(t, m.PeekableStreams(), s.ID)
	assert.NotContains(t, m.WritableStreams(), s.ID)
	assert.NotContains(t, m.LossStreams(), s.ID)
	assert.NotContains(t, m.BlockedStreams(), s.ID)
	assert.NotContains(t, m.WindowUpdates(), s.ID)
	assert.False(t, m.FlowControlUpdatedContains(s.ID))
	assert.False(t, m.DeliverableContains(s.ID))
	assert.False(t, m.TxContains(s.ID))
	assert.NotContains(t, m.StopSendingStreams(), s.ID)
	assert.NotContains(t, m.ClosedStreams(), s.ID)
	assert.False(t, m.WriteQueue().Contains(s.ID))

	// 重复关闭是程序错误
	assert.Panics(t, func() { m.RemoveClosedStream(s.ID) })
}

// TestManager_AppIdle P8：应用空闲跟踪
func TestManager_AppIdle(t *testing.T) {
	m, conn := newTestManager(t, types.NodeTypeServer)
	m.SetMaxLocalBidirectionalStreams(10, false)

	s1, err := m.CreateNextBidirectionalStream(nil)
	require.NoError(t, err)
	assert.False(t, m.IsAppIdle())

	s2, err := m.CreateNextBidirectionalStream(nil)
	require.NoError(t, err)
	m.SetStreamAsControl(s2)
	assert.False(t, m.IsAppIdle(), "仍有非控制流")

	terminate(t, s1)
	m.RemoveClosedStream(s1.ID)
	assert.True(t, m.IsAppIdle(), "只剩控制流")
	assert.Equal(t, []bool{true}, conn.idleChanges)

	s3, err := m.CreateNextBidirectionalStream(nil)
	require.NoError(t, err)
	assert.False(t, m.IsAppIdle())
	assert.Equal(t, []bool{true, false}, conn.idleChanges)
	_ = s3
}

func TestManager_ControlStreamCountOnRemove(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)
	m.SetMaxLocalBidirectionalStreams(10, false)

	s, err := m.CreateNextBidirectionalStream(nil)
	require.NoError(t, err)
	m.SetStreamAsControl(s)
	require.Equal(t, uint64(1), m.NumControlStreams())

	terminate(t, s)
	m.RemoveClosedStream(s.ID)
	assert.Equal(t, uint64(0), m.NumControlStreams())
}

func TestManager_GroupUnknown(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)
	m.SetMaxLocalBidirectionalStreams(10, false)

	g := types.StreamGroupID(1)
	_, err := m.CreateNextBidirectionalStream(&g)
	assert.ErrorIs(t, err, ErrGroupUnknown)

	created, err := m.CreateNextBidirectionalStreamGroup()
	require.NoError(t, err)
	require.Equal(t, g, created)

	s, err := m.CreateNextBidirectionalStream(&g)
	require.NoError(t, err)
	require.NotNil(t, s.GroupID)
	assert.Equal(t, g, *s.GroupID)
}

func TestManager_PeerStreamGroups(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)

	g := types.StreamGroupID(0)
	s, err := m.GetStream(4, &g)
	require.NoError(t, err)
	require.NotNil(t, s.GroupID)

	// 隐式打开的 0 不带组，终端 4 带组
	assert.Nil(t, m.FindStream(0).GroupID)
	assert.Equal(t, []types.StreamID{4}, m.ConsumeNewGroupedPeerStreams())

	groups := m.ConsumeNewPeerStreamGroups()
	assert.Contains(t, groups, g)
	assert.Equal(t, 0, m.NumNewPeerStreamGroups())
	assert.Equal(t, uint64(1), m.NumPeerStreamGroupsSeen())

	// 同组再次出现不再计入新组
	_, err = m.GetStream(8, &g)
	require.NoError(t, err)
	assert.Equal(t, 0, m.NumNewPeerStreamGroups())
}

func TestManager_InvalidPeerClass(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)

	// 1 是服务端本端流，对端管线看到它属于类别错误
	_, err := m.getOrCreatePeerStream(1, nil)
	assert.ErrorIs(t, err, ErrInvalidStreamID)
}

func TestManager_ClosedPeerStreamReturnsNil(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)

	s, err := m.GetStream(0, nil)
	require.NoError(t, err)
	terminate(t, s)
	m.RemoveClosedStream(0)

	got, err := m.GetStream(0, nil)
	require.NoError(t, err)
	assert.Nil(t, got, "已关闭对端流的帧应被忽略")
}

func TestManager_LocalStreamNotFound(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeClient)

	_, err := m.GetStream(0, nil)
	assert.ErrorIs(t, err, ErrStreamNotFound)
}

func TestManager_ConsumeMaxLocalIncreased(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)

	assert.False(t, m.ConsumeMaxLocalBidirectionalStreamIDIncreased())

	m.SetMaxLocalBidirectionalStreams(10, false)
	assert.True(t, m.ConsumeMaxLocalBidirectionalStreamIDIncreased())
	assert.False(t, m.ConsumeMaxLocalBidirectionalStreamIDIncreased(), "消费即清除")

	// 下调被忽略
	m.SetMaxLocalBidirectionalStreams(5, false)
	assert.False(t, m.ConsumeMaxLocalBidirectionalStreamIDIncreased())
	assert.Equal(t, uint64(10), m.OpenableLocalBidirectionalStreams())

	// force 允许下调
	m.SetMaxLocalBidirectionalStreams(5, true)
	assert.Equal(t, uint64(5), m.OpenableLocalBidirectionalStreams())
}

func TestManager_SetStreamPriority(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)
	m.SetMaxLocalBidirectionalStreams(10, false)

	s, err := m.CreateNextBidirectionalStream(nil)
	require.NoError(t, err)
	s.PendingWriteBytes = 10
	s.FlowCredit = 10
	m.UpdateWritableStreams(s)

	assert.False(t, m.SetStreamPriority(s.ID, s.Priority), "未变化返回 false")
	assert.True(t, m.SetStreamPriority(s.ID, types.Priority{Level: 0, Incremental: true}))
	assert.False(t, m.SetStreamPriority(999, types.Priority{Level: 0}), "不存在的流")

	id, ok := m.WriteQueue().Peek()
	require.True(t, ok)
	assert.Equal(t, s.ID, id)
}

func TestManager_WritableAndLossScheduling(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)
	m.SetMaxLocalBidirectionalStreams(10, false)

	s, err := m.CreateNextBidirectionalStream(nil)
	require.NoError(t, err)

	// 只有丢失数据也要进写队列
	s.LossBytes = 10
	m.UpdateLossStreams(s)
	m.UpdateWritableStreams(s)
	assert.True(t, m.WriteQueue().Contains(s.ID))
	assert.NotContains(t, m.WritableStreams(), s.ID)
	assert.True(t, m.HasLoss())
	assert.True(t, m.HasNonDSRLoss())
	assert.False(t, m.HasDSRLoss())

	s.LossBytes = 0
	m.UpdateLossStreams(s)
	m.UpdateWritableStreams(s)
	assert.False(t, m.WriteQueue().Contains(s.ID))
	assert.False(t, m.HasLoss())

	// DSR 可写集合平行维护
	s.PendingDSRBytes = 10
	s.FlowCredit = 10
	m.UpdateWritableStreams(s)
	assert.Contains(t, m.WritableDSRStreams(), s.ID)
	assert.True(t, m.HasDSRWritable())
	assert.False(t, m.HasNonDSRWritable())
}

func TestManager_UnidirectionalReadableSplit(t *testing.T) {
	conn := &mockConn{id: "conn-uni"}
	settings := config.DefaultTransportSettings()
	settings.UnidirectionalStreamsReadCallbacksFirst = true
	m := New(conn, types.NodeTypeServer, &settings)

	uni, err := m.GetStream(2, nil)
	require.NoError(t, err)
	bidi, err := m.GetStream(0, nil)
	require.NoError(t, err)

	uni.ReadBufferBytes = 10
	bidi.ReadBufferBytes = 10
	m.UpdateReadableStreams(uni)
	m.UpdateReadableStreams(bidi)

	assert.Contains(t, m.ReadableUnidirectionalStreams(), uni.ID)
	assert.NotContains(t, m.ReadableStreams(), uni.ID)
	assert.Contains(t, m.ReadableStreams(), bidi.ID)

	uni.ReadBufferBytes = 0
	m.UpdateReadableStreams(uni)
	assert.NotContains(t, m.ReadableUnidirectionalStreams(), uni.ID)
}

func TestManager_Migration(t *testing.T) {
	oldConn := &mockConn{id: "conn-old"}
	settings := config.DefaultTransportSettings()
	m := New(oldConn, types.NodeTypeServer, &settings)

	s, err := m.GetStream(4, nil)
	require.NoError(t, err)
	require.Same(t, oldConn, s.Conn().(*mockConn))

	newConn := &mockConn{id: "conn-new"}
	m2 := NewFromMigration(newConn, types.NodeTypeServer, &settings, m)

	assert.Equal(t, 2, m2.StreamCount())
	assert.Same(t, newConn, m2.FindStream(4).Conn().(*mockConn))
	assert.Same(t, newConn, m2.FindStream(0).Conn().(*mockConn))

	next, ok := m2.NextAcceptablePeerBidirectionalStreamID()
	require.True(t, ok)
	assert.Equal(t, types.StreamID(8), next)
}

func TestManager_ClearActionableAndWritable(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)

	s, err := m.GetStream(0, nil)
	require.NoError(t, err)
	s.ReadBufferBytes = 1
	s.PendingWriteBytes = 1
	s.FlowCredit = 1
	m.UpdateReadableStreams(s)
	m.UpdatePeekableStreams(s)
	m.UpdateWritableStreams(s)
	m.AddDeliverable(s.ID)
	m.AddTx(s.ID)
	m.QueueFlowControlUpdated(s.ID)

	m.ClearActionable()
	assert.Empty(t, m.ReadableStreams())
	assert.Empty(t, m.PeekableStreams())
	assert.False(t, m.HasDeliverable())
	assert.False(t, m.HasTx())
	assert.Empty(t, m.ConsumeFlowControlUpdated())

	m.ClearWritable()
	assert.False(t, m.HasWritable())
	assert.Empty(t, m.WritableStreams())
}

func TestManager_RefreshTransportSettings(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)
	require.Equal(t, uint64(config.DefaultMaxStreamsBidi), m.OpenableRemoteBidirectionalStreams())

	settings := config.DefaultTransportSettings()
	settings.InitialMaxStreamsBidi = 200
	settings.InitialMaxStreamsUni = 7
	m.RefreshTransportSettings(&settings)

	assert.Equal(t, uint64(200), m.OpenableRemoteBidirectionalStreams())
	assert.Equal(t, uint64(7), m.OpenableRemoteUnidirectionalStreams())
}

func TestManager_StreamStateForEach(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)
	_, err := m.GetStream(8, nil)
	require.NoError(t, err)

	var seen []types.StreamID
	m.StreamStateForEach(func(s *stream.State) {
		seen = append(seen, s.ID)
	})
	assert.Len(t, seen, 3)
}

func TestManager_ClearOpenStreams(t *testing.T) {
	m, conn := newTestManager(t, types.NodeTypeServer)
	_, err := m.GetStream(8, nil)
	require.NoError(t, err)
	require.False(t, m.IsAppIdle())

	m.ClearOpenStreams()
	assert.Equal(t, 0, m.StreamCount())
	assert.Equal(t, uint64(0), m.OpenBidirectionalPeerStreams().Size())
	assert.True(t, m.IsAppIdle())
	_ = conn
}

func TestManager_ErrorKinds(t *testing.T) {
	m, _ := newTestManager(t, types.NodeTypeServer)

	_, err := m.CreateStream(0, nil)
	assert.True(t, errors.Is(err, ErrInvalidStreamID), "0 对服务端不是本端流")

	g := types.StreamGroupID(3)
	_, err = m.GetStream(0, &g)
	assert.ErrorIs(t, err, ErrInvalidStreamID, "组方向与流方向不符")
}
