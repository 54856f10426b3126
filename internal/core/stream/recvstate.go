package stream

import "fmt"

// RecvState 接收方向状态
type RecvState uint8

const (
	// RecvStateRecv 接收中
	RecvStateRecv RecvState = iota
	// RecvStateSizeKnown 收到 FIN，最终长度已知
	RecvStateSizeKnown
	// RecvStateDataRecvd 全部数据已收齐
	RecvStateDataRecvd
	// RecvStateDataRead 应用已读完，终态
	RecvStateDataRead
	// RecvStateResetRecvd 收到 RESET_STREAM
	RecvStateResetRecvd
	// RecvStateResetRead 复位已投递给应用，终态
	RecvStateResetRead
)

// String 返回接收状态的字符串表示
func (s RecvState) String() string {
	switch s {
	case RecvStateRecv:
		return "Recv"
	case RecvStateSizeKnown:
		return "SizeKnown"
	case RecvStateDataRecvd:
		return "DataRecvd"
	case RecvStateDataRead:
		return "DataRead"
	case RecvStateResetRecvd:
		return "ResetRecvd"
	case RecvStateResetRead:
		return "ResetRead"
	default:
		return "Unknown"
	}
}

// Terminal 返回是否为终态
func (s RecvState) Terminal() bool {
	return s == RecvStateDataRead || s == RecvStateResetRead
}

// Reset 返回是否在复位路径上
func (s RecvState) Reset() bool {
	return s == RecvStateResetRecvd || s == RecvStateResetRead
}

// RecvMachine 接收方向状态机
type RecvMachine struct {
	state RecvState
}

// State 返回当前状态
func (m *RecvMachine) State() RecvState {
	return m.state
}

// OnFinalSize 收到带 FIN 的帧，最终长度已知
func (m *RecvMachine) OnFinalSize() error {
	switch m.state {
	case RecvStateRecv, RecvStateSizeKnown:
		m.state = RecvStateSizeKnown
		return nil
	default:
		return fmt.Errorf("stream: final size in recv state %s", m.state)
	}
}

// OnAllDataReceived 最终长度之前的数据全部收齐
func (m *RecvMachine) OnAllDataReceived() error {
	switch m.state {
	case RecvStateSizeKnown, RecvStateDataRecvd:
		m.state = RecvStateDataRecvd
		return nil
	default:
		return fmt.Errorf("stream: all data received in recv state %s", m.state)
	}
}

// OnAllDataRead 应用消费完全部数据
func (m *RecvMachine) OnAllDataRead() error {
	if m.state != RecvStateDataRecvd {
		return fmt.Errorf("stream: all data read in recv state %s", m.state)
	}
	m.state = RecvStateDataRead
	return nil
}

// OnReset 收到 RESET_STREAM
func (m *RecvMachine) OnReset() error {
	switch m.state {
	case RecvStateRecv, RecvStateSizeKnown, RecvStateResetRecvd:
		m.state = RecvStateResetRecvd
		return nil
	default:
		return fmt.Errorf("stream: reset in recv state %s", m.state)
	}
}

// OnResetRead 复位投递给应用
func (m *RecvMachine) OnResetRead() error {
	if m.state != RecvStateResetRecvd {
		return fmt.Errorf("stream: reset read in recv state %s", m.state)
	}
	m.state = RecvStateResetRead
	return nil
}
