package types

import (
	"fmt"

	"github.com/quic-go/quic-go/quicvarint"
)

// StreamIncrement 同类别流 ID 的步长
const StreamIncrement = 4

// StreamGroupIncrement 流组 ID 的步长
const StreamGroupIncrement = 4

// MaxStreamGroupCount 每个方向允许的最大流组数
const MaxStreamGroupCount = 128

// MaxStreamGroupID 流组 ID 上限（不含）
const MaxStreamGroupID StreamGroupID = MaxStreamGroupCount * StreamGroupIncrement

// StreamID QUIC 流标识（uint62）
type StreamID uint64

// StreamGroupID 流组标识
//
// 流组 ID 与流 ID 共用编号空间（同样的类别位与步长），
// 但仅作为应用层路由标签，不参与调度与流控。
type StreamGroupID uint64

// IsUnidirectional 返回流是否为单向流
func (s StreamID) IsUnidirectional() bool {
	return s&0x2 != 0
}

// IsBidirectional 返回流是否为双向流
func (s StreamID) IsBidirectional() bool {
	return s&0x2 == 0
}

// IsClientInitiated 返回流是否由客户端发起
func (s StreamID) IsClientInitiated() bool {
	return s&0x1 == 0
}

// IsServerInitiated 返回流是否由服务端发起
func (s StreamID) IsServerInitiated() bool {
	return s&0x1 != 0
}

// IsLocal 返回流是否由本端发起
func (s StreamID) IsLocal(nodeType NodeType) bool {
	if nodeType == NodeTypeServer {
		return s.IsServerInitiated()
	}
	return s.IsClientInitiated()
}

// IsPeer 返回流是否由对端发起
func (s StreamID) IsPeer(nodeType NodeType) bool {
	return !s.IsLocal(nodeType)
}

// Valid 返回流 ID 是否在 uint62 范围内
func (s StreamID) Valid() bool {
	return uint64(s) <= quicvarint.Max
}

// String 返回流 ID 的字符串表示
func (s StreamID) String() string {
	dir := "bidi"
	if s.IsUnidirectional() {
		dir = "uni"
	}
	init := "client"
	if s.IsServerInitiated() {
		init = "server"
	}
	return fmt.Sprintf("%d(%s/%s)", uint64(s), init, dir)
}

// IsUnidirectional 返回流组所属方向是否为单向
func (g StreamGroupID) IsUnidirectional() bool {
	return g&0x2 != 0
}

// Valid 返回流组 ID 是否在 uint62 范围内
func (g StreamGroupID) Valid() bool {
	return uint64(g) <= quicvarint.Max
}
