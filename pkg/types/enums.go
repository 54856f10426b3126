package types

// NodeType 端点角色
type NodeType int

const (
	// NodeTypeClient 客户端端点
	NodeTypeClient NodeType = iota
	// NodeTypeServer 服务端端点
	NodeTypeServer
)

// String 返回端点角色的字符串表示
func (nt NodeType) String() string {
	switch nt {
	case NodeTypeClient:
		return "Client"
	case NodeTypeServer:
		return "Server"
	default:
		return "Unknown"
	}
}

// ApplicationErrorCode 应用层错误码
//
// 由 RESET_STREAM / STOP_SENDING 帧携带，核心仅透传。
type ApplicationErrorCode uint64
