package quic

import "errors"

var (
	// ErrEndpointClosed 端点已关闭
	ErrEndpointClosed = errors.New("endpoint closed")

	// ErrConnNotFound 连接不存在
	ErrConnNotFound = errors.New("connection not found")
)
