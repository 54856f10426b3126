package streammgr

import "errors"

var (
	// ErrStreamLimitReached 本地创建流会超出对端允许的限额
	ErrStreamLimitReached = errors.New("stream limit reached")

	// ErrStreamLimitExceeded 对端流 ID 超出本端通告的限额
	//
	// 协议违规，调用方必须以 STREAM_LIMIT_ERROR 关闭连接。
	ErrStreamLimitExceeded = errors.New("stream limit exceeded")

	// ErrInvalidStreamID 流 ID 的类别位与上下文不符
	ErrInvalidStreamID = errors.New("invalid stream id")

	// ErrGroupUnknown 引用的流组尚未创建
	ErrGroupUnknown = errors.New("stream group unknown")

	// ErrGroupLimitReached 流组数达到上限
	ErrGroupLimitReached = errors.New("stream group limit reached")

	// ErrStreamNotFound 查找已关闭或从未打开的本端流
	ErrStreamNotFound = errors.New("stream not found")
)
