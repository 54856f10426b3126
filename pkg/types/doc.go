// Package types 定义 go-quic 公共值类型
//
// 本包提供传输核心各组件共享的基础类型：
//   - StreamID / StreamGroupID: QUIC 流与流组标识（uint62）
//   - NodeType: 端点角色（客户端/服务端）
//   - Priority: 流调度优先级
//   - 帧类型: MAX_STREAMS / STREAMS_BLOCKED / STREAM_DATA_BLOCKED
//
// 类型均为纯值语义，不持有资源，可安全复制。
//
// # 流 ID 编码
//
// 按 QUIC 规范（RFC 9000 §2.1），流 ID 的低两位编码发起方与方向：
//
//	位 0: 发起方（0 = 客户端发起，1 = 服务端发起）
//	位 1: 方向（0 = 双向，1 = 单向）
//
// 同一类别内的流 ID 以 4 为步长递增。
package types
