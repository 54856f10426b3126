// Package interfaces 定义 go-quic 公共接口
//
// 核心组件之间只通过本包的接口交互：
//   - EventLoop: 事件循环适配器（回调调度与定时器）
//   - WriteScheduler: 可写流优先级调度契约
//   - PacketSink: 内核旁路批量发包下沉（AF_XDP 快速路径）
//   - Connection: 连接状态的反向引用契约
//
// 接口面向消费方定义，实现位于 internal/core 对应包。
package interfaces
