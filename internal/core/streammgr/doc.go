// Package streammgr 实现连接内全部逻辑流的管理
//
// Manager 是传输核心的编排者：跟踪连接上的每条流，执行双方协商的
// 流并发限额，把流归类到帧调度器与应用回调消费的各个工作集，
// 并支持应用定义的流组标签。
//
// # 流 ID 类别
//
// 端点角色决定四个类别的基准 ID：
//
//	角色     本端双向  本端单向  对端双向  对端单向
//	服务端   0x01     0x03     0x00     0x02
//	客户端   0x00     0x02     0x01     0x03
//
// 同类别内 ID 以 4 为步长单调递增。
//
// # 派生集合
//
// 所有派生集合都是索引：内容是每流状态的纯函数，流记录才是
// 事实来源。任何可能影响派生集合的状态变更之后都必须调用对应的
// Update*Streams 方法；公共方法边界上集合保持一致。
//
//	readable     当前读偏移处有可投递字节
//	peekable     接收缓冲非空
//	writable     有流控额度且有待发载荷且未复位
//	deliverable  有已确认但未通知送达的字节
//	tx           有新写上线路但未通知的字节
//	loss         丢失缓冲非空（DSR 变体平行维护）
//
// # 并发模型
//
// 单连接单线程协作式调度：Manager 及其全部集合只在拥有连接的
// 事件循环线程上访问，内部不加锁，所有公共操作不阻塞不挂起。
//
// # 错误处理
//
// 可恢复错误（调用方处理）：
//   - ErrStreamLimitReached: 本地创建超出限额
//   - ErrStreamLimitExceeded: 对端 ID 超出限额（调用方必须 CONNECTION_CLOSE）
//   - ErrInvalidStreamID: 类别位与上下文不符
//   - ErrGroupUnknown: 引用了未创建的流组
//   - ErrGroupLimitReached: 流组数达到 128 上限
//   - ErrStreamNotFound: 查找已关闭或从未打开的本端流
//
// 程序错误（panic）：类别不对齐的集合插入、移除未到终态的流、重复关闭。
package streammgr
