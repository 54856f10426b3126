// Package quic 提供 QUIC 端点的流复用核心
//
// 本包是传输端点的装配层：Endpoint 拥有事件循环与可选的
// AF_XDP 发包下沉，Conn 是单条连接的状态载体，内部的
// streammgr.Manager 跟踪连接上的每条逻辑流、执行流并发限额、
// 维护帧调度器与应用回调消费的各个工作集。
//
// # 快速开始
//
// 创建端点：
//
//	ep, err := quic.New(quic.WithConfig(config.DefaultConfig()))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer ep.Close()
//
// 建立连接并使用流管理器：
//
//	conn := ep.NewConnection(types.NodeTypeServer)
//	s, err := conn.Streams().CreateNextBidirectionalStream(nil)
//
// # 架构
//
//	┌───────────────────────────────────┐
//	│            Endpoint               │
//	├───────────────────────────────────┤
//	│  ┌─────────┐   ┌───────────────┐  │
//	│  │  Conn   │…  │   EventLoop   │  │
//	│  │ streammgr│  └───────────────┘  │
//	│  └─────────┘   ┌───────────────┐  │
//	│                │ PacketSink    │  │
//	│                │  (AF_XDP)     │  │
//	└────────────────┴───────────────┴──┘
//
// 单条连接的全部流状态只在事件循环线程上访问；
// AF_XDP 发送器运行在自己的线程上，内部自行加锁。
//
// # 范围
//
// 核心不做 I/O、不把字节排上线路、不实现加密与丢包恢复；
// 这些由外部协作者通过 pkg/interfaces 的契约接入。
package quic
