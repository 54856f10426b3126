// Package xsk 实现内核旁路批量发包（AF_XDP 快速路径）
//
// Sender 持有与内核共享的 UMEM 帧区、发送环与完成环：
//   - GetBuffer 取一个空闲帧，返回越过头部预留区的载荷切片
//   - WriteBuffer 写入以太网/IP/UDP 头部并入队发送描述符
//   - ReturnBuffer 归还帧而不发送
//   - Flush 以 release 语义发布生产者索引，必要时以零字节
//     非阻塞 sendto 唤醒内核
//
// 空闲帧存量跌破一半时顺带排空完成环回收帧；每提交 batchSize
// 个描述符自动冲刷一次。
//
// # 数据报格式
//
// IPv6: ethhdr(14) | ipv6hdr(40) | udphdr(8) | payload
// IPv4: ethhdr(14) | iphdr(20)   | udphdr(8) | payload
//
// 校验和覆盖伪头部 + UDP 头 + 载荷（IPv6 必算，IPv4 同样计算）。
// 默认 TOS 0，TTL/hop-limit 64，IPv4 置 DF。
//
// # 并发
//
// Sender 运行在自己的线程上，单把互斥锁保护空闲帧栈与描述符环；
// 传输层从事件循环线程入队数据报，流管理器不参与。
//
// 仅 Linux 支持；其他平台的构造返回 ErrNotSupported。
package xsk
