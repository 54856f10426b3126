package interfaces

import "net/netip"

// XskBuffer 共享 UMEM 帧中的一段载荷区
//
// Payload 指向帧内预留以太网/IP/UDP 头部之后的区域；
// 调用方写入载荷后设置 PayloadLength 再交还 WriteBuffer。
type XskBuffer struct {
	// Payload 载荷区切片（非拥有，指向 UMEM 帧内部）
	Payload []byte

	// FrameIndex 所属 UMEM 帧序号
	FrameIndex uint32

	// PayloadLength 实际写入的载荷字节数
	PayloadLength int
}

// PacketSink 定义内核旁路批量发包下沉
//
// 实现运行在自己的线程上，内部以单把互斥锁保护空闲帧栈与描述符环；
// 传输层从事件循环线程入队数据报。
type PacketSink interface {
	// GetBuffer 申请一个可写帧
	//
	// 返回的缓冲偏移已越过头部预留区。空闲帧耗尽时返回 false。
	GetBuffer(isIPv6 bool) (*XskBuffer, bool)

	// WriteBuffer 填充头部并入队发送描述符
	WriteBuffer(buf *XskBuffer, peer, src netip.AddrPort) error

	// ReturnBuffer 归还帧而不发送
	ReturnBuffer(buf *XskBuffer)

	// Flush 发布生产者索引，必要时唤醒内核
	Flush() error
}
