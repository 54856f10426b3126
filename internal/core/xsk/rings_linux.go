//go:build linux

package xsk

import (
	"fmt"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"
)

// AF_XDP uapi 常量（linux/if_xdp.h）
//
// 环页偏移与选项编号按内核 uapi 固定。
const (
	xdpMmapOffsets        = 1
	xdpRxRing             = 2
	xdpTxRing             = 3
	xdpUmemReg            = 4
	xdpUmemFillRing       = 5
	xdpUmemCompletionRing = 6
	xdpUseNeedWakeup      = 1 << 3
	xdpRingNeedWakeupFlag = 1 << 0
	xdpPgoffTxRing        = 0x80000000
	xdpUmemPgoffFillRing  = 0x100000000
	xdpUmemPgoffComplRing = 0x180000000
	xdpDescSize           = 16
	fillRingSize          = 8
)

// xdpDesc 发送描述符（与内核共享内存布局一致）
type xdpDesc struct {
	addr    uint64
	len     uint32
	options uint32
}

// ring 一个 mmap 进来的内核环
type ring struct {
	mem      []byte
	producer *uint32
	consumer *uint32
	flags    *uint32
	desc     unsafe.Pointer
	size     uint32
}

// mapRing 按偏移把环映射进来
//
// descEntrySize 为单个描述符字节数（发送环 16，完成环 8）。
func mapRing(fd int, pgoff int64, off unix.XDPRingOffset, entries, descEntrySize uint32) (*ring, error) {
	length := int(off.Desc) + int(entries)*int(descEntrySize)
	mem, err := unix.Mmap(fd, pgoff, length,
		unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED|unix.MAP_POPULATE)
	if err != nil {
		return nil, fmt.Errorf("mmap ring: %w", err)
	}
	return &ring{
		mem:      mem,
		producer: (*uint32)(unsafe.Pointer(&mem[off.Producer])),
		consumer: (*uint32)(unsafe.Pointer(&mem[off.Consumer])),
		flags:    (*uint32)(unsafe.Pointer(&mem[off.Flags])),
		desc:     unsafe.Pointer(&mem[off.Desc]),
		size:     entries,
	}, nil
}

func (r *ring) unmap() error {
	if r == nil || r.mem == nil {
		return nil
	}
	mem := r.mem
	r.mem = nil
	return unix.Munmap(mem)
}

// txDesc 返回发送环中给定序号的描述符
func (r *ring) txDesc(idx uint32) *xdpDesc {
	return (*xdpDesc)(unsafe.Pointer(uintptr(r.desc) + uintptr(idx%r.size)*xdpDescSize))
}

// crAddr 返回完成环中给定序号的帧地址
func (r *ring) crAddr(idx uint32) uint64 {
	return *(*uint64)(unsafe.Pointer(uintptr(r.desc) + uintptr(idx%r.size)*8))
}

// loadProducer 以 acquire 语义读生产者索引
func (r *ring) loadProducer() uint32 {
	return atomic.LoadUint32(r.producer)
}

// storeProducer 以 release 语义发布生产者索引
func (r *ring) storeProducer(v uint32) {
	atomic.StoreUint32(r.producer, v)
}

// storeConsumer 以 release 语义发布消费者索引
func (r *ring) storeConsumer(v uint32) {
	atomic.StoreUint32(r.consumer, v)
}

// needWakeup 返回内核是否要求唤醒
func (r *ring) needWakeup() bool {
	return atomic.LoadUint32(r.flags)&xdpRingNeedWakeupFlag != 0
}

// setsockoptPtr 对齐 C 层 setsockopt 的结构体直传
func setsockoptPtr(fd, level, opt int, ptr unsafe.Pointer, size uintptr) error {
	_, _, errno := unix.Syscall6(unix.SYS_SETSOCKOPT,
		uintptr(fd), uintptr(level), uintptr(opt), uintptr(ptr), size, 0)
	if errno != 0 {
		return errno
	}
	return nil
}

// getsockoptPtr 对齐 C 层 getsockopt 的结构体直传
func getsockoptPtr(fd, level, opt int, ptr unsafe.Pointer, size uintptr) error {
	length := uint32(size)
	_, _, errno := unix.Syscall6(unix.SYS_GETSOCKOPT,
		uintptr(fd), uintptr(level), uintptr(opt), uintptr(ptr),
		uintptr(unsafe.Pointer(&length)), 0)
	if errno != 0 {
		return errno
	}
	return nil
}
