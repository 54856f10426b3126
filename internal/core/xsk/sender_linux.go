//go:build linux

package xsk

import (
	"fmt"
	"net"
	"net/netip"
	"sync"
	"unsafe"

	"go.uber.org/multierr"
	"golang.org/x/sys/unix"

	"github.com/dep2p/go-quic/config"
	"github.com/dep2p/go-quic/pkg/interfaces"
	"github.com/dep2p/go-quic/pkg/lib/log"
)

var logger = log.Logger("core/xsk")

// Sender AF_XDP 批量发送器
//
// 运行在自己的线程上；mu 保护空闲帧栈与描述符环。
type Sender struct {
	cfg config.XskConfig
	hdr *HeaderBuilder

	fd   int
	umem []byte

	tx *ring
	cr *ring

	mu         sync.Mutex
	freeFrames []uint32
	txProducer uint32
	crConsumer uint32
	inBatch    uint32
}

var _ interfaces.PacketSink = (*Sender)(nil)

// NewSender 创建并初始化 AF_XDP 发送器
//
// 创建套接字、注册 UMEM、建立发送环与完成环并 mmap；
// 调用方随后以 Bind 绑定网卡队列。
func NewSender(cfg config.XskConfig) (*Sender, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	localMAC, err := net.ParseMAC(cfg.LocalMAC)
	if err != nil {
		return nil, fmt.Errorf("%w: local %q", ErrInvalidMAC, cfg.LocalMAC)
	}
	gatewayMAC, err := net.ParseMAC(cfg.GatewayMAC)
	if err != nil {
		return nil, fmt.Errorf("%w: gateway %q", ErrInvalidMAC, cfg.GatewayMAC)
	}

	s := &Sender{
		cfg: cfg,
		hdr: NewHeaderBuilder(localMAC, gatewayMAC),
		fd:  -1,
	}
	if err := s.initSocket(); err != nil {
		s.Close()
		return nil, err
	}

	// 初始所有帧都空闲
	s.freeFrames = make([]uint32, 0, cfg.NumFrames)
	for i := uint32(0); i < cfg.NumFrames; i++ {
		s.freeFrames = append(s.freeFrames, i)
	}
	return s, nil
}

func (s *Sender) initSocket() error {
	fd, err := unix.Socket(unix.AF_XDP, unix.SOCK_RAW, 0)
	if err != nil {
		return fmt.Errorf("create xdp socket: %w", err)
	}
	s.fd = fd

	umemLen := int(s.cfg.NumFrames) * int(s.cfg.FrameSize)
	umem, err := unix.Mmap(-1, 0, umemLen,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_PRIVATE|unix.MAP_ANONYMOUS|unix.MAP_POPULATE)
	if err != nil {
		return fmt.Errorf("create umem: %w", err)
	}
	s.umem = umem

	reg := unix.XDPUmemReg{
		Addr: uint64(uintptr(unsafe.Pointer(&umem[0]))),
		Len:  uint64(umemLen),
		Size: s.cfg.FrameSize,
	}
	if err := setsockoptPtr(fd, unix.SOL_XDP, xdpUmemReg,
		unsafe.Pointer(&reg), unsafe.Sizeof(reg)); err != nil {
		return fmt.Errorf("register umem: %w", err)
	}

	crSize := int32(s.cfg.NumFrames)
	if err := setsockoptPtr(fd, unix.SOL_XDP, xdpUmemCompletionRing,
		unsafe.Pointer(&crSize), unsafe.Sizeof(crSize)); err != nil {
		return fmt.Errorf("set completion ring: %w", err)
	}

	// 仅发送也必须配置填充环
	frSize := int32(fillRingSize)
	if err := setsockoptPtr(fd, unix.SOL_XDP, xdpUmemFillRing,
		unsafe.Pointer(&frSize), unsafe.Sizeof(frSize)); err != nil {
		return fmt.Errorf("set fill ring: %w", err)
	}

	txSize := int32(s.cfg.NumFrames)
	if err := setsockoptPtr(fd, unix.SOL_XDP, xdpTxRing,
		unsafe.Pointer(&txSize), unsafe.Sizeof(txSize)); err != nil {
		return fmt.Errorf("set tx ring: %w", err)
	}

	var off unix.XDPMmapOffsets
	if err := getsockoptPtr(fd, unix.SOL_XDP, xdpMmapOffsets,
		unsafe.Pointer(&off), unsafe.Sizeof(off)); err != nil {
		return fmt.Errorf("get mmap offsets: %w", err)
	}

	s.cr, err = mapRing(fd, xdpUmemPgoffComplRing, off.Cr, s.cfg.NumFrames, 8)
	if err != nil {
		return fmt.Errorf("map completion ring: %w", err)
	}
	s.tx, err = mapRing(fd, xdpPgoffTxRing, off.Tx, s.cfg.NumFrames, xdpDescSize)
	if err != nil {
		return fmt.Errorf("map tx ring: %w", err)
	}
	return nil
}

// Bind 把套接字绑定到网卡队列
func (s *Sender) Bind(queueID int) error {
	ifi, err := net.InterfaceByName(s.cfg.Interface)
	if err != nil {
		return fmt.Errorf("lookup interface %q: %w", s.cfg.Interface, err)
	}
	sa := &unix.SockaddrXDP{
		Flags:   xdpUseNeedWakeup,
		Ifindex: uint32(ifi.Index),
		QueueID: uint32(queueID),
	}
	if err := unix.Bind(s.fd, sa); err != nil {
		return fmt.Errorf("bind xdp socket: %w", err)
	}
	logger.Info("xsk sender bound", "interface", s.cfg.Interface, "queue", queueID)
	return nil
}

// GetBuffer 申请一个可写帧
//
// 返回的载荷切片越过头部预留区；空闲帧耗尽时返回 false。
func (s *Sender) GetBuffer(isIPv6 bool) (*interfaces.XskBuffer, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if uint32(len(s.freeFrames)) < s.cfg.NumFrames/2 {
		s.drainCompletionRing()
	}
	idx, ok := s.popFreeFrame()
	if !ok {
		return nil, false
	}

	start := int(idx)*int(s.cfg.FrameSize) + HeaderLen(isIPv6)
	end := (int(idx) + 1) * int(s.cfg.FrameSize)
	return &interfaces.XskBuffer{
		Payload:    s.umem[start:end:end],
		FrameIndex: idx,
	}, true
}

// WriteBuffer 填充头部并入队发送描述符
//
// 每提交 batchSize 个描述符自动冲刷一次。
func (s *Sender) WriteBuffer(buf *interfaces.XskBuffer, peer, src netip.AddrPort) error {
	isIPv6 := peer.Addr().Is6() && !peer.Addr().Is4In6()
	frameStart := int(buf.FrameIndex) * int(s.cfg.FrameSize)
	frame := s.umem[frameStart : frameStart+int(s.cfg.FrameSize)]
	if err := s.hdr.WriteHeaders(frame, peer, src, buf.PayloadLength); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	desc := s.tx.txDesc(s.txProducer)
	desc.addr = uint64(frameStart)
	desc.len = uint32(buf.PayloadLength + HeaderLen(isIPv6))
	desc.options = 0
	s.txProducer++

	s.inBatch++
	if s.inBatch >= s.cfg.BatchSize {
		s.inBatch = 0
		return s.flushLocked()
	}
	return nil
}

// ReturnBuffer 归还帧而不发送
func (s *Sender) ReturnBuffer(buf *interfaces.XskBuffer) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.freeFrames = append(s.freeFrames, buf.FrameIndex)
}

// WriteUDPPacket 拷贝式便捷发送
//
// 申请帧、拷入载荷并入队；空闲帧耗尽时返回 ErrNoFreeFrames。
func (s *Sender) WriteUDPPacket(peer, src netip.AddrPort, payload []byte) error {
	isIPv6 := peer.Addr().Is6() && !peer.Addr().Is4In6()
	buf, ok := s.GetBuffer(isIPv6)
	if !ok {
		return ErrNoFreeFrames
	}
	if len(payload) > len(buf.Payload) {
		s.ReturnBuffer(buf)
		return fmt.Errorf("%w: payload %d bytes", ErrFrameTooSmall, len(payload))
	}
	copy(buf.Payload, payload)
	buf.PayloadLength = len(payload)
	return s.WriteBuffer(buf, peer, src)
}

// Flush 发布生产者索引，必要时唤醒内核
func (s *Sender) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.inBatch = 0
	return s.flushLocked()
}

func (s *Sender) flushLocked() error {
	s.tx.storeProducer(s.txProducer)
	if !s.tx.needWakeup() {
		return nil
	}
	// 零字节非阻塞 sendto 仅用于唤醒内核发送路径
	_, _, errno := unix.Syscall6(unix.SYS_SENDTO,
		uintptr(s.fd), 0, 0, uintptr(unix.MSG_DONTWAIT), 0, 0)
	if errno != 0 && errno != unix.EAGAIN && errno != unix.EBUSY {
		return fmt.Errorf("wakeup sendto: %w", errno)
	}
	return nil
}

// popFreeFrame 从空闲帧栈取一帧
func (s *Sender) popFreeFrame() (uint32, bool) {
	if len(s.freeFrames) == 0 {
		return 0, false
	}
	idx := s.freeFrames[len(s.freeFrames)-1]
	s.freeFrames = s.freeFrames[:len(s.freeFrames)-1]
	return idx, true
}

// drainCompletionRing 排空完成环，回收内核已发送的帧
func (s *Sender) drainCompletionRing() {
	producer := s.cr.loadProducer()
	for s.crConsumer != producer {
		addr := s.cr.crAddr(s.crConsumer)
		s.freeFrames = append(s.freeFrames, uint32(addr/uint64(s.cfg.FrameSize)))
		s.crConsumer++
	}
	s.cr.storeConsumer(s.crConsumer)
}

// FreeFrameCount 返回当前空闲帧数
func (s *Sender) FreeFrameCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.freeFrames)
}

// Close 释放环映射、UMEM 与套接字
func (s *Sender) Close() error {
	var err error
	if s.tx != nil {
		err = multierr.Append(err, s.tx.unmap())
		s.tx = nil
	}
	if s.cr != nil {
		err = multierr.Append(err, s.cr.unmap())
		s.cr = nil
	}
	if s.umem != nil {
		err = multierr.Append(err, unix.Munmap(s.umem))
		s.umem = nil
	}
	if s.fd >= 0 {
		err = multierr.Append(err, unix.Close(s.fd))
		s.fd = -1
	}
	return err
}
