package xsk

import "errors"

var (
	// ErrNotSupported 当前平台不支持 AF_XDP
	ErrNotSupported = errors.New("xsk not supported on this platform")

	// ErrNoFreeFrames 空闲 UMEM 帧耗尽
	ErrNoFreeFrames = errors.New("no free umem frames")

	// ErrFrameTooSmall UMEM 帧容不下头部与载荷
	ErrFrameTooSmall = errors.New("frame too small for headers and payload")

	// ErrInvalidAddress 地址族不受支持或源目地址族不一致
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidMAC MAC 地址无法解析
	ErrInvalidMAC = errors.New("invalid mac address")
)
