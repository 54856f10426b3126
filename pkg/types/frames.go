package types

import (
	"github.com/quic-go/quic-go/quicvarint"
)

// 帧类型编号（RFC 9000 §19）
const (
	FrameTypeMaxStreamsBidi     uint64 = 0x12
	FrameTypeMaxStreamsUni      uint64 = 0x13
	FrameTypeStreamDataBlocked  uint64 = 0x15
	FrameTypeStreamsBlockedBidi uint64 = 0x16
	FrameTypeStreamsBlockedUni  uint64 = 0x17
)

// StreamDataBlockedFrame STREAM_DATA_BLOCKED 帧
//
// 流因流控额度耗尽而无法写入时，由管理器排队，帧调度器消费。
type StreamDataBlockedFrame struct {
	StreamID StreamID
	Offset   uint64
}

// Append 将帧编码追加到 b
func (f StreamDataBlockedFrame) Append(b []byte) []byte {
	b = quicvarint.Append(b, FrameTypeStreamDataBlocked)
	b = quicvarint.Append(b, uint64(f.StreamID))
	return quicvarint.Append(b, f.Offset)
}

// MaxStreamsFrame MAX_STREAMS 帧
//
// StreamCount 为对端累计可打开的流数。
type MaxStreamsFrame struct {
	Unidirectional bool
	StreamCount    uint64
}

// Append 将帧编码追加到 b
func (f MaxStreamsFrame) Append(b []byte) []byte {
	frameType := FrameTypeMaxStreamsBidi
	if f.Unidirectional {
		frameType = FrameTypeMaxStreamsUni
	}
	b = quicvarint.Append(b, frameType)
	return quicvarint.Append(b, f.StreamCount)
}

// StreamsBlockedFrame STREAMS_BLOCKED 帧
//
// 本地创建流时撞到对端限额，排队后由帧调度器择机发送（仅告知性质）。
type StreamsBlockedFrame struct {
	Unidirectional bool
	StreamLimit    uint64
}

// Append 将帧编码追加到 b
func (f StreamsBlockedFrame) Append(b []byte) []byte {
	frameType := FrameTypeStreamsBlockedBidi
	if f.Unidirectional {
		frameType = FrameTypeStreamsBlockedUni
	}
	b = quicvarint.Append(b, frameType)
	return quicvarint.Append(b, f.StreamLimit)
}
