package config

import "fmt"

// 传输参数默认值
const (
	// DefaultMaxStreamsBidi 默认通告的双向流初始限额
	DefaultMaxStreamsBidi = 100

	// DefaultMaxStreamsUni 默认通告的单向流初始限额
	DefaultMaxStreamsUni = 100

	// DefaultPriorityQueueWritesPerStream 默认每条流的连续调度配额
	DefaultPriorityQueueWritesPerStream = 1

	// DefaultStreamLimitWindowingFraction 默认流限额通告窗口分数
	//
	// 取 2 表示每关闭初始限额一半的对端流，就通告一次新的 MAX_STREAMS。
	DefaultStreamLimitWindowingFraction = 2

	// MaxAdvertisedStreamGroups 每个方向可通告的流组数上限
	MaxAdvertisedStreamGroups = 128
)

// TransportSettings 传输参数
//
// 来自本端配置与握手期间交换的 transport parameters。
type TransportSettings struct {
	// InitialMaxStreamsBidi 本端通告的对端双向流初始限额
	InitialMaxStreamsBidi uint64

	// InitialMaxStreamsUni 本端通告的对端单向流初始限额
	InitialMaxStreamsUni uint64

	// PriorityQueueWritesPerStream 写队列中每条流的连续调度配额
	PriorityQueueWritesPerStream uint64

	// StreamLimitWindowingFraction 流限额通告窗口分数（必须 > 0）
	StreamLimitWindowingFraction uint64

	// UnidirectionalStreamsReadCallbacksFirst 单向流读回调是否优先派发
	//
	// 开启后单向可读流进入独立集合，回调派发器先于双向流消费。
	UnidirectionalStreamsReadCallbacksFirst bool

	// AdvertisedInitialBidirectionalStreamGroupsCount 通告的双向流组数（0..128）
	AdvertisedInitialBidirectionalStreamGroupsCount uint64

	// AdvertisedInitialUnidirectionalStreamGroupsCount 通告的单向流组数（0..128）
	AdvertisedInitialUnidirectionalStreamGroupsCount uint64
}

// DefaultTransportSettings 返回默认传输参数
func DefaultTransportSettings() TransportSettings {
	return TransportSettings{
		InitialMaxStreamsBidi:        DefaultMaxStreamsBidi,
		InitialMaxStreamsUni:         DefaultMaxStreamsUni,
		PriorityQueueWritesPerStream: DefaultPriorityQueueWritesPerStream,
		StreamLimitWindowingFraction: DefaultStreamLimitWindowingFraction,
	}
}

// Validate 验证传输参数
func (s *TransportSettings) Validate() error {
	if s.StreamLimitWindowingFraction == 0 {
		return fmt.Errorf("%w: stream limit windowing fraction must be > 0", ErrInvalidConfig)
	}
	if s.PriorityQueueWritesPerStream == 0 {
		return fmt.Errorf("%w: priority queue writes per stream must be > 0", ErrInvalidConfig)
	}
	if s.AdvertisedInitialBidirectionalStreamGroupsCount > MaxAdvertisedStreamGroups {
		return fmt.Errorf("%w: bidirectional stream groups count exceeds %d",
			ErrInvalidConfig, MaxAdvertisedStreamGroups)
	}
	if s.AdvertisedInitialUnidirectionalStreamGroupsCount > MaxAdvertisedStreamGroups {
		return fmt.Errorf("%w: unidirectional stream groups count exceeds %d",
			ErrInvalidConfig, MaxAdvertisedStreamGroups)
	}
	return nil
}
