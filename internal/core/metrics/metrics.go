// Package metrics 暴露传输核心的 Prometheus 指标
//
// 指标按连接打标签；连接的应用空闲状态翻转时（Conn.OnAppIdleChanged
// 调用 ObserveConn）采样流管理器：
//   - quic_streams_open: 活跃流数
//   - quic_control_streams: 控制流数
//   - quic_app_idle: 应用空闲状态（0/1）
//   - quic_max_streams_updates_total: MAX_STREAMS 通告次数
//   - quic_xsk_free_frames: AF_XDP 空闲帧数
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// StreamStats 指标采样消费的流管理器统计面
type StreamStats interface {
	StreamCount() int
	NumControlStreams() uint64
	IsAppIdle() bool
}

// Metrics 传输核心指标集
type Metrics struct {
	streamsOpen       *prometheus.GaugeVec
	controlStreams    *prometheus.GaugeVec
	appIdle           *prometheus.GaugeVec
	maxStreamsUpdates *prometheus.CounterVec
	xskFreeFrames     prometheus.Gauge
}

// New 创建并注册指标集
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		streamsOpen: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "quic_streams_open",
			Help: "Number of active streams on the connection.",
		}, []string{"conn"}),
		controlStreams: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "quic_control_streams",
			Help: "Number of streams tagged as control streams.",
		}, []string{"conn"}),
		appIdle: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "quic_app_idle",
			Help: "Whether the connection is app-idle (only control streams).",
		}, []string{"conn"}),
		maxStreamsUpdates: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "quic_max_streams_updates_total",
			Help: "MAX_STREAMS advertisements produced per direction.",
		}, []string{"conn", "direction"}),
		xskFreeFrames: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "quic_xsk_free_frames",
			Help: "Free UMEM frames available to the AF_XDP sender.",
		}),
	}
	if reg != nil {
		reg.MustRegister(m.streamsOpen, m.controlStreams, m.appIdle,
			m.maxStreamsUpdates, m.xskFreeFrames)
	}
	return m
}

// ObserveConn 采样一条连接的流管理器状态
func (m *Metrics) ObserveConn(connID string, stats StreamStats) {
	m.streamsOpen.WithLabelValues(connID).Set(float64(stats.StreamCount()))
	m.controlStreams.WithLabelValues(connID).Set(float64(stats.NumControlStreams()))
	idle := 0.0
	if stats.IsAppIdle() {
		idle = 1.0
	}
	m.appIdle.WithLabelValues(connID).Set(idle)
}

// RemoveConn 清除一条连接的全部指标序列
func (m *Metrics) RemoveConn(connID string) {
	m.streamsOpen.DeleteLabelValues(connID)
	m.controlStreams.DeleteLabelValues(connID)
	m.appIdle.DeleteLabelValues(connID)
	m.maxStreamsUpdates.DeletePartialMatch(prometheus.Labels{"conn": connID})
}

// IncMaxStreamsUpdate 记一次 MAX_STREAMS 通告
func (m *Metrics) IncMaxStreamsUpdate(connID, direction string) {
	m.maxStreamsUpdates.WithLabelValues(connID, direction).Inc()
}

// SetXskFreeFrames 更新 AF_XDP 空闲帧数
func (m *Metrics) SetXskFreeFrames(n int) {
	m.xskFreeFrames.Set(float64(n))
}
