package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStats 实现 StreamStats 用于测试
type fakeStats struct {
	count   int
	control uint64
	idle    bool
}

func (f *fakeStats) StreamCount() int          { return f.count }
func (f *fakeStats) NumControlStreams() uint64 { return f.control }
func (f *fakeStats) IsAppIdle() bool           { return f.idle }

func TestMetrics_ObserveConn(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveConn("c1", &fakeStats{count: 5, control: 2, idle: false})

	assert.Equal(t, 5.0, testutil.ToFloat64(m.streamsOpen.WithLabelValues("c1")))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.controlStreams.WithLabelValues("c1")))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.appIdle.WithLabelValues("c1")))

	m.ObserveConn("c1", &fakeStats{count: 1, control: 1, idle: true})
	assert.Equal(t, 1.0, testutil.ToFloat64(m.appIdle.WithLabelValues("c1")))
}

func TestMetrics_MaxStreamsUpdates(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.IncMaxStreamsUpdate("c1", "bidi")
	m.IncMaxStreamsUpdate("c1", "bidi")
	m.IncMaxStreamsUpdate("c1", "uni")

	assert.Equal(t, 2.0, testutil.ToFloat64(m.maxStreamsUpdates.WithLabelValues("c1", "bidi")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.maxStreamsUpdates.WithLabelValues("c1", "uni")))
}

func TestMetrics_RemoveConn(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.ObserveConn("c1", &fakeStats{count: 1})
	m.IncMaxStreamsUpdate("c1", "bidi")
	m.RemoveConn("c1")

	n, err := testutil.GatherAndCount(reg,
		"quic_streams_open", "quic_control_streams", "quic_app_idle",
		"quic_max_streams_updates_total")
	require.NoError(t, err)
	assert.Zero(t, n, "连接的全部序列已清除")
}

func TestMetrics_XskFreeFrames(t *testing.T) {
	m := New(prometheus.NewRegistry())
	m.SetXskFreeFrames(4096)
	assert.Equal(t, 4096.0, testutil.ToFloat64(m.xskFreeFrames))
}
