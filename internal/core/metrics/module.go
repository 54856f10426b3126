package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
)

// Module 指标 Fx 模块
var Module = fx.Module("metrics",
	fx.Provide(provideMetrics),
)

func provideMetrics() *Metrics {
	return New(prometheus.DefaultRegisterer)
}
