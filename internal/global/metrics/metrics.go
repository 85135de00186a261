package metrics

import (
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// 状态迁移计数
	Transitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_transitions_total",
			Help: "Committed status transitions",
		},
		[]string{"entity", "from", "to"}, // entity: project, proposal
	)

	// 被拒绝的状态迁移计数
	TransitionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "engagement_transition_failures_total",
			Help: "Rejected status transitions by error kind",
		},
		[]string{"entity", "kind"},
	)

	// 接受投标级联耗时（秒），含等待项目锁
	AcceptDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "engagement_accept_duration_seconds",
			Help:    "Proposal acceptance cascade duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		},
	)

	// 级联中被自动拒绝的投标数
	CascadeRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "engagement_cascade_rejected_total",
			Help: "Sibling proposals rejected by acceptance cascades",
		},
	)
)

// Handler 暴露 /metrics
func Handler() gin.HandlerFunc {
	return gin.WrapH(promhttp.Handler())
}
