package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// 本包集中注册服务的 Prometheus 指标。
// 指标只反映处理量与投递结果，不携带客户邮箱等敏感信息。

var (
	// ScansEvaluated 按结果优先级统计已评估的快照数。
	ScansEvaluated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_scans_evaluated_total",
			Help: "Total diagnostic snapshots evaluated, by priority level.",
		},
		[]string{"priority"},
	)

	// FlagsEmitted 按严重级别统计产出的结论数。
	FlagsEmitted = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_flags_emitted_total",
			Help: "Total diagnostic flags emitted, by severity.",
		},
		[]string{"severity"},
	)

	// EmailsSent 按报告类型统计投递成功数。
	EmailsSent = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_emails_sent_total",
			Help: "Total report emails sent, by report kind (customer/sales).",
		},
		[]string{"kind"},
	)

	// EmailFailures 按报告类型统计投递失败数。
	EmailFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "advisor_email_failures_total",
			Help: "Total report email delivery failures, by report kind.",
		},
		[]string{"kind"},
	)
)

var registry = prometheus.NewRegistry()

func init() {
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	registry.MustRegister(ScansEvaluated, FlagsEmitted, EmailsSent, EmailFailures)
}

// Handler 返回 /metrics 的 HTTP 处理器。
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}
