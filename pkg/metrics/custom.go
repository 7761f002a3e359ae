package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	RateLimitBlockTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adarelay",
			Name:      "ratelimit_block_total",
			Help:      "Total number of rate limit blocks.",
		},
		[]string{"service", "route", "reason"},
	)

	CBRejectTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adarelay",
			Name:      "circuitbreaker_reject_total",
			Help:      "Total number of circuit breaker rejections.",
		},
		[]string{"service", "op"},
	)

	// 链上校验的取数尝试，result: found / not_found / error
	VerifyFetchTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "adarelay",
			Name:      "verify_fetch_total",
			Help:      "Total number of indexer fetch attempts during payment verification.",
		},
		[]string{"result"},
	)

	// 订单已完成但注解写入失败 (不影响成功返回，只能靠指标兜底发现)
	AnnotationFailTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "adarelay",
			Name:      "annotation_fail_total",
			Help:      "Total number of post-completion order annotation failures.",
		},
	)
)

func MustRegister() {
	prometheus.MustRegister(RateLimitBlockTotal, CBRejectTotal, VerifyFetchTotal, AnnotationFailTotal)
}
