package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	digestJobsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_digest_jobs_total",
			Help: "Digest worker runs, by terminal status.",
		},
		[]string{"status"},
	)

	digestRunSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_digest_run_seconds",
			Help:    "Wall time of a claimed digest job run.",
			Buckets: prometheus.ExponentialBuckets(0.5, 2, 10),
		},
	)

	digestDeliveriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_digest_deliveries_total",
			Help: "Per-user digest delivery attempts, by channel and result.",
		},
		[]string{"channel", "result"},
	)
)

func init() {
	register(digestJobsTotal, digestRunSeconds, digestDeliveriesTotal)
}

func IncDigestJob(status string) {
	digestJobsTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveDigestRun(d time.Duration) {
	digestRunSeconds.Observe(d.Seconds())
}

func IncDigestDelivery(channel string, ok bool) {
	result := "ok"
	if !ok {
		result = "error"
	}
	digestDeliveriesTotal.WithLabelValues(norm(channel), result).Inc()
}
