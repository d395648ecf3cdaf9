package metrics

import (
    "sync"

    "github.com/prometheus/client_golang/prometheus"
)

var (
    once sync.Once

    TrackingLatency = prometheus.NewHistogramVec(
        prometheus.HistogramOpts{
            Namespace: "sigtrail",
            Subsystem: "tracking",
            Name:      "latency_seconds",
            Help:      "Latency of tracking endpoints",
            Buckets:   prometheus.DefBuckets,
        },
        []string{"endpoint"},
    )

    TrackingErrors = prometheus.NewCounterVec(
        prometheus.CounterOpts{
            Namespace: "sigtrail",
            Subsystem: "tracking",
            Name:      "errors_total",
            Help:      "Errors by tracking endpoint",
        },
        []string{"endpoint"},
    )
)

func Register() {
    once.Do(func() {
        prometheus.MustRegister(TrackingLatency, TrackingErrors)
    })
}
