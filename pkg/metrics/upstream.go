package metrics

import (
	"sync/atomic"
	"time"
)

type UpstreamMetrics struct {
	Calls          atomic.Int64
	Failures       atomic.Int64
	AverageLatency atomic.Int64
	PeakLatency    atomic.Int64
}

var upstreamMetrics = &UpstreamMetrics{}

// RecordUpstreamCall tracks one finished upstream request and its latency.
func RecordUpstreamCall(latency time.Duration, failed bool) {
	calls := upstreamMetrics.Calls.Add(1)
	if failed {
		upstreamMetrics.Failures.Add(1)
	}

	ms := latency.Milliseconds()
	current := upstreamMetrics.AverageLatency.Load()
	upstreamMetrics.AverageLatency.Store(current + (ms-current)/calls)

	for {
		peak := upstreamMetrics.PeakLatency.Load()
		if ms <= peak || upstreamMetrics.PeakLatency.CompareAndSwap(peak, ms) {
			break
		}
	}
}

func GetUpstreamMetrics() map[string]int64 {
	return map[string]int64{
		"calls":              upstreamMetrics.Calls.Load(),
		"failures":           upstreamMetrics.Failures.Load(),
		"average_latency_ms": upstreamMetrics.AverageLatency.Load(),
		"peak_latency_ms":    upstreamMetrics.PeakLatency.Load(),
	}
}

func resetUpstream() {
	upstreamMetrics.Calls.Store(0)
	upstreamMetrics.Failures.Store(0)
	upstreamMetrics.AverageLatency.Store(0)
	upstreamMetrics.PeakLatency.Store(0)
}
