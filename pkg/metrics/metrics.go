package metrics

import (
	"sync/atomic"
)

type Metrics struct {
	resolutionsTotal int64
	resolutionMisses int64
	requestsTotal    int64
}

var global = &Metrics{}

func IncrementResolutions() {
	atomic.AddInt64(&global.resolutionsTotal, 1)
}

func IncrementResolutionMisses() {
	atomic.AddInt64(&global.resolutionMisses, 1)
}

func IncrementRequests() {
	atomic.AddInt64(&global.requestsTotal, 1)
}

func GetResolutions() int64 {
	return atomic.LoadInt64(&global.resolutionsTotal)
}

func GetResolutionMisses() int64 {
	return atomic.LoadInt64(&global.resolutionMisses)
}

func GetRequests() int64 {
	return atomic.LoadInt64(&global.requestsTotal)
}

func Reset() {
	atomic.StoreInt64(&global.resolutionsTotal, 0)
	atomic.StoreInt64(&global.resolutionMisses, 0)
	atomic.StoreInt64(&global.requestsTotal, 0)
	resetStages()
	resetUpstream()
}
