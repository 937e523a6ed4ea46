package metrics

import (
	"sync/atomic"
)

// Fallback stages of the resolver, in the order they are attempted.
const (
	StageSpecialCase = "special_case"
	StageFullQuery   = "full_query"
	StageTwoWords    = "two_words"
	StageFirstWord   = "first_word"
)

var (
	specialCaseHits int64
	fullQueryHits   int64
	twoWordHits     int64
	firstWordHits   int64
)

func IncrementStageHit(stage string) {
	switch stage {
	case StageSpecialCase:
		atomic.AddInt64(&specialCaseHits, 1)
	case StageFullQuery:
		atomic.AddInt64(&fullQueryHits, 1)
	case StageTwoWords:
		atomic.AddInt64(&twoWordHits, 1)
	case StageFirstWord:
		atomic.AddInt64(&firstWordHits, 1)
	}
}

func GetStageHits() map[string]int64 {
	return map[string]int64{
		StageSpecialCase: atomic.LoadInt64(&specialCaseHits),
		StageFullQuery:   atomic.LoadInt64(&fullQueryHits),
		StageTwoWords:    atomic.LoadInt64(&twoWordHits),
		StageFirstWord:   atomic.LoadInt64(&firstWordHits),
	}
}

func resetStages() {
	atomic.StoreInt64(&specialCaseHits, 0)
	atomic.StoreInt64(&fullQueryHits, 0)
	atomic.StoreInt64(&twoWordHits, 0)
	atomic.StoreInt64(&firstWordHits, 0)
}
