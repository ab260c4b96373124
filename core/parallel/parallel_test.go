package parallel

import (
	"sync/atomic"
	"testing"
)

func TestParallelizeCoversEveryIndex(t *testing.T) {
	const items = 1000
	var hits [items]int32

	Parallelize(items, func(start, end int) {
		for i := start; i < end; i++ {
			atomic.AddInt32(&hits[i], 1)
		}
	})

	for i, h := range hits {
		if h != 1 {
			t.Fatalf("index %d visited %d times, want once", i, h)
		}
	}
}

func TestParallelizeEmpty(t *testing.T) {
	called := false
	Parallelize(0, func(start, end int) { called = true })
	if called {
		t.Error("fn invoked for zero items")
	}
}

func TestParallelizeWithThresholdSequential(t *testing.T) {
	var calls int32
	ParallelizeWithThreshold(4, 10, func(start, end int) {
		atomic.AddInt32(&calls, 1)
		if start != 0 || end != 4 {
			t.Errorf("sequential chunk = [%d, %d), want [0, 4)", start, end)
		}
	})
	if calls != 1 {
		t.Errorf("fn invoked %d times, want once", calls)
	}
}
