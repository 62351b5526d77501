package polymult

import (
	"sync"
	"testing"

	"golang.org/x/exp/slices"

	"github.com/nthroot-labs/polymult/engine"
)

func TestHelperPoolDispatchCoversEveryLine(t *testing.T) {
	eng := engine.NewFloatEngine(8)
	pool := NewHelperPool(eng, 4)
	defer pool.Close()

	const total = 997 // prime, deliberately not a multiple of helper count
	var mu sync.Mutex
	seen := make([]int, 0, total)

	pool.Dispatch(total, func(idx int) {
		mu.Lock()
		seen = append(seen, idx)
		mu.Unlock()
	})

	if len(seen) != total {
		t.Fatalf("got %d line visits, want %d", len(seen), total)
	}
	slices.Sort(seen)
	for i, v := range seen {
		if v != i {
			t.Fatalf("line %d missing or duplicated; seen[%d]=%d", i, i, v)
		}
	}
}

func TestHelperPoolZeroHelpersRunsOnCaller(t *testing.T) {
	eng := engine.NewFloatEngine(8)
	pool := NewHelperPool(eng, 0)
	defer pool.Close()

	count := 0
	pool.Dispatch(10, func(int) { count++ })
	if count != 10 {
		t.Fatalf("count = %d, want 10", count)
	}
}

func TestHelperPoolMultipleRounds(t *testing.T) {
	eng := engine.NewFloatEngine(8)
	pool := NewHelperPool(eng, 3)
	defer pool.Close()

	for round := 0; round < 5; round++ {
		var count int
		var mu sync.Mutex
		pool.Dispatch(50, func(int) {
			mu.Lock()
			count++
			mu.Unlock()
		})
		if count != 50 {
			t.Fatalf("round %d: count = %d, want 50", round, count)
		}
	}
}
