package render

import (
	"runtime"
	"sync/atomic"
	"testing"
)

func TestSchedulerPartition(t *testing.T) {
	tests := []struct {
		name      string
		workers   int
		n         int
		wantParts int
	}{
		{"empty", 4, 0, 0},
		{"fewer items than workers", 8, 3, 3},
		{"even split", 4, 100, 4},
		{"uneven split", 4, 103, 4},
		{"single worker", 1, 50, 1},
		{"one item", 16, 1, 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			ranges := NewScheduler(tc.workers).Partition(tc.n)
			if len(ranges) != tc.wantParts {
				t.Fatalf("got %d ranges, want %d", len(ranges), tc.wantParts)
			}

			next, lo, hi := 0, tc.n, 0
			for _, r := range ranges {
				if r.Start != next {
					t.Errorf("range %v does not start at %d", r, next)
				}
				if r.Len() <= 0 {
					t.Errorf("empty range %v", r)
				}
				lo, hi = min(lo, r.Len()), max(hi, r.Len())
				next = r.End
			}
			if next != tc.n {
				t.Errorf("ranges end at %d, want %d", next, tc.n)
			}
			if len(ranges) > 0 && hi-lo > 1 {
				t.Errorf("range sizes span %d..%d", lo, hi)
			}
		})
	}
}

func TestSchedulerDefaultWorkers(t *testing.T) {
	if got := NewScheduler(0).Workers(); got != runtime.NumCPU() {
		t.Errorf("Workers() = %d, want %d", got, runtime.NumCPU())
	}
	if got := NewScheduler(-3).Workers(); got != runtime.NumCPU() {
		t.Errorf("Workers() = %d, want %d", got, runtime.NumCPU())
	}
}

func TestSchedulerRunVisitsEachItemOnce(t *testing.T) {
	const n = 1000
	var hits [n]atomic.Int32
	var parts atomic.Int32

	NewScheduler(7).Run(n, func(_ int, r Range) {
		parts.Add(1)
		for i := r.Start; i < r.End; i++ {
			hits[i].Add(1)
		}
	})

	if parts.Load() != 7 {
		t.Errorf("ran %d partitions, want 7", parts.Load())
	}
	for i := range hits {
		if h := hits[i].Load(); h != 1 {
			t.Fatalf("item %d visited %d times", i, h)
		}
	}
}

func TestSchedulerRunEmpty(t *testing.T) {
	called := false
	NewScheduler(4).Run(0, func(int, Range) { called = true })
	if called {
		t.Error("Run called fn for zero items")
	}
}
