package render

import (
	"runtime"

	"golang.org/x/sync/errgroup"
)

// Range is a half-open span [Start, End) of work items.
type Range struct {
	Start, End int
}

// Len returns the number of items in the range.
func (r Range) Len() int { return r.End - r.Start }

// Scheduler splits a list of work items into contiguous ranges, one per
// worker, and runs them concurrently. There is no work stealing.
type Scheduler struct {
	workers int
}

// NewScheduler creates a scheduler. If workers is 0 or negative,
// runtime.NumCPU() is used.
func NewScheduler(workers int) *Scheduler {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &Scheduler{workers: workers}
}

// Workers returns the number of partitions Run creates at most.
func (s *Scheduler) Workers() int { return s.workers }

// Partition splits n items into at most Workers() contiguous, non-empty
// ranges whose sizes differ by at most one.
func (s *Scheduler) Partition(n int) []Range {
	if n <= 0 {
		return nil
	}
	parts := min(s.workers, n)
	ranges := make([]Range, parts)
	size, rem := n/parts, n%parts
	start := 0
	for i := range ranges {
		end := start + size
		if i < rem {
			end++
		}
		ranges[i] = Range{Start: start, End: end}
		start = end
	}
	return ranges
}

// Run calls fn once per partition of n items and blocks until every call
// has returned. fn receives the partition index and its range.
func (s *Scheduler) Run(n int, fn func(part int, r Range)) {
	ranges := s.Partition(n)
	if len(ranges) == 1 {
		fn(0, ranges[0])
		return
	}

	var g errgroup.Group
	for i, r := range ranges {
		g.Go(func() error {
			fn(i, r)
			return nil
		})
	}
	// Workers never fail; Wait only joins them.
	_ = g.Wait()
}
