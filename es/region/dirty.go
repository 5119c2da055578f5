package region

import (
	"cmp"
	"slices"
)

// defaultRangeCapacity is the pre-allocated capacity for dirty ranges.
const defaultRangeCapacity = 64

// span is a dirty byte range (absolute region offsets).
type span struct {
	Off int64
	Len int64
}

// tracker accumulates dirty ranges between flushes.
type tracker struct {
	ranges   []span
	pageSize int64
}

func newTracker(pageSize int) tracker {
	return tracker{
		ranges:   make([]span, 0, defaultRangeCapacity),
		pageSize: int64(pageSize),
	}
}

// add records a dirty range. Alignment and merging happen at flush time.
func (t *tracker) add(off, n int64) {
	if n <= 0 {
		return
	}
	t.ranges = append(t.ranges, span{Off: off, Len: n})
}

func (t *tracker) reset() {
	t.ranges = t.ranges[:0]
}

// coalesce page-aligns all ranges, clamps them to limit, sorts them, and
// merges overlapping or adjacent ranges.
func (t *tracker) coalesce(limit int64) []span {
	if len(t.ranges) == 0 {
		return nil
	}

	aligned := make([]span, len(t.ranges))
	for i, r := range t.ranges {
		start := (r.Off / t.pageSize) * t.pageSize
		end := r.Off + r.Len
		if end%t.pageSize != 0 {
			end = (end/t.pageSize + 1) * t.pageSize
		}
		end = min(end, limit)
		aligned[i] = span{Off: start, Len: end - start}
	}

	slices.SortFunc(aligned, func(a, b span) int { return cmp.Compare(a.Off, b.Off) })

	merged := make([]span, 0, len(aligned))
	current := aligned[0]
	for _, next := range aligned[1:] {
		if next.Off <= current.Off+current.Len {
			current.Len = max(current.Off+current.Len, next.Off+next.Len) - current.Off
			continue
		}
		merged = append(merged, current)
		current = next
	}
	return append(merged, current)
}
