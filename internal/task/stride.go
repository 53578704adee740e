package task

import (
	"errors"
	"fmt"
)

// BigStride bounds the per-schedule stride increment. With priority >= 2
// every pass is at most BigStride/2, so the numeric spread of live stride
// values stays within half the counter range and Stride.Less remains
// correct across wraparound.
const BigStride uint64 = 1 << 20

// MinPriority is the smallest legal priority.
const MinPriority int64 = 2

var ErrInvalidPriority = errors.New("invalid priority")

// Stride is the wrapping fairness accumulator. The scheduler always favors
// the task with the least accumulated stride.
type Stride uint64

// Less reports whether s orders before other. The difference is taken as
// signed so a wrapped counter does not invert the ordering: a value that
// is within half-range "before" another still compares smaller.
func (s Stride) Less(other Stride) bool {
	return int64(s-other) < 0
}

// PassFor returns the stride increment charged per schedule at the given
// priority. Higher priority means a smaller pass and therefore more
// frequent selection.
func PassFor(priority int64) uint64 {
	return BigStride / uint64(priority)
}

// ValidatePriority rejects priorities below MinPriority (the pass bound
// needs priority >= 2) and above BigStride (the pass would truncate to
// zero and the task would monopolize the queue).
func ValidatePriority(p int64) error {
	if p < MinPriority || uint64(p) > BigStride {
		return fmt.Errorf("%w: %d", ErrInvalidPriority, p)
	}
	return nil
}
