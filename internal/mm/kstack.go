package mm

import "errors"

// StackHandle identifies one kernel stack in the fixed pool. A negative
// handle means "none".
type StackHandle int

var ErrOutOfStacks = errors.New("kernel stack pool exhausted")

// StackPool hands out per-task kernel stacks from a fixed reserve, the
// usual kernel arrangement where stack memory is carved out at boot.
type StackPool struct {
	free []StackHandle
}

func NewStackPool(n int) *StackPool {
	p := &StackPool{free: make([]StackHandle, 0, n)}
	for i := n - 1; i >= 0; i-- {
		p.free = append(p.free, StackHandle(i))
	}
	return p
}

// Alloc takes a stack from the pool. Exhaustion is a recoverable error
// surfaced to spawn as resource exhaustion.
func (p *StackPool) Alloc() (StackHandle, error) {
	if len(p.free) == 0 {
		return -1, ErrOutOfStacks
	}
	h := p.free[len(p.free)-1]
	p.free = p.free[:len(p.free)-1]
	return h, nil
}

// Free returns a stack to the pool when its task is released.
func (p *StackPool) Free(h StackHandle) {
	if h < 0 {
		return
	}
	p.free = append(p.free, h)
}

// Available returns the number of unallocated stacks.
func (p *StackPool) Available() int { return len(p.free) }
