package task

import (
	"errors"
	"fmt"

	"github.com/emirpasic/gods/trees/redblacktree"
)

var ErrNoSuchTask = errors.New("no such task")

// nodeKey orders the ready queue: stride first (half-range comparator),
// then insertion sequence so equal strides dequeue in insertion order.
type nodeKey struct {
	stride Stride
	seq    uint64
}

func cmp(a, b any) int {
	ka, kb := a.(nodeKey), b.(nodeKey)
	switch {
	case ka.stride == kb.stride:
		switch {
		case ka.seq < kb.seq:
			return -1
		case ka.seq > kb.seq:
			return 1
		default:
			return 0
		}
	case ka.stride.Less(kb.stride):
		return -1
	default:
		return 1
	}
}

// Manager is the ready queue: it owns every task that is runnable but not
// currently executing. Callers serialize access; on the kernel side the
// suspend/resume transition lock covers it.
type Manager struct {
	rbt  *redblacktree.Tree
	keys map[Pid]nodeKey
	seq  uint64
}

func NewManager() *Manager {
	return &Manager{
		rbt:  redblacktree.NewWith(cmp),
		keys: make(map[Pid]nodeKey),
	}
}

// Insert takes ownership of a task and marks it Ready. Inserting a task
// that is still Running indicates a broken ownership invariant elsewhere
// and aborts loudly.
func (m *Manager) Insert(t *TCB) {
	if t.Status == StatusRunning {
		panic(fmt.Sprintf("ready queue: inserting running task %d", t.Pid))
	}
	if _, dup := m.keys[t.Pid]; dup {
		panic(fmt.Sprintf("ready queue: task %d already queued", t.Pid))
	}
	t.Status = StatusReady
	m.seq++
	key := nodeKey{stride: t.stride, seq: m.seq}
	m.rbt.Put(key, t)
	m.keys[t.Pid] = key
}

// FetchNext removes and returns the minimum-stride task, transferring
// ownership to the caller. ok is false when the queue is empty, which is
// the normal idle condition, not an error.
func (m *Manager) FetchNext() (*TCB, bool) {
	node := m.rbt.Left()
	if node == nil {
		return nil, false
	}
	t := node.Value.(*TCB)
	if t.Status == StatusRunning {
		panic(fmt.Sprintf("ready queue: task %d marked running while queued", t.Pid))
	}
	m.rbt.Remove(node.Key)
	delete(m.keys, t.Pid)
	return t, true
}

// Adjust changes a queued task's priority in place: the node is removed,
// the pass recomputed, and the task reinserted under its unchanged stride.
func (m *Manager) Adjust(pid Pid, priority int64) error {
	key, ok := m.keys[pid]
	if !ok {
		return fmt.Errorf("%w: pid %d", ErrNoSuchTask, pid)
	}
	v, found := m.rbt.Get(key)
	if !found {
		panic(fmt.Sprintf("ready queue: key for task %d missing from tree", pid))
	}
	t := v.(*TCB)
	if err := t.SetPriority(priority); err != nil {
		return err
	}
	m.rbt.Remove(key)
	m.seq++
	nk := nodeKey{stride: t.stride, seq: m.seq}
	m.rbt.Put(nk, t)
	m.keys[pid] = nk
	return nil
}

// Contains reports whether pid is queued.
func (m *Manager) Contains(pid Pid) bool {
	_, ok := m.keys[pid]
	return ok
}

// Len returns the number of queued tasks.
func (m *Manager) Len() int { return m.rbt.Size() }

// ForEach visits every queued task in selection order. Used for debug
// dumps and invariant checks; fn must not mutate the queue.
func (m *Manager) ForEach(fn func(t *TCB)) {
	it := m.rbt.Iterator()
	for it.Next() {
		fn(it.Value().(*TCB))
	}
}
